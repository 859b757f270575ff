// Package auth stores backend API keys in the OS keychain.
package auth

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/zalando/go-keyring"
	"golang.org/x/term"
)

const serviceName = "npcxlate"

// Key sources reported by GetKey.
const (
	SourceKeychain = "Keychain"
	SourceEnv      = "Environment Variable"
	SourcePrompt   = "Terminal Prompt"
)

type credential struct {
	account string
	envVar  string
}

var credentials = map[string]credential{
	"gemini": {account: "gemini-api-key", envVar: "GEMINI_API_KEY"},
	"openai": {account: "openai-api-key", envVar: "OPENAI_API_KEY"},
}

// Services returns the backends that take an API key.
func Services() []string {
	return []string{"gemini", "openai"}
}

func lookup(service string) (credential, error) {
	c, ok := credentials[strings.ToLower(service)]
	if !ok {
		return credential{}, fmt.Errorf("backend %q does not use an API key", service)
	}
	return c, nil
}

// EnvVar returns the environment variable consulted for service.
func EnvVar(service string) string {
	c, _ := lookup(service)
	return c.envVar
}

// GetKey returns the key for service and where it came from. Environment
// variables are only consulted when allowEnv is set.
func GetKey(service string, allowEnv bool) (string, string) {
	c, err := lookup(service)
	if err != nil {
		return "", ""
	}
	if key, err := keyring.Get(serviceName, c.account); err == nil && strings.TrimSpace(key) != "" {
		return strings.TrimSpace(key), SourceKeychain
	}
	if allowEnv {
		if key, ok := GetEnvKey(service); ok {
			return key, SourceEnv
		}
	}
	return "", ""
}

// GetEnvKey retrieves the key from environment variables only.
func GetEnvKey(service string) (string, bool) {
	c, err := lookup(service)
	if err != nil {
		return "", false
	}
	key := strings.TrimSpace(os.Getenv(c.envVar))
	return key, key != ""
}

// SaveKey saves the key for service to the OS keychain.
func SaveKey(service, key string) error {
	c, err := lookup(service)
	if err != nil {
		return err
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return fmt.Errorf("API key is empty")
	}
	return keyring.Set(serviceName, c.account, key)
}

// DeleteKey removes the key for service from the OS keychain.
func DeleteKey(service string) error {
	c, err := lookup(service)
	if err != nil {
		return err
	}
	return keyring.Delete(serviceName, c.account)
}

// GetStatus reports whether the keychain holds a key for service.
func GetStatus(service string) bool {
	c, err := lookup(service)
	if err != nil {
		return false
	}
	key, err := keyring.Get(serviceName, c.account)
	return err == nil && key != ""
}

// PromptForAPIKey reads a key from the terminal without echo.
func PromptForAPIKey(w io.Writer, prompt string) (string, error) {
	fmt.Fprint(w, prompt)
	b, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(w)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(b)), nil
}
