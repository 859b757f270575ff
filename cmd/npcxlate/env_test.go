package main

import (
	"bytes"
	"io"
	"strings"
	"testing"
)

func withEnvStatusStubs(t *testing.T, status bool, envKey string) {
	t.Helper()
	prevStatus := getStatus
	prevEnv := getEnvKey

	getStatus = func(_ string) bool { return status }
	getEnvKey = func(_ string) (string, bool) {
		if envKey == "" {
			return "", false
		}
		return envKey, true
	}
	t.Cleanup(func() {
		getStatus = prevStatus
		getEnvKey = prevEnv
	})
}

func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestHandleEnv_Status(t *testing.T) {
	cases := []struct {
		name    string
		status  bool
		envKey  string
		service string
		want    string
	}{
		{name: "keychain", status: true, envKey: "sk-env-secret", service: "gemini", want: "Found (source=Keychain)"},
		{name: "env", envKey: "sk-env-secret", service: "openai", want: "Found (source=Environment Variable OPENAI_API_KEY"},
		{name: "not_found", service: "gemini", want: "Not Found"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			withEnvStatusStubs(t, tc.status, tc.envKey)

			out, err := executeCommand(t, "env", "status", "--service", tc.service)
			if err != nil {
				t.Fatalf("command failed: %v", err)
			}
			if !strings.Contains(out, tc.want) {
				t.Fatalf("expected %q, got: %s", tc.want, out)
			}
			if strings.Contains(out, "sk-env-secret") {
				t.Fatalf("output leaked env key")
			}
		})
	}
}

func TestHandleEnv_InvalidService(t *testing.T) {
	_, err := executeCommand(t, "env", "status", "--service", "google")
	if err == nil || !strings.Contains(err.Error(), "invalid service") {
		t.Fatalf("expected invalid service error, got %v", err)
	}
}

func TestHandleEnvSetup_RejectsPositionalAPIKey(t *testing.T) {
	out, err := executeCommand(t, "env", "setup", "sk-should-not-be-allowed", "--service", "openai")
	if err == nil {
		t.Fatalf("expected setup to reject positional API key argument")
	}
	if !strings.Contains(out, "unknown command") && !strings.Contains(out, "accepts 0 arg(s)") {
		t.Fatalf("expected positional-argument rejection error, got: %s", out)
	}
}

func TestHandleEnvSetup_SavesPromptedKey(t *testing.T) {
	prevPrompt, prevSave := promptForKey, saveKey
	t.Cleanup(func() { promptForKey, saveKey = prevPrompt, prevSave })

	var saved string
	promptForKey = func(_ io.Writer, _ string) (string, error) { return " sk-new \n", nil }
	saveKey = func(service, key string) error {
		saved = service + "=" + key
		return nil
	}

	out, err := executeCommand(t, "env", "setup", "--service", "OpenAI")
	if err != nil {
		t.Fatalf("command failed: %v", err)
	}
	if saved != "openai=sk-new" {
		t.Fatalf("saved = %q", saved)
	}
	if !strings.Contains(out, "Saved openai API key") {
		t.Fatalf("unexpected output: %s", out)
	}
}

func TestHandleEnvDelete(t *testing.T) {
	prev := deleteKey
	t.Cleanup(func() { deleteKey = prev })

	var deleted string
	deleteKey = func(service string) error {
		deleted = service
		return nil
	}
	if _, err := executeCommand(t, "env", "delete", "--service", "gemini"); err != nil {
		t.Fatalf("command failed: %v", err)
	}
	if deleted != "gemini" {
		t.Fatalf("deleted = %q", deleted)
	}
}
