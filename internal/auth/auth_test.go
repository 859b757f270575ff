package auth

import (
	"testing"

	"github.com/zalando/go-keyring"
)

func TestKeychainRoundTrip(t *testing.T) {
	keyring.MockInit()

	if GetStatus("gemini") {
		t.Fatal("expected no stored key")
	}
	if err := SaveKey("gemini", "  secret-key \n"); err != nil {
		t.Fatalf("SaveKey failed: %v", err)
	}
	if !GetStatus("gemini") {
		t.Fatal("expected stored key")
	}
	key, source := GetKey("Gemini", false)
	if key != "secret-key" || source != SourceKeychain {
		t.Errorf("GetKey = %q, %q", key, source)
	}
	if GetStatus("openai") {
		t.Error("keys must be stored per backend")
	}
	if err := DeleteKey("gemini"); err != nil {
		t.Fatalf("DeleteKey failed: %v", err)
	}
	if GetStatus("gemini") {
		t.Error("key should be gone")
	}
}

func TestGetKey_EnvOnlyWhenAllowed(t *testing.T) {
	keyring.MockInit()
	t.Setenv("OPENAI_API_KEY", " env-key ")

	if key, source := GetKey("openai", false); key != "" || source != "" {
		t.Errorf("env must be ignored without allowEnv, got %q from %q", key, source)
	}
	key, source := GetKey("openai", true)
	if key != "env-key" || source != SourceEnv {
		t.Errorf("GetKey = %q, %q", key, source)
	}
	if EnvVar("openai") != "OPENAI_API_KEY" {
		t.Errorf("unexpected env var %q", EnvVar("openai"))
	}
}

func TestUnknownService(t *testing.T) {
	keyring.MockInit()
	if err := SaveKey("google", "k"); err == nil {
		t.Error("google takes no key")
	}
	if err := SaveKey("gemini", "   "); err == nil {
		t.Error("empty key should be rejected")
	}
	if key, _ := GetKey("google", true); key != "" {
		t.Errorf("unexpected key %q", key)
	}
}
