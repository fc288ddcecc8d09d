package config

import "testing"

// Plaintext values (e.g. from environment overrides) must pass through
// unchanged without consulting the keyring.
func TestEncryptedStringPlaintextPassthrough(t *testing.T) {
	var s EncryptedString
	if err := s.UnmarshalText([]byte("plain-api-key")); err != nil {
		t.Fatalf("UnmarshalText: %v", err)
	}
	if s != "plain-api-key" {
		t.Errorf("got %q, want the input unchanged", s)
	}
}

func TestEncryptedStringEmpty(t *testing.T) {
	var s EncryptedString = "stale"
	if err := s.UnmarshalText(nil); err != nil {
		t.Fatalf("UnmarshalText: %v", err)
	}
	if s != "" {
		t.Errorf("got %q, want empty", s)
	}

	out, err := EncryptedString("").MarshalText()
	if err != nil {
		t.Fatalf("MarshalText: %v", err)
	}
	if out != nil {
		t.Errorf("got %q, want nil for empty value", out)
	}
}
