package config

import (
	"bytes"
	"encoding"
	"fmt"

	"github.com/therealaleph/dnsstcloudflare/internal/crypt"
)

// EncryptedString is a config field encrypted at rest with an age X25519
// identity kept in the OS keyring. Plaintext values read back unchanged so
// environment-variable overrides keep working.
type EncryptedString string

func (s *EncryptedString) UnmarshalText(text []byte) error {
	if len(text) == 0 {
		*s = ""
		return nil
	}

	if bytes.HasPrefix(text, []byte("age-encryption.org/")) ||
		bytes.HasPrefix(text, []byte("-----BEGIN AGE ENCRYPTED FILE-----")) {

		identity, err := crypt.GetOrGenerateX25519Identity()
		if err != nil {
			return fmt.Errorf("could not get identity from keyring: %w", err)
		}

		decrypted, err := crypt.Decrypt(text, identity)
		if err != nil {
			return fmt.Errorf("failed to decrypt field: %w", err)
		}
		*s = EncryptedString(decrypted)
		return nil
	}

	*s = EncryptedString(text)
	return nil
}

func (s EncryptedString) MarshalText() ([]byte, error) {
	if len(s) == 0 {
		return nil, nil
	}
	identity, err := crypt.GetOrGenerateX25519Identity()
	if err != nil {
		return nil, fmt.Errorf("could not get identity from keyring for encryption: %w", err)
	}

	encrypted, err := crypt.Encrypt([]byte(s), identity.Recipient())
	if err != nil {
		return nil, fmt.Errorf("failed to encrypt field for saving: %w", err)
	}
	return encrypted, nil
}

var _ encoding.TextUnmarshaler = (*EncryptedString)(nil)
var _ encoding.TextMarshaler = (*EncryptedString)(nil)
