package auth

import (
	"encoding/json"
	"fmt"

	"github.com/zalando/go-keyring"
)

const (
	keyringService = "boorudl"
	keyringPrefix  = "danbooru_"
	defaultKey     = "default_login"
)

// KeyringStore implements CredentialStore using the system keychain
type KeyringStore struct{}

// NewKeyringStore creates a new keyring-based credential store
func NewKeyringStore() (*KeyringStore, error) {
	// Probe availability; headless systems often have no keychain.
	testKey := "test_availability"
	if err := keyring.Set(keyringService, testKey, "test"); err != nil {
		return nil, fmt.Errorf("keyring not available: %w", err)
	}
	_ = keyring.Delete(keyringService, testKey)

	return &KeyringStore{}, nil
}

// Store saves the credential pair to the system keychain
func (k *KeyringStore) Store(creds *Credentials) error {
	if !creds.Valid() {
		return ErrInvalidCredentials
	}

	data, err := json.Marshal(creds)
	if err != nil {
		return fmt.Errorf("failed to marshal credentials: %w", err)
	}

	if err := keyring.Set(keyringService, keyringPrefix+creds.Login, string(data)); err != nil {
		return fmt.Errorf("failed to store in keyring: %w", err)
	}

	// The most recently stored pair becomes the default.
	_ = keyring.Set(keyringService, defaultKey, creds.Login)
	return nil
}

// Retrieve gets the credential pair from the system keychain. An empty
// login resolves to the default pair, which is the most recently stored
// one.
func (k *KeyringStore) Retrieve(login string) (*Credentials, error) {
	if login == "" {
		def, err := keyring.Get(keyringService, defaultKey)
		if err != nil {
			return nil, ErrCredentialsNotFound
		}
		login = def
	}

	data, err := keyring.Get(keyringService, keyringPrefix+login)
	if err != nil {
		if err == keyring.ErrNotFound {
			return nil, ErrCredentialsNotFound
		}
		return nil, fmt.Errorf("failed to retrieve from keyring: %w", err)
	}

	var creds Credentials
	if err := json.Unmarshal([]byte(data), &creds); err != nil {
		return nil, fmt.Errorf("failed to unmarshal credentials: %w", err)
	}
	return &creds, nil
}

// Delete removes the credential pair from the system keychain
func (k *KeyringStore) Delete(login string) error {
	if login == "" {
		return ErrInvalidCredentials
	}

	if err := keyring.Delete(keyringService, keyringPrefix+login); err != nil {
		if err == keyring.ErrNotFound {
			return ErrCredentialsNotFound
		}
		return fmt.Errorf("failed to delete from keyring: %w", err)
	}

	if def, err := keyring.Get(keyringService, defaultKey); err == nil && def == login {
		_ = keyring.Delete(keyringService, defaultKey)
	}
	return nil
}

// Exists checks if a credential pair is stored for a login name
func (k *KeyringStore) Exists(login string) bool {
	if login == "" {
		return false
	}
	_, err := keyring.Get(keyringService, keyringPrefix+login)
	return err == nil
}
