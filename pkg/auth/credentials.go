package auth

import (
	"errors"
	"time"
)

// Common credential errors
var (
	ErrCredentialsNotFound = errors.New("credentials not found")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrStoreUnavailable    = errors.New("credential store unavailable")
)

// Credentials is the optional login/API-key pair the board accepts as
// query parameters. Either both halves are present or the pair is
// treated as anonymous.
type Credentials struct {
	Login        string    `json:"login"`
	APIKey       string    `json:"api_key"`
	LastModified time.Time `json:"last_modified"`
}

// Valid reports whether both halves of the pair are present.
func (c *Credentials) Valid() bool {
	return c != nil && c.Login != "" && c.APIKey != ""
}

// CredentialStore is the interface for storing and retrieving the
// board credential pair
type CredentialStore interface {
	// Store saves the credential pair
	Store(creds *Credentials) error

	// Retrieve gets the credential pair for a login name
	Retrieve(login string) (*Credentials, error)

	// Delete removes the credential pair for a login name
	Delete(login string) error

	// Exists checks if a credential pair is stored for a login name
	Exists(login string) bool
}

// Manager handles credential storage with fallback mechanisms
type Manager struct {
	stores []CredentialStore
}

// NewManager creates a credential manager. The system keychain is
// preferred when available; environment variables are the last resort.
func NewManager() (*Manager, error) {
	var stores []CredentialStore

	if keyringStore, err := NewKeyringStore(); err == nil {
		stores = append(stores, keyringStore)
	}
	stores = append(stores, NewEnvironmentStore())

	return &Manager{stores: stores}, nil
}

// NewManagerWithStores creates a manager over the given stores, mostly
// for tests.
func NewManagerWithStores(stores ...CredentialStore) *Manager {
	return &Manager{stores: stores}
}

// Store saves the credential pair using the first store that accepts it
func (m *Manager) Store(creds *Credentials) error {
	if !creds.Valid() {
		return ErrInvalidCredentials
	}
	creds.LastModified = time.Now()

	var lastErr error
	for _, store := range m.stores {
		if err := store.Store(creds); err != nil {
			lastErr = err
			continue
		}
		return nil
	}
	if lastErr == nil {
		lastErr = ErrStoreUnavailable
	}
	return lastErr
}

// Retrieve gets the credential pair for a login name, trying each store
// in order. An empty login asks each store for its default pair.
func (m *Manager) Retrieve(login string) (*Credentials, error) {
	for _, store := range m.stores {
		creds, err := store.Retrieve(login)
		if err == nil && creds.Valid() {
			return creds, nil
		}
	}
	return nil, ErrCredentialsNotFound
}

// Delete removes the credential pair from every store that has it
func (m *Manager) Delete(login string) error {
	deleted := false
	for _, store := range m.stores {
		if store.Exists(login) {
			if err := store.Delete(login); err != nil && !errors.Is(err, ErrStoreUnavailable) {
				return err
			}
			deleted = true
		}
	}
	if !deleted {
		return ErrCredentialsNotFound
	}
	return nil
}
