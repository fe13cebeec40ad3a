package auth

import (
	"os"
	"time"
)

// EnvironmentStore implements CredentialStore using the LOGIN_NAME and
// API_KEY environment variables. Read-only.
type EnvironmentStore struct{}

// NewEnvironmentStore creates a new environment-based credential store
func NewEnvironmentStore() *EnvironmentStore {
	return &EnvironmentStore{}
}

// Store is not supported for environment variables
func (e *EnvironmentStore) Store(creds *Credentials) error {
	return ErrStoreUnavailable
}

// Retrieve gets the credential pair from the environment. The login
// argument is ignored since the environment holds a single pair.
func (e *EnvironmentStore) Retrieve(login string) (*Credentials, error) {
	name := os.Getenv("LOGIN_NAME")
	apiKey := os.Getenv("API_KEY")

	if name == "" || apiKey == "" {
		return nil, ErrCredentialsNotFound
	}

	return &Credentials{
		Login:        name,
		APIKey:       apiKey,
		LastModified: time.Now(),
	}, nil
}

// Delete is not supported for environment variables
func (e *EnvironmentStore) Delete(login string) error {
	return ErrStoreUnavailable
}

// Exists checks if environment credentials are present
func (e *EnvironmentStore) Exists(login string) bool {
	return os.Getenv("LOGIN_NAME") != "" && os.Getenv("API_KEY") != ""
}
