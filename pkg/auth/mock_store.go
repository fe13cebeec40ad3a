package auth

import "sync"

// MockStore is an in-memory CredentialStore for testing
type MockStore struct {
	mu       sync.Mutex
	creds    map[string]*Credentials
	storeErr error
}

// NewMockStore creates a new in-memory credential store
func NewMockStore() *MockStore {
	return &MockStore{creds: make(map[string]*Credentials)}
}

// SetStoreError forces Store to fail with the given error
func (m *MockStore) SetStoreError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.storeErr = err
}

func (m *MockStore) Store(creds *Credentials) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.storeErr != nil {
		return m.storeErr
	}
	if !creds.Valid() {
		return ErrInvalidCredentials
	}
	copied := *creds
	m.creds[creds.Login] = &copied
	return nil
}

func (m *MockStore) Retrieve(login string) (*Credentials, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if login == "" {
		// Return any stored pair as the default.
		for _, c := range m.creds {
			copied := *c
			return &copied, nil
		}
		return nil, ErrCredentialsNotFound
	}
	c, ok := m.creds[login]
	if !ok {
		return nil, ErrCredentialsNotFound
	}
	copied := *c
	return &copied, nil
}

func (m *MockStore) Delete(login string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.creds[login]; !ok {
		return ErrCredentialsNotFound
	}
	delete(m.creds, login)
	return nil
}

func (m *MockStore) Exists(login string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.creds[login]
	return ok
}
