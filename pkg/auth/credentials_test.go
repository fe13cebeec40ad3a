package auth

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCredentialsValid(t *testing.T) {
	tests := []struct {
		name  string
		creds *Credentials
		want  bool
	}{
		{"both halves", &Credentials{Login: "user", APIKey: "key"}, true},
		{"missing key", &Credentials{Login: "user"}, false},
		{"missing login", &Credentials{APIKey: "key"}, false},
		{"empty", &Credentials{}, false},
		{"nil", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.creds.Valid())
		})
	}
}

func TestEnvironmentStore(t *testing.T) {
	t.Setenv("LOGIN_NAME", "envuser")
	t.Setenv("API_KEY", "envkey")

	store := NewEnvironmentStore()
	assert.True(t, store.Exists(""))

	creds, err := store.Retrieve("")
	require.NoError(t, err)
	assert.Equal(t, "envuser", creds.Login)
	assert.Equal(t, "envkey", creds.APIKey)

	// Read-only store.
	assert.ErrorIs(t, store.Store(creds), ErrStoreUnavailable)
	assert.ErrorIs(t, store.Delete("envuser"), ErrStoreUnavailable)
}

func TestEnvironmentStoreIncompletePair(t *testing.T) {
	t.Setenv("LOGIN_NAME", "envuser")
	t.Setenv("API_KEY", "")

	store := NewEnvironmentStore()
	assert.False(t, store.Exists(""))

	_, err := store.Retrieve("")
	assert.ErrorIs(t, err, ErrCredentialsNotFound)
}

func TestManagerStoreAndRetrieve(t *testing.T) {
	mock := NewMockStore()
	m := NewManagerWithStores(mock)

	creds := &Credentials{Login: "user", APIKey: "key"}
	require.NoError(t, m.Store(creds))
	assert.False(t, creds.LastModified.IsZero())

	got, err := m.Retrieve("user")
	require.NoError(t, err)
	assert.Equal(t, "user", got.Login)
	assert.Equal(t, "key", got.APIKey)
}

func TestManagerStoreInvalid(t *testing.T) {
	m := NewManagerWithStores(NewMockStore())
	assert.ErrorIs(t, m.Store(&Credentials{Login: "user"}), ErrInvalidCredentials)
}

func TestManagerFallbackOrder(t *testing.T) {
	failing := NewMockStore()
	failing.SetStoreError(errors.New("keychain locked"))
	working := NewMockStore()

	m := NewManagerWithStores(failing, working)
	require.NoError(t, m.Store(&Credentials{Login: "user", APIKey: "key"}))

	assert.False(t, failing.Exists("user"))
	assert.True(t, working.Exists("user"))

	got, err := m.Retrieve("user")
	require.NoError(t, err)
	assert.Equal(t, "key", got.APIKey)
}

func TestManagerRetrieveNotFound(t *testing.T) {
	m := NewManagerWithStores(NewMockStore())
	_, err := m.Retrieve("ghost")
	assert.ErrorIs(t, err, ErrCredentialsNotFound)
}

func TestManagerDelete(t *testing.T) {
	mock := NewMockStore()
	m := NewManagerWithStores(mock)
	require.NoError(t, m.Store(&Credentials{Login: "user", APIKey: "key"}))

	require.NoError(t, m.Delete("user"))
	assert.False(t, mock.Exists("user"))
	assert.ErrorIs(t, m.Delete("user"), ErrCredentialsNotFound)
}
