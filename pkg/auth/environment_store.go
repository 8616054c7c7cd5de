package auth

import (
	"os"
	"strings"
	"time"
)

// AccessTokenEnv holds a token supplied through the environment
const AccessTokenEnv = "VKPROFILER_ACCESS_TOKEN"

// EnvironmentStore implements TokenStore over VKPROFILER_ACCESS_TOKEN.
// It is read-only and answers to any name.
type EnvironmentStore struct{}

// NewEnvironmentStore creates an environment-backed store
func NewEnvironmentStore() *EnvironmentStore {
	return &EnvironmentStore{}
}

// Store is not supported for environment variables
func (e *EnvironmentStore) Store(token *Token) error {
	return ErrStoreUnavailable
}

// Retrieve returns the environment token under the requested name
func (e *EnvironmentStore) Retrieve(name string) (*Token, error) {
	value := strings.TrimSpace(os.Getenv(AccessTokenEnv))
	if value == "" {
		return nil, ErrTokenNotFound
	}
	if name == "" {
		name = DefaultName
	}

	return &Token{
		Name:         name,
		AccessToken:  value,
		LastModified: time.Time{},
	}, nil
}

// List returns the environment token when one is set
func (e *EnvironmentStore) List() ([]*Token, error) {
	token, err := e.Retrieve("")
	if err != nil {
		return []*Token{}, nil
	}
	return []*Token{token}, nil
}

// Delete is not supported for environment variables
func (e *EnvironmentStore) Delete(name string) error {
	return ErrStoreUnavailable
}

// Exists reports whether the environment token is set
func (e *EnvironmentStore) Exists(name string) bool {
	return strings.TrimSpace(os.Getenv(AccessTokenEnv)) != ""
}
