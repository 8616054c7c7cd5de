package auth

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"vkprofiler/pkg/config"
)

// DefaultName labels the token used when no name is given
const DefaultName = "default"

// Token is a stored VK access token
type Token struct {
	Name         string    `json:"name"`
	AccessToken  string    `json:"access_token"`
	UserID       int64     `json:"user_id,omitempty"`
	LastModified time.Time `json:"last_modified"`
}

// TokenStore is the interface for storing and retrieving access tokens
type TokenStore interface {
	// Store saves a token under its name
	Store(token *Token) error

	// Retrieve gets the token stored under name
	Retrieve(name string) (*Token, error)

	// List returns all stored tokens
	List() ([]*Token, error)

	// Delete removes the token stored under name
	Delete(name string) error

	// Exists checks if a token is stored under name
	Exists(name string) bool
}

// Manager handles token storage with fallback mechanisms
type Manager struct {
	stores []TokenStore
}

// NewManager creates a manager backed by the system keyring when available,
// an encrypted file, and the environment.
func NewManager() (*Manager, error) {
	var stores []TokenStore

	if keyringStore, err := NewKeyringStore(); err == nil {
		stores = append(stores, keyringStore)
	}

	configDir, err := ConfigDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get config directory: %w", err)
	}

	encryptedStore, err := NewEncryptedFileStore(filepath.Join(configDir, "tokens.enc"))
	if err != nil {
		return nil, fmt.Errorf("failed to create encrypted store: %w", err)
	}
	stores = append(stores, encryptedStore, NewEnvironmentStore())

	return &Manager{stores: stores}, nil
}

// NewManagerWithStores creates a manager that tries stores in order
func NewManagerWithStores(stores ...TokenStore) *Manager {
	return &Manager{stores: stores}
}

// Store saves the token in the first store that accepts it
func (m *Manager) Store(token *Token) error {
	if token == nil {
		return ErrInvalidToken
	}
	token.AccessToken = strings.TrimSpace(token.AccessToken)
	if err := ValidateAccessToken(token.AccessToken); err != nil {
		return err
	}
	if token.Name == "" {
		token.Name = DefaultName
	}
	token.LastModified = time.Now()

	var lastErr error
	for _, store := range m.stores {
		err := store.Store(token)
		if err == nil {
			return nil
		}
		lastErr = err
	}

	if lastErr != nil {
		return fmt.Errorf("failed to store token: %w", lastErr)
	}
	return ErrStoreUnavailable
}

// Retrieve gets the token from the first store that has it
func (m *Manager) Retrieve(name string) (*Token, error) {
	if name == "" {
		name = DefaultName
	}
	for _, store := range m.stores {
		if token, err := store.Retrieve(name); err == nil && token != nil {
			return token, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrTokenNotFound, name)
}

// RetrieveDefault returns the default token, or the most recently stored
// one when no default exists.
func (m *Manager) RetrieveDefault() (*Token, error) {
	if token, err := m.Retrieve(DefaultName); err == nil {
		return token, nil
	}

	tokens, err := m.List()
	if err == nil && len(tokens) > 0 {
		return tokens[0], nil
	}
	return nil, ErrTokenNotFound
}

// List returns tokens from all stores, newest first. A name held by several
// stores is reported once, with its most recent value.
func (m *Manager) List() ([]*Token, error) {
	byName := make(map[string]*Token)

	for _, store := range m.stores {
		tokens, err := store.List()
		if err != nil {
			continue
		}
		for _, token := range tokens {
			if existing, ok := byName[token.Name]; !ok || token.LastModified.After(existing.LastModified) {
				byName[token.Name] = token
			}
		}
	}

	result := make([]*Token, 0, len(byName))
	for _, token := range byName {
		result = append(result, token)
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].LastModified.Equal(result[j].LastModified) {
			return result[i].LastModified.After(result[j].LastModified)
		}
		return result[i].Name < result[j].Name
	})

	return result, nil
}

// Delete removes the token from every store that holds it
func (m *Manager) Delete(name string) error {
	if name == "" {
		name = DefaultName
	}

	var deleted bool
	var lastErr error
	for _, store := range m.stores {
		err := store.Delete(name)
		switch {
		case err == nil:
			deleted = true
		case errors.Is(err, ErrTokenNotFound), errors.Is(err, ErrStoreUnavailable):
		default:
			lastErr = err
		}
	}

	if deleted {
		return nil
	}
	if lastErr != nil {
		return fmt.Errorf("failed to delete token: %w", lastErr)
	}
	return fmt.Errorf("%w: %s", ErrTokenNotFound, name)
}

// ConfigDir returns the per-user configuration directory, creating it
func ConfigDir() (string, error) {
	configDir := config.Dir()
	if err := os.MkdirAll(configDir, 0o700); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}
	return configDir, nil
}

// ValidateAccessToken rejects empty tokens and tokens with whitespace
func ValidateAccessToken(token string) error {
	if token == "" {
		return fmt.Errorf("%w: access token is required", ErrInvalidToken)
	}
	if strings.ContainsAny(token, " \t\r\n") {
		return fmt.Errorf("%w: access token must not contain whitespace", ErrInvalidToken)
	}
	return nil
}

// Mask hides all but the first and last 4 characters of an access token
func Mask(s string) string {
	if len(s) <= 8 {
		return "********"
	}
	return s[:4] + "..." + s[len(s)-4:]
}

// Sanitize returns a copy of token safe to print
func Sanitize(token *Token) *Token {
	if token == nil {
		return nil
	}
	masked := *token
	masked.AccessToken = Mask(token.AccessToken)
	return &masked
}

var (
	ErrTokenNotFound    = errors.New("access token not found")
	ErrInvalidToken     = errors.New("invalid access token")
	ErrStoreUnavailable = errors.New("token store unavailable")
)
