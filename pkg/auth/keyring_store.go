package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/zalando/go-keyring"
)

const (
	keyringService = "vkprofiler"
	keyringPrefix  = "vk_token_"
	// go-keyring cannot enumerate entries, so names are tracked here
	keyringIndex = "index"
)

// KeyringStore implements TokenStore using the system keychain
type KeyringStore struct{}

// NewKeyringStore creates a keyring-backed store, failing when no keychain
// is reachable.
func NewKeyringStore() (*KeyringStore, error) {
	testKey := "test_availability"
	if err := keyring.Set(keyringService, testKey, "test"); err != nil {
		return nil, fmt.Errorf("keyring not available: %w", err)
	}
	_ = keyring.Delete(keyringService, testKey)

	return &KeyringStore{}, nil
}

// Store saves the token to the system keychain
func (k *KeyringStore) Store(token *Token) error {
	if token == nil || token.Name == "" {
		return ErrInvalidToken
	}

	data, err := json.Marshal(token)
	if err != nil {
		return fmt.Errorf("failed to marshal token: %w", err)
	}

	if err := keyring.Set(keyringService, keyringPrefix+token.Name, string(data)); err != nil {
		return fmt.Errorf("failed to store in keyring: %w", err)
	}

	names := k.names()
	names[token.Name] = struct{}{}
	return k.saveNames(names)
}

// Retrieve gets a token from the system keychain
func (k *KeyringStore) Retrieve(name string) (*Token, error) {
	if name == "" {
		return nil, ErrInvalidToken
	}

	data, err := keyring.Get(keyringService, keyringPrefix+name)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return nil, ErrTokenNotFound
		}
		return nil, fmt.Errorf("failed to retrieve from keyring: %w", err)
	}

	var token Token
	if err := json.Unmarshal([]byte(data), &token); err != nil {
		return nil, fmt.Errorf("failed to unmarshal token: %w", err)
	}
	return &token, nil
}

// List returns every token named in the keyring index
func (k *KeyringStore) List() ([]*Token, error) {
	names := make([]string, 0)
	for name := range k.names() {
		names = append(names, name)
	}
	sort.Strings(names)

	tokens := make([]*Token, 0, len(names))
	for _, name := range names {
		if token, err := k.Retrieve(name); err == nil {
			tokens = append(tokens, token)
		}
	}
	return tokens, nil
}

// Delete removes a token from the system keychain
func (k *KeyringStore) Delete(name string) error {
	if name == "" {
		return ErrInvalidToken
	}

	if err := keyring.Delete(keyringService, keyringPrefix+name); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return ErrTokenNotFound
		}
		return fmt.Errorf("failed to delete from keyring: %w", err)
	}

	names := k.names()
	delete(names, name)
	return k.saveNames(names)
}

// Exists checks if a token is stored in the keychain
func (k *KeyringStore) Exists(name string) bool {
	if name == "" {
		return false
	}
	_, err := keyring.Get(keyringService, keyringPrefix+name)
	return err == nil
}

func (k *KeyringStore) names() map[string]struct{} {
	names := make(map[string]struct{})

	data, err := keyring.Get(keyringService, keyringIndex)
	if err != nil {
		return names
	}

	var list []string
	if err := json.Unmarshal([]byte(data), &list); err != nil {
		return names
	}
	for _, name := range list {
		names[name] = struct{}{}
	}
	return names
}

func (k *KeyringStore) saveNames(names map[string]struct{}) error {
	list := make([]string, 0, len(names))
	for name := range names {
		list = append(list, name)
	}
	sort.Strings(list)

	data, err := json.Marshal(list)
	if err != nil {
		return fmt.Errorf("failed to marshal keyring index: %w", err)
	}
	if err := keyring.Set(keyringService, keyringIndex, string(data)); err != nil {
		return fmt.Errorf("failed to update keyring index: %w", err)
	}
	return nil
}
