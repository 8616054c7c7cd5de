package auth

import "sync"

// MockStore is an in-memory TokenStore with error injection for tests
type MockStore struct {
	tokens map[string]*Token
	mu     sync.RWMutex

	StoreError    error
	RetrieveError error
	ListError     error
	DeleteError   error
}

// NewMockStore creates an empty MockStore
func NewMockStore() *MockStore {
	return &MockStore{tokens: make(map[string]*Token)}
}

// Store saves a copy of token
func (m *MockStore) Store(token *Token) error {
	if m.StoreError != nil {
		return m.StoreError
	}
	if token == nil || token.Name == "" {
		return ErrInvalidToken
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	tokenCopy := *token
	m.tokens[token.Name] = &tokenCopy
	return nil
}

// Retrieve returns a copy of the token stored under name
func (m *MockStore) Retrieve(name string) (*Token, error) {
	if m.RetrieveError != nil {
		return nil, m.RetrieveError
	}
	if name == "" {
		return nil, ErrInvalidToken
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	token, ok := m.tokens[name]
	if !ok {
		return nil, ErrTokenNotFound
	}
	tokenCopy := *token
	return &tokenCopy, nil
}

// List returns copies of all tokens
func (m *MockStore) List() ([]*Token, error) {
	if m.ListError != nil {
		return nil, m.ListError
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	tokens := make([]*Token, 0, len(m.tokens))
	for _, token := range m.tokens {
		tokenCopy := *token
		tokens = append(tokens, &tokenCopy)
	}
	return tokens, nil
}

// Delete removes the token stored under name
func (m *MockStore) Delete(name string) error {
	if m.DeleteError != nil {
		return m.DeleteError
	}
	if name == "" {
		return ErrInvalidToken
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.tokens[name]; !ok {
		return ErrTokenNotFound
	}
	delete(m.tokens, name)
	return nil
}

// Exists checks if a token is stored under name
func (m *MockStore) Exists(name string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.tokens[name]
	return ok
}

// Count returns the number of stored tokens
func (m *MockStore) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.tokens)
}

// NewMockManager creates a Manager over a single MockStore
func NewMockManager() (*Manager, *MockStore) {
	store := NewMockStore()
	return NewManagerWithStores(store), store
}
