package auth

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"golang.org/x/crypto/pbkdf2"
)

// PassphraseEnv overrides the generated passphrase of the encrypted store
const PassphraseEnv = "VKPROFILER_PASSPHRASE"

const (
	saltSize   = 32
	keySize    = 32
	iterations = 100000
	fileFormat = 1
)

// EncryptedFileStore implements TokenStore with an AES-GCM encrypted file.
// The key is derived with PBKDF2 from a passphrase taken from
// VKPROFILER_PASSPHRASE or generated once next to the file.
type EncryptedFileStore struct {
	path       string
	passphrase string
	mu         sync.RWMutex
}

type tokenFile struct {
	Salt      string    `json:"salt"`
	Encrypted string    `json:"encrypted"`
	Version   int       `json:"version"`
	Modified  time.Time `json:"modified"`
}

// NewEncryptedFileStore creates a store persisted at path
func NewEncryptedFileStore(path string) (*EncryptedFileStore, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	passphrase, err := loadPassphrase(filepath.Join(dir, ".passphrase"))
	if err != nil {
		return nil, fmt.Errorf("failed to get passphrase: %w", err)
	}

	return &EncryptedFileStore{path: path, passphrase: passphrase}, nil
}

// Store saves a token to the encrypted file
func (e *EncryptedFileStore) Store(token *Token) error {
	if token == nil || token.Name == "" {
		return ErrInvalidToken
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	tokens, salt, err := e.load()
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to load existing tokens: %w", err)
	}
	if tokens == nil {
		tokens = make(map[string]Token)
	}

	tokens[token.Name] = *token
	return e.save(tokens, salt)
}

// Retrieve gets a token from the encrypted file
func (e *EncryptedFileStore) Retrieve(name string) (*Token, error) {
	if name == "" {
		return nil, ErrInvalidToken
	}

	e.mu.RLock()
	defer e.mu.RUnlock()

	tokens, _, err := e.load()
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrTokenNotFound
		}
		return nil, fmt.Errorf("failed to load tokens: %w", err)
	}

	token, ok := tokens[name]
	if !ok {
		return nil, ErrTokenNotFound
	}
	return &token, nil
}

// List returns all stored tokens ordered by name
func (e *EncryptedFileStore) List() ([]*Token, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	tokens, _, err := e.load()
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []*Token{}, nil
		}
		return nil, fmt.Errorf("failed to load tokens: %w", err)
	}

	list := make([]*Token, 0, len(tokens))
	for _, token := range tokens {
		list = append(list, &token)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	return list, nil
}

// Delete removes a token; the file goes away with the last one
func (e *EncryptedFileStore) Delete(name string) error {
	if name == "" {
		return ErrInvalidToken
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	tokens, salt, err := e.load()
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return ErrTokenNotFound
		}
		return fmt.Errorf("failed to load tokens: %w", err)
	}
	if _, ok := tokens[name]; !ok {
		return ErrTokenNotFound
	}

	delete(tokens, name)
	if len(tokens) == 0 {
		return os.Remove(e.path)
	}
	return e.save(tokens, salt)
}

// Exists checks if a token is stored under name
func (e *EncryptedFileStore) Exists(name string) bool {
	token, err := e.Retrieve(name)
	return err == nil && token != nil
}

func (e *EncryptedFileStore) load() (map[string]Token, []byte, error) {
	content, err := os.ReadFile(e.path)
	if err != nil {
		return nil, nil, err
	}

	var file tokenFile
	if err := json.Unmarshal(content, &file); err != nil {
		return nil, nil, fmt.Errorf("failed to parse file: %w", err)
	}

	salt, err := base64.StdEncoding.DecodeString(file.Salt)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to decode salt: %w", err)
	}
	sealed, err := base64.StdEncoding.DecodeString(file.Encrypted)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to decode encrypted data: %w", err)
	}

	plain, err := decrypt(sealed, e.key(salt))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to decrypt tokens: %w", err)
	}

	var tokens map[string]Token
	if err := json.Unmarshal(plain, &tokens); err != nil {
		return nil, nil, fmt.Errorf("failed to parse tokens: %w", err)
	}
	return tokens, salt, nil
}

func (e *EncryptedFileStore) save(tokens map[string]Token, salt []byte) error {
	if len(salt) == 0 {
		salt = make([]byte, saltSize)
		if _, err := io.ReadFull(rand.Reader, salt); err != nil {
			return fmt.Errorf("failed to generate salt: %w", err)
		}
	}

	plain, err := json.Marshal(tokens)
	if err != nil {
		return fmt.Errorf("failed to marshal tokens: %w", err)
	}

	sealed, err := encrypt(plain, e.key(salt))
	if err != nil {
		return fmt.Errorf("failed to encrypt tokens: %w", err)
	}

	content, err := json.MarshalIndent(tokenFile{
		Salt:      base64.StdEncoding.EncodeToString(salt),
		Encrypted: base64.StdEncoding.EncodeToString(sealed),
		Version:   fileFormat,
		Modified:  time.Now(),
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal file: %w", err)
	}

	tempFile := e.path + ".tmp"
	if err := os.WriteFile(tempFile, content, 0o600); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	return os.Rename(tempFile, e.path)
}

func (e *EncryptedFileStore) key(salt []byte) []byte {
	return pbkdf2.Key([]byte(e.passphrase), salt, iterations, keySize, sha256.New)
}

// loadPassphrase prefers VKPROFILER_PASSPHRASE, then the file at path,
// generating and saving a random one when neither exists.
func loadPassphrase(path string) (string, error) {
	if pass := os.Getenv(PassphraseEnv); pass != "" {
		return pass, nil
	}

	if content, err := os.ReadFile(path); err == nil && len(content) > 0 {
		return string(content), nil
	}

	b := make([]byte, 32)
	if _, err := io.ReadFull(rand.Reader, b); err != nil {
		return "", fmt.Errorf("failed to generate passphrase: %w", err)
	}
	passphrase := base64.URLEncoding.EncodeToString(b)

	if err := os.WriteFile(path, []byte(passphrase), 0o600); err != nil {
		return "", fmt.Errorf("failed to save passphrase: %w", err)
	}
	return passphrase, nil
}

func encrypt(plaintext, key []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}
	return gcm.Seal(nonce, nonce, plaintext, nil), nil
}

func decrypt(ciphertext, key []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	if len(ciphertext) < gcm.NonceSize() {
		return nil, errors.New("ciphertext too short")
	}
	nonce, ciphertext := ciphertext[:gcm.NonceSize()], ciphertext[gcm.NonceSize():]
	return gcm.Open(nil, nonce, ciphertext, nil)
}
