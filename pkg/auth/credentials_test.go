package auth

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestTokenManager(t *testing.T) {
	manager, mockStore := NewMockManager()

	token := &Token{AccessToken: "  vk1.a.abcdefghijklmnop  "}
	if err := manager.Store(token); err != nil {
		t.Fatalf("Failed to store token: %v", err)
	}
	if token.Name != DefaultName {
		t.Errorf("Name = %q, want %q", token.Name, DefaultName)
	}
	if token.LastModified.IsZero() {
		t.Error("LastModified should be set on store")
	}

	retrieved, err := manager.Retrieve("")
	if err != nil {
		t.Fatalf("Failed to retrieve token: %v", err)
	}
	if retrieved.AccessToken != "vk1.a.abcdefghijklmnop" {
		t.Errorf("AccessToken = %q, want trimmed token", retrieved.AccessToken)
	}

	tokens, err := manager.List()
	if err != nil {
		t.Fatalf("Failed to list tokens: %v", err)
	}
	if len(tokens) != 1 {
		t.Errorf("Expected 1 token, got %d", len(tokens))
	}

	if err := manager.Delete(DefaultName); err != nil {
		t.Errorf("Failed to delete token: %v", err)
	}
	if _, err := manager.Retrieve(DefaultName); !errors.Is(err, ErrTokenNotFound) {
		t.Errorf("Expected ErrTokenNotFound after deletion, got %v", err)
	}
	if mockStore.Count() != 0 {
		t.Errorf("Expected 0 tokens after deletion, got %d", mockStore.Count())
	}
}

func TestManagerRejectsInvalidTokens(t *testing.T) {
	manager, _ := NewMockManager()

	for _, value := range []string{"", "   ", "two words"} {
		err := manager.Store(&Token{AccessToken: value})
		if !errors.Is(err, ErrInvalidToken) {
			t.Errorf("Store(%q) error = %v, want ErrInvalidToken", value, err)
		}
	}
	if err := manager.Store(nil); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Store(nil) error = %v, want ErrInvalidToken", err)
	}
}

func TestManagerFallsBackToNextStore(t *testing.T) {
	broken := NewMockStore()
	broken.StoreError = errors.New("keyring locked")
	working := NewMockStore()

	manager := NewManagerWithStores(broken, working)
	if err := manager.Store(&Token{Name: "work", AccessToken: "token-123456789"}); err != nil {
		t.Fatalf("Store failed: %v", err)
	}
	if !working.Exists("work") {
		t.Error("Token should land in the second store")
	}

	working.StoreError = errors.New("disk full")
	err := manager.Store(&Token{Name: "other", AccessToken: "token-123456789"})
	if err == nil || !strings.Contains(err.Error(), "disk full") {
		t.Errorf("Expected last store error, got %v", err)
	}
}

func TestRetrieveDefaultFallsBackToNewest(t *testing.T) {
	store := NewMockStore()
	manager := NewManagerWithStores(store)

	now := time.Now()
	store.Store(&Token{Name: "old", AccessToken: "old-token-123", LastModified: now.Add(-time.Hour)})
	store.Store(&Token{Name: "new", AccessToken: "new-token-123", LastModified: now})

	token, err := manager.RetrieveDefault()
	if err != nil {
		t.Fatalf("RetrieveDefault failed: %v", err)
	}
	if token.Name != "new" {
		t.Errorf("RetrieveDefault = %q, want newest token", token.Name)
	}

	store.Store(&Token{Name: DefaultName, AccessToken: "default-token", LastModified: now.Add(-2 * time.Hour)})
	token, err = manager.RetrieveDefault()
	if err != nil {
		t.Fatalf("RetrieveDefault failed: %v", err)
	}
	if token.Name != DefaultName {
		t.Errorf("RetrieveDefault = %q, want %q", token.Name, DefaultName)
	}
}

func TestDeleteMissingToken(t *testing.T) {
	manager := NewManagerWithStores(NewMockStore(), NewEnvironmentStore())
	if err := manager.Delete("nobody"); !errors.Is(err, ErrTokenNotFound) {
		t.Errorf("Delete error = %v, want ErrTokenNotFound", err)
	}
}

func TestEncryptedFileStore(t *testing.T) {
	t.Setenv(PassphraseEnv, "test_passphrase_123")
	path := filepath.Join(t.TempDir(), "tokens.enc")

	store, err := NewEncryptedFileStore(path)
	if err != nil {
		t.Fatalf("Failed to create encrypted store: %v", err)
	}

	token := &Token{Name: "research", AccessToken: "vk1.a.secret_value_xyz", UserID: 42}
	if err := store.Store(token); err != nil {
		t.Fatalf("Failed to store token: %v", err)
	}

	retrieved, err := store.Retrieve("research")
	if err != nil {
		t.Fatalf("Failed to retrieve token: %v", err)
	}
	if retrieved.AccessToken != token.AccessToken || retrieved.UserID != 42 {
		t.Errorf("Token mismatch after encryption round trip: %+v", retrieved)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if bytes.Contains(content, []byte("secret_value_xyz")) {
		t.Error("File contains the plaintext token")
	}

	// a second store with the same passphrase reads the same file
	reopened, err := NewEncryptedFileStore(path)
	if err != nil {
		t.Fatal(err)
	}
	if !reopened.Exists("research") {
		t.Error("Token should survive reopening the store")
	}

	if err := store.Delete("research"); err != nil {
		t.Errorf("Failed to delete token: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("File should be removed with the last token")
	}
}

func TestEncryptedFileStoreWrongPassphrase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tokens.enc")

	t.Setenv(PassphraseEnv, "right")
	store, err := NewEncryptedFileStore(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := store.Store(&Token{Name: DefaultName, AccessToken: "abc123456789"}); err != nil {
		t.Fatal(err)
	}

	t.Setenv(PassphraseEnv, "wrong")
	other, err := NewEncryptedFileStore(path)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := other.Retrieve(DefaultName); err == nil || errors.Is(err, ErrTokenNotFound) {
		t.Errorf("Expected a decryption error, got %v", err)
	}
}

func TestEncryptedFileStoreGeneratesPassphrase(t *testing.T) {
	t.Setenv(PassphraseEnv, "")
	dir := t.TempDir()

	if _, err := NewEncryptedFileStore(filepath.Join(dir, "tokens.enc")); err != nil {
		t.Fatal(err)
	}
	info, err := os.Stat(filepath.Join(dir, ".passphrase"))
	if err != nil {
		t.Fatalf("Passphrase file not created: %v", err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Errorf("Passphrase file mode = %v, want 0600", info.Mode().Perm())
	}
}

func TestEnvironmentStore(t *testing.T) {
	t.Setenv(AccessTokenEnv, " env_token_value ")
	store := NewEnvironmentStore()

	token, err := store.Retrieve("")
	if err != nil {
		t.Fatalf("Failed to retrieve from environment: %v", err)
	}
	if token.AccessToken != "env_token_value" || token.Name != DefaultName {
		t.Errorf("Unexpected token: %+v", token)
	}
	if !store.Exists("anything") {
		t.Error("Environment token should exist")
	}
	if err := store.Store(&Token{}); !errors.Is(err, ErrStoreUnavailable) {
		t.Errorf("Store error = %v, want ErrStoreUnavailable", err)
	}

	t.Setenv(AccessTokenEnv, "")
	if _, err := store.Retrieve(""); !errors.Is(err, ErrTokenNotFound) {
		t.Errorf("Retrieve error = %v, want ErrTokenNotFound", err)
	}
}

func TestListPrefersNewestCopy(t *testing.T) {
	a, b := NewMockStore(), NewMockStore()
	now := time.Now()
	a.Store(&Token{Name: "x", AccessToken: "stale-token", LastModified: now.Add(-time.Minute)})
	b.Store(&Token{Name: "x", AccessToken: "fresh-token", LastModified: now})

	tokens, err := NewManagerWithStores(a, b).List()
	if err != nil {
		t.Fatal(err)
	}
	if len(tokens) != 1 || tokens[0].AccessToken != "fresh-token" {
		t.Errorf("List = %+v, want the fresh copy only", tokens)
	}
}

func TestSanitize(t *testing.T) {
	token := &Token{Name: "n", AccessToken: "vk1.a.0123456789abcdef"}
	masked := Sanitize(token)

	if masked.AccessToken != "vk1....cdef" {
		t.Errorf("Masked token = %q", masked.AccessToken)
	}
	if token.AccessToken != "vk1.a.0123456789abcdef" {
		t.Error("Sanitize must not modify the original")
	}
	if Mask("short") != "********" {
		t.Error("Short tokens should be fully masked")
	}
	if Sanitize(nil) != nil {
		t.Error("Sanitize(nil) should be nil")
	}
}

func TestParseToken(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		token   string
		userID  int64
		wantErr bool
	}{
		{"bare token", " abc123def456 ", "abc123def456", 0, false},
		{"redirect url", "https://oauth.vk.com/blank.html#access_token=tok_42&expires_in=0&user_id=1234", "tok_42", 1234, false},
		{"fragment only", "access_token=tok_7&user_id=7", "tok_7", 7, false},
		{"denied", "https://oauth.vk.com/blank.html#error=access_denied&error_description=User+denied&access_token=", "", 0, true},
		{"bad user id", "#access_token=tok&user_id=abc", "", 0, true},
		{"empty", "", "", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseToken(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidToken) {
					t.Errorf("ParseToken error = %v, want ErrInvalidToken", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseToken failed: %v", err)
			}
			if got.AccessToken != tt.token || got.UserID != tt.userID {
				t.Errorf("ParseToken = %+v, want token %q user %d", got, tt.token, tt.userID)
			}
		})
	}
}

func TestAuthorizeURL(t *testing.T) {
	u := AuthorizeURL("51234")
	for _, part := range []string{"client_id=51234", "response_type=token", "scope=wall%2Cgroups%2Coffline", "v=5.199"} {
		if !strings.Contains(u, part) {
			t.Errorf("AuthorizeURL missing %q: %s", part, u)
		}
	}

	var buf bytes.Buffer
	ShowTokenGuide(&buf, "51234")
	if !strings.Contains(buf.String(), u) {
		t.Error("Guide should include the authorization link")
	}
}
