package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/adrg/xdg"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	if config.VK.APIVersion != "5.199" {
		t.Errorf("Expected default api version to be 5.199, got %s", config.VK.APIVersion)
	}

	if config.RateLimit.MaxRetries != 3 {
		t.Errorf("Expected default max retries to be 3, got %d", config.RateLimit.MaxRetries)
	}

	if config.RateLimit.RetryDelay != 500*time.Millisecond {
		t.Errorf("Expected default retry delay to be 500ms, got %v", config.RateLimit.RetryDelay)
	}

	if config.Collector.PostsPageSize != 100 || config.Collector.SubscriptionsPageSize != 200 {
		t.Errorf("Unexpected default page sizes: %+v", config.Collector)
	}

	if config.Collector.SubscriptionsMaxOffset != 1000 || config.Collector.GroupsBatchSize != 500 {
		t.Errorf("Unexpected default collector limits: %+v", config.Collector)
	}

	if config.Profile.MaxFeatures != 500 || config.Profile.StopWords != "russian" {
		t.Errorf("Unexpected default profile config: %+v", config.Profile)
	}

	if err := config.Validate(); err != nil {
		t.Errorf("Default config should validate, got %v", err)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("VKPROFILER_ACCESS_TOKEN", "env-token")
	t.Setenv("VKPROFILER_API_VERSION", "5.131")
	t.Setenv("VKPROFILER_MAX_RETRIES", "5")
	t.Setenv("VKPROFILER_RETRY_DELAY", "2s")
	t.Setenv("VKPROFILER_PAGE_DELAY", "100ms")
	t.Setenv("VKPROFILER_MAX_FEATURES", "1000")
	t.Setenv("VKPROFILER_STOP_WORDS", "english")
	t.Setenv("VKPROFILER_LOG_LEVEL", "debug")

	config := DefaultConfig()
	if err := config.LoadFromEnv(); err != nil {
		t.Fatalf("Failed to load from environment: %v", err)
	}

	if config.VK.AccessToken != "env-token" {
		t.Errorf("Expected access token to be env-token, got %s", config.VK.AccessToken)
	}
	if config.VK.APIVersion != "5.131" {
		t.Errorf("Expected api version to be 5.131, got %s", config.VK.APIVersion)
	}
	if config.RateLimit.MaxRetries != 5 {
		t.Errorf("Expected max retries to be 5, got %d", config.RateLimit.MaxRetries)
	}
	if config.RateLimit.RetryDelay != 2*time.Second {
		t.Errorf("Expected retry delay to be 2s, got %v", config.RateLimit.RetryDelay)
	}
	if config.RateLimit.PageDelay != 100*time.Millisecond {
		t.Errorf("Expected page delay to be 100ms, got %v", config.RateLimit.PageDelay)
	}
	if config.Profile.MaxFeatures != 1000 {
		t.Errorf("Expected max features to be 1000, got %d", config.Profile.MaxFeatures)
	}
	if config.Profile.StopWords != "english" {
		t.Errorf("Expected stop words to be english, got %s", config.Profile.StopWords)
	}
	if config.Logging.Level != "debug" {
		t.Errorf("Expected log level to be debug, got %s", config.Logging.Level)
	}
}

func TestLoadFromEnvInvalidValues(t *testing.T) {
	t.Setenv("VKPROFILER_MAX_RETRIES", "many")
	t.Setenv("VKPROFILER_RETRY_DELAY", "soon")

	config := DefaultConfig()
	if err := config.LoadFromEnv(); err == nil {
		t.Fatal("Expected error for malformed environment values")
	}

	if config.RateLimit.MaxRetries != 3 {
		t.Errorf("Malformed value should leave default in place, got %d", config.RateLimit.MaxRetries)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(c *Config)
		wantError bool
	}{
		{
			name:      "valid config",
			mutate:    func(c *Config) {},
			wantError: false,
		},
		{
			name:      "missing api version",
			mutate:    func(c *Config) { c.VK.APIVersion = "" },
			wantError: true,
		},
		{
			name:      "non http base url",
			mutate:    func(c *Config) { c.VK.BaseURL = "api.vk.com/method" },
			wantError: true,
		},
		{
			name:      "zero retries",
			mutate:    func(c *Config) { c.RateLimit.MaxRetries = 0 },
			wantError: true,
		},
		{
			name:      "posts page above api maximum",
			mutate:    func(c *Config) { c.Collector.PostsPageSize = 101 },
			wantError: true,
		},
		{
			name:      "groups batch above api maximum",
			mutate:    func(c *Config) { c.Collector.GroupsBatchSize = 501 },
			wantError: true,
		},
		{
			name:      "unknown stop words",
			mutate:    func(c *Config) { c.Profile.StopWords = "klingon" },
			wantError: true,
		},
		{
			name:      "invalid log level",
			mutate:    func(c *Config) { c.Logging.Level = "invalid" },
			wantError: true,
		},
		{
			name:      "unlimited vocabulary",
			mutate:    func(c *Config) { c.Profile.MaxFeatures = 0 },
			wantError: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultConfig()
			tt.mutate(config)
			err := config.Validate()
			if (err != nil) != tt.wantError {
				t.Errorf("Validate() error = %v, wantError %v", err, tt.wantError)
			}
		})
	}
}

func TestMergeCommandLineFlags(t *testing.T) {
	config := DefaultConfig()

	flags := map[string]interface{}{
		"access-token": "flag-token",
		"api-version":  "5.150",
		"max-retries":  7,
		"max-features": 250,
		"log-level":    "error",
	}

	config.MergeCommandLineFlags(flags)

	if config.VK.AccessToken != "flag-token" {
		t.Errorf("Expected access token to be flag-token, got %s", config.VK.AccessToken)
	}
	if config.VK.APIVersion != "5.150" {
		t.Errorf("Expected api version to be 5.150, got %s", config.VK.APIVersion)
	}
	if config.RateLimit.MaxRetries != 7 {
		t.Errorf("Expected max retries to be 7, got %d", config.RateLimit.MaxRetries)
	}
	if config.Profile.MaxFeatures != 250 {
		t.Errorf("Expected max features to be 250, got %d", config.Profile.MaxFeatures)
	}
	if config.Logging.Level != "error" {
		t.Errorf("Expected log level to be error, got %s", config.Logging.Level)
	}
}

func TestSaveAndLoadFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "nested", "config.yaml")

	config := DefaultConfig()
	config.VK.AccessToken = "file-token"
	config.RateLimit.PageDelay = 250 * time.Millisecond
	config.Profile.MaxFeatures = 42

	if err := config.Save(configPath); err != nil {
		t.Fatalf("Failed to save config: %v", err)
	}

	info, err := os.Stat(configPath)
	if err != nil {
		t.Fatalf("Saved config missing: %v", err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Errorf("Expected config file mode 0600, got %v", info.Mode().Perm())
	}

	loaded := DefaultConfig()
	if err := loaded.LoadFromFile(configPath); err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if loaded.VK.AccessToken != "file-token" {
		t.Errorf("Expected loaded token to be file-token, got %s", loaded.VK.AccessToken)
	}
	if loaded.RateLimit.PageDelay != 250*time.Millisecond {
		t.Errorf("Expected loaded page delay to be 250ms, got %v", loaded.RateLimit.PageDelay)
	}
	if loaded.Profile.MaxFeatures != 42 {
		t.Errorf("Expected loaded max features to be 42, got %d", loaded.Profile.MaxFeatures)
	}
}

func TestLoadPrecedence(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	content := []byte("vk:\n  access_token: file-token\nprofile:\n  max_features: 100\n")
	if err := os.WriteFile(configPath, content, 0o600); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	t.Setenv("VKPROFILER_ACCESS_TOKEN", "env-token")

	config, err := Load(configPath, map[string]interface{}{"max-features": 300})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if config.VK.AccessToken != "env-token" {
		t.Errorf("Environment should override file, got %s", config.VK.AccessToken)
	}
	if config.Profile.MaxFeatures != 300 {
		t.Errorf("Flags should override file, got %d", config.Profile.MaxFeatures)
	}
	if config.Collector.GroupsBatchSize != 500 {
		t.Errorf("Unset values should keep defaults, got %d", config.Collector.GroupsBatchSize)
	}
}

func TestFindConfigFile(t *testing.T) {
	if got := FindConfigFile("custom.yaml"); got != "custom.yaml" {
		t.Errorf("Explicit path should win, got %q", got)
	}

	configHome := t.TempDir()
	t.Cleanup(xdg.Reload)
	t.Setenv("HOME", t.TempDir())
	t.Setenv("XDG_CONFIG_HOME", configHome)
	xdg.Reload()

	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })

	if got := FindConfigFile(""); got != "" {
		t.Errorf("Expected no config file, got %q", got)
	}

	path := filepath.Join(configHome, AppName, "config.yaml")
	if Dir() != filepath.Dir(path) {
		t.Fatalf("Dir = %q, want %q", Dir(), filepath.Dir(path))
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("profile:\n  max_features: 7\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if got := FindConfigFile(""); got != path {
		t.Errorf("FindConfigFile = %q, want %q", got, path)
	}
}
