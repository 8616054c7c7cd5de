package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// AppName names the per-user configuration directory
const AppName = "vkprofiler"

// Dir returns the per-user configuration directory following the XDG base
// directory layout: ~/.config/vkprofiler on Linux, the platform equivalent
// elsewhere.
func Dir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Config holds all configuration options for vkprofiler
type Config struct {
	// VK API access
	VK VKConfig `yaml:"vk" json:"vk"`

	// Retry and pacing
	RateLimit RateLimitConfig `yaml:"rate_limit" json:"rate_limit"`

	// Pagination protocol parameters
	Collector CollectorConfig `yaml:"collector" json:"collector"`

	// Text model parameters
	Profile ProfileConfig `yaml:"profile" json:"profile"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// VKConfig holds the API endpoint and credentials
type VKConfig struct {
	AccessToken string        `yaml:"access_token" json:"access_token"`
	APIVersion  string        `yaml:"api_version" json:"api_version"`
	BaseURL     string        `yaml:"base_url" json:"base_url"`
	Timeout     time.Duration `yaml:"timeout" json:"timeout"`
}

// RateLimitConfig holds retry and pacing configuration
type RateLimitConfig struct {
	MaxRetries        int           `yaml:"max_retries" json:"max_retries"`
	RetryDelay        time.Duration `yaml:"retry_delay" json:"retry_delay"`
	PageDelay         time.Duration `yaml:"page_delay" json:"page_delay"`
	RequestsPerSecond int           `yaml:"requests_per_second" json:"requests_per_second"`
}

// CollectorConfig holds the pagination parameters of each VK method
type CollectorConfig struct {
	PostsPageSize          int `yaml:"posts_page_size" json:"posts_page_size"`
	SubscriptionsPageSize  int `yaml:"subscriptions_page_size" json:"subscriptions_page_size"`
	SubscriptionsMaxOffset int `yaml:"subscriptions_max_offset" json:"subscriptions_max_offset"`
	GroupsBatchSize        int `yaml:"groups_batch_size" json:"groups_batch_size"`
}

// ProfileConfig holds the term-weighting model parameters
type ProfileConfig struct {
	MaxFeatures int    `yaml:"max_features" json:"max_features"`
	StopWords   string `yaml:"stop_words" json:"stop_words"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `yaml:"level" json:"level"`
	File  string `yaml:"file" json:"file"`
}

// DefaultConfig returns a Config instance with the values VK expects
func DefaultConfig() *Config {
	return &Config{
		VK: VKConfig{
			APIVersion: "5.199",
			BaseURL:    "https://api.vk.com/method",
			Timeout:    30 * time.Second,
		},
		RateLimit: RateLimitConfig{
			MaxRetries:        3,
			RetryDelay:        500 * time.Millisecond,
			PageDelay:         500 * time.Millisecond,
			RequestsPerSecond: 3,
		},
		Collector: CollectorConfig{
			PostsPageSize:          100,
			SubscriptionsPageSize:  200,
			SubscriptionsMaxOffset: 1000,
			GroupsBatchSize:        500,
		},
		Profile: ProfileConfig{
			MaxFeatures: 500,
			StopWords:   "russian",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// LoadFromEnv loads configuration from environment variables
func (c *Config) LoadFromEnv() error {
	if token := os.Getenv("VKPROFILER_ACCESS_TOKEN"); token != "" {
		c.VK.AccessToken = token
	}
	if version := os.Getenv("VKPROFILER_API_VERSION"); version != "" {
		c.VK.APIVersion = version
	}
	if baseURL := os.Getenv("VKPROFILER_BASE_URL"); baseURL != "" {
		c.VK.BaseURL = baseURL
	}

	var errs []error
	if retries := os.Getenv("VKPROFILER_MAX_RETRIES"); retries != "" {
		val, err := strconv.Atoi(retries)
		if err != nil {
			errs = append(errs, fmt.Errorf("VKPROFILER_MAX_RETRIES: %w", err))
		} else {
			c.RateLimit.MaxRetries = val
		}
	}
	if delay := os.Getenv("VKPROFILER_RETRY_DELAY"); delay != "" {
		val, err := time.ParseDuration(delay)
		if err != nil {
			errs = append(errs, fmt.Errorf("VKPROFILER_RETRY_DELAY: %w", err))
		} else {
			c.RateLimit.RetryDelay = val
		}
	}
	if delay := os.Getenv("VKPROFILER_PAGE_DELAY"); delay != "" {
		val, err := time.ParseDuration(delay)
		if err != nil {
			errs = append(errs, fmt.Errorf("VKPROFILER_PAGE_DELAY: %w", err))
		} else {
			c.RateLimit.PageDelay = val
		}
	}
	if features := os.Getenv("VKPROFILER_MAX_FEATURES"); features != "" {
		val, err := strconv.Atoi(features)
		if err != nil {
			errs = append(errs, fmt.Errorf("VKPROFILER_MAX_FEATURES: %w", err))
		} else {
			c.Profile.MaxFeatures = val
		}
	}
	if stopWords := os.Getenv("VKPROFILER_STOP_WORDS"); stopWords != "" {
		c.Profile.StopWords = stopWords
	}
	if logLevel := os.Getenv("VKPROFILER_LOG_LEVEL"); logLevel != "" {
		c.Logging.Level = logLevel
	}

	return errors.Join(errs...)
}

// LoadFromFile loads configuration from a YAML file
func (c *Config) LoadFromFile(path string) error {
	// If path is empty, try default locations
	if path == "" {
		path = FindConfigFile("")
		if path == "" {
			return nil // No config file found, not an error
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

// FindConfigFile returns explicit when set, otherwise the first config file
// found in the standard locations, or "" when there is none.
func FindConfigFile(explicit string) string {
	if explicit != "" {
		return explicit
	}

	home := os.Getenv("HOME")
	locations := []string{
		".vkprofiler.yaml",
		".vkprofiler.yml",
		filepath.Join(Dir(), "config.yaml"),
		filepath.Join(Dir(), "config.yml"),
		filepath.Join(home, ".vkprofiler.yaml"),
	}

	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}

	return ""
}

// Validate checks if the configuration is valid. The access token is not
// checked here because it may still be resolved from the token store.
func (c *Config) Validate() error {
	var errs []error

	if c.VK.APIVersion == "" {
		errs = append(errs, errors.New("api version is required"))
	}
	if !strings.HasPrefix(c.VK.BaseURL, "http://") && !strings.HasPrefix(c.VK.BaseURL, "https://") {
		errs = append(errs, errors.New("base url must be an http(s) url"))
	}
	if c.VK.Timeout <= 0 {
		errs = append(errs, errors.New("timeout must be positive"))
	}

	if c.RateLimit.MaxRetries <= 0 {
		errs = append(errs, errors.New("max retries must be positive"))
	}
	if c.RateLimit.RetryDelay < 0 {
		errs = append(errs, errors.New("retry delay cannot be negative"))
	}
	if c.RateLimit.PageDelay < 0 {
		errs = append(errs, errors.New("page delay cannot be negative"))
	}

	if c.Collector.PostsPageSize <= 0 || c.Collector.PostsPageSize > 100 {
		errs = append(errs, errors.New("posts page size must be between 1 and 100"))
	}
	if c.Collector.SubscriptionsPageSize <= 0 || c.Collector.SubscriptionsPageSize > 200 {
		errs = append(errs, errors.New("subscriptions page size must be between 1 and 200"))
	}
	if c.Collector.SubscriptionsMaxOffset <= 0 {
		errs = append(errs, errors.New("subscriptions max offset must be positive"))
	}
	if c.Collector.GroupsBatchSize <= 0 || c.Collector.GroupsBatchSize > 500 {
		errs = append(errs, errors.New("groups batch size must be between 1 and 500"))
	}

	validStopWords := map[string]bool{
		"russian": true, "english": true, "none": true,
	}
	if !validStopWords[strings.ToLower(c.Profile.StopWords)] {
		errs = append(errs, fmt.Errorf("unsupported stop word list: %q", c.Profile.StopWords))
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true, "disabled": true,
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, errors.New("invalid log level"))
	}

	return errors.Join(errs...)
}

// Save saves the configuration to a file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// MergeCommandLineFlags merges command line flags into the configuration
func (c *Config) MergeCommandLineFlags(flags map[string]interface{}) {
	if token, ok := flags["access-token"].(string); ok && token != "" {
		c.VK.AccessToken = token
	}
	if version, ok := flags["api-version"].(string); ok && version != "" {
		c.VK.APIVersion = version
	}
	if retries, ok := flags["max-retries"].(int); ok && retries > 0 {
		c.RateLimit.MaxRetries = retries
	}
	if features, ok := flags["max-features"].(int); ok && features > 0 {
		c.Profile.MaxFeatures = features
	}
	if logLevel, ok := flags["log-level"].(string); ok && logLevel != "" {
		c.Logging.Level = logLevel
	}
}

// Load loads configuration from all sources with proper precedence
// Precedence order: Command line flags > Environment variables > .env file > Config file > Defaults
func Load(configPath string, flags map[string]interface{}) (*Config, error) {
	// Missing .env files are fine
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join(os.Getenv("HOME"), ".vkprofiler.env"))

	config := DefaultConfig()

	if err := config.LoadFromFile(configPath); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	if err := config.LoadFromEnv(); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	config.MergeCommandLineFlags(flags)

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}
