package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"vkprofiler/pkg/auth"
	"vkprofiler/pkg/config"
	"vkprofiler/pkg/retry"
	"vkprofiler/pkg/ui"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration files",
	Long: `Manage vkprofiler configuration files.

Configuration is loaded from, in order of priority:
  - Command line flags
  - Environment variables (VKPROFILER_*)
  - .env files (./.env, ~/.vkprofiler.env)
  - Configuration file
  - Default values`,
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create an example configuration file",
	Long: `Create an example configuration file with all available options.

The file is created as '.vkprofiler.yaml' in the current directory unless a
different path is given with --config.`,
	RunE: runConfigInit,
}

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long: `Show the effective configuration after merging every source.
The access token is masked.`,
	RunE: runConfigShow,
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration file",
	RunE:  runConfigValidate,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(initCmd)
	configCmd.AddCommand(showCmd)
	configCmd.AddCommand(validateCmd)
}

const exampleConfig = `# vkprofiler configuration file
#
# Every option can also be set through environment variables prefixed with
# VKPROFILER_, for example VKPROFILER_ACCESS_TOKEN or VKPROFILER_LOG_LEVEL.

vk:
  # User access token. Prefer 'vkprofiler auth login' over storing it here.
  access_token: ""
  api_version: "5.199"
  base_url: "https://api.vk.com/method"
  timeout: 30s

rate_limit:
  # Attempts per request; the wait after attempt n is retry_delay * n
  max_retries: 3
  retry_delay: 500ms
  # Pause between pages of the same listing
  page_delay: 500ms
  # VK allows 3 requests per second for user tokens; 0 disables the limiter
  requests_per_second: 3

collector:
  # wall.get returns at most 100 posts per page
  posts_page_size: 100
  # users.getSubscriptions returns at most 200 groups per page
  subscriptions_page_size: 200
  # Stop paging subscriptions once the offset exceeds this value
  subscriptions_max_offset: 1000
  # groups.getById accepts at most 500 ids
  groups_batch_size: 500

profile:
  # Vocabulary size cap; 0 keeps every term
  max_features: 500
  # Stop word list: russian, english, none
  stop_words: "russian"

logging:
  # Log level: debug, info, warn, error, disabled
  level: "info"
  # Log file path; empty logs to stderr only
  file: ""
`

func runConfigInit(cmd *cobra.Command, args []string) error {
	configPath := configFile
	if configPath == "" {
		configPath = ".vkprofiler.yaml"
	}

	if _, err := os.Stat(configPath); err == nil {
		return fmt.Errorf("configuration file already exists: %s", configPath)
	}

	if dir := filepath.Dir(configPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}
	if err := os.WriteFile(configPath, []byte(exampleConfig), 0o600); err != nil {
		return fmt.Errorf("failed to create configuration file: %w", err)
	}

	ui.PrintSuccess("Configuration file created: " + configPath)
	fmt.Println("\nNext steps:")
	fmt.Println("1. Store an access token with 'vkprofiler auth login'")
	fmt.Println("2. Run 'vkprofiler config validate' to check the configuration")
	fmt.Println("3. Compare users with 'vkprofiler compare <new-user> --reference a,b'")
	return nil
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configFile, nil)
	if err != nil {
		return err
	}

	display := *cfg
	if display.VK.AccessToken != "" {
		display.VK.AccessToken = auth.Mask(display.VK.AccessToken)
	}

	data, err := yaml.Marshal(&display)
	if err != nil {
		return fmt.Errorf("failed to format configuration: %w", err)
	}

	ui.PrintHighlight("Current Configuration")
	fmt.Println()
	fmt.Print(string(data))

	fmt.Println("\nConfiguration sources (in order of priority):")
	fmt.Println("1. Command line flags")
	fmt.Println("2. Environment variables (VKPROFILER_*)")
	fmt.Println("3. .env files")
	if path := config.FindConfigFile(configFile); path != "" {
		fmt.Printf("4. Configuration file: %s\n", path)
	} else {
		fmt.Println("4. Configuration file: (none found)")
	}
	fmt.Println("5. Default values")
	return nil
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	path := config.FindConfigFile(configFile)
	if path == "" {
		return errors.New("no configuration file found; specify one with --config")
	}
	ui.PrintInfo("Validating configuration", path)

	cfg, err := config.Load(path, nil)
	if err != nil {
		return err
	}

	var warnings []string
	if cfg.VK.AccessToken != "" {
		warnings = append(warnings, "access token stored in plain text; consider 'vkprofiler auth login'")
	}
	if cfg.RateLimit.RequestsPerSecond > 3 {
		warnings = append(warnings, "VK allows 3 requests per second for user tokens")
	}
	retryWait := retry.TotalDelay(retry.NewLinearBackoff(cfg.RateLimit.RetryDelay), cfg.RateLimit.MaxRetries)
	if retryWait > time.Minute {
		warnings = append(warnings, fmt.Sprintf("a failing request can wait up to %s before giving up", retryWait))
	}
	if cfg.Logging.File != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.Logging.File), 0o755); err != nil {
			return fmt.Errorf("cannot create log directory: %w", err)
		}
	}

	if len(warnings) > 0 {
		ui.PrintWarning("Configuration warnings:")
		for _, warn := range warnings {
			fmt.Printf("  - %s\n", warn)
		}
		fmt.Println()
	}

	ui.PrintSuccess("Configuration is valid")

	fmt.Println("\nConfiguration summary:")
	fmt.Printf("  API version: %s\n", cfg.VK.APIVersion)
	fmt.Printf("  Max retries: %d (delay %s, at most %s waiting per request)\n", cfg.RateLimit.MaxRetries, cfg.RateLimit.RetryDelay, retryWait)
	fmt.Printf("  Page delay: %s\n", cfg.RateLimit.PageDelay)
	fmt.Printf("  Max features: %d\n", cfg.Profile.MaxFeatures)
	fmt.Printf("  Stop words: %s\n", cfg.Profile.StopWords)
	fmt.Printf("  Log level: %s\n", cfg.Logging.Level)
	return nil
}
