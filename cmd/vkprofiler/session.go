package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/google/uuid"

	"vkprofiler/pkg/auth"
	"vkprofiler/pkg/config"
	errs "vkprofiler/pkg/errors"
	"vkprofiler/pkg/logger"
	"vkprofiler/pkg/vk"
)

// errNoToken is returned when no access token can be resolved
var errNoToken = errors.New("no VK access token found; run 'vkprofiler auth login' or set VKPROFILER_ACCESS_TOKEN")

// session holds what every network command needs
type session struct {
	cfg    *config.Config
	log    logger.Logger
	client *vk.Client
}

// loadConfig merges flags into the configuration and initializes logging
func loadConfig(flags map[string]interface{}) (*config.Config, error) {
	if flags == nil {
		flags = make(map[string]interface{})
	}
	if logLevel != "" {
		flags["log-level"] = logLevel
	}

	cfg, err := config.Load(configFile, flags)
	if err != nil {
		return nil, err
	}
	if err := logger.Initialize(&cfg.Logging); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return cfg, nil
}

// resolveToken fills cfg.VK.AccessToken from the token store when neither a
// flag, the environment nor the config file supplied one. name selects a
// stored token; empty means the default.
func resolveToken(cfg *config.Config, name string) error {
	if strings.TrimSpace(cfg.VK.AccessToken) != "" && name == "" {
		return nil
	}

	manager, err := auth.NewManager()
	if err != nil {
		return fmt.Errorf("failed to initialize token manager: %w", err)
	}

	var token *auth.Token
	if name != "" {
		token, err = manager.Retrieve(name)
	} else {
		token, err = manager.RetrieveDefault()
	}
	if err != nil {
		if errors.Is(err, auth.ErrTokenNotFound) {
			return errNoToken
		}
		return err
	}

	cfg.VK.AccessToken = token.AccessToken
	logger.WithField("token", token.Name).Debug("Using stored access token")
	return nil
}

// newSession loads configuration, resolves the token and builds the client
func newSession(flags map[string]interface{}, tokenName string) (*session, error) {
	cfg, err := loadConfig(flags)
	if err != nil {
		return nil, err
	}
	// an explicit --access-token beats any stored token
	if _, ok := flags["access-token"]; ok {
		tokenName = ""
	}
	if err := resolveToken(cfg, tokenName); err != nil {
		return nil, err
	}

	log := logger.GetLogger().WithFields(map[string]interface{}{
		"version": version,
		"run_id":  uuid.NewString(),
	})
	return &session{
		cfg:    cfg,
		log:    log,
		client: vk.NewClient(cfg.VK, cfg.RateLimit, log),
	}, nil
}

// interruptContext is cancelled on SIGINT or SIGTERM
func interruptContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// errorHint suggests a next step for the VK errors a user can act on
func errorHint(err error) string {
	apiErr, ok := errs.AsAPIError(err)
	if !ok {
		return ""
	}
	switch {
	case apiErr.Code == errs.CodeAuthorizationFailed:
		return "the access token was rejected; run 'vkprofiler auth login' to store a new one"
	case apiErr.Code == errs.CodeAccessDenied:
		return "the profile or wall is private"
	case apiErr.IsExhausted():
		return "VK kept rejecting requests; try again later or raise --max-retries"
	}
	return ""
}
