package cli

import (
	"context"
	"fmt"

	"github.com/deltaneutral/dnfvault/internal/logger"
	"github.com/deltaneutral/dnfvault/pkg/config"
	"github.com/deltaneutral/dnfvault/pkg/discovery"
	"github.com/deltaneutral/dnfvault/pkg/download"
	"github.com/deltaneutral/dnfvault/pkg/vault"
)

// These variables will be set by the main package
var (
	ConfigPath *string
	Verbose    *bool
)

// loadConfig loads the configuration from the --config path or the default
// location and applies CLI-level overrides.
func loadConfig() (*config.Config, error) {
	configPath := ""
	if ConfigPath != nil {
		configPath = *ConfigPath
	}

	if configPath == "" {
		defaultPath, err := config.GetDefaultConfigPath()
		if err != nil {
			return nil, fmt.Errorf("failed to get default config path: %w", err)
		}
		configPath = defaultPath
	}

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if Verbose != nil && *Verbose {
		cfg.Settings.LogLevel = "debug"
	}
	logger.InitLogger(cfg.Settings.LogLevel)

	return cfg, nil
}

// resolveBaseURL returns the API server to talk to. A configured base URL
// pins the server; otherwise endpoint discovery picks the first healthy
// candidate.
func resolveBaseURL(ctx context.Context, cfg *config.Config) (string, error) {
	if cfg.Settings.BaseURL != "" {
		logger.Debug("Using pinned base URL", logger.Fields{"url": cfg.Settings.BaseURL})
		return cfg.Settings.BaseURL, nil
	}

	resolver := discovery.NewResolver(discovery.DefaultProbeTimeout, Version)
	candidates := resolver.Resolve(ctx)
	return resolver.SelectHealthy(ctx, candidates)
}

// connect resolves an endpoint and returns a logged-in vault client.
func connect(ctx context.Context, cfg *config.Config) (*vault.Client, error) {
	if !cfg.HasCredentials() {
		return nil, fmt.Errorf("no credentials configured (set DNFV_EMAIL and DNFV_PASSWORD or edit the config file)")
	}

	baseURL, err := resolveBaseURL(ctx, cfg)
	if err != nil {
		return nil, err
	}
	logger.Info("Connected to vault", logger.Fields{"url": baseURL})

	client := vault.NewClient(baseURL, cfg.Settings.HTTPTimeout, cfg.Settings.DownloadTimeout)
	if err := client.Login(ctx, cfg.Auth.Email, cfg.Auth.Password); err != nil {
		return nil, err
	}
	logger.Debug("Logged in", logger.Fields{"email": cfg.Auth.Email})

	return client, nil
}

// verifyMode maps the config verify string onto the download gate.
func verifyMode(cfg *config.Config) download.VerifyMode {
	switch cfg.Settings.Verify {
	case config.VerifyExistence:
		return download.VerifyExistence
	case config.VerifyChecksum:
		return download.VerifyChecksum
	default:
		return download.VerifySize
	}
}
