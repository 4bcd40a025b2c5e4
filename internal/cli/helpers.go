package cli

import (
	"fmt"

	"github.com/glorpus-work/osploader/internal/logger"
	"github.com/glorpus-work/osploader/pkg/config"
	"github.com/glorpus-work/osploader/pkg/resolver"
)

// These variables will be set by the main package
var (
	ConfigPath  *string
	Verbose     *bool
	LogFormat   *string
	SearchPaths *[]string
)

// loadConfig loads the configuration file and applies the global flags.
func loadConfig() (*config.Config, error) {
	configPath := getConfigPath()
	if configPath == "" {
		return config.DefaultConfig(), nil
	}

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if Verbose != nil && *Verbose {
		cfg.Settings.LogLevel = "debug"
	}
	if LogFormat != nil && *LogFormat != "" {
		cfg.Settings.LogFormat = *LogFormat
	}
	logger.InitLogger(cfg.Settings.LogLevel, logger.ParseOutputFormat(cfg.Settings.LogFormat))
	return cfg, nil
}

// loadResolver builds a resolver from the configuration. Search paths given
// on the command line are registered after the configured ones so they are
// searched first.
func loadResolver() (*resolver.Resolver, *config.Config, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	r := resolver.New(cfg.ResolverConfig())
	if SearchPaths != nil {
		for _, p := range *SearchPaths {
			r.RegisterSearchPath(p)
		}
	}
	return r, cfg, nil
}

func getConfigPath() string {
	if ConfigPath != nil && *ConfigPath != "" {
		return *ConfigPath
	}

	defaultPath, err := config.GetDefaultConfigPath()
	if err != nil {
		logger.Warn("Failed to get default config path, using defaults", logger.Fields{"error": err})
		return ""
	}
	return defaultPath
}
