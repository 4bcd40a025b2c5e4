// Package config provides configuration management for osploader.
// It loads, validates and saves the YAML settings file and maps the
// settings onto resolver construction options.
package config

import (
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/glorpus-work/osploader/pkg/cache"
	"github.com/glorpus-work/osploader/pkg/download"
	"github.com/glorpus-work/osploader/pkg/errors"
	"github.com/glorpus-work/osploader/pkg/fsutil"
	"github.com/glorpus-work/osploader/pkg/resolver"
	"github.com/glorpus-work/osploader/pkg/searchpath"
)

// Config represents the application configuration.
type Config struct {
	Settings Settings `yaml:"settings"`
}

// Settings represents the loader settings.
type Settings struct {
	// Cache settings
	CacheDir      string `yaml:"cache_dir,omitempty"`
	ResourceCache bool   `yaml:"resource_cache"`

	// Lookup settings
	MaxSearchPaths    int      `yaml:"max_search_paths"`
	SearchPaths       []string `yaml:"search_paths,omitempty"`
	ExtractExtensions []string `yaml:"extract_extensions,omitempty"`
	LaunchArchive     string   `yaml:"launch_archive,omitempty"`

	// Host bases for relative URL lookups
	DocumentBase string `yaml:"document_base,omitempty"`
	CodeBase     string `yaml:"code_base,omitempty"`

	// Network settings
	ProbeURL    string        `yaml:"probe_url"`
	UserAgent   string        `yaml:"user_agent"`
	HTTPTimeout time.Duration `yaml:"http_timeout"`

	// Output settings
	LogLevel  string `yaml:"log_level"`  // debug, info, warn, error
	LogFormat string `yaml:"log_format"` // text, json
}

// Default configuration values.
const (
	// DefaultHTTPTimeout is the default timeout for HTTP requests.
	DefaultHTTPTimeout = 30 * time.Second

	// YAMLIndent is the number of spaces to use for YAML indentation.
	YAMLIndent = 2
)

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Settings: Settings{
			MaxSearchPaths: searchpath.DefaultMax,
			ProbeURL:       download.DefaultProbeURL,
			UserAgent:      download.DefaultUserAgent,
			HTTPTimeout:    DefaultHTTPTimeout,
			LogLevel:       "info",
			LogFormat:      "text",
		},
	}
}

// LoadConfig loads configuration from a file. A missing file yields the defaults.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, errors.ErrEmptyConfigPath
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrInvalidConfigPath, err.Error())
	}

	file, err := os.Open(absPath)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, errors.Wrapf(err, "failed to open config file: %s", path)
	}
	defer func() { _ = file.Close() }()

	return LoadConfigFromReader(file)
}

// LoadConfigFromReader loads configuration from an io.Reader.
func LoadConfigFromReader(reader io.Reader) (*Config, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read config data")
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrConfigParse, err)
	}

	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// SaveConfig writes the configuration through a temporary file and renames it into place.
func (c *Config) SaveConfig(path string) error {
	if path == "" {
		return errors.ErrEmptyConfigPath
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return errors.Wrap(errors.ErrInvalidConfigPath, err.Error())
	}

	if err := os.MkdirAll(filepath.Dir(absPath), fsutil.DirModeDefault); err != nil {
		return fmt.Errorf("%w: %v", errors.ErrConfigDirectory, err)
	}

	tempPath := absPath + ".tmp"
	file, err := os.OpenFile(tempPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, fsutil.FileModeDefault)
	if err != nil {
		return fmt.Errorf("%w: %v", errors.ErrConfigFileCreate, err)
	}

	encoder := yaml.NewEncoder(file)
	encoder.SetIndent(YAMLIndent)

	if err := encoder.Encode(c); err != nil {
		_ = file.Close()
		_ = os.Remove(tempPath)
		return fmt.Errorf("%w: %v", errors.ErrConfigEncode, err)
	}

	_ = encoder.Close()
	_ = file.Close()

	if err := os.Rename(tempPath, absPath); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("%w: %v", errors.ErrConfigFileRename, err)
	}

	if err := os.Chmod(absPath, fsutil.FileModeDefault); err != nil {
		return fmt.Errorf("%w: %v", errors.ErrConfigFileChmod, err)
	}
	return nil
}

// ToYAML converts the config to YAML bytes.
func (c *Config) ToYAML() ([]byte, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrConfigMarshal, err)
	}
	return data, nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c == nil {
		return errors.ErrConfigValidation
	}
	if err := validateSettings(c.Settings); err != nil {
		return fmt.Errorf("%w: %v", errors.ErrConfigValidation, err)
	}
	return nil
}

func validateSettings(s Settings) error {
	if s.HTTPTimeout < 0 {
		return fmt.Errorf("http_timeout cannot be negative")
	}
	if s.MaxSearchPaths < 0 {
		return fmt.Errorf("max_search_paths cannot be negative")
	}
	for _, base := range []struct{ key, value string }{
		{"probe_url", s.ProbeURL},
		{"document_base", s.DocumentBase},
		{"code_base", s.CodeBase},
	} {
		if base.value == "" {
			continue
		}
		if u, err := url.Parse(base.value); err != nil || u.Scheme == "" {
			return fmt.Errorf("%s '%s' is not an absolute URL", base.key, base.value)
		}
	}
	for _, ext := range s.ExtractExtensions {
		if strings.Trim(ext, ".") == "" || strings.ContainsAny(ext, `/\`) {
			return fmt.Errorf("invalid extract extension '%s'", ext)
		}
	}
	validFormats := map[string]bool{"text": true, "json": true}
	if !validFormats[strings.ToLower(s.LogFormat)] {
		return fmt.Errorf("invalid log_format '%s', must be one of: text, json", s.LogFormat)
	}
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(s.LogLevel)] {
		return fmt.Errorf("invalid log_level '%s', must be one of: debug, info, warn, error", s.LogLevel)
	}
	return nil
}

// GetDefaultConfigPath returns the default configuration file path.
func GetDefaultConfigPath() (string, error) {
	configDir, err := fsutil.GetConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user config directory: %w", err)
	}
	return filepath.Join(configDir, "config.yaml"), nil
}

// GetCacheDir returns the cache directory from settings with a leading "~" expanded.
func (c *Config) GetCacheDir() string {
	dir, err := fsutil.ExpandHome(c.Settings.CacheDir)
	if err != nil {
		return c.Settings.CacheDir
	}
	return dir
}

// ResolverConfig maps the settings onto resolver construction options.
// An unset cache directory selects the platform default root.
func (c *Config) ResolverConfig() resolver.Config {
	s := c.Settings
	cacheRoot := c.GetCacheDir()
	if cacheRoot == "" {
		cacheRoot = cache.DefaultRoot()
	}
	searchPaths := make([]string, 0, len(s.SearchPaths))
	for _, p := range s.SearchPaths {
		if expanded, err := fsutil.ExpandHome(p); err == nil {
			p = expanded
		}
		searchPaths = append(searchPaths, p)
	}
	return resolver.Config{
		CacheRoot:         cacheRoot,
		ResourceCache:     s.ResourceCache,
		MaxSearchPaths:    s.MaxSearchPaths,
		SearchPaths:       searchPaths,
		ExtractExtensions: append([]string(nil), s.ExtractExtensions...),
		DocumentBase:      s.DocumentBase,
		CodeBase:          s.CodeBase,
		LaunchArchive:     s.LaunchArchive,
		UserAgent:         s.UserAgent,
		ProbeURL:          s.ProbeURL,
		HTTPTimeout:       s.HTTPTimeout,
	}
}

// applyDefaults fills in missing values with defaults.
func (c *Config) applyDefaults() {
	defaults := DefaultConfig()

	if c.Settings.MaxSearchPaths == 0 {
		c.Settings.MaxSearchPaths = defaults.Settings.MaxSearchPaths
	}
	if c.Settings.ProbeURL == "" {
		c.Settings.ProbeURL = defaults.Settings.ProbeURL
	}
	if c.Settings.UserAgent == "" {
		c.Settings.UserAgent = defaults.Settings.UserAgent
	}
	if c.Settings.HTTPTimeout == 0 {
		c.Settings.HTTPTimeout = defaults.Settings.HTTPTimeout
	}
	if c.Settings.LogLevel == "" {
		c.Settings.LogLevel = defaults.Settings.LogLevel
	}
	if c.Settings.LogFormat == "" {
		c.Settings.LogFormat = defaults.Settings.LogFormat
	}
}
