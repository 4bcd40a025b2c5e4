package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glorpus-work/osploader/pkg/download"
	"github.com/glorpus-work/osploader/pkg/errors"
	"github.com/glorpus-work/osploader/pkg/fsutil"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "info", cfg.Settings.LogLevel)
	assert.Equal(t, "text", cfg.Settings.LogFormat)
	assert.Equal(t, 30*time.Second, cfg.Settings.HTTPTimeout)
	assert.Equal(t, 20, cfg.Settings.MaxSearchPaths)
	assert.Equal(t, download.DefaultProbeURL, cfg.Settings.ProbeURL)
	assert.False(t, cfg.Settings.ResourceCache)
	require.NoError(t, cfg.Validate())
}

func TestLoadConfig(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "config.yaml")

	configContent := `settings:
  cache_dir: /var/cache/osp
  resource_cache: true
  search_paths:
    - /opt/models
    - /opt/shared
  extract_extensions: [.pdf, .html]
  document_base: http://www.example.org/sims/index.html
  log_level: debug`

	err := os.WriteFile(configPath, []byte(configContent), fsutil.FileModeDefault)
	require.NoError(t, err)

	cfg, err := LoadConfig(configPath)
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "/var/cache/osp", cfg.Settings.CacheDir)
	assert.True(t, cfg.Settings.ResourceCache)
	assert.Equal(t, []string{"/opt/models", "/opt/shared"}, cfg.Settings.SearchPaths)
	assert.Equal(t, []string{".pdf", ".html"}, cfg.Settings.ExtractExtensions)
	assert.Equal(t, "debug", cfg.Settings.LogLevel)
	// Defaults fill what the file leaves out.
	assert.Equal(t, 20, cfg.Settings.MaxSearchPaths)
	assert.Equal(t, DefaultHTTPTimeout, cfg.Settings.HTTPTimeout)
	assert.Equal(t, "text", cfg.Settings.LogFormat)
}

func TestLoadConfig_Errors(t *testing.T) {
	_, err := LoadConfig("")
	require.ErrorIs(t, err, errors.ErrEmptyConfigPath)

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)

	_, err = LoadConfigFromReader(strings.NewReader("settings: [not, a, map"))
	require.ErrorIs(t, err, errors.ErrConfigParse)

	_, err = LoadConfigFromReader(strings.NewReader("settings:\n  log_level: loud\n"))
	require.ErrorIs(t, err, errors.ErrConfigValidation)
}

func TestSaveConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Settings.LogLevel = "debug"
	cfg.Settings.SearchPaths = []string{"/opt/models"}

	configPath := filepath.Join(t.TempDir(), "nested", "test-config.yaml")

	require.NoError(t, cfg.SaveConfig(configPath))

	info, err := os.Stat(configPath)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
	assert.NoFileExists(t, configPath+".tmp")

	loadedCfg, err := LoadConfig(configPath)
	require.NoError(t, err)
	assert.Equal(t, cfg, loadedCfg)

	require.ErrorIs(t, cfg.SaveConfig(""), errors.ErrEmptyConfigPath)
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Settings)
		wantErr bool
		errMsg  string
	}{
		{
			name:   "valid config",
			modify: func(*Settings) {},
		},
		{
			name:    "negative timeout",
			modify:  func(s *Settings) { s.HTTPTimeout = -time.Second },
			wantErr: true,
			errMsg:  "http_timeout",
		},
		{
			name:    "negative search path limit",
			modify:  func(s *Settings) { s.MaxSearchPaths = -1 },
			wantErr: true,
			errMsg:  "max_search_paths",
		},
		{
			name:    "relative document base",
			modify:  func(s *Settings) { s.DocumentBase = "sims/index.html" },
			wantErr: true,
			errMsg:  "document_base",
		},
		{
			name:    "bad extension",
			modify:  func(s *Settings) { s.ExtractExtensions = []string{"."} },
			wantErr: true,
			errMsg:  "extract extension",
		},
		{
			name:    "invalid log format",
			modify:  func(s *Settings) { s.LogFormat = "xml" },
			wantErr: true,
			errMsg:  "log_format",
		},
		{
			name:    "invalid log level",
			modify:  func(s *Settings) { s.LogLevel = "trace" },
			wantErr: true,
			errMsg:  "log_level",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(&cfg.Settings)
			err := cfg.Validate()
			if tt.wantErr {
				require.ErrorIs(t, err, errors.ErrConfigValidation)
				assert.Contains(t, err.Error(), tt.errMsg)
			} else {
				require.NoError(t, err)
			}
		})
	}

	var nilCfg *Config
	require.ErrorIs(t, nilCfg.Validate(), errors.ErrConfigValidation)
}

func TestSetAndGetValue(t *testing.T) {
	tests := []struct {
		key      string
		value    string
		expected string
	}{
		{key: "cache_dir", value: "/tmp/osp", expected: "/tmp/osp"},
		{key: "resource_cache", value: "true", expected: "true"},
		{key: "max_search_paths", value: "5", expected: "5"},
		{key: "search_paths", value: "/a, /b,,", expected: "/a,/b"},
		{key: "extract_extensions", value: ".pdf", expected: ".pdf"},
		{key: "http_timeout", value: "5s", expected: "5s"},
		{key: "log_format", value: "json", expected: "json"},
		{key: "document_base", value: "http://h.org/a/index.html", expected: "http://h.org/a/index.html"},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			cfg := DefaultConfig()
			require.NoError(t, cfg.SetValue(tt.key, tt.value))
			got, err := cfg.GetValue(tt.key)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestSetValue_Errors(t *testing.T) {
	cfg := DefaultConfig()

	require.ErrorIs(t, cfg.SetValue("repositories", "x"), errors.ErrUnknownConfigKey)
	require.Error(t, cfg.SetValue("resource_cache", "maybe"))
	require.Error(t, cfg.SetValue("max_search_paths", "many"))
	require.Error(t, cfg.SetValue("http_timeout", "soon"))
	require.ErrorIs(t, cfg.SetValue("log_level", "loud"), errors.ErrConfigValidation)

	_, err := cfg.GetValue("repositories")
	require.ErrorIs(t, err, errors.ErrUnknownConfigKey)
}

func TestKeys(t *testing.T) {
	keys := DefaultConfig().Keys()
	assert.Contains(t, keys, "cache_dir")
	assert.Contains(t, keys, "search_paths")
	assert.IsIncreasing(t, keys)
}

func TestResolverConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Settings.CacheDir = "/var/cache/osp"
	cfg.Settings.ResourceCache = true
	cfg.Settings.SearchPaths = []string{"/opt/models"}
	cfg.Settings.ExtractExtensions = []string{".pdf"}
	cfg.Settings.DocumentBase = "http://h.org/doc/index.html"
	cfg.Settings.LaunchArchive = "/opt/app.jar"

	rc := cfg.ResolverConfig()
	assert.Equal(t, "/var/cache/osp", rc.CacheRoot)
	assert.True(t, rc.ResourceCache)
	assert.Equal(t, 20, rc.MaxSearchPaths)
	assert.Equal(t, []string{"/opt/models"}, rc.SearchPaths)
	assert.Equal(t, []string{".pdf"}, rc.ExtractExtensions)
	assert.Equal(t, "http://h.org/doc/index.html", rc.DocumentBase)
	assert.Equal(t, "/opt/app.jar", rc.LaunchArchive)
	assert.Equal(t, download.DefaultUserAgent, rc.UserAgent)
	assert.Equal(t, DefaultHTTPTimeout, rc.HTTPTimeout)

	cfg.Settings.ExtractExtensions[0] = ".html"
	assert.Equal(t, []string{".pdf"}, rc.ExtractExtensions, "the mapping copies slices")
}

func TestGetDefaultConfigPath(t *testing.T) {
	path, err := GetDefaultConfigPath()
	if err != nil {
		t.Skipf("no user config directory: %v", err)
	}
	assert.Equal(t, "config.yaml", filepath.Base(path))
	assert.Equal(t, fsutil.AppName, filepath.Base(filepath.Dir(path)))
}
