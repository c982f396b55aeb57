package config

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/doeshing/gitflow-ai/assets"
	"github.com/doeshing/gitflow-ai/internal/domain"
	"github.com/doeshing/gitflow-ai/internal/pkg/filesystem"
	"github.com/doeshing/gitflow-ai/internal/ports"
)

// EnvPrefix scopes environment overrides, e.g. GITFLOW_CACHE_TTL=1h.
const EnvPrefix = "GITFLOW"

// FileLoader loads YAML configuration from ~/.gitflow/config.yaml (overridable via GITFLOW_CONFIG).
type FileLoader struct {
	overridePath string
}

// NewFileLoader builds a new loader. An empty path uses GITFLOW_CONFIG or the default location.
func NewFileLoader(path string) *FileLoader {
	return &FileLoader{overridePath: path}
}

// Load implements ports.ConfigProvider. A missing file is created from the
// embedded defaults first.
func (l *FileLoader) Load(context.Context) (domain.Config, error) {
	path := l.Path()
	v := newViper()

	if err := ensureDefaultFile(path); err != nil {
		// Read-only home directories still get a usable configuration.
		if err := v.ReadConfig(bytes.NewReader(assets.DefaultConfigYAML)); err != nil {
			return domain.Config{}, fmt.Errorf("read embedded defaults: %w", err)
		}
	} else {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return domain.Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg domain.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return domain.Config{}, fmt.Errorf("decode config %s: %w", path, err)
	}
	if cfg.Cache.Path != "" {
		cfg.Cache.Path = expandPath(cfg.Cache.Path)
	}
	return cfg, nil
}

// Path returns the file Load reads.
func (l *FileLoader) Path() string {
	if l.overridePath != "" {
		return expandPath(l.overridePath)
	}
	if custom := os.Getenv("GITFLOW_CONFIG"); custom != "" {
		return expandPath(custom)
	}
	return filesystem.AppDir("config.yaml")
}

// Save writes cfg to the config path.
func (l *FileLoader) Save(cfg domain.Config) error {
	raw, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	path := l.Path()
	if err := ensureConfigDir(path); err != nil {
		return err
	}
	return os.WriteFile(path, raw, domain.SecureFilePermissions)
}

// Reset overwrites the config file with the embedded defaults.
func (l *FileLoader) Reset() error {
	path := l.Path()
	if err := ensureConfigDir(path); err != nil {
		return err
	}
	return os.WriteFile(path, assets.DefaultConfigYAML, domain.SecureFilePermissions)
}

// Defaults decodes the embedded default configuration.
func Defaults() (domain.Config, error) {
	var cfg domain.Config
	if err := yaml.Unmarshal(assets.DefaultConfigYAML, &cfg); err != nil {
		return domain.Config{}, err
	}
	return cfg, nil
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("config_format_version", "1")
	v.SetDefault("preferences.output", "text")
	v.SetDefault("preferences.color", "auto")
	v.SetDefault("state.max_recent_commits", domain.DefaultMaxRecentCommits)
	v.SetDefault("state.git_timeout", domain.DefaultGitTimeout.String())
	v.SetDefault("recognizer.confidence_threshold", domain.DefaultConfidenceThreshold)
	v.SetDefault("recognizer.fuzzy_min_token_length", domain.DefaultFuzzyMinTokenLength)
	v.SetDefault("fallback.enabled", false)
	v.SetDefault("fallback.default_model", "")
	v.SetDefault("fallback.timeout", domain.DefaultFallbackTimeout.String())
	v.SetDefault("safety.protected_branches", []string{"main", "master"})
	v.SetDefault("safety.rules_file", "")
	v.SetDefault("cache.max_entries", domain.DefaultMaxCacheEntries)
	v.SetDefault("cache.ttl", domain.DefaultCacheTTL.String())
	v.SetDefault("cache.persistent", true)
	v.SetDefault("cache.path", "")
	v.SetDefault("server.addr", domain.DefaultServerAddr)
	return v
}

func ensureDefaultFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	if err := ensureConfigDir(path); err != nil {
		return err
	}
	return os.WriteFile(path, assets.DefaultConfigYAML, domain.SecureFilePermissions)
}

func ensureConfigDir(path string) error {
	return os.MkdirAll(filepath.Dir(path), domain.DirectoryPermissions)
}

func expandPath(path string) string {
	if expanded, ok := filesystem.ExpandHome(path); ok {
		return expanded
	}
	return filepath.Clean(path)
}

var _ ports.ConfigProvider = (*FileLoader)(nil)
