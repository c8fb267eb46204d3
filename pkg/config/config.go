// Package config holds runtime settings for the cpanmap CLI and server.
//
// Values come from, in increasing priority: built-in defaults, the
// .cpanmap.toml config file, a .env file, CPANMAP_* environment variables,
// and command-line flags bound with [Bind].
package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	errs "github.com/matzehuels/cpanmap/pkg/errors"
)

// EnvPrefix prefixes every environment variable read by the config.
const EnvPrefix = "CPANMAP"

// FileName is the config file looked up in the working and home directory.
const FileName = ".cpanmap.toml"

// RegistryConfig configures the MetaCPAN client.
type RegistryConfig struct {
	BaseURL    string        `mapstructure:"base_url"`
	UserAgent  string        `mapstructure:"user_agent"`
	Timeout    time.Duration `mapstructure:"timeout"`
	CacheTTL   time.Duration `mapstructure:"cache_ttl"`
	Workers    int           `mapstructure:"workers"`
	RDepsLimit int           `mapstructure:"rdeps_limit"`
}

// CacheConfig selects the response cache backend.
type CacheConfig struct {
	Backend    string `mapstructure:"backend"`
	Dir        string `mapstructure:"dir"`
	URL        string `mapstructure:"url"`
	Database   string `mapstructure:"database"`
	Collection string `mapstructure:"collection"`
	Prefix     string `mapstructure:"prefix"`
}

// ServerConfig configures `cpanmap serve`.
type ServerConfig struct {
	Addr     string        `mapstructure:"addr"`
	Watch    bool          `mapstructure:"watch"`
	Debounce time.Duration `mapstructure:"debounce"`
}

// Config holds all runtime configuration.
type Config struct {
	DataFile string         `mapstructure:"data_file"`
	Strict   bool           `mapstructure:"strict"`
	Verbose  bool           `mapstructure:"verbose"`
	Registry RegistryConfig `mapstructure:"registry"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Server   ServerConfig   `mapstructure:"server"`
}

var defaults = map[string]any{
	"data_file":            "cpan-map-data.txt",
	"strict":               false,
	"verbose":              false,
	"registry.base_url":    "https://fastapi.metacpan.org/v1",
	"registry.user_agent":  "", // buildinfo.UserAgent() when empty
	"registry.timeout":     15 * time.Second,
	"registry.cache_ttl":   24 * time.Hour,
	"registry.workers":     8,
	"registry.rdeps_limit": 5000,
	"cache.backend":        "file",
	"cache.dir":            "",
	"cache.url":            "",
	"cache.database":       "cpanmap",
	"cache.collection":     "http_cache",
	"cache.prefix":         "cpanmap:",
	"server.addr":          ":8080",
	"server.watch":         true,
	"server.debounce":      500 * time.Millisecond,
}

// New returns a viper instance with defaults and environment binding set
// up. CPANMAP_REGISTRY_TIMEOUT maps to registry.timeout, and so on.
func New() *viper.Viper {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Bind binds command-line flags to config keys. keys maps a config key to
// a flag name; flags that do not exist are skipped.
func Bind(v *viper.Viper, flags *pflag.FlagSet, keys map[string]string) error {
	for key, name := range keys {
		f := flags.Lookup(name)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return err
		}
	}
	return nil
}

// Load reads .env and the config file into v and decodes the result. An
// explicit file must exist; otherwise a missing config file is not an
// error and defaults apply.
func Load(v *viper.Viper, file string) (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, errs.Wrap(errs.ErrCodeInvalidInput, err, "read .env")
	}

	if file != "" {
		v.SetConfigFile(file)
		v.SetConfigType("toml")
	} else {
		v.SetConfigName(strings.TrimSuffix(FileName, filepath.Ext(FileName)))
		v.SetConfigType("toml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		missing := errors.As(err, &notFound) || os.IsNotExist(err)
		switch {
		case missing && file == "":
		case missing:
			return Config{}, errs.Wrap(errs.ErrCodeFileNotFound, err, "config file %s", file)
		default:
			return Config{}, errs.Wrap(errs.ErrCodeInvalidInput, err, "read config")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, errs.Wrap(errs.ErrCodeInvalidInput, err, "decode config")
	}
	return cfg, cfg.Validate()
}

// Default returns the built-in configuration.
func Default() Config {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	var cfg Config
	_ = v.Unmarshal(&cfg)
	return cfg
}

// Validate checks values that would only fail later at use.
func (c Config) Validate() error {
	switch strings.ToLower(c.Cache.Backend) {
	case "", "file", "none", "redis", "mongo":
	default:
		return errs.New(errs.ErrCodeInvalidCacheConfig, "unknown cache backend %q", c.Cache.Backend)
	}
	if c.Registry.Timeout < 0 || c.Registry.CacheTTL < 0 {
		return errs.New(errs.ErrCodeInvalidInput, "registry durations must not be negative")
	}
	if c.Registry.Workers < 0 {
		return errs.New(errs.ErrCodeInvalidInput, "registry.workers must not be negative")
	}
	if c.Registry.BaseURL != "" {
		if err := errs.ValidateURL(c.Registry.BaseURL); err != nil {
			return err
		}
	}
	return nil
}

// Used returns the config file that was read, or "".
func Used(v *viper.Viper) string {
	return v.ConfigFileUsed()
}
