package config

import (
	"bytes"
	"io"
	"os"
	"sort"

	"github.com/BurntSushi/toml"

	errs "github.com/matzehuels/cpanmap/pkg/errors"
)

// fileLayout mirrors Config with durations as strings so that the written
// file reads "15s" rather than nanoseconds.
type fileLayout struct {
	DataFile string `toml:"data_file"`
	Strict   bool   `toml:"strict"`
	Verbose  bool   `toml:"verbose"`
	Registry struct {
		BaseURL    string `toml:"base_url"`
		UserAgent  string `toml:"user_agent"`
		Timeout    string `toml:"timeout"`
		CacheTTL   string `toml:"cache_ttl"`
		Workers    int    `toml:"workers"`
		RDepsLimit int    `toml:"rdeps_limit"`
	} `toml:"registry"`
	Cache struct {
		Backend    string `toml:"backend"`
		Dir        string `toml:"dir"`
		URL        string `toml:"url"`
		Database   string `toml:"database"`
		Collection string `toml:"collection"`
		Prefix     string `toml:"prefix"`
	} `toml:"cache"`
	Server struct {
		Addr     string `toml:"addr"`
		Watch    bool   `toml:"watch"`
		Debounce string `toml:"debounce"`
	} `toml:"server"`
}

func layoutOf(c Config) fileLayout {
	var f fileLayout
	f.DataFile, f.Strict, f.Verbose = c.DataFile, c.Strict, c.Verbose

	f.Registry.BaseURL = c.Registry.BaseURL
	f.Registry.UserAgent = c.Registry.UserAgent
	f.Registry.Timeout = c.Registry.Timeout.String()
	f.Registry.CacheTTL = c.Registry.CacheTTL.String()
	f.Registry.Workers = c.Registry.Workers
	f.Registry.RDepsLimit = c.Registry.RDepsLimit

	f.Cache.Backend = c.Cache.Backend
	f.Cache.Dir = c.Cache.Dir
	f.Cache.URL = c.Cache.URL
	f.Cache.Database = c.Cache.Database
	f.Cache.Collection = c.Cache.Collection
	f.Cache.Prefix = c.Cache.Prefix

	f.Server.Addr = c.Server.Addr
	f.Server.Watch = c.Server.Watch
	f.Server.Debounce = c.Server.Debounce.String()
	return f
}

// Encode writes c as TOML.
func Encode(w io.Writer, c Config) error {
	return toml.NewEncoder(w).Encode(layoutOf(c))
}

// WriteDefault writes the default configuration to path. An existing file
// is only replaced when force is set.
func WriteDefault(path string, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return errs.New(errs.ErrCodeInvalidPath, "%s already exists (use --force to overwrite)", path)
	}
	var buf bytes.Buffer
	buf.WriteString("# cpanmap configuration\n# Environment variables CPANMAP_<SECTION>_<KEY> override these values.\n\n")
	if err := Encode(&buf, Default()); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}

// Check parses the config file at path and returns keys it does not
// recognise, sorted.
func Check(path string) ([]string, error) {
	var f fileLayout
	md, err := toml.DecodeFile(path, &f)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errs.Wrap(errs.ErrCodeFileNotFound, err, "config file %s", path)
		}
		return nil, errs.Wrap(errs.ErrCodeInvalidFormat, err, "parse %s", path)
	}
	var unknown []string
	for _, key := range md.Undecoded() {
		unknown = append(unknown, key.String())
	}
	sort.Strings(unknown)
	return unknown, nil
}
