// Package config loads partmatch settings from a YAML file with environment
// overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"

	"github.com/hazyhaar/partmatch/pkg/parts"
)

// EnvPrefix marks environment variables that override file settings:
// PARTMATCH_LIBRARY_DIR -> library.dir, PARTMATCH_SERVER_ADDR -> server.addr.
const EnvPrefix = "PARTMATCH_"

// Config is the full partmatch configuration.
type Config struct {
	Library LibraryConfig `koanf:"library"`
	Extract ExtractConfig `koanf:"extract"`
	Server  ServerConfig  `koanf:"server"`
	Sources SourcesConfig `koanf:"sources"`
}

// LibraryConfig locates and decodes datasheet text files.
type LibraryConfig struct {
	Dir               string `koanf:"dir"`
	Extension         string `koanf:"extension"`
	Workers           int    `koanf:"workers"`
	PrimaryEncoding   string `koanf:"primary_encoding"`
	SecondaryEncoding string `koanf:"secondary_encoding"`
}

// ExtractConfig tunes the extraction engine.
type ExtractConfig struct {
	Verbose      bool          `koanf:"verbose"`
	MatchTimeout time.Duration `koanf:"match_timeout"`
}

// ServerConfig is the HTTP query server. With HTTP3 set the server speaks
// TLS over TCP and HTTP/3 over QUIC on the same port; without a certificate
// pair it falls back to an in-memory self-signed one. MCPQUIC additionally
// exposes the MCP tools on that QUIC listener.
type ServerConfig struct {
	Addr    string `koanf:"addr"`
	TLSCert string `koanf:"tls_cert"`
	TLSKey  string `koanf:"tls_key"`
	HTTP3   bool   `koanf:"http3"`
	MCPQUIC bool   `koanf:"mcp_quic"`
}

// SourcesConfig is the datasheet bundle catalog.
type SourcesConfig struct {
	DB            string        `koanf:"db"`
	Catalog       string        `koanf:"catalog"`
	CheckInterval time.Duration `koanf:"check_interval"`
}

// Default returns the built-in configuration.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

func applyDefaults(cfg *Config) {
	if cfg.Library.Dir == "" {
		cfg.Library.Dir = "Task example files"
	}
	if cfg.Library.Extension == "" {
		cfg.Library.Extension = ".txt"
	}
	if cfg.Library.PrimaryEncoding == "" {
		cfg.Library.PrimaryEncoding = parts.DefaultPrimaryEncoding
	}
	if cfg.Library.SecondaryEncoding == "" {
		cfg.Library.SecondaryEncoding = parts.DefaultSecondaryEncoding
	}
	if cfg.Extract.MatchTimeout == 0 {
		cfg.Extract.MatchTimeout = 2 * time.Second
	}
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8421"
	}
	if cfg.Sources.DB == "" {
		cfg.Sources.DB = "sources.db"
	}
	if cfg.Sources.Catalog == "" {
		cfg.Sources.Catalog = "sources.yaml"
	}
	if cfg.Sources.CheckInterval == 0 {
		cfg.Sources.CheckInterval = 24 * time.Hour
	}
}

// Load reads path (if it exists), applies PARTMATCH_* environment overrides
// and fills defaults. A missing file is not an error; an empty path skips
// the file entirely.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := k.Load(rawbytes.Provider(data), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		case errors.Is(err, os.ErrNotExist):
		default:
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

// envKey maps PARTMATCH_SECTION_FIELD_NAME to section.field_name.
func envKey(s string) string {
	lower := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	section, field, ok := strings.Cut(lower, "_")
	if !ok {
		return lower
	}
	return section + "." + field
}

// Validate checks values that defaults cannot repair.
func (c *Config) Validate() error {
	var errs []error
	if c.Library.Workers < 0 {
		errs = append(errs, fmt.Errorf("library.workers must be >= 0, got %d", c.Library.Workers))
	}
	if !strings.HasPrefix(c.Library.Extension, ".") {
		errs = append(errs, fmt.Errorf("library.extension must start with '.', got %q", c.Library.Extension))
	}
	for _, enc := range c.Encodings() {
		if err := parts.ValidateEncoding(enc); err != nil {
			errs = append(errs, err)
		}
	}
	if c.Extract.MatchTimeout < 0 {
		errs = append(errs, fmt.Errorf("extract.match_timeout must not be negative"))
	}
	if (c.Server.TLSCert == "") != (c.Server.TLSKey == "") {
		errs = append(errs, fmt.Errorf("server.tls_cert and server.tls_key must be set together"))
	}
	if c.Server.MCPQUIC && !c.Server.HTTP3 {
		errs = append(errs, fmt.Errorf("server.mcp_quic requires server.http3"))
	}
	if c.Sources.CheckInterval < 0 {
		errs = append(errs, fmt.Errorf("sources.check_interval must not be negative"))
	}
	return errors.Join(errs...)
}

// Encodings returns the decoding order for datasheet files.
func (c *Config) Encodings() []string {
	return []string{c.Library.PrimaryEncoding, c.Library.SecondaryEncoding}
}
