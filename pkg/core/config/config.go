// ============================================================================
// SmartScript - Templating engine and script server
// ============================================================================
//
// Package:     config
// Description: TOML configuration for the engine, script server and CLI
// Author:      frle10
// Created:     2026-10-19
// License:     MIT
// ============================================================================

package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	sserror "github.com/frle10/smartscript/foundation/core/error"
	sslog "github.com/frle10/smartscript/foundation/core/log"
)

// EnvConfigPath names the environment variable pointing at the config file
const EnvConfigPath = "SMARTSCRIPT_CONFIG"

// ErrNoConfigFile is returned by LoadFromEnv when no file could be located
var ErrNoConfigFile = errors.New("no config file found")

// Config holds the complete SmartScript configuration
type Config struct {
	General GeneralConfig `toml:"general"`
	Engine  EngineConfig  `toml:"engine"`
	Server  ServerConfig  `toml:"server"`
	Cache   CacheConfig   `toml:"cache"`
	Store   StoreConfig   `toml:"store"`
	Logging LoggingConfig `toml:"logging"`
}

// GeneralConfig holds general settings
type GeneralConfig struct {
	Name        string `toml:"name"`
	Environment string `toml:"environment"`
	DataDir     string `toml:"data_dir"`
}

// EngineConfig configures the template engine facade
type EngineConfig struct {
	// Maximum accepted document length in bytes, 0 keeps the engine default
	MaxDocumentLength int `toml:"max_document_length"`
}

// ServerConfig configures the HTTP script server
type ServerConfig struct {
	Host               string   `toml:"host"`
	Port               int      `toml:"port"`
	ScriptDir          string   `toml:"script_dir"`
	Extension          string   `toml:"extension"`
	IndexScript        string   `toml:"index_script"`
	ReadTimeout        Duration `toml:"read_timeout"`
	WriteTimeout       Duration `toml:"write_timeout"`
	ShutdownTimeout    Duration `toml:"shutdown_timeout"`
	MaxRequestBodySize int      `toml:"max_request_body_size"`

	// Interval of the periodic stats log line, 0 disables it
	StatsInterval Duration `toml:"stats_interval"`
}

// CacheConfig configures the parsed-document cache
type CacheConfig struct {
	MaxItems        int      `toml:"max_items"`
	TTL             Duration `toml:"ttl"`
	CleanupInterval Duration `toml:"cleanup_interval"`
	Watch           bool     `toml:"watch"`
}

// StoreConfig selects where persistent script parameters live
type StoreConfig struct {
	Driver string `toml:"driver"` // memory or sqlite
	Path   string `toml:"path"`
}

// LoggingConfig configures the logger factory
type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
	File   string `toml:"file"`
}

// Duration wraps time.Duration for TOML parsing
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler
func (d *Duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// MarshalText implements encoding.TextMarshaler
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Default returns a configuration with all defaults applied
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load loads configuration from a TOML file
func Load(path string) (*Config, error) {
	// Expand environment variables in path
	path = os.ExpandEnv(path)

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file not found: %s", path)
	}

	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyDefaults()
	cfg.expandEnvVars()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadFromEnv loads configuration from SMARTSCRIPT_CONFIG or the default locations
func LoadFromEnv() (*Config, error) {
	path := os.Getenv(EnvConfigPath)
	if path == "" {
		for _, p := range DefaultPaths() {
			if _, err := os.Stat(p); err == nil {
				path = p
				break
			}
		}
	}

	if path == "" {
		return nil, fmt.Errorf("%w, set %s or create configs/smartscript.toml", ErrNoConfigFile, EnvConfigPath)
	}

	return Load(path)
}

// LoadOrDefault loads path when given, otherwise the environment lookup, and
// falls back to Default when no file exists anywhere.
func LoadOrDefault(path string) (*Config, error) {
	if path != "" {
		return Load(path)
	}
	cfg, err := LoadFromEnv()
	if errors.Is(err, ErrNoConfigFile) {
		return Default(), nil
	}
	return cfg, err
}

// DefaultPaths lists the locations searched by LoadFromEnv, in order
func DefaultPaths() []string {
	return []string{
		"./configs/smartscript.toml",
		"./smartscript.toml",
		filepath.Join(os.Getenv("HOME"), ".config/smartscript/config.toml"),
	}
}

// applyDefaults sets default values for unset fields
func (c *Config) applyDefaults() {
	// General
	if c.General.Name == "" {
		c.General.Name = "smartscript"
	}
	if c.General.Environment == "" {
		c.General.Environment = "development"
	}
	if c.General.DataDir == "" {
		c.General.DataDir = "./data"
	}

	// Server
	if c.Server.Host == "" {
		c.Server.Host = "127.0.0.1"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.ScriptDir == "" {
		c.Server.ScriptDir = "./scripts"
	}
	if c.Server.Extension == "" {
		c.Server.Extension = ".smscr"
	}
	if c.Server.IndexScript == "" {
		c.Server.IndexScript = "index"
	}
	if c.Server.ReadTimeout.Duration == 0 {
		c.Server.ReadTimeout.Duration = 10 * time.Second
	}
	if c.Server.WriteTimeout.Duration == 0 {
		c.Server.WriteTimeout.Duration = 30 * time.Second
	}
	if c.Server.ShutdownTimeout.Duration == 0 {
		c.Server.ShutdownTimeout.Duration = 5 * time.Second
	}
	if c.Server.MaxRequestBodySize == 0 {
		c.Server.MaxRequestBodySize = 1 << 20
	}

	// Cache
	if c.Cache.MaxItems == 0 {
		c.Cache.MaxItems = 256
	}
	if c.Cache.TTL.Duration == 0 {
		c.Cache.TTL.Duration = 10 * time.Minute
	}
	if c.Cache.CleanupInterval.Duration == 0 {
		c.Cache.CleanupInterval.Duration = time.Minute
	}

	// Store
	if c.Store.Driver == "" {
		c.Store.Driver = "memory"
	}
	if c.Store.Path == "" {
		c.Store.Path = filepath.Join(c.General.DataDir, "params.db")
	}

	// Logging
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "json"
	}
}

// expandEnvVars expands environment variables in path fields
func (c *Config) expandEnvVars() {
	c.General.DataDir = os.ExpandEnv(c.General.DataDir)
	c.Server.ScriptDir = os.ExpandEnv(c.Server.ScriptDir)
	c.Store.Path = os.ExpandEnv(c.Store.Path)
	c.Logging.File = os.ExpandEnv(c.Logging.File)
}

// Validate checks value ranges and enumerations
func (c *Config) Validate() error {
	invalid := func(field, format string, args ...interface{}) error {
		return sserror.New(fmt.Sprintf("invalid config %s: "+format, append([]interface{}{field}, args...)...)).
			WithCode(sserror.CodeInvalidConfig).
			WithOperation("config.Validate").
			WithDetail("field", field)
	}

	if c.Engine.MaxDocumentLength < 0 {
		return invalid("engine.max_document_length", "must not be negative, got %d", c.Engine.MaxDocumentLength)
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return invalid("server.port", "must be in 1..65535, got %d", c.Server.Port)
	}
	if !strings.HasPrefix(c.Server.Extension, ".") {
		return invalid("server.extension", "must start with a dot, got %q", c.Server.Extension)
	}
	if strings.ContainsAny(c.Server.IndexScript, `/\`) {
		return invalid("server.index_script", "must be a plain name, got %q", c.Server.IndexScript)
	}
	if c.Server.MaxRequestBodySize < 0 {
		return invalid("server.max_request_body_size", "must not be negative")
	}
	if c.Server.StatsInterval.Duration < 0 {
		return invalid("server.stats_interval", "must not be negative")
	}
	if c.Cache.MaxItems < 0 {
		return invalid("cache.max_items", "must not be negative, got %d", c.Cache.MaxItems)
	}
	switch c.Store.Driver {
	case "memory", "sqlite":
	default:
		return invalid("store.driver", "must be memory or sqlite, got %q", c.Store.Driver)
	}
	if _, err := sslog.ParseLevel(c.Logging.Level); err != nil {
		return invalid("logging.level", "%v", err)
	}
	if _, err := sslog.ParseFormat(c.Logging.Format); err != nil {
		return invalid("logging.format", "%v", err)
	}
	return nil
}

// Address returns the listen address of the script server
func (c *Config) Address() string {
	return net.JoinHostPort(c.Server.Host, strconv.Itoa(c.Server.Port))
}
