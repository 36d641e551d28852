// Package config loads promptdrafter settings from promptdrafter.yaml or a
// config.json (comments allowed), then applies PROMPTDRAFTER_* environment
// overrides.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/aretw0/promptdrafter/internal/logging"
	"github.com/aretw0/promptdrafter/pkg/debounce"
	"github.com/aretw0/promptdrafter/pkg/domain"
	"github.com/mitchellh/mapstructure"
	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
)

// Storage backends.
const (
	BackendFile   = "file"
	BackendMemory = "memory"
	BackendRedis  = "redis"
	BackendSQLite = "sqlite"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "PROMPTDRAFTER_"

// DefaultFiles are searched, in order, when no path is given.
var DefaultFiles = []string{"promptdrafter.yaml", "promptdrafter.yml", "config.json"}

// Settings mirrors the editor-facing preferences.
type Settings struct {
	AutoSave            bool   `mapstructure:"auto_save" json:"auto_save"`
	DefaultWildcardMode string `mapstructure:"default_wildcard_mode" json:"default_wildcard_mode"`
}

// Server configures the HTTP API.
type Server struct {
	Port    int  `mapstructure:"port" json:"port"`
	Metrics bool `mapstructure:"metrics" json:"metrics"`
}

// Storage selects and configures the library backend.
type Storage struct {
	Backend       string `mapstructure:"backend" json:"backend"`
	RedisAddr     string `mapstructure:"redis_addr" json:"redis_addr"`
	RedisPassword string `mapstructure:"redis_password" json:"-"`
	RedisDB       int    `mapstructure:"redis_db" json:"redis_db"`
	RedisPrefix   string `mapstructure:"redis_prefix" json:"redis_prefix"`
	SQLitePath    string `mapstructure:"sqlite_path" json:"sqlite_path"`
	TTL           string `mapstructure:"ttl" json:"ttl"`
}

// Editor configures the host adapter.
type Editor struct {
	Debounce string `mapstructure:"debounce" json:"debounce"`
}

// Config is the full configuration.
type Config struct {
	// Root is the directory relative paths are resolved against: the
	// directory of the loaded file, or the working directory.
	Root string `mapstructure:"-" json:"root"`

	// Source is the file the configuration was read from, if any.
	Source string `mapstructure:"-" json:"source,omitempty"`

	SavePaths map[string]string `mapstructure:"save_paths" json:"save_paths"`
	Settings  Settings          `mapstructure:"settings" json:"settings"`
	Server    Server            `mapstructure:"server" json:"server"`
	Storage   Storage           `mapstructure:"storage" json:"storage"`
	Editor    Editor            `mapstructure:"editor" json:"editor"`
	LogLevel  string            `mapstructure:"log_level" json:"log_level"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		Root: ".",
		SavePaths: map[string]string{
			string(domain.CategoryDual):     "saved/dual_prompts",
			string(domain.CategorySingle):   "saved/single_prompts",
			string(domain.CategoryWildcard): "saved/wildcards",
		},
		Settings: Settings{DefaultWildcardMode: string(domain.ModeRandom)},
		Server:   Server{Port: 8080},
		Storage: Storage{
			Backend:     BackendFile,
			RedisAddr:   "localhost:6379",
			RedisPrefix: "promptdrafter:",
			SQLitePath:  "saved/library.db",
		},
		Editor:   Editor{Debounce: debounce.DefaultDelay.String()},
		LogLevel: "info",
	}
}

// Load reads path, or the first of DefaultFiles found in the working
// directory when path is empty. With no file at all the defaults apply.
// Environment overrides are applied last and the result is validated.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		for _, candidate := range DefaultFiles {
			if _, err := os.Stat(candidate); err == nil {
				path = candidate
				break
			}
		}
	}

	if path != "" {
		if err := cfg.readFile(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) readFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config: %w", err)
	}

	raw, err := Parse(path, data)
	if err != nil {
		return err
	}
	if err := c.Decode(raw); err != nil {
		return fmt.Errorf("invalid config %s: %w", path, err)
	}

	c.Source = path
	c.Root = filepath.Dir(path)
	return nil
}

// Parse turns file contents into a generic map. Files ending in .json or
// .jsonc may carry comments and trailing commas; anything else is YAML.
func Parse(path string, data []byte) (map[string]interface{}, error) {
	raw := map[string]interface{}{}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".jsonc":
		if err := json.Unmarshal(jsonc.ToJSON(data), &raw); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	default:
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	}
	return raw, nil
}

// Decode merges a generic map into the configuration. Keys that are absent
// keep their current values.
func (c *Config) Decode(raw map[string]interface{}) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           c,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
	})
	if err != nil {
		return err
	}
	return decoder.Decode(raw)
}

// ApplyEnv overrides settings from PROMPTDRAFTER_* variables.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvPrefix + "STORAGE_BACKEND"); ok {
		c.Storage.Backend = v
	}
	if v, ok := lookup(EnvPrefix + "REDIS_ADDR"); ok {
		c.Storage.RedisAddr = v
	}
	if v, ok := lookup(EnvPrefix + "REDIS_PASSWORD"); ok {
		c.Storage.RedisPassword = v
	}
	if v, ok := lookup(EnvPrefix + "SQLITE_PATH"); ok {
		c.Storage.SQLitePath = v
	}
	if v, ok := lookup(EnvPrefix + "LOG_LEVEL"); ok {
		c.LogLevel = v
	}
	if v, ok := lookup(EnvPrefix + "PORT"); ok {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%sPORT: %w", EnvPrefix, err)
		}
		c.Server.Port = port
	}
	return nil
}

// Validate checks every enumerated and duration setting.
func (c *Config) Validate() error {
	var errs []error

	switch c.Storage.Backend {
	case BackendFile, BackendMemory, BackendRedis, BackendSQLite:
	default:
		errs = append(errs, fmt.Errorf("storage.backend: unknown backend %q", c.Storage.Backend))
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port: %d out of range", c.Server.Port))
	}
	if _, err := time.ParseDuration(c.Editor.Debounce); err != nil {
		errs = append(errs, fmt.Errorf("editor.debounce: %w", err))
	}
	if c.Storage.TTL != "" {
		if _, err := time.ParseDuration(c.Storage.TTL); err != nil {
			errs = append(errs, fmt.Errorf("storage.ttl: %w", err))
		}
	}
	if _, err := domain.ParseOutputMode(c.Settings.DefaultWildcardMode); err != nil {
		errs = append(errs, fmt.Errorf("settings.default_wildcard_mode: %w", err))
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, fmt.Errorf("log_level: %w", err))
	}
	for key := range c.SavePaths {
		if _, err := domain.ParseCategory(key); err != nil {
			errs = append(errs, fmt.Errorf("save_paths: %w", err))
		}
	}

	return errors.Join(errs...)
}

// DebounceDelay returns the editor quiet period, falling back to the default.
func (c *Config) DebounceDelay() time.Duration {
	d, err := time.ParseDuration(c.Editor.Debounce)
	if err != nil || d <= 0 {
		return debounce.DefaultDelay
	}
	return d
}

// StoreTTL returns the record expiry for the redis backend; zero means none.
func (c *Config) StoreTTL() time.Duration {
	d, _ := time.ParseDuration(c.Storage.TTL)
	return d
}

// Resolve makes a path absolute against Root.
func (c *Config) Resolve(p string) string {
	if !filepath.IsAbs(p) {
		p = filepath.Join(c.Root, p)
	}
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return p
}

// SavePath returns the resolved directory of a category for the file backend.
func (c *Config) SavePath(category domain.Category) string {
	p, ok := c.SavePaths[string(category)]
	if !ok || p == "" {
		p = filepath.Join("saved", string(category))
	}
	return c.Resolve(p)
}

// SavePathMap returns SavePath for every category.
func (c *Config) SavePathMap() map[domain.Category]string {
	out := make(map[domain.Category]string, len(domain.Categories))
	for _, cat := range domain.Categories {
		out[cat] = c.SavePath(cat)
	}
	return out
}

// WildcardMode returns the default output mode for new wildcard nodes.
func (c *Config) WildcardMode() domain.OutputMode {
	m, err := domain.ParseOutputMode(c.Settings.DefaultWildcardMode)
	if err != nil {
		return domain.ModeRandom
	}
	return m
}
