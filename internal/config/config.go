// Package config loads abacus settings from a YAML or JSON file and ABACUS_*
// environment variables.
package config

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"

	"github.com/aretw0/abacus/internal/logging"
	"github.com/aretw0/abacus/pkg/domain"
)

// DefaultPath is read when no path is given. A missing default file is not an error.
const DefaultPath = "abacus.yaml"

// EnvPrefix namespaces the environment overrides.
const EnvPrefix = "ABACUS_"

// Config holds every setting of the binary.
type Config struct {
	Angle        string `mapstructure:"angle" yaml:"angle" json:"angle"`
	Format       string `mapstructure:"format" yaml:"format" json:"format"`
	FixedPlaces  int    `mapstructure:"fixed_places" yaml:"fixed_places" json:"fixed_places"`
	HistoryLimit int    `mapstructure:"history_limit" yaml:"history_limit" json:"history_limit"`
	LogLevel     string `mapstructure:"log_level" yaml:"log_level" json:"log_level"`
	LogFormat    string `mapstructure:"log_format" yaml:"log_format" json:"log_format"`

	// SessionDir keeps sessions as files when Redis is not configured.
	SessionDir string `mapstructure:"session_dir" yaml:"session_dir" json:"session_dir"`

	HTTP  HTTPConfig  `mapstructure:"http" yaml:"http" json:"http"`
	Redis RedisConfig `mapstructure:"redis" yaml:"redis" json:"redis"`
	MCP   MCPConfig   `mapstructure:"mcp" yaml:"mcp" json:"mcp"`

	Encryption EncryptionConfig `mapstructure:"encryption" yaml:"encryption" json:"encryption"`
}

// HTTPConfig configures `abacus serve`.
type HTTPConfig struct {
	Addr string `mapstructure:"addr" yaml:"addr" json:"addr"`
}

// RedisConfig selects the Redis session store. An empty Addr keeps sessions in memory.
type RedisConfig struct {
	Addr     string        `mapstructure:"addr" yaml:"addr" json:"addr"`
	Password string        `mapstructure:"password" yaml:"password" json:"password"`
	DB       int           `mapstructure:"db" yaml:"db" json:"db"`
	TTL      time.Duration `mapstructure:"ttl" yaml:"ttl" json:"ttl"`
	Prefix   string        `mapstructure:"prefix" yaml:"prefix" json:"prefix"`
}

// MCPConfig configures `abacus mcp`.
type MCPConfig struct {
	Transport string `mapstructure:"transport" yaml:"transport" json:"transport"`
	Port      int    `mapstructure:"port" yaml:"port" json:"port"`
}

// EncryptionConfig seals stored sessions with AES-256-GCM. Keys are base64
// encoded 32 byte values; an empty Key disables encryption.
type EncryptionConfig struct {
	Key          string   `mapstructure:"key" yaml:"key" json:"key"`
	FallbackKeys []string `mapstructure:"fallback_keys" yaml:"fallback_keys" json:"fallback_keys"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Angle:        "deg",
		Format:       string(domain.FormatGeneral),
		FixedPlaces:  domain.DefaultFixedPlaces,
		HistoryLimit: domain.DefaultHistoryLimit,
		LogLevel:     "info",
		LogFormat:    "text",
		HTTP:         HTTPConfig{Addr: ":8080"},
		Redis:        RedisConfig{TTL: 30 * time.Minute, Prefix: "abacus:session:"},
		MCP:          MCPConfig{Transport: "stdio", Port: 8081},
	}
}

// envKeys maps environment variables to config paths.
var envKeys = map[string][]string{
	"ANGLE":          {"angle"},
	"FORMAT":         {"format"},
	"FIXED_PLACES":   {"fixed_places"},
	"HISTORY_LIMIT":  {"history_limit"},
	"LOG_LEVEL":      {"log_level"},
	"LOG_FORMAT":     {"log_format"},
	"HTTP_ADDR":      {"http", "addr"},
	"REDIS_ADDR":     {"redis", "addr"},
	"REDIS_PASSWORD": {"redis", "password"},
	"REDIS_DB":       {"redis", "db"},
	"REDIS_TTL":      {"redis", "ttl"},
	"REDIS_PREFIX":   {"redis", "prefix"},
	"MCP_TRANSPORT":  {"mcp", "transport"},
	"MCP_PORT":       {"mcp", "port"},
	"SESSION_DIR":    {"session_dir"},

	"ENCRYPTION_KEY":           {"encryption", "key"},
	"ENCRYPTION_FALLBACK_KEYS": {"encryption", "fallback_keys"},
}

// Load reads path (YAML, or JSON by extension), applies environment
// overrides and validates the result. An empty path tries DefaultPath.
func Load(path string) (Config, error) {
	return load(path, os.LookupEnv)
}

func load(path string, lookup func(string) (string, bool)) (Config, error) {
	cfg := Default()

	// 1. File
	raw, err := readFile(path)
	if err != nil {
		return cfg, err
	}

	// 2. Environment
	for name, keyPath := range envKeys {
		if val, ok := lookup(EnvPrefix + name); ok {
			setPath(raw, keyPath, val)
		}
	}

	// 3. Decode over the defaults
	hook := mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	)
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &cfg,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		DecodeHook:       hook,
	})
	if err != nil {
		return cfg, fmt.Errorf("failed to build config decoder: %w", err)
	}
	if err := decoder.Decode(raw); err != nil {
		return cfg, fmt.Errorf("failed to decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func readFile(path string) (map[string]any, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultPath
	}

	raw := map[string]any{}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !explicit {
			return raw, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if strings.ToLower(filepath.Ext(path)) == ".json" {
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	} else {
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	}
	if raw == nil {
		raw = map[string]any{}
	}
	return raw, nil
}

func setPath(m map[string]any, path []string, val string) {
	for _, key := range path[:len(path)-1] {
		child, ok := m[key].(map[string]any)
		if !ok {
			child = map[string]any{}
			m[key] = child
		}
		m = child
	}
	m[path[len(path)-1]] = val
}

// Validate checks the settings that the engine would otherwise reject later.
func (c Config) Validate() error {
	switch c.Angle {
	case "deg", "rad":
	default:
		return fmt.Errorf("invalid angle %q: want deg or rad", c.Angle)
	}
	if _, err := c.DisplayFormat(); err != nil {
		return err
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("invalid log format %q: want text or json", c.LogFormat)
	}
	switch c.MCP.Transport {
	case "stdio", "sse":
	default:
		return fmt.Errorf("invalid mcp transport %q: want stdio or sse", c.MCP.Transport)
	}
	if c.HistoryLimit < 0 {
		return fmt.Errorf("invalid history limit %d", c.HistoryLimit)
	}
	if _, _, err := c.EncryptionKeys(); err != nil {
		return err
	}
	return nil
}

// EncryptionKeys decodes the active and fallback keys. A nil active key
// means encryption is off.
func (c Config) EncryptionKeys() (active []byte, fallback [][]byte, err error) {
	if c.Encryption.Key == "" {
		if len(c.Encryption.FallbackKeys) > 0 {
			return nil, nil, errors.New("encryption fallback keys need an active key")
		}
		return nil, nil, nil
	}
	decode := func(name, s string) ([]byte, error) {
		k, err := base64.StdEncoding.DecodeString(strings.TrimSpace(s))
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", name, err)
		}
		if len(k) != 32 {
			return nil, fmt.Errorf("invalid %s: want 32 bytes, got %d", name, len(k))
		}
		return k, nil
	}
	if active, err = decode("encryption key", c.Encryption.Key); err != nil {
		return nil, nil, err
	}
	for i, s := range c.Encryption.FallbackKeys {
		k, err := decode(fmt.Sprintf("fallback key %d", i), s)
		if err != nil {
			return nil, nil, err
		}
		fallback = append(fallback, k)
	}
	return active, fallback, nil
}

// Degrees reports whether the angle mode is degrees.
func (c Config) Degrees() bool {
	return c.Angle != "rad"
}

// DisplayFormat resolves Format and FixedPlaces. "fixed:N" in Format wins
// over FixedPlaces.
func (c Config) DisplayFormat() (domain.DisplayFormat, error) {
	f, err := domain.ParseDisplayFormat(c.Format)
	if err != nil {
		return f, err
	}
	if f.Mode == domain.FormatFixed && !strings.Contains(c.Format, ":") {
		if c.FixedPlaces < 0 || c.FixedPlaces > domain.MaxFixedPlaces {
			return f, fmt.Errorf("%w: fixed places %d outside 0..%d", domain.ErrInvalidFormat, c.FixedPlaces, domain.MaxFixedPlaces)
		}
		f.Places = c.FixedPlaces
	}
	return f, nil
}
