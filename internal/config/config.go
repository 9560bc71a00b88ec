// Package config loads the Abacus runtime configuration from an optional YAML
// file overlaid with ABACUS_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/aretw0/abacus/pkg/domain"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// DefaultPath is the config file looked up when none is given.
const DefaultPath = "abacus.yaml"

// Store drivers.
const (
	DriverMemory = "memory"
	DriverRedis  = "redis"
)

// Config is the full runtime configuration.
type Config struct {
	Log    LogConfig    `mapstructure:"log" yaml:"log"`
	Engine EngineConfig `mapstructure:"engine" yaml:"engine"`
	Store  StoreConfig  `mapstructure:"store" yaml:"store"`
	HTTP   HTTPConfig   `mapstructure:"http" yaml:"http"`
	MCP    MCPConfig    `mapstructure:"mcp" yaml:"mcp"`
	Input  InputConfig  `mapstructure:"input" yaml:"input"`
}

type LogConfig struct {
	Level string `mapstructure:"level" yaml:"level"`
}

type EngineConfig struct {
	TokenPolicy string `mapstructure:"token_policy" yaml:"token_policy"`
	ZeroGuard   string `mapstructure:"zero_guard" yaml:"zero_guard"`
}

type StoreConfig struct {
	Driver string       `mapstructure:"driver" yaml:"driver"`
	Memory MemoryConfig `mapstructure:"memory" yaml:"memory"`
	Redis  RedisConfig  `mapstructure:"redis" yaml:"redis"`
}

// MemoryConfig bounds the in-process store. A zero TTL keeps sessions until restart.
type MemoryConfig struct {
	TTL time.Duration `mapstructure:"ttl" yaml:"ttl"`
}

type RedisConfig struct {
	Addr     string        `mapstructure:"addr" yaml:"addr"`
	Password string        `mapstructure:"password" yaml:"password"`
	DB       int           `mapstructure:"db" yaml:"db"`
	Prefix   string        `mapstructure:"prefix" yaml:"prefix"`
	TTL      time.Duration `mapstructure:"ttl" yaml:"ttl"`
}

type HTTPConfig struct {
	Port string `mapstructure:"port" yaml:"port"`
}

type MCPConfig struct {
	Port int `mapstructure:"port" yaml:"port"`
}

type InputConfig struct {
	MaxSize int `mapstructure:"max_size" yaml:"max_size"`
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		Log: LogConfig{Level: "info"},
		Engine: EngineConfig{
			TokenPolicy: string(domain.PolicyPermissive),
			ZeroGuard:   string(domain.ZeroGuardLiteral),
		},
		Store: StoreConfig{
			Driver: DriverMemory,
			Redis: RedisConfig{
				Addr:   "localhost:6379",
				Prefix: "abacus:session:",
				TTL:    30 * time.Minute,
			},
		},
		HTTP:  HTTPConfig{Port: "8080"},
		MCP:   MCPConfig{Port: 8081},
		Input: InputConfig{MaxSize: 4096},
	}
}

// envKeys maps environment variables onto config paths.
var envKeys = map[string]string{
	"ABACUS_LOG_LEVEL":      "log.level",
	"ABACUS_TOKEN_POLICY":   "engine.token_policy",
	"ABACUS_ZERO_GUARD":     "engine.zero_guard",
	"ABACUS_STORE":          "store.driver",
	"ABACUS_MEMORY_TTL":     "store.memory.ttl",
	"ABACUS_REDIS_ADDR":     "store.redis.addr",
	"ABACUS_REDIS_PASSWORD": "store.redis.password",
	"ABACUS_REDIS_DB":       "store.redis.db",
	"ABACUS_REDIS_PREFIX":   "store.redis.prefix",
	"ABACUS_REDIS_TTL":      "store.redis.ttl",
	"ABACUS_HTTP_PORT":      "http.port",
	"ABACUS_MCP_PORT":       "mcp.port",
	"ABACUS_MAX_INPUT_SIZE": "input.max_size",
}

// Load reads path (if it exists), applies environment overrides and validates the result.
// A missing file is not an error; a missing explicitly requested file is.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultPath
	}

	raw := map[string]any{}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist) && !explicit:
		// Defaults only.
	default:
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	for env, key := range envKeys {
		if val, ok := os.LookupEnv(env); ok && val != "" {
			setPath(raw, key, val)
		}
	}

	cfg := Default()
	if err := decode(raw, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func decode(raw map[string]any, cfg *Config) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           cfg,
		TagName:          "mapstructure",
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
	})
	if err != nil {
		return fmt.Errorf("failed to build config decoder: %w", err)
	}
	if err := dec.Decode(raw); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// setPath writes val at a dotted path, creating intermediate maps.
func setPath(m map[string]any, path string, val any) {
	keys := strings.Split(path, ".")
	for _, k := range keys[:len(keys)-1] {
		next, ok := m[k].(map[string]any)
		if !ok {
			next = map[string]any{}
			m[k] = next
		}
		m = next
	}
	m[keys[len(keys)-1]] = val
}

// Validate checks enumerated values, durations and ports.
func (c *Config) Validate() error {
	if _, err := domain.ParseTokenPolicy(c.Engine.TokenPolicy); err != nil {
		return err
	}
	if _, err := domain.ParseZeroGuard(c.Engine.ZeroGuard); err != nil {
		return err
	}
	switch c.Store.Driver {
	case DriverMemory, DriverRedis:
	default:
		return fmt.Errorf("unknown store driver %q", c.Store.Driver)
	}
	if c.Store.Memory.TTL < 0 {
		return fmt.Errorf("store.memory.ttl must not be negative, got %s", c.Store.Memory.TTL)
	}
	if c.Store.Redis.TTL < 0 {
		return fmt.Errorf("store.redis.ttl must not be negative, got %s", c.Store.Redis.TTL)
	}
	port, err := strconv.Atoi(c.HTTP.Port)
	if err != nil || !validPort(port) {
		return fmt.Errorf("http.port must be a number between 0 and 65535, got %q", c.HTTP.Port)
	}
	if !validPort(c.MCP.Port) {
		return fmt.Errorf("mcp.port must be between 0 and 65535, got %d", c.MCP.Port)
	}
	if c.Input.MaxSize <= 0 {
		return fmt.Errorf("input.max_size must be positive, got %d", c.Input.MaxSize)
	}
	return nil
}

// validPort accepts 0, which asks the OS for a free port.
func validPort(p int) bool {
	return p >= 0 && p <= 65535
}

// TokenPolicy returns the validated engine token policy.
func (c *Config) TokenPolicy() domain.TokenPolicy {
	p, _ := domain.ParseTokenPolicy(c.Engine.TokenPolicy)
	return p
}

// ZeroGuard returns the validated engine zero guard.
func (c *Config) ZeroGuard() domain.ZeroGuard {
	g, _ := domain.ParseZeroGuard(c.Engine.ZeroGuard)
	return g
}
