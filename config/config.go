package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

const envPrefix = "LOAN_QUALIFIER_"

const (
	CacheNone   = "none"
	CacheMemory = "memory"
	CacheRedis  = "redis"

	AuditMemory = "memory"
	AuditSQLite = "sqlite"
)

type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Artifacts  ArtifactsConfig  `yaml:"artifacts"`
	Cache      CacheConfig      `yaml:"cache"`
	RateLimit  RateLimitConfig  `yaml:"rate_limit"`
	Audit      AuditConfig      `yaml:"audit"`
	Validation ValidationConfig `yaml:"validation"`
	CORS       CORSConfig       `yaml:"cors"`
	Log        LogConfig        `yaml:"log"`
}

type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	// TrustProxyHeaders takes the client address from X-Real-IP /
	// X-Forwarded-For. Only enable it behind a proxy that sets them.
	TrustProxyHeaders bool `yaml:"trust_proxy_headers"`
}

type ArtifactsConfig struct {
	Dir string `yaml:"dir"`
}

type CacheConfig struct {
	Backend   string        `yaml:"backend"`
	RedisAddr string        `yaml:"redis_addr"`
	TTL       time.Duration `yaml:"ttl"`
}

type RateLimitConfig struct {
	// Capacity of zero disables rate limiting.
	Capacity int           `yaml:"capacity"`
	Window   time.Duration `yaml:"window"`
}

type AuditConfig struct {
	Backend    string `yaml:"backend"`
	SQLitePath string `yaml:"sqlite_path"`
	// MemoryCapacity bounds the in-memory trail.
	MemoryCapacity int `yaml:"memory_capacity"`
}

type ValidationConfig struct {
	ImputeMissing bool `yaml:"impute_missing"`
}

type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default mirrors the behavior of the service with no configuration.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Addr:            ":8080",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Artifacts: ArtifactsConfig{Dir: "artifacts"},
		Cache: CacheConfig{
			Backend: CacheMemory,
			TTL:     10 * time.Minute,
		},
		RateLimit: RateLimitConfig{
			Capacity: 60,
			Window:   time.Minute,
		},
		Audit: AuditConfig{
			Backend:        AuditMemory,
			MemoryCapacity: 1000,
		},
		CORS: CORSConfig{AllowedOrigins: []string{"*"}},
		Log:  LogConfig{Level: "info", Format: "text"},
	}
}

// Load reads the optional YAML file at path over the defaults, then applies
// LOAN_QUALIFIER_* environment overrides.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return Config{}, errors.Wrapf(err, "failed to read config file: %s", path)
		}
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return Config{}, errors.Wrapf(err, "failed to parse config file: %s", path)
		}
	}

	if err := applyEnv(&cfg, os.LookupEnv); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	str := func(name string, dst *string) {
		if v, ok := lookup(envPrefix + name); ok {
			*dst = v
		}
	}
	dur := func(name string, dst *time.Duration) error {
		if v, ok := lookup(envPrefix + name); ok {
			d, err := time.ParseDuration(v)
			if err != nil {
				return errors.Wrapf(err, "invalid %s%s", envPrefix, name)
			}
			*dst = d
		}
		return nil
	}
	num := func(name string, dst *int) error {
		if v, ok := lookup(envPrefix + name); ok {
			n, err := strconv.Atoi(v)
			if err != nil {
				return errors.Wrapf(err, "invalid %s%s", envPrefix, name)
			}
			*dst = n
		}
		return nil
	}

	str("ADDR", &cfg.Server.Addr)
	str("ARTIFACTS_DIR", &cfg.Artifacts.Dir)
	str("CACHE_BACKEND", &cfg.Cache.Backend)
	str("REDIS_ADDR", &cfg.Cache.RedisAddr)
	str("AUDIT_BACKEND", &cfg.Audit.Backend)
	str("AUDIT_SQLITE_PATH", &cfg.Audit.SQLitePath)
	str("LOG_LEVEL", &cfg.Log.Level)
	str("LOG_FORMAT", &cfg.Log.Format)

	if v, ok := lookup(envPrefix + "CORS_ALLOWED_ORIGINS"); ok {
		cfg.CORS.AllowedOrigins = splitList(v)
	}
	if v, ok := lookup(envPrefix + "TRUST_PROXY_HEADERS"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return errors.Wrapf(err, "invalid %sTRUST_PROXY_HEADERS", envPrefix)
		}
		cfg.Server.TrustProxyHeaders = b
	}
	if v, ok := lookup(envPrefix + "IMPUTE_MISSING"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return errors.Wrapf(err, "invalid %sIMPUTE_MISSING", envPrefix)
		}
		cfg.Validation.ImputeMissing = b
	}

	if err := dur("CACHE_TTL", &cfg.Cache.TTL); err != nil {
		return err
	}
	if err := dur("RATE_LIMIT_WINDOW", &cfg.RateLimit.Window); err != nil {
		return err
	}
	return num("RATE_LIMIT_CAPACITY", &cfg.RateLimit.Capacity)
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func (c Config) Validate() error {
	if c.Server.Addr == "" {
		return errors.New("server.addr is required")
	}
	for name, d := range map[string]time.Duration{
		"server.read_timeout":     c.Server.ReadTimeout,
		"server.write_timeout":    c.Server.WriteTimeout,
		"server.idle_timeout":     c.Server.IdleTimeout,
		"server.shutdown_timeout": c.Server.ShutdownTimeout,
	} {
		if d <= 0 {
			return fmt.Errorf("%s must be positive", name)
		}
	}
	if c.Artifacts.Dir == "" {
		return errors.New("artifacts.dir is required")
	}

	switch c.Cache.Backend {
	case CacheNone, CacheMemory:
	case CacheRedis:
		if c.Cache.RedisAddr == "" {
			return errors.New("cache.redis_addr is required for the redis backend")
		}
	default:
		return fmt.Errorf("unknown cache backend %q", c.Cache.Backend)
	}
	if c.Cache.TTL < 0 {
		return errors.New("cache.ttl must not be negative")
	}

	if c.RateLimit.Capacity < 0 {
		return errors.New("rate_limit.capacity must not be negative")
	}
	if c.RateLimit.Capacity > 0 && c.RateLimit.Window <= 0 {
		return errors.New("rate_limit.window must be positive")
	}

	switch c.Audit.Backend {
	case AuditMemory:
	case AuditSQLite:
		if c.Audit.SQLitePath == "" {
			return errors.New("audit.sqlite_path is required for the sqlite backend")
		}
	default:
		return fmt.Errorf("unknown audit backend %q", c.Audit.Backend)
	}

	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("unknown log format %q", c.Log.Format)
	}
	return nil
}
