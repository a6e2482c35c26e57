// Package config resolves server configuration from defaults, a YAML file and the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/and161185/leadgate/internal/limiter"
	"gopkg.in/yaml.v3"
)

// Config is the resolved runtime configuration.
type Config struct {
	HTTPAddr        string
	GRPCAddr        string
	PublicBaseURL   string
	TrustProxy      bool
	Dev             bool
	ShutdownTimeout time.Duration

	DatabaseURL string
	MaxDBConns  int32
	RedisURL    string // empty: rate limits live in PostgreSQL

	KafkaBrokers []string // empty: events are only logged
	KafkaTopics  map[string]string

	JWTKey           string
	AccessTTL        time.Duration
	DownloadTokenKey string
	DownloadTokenTTL time.Duration
	ContactKey       string

	AdminUsername string
	AdminPassword string

	LoginLimit limiter.Policy
	LeadLimit  limiter.Policy
}

// file mirrors the YAML schema of configs/leadgate.yaml.
type file struct {
	Server struct {
		HTTPAddr        string        `yaml:"http_addr"`
		GRPCAddr        string        `yaml:"grpc_addr"`
		PublicBaseURL   string        `yaml:"public_base_url"`
		TrustProxy      *bool         `yaml:"trust_proxy"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	} `yaml:"server"`
	Database struct {
		URL      string `yaml:"url"`
		MaxConns int32  `yaml:"max_conns"`
	} `yaml:"database"`
	Redis struct {
		URL string `yaml:"url"`
	} `yaml:"redis"`
	Kafka struct {
		Brokers []string          `yaml:"brokers"`
		Topics  map[string]string `yaml:"topics"`
	} `yaml:"kafka"`
	Auth struct {
		AccessTTL     time.Duration `yaml:"access_ttl"`
		AdminUsername string        `yaml:"admin_username"`
	} `yaml:"auth"`
	Downloads struct {
		TokenTTL time.Duration `yaml:"token_ttl"`
	} `yaml:"downloads"`
	Limits struct {
		Login *limiter.Policy `yaml:"login"`
		Lead  *limiter.Policy `yaml:"lead"`
	} `yaml:"limits"`
}

// Defaults returns the configuration used before any file or env override.
func Defaults() Config {
	return Config{
		HTTPAddr:         ":8080",
		GRPCAddr:         ":9090",
		PublicBaseURL:    "http://localhost:3000",
		ShutdownTimeout:  10 * time.Second,
		MaxDBConns:       10,
		KafkaTopics:      map[string]string{},
		AccessTTL:        15 * time.Minute,
		DownloadTokenTTL: 24 * time.Hour,
		LoginLimit:       limiter.Policy{Window: 15 * time.Minute, MaxHits: 5, BlockFor: 15 * time.Minute},
		LeadLimit:        limiter.Policy{Window: time.Hour, MaxHits: 10, BlockFor: time.Hour},
	}
}

// Load resolves configuration in priority order: defaults -> file -> env.
// A missing file is not an error; an unparsable one is.
func Load(path string) (Config, error) {
	cfg := Defaults()

	if path != "" {
		raw, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := cfg.applyFile(raw); err != nil {
				return Config{}, err
			}
		case !errors.Is(err, os.ErrNotExist):
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	}

	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyFile(raw []byte) error {
	var f file
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	if f.Server.HTTPAddr != "" {
		c.HTTPAddr = f.Server.HTTPAddr
	}
	if f.Server.GRPCAddr != "" {
		c.GRPCAddr = f.Server.GRPCAddr
	}
	if f.Server.PublicBaseURL != "" {
		c.PublicBaseURL = f.Server.PublicBaseURL
	}
	if f.Server.TrustProxy != nil {
		c.TrustProxy = *f.Server.TrustProxy
	}
	if f.Server.ShutdownTimeout > 0 {
		c.ShutdownTimeout = f.Server.ShutdownTimeout
	}
	if f.Database.URL != "" {
		c.DatabaseURL = f.Database.URL
	}
	if f.Database.MaxConns > 0 {
		c.MaxDBConns = f.Database.MaxConns
	}
	if f.Redis.URL != "" {
		c.RedisURL = f.Redis.URL
	}
	if len(f.Kafka.Brokers) > 0 {
		c.KafkaBrokers = f.Kafka.Brokers
	}
	for ev, topic := range f.Kafka.Topics {
		c.KafkaTopics[ev] = topic
	}
	if f.Auth.AccessTTL > 0 {
		c.AccessTTL = f.Auth.AccessTTL
	}
	if f.Auth.AdminUsername != "" {
		c.AdminUsername = f.Auth.AdminUsername
	}
	if f.Downloads.TokenTTL > 0 {
		c.DownloadTokenTTL = f.Downloads.TokenTTL
	}
	if f.Limits.Login != nil {
		c.LoginLimit = *f.Limits.Login
	}
	if f.Limits.Lead != nil {
		c.LeadLimit = *f.Limits.Lead
	}
	return nil
}

// applyEnv overlays environment variables. Secrets are only read from here.
func (c *Config) applyEnv() {
	c.HTTPAddr = envOrDefault("HTTP_ADDR", c.HTTPAddr)
	c.GRPCAddr = envOrDefault("GRPC_ADDR", c.GRPCAddr)
	c.PublicBaseURL = envOrDefault("PUBLIC_BASE_URL", c.PublicBaseURL)
	c.TrustProxy = envBool("TRUST_PROXY", c.TrustProxy)

	c.DatabaseURL = envOrDefault("DB_URL", envOrDefault("DATABASE_URL", c.DatabaseURL))
	c.MaxDBConns = int32(envInt("DB_MAX_CONNS", int(c.MaxDBConns)))
	c.RedisURL = envOrDefault("REDIS_URL", c.RedisURL)
	c.KafkaBrokers = envCSV("KAFKA_BROKERS", c.KafkaBrokers)

	c.JWTKey = envOrDefault("JWT_KEY", c.JWTKey)
	c.AccessTTL = envDuration("ACCESS_TTL", c.AccessTTL)
	c.DownloadTokenKey = envOrDefault("DOWNLOAD_TOKEN_KEY", c.DownloadTokenKey)
	c.DownloadTokenTTL = envDuration("DOWNLOAD_TOKEN_TTL", c.DownloadTokenTTL)
	c.ContactKey = envOrDefault("CONTACT_KEY", c.ContactKey)

	c.AdminUsername = envOrDefault("ADMIN_USERNAME", c.AdminUsername)
	c.AdminPassword = envOrDefault("ADMIN_PASSWORD", c.AdminPassword)
}

// Validate fails fast on missing secrets and nonsensical limits.
func (c Config) Validate() error {
	var problems []string
	if c.DatabaseURL == "" {
		problems = append(problems, "missing DB_URL")
	}
	if c.JWTKey == "" {
		problems = append(problems, "missing JWT_KEY")
	}
	if c.DownloadTokenKey == "" {
		problems = append(problems, "missing DOWNLOAD_TOKEN_KEY")
	}
	if c.JWTKey != "" && c.JWTKey == c.DownloadTokenKey {
		problems = append(problems, "JWT_KEY and DOWNLOAD_TOKEN_KEY must differ")
	}
	if len(c.ContactKey) < 16 {
		problems = append(problems, "CONTACT_KEY must be at least 16 bytes")
	}
	if c.AdminUsername != "" && c.AdminPassword == "" {
		problems = append(problems, "ADMIN_PASSWORD is required with ADMIN_USERNAME")
	}
	for name, p := range map[string]limiter.Policy{"login": c.LoginLimit, "lead": c.LeadLimit} {
		if p.Window <= 0 || p.MaxHits <= 0 || p.BlockFor <= 0 {
			problems = append(problems, fmt.Sprintf("limits.%s must have positive window, max_hits and block_for", name))
		}
	}
	if len(problems) > 0 {
		return fmt.Errorf("config: %s", strings.Join(problems, "; "))
	}
	return nil
}

// envOrDefault returns an env var when present, otherwise the provided fallback.
func envOrDefault(name, fallback string) string {
	if value := os.Getenv(name); value != "" {
		return value
	}
	return fallback
}

func envInt(name string, fallback int) int {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}

// envDuration accepts Go duration syntax, e.g. "15m" or "24h".
func envDuration(name string, fallback time.Duration) time.Duration {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

func envBool(name string, fallback bool) bool {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return fallback
	}
	return v
}

// envCSV parses comma-separated env vars and removes empty segments.
func envCSV(name string, fallback []string) []string {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback
	}
	parts := make([]string, 0)
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	if len(parts) == 0 {
		return fallback
	}
	return parts
}
