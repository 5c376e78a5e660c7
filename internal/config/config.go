// Package config builds the process configuration once at startup.
// Nothing outside this package reads the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port       string
	MongoURI   string
	MongoDB    string
	JWTSecret  string
	TokenTTL   time.Duration
	BcryptCost int

	AllowedOrigins []string
	RateLimitRPS   float64
	RateLimitBurst int

	LogLevel  string
	LogPretty bool

	RabbitMQ RabbitMQConfig
	Minio    MinioConfig

	// problems collects parse failures so Validate can report all of them at once.
	problems []string
}

type RabbitMQConfig struct {
	URL   string
	Queue string
}

// Enabled reports whether a broker URL was supplied.
func (c RabbitMQConfig) Enabled() bool {
	return strings.TrimSpace(c.URL) != ""
}

type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
	PublicURL string
}

// Enabled reports whether an object storage endpoint was supplied.
func (c MinioConfig) Enabled() bool {
	return strings.TrimSpace(c.Endpoint) != ""
}

const (
	defaultPort       = "5000"
	defaultMongoDB    = "shop"
	defaultTokenTTL   = 7 * 24 * time.Hour
	defaultBcryptCost = 10
	defaultRPS        = 20
	defaultBurst      = 40
	defaultLogLevel   = "info"
	defaultQueue      = "inquiries"
	defaultBucket     = "product-images"
)

// Load reads .env (if present) and the process environment.
func Load() *Config {
	_ = godotenv.Load()
	return FromLookup(os.LookupEnv)
}

// FromLookup builds a Config from an arbitrary lookup function.
func FromLookup(lookup func(string) (string, bool)) *Config {
	c := &Config{}
	env := func(key, def string) string {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
		return def
	}

	c.Port = env("PORT", defaultPort)
	c.MongoURI = env("MONGODB_URI", "")
	c.MongoDB = env("MONGODB_DATABASE", defaultMongoDB)
	c.JWTSecret = env("JWT_SECRET", "")
	c.TokenTTL = c.duration(env("TOKEN_TTL", ""), "TOKEN_TTL", defaultTokenTTL)
	c.BcryptCost = c.integer(env("BCRYPT_COST", ""), "BCRYPT_COST", defaultBcryptCost)
	c.AllowedOrigins = splitList(env("CORS_ALLOWED_ORIGINS", "*"))
	c.RateLimitRPS = c.float(env("RATE_LIMIT_RPS", ""), "RATE_LIMIT_RPS", defaultRPS)
	c.RateLimitBurst = c.integer(env("RATE_LIMIT_BURST", ""), "RATE_LIMIT_BURST", defaultBurst)
	c.LogLevel = env("LOG_LEVEL", defaultLogLevel)
	c.LogPretty = c.boolean(env("LOG_PRETTY", ""), "LOG_PRETTY")

	c.RabbitMQ = RabbitMQConfig{
		URL:   env("RABBITMQ_URL", ""),
		Queue: env("RABBITMQ_QUEUE", defaultQueue),
	}
	c.Minio = MinioConfig{
		Endpoint:  env("MINIO_ENDPOINT", ""),
		AccessKey: env("MINIO_ACCESS_KEY", ""),
		SecretKey: env("MINIO_SECRET_KEY", ""),
		Bucket:    env("MINIO_BUCKET", defaultBucket),
		UseSSL:    c.boolean(env("MINIO_USE_SSL", ""), "MINIO_USE_SSL"),
		PublicURL: strings.TrimRight(env("MINIO_PUBLIC_URL", ""), "/"),
	}
	return c
}

// Validate reports every missing or malformed setting.
func (c *Config) Validate() error {
	problems := append([]string(nil), c.problems...)
	if c.JWTSecret == "" {
		problems = append(problems, "JWT_SECRET is required")
	}
	if c.MongoURI == "" {
		problems = append(problems, "MONGODB_URI is required")
	}
	if c.TokenTTL <= 0 {
		problems = append(problems, "TOKEN_TTL must be positive")
	}
	if c.Minio.Enabled() && (c.Minio.AccessKey == "" || c.Minio.SecretKey == "") {
		problems = append(problems, "MINIO_ACCESS_KEY and MINIO_SECRET_KEY are required when MINIO_ENDPOINT is set")
	}
	if len(problems) == 0 {
		return nil
	}
	return errors.New(strings.Join(problems, "; "))
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return ":" + c.Port
}

func (c *Config) duration(raw, key string, def time.Duration) time.Duration {
	if raw == "" {
		return def
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		c.problems = append(c.problems, fmt.Sprintf("%s: %v", key, err))
		return def
	}
	return d
}

func (c *Config) integer(raw, key string, def int) int {
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		c.problems = append(c.problems, fmt.Sprintf("%s: not an integer", key))
		return def
	}
	return n
}

func (c *Config) float(raw, key string, def float64) float64 {
	if raw == "" {
		return def
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		c.problems = append(c.problems, fmt.Sprintf("%s: not a number", key))
		return def
	}
	return f
}

func (c *Config) boolean(raw, key string) bool {
	if raw == "" {
		return false
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		c.problems = append(c.problems, fmt.Sprintf("%s: not a boolean", key))
		return false
	}
	return b
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
