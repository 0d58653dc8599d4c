package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
)

const (
	EnvProduction  = "production"
	EnvDevelopment = "development"
)

type Config struct {
	Server      ServerConfig
	Mongo       MongoConfig
	Session     SessionConfig
	Stripe      StripeConfig
	Cloudinary  CloudinaryConfig
	Redis       RedisConfig
	RateLimit   RateLimitConfig
	Logging     LoggingConfig
	Environment string
}

type ServerConfig struct {
	Port            string
	AllowedOrigins  []string
	ShutdownTimeout time.Duration
}

type MongoConfig struct {
	URI            string
	Database       string
	ConnectTimeout time.Duration
}

type SessionConfig struct {
	Secret string
	TTL    time.Duration
}

type StripeConfig struct {
	SecretKey string
	Currency  string
}

type CloudinaryConfig struct {
	CloudName string
	APIKey    string
	APISecret string
}

// Enabled reports whether all three credentials are present.
func (c CloudinaryConfig) Enabled() bool {
	return c.CloudName != "" && c.APIKey != "" && c.APISecret != ""
}

// RedisConfig is empty unless REDIS_URL is set. Options carries everything
// the URL encodes, including the database index and TLS for rediss://.
type RedisConfig struct {
	Options *redis.Options
	LockTTL time.Duration
}

// Enabled reports whether a Redis URL was configured.
func (c RedisConfig) Enabled() bool {
	return c.Options != nil
}

type RateLimitConfig struct {
	PerMinute int
	// TrustedProxies lists the proxy IPs or CIDRs whose X-Forwarded-For
	// header is believed. Empty means the socket peer is the client.
	TrustedProxies []string
}

type LoggingConfig struct {
	Level  string
	Format string
}

// Load reads the environment (and a .env file when present) into a Config.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		Server: ServerConfig{
			Port:            getEnv("PORT", "7000"),
			AllowedOrigins:  getEnvList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:5173", "https://nexgen-diagnosia.web.app"}),
			ShutdownTimeout: getDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Mongo: MongoConfig{
			URI:            mongoURI(),
			Database:       getEnv("MONGO_DATABASE", "nexgenDB"),
			ConnectTimeout: getDuration("MONGO_CONNECT_TIMEOUT", 10*time.Second),
		},
		Session: SessionConfig{
			Secret: os.Getenv("ACCESS_TOKEN_SECRET"),
			TTL:    time.Hour,
		},
		Stripe: StripeConfig{
			SecretKey: os.Getenv("STRIPE_SECRET_KEY"),
			Currency:  getEnv("STRIPE_CURRENCY", "inr"),
		},
		Cloudinary: CloudinaryConfig{
			CloudName: os.Getenv("CLOUDINARY_CLOUD_NAME"),
			APIKey:    os.Getenv("CLOUDINARY_API_KEY"),
			APISecret: os.Getenv("CLOUDINARY_API_SECRET"),
		},
		Redis: RedisConfig{
			LockTTL: getDuration("LOCK_TTL", 5*time.Second),
		},
		RateLimit: RateLimitConfig{
			PerMinute:      getEnvInt("RATE_LIMIT_PER_MINUTE", 30),
			TrustedProxies: getEnvList("TRUSTED_PROXIES", nil),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		Environment: getEnv("APP_ENV", EnvDevelopment),
	}

	if redisURL := os.Getenv("REDIS_URL"); redisURL != "" {
		opts, err := redis.ParseURL(redisURL)
		if err != nil {
			return Config{}, fmt.Errorf("invalid REDIS_URL: %w", err)
		}
		cfg.Redis.Options = opts
	}

	for _, proxy := range cfg.RateLimit.TrustedProxies {
		if !validProxy(proxy) {
			return Config{}, fmt.Errorf("invalid TRUSTED_PROXIES entry %q", proxy)
		}
	}

	if cfg.Session.Secret == "" {
		return Config{}, errors.New("ACCESS_TOKEN_SECRET is required")
	}
	return cfg, nil
}

// IsProduction controls the cookie security attributes.
func (c Config) IsProduction() bool {
	return strings.EqualFold(c.Environment, EnvProduction)
}

// mongoURI prefers MONGO_URI and otherwise assembles an Atlas SRV URI from
// DB_USER, DB_PASS and DB_CLUSTER.
func mongoURI() string {
	if uri := os.Getenv("MONGO_URI"); uri != "" {
		return uri
	}
	user, pass, cluster := os.Getenv("DB_USER"), os.Getenv("DB_PASS"), os.Getenv("DB_CLUSTER")
	if user == "" || cluster == "" {
		return ""
	}
	u := url.URL{
		Scheme:   "mongodb+srv",
		User:     url.UserPassword(user, pass),
		Host:     cluster,
		Path:     "/",
		RawQuery: "retryWrites=true&w=majority",
	}
	return u.String()
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvList(key string, fallback []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}

func getDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return time.Duration(n) * time.Second
		}
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
		fmt.Fprintf(os.Stderr, "invalid duration for %s=%q, using default %s\n", key, v, def)
	}
	return def
}

// validProxy accepts a bare IP or a CIDR, the two forms gin's trusted proxy
// list understands.
func validProxy(v string) bool {
	if net.ParseIP(v) != nil {
		return true
	}
	_, _, err := net.ParseCIDR(v)
	return err == nil
}
