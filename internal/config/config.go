package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Env       string
	LogLevel  string
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	NATS      NATSConfig
	Cache     CacheConfig
	Auth      AuthConfig
	RateLimit RateLimitConfig
	Feedback  FeedbackConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	RequestTimeout  time.Duration
	AllowedOrigins  []string
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	Host            string
	Port            string
	User            string
	Password        string
	Name            string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// NATSConfig holds NATS configuration
type NATSConfig struct {
	URL string
}

// CacheConfig holds caching TTL configuration
type CacheConfig struct {
	CommentsListTTL time.Duration
}

// AuthConfig holds token and password hashing settings
type AuthConfig struct {
	JWTSecret  string
	TokenTTL   time.Duration
	CookieName string
	BcryptCost int
}

// RateLimitConfig bounds login attempts per client IP
type RateLimitConfig struct {
	LoginPerMinute int
	LoginBurst     int
}

// FeedbackConfig holds review policy switches
type FeedbackConfig struct {
	AllowAdminReviews bool
}

// Load reads an optional .env file and the environment, and returns a Config
func Load() (*Config, error) {
	// Missing .env is fine; the environment may be set directly
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)

	durations := map[string]time.Duration{}
	for _, key := range []string{
		"SERVER_READ_TIMEOUT",
		"SERVER_WRITE_TIMEOUT",
		"SERVER_SHUTDOWN_TIMEOUT",
		"SERVER_REQUEST_TIMEOUT",
		"DB_CONN_MAX_LIFETIME",
		"CACHE_TTL_COMMENTS_LIST",
		"AUTH_TOKEN_TTL",
	} {
		d, err := time.ParseDuration(v.GetString(key))
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", key, err)
		}
		durations[key] = d
	}

	jwtSecret := v.GetString("JWT_SECRET")
	env := v.GetString("ENV")
	if jwtSecret == "" {
		if env == "production" {
			return nil, fmt.Errorf("JWT_SECRET is required in production")
		}
		jwtSecret = "dev-secret-change-me"
	}

	allowedOrigins := strings.Split(v.GetString("CORS_ALLOWED_ORIGINS"), ",")
	for i := range allowedOrigins {
		allowedOrigins[i] = strings.TrimSpace(allowedOrigins[i])
	}

	config := &Config{
		Env:      env,
		LogLevel: v.GetString("LOG_LEVEL"),
		Server: ServerConfig{
			Port:            v.GetString("SERVER_PORT"),
			ReadTimeout:     durations["SERVER_READ_TIMEOUT"],
			WriteTimeout:    durations["SERVER_WRITE_TIMEOUT"],
			ShutdownTimeout: durations["SERVER_SHUTDOWN_TIMEOUT"],
			RequestTimeout:  durations["SERVER_REQUEST_TIMEOUT"],
			AllowedOrigins:  allowedOrigins,
		},
		Database: DatabaseConfig{
			Host:            v.GetString("DB_HOST"),
			Port:            v.GetString("DB_PORT"),
			User:            v.GetString("DB_USER"),
			Password:        v.GetString("DB_PASSWORD"),
			Name:            v.GetString("DB_NAME"),
			SSLMode:         v.GetString("DB_SSLMODE"),
			MaxOpenConns:    v.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns:    v.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetime: durations["DB_CONN_MAX_LIFETIME"],
		},
		Redis: RedisConfig{
			Host:     v.GetString("REDIS_HOST"),
			Port:     v.GetString("REDIS_PORT"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		NATS: NATSConfig{
			URL: v.GetString("NATS_URL"),
		},
		Cache: CacheConfig{
			CommentsListTTL: durations["CACHE_TTL_COMMENTS_LIST"],
		},
		Auth: AuthConfig{
			JWTSecret:  jwtSecret,
			TokenTTL:   durations["AUTH_TOKEN_TTL"],
			CookieName: v.GetString("AUTH_COOKIE_NAME"),
			BcryptCost: v.GetInt("AUTH_BCRYPT_COST"),
		},
		RateLimit: RateLimitConfig{
			LoginPerMinute: v.GetInt("RATE_LIMIT_LOGIN_PER_MINUTE"),
			LoginBurst:     v.GetInt("RATE_LIMIT_LOGIN_BURST"),
		},
		Feedback: FeedbackConfig{
			AllowAdminReviews: v.GetBool("FEEDBACK_ALLOW_ADMIN_REVIEWS"),
		},
	}

	return config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", "development")
	v.SetDefault("LOG_LEVEL", "")
	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("SERVER_READ_TIMEOUT", "10s")
	v.SetDefault("SERVER_WRITE_TIMEOUT", "10s")
	v.SetDefault("SERVER_SHUTDOWN_TIMEOUT", "30s")
	v.SetDefault("SERVER_REQUEST_TIMEOUT", "30s")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000,http://localhost:8080")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "perfume_catalog")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 25)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)
	v.SetDefault("DB_CONN_MAX_LIFETIME", "5m")

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("NATS_URL", "nats://localhost:4222")

	v.SetDefault("CACHE_TTL_COMMENTS_LIST", "120s")

	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("AUTH_TOKEN_TTL", "168h")
	v.SetDefault("AUTH_COOKIE_NAME", "jwt")
	v.SetDefault("AUTH_BCRYPT_COST", 10)

	v.SetDefault("RATE_LIMIT_LOGIN_PER_MINUTE", 10)
	v.SetDefault("RATE_LIMIT_LOGIN_BURST", 5)

	v.SetDefault("FEEDBACK_ALLOW_ADMIN_REVIEWS", false)
}

// GetDSN returns the PostgreSQL connection string
func (c *Config) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// GetRedisAddr returns the Redis address
func (c *Config) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", c.Redis.Host, c.Redis.Port)
}
