package config

import (
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// DefaultJWTSecret is the placeholder JWT_SECRET. Release mode refuses it.
const DefaultJWTSecret = "change-me"

type Config struct {
	AppPort string `envconfig:"APP_PORT" default:"8080"`
	AppMode string `envconfig:"APP_MODE" default:"debug"`

	DBDriver   string `envconfig:"DB_DRIVER" default:"postgres"`
	DBHost     string `envconfig:"DB_HOST" default:"localhost"`
	DBUser     string `envconfig:"DB_USER" default:"postgres"`
	DBPassword string `envconfig:"DB_PASSWORD" default:"postgres"`
	DBName     string `envconfig:"DB_NAME" default:"sentinal_social"`
	DBPort     string `envconfig:"DB_PORT" default:"5432"`
	SQLitePath string `envconfig:"SQLITE_PATH" default:"data/sentinal.db"`

	JWTSecret    string `envconfig:"JWT_SECRET" default:"change-me"`
	JWTExpiryMin int    `envconfig:"JWT_EXPIRY_MIN" default:"60"`

	RedisEnabled  bool   `envconfig:"REDIS_ENABLED" default:"false"`
	RedisHost     string `envconfig:"REDIS_HOST" default:"localhost"`
	RedisPort     string `envconfig:"REDIS_PORT" default:"6379"`
	RedisPassword string `envconfig:"REDIS_PASSWORD" default:""`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`

	RateLimitMessages      int `envconfig:"RATE_LIMIT_MESSAGES" default:"60"`
	RateLimitWindowSec     int `envconfig:"RATE_LIMIT_WINDOW_SEC" default:"60"`
	RateLimitAuth          int `envconfig:"RATE_LIMIT_AUTH" default:"5"`
	RateLimitAuthWindowSec int `envconfig:"RATE_LIMIT_AUTH_WINDOW_SEC" default:"60"`
}

func LoadConfig() *Config {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg, err := Process()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	return cfg
}

// Process reads the configuration from the environment only.
func Process() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if cfg.DBDriver != "postgres" && cfg.DBDriver != "sqlite" {
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}
	if cfg.AppMode == "release" && (cfg.JWTSecret == "" || cfg.JWTSecret == DefaultJWTSecret) {
		return nil, fmt.Errorf("JWT_SECRET must be set in release mode")
	}
	return &cfg, nil
}

func (c *Config) PostgresDSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort)
}

func (c *Config) AccessTTL() time.Duration {
	return time.Duration(c.JWTExpiryMin) * time.Minute
}

func (c *Config) RateLimitWindow() time.Duration {
	return time.Duration(c.RateLimitWindowSec) * time.Second
}

func (c *Config) RateLimitAuthWindow() time.Duration {
	return time.Duration(c.RateLimitAuthWindowSec) * time.Second
}
