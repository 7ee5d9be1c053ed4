package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Layout   LayoutConfig
	Query    QueryConfig
	Warmup   WarmupConfig
	App      AppConfig
}

type ServerConfig struct {
	Port string
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
}

// RedisConfig configures the query row cache. An empty Addr disables it.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

type LayoutConfig struct {
	Engine     string // "force" or "http"
	URL        string
	Timeout    time.Duration
	Iterations int
}

type QueryConfig struct {
	Timeout    time.Duration
	Timezone   string
	StrictRows bool
}

type WarmupConfig struct {
	Cron string // empty disables the warm-up job
}

type AppConfig struct {
	Environment string
	LogLevel    string
	Version     string
}

const (
	LayoutEngineForce = "force"
	LayoutEngineHTTP  = "http"
)

func Load() (*Config, error) {
	// Load .env file if it exists (ignore error in production)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := &Config{
		Server: ServerConfig{
			Port: getEnv("PORT", "8080"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvAsInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Name:     getEnv("DB_NAME", "tagnet"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			TTL:      getEnvAsDuration("CACHE_TTL", 10*time.Minute),
		},
		Layout: LayoutConfig{
			Engine:     getEnv("LAYOUT_ENGINE", LayoutEngineForce),
			URL:        getEnv("LAYOUT_ENGINE_URL", ""),
			Timeout:    getEnvAsDuration("LAYOUT_TIMEOUT", 10*time.Second),
			Iterations: getEnvAsInt("LAYOUT_ITERATIONS", 300),
		},
		Query: QueryConfig{
			Timeout:    getEnvAsDuration("QUERY_TIMEOUT", 15*time.Second),
			Timezone:   getEnv("QUERY_TIMEZONE", "Asia/Tokyo"),
			StrictRows: getEnvAsBool("STRICT_ROWS", false),
		},
		Warmup: WarmupConfig{
			Cron: getEnv("WARMUP_CRON", ""),
		},
		App: AppConfig{
			Environment: getEnv("APP_ENV", "development"),
			LogLevel:    getEnv("LOG_LEVEL", "info"),
			Version:     getEnv("APP_VERSION", "1.0.0"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("PORT is required")
	}

	if c.Database.Host == "" {
		return fmt.Errorf("DB_HOST is required")
	}

	switch c.Layout.Engine {
	case LayoutEngineForce:
	case LayoutEngineHTTP:
		if c.Layout.URL == "" {
			return fmt.Errorf("LAYOUT_ENGINE_URL is required when LAYOUT_ENGINE=http")
		}
	default:
		return fmt.Errorf("LAYOUT_ENGINE must be %q or %q, got %q", LayoutEngineForce, LayoutEngineHTTP, c.Layout.Engine)
	}

	if _, err := time.LoadLocation(c.Query.Timezone); err != nil {
		return fmt.Errorf("QUERY_TIMEZONE: %w", err)
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid integer for %s, using default: %d", key, defaultValue)
		return defaultValue
	}

	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid boolean for %s, using default: %t", key, defaultValue)
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := time.ParseDuration(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid duration for %s, using default: %s", key, defaultValue)
		return defaultValue
	}

	return value
}
