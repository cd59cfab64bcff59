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

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"

	devJWTSecret = "default_super_secret_key"
)

type Config struct {
	Server   ServerConfig
	Logger   LoggerConfig
	Postgres PostgresConfig
	JWT      JWTConfig
	Redis    RedisConfig
}

type ServerConfig struct {
	AppEnv          string
	Port            string
	CORSOrigins     []string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

type LoggerConfig struct {
	Level   string
	DBLevel string // silent, error, warn, info
}

type PostgresConfig struct {
	Host            string
	Port            string
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

type JWTConfig struct {
	Secret string
	TTL    time.Duration
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	CacheTTL time.Duration
}

// DSN builds the postgres connection string
func (p PostgresConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		p.User, p.Password, p.Host, p.Port, p.DBName, p.SSLMode)
}

// IsDevelopment enables verbose logging and error details in responses
func (s ServerConfig) IsDevelopment() bool {
	return s.AppEnv == EnvDevelopment
}

// LoadEnv reads .env files (if present) and the process environment
func LoadEnv() (*Config, error) {
	// Missing .env files are fine, real env vars win anyway
	_ = godotenv.Load(".env")
	_ = godotenv.Load("configs/.env")

	cfg := &Config{
		Server: ServerConfig{
			AppEnv:          getEnv("APP_ENV", EnvDevelopment),
			Port:            getEnv("PORT", "8080"),
			CORSOrigins:     getEnvSlice("CORS_ORIGINS", []string{"http://localhost:3000", "http://localhost:5173"}),
			ReadTimeout:     getEnvSeconds("HTTP_READ_TIMEOUT_SECONDS", 15),
			WriteTimeout:    getEnvSeconds("HTTP_WRITE_TIMEOUT_SECONDS", 30),
			ShutdownTimeout: getEnvSeconds("HTTP_SHUTDOWN_TIMEOUT_SECONDS", 10),
		},
		Logger: LoggerConfig{
			Level:   getEnv("LOG_LEVEL", "info"),
			DBLevel: getEnv("DB_LOG_LEVEL", "warn"),
		},
		Postgres: PostgresConfig{
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnv("DB_PORT", "5432"),
			User:            getEnv("DB_USER", "postgres"),
			Password:        getEnv("DB_PASSWORD", "postgres"),
			DBName:          getEnv("DB_NAME", "medshop"),
			SSLMode:         getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 10),
			ConnMaxLifetime: getEnvSeconds("DB_CONN_MAX_LIFETIME_SECONDS", 300),
			ConnMaxIdleTime: getEnvSeconds("DB_CONN_MAX_IDLE_TIME_SECONDS", 60),
		},
		JWT: JWTConfig{
			Secret: getEnv("JWT_SECRET", ""),
			TTL:    time.Duration(getEnvInt("JWT_TTL_HOURS", 24)) * time.Hour,
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
			CacheTTL: getEnvSeconds("DASHBOARD_CACHE_TTL_SECONDS", 30),
		},
	}

	if cfg.JWT.Secret == "" {
		if cfg.Server.AppEnv == EnvProduction || os.Getenv("GIN_MODE") == "release" {
			return nil, errors.New("JWT_SECRET environment variable is required in production mode")
		}
		cfg.JWT.Secret = devJWTSecret // development fallback only
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvSeconds(key string, fallback int) time.Duration {
	return time.Duration(getEnvInt(key, fallback)) * time.Second
}

func getEnvSlice(key string, fallback []string) []string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		parts := strings.Split(value, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		return parts
	}
	return fallback
}
