package config

import (
	"errors"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Storage backend identifiers accepted by STORAGE_BACKEND.
const (
	BackendFile     = "file"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
)

type Config struct {
	Env string

	Storage  StorageConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Log      LogConfig
	Import   ImportConfig
	Export   ExportConfig
}

// StorageConfig selects and tunes the blob persistence backend.
type StorageConfig struct {
	Backend string
	DataDir string
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type LogConfig struct {
	Level  string
	Format string
}

// ImportConfig tunes the reconciliation behaviour of bulk imports.
type ImportConfig struct {
	EmailDomain string
}

// ExportConfig controls where rendered exports land.
type ExportConfig struct {
	OutputDir string
	ResultTTL time.Duration
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("CSF_ENV")

	cfg.Storage = StorageConfig{
		Backend: v.GetString("CSF_STORAGE_BACKEND"),
		DataDir: v.GetString("CSF_DATA_DIR"),
	}

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("CSF_DB_HOST"),
		Port:         v.GetInt("CSF_DB_PORT"),
		User:         v.GetString("CSF_DB_USER"),
		Password:     v.GetString("CSF_DB_PASSWORD"),
		Name:         v.GetString("CSF_DB_NAME"),
		SSLMode:      v.GetString("CSF_DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("CSF_DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("CSF_DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("CSF_REDIS_HOST"),
		Port:     v.GetInt("CSF_REDIS_PORT"),
		Password: v.GetString("CSF_REDIS_PASSWORD"),
		DB:       v.GetInt("CSF_REDIS_DB"),
	}

	cfg.Log = LogConfig{
		Level:  v.GetString("CSF_LOG_LEVEL"),
		Format: v.GetString("CSF_LOG_FORMAT"),
	}

	cfg.Import = ImportConfig{
		EmailDomain: v.GetString("CSF_IMPORT_EMAIL_DOMAIN"),
	}

	cfg.Export = ExportConfig{
		OutputDir: v.GetString("CSF_EXPORT_DIR"),
		ResultTTL: parseDuration(v.GetString("CSF_EXPORT_RESULT_TTL"), 24*time.Hour),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("CSF_ENV", EnvDevelopment)

	v.SetDefault("CSF_STORAGE_BACKEND", BackendFile)
	v.SetDefault("CSF_DATA_DIR", "./data")

	v.SetDefault("CSF_DB_HOST", "localhost")
	v.SetDefault("CSF_DB_PORT", 5432)
	v.SetDefault("CSF_DB_USER", "postgres")
	v.SetDefault("CSF_DB_PASSWORD", "postgres")
	v.SetDefault("CSF_DB_NAME", "csf_tracker")
	v.SetDefault("CSF_DB_SSL_MODE", "disable")
	v.SetDefault("CSF_DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("CSF_DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("CSF_REDIS_HOST", "localhost")
	v.SetDefault("CSF_REDIS_PORT", 6379)
	v.SetDefault("CSF_REDIS_PASSWORD", "")
	v.SetDefault("CSF_REDIS_DB", 0)

	v.SetDefault("CSF_LOG_LEVEL", "info")
	v.SetDefault("CSF_LOG_FORMAT", "console")

	v.SetDefault("CSF_IMPORT_EMAIL_DOMAIN", "example.com")

	v.SetDefault("CSF_EXPORT_DIR", "./exports")
	v.SetDefault("CSF_EXPORT_RESULT_TTL", "24h")
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}
