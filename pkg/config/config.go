package config

import (
	"errors"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database DatabaseConfig
	Redis    RedisConfig
	Session  SessionConfig
	Admin    AdminConfig
	Import   ImportConfig
	Exports  ExportConfig
	Log      LogConfig
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

// SessionConfig controls the server-side session store and its cookie.
type SessionConfig struct {
	CookieName string
	TTL        time.Duration
}

// AdminConfig carries the admin credentials, the localhost gate and the
// login retry budget. The "admin ..." keys keep their historical spelling
// from config.json so existing deployment files keep working.
type AdminConfig struct {
	Username      string
	Password      string
	FromLocalhost bool
	LoginTries    int
}

// ImportConfig bounds the roster spreadsheet import.
type ImportConfig struct {
	MaxRows int
}

// ExportConfig toggles the attendance report endpoints.
type ExportConfig struct {
	Enabled bool
}

type LogConfig struct {
	Level  string
	Format string
}

// Load reads defaults, then the JSON config file, then the environment.
// The config file path defaults to config.json and may be overridden with
// CONFIG_FILE; a missing file is not an error.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()

	setDefaults(v)

	path := os.Getenv("CONFIG_FILE")
	if path == "" {
		path = "config.json"
	}
	v.SetConfigFile(path)
	v.SetConfigType("json")

	if err := v.ReadInConfig(); err != nil {
		var pathErr *os.PathError
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &pathErr) && !errors.As(err, &notFound) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.Session = SessionConfig{
		CookieName: v.GetString("SESSION_COOKIE_NAME"),
		TTL:        parseDuration(v.GetString("SESSION_TTL"), 2*time.Hour),
	}

	cfg.Admin = AdminConfig{
		Username:      v.GetString("admin username"),
		Password:      v.GetString("admin password"),
		FromLocalhost: v.GetBool("admin from localhost"),
		LoginTries:    v.GetInt("LOGIN_TRIES"),
	}
	if cfg.Admin.LoginTries <= 0 {
		cfg.Admin.LoginTries = 5
	}

	cfg.Import = ImportConfig{
		MaxRows: v.GetInt("IMPORT_MAX_ROWS"),
	}

	cfg.Exports = ExportConfig{
		Enabled: v.GetBool("ENABLE_EXPORTS"),
	}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "absensi")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("SESSION_COOKIE_NAME", "attendance_session")
	v.SetDefault("SESSION_TTL", "2h")

	v.SetDefault("admin username", "admin")
	v.SetDefault("admin password", "admin")
	v.SetDefault("admin from localhost", true)
	v.SetDefault("LOGIN_TRIES", 5)

	v.SetDefault("IMPORT_MAX_ROWS", 2000)
	v.SetDefault("ENABLE_EXPORTS", true)

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
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
