package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server       ServerConfig
	Database     DatabaseConfig
	Redis        RedisConfig
	Storage      StorageConfig
	ProfileAPI   ProfileAPIConfig
	Media        MediaConfig
	Logging      LoggingConfig
	GeminiAPIKey string
}

type ServerConfig struct {
	Host               string
	Port               int
	Env                string
	ReadTimeout        time.Duration
	WriteTimeout       time.Duration
	CORSAllowedOrigins []string
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// StorageConfig selects the backend of the local-override store.
type StorageConfig struct {
	Type        string
	OverrideTTL time.Duration
}

type ProfileAPIConfig struct {
	BaseURL    string
	Timeout    time.Duration
	Fallback   bool
	MaxRetries int
}

type MediaConfig struct {
	MaxUploadBytes   int64
	MaxPixels        int
	PhotoSessionTTL  time.Duration
	MaxPhotoSessions int
}

type LoggingConfig struct {
	Level string
}

const (
	StorageMemory   = "memory"
	StorageRedis    = "redis"
	StoragePostgres = "postgres"
)

// Load loads configuration from environment variables or .env file
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()
	setDefaults(v)

	// Try to read from .env file, but don't fail if it doesn't exist
	_ = v.ReadInConfig()

	return fromViper(v)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("SERVER_PORT", 8080)
	v.SetDefault("ENV", "development")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "*")
	v.SetDefault("STORAGE_TYPE", StorageMemory)
	v.SetDefault("OVERRIDE_TTL_HOURS", 0)
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("PROFILE_API_BASE_URL", "http://localhost:3000/api")
	v.SetDefault("PROFILE_API_TIMEOUT_SEC", 10)
	v.SetDefault("PROFILE_API_FALLBACK", true)
	v.SetDefault("PROFILE_API_MAX_RETRIES", 2)
	v.SetDefault("MEDIA_MAX_UPLOAD_BYTES", 8<<20)
	v.SetDefault("MEDIA_MAX_PIXELS", 40_000_000)
	v.SetDefault("PHOTO_SESSION_TTL_MIN", 15)
	v.SetDefault("PHOTO_MAX_SESSIONS", 1000)
	v.SetDefault("LOG_LEVEL", "info")
}

func fromViper(v *viper.Viper) (*Config, error) {
	config := &Config{
		Server: ServerConfig{
			Host:               v.GetString("SERVER_HOST"),
			Port:               v.GetInt("SERVER_PORT"),
			Env:                v.GetString("ENV"),
			ReadTimeout:        15 * time.Second,
			WriteTimeout:       15 * time.Second,
			CORSAllowedOrigins: splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
		},
		Database: DatabaseConfig{
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetInt("DB_PORT"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASSWORD"),
			DBName:   v.GetString("DB_NAME"),
			SSLMode:  v.GetString("DB_SSL_MODE"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("REDIS_HOST"),
			Port:     v.GetInt("REDIS_PORT"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		Storage: StorageConfig{
			Type:        strings.ToLower(v.GetString("STORAGE_TYPE")),
			OverrideTTL: time.Duration(v.GetInt("OVERRIDE_TTL_HOURS")) * time.Hour,
		},
		ProfileAPI: ProfileAPIConfig{
			BaseURL:    strings.TrimRight(v.GetString("PROFILE_API_BASE_URL"), "/"),
			Timeout:    time.Duration(v.GetInt("PROFILE_API_TIMEOUT_SEC")) * time.Second,
			Fallback:   v.GetBool("PROFILE_API_FALLBACK"),
			MaxRetries: v.GetInt("PROFILE_API_MAX_RETRIES"),
		},
		Media: MediaConfig{
			MaxUploadBytes:   v.GetInt64("MEDIA_MAX_UPLOAD_BYTES"),
			MaxPixels:        v.GetInt("MEDIA_MAX_PIXELS"),
			PhotoSessionTTL:  time.Duration(v.GetInt("PHOTO_SESSION_TTL_MIN")) * time.Minute,
			MaxPhotoSessions: v.GetInt("PHOTO_MAX_SESSIONS"),
		},
		Logging: LoggingConfig{
			Level: v.GetString("LOG_LEVEL"),
		},
		GeminiAPIKey: v.GetString("GEMINI_API_KEY"),
	}

	// Validate critical configuration
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate validates critical configuration values
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server port %d is out of range", c.Server.Port)
	}
	if c.ProfileAPI.BaseURL == "" {
		return fmt.Errorf("profile API base URL is required")
	}
	if c.ProfileAPI.Timeout <= 0 {
		return fmt.Errorf("profile API timeout must be positive")
	}
	if c.ProfileAPI.MaxRetries < 0 {
		return fmt.Errorf("profile API max retries must not be negative")
	}
	if c.Media.MaxUploadBytes <= 0 {
		return fmt.Errorf("media max upload bytes must be positive")
	}
	if c.Media.MaxPixels <= 0 {
		return fmt.Errorf("media max pixels must be positive")
	}
	if c.Media.PhotoSessionTTL < 0 || c.Media.MaxPhotoSessions < 0 {
		return fmt.Errorf("photo session limits must not be negative")
	}

	switch c.Storage.Type {
	case StorageMemory, StorageRedis:
	case StoragePostgres:
		if c.Database.Host == "" {
			return fmt.Errorf("database host is required")
		}
		if c.Database.User == "" {
			return fmt.Errorf("database user is required")
		}
		if c.Database.DBName == "" {
			return fmt.Errorf("database name is required")
		}
	default:
		return fmt.Errorf("unknown storage type %q", c.Storage.Type)
	}
	return nil
}

// GetDSN returns PostgreSQL connection string
func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

// GetAddr returns Redis address
func (c *RedisConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// IsDevelopment reports whether the service runs in a local environment.
func (c *ServerConfig) IsDevelopment() bool {
	return c.Env == "" || c.Env == "development" || c.Env == "local"
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
