package config

import (
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// Config holds every setting the server reads from the environment (or an
// optional .env file in the working directory).
type Config struct {
	Port string `mapstructure:"PORT"`

	// SQLite is used unless DBHost is set.
	Database   string `mapstructure:"DATABASE"`
	DBHost     string `mapstructure:"DB_HOST"`
	DBPort     string `mapstructure:"DB_PORT"`
	DBUser     string `mapstructure:"DB_USER"`
	DBPassword string `mapstructure:"DB_PASSWORD"`
	DBName     string `mapstructure:"DB_NAME"`
	DBSSLMode  string `mapstructure:"DB_SSLMODE"`

	SessionKey string `mapstructure:"SESSION_KEY"`

	LogLevel     string `mapstructure:"LOG_LEVEL"`
	LogstashAddr string `mapstructure:"LOGSTASH_ADDR"`

	RedisAddr       string `mapstructure:"REDIS_ADDR"`
	RedisPassword   string `mapstructure:"REDIS_PASSWORD"`
	RedisDB         int    `mapstructure:"REDIS_DB"`
	CacheTTLSeconds int    `mapstructure:"CACHE_TTL_SECONDS"`

	MediaRoot   string `mapstructure:"MEDIA_ROOT"`
	MediaURL    string `mapstructure:"MEDIA_URL"`
	S3Bucket    string `mapstructure:"S3_BUCKET"`
	S3Region    string `mapstructure:"S3_REGION"`
	S3PublicURL string `mapstructure:"S3_PUBLIC_URL"`

	PageSize int `mapstructure:"PAGE_SIZE"`
}

var defaults = map[string]interface{}{
	"PORT":              ":9090",
	"DATABASE":          "yatube.db",
	"DB_HOST":           "",
	"DB_PORT":           "5432",
	"DB_USER":           "",
	"DB_PASSWORD":       "",
	"DB_NAME":           "yatube",
	"DB_SSLMODE":        "require",
	"SESSION_KEY":       "SESSION_KEY",
	"LOG_LEVEL":         "warn",
	"LOGSTASH_ADDR":     "",
	"REDIS_ADDR":        "",
	"REDIS_PASSWORD":    "",
	"REDIS_DB":          0,
	"CACHE_TTL_SECONDS": 20,
	"MEDIA_ROOT":        "media",
	"MEDIA_URL":         "/media/",
	"S3_BUCKET":         "",
	"S3_REGION":         "us-west-1",
	"S3_PUBLIC_URL":     "",
	"PAGE_SIZE":         10,
}

// Load reads an optional .env file and then the process environment.
// A missing .env file is not an error.
func Load() (*Config, error) {
	// Values already present in the environment win over .env.
	_ = godotenv.Load()

	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to parse config")
	}
	if cfg.PageSize <= 0 {
		return nil, errors.Errorf("PAGE_SIZE must be positive, got %d", cfg.PageSize)
	}
	if cfg.CacheTTLSeconds < 0 {
		return nil, errors.Errorf("CACHE_TTL_SECONDS must not be negative, got %d", cfg.CacheTTLSeconds)
	}
	return &cfg, nil
}

// UsePostgres reports whether a remote PostgreSQL database is configured.
func (c *Config) UsePostgres() bool {
	return c.DBHost != ""
}
