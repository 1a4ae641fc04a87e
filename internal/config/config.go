package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config aggregates all runtime settings required by the API.
type Config struct {
	AppName  string
	HTTP     HTTPConfig
	Database DatabaseConfig
	Logger   LoggerConfig
	CORS     CORSConfig
}

type HTTPConfig struct {
	Port            string
	Mode            string
	ShutdownTimeout time.Duration
}

type DatabaseConfig struct {
	URL            string
	Name           string
	ConnectTimeout time.Duration
}

type LoggerConfig struct {
	Level    string
	Encoding string
}

type CORSConfig struct {
	AllowedOrigins []string
}

// Load reads configuration from an optional .env file, an optional config.yaml
// and the process environment, in increasing order of precedence.
func Load() (*Config, error) {
	if err := godotenv.Load(".env"); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	return load(viper.New())
}

func load(v *viper.Viper) (*Config, error) {
	v.SetDefault("APP_NAME", "muchtodo-api")
	v.SetDefault("PORT", "8000")
	v.SetDefault("GIN_MODE", "release")
	v.SetDefault("SHUTDOWN_TIMEOUT", 15*time.Second)
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("DATABASE_NAME", "muchtodo")
	v.SetDefault("DB_CONNECT_TIMEOUT", 10*time.Second)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_ENCODING", "json")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "*")

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	v.AutomaticEnv()

	cfg := &Config{
		AppName: v.GetString("APP_NAME"),
		HTTP: HTTPConfig{
			Port:            v.GetString("PORT"),
			Mode:            v.GetString("GIN_MODE"),
			ShutdownTimeout: v.GetDuration("SHUTDOWN_TIMEOUT"),
		},
		Database: DatabaseConfig{
			URL:            v.GetString("DATABASE_URL"),
			Name:           v.GetString("DATABASE_NAME"),
			ConnectTimeout: v.GetDuration("DB_CONNECT_TIMEOUT"),
		},
		Logger: LoggerConfig{
			Level:    v.GetString("LOG_LEVEL"),
			Encoding: v.GetString("LOG_ENCODING"),
		},
		CORS: CORSConfig{
			AllowedOrigins: splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
		},
	}

	if cfg.HTTP.Port == "" {
		return nil, errors.New("PORT must not be empty")
	}
	return cfg, nil
}

// Address returns the HTTP listen address.
func (c *Config) Address() string {
	return ":" + c.HTTP.Port
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
