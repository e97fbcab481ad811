package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server struct {
		Port int `mapstructure:"port"`
	} `mapstructure:"server"`

	Database struct {
		Driver string `mapstructure:"driver"` // "postgres"
		DSN    string `mapstructure:"dsn"`
	} `mapstructure:"database"`

	Auth struct {
		JWTSecret string `mapstructure:"jwt_secret"`
		// DeviceJWTSecret signs device tokens; when empty the user
		// secret is used instead.
		DeviceJWTSecret string `mapstructure:"device_jwt_secret"`
		// SecureCookies adds the Secure attribute to the session
		// cookie. Enable in production.
		SecureCookies bool `mapstructure:"secure_cookies"`
	} `mapstructure:"auth"`

	DeviceAuth struct {
		RateLimit  int           `mapstructure:"rate_limit"`
		RateWindow time.Duration `mapstructure:"rate_window"`
	} `mapstructure:"device_auth"`

	Logs struct {
		Level  string `mapstructure:"level"`  // trace|debug|info|warning|error
		Format string `mapstructure:"format"` // text|json
	} `mapstructure:"logs"`
}

// Load reads configuration from the environment and an optional config
// file, applying defaults.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("server.port", 8080)

	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.dsn", "host=localhost port=5432 user=postgres password=password dbname=fleetglue sslmode=disable")

	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.device_jwt_secret", "")
	v.SetDefault("auth.secure_cookies", false)

	v.SetDefault("device_auth.rate_limit", 10)
	v.SetDefault("device_auth.rate_window", "60s")

	v.SetDefault("logs.level", "info")
	v.SetDefault("logs.format", "text")

	if cfgFile := os.Getenv("CONFIG_FILE"); cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/fleetglue")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("config read error: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config unmarshal error: %w", err)
	}
	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// MustLoad panics when the configuration cannot be loaded.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

func validate(c *Config) error {
	if strings.TrimSpace(c.Auth.JWTSecret) == "" {
		return errors.New("auth.jwt_secret must be set")
	}
	if c.DeviceAuth.RateLimit < 1 {
		return errors.New("device_auth.rate_limit must be at least 1")
	}
	if c.DeviceAuth.RateWindow <= 0 {
		return errors.New("device_auth.rate_window must be positive")
	}
	return nil
}
