package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server struct {
		Port           string   `mapstructure:"port"`
		Debug          bool     `mapstructure:"debug"`
		DebugAsync     bool     `mapstructure:"debug_async"`
		AllowedOrigins []string `mapstructure:"allowed_origins"`
	} `mapstructure:"server"`
	Database struct {
		Host     string `mapstructure:"host"`
		Port     string `mapstructure:"port"`
		User     string `mapstructure:"user"`
		Password string `mapstructure:"password"`
		Name     string `mapstructure:"name"`
		SSLMode  string `mapstructure:"sslmode"`
	} `mapstructure:"database"`
	Redis struct {
		Host     string `mapstructure:"host"`
		Port     string `mapstructure:"port"`
		Password string `mapstructure:"password"`
		DB       int    `mapstructure:"db"`
	} `mapstructure:"redis"`
	JWT struct {
		SecretKey string        `mapstructure:"secret_key"`
		TTL       time.Duration `mapstructure:"ttl"`
	} `mapstructure:"jwt"`
	CSRF struct {
		SecretKey string `mapstructure:"secret_key"`
	} `mapstructure:"csrf"`
	Registration Registration `mapstructure:"registration"`
	Security     struct {
		PasswordHash string `mapstructure:"password_hash"`
		BcryptCost   int    `mapstructure:"bcrypt_cost"`
	} `mapstructure:"security"`
	Log struct {
		Level  string `mapstructure:"level"`
		Format string `mapstructure:"format"`
	} `mapstructure:"log"`
}

// Registration holds the account creation policy.
type Registration struct {
	Enabled           bool          `mapstructure:"enabled"`
	RequireActivation bool          `mapstructure:"require_activation"`
	DefaultTitle      string        `mapstructure:"default_title"`
	ActivationTTL     time.Duration `mapstructure:"activation_ttl"`
}

// DSN returns the lib/pq connection string for the database section.
func (c *Config) DSN() string {
	db := c.Database
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		db.User, db.Password, db.Host, db.Port, db.Name, db.SSLMode)
}

// Validate rejects configurations the server cannot run with.
func (c *Config) Validate() error {
	if c.JWT.SecretKey == "" {
		return errors.New("jwt.secret_key is required")
	}
	if c.CSRF.SecretKey == "" {
		return errors.New("csrf.secret_key is required")
	}
	switch c.Security.PasswordHash {
	case "argon2id", "bcrypt":
	default:
		return fmt.Errorf("unknown security.password_hash %q", c.Security.PasswordHash)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.debug", false)
	v.SetDefault("server.debug_async", false)
	v.SetDefault("server.allowed_origins", []string{"http://localhost:3000"})
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", "6379")
	v.SetDefault("jwt.ttl", time.Hour)
	v.SetDefault("registration.enabled", true)
	v.SetDefault("registration.require_activation", true)
	v.SetDefault("registration.default_title", "New Member")
	v.SetDefault("registration.activation_ttl", 48*time.Hour)
	v.SetDefault("security.password_hash", "argon2id")
	v.SetDefault("security.bcrypt_cost", 12)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
}

// LoadConfig reads config.yml from path and overlays APP_* environment variables.
// A missing config file is not an error; defaults and environment still apply.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yml")

	v.SetEnvPrefix("app")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
