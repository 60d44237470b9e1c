// Package config provides application configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/spf13/viper"
)

const defaultSessionSecret = "change-me-session-secret"

// Config holds application configuration values loaded from file or environment variables.
type Config struct {
	Port           string `mapstructure:"PORT"`
	Env            string `mapstructure:"APP_ENV"`
	SiteName       string `mapstructure:"SITE_NAME"`
	SiteURL        string `mapstructure:"SITE_URL"`
	AllowedOrigins string `mapstructure:"ALLOWED_ORIGINS"`
	FeatureFlags   string `mapstructure:"FEATURE_FLAGS"`

	DBHost     string `mapstructure:"DB_HOST"`
	DBPort     string `mapstructure:"DB_PORT"`
	DBUser     string `mapstructure:"DB_USER"`
	DBPassword string `mapstructure:"DB_PASSWORD"`
	DBName     string `mapstructure:"DB_NAME"`
	DBSSLMode  string `mapstructure:"DB_SSLMODE"`

	DBMaxOpenConns           int `mapstructure:"DB_MAX_OPEN_CONNS"`
	DBMaxIdleConns           int `mapstructure:"DB_MAX_IDLE_CONNS"`
	DBConnMaxLifetimeMinutes int `mapstructure:"DB_CONN_MAX_LIFETIME_MINUTES"`
	DBRetryAttempts          int `mapstructure:"DB_RETRY_ATTEMPTS"`
	DBRetryInitialMS         int `mapstructure:"DB_RETRY_INITIAL_MS"`

	RedisURL string `mapstructure:"REDIS_URL"`

	SessionSecret      string `mapstructure:"SESSION_SECRET"`
	SessionTTLHours    int    `mapstructure:"SESSION_TTL_HOURS"`
	AuthCallbackSecret string `mapstructure:"AUTH_CALLBACK_SECRET"`
	AdminEmails        string `mapstructure:"ADMIN_EMAILS"`

	ContentDir    string `mapstructure:"CONTENT_DIR"`
	ContentGlob   string `mapstructure:"CONTENT_GLOB"`
	ContentFormat string `mapstructure:"CONTENT_FORMAT"`
	ContentWatch  bool   `mapstructure:"CONTENT_WATCH"`

	TracingEnabled  bool    `mapstructure:"TRACING_ENABLED"`
	TracingExporter string  `mapstructure:"TRACING_EXPORTER"`
	OTLPEndpoint    string  `mapstructure:"OTLP_ENDPOINT"`
	TracingSampler  float64 `mapstructure:"TRACING_SAMPLER_RATIO"`
}

// LoadConfig loads application configuration from file and environment variables.
func LoadConfig() (*Config, error) {
	viper.AddConfigPath(".")
	viper.AddConfigPath("..")
	viper.AddConfigPath("../..")
	viper.SetConfigName("config")
	viper.SetConfigType("yml")
	viper.AutomaticEnv()

	// The base file is optional.
	_ = viper.ReadInConfig()

	env := viper.GetString("APP_ENV")
	if env == "" {
		env = "development"
	}

	if env != "development" && env != "test" {
		viper.SetConfigName("config." + env)
		if err := viper.MergeInConfig(); err != nil {
			return nil, fmt.Errorf("required profile-specific config 'config.%s.yml' not found: %w", env, err)
		}
		log.Printf("Loaded profile-specific configuration: config.%s.yml", env)
	}

	setDefaults()

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}

	config.normalize()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

func setDefaults() {
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("APP_ENV", "development")
	viper.SetDefault("SITE_NAME", "folio")
	viper.SetDefault("SITE_URL", "http://localhost:3000")
	viper.SetDefault("ALLOWED_ORIGINS", "http://localhost:3000,http://127.0.0.1:3000")
	viper.SetDefault("FEATURE_FLAGS", "comments=on,reactions=on,page_views=on")

	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_USER", "folio")
	viper.SetDefault("DB_PASSWORD", "password")
	viper.SetDefault("DB_NAME", "folio")
	viper.SetDefault("DB_SSLMODE", "disable")
	viper.SetDefault("DB_MAX_OPEN_CONNS", 25)
	viper.SetDefault("DB_MAX_IDLE_CONNS", 5)
	viper.SetDefault("DB_CONN_MAX_LIFETIME_MINUTES", 5)
	viper.SetDefault("DB_RETRY_ATTEMPTS", 3)
	viper.SetDefault("DB_RETRY_INITIAL_MS", 1000)

	viper.SetDefault("REDIS_URL", "localhost:6379")

	viper.SetDefault("SESSION_SECRET", defaultSessionSecret)
	viper.SetDefault("SESSION_TTL_HOURS", 24*30)
	viper.SetDefault("AUTH_CALLBACK_SECRET", "")
	viper.SetDefault("ADMIN_EMAILS", "")

	viper.SetDefault("CONTENT_DIR", "content/posts")
	viper.SetDefault("CONTENT_GLOB", "**/*.{md,mdx}")
	viper.SetDefault("CONTENT_FORMAT", "lines")
	viper.SetDefault("CONTENT_WATCH", false)

	viper.SetDefault("TRACING_ENABLED", false)
	viper.SetDefault("TRACING_EXPORTER", "stdout")
	viper.SetDefault("OTLP_ENDPOINT", "localhost:4318")
	viper.SetDefault("TRACING_SAMPLER_RATIO", 1.0)
}

func (c *Config) normalize() {
	c.Env = strings.ToLower(strings.TrimSpace(c.Env))
	c.DBSSLMode = strings.ToLower(strings.TrimSpace(c.DBSSLMode))
	c.ContentFormat = strings.ToLower(strings.TrimSpace(c.ContentFormat))
}

// IsProduction reports whether the config targets a production deployment.
func (c *Config) IsProduction() bool {
	return c.Env == "production" || c.Env == "prod"
}

// AdminEmailList splits ADMIN_EMAILS into trimmed, lower-cased addresses.
func (c *Config) AdminEmailList() []string {
	var out []string
	for _, email := range strings.Split(c.AdminEmails, ",") {
		email = strings.ToLower(strings.TrimSpace(email))
		if email != "" {
			out = append(out, email)
		}
	}
	return out
}

// Validate ensures that required configuration values are present and meet security standards.
func (c *Config) Validate() error {
	if c.Port == "" {
		return errors.New("PORT is required")
	}
	if c.SessionSecret == "" {
		return errors.New("SESSION_SECRET is required")
	}
	if c.ContentDir == "" {
		return errors.New("CONTENT_DIR is required")
	}
	switch c.ContentFormat {
	case "", "lines", "yaml":
	default:
		return fmt.Errorf("CONTENT_FORMAT must be 'lines' or 'yaml', got %q", c.ContentFormat)
	}
	if c.DBRetryAttempts < 0 {
		return errors.New("DB_RETRY_ATTEMPTS must not be negative")
	}

	if c.IsProduction() {
		if c.SessionSecret == defaultSessionSecret {
			return errors.New("SESSION_SECRET must be changed from the default value in production")
		}
		if len(c.SessionSecret) < 32 {
			return errors.New("SESSION_SECRET must be at least 32 characters in production")
		}
		if c.DBPassword == "password" || c.DBPassword == "" {
			return errors.New("a strong DB_PASSWORD is required in production")
		}
		if c.DBSSLMode == "disable" || c.DBSSLMode == "" {
			return errors.New("DB_SSLMODE must enable TLS in production")
		}
		if c.AuthCallbackSecret == "" {
			return errors.New("AUTH_CALLBACK_SECRET is required in production")
		}
		if c.AllowedOrigins == "*" {
			log.Println("WARNING: ALLOWED_ORIGINS is set to '*' in production. This is insecure.")
		}
	} else if len(c.SessionSecret) < 32 {
		log.Println("WARNING: SESSION_SECRET is shorter than 32 characters. Consider using a stronger secret for production.")
	}

	return nil
}
