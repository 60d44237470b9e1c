package config

import (
	"os"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		Port:               "8080",
		Env:                "development",
		SessionSecret:      "secure-secret-at-least-32-chars-long",
		AuthCallbackSecret: "callback-secret",
		DBPassword:         "secure-password",
		DBSSLMode:          "require",
		ContentDir:         "content/posts",
		ContentFormat:      "lines",
	}
}

func TestConfig_ValidateProduction(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(c *Config)
		expectError bool
	}{
		{"valid production", func(c *Config) { c.Env = "production" }, false},
		{"default secret", func(c *Config) { c.Env = "production"; c.SessionSecret = defaultSessionSecret }, true},
		{"short secret", func(c *Config) { c.Env = "prod"; c.SessionSecret = "short" }, true},
		{"weak db password", func(c *Config) { c.Env = "production"; c.DBPassword = "password" }, true},
		{"ssl disabled", func(c *Config) { c.Env = "production"; c.DBSSLMode = "disable" }, true},
		{"missing callback secret", func(c *Config) { c.Env = "production"; c.AuthCallbackSecret = "" }, true},
		{"development tolerates short secret", func(c *Config) { c.SessionSecret = "short" }, false},
		{"bad content format", func(c *Config) { c.ContentFormat = "toml" }, true},
		{"negative retries", func(c *Config) { c.DBRetryAttempts = -1 }, true},
		{"missing port", func(c *Config) { c.Port = "" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validConfig()
			tt.mutate(c)
			err := c.Validate()
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConfig_AdminEmailList(t *testing.T) {
	c := &Config{AdminEmails: " Admin@Example.com, ,ops@example.com "}
	assert.Equal(t, []string{"admin@example.com", "ops@example.com"}, c.AdminEmailList())
}

func TestLoadConfig_Normalization(t *testing.T) {
	defer os.Unsetenv("APP_ENV")
	defer os.Unsetenv("DB_SSLMODE")
	defer os.Unsetenv("CONTENT_FORMAT")
	defer viper.Reset()

	os.Setenv("APP_ENV", "development")
	os.Setenv("DB_SSLMODE", "  DISABLE  ")
	os.Setenv("CONTENT_FORMAT", " YAML ")

	c, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "disable", c.DBSSLMode)
	assert.Equal(t, "yaml", c.ContentFormat)
	assert.Equal(t, 3, c.DBRetryAttempts)
	assert.False(t, c.IsProduction())
}
