package config

import (
	"os"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_ValidateSSLMode(t *testing.T) {
	tests := []struct {
		name        string
		env         string
		sslMode     string
		expectError bool
	}{
		{"Production with empty SSL mode", "production", "", true},
		{"Production with disable SSL mode", "production", "disable", true},
		{"Production with require SSL mode", "production", "require", false},
		{"Prod with empty SSL mode", "prod", "", true},
		{"Prod with disable SSL mode", "prod", "disable", true},
		{"Prod with verify-full SSL mode", "prod", "verify-full", false},
		{"Development with disable SSL mode", "development", "disable", false},
		{"Test with empty SSL mode", "test", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &Config{
				Env:                      tt.env,
				DBSSLMode:                tt.sslMode,
				JWTSecret:                "secure-secret-at-least-32-chars-long",
				DBPassword:               "secure-password",
				Port:                     "8080",
				DBConnMaxLifetimeMinutes: 1,
				RedisURL:                 "redis://localhost:6379",
			}

			err := c.Validate()
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConfig_ValidateLimits(t *testing.T) {
	base := func() *Config {
		return &Config{Port: "8080", JWTSecret: "secure-secret-at-least-32-chars-long", Env: "test"}
	}

	c := base()
	c.FeedDefaultLimit, c.FeedMaxLimit = 50, 10
	assert.Error(t, c.Validate())

	c = base()
	c.NotificationDefaultLimit, c.NotificationMaxLimit = 200, 100
	assert.Error(t, c.Validate())

	c = base()
	c.TracingSampleRatio = 1.5
	assert.Error(t, c.Validate())

	c = base()
	c.FeedDefaultLimit, c.FeedMaxLimit = 20, 100
	assert.NoError(t, c.Validate())
}

func TestConfig_EngineDefaults(t *testing.T) {
	e := (&Config{}).Engine()
	assert.Equal(t, DefaultEngine, e)

	e = (&Config{FeedDefaultLimit: 10, FeedMaxLimit: 40, FeedCacheTTLSeconds: 5}).Engine()
	assert.Equal(t, 10, e.FeedDefaultLimit)
	assert.Equal(t, 40, e.FeedMaxLimit)
	assert.Equal(t, 5*time.Second, e.FeedCacheTTL)
	assert.Equal(t, DefaultEngine.NotificationMaxLimit, e.NotificationMaxLimit)
}

func TestEngine_Clamp(t *testing.T) {
	e := DefaultEngine
	assert.Equal(t, 20, e.ClampFeedLimit(0))
	assert.Equal(t, 20, e.ClampFeedLimit(-3))
	assert.Equal(t, 7, e.ClampFeedLimit(7))
	assert.Equal(t, 100, e.ClampFeedLimit(500))
	assert.Equal(t, 50, e.ClampNotificationLimit(0))
	assert.Equal(t, 100, e.ClampNotificationLimit(101))
}

func TestLoadConfig_SSLModeNormalization(t *testing.T) {
	// Clean up environment variables and viper after test
	defer os.Unsetenv("APP_ENV")
	defer os.Unsetenv("DB_SSLMODE")
	defer viper.Reset()

	os.Setenv("APP_ENV", "development")
	os.Setenv("DB_SSLMODE", "  DISABLE  ")

	c, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "disable", c.DBSSLMode)
	assert.Equal(t, DefaultEngine.FeedDefaultLimit, c.FeedDefaultLimit)
}
