package config

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET_KEY", "secret")
	t.Setenv("DB_PASSWORD", "postgres")
	t.Setenv("STORAGE_DRIVER", "")
	t.Setenv("ATTENDANCE_RETENTION_MONTHS", "")
	t.Setenv("CORS_ALLOWED_ORIGINS", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, StorageDriverPostgres, cfg.Storage.Driver)
	assert.Equal(t, 6, cfg.Attendance.RetentionMonths)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.App.AllowedOrigins)
	assert.Contains(t, cfg.DatabaseURL(), "sslmode=")
}

func TestLoad_MemoryDriverNeedsNoDatabase(t *testing.T) {
	t.Setenv("JWT_SECRET_KEY", "secret")
	t.Setenv("DB_PASSWORD", "")
	t.Setenv("STORAGE_DRIVER", "Memory")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.test, https://b.test")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, StorageDriverMemory, cfg.Storage.Driver)
	assert.Equal(t, []string{"https://a.test", "https://b.test"}, cfg.App.AllowedOrigins)
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			JWT:        JWTConfig{Secret: "s", AccessExpiration: "1h", RefreshExpiration: "24h"},
			Attendance: AttendanceConfig{RetentionMonths: 6},
			Storage:    StorageConfig{Driver: StorageDriverMemory},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"valid", func(c *Config) {}, ""},
		{"unknown driver", func(c *Config) { c.Storage.Driver = "sqlite" }, "STORAGE_DRIVER"},
		{"postgres needs password", func(c *Config) { c.Storage.Driver = StorageDriverPostgres }, "DB_PASSWORD"},
		{"missing secret", func(c *Config) { c.JWT.Secret = "" }, "JWT_SECRET_KEY"},
		{"bad access expiry", func(c *Config) { c.JWT.AccessExpiration = "soon" }, "JWT_ACCESS_EXPIRATION_TIME"},
		{"zero retention", func(c *Config) { c.Attendance.RetentionMonths = 0 }, "ATTENDANCE_RETENTION_MONTHS"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(&c)
			err := c.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestSlogLevel(t *testing.T) {
	c := Config{App: AppConfig{LogLevel: "DEBUG"}}
	assert.Equal(t, slog.LevelDebug, c.SlogLevel())

	c.App.LogLevel = "verbose"
	assert.Equal(t, slog.LevelInfo, c.SlogLevel())
}
