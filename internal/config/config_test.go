package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() Config {
	return Config{
		Server: ServerConfig{
			Environment: EnvDevelopment,
			Timezone:    "UTC",
		},
		Database: DatabaseConfig{Driver: DriverPostgres},
		JWT: JWTConfig{
			AccessSecret:         defaultAccessSecret,
			RefreshSecret:        defaultRefreshSecret,
			AccessTokenDuration:  15 * time.Minute,
			RefreshTokenDuration: 7 * 24 * time.Hour,
		},
		Security: SecurityConfig{BcryptCost: 12, PasswordMinLength: 8},
	}
}

func TestConfig_ValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "defaults are valid in development", mutate: func(c *Config) {}},
		{
			name:    "unknown driver",
			mutate:  func(c *Config) { c.Database.Driver = "oracle" },
			wantErr: "unsupported database driver",
		},
		{
			name:    "unknown environment",
			mutate:  func(c *Config) { c.Server.Environment = "staging" },
			wantErr: "unknown environment",
		},
		{
			name:    "bad time zone",
			mutate:  func(c *Config) { c.Server.Timezone = "Mars/Olympus" },
			wantErr: "invalid APP_TIMEZONE",
		},
		{
			name:    "access outlives refresh",
			mutate:  func(c *Config) { c.JWT.AccessTokenDuration = 30 * 24 * time.Hour },
			wantErr: "access token duration must be shorter",
		},
		{
			name:    "bcrypt cost out of range",
			mutate:  func(c *Config) { c.Security.BcryptCost = 2 },
			wantErr: "BCRYPT_COST",
		},
		{
			name:    "default secrets in production",
			mutate:  func(c *Config) { c.Server.Environment = EnvProduction },
			wantErr: "JWT secrets must be set in production",
		},
		{
			name: "production with real secrets",
			mutate: func(c *Config) {
				c.Server.Environment = EnvProduction
				c.JWT.AccessSecret = "an-access-secret-that-is-long-enough"
				c.JWT.RefreshSecret = "a-refresh-secret-that-is-long-enough"
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)

			err := cfg.ValidateConfig()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoad(t *testing.T) {
	t.Setenv("DB_DRIVER", "sqlite3")
	t.Setenv("DB_PATH", "file:test.db")
	t.Setenv("ALLOW_ORIGINS", "http://a.test,http://b.test")
	t.Setenv("APP_TIMEZONE", "Europe/Madrid")
	t.Setenv("JWT_ACCESS_TOKEN_DURATION", "5m")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DriverSQLite, cfg.Database.Driver)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.Server.AllowOrigins)
	assert.Equal(t, 5*time.Minute, cfg.JWT.AccessTokenDuration)
	assert.Equal(t, "Europe/Madrid", cfg.Location().String())
	assert.Equal(t, 12, cfg.Security.BcryptCost)

	dbCfg := cfg.ToDatabaseConfig()
	assert.Equal(t, "file:test.db", dbCfg.Path)
	assert.Equal(t, DriverSQLite, dbCfg.Driver)
}

func TestConfig_Location(t *testing.T) {
	cfg := validConfig()
	cfg.Server.Timezone = "not/a/zone"
	assert.Equal(t, time.UTC, cfg.Location())
}
