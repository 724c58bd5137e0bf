// internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"

	"github.com/gurkanbulca/projecttracker/internal/database"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
	EnvTest        = "test"
)

const (
	DriverPostgres = "postgres"
	DriverPgx      = "pgx"
	DriverSQLite   = "sqlite3"
)

const (
	defaultAccessSecret  = "dev-access-secret-change-in-production"
	defaultRefreshSecret = "dev-refresh-secret-change-in-production"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	JWT      JWTConfig
	Security SecurityConfig
	Redis    RedisConfig
}

type ServerConfig struct {
	HTTPPort         string        `env:"HTTP_PORT" env-default:"8080"`
	GRPCPort         string        `env:"GRPC_PORT" env-default:"50051"`
	Environment      string        `env:"ENVIRONMENT" env-default:"development"`
	AutoMigrate      bool          `env:"AUTO_MIGRATE" env-default:"true"`
	EnableReflection bool          `env:"ENABLE_REFLECTION" env-default:"true"`
	ReadTimeout      time.Duration `env:"HTTP_READ_TIMEOUT" env-default:"15s"`
	WriteTimeout     time.Duration `env:"HTTP_WRITE_TIMEOUT" env-default:"15s"`
	ShutdownTimeout  time.Duration `env:"SHUTDOWN_TIMEOUT" env-default:"10s"`
	AllowOrigins     []string      `env:"ALLOW_ORIGINS" env-separator:"," env-default:"*"`
	Timezone         string        `env:"APP_TIMEZONE" env-default:"UTC"`
}

type DatabaseConfig struct {
	Driver          string        `env:"DB_DRIVER" env-default:"postgres"`
	Host            string        `env:"DB_HOST" env-default:"localhost"`
	Port            int           `env:"DB_PORT" env-default:"5432"`
	User            string        `env:"DB_USER" env-default:"postgres"`
	Password        string        `env:"DB_PASSWORD" env-default:"postgres"`
	DBName          string        `env:"DB_NAME" env-default:"projecttracker"`
	SSLMode         string        `env:"DB_SSL_MODE" env-default:"disable"`
	Path            string        `env:"DB_PATH" env-default:"file:projecttracker.db?_fk=1&_txlock=immediate"`
	MaxOpenConns    int           `env:"DB_MAX_OPEN_CONNS" env-default:"25"`
	MaxIdleConns    int           `env:"DB_MAX_IDLE_CONNS" env-default:"5"`
	ConnMaxLifetime time.Duration `env:"DB_CONN_MAX_LIFETIME" env-default:"5m"`
}

type JWTConfig struct {
	AccessSecret         string        `env:"JWT_ACCESS_SECRET" env-default:"dev-access-secret-change-in-production"`
	RefreshSecret        string        `env:"JWT_REFRESH_SECRET" env-default:"dev-refresh-secret-change-in-production"`
	AccessTokenDuration  time.Duration `env:"JWT_ACCESS_TOKEN_DURATION" env-default:"15m"`
	RefreshTokenDuration time.Duration `env:"JWT_REFRESH_TOKEN_DURATION" env-default:"168h"`
	Issuer               string        `env:"JWT_ISSUER" env-default:"projecttracker"`
}

type SecurityConfig struct {
	BcryptCost        int `env:"BCRYPT_COST" env-default:"12"`
	PasswordMinLength int `env:"PASSWORD_MIN_LENGTH" env-default:"8"`
}

// RedisConfig configures the access-token revocation store. An empty Addr
// disables revocation.
type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB" env-default:"0"`
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("read env: %w", err)
	}
	return &cfg, nil
}

// ValidateConfig checks values that cleanenv cannot express as tags.
func (c *Config) ValidateConfig() error {
	var errs []error

	switch c.Server.Environment {
	case EnvDevelopment, EnvProduction, EnvTest:
	default:
		errs = append(errs, fmt.Errorf("unknown environment %q", c.Server.Environment))
	}

	switch c.Database.Driver {
	case DriverPostgres, DriverPgx, DriverSQLite:
	default:
		errs = append(errs, fmt.Errorf("unsupported database driver %q", c.Database.Driver))
	}

	if _, err := time.LoadLocation(c.Server.Timezone); err != nil {
		errs = append(errs, fmt.Errorf("invalid APP_TIMEZONE %q: %w", c.Server.Timezone, err))
	}

	if c.JWT.AccessTokenDuration <= 0 || c.JWT.RefreshTokenDuration <= 0 {
		errs = append(errs, errors.New("token durations must be positive"))
	}
	if c.JWT.AccessTokenDuration >= c.JWT.RefreshTokenDuration {
		errs = append(errs, errors.New("access token duration must be shorter than refresh token duration"))
	}

	if c.Security.BcryptCost < 4 || c.Security.BcryptCost > 31 {
		errs = append(errs, fmt.Errorf("BCRYPT_COST must be between 4 and 31, got %d", c.Security.BcryptCost))
	}

	if c.IsProduction() {
		if c.JWT.AccessSecret == defaultAccessSecret || c.JWT.RefreshSecret == defaultRefreshSecret {
			errs = append(errs, errors.New("JWT secrets must be set in production"))
		}
		if len(c.JWT.AccessSecret) < 32 {
			errs = append(errs, errors.New("JWT_ACCESS_SECRET must be at least 32 characters in production"))
		}
	}

	return errors.Join(errs...)
}

// Location returns the time zone used to compute "today".
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Server.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func (c *Config) IsDevelopment() bool {
	return strings.EqualFold(c.Server.Environment, EnvDevelopment)
}

func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Server.Environment, EnvProduction)
}

// ToDatabaseConfig converts the database section for database.Open.
func (c *Config) ToDatabaseConfig() database.Config {
	return database.Config{
		Driver:          c.Database.Driver,
		Host:            c.Database.Host,
		Port:            c.Database.Port,
		User:            c.Database.User,
		Password:        c.Database.Password,
		DBName:          c.Database.DBName,
		SSLMode:         c.Database.SSLMode,
		Path:            c.Database.Path,
		MaxOpenConns:    c.Database.MaxOpenConns,
		MaxIdleConns:    c.Database.MaxIdleConns,
		ConnMaxLifetime: c.Database.ConnMaxLifetime,
	}
}
