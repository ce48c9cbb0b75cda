package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type DBConfig struct {
	Host     string `env:"HOST" envDefault:"localhost"`
	Port     string `env:"PORT" envDefault:"5432"`
	User     string `env:"USER" envDefault:"scoreboard"`
	Password string `env:"PASSWORD"`
	Name     string `env:"NAME" envDefault:"scoreboard"`
	SSLMode  string `env:"SSLMODE" envDefault:"disable"`
}

func (c DBConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC",
		c.Host, c.User, c.Password, c.Name, c.Port, c.SSLMode,
	)
}

// RedisConfig is optional: an empty Addr disables every Redis backed
// component and the server falls back to in-process implementations.
type RedisConfig struct {
	Addr     string `env:"ADDR"`
	Username string `env:"USERNAME"`
	Password string `env:"PASSWORD"`
	DB       int    `env:"DB" envDefault:"0"`
	TLS      bool   `env:"TLS" envDefault:"false"`
}

type AdminConfig struct {
	Username string `env:"USERNAME" envDefault:"admin"`
	Password string `env:"PASSWORD,notEmpty"`
	Name     string `env:"NAME" envDefault:"Admin"`
}

type RateLimitConfig struct {
	Requests int           `env:"REQUESTS" envDefault:"100"`
	Window   time.Duration `env:"WINDOW" envDefault:"5m"`
	Block    time.Duration `env:"BLOCK" envDefault:"5m"`
}

type LogConfig struct {
	Level      string `env:"LEVEL" envDefault:"info"`
	Dir        string `env:"DIR"`
	MaxSizeMB  int    `env:"MAX_SIZE_MB" envDefault:"50"`
	MaxBackups int    `env:"MAX_BACKUPS" envDefault:"5"`
	MaxAgeDays int    `env:"MAX_AGE_DAYS" envDefault:"14"`
	Compress   bool   `env:"COMPRESS" envDefault:"true"`
}

type Config struct {
	Port      string        `env:"PORT" envDefault:"8080"`
	JWTSecret string        `env:"JWT_SECRET,notEmpty"`
	JWTTTL    time.Duration `env:"JWT_TTL" envDefault:"720h"`
	Timezone  string        `env:"TIMEZONE" envDefault:"Local"`
	// SecureCookie marks the auth cookie Secure; enable behind TLS.
	SecureCookie bool            `env:"SECURE_COOKIE" envDefault:"false"`
	DB           DBConfig        `envPrefix:"DB_"`
	Redis        RedisConfig     `envPrefix:"REDIS_"`
	Admin        AdminConfig     `envPrefix:"ADMIN_"`
	RateLimit    RateLimitConfig `envPrefix:"RATE_LIMIT_"`
	Log          LogConfig       `envPrefix:"LOG_"`
}

// Load reads an optional .env file and decodes the environment into Config.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Warn("dotenv_not_found", slog.String("fallback", "system environment"))
	}
	return Parse()
}

func Parse() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if cfg.RateLimit.Requests <= 0 {
		return nil, fmt.Errorf("RATE_LIMIT_REQUESTS must be positive, got %d", cfg.RateLimit.Requests)
	}
	if _, err := cfg.Location(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Location is the time zone that defines a calendar day for game numbering.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE %q: %w", c.Timezone, err)
	}
	return loc, nil
}
