package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/kelseyhightower/envconfig"
)

// Config is read from the process environment. A .env file in the working
// directory is loaded first.
type Config struct {
	Port int `envconfig:"PORT" default:"8080"`

	DBHost          string `envconfig:"DB_HOST" required:"true"`
	DBPort          string `envconfig:"DB_PORT" default:"5432"`
	DBUsername      string `envconfig:"DB_USERNAME" required:"true"`
	DBPassword      string `envconfig:"DB_PASSWORD" required:"true"`
	DBDatabase      string `envconfig:"DB_DATABASE" required:"true"`
	DBAdminUser     string `envconfig:"DB_ADMIN_USER"`
	DBAdminPassword string `envconfig:"DB_ADMIN_PASSWORD"`
	DBMaxConns      int32  `envconfig:"DB_MAX_CONNS" default:"25"`
	DBMinConns      int32  `envconfig:"DB_MIN_CONNS" default:"5"`

	SessionSecret     string        `envconfig:"SESSION_SECRET" required:"true"`
	SessionTTL        time.Duration `envconfig:"SESSION_TTL" default:"12h"`
	AdminPasswordHash string        `envconfig:"ADMIN_PASSWORD_HASH"`
	CookieSecure      bool          `envconfig:"COOKIE_SECURE" default:"true"`
	CORSOrigins       []string      `envconfig:"CORS_ORIGINS" default:"http://localhost:3000"`

	ExpiringWindowDays int     `envconfig:"EXPIRING_WINDOW_DAYS" default:"30"`
	MatchThreshold     float64 `envconfig:"MATCH_THRESHOLD" default:"0.75"`

	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"json"`
}

// Load reads the configuration and validates the values envconfig cannot.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load configuration (check your .env file): %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	var problems []string
	if c.Port <= 0 || c.Port > 65535 {
		problems = append(problems, "PORT must be between 1 and 65535")
	}
	if len(c.SessionSecret) < 16 {
		problems = append(problems, "SESSION_SECRET must be at least 16 characters")
	}
	if c.ExpiringWindowDays < 0 {
		problems = append(problems, "EXPIRING_WINDOW_DAYS cannot be negative")
	}
	if c.MatchThreshold <= 0 || c.MatchThreshold > 1 {
		problems = append(problems, "MATCH_THRESHOLD must be in (0, 1]")
	}
	if c.DBMinConns > c.DBMaxConns {
		problems = append(problems, "DB_MIN_CONNS cannot exceed DB_MAX_CONNS")
	}
	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}

// DatabaseURL builds the postgres:// URL for the application database.
func (c *Config) DatabaseURL() string {
	return buildURL(c.DBUsername, c.DBPassword, c.DBHost, c.DBPort, c.DBDatabase)
}

// AdminDatabaseURL points at the maintenance database with the admin
// credentials, used to create the application database when missing.
func (c *Config) AdminDatabaseURL() string {
	return buildURL(c.DBAdminUser, c.DBAdminPassword, c.DBHost, c.DBPort, "postgres")
}

// RedactedDatabaseURL is safe to log.
func (c *Config) RedactedDatabaseURL() string {
	return fmt.Sprintf("postgres://%s:***@%s:%s/%s", c.DBUsername, c.DBHost, c.DBPort, c.DBDatabase)
}

func buildURL(user, password, host, port, database string) string {
	userInfo := url.UserPassword(user, password)
	return fmt.Sprintf(
		"postgres://%s@%s:%s/%s?sslmode=disable",
		userInfo.String(),
		host,
		port,
		url.PathEscape(database),
	)
}
