package config

import (
	"context" // Context for envconfig processing
	"errors"  // Error values
	"fmt"     // DSN formatting
	"strings" // String normalisation
	"time"    // Durations

	"github.com/joho/godotenv"           // For loading .env files
	"github.com/sethvargo/go-envconfig" // Typed environment decoding
)

// Supported database drivers
const (
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config holds the application configuration
type Config struct {
	AppPort      string `env:"APP_PORT, default=8080"`     // Application port
	IsProd       bool   `env:"IS_PROD, default=false"`     // Is production environment
	LogLevel     string `env:"LOG_LEVEL, default=info"`    // Logrus level name
	AutoMigrate  bool   `env:"AUTO_MIGRATE, default=true"` // Run schema migration on server start
	PasswordCost int    `env:"PASSWORD_COST, default=10"`  // bcrypt work factor

	CacheTTL        time.Duration `env:"CACHE_TTL, default=60s"`        // TTL for cached admin listings
	LoginRateLimit  int           `env:"LOGIN_RATE_LIMIT, default=10"`  // Login attempts per window and client
	LoginRateWindow time.Duration `env:"LOGIN_RATE_WINDOW, default=1m"` // Login rate limit window

	DB    DBConfig
	JWT   JWTConfig
	Redis RedisConfig
	Admin AdminConfig
}

// DBConfig selects and addresses the relational store
type DBConfig struct {
	Driver   string `env:"DB_DRIVER, default=mysql"`         // mysql, postgres or sqlite
	User     string `env:"DB_USER"`                          // Database user
	Password string `env:"DB_PASSWORD"`                      // Database password
	Host     string `env:"DB_HOST, default=localhost"`       // Database host
	Port     string `env:"DB_PORT"`                          // Database port, driver default when empty
	Name     string `env:"DB_NAME, default=store_rating"`    // Database name
	SSLMode  string `env:"DB_SSLMODE, default=disable"`      // postgres only
	Path     string `env:"DB_PATH, default=store_rating.db"` // sqlite only
}

// JWTConfig holds the token signing settings
type JWTConfig struct {
	Secret string        `env:"JWT_SECRET, required"` // HMAC secret
	TTL    time.Duration `env:"JWT_TTL, default=8h"`  // Absolute token lifetime
}

// RedisConfig addresses the optional Redis instance. An empty Addr disables
// caching, token revocation and login rate limiting.
type RedisConfig struct {
	Addr string `env:"REDIS_ADDR"`         // Redis server address
	Pass string `env:"REDIS_PASS"`         // Redis password
	DB   int    `env:"REDIS_DB, default=0"` // Redis database number
}

// AdminConfig describes the admin account seeded by cmd/migrate
type AdminConfig struct {
	Name     string `env:"ADMIN_NAME, default=Administrator"`
	Email    string `env:"ADMIN_EMAIL"`
	Password string `env:"ADMIN_PASSWORD"`
	Address  string `env:"ADMIN_ADDRESS"`
}

// LoadConfig loads configuration from the process environment, reading a
// .env file first if one is present.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load() // Load .env file if present
	return LoadFrom(context.Background(), envconfig.OsLookuper())
}

// LoadFrom decodes configuration from the given lookuper.
func LoadFrom(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	c.DB.Driver = strings.ToLower(strings.TrimSpace(c.DB.Driver))
	switch c.DB.Driver {
	case DriverMySQL, DriverPostgres, DriverSQLite:
	default:
		return fmt.Errorf("config: unsupported DB_DRIVER %q", c.DB.Driver)
	}
	if strings.TrimSpace(c.JWT.Secret) == "" {
		return errors.New("config: JWT_SECRET must not be blank")
	}
	if c.JWT.TTL <= 0 {
		return errors.New("config: JWT_TTL must be positive")
	}
	return nil
}

// DSN builds the data source name for the configured driver
func (c DBConfig) DSN() string {
	switch c.Driver {
	case DriverPostgres:
		port := c.Port
		if port == "" {
			port = "5432"
		}
		return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC",
			c.Host, c.User, c.Password, c.Name, port, c.SSLMode)
	case DriverSQLite:
		// SQLite leaves foreign keys off unless asked per connection
		if strings.Contains(c.Path, "_fk=") || strings.Contains(c.Path, "_foreign_keys=") {
			return c.Path
		}
		sep := "?"
		if strings.Contains(c.Path, "?") {
			sep = "&"
		}
		return c.Path + sep + "_fk=1"
	default:
		port := c.Port
		if port == "" {
			port = "3306"
		}
		return c.User + ":" + c.Password + "@tcp(" + c.Host + ":" + port + ")/" + c.Name + "?charset=utf8mb4&parseTime=true&loc=UTC"
	}
}

// RedisEnabled reports whether a Redis address was configured
func (c *Config) RedisEnabled() bool {
	return strings.TrimSpace(c.Redis.Addr) != ""
}
