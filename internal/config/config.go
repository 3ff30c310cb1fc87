package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"loanappl-backend/internal/domain/loanappl"
	"loanappl-backend/internal/infrastructure/db"

	"github.com/joho/godotenv"
)

type Config struct {
	AppPort  string
	AppEnv   string
	LogLevel string

	DBDriver   string
	SQLitePath string

	MySQLHost string
	MySQLPort string
	MySQLDB   string
	MySQLUser string
	MySQLPass string

	RedisAddr string
	RedisDB   int

	IdempTTLSecs   int
	HandoffTTLSecs int

	DefaultRepaymentFrequency string
	DefaultCurrency           string
	AllowChangeAction         bool
}

func getenv(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func getint(k string, d int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return d
}

// Load reads the environment, after merging in a .env file from the working
// directory when there is one. Real environment variables win.
func Load() *Config {
	_ = godotenv.Load()

	c := &Config{
		AppPort:  getenv("APP_PORT", "8080"),
		AppEnv:   getenv("APP_ENV", "development"),
		LogLevel: getenv("LOG_LEVEL", "info"),

		DBDriver:   strings.ToLower(getenv("DB_DRIVER", db.DriverMySQL)),
		SQLitePath: getenv("SQLITE_PATH", "loanappl.db"),

		MySQLHost: getenv("MYSQL_HOST", "mysql"),
		MySQLPort: getenv("MYSQL_PORT", "3306"),
		MySQLDB:   getenv("MYSQL_DB", "loanappl"),
		MySQLUser: getenv("MYSQL_USER", "loanappl"),
		MySQLPass: getenv("MYSQL_PASS", "loanappl"),

		RedisAddr: getenv("REDIS_ADDR", "redis:6379"),
		RedisDB:   getint("REDIS_DB", 0),

		IdempTTLSecs:   getint("IDEMPOTENCY_TTL_SECONDS", 300),
		HandoffTTLSecs: getint("HANDOFF_TTL_SECONDS", 1800),

		DefaultRepaymentFrequency: getenv("DEFAULT_REPAYMENT_FREQUENCY", string(loanappl.FrequencyMonthly)),
		DefaultCurrency:           strings.ToUpper(getenv("DEFAULT_CURRENCY", "USD")),
	}
	if v := os.Getenv("ALLOW_CHANGE_ACTION"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.AllowChangeAction = b
		}
	}
	return c
}

func (c *Config) Validate() error {
	if c.AppPort == "" {
		return errors.New("missing APP_PORT")
	}
	switch c.DBDriver {
	case db.DriverMySQL:
		if c.MySQLHost == "" || c.MySQLPort == "" || c.MySQLDB == "" || c.MySQLUser == "" {
			return errors.New("missing MySQL config (MYSQL_HOST/PORT/DB/USER)")
		}
		// ensure port is valid
		if _, err := net.LookupPort("tcp", c.MySQLPort); err != nil {
			return fmt.Errorf("invalid MYSQL_PORT %q: %w", c.MySQLPort, err)
		}
	case db.DriverSQLite:
		if c.SQLitePath == "" {
			return errors.New("missing SQLITE_PATH")
		}
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}
	if c.IdempTTLSecs <= 0 || c.HandoffTTLSecs <= 0 {
		return errors.New("IDEMPOTENCY_TTL_SECONDS and HANDOFF_TTL_SECONDS must be positive")
	}
	if !loanappl.Frequency(c.DefaultRepaymentFrequency).Valid() {
		return fmt.Errorf("invalid DEFAULT_REPAYMENT_FREQUENCY %q", c.DefaultRepaymentFrequency)
	}
	if len(c.DefaultCurrency) != 3 {
		return fmt.Errorf("invalid DEFAULT_CURRENCY %q", c.DefaultCurrency)
	}
	return nil
}

// DSN is the connection string for the configured driver.
func (c *Config) DSN() string {
	if c.DBDriver == db.DriverSQLite {
		return c.SQLitePath
	}
	return c.MySQLDSN()
}

func (c *Config) mysqlAddr() string { return net.JoinHostPort(c.MySQLHost, c.MySQLPort) }

func (c *Config) MySQLDSN() string {
	// parseTime needed for DATETIME
	return fmt.Sprintf("%s:%s@tcp(%s)/%s?parseTime=true&loc=UTC&charset=utf8mb4,utf8",
		c.MySQLUser, c.MySQLPass, c.mysqlAddr(), c.MySQLDB)
}

// Settings are the rule-engine defaults.
func (c *Config) Settings() loanappl.Settings {
	return loanappl.Settings{
		DefaultRepaymentFrequency: loanappl.Frequency(c.DefaultRepaymentFrequency),
		DefaultCurrency:           c.DefaultCurrency,
		AllowChangeAction:         c.AllowChangeAction,
	}
}

func (c *Config) IdempotencyTTL() time.Duration { return time.Duration(c.IdempTTLSecs) * time.Second }

func (c *Config) HandoffTTL() time.Duration { return time.Duration(c.HandoffTTLSecs) * time.Second }
