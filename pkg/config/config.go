package config

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config groups the application settings, read through Viper from the environment
// and optionally from a .env file.
type Config struct {
	App       AppConfig
	DB        DBConfig
	JWT       JWTConfig
	HTTP      HTTPConfig
	Redis     RedisConfig
	Ledger    LedgerConfig
	Threshing ThreshingConfig
	Dashboard DashboardConfig
}

// AppConfig general application settings.
type AppConfig struct {
	Env      string // development, staging, production
	Name     string
	LogLevel string
}

// DBConfig PostgreSQL settings. DatabaseURL wins over the discrete fields when set.
type DBConfig struct {
	DatabaseURL   string
	Host          string
	Port          int
	User          string
	Password      string
	DBName        string
	SSLMode       string
	MaxConns      int
	LockTimeout   time.Duration // SET LOCAL lock_timeout for ledger transactions
	AutoMigrate   bool
	MigrationsDir string // empty uses the migrations embedded in the binary
}

// ConnectionString returns DATABASE_URL when set, otherwise the DSN built from the parts.
func (c DBConfig) ConnectionString() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return c.DSN()
}

// DSN builds a postgres URL, escaping special characters in the password.
func (c DBConfig) DSN() string {
	u := &url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:     "/" + c.DBName,
		RawQuery: fmt.Sprintf("sslmode=%s", c.SSLMode),
	}
	return u.String()
}

// JWTConfig token verification settings.
type JWTConfig struct {
	Secret string
	Issuer string
}

// HTTPConfig HTTP server settings.
type HTTPConfig struct {
	Host string
	Port int
}

// Addr returns host:port.
func (c HTTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// RedisConfig read cache settings. An empty Addr disables the cache.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// Enabled reports whether a Redis address was configured.
func (c RedisConfig) Enabled() bool { return c.Addr != "" }

// LedgerConfig retry policy for lock timeouts and conflicts.
type LedgerConfig struct {
	MaxRetries uint64
	RetryBase  time.Duration
}

// ThreshingConfig efficiency band and batch number prefix for threshing.
type ThreshingConfig struct {
	MinEfficiency float64
	MaxEfficiency float64
	BatchPrefix   string
}

// DashboardConfig dashboard settings.
type DashboardConfig struct {
	LowStockThreshold float64 // KG
	RecentMovements   int
}

// Load reads the configuration. Environment variables take precedence over the file.
// Expected names: APP_ENV, DB_HOST, DB_LOCK_TIMEOUT_MS, REDIS_ADDR, JWT_SECRET, etc.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	_ = v.ReadInConfig() // optional

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		App: AppConfig{
			Env:      getString(v, "APP_ENV", "development"),
			Name:     getString(v, "APP_NAME", "ricemill-ledger"),
			LogLevel: getString(v, "LOG_LEVEL", "info"),
		},
		DB: DBConfig{
			DatabaseURL:   getString(v, "DATABASE_URL", ""),
			Host:          getString(v, "DB_HOST", "localhost"),
			Port:          getInt(v, "DB_PORT", 5432),
			User:          getString(v, "DB_USER", "postgres"),
			Password:      getString(v, "DB_PASSWORD", ""),
			DBName:        getString(v, "DB_NAME", "ricemill"),
			SSLMode:       getString(v, "DB_SSLMODE", "disable"),
			MaxConns:      getInt(v, "DB_MAX_CONNS", 25),
			LockTimeout:   time.Duration(getInt(v, "DB_LOCK_TIMEOUT_MS", 5000)) * time.Millisecond,
			AutoMigrate:   getBool(v, "DB_AUTO_MIGRATE", false),
			MigrationsDir: getString(v, "DB_MIGRATIONS_DIR", ""),
		},
		JWT: JWTConfig{
			Secret: getString(v, "JWT_SECRET", ""),
			Issuer: getString(v, "JWT_ISSUER", "ricemill-ledger"),
		},
		HTTP: HTTPConfig{
			Host: getString(v, "HTTP_HOST", "0.0.0.0"),
			Port: getInt(v, "HTTP_PORT", 8080),
		},
		Redis: RedisConfig{
			Addr:     getString(v, "REDIS_ADDR", ""),
			Password: getString(v, "REDIS_PASSWORD", ""),
			DB:       getInt(v, "REDIS_DB", 0),
			TTL:      time.Duration(getInt(v, "REDIS_TTL_SECONDS", 60)) * time.Second,
		},
		Ledger: LedgerConfig{
			MaxRetries: uint64(getInt(v, "LEDGER_MAX_RETRIES", 3)),
			RetryBase:  time.Duration(getInt(v, "LEDGER_RETRY_BASE_MS", 50)) * time.Millisecond,
		},
		Threshing: ThreshingConfig{
			MinEfficiency: getFloat(v, "THRESHING_MIN_EFFICIENCY", 60),
			MaxEfficiency: getFloat(v, "THRESHING_MAX_EFFICIENCY", 75),
			BatchPrefix:   getString(v, "THRESHING_BATCH_PREFIX", "TH"),
		},
		Dashboard: DashboardConfig{
			LowStockThreshold: getFloat(v, "LOW_STOCK_THRESHOLD", 1000),
			RecentMovements:   getInt(v, "DASHBOARD_RECENT_MOVEMENTS", 10),
		},
	}

	if cfg.DB.LockTimeout <= 0 {
		return nil, fmt.Errorf("DB_LOCK_TIMEOUT_MS must be positive")
	}
	if cfg.Threshing.MinEfficiency > cfg.Threshing.MaxEfficiency {
		return nil, fmt.Errorf("THRESHING_MIN_EFFICIENCY exceeds THRESHING_MAX_EFFICIENCY")
	}
	return cfg, nil
}

func getString(v *viper.Viper, key, def string) string {
	if v.IsSet(key) {
		return v.GetString(key)
	}
	return def
}

func getInt(v *viper.Viper, key string, def int) int {
	if !v.IsSet(key) {
		return def
	}
	if s, ok := v.Get(key).(string); ok {
		n, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil {
			return def
		}
		return n
	}
	return v.GetInt(key)
}

func getFloat(v *viper.Viper, key string, def float64) float64 {
	if !v.IsSet(key) {
		return def
	}
	if s, ok := v.Get(key).(string); ok {
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return def
		}
		return f
	}
	return v.GetFloat64(key)
}

func getBool(v *viper.Viper, key string, def bool) bool {
	if !v.IsSet(key) {
		return def
	}
	return v.GetBool(key)
}
