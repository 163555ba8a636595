package configs

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config represents the application configuration
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	JWT       JWTConfig
	Email     EmailConfig
	Rates     RatesConfig
	Finance   FinanceConfig
	Inventory InventoryConfig
	Logging   LoggingConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port int
}

// DatabaseConfig holds database connection configuration
type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	DBName       string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

// RedisConfig holds the quote cache connection
type RedisConfig struct {
	Address  string
	Password string
	DB       int
	Enabled  bool
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret string
	TTL    int // in hours
}

// EmailConfig holds email configuration
type EmailConfig struct {
	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
	SenderEmail  string
	PartsDesk    string // recipient of reorder alerts
}

// RatesConfig holds the base lending rate feed
type RatesConfig struct {
	FeedURL  string
	Timeout  time.Duration
	CacheTTL   time.Duration // how long a fetched base rate is reused
	RetryAfter time.Duration // how long a failed fetch is remembered
}

// FinanceConfig holds financing defaults
type FinanceConfig struct {
	DefaultAnnualRate float64 // percent, used when neither request nor feed supply one
	RateMargin        float64 // percent added on top of the feed's base rate
	QuoteCacheTTL     time.Duration
	MaxTenureMonths   int
}

// InventoryConfig holds parts reorder settings
type InventoryConfig struct {
	DefaultLeadTimeDays int
	ReorderScanInterval time.Duration
}

// LoggingConfig holds logger settings
type LoggingConfig struct {
	Level string
}

// DSN builds the lib/pq connection string
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode)
}

// LoadConfig loads configuration from an optional .env file and environment
// variables. SERVER_PORT maps to Server.Port, DB_HOST to Database.Host and so on.
func LoadConfig() (*Config, error) {
	loadEnvFile()

	v := viper.New()
	setDefaults(v)
	bindEnv(v)

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// loadEnvFile loads .env from the working directory when it exists
func loadEnvFile() {
	path := os.Getenv("ENV_FILE")
	if path == "" {
		path = ".env"
	}
	if _, err := os.Stat(path); err == nil {
		_ = godotenv.Load(path)
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "postgres")
	v.SetDefault("database.dbname", "dealership")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.maxopenconns", 20)
	v.SetDefault("database.maxidleconns", 5)

	v.SetDefault("redis.address", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.enabled", true)

	v.SetDefault("jwt.secret", "super_secret_key")
	v.SetDefault("jwt.ttl", 24)

	v.SetDefault("email.smtphost", "smtp.example.com")
	v.SetDefault("email.smtpport", 587)
	v.SetDefault("email.smtpuser", "user")
	v.SetDefault("email.smtppassword", "password")
	v.SetDefault("email.senderemail", "no-reply@dealership.example.com")
	v.SetDefault("email.partsdesk", "parts@dealership.example.com")

	v.SetDefault("rates.feedurl", "")
	v.SetDefault("rates.timeout", 10*time.Second)
	v.SetDefault("rates.cachettl", time.Hour)
	v.SetDefault("rates.retryafter", 30*time.Second)

	v.SetDefault("finance.defaultannualrate", 9.5)
	v.SetDefault("finance.ratemargin", 2.5)
	v.SetDefault("finance.quotecachettl", 15*time.Minute)
	v.SetDefault("finance.maxtenuremonths", 600)

	v.SetDefault("inventory.defaultleadtimedays", 7)
	v.SetDefault("inventory.reorderscaninterval", 24*time.Hour)

	v.SetDefault("logging.level", "info")
}

// envKeys keeps the flat variable names the service has always used
var envKeys = map[string]string{
	"server.port":                   "SERVER_PORT",
	"database.host":                 "DB_HOST",
	"database.port":                 "DB_PORT",
	"database.user":                 "DB_USER",
	"database.password":             "DB_PASSWORD",
	"database.dbname":               "DB_NAME",
	"database.sslmode":              "DB_SSLMODE",
	"database.maxopenconns":         "DB_MAX_OPEN_CONNS",
	"database.maxidleconns":         "DB_MAX_IDLE_CONNS",
	"redis.address":                 "REDIS_ADDRESS",
	"redis.password":                "REDIS_PASSWORD",
	"redis.db":                      "REDIS_DB",
	"redis.enabled":                 "REDIS_ENABLED",
	"jwt.secret":                    "JWT_SECRET",
	"jwt.ttl":                       "JWT_TTL",
	"email.smtphost":                "SMTP_HOST",
	"email.smtpport":                "SMTP_PORT",
	"email.smtpuser":                "SMTP_USER",
	"email.smtppassword":            "SMTP_PASSWORD",
	"email.senderemail":             "SENDER_EMAIL",
	"email.partsdesk":               "PARTS_DESK_EMAIL",
	"rates.feedurl":                 "RATE_FEED_URL",
	"rates.timeout":                 "RATE_FEED_TIMEOUT",
	"rates.cachettl":                "RATE_FEED_CACHE_TTL",
	"rates.retryafter":              "RATE_FEED_RETRY_AFTER",
	"finance.defaultannualrate":     "FINANCE_DEFAULT_RATE",
	"finance.ratemargin":            "FINANCE_RATE_MARGIN",
	"finance.quotecachettl":         "FINANCE_QUOTE_CACHE_TTL",
	"finance.maxtenuremonths":       "FINANCE_MAX_TENURE_MONTHS",
	"inventory.defaultleadtimedays": "INVENTORY_DEFAULT_LEAD_TIME_DAYS",
	"inventory.reorderscaninterval": "INVENTORY_REORDER_SCAN_INTERVAL",
	"logging.level":                 "LOG_LEVEL",
}

func bindEnv(v *viper.Viper) {
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, env := range envKeys {
		_ = v.BindEnv(key, env)
	}
}

func validate(cfg *Config) error {
	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return fmt.Errorf("server port out of range: %d", cfg.Server.Port)
	}
	if cfg.JWT.Secret == "" {
		return fmt.Errorf("jwt secret must be set")
	}
	if cfg.JWT.TTL <= 0 {
		return fmt.Errorf("jwt ttl must be positive")
	}
	if cfg.Finance.DefaultAnnualRate < 0 || cfg.Finance.RateMargin < 0 {
		return fmt.Errorf("finance rates cannot be negative")
	}
	if cfg.Finance.MaxTenureMonths <= 0 || cfg.Finance.MaxTenureMonths > 1200 {
		return fmt.Errorf("finance max tenure out of range: %d", cfg.Finance.MaxTenureMonths)
	}
	if cfg.Inventory.DefaultLeadTimeDays <= 0 {
		return fmt.Errorf("default lead time must be positive")
	}
	return nil
}
