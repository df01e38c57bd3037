package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gourmet-kitchen/ordersys/internal/validate"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

type Config struct {
	AppEnv  string
	EnvFile string // .env file the values were read from, empty if none
	Port    string

	DataDir   string
	BackupDir string

	TaxRate           decimal.Decimal
	RestaurantName    string
	RestaurantAddress string
	RestaurantPhone   string
	RestaurantEmail   string
	ReceiptFooter     string
	CurrencySymbol    string

	AutoSaveInterval time.Duration
	MaxBackups       int

	LogLevel  string
	LogFormat string

	JWTSecret      string
	ManagerPINHash string
	StaffPINHash   string
	SessionTTL     time.Duration
	AllowedOrigins []string
}

// Load reads .env.<APP_ENV> or .env when present, then the process
// environment. Variables already set in the environment win over file values.
func Load() (*Config, error) {
	env := getEnv("APP_ENV", "development")

	envFile := ""
	candidate := fmt.Sprintf(".env.%s", env)
	if err := godotenv.Load(candidate); err == nil {
		envFile = candidate
	} else if err := godotenv.Load(); err == nil {
		envFile = ".env"
	}

	taxRate, err := validate.TaxRate(getEnv("TAX_RATE", "0.08"))
	if err != nil {
		return nil, fmt.Errorf("TAX_RATE: %w", err)
	}
	autoSave, err := time.ParseDuration(getEnv("AUTO_SAVE_INTERVAL", "5m"))
	if err != nil {
		return nil, fmt.Errorf("AUTO_SAVE_INTERVAL: %w", err)
	}
	sessionTTL, err := time.ParseDuration(getEnv("SESSION_TTL", "8h"))
	if err != nil {
		return nil, fmt.Errorf("SESSION_TTL: %w", err)
	}
	maxBackups, err := strconv.Atoi(getEnv("MAX_BACKUPS", "10"))
	if err != nil {
		return nil, fmt.Errorf("MAX_BACKUPS: %w", err)
	}

	dataDir := getEnv("DATA_DIR", "data")
	cfg := &Config{
		AppEnv:            env,
		EnvFile:           envFile,
		Port:              getEnv("PORT", "8081"),
		DataDir:           dataDir,
		BackupDir:         getEnv("BACKUP_DIR", ""),
		TaxRate:           taxRate,
		RestaurantName:    getEnv("RESTAURANT_NAME", "Gourmet Kitchen"),
		RestaurantAddress: getEnv("RESTAURANT_ADDRESS", ""),
		RestaurantPhone:   getEnv("RESTAURANT_PHONE", ""),
		RestaurantEmail:   getEnv("RESTAURANT_EMAIL", ""),
		ReceiptFooter:     getEnv("RECEIPT_FOOTER", "Thank you for dining with us!"),
		CurrencySymbol:    getEnv("CURRENCY_SYMBOL", "$"),
		AutoSaveInterval:  autoSave,
		MaxBackups:        maxBackups,
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		LogFormat:         getEnv("LOG_FORMAT", "text"),
		JWTSecret:         getEnv("JWT_SECRET", ""),
		ManagerPINHash:    getEnv("MANAGER_PIN_HASH", ""),
		StaffPINHash:      getEnv("STAFF_PIN_HASH", ""),
		SessionTTL:        sessionTTL,
		AllowedOrigins:    splitList(getEnv("ALLOWED_ORIGINS", "http://localhost:3000")),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks every value that can also be changed at runtime through
// Settings.Update.
func (c *Config) Validate() error {
	var errs []error
	if c.DataDir == "" {
		errs = append(errs, errors.New("DATA_DIR is required"))
	}
	if c.TaxRate.IsNegative() || c.TaxRate.GreaterThan(decimal.NewFromInt(1)) {
		errs = append(errs, fmt.Errorf("tax rate %s must be between 0 and 1", c.TaxRate))
	}
	if _, err := validate.RequiredString(c.RestaurantName, "restaurant_name", 1, validate.MaxNameLength); err != nil {
		errs = append(errs, err)
	}
	if _, err := validate.Phone(c.RestaurantPhone, false); err != nil {
		errs = append(errs, err)
	}
	if _, err := validate.Email(c.RestaurantEmail, false); err != nil {
		errs = append(errs, err)
	}
	if _, err := validate.OptionalString(c.ReceiptFooter, "receipt_footer", validate.MaxDescriptionLength); err != nil {
		errs = append(errs, err)
	}
	if c.AutoSaveInterval <= 0 {
		errs = append(errs, errors.New("AUTO_SAVE_INTERVAL must be positive"))
	}
	if c.MaxBackups < 1 {
		errs = append(errs, errors.New("MAX_BACKUPS must be at least 1"))
	}
	if c.SessionTTL <= 0 {
		errs = append(errs, errors.New("SESSION_TTL must be positive"))
	}
	if c.PINLockEnabled() && c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required when a PIN hash is set"))
	}
	return errors.Join(errs...)
}

// PINLockEnabled reports whether API access requires a PIN login.
func (c *Config) PINLockEnabled() bool {
	return c.ManagerPINHash != "" || c.StaffPINHash != ""
}

func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

func (c Config) clone() Config {
	c.AllowedOrigins = append([]string(nil), c.AllowedOrigins...)
	return c
}

// Settings holds the live configuration. Current returns copies, so callers
// never share state with the holder.
type Settings struct {
	mu      sync.RWMutex
	loaded  Config
	current Config
}

func NewSettings(cfg *Config) *Settings {
	return &Settings{loaded: cfg.clone(), current: cfg.clone()}
}

func (s *Settings) Current() Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.clone()
}

// Update applies fn to a copy of the current configuration and keeps the
// result only if fn succeeds and the result validates.
func (s *Settings) Update(fn func(*Config) error) (Config, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.current.clone()
	if err := fn(&next); err != nil {
		return s.current.clone(), err
	}
	if err := next.Validate(); err != nil {
		return s.current.clone(), err
	}
	s.current = next
	return next.clone(), nil
}

// Reset restores the configuration read at startup.
func (s *Settings) Reset() Config {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = s.loaded.clone()
	return s.current.clone()
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
