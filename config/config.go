package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"

	"loan-simulator/domain"
	"loan-simulator/service"
)

const defaultRetentionCron = "0 0 3 * * *"

// Config holds all application configuration.
type Config struct {
	ServiceName string `yaml:"service_name"`
	LogLevel    string `yaml:"log_level"`
	Server      struct {
		Addr string `yaml:"addr"`
	} `yaml:"server"`
	SubsidyAmount *float64           `yaml:"subsidy_amount"`
	Banks         []domain.BankOffer `yaml:"banks"`
	Redis         struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`
	RateLimit struct {
		Capacity      int `yaml:"capacity"`
		WindowSeconds int `yaml:"window_seconds"`
	} `yaml:"rate_limit"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	History struct {
		RetentionCron string `yaml:"retention_cron"`
		RetentionDays int    `yaml:"retention_days"`
	} `yaml:"history"`
	Advisor struct {
		APIKey string `yaml:"api_key"`
		APIURL string `yaml:"api_url"`
		Model  string `yaml:"model"`
	} `yaml:"advisor"`
}

// DefaultBanks is the rate table used when the config file lists none.
func DefaultBanks() []domain.BankOffer {
	return []domain.BankOffer{
		{Name: "Caixa", AnnualRate: 0.089, SubsidyEligible: true},
		{Name: "Bradesco", AnnualRate: 0.0935},
		{Name: "Itaú", AnnualRate: 0.0925},
		{Name: "Santander", AnnualRate: 0.094},
	}
}

// LoadDotEnv loads the given .env files into the process environment.
// Missing files are skipped; variables already set win.
func LoadDotEnv(files ...string) error {
	for _, f := range files {
		if _, err := os.Stat(f); errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

// Load reads config from a YAML file, then applies environment variable overrides.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("SERVER_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		cfg.Redis.Password = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		cfg.Advisor.APIKey = v
	}
	if v := os.Getenv("HISTORY_RETENTION_CRON"); v != "" {
		cfg.History.RetentionCron = v
	}
	if v := os.Getenv("SUBSIDY_AMOUNT"); v != "" {
		amount, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("SUBSIDY_AMOUNT: %w", err)
		}
		cfg.SubsidyAmount = &amount
	}
	if v := os.Getenv("HISTORY_RETENTION_DAYS"); v != "" {
		days, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("HISTORY_RETENTION_DAYS: %w", err)
		}
		cfg.History.RetentionDays = days
	}
	if v := os.Getenv("RATE_LIMIT_CAPACITY"); v != "" {
		capacity, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("RATE_LIMIT_CAPACITY: %w", err)
		}
		cfg.RateLimit.Capacity = capacity
	}

	// Defaults
	if cfg.ServiceName == "" {
		cfg.ServiceName = "loan-simulator"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8080"
	}
	if cfg.SubsidyAmount == nil {
		amount := service.DefaultSubsidyAmount
		cfg.SubsidyAmount = &amount
	}
	if len(cfg.Banks) == 0 {
		cfg.Banks = DefaultBanks()
	}
	if cfg.RateLimit.Capacity == 0 {
		cfg.RateLimit.Capacity = 5
	}
	if cfg.RateLimit.WindowSeconds == 0 {
		cfg.RateLimit.WindowSeconds = 60
	}
	if cfg.History.RetentionCron == "" {
		cfg.History.RetentionCron = defaultRetentionCron
	}
	if cfg.History.RetentionDays == 0 {
		cfg.History.RetentionDays = 90
	}

	return cfg, nil
}

// Validate checks that all fields hold usable values.
func (c *Config) Validate() error {
	if _, err := c.BankTable(); err != nil {
		return fmt.Errorf("banks: %w", err)
	}
	if c.SubsidyAmount == nil || *c.SubsidyAmount < 0 {
		return fmt.Errorf("subsidy_amount must be zero or positive")
	}
	if c.RateLimit.Capacity <= 0 {
		return fmt.Errorf("rate_limit.capacity must be positive")
	}
	if c.RateLimit.WindowSeconds <= 0 {
		return fmt.Errorf("rate_limit.window_seconds must be positive")
	}
	if c.History.RetentionDays <= 0 {
		return fmt.Errorf("history.retention_days must be positive")
	}
	parser := cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	if _, err := parser.Parse(c.History.RetentionCron); err != nil {
		return fmt.Errorf("history.retention_cron: %w", err)
	}
	return nil
}

// BankTable builds the immutable bank table from the configured offers.
func (c *Config) BankTable() (domain.BankTable, error) {
	return domain.NewBankTable(c.Banks)
}

// Subsidy returns the configured subsidy deduction.
func (c *Config) Subsidy() float64 {
	if c.SubsidyAmount == nil {
		return service.DefaultSubsidyAmount
	}
	return *c.SubsidyAmount
}
