package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"CupSentinel/internal/model"
	"CupSentinel/internal/pattern"

	"gopkg.in/yaml.v3"
)

// DefaultPath is used when CONFIG_PATH is unset.
const DefaultPath = "configs/config.yaml"

// Config holds all application configuration.
type Config struct {
	Server struct {
		Addr            string `yaml:"addr"`
		ShutdownTimeout string `yaml:"shutdown_timeout"`
	} `yaml:"server"`
	Log struct {
		Level      string `yaml:"level"`
		Format     string `yaml:"format"` // console | json
		File       string `yaml:"file"`
		MaxSizeMB  int    `yaml:"max_size_mb"`
		MaxBackups int    `yaml:"max_backups"`
		MaxAgeDays int    `yaml:"max_age_days"`
	} `yaml:"log"`
	DataSource struct {
		Provider string `yaml:"provider"` // yahoo | rest | mock
		BaseURL  string `yaml:"base_url"`
		APIKey   string `yaml:"api_key"`
		Interval string `yaml:"interval"`
		Backfill bool   `yaml:"backfill"`
	} `yaml:"data_source"`
	Symbols  []model.Symbol `yaml:"symbols"`
	Schedule struct {
		Timezone  string `yaml:"timezone"`
		FetchCron string `yaml:"fetch_cron"`
		TrimCron  string `yaml:"trim_cron"`
		ScanCron  string `yaml:"scan_cron"`
		StateFile string `yaml:"state_file"`
	} `yaml:"schedule"`
	Retention struct {
		Days int `yaml:"days"`
	} `yaml:"retention"`
	Store struct {
		Backend       string `yaml:"backend"` // sqlite | redis | memory
		SQLitePath    string `yaml:"sqlite_path"`
		RedisAddr     string `yaml:"redis_addr"`
		RedisPassword string `yaml:"redis_password"`
		RedisDB       int    `yaml:"redis_db"`
	} `yaml:"store"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
		Polling  bool   `yaml:"polling"`
	} `yaml:"telegram"`
	Proxy     string         `yaml:"proxy"`
	Detection pattern.Config `yaml:"detection"`
}

// DefaultSymbols is the tracked universe when the config names none.
var DefaultSymbols = []model.Symbol{
	{Ticker: "AAPL", Company: "Apple"},
	{Ticker: "MSFT", Company: "Microsoft"},
	{Ticker: "GOOGL", Company: "Alphabet"},
	{Ticker: "AMZN", Company: "Amazon"},
	{Ticker: "NVDA", Company: "Nvidia"},
	{Ticker: "META", Company: "Meta"},
	{Ticker: "TSLA", Company: "Tesla"},
}

// Path returns the config file location from CONFIG_PATH or DefaultPath.
func Path() string {
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		return v
	}
	return DefaultPath
}

// Load reads config from a YAML file, then applies environment variable overrides
// and defaults. A missing file yields a default configuration.
func Load(path string) (*Config, error) {
	cfg := &Config{Detection: pattern.DefaultConfig()}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	applyEnv(cfg)
	applyDefaults(cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("SERVER_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.Telegram.ChatID = v
	}
	if v := os.Getenv("DATA_SOURCE_PROVIDER"); v != "" {
		cfg.DataSource.Provider = v
	}
	if v := os.Getenv("DATA_SOURCE_BASE_URL"); v != "" {
		cfg.DataSource.BaseURL = v
	}
	if v := os.Getenv("DATA_SOURCE_API_KEY"); v != "" {
		cfg.DataSource.APIKey = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}
	if v := os.Getenv("STORE_BACKEND"); v != "" {
		cfg.Store.Backend = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Store.SQLitePath = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Store.RedisAddr = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		cfg.Store.RedisPassword = v
	}
	if v := os.Getenv("RETENTION_DAYS"); v != "" {
		if days, err := strconv.Atoi(v); err == nil {
			cfg.Retention.Days = days
		}
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8080"
	}
	if cfg.Server.ShutdownTimeout == "" {
		cfg.Server.ShutdownTimeout = "10s"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
	if cfg.Log.MaxSizeMB == 0 {
		cfg.Log.MaxSizeMB = 50
	}
	if cfg.Log.MaxBackups == 0 {
		cfg.Log.MaxBackups = 5
	}
	if cfg.Log.MaxAgeDays == 0 {
		cfg.Log.MaxAgeDays = 14
	}
	if cfg.DataSource.Provider == "" {
		cfg.DataSource.Provider = "yahoo"
	}
	if cfg.DataSource.Interval == "" {
		cfg.DataSource.Interval = "5m"
	}
	if len(cfg.Symbols) == 0 {
		cfg.Symbols = append([]model.Symbol(nil), DefaultSymbols...)
	}
	if cfg.Schedule.Timezone == "" {
		cfg.Schedule.Timezone = "America/New_York"
	}
	if cfg.Schedule.FetchCron == "" {
		cfg.Schedule.FetchCron = "0 */5 9-16 * * 1-5"
	}
	if cfg.Schedule.TrimCron == "" {
		cfg.Schedule.TrimCron = "0 30 17 * * *"
	}
	if cfg.Schedule.StateFile == "" {
		cfg.Schedule.StateFile = "data/alert_state.json"
	}
	if cfg.Retention.Days == 0 {
		cfg.Retention.Days = 3
	}
	if cfg.Store.Backend == "" {
		cfg.Store.Backend = "sqlite"
	}
	if cfg.Store.SQLitePath == "" {
		cfg.Store.SQLitePath = "data/cup_sentinel.db"
	}
	if cfg.Store.RedisAddr == "" {
		cfg.Store.RedisAddr = "localhost:6379"
	}
}

// RetentionWindow returns how far back samples are kept and analysed.
func (c *Config) RetentionWindow() time.Duration {
	return time.Duration(c.Retention.Days) * 24 * time.Hour
}

// ShutdownTimeout returns the parsed server shutdown grace period.
func (c *Config) ShutdownTimeout() time.Duration {
	d, err := time.ParseDuration(c.Server.ShutdownTimeout)
	if err != nil {
		return 10 * time.Second
	}
	return d
}

// SampleInterval returns the parsed fetch interval.
func (c *Config) SampleInterval() time.Duration {
	d, err := time.ParseDuration(c.DataSource.Interval)
	if err != nil {
		return 5 * time.Minute
	}
	return d
}

// Validate checks that all required fields are set and consistent.
func (c *Config) Validate() error {
	switch c.DataSource.Provider {
	case "yahoo", "mock":
	case "rest":
		if c.DataSource.BaseURL == "" {
			return fmt.Errorf("data_source.base_url is required for the rest provider")
		}
	default:
		return fmt.Errorf("data_source.provider %q is not supported", c.DataSource.Provider)
	}
	if _, err := time.ParseDuration(c.DataSource.Interval); err != nil {
		return fmt.Errorf("data_source.interval: %w", err)
	}
	if _, err := time.ParseDuration(c.Server.ShutdownTimeout); err != nil {
		return fmt.Errorf("server.shutdown_timeout: %w", err)
	}
	if _, err := time.LoadLocation(c.Schedule.Timezone); err != nil {
		return fmt.Errorf("schedule.timezone: %w", err)
	}
	if c.Retention.Days <= 0 {
		return fmt.Errorf("retention.days must be positive")
	}
	switch c.Store.Backend {
	case "sqlite", "redis", "memory":
	default:
		return fmt.Errorf("store.backend %q is not supported", c.Store.Backend)
	}
	switch c.Log.Format {
	case "console", "json":
	default:
		return fmt.Errorf("log.format %q is not supported", c.Log.Format)
	}
	if c.Telegram.BotToken != "" && c.Telegram.ChatID == "" {
		return fmt.Errorf("telegram.chat_id is required when telegram.bot_token is set")
	}
	if _, err := NewSymbolBook(c.Symbols); err != nil {
		return fmt.Errorf("symbols: %w", err)
	}
	if err := c.Detection.Validate(); err != nil {
		return err
	}
	return nil
}
