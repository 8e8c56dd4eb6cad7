// Package config loads settings for the fxboard binaries from an optional
// YAML file, a .env file and prefixed environment variables.
package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"
	_ "time/tzdata" // timezone names resolve without a system zoneinfo

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Placeholder credentials. Deployments are expected to override both.
const (
	DefaultLoginPassword = "change-me-login"
	DefaultAdminPassword = "change-me-admin"
)

type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Feed    FeedConfig    `mapstructure:"feed"`
	Refresh RefreshConfig `mapstructure:"refresh"`
	Auth    AuthConfig    `mapstructure:"auth"`
	Storage StorageConfig `mapstructure:"storage"`
	Charts  ChartsConfig  `mapstructure:"charts"`
	Notify  NotifyConfig  `mapstructure:"notify"`
	Logging LoggingConfig `mapstructure:"logging"`
}

type ServerConfig struct {
	BindAddr      string   `mapstructure:"bind_addr"`
	FallbackAddrs []string `mapstructure:"fallback_addrs"`
	PublicDir     string   `mapstructure:"public_dir"`
	Timezone      string   `mapstructure:"timezone"`
}

type FeedConfig struct {
	// BaseURL fetches feeds over HTTP. Empty reads them from Server.PublicDir.
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type RefreshConfig struct {
	ReloadMinute int           `mapstructure:"reload_minute"`
	PollInterval time.Duration `mapstructure:"poll_interval"`
}

type AuthConfig struct {
	DefaultLoginPassword string  `mapstructure:"default_login_password"`
	AdminPassword        string  `mapstructure:"admin_password"`
	SecureCookie         bool    `mapstructure:"secure_cookie"`
	LoginPerMinute       float64 `mapstructure:"login_per_minute"`
	LoginBurst           int     `mapstructure:"login_burst"`
}

type StorageConfig struct {
	DBPath           string `mapstructure:"db_path"`
	HistoryDir       string `mapstructure:"history_dir"`
	HistoryBuffer    int    `mapstructure:"history_buffer"`
	HistoryMaxSizeMB int    `mapstructure:"history_max_size_mb"`
}

type ChartsConfig struct {
	ImagesDir string `mapstructure:"images_dir"`
	GridFile  string `mapstructure:"grid_file"`
}

type NotifyConfig struct {
	NTFYURL  string         `mapstructure:"ntfy_url"`
	Telegram TelegramConfig `mapstructure:"telegram"`
	Timeout  time.Duration  `mapstructure:"timeout"`
}

type TelegramConfig struct {
	BotToken string `mapstructure:"bot_token"`
	ChatID   string `mapstructure:"chat_id"`
	Enabled  bool   `mapstructure:"enabled"`
}

type LoggingConfig struct {
	Level string `mapstructure:"level"`
	File  string `mapstructure:"file"`
}

// Load reads dashboard server settings. path may be empty. Environment
// variables use the FXBOARD_ prefix, e.g. FXBOARD_SERVER_BIND_ADDR.
func Load(path string) (*Config, error) {
	v, err := newViper("FXBOARD", path)
	if err != nil {
		return nil, err
	}
	setDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.Logging.Level = strings.ToLower(cfg.Logging.Level)

	if cfg.Auth.DefaultLoginPassword == DefaultLoginPassword || cfg.Auth.AdminPassword == DefaultAdminPassword {
		slog.Warn("placeholder auth passwords in use; set FXBOARD_AUTH_DEFAULT_LOGIN_PASSWORD and FXBOARD_AUTH_ADMIN_PASSWORD")
	}
	return &cfg, nil
}

// newViper loads .env, then binds prefixed env vars and the optional file.
func newViper(prefix, path string) (*viper.Viper, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("failed to load .env file", "error", err)
	}

	v := viper.New()
	v.SetEnvPrefix(prefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}
	return v, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.bind_addr", "127.0.0.1:8080")
	v.SetDefault("server.fallback_addrs", []string{"127.0.0.1:8081", "127.0.0.1:8082"})
	v.SetDefault("server.public_dir", "./public")
	v.SetDefault("server.timezone", "Asia/Tokyo")

	v.SetDefault("feed.base_url", "")
	v.SetDefault("feed.timeout", "15s")

	v.SetDefault("refresh.reload_minute", 5)
	v.SetDefault("refresh.poll_interval", "5m")

	v.SetDefault("auth.default_login_password", DefaultLoginPassword)
	v.SetDefault("auth.admin_password", DefaultAdminPassword)
	v.SetDefault("auth.secure_cookie", true)
	v.SetDefault("auth.login_per_minute", 10.0)
	v.SetDefault("auth.login_burst", 5)

	v.SetDefault("storage.db_path", "./data/fxboard.db")
	v.SetDefault("storage.history_dir", "./data/history")
	v.SetDefault("storage.history_buffer", 256)
	v.SetDefault("storage.history_max_size_mb", 50)

	v.SetDefault("charts.images_dir", "./public/images")
	v.SetDefault("charts.grid_file", "./config/charts.yaml")

	v.SetDefault("notify.ntfy_url", "")
	v.SetDefault("notify.timeout", "10s")
	v.SetDefault("notify.telegram.bot_token", "")
	v.SetDefault("notify.telegram.chat_id", "")
	v.SetDefault("notify.telegram.enabled", false)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.file", "logs/fxboard.log")
}

// Validate checks ranges and required fields.
func (c *Config) Validate() error {
	if c.Server.BindAddr == "" {
		return fmt.Errorf("server.bind_addr is required")
	}
	if c.Server.PublicDir == "" {
		return fmt.Errorf("server.public_dir is required")
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	if c.Feed.Timeout < time.Second {
		return fmt.Errorf("feed.timeout must be at least 1 second")
	}
	if c.Refresh.ReloadMinute < 0 || c.Refresh.ReloadMinute > 59 {
		return fmt.Errorf("refresh.reload_minute must be between 0 and 59")
	}
	if c.Refresh.PollInterval != 0 && c.Refresh.PollInterval < 10*time.Second {
		return fmt.Errorf("refresh.poll_interval must be 0 or at least 10 seconds")
	}
	if c.Auth.AdminPassword == "" {
		return fmt.Errorf("auth.admin_password is required")
	}
	if c.Auth.LoginPerMinute < 0 {
		return fmt.Errorf("auth.login_per_minute must not be negative")
	}
	if c.Storage.DBPath == "" {
		return fmt.Errorf("storage.db_path is required")
	}
	if c.Storage.HistoryDir != "" {
		if c.Storage.HistoryBuffer < 1 {
			return fmt.Errorf("storage.history_buffer must be at least 1")
		}
		if c.Storage.HistoryMaxSizeMB < 1 {
			return fmt.Errorf("storage.history_max_size_mb must be at least 1")
		}
	}
	if c.Notify.Telegram.Enabled {
		if c.Notify.Telegram.BotToken == "" {
			return fmt.Errorf("notify.telegram.bot_token is required when telegram is enabled")
		}
		if c.Notify.Telegram.ChatID == "" {
			return fmt.Errorf("notify.telegram.chat_id is required when telegram is enabled")
		}
	}
	return validateLevel(c.Logging.Level)
}

// Location resolves Server.Timezone.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Server.Timezone)
	if err != nil {
		return nil, fmt.Errorf("server.timezone: %w", err)
	}
	return loc, nil
}

func validateLevel(level string) error {
	valid := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !valid[level] {
		return fmt.Errorf("logging.level must be one of: debug, info, warn, error")
	}
	return nil
}
