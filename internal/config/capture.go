package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// CaptureConfig configures chart_capture.
type CaptureConfig struct {
	CDPAddress   string        `mapstructure:"cdp_address"`
	CDPPort      int           `mapstructure:"cdp_port"`
	ChartURL     string        `mapstructure:"chart_url"`
	WaitSelector string        `mapstructure:"wait_selector"`
	Width        int           `mapstructure:"width"`
	Height       int           `mapstructure:"height"`
	Settle       time.Duration `mapstructure:"settle"`
	Timeout      time.Duration `mapstructure:"timeout"`
	Minute       int           `mapstructure:"minute"`
	ImagesDir    string        `mapstructure:"images_dir"`
	Timezone     string        `mapstructure:"timezone"`
	Logging      LoggingConfig `mapstructure:"logging"`
}

// LoadCapture reads chart_capture settings with the FXCAPTURE_ prefix.
func LoadCapture(path string) (*CaptureConfig, error) {
	v, err := newViper("FXCAPTURE", path)
	if err != nil {
		return nil, err
	}
	v.SetDefault("cdp_address", "")
	v.SetDefault("cdp_port", 9220)
	v.SetDefault("chart_url", "")
	v.SetDefault("wait_selector", "canvas")
	v.SetDefault("width", 1600)
	v.SetDefault("height", 900)
	v.SetDefault("settle", "3s")
	v.SetDefault("timeout", "60s")
	v.SetDefault("minute", 1)
	v.SetDefault("images_dir", "./public/images")
	v.SetDefault("timezone", "Asia/Tokyo")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.file", "logs/chart_capture.log")

	var cfg CaptureConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.Logging.Level = strings.ToLower(cfg.Logging.Level)
	return &cfg, nil
}

// CDPURL is the remote allocator endpoint, or empty to launch a browser.
func (c *CaptureConfig) CDPURL() string {
	if c.CDPAddress == "" {
		return ""
	}
	return "http://" + c.CDPAddress + ":" + strconv.Itoa(c.CDPPort)
}

// Location resolves Timezone.
func (c *CaptureConfig) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("timezone: %w", err)
	}
	return loc, nil
}

func (c *CaptureConfig) Validate() error {
	if c.ChartURL == "" {
		return fmt.Errorf("chart_url is required")
	}
	if c.Minute < 0 || c.Minute > 59 {
		return fmt.Errorf("minute must be between 0 and 59")
	}
	if c.ImagesDir == "" {
		return fmt.Errorf("images_dir is required")
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return validateLevel(c.Logging.Level)
}
