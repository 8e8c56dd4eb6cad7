package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/dgnsrekt/fxboard/internal/ingest"
	"github.com/dgnsrekt/fxboard/internal/signals"
)

// IngestConfig configures fx_ingest.
type IngestConfig struct {
	SourceDir string        `mapstructure:"source_dir"`
	DestDir   string        `mapstructure:"dest_dir"`
	Minute    int           `mapstructure:"minute"`
	Files     []ingest.File `mapstructure:"files"`
	Logging   LoggingConfig `mapstructure:"logging"`
}

// LoadIngest reads fx_ingest settings with the FXINGEST_ prefix. Without an
// explicit file list, both signal files are copied from SourceDir to DestDir.
func LoadIngest(path string) (*IngestConfig, error) {
	v, err := newViper("FXINGEST", path)
	if err != nil {
		return nil, err
	}
	v.SetDefault("source_dir", ".")
	v.SetDefault("dest_dir", "./public/data")
	v.SetDefault("minute", 59)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.file", "logs/fx_ingest.log")

	var cfg IngestConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.Logging.Level = strings.ToLower(cfg.Logging.Level)

	if len(cfg.Files) == 0 {
		for _, src := range signals.Sources {
			name := "fx_signals_" + src + ".json"
			cfg.Files = append(cfg.Files, ingest.File{
				Name:        src,
				Source:      filepath.Join(cfg.SourceDir, name),
				Destination: filepath.Join(cfg.DestDir, name),
			})
		}
	}
	return &cfg, nil
}

func (c *IngestConfig) Validate() error {
	if c.Minute < 0 || c.Minute > 59 {
		return fmt.Errorf("minute must be between 0 and 59")
	}
	for i, f := range c.Files {
		if f.Source == "" || f.Destination == "" {
			return fmt.Errorf("files[%d] needs source and destination", i)
		}
	}
	return validateLevel(c.Logging.Level)
}
