package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/ivlev/overlaysteg/internal/overlay"
	"github.com/ivlev/overlaysteg/internal/reveal"
)

// UI limits for the font size slider and flag.
const (
	MinFontSize = 8
	MaxFontSize = 72
)

type Config struct {
	Embed  EmbedConfig  `yaml:"embed"`
	Reveal RevealConfig `yaml:"reveal"`
	Batch  BatchConfig  `yaml:"batch"`
	Server ServerConfig `yaml:"server"`
	Log    LogConfig    `yaml:"log"`
}

type EmbedConfig struct {
	Strength float64 `yaml:"strength" env:"STRENGTH"`
	FontSize int     `yaml:"font_size" env:"FONT_SIZE"`
	HOffset  float64 `yaml:"h_offset" env:"H_OFFSET"`
	VOffset  float64 `yaml:"v_offset" env:"V_OFFSET"`
	Font     string  `yaml:"font" env:"FONT"`
	Pattern  string  `yaml:"pattern" env:"PATTERN"`
}

type RevealConfig struct {
	Intensity float64 `yaml:"intensity" env:"INTENSITY"`
}

type BatchConfig struct {
	Workers   int    `yaml:"workers" env:"WORKERS"`
	OutputDir string `yaml:"output_dir" env:"OUTPUT_DIR"`
	DPI       int    `yaml:"dpi" env:"DPI"`
	ShowStats bool   `yaml:"show_stats" env:"SHOW_STATS"`
}

type ServerConfig struct {
	Addr           string        `yaml:"addr" env:"ADDR"`
	MaxUploadBytes int64         `yaml:"max_upload_bytes" env:"MAX_UPLOAD_BYTES"`
	UploadTTL      time.Duration `yaml:"upload_ttl" env:"UPLOAD_TTL"`
	RatePerSecond  float64       `yaml:"rate_per_second" env:"RATE_PER_SECOND"`
	RateBurst      int           `yaml:"rate_burst" env:"RATE_BURST"`
	PreviewWidth   int           `yaml:"preview_width" env:"PREVIEW_WIDTH"`
}

type LogConfig struct {
	Level string `yaml:"level" env:"LOG_LEVEL"`
	Human bool   `yaml:"human" env:"LOG_HUMAN"`
}

// Default mirrors the slider defaults of the interactive shell.
func Default() *Config {
	return &Config{
		Embed: EmbedConfig{
			Strength: 0.3,
			FontSize: 12,
			Font:     overlay.DefaultFontName,
			Pattern:  overlay.PatternText,
		},
		Reveal: RevealConfig{Intensity: 0},
		Batch: BatchConfig{
			OutputDir: "output",
			DPI:       150,
		},
		Server: ServerConfig{
			Addr:           ":8501",
			MaxUploadBytes: 20 << 20,
			UploadTTL:      30 * time.Minute,
			RatePerSecond:  20,
			RateBurst:      40,
			PreviewWidth:   800,
		},
		Log: LogConfig{Level: "info"},
	}
}

// Load layers the YAML file at path (optional) and OVERLAYSTEG_* environment
// variables over the defaults, then validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}

	if err := env.ParseWithOptions(cfg, env.Options{Prefix: "OVERLAYSTEG_"}); err != nil {
		return nil, fmt.Errorf("config: parse env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks every range the transforms and shells depend on.
func (c *Config) Validate() error {
	var errs []error

	if err := c.Embed.Options("").Validate(); err != nil {
		errs = append(errs, err)
	}
	if c.Embed.FontSize < MinFontSize || c.Embed.FontSize > MaxFontSize {
		errs = append(errs, fmt.Errorf("font size %d outside [%d, %d]", c.Embed.FontSize, MinFontSize, MaxFontSize))
	}
	if c.Reveal.Intensity < 0 || c.Reveal.Intensity > 1 {
		errs = append(errs, fmt.Errorf("%w: %.3f", reveal.ErrInvalidIntensity, c.Reveal.Intensity))
	}
	if c.Batch.Workers < 0 {
		errs = append(errs, fmt.Errorf("workers %d must not be negative", c.Batch.Workers))
	}
	if c.Batch.DPI <= 0 {
		errs = append(errs, fmt.Errorf("dpi %d must be positive", c.Batch.DPI))
	}
	if c.Server.MaxUploadBytes <= 0 {
		errs = append(errs, fmt.Errorf("max upload bytes %d must be positive", c.Server.MaxUploadBytes))
	}
	if c.Server.RatePerSecond <= 0 || c.Server.RateBurst <= 0 {
		errs = append(errs, fmt.Errorf("rate %.2f/s burst %d must be positive", c.Server.RatePerSecond, c.Server.RateBurst))
	}

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// Options turns the embed defaults into overlay options for message.
func (e EmbedConfig) Options(message string) overlay.Options {
	return overlay.Options{
		Message:  message,
		Strength: e.Strength,
		HOffset:  e.HOffset,
		VOffset:  e.VOffset,
		FontSize: e.FontSize,
		FontName: e.Font,
		Pattern:  e.Pattern,
	}
}
