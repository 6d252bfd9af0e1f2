package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"StockScreener/internal/model"
)

const (
	SourceYahoo = "yahoo"
	SourceFile  = "file"
	SourceMock  = "mock"
)

// Config holds all application configuration.
type Config struct {
	DataSource struct {
		Source   string        `yaml:"source"`
		Symbol   string        `yaml:"symbol"`
		Interval string        `yaml:"interval"`
		Start    string        `yaml:"start"`
		End      string        `yaml:"end"`
		File     string        `yaml:"file"`
		BaseDir  string        `yaml:"base_dir"`
		Timeout  time.Duration `yaml:"timeout"`
	} `yaml:"data_source"`
	Chart struct {
		Output    string `yaml:"output"`
		ShowMA50  bool   `yaml:"ma50"`
		ShowMA200 bool   `yaml:"ma200"`
	} `yaml:"chart"`
	Schedule struct {
		RefreshCron string `yaml:"refresh_cron"`
	} `yaml:"schedule"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`
	Proxy string `yaml:"proxy"`
}

// Load reads config from a YAML file, then applies .env and environment variable overrides.
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

	// .env never overrides variables already set in the process environment.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	applyDefaults(cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	strs := map[string]*string{
		"SCREENER_SOURCE":   &cfg.DataSource.Source,
		"SCREENER_SYMBOL":   &cfg.DataSource.Symbol,
		"SCREENER_INTERVAL": &cfg.DataSource.Interval,
		"SCREENER_START":    &cfg.DataSource.Start,
		"SCREENER_END":      &cfg.DataSource.End,
		"SCREENER_FILE":     &cfg.DataSource.File,
		"SCREENER_BASE_DIR": &cfg.DataSource.BaseDir,
		"CHART_OUTPUT":      &cfg.Chart.Output,
		"REFRESH_CRON":      &cfg.Schedule.RefreshCron,
		"SQLITE_PATH":       &cfg.Database.SQLitePath,
		"LOG_LEVEL":         &cfg.Log.Level,
		"HTTPS_PROXY":       &cfg.Proxy,
	}
	for key, dst := range strs {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}

	bools := map[string]*bool{
		"SHOW_MA50":  &cfg.Chart.ShowMA50,
		"SHOW_MA200": &cfg.Chart.ShowMA200,
	}
	for key, dst := range bools {
		if v := os.Getenv(key); v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("env %s: %w", key, err)
			}
			*dst = b
		}
	}

	if v := os.Getenv("SCREENER_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("env SCREENER_TIMEOUT: %w", err)
		}
		cfg.DataSource.Timeout = d
	}
	return nil
}

func applyDefaults(cfg *Config) {
	ds := &cfg.DataSource
	if ds.Source == "" {
		ds.Source = SourceYahoo
	}
	ds.Source = strings.ToLower(ds.Source)
	if ds.Symbol == "" {
		ds.Symbol = "evo.st"
	}
	if ds.Interval == "" {
		ds.Interval = string(model.IntervalDaily)
	}
	// Local files are loaded whole unless a range is configured.
	if ds.Source != SourceFile {
		if ds.Start == "" {
			ds.Start = "2018-01-01"
		}
		if ds.End == "" {
			ds.End = "2018-09-01"
		}
	}
	if ds.BaseDir == "" {
		ds.BaseDir = "data/quotes"
	}
	if ds.Timeout == 0 {
		ds.Timeout = 30 * time.Second
	}
	if cfg.Chart.Output == "" {
		cfg.Chart.Output = "charts/{symbol}.png"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
}

// Validate checks that all required fields are set and well formed.
func (c *Config) Validate() error {
	switch c.DataSource.Source {
	case SourceYahoo, SourceFile, SourceMock:
	default:
		return fmt.Errorf("data_source.source must be one of yahoo, file, mock; got %q", c.DataSource.Source)
	}
	if c.DataSource.Timeout <= 0 {
		return fmt.Errorf("data_source.timeout must be positive")
	}
	req, err := c.Request()
	if err != nil {
		return err
	}
	if c.DataSource.Source == SourceYahoo && !req.HasRange() {
		return fmt.Errorf("data_source.start and data_source.end are required for yahoo")
	}
	return nil
}

// Request builds the fetch request described by the data_source section.
func (c *Config) Request() (model.Request, error) {
	ds := c.DataSource
	interval, err := model.ParseInterval(ds.Interval)
	if err != nil {
		return model.Request{}, fmt.Errorf("data_source.interval: %w", err)
	}
	req := model.Request{Symbol: ds.Symbol, Interval: interval, File: ds.File}
	if ds.Start != "" {
		if req.Start, err = model.ParseDate(ds.Start); err != nil {
			return model.Request{}, fmt.Errorf("data_source.start: %w", err)
		}
	}
	if ds.End != "" {
		if req.End, err = model.ParseDate(ds.End); err != nil {
			return model.Request{}, fmt.Errorf("data_source.end: %w", err)
		}
	}
	if err := req.Validate(); err != nil {
		return model.Request{}, fmt.Errorf("data_source: %w", err)
	}
	return req, nil
}
