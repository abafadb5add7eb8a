package app

import (
	"errors"
	"fmt"
	"math"

	"github.com/vk/routecost/internal/costing"
	"github.com/vk/routecost/internal/report"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	RoutePaths []string // hcl files or directories
	RouteName  string
	// Target and Quantity override the selected route block when set.
	Target   string
	Quantity *float64

	PriceFiles []string // toml price lists, applied in order
	PriceDSN   string   // sql price store, applied after the price files

	Overrides []costing.Override
	// AllowDuplicateMaterials turns duplicate material definitions from a
	// configuration error into last-write-wins.
	AllowDuplicateMaterials bool

	Format      string
	ShowSteps   bool
	ScanWorkers int

	ListenAddr string

	LogFormat string
	LogLevel  string
}

// NewConfig validates cfg and fills in defaults.
func NewConfig(cfg Config) (*Config, error) {
	if q := cfg.Quantity; q != nil && (math.IsNaN(*q) || math.IsInf(*q, 0) || *q <= 0) {
		return nil, fmt.Errorf("%w: must be a finite, positive number, got %v", costing.ErrInvalidQuantity, *q)
	}
	if cfg.ScanWorkers < 0 {
		return nil, errors.New("scan workers must not be negative")
	}

	if cfg.Format == "" {
		cfg.Format = string(report.FormatTable)
	}
	if _, err := report.ParseFormat(cfg.Format); err != nil {
		return nil, err
	}

	if cfg.LogFormat == "" {
		cfg.LogFormat = "text"
	}
	if cfg.LogFormat != "text" && cfg.LogFormat != "json" {
		return nil, errors.New("invalid log-format: must be 'text' or 'json'")
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return nil, errors.New("invalid log-level: must be 'debug', 'info', 'warn', or 'error'")
	}

	if cfg.ListenAddr == "" {
		cfg.ListenAddr = ":8080"
	}
	return &cfg, nil
}
