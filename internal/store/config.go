package store

import (
	"fmt"
	"os"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Mode      string `yaml:"mode"`      // DRY_RUN or LIVE
	Algorithm string `yaml:"algorithm"` // ledger identity, namespaces persisted state
	DataDir   string `yaml:"data_dir"`
	Symbol    string `yaml:"symbol"`
	Quantity  string `yaml:"quantity"`
	BuyHour   int    `yaml:"buy_hour"`
	SellHour  int    `yaml:"sell_hour"`
	Timezone  string `yaml:"timezone"`

	ErrorBackoffSeconds int `yaml:"error_backoff_seconds"`

	Report struct {
		Addr string `yaml:"addr"`
	} `yaml:"report"`

	// Parsed from Quantity during Load.
	Qty decimal.Decimal `yaml:"-"`
}

func (c *Config) Validate() error {
	if c.Mode != "DRY_RUN" && c.Mode != "LIVE" {
		return fmt.Errorf("invalid mode '%s': must be 'DRY_RUN' or 'LIVE'", c.Mode)
	}
	if c.Algorithm == "" {
		return fmt.Errorf("algorithm cannot be empty")
	}
	if c.Symbol == "" {
		return fmt.Errorf("symbol cannot be empty")
	}
	if c.BuyHour < 0 || c.BuyHour > 23 {
		return fmt.Errorf("buy_hour must be 0-23, got %d", c.BuyHour)
	}
	if c.SellHour < 0 || c.SellHour > 23 {
		return fmt.Errorf("sell_hour must be 0-23, got %d", c.SellHour)
	}
	if c.BuyHour == c.SellHour {
		return fmt.Errorf("buy_hour and sell_hour must differ, both are %d", c.BuyHour)
	}
	if !c.Qty.IsPositive() {
		return fmt.Errorf("quantity must be positive, got %s", c.Quantity)
	}
	if c.ErrorBackoffSeconds <= 0 {
		return fmt.Errorf("error_backoff_seconds must be positive, got %d", c.ErrorBackoffSeconds)
	}
	return nil
}

// Location resolves the configured time zone. Calendar days and trigger
// hours are evaluated in this zone.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" || c.Timezone == "Local" {
		return time.Local, nil
	}
	return time.LoadLocation(c.Timezone)
}

func (c *Config) Backoff() time.Duration {
	return time.Duration(c.ErrorBackoffSeconds) * time.Second
}

func LoadConfig(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, err
	}

	if c.DataDir == "" {
		c.DataDir = "logs"
	}
	if c.Quantity == "" {
		c.Quantity = "0.0001"
	}
	if c.BuyHour == 0 && c.SellHour == 0 {
		c.BuyHour, c.SellHour = 10, 15
	}
	if c.ErrorBackoffSeconds == 0 {
		c.ErrorBackoffSeconds = 60
	}
	if c.Report.Addr == "" {
		c.Report.Addr = ":8000"
	}

	qty, err := decimal.NewFromString(c.Quantity)
	if err != nil {
		return nil, fmt.Errorf("invalid quantity '%s': %w", c.Quantity, err)
	}
	c.Qty = qty

	if _, err := c.Location(); err != nil {
		return nil, fmt.Errorf("invalid timezone '%s': %w", c.Timezone, err)
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &c, nil
}
