// Package config loads till configuration from an optional YAML file
// with environment-variable overrides. A .env file next to the binary
// is honored for local development.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// ShopConfig identifies the shop on printed receipts.
type ShopConfig struct {
	Name     string `yaml:"name"`
	Address  string `yaml:"address"`
	Phone    string `yaml:"phone"`
	Currency string `yaml:"currency"`
}

// APIConfig points at the remote backend.
type APIConfig struct {
	ProductsURL string        `yaml:"products_url"`
	SalesURL    string        `yaml:"sales_url"`
	PageSize    int           `yaml:"page_size"`
	Timeout     time.Duration `yaml:"timeout"`
}

// PrinterConfig selects the receipt printer.
type PrinterConfig struct {
	// Target is "tcp://host:port", a device path, or empty for the
	// OS default device.
	Target     string `yaml:"target"`
	PaperWidth int    `yaml:"paper_width"`
}

// SyncConfig tunes the sync engine cadence.
type SyncConfig struct {
	Interval time.Duration `yaml:"interval"`
	Debounce time.Duration `yaml:"debounce"`
}

// Config holds all till configuration.
type Config struct {
	Shop     ShopConfig    `yaml:"shop"`
	API      APIConfig     `yaml:"api"`
	Printer  PrinterConfig `yaml:"printer"`
	Sync     SyncConfig    `yaml:"sync"`
	Database string        `yaml:"database"`
	UserID   string        `yaml:"user_id"`
}

// Load reads configuration: defaults, then the YAML file at path (if
// it exists), then environment overrides. An absent file is not an
// error - environment-only deployments are fine.
func Load(path string) (*Config, error) {
	// .env is optional.
	_ = godotenv.Load()

	cfg := &Config{
		Shop: ShopConfig{
			Name:     "Pulse Mart",
			Currency: "GHS",
		},
		API: APIConfig{
			PageSize: 500,
			Timeout:  30 * time.Second,
		},
		Printer: PrinterConfig{
			PaperWidth: 80,
		},
		Sync: SyncConfig{
			Interval: 15 * time.Minute,
			Debounce: 5 * time.Minute,
		},
		Database: "pulse-pos.db",
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err == nil {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	applyEnv(cfg)
	return cfg, nil
}

// applyEnv overlays POS_* environment variables onto the config.
func applyEnv(cfg *Config) {
	cfg.Shop.Name = getEnv("POS_SHOP_NAME", cfg.Shop.Name)
	cfg.Shop.Address = getEnv("POS_SHOP_ADDRESS", cfg.Shop.Address)
	cfg.Shop.Phone = getEnv("POS_SHOP_PHONE", cfg.Shop.Phone)
	cfg.Shop.Currency = getEnv("POS_CURRENCY", cfg.Shop.Currency)

	cfg.API.ProductsURL = getEnv("POS_PRODUCTS_URL", cfg.API.ProductsURL)
	cfg.API.SalesURL = getEnv("POS_SALES_URL", cfg.API.SalesURL)
	cfg.API.PageSize = getEnvAsInt("POS_PAGE_SIZE", cfg.API.PageSize)
	cfg.API.Timeout = getEnvAsDuration("POS_API_TIMEOUT", cfg.API.Timeout)

	cfg.Printer.Target = getEnv("POS_PRINTER", cfg.Printer.Target)
	cfg.Printer.PaperWidth = getEnvAsInt("POS_PAPER_WIDTH", cfg.Printer.PaperWidth)

	cfg.Sync.Interval = getEnvAsDuration("POS_SYNC_INTERVAL", cfg.Sync.Interval)
	cfg.Sync.Debounce = getEnvAsDuration("POS_SYNC_DEBOUNCE", cfg.Sync.Debounce)

	cfg.Database = getEnv("POS_DB_PATH", cfg.Database)
	cfg.UserID = getEnv("POS_USER_ID", cfg.UserID)
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, err := strconv.Atoi(getEnv(key, "")); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, err := time.ParseDuration(getEnv(key, "")); err == nil {
		return value
	}
	return defaultValue
}
