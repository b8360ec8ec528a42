// Package config loads and validates the engine configuration from YAML or
// JSON files.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Trading modes.
const (
	ModeBacktest = "backtest"
	ModePaper    = "paper"
	ModeLive     = "live"
)

// Config represents the complete engine configuration.
type Config struct {
	Account  AccountConfig  `json:"account" yaml:"account"`
	Trading  TradingConfig  `json:"trading" yaml:"trading"`
	Store    StoreConfig    `json:"store" yaml:"store"`
	Backtest BacktestConfig `json:"backtest" yaml:"backtest"`
	Log      LogConfig      `json:"log" yaml:"log"`

	Tiger TigerConfig `json:"tiger,omitempty" yaml:"tiger,omitempty"`
	UIBot UIBotConfig `json:"uibot,omitempty" yaml:"uibot,omitempty"`
}

// TigerConfig carries Tiger open-API credentials, used only when the tiger
// venue is selected.
type TigerConfig struct {
	TigerID        string `json:"tiger_id,omitempty" yaml:"tiger_id,omitempty"`
	Account        string `json:"account,omitempty" yaml:"account,omitempty"`
	PrivateKeyPath string `json:"private_key_path,omitempty" yaml:"private_key_path,omitempty"`
}

// UIBotConfig carries UI-automation settings, used only when the uibot
// venue is selected.
type UIBotConfig struct {
	WindowTitle string `json:"window_title,omitempty" yaml:"window_title,omitempty"`
}

// AccountConfig contains account initialization parameters.
type AccountConfig struct {
	Session        string  `json:"session" yaml:"session"`
	InitialCapital float64 `json:"initial_capital" yaml:"initial_capital"`
	Currency       string  `json:"currency" yaml:"currency"`
}

// TradingConfig selects the venue and the decision policy.
type TradingConfig struct {
	Mode     string `json:"mode" yaml:"mode"`     // backtest, paper or live
	Broker   string `json:"broker" yaml:"broker"` // paper, tiger or uibot
	Strategy string `json:"strategy" yaml:"strategy"`

	// MaxPositionValue caps the value of any single symbol's position.
	MaxPositionValue float64 `json:"max_position_value" yaml:"max_position_value"`
}

// StoreConfig selects the persistence backend.
type StoreConfig struct {
	Type   string `json:"type" yaml:"type"` // "sqlite" or "memory"
	DBPath string `json:"db_path,omitempty" yaml:"db_path,omitempty"`
}

// BacktestConfig contains backtest-only parameters.
type BacktestConfig struct {
	CacheDir string `json:"cache_dir,omitempty" yaml:"cache_dir,omitempty"`
}

// LogConfig contains logging parameters.
type LogConfig struct {
	Level string `json:"level" yaml:"level"`
}

// LoadFromFile loads configuration from a file, trying YAML first and
// falling back to JSON.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		if jerr := json.Unmarshal(data, cfg); jerr != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// SaveToFile saves configuration to a file, choosing the format by
// extension (.yaml/.yml write YAML, everything else JSON).
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error

	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Account.Session == "" {
		return fmt.Errorf("account.session is required")
	}
	if c.Account.InitialCapital <= 0 {
		return fmt.Errorf("account.initial_capital must be positive")
	}
	if c.Account.Currency == "" {
		return fmt.Errorf("account.currency is required")
	}

	switch c.Trading.Mode {
	case ModeBacktest, ModePaper, ModeLive:
	default:
		return fmt.Errorf("trading.mode must be backtest, paper or live")
	}
	switch c.Trading.Broker {
	case "paper", "tiger", "uibot":
	default:
		return fmt.Errorf("unknown broker: %s", c.Trading.Broker)
	}
	if c.Trading.Strategy == "" {
		return fmt.Errorf("trading.strategy is required")
	}
	if c.Trading.MaxPositionValue <= 0 {
		return fmt.Errorf("trading.max_position_value must be positive")
	}

	switch c.Store.Type {
	case "sqlite":
		if c.Store.DBPath == "" {
			return fmt.Errorf("store.db_path required for sqlite store")
		}
	case "memory":
	default:
		return fmt.Errorf("store.type must be 'sqlite' or 'memory'")
	}

	return nil
}

// Default returns a configuration with sensible defaults.
func Default() *Config {
	return &Config{
		Account: AccountConfig{
			Session:        "paper-001",
			InitialCapital: 100000,
			Currency:       "CNY",
		},
		Trading: TradingConfig{
			Mode:             ModePaper,
			Broker:           "paper",
			Strategy:         "follow-signal",
			MaxPositionValue: 10000,
		},
		Store: StoreConfig{
			Type:   "sqlite",
			DBPath: "./papertrade.db",
		},
		Backtest: BacktestConfig{
			CacheDir: "./cache",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}
