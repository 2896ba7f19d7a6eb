// Package config loads the blotter configuration: the commission rate
// table, block windows and exemptions, the strategy registry, contract
// multipliers, file paths and the risk limits. The core packages never
// read this directly; the CLI loads it once and passes typed values down.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/rustyeddy/blotter/fees"
	"github.com/rustyeddy/blotter/gate"
	"github.com/rustyeddy/blotter/trade"
)

// Config is the complete blotter configuration.
type Config struct {
	StartingBalance string                    `json:"starting_balance" yaml:"starting_balance"`
	Costs           map[string]CostConfig     `json:"costs" yaml:"costs"`
	Blocks          []BlockConfig             `json:"option_blocks" yaml:"option_blocks"`
	Exemptions      []string                  `json:"block_exemptions" yaml:"block_exemptions"`
	Strategies      map[string]StrategyConfig `json:"strategies" yaml:"strategies"`
	Multipliers     map[string]int            `json:"multipliers" yaml:"multipliers"`
	Paths           PathsConfig               `json:"paths" yaml:"paths"`
	Journal         JournalConfig             `json:"journal" yaml:"journal"`
	Risk            RiskConfig                `json:"risk_limits" yaml:"risk_limits"`
}

// CostConfig is the per-contract rate row for one instrument kind.
// Amounts are decimal strings so the file never carries float currency.
type CostConfig struct {
	Commission string `json:"commission_per_contract" yaml:"commission_per_contract"`
	Exchange   string `json:"exchange_fees_per_contract" yaml:"exchange_fees_per_contract"`
	Regulatory string `json:"regulatory_fees_per_contract" yaml:"regulatory_fees_per_contract"`
}

// BlockConfig is one option-entry blackout window, "HH:MM" boundaries.
type BlockConfig struct {
	Start string `json:"start" yaml:"start"`
	End   string `json:"end" yaml:"end"`
	Name  string `json:"name" yaml:"name"`
}

// StrategyConfig is one strategy registry row.
type StrategyConfig struct {
	Kind        string `json:"kind" yaml:"kind"`
	DefaultType string `json:"default_type,omitempty" yaml:"default_type,omitempty"`
	DefaultSide string `json:"default_side,omitempty" yaml:"default_side,omitempty"`
}

// PathsConfig names the data files. Relative paths resolve against the
// directory the blotter runs in.
type PathsConfig struct {
	Book        string `json:"book" yaml:"book"`
	Inbox       string `json:"inbox" yaml:"inbox"`
	Archive     string `json:"archive" yaml:"archive"`
	Adjustments string `json:"adjustments" yaml:"adjustments"`
	RiskState   string `json:"risk_state" yaml:"risk_state"`
	Timers      string `json:"timers" yaml:"timers"`
}

// JournalConfig selects the close-history backend.
type JournalConfig struct {
	Backend string `json:"backend" yaml:"backend"` // "sqlite", "csv" or "none"
	Path    string `json:"path,omitempty" yaml:"path,omitempty"`
}

// RiskConfig holds the heuristic risk limits.
type RiskConfig struct {
	HotHandWins         int    `json:"hot_hand_threshold" yaml:"hot_hand_threshold"`
	HotHandWindowHours  int    `json:"hot_hand_window_hours" yaml:"hot_hand_window_hours"`
	MaxPositionFraction string `json:"max_position_fraction" yaml:"max_position_fraction"`
}

// LoadFromFile loads configuration from a file, trying YAML first and
// falling back to JSON, then validates it.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := &Config{}
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

// SaveToFile writes the configuration, format chosen by extension.
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(c)
	default:
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

// Validate checks every field the core depends on, so a bad config fails
// at startup instead of mid-operation.
func (c *Config) Validate() error {
	if _, err := decimal.NewFromString(c.StartingBalance); err != nil {
		return fmt.Errorf("starting_balance %q is not a decimal", c.StartingBalance)
	}

	for kind, cost := range c.Costs {
		for field, v := range map[string]string{
			"commission_per_contract":      cost.Commission,
			"exchange_fees_per_contract":   cost.Exchange,
			"regulatory_fees_per_contract": cost.Regulatory,
		} {
			d, err := decimal.NewFromString(v)
			if err != nil {
				return fmt.Errorf("costs.%s.%s %q is not a decimal", kind, field, v)
			}
			if d.IsNegative() {
				return fmt.Errorf("costs.%s.%s must not be negative", kind, field)
			}
		}
	}

	for i, b := range c.Blocks {
		if b.Name == "" {
			return fmt.Errorf("option_blocks[%d] has no name", i)
		}
		if _, err := gate.ParseClock(b.Start); err != nil {
			return fmt.Errorf("option_blocks[%d] (%s): %w", i, b.Name, err)
		}
		if _, err := gate.ParseClock(b.End); err != nil {
			return fmt.Errorf("option_blocks[%d] (%s): %w", i, b.Name, err)
		}
	}

	if len(c.Strategies) == 0 {
		return fmt.Errorf("at least one strategy is required")
	}
	for name, s := range c.Strategies {
		if !trade.StrategyKind(s.Kind).Known() {
			return fmt.Errorf("strategies.%s.kind %q is not one of single_leg, bull_put_spread, bear_call_spread", name, s.Kind)
		}
		switch strings.ToUpper(s.DefaultSide) {
		case "", string(trade.Buy), string(trade.Sell):
		default:
			return fmt.Errorf("strategies.%s.default_side %q must be BUY or SELL", name, s.DefaultSide)
		}
	}

	for root, m := range c.Multipliers {
		if m <= 0 {
			return fmt.Errorf("multipliers.%s must be positive, got %d", root, m)
		}
	}

	switch c.Journal.Backend {
	case "sqlite", "csv":
		if c.Journal.Path == "" {
			return fmt.Errorf("journal.path required for %s backend", c.Journal.Backend)
		}
	case "none", "":
	default:
		return fmt.Errorf("journal.backend must be 'sqlite', 'csv' or 'none'")
	}

	if c.Risk.HotHandWins <= 0 {
		return fmt.Errorf("risk_limits.hot_hand_threshold must be positive")
	}
	if c.Risk.HotHandWindowHours <= 0 {
		return fmt.Errorf("risk_limits.hot_hand_window_hours must be positive")
	}
	frac, err := decimal.NewFromString(c.Risk.MaxPositionFraction)
	if err != nil {
		return fmt.Errorf("risk_limits.max_position_fraction %q is not a decimal", c.Risk.MaxPositionFraction)
	}
	if !frac.IsPositive() || frac.GreaterThan(decimal.NewFromInt(1)) {
		return fmt.Errorf("risk_limits.max_position_fraction must be in (0, 1]")
	}

	return nil
}

// RateTable converts the cost rows into the fees lookup table. Call only
// after Validate; a malformed decimal here is a programming error.
func (c *Config) RateTable() fees.Table {
	tbl := fees.Table{}
	for kind, cost := range c.Costs {
		tbl[strings.ToUpper(kind)] = fees.Rates{
			Commission: decimal.RequireFromString(cost.Commission),
			Exchange:   decimal.RequireFromString(cost.Exchange),
			Regulatory: decimal.RequireFromString(cost.Regulatory),
		}
	}
	return tbl
}

// Windows converts the block rows into gate windows, preserving order.
func (c *Config) Windows() ([]gate.Window, error) {
	windows := make([]gate.Window, 0, len(c.Blocks))
	for _, b := range c.Blocks {
		start, err := gate.ParseClock(b.Start)
		if err != nil {
			return nil, fmt.Errorf("block %q: %w", b.Name, err)
		}
		end, err := gate.ParseClock(b.End)
		if err != nil {
			return nil, fmt.Errorf("block %q: %w", b.Name, err)
		}
		windows = append(windows, gate.Window{Start: start, End: end, Name: b.Name})
	}
	return windows, nil
}

// StrategyRegistry converts the strategy rows into the typed registry,
// uppercasing names the way the registry expects.
func (c *Config) StrategyRegistry() trade.Strategies {
	reg := trade.Strategies{}
	for name, s := range c.Strategies {
		reg[strings.ToUpper(name)] = trade.StrategyInfo{
			Kind:        trade.StrategyKind(s.Kind),
			DefaultType: strings.ToUpper(s.DefaultType),
			DefaultSide: trade.Side(strings.ToUpper(s.DefaultSide)),
		}
	}
	return reg
}

// Balance returns the starting balance as a decimal. Call after Validate.
func (c *Config) Balance() decimal.Decimal {
	return decimal.RequireFromString(c.StartingBalance)
}

// MaxFraction returns the position-sizing limit. Call after Validate.
func (c *Config) MaxFraction() decimal.Decimal {
	return decimal.RequireFromString(c.Risk.MaxPositionFraction)
}

// Default returns the stock configuration: MES futures and options with
// the standard rate card, the three blackout windows, and the five
// strategies the blotter grew up with.
func Default() *Config {
	return &Config{
		StartingBalance: "10000",
		Costs: map[string]CostConfig{
			"FUTURE": {Commission: "1.10", Exchange: "0.37", Regulatory: "0.00"},
			"OPTION": {Commission: "1.25", Exchange: "0.50", Regulatory: "0.02"},
		},
		Blocks: []BlockConfig{
			{Start: "09:30", End: "09:45", Name: "Market Open"},
			{Start: "12:00", End: "16:00", Name: "Lunch Block"},
			{Start: "18:00", End: "21:15", Name: "Asian Open"},
		},
		Exemptions: []string{"5AM"},
		Strategies: map[string]StrategyConfig{
			"5AM":                {Kind: "single_leg", DefaultType: "FUTURE", DefaultSide: "BUY"},
			"NORMAL":             {Kind: "single_leg"},
			"BULL-PUT":           {Kind: "bull_put_spread"},
			"BEAR-CALL":          {Kind: "bear_call_spread"},
			"BULL-PUT-OVERNIGHT": {Kind: "bull_put_spread"},
		},
		Multipliers: map[string]int{
			"/MES":    5,
			"MES":     5,
			"MES_OPT": 5,
		},
		Paths: PathsConfig{
			Book:        "trades.json",
			Inbox:       "inbox",
			Archive:     "archive",
			Adjustments: "balance_adjustments.json",
			RiskState:   "risk_state.json",
			Timers:      "stopwatches.json",
		},
		Journal: JournalConfig{Backend: "sqlite", Path: "journal.db"},
		Risk: RiskConfig{
			HotHandWins:         4,
			HotHandWindowHours:  24,
			MaxPositionFraction: "0.33",
		},
	}
}
