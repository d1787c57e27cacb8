// Package conf loads the bot configuration: a JSON file for the strategy and
// service settings, and the environment (optionally a .env file) for the
// venue credentials.
package conf

import (
	"encoding/json"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"github.com/aipglabs/gridbot/grid"
)

type ExchangeConf struct {
	Host   string `json:"host"`
	Key    string `json:"key"`
	Secret string `json:"secret"`
}

type MongoConf struct {
	URI      string `json:"uri"`
	Database string `json:"database"`
}

type ServerConf struct {
	Addr string `json:"addr"`
}

type StrategyConf struct {
	Symbol          string  `json:"symbol"`
	Positions       int     `json:"positions"`
	TotalAmount     float64 `json:"totalAmount"`
	MinDistance     float64 `json:"minDistance"`
	MaxDistance     float64 `json:"maxDistance"`
	Threshold       float64 `json:"threshold"`
	IntervalMinutes int     `json:"intervalMinutes"`
}

type Config struct {
	Exchange ExchangeConf `json:"exchange"`
	Mongo    MongoConf    `json:"mongo"`
	Server   ServerConf   `json:"server"`
	Strategy StrategyConf `json:"strategy"`
}

// ParseJsonConfig reads the JSON config file into cfg, then fills gaps with
// defaults and environment credentials.
func ParseJsonConfig(filename string, cfg *Config) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return err
	}
	cfg.applyDefaults()
	cfg.applyEnv()
	return nil
}

func (c *Config) applyDefaults() {
	s := &c.Strategy
	if s.Symbol == "" {
		s.Symbol = "aipg_usdt"
	}
	if s.Positions == 0 {
		s.Positions = 20
	}
	if s.TotalAmount == 0 {
		s.TotalAmount = 200
	}
	if s.MinDistance == 0 {
		s.MinDistance = 0.5
	}
	if s.MaxDistance == 0 {
		s.MaxDistance = 10
	}
	if s.Threshold == 0 {
		s.Threshold = 0.02
	}
	if s.IntervalMinutes == 0 {
		s.IntervalMinutes = 30
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8000"
	}
}

// applyEnv lets EXCHANGE_API_KEY / EXCHANGE_SECRET_KEY override the file, so
// credentials can stay out of the config entirely. A .env file is honored
// when present.
func (c *Config) applyEnv() {
	_ = godotenv.Load()
	if key := os.Getenv("EXCHANGE_API_KEY"); key != "" {
		c.Exchange.Key = key
	}
	if secret := os.Getenv("EXCHANGE_SECRET_KEY"); secret != "" {
		c.Exchange.Secret = secret
	}
}

// Symbol returns the case-normalized trading pair.
func (s StrategyConf) SymbolNormalized() string {
	return strings.ToLower(s.Symbol)
}

// GridParams converts the strategy settings to planner parameters.
func (s StrategyConf) GridParams() grid.Params {
	return grid.Params{
		Positions:   s.Positions,
		TotalAmount: decimal.NewFromFloat(s.TotalAmount),
		MinDistance: decimal.NewFromFloat(s.MinDistance),
		MaxDistance: decimal.NewFromFloat(s.MaxDistance),
	}
}

func (s StrategyConf) Interval() time.Duration {
	return time.Duration(s.IntervalMinutes) * time.Minute
}

func (s StrategyConf) ThresholdDecimal() decimal.Decimal {
	return decimal.NewFromFloat(s.Threshold)
}
