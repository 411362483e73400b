package config

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/ever-flow/BTC-ETH-ma-dashboard/internal/core"
)

type Config struct {
	Analysis  AnalysisConfig  `mapstructure:"analysis" json:"analysis"`
	Provider  ProviderConfig  `mapstructure:"provider" json:"provider"`
	Search    SearchConfig    `mapstructure:"search" json:"search"`
	Scoring   ScoringConfig   `mapstructure:"scoring" json:"scoring"`
	Signal    SignalConfig    `mapstructure:"signal" json:"signal"`
	Rebalance RebalanceConfig `mapstructure:"rebalance" json:"rebalance"`
	Storage   StorageConfig   `mapstructure:"storage" json:"storage"`
	Metrics   MetricsConfig   `mapstructure:"metrics" json:"metrics"`
}

type AnalysisConfig struct {
	BTCSymbol string `mapstructure:"btc_symbol" json:"btc_symbol"`
	ETHSymbol string `mapstructure:"eth_symbol" json:"eth_symbol"`
	StartDate string `mapstructure:"start_date" json:"start_date"`
	Workers   int    `mapstructure:"workers" json:"workers"`
}

type ProviderConfig struct {
	Order           []string      `mapstructure:"order" json:"order"`
	Timeout         time.Duration `mapstructure:"timeout" json:"timeout"`
	Retries         int           `mapstructure:"retries" json:"retries"`
	Backoff         time.Duration `mapstructure:"backoff" json:"backoff"`
	CoinGeckoAPIKey string        `mapstructure:"coingecko_api_key" json:"-"`
}

type SearchConfig struct {
	MinWindow int    `mapstructure:"min_window" json:"min_window"`
	MaxWindow int    `mapstructure:"max_window" json:"max_window"`
	Step      int    `mapstructure:"step" json:"step"`
	MAType    string `mapstructure:"ma_type" json:"ma_type"`
}

type ScoringConfig struct {
	Subperiods       []int   `mapstructure:"subperiods" json:"subperiods"`
	DecayRate        float64 `mapstructure:"decay_rate" json:"decay_rate"`
	VolReference     float64 `mapstructure:"vol_reference" json:"vol_reference"`
	BaseReturnWeight float64 `mapstructure:"base_return_weight" json:"base_return_weight"`
	RankWeightSpan   float64 `mapstructure:"rank_weight_span" json:"rank_weight_span"`
}

type SignalConfig struct {
	Buffer       float64 `mapstructure:"buffer" json:"buffer"`
	StrengthSpan float64 `mapstructure:"strength_span" json:"strength_span"`
}

type RebalanceConfig struct {
	Cadence string `mapstructure:"cadence" json:"cadence"`
}

type StorageConfig struct {
	Type     string         `mapstructure:"type" json:"type"`
	Path     string         `mapstructure:"path" json:"path"`
	S3       S3Config       `mapstructure:"s3" json:"s3"`
	Postgres PostgresConfig `mapstructure:"postgres" json:"postgres"`
}

type S3Config struct {
	Bucket    string `mapstructure:"bucket" json:"bucket"`
	Endpoint  string `mapstructure:"endpoint" json:"endpoint"`
	Region    string `mapstructure:"region" json:"region"`
	AccessKey string `mapstructure:"access_key" json:"-"`
	SecretKey string `mapstructure:"secret_key" json:"-"`
	Prefix    string `mapstructure:"prefix" json:"prefix"`
}

type PostgresConfig struct {
	DSN      string `mapstructure:"dsn" json:"-"`
	MaxConns int    `mapstructure:"max_conns" json:"max_conns"`
}

// MetricsConfig holds Pushgateway settings for one-shot runs.
type MetricsConfig struct {
	Enabled     bool   `mapstructure:"enabled" json:"enabled"`
	Pushgateway string `mapstructure:"pushgateway" json:"pushgateway"`
	Job         string `mapstructure:"job" json:"job"`
}

// Load reads configuration from file
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	// Support environment variable overrides
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	// Expand environment variables in string values
	for _, key := range v.AllKeys() {
		val := v.GetString(key)
		if strings.HasPrefix(val, "${") && strings.HasSuffix(val, "}") {
			envKey := strings.TrimSuffix(strings.TrimPrefix(val, "${"), "}")
			v.Set(key, os.Getenv(envKey))
		}
	}

	cfg := Defaults()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return cfg, nil
}

// Defaults returns a config with sensible defaults
func Defaults() *Config {
	return &Config{
		Analysis: AnalysisConfig{
			BTCSymbol: "BTC-USD",
			ETHSymbol: "ETH-USD",
			StartDate: "2018-01-01",
			Workers:   4,
		},
		Provider: ProviderConfig{
			Order:   []string{"yahoo", "binance", "coingecko"},
			Timeout: 30 * time.Second,
			Retries: 3,
			Backoff: 2 * time.Second,
		},
		Search: SearchConfig{
			MinWindow: 5,
			MaxWindow: 100,
			Step:      1,
			MAType:    "sma",
		},
		Scoring: ScoringConfig{
			Subperiods:       []int{90, 180, 365},
			DecayRate:        1.0,
			VolReference:     0.80,
			BaseReturnWeight: 0.35,
			RankWeightSpan:   0.30,
		},
		Signal: SignalConfig{
			Buffer:       0.02,
			StrengthSpan: 0.05,
		},
		Rebalance: RebalanceConfig{
			Cadence: "daily",
		},
		Storage: StorageConfig{
			Type: "localfs",
			Path: "data",
		},
		Metrics: MetricsConfig{
			Enabled: false,
			Job:     "ma-analyzer",
		},
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if _, err := time.Parse("2006-01-02", c.Analysis.StartDate); err != nil {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("start_date must be YYYY-MM-DD, got %q", c.Analysis.StartDate))
	}
	if c.Analysis.Workers < 1 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("workers must be at least 1, got %d", c.Analysis.Workers))
	}

	if c.Search.MinWindow < 2 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("min_window must be at least 2, got %d", c.Search.MinWindow))
	}
	if c.Search.MinWindow > c.Search.MaxWindow {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("min_window %d exceeds max_window %d", c.Search.MinWindow, c.Search.MaxWindow))
	}
	if c.Search.Step < 1 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("step must be at least 1, got %d", c.Search.Step))
	}
	switch c.Search.MAType {
	case "sma", "ema":
	default:
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("ma_type must be sma or ema, got %q", c.Search.MAType))
	}

	if len(c.Scoring.Subperiods) == 0 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("subperiods cannot be empty"))
	}
	for i, days := range c.Scoring.Subperiods {
		if days < 1 {
			return core.WrapError(core.ErrConfigInvalid,
				fmt.Errorf("subperiods must be positive, got %d", days))
		}
		if i > 0 && days <= c.Scoring.Subperiods[i-1] {
			return core.WrapError(core.ErrConfigInvalid,
				fmt.Errorf("subperiods must be ascending, got %v", c.Scoring.Subperiods))
		}
	}

	if c.Signal.Buffer < 0 || c.Signal.Buffer > 0.2 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("signal buffer must be between 0 and 0.2, got %f", c.Signal.Buffer))
	}

	switch c.Rebalance.Cadence {
	case "daily", "monthly":
	default:
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("cadence must be daily or monthly, got %q", c.Rebalance.Cadence))
	}

	switch c.Storage.Type {
	case "localfs", "memory":
	case "s3":
		if c.Storage.S3.Bucket == "" {
			return core.WrapError(core.ErrConfigMissing,
				fmt.Errorf("s3 bucket required when storage type is s3"))
		}
	case "postgres":
		if c.Storage.Postgres.DSN == "" {
			return core.WrapError(core.ErrConfigMissing,
				fmt.Errorf("postgres dsn required when storage type is postgres"))
		}
	default:
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("unknown storage type %q", c.Storage.Type))
	}

	return nil
}

// StartTime parses the configured analysis start date. Call Validate first.
func (c *Config) StartTime() time.Time {
	t, _ := time.Parse("2006-01-02", c.Analysis.StartDate)
	return t
}

// Hash returns a short digest of the analysis-relevant configuration.
// Secrets carry `json:"-"` tags and never enter the digest.
func (c *Config) Hash() string {
	raw, err := json.Marshal(c)
	if err != nil {
		return "unknown"
	}
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:])[:12]
}
