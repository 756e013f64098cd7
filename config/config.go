// Package config loads the bot configuration from defaults, an optional
// YAML file and environment variables, in that order of precedence.
package config

import (
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/demidenkov/sibyl/internal/domain"
)

// Provider names for the quote source.
const (
	ProviderRates   = "rates"
	ProviderBinance = "binance"
	ProviderBybit   = "bybit"
)

// Defaults. The fee and sizing constants mirror the simulation rules; all
// are plain knobs, none is load-bearing.
const (
	defaultRatesURL     = "https://api.coinmotion.com/rates"
	defaultLLMURL       = "https://api.cerebras.ai/v1/chat/completions"
	defaultLLMModel     = "qwen-3-235b-a22b"
	defaultPollInterval = 30 * time.Second
	defaultHistorySize  = 64
	defaultPromptWindow = 20
	defaultQuoteRetries = 1
	defaultWALDir       = "./wal"
)

// LLM holds the inference endpoint settings. The key comes from the
// environment only, never from the YAML file.
type LLM struct {
	APIURL string
	APIKey string
	Model  string
}

// Config is the resolved bot configuration.
type Config struct {
	Pair     domain.Pair
	Provider string
	// RatesURL is the endpoint of the plain JSON rates API (rates provider).
	RatesURL string
	// QuoteAPIKey is optional; sent as a bearer token by the rates provider.
	QuoteAPIKey  string
	PollInterval time.Duration
	// HistorySize bounds the retained price history ring buffer.
	HistorySize int
	// PromptWindow bounds how many trailing points the model sees.
	PromptWindow int
	// QuoteRetries is how many in-cycle retries follow a failed price fetch.
	QuoteRetries int
	BuyFraction  decimal.Decimal
	FeePercent   decimal.Decimal
	MinNotional  decimal.Decimal
	StartQuote   decimal.Decimal
	StartBase    decimal.Decimal
	LLM          LLM
	WALDir       string
	// WebAddr enables the dashboard when non-empty, e.g. ":8080".
	WebAddr string
}

// configYaml mirrors the YAML file shape; decimals as strings.
type configYaml struct {
	Pair         string        `yaml:"pair,omitempty"`
	Provider     string        `yaml:"provider,omitempty"`
	RatesURL     string        `yaml:"rates_url,omitempty"`
	PollInterval time.Duration `yaml:"poll_interval,omitempty"`
	HistorySize  int           `yaml:"history_size,omitempty"`
	PromptWindow int           `yaml:"prompt_window,omitempty"`
	QuoteRetries *int          `yaml:"quote_retries,omitempty"`
	BuyFraction  string        `yaml:"buy_fraction,omitempty"`
	FeePercent   string        `yaml:"fee_percent,omitempty"`
	MinNotional  string        `yaml:"min_notional,omitempty"`
	StartQuote   string        `yaml:"start_quote,omitempty"`
	StartBase    string        `yaml:"start_base,omitempty"`
	LLMAPIURL    string        `yaml:"llm_api_url,omitempty"`
	LLMModel     string        `yaml:"llm_model,omitempty"`
	WALDir       string        `yaml:"wal_dir,omitempty"`
	WebAddr      string        `yaml:"web_addr,omitempty"`
}

// Get resolves the configuration. path may be empty (no YAML file).
// A missing LLM API key is a fatal configuration error: the caller is
// expected to exit non-zero.
func Get(path string) (Config, error) {
	cfg := Config{
		Pair:         domain.Pair{From: "BTC", To: "EUR"},
		Provider:     ProviderRates,
		RatesURL:     defaultRatesURL,
		PollInterval: defaultPollInterval,
		HistorySize:  defaultHistorySize,
		PromptWindow: defaultPromptWindow,
		QuoteRetries: defaultQuoteRetries,
		BuyFraction:  decimal.NewFromFloat(0.1),
		FeePercent:   decimal.Zero,
		MinNotional:  decimal.NewFromInt(10),
		StartQuote:   decimal.NewFromInt(1200),
		StartBase:    decimal.NewFromFloat(0.3),
		LLM: LLM{
			APIURL: defaultLLMURL,
			Model:  defaultLLMModel,
		},
		WALDir: defaultWALDir,
	}

	if path != "" {
		if err := applyYaml(&cfg, path); err != nil {
			return Config{}, err
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func applyYaml(cfg *Config, path string) error {
	f, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, "read config file %s", path)
	}

	var y configYaml
	if err := yaml.Unmarshal(f, &y); err != nil {
		return errors.Wrapf(err, "parse config file %s", path)
	}

	if y.Pair != "" {
		pair, err := domain.ParsePair(y.Pair)
		if err != nil {
			return errors.Wrap(err, "incorrect 'pair' param in yaml config")
		}
		cfg.Pair = pair
	}
	if y.Provider != "" {
		cfg.Provider = y.Provider
	}
	if y.RatesURL != "" {
		cfg.RatesURL = y.RatesURL
	}
	if y.PollInterval > 0 {
		cfg.PollInterval = y.PollInterval
	}
	if y.HistorySize > 0 {
		cfg.HistorySize = y.HistorySize
	}
	if y.PromptWindow > 0 {
		cfg.PromptWindow = y.PromptWindow
	}
	if y.QuoteRetries != nil {
		cfg.QuoteRetries = *y.QuoteRetries
	}
	if y.LLMAPIURL != "" {
		cfg.LLM.APIURL = y.LLMAPIURL
	}
	if y.LLMModel != "" {
		cfg.LLM.Model = y.LLMModel
	}
	if y.WALDir != "" {
		cfg.WALDir = y.WALDir
	}
	if y.WebAddr != "" {
		cfg.WebAddr = y.WebAddr
	}

	for _, d := range []struct {
		raw  string
		dst  *decimal.Decimal
		name string
	}{
		{y.BuyFraction, &cfg.BuyFraction, "buy_fraction"},
		{y.FeePercent, &cfg.FeePercent, "fee_percent"},
		{y.MinNotional, &cfg.MinNotional, "min_notional"},
		{y.StartQuote, &cfg.StartQuote, "start_quote"},
		{y.StartBase, &cfg.StartBase, "start_base"},
	} {
		if d.raw == "" {
			continue
		}
		v, err := decimal.NewFromString(d.raw)
		if err != nil {
			return errors.Wrapf(err, "incorrect '%s' param in yaml config (must be a decimal)", d.name)
		}
		*d.dst = v
	}

	return nil
}

func applyEnv(cfg *Config) error {
	if v := os.Getenv("LLM_API_KEY"); v != "" {
		cfg.LLM.APIKey = v
	}
	if v := os.Getenv("LLM_API_URL"); v != "" {
		cfg.LLM.APIURL = v
	}
	if v := os.Getenv("LLM_MODEL"); v != "" {
		cfg.LLM.Model = v
	}
	if v := os.Getenv("QUOTE_API_KEY"); v != "" {
		cfg.QuoteAPIKey = v
	}
	if v := os.Getenv("POLL_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return errors.Wrapf(err, "incorrect POLL_INTERVAL %q (expected duration like 30s)", v)
		}
		cfg.PollInterval = d
	}
	if v := os.Getenv("START_QUOTE_BALANCE"); v != "" {
		d, err := decimal.NewFromString(v)
		if err != nil {
			return errors.Wrapf(err, "incorrect START_QUOTE_BALANCE %q", v)
		}
		cfg.StartQuote = d
	}
	if v := os.Getenv("START_BASE_BALANCE"); v != "" {
		d, err := decimal.NewFromString(v)
		if err != nil {
			return errors.Wrapf(err, "incorrect START_BASE_BALANCE %q", v)
		}
		cfg.StartBase = d
	}
	return nil
}

func (c *Config) validate() error {
	if c.LLM.APIKey == "" {
		return errors.New("LLM_API_KEY environment variable must be set")
	}
	switch c.Provider {
	case ProviderRates, ProviderBinance, ProviderBybit:
	default:
		return errors.Errorf("unsupported quote provider %q", c.Provider)
	}
	if c.Provider == ProviderRates && c.RatesURL == "" {
		return errors.New("rates_url must be set for the rates provider")
	}
	if c.PollInterval <= 0 {
		return errors.Errorf("poll interval must be positive, got %s", c.PollInterval)
	}
	if c.QuoteRetries < 0 {
		return errors.Errorf("quote_retries must be non-negative, got %d", c.QuoteRetries)
	}
	if c.PromptWindow <= 0 || c.HistorySize < c.PromptWindow {
		return errors.Errorf("history_size (%d) must cover prompt_window (%d)", c.HistorySize, c.PromptWindow)
	}
	if c.BuyFraction.LessThanOrEqual(decimal.Zero) || c.BuyFraction.GreaterThan(decimal.NewFromInt(1)) {
		return errors.Errorf("buy_fraction must be in (0, 1], got %s", c.BuyFraction.String())
	}
	if c.FeePercent.IsNegative() {
		return errors.Errorf("fee_percent must be non-negative, got %s", c.FeePercent.String())
	}
	if c.StartQuote.IsNegative() || c.StartBase.IsNegative() {
		return errors.New("starting balances must be non-negative")
	}
	return nil
}
