// Package setup provides the interactive first-run wizard. It writes a
// config.gen.yaml with the trading settings and a .env with the LLM key.
package setup

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/demidenkov/sibyl/internal/domain"
)

const (
	// GeneratedConfigPath is where the wizard writes the YAML config.
	GeneratedConfigPath = "config.gen.yaml"
	envPath             = ".env"
)

var (
	subtle    = lipgloss.AdaptiveColor{Light: "#D9DCCF", Dark: "#383838"}
	highlight = lipgloss.AdaptiveColor{Light: "#874BFD", Dark: "#7D56F4"}
	special   = lipgloss.AdaptiveColor{Light: "#43BF6D", Dark: "#73F59F"}

	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Background(highlight).
			Padding(1, 2).
			Bold(true).
			MarginBottom(1)

	stepStyle = lipgloss.NewStyle().
			Foreground(special).
			Bold(true).
			MarginTop(1)
)

type generatedConfig struct {
	Pair         string        `yaml:"pair"`
	Provider     string        `yaml:"provider"`
	PollInterval time.Duration `yaml:"poll_interval"`
	StartQuote   string        `yaml:"start_quote"`
	StartBase    string        `yaml:"start_base"`
	LLMAPIURL    string        `yaml:"llm_api_url"`
	LLMModel     string        `yaml:"llm_model"`
	WebAddr      string        `yaml:"web_addr,omitempty"`
}

func header(step string) {
	fmt.Print("\033[H\033[2J")
	fmt.Println(headerStyle.Render("SIBYL CONFIG WIZARD"))
	fmt.Println(stepStyle.Render(step))
}

// RunTUI launches the terminal configuration wizard.
func RunTUI() error {
	var (
		provider        string
		pair            string
		pollIntervalStr string
		startQuote      string
		startBase       string
		apiURL          string
		apiKey          string
		model           string
		webAddr         string
		confirm         bool
	)

	// defaults
	pair = "BTC_EUR"
	pollIntervalStr = "30s"
	startQuote = "1200"
	startBase = "0.3"
	apiURL = "https://api.cerebras.ai/v1/chat/completions"
	model = "qwen-3-235b-a22b"

	header("STEP 1: QUOTE PROVIDER")
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Where do prices come from?").
				Options(
					huh.NewOption("Plain rates API (Coinmotion-style)", "rates"),
					huh.NewOption("Binance spot tickers", "binance"),
					huh.NewOption("Bybit spot tickers", "bybit"),
				).
				Value(&provider),
		),
	).Run()
	if err != nil {
		return err
	}

	header("STEP 2: ASSET")
	err = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Trading Pair").
				Description("BASE_QUOTE, e.g. BTC_EUR").
				Value(&pair).
				Validate(func(s string) error {
					_, err := domain.ParsePair(strings.ToUpper(strings.TrimSpace(s)))
					return err
				}),
		),
	).Run()
	if err != nil {
		return err
	}

	header("STEP 3: TIMING")
	err = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Poll Interval").
				Description("Duration string (e.g. 30s, 1m)").
				Value(&pollIntervalStr).
				Validate(func(s string) error {
					d, err := time.ParseDuration(s)
					if err != nil {
						return err
					}
					if d <= 0 {
						return fmt.Errorf("must be positive")
					}
					return nil
				}),
		),
	).Run()
	if err != nil {
		return err
	}

	header("STEP 4: STARTING BALANCES")
	err = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Quote balance").
				Description("Simulated cash to start with (e.g. 1200)").
				Value(&startQuote).
				Validate(validateBalance),
			huh.NewInput().
				Title("Base balance").
				Description("Simulated asset to start with (e.g. 0.3)").
				Value(&startBase).
				Validate(validateBalance),
		),
	).Run()
	if err != nil {
		return err
	}

	header("STEP 5: LLM SETTINGS")
	err = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("LLM API URL").
				Value(&apiURL),
			huh.NewInput().
				Title("LLM API Key").
				Value(&apiKey).
				EchoMode(huh.EchoModePassword).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("key cannot be empty")
					}
					return nil
				}),
			huh.NewInput().
				Title("Model Name").
				Value(&model),
			huh.NewInput().
				Title("Dashboard Address").
				Description("e.g. :8080, empty to disable").
				Value(&webAddr),
		),
	).Run()
	if err != nil {
		return err
	}

	header("FINAL CONFIRMATION")
	summary := fmt.Sprintf(
		"Provider: %s\nPair: %s\nInterval: %s\nStart: %s quote / %s base\nModel: %s\n",
		provider, pair, pollIntervalStr, startQuote, startBase, model,
	)
	fmt.Println(lipgloss.NewStyle().Border(lipgloss.NormalBorder()).Padding(1).Render(summary))

	err = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Save Configuration?").
				Affirmative("Yes, save and start").
				Negative("No, exit").
				Value(&confirm),
		),
	).Run()
	if err != nil {
		return err
	}
	if !confirm {
		return fmt.Errorf("setup cancelled by user")
	}

	pollInterval, _ := time.ParseDuration(pollIntervalStr)
	cfg := generatedConfig{
		Pair:         strings.ToUpper(strings.TrimSpace(pair)),
		Provider:     provider,
		PollInterval: pollInterval,
		StartQuote:   startQuote,
		StartBase:    startBase,
		LLMAPIURL:    apiURL,
		LLMModel:     model,
		WebAddr:      strings.TrimSpace(webAddr),
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to generate yaml: %w", err)
	}
	if err := os.WriteFile(GeneratedConfigPath, data, 0644); err != nil {
		return fmt.Errorf("failed to save config file: %w", err)
	}

	// the key never goes into the yaml file
	env := fmt.Sprintf("LLM_API_KEY=%s\n", apiKey)
	if err := os.WriteFile(envPath, []byte(env), 0600); err != nil {
		return fmt.Errorf("failed to save %s: %w", envPath, err)
	}

	fmt.Println(lipgloss.NewStyle().Foreground(special).Render(
		fmt.Sprintf("\n✓ Configuration saved to %s (key in %s)\nStarting bot...", GeneratedConfigPath, envPath)))
	time.Sleep(1500 * time.Millisecond)
	return nil
}

func validateBalance(s string) error {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return fmt.Errorf("must be a valid number")
	}
	if d.IsNegative() {
		return fmt.Errorf("must be non-negative")
	}
	return nil
}
