// Command sibyl runs a simulated crypto trading loop advised by an LLM.
// Every poll interval it fetches the current price, asks the model to
// Buy, Sell or Hold, applies the decision to an in-memory account and
// reports the result.
//
// Usage:
//
//	sibyl --config config.yaml
//	sibyl --setup
//
// Required environment variables:
//
//	LLM_API_KEY  key for the OpenAI-compatible inference endpoint
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/adshao/go-binance/v2"
	"github.com/hirokisan/bybit/v2"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/demidenkov/sibyl/config"
	"github.com/demidenkov/sibyl/internal"
	"github.com/demidenkov/sibyl/internal/clients"
	"github.com/demidenkov/sibyl/internal/domain"
	"github.com/demidenkov/sibyl/internal/ledger"
	"github.com/demidenkov/sibyl/internal/services/advisor"
	"github.com/demidenkov/sibyl/internal/services/pricer"
	"github.com/demidenkov/sibyl/internal/setup"
	"github.com/demidenkov/sibyl/internal/storage/balancesnapshots"
	"github.com/demidenkov/sibyl/internal/storage/decisions"
	"github.com/demidenkov/sibyl/internal/storage/trades"
	"github.com/demidenkov/sibyl/internal/web"
)

func main() {
	_ = godotenv.Load()

	flags := config.ParseFlags()

	if flags.Setup {
		if err := setup.RunTUI(); err != nil {
			log.Fatal(err)
		}
		if flags.ConfigPath == "" {
			flags.ConfigPath = setup.GeneratedConfigPath
		}
		// pick up the key the wizard just wrote
		_ = godotenv.Overload()
	}

	cfg, err := config.Get(flags.ConfigPath)
	if err != nil {
		log.Fatal(err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	quotes := buildPricer(cfg)
	llm := clients.NewOpenAICompatibleClient(cfg.LLM.APIURL, cfg.LLM.APIKey, cfg.LLM.Model)
	adv := advisor.New(cfg.Pair, llm, cfg.PromptWindow, logger)

	decisionStore, err := decisions.NewWALStore(filepath.Join(cfg.WALDir, "decisions"))
	if err != nil {
		logger.Fatal("failed to open decision store", zap.Error(err))
	}
	defer decisionStore.Close()

	snapshotStore, err := balancesnapshots.NewWALStore(filepath.Join(cfg.WALDir, "snapshots"))
	if err != nil {
		logger.Fatal("failed to open snapshot store", zap.Error(err))
	}
	defer snapshotStore.Close()

	tradeStore, err := trades.NewWALStore(filepath.Join(cfg.WALDir, "trades"))
	if err != nil {
		logger.Fatal("failed to open trade store", zap.Error(err))
	}
	defer tradeStore.Close()

	book, err := ledger.New(cfg.Pair, domain.Account{
		Quote: cfg.StartQuote,
		Base:  cfg.StartBase,
	}, ledger.Params{
		BuyFraction: cfg.BuyFraction,
		FeePercent:  cfg.FeePercent,
		MinNotional: cfg.MinNotional,
	}, tradeStore, logger)
	if err != nil {
		logger.Fatal("failed to create ledger", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.WebAddr != "" {
		server := web.NewServer(cfg.WebAddr, snapshotStore, decisionStore, tradeStore, logger)
		go func() {
			if err := server.Start(ctx); err != nil {
				logger.Error("dashboard server stopped", zap.Error(err))
			}
		}()
		logger.Info("dashboard listening", zap.String("addr", cfg.WebAddr))
	}

	bot := internal.NewTradingBot(cfg, quotes, adv, book, decisionStore, snapshotStore, logger)
	if err := bot.Run(ctx); err != nil {
		logger.Fatal("trading loop failed", zap.Error(err))
	}
}

func buildPricer(cfg config.Config) internal.Pricer {
	switch cfg.Provider {
	case config.ProviderBinance:
		// public market data needs no credentials
		return pricer.NewBinancePricer(binance.NewClient("", ""))
	case config.ProviderBybit:
		return pricer.NewBybitPricer(bybit.NewClient())
	default:
		return pricer.NewRatesPricer(cfg.RatesURL, cfg.QuoteAPIKey)
	}
}
