package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"swingTraderBot/config"
	"swingTraderBot/internal/adapters/binanceclient"
	"swingTraderBot/internal/adapters/logger"
	"swingTraderBot/internal/utils"
)

// Fetches recent bars for one instrument of the universe and dumps them
// to CSV, useful for inspecting what the indicator engine actually sees.
//
// Usage: fetchbars <symbol> [lookback, e.g. 72h]
func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: fetchbars <symbol> [lookback]")
		os.Exit(1)
	}
	symbol := os.Args[1]
	lookback := 72 * time.Hour
	if len(os.Args) > 2 {
		d, err := time.ParseDuration(os.Args[2])
		if err != nil {
			log.Fatalf("FATAL: invalid lookback %q: %v", os.Args[2], err)
		}
		lookback = d
	}

	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err) // Use standard log before logger is ready
	}

	// 2. Initialize Logger
	appLogger := logger.NewStdLogger(cfg.LogLevel)

	// 3. Resolve the instrument from the universe
	instruments, err := config.LoadUniverse(cfg.UniversePath)
	if err != nil {
		appLogger.Error(context.Background(), err, "FATAL: Failed to load instrument universe")
		log.Fatalf("FATAL: Failed to load instrument universe: %v", err)
	}
	var found bool
	var instrument = instruments[0]
	for _, inst := range instruments {
		if inst.Symbol == symbol {
			instrument, found = inst, true
			break
		}
	}
	if !found {
		log.Fatalf("FATAL: symbol %q is not in the universe file %s", symbol, cfg.UniversePath)
	}

	// 4. Initialize Broker Client
	brokerClient, err := binanceclient.New(binanceclient.Config{
		APIKey:         cfg.APIKey,
		SecretKey:      cfg.SecretKey,
		UseTestnet:     cfg.IsTestnet,
		QuoteAsset:     cfg.QuoteAsset,
		RequestTimeout: cfg.RequestTimeout,
		Logger:         appLogger,
	})
	if err != nil {
		appLogger.Error(context.Background(), err, "FATAL: Failed to initialize broker client")
		log.Fatalf("FATAL: Failed to initialize broker client: %v", err)
	}

	end := time.Now()
	start := end.Add(-lookback)

	fmt.Printf("Fetching %s bars for %s from %s to %s...\n", cfg.BarInterval, symbol, start.Format(time.RFC3339), end.Format(time.RFC3339))
	bars, err := brokerClient.GetRecentBars(context.Background(), instrument, cfg.BarInterval, start, end)
	if err != nil {
		appLogger.Error(context.Background(), err, "Error fetching bars")
		log.Fatalf("Error fetching bars: %v", err)
	}
	appLogger.Info(context.Background(), "Fetched bars", map[string]interface{}{"count": len(bars)})

	filename := fmt.Sprintf("data/%s_%s_%s_to_%s.csv", symbol, cfg.BarInterval, start.Format("20060102"), end.Format("20060102"))
	if err := utils.WriteBarsToCSV(symbol, bars, filename); err != nil {
		appLogger.Error(context.Background(), err, "Error writing CSV")
		log.Fatalf("Error writing CSV: %v", err)
	}
	appLogger.Info(context.Background(), "Saved to", map[string]interface{}{"filename": filename})
}
