package main

import (
	"context"
	"log" // Use standard log only for initial fatal errors before logger is set up
	"net/http"

	"swingTraderBot/config"
	"swingTraderBot/internal/adapters/binanceclient"
	"swingTraderBot/internal/adapters/logger"
	"swingTraderBot/internal/adapters/sqlite"
	"swingTraderBot/internal/adapters/telegram"
	"swingTraderBot/internal/app"
	"swingTraderBot/internal/decider"
	"swingTraderBot/internal/indicators"
	"swingTraderBot/internal/ledger"
	"swingTraderBot/internal/metrics"
	"swingTraderBot/internal/ports"
	"swingTraderBot/internal/risk"
)

// noopNotifier is used when chat notifications are disabled.
type noopNotifier struct{}

func (noopNotifier) Notify(ctx context.Context, message string) {}

func main() {
	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err) // Use standard log before logger is ready
	}

	// 2. Initialize Logger
	appLogger := logger.NewStdLogger(cfg.LogLevel)
	appLogger.Info(context.Background(), "Logger initialized", map[string]interface{}{"level": cfg.LogLevel.String()})

	// 3. Initialize Repository (Database Adapter)
	repo, err := sqlite.NewRepository(sqlite.Config{
		DBPath: cfg.DBPath,
		Logger: appLogger,
	})
	if err != nil {
		appLogger.Error(context.Background(), err, "FATAL: Failed to initialize database repository")
		log.Fatalf("FATAL: Failed to initialize database repository: %v", err) // Also log to stderr
	}
	defer func() {
		if err := repo.Close(); err != nil {
			appLogger.Error(context.Background(), err, "Error closing database repository")
		}
	}()
	appLogger.Info(context.Background(), "Database repository initialized")

	// 4. Load the instrument universe
	instruments, err := config.LoadUniverse(cfg.UniversePath)
	if err != nil {
		appLogger.Error(context.Background(), err, "FATAL: Failed to load instrument universe")
		log.Fatalf("FATAL: Failed to load instrument universe: %v", err)
	}
	appLogger.Info(context.Background(), "Instrument universe loaded", map[string]interface{}{"instruments": len(instruments)})

	// 5. Initialize Broker Client (Binance Adapter)
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
	appLogger.Info(context.Background(), "Broker client initialized")

	// 6. Initialize Notifier
	var notifier ports.Notifier = noopNotifier{}
	if cfg.NotifyEnabled {
		notifier, err = telegram.New(telegram.Config{
			Token:   cfg.TelegramToken,
			ChatID:  cfg.TelegramChatID,
			Timeout: cfg.RequestTimeout,
			Logger:  appLogger,
		})
		if err != nil {
			appLogger.Error(context.Background(), err, "FATAL: Failed to initialize Telegram notifier")
			log.Fatalf("FATAL: Failed to initialize Telegram notifier: %v", err)
		}
		appLogger.Info(context.Background(), "Telegram notifier initialized")
	}

	// 7. Initialize Domain Components
	posLedger, err := ledger.New(repo, appLogger, cfg.MaxPositions)
	if err != nil {
		appLogger.Error(context.Background(), err, "FATAL: Failed to initialize position ledger")
		log.Fatalf("FATAL: Failed to initialize position ledger: %v", err)
	}
	budget := risk.NewDailyBudget(risk.BudgetConfig{LossLimitPct: cfg.LossLimitPct}, repo, appLogger)
	engine, err := indicators.NewEngine(indicators.Config{
		ATRPeriod: cfg.ATRPeriod,
		RSIPeriod: cfg.RSIPeriod,
	})
	if err != nil {
		appLogger.Error(context.Background(), err, "FATAL: Failed to initialize indicator engine")
		log.Fatalf("FATAL: Failed to initialize indicator engine: %v", err)
	}
	riskModel, err := risk.NewModel(risk.ModelConfig{
		StopLossCoef:   cfg.StopLossCoef,
		TakeProfitCoef: cfg.TakeProfitCoef,
	})
	if err != nil {
		appLogger.Error(context.Background(), err, "FATAL: Failed to initialize risk model")
		log.Fatalf("FATAL: Failed to initialize risk model: %v", err)
	}
	dec, err := decider.New(decider.Config{
		RSIOversold:             cfg.RSIOversold,
		RSIOverbought:           cfg.RSIOverbought,
		TakeProfitTriggerFactor: cfg.TakeProfitTriggerFactor,
	}, appLogger)
	if err != nil {
		appLogger.Error(context.Background(), err, "FATAL: Failed to initialize decider")
		log.Fatalf("FATAL: Failed to initialize decider: %v", err)
	}

	// 8. Expose Prometheus metrics
	if cfg.MetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", metrics.Handler())
		go func() {
			appLogger.Info(context.Background(), "Metrics endpoint listening", map[string]interface{}{"addr": cfg.MetricsAddr})
			if err := http.ListenAndServe(cfg.MetricsAddr, mux); err != nil {
				appLogger.Error(context.Background(), err, "Metrics endpoint stopped")
			}
		}()
	}

	// 9. Initialize Application Service
	tradingService, err := app.NewTradingService(
		cfg,
		appLogger,
		brokerClient,
		notifier,
		repo,
		posLedger,
		budget,
		engine,
		riskModel,
		dec,
		instruments,
	)
	if err != nil {
		appLogger.Error(context.Background(), err, "FATAL: Failed to initialize trading service")
		log.Fatalf("FATAL: Failed to initialize trading service: %v", err)
	}
	appLogger.Info(context.Background(), "Trading service initialized")

	// 10. Start the Service
	// Use context.Background() as the base context for the application run
	if err := tradingService.Start(context.Background()); err != nil {
		appLogger.Error(context.Background(), err, "Trading service exited with error")
		log.Fatalf("FATAL: Trading service exited with error: %v", err)
	}

	appLogger.Info(context.Background(), "Application finished gracefully.")
}
