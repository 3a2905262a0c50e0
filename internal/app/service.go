package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/oklog/ulid/v2"

	"swingTraderBot/config"
	"swingTraderBot/internal/decider"
	"swingTraderBot/internal/domain"
	"swingTraderBot/internal/indicators"
	"swingTraderBot/internal/ledger"
	"swingTraderBot/internal/metrics"
	"swingTraderBot/internal/ports"
	"swingTraderBot/internal/risk"
)

// TradingService orchestrates the decide-then-execute loop. Cycles run
// sequentially on a fixed interval; within a cycle every instrument is
// evaluated in isolation, so one instrument's failure never aborts the
// sweep. Position and budget state is mutated only after a confirmed
// fill, and only through the Ledger and DailyBudget APIs.
type TradingService struct {
	cfg         *config.Config
	logger      ports.Logger
	broker      ports.BrokerClient
	notifier    ports.Notifier
	txLog       ports.TransactionLog
	ledger      *ledger.Ledger
	budget      *risk.DailyBudget
	engine      *indicators.Engine
	riskModel   *risk.Model
	decider     *decider.Decider
	instruments []domain.Instrument
}

// NewTradingService creates a new application service instance.
func NewTradingService(
	cfg *config.Config,
	logger ports.Logger,
	broker ports.BrokerClient,
	notifier ports.Notifier,
	txLog ports.TransactionLog,
	posLedger *ledger.Ledger,
	budget *risk.DailyBudget,
	engine *indicators.Engine,
	riskModel *risk.Model,
	dec *decider.Decider,
	instruments []domain.Instrument,
) (*TradingService, error) {

	// Validate dependencies
	if cfg == nil || logger == nil || broker == nil || notifier == nil || txLog == nil ||
		posLedger == nil || budget == nil || engine == nil || riskModel == nil || dec == nil {
		return nil, fmt.Errorf("missing required dependencies for TradingService")
	}
	if len(instruments) == 0 {
		return nil, fmt.Errorf("instrument universe must not be empty")
	}
	if cfg.TargetNotional <= 0 {
		return nil, fmt.Errorf("configuration TargetNotional must be positive")
	}
	if cfg.CycleInterval <= 0 {
		return nil, fmt.Errorf("configuration CycleInterval must be positive")
	}

	return &TradingService{
		cfg:         cfg,
		logger:      logger,
		broker:      broker,
		notifier:    notifier,
		txLog:       txLog,
		ledger:      posLedger,
		budget:      budget,
		engine:      engine,
		riskModel:   riskModel,
		decider:     dec,
		instruments: instruments,
	}, nil
}

// Start reloads durable state and runs the cycle loop until the context
// is cancelled or a shutdown signal arrives. A stop signal only prevents
// the next cycle from starting; the in-flight sweep always finishes, so
// the signal must not cancel the context the sweep is running on.
func (s *TradingService) Start(ctx context.Context) error {
	s.logger.Info(ctx, "Starting Trading Service...")

	// Handle graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	stopCh := make(chan struct{})
	go func() {
		select {
		case sig := <-sigCh:
			s.logger.Info(ctx, "Received shutdown signal, stopping after the current sweep", map[string]interface{}{"signal": sig.String()})
			close(stopCh)
		case <-ctx.Done():
		}
	}()

	// --- Initialization Steps ---
	// 1. Reload the position ledger. Trading must not proceed on an
	// unreadable store: the capacity and one-position-per-instrument
	// invariants cannot be guaranteed otherwise.
	if err := s.ledger.Load(ctx); err != nil {
		s.logger.Error(ctx, err, "Failed to load position ledger")
		return fmt.Errorf("failed to load position ledger: %w", err)
	}

	// 2. Restore the daily budget snapshot.
	if err := s.budget.Load(ctx, time.Now()); err != nil {
		s.logger.Error(ctx, err, "Failed to load daily budget")
		return fmt.Errorf("failed to load daily budget: %w", err)
	}

	s.logger.Info(ctx, "Initial state synchronized", map[string]interface{}{
		"openPositions":  s.ledger.Count(),
		"dailyProfitPct": s.budget.ProfitPct(),
		"instruments":    len(s.instruments),
		"cycleInterval":  s.cfg.CycleInterval.String(),
	})

	// --- Main Loop ---
	ticker := time.NewTicker(s.cfg.CycleInterval)
	defer ticker.Stop()

	s.runCycle(ctx) // first sweep immediately

	for {
		select {
		case <-ctx.Done():
			s.logger.Info(ctx, "Trading Service stopped.")
			return nil
		case <-stopCh:
			s.logger.Info(ctx, "Trading Service stopped.")
			return nil
		case <-ticker.C:
			s.runCycle(ctx)
		}
	}
}

// runCycle performs one full sweep over the instrument universe.
func (s *TradingService) runCycle(ctx context.Context) {
	cycleStart := time.Now()

	// The day rollover is evaluated exactly once per cycle, before any
	// decision consults the budget.
	s.budget.Rollover(ctx, cycleStart)

	for _, instrument := range s.instruments {
		if ctx.Err() != nil {
			s.logger.Info(ctx, "Sweep interrupted by shutdown", map[string]interface{}{"instrument": instrument.Symbol})
			return
		}
		if err := s.evaluateInstrument(ctx, instrument); err != nil {
			// Per-instrument errors are isolated: log and move on. The
			// next cycle re-decides from scratch.
			metrics.SkippedSymbols.Inc()
			s.logger.Warn(ctx, "Instrument skipped this cycle", map[string]interface{}{
				"instrument": instrument.Symbol,
				"reason":     err.Error(),
			})
		}
	}

	metrics.CyclesCompleted.Inc()
	metrics.OpenPositions.Set(float64(s.ledger.Count()))
	metrics.DailyProfitPct.Set(s.budget.ProfitPct())
	s.logger.Debug(ctx, "Cycle completed", map[string]interface{}{
		"elapsed":       time.Since(cycleStart).String(),
		"openPositions": s.ledger.Count(),
	})
}

// evaluateInstrument runs the full pipeline for one instrument: fetch
// bars, compute indicators, decide, execute.
func (s *TradingService) evaluateInstrument(ctx context.Context, instrument domain.Instrument) error {
	to := time.Now()
	from := to.Add(-s.cfg.BarLookback)
	bars, err := s.broker.GetRecentBars(ctx, instrument, s.cfg.BarInterval, from, to)
	if err != nil {
		return fmt.Errorf("failed to fetch bars: %w", err)
	}

	snapshot, err := s.engine.Compute(bars)
	if err != nil {
		if errors.Is(err, ports.ErrInsufficientData) {
			// Not an error condition: the instrument simply holds.
			s.logger.Debug(ctx, "Holding on insufficient data", map[string]interface{}{
				"instrument": instrument.Symbol,
				"bars":       len(bars),
				"required":   s.engine.RequiredDataPoints(),
			})
			return nil
		}
		return fmt.Errorf("indicator computation failed: %w", err)
	}

	currentPrice := bars[len(bars)-1].Close
	var position *domain.Position
	if held, ok := s.ledger.Get(instrument.Symbol); ok {
		position = &held
	}

	action := s.decider.Decide(ctx, decider.Input{
		Snapshot:        snapshot,
		CurrentPrice:    currentPrice,
		Position:        position,
		UnderCapacity:   s.ledger.UnderCapacity(),
		BudgetExhausted: s.budget.Exhausted(),
	})
	metrics.Decisions.WithLabelValues(string(action)).Inc()

	switch action {
	case domain.ActionOpen:
		return s.openPosition(ctx, instrument, snapshot, currentPrice)
	case domain.ActionClose:
		return s.closePosition(ctx, instrument, *position, currentPrice)
	default:
		return nil
	}
}

// openPosition submits a Buy intent and, on a confirmed fill, records
// the new position in the ledger and the transaction log. A failed or
// empty execution leaves all state untouched; there is no retry within
// the cycle.
func (s *TradingService) openPosition(ctx context.Context, instrument domain.Instrument, snapshot indicators.Snapshot, currentPrice float64) error {
	op := "openPosition"

	// Protective levels must be computable before any money moves.
	levels, err := s.riskModel.Levels(currentPrice, snapshot.ATR)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	cash, err := s.broker.GetAvailableCash(ctx)
	if err != nil {
		metrics.ExecutionErrors.Inc()
		return fmt.Errorf("%s: failed to check balance: %w", op, err)
	}
	if cash < s.cfg.TargetNotional {
		return fmt.Errorf("%s: %w: available %.2f, need %.2f", op, ports.ErrInsufficientFunds, cash, s.cfg.TargetNotional)
	}

	lots := int(s.cfg.TargetNotional / (float64(instrument.LotSize) * currentPrice))
	if lots <= 0 {
		return fmt.Errorf("%s: %w: target notional %.2f buys no lots at price %.2f", op, ports.ErrInsufficientFunds, s.cfg.TargetNotional, currentPrice)
	}

	intent := domain.OrderIntent{
		Symbol:    instrument.Symbol,
		BrokerID:  instrument.BrokerID,
		Direction: domain.Buy,
		Quantity:  lots,
		LotSize:   instrument.LotSize,
		ClientID:  ulid.Make().String(),
	}
	s.logger.Info(ctx, op+": submitting order", map[string]interface{}{
		"instrument": instrument.Symbol,
		"lots":       lots,
		"price":      currentPrice,
		"clientID":   intent.ClientID,
	})

	result, err := s.broker.SubmitOrder(ctx, intent)
	if err != nil {
		metrics.ExecutionErrors.Inc()
		return fmt.Errorf("%s: %w", op, err)
	}
	if result.FilledQuantity <= 0 {
		metrics.ExecutionErrors.Inc()
		return fmt.Errorf("%s: %w: order %s filled nothing", op, ports.ErrExecutionFailed, intent.ClientID)
	}

	fillPrice := result.FillPrice
	if fillPrice <= 0 {
		s.logger.Warn(ctx, op+": fill price missing, using observed price", map[string]interface{}{
			"clientID":      intent.ClientID,
			"fallbackPrice": currentPrice,
		})
		fillPrice = currentPrice
	}

	// The fill is real; recording it must survive cancellation of the
	// run context, otherwise the broker holding ends up untracked.
	recordCtx := context.WithoutCancel(ctx)

	entryTime := time.Now().UTC()
	if err := s.ledger.Open(recordCtx, instrument.Symbol, fillPrice, result.FilledQuantity, entryTime, levels.StopLoss, levels.TakeProfit); err != nil {
		// The order filled but the ledger refused the position. The
		// holding exists at the broker but is untracked; this needs
		// operator attention.
		s.logger.Error(ctx, err, op+": CONFIRMED FILL COULD NOT BE RECORDED", map[string]interface{}{
			"instrument": instrument.Symbol,
			"clientID":   intent.ClientID,
		})
		return fmt.Errorf("%s: fill confirmed but ledger rejected it: %w", op, err)
	}

	if _, err := s.txLog.Append(recordCtx, &domain.TransactionRecord{
		Timestamp: entryTime,
		Symbol:    instrument.Symbol,
		Action:    domain.Buy,
		Price:     fillPrice,
		Quantity:  result.FilledQuantity,
	}); err != nil {
		// The position itself is already safely recorded; only the
		// audit record is lost.
		s.logger.Error(ctx, err, op+": failed to append transaction record", map[string]interface{}{"instrument": instrument.Symbol})
	}

	s.notifier.Notify(recordCtx, fmt.Sprintf("🟢 Bought %s: %d lots at %.2f", instrument.Symbol, result.FilledQuantity, fillPrice))
	return nil
}

// closePosition submits a Sell intent for the position's full quantity
// and, on a confirmed fill, removes the position, folds the realized
// profit into the daily budget and records the transaction.
func (s *TradingService) closePosition(ctx context.Context, instrument domain.Instrument, position domain.Position, currentPrice float64) error {
	op := "closePosition"

	intent := domain.OrderIntent{
		Symbol:    instrument.Symbol,
		BrokerID:  instrument.BrokerID,
		Direction: domain.Sell,
		Quantity:  position.Quantity,
		LotSize:   instrument.LotSize,
		ClientID:  ulid.Make().String(),
	}
	s.logger.Info(ctx, op+": submitting order", map[string]interface{}{
		"instrument": instrument.Symbol,
		"lots":       position.Quantity,
		"entryPrice": position.EntryPrice,
		"clientID":   intent.ClientID,
	})

	result, err := s.broker.SubmitOrder(ctx, intent)
	if err != nil {
		metrics.ExecutionErrors.Inc()
		return fmt.Errorf("%s: %w", op, err)
	}
	if result.FilledQuantity <= 0 {
		metrics.ExecutionErrors.Inc()
		return fmt.Errorf("%s: %w: order %s filled nothing", op, ports.ErrExecutionFailed, intent.ClientID)
	}

	fillPrice := result.FillPrice
	if fillPrice <= 0 {
		s.logger.Warn(ctx, op+": fill price missing, using observed price", map[string]interface{}{
			"clientID":      intent.ClientID,
			"fallbackPrice": currentPrice,
		})
		fillPrice = currentPrice
	}

	// The fill is real; recording it must survive cancellation of the
	// run context, otherwise the ledger keeps a position the broker no
	// longer holds.
	recordCtx := context.WithoutCancel(ctx)

	removed, err := s.ledger.Close(recordCtx, instrument.Symbol)
	if err != nil {
		s.logger.Error(ctx, err, op+": CONFIRMED FILL COULD NOT BE RECORDED", map[string]interface{}{
			"instrument": instrument.Symbol,
			"clientID":   intent.ClientID,
		})
		return fmt.Errorf("%s: fill confirmed but ledger close failed: %w", op, err)
	}

	profitPct := (fillPrice - removed.EntryPrice) / removed.EntryPrice * 100
	limitCrossed := s.budget.AddRealized(recordCtx, profitPct)

	if _, err := s.txLog.Append(recordCtx, &domain.TransactionRecord{
		Timestamp: time.Now().UTC(),
		Symbol:    instrument.Symbol,
		Action:    domain.Sell,
		Price:     fillPrice,
		Quantity:  removed.Quantity,
		ProfitPct: profitPct,
	}); err != nil {
		s.logger.Error(ctx, err, op+": failed to append transaction record", map[string]interface{}{"instrument": instrument.Symbol})
	}

	s.notifier.Notify(recordCtx, fmt.Sprintf("🔴 Sold %s: %d lots at %.2f, profit %.2f%%", instrument.Symbol, removed.Quantity, fillPrice, profitPct))
	if limitCrossed {
		s.logger.Warn(ctx, "Daily loss limit exceeded, new opens blocked until tomorrow", map[string]interface{}{
			"dailyProfitPct": s.budget.ProfitPct(),
			"limit":          s.cfg.LossLimitPct,
		})
		s.notifier.Notify(recordCtx, fmt.Sprintf("⚠️ Daily loss limit exceeded: %.2f%%", s.budget.ProfitPct()))
	}
	return nil
}
