package binanceclient

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"swingTraderBot/internal/domain"
	"swingTraderBot/internal/ports"

	"github.com/adshao/go-binance/v2"
	"github.com/adshao/go-binance/v2/common"
)

const (
	// Base URLs
	baseURLProduction = "https://api.binance.com"
	baseURLTestnet    = "https://testnet.binance.vision"
)

// Client implements the ports.BrokerClient interface using the
// go-binance library against the spot API. Every outbound call is
// bounded by RequestTimeout; a deadline hit surfaces as ports.ErrTimeout
// so the caller treats it as an execution failure rather than fatal.
type Client struct {
	spotClient     *binance.Client
	logger         ports.Logger
	quoteAsset     string
	requestTimeout time.Duration
}

// Config holds configuration specific to the broker adapter.
type Config struct {
	APIKey         string
	SecretKey      string
	UseTestnet     bool
	QuoteAsset     string        // Asset cash balances are held in (e.g., "USDT")
	RequestTimeout time.Duration // Upper bound for each API call
	Logger         ports.Logger
}

// New creates a new broker client adapter.
func New(cfg Config) (*Client, error) {
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger is required for broker client")
	}
	if cfg.APIKey == "" || cfg.SecretKey == "" {
		cfg.Logger.Warn(context.Background(), "APIKey or SecretKey is empty. Client will only work for public endpoints.")
	}
	if cfg.QuoteAsset == "" {
		cfg.QuoteAsset = "USDT"
	}
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	client := binance.NewClient(cfg.APIKey, cfg.SecretKey)
	if cfg.UseTestnet {
		client.BaseURL = baseURLTestnet
		cfg.Logger.Info(context.Background(), "Broker client configured for Testnet", map[string]interface{}{"baseURL": client.BaseURL})
	} else {
		client.BaseURL = baseURLProduction
		cfg.Logger.Info(context.Background(), "Broker client configured for Production", map[string]interface{}{"baseURL": client.BaseURL})
	}

	return &Client{
		spotClient:     client,
		logger:         cfg.Logger,
		quoteAsset:     cfg.QuoteAsset,
		requestTimeout: timeout,
	}, nil
}

// handleError translates broker API errors into standardized ports errors.
func (c *Client) handleError(ctx context.Context, err error, operation string) error {
	if err == nil {
		return nil
	}

	fields := map[string]interface{}{"operation": operation, "originalError": err.Error()}

	if errors.Is(err, context.DeadlineExceeded) {
		c.logger.Error(ctx, err, fmt.Sprintf("%s timed out", operation), fields)
		return fmt.Errorf("%s failed: %w", operation, ports.ErrTimeout)
	}

	var apiErr *common.APIError
	if errors.As(err, &apiErr) {
		fields["apiErrorCode"] = apiErr.Code
		fields["apiErrorMessage"] = apiErr.Message

		var mappedErr error
		switch apiErr.Code {
		case -1003: // Too many requests
			mappedErr = ports.ErrRateLimited
		case -1021: // Timestamp outside of the recvWindow
			mappedErr = ports.ErrTimeout
		case -2010, -2011: // Order rejected / cancel rejected
			mappedErr = ports.ErrExecutionFailed
		case -2019, -3005, -3041: // Insufficient margin/balance/position
			mappedErr = ports.ErrInsufficientFunds
		case -1100, -1101, -1102, -1103, -1104, -1111, -1121: // Parameter/request format errors
			mappedErr = ports.ErrInvalidRequest
		default:
			mappedErr = ports.ErrExecutionFailed
		}
		finalErr := fmt.Errorf("%s failed: %w: %w", operation, mappedErr, err)
		c.logger.Error(ctx, err, fmt.Sprintf("%s failed with API error", operation), fields)
		return finalErr
	}

	c.logger.Error(ctx, err, fmt.Sprintf("%s failed", operation), fields)
	return fmt.Errorf("%s failed: %w: %w", operation, ports.ErrBrokerUnavailable, err)
}

// GetLastPrice retrieves the most recent traded price for an instrument.
func (c *Client) GetLastPrice(ctx context.Context, instrument domain.Instrument) (float64, error) {
	op := "GetLastPrice"
	ctx, cancel := context.WithTimeout(ctx, c.requestTimeout)
	defer cancel()

	prices, err := c.spotClient.NewListPricesService().Symbol(instrument.BrokerID).Do(ctx)
	if err != nil {
		return 0, c.handleError(ctx, err, op)
	}
	if len(prices) == 0 {
		return 0, fmt.Errorf("%s failed: %w: no price returned for %s", op, ports.ErrNotFound, instrument.BrokerID)
	}

	price, err := strconv.ParseFloat(prices[0].Price, 64)
	if err != nil {
		return 0, fmt.Errorf("%s failed: could not parse price %q: %w", op, prices[0].Price, err)
	}
	return price, nil
}

// GetAvailableCash retrieves the free balance of the quote asset.
func (c *Client) GetAvailableCash(ctx context.Context) (float64, error) {
	op := "GetAvailableCash"
	ctx, cancel := context.WithTimeout(ctx, c.requestTimeout)
	defer cancel()

	account, err := c.spotClient.NewGetAccountService().Do(ctx)
	if err != nil {
		return 0, c.handleError(ctx, err, op)
	}
	for _, balance := range account.Balances {
		if balance.Asset == c.quoteAsset {
			free, err := strconv.ParseFloat(balance.Free, 64)
			if err != nil {
				return 0, fmt.Errorf("%s failed: could not parse balance %q: %w", op, balance.Free, err)
			}
			return free, nil
		}
	}
	return 0, nil // No balance entry means zero holdings
}

// GetRecentBars retrieves OHLC bars over [from, to], oldest first.
func (c *Client) GetRecentBars(ctx context.Context, instrument domain.Instrument, interval string, from, to time.Time) ([]*domain.Bar, error) {
	op := "GetRecentBars"
	ctx, cancel := context.WithTimeout(ctx, c.requestTimeout)
	defer cancel()

	klines, err := c.spotClient.NewKlinesService().
		Symbol(instrument.BrokerID).
		Interval(interval).
		StartTime(from.UnixMilli()).
		EndTime(to.UnixMilli()).
		Do(ctx)
	if err != nil {
		return nil, c.handleError(ctx, err, op)
	}

	bars := make([]*domain.Bar, 0, len(klines))
	for _, k := range klines {
		bar, err := toBar(k)
		if err != nil {
			return nil, fmt.Errorf("%s failed: %w", op, err)
		}
		bars = append(bars, bar)
	}
	return bars, nil
}

// lotsFromUnits converts an executed unit quantity into whole lots plus
// the sub-lot remainder lost to truncation.
func lotsFromUnits(executedUnits float64, lotSize int) (lots int, remainderUnits float64) {
	if lotSize <= 0 {
		lotSize = 1
	}
	lots = int(executedUnits) / lotSize
	return lots, executedUnits - float64(lots*lotSize)
}

func toBar(k *binance.Kline) (*domain.Bar, error) {
	open, err := strconv.ParseFloat(k.Open, 64)
	if err != nil {
		return nil, fmt.Errorf("could not parse open %q: %w", k.Open, err)
	}
	high, err := strconv.ParseFloat(k.High, 64)
	if err != nil {
		return nil, fmt.Errorf("could not parse high %q: %w", k.High, err)
	}
	low, err := strconv.ParseFloat(k.Low, 64)
	if err != nil {
		return nil, fmt.Errorf("could not parse low %q: %w", k.Low, err)
	}
	closePrice, err := strconv.ParseFloat(k.Close, 64)
	if err != nil {
		return nil, fmt.Errorf("could not parse close %q: %w", k.Close, err)
	}
	volume, err := strconv.ParseFloat(k.Volume, 64)
	if err != nil {
		return nil, fmt.Errorf("could not parse volume %q: %w", k.Volume, err)
	}
	return &domain.Bar{
		Time:   time.UnixMilli(k.CloseTime),
		Open:   open,
		High:   high,
		Low:    low,
		Close:  closePrice,
		Volume: volume,
	}, nil
}

// SubmitOrder places a market order for the intent and reports the fill.
func (c *Client) SubmitOrder(ctx context.Context, intent domain.OrderIntent) (*domain.ExecutionResult, error) {
	op := "SubmitOrder"
	ctx, cancel := context.WithTimeout(ctx, c.requestTimeout)
	defer cancel()

	side := binance.SideTypeBuy
	if intent.Direction == domain.Sell {
		side = binance.SideTypeSell
	}
	lotSize := intent.LotSize
	if lotSize <= 0 {
		lotSize = 1
	}
	units := intent.Quantity * lotSize

	c.logger.Info(ctx, op+": placing market order", map[string]interface{}{
		"symbol":   intent.BrokerID,
		"side":     side,
		"lots":     intent.Quantity,
		"units":    units,
		"clientID": intent.ClientID,
	})

	order, err := c.spotClient.NewCreateOrderService().
		Symbol(intent.BrokerID).
		Side(side).
		Type(binance.OrderTypeMarket).
		Quantity(strconv.Itoa(units)).
		NewClientOrderID(intent.ClientID).
		Do(ctx)
	if err != nil {
		return nil, c.handleError(ctx, err, op)
	}

	executedUnits, err := strconv.ParseFloat(order.ExecutedQuantity, 64)
	if err != nil {
		return nil, fmt.Errorf("%s failed: could not parse executed quantity %q: %w", op, order.ExecutedQuantity, err)
	}
	filledLots, remainderUnits := lotsFromUnits(executedUnits, lotSize)
	if remainderUnits > 0 {
		// A sub-lot execution spent real cash that the whole-lot fill
		// count cannot represent; the operator has to reconcile it at
		// the broker.
		c.logger.Warn(ctx, op+": execution left a sub-lot remainder, manual reconciliation needed", map[string]interface{}{
			"clientID":       intent.ClientID,
			"executedUnits":  executedUnits,
			"filledLots":     filledLots,
			"lotSize":        lotSize,
			"remainderUnits": remainderUnits,
		})
	}

	fillPrice := 0.0
	if executedUnits > 0 {
		quoteQty, err := strconv.ParseFloat(order.CummulativeQuoteQuantity, 64)
		if err == nil && quoteQty > 0 {
			fillPrice = quoteQty / executedUnits
		} else if len(order.Fills) > 0 {
			fillPrice, _ = strconv.ParseFloat(order.Fills[0].Price, 64)
		}
	}

	c.logger.Info(ctx, op+": order result", map[string]interface{}{
		"orderID":    order.OrderID,
		"status":     order.Status,
		"filledLots": filledLots,
		"fillPrice":  fillPrice,
	})
	return &domain.ExecutionResult{FilledQuantity: filledLots, FillPrice: fillPrice}, nil
}
