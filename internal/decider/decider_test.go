package decider

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"swingTraderBot/internal/domain"
	"swingTraderBot/internal/indicators"
)

type noopLogger struct{}

func (noopLogger) Debug(ctx context.Context, msg string, fields ...map[string]interface{}) {}
func (noopLogger) Info(ctx context.Context, msg string, fields ...map[string]interface{})  {}
func (noopLogger) Warn(ctx context.Context, msg string, fields ...map[string]interface{})  {}
func (noopLogger) Error(ctx context.Context, err error, msg string, fields ...map[string]interface{}) {
}

func defaultDecider(t *testing.T) *Decider {
	t.Helper()
	d, err := New(Config{
		RSIOversold:             32,
		RSIOverbought:           60,
		TakeProfitTriggerFactor: 1.005,
	}, noopLogger{})
	require.NoError(t, err)
	return d
}

func TestDecider_Decide(t *testing.T) {
	position := &domain.Position{Symbol: "SBER", EntryPrice: 100.0, Quantity: 1}

	tests := []struct {
		name     string
		input    Input
		expected domain.Action
	}{
		{
			name: "oversold with capacity and budget opens",
			input: Input{
				Snapshot:      indicators.Snapshot{RSI: 25, ATR: 1.2},
				CurrentPrice:  100,
				UnderCapacity: true,
			},
			expected: domain.ActionOpen,
		},
		{
			name: "overbought RSI closes held position",
			input: Input{
				Snapshot:      indicators.Snapshot{RSI: 70, ATR: 1.2},
				CurrentPrice:  101,
				Position:      position,
				UnderCapacity: true,
			},
			expected: domain.ActionClose,
		},
		{
			name: "price gain trigger closes held position",
			input: Input{
				Snapshot:      indicators.Snapshot{RSI: 45, ATR: 1.2},
				CurrentPrice:  100.5, // exactly 1.005 * entry
				Position:      position,
				UnderCapacity: true,
			},
			expected: domain.ActionClose,
		},
		{
			name: "no position and neutral RSI holds",
			input: Input{
				Snapshot:      indicators.Snapshot{RSI: 45, ATR: 1.2},
				CurrentPrice:  100.6, // above gain trigger, but nothing is held
				UnderCapacity: true,
			},
			expected: domain.ActionHold,
		},
		{
			name: "exhausted budget blocks new opens",
			input: Input{
				Snapshot:        indicators.Snapshot{RSI: 25, ATR: 1.2},
				CurrentPrice:    100,
				UnderCapacity:   true,
				BudgetExhausted: true,
			},
			expected: domain.ActionHold,
		},
		{
			name: "full ledger blocks new opens",
			input: Input{
				Snapshot:      indicators.Snapshot{RSI: 25, ATR: 1.2},
				CurrentPrice:  100,
				UnderCapacity: false,
			},
			expected: domain.ActionHold,
		},
		{
			name: "exhausted budget still allows closes",
			input: Input{
				Snapshot:        indicators.Snapshot{RSI: 70, ATR: 1.2},
				CurrentPrice:    99,
				Position:        position,
				BudgetExhausted: true,
			},
			expected: domain.ActionClose,
		},
		{
			name: "held position below both exit triggers holds",
			input: Input{
				Snapshot:     indicators.Snapshot{RSI: 50, ATR: 1.2},
				CurrentPrice: 100.2,
				Position:     position,
			},
			expected: domain.ActionHold,
		},
	}

	d := defaultDecider(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, d.Decide(context.Background(), tt.input))
		})
	}
}

// The stop-loss and take-profit levels stored on a position at entry are
// audit data; they do not participate in exit decisions.
func TestDecider_StoredLevelsAreNotExitTriggers(t *testing.T) {
	d := defaultDecider(t)
	pos := &domain.Position{Symbol: "SBER", EntryPrice: 100, Quantity: 1, StopLoss: 98, TakeProfit: 103}

	// Price below the stored stop loss, RSI neutral: still Hold.
	action := d.Decide(context.Background(), Input{
		Snapshot:     indicators.Snapshot{RSI: 50, ATR: 1.0},
		CurrentPrice: 95,
		Position:     pos,
	})
	assert.Equal(t, domain.ActionHold, action)
}

func TestNew_Validation(t *testing.T) {
	cases := []Config{
		{RSIOversold: 60, RSIOverbought: 32, TakeProfitTriggerFactor: 1.005}, // inverted
		{RSIOversold: -1, RSIOverbought: 60, TakeProfitTriggerFactor: 1.005},
		{RSIOversold: 32, RSIOverbought: 101, TakeProfitTriggerFactor: 1.005},
		{RSIOversold: 32, RSIOverbought: 60, TakeProfitTriggerFactor: 0.9},
	}
	for _, cfg := range cases {
		if _, err := New(cfg, noopLogger{}); err == nil {
			t.Errorf("expected validation error for %+v", cfg)
		}
	}
}
