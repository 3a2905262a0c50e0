package indicators

import (
	"errors"
	"math"
	"testing"
	"time"

	"swingTraderBot/internal/domain"
	"swingTraderBot/internal/ports"
)

func barsFromCloses(closes ...float64) []*domain.Bar {
	now := time.Now()
	bars := make([]*domain.Bar, 0, len(closes))
	for i, c := range closes {
		bars = append(bars, &domain.Bar{
			Time:  now.Add(time.Duration(i-len(closes)) * 5 * time.Minute),
			Close: c,
		})
	}
	return bars
}

func TestComputeATR(t *testing.T) {
	tests := []struct {
		name        string
		closes      []float64
		period      int
		expected    float64
		expectError bool
	}{
		{
			name:     "fewer differences than period averages what is available",
			closes:   []float64{100, 102, 101, 103},
			period:   14,
			expected: 5.0 / 3.0, // diffs 2, 1, 2
		},
		{
			name:     "more differences than period uses most recent ones",
			closes:   []float64{100, 102, 101, 103},
			period:   2,
			expected: 1.5, // most recent diffs 1, 2
		},
		{
			name:     "flat prices give zero ATR",
			closes:   []float64{100, 100, 100},
			period:   14,
			expected: 0,
		},
		{
			name:        "single bar has no differences",
			closes:      []float64{100},
			period:      14,
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			atr, err := computeATR(barsFromCloses(tt.closes...), tt.period)
			if tt.expectError {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				if !errors.Is(err, ports.ErrInsufficientData) {
					t.Errorf("expected ErrInsufficientData, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if math.Abs(atr-tt.expected) > 1e-9 {
				t.Errorf("expected ATR %f, got %f", tt.expected, atr)
			}
		})
	}
}

func TestComputeRSI(t *testing.T) {
	tests := []struct {
		name        string
		closes      []float64
		period      int
		expected    float64
		expectError bool
	}{
		{
			name:     "alternating gains and losses",
			closes:   []float64{100, 102, 101, 103, 102, 104},
			period:   3,
			expected: 77.272727, // Wilder's smoothing
		},
		{
			name:     "only gains",
			closes:   []float64{100, 102, 104, 106},
			period:   3,
			expected: 100.0,
		},
		{
			name:     "only losses",
			closes:   []float64{106, 104, 102, 100},
			period:   3,
			expected: 0.0,
		},
		{
			name:     "no price change is neutral",
			closes:   []float64{100, 100, 100, 100},
			period:   3,
			expected: 50.0,
		},
		{
			name:        "not enough bars for period",
			closes:      []float64{100, 102, 101},
			period:      7,
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rsi, err := computeRSI(barsFromCloses(tt.closes...), tt.period)
			if tt.expectError {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if math.Abs(rsi-tt.expected) > 1e-4 {
				t.Errorf("expected RSI %f, got %f", tt.expected, rsi)
			}
		})
	}
}

func TestEngine_Compute(t *testing.T) {
	engine, err := NewEngine(Config{ATRPeriod: 14, RSIPeriod: 3})
	if err != nil {
		t.Fatalf("unexpected error creating engine: %v", err)
	}

	t.Run("fewer than two bars is insufficient", func(t *testing.T) {
		_, err := engine.Compute(barsFromCloses(100))
		if !errors.Is(err, ports.ErrInsufficientData) {
			t.Errorf("expected ErrInsufficientData, got %v", err)
		}
	})

	t.Run("snapshot carries both indicators", func(t *testing.T) {
		snap, err := engine.Compute(barsFromCloses(100, 102, 101, 103, 102, 104))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if snap.ATR <= 0 {
			t.Errorf("expected positive ATR, got %f", snap.ATR)
		}
		if snap.RSI < 0 || snap.RSI > 100 {
			t.Errorf("RSI outside [0,100]: %f", snap.RSI)
		}
	})

	t.Run("window below RSI lookback is insufficient", func(t *testing.T) {
		_, err := engine.Compute(barsFromCloses(100, 101))
		if !errors.Is(err, ports.ErrInsufficientData) {
			t.Errorf("expected ErrInsufficientData, got %v", err)
		}
	})
}

func TestNewEngine_Validation(t *testing.T) {
	if _, err := NewEngine(Config{ATRPeriod: 0, RSIPeriod: 14}); err == nil {
		t.Error("expected error for zero ATR period")
	}
	if _, err := NewEngine(Config{ATRPeriod: 14, RSIPeriod: -1}); err == nil {
		t.Error("expected error for negative RSI period")
	}
}
