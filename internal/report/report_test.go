package report

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"swingTraderBot/internal/domain"
)

type mockTxLog struct {
	records []*domain.TransactionRecord
}

func (m *mockTxLog) Append(ctx context.Context, rec *domain.TransactionRecord) (int64, error) {
	m.records = append(m.records, rec)
	return int64(len(m.records)), nil
}

func (m *mockTxLog) FindSince(ctx context.Context, from time.Time) ([]*domain.TransactionRecord, error) {
	out := make([]*domain.TransactionRecord, 0)
	for _, rec := range m.records {
		if !rec.Timestamp.Before(from) {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (m *mockTxLog) FindAll(ctx context.Context) ([]*domain.TransactionRecord, error) {
	return m.records, nil
}

type noopLogger struct{}

func (noopLogger) Debug(ctx context.Context, msg string, fields ...map[string]interface{}) {}
func (noopLogger) Info(ctx context.Context, msg string, fields ...map[string]interface{})  {}
func (noopLogger) Warn(ctx context.Context, msg string, fields ...map[string]interface{})  {}
func (noopLogger) Error(ctx context.Context, err error, msg string, fields ...map[string]interface{}) {
}

func sell(ts time.Time, symbol string, profitPct float64) *domain.TransactionRecord {
	return &domain.TransactionRecord{Timestamp: ts, Symbol: symbol, Action: domain.Sell, Price: 100, Quantity: 1, ProfitPct: profitPct}
}

func buy(ts time.Time, symbol string) *domain.TransactionRecord {
	return &domain.TransactionRecord{Timestamp: ts, Symbol: symbol, Action: domain.Buy, Price: 100, Quantity: 1}
}

func TestGenerator_DayPeriod(t *testing.T) {
	now := time.Date(2025, 3, 12, 18, 0, 0, 0, time.UTC) // a Wednesday
	log := &mockTxLog{records: []*domain.TransactionRecord{
		sell(now.Add(-8*time.Hour), "SBER", 1.0),
		sell(now.Add(-4*time.Hour), "GAZP", -2.0),
		sell(now.Add(-1*time.Hour), "LKOH", 3.0),
		sell(now.AddDate(0, 0, -1), "SBER", 10.0), // yesterday, excluded
		buy(now.Add(-2*time.Hour), "ROSN"),        // buys never counted
	}}

	gen, err := NewGenerator(log, noopLogger{})
	require.NoError(t, err)

	rep, err := gen.Generate(context.Background(), PeriodDay, now)
	require.NoError(t, err)
	assert.Len(t, rep.Records, 3)
	assert.InDelta(t, 2.0, rep.TotalProfitPct, 1e-9)
}

func TestGenerator_Periods(t *testing.T) {
	now := time.Date(2025, 3, 12, 18, 0, 0, 0, time.UTC) // Wednesday
	log := &mockTxLog{records: []*domain.TransactionRecord{
		sell(time.Date(2025, 3, 12, 10, 0, 0, 0, time.UTC), "A", 1.0),  // today
		sell(time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC), "B", 2.0),  // Monday this week
		sell(time.Date(2025, 3, 9, 10, 0, 0, 0, time.UTC), "C", 4.0),   // Sunday last week
		sell(time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC), "D", 8.0),   // this month, month start
		sell(time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC), "E", 16.0),  // year start
		sell(time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC), "F", 32.0), // last year
	}}

	gen, err := NewGenerator(log, noopLogger{})
	require.NoError(t, err)

	tests := []struct {
		period   Period
		expected float64
	}{
		{PeriodDay, 1.0},
		{PeriodWeek, 3.0},        // today + Monday
		{PeriodMonth, 15.0},      // all four March records
		{PeriodYear, 31.0},       // all 2025 records
		{PeriodMonthStart, 24.0}, // 3/1 and 1/1
		{PeriodYearStart, 16.0},  // 1/1 only
		{PeriodAll, 63.0},
	}

	for _, tt := range tests {
		t.Run(string(tt.period), func(t *testing.T) {
			rep, err := gen.Generate(context.Background(), tt.period, now)
			require.NoError(t, err)
			assert.InDelta(t, tt.expected, rep.TotalProfitPct, 1e-9)
		})
	}
}

func TestParsePeriod(t *testing.T) {
	for _, valid := range []string{"day", "week", "month", "year", "month_start", "year_start", "all"} {
		p, err := ParsePeriod(valid)
		require.NoError(t, err)
		assert.Equal(t, Period(valid), p)
	}
	_, err := ParsePeriod("quarter")
	assert.Error(t, err)
}
