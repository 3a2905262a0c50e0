// Package report computes realized-profit summaries from the
// append-only transaction log.
package report

import (
	"context"
	"fmt"
	"time"

	"swingTraderBot/internal/domain"
	"swingTraderBot/internal/ports"
)

// Period selects which slice of the transaction log a report covers.
type Period string

const (
	PeriodDay        Period = "day"
	PeriodWeek       Period = "week"
	PeriodMonth      Period = "month"
	PeriodYear       Period = "year"
	PeriodMonthStart Period = "month_start" // fills on the first day of a month
	PeriodYearStart  Period = "year_start"  // fills on the first day of a year
	PeriodAll        Period = "all"
)

// ParsePeriod validates a period string.
func ParsePeriod(s string) (Period, error) {
	switch Period(s) {
	case PeriodDay, PeriodWeek, PeriodMonth, PeriodYear, PeriodMonthStart, PeriodYearStart, PeriodAll:
		return Period(s), nil
	default:
		return "", fmt.Errorf("%w: unknown report period %q", ports.ErrInvalidRequest, s)
	}
}

// Report is the realized-profit summary for one period.
type Report struct {
	Period         Period
	Records        []*domain.TransactionRecord // Sell fills within the period, oldest first
	TotalProfitPct float64
}

// Generator builds reports from the transaction log.
type Generator struct {
	txLog  ports.TransactionLog
	logger ports.Logger
}

// NewGenerator creates a report generator.
func NewGenerator(txLog ports.TransactionLog, logger ports.Logger) (*Generator, error) {
	if txLog == nil || logger == nil {
		return nil, fmt.Errorf("transaction log and logger are required for report generator")
	}
	return &Generator{txLog: txLog, logger: logger}, nil
}

// Generate totals the realized profit percent of Sell fills within the
// period, evaluated relative to `now`.
func (g *Generator) Generate(ctx context.Context, period Period, now time.Time) (*Report, error) {
	records, err := g.txLog.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read transaction log: %w", err)
	}

	rep := &Report{Period: period, Records: make([]*domain.TransactionRecord, 0)}
	for _, rec := range records {
		if rec.Action != domain.Sell {
			continue
		}
		if !inPeriod(rec.Timestamp.In(now.Location()), period, now) {
			continue
		}
		rep.Records = append(rep.Records, rec)
		rep.TotalProfitPct += rec.ProfitPct
	}

	g.logger.Debug(ctx, "Report generated", map[string]interface{}{
		"period":         period,
		"sellCount":      len(rep.Records),
		"totalProfitPct": rep.TotalProfitPct,
	})
	return rep, nil
}

func inPeriod(ts time.Time, period Period, now time.Time) bool {
	switch period {
	case PeriodDay:
		return sameDate(ts, now)
	case PeriodWeek:
		return !ts.Before(weekStart(now))
	case PeriodMonth:
		return ts.Year() == now.Year() && ts.Month() == now.Month()
	case PeriodYear:
		return ts.Year() == now.Year()
	case PeriodMonthStart:
		return ts.Day() == 1
	case PeriodYearStart:
		return ts.Month() == time.January && ts.Day() == 1
	case PeriodAll:
		return true
	default:
		return false
	}
}

func sameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// weekStart returns midnight of the Monday of now's week.
func weekStart(now time.Time) time.Time {
	y, m, d := now.Date()
	midnight := time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	offset := (int(now.Weekday()) + 6) % 7
	return midnight.AddDate(0, 0, -offset)
}
