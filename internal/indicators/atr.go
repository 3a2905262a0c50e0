package indicators

import (
	"fmt"
	"math"

	"swingTraderBot/internal/domain"
	"swingTraderBot/internal/ports"
)

// computeATR calculates the average true range as the mean of the
// absolute close-to-close price changes over the most recent `period`
// differences. When fewer differences exist than the period, the mean
// is taken over what is available.
func computeATR(bars []*domain.Bar, period int) (float64, error) {
	diffs := make([]float64, 0, len(bars)-1)
	for i := 1; i < len(bars); i++ {
		diffs = append(diffs, math.Abs(bars[i].Close-bars[i-1].Close))
	}
	if len(diffs) == 0 {
		return 0, fmt.Errorf("%w: no price differences available for ATR", ports.ErrInsufficientData)
	}

	if len(diffs) > period {
		diffs = diffs[len(diffs)-period:]
	}

	sum := 0.0
	for _, d := range diffs {
		sum += d
	}
	return sum / float64(len(diffs)), nil
}
