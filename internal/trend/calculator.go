package trend

import (
	"fmt"
	"strconv"

	"github.com/wonny/happiness/internal/contracts"
	"github.com/wonny/happiness/internal/scoring"
)

// Calculator computes period-over-period deltas
type Calculator struct {
	scorer *scoring.Scorer
}

// NewCalculator creates a calculator on top of a scorer
func NewCalculator(scorer *scoring.Scorer) *Calculator {
	return &Calculator{scorer: scorer}
}

// ScoreDelta returns score(current) - score(previous) in percentage points
func (c *Calculator) ScoreDelta(current, previous contracts.SentimentSnapshot) (float64, error) {
	cur, err := c.scorer.Score(current)
	if err != nil {
		return 0, fmt.Errorf("score current: %w", err)
	}

	prev, err := c.scorer.Score(previous)
	if err != nil {
		return 0, fmt.Errorf("score previous: %w", err)
	}

	return float64(cur - prev), nil
}

// VolumeDelta returns the relative volume change in percent
func VolumeDelta(current, previous contracts.SentimentSnapshot) (float64, error) {
	if previous.TotalVolume == 0 {
		return 0, fmt.Errorf("previous volume: %w", contracts.ErrDivisionByZero)
	}

	diff := float64(current.TotalVolume - previous.TotalVolume)
	return diff / float64(previous.TotalVolume) * 100, nil
}

// CategoryTrend derives the direction from the sign of changePercent
func CategoryTrend(changePercent float64) contracts.Trend {
	switch {
	case changePercent > 0:
		return contracts.TrendUp
	case changePercent < 0:
		return contracts.TrendDown
	default:
		return contracts.TrendStable
	}
}

// CheckCategories compares each stored trend with the one derived from
// changePercent. Mismatches are returned as warnings, never as an error.
func CheckCategories(categories []contracts.CategoryInsight) []contracts.IntegrityWarning {
	var warnings []contracts.IntegrityWarning

	for _, cat := range categories {
		derived := CategoryTrend(cat.ChangePercent)
		if derived == cat.Trend {
			continue
		}

		warnings = append(warnings, contracts.IntegrityWarning{
			Subject: cat.Category,
			Field:   "trend",
			Stored:  string(cat.Trend),
			Derived: string(derived) + " (change " + strconv.FormatFloat(cat.ChangePercent, 'f', -1, 64) + "%)",
		})
	}

	return warnings
}
