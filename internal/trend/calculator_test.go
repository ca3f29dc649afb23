package trend

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/happiness/internal/contracts"
	"github.com/wonny/happiness/internal/scoring"
)

func vol(v int64) contracts.SentimentSnapshot {
	return contracts.SentimentSnapshot{Good: 60, Neutral: 30, Bad: 10, TotalVolume: v}
}

func TestCalculator_ScoreDelta(t *testing.T) {
	c := NewCalculator(scoring.DefaultScorer())

	cur := contracts.SentimentSnapshot{Good: 65, Neutral: 23, Bad: 12}  // 77
	prev := contracts.SentimentSnapshot{Good: 58, Neutral: 28, Bad: 14} // 72

	delta, err := c.ScoreDelta(cur, prev)
	require.NoError(t, err)
	assert.Equal(t, 5.0, delta)

	delta, err = c.ScoreDelta(prev, cur)
	require.NoError(t, err)
	assert.Equal(t, -5.0, delta)
}

func TestCalculator_ScoreDeltaDegenerate(t *testing.T) {
	c := NewCalculator(scoring.DefaultScorer())

	_, err := c.ScoreDelta(contracts.SentimentSnapshot{}, vol(1))
	assert.ErrorIs(t, err, contracts.ErrDivisionByZero)

	_, err = c.ScoreDelta(vol(1), contracts.SentimentSnapshot{})
	assert.ErrorIs(t, err, contracts.ErrDivisionByZero)
}

func TestVolumeDelta(t *testing.T) {
	got, err := VolumeDelta(vol(5200), vol(5000))
	require.NoError(t, err)
	assert.InDelta(t, 4.0, got, 1e-9)

	got, err = VolumeDelta(vol(4000), vol(5000))
	require.NoError(t, err)
	assert.InDelta(t, -20.0, got, 1e-9)

	got, err = VolumeDelta(vol(5000), vol(5000))
	require.NoError(t, err)
	assert.Equal(t, 0.0, got)
}

func TestVolumeDelta_ZeroPrevious(t *testing.T) {
	_, err := VolumeDelta(vol(5000), vol(0))
	assert.ErrorIs(t, err, contracts.ErrDivisionByZero)
}

func TestVolumeDelta_AntisymmetricSign(t *testing.T) {
	pairs := [][2]int64{{5000, 5200}, {7999, 5000}, {1, 2}, {8000, 7999}}

	for _, p := range pairs {
		ab, err := VolumeDelta(vol(p[0]), vol(p[1]))
		require.NoError(t, err)
		ba, err := VolumeDelta(vol(p[1]), vol(p[0]))
		require.NoError(t, err)

		assert.NotEqual(t, ab, ba)
		assert.Equal(t, math.Signbit(ab), !math.Signbit(ba), "pair %v", p)
	}
}

func TestCategoryTrend(t *testing.T) {
	assert.Equal(t, contracts.TrendUp, CategoryTrend(5.2))
	assert.Equal(t, contracts.TrendDown, CategoryTrend(-8.4))
	assert.Equal(t, contracts.TrendStable, CategoryTrend(0))
}

func TestCategoryTrend_PricingRecord(t *testing.T) {
	pricing := contracts.CategoryInsight{
		Category:      "Pricing",
		Sentiment:     58,
		Volume:        15234,
		Trend:         contracts.TrendDown,
		ChangePercent: -8.4,
	}

	assert.Equal(t, pricing.Trend, CategoryTrend(pricing.ChangePercent))
	assert.Empty(t, CheckCategories([]contracts.CategoryInsight{pricing}))
}

func TestCheckCategories(t *testing.T) {
	categories := []contracts.CategoryInsight{
		{Category: "Network Coverage", Trend: contracts.TrendUp, ChangePercent: 5.2},
		{Category: "Store Experience", Trend: contracts.TrendStable, ChangePercent: 0.8},
		{Category: "Billing Issues", Trend: contracts.TrendDown, ChangePercent: -6.8},
		{Category: "App Performance", Trend: contracts.TrendUp, ChangePercent: -4.7},
	}

	warnings := CheckCategories(categories)
	require.Len(t, warnings, 2)

	assert.Equal(t, "Store Experience", warnings[0].Subject)
	assert.Equal(t, "stable", warnings[0].Stored)
	assert.Equal(t, "up (change 0.8%)", warnings[0].Derived)

	assert.Equal(t, "App Performance", warnings[1].Subject)
	assert.Equal(t, "up", warnings[1].Stored)
	assert.Equal(t, "down (change -4.7%)", warnings[1].Derived)
}
