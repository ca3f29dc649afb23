package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/happiness/internal/contracts"
)

func snap(good, neutral, bad float64) contracts.SentimentSnapshot {
	return contracts.SentimentSnapshot{Good: good, Neutral: neutral, Bad: bad, TotalVolume: 5000}
}

func TestScorer_Score(t *testing.T) {
	s := DefaultScorer()

	tests := []struct {
		name string
		snap contracts.SentimentSnapshot
		want int
	}{
		{"all good", snap(100, 0, 0), 100},
		{"all bad", snap(0, 0, 100), 0},
		{"all neutral", snap(0, 100, 0), 50},
		{"half-point rounds away from zero", snap(65, 23, 12), 77},
		{"verizon split", snap(58, 28, 14), 72},
		{"at&t split", snap(55, 30, 15), 70},
		{"unnormalized components", snap(70, 30, 12), 76}, // 85/112
		{"even split good/neutral", snap(1, 1, 0), 75},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.Score(tt.snap)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestScorer_ScoreBounds(t *testing.T) {
	s := DefaultScorer()

	for g := 0.0; g <= 100; g += 12.5 {
		for n := 0.0; n <= 100; n += 12.5 {
			for b := 0.0; b <= 100; b += 12.5 {
				if g+n+b == 0 {
					continue
				}
				got, err := s.Score(snap(g, n, b))
				require.NoError(t, err)
				assert.GreaterOrEqual(t, got, 0)
				assert.LessOrEqual(t, got, 100)
			}
		}
	}
}

func TestScorer_DivisionByZero(t *testing.T) {
	_, err := DefaultScorer().Score(snap(0, 0, 0))
	assert.ErrorIs(t, err, contracts.ErrDivisionByZero)
}

func TestScorer_NegativeComponent(t *testing.T) {
	_, err := DefaultScorer().Score(snap(50, -1, 10))
	assert.ErrorIs(t, err, contracts.ErrInvalidSnapshot)
}

func TestScorer_CustomWeights(t *testing.T) {
	s := NewScorer(contracts.ScoreWeights{Good: 1.0, Neutral: 0.25, Bad: 0})

	got, err := s.Score(snap(60, 40, 0))
	require.NoError(t, err)
	assert.Equal(t, 70, got)

	// no clamping; out-of-range weights are rejected by EngineParams.Validate
	over := NewScorer(contracts.ScoreWeights{Good: 2, Neutral: 0, Bad: 0})
	got, err = over.Score(snap(65, 23, 12))
	require.NoError(t, err)
	assert.Equal(t, 130, got)
}

func TestScorer_Recompute(t *testing.T) {
	s := DefaultScorer()

	got, err := s.Recompute(contracts.CompetitorProfile{
		Name:      "Mint Mobile",
		Sentiment: contracts.SentimentSplit{Good: 62, Neutral: 26, Bad: 12},
	})
	require.NoError(t, err)
	assert.Equal(t, 75, got)

	_, err = s.Recompute(contracts.CompetitorProfile{Name: "Empty"})
	assert.ErrorIs(t, err, contracts.ErrDivisionByZero)
}

func TestLabel(t *testing.T) {
	assert.Equal(t, LabelStrong, Label(70))
	assert.Equal(t, LabelStrong, Label(100))
	assert.Equal(t, LabelGood, Label(60))
	assert.Equal(t, LabelGood, Label(69))
	assert.Equal(t, LabelNeedsAttention, Label(59))
	assert.Equal(t, LabelNeedsAttention, Label(0))
}
