package scoring

import (
	"fmt"
	"math"

	"github.com/wonny/happiness/internal/contracts"
)

// Score labels shown on the overview card
const (
	LabelStrong         = "Strong"
	LabelGood           = "Good"
	LabelNeedsAttention = "Needs Attention"
)

// Scorer computes the happiness index
// ⭐ SSOT: 행복 지수 계산은 여기서만
type Scorer struct {
	weights contracts.ScoreWeights
}

// NewScorer creates a scorer with the given component weights
func NewScorer(weights contracts.ScoreWeights) *Scorer {
	return &Scorer{weights: weights}
}

// DefaultScorer uses weights {good 1.0, neutral 0.5, bad 0.0}
func DefaultScorer() *Scorer {
	return NewScorer(contracts.DefaultEngineParams().Weights)
}

// Weights returns the configured weights
func (s *Scorer) Weights() contracts.ScoreWeights {
	return s.weights
}

// Score returns round(100 * weighted / (good+neutral+bad)).
// Rounding is math.Round: half away from zero, so 76.5 -> 77.
func (s *Scorer) Score(snap contracts.SentimentSnapshot) (int, error) {
	return s.score(snap.Good, snap.Neutral, snap.Bad)
}

// Recompute derives a competitor's score from its sentiment split
func (s *Scorer) Recompute(p contracts.CompetitorProfile) (int, error) {
	score, err := s.score(float64(p.Sentiment.Good), float64(p.Sentiment.Neutral), float64(p.Sentiment.Bad))
	if err != nil {
		return 0, fmt.Errorf("competitor %s: %w", p.Name, err)
	}
	return score, nil
}

func (s *Scorer) score(good, neutral, bad float64) (int, error) {
	if good < 0 || neutral < 0 || bad < 0 {
		return 0, contracts.ErrInvalidSnapshot
	}

	total := good + neutral + bad
	if total == 0 {
		return 0, contracts.ErrDivisionByZero
	}

	weighted := good*s.weights.Good + neutral*s.weights.Neutral + bad*s.weights.Bad
	return int(math.Round(100 * weighted / total)), nil
}

// Label returns the overview label for a score
func Label(score int) string {
	switch {
	case score >= 70:
		return LabelStrong
	case score >= 60:
		return LabelGood
	default:
		return LabelNeedsAttention
	}
}
