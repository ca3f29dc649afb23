package contracts

import (
	"fmt"
	"time"
)

// ScoreWeights are the per-component happiness weights
type ScoreWeights struct {
	Good    float64 `json:"good"`
	Neutral float64 `json:"neutral"`
	Bad     float64 `json:"bad"`
}

// EngineParams are the named policy parameters of the engine.
// The weights and the sigma multiplier are business constants, not derived values.
type EngineParams struct {
	WindowLength        int           `json:"window_length"`
	RefreshInterval     time.Duration `json:"refresh_interval"`
	SigmaMultiplier     float64       `json:"sigma_multiplier"`
	Weights             ScoreWeights  `json:"weights"`
	SentimentDropPoints float64       `json:"sentiment_drop_points"`
	CategoryRiskScore   int           `json:"category_risk_score"`
}

// DefaultEngineParams returns the documented defaults
func DefaultEngineParams() EngineParams {
	return EngineParams{
		WindowLength:    31, // 30 days + boundary point
		RefreshInterval: 30 * time.Second,
		SigmaMultiplier: 3,
		Weights: ScoreWeights{
			Good:    1.0,
			Neutral: 0.5,
			Bad:     0.0,
		},
		SentimentDropPoints: 5,
		CategoryRiskScore:   50,
	}
}

// Validate checks parameter ranges
func (p EngineParams) Validate() error {
	if p.WindowLength < 2 {
		return fmt.Errorf("window length must be at least 2, got %d", p.WindowLength)
	}
	if p.RefreshInterval <= 0 {
		return fmt.Errorf("refresh interval must be positive, got %s", p.RefreshInterval)
	}
	if p.SigmaMultiplier <= 0 {
		return fmt.Errorf("sigma multiplier must be positive, got %v", p.SigmaMultiplier)
	}
	// 가중치가 [0,1]이면 점수는 항상 [0,100]
	for _, w := range []float64{p.Weights.Good, p.Weights.Neutral, p.Weights.Bad} {
		if w < 0 || w > 1 {
			return fmt.Errorf("score weights must be within [0,1]: %+v", p.Weights)
		}
	}
	if p.SentimentDropPoints < 0 {
		return fmt.Errorf("sentiment drop points must be non-negative, got %v", p.SentimentDropPoints)
	}
	return nil
}
