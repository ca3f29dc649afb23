package contracts

import "time"

// SentimentSnapshot is one period of aggregate sentiment
// ⭐ SSOT: 감성 시계열 한 구간의 원본 값
type SentimentSnapshot struct {
	Timestamp   time.Time `json:"timestamp"`
	Good        float64   `json:"good"`    // 0~100
	Neutral     float64   `json:"neutral"` // 0~100
	Bad         float64   `json:"bad"`     // 0~100
	TotalVolume int64     `json:"total_volume"`
}

// Total returns good + neutral + bad (not necessarily 100)
func (s SentimentSnapshot) Total() float64 {
	return s.Good + s.Neutral + s.Bad
}

// IsValid reports whether every component is non-negative
func (s SentimentSnapshot) IsValid() bool {
	return s.Good >= 0 && s.Neutral >= 0 && s.Bad >= 0 && s.TotalVolume >= 0
}

// Volumes extracts the volume series from a window, oldest first
func Volumes(window []SentimentSnapshot) []float64 {
	out := make([]float64, len(window))
	for i, s := range window {
		out[i] = float64(s.TotalVolume)
	}
	return out
}
