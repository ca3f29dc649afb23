package contracts

import "time"

// VolumeStats are the population statistics of one volume window
type VolumeStats struct {
	Count           int     `json:"count"`
	Mean            float64 `json:"mean"`
	StdDev          float64 `json:"std_dev"` // population (divisor n)
	SigmaMultiplier float64 `json:"sigma_multiplier"`
	UpperThreshold  float64 `json:"upper_threshold"`
}

// VolumePoint is one volume observation with its threshold flag
type VolumePoint struct {
	Timestamp time.Time `json:"timestamp"`
	Volume    int64     `json:"volume"`
	Anomalous bool      `json:"anomalous"`
}

// VolumeView drives the volume chart and its reference lines
type VolumeView struct {
	Stats  VolumeStats   `json:"stats"`
	Points []VolumePoint `json:"points"`
}

// Overview is the headline card set
type Overview struct {
	HappinessScore int       `json:"happiness_score"`
	Label          string    `json:"label"`
	ScoreChange    float64   `json:"score_change"` // percentage points
	Good           float64   `json:"good"`
	Neutral        float64   `json:"neutral"`
	Bad            float64   `json:"bad"`
	TotalVolume    int64     `json:"total_volume"`
	VolumeChange   float64   `json:"volume_change"` // percent
	AsOf           time.Time `json:"as_of"`
}

// TrendPoint is one point of the sentiment trend chart
type TrendPoint struct {
	Timestamp time.Time `json:"timestamp"`
	Good      float64   `json:"good"`
	Neutral   float64   `json:"neutral"`
	Bad       float64   `json:"bad"`
	Score     int       `json:"score"`
}

// CompetitorView compares one competitor with the brand
type CompetitorView struct {
	Profile         CompetitorProfile `json:"profile"`
	RecomputedScore int               `json:"recomputed_score"`
	GapToBrand      int               `json:"gap_to_brand"` // competitor - brand
}

// InsightSummary counts insights by impact
type InsightSummary struct {
	Total        int `json:"total"`
	HighImpact   int `json:"high_impact"`
	MediumImpact int `json:"medium_impact"`
	LowImpact    int `json:"low_impact"`
}

// SocialSummary is the engagement panel
type SocialSummary struct {
	TotalInteractions int64        `json:"total_interactions"`
	PositivePosts     int          `json:"positive_posts"`
	NegativePosts     int          `json:"negative_posts"`
	PositiveShare     float64      `json:"positive_share"`
	NegativeShare     float64      `json:"negative_share"`
	TopPosts          []SocialPost `json:"top_posts"`
}

// Dashboard is the immutable derived view published after each refresh
// ⭐ SSOT: 프레젠테이션 계층에 전달되는 유일한 값
type Dashboard struct {
	Version           uint64             `json:"version"`
	GeneratedAt       time.Time          `json:"generated_at"`
	Brand             string             `json:"brand"`
	Overview          Overview           `json:"overview"`
	Trend             []TrendPoint       `json:"trend"`
	Volume            VolumeView         `json:"volume"`
	Categories        []CategoryInsight  `json:"categories"`
	IntegrityWarnings []IntegrityWarning `json:"integrity_warnings,omitempty"`
	Competitors       []CompetitorView   `json:"competitors"`
	Risks             []WeightedInsight  `json:"risks"`
	Opportunities     []WeightedInsight  `json:"opportunities"`
	InsightSummary    InsightSummary     `json:"insight_summary"`
	PositiveInsights  []WeightedInsight  `json:"positive_insights"`
	Alerts            []AnomalyAlert     `json:"alerts"`
	Social            SocialSummary      `json:"social"`
}
