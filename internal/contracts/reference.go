package contracts

import "time"

// Trend direction of a category's sentiment
type Trend string

const (
	TrendUp     Trend = "up"
	TrendDown   Trend = "down"
	TrendStable Trend = "stable"
)

// CategoryInsight is the ABSA breakdown for one category
type CategoryInsight struct {
	Category      string  `json:"category" yaml:"category"`
	Sentiment     int     `json:"sentiment" yaml:"sentiment"`
	Volume        int64   `json:"volume" yaml:"volume"`
	Trend         Trend   `json:"trend" yaml:"trend"`
	ChangePercent float64 `json:"change_percent" yaml:"change_percent"`
}

// SentimentSplit is an integer good/neutral/bad percentage split
type SentimentSplit struct {
	Good    int `json:"good" yaml:"good"`
	Neutral int `json:"neutral" yaml:"neutral"`
	Bad     int `json:"bad" yaml:"bad"`
}

// CompetitorProfile is a read-only competitor reference record
type CompetitorProfile struct {
	Name           string         `json:"name" yaml:"name"`
	HappinessScore int            `json:"happiness_score" yaml:"happiness_score"`
	Sentiment      SentimentSplit `json:"sentiment" yaml:"sentiment"`
}

// Impact level of an insight
type Impact string

const (
	ImpactHigh   Impact = "high"
	ImpactMedium Impact = "medium"
	ImpactLow    Impact = "low"
)

// InsightType partitions insights
type InsightType string

const (
	InsightOpportunity InsightType = "opportunity"
	InsightRisk        InsightType = "risk"
)

// WeightedInsight is a qualitative finding with a precomputed priority score
type WeightedInsight struct {
	ID              string      `json:"id" yaml:"id"`
	Title           string      `json:"title" yaml:"title"`
	Description     string      `json:"description" yaml:"description"`
	Category        string      `json:"category" yaml:"category"`
	WeightedScore   int         `json:"weighted_score" yaml:"weighted_score"` // 0~100
	Impact          Impact      `json:"impact" yaml:"impact"`
	Source          string      `json:"source" yaml:"source"`
	SuggestedAction string      `json:"suggested_action" yaml:"suggested_action"`
	Priority        int         `json:"priority" yaml:"priority"` // 1-based
	Type            InsightType `json:"type" yaml:"type"`
}

// AlertType of an anomaly alert
type AlertType string

const (
	AlertSpike   AlertType = "spike"
	AlertDrop    AlertType = "drop"
	AlertAnomaly AlertType = "anomaly"
)

// Severity of an anomaly alert
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityWarning  Severity = "warning"
	SeverityInfo     Severity = "info"
)

// Rank orders severities, critical first
func (s Severity) Rank() int {
	switch s {
	case SeverityCritical:
		return 0
	case SeverityWarning:
		return 1
	case SeverityInfo:
		return 2
	default:
		return 3
	}
}

// AnomalyAlert is a discrete alert event
type AnomalyAlert struct {
	ID          string    `json:"id" yaml:"id"`
	Type        AlertType `json:"type" yaml:"type"`
	Severity    Severity  `json:"severity" yaml:"severity"`
	Title       string    `json:"title" yaml:"title"`
	Description string    `json:"description" yaml:"description"`
	Metric      string    `json:"metric" yaml:"metric"`
	Change      float64   `json:"change" yaml:"change"` // signed percent
	Timestamp   time.Time `json:"timestamp" yaml:"timestamp"`
}

// PostSentiment of a social post
type PostSentiment string

const (
	PostGood    PostSentiment = "good"
	PostNeutral PostSentiment = "neutral"
	PostBad     PostSentiment = "bad"
)

// SocialPost is a high-engagement post shown in the feed
type SocialPost struct {
	ID           string        `json:"id" yaml:"id"`
	Platform     string        `json:"platform" yaml:"platform"`
	Content      string        `json:"content" yaml:"content"`
	Sentiment    PostSentiment `json:"sentiment" yaml:"sentiment"`
	Interactions int64         `json:"interactions" yaml:"interactions"`
	Timestamp    time.Time     `json:"timestamp" yaml:"timestamp"`
	Category     string        `json:"category" yaml:"category"`
}

// ReferenceData bundles the static collections supplied at startup
// ⭐ SSOT: 전역 목 데이터 대신 호출자가 소유하는 참조 데이터
type ReferenceData struct {
	Brand            string              `json:"brand" yaml:"brand"`
	Categories       []CategoryInsight   `json:"categories" yaml:"categories"`
	Competitors      []CompetitorProfile `json:"competitors" yaml:"competitors"`
	Insights         []WeightedInsight   `json:"insights" yaml:"insights"`
	PositiveInsights []WeightedInsight   `json:"positive_insights" yaml:"positive_insights"`
	Alerts           []AnomalyAlert      `json:"alerts" yaml:"alerts"`
	SocialPosts      []SocialPost        `json:"social_posts" yaml:"social_posts"`
}
