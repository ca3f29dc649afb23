package anomaly

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/wonny/happiness/internal/contracts"
	"github.com/wonny/happiness/internal/scoring"
	"github.com/wonny/happiness/internal/trend"
	"github.com/wonny/happiness/pkg/logger"
)

// Rules are the alert thresholds of the alert configuration panel
type Rules struct {
	SigmaMultiplier     float64 // volume spike: v > mean + k·σ
	SentimentDropPoints float64 // score drop of at least N points period over period
	CategoryRiskScore   int     // category sentiment strictly below this
}

// RulesFromParams extracts the alert rules from engine parameters
func RulesFromParams(p contracts.EngineParams) Rules {
	return Rules{
		SigmaMultiplier:     p.SigmaMultiplier,
		SentimentDropPoints: p.SentimentDropPoints,
		CategoryRiskScore:   p.CategoryRiskScore,
	}
}

// Evaluation is the detector output for one window
type Evaluation struct {
	Volume contracts.VolumeView
	Alerts []contracts.AnomalyAlert
}

// Detector derives alerts from a sentiment window
// ⭐ SSOT: 이상 감지 규칙은 여기서만
type Detector struct {
	rules      Rules
	calculator *trend.Calculator
	log        *logger.Logger
	newID      func(key string) string
	now        func() time.Time
}

// alertNamespace scopes derived alert ids
var alertNamespace = uuid.MustParse("6f1c2a4e-3d5b-4c8e-9a7f-0b1d2e3f4a5b")

// alertID derives a stable id, so rebuilding the same window keeps alert identity
func alertID(key string) string {
	return uuid.NewSHA1(alertNamespace, []byte(key)).String()
}

// NewDetector creates a detector
func NewDetector(rules Rules, scorer *scoring.Scorer, log *logger.Logger) *Detector {
	return &Detector{
		rules:      rules,
		calculator: trend.NewCalculator(scorer),
		log:        log.Component("anomaly.detector"),
		newID:      alertID,
		now:        time.Now,
	}
}

// Rules returns the configured rules
func (d *Detector) Rules() Rules {
	return d.rules
}

// Evaluate recomputes volume statistics from scratch and derives alerts for
// flagged volume points, a period-over-period score drop and at-risk categories.
func (d *Detector) Evaluate(window []contracts.SentimentSnapshot, categories []contracts.CategoryInsight) (*Evaluation, error) {
	view, err := VolumeView(window, d.rules.SigmaMultiplier)
	if err != nil {
		return nil, err
	}

	var alerts []contracts.AnomalyAlert

	for _, p := range view.Points {
		if !p.Anomalous {
			continue
		}
		alerts = append(alerts, d.volumeSpike(p, view.Stats))
	}

	if len(window) >= 2 {
		latest, previous := window[len(window)-1], window[len(window)-2]
		delta, err := d.calculator.ScoreDelta(latest, previous)
		if err != nil {
			return nil, fmt.Errorf("score drop rule: %w", err)
		}
		if delta < 0 && -delta >= d.rules.SentimentDropPoints {
			alerts = append(alerts, d.scoreDrop(delta, latest.Timestamp))
		}
	}

	for _, cat := range categories {
		if cat.Sentiment < d.rules.CategoryRiskScore {
			alerts = append(alerts, d.categoryRisk(cat))
		}
	}

	if len(alerts) > 0 {
		d.log.WithFields(map[string]interface{}{
			"alerts":    len(alerts),
			"threshold": view.Stats.UpperThreshold,
		}).Debug("Derived anomaly alerts")
	}

	return &Evaluation{Volume: view, Alerts: alerts}, nil
}

func (d *Detector) volumeSpike(p contracts.VolumePoint, stats contracts.VolumeStats) contracts.AnomalyAlert {
	var change, sigmas float64
	if stats.Mean != 0 {
		change = (float64(p.Volume) - stats.Mean) / stats.Mean * 100
	}
	if stats.StdDev != 0 {
		sigmas = (float64(p.Volume) - stats.Mean) / stats.StdDev
	}

	return contracts.AnomalyAlert{
		ID:          d.newID("spike|" + p.Timestamp.UTC().Format(time.RFC3339Nano)),
		Type:        contracts.AlertSpike,
		Severity:    contracts.SeverityCritical,
		Title:       "Mention Volume Spike",
		Description: fmt.Sprintf("Volume of %d is %.1fσ above the window mean of %.0f", p.Volume, sigmas, stats.Mean),
		Metric:      "Total Volume",
		Change:      change,
		Timestamp:   p.Timestamp,
	}
}

func (d *Detector) scoreDrop(delta float64, at time.Time) contracts.AnomalyAlert {
	return contracts.AnomalyAlert{
		ID:          d.newID("drop|" + at.UTC().Format(time.RFC3339Nano)),
		Type:        contracts.AlertDrop,
		Severity:    contracts.SeverityWarning,
		Title:       "Happiness Score Drop",
		Description: fmt.Sprintf("Happiness score fell %.0f points since the previous period", -delta),
		Metric:      "Happiness Score",
		Change:      delta,
		Timestamp:   at,
	}
}

func (d *Detector) categoryRisk(cat contracts.CategoryInsight) contracts.AnomalyAlert {
	return contracts.AnomalyAlert{
		ID:          d.newID("category|" + cat.Category),
		Type:        contracts.AlertAnomaly,
		Severity:    contracts.SeverityWarning,
		Title:       cat.Category + " Below Risk Threshold",
		Description: fmt.Sprintf("%s sentiment score %d is below %d", cat.Category, cat.Sentiment, d.rules.CategoryRiskScore),
		Metric:      cat.Category + " Sentiment",
		Change:      cat.ChangePercent,
		Timestamp:   d.now(),
	}
}

// SortAlerts returns alerts ordered critical → warning → info, newest first
// within a severity. The input is not modified.
func SortAlerts(alerts []contracts.AnomalyAlert) []contracts.AnomalyAlert {
	out := make([]contracts.AnomalyAlert, len(alerts))
	copy(out, alerts)

	sort.SliceStable(out, func(i, j int) bool {
		ri, rj := out[i].Severity.Rank(), out[j].Severity.Rank()
		if ri != rj {
			return ri < rj
		}
		return out[i].Timestamp.After(out[j].Timestamp)
	})

	return out
}
