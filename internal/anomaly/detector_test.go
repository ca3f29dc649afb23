package anomaly

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/happiness/internal/contracts"
	"github.com/wonny/happiness/internal/scoring"
	"github.com/wonny/happiness/pkg/logger"
)

var fixedNow = time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)

func newTestDetector() *Detector {
	d := NewDetector(RulesFromParams(contracts.DefaultEngineParams()), scoring.DefaultScorer(), logger.Nop())
	n := 0
	d.newID = func(string) string {
		n++
		return fmt.Sprintf("alert-%d", n)
	}
	d.now = func() time.Time { return fixedNow }
	return d
}

func TestRulesFromParams(t *testing.T) {
	rules := RulesFromParams(contracts.DefaultEngineParams())
	assert.Equal(t, Rules{SigmaMultiplier: 3, SentimentDropPoints: 5, CategoryRiskScore: 50}, rules)
}

func TestDetector_VolumeSpike(t *testing.T) {
	d := newTestDetector()

	eval, err := d.Evaluate(spikeWindow(), nil)
	require.NoError(t, err)
	require.Len(t, eval.Alerts, 1)

	alert := eval.Alerts[0]
	assert.Equal(t, "alert-1", alert.ID)
	assert.Equal(t, contracts.AlertSpike, alert.Type)
	assert.Equal(t, contracts.SeverityCritical, alert.Severity)
	assert.Equal(t, "Total Volume", alert.Metric)
	assert.Greater(t, alert.Change, 0.0)
	assert.Equal(t, spikeWindow()[30].Timestamp, alert.Timestamp)
}

func TestDetector_ScoreDrop(t *testing.T) {
	d := newTestDetector()

	window := []contracts.SentimentSnapshot{
		{Timestamp: fixedNow.AddDate(0, 0, -1), Good: 65, Neutral: 23, Bad: 12, TotalVolume: 5000}, // 77
		{Timestamp: fixedNow, Good: 55, Neutral: 30, Bad: 15, TotalVolume: 5000},                   // 70
	}

	eval, err := d.Evaluate(window, nil)
	require.NoError(t, err)
	require.Len(t, eval.Alerts, 1)

	alert := eval.Alerts[0]
	assert.Equal(t, contracts.AlertDrop, alert.Type)
	assert.Equal(t, contracts.SeverityWarning, alert.Severity)
	assert.Equal(t, -7.0, alert.Change)
	assert.Equal(t, fixedNow, alert.Timestamp)
}

func TestDetector_SmallDropIgnored(t *testing.T) {
	d := newTestDetector()

	window := []contracts.SentimentSnapshot{
		{Good: 65, Neutral: 23, Bad: 12, TotalVolume: 5000}, // 77
		{Good: 58, Neutral: 28, Bad: 14, TotalVolume: 5000}, // 72: exactly 5 points
		{Good: 55, Neutral: 30, Bad: 15, TotalVolume: 5000}, // 70
	}

	eval, err := d.Evaluate(window, nil)
	require.NoError(t, err)
	assert.Empty(t, eval.Alerts)

	eval, err = d.Evaluate(window[:2], nil)
	require.NoError(t, err)
	require.Len(t, eval.Alerts, 1, "a drop of exactly the threshold alerts")
}

func TestDetector_CategoryRisk(t *testing.T) {
	d := newTestDetector()

	categories := []contracts.CategoryInsight{
		{Category: "Pricing", Sentiment: 58, ChangePercent: -8.4},
		{Category: "Billing Issues", Sentiment: 45, ChangePercent: -6.8},
		{Category: "Edge", Sentiment: 50},
	}

	eval, err := d.Evaluate(spikeWindow()[:5], categories)
	require.NoError(t, err)
	require.Len(t, eval.Alerts, 1)

	alert := eval.Alerts[0]
	assert.Equal(t, contracts.AlertAnomaly, alert.Type)
	assert.Equal(t, "Billing Issues Sentiment", alert.Metric)
	assert.Equal(t, -6.8, alert.Change)
	assert.Equal(t, fixedNow, alert.Timestamp)
}

func TestDetector_EmptyWindow(t *testing.T) {
	_, err := newTestDetector().Evaluate(nil, nil)
	assert.ErrorIs(t, err, contracts.ErrEmptyWindow)
}

func TestDetector_DegenerateLatest(t *testing.T) {
	window := []contracts.SentimentSnapshot{
		{Good: 65, Neutral: 23, Bad: 12, TotalVolume: 5000},
		{TotalVolume: 5000},
	}

	_, err := newTestDetector().Evaluate(window, nil)
	assert.ErrorIs(t, err, contracts.ErrDivisionByZero)
}

func TestSortAlerts(t *testing.T) {
	alerts := []contracts.AnomalyAlert{
		{ID: "info-old", Severity: contracts.SeverityInfo, Timestamp: fixedNow.Add(-8 * time.Hour)},
		{ID: "warn", Severity: contracts.SeverityWarning, Timestamp: fixedNow.Add(-2 * time.Hour)},
		{ID: "info-new", Severity: contracts.SeverityInfo, Timestamp: fixedNow.Add(-4 * time.Hour)},
		{ID: "crit", Severity: contracts.SeverityCritical, Timestamp: fixedNow.Add(-30 * time.Minute)},
	}

	sorted := SortAlerts(alerts)

	ids := make([]string, len(sorted))
	for i, a := range sorted {
		ids[i] = a.ID
	}
	assert.Equal(t, []string{"crit", "warn", "info-new", "info-old"}, ids)
	assert.Equal(t, "info-old", alerts[0].ID, "input must not be reordered")
}

func TestAlertID_Stable(t *testing.T) {
	a := alertID("spike|2026-10-19T12:00:00Z")
	b := alertID("spike|2026-10-19T12:00:00Z")
	c := alertID("drop|2026-10-19T12:00:00Z")

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Len(t, a, 36)
}

func TestDetector_RebuildKeepsAlertIDs(t *testing.T) {
	d := NewDetector(RulesFromParams(contracts.DefaultEngineParams()), scoring.DefaultScorer(), logger.Nop())

	first, err := d.Evaluate(spikeWindow(), nil)
	require.NoError(t, err)
	second, err := d.Evaluate(spikeWindow(), nil)
	require.NoError(t, err)

	require.Len(t, first.Alerts, 1)
	assert.Equal(t, first.Alerts[0].ID, second.Alerts[0].ID)
}
