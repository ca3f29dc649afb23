package metrics

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/happiness/internal/contracts"
)

func TestObserveRefresh(t *testing.T) {
	m := New()

	m.ObserveRefresh("schedule", nil, 10*time.Millisecond)
	m.ObserveRefresh("schedule", nil, 10*time.Millisecond)
	m.ObserveRefresh("manual", errors.New("boom"), time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Refreshes.WithLabelValues("schedule", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Refreshes.WithLabelValues("manual", "error")))
	assert.Greater(t, testutil.ToFloat64(m.RefreshLastRun), 0.0)
}

func TestPublish(t *testing.T) {
	m := New()

	d := &contracts.Dashboard{
		Version:  4,
		Overview: contracts.Overview{HappinessScore: 72, ScoreChange: -5, TotalVolume: 5000},
		Volume:   contracts.VolumeView{Stats: contracts.VolumeStats{UpperThreshold: 18983.77}},
		Alerts: []contracts.AnomalyAlert{
			{Severity: contracts.SeverityCritical},
			{Severity: contracts.SeverityWarning},
			{Severity: contracts.SeverityWarning},
		},
		IntegrityWarnings: []contracts.IntegrityWarning{{Subject: "Store Experience"}},
	}

	require.NoError(t, m.Publish(context.Background(), d))

	assert.Equal(t, 72.0, testutil.ToFloat64(m.HappinessScore))
	assert.Equal(t, -5.0, testutil.ToFloat64(m.ScoreChange))
	assert.Equal(t, 4.0, testutil.ToFloat64(m.WindowVersion))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Warnings))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Alerts.WithLabelValues("critical")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.Alerts.WithLabelValues("warning")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.Alerts.WithLabelValues("info")))
}

func TestHandler(t *testing.T) {
	m := New()
	m.Coalesced.Inc()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "happiness_refresh_coalesced_total 1"))
}

func TestObserveCounters(t *testing.T) {
	m := New()

	m.ObserveCoalesced()
	m.ObserveCoalesced()
	m.ObserveRateLimited()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Coalesced))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ManualRejected))
}
