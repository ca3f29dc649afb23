package api

import (
	"context"
	"encoding/json"
	"math/rand/v2"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/happiness/internal/anomaly"
	"github.com/wonny/happiness/internal/api/handlers"
	"github.com/wonny/happiness/internal/api/stream"
	"github.com/wonny/happiness/internal/contracts"
	"github.com/wonny/happiness/internal/dashboard"
	"github.com/wonny/happiness/internal/generator"
	"github.com/wonny/happiness/internal/metrics"
	"github.com/wonny/happiness/internal/reference"
	"github.com/wonny/happiness/internal/refresh"
	"github.com/wonny/happiness/internal/scoring"
	"github.com/wonny/happiness/internal/sentiment"
	"github.com/wonny/happiness/pkg/logger"
)

// newTestRouter wires the feed the way serve does, minus the listener
func newTestRouter(t *testing.T, prime bool) (http.Handler, *metrics.Metrics) {
	t.Helper()

	now := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	ds, err := reference.Default(now)
	require.NoError(t, err)

	params := contracts.DefaultEngineParams()
	log := logger.Nop()
	m := metrics.New()

	store := sentiment.NewStore()
	scorer := scoring.NewScorer(params.Weights)
	detector := anomaly.NewDetector(anomaly.RulesFromParams(params), scorer, log)
	builder := dashboard.NewBuilder(store, ds.Data, scorer, detector, log)

	var latest dashboard.Latest
	hub := stream.NewHub(log, latest.Get, nil)

	gen := generator.NewWithSource(rand.New(rand.NewPCG(1, 1)), func() time.Time { return now })
	job := refresh.NewWindowJob(gen, store, builder, dashboard.Fanout{&latest, m}, params, log)

	sched := refresh.New(log, refresh.WithObserver(m), refresh.WithLimiter(refresh.NewLocalLimiter(2)))
	require.NoError(t, sched.AddJob(job))
	t.Cleanup(sched.Stop)

	if prime {
		_, ok, err := sched.RunNow(context.Background(), refresh.WindowJobName)
		require.NoError(t, err)
		require.True(t, ok)
	}

	feed := handlers.NewFeedHandler(builder, sched, log)
	return NewRouter(feed, hub, m, log), m
}

func serve(h http.Handler, method, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, target, nil))
	return rec
}

func TestRouter_Health(t *testing.T) {
	r, _ := newTestRouter(t, false)

	rec := serve(r, http.MethodGet, "/health")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
}

func TestRouter_DashboardBeforeFirstRefresh(t *testing.T) {
	r, _ := newTestRouter(t, false)

	rec := serve(r, http.MethodGet, "/api/dashboard")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	// insights only need reference data
	rec = serve(r, http.MethodGet, "/api/insights")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouter_Dashboard(t *testing.T) {
	r, _ := newTestRouter(t, true)

	rec := serve(r, http.MethodGet, "/api/dashboard?range=7d")
	require.Equal(t, http.StatusOK, rec.Code)

	var d contracts.Dashboard
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &d))
	assert.Equal(t, uint64(1), d.Version)
	assert.Len(t, d.Trend, 8)
	assert.Equal(t, "T-Mobile", d.Brand)
}

func TestRouter_RefreshFlow(t *testing.T) {
	r, _ := newTestRouter(t, true)

	rec := serve(r, http.MethodPost, "/api/refresh")
	assert.Equal(t, http.StatusAccepted, rec.Code)

	rec = serve(r, http.MethodGet, "/api/refresh/status")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), refresh.WindowJobName)

	// limiter burst is 2: third manual trigger within the minute is rejected
	serve(r, http.MethodPost, "/api/refresh")
	rec = serve(r, http.MethodPost, "/api/refresh")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}

func TestRouter_MethodNotAllowed(t *testing.T) {
	r, _ := newTestRouter(t, true)

	tests := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/refresh"},
		{http.MethodPost, "/api/dashboard"},
		{http.MethodDelete, "/api/alerts"},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			rec := serve(r, tt.method, tt.path)
			assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
		})
	}

	rec := serve(r, http.MethodGet, "/api/unknown")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRouter_Metrics(t *testing.T) {
	r, _ := newTestRouter(t, true)

	serve(r, http.MethodGet, "/api/alerts")
	rec := serve(r, http.MethodGet, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.True(t, strings.Contains(body, `happiness_http_requests_total{code="200",route="/api/alerts"} 1`), body)
	assert.True(t, strings.Contains(body, "happiness_score "), body)
}

func TestRecoveryMiddleware(t *testing.T) {
	h := recoveryMiddleware(logger.Nop())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rec := serve(h, http.MethodGet, "/")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "Internal server error")
}
