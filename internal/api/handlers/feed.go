package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/wonny/happiness/internal/contracts"
	"github.com/wonny/happiness/internal/insight"
	"github.com/wonny/happiness/internal/refresh"
	"github.com/wonny/happiness/internal/sentiment"
	"github.com/wonny/happiness/pkg/logger"
)

// DashboardBuilder derives dashboards from the active window
type DashboardBuilder interface {
	Build(r sentiment.Range) (*contracts.Dashboard, error)
	Reference() *contracts.ReferenceData
}

// RefreshController triggers and reports refresh runs
type RefreshController interface {
	Trigger(ctx context.Context, jobName string) (bool, error)
	GetJobStats() map[string]refresh.JobStats
	GetJobHistory(jobName string, n int) ([]refresh.JobResult, error)
	Coalesced() uint64
	RateLimited() uint64
}

// FeedHandler serves the read-only dashboard feed
// ⭐ SSOT: 피드 API 핸들러는 이 구조체에서만
type FeedHandler struct {
	builder DashboardBuilder
	refresh RefreshController
	logger  *logger.Logger
}

// NewFeedHandler creates a new feed handler
func NewFeedHandler(builder DashboardBuilder, ctl RefreshController, log *logger.Logger) *FeedHandler {
	return &FeedHandler{
		builder: builder,
		refresh: ctl,
		logger:  log.Component("api.feed"),
	}
}

// build parses ?range= and derives the dashboard, writing the error response
// itself on failure
func (h *FeedHandler) build(w http.ResponseWriter, r *http.Request) (*contracts.Dashboard, bool) {
	rng, err := sentiment.ParseRange(r.URL.Query().Get("range"))
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return nil, false
	}

	d, err := h.builder.Build(rng)
	if err != nil {
		status := statusFor(err)
		if status == http.StatusInternalServerError {
			h.logger.WithError(err).Error("Failed to build dashboard")
		} else {
			h.logger.WithError(err).Warn("Dashboard unavailable")
		}
		respondError(w, status, err.Error())
		return nil, false
	}

	return d, true
}

// GetDashboard returns the full derived dashboard
// GET /api/dashboard?range=24h|7d|30d
func (h *FeedHandler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	d, ok := h.build(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, d)
}

// GetVolume returns the volume chart: full-window statistics, points trimmed to the range
// GET /api/volume?range=
func (h *FeedHandler) GetVolume(w http.ResponseWriter, r *http.Request) {
	d, ok := h.build(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, d.Volume)
}

// GetAlerts returns alerts sorted by severity
// GET /api/alerts?range=
func (h *FeedHandler) GetAlerts(w http.ResponseWriter, r *http.Request) {
	d, ok := h.build(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, d.Alerts)
}

// InsightsResponse is the ranked insight payload
type InsightsResponse struct {
	Risks         []contracts.WeightedInsight `json:"risks,omitempty"`
	Opportunities []contracts.WeightedInsight `json:"opportunities,omitempty"`
	Summary       contracts.InsightSummary    `json:"summary"`
}

// GetInsights returns ranked insights; they depend on reference data only
// GET /api/insights?type=risk|opportunity
func (h *FeedHandler) GetInsights(w http.ResponseWriter, r *http.Request) {
	insights := h.builder.Reference().Insights
	resp := InsightsResponse{Summary: insight.Summarize(insights)}

	switch typ := contracts.InsightType(r.URL.Query().Get("type")); typ {
	case "":
		parts, err := insight.Partition(insights)
		if err != nil {
			respondError(w, statusFor(err), err.Error())
			return
		}
		resp.Risks, resp.Opportunities = parts.Risks, parts.Opportunities

	case contracts.InsightRisk, contracts.InsightOpportunity:
		ranked, err := insight.Rank(insights, typ)
		if err != nil {
			respondError(w, statusFor(err), err.Error())
			return
		}
		if typ == contracts.InsightRisk {
			resp.Risks = ranked
		} else {
			resp.Opportunities = ranked
		}

	default:
		respondError(w, http.StatusBadRequest, "type must be risk or opportunity")
		return
	}

	respondJSON(w, http.StatusOK, resp)
}

// RefreshResponse reports a manual trigger outcome
type RefreshResponse struct {
	Status string `json:"status"` // started|coalesced
}

// PostRefresh triggers a manual refresh
// POST /api/refresh
func (h *FeedHandler) PostRefresh(w http.ResponseWriter, r *http.Request) {
	started, err := h.refresh.Trigger(r.Context(), refresh.WindowJobName)
	switch {
	case errors.Is(err, refresh.ErrRateLimited):
		respondError(w, http.StatusTooManyRequests, "refresh rate limited, try again shortly")
		return
	case errors.Is(err, refresh.ErrStopped):
		respondError(w, http.StatusServiceUnavailable, "refresh scheduler stopped")
		return
	case err != nil:
		h.logger.WithError(err).Error("Failed to trigger refresh")
		respondError(w, http.StatusInternalServerError, "Failed to trigger refresh")
		return
	}

	status := "started"
	if !started {
		status = "coalesced"
	}
	respondJSON(w, http.StatusAccepted, RefreshResponse{Status: status})
}

// RefreshStatus is the refresh scheduler report
type RefreshStatus struct {
	Job         refresh.JobStats    `json:"job"`
	Recent      []refresh.JobResult `json:"recent"`
	Coalesced   uint64              `json:"coalesced"`
	RateLimited uint64              `json:"rate_limited"`
}

// GetRefreshStatus returns refresh statistics and recent runs
// GET /api/refresh/status
func (h *FeedHandler) GetRefreshStatus(w http.ResponseWriter, r *http.Request) {
	stats, ok := h.refresh.GetJobStats()[refresh.WindowJobName]
	if !ok {
		respondError(w, http.StatusNotFound, "refresh job not registered")
		return
	}

	recent, err := h.refresh.GetJobHistory(refresh.WindowJobName, 10)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, RefreshStatus{
		Job:         stats,
		Recent:      recent,
		Coalesced:   h.refresh.Coalesced(),
		RateLimited: h.refresh.RateLimited(),
	})
}
