package refresh

import (
	"context"
	"fmt"
	"time"

	"github.com/wonny/happiness/internal/contracts"
	"github.com/wonny/happiness/internal/dashboard"
	"github.com/wonny/happiness/internal/sentiment"
	"github.com/wonny/happiness/pkg/logger"
)

// WindowJobName is the registered name of the window refresh job
const WindowJobName = "window_refresh"

// WindowSource produces a fresh daily window of days+1 snapshots
type WindowSource interface {
	Window(days int) ([]contracts.SentimentSnapshot, error)
}

// WindowJob replaces the active window and publishes the rebuilt dashboard
// ⭐ SSOT: 윈도우 교체 → 대시보드 재계산 → 발행은 이 Job에서만
type WindowJob struct {
	source    WindowSource
	store     *sentiment.Store
	builder   *dashboard.Builder
	publisher dashboard.Publisher
	params    contracts.EngineParams
	logger    *logger.Logger
}

// NewWindowJob creates the refresh job
func NewWindowJob(source WindowSource, store *sentiment.Store, builder *dashboard.Builder, publisher dashboard.Publisher, params contracts.EngineParams, log *logger.Logger) *WindowJob {
	return &WindowJob{
		source:    source,
		store:     store,
		builder:   builder,
		publisher: publisher,
		params:    params,
		logger:    log.Component("refresh.window"),
	}
}

// Name returns the job name
func (j *WindowJob) Name() string {
	return WindowJobName
}

// Schedule returns the cron schedule (every refresh interval)
func (j *WindowJob) Schedule() string {
	return fmt.Sprintf("@every %s", j.params.RefreshInterval)
}

// Run executes one refresh. A failed build leaves the new window in place;
// publish failures are logged and do not fail the run.
func (j *WindowJob) Run(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	window, err := j.source.Window(j.params.WindowLength - 1)
	if err != nil {
		return fmt.Errorf("generate window: %w", err)
	}

	if err := j.store.Replace(window); err != nil {
		return fmt.Errorf("replace window: %w", err)
	}

	d, err := j.builder.Build(sentiment.Range30d)
	if err != nil {
		return fmt.Errorf("build dashboard: %w", err)
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	if err := j.publisher.Publish(ctx, d); err != nil {
		j.logger.WithError(err).Warn("Publish dashboard failed")
	}

	j.logger.WithFields(map[string]interface{}{
		"version":         d.Version,
		"happiness_score": d.Overview.HappinessScore,
		"alerts":          len(d.Alerts),
		"window":          len(window),
		"as_of":           d.Overview.AsOf.Format(time.RFC3339),
	}).Debug("Window refreshed")

	return nil
}
