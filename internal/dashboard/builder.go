package dashboard

import (
	"fmt"
	"time"

	"github.com/wonny/happiness/internal/anomaly"
	"github.com/wonny/happiness/internal/contracts"
	"github.com/wonny/happiness/internal/insight"
	"github.com/wonny/happiness/internal/scoring"
	"github.com/wonny/happiness/internal/sentiment"
	"github.com/wonny/happiness/internal/social"
	"github.com/wonny/happiness/internal/trend"
	"github.com/wonny/happiness/pkg/logger"
)

// Builder composes the active window and the reference data into one
// immutable Dashboard
// ⭐ SSOT: 대시보드 파생값은 여기서만 조립
type Builder struct {
	store      *sentiment.Store
	ref        *contracts.ReferenceData
	scorer     *scoring.Scorer
	calculator *trend.Calculator
	detector   *anomaly.Detector
	warnings   []contracts.IntegrityWarning // reference data is static, checked once
	log        *logger.Logger
	now        func() time.Time
}

// NewBuilder creates a dashboard builder
func NewBuilder(store *sentiment.Store, ref *contracts.ReferenceData, scorer *scoring.Scorer, detector *anomaly.Detector, log *logger.Logger) *Builder {
	b := &Builder{
		store:      store,
		ref:        ref,
		scorer:     scorer,
		calculator: trend.NewCalculator(scorer),
		detector:   detector,
		warnings:   trend.CheckCategories(ref.Categories),
		log:        log.Component("dashboard.builder"),
		now:        time.Now,
	}

	// 참조 데이터는 로드 후 불변이므로 경고는 한 번만 기록
	for _, w := range b.warnings {
		b.log.WithFields(map[string]interface{}{
			"subject": w.Subject,
			"field":   w.Field,
			"stored":  w.Stored,
			"derived": w.Derived,
		}).Warn("Data integrity warning")
	}

	return b
}

// Warnings returns the integrity warnings of the reference data
func (b *Builder) Warnings() []contracts.IntegrityWarning {
	return append([]contracts.IntegrityWarning(nil), b.warnings...)
}

// Reference returns the reference data the builder reads
func (b *Builder) Reference() *contracts.ReferenceData {
	return b.ref
}

// Build derives the dashboard for a time range. Every window-derived value is
// recomputed from one published window. The range trims the displayed trend and
// volume points only; volume statistics, flags and alerts use the full window.
func (b *Builder) Build(r sentiment.Range) (*contracts.Dashboard, error) {
	window, version, updatedAt := b.store.Snapshot()
	if len(window) < 2 {
		return nil, fmt.Errorf("build dashboard: %w", contracts.ErrEmptyWindow)
	}

	view := sentiment.Tail(window, r.Points())
	latest, previous := view[len(view)-1], view[len(view)-2]

	overview, err := b.overview(latest, previous)
	if err != nil {
		return nil, err
	}

	points, err := b.trendPoints(view)
	if err != nil {
		return nil, err
	}

	// 통계·플래그·알림은 항상 전체 윈도우 기준, range는 표시 구간만 자름
	eval, err := b.detector.Evaluate(window, b.ref.Categories)
	if err != nil {
		return nil, fmt.Errorf("evaluate anomalies: %w", err)
	}
	volume := contracts.VolumeView{
		Stats:  eval.Volume.Stats,
		Points: tailPoints(eval.Volume.Points, len(view)),
	}

	competitors, err := b.competitors(overview.HappinessScore)
	if err != nil {
		return nil, err
	}

	parts, err := insight.Partition(b.ref.Insights)
	if err != nil {
		return nil, err
	}

	positive, err := insight.Rank(b.ref.PositiveInsights, contracts.InsightOpportunity)
	if err != nil {
		return nil, fmt.Errorf("rank positive insights: %w", err)
	}

	alerts := make([]contracts.AnomalyAlert, 0, len(b.ref.Alerts)+len(eval.Alerts))
	alerts = append(alerts, b.ref.Alerts...)
	alerts = append(alerts, eval.Alerts...)

	generatedAt := b.now()
	if generatedAt.Before(updatedAt) {
		generatedAt = updatedAt
	}

	return &contracts.Dashboard{
		Version:           version,
		GeneratedAt:       generatedAt,
		Brand:             b.ref.Brand,
		Overview:          overview,
		Trend:             points,
		Volume:            volume,
		Categories:        append([]contracts.CategoryInsight(nil), b.ref.Categories...),
		IntegrityWarnings: b.Warnings(),
		Competitors:       competitors,
		Risks:             parts.Risks,
		Opportunities:     parts.Opportunities,
		InsightSummary:    insight.Summarize(b.ref.Insights),
		PositiveInsights:  positive,
		Alerts:            anomaly.SortAlerts(alerts),
		Social:            social.Summarize(b.ref.SocialPosts, social.DefaultTopPosts),
	}, nil
}

func tailPoints(points []contracts.VolumePoint, n int) []contracts.VolumePoint {
	if n >= len(points) {
		return points
	}
	return points[len(points)-n:]
}

func (b *Builder) overview(latest, previous contracts.SentimentSnapshot) (contracts.Overview, error) {
	score, err := b.scorer.Score(latest)
	if err != nil {
		return contracts.Overview{}, fmt.Errorf("happiness score: %w", err)
	}

	scoreChange, err := b.calculator.ScoreDelta(latest, previous)
	if err != nil {
		return contracts.Overview{}, fmt.Errorf("score change: %w", err)
	}

	volumeChange, err := trend.VolumeDelta(latest, previous)
	if err != nil {
		return contracts.Overview{}, fmt.Errorf("volume change: %w", err)
	}

	return contracts.Overview{
		HappinessScore: score,
		Label:          scoring.Label(score),
		ScoreChange:    scoreChange,
		Good:           latest.Good,
		Neutral:        latest.Neutral,
		Bad:            latest.Bad,
		TotalVolume:    latest.TotalVolume,
		VolumeChange:   volumeChange,
		AsOf:           latest.Timestamp,
	}, nil
}

func (b *Builder) trendPoints(view []contracts.SentimentSnapshot) ([]contracts.TrendPoint, error) {
	points := make([]contracts.TrendPoint, len(view))
	for i, snap := range view {
		score, err := b.scorer.Score(snap)
		if err != nil {
			return nil, fmt.Errorf("trend point %s: %w", snap.Timestamp.Format(time.RFC3339), err)
		}
		points[i] = contracts.TrendPoint{
			Timestamp: snap.Timestamp,
			Good:      snap.Good,
			Neutral:   snap.Neutral,
			Bad:       snap.Bad,
			Score:     score,
		}
	}
	return points, nil
}

// competitors recomputes each competitor's score from its split. The stored
// score is carried alongside, so display can show both.
func (b *Builder) competitors(brandScore int) ([]contracts.CompetitorView, error) {
	views := make([]contracts.CompetitorView, 0, len(b.ref.Competitors))
	for _, c := range b.ref.Competitors {
		score, err := b.scorer.Recompute(c)
		if err != nil {
			return nil, fmt.Errorf("competitor %s: %w", c.Name, err)
		}
		views = append(views, contracts.CompetitorView{
			Profile:         c,
			RecomputedScore: score,
			GapToBrand:      score - brandScore,
		})
	}
	return views, nil
}
