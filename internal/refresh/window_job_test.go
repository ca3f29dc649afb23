package refresh

import (
	"context"
	"errors"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/happiness/internal/anomaly"
	"github.com/wonny/happiness/internal/contracts"
	"github.com/wonny/happiness/internal/dashboard"
	"github.com/wonny/happiness/internal/generator"
	"github.com/wonny/happiness/internal/reference"
	"github.com/wonny/happiness/internal/scoring"
	"github.com/wonny/happiness/internal/sentiment"
	"github.com/wonny/happiness/pkg/logger"
)

var fixedNow = time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)

type failingSource struct{}

func (failingSource) Window(int) ([]contracts.SentimentSnapshot, error) {
	return nil, errors.New("source down")
}

func newWindowJob(t *testing.T, source WindowSource, pub dashboard.Publisher) (*WindowJob, *sentiment.Store) {
	t.Helper()

	ds, err := reference.Default(fixedNow)
	require.NoError(t, err)

	params := contracts.DefaultEngineParams()
	store := sentiment.NewStore()
	scorer := scoring.NewScorer(params.Weights)
	detector := anomaly.NewDetector(anomaly.RulesFromParams(params), scorer, logger.Nop())
	builder := dashboard.NewBuilder(store, ds.Data, scorer, detector, logger.Nop())

	return NewWindowJob(source, store, builder, pub, params, logger.Nop()), store
}

func seededSource() WindowSource {
	return generator.NewWithSource(rand.New(rand.NewPCG(3, 4)), func() time.Time { return fixedNow })
}

func TestWindowJob_Run(t *testing.T) {
	var latest dashboard.Latest
	job, store := newWindowJob(t, seededSource(), &latest)

	assert.Equal(t, WindowJobName, job.Name())
	assert.Equal(t, "@every 30s", job.Schedule())

	require.NoError(t, job.Run(context.Background()))
	assert.Equal(t, 31, store.Len())
	assert.Equal(t, uint64(1), store.Version())

	d := latest.Get()
	require.NotNil(t, d)
	assert.Equal(t, uint64(1), d.Version)
	assert.Len(t, d.Trend, 31)
	assert.Equal(t, fixedNow, d.Overview.AsOf)

	require.NoError(t, job.Run(context.Background()))
	assert.Equal(t, uint64(2), latest.Get().Version)
}

func TestWindowJob_SourceFailureKeepsWindow(t *testing.T) {
	var latest dashboard.Latest
	job, store := newWindowJob(t, failingSource{}, &latest)

	err := job.Run(context.Background())
	assert.Error(t, err)
	assert.Equal(t, uint64(0), store.Version())
	assert.Nil(t, latest.Get())
}

func TestWindowJob_PublishFailureIsNotFatal(t *testing.T) {
	pub := dashboard.PublisherFunc(func(context.Context, *contracts.Dashboard) error {
		return errors.New("redis down")
	})
	job, store := newWindowJob(t, seededSource(), pub)

	require.NoError(t, job.Run(context.Background()))
	assert.Equal(t, uint64(1), store.Version())
}

func TestWindowJob_CancelledContext(t *testing.T) {
	var latest dashboard.Latest
	job, store := newWindowJob(t, seededSource(), &latest)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, job.Run(ctx), context.Canceled)
	assert.Equal(t, uint64(0), store.Version())
}

func TestWindowJob_ThroughScheduler(t *testing.T) {
	var latest dashboard.Latest
	job, _ := newWindowJob(t, seededSource(), &latest)

	s := New(logger.Nop())
	defer s.Stop()
	require.NoError(t, s.AddJob(job))

	result, ok, err := s.RunNow(context.Background(), WindowJobName)
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, result.Success, result.Error)
	assert.NotNil(t, latest.Get())
}
