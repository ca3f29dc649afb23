package refresh

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/wonny/happiness/pkg/logger"
)

var (
	// ErrJobNotFound is returned for an unknown job name
	ErrJobNotFound = errors.New("job not found")

	// ErrRateLimited is returned when a manual trigger exceeds its budget
	ErrRateLimited = errors.New("refresh rate limited")

	// ErrStopped is returned for triggers after Stop
	ErrStopped = errors.New("scheduler stopped")
)

// Observer receives refresh outcomes
type Observer interface {
	ObserveRefresh(trigger string, err error, duration time.Duration)
	ObserveCoalesced()
	ObserveRateLimited()
}

type nopObserver struct{}

func (nopObserver) ObserveRefresh(string, error, time.Duration) {}
func (nopObserver) ObserveCoalesced()                           {}
func (nopObserver) ObserveRateLimited()                         {}

// entry is one registered job with its single-flight guard
type entry struct {
	job     Job
	running atomic.Bool
	history JobHistory
}

// Scheduler runs jobs on their cron schedule and on demand. At most one run per
// job is in flight; overlapping triggers are dropped, never queued.
// ⭐ SSOT: 스케줄 관리는 이 스케줄러에서만
type Scheduler struct {
	cron     *cron.Cron
	logger   *logger.Logger
	limiter  Limiter
	observer Observer

	mu   sync.RWMutex
	jobs map[string]*entry

	coalesced   atomic.Uint64
	rateLimited atomic.Uint64

	// 실행 컨텍스트: Stop 시 진행 중인 작업 취소
	runCtx    context.Context
	cancelRun context.CancelFunc
	wg        sync.WaitGroup
	stopOnce  sync.Once

	// runMu 아래에서만 wg.Add / stopped 변경: Stop의 wg.Wait와 겹치지 않음
	runMu   sync.Mutex
	stopped bool

	// Retry configuration
	maxRetries int
	retryDelay time.Duration
}

// Option configures a Scheduler
type Option func(*Scheduler)

// WithLimiter sets the manual trigger limiter
func WithLimiter(l Limiter) Option {
	return func(s *Scheduler) { s.limiter = l }
}

// WithObserver sets the outcome observer
func WithObserver(o Observer) Option {
	return func(s *Scheduler) { s.observer = o }
}

// WithRetries sets the retry policy for failed runs
func WithRetries(maxRetries int, delay time.Duration) Option {
	return func(s *Scheduler) {
		s.maxRetries = maxRetries
		s.retryDelay = delay
	}
}

// New creates a new scheduler
func New(log *logger.Logger, opts ...Option) *Scheduler {
	log = log.Component("refresh.scheduler")
	runCtx, cancel := context.WithCancel(context.Background())

	s := &Scheduler{
		logger:    log,
		limiter:   Unlimited{},
		observer:  nopObserver{},
		jobs:      make(map[string]*entry),
		runCtx:    runCtx,
		cancelRun: cancel,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.cron = cron.New(
		cron.WithSeconds(),
		cron.WithLogger(cronLogger{log: log}),
		cron.WithChain(cron.Recover(cronLogger{log: log})),
	)

	return s
}

// AddJob adds a job to the scheduler
func (s *Scheduler) AddJob(job Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	jobName := job.Name()

	if _, exists := s.jobs[jobName]; exists {
		return fmt.Errorf("job %s already exists", jobName)
	}

	e := &entry{job: job}

	// SkipIfStillRunning: cron 자체도 겹치는 tick을 버림
	wrapped := cron.NewChain(cron.SkipIfStillRunning(cronLogger{log: s.logger})).
		Then(cron.FuncJob(func() {
			s.dispatch(e, TriggerSchedule)
		}))

	if _, err := s.cron.AddJob(job.Schedule(), wrapped); err != nil {
		return fmt.Errorf("failed to schedule job %s: %w", jobName, err)
	}

	s.jobs[jobName] = e

	s.logger.WithFields(map[string]interface{}{
		"job":      jobName,
		"schedule": job.Schedule(),
	}).Info("Job added to scheduler")

	return nil
}

// Start starts the scheduler; it stops when ctx is cancelled
func (s *Scheduler) Start(ctx context.Context) {
	s.logger.Info("Starting scheduler")
	s.cron.Start()

	go func() {
		select {
		case <-ctx.Done():
			s.Stop()
		case <-s.runCtx.Done():
		}
	}()
}

// Stop stops the schedule, cancels in-flight runs and waits for them
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() {
		s.logger.Info("Stopping scheduler")

		s.runMu.Lock()
		s.stopped = true
		s.runMu.Unlock()

		cronCtx := s.cron.Stop()
		s.cancelRun()
		<-cronCtx.Done()
		s.wg.Wait()
		s.logger.Info("Scheduler stopped")
	})
}

// Trigger starts a manual run in the background. It returns false when a run
// is already in flight (the request is coalesced) and ErrRateLimited when the
// limiter rejects it.
func (s *Scheduler) Trigger(ctx context.Context, jobName string) (bool, error) {
	e, err := s.entry(jobName)
	if err != nil {
		return false, err
	}

	if s.runCtx.Err() != nil {
		return false, ErrStopped
	}

	if !s.limiter.Allow(ctx) {
		s.rateLimited.Add(1)
		s.observer.ObserveRateLimited()
		s.logger.WithField("job", jobName).Warn("Manual refresh rate limited")
		return false, ErrRateLimited
	}

	if !e.running.CompareAndSwap(false, true) {
		s.markCoalesced(jobName, TriggerManual)
		return false, nil
	}

	if !s.track() {
		e.running.Store(false)
		return false, ErrStopped
	}
	go func() {
		defer s.wg.Done()
		defer e.running.Store(false)
		s.execute(s.runCtx, e, TriggerManual)
	}()

	return true, nil
}

// RunNow runs a job synchronously. ok is false when a run was already in flight;
// ErrStopped is returned once Stop has begun.
func (s *Scheduler) RunNow(ctx context.Context, jobName string) (result JobResult, ok bool, err error) {
	e, err := s.entry(jobName)
	if err != nil {
		return JobResult{}, false, err
	}

	if !e.running.CompareAndSwap(false, true) {
		s.markCoalesced(jobName, TriggerManual)
		return JobResult{}, false, nil
	}
	defer e.running.Store(false)

	if !s.track() {
		return JobResult{}, false, ErrStopped
	}
	defer s.wg.Done()

	return s.execute(ctx, e, TriggerManual), true, nil
}

// Running reports whether a run of the job is in flight
func (s *Scheduler) Running(jobName string) bool {
	e, err := s.entry(jobName)
	if err != nil {
		return false
	}
	return e.running.Load()
}

// dispatch is the scheduled entry point
func (s *Scheduler) dispatch(e *entry, trigger Trigger) {
	if !e.running.CompareAndSwap(false, true) {
		s.markCoalesced(e.job.Name(), trigger)
		return
	}
	defer e.running.Store(false)

	if !s.track() {
		return
	}
	defer s.wg.Done()

	s.execute(s.runCtx, e, trigger)
}

// track registers a run with the wait group unless Stop has begun
func (s *Scheduler) track() bool {
	s.runMu.Lock()
	defer s.runMu.Unlock()

	if s.stopped {
		return false
	}
	s.wg.Add(1)
	return true
}

func (s *Scheduler) markCoalesced(jobName string, trigger Trigger) {
	s.coalesced.Add(1)
	s.observer.ObserveCoalesced()
	s.logger.WithFields(map[string]interface{}{
		"job":     jobName,
		"trigger": trigger,
	}).Debug("Refresh already in flight, dropped")
}

// execute runs a job with retry logic and records the outcome
func (s *Scheduler) execute(ctx context.Context, e *entry, trigger Trigger) JobResult {
	jobName := e.job.Name()
	startTime := time.Now()

	s.logger.WithFields(map[string]interface{}{
		"job":     jobName,
		"trigger": trigger,
	}).Debug("Job started")

	var lastErr error
	var success bool

	for attempt := 0; attempt <= s.maxRetries; attempt++ {
		err := e.job.Run(ctx)
		if err == nil {
			success = true
			break
		}

		lastErr = err
		if attempt == s.maxRetries || ctx.Err() != nil {
			break
		}

		s.logger.WithFields(map[string]interface{}{
			"job":     jobName,
			"attempt": attempt + 1,
			"error":   err.Error(),
		}).Warn("Job execution failed, retrying")

		select {
		case <-ctx.Done():
		case <-time.After(s.retryDelay):
		}
	}

	endTime := time.Now()
	duration := endTime.Sub(startTime)

	result := JobResult{
		JobName:   jobName,
		Trigger:   trigger,
		StartTime: startTime,
		EndTime:   endTime,
		Duration:  duration,
		Success:   success,
	}
	if !success && lastErr != nil {
		result.Error = lastErr.Error()
	}

	s.mu.Lock()
	e.history.AddResult(result)
	s.mu.Unlock()

	s.observer.ObserveRefresh(string(trigger), lastErrIf(success, lastErr), duration)

	if success {
		s.logger.WithFields(map[string]interface{}{
			"job":      jobName,
			"trigger":  trigger,
			"duration": duration,
		}).Info("Job completed successfully")
	} else {
		s.logger.WithFields(map[string]interface{}{
			"job":      jobName,
			"trigger":  trigger,
			"duration": duration,
			"error":    result.Error,
		}).Error("Job failed")
	}

	return result
}

func lastErrIf(success bool, err error) error {
	if success {
		return nil
	}
	return err
}

func (s *Scheduler) entry(jobName string) (*entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, exists := s.jobs[jobName]
	if !exists {
		return nil, fmt.Errorf("job %s: %w", jobName, ErrJobNotFound)
	}
	return e, nil
}

// GetJobHistory returns the latest n results of a job
func (s *Scheduler) GetJobHistory(jobName string, n int) ([]JobResult, error) {
	e, err := s.entry(jobName)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	return e.history.GetLatestResults(n), nil
}

// GetAllJobs returns all registered job names, sorted
func (s *Scheduler) GetAllJobs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	jobs := make([]string, 0, len(s.jobs))
	for jobName := range s.jobs {
		jobs = append(jobs, jobName)
	}
	sort.Strings(jobs)

	return jobs
}

// GetJobStats returns statistics for all jobs
func (s *Scheduler) GetJobStats() map[string]JobStats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := make(map[string]JobStats, len(s.jobs))

	for jobName, e := range s.jobs {
		history := &e.history
		failedResults := history.GetFailedResults()

		var lastRun, lastSuccess, lastFailure *time.Time
		for i := len(history.Results) - 1; i >= 0; i-- {
			r := history.Results[i]
			if lastRun == nil {
				t := r.StartTime
				lastRun = &t
			}
			if r.Success && lastSuccess == nil {
				t := r.StartTime
				lastSuccess = &t
			}
			if !r.Success && lastFailure == nil {
				t := r.StartTime
				lastFailure = &t
			}
		}

		stats[jobName] = JobStats{
			JobName:      jobName,
			Schedule:     e.job.Schedule(),
			Running:      e.running.Load(),
			TotalRuns:    len(history.Results),
			SuccessCount: len(history.Results) - len(failedResults),
			FailureCount: len(failedResults),
			SuccessRate:  history.GetSuccessRate(),
			LastRun:      lastRun,
			LastSuccess:  lastSuccess,
			LastFailure:  lastFailure,
		}
	}

	return stats
}

// Coalesced returns how many triggers were dropped because a run was in flight
func (s *Scheduler) Coalesced() uint64 {
	return s.coalesced.Load()
}

// RateLimited returns how many manual triggers the limiter rejected
func (s *Scheduler) RateLimited() uint64 {
	return s.rateLimited.Load()
}

// JobStats represents statistics for a job
type JobStats struct {
	JobName      string     `json:"job_name"`
	Schedule     string     `json:"schedule"`
	Running      bool       `json:"running"`
	TotalRuns    int        `json:"total_runs"`
	SuccessCount int        `json:"success_count"`
	FailureCount int        `json:"failure_count"`
	SuccessRate  float64    `json:"success_rate"`
	LastRun      *time.Time `json:"last_run,omitempty"`
	LastSuccess  *time.Time `json:"last_success,omitempty"`
	LastFailure  *time.Time `json:"last_failure,omitempty"`
}

// cronLogger adapts the logger to cron.Logger
type cronLogger struct {
	log *logger.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.WithFields(kv(keysAndValues)).Debug("cron: " + msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.WithError(err).WithFields(kv(keysAndValues)).Error("cron: " + msg)
}

func kv(keysAndValues []interface{}) map[string]interface{} {
	fields := make(map[string]interface{}, len(keysAndValues)/2)
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		fields[fmt.Sprint(keysAndValues[i])] = keysAndValues[i+1]
	}
	return fields
}
