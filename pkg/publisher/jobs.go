package publisher

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/edgeflare/fakeuser/pkg/metrics"
	"github.com/edgeflare/fakeuser/pkg/user"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var ErrJobNotFound = errors.New("job not found")

// JobState is the lifecycle state of a background job.
type JobState string

const (
	JobRunning   JobState = "running"
	JobCompleted JobState = "completed"
	JobFailed    JobState = "failed"
	JobCanceled  JobState = "canceled"
)

// Job is a snapshot of a background publish run.
type Job struct {
	ID         string     `json:"id"`
	Count      int        `json:"count"`
	Sent       int        `json:"sent"`
	State      JobState   `json:"state"`
	Error      string     `json:"error,omitempty"`
	StartedAt  time.Time  `json:"startedAt"`
	FinishedAt *time.Time `json:"finishedAt,omitempty"`
}

type job struct {
	Job
	cancel context.CancelFunc
}

// Jobs runs publish loops in the background so callers don't block for the
// whole pacing duration. Jobs are interrupted when the parent context ends.
type Jobs struct {
	ctx       context.Context
	pub       *Publisher
	retention time.Duration
	logger    *zap.Logger

	mu   sync.RWMutex
	jobs map[string]*job
	wg   sync.WaitGroup
}

// NewJobs creates a job runner. Finished jobs older than retention are pruned
// when a new job starts; retention <= 0 keeps them forever.
func NewJobs(ctx context.Context, pub *Publisher, retention time.Duration, logger *zap.Logger) *Jobs {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Jobs{
		ctx:       ctx,
		pub:       pub,
		retention: retention,
		logger:    logger,
		jobs:      make(map[string]*job),
	}
}

// Start launches a job publishing count users and returns its initial snapshot.
func (j *Jobs) Start(count int) Job {
	ctx, cancel := context.WithCancel(j.ctx)
	jb := &job{
		Job: Job{
			ID:        uuid.NewString(),
			Count:     count,
			State:     JobRunning,
			StartedAt: time.Now().UTC(),
		},
		cancel: cancel,
	}

	j.mu.Lock()
	j.prune()
	j.jobs[jb.ID] = jb
	snapshot := jb.Job
	j.mu.Unlock()

	metrics.JobsRunning.Inc()
	j.wg.Add(1)
	go j.run(ctx, jb)

	j.logger.Info("job started", zap.String("job_id", jb.ID), zap.Int("count", count))
	return snapshot
}

func (j *Jobs) run(ctx context.Context, jb *job) {
	defer j.wg.Done()
	defer metrics.JobsRunning.Dec()
	defer jb.cancel()

	start := time.Now()
	_, err := j.pub.Run(ctx, jb.Count, func(user.User) {
		j.mu.Lock()
		jb.Sent++
		j.mu.Unlock()
	})

	outcome := "success"
	j.mu.Lock()
	now := time.Now().UTC()
	jb.FinishedAt = &now
	switch {
	case err == nil:
		jb.State = JobCompleted
	case errors.Is(err, ErrInterrupted):
		jb.State = JobCanceled
		jb.Error = err.Error()
		outcome = "interrupted"
	default:
		jb.State = JobFailed
		jb.Error = err.Error()
		outcome = "error"
	}
	snapshot := jb.Job
	j.mu.Unlock()

	metrics.TriggerDuration.WithLabelValues("job", outcome).Observe(time.Since(start).Seconds())
	j.logger.Info("job finished",
		zap.String("job_id", snapshot.ID),
		zap.String("state", string(snapshot.State)),
		zap.Int("sent", snapshot.Sent),
		zap.Int("count", snapshot.Count),
		zap.Error(err))
}

// Get returns the current snapshot of job id.
func (j *Jobs) Get(id string) (Job, error) {
	j.mu.RLock()
	defer j.mu.RUnlock()

	jb, ok := j.jobs[id]
	if !ok {
		return Job{}, ErrJobNotFound
	}
	return jb.Job, nil
}

// List returns all known jobs, newest first.
func (j *Jobs) List() []Job {
	j.mu.RLock()
	out := make([]Job, 0, len(j.jobs))
	for _, jb := range j.jobs {
		out = append(out, jb.Job)
	}
	j.mu.RUnlock()

	sort.Slice(out, func(a, b int) bool { return out[a].StartedAt.After(out[b].StartedAt) })
	return out
}

// Cancel interrupts job id. Canceling a finished job is a no-op.
func (j *Jobs) Cancel(id string) (Job, error) {
	j.mu.RLock()
	jb, ok := j.jobs[id]
	j.mu.RUnlock()
	if !ok {
		return Job{}, ErrJobNotFound
	}

	jb.cancel()
	return j.Get(id)
}

// Wait blocks until all running jobs have returned.
func (j *Jobs) Wait() {
	j.wg.Wait()
}

// prune drops finished jobs past retention. Callers hold j.mu.
func (j *Jobs) prune() {
	if j.retention <= 0 {
		return
	}
	cutoff := time.Now().Add(-j.retention)
	for id, jb := range j.jobs {
		if jb.FinishedAt != nil && jb.FinishedAt.Before(cutoff) {
			delete(j.jobs, id)
		}
	}
}
