// Package scheduler runs unattended agent jobs on a cron cadence.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Job is one scheduled task. The context carries a per-run deadline.
type Job func(ctx context.Context) error

// Scheduler manages periodic tasks in a fixed timezone.
type Scheduler struct {
	cron     *cron.Cron
	jobs     map[string]cron.EntryID
	timezone *time.Location
	log      *zap.Logger
}

// New creates a scheduler running in the given timezone.
func New(timezone string, log *zap.Logger) (*Scheduler, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %s: %w", timezone, err)
	}

	return &Scheduler{
		cron:     cron.New(cron.WithLocation(loc)),
		jobs:     make(map[string]cron.EntryID),
		timezone: loc,
		log:      log,
	}, nil
}

// AddJob schedules a job with a cron expression such as "0 */4 * * *".
func (s *Scheduler) AddJob(name, schedule string, job Job) error {
	entryID, err := s.cron.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
		defer cancel()

		s.log.Info("job starting", zap.String("job", name))
		start := time.Now()

		if err := job(ctx); err != nil {
			s.log.Error("job failed", zap.String("job", name), zap.Error(err))
			return
		}
		s.log.Info("job completed",
			zap.String("job", name), zap.Duration("took", time.Since(start)))
	})
	if err != nil {
		return fmt.Errorf("schedule job %s: %w", name, err)
	}

	s.jobs[name] = entryID
	s.log.Info("job added", zap.String("job", name), zap.String("schedule", schedule))
	return nil
}

// AddCommentJob schedules the comment run every intervalHours hours.
func (s *Scheduler) AddCommentJob(intervalHours int, job Job) error {
	if intervalHours <= 0 {
		intervalHours = 4
	}
	return s.AddJob("comments", fmt.Sprintf("0 */%d * * *", intervalHours), job)
}

// RemoveJob unschedules a job by name.
func (s *Scheduler) RemoveJob(name string) {
	if entryID, ok := s.jobs[name]; ok {
		s.cron.Remove(entryID)
		delete(s.jobs, name)
		s.log.Info("job removed", zap.String("job", name))
	}
}

// Start begins running scheduled jobs.
func (s *Scheduler) Start() {
	s.log.Info("scheduler starting", zap.String("timezone", s.timezone.String()))
	s.cron.Start()
}

// Stop halts scheduling. The returned context is done once in-flight
// jobs finish.
func (s *Scheduler) Stop() context.Context {
	s.log.Info("scheduler stopping")
	return s.cron.Stop()
}

// JobInfo describes one scheduled job.
type JobInfo struct {
	Name    string
	NextRun time.Time
	LastRun time.Time
}

// Jobs returns the scheduled jobs with their next and previous run
// times.
func (s *Scheduler) Jobs() []JobInfo {
	entries := s.cron.Entries()
	infos := make([]JobInfo, 0, len(entries))
	for name, entryID := range s.jobs {
		for _, entry := range entries {
			if entry.ID == entryID {
				infos = append(infos, JobInfo{
					Name:    name,
					NextRun: entry.Next,
					LastRun: entry.Prev,
				})
				break
			}
		}
	}
	return infos
}
