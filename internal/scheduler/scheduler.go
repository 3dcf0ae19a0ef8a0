// Package scheduler runs recurring HR jobs on cron schedules.
package scheduler

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Func is the body of a scheduled job.
type Func func(ctx context.Context) error

type job struct {
	name     string
	spec     string
	fn       Func
	schedule cron.Schedule
	entry    cron.EntryID
}

// Service schedules named jobs. Runs of the same job never overlap: a tick that
// fires while the previous run is still going is skipped.
type Service struct {
	mu     sync.Mutex
	cron   *cron.Cron
	jobs   map[string]*job
	logger *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc
}

func New(log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("scheduler")
	cl := cronLogger{log.Sugar()}
	return &Service{
		cron: cron.New(
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		jobs:   make(map[string]*job),
		logger: log,
		ctx:    context.Background(),
	}
}

// Register adds a job with a standard five-field cron spec (descriptors such
// as "@weekly" are accepted). Registering an existing name replaces the job.
func (s *Service) Register(name, spec string, fn Func) error {
	if name == "" {
		return fmt.Errorf("job name is required")
	}
	if fn == nil {
		return fmt.Errorf("job %s has no function", name)
	}
	schedule, err := cron.ParseStandard(spec)
	if err != nil {
		return fmt.Errorf("invalid cron expression for %s: %w", name, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if old, ok := s.jobs[name]; ok {
		s.cron.Remove(old.entry)
	}
	j := &job{name: name, spec: spec, fn: fn, schedule: schedule}
	j.entry = s.cron.Schedule(schedule, cron.FuncJob(func() { s.execute(j) }))
	s.jobs[name] = j

	s.logger.Info("job scheduled", zap.String("job", name), zap.String("schedule", spec))
	return nil
}

// Start begins running jobs. Each run gets a context derived from ctx; the
// context is cancelled by Stop.
func (s *Service) Start(ctx context.Context) {
	s.mu.Lock()
	s.ctx, s.cancel = context.WithCancel(ctx)
	s.mu.Unlock()

	s.cron.Start()
	s.logger.Info("scheduler started", zap.Int("jobs", len(s.Jobs())))
}

// Stop cancels running jobs and waits for them to return.
func (s *Service) Stop() {
	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	s.mu.Unlock()

	<-s.cron.Stop().Done()
	s.logger.Info("scheduler stopped")
}

// RunNow runs a job synchronously, outside its schedule.
func (s *Service) RunNow(ctx context.Context, name string) error {
	s.mu.Lock()
	j, ok := s.jobs[name]
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("unknown job %q", name)
	}
	return s.run(ctx, j)
}

// Next reports the next activation of a job after t.
func (s *Service) Next(name string, t time.Time) (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.jobs[name]
	if !ok {
		return time.Time{}, false
	}
	return j.schedule.Next(t), true
}

// Jobs returns registered job names in order.
func (s *Service) Jobs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, 0, len(s.jobs))
	for name := range s.jobs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (s *Service) execute(j *job) {
	s.mu.Lock()
	ctx := s.ctx
	s.mu.Unlock()
	_ = s.run(ctx, j)
}

func (s *Service) run(ctx context.Context, j *job) error {
	log := s.logger.With(zap.String("job", j.name))
	log.Info("job started")
	start := time.Now()

	if err := j.fn(ctx); err != nil {
		log.Error("job failed", zap.Error(err), zap.Duration("took", time.Since(start)))
		return fmt.Errorf("job %s: %w", j.name, err)
	}
	log.Info("job finished", zap.Duration("took", time.Since(start)))
	return nil
}

// cronLogger routes cron's own messages to zap.
type cronLogger struct {
	s *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.s.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.s.Errorw(msg, append(keysAndValues, "error", err)...)
}
