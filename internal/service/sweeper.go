package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

var (
	sweepRunsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "appointments_sweep_runs_total",
		Help: "Number of expiry sweeps executed",
	})
	sweepDeletedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "appointments_sweep_deleted_total",
		Help: "Appointments removed by the expiry sweep",
	})
	sweepFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "appointments_sweep_failures_total",
		Help: "Expiry sweeps that failed",
	})
)

// ExpiredStore deletes appointments before a wall-clock instant.
type ExpiredStore interface {
	DeleteBefore(ctx context.Context, date, tm string) (int64, error)
}

// Sweeper periodically removes appointments whose slot lies in the past.
type Sweeper struct {
	store    ExpiredStore
	schedule string
	now      func() time.Time
	log      *zap.Logger

	mu     sync.Mutex // held for the duration of a sweep
	cron   *cron.Cron
	cancel context.CancelFunc
}

// NewSweeper creates a sweeper running on a standard five-field cron
// expression.  The default fires every minute.
func NewSweeper(store ExpiredStore, schedule string, log *zap.Logger) *Sweeper {
	if schedule == "" {
		schedule = "* * * * *"
	}
	return &Sweeper{
		store:    store,
		schedule: schedule,
		now:      time.Now,
		log:      log.With(zap.String("component", "sweeper")),
	}
}

// RunOnce deletes every appointment dated before today, or today with a
// time before now.  A sweep already in progress yields ErrSweepRunning.
func (s *Sweeper) RunOnce(ctx context.Context) (int64, error) {
	if !s.mu.TryLock() {
		return 0, ErrSweepRunning
	}
	defer s.mu.Unlock()

	now := s.now()
	n, err := s.store.DeleteBefore(ctx, now.Format("2006-01-02"), now.Format("15:04:05"))
	sweepRunsTotal.Inc()
	if err != nil {
		sweepFailuresTotal.Inc()
		return 0, storageErr("sweep", err)
	}
	sweepDeletedTotal.Add(float64(n))
	return n, nil
}

// Start schedules RunOnce.  Errors are logged and never stop later runs.
func (s *Sweeper) Start(ctx context.Context) error {
	runCtx, cancel := context.WithCancel(ctx)
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cronLogger{s.log.Sugar()})))
	_, err := c.AddFunc(s.schedule, func() {
		n, err := s.RunOnce(runCtx)
		switch {
		case err != nil:
			s.log.Error("sweep failed", zap.Error(err))
		case n > 0:
			s.log.Info("expired appointments removed", zap.Int64("deleted", n))
		}
	})
	if err != nil {
		cancel()
		return fmt.Errorf("sweep schedule %q: %w", s.schedule, err)
	}
	s.cron = c
	s.cancel = cancel
	c.Start()
	s.log.Info("sweeper started", zap.String("schedule", s.schedule))
	return nil
}

// Stop cancels the context of a running sweep, then waits for it to
// return and for the schedule to halt.
func (s *Sweeper) Stop() {
	if s.cron == nil {
		return
	}
	s.cancel()
	<-s.cron.Stop().Done()
	s.log.Info("sweeper stopped")
}

// cronLogger adapts zap to cron.Logger.
type cronLogger struct {
	l *zap.SugaredLogger
}

func (c cronLogger) Info(msg string, keysAndValues ...interface{}) {
	c.l.Debugw(msg, keysAndValues...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	c.l.Errorw(msg, append(keysAndValues, "error", err)...)
}
