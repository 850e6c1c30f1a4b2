package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron"

	"gazette/internal/config"
	"gazette/internal/logger"
)

const dailyJobTag = "daily-ingest"

// Scheduler runs the current business day on a cron expression.
type Scheduler struct {
	scheduler      *gocron.Scheduler
	runner         *Runner
	log            *logger.Logger
	location       *time.Location
	ctx            context.Context
	cancel         context.CancelFunc
	now            func() time.Time
	fetchDocuments bool
}

// NewScheduler registers the daily job described by cfg. Overlapping runs
// are skipped.
func NewScheduler(cfg config.ScheduleConfig, runner *Runner, log *logger.Logger) (*Scheduler, error) {
	location := time.UTC

	if cfg.Timezone != "" {
		loc, err := time.LoadLocation(cfg.Timezone)
		if err != nil {
			return nil, fmt.Errorf("invalid schedule timezone %q: %w", cfg.Timezone, err)
		}

		location = loc
	}

	if log == nil {
		log = logger.Discard()
	}

	ctx, cancel := context.WithCancel(context.Background())

	s := &Scheduler{
		scheduler:      gocron.NewScheduler(location),
		runner:         runner,
		log:            log,
		location:       location,
		ctx:            ctx,
		cancel:         cancel,
		now:            time.Now,
		fetchDocuments: cfg.FetchDocuments,
	}

	s.scheduler.TagsUnique()
	s.scheduler.SingletonModeAll()

	if _, err := s.scheduler.Cron(cfg.Cron).Tag(dailyJobTag).Do(s.runToday); err != nil {
		cancel()

		return nil, fmt.Errorf("schedule %q: %w", cfg.Cron, err)
	}

	return s, nil
}

// Start starts the scheduler in the background.
func (s *Scheduler) Start() {
	s.scheduler.StartAsync()
}

// Stop stops the scheduler and cancels a run in progress between dates.
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
	s.cancel()
}

// NextRun returns when the daily job fires next.
func (s *Scheduler) NextRun() time.Time {
	_, next := s.scheduler.NextRun()

	return next
}

// RunOnce ingests today's gazette in the scheduler's timezone.
func (s *Scheduler) RunOnce(ctx context.Context) (*Report, error) {
	today := s.now().In(s.location)

	return s.runner.Run(ctx, Options{
		From:           today,
		To:             today,
		FetchDocuments: s.fetchDocuments,
	})
}

func (s *Scheduler) runToday() error {
	report, err := s.RunOnce(s.ctx)
	if err != nil {
		s.log.Error("scheduled run failed", "error", err)

		return err
	}

	s.log.Info("scheduled run complete",
		"run_id", report.RunID,
		"announcements", report.Announcements.Total(),
		"articles", report.Articles.Total(),
		"failed_dates", len(report.FailedDates))

	return nil
}
