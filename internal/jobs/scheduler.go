package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/jnitin/flask-catalog/internal/config"
)

// Reminder mails accounts that have not confirmed their email yet.
type Reminder interface {
	SendConfirmationReminders(ctx context.Context, now time.Time, after time.Duration) (int, error)
}

type Scheduler struct {
	cron     *cron.Cron
	reminder Reminder
	cfg      config.JobsConfig
	log      zerolog.Logger
	now      func() time.Time
}

func NewScheduler(reminder Reminder, cfg config.JobsConfig, log zerolog.Logger) *Scheduler {
	c := cron.New(cron.WithSeconds())
	return &Scheduler{
		cron:     c,
		reminder: reminder,
		cfg:      cfg,
		log:      log,
		now:      time.Now,
	}
}

// Start registers the jobs and starts the cron loop. An empty reminder spec
// disables the reminder job.
func (s *Scheduler) Start() error {
	if s.cfg.ReminderSpec != "" {
		if _, err := s.cron.AddFunc(s.cfg.ReminderSpec, s.sendReminders); err != nil {
			return fmt.Errorf("schedule reminders %q: %w", s.cfg.ReminderSpec, err)
		}
	}

	s.cron.Start()
	return nil
}

// Stop halts the scheduler and waits up to five seconds for running jobs.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	select {
	case <-ctx.Done():
	case <-time.After(5 * time.Second):
		s.log.Warn().Msg("scheduler stop timed out")
	}
}

func (s *Scheduler) sendReminders() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	sent, err := s.reminder.SendConfirmationReminders(ctx, s.now(), s.cfg.ReminderAfter)
	if err != nil {
		s.log.Error().Err(err).Msg("confirmation reminders failed")
		return
	}
	s.log.Info().Int("sent", sent).Msg("confirmation reminders sent")
}
