package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/spec-kit/repair-ticket-service/internal/config"
	"github.com/spec-kit/repair-ticket-service/internal/domain"
	"github.com/spec-kit/repair-ticket-service/internal/events"
)

// OverdueSource lists tickets waiting for pickup and accepts the resulting events.
type OverdueSource interface {
	OverduePickups(ctx context.Context, cutoff time.Time) ([]domain.Ticket, error)
	Publish(ctx context.Context, event events.Event)
}

// PickupReminder flags repaired devices that have not been collected.
type PickupReminder struct {
	source OverdueSource
	cfg    config.ReminderConfig
	logger *zap.Logger
	now    func() time.Time
	cron   *cron.Cron
}

func NewPickupReminder(source OverdueSource, cfg config.ReminderConfig, loc *time.Location, logger *zap.Logger) *PickupReminder {
	if loc == nil {
		loc = time.UTC
	}
	return &PickupReminder{
		source: source,
		cfg:    cfg,
		logger: logger,
		now:    time.Now,
		cron:   cron.New(cron.WithLocation(loc)),
	}
}

// Start schedules the job. It is a no-op when reminders are disabled.
func (r *PickupReminder) Start() error {
	if !r.cfg.Enabled {
		r.logger.Info("pickup reminder disabled")
		return nil
	}
	schedule := r.cfg.Schedule
	if schedule == "" {
		schedule = "@daily"
	}
	if _, err := r.cron.AddFunc(schedule, func() {
		if _, err := r.RunOnce(context.Background()); err != nil {
			r.logger.Error("pickup reminder run failed", zap.Error(err))
		}
	}); err != nil {
		return fmt.Errorf("schedule pickup reminder %q: %w", schedule, err)
	}
	r.cron.Start()
	r.logger.Info("pickup reminder scheduled",
		zap.String("schedule", schedule),
		zap.Int("pickup_days", r.cfg.PickupDays))
	return nil
}

// Stop waits for a running job to finish.
func (r *PickupReminder) Stop() {
	<-r.cron.Stop().Done()
}

// RunOnce publishes an overdue event per ticket and returns how many it found.
func (r *PickupReminder) RunOnce(ctx context.Context) (int, error) {
	days := r.cfg.PickupDays
	if days <= 0 {
		days = 45
	}
	now := r.now()
	tickets, err := r.source.OverduePickups(ctx, now.AddDate(0, 0, -days))
	if err != nil {
		return 0, err
	}
	for i := range tickets {
		t := &tickets[i]
		r.source.Publish(ctx, events.New(events.EventTicketPickupOverdue, t, now, events.TicketPickupOverduePayload{
			CustomerName: t.CustomerName,
			Phone:        t.Phone,
			ReadySince:   t.UpdatedAt,
			DaysWaiting:  int(now.Sub(t.UpdatedAt).Hours() / 24),
		}))
	}
	if len(tickets) > 0 {
		r.logger.Info("overdue pickups flagged", zap.Int("count", len(tickets)))
	}
	return len(tickets), nil
}
