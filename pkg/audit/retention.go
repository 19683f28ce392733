package audit

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/smartsupplypro/inventory/pkg/observability"
)

// RetentionPolicy defines how long audit events are kept.
type RetentionPolicy struct {
	// RetentionDays is the number of days to keep audit events.
	RetentionDays int

	// Schedule is the cron expression for the sweep. Defaults to daily
	// at 03:00.
	Schedule string
}

// DefaultRetentionPolicy keeps events for 90 days.
func DefaultRetentionPolicy() RetentionPolicy {
	return RetentionPolicy{
		RetentionDays: 90,
		Schedule:      "0 3 * * *",
	}
}

// Retention runs a scheduled sweep that deletes audit events past the
// retention horizon.
type Retention struct {
	sink   *DBSink
	policy RetentionPolicy
	cron   *cron.Cron
	logger *observability.Logger
}

// NewRetention creates a retention sweeper over the DB sink.
func NewRetention(sink *DBSink, policy RetentionPolicy, logger *observability.Logger) *Retention {
	if policy.RetentionDays <= 0 {
		policy.RetentionDays = DefaultRetentionPolicy().RetentionDays
	}
	if policy.Schedule == "" {
		policy.Schedule = DefaultRetentionPolicy().Schedule
	}
	return &Retention{
		sink:   sink,
		policy: policy,
		cron:   cron.New(),
		logger: logger,
	}
}

// Start schedules the sweep and starts the cron runner.
func (r *Retention) Start() error {
	_, err := r.cron.AddFunc(r.policy.Schedule, func() {
		if err := r.Sweep(context.Background()); err != nil {
			r.logger.WithError(err).Error("audit retention sweep failed")
		}
	})
	if err != nil {
		return fmt.Errorf("failed to schedule audit retention sweep: %w", err)
	}
	r.cron.Start()
	return nil
}

// Stop stops the cron runner and waits for a running sweep to finish.
func (r *Retention) Stop() {
	ctx := r.cron.Stop()
	<-ctx.Done()
}

// Sweep deletes events older than the retention horizon.
func (r *Retention) Sweep(ctx context.Context) error {
	cutoff := time.Now().UTC().AddDate(0, 0, -r.policy.RetentionDays)
	deleted, err := r.sink.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return err
	}
	if deleted > 0 {
		r.logger.WithFields(map[string]interface{}{
			"deleted": deleted,
			"cutoff":  cutoff.Format(time.RFC3339),
		}).Info("audit retention sweep completed")
	}
	return nil
}
