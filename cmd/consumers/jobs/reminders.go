package jobs

import (
	"context"
	"sync"
	"time"

	"salonbook/internal/logger"
)

// ReminderSender sends reminders for appointments falling due
type ReminderSender interface {
	SendDue(ctx context.Context, now time.Time) (int, error)
}

// ReminderJob periodically reminds customers of tomorrow's confirmed appointments
type ReminderJob struct {
	sender   ReminderSender
	interval time.Duration
	ticker   *time.Ticker
	done     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

func NewReminderJob(sender ReminderSender, interval time.Duration) *ReminderJob {
	if interval <= 0 {
		interval = time.Hour
	}
	return &ReminderJob{
		sender:   sender,
		interval: interval,
		done:     make(chan struct{}),
	}
}

// Start runs one pass immediately and then one per interval until Stop or ctx is done
func (j *ReminderJob) Start(ctx context.Context) {
	logger.Get().Info("Starting reminder job", "check_interval", j.interval)

	j.ticker = time.NewTicker(j.interval)

	j.wg.Add(1)
	go func() {
		defer j.wg.Done()

		j.sendDue(ctx)
		for {
			select {
			case <-j.ticker.C:
				j.sendDue(ctx)
			case <-ctx.Done():
				logger.Get().Info("Reminder job stopped", "reason", ctx.Err())
				return
			case <-j.done:
				logger.Get().Info("Reminder job stopped")
				return
			}
		}
	}()
}

// Stop halts the job and waits for an in-flight pass to finish
func (j *ReminderJob) Stop() {
	j.stopOnce.Do(func() {
		if j.ticker != nil {
			j.ticker.Stop()
		}
		close(j.done)
	})
	j.wg.Wait()
}

func (j *ReminderJob) sendDue(ctx context.Context) {
	sent, err := j.sender.SendDue(ctx, time.Now())
	if err != nil {
		logger.Get().Error("Failed to send reminders", "error", err)
		return
	}
	if sent == 0 {
		logger.Get().Debug("No reminders due")
		return
	}
	logger.Get().Info("Sent appointment reminders", "count", sent)
}
