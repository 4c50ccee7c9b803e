package service

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"

	"github.com/iliyamo/appointment-booking/internal/mail"
	"github.com/iliyamo/appointment-booking/internal/model"
	"github.com/iliyamo/appointment-booking/internal/queue"
)

var (
	notificationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "notifications_total",
		Help: "Notification tasks by kind and final state",
	}, []string{"kind", "state"})
	notificationAttemptsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "notification_send_attempts_total",
		Help: "SMTP send attempts including retries",
	})
)

const maxBackoff = time.Minute

// WorkerOptions tune the retry policy.
type WorkerOptions struct {
	MaxAttempts    int
	Backoff        time.Duration
	AttemptTimeout time.Duration
}

// NotificationWorker renders queued tasks and sends them, retrying with
// exponential backoff.
type NotificationWorker struct {
	sender mail.Sender
	status StatusStore
	opts   WorkerOptions
	log    *zap.Logger
	now    func() time.Time
}

func NewNotificationWorker(sender mail.Sender, status StatusStore, opts WorkerOptions, log *zap.Logger) *NotificationWorker {
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 5
	}
	if opts.Backoff <= 0 {
		opts.Backoff = 2 * time.Second
	}
	if opts.AttemptTimeout <= 0 {
		opts.AttemptTimeout = 10 * time.Second
	}
	return &NotificationWorker{
		sender: sender,
		status: status,
		opts:   opts,
		log:    log.With(zap.String("component", "notification-worker")),
		now:    time.Now,
	}
}

// Run consumes q until ctx is cancelled.
func (w *NotificationWorker) Run(ctx context.Context, q queue.Queue) error {
	w.log.Info("notification worker started")
	return q.Consume(ctx, w.Handle)
}

// Handle delivers one task.  The returned error is ErrNotification once
// every attempt has failed.
func (w *NotificationWorker) Handle(ctx context.Context, t queue.Task) error {
	msg, err := render(t)
	if err != nil {
		w.finish(ctx, t, 0, err)
		return fmt.Errorf("%w: %v", ErrNotification, err)
	}

	backoff := w.opts.Backoff
	var lastErr error
	for attempt := 1; attempt <= w.opts.MaxAttempts; attempt++ {
		w.put(ctx, t, model.NotificationSending, attempt, lastErr)
		notificationAttemptsTotal.Inc()

		actx, cancel := context.WithTimeout(ctx, w.opts.AttemptTimeout)
		lastErr = w.sender.Send(actx, msg)
		cancel()
		if lastErr == nil {
			w.finish(ctx, t, attempt, nil)
			w.log.Info("notification sent",
				zap.String("task_id", t.ID), zap.String("kind", string(t.Kind)),
				zap.String("to", t.To), zap.Int("attempts", attempt))
			return nil
		}
		w.log.Warn("notification send failed",
			zap.String("task_id", t.ID), zap.String("kind", string(t.Kind)),
			zap.Int("attempt", attempt), zap.Error(lastErr))

		if attempt == w.opts.MaxAttempts {
			break
		}
		if !sleepCtx(ctx, backoff) {
			lastErr = ctx.Err()
			w.finish(context.WithoutCancel(ctx), t, attempt, lastErr)
			return fmt.Errorf("%w: %v", ErrNotification, lastErr)
		}
		backoff *= 2
		if backoff > maxBackoff {
			backoff = maxBackoff
		}
	}

	w.finish(ctx, t, w.opts.MaxAttempts, lastErr)
	w.log.Error("notification abandoned",
		zap.String("task_id", t.ID), zap.String("kind", string(t.Kind)),
		zap.String("to", t.To), zap.Error(lastErr))
	return fmt.Errorf("%w: %v", ErrNotification, lastErr)
}

func (w *NotificationWorker) finish(ctx context.Context, t queue.Task, attempts int, err error) {
	state := model.NotificationSent
	if err != nil {
		state = model.NotificationFailed
	}
	notificationsTotal.WithLabelValues(string(t.Kind), state).Inc()
	w.put(ctx, t, state, attempts, err)
}

func (w *NotificationWorker) put(ctx context.Context, t queue.Task, state string, attempts int, err error) {
	st := model.NotificationStatus{
		TaskID:    t.ID,
		Kind:      string(t.Kind),
		State:     state,
		Attempts:  attempts,
		UpdatedAt: w.now().UTC(),
	}
	if err != nil {
		st.LastError = err.Error()
	}
	if perr := w.status.Put(ctx, st); perr != nil {
		w.log.Warn("notification status not recorded", zap.String("task_id", t.ID), zap.Error(perr))
	}
}

func render(t queue.Task) (mail.Message, error) {
	f := mail.Fields{
		Name:      t.Name,
		Phone:     t.Phone,
		Email:     t.Email,
		Date:      t.Date,
		Time:      t.Time,
		CancelURL: t.CancelURL,
	}
	var (
		c   mail.Content
		err error
	)
	switch t.Kind {
	case queue.KindConfirmation:
		c, err = mail.Confirmation(f)
	case queue.KindAdminAlert:
		c, err = mail.AdminAlert(f)
	case queue.KindCancelLink:
		c, err = mail.CancelLink(f)
	default:
		return mail.Message{}, fmt.Errorf("unknown notification kind %q", t.Kind)
	}
	if err != nil {
		return mail.Message{}, err
	}
	if t.To == "" {
		return mail.Message{}, fmt.Errorf("notification %s has no recipient", t.ID)
	}
	return mail.Message{To: t.To, Subject: c.Subject, Text: c.Text, HTML: c.HTML}, nil
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
