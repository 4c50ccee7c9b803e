package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/iliyamo/appointment-booking/internal/model"
	"github.com/iliyamo/appointment-booking/internal/queue"
	"github.com/iliyamo/appointment-booking/internal/repository"
)

// StatusStore records the delivery state of notification tasks.
type StatusStore interface {
	Put(ctx context.Context, st model.NotificationStatus) error
	Get(ctx context.Context, id string) (model.NotificationStatus, error)
}

// Dispatcher turns booking events into notification tasks on the queue.
// Publishing is detached from the caller's context so an aborted request
// does not drop emails for a booking that was already stored.
type Dispatcher struct {
	q              queue.Queue
	status         StatusStore
	adminEmail     string
	baseURL        string
	publishTimeout time.Duration
	validate       *Validator
	now            func() time.Time
	log            *zap.Logger
}

func NewDispatcher(q queue.Queue, status StatusStore, adminEmail, baseURL string, log *zap.Logger) *Dispatcher {
	return &Dispatcher{
		q:              q,
		status:         status,
		adminEmail:     strings.TrimSpace(adminEmail),
		baseURL:        strings.TrimRight(baseURL, "/"),
		publishTimeout: 5 * time.Second,
		validate:       NewValidator(),
		now:            time.Now,
		log:            log.With(zap.String("component", "dispatcher")),
	}
}

// CancelURL is the self-service cancellation page for email.
func (d *Dispatcher) CancelURL(email string) string {
	return d.baseURL + "/cancel.html?email=" + url.QueryEscape(email)
}

// BookingCreated queues the customer confirmation and the admin alert.
// The admin alert is skipped when no admin address is configured.
func (d *Dispatcher) BookingCreated(ctx context.Context, a model.Appointment) error {
	confirm := queue.Task{
		Kind:      queue.KindConfirmation,
		To:        a.Email,
		Name:      a.Name,
		Date:      a.Date,
		Time:      a.Time,
		CancelURL: d.CancelURL(a.Email),
	}
	var errs []error
	if _, err := d.publish(ctx, confirm); err != nil {
		errs = append(errs, err)
	}
	if d.adminEmail != "" {
		alert := queue.Task{
			Kind:  queue.KindAdminAlert,
			To:    d.adminEmail,
			Name:  a.Name,
			Phone: a.Phone,
			Email: a.Email,
			Date:  a.Date,
			Time:  a.Time,
		}
		if _, err := d.publish(ctx, alert); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// CancelLink queues a bare cancellation-link email and returns the task id.
func (d *Dispatcher) CancelLink(ctx context.Context, email string) (string, error) {
	email = strings.TrimSpace(email)
	if err := d.validate.Var("email", email, "required"); err != nil {
		return "", err
	}
	return d.publish(ctx, queue.Task{
		Kind:      queue.KindCancelLink,
		To:        email,
		Email:     email,
		CancelURL: d.CancelURL(email),
	})
}

// Status reports the delivery state of a task.
func (d *Dispatcher) Status(ctx context.Context, id string) (model.NotificationStatus, error) {
	st, err := d.status.Get(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return model.NotificationStatus{}, ErrNotFound
	}
	if err != nil {
		return model.NotificationStatus{}, storageErr("notification status", err)
	}
	return st, nil
}

func (d *Dispatcher) publish(ctx context.Context, t queue.Task) (string, error) {
	t.ID = uuid.NewString()
	t.EnqueuedAt = d.now().UTC()

	pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), d.publishTimeout)
	defer cancel()

	st := model.NotificationStatus{TaskID: t.ID, Kind: string(t.Kind), State: model.NotificationQueued, UpdatedAt: t.EnqueuedAt}
	if err := d.status.Put(pctx, st); err != nil {
		d.log.Warn("notification status not recorded", zap.String("task_id", t.ID), zap.Error(err))
	}
	if err := d.q.Publish(pctx, t); err != nil {
		st.State = model.NotificationFailed
		st.LastError = err.Error()
		st.UpdatedAt = d.now().UTC()
		_ = d.status.Put(pctx, st)
		return t.ID, fmt.Errorf("%w: publish %s: %v", ErrNotification, t.Kind, err)
	}
	d.log.Debug("notification queued", zap.String("task_id", t.ID), zap.String("kind", string(t.Kind)))
	return t.ID, nil
}
