package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/iliyamo/appointment-booking/internal/model"
)

// AppointmentStore is the persistence the booking service needs.
// *repository.AppointmentRepo satisfies it.
type AppointmentStore interface {
	Create(ctx context.Context, a *model.Appointment) error
	BookedTimes(ctx context.Context, date string) ([]string, error)
	UpcomingByEmail(ctx context.Context, email, nowDate, nowTime string) ([]model.Appointment, error)
	ExistsPendingAt(ctx context.Context, date, tm string) (bool, error)
	SetStatus(ctx context.Context, id uint64, status string) error
	Delete(ctx context.Context, id uint64) error
	List(ctx context.Context) ([]model.Appointment, error)
}

// DayCalendar answers whether a date has been closed by the admin.
type DayCalendar interface {
	IsClosed(ctx context.Context, date string) (bool, error)
}

// BookingNotifier is told about every stored booking.
type BookingNotifier interface {
	BookingCreated(ctx context.Context, a model.Appointment) error
}

// BookingOptions switches on the optional booking policies.  Both are off
// by default: closed days and double bookings are accepted.
type BookingOptions struct {
	EnforceClosedDays      bool
	EnforceSlotExclusivity bool
	Now                    func() time.Time
}

// BookingRequest is the body of POST /appointments.
type BookingRequest struct {
	UserID uint64 `json:"user_id" form:"user_id" validate:"required"`
	Name   string `json:"name" form:"name" validate:"required"`
	Phone  string `json:"phone" form:"phone" validate:"required"`
	Email  string `json:"email" form:"email" validate:"required"`
	Date   string `json:"appointment_date" form:"appointment_date" validate:"required,date"`
	Time   string `json:"appointment_time" form:"appointment_time" validate:"required,clock"`
}

func (r *BookingRequest) normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Phone = strings.TrimSpace(r.Phone)
	r.Email = strings.TrimSpace(r.Email)
	r.Date = strings.TrimSpace(r.Date)
	r.Time = strings.TrimSpace(r.Time)
	if len(r.Time) == len("15:04") {
		r.Time += ":00"
	}
}

// BookingService implements the appointment lifecycle.
type BookingService struct {
	appts    AppointmentStore
	calendar DayCalendar
	notify   BookingNotifier
	validate *Validator
	opts     BookingOptions
	log      *zap.Logger
}

// NewBookingService wires the service.  calendar may be nil when closed
// days are not enforced and notify may be nil to disable emails.
func NewBookingService(appts AppointmentStore, calendar DayCalendar, notify BookingNotifier, opts BookingOptions, log *zap.Logger) *BookingService {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &BookingService{
		appts:    appts,
		calendar: calendar,
		notify:   notify,
		validate: NewValidator(),
		opts:     opts,
		log:      log.With(zap.String("component", "booking")),
	}
}

// Book stores a pending appointment and queues its notifications.  The
// result depends only on persistence: notification errors are logged.
func (s *BookingService) Book(ctx context.Context, req BookingRequest) (model.Appointment, error) {
	req.normalize()
	if err := s.validate.Struct(req); err != nil {
		return model.Appointment{}, err
	}

	if s.opts.EnforceClosedDays && s.calendar != nil {
		closed, err := s.calendar.IsClosed(ctx, req.Date)
		if err != nil {
			return model.Appointment{}, err
		}
		if closed {
			return model.Appointment{}, ErrDayClosed
		}
	}
	// Check then insert: two concurrent requests can still both pass.
	if s.opts.EnforceSlotExclusivity {
		taken, err := s.appts.ExistsPendingAt(ctx, req.Date, req.Time)
		if err != nil {
			return model.Appointment{}, storageErr("check slot", err)
		}
		if taken {
			return model.Appointment{}, ErrSlotTaken
		}
	}

	a := model.Appointment{
		UserID: req.UserID,
		Name:   req.Name,
		Phone:  req.Phone,
		Email:  req.Email,
		Date:   req.Date,
		Time:   req.Time,
		Status: model.StatusPending,
	}
	if err := s.appts.Create(ctx, &a); err != nil {
		return model.Appointment{}, storageErr("create appointment", err)
	}
	s.log.Info("appointment booked",
		zap.Uint64("id", a.ID), zap.String("date", a.Date), zap.String("time", a.Time))

	if s.notify != nil {
		if err := s.notify.BookingCreated(ctx, a); err != nil {
			s.log.Error("booking notifications not queued", zap.Uint64("id", a.ID), zap.Error(err))
		}
	}
	return a, nil
}

// BookedSlots returns the HH:MM slots taken on date, whatever their status.
func (s *BookingService) BookedSlots(ctx context.Context, date string) ([]string, error) {
	date = strings.TrimSpace(date)
	if err := s.validate.Var("date", date, "required,date"); err != nil {
		return nil, err
	}
	times, err := s.appts.BookedTimes(ctx, date)
	if err != nil {
		return nil, storageErr("booked slots", err)
	}
	slots := make([]string, 0, len(times))
	for _, t := range times {
		slots = append(slots, model.TruncateSlot(t))
	}
	return slots, nil
}

// Upcoming returns pending appointments for email strictly after now.
func (s *BookingService) Upcoming(ctx context.Context, email string) ([]model.Appointment, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, fieldError("email", "is required")
	}
	now := s.opts.Now()
	list, err := s.appts.UpcomingByEmail(ctx, email, now.Format("2006-01-02"), now.Format("15:04:05"))
	if err != nil {
		return nil, storageErr("upcoming appointments", err)
	}
	return list, nil
}

// Cancel marks the appointment cancelled.  Repeating it is harmless.
func (s *BookingService) Cancel(ctx context.Context, id uint64) error {
	if id == 0 {
		return fieldError("id", "is required")
	}
	if err := s.appts.SetStatus(ctx, id, model.StatusCancelled); err != nil {
		return storageErr("cancel appointment", err)
	}
	s.log.Info("appointment cancelled", zap.Uint64("id", id))
	return nil
}

// Free deletes the appointment so its slot can be booked again.
func (s *BookingService) Free(ctx context.Context, id uint64) error {
	if id == 0 {
		return fieldError("appointment_id", "is required")
	}
	if err := s.appts.Delete(ctx, id); err != nil {
		return storageErr("free slot", err)
	}
	s.log.Info("appointment slot freed", zap.Uint64("id", id))
	return nil
}

// ListAll returns every appointment for the admin panel.
func (s *BookingService) ListAll(ctx context.Context) ([]model.Appointment, error) {
	list, err := s.appts.List(ctx)
	if err != nil {
		return nil, storageErr("list appointments", err)
	}
	return list, nil
}
