package service

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/iliyamo/appointment-booking/internal/model"
)

func validRequest() BookingRequest {
	return BookingRequest{UserID: 1, Name: "A", Phone: "123", Email: "a@x.com", Date: "2025-06-01", Time: "10:00:00"}
}

func newBooking(appts *memAppointments, opts BookingOptions) (*BookingService, *recordingNotifier, *ClosingService) {
	closing := NewClosingService(newMemClosedDays())
	n := &recordingNotifier{}
	return NewBookingService(appts, closing, n, opts, zap.NewNop()), n, closing
}

func TestBookCreatesPendingAndNotifies(t *testing.T) {
	appts := newMemAppointments()
	svc, n, _ := newBooking(appts, BookingOptions{})

	a, err := svc.Book(context.Background(), validRequest())
	if err != nil {
		t.Fatalf("Book error: %v", err)
	}
	if a.ID == 0 || a.Status != model.StatusPending {
		t.Fatalf("stored appointment = %+v", a)
	}
	if len(n.calls) != 1 || n.calls[0].Email != "a@x.com" || n.calls[0].Phone != "123" {
		t.Fatalf("notifier calls = %+v", n.calls)
	}

	slots, err := svc.BookedSlots(context.Background(), "2025-06-01")
	if err != nil {
		t.Fatalf("BookedSlots error: %v", err)
	}
	if !reflect.DeepEqual(slots, []string{"10:00"}) {
		t.Fatalf("slots = %v, want [10:00]", slots)
	}
}

func TestBookMissingFields(t *testing.T) {
	cases := map[string]func(r *BookingRequest){
		"user_id":          func(r *BookingRequest) { r.UserID = 0 },
		"name":             func(r *BookingRequest) { r.Name = " " },
		"phone":            func(r *BookingRequest) { r.Phone = "" },
		"email":            func(r *BookingRequest) { r.Email = "" },
		"appointment_date": func(r *BookingRequest) { r.Date = "" },
		"appointment_time": func(r *BookingRequest) { r.Time = "" },
	}
	for field, mutate := range cases {
		appts := newMemAppointments()
		svc, n, _ := newBooking(appts, BookingOptions{})
		req := validRequest()
		mutate(&req)

		_, err := svc.Book(context.Background(), req)
		var ve *ValidationError
		if !errors.As(err, &ve) || !errors.Is(err, ErrValidation) {
			t.Fatalf("%s: got %v, want ValidationError", field, err)
		}
		if _, ok := ve.Fields[field]; !ok {
			t.Errorf("%s: fields = %v", field, ve.Fields)
		}
		if appts.count() != 0 || len(n.calls) != 0 {
			t.Errorf("%s: record or notification created on invalid input", field)
		}
	}
}

func TestBookNormalizesShortTime(t *testing.T) {
	svc, _, _ := newBooking(newMemAppointments(), BookingOptions{})
	req := validRequest()
	req.Time = "09:30"
	a, err := svc.Book(context.Background(), req)
	if err != nil {
		t.Fatalf("Book error: %v", err)
	}
	if a.Time != "09:30:00" {
		t.Fatalf("Time = %q, want 09:30:00", a.Time)
	}
}

func TestBookRejectsMalformedDate(t *testing.T) {
	svc, _, _ := newBooking(newMemAppointments(), BookingOptions{})
	req := validRequest()
	req.Date = "01/06/2025"
	if _, err := svc.Book(context.Background(), req); !errors.Is(err, ErrValidation) {
		t.Fatalf("got %v, want ErrValidation", err)
	}
}

func TestBookAcceptsAnyNonEmptyEmail(t *testing.T) {
	appts := newMemAppointments()
	svc, n, _ := newBooking(appts, BookingOptions{})
	req := validRequest()
	req.Email = "front desk"
	a, err := svc.Book(context.Background(), req)
	if err != nil {
		t.Fatalf("Book error: %v", err)
	}
	if a.Email != "front desk" || appts.count() != 1 || len(n.calls) != 1 {
		t.Fatalf("appointment = %+v, rows = %d, notifications = %d", a, appts.count(), len(n.calls))
	}
}

func TestDoubleBookingAllowedByDefault(t *testing.T) {
	appts := newMemAppointments()
	svc, _, _ := newBooking(appts, BookingOptions{})
	first := validRequest()
	second := validRequest()
	second.UserID, second.Email = 2, "b@x.com"

	if _, err := svc.Book(context.Background(), first); err != nil {
		t.Fatalf("first booking: %v", err)
	}
	if _, err := svc.Book(context.Background(), second); err != nil {
		t.Fatalf("second booking of same slot: %v", err)
	}
	if appts.count() != 2 {
		t.Fatalf("rows = %d, want 2", appts.count())
	}
}

func TestSlotExclusivityPolicy(t *testing.T) {
	appts := newMemAppointments()
	svc, _, _ := newBooking(appts, BookingOptions{EnforceSlotExclusivity: true})
	if _, err := svc.Book(context.Background(), validRequest()); err != nil {
		t.Fatalf("first booking: %v", err)
	}
	if _, err := svc.Book(context.Background(), validRequest()); !errors.Is(err, ErrSlotTaken) {
		t.Fatalf("second booking: got %v, want ErrSlotTaken", err)
	}
}

func TestClosedDayPolicy(t *testing.T) {
	appts := newMemAppointments()
	svc, _, closing := newBooking(appts, BookingOptions{EnforceClosedDays: true})
	if err := closing.Close(context.Background(), "2025-06-01"); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if _, err := svc.Book(context.Background(), validRequest()); !errors.Is(err, ErrDayClosed) {
		t.Fatalf("got %v, want ErrDayClosed", err)
	}

	// Without the flag a closed day is still bookable.
	lax, _, laxClosing := newBooking(newMemAppointments(), BookingOptions{})
	_ = laxClosing.Close(context.Background(), "2025-06-01")
	if _, err := lax.Book(context.Background(), validRequest()); err != nil {
		t.Fatalf("booking on closed day without enforcement: %v", err)
	}
}

func TestBookSucceedsWhenNotificationFails(t *testing.T) {
	appts := newMemAppointments()
	svc, n, _ := newBooking(appts, BookingOptions{})
	n.err = ErrNotification
	if _, err := svc.Book(context.Background(), validRequest()); err != nil {
		t.Fatalf("Book error: %v", err)
	}
	if appts.count() != 1 {
		t.Fatalf("rows = %d, want 1", appts.count())
	}
}

func TestBookStorageFailure(t *testing.T) {
	appts := newMemAppointments()
	appts.fail = errDB
	svc, n, _ := newBooking(appts, BookingOptions{})
	if _, err := svc.Book(context.Background(), validRequest()); !errors.Is(err, ErrStorage) {
		t.Fatalf("got %v, want ErrStorage", err)
	}
	if len(n.calls) != 0 {
		t.Fatal("notifier called after failed insert")
	}
}

func TestBookedSlotsAnyStatus(t *testing.T) {
	appts := newMemAppointments()
	svc, _, _ := newBooking(appts, BookingOptions{})
	ctx := context.Background()
	for _, tm := range []string{"11:30:00", "10:00:00"} {
		r := validRequest()
		r.Time = tm
		if _, err := svc.Book(ctx, r); err != nil {
			t.Fatalf("Book: %v", err)
		}
	}
	other := validRequest()
	other.Date = "2025-06-02"
	_, _ = svc.Book(ctx, other)
	_ = svc.Cancel(ctx, 1)

	slots, err := svc.BookedSlots(ctx, "2025-06-01")
	if err != nil {
		t.Fatalf("BookedSlots: %v", err)
	}
	if !reflect.DeepEqual(slots, []string{"10:00", "11:30"}) {
		t.Fatalf("slots = %v", slots)
	}
	if _, err := svc.BookedSlots(ctx, ""); !errors.Is(err, ErrValidation) {
		t.Fatalf("empty date: got %v", err)
	}
}

func TestUpcomingExcludesPastAndCancelled(t *testing.T) {
	appts := newMemAppointments()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.Local)
	svc, _, _ := newBooking(appts, BookingOptions{Now: func() time.Time { return now }})
	ctx := context.Background()

	book := func(date, tm string) uint64 {
		r := validRequest()
		r.Date, r.Time = date, tm
		a, err := svc.Book(ctx, r)
		if err != nil {
			t.Fatalf("Book: %v", err)
		}
		return a.ID
	}
	book("2025-05-31", "15:00:00")    // yesterday
	book("2025-06-01", "11:59:00")    // earlier today
	keep := book("2025-06-01", "12:30:00")
	cancelled := book("2025-06-02", "09:00:00")
	later := book("2025-06-03", "09:00:00")
	if err := svc.Cancel(ctx, cancelled); err != nil {
		t.Fatalf("Cancel: %v", err)
	}

	list, err := svc.Upcoming(ctx, "a@x.com")
	if err != nil {
		t.Fatalf("Upcoming: %v", err)
	}
	if len(list) != 2 || list[0].ID != keep || list[1].ID != later {
		t.Fatalf("upcoming = %+v", list)
	}
	if appts.upcomingArgs != [2]string{"2025-06-01", "12:00:00"} {
		t.Fatalf("now args = %v", appts.upcomingArgs)
	}
}

func TestCancelIdempotent(t *testing.T) {
	appts := newMemAppointments()
	svc, _, _ := newBooking(appts, BookingOptions{})
	ctx := context.Background()
	a, _ := svc.Book(ctx, validRequest())

	for i := 0; i < 2; i++ {
		if err := svc.Cancel(ctx, a.ID); err != nil {
			t.Fatalf("Cancel #%d: %v", i+1, err)
		}
	}
	list, _ := svc.ListAll(ctx)
	if len(list) != 1 || list[0].Status != model.StatusCancelled {
		t.Fatalf("after cancel = %+v", list)
	}
	if err := svc.Cancel(ctx, 0); !errors.Is(err, ErrValidation) {
		t.Fatalf("zero id: got %v", err)
	}
	appts.fail = errDB
	if err := svc.Cancel(ctx, a.ID); !errors.Is(err, ErrStorage) {
		t.Fatalf("storage failure: got %v", err)
	}
}

func TestFreeDeletesRow(t *testing.T) {
	appts := newMemAppointments()
	svc, _, _ := newBooking(appts, BookingOptions{})
	ctx := context.Background()
	a, _ := svc.Book(ctx, validRequest())
	if err := svc.Free(ctx, a.ID); err != nil {
		t.Fatalf("Free: %v", err)
	}
	if appts.count() != 0 {
		t.Fatalf("rows = %d, want 0", appts.count())
	}
}

func TestCloseDayIdempotent(t *testing.T) {
	days := newMemClosedDays()
	svc := NewClosingService(days)
	ctx := context.Background()
	for i := 0; i < 2; i++ {
		if err := svc.Close(ctx, "2025-12-25"); err != nil {
			t.Fatalf("Close #%d: %v", i+1, err)
		}
	}
	list, _ := svc.List(ctx)
	if !reflect.DeepEqual(list, []string{"2025-12-25"}) {
		t.Fatalf("closed days = %v", list)
	}
	closed, _ := svc.IsClosed(ctx, "2025-12-25")
	if !closed {
		t.Fatal("IsClosed = false, want true")
	}
	if err := svc.Close(ctx, ""); !errors.Is(err, ErrValidation) {
		t.Fatalf("missing date: got %v", err)
	}
}

func TestValidationErrorMessage(t *testing.T) {
	err := &ValidationError{Fields: map[string]string{"name": "is required", "email": "is invalid"}}
	if got := err.Error(); got != "validation failed: email is invalid, name is required" {
		t.Fatalf("Error() = %q", got)
	}
}
