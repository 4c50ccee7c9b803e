package service

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/iliyamo/appointment-booking/internal/mail"
	"github.com/iliyamo/appointment-booking/internal/model"
)

var errDB = errors.New("db down")

// memAppointments mimics the SQL semantics of the appointment repository.
type memAppointments struct {
	mu     sync.Mutex
	rows   map[uint64]model.Appointment
	nextID uint64
	fail   error

	upcomingArgs [2]string
	deleteArgs   [2]string
}

func newMemAppointments() *memAppointments {
	return &memAppointments{rows: make(map[uint64]model.Appointment)}
}

func (m *memAppointments) Create(_ context.Context, a *model.Appointment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return m.fail
	}
	m.nextID++
	a.ID = m.nextID
	m.rows[a.ID] = *a
	return nil
}

func (m *memAppointments) sorted() []model.Appointment {
	out := make([]model.Appointment, 0, len(m.rows))
	for _, a := range m.rows {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		return out[i].Time < out[j].Time
	})
	return out
}

func (m *memAppointments) BookedTimes(_ context.Context, date string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return nil, m.fail
	}
	var times []string
	for _, a := range m.sorted() {
		if a.Date == date {
			times = append(times, a.Time)
		}
	}
	return times, nil
}

func (m *memAppointments) UpcomingByEmail(_ context.Context, email, nowDate, nowTime string) ([]model.Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.upcomingArgs = [2]string{nowDate, nowTime}
	if m.fail != nil {
		return nil, m.fail
	}
	var out []model.Appointment
	for _, a := range m.sorted() {
		if a.Email != email || a.Status != model.StatusPending {
			continue
		}
		if a.Date > nowDate || (a.Date == nowDate && a.Time > nowTime) {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *memAppointments) ExistsPendingAt(_ context.Context, date, tm string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return false, m.fail
	}
	for _, a := range m.rows {
		if a.Date == date && a.Time == tm && a.Status == model.StatusPending {
			return true, nil
		}
	}
	return false, nil
}

func (m *memAppointments) SetStatus(_ context.Context, id uint64, status string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return m.fail
	}
	if a, ok := m.rows[id]; ok {
		a.Status = status
		m.rows[id] = a
	}
	return nil
}

func (m *memAppointments) Delete(_ context.Context, id uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return m.fail
	}
	delete(m.rows, id)
	return nil
}

func (m *memAppointments) List(_ context.Context) ([]model.Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return nil, m.fail
	}
	return m.sorted(), nil
}

func (m *memAppointments) DeleteBefore(_ context.Context, date, tm string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleteArgs = [2]string{date, tm}
	if m.fail != nil {
		return 0, m.fail
	}
	var n int64
	for id, a := range m.rows {
		if a.Date < date || (a.Date == date && a.Time < tm) {
			delete(m.rows, id)
			n++
		}
	}
	return n, nil
}

func (m *memAppointments) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.rows)
}

type memClosedDays struct {
	mu   sync.Mutex
	days map[string]bool
}

func newMemClosedDays() *memClosedDays { return &memClosedDays{days: make(map[string]bool)} }

func (m *memClosedDays) Insert(_ context.Context, date string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.days[date] = true
	return nil
}

func (m *memClosedDays) Exists(_ context.Context, date string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.days[date], nil
}

func (m *memClosedDays) List(_ context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.days))
	for d := range m.days {
		out = append(out, d)
	}
	sort.Strings(out)
	return out, nil
}

type recordingNotifier struct {
	mu    sync.Mutex
	calls []model.Appointment
	err   error
}

func (n *recordingNotifier) BookingCreated(_ context.Context, a model.Appointment) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls = append(n.calls, a)
	return n.err
}

// scriptedSender fails the first failures calls and then succeeds.
type scriptedSender struct {
	mu       sync.Mutex
	failures int
	sent     []mail.Message
	calls    int
}

func (s *scriptedSender) Send(_ context.Context, m mail.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.calls <= s.failures {
		return errors.New("smtp unavailable")
	}
	s.sent = append(s.sent, m)
	return nil
}
