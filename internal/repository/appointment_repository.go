package repository

import (
    "context"
    "database/sql"

    "github.com/iliyamo/appointment-booking/internal/model"
)

// AppointmentRepo provides the queries behind booking, slot lookup,
// cancellation, admin listing and the expiry sweep.  Dates and times are
// formatted in SQL so callers always see YYYY-MM-DD and HH:MM:SS strings,
// and comparisons against "now" are done on those same string forms.
type AppointmentRepo struct {
    db *sql.DB
}

// NewAppointmentRepo returns a new AppointmentRepo bound to the given database.
func NewAppointmentRepo(db *sql.DB) *AppointmentRepo { return &AppointmentRepo{db: db} }

const appointmentColumns = `id, user_id, name, phone, email,
    DATE_FORMAT(appointment_date, '%Y-%m-%d'), TIME_FORMAT(appointment_time, '%H:%i:%s'),
    status, created_at`

type rowScanner interface {
    Scan(dest ...any) error
}

func scanAppointment(s rowScanner) (model.Appointment, error) {
    var a model.Appointment
    err := s.Scan(&a.ID, &a.UserID, &a.Name, &a.Phone, &a.Email, &a.Date, &a.Time, &a.Status, &a.CreatedAt)
    return a, err
}

// Create inserts a new appointment and reloads it so the caller sees the
// generated ID, the default status and the creation timestamp.
func (r *AppointmentRepo) Create(ctx context.Context, a *model.Appointment) error {
    status := a.Status
    if status == "" {
        status = model.StatusPending
    }
    res, err := r.db.ExecContext(ctx,
        `INSERT INTO appointments (user_id, name, phone, email, appointment_date, appointment_time, status) VALUES (?, ?, ?, ?, ?, ?, ?)`,
        a.UserID, a.Name, a.Phone, a.Email, a.Date, a.Time, status)
    if err != nil {
        return err
    }
    id, err := res.LastInsertId()
    if err != nil {
        return err
    }
    stored, err := r.GetByID(ctx, uint64(id))
    if err != nil {
        return err
    }
    *a = stored
    return nil
}

// GetByID loads one appointment.  ErrNotFound is returned when no row matches.
func (r *AppointmentRepo) GetByID(ctx context.Context, id uint64) (model.Appointment, error) {
    row := r.db.QueryRowContext(ctx, `SELECT `+appointmentColumns+` FROM appointments WHERE id = ?`, id)
    a, err := scanAppointment(row)
    if err == sql.ErrNoRows {
        return model.Appointment{}, ErrNotFound
    }
    return a, err
}

// BookedTimes returns the HH:MM:SS times of every appointment on the date,
// whatever its status, in ascending order.
func (r *AppointmentRepo) BookedTimes(ctx context.Context, date string) ([]string, error) {
    rows, err := r.db.QueryContext(ctx,
        `SELECT TIME_FORMAT(appointment_time, '%H:%i:%s') FROM appointments WHERE appointment_date = ? ORDER BY appointment_time`,
        date)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    times := make([]string, 0)
    for rows.Next() {
        var t string
        if err := rows.Scan(&t); err != nil {
            return nil, err
        }
        times = append(times, t)
    }
    return times, rows.Err()
}

// UpcomingByEmail returns pending appointments for the email that fall
// strictly after (nowDate, nowTime).
func (r *AppointmentRepo) UpcomingByEmail(ctx context.Context, email, nowDate, nowTime string) ([]model.Appointment, error) {
    return r.list(ctx,
        `SELECT `+appointmentColumns+` FROM appointments
         WHERE email = ? AND status = ?
           AND (appointment_date > ? OR (appointment_date = ? AND appointment_time > ?))
         ORDER BY appointment_date, appointment_time`,
        email, model.StatusPending, nowDate, nowDate, nowTime)
}

// ExistsPendingAt reports whether a pending appointment already holds the slot.
func (r *AppointmentRepo) ExistsPendingAt(ctx context.Context, date, tm string) (bool, error) {
    var n int
    err := r.db.QueryRowContext(ctx,
        `SELECT COUNT(*) FROM appointments WHERE appointment_date = ? AND appointment_time = ? AND status = ?`,
        date, tm, model.StatusPending).Scan(&n)
    return n > 0, err
}

// SetStatus updates the status of one appointment.  Missing rows are not
// an error, which keeps repeated cancellations idempotent.
func (r *AppointmentRepo) SetStatus(ctx context.Context, id uint64, status string) error {
    _, err := r.db.ExecContext(ctx, `UPDATE appointments SET status = ? WHERE id = ?`, status, id)
    return err
}

// Delete removes one appointment, freeing its slot.
func (r *AppointmentRepo) Delete(ctx context.Context, id uint64) error {
    _, err := r.db.ExecContext(ctx, `DELETE FROM appointments WHERE id = ?`, id)
    return err
}

// DeleteBefore removes every appointment dated before date, or on date with
// a time before tm, and returns how many rows went away.
func (r *AppointmentRepo) DeleteBefore(ctx context.Context, date, tm string) (int64, error) {
    res, err := r.db.ExecContext(ctx,
        `DELETE FROM appointments WHERE appointment_date < ? OR (appointment_date = ? AND appointment_time < ?)`,
        date, date, tm)
    if err != nil {
        return 0, err
    }
    return res.RowsAffected()
}

// List returns all appointments ordered by slot, for the admin panel.
func (r *AppointmentRepo) List(ctx context.Context) ([]model.Appointment, error) {
    return r.list(ctx, `SELECT `+appointmentColumns+` FROM appointments ORDER BY appointment_date, appointment_time`)
}

func (r *AppointmentRepo) list(ctx context.Context, q string, args ...any) ([]model.Appointment, error) {
    rows, err := r.db.QueryContext(ctx, q, args...)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    out := make([]model.Appointment, 0)
    for rows.Next() {
        a, err := scanAppointment(rows)
        if err != nil {
            return nil, err
        }
        out = append(out, a)
    }
    return out, rows.Err()
}
