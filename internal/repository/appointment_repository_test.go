package repository

import (
    "context"
    "database/sql"
    "errors"
    "regexp"
    "testing"
    "time"

    "github.com/DATA-DOG/go-sqlmock"

    "github.com/iliyamo/appointment-booking/internal/model"
)

var appointmentRowColumns = []string{"id", "user_id", "name", "phone", "email", "appointment_date", "appointment_time", "status", "created_at"}

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
    t.Helper()
    db, mock, err := sqlmock.New()
    if err != nil {
        t.Fatalf("sqlmock.New: %v", err)
    }
    t.Cleanup(func() { _ = db.Close() })
    return db, mock
}

func TestAppointmentCreateReloadsRow(t *testing.T) {
    db, mock := newMock(t)
    repo := NewAppointmentRepo(db)
    created := time.Date(2025, 5, 20, 12, 0, 0, 0, time.UTC)

    mock.ExpectExec(regexp.QuoteMeta("INSERT INTO appointments (user_id, name, phone, email, appointment_date, appointment_time, status)")).
        WithArgs(uint64(1), "A", "123", "a@x.com", "2025-06-01", "10:00:00", model.StatusPending).
        WillReturnResult(sqlmock.NewResult(7, 1))
    mock.ExpectQuery(regexp.QuoteMeta("FROM appointments WHERE id = ?")).
        WithArgs(uint64(7)).
        WillReturnRows(sqlmock.NewRows(appointmentRowColumns).
            AddRow(int64(7), int64(1), "A", "123", "a@x.com", "2025-06-01", "10:00:00", "pending", created))

    a := model.Appointment{UserID: 1, Name: "A", Phone: "123", Email: "a@x.com", Date: "2025-06-01", Time: "10:00:00"}
    if err := repo.Create(context.Background(), &a); err != nil {
        t.Fatalf("Create error: %v", err)
    }
    if a.ID != 7 || a.Status != model.StatusPending || !a.CreatedAt.Equal(created) {
        t.Fatalf("unexpected stored record: %+v", a)
    }
    if err := mock.ExpectationsWereMet(); err != nil {
        t.Fatalf("expectations: %v", err)
    }
}

func TestAppointmentGetByIDNotFound(t *testing.T) {
    db, mock := newMock(t)
    repo := NewAppointmentRepo(db)

    mock.ExpectQuery(regexp.QuoteMeta("FROM appointments WHERE id = ?")).
        WithArgs(uint64(99)).
        WillReturnRows(sqlmock.NewRows(appointmentRowColumns))

    if _, err := repo.GetByID(context.Background(), 99); !errors.Is(err, ErrNotFound) {
        t.Fatalf("expected ErrNotFound, got %v", err)
    }
}

func TestBookedTimes(t *testing.T) {
    db, mock := newMock(t)
    repo := NewAppointmentRepo(db)

    mock.ExpectQuery(regexp.QuoteMeta("FROM appointments WHERE appointment_date = ? ORDER BY appointment_time")).
        WithArgs("2025-01-01").
        WillReturnRows(sqlmock.NewRows([]string{"t"}).AddRow("09:00:00").AddRow("10:30:00"))

    times, err := repo.BookedTimes(context.Background(), "2025-01-01")
    if err != nil {
        t.Fatalf("BookedTimes error: %v", err)
    }
    if len(times) != 2 || times[0] != "09:00:00" || times[1] != "10:30:00" {
        t.Fatalf("unexpected times: %v", times)
    }
}

func TestUpcomingByEmailBindsNow(t *testing.T) {
    db, mock := newMock(t)
    repo := NewAppointmentRepo(db)

    mock.ExpectQuery(regexp.QuoteMeta("WHERE email = ? AND status = ?")).
        WithArgs("a@x.com", model.StatusPending, "2025-06-01", "2025-06-01", "09:15:00").
        WillReturnRows(sqlmock.NewRows(appointmentRowColumns).
            AddRow(int64(3), int64(1), "A", "123", "a@x.com", "2025-06-01", "10:00:00", "pending", time.Now()))

    list, err := repo.UpcomingByEmail(context.Background(), "a@x.com", "2025-06-01", "09:15:00")
    if err != nil {
        t.Fatalf("UpcomingByEmail error: %v", err)
    }
    if len(list) != 1 || list[0].ID != 3 {
        t.Fatalf("unexpected list: %+v", list)
    }
    if err := mock.ExpectationsWereMet(); err != nil {
        t.Fatalf("expectations: %v", err)
    }
}

func TestDeleteBeforeReturnsCount(t *testing.T) {
    db, mock := newMock(t)
    repo := NewAppointmentRepo(db)

    mock.ExpectExec(regexp.QuoteMeta("DELETE FROM appointments WHERE appointment_date < ?")).
        WithArgs("2025-06-01", "2025-06-01", "12:00:00").
        WillReturnResult(sqlmock.NewResult(0, 4))

    n, err := repo.DeleteBefore(context.Background(), "2025-06-01", "12:00:00")
    if err != nil {
        t.Fatalf("DeleteBefore error: %v", err)
    }
    if n != 4 {
        t.Fatalf("expected 4 deleted rows, got %d", n)
    }
}

func TestSetStatusAndDelete(t *testing.T) {
    db, mock := newMock(t)
    repo := NewAppointmentRepo(db)

    mock.ExpectExec(regexp.QuoteMeta("UPDATE appointments SET status = ? WHERE id = ?")).
        WithArgs(model.StatusCancelled, uint64(5)).
        WillReturnResult(sqlmock.NewResult(0, 0))
    mock.ExpectExec(regexp.QuoteMeta("DELETE FROM appointments WHERE id = ?")).
        WithArgs(uint64(5)).
        WillReturnResult(sqlmock.NewResult(0, 1))

    if err := repo.SetStatus(context.Background(), 5, model.StatusCancelled); err != nil {
        t.Fatalf("SetStatus error: %v", err)
    }
    if err := repo.Delete(context.Background(), 5); err != nil {
        t.Fatalf("Delete error: %v", err)
    }
    if err := mock.ExpectationsWereMet(); err != nil {
        t.Fatalf("expectations: %v", err)
    }
}

func TestExistsPendingAt(t *testing.T) {
    db, mock := newMock(t)
    repo := NewAppointmentRepo(db)

    mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM appointments")).
        WithArgs("2025-06-01", "10:00:00", model.StatusPending).
        WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(int64(1)))

    taken, err := repo.ExistsPendingAt(context.Background(), "2025-06-01", "10:00:00")
    if err != nil || !taken {
        t.Fatalf("ExistsPendingAt = %v, %v; want true, nil", taken, err)
    }
}

func TestClosedDayInsertIgnoresDuplicates(t *testing.T) {
    db, mock := newMock(t)
    repo := NewClosedDayRepo(db)

    mock.ExpectExec(regexp.QuoteMeta("INSERT IGNORE INTO closed_days (date) VALUES (?)")).
        WithArgs("2025-12-25").
        WillReturnResult(sqlmock.NewResult(0, 1))
    mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM closed_days WHERE date = ?")).
        WithArgs("2025-12-25").
        WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(int64(1)))

    if err := repo.Insert(context.Background(), "2025-12-25"); err != nil {
        t.Fatalf("Insert error: %v", err)
    }
    closed, err := repo.Exists(context.Background(), "2025-12-25")
    if err != nil || !closed {
        t.Fatalf("Exists = %v, %v; want true, nil", closed, err)
    }
    if err := mock.ExpectationsWereMet(); err != nil {
        t.Fatalf("expectations: %v", err)
    }
}
