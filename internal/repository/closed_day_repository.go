package repository

import (
    "context"
    "database/sql"
)

// ClosedDayRepo persists the dates an admin has closed for booking.
type ClosedDayRepo struct{ db *sql.DB }

func NewClosedDayRepo(db *sql.DB) *ClosedDayRepo { return &ClosedDayRepo{db: db} }

// Insert adds the date; a date that is already closed is left as is.
func (r *ClosedDayRepo) Insert(ctx context.Context, date string) error {
    _, err := r.db.ExecContext(ctx, `INSERT IGNORE INTO closed_days (date) VALUES (?)`, date)
    return err
}

// Exists reports whether the date is closed.
func (r *ClosedDayRepo) Exists(ctx context.Context, date string) (bool, error) {
    var n int
    err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM closed_days WHERE date = ?`, date).Scan(&n)
    return n > 0, err
}

// List returns all closed dates in ascending order.
func (r *ClosedDayRepo) List(ctx context.Context) ([]string, error) {
    rows, err := r.db.QueryContext(ctx, `SELECT DATE_FORMAT(date, '%Y-%m-%d') FROM closed_days ORDER BY date`)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    days := make([]string, 0)
    for rows.Next() {
        var d string
        if err := rows.Scan(&d); err != nil {
            return nil, err
        }
        days = append(days, d)
    }
    return days, rows.Err()
}
