package model

// ClosedDay is a calendar date (YYYY-MM-DD) marked unavailable by an
// admin.  Rows live in the `closed_days` table keyed by date.
type ClosedDay struct {
    Date string // closed_days.date
}
