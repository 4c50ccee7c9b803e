package model

import "time"

// Appointment statuses.  Cancellation is the only transition after
// creation; past appointments are removed by the sweeper instead of being
// marked completed.
const (
    StatusPending   = "pending"
    StatusCancelled = "cancelled"
)

// Appointment is a booked slot as stored in the `appointments` table.
//
// Fields:
//  ID        – primary key generated by the database.
//  UserID    – owning user reference supplied by the client.
//  Name      – customer name captured at booking time.
//  Phone     – customer phone captured at booking time.
//  Email     – customer email, also the key for the cancel link.
//  Date      – calendar date as YYYY-MM-DD.
//  Time      – time of day as HH:MM:SS.
//  Status    – pending or cancelled.
//  CreatedAt – insertion timestamp.
type Appointment struct {
    ID        uint64    // appointments.id
    UserID    uint64    // appointments.user_id
    Name      string    // appointments.name
    Phone     string    // appointments.phone
    Email     string    // appointments.email
    Date      string    // appointments.appointment_date
    Time      string    // appointments.appointment_time
    Status    string    // appointments.status
    CreatedAt time.Time // appointments.created_at
}

// Slot returns the HH:MM part of the appointment time, the granularity the
// slot picker works with.
func (a Appointment) Slot() string {
    return TruncateSlot(a.Time)
}

// TruncateSlot cuts an HH:MM:SS time down to HH:MM.
func TruncateSlot(t string) string {
    if len(t) > 5 {
        return t[:5]
    }
    return t
}
