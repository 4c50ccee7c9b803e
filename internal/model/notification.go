package model

import "time"

// Delivery states of a notification task.
const (
    NotificationQueued  = "queued"
    NotificationSending = "sending"
    NotificationSent    = "sent"
    NotificationFailed  = "failed"
)

// NotificationStatus tracks a single email task from enqueue to its final
// outcome so that delivery can be observed after the HTTP response.
type NotificationStatus struct {
    TaskID    string    `json:"task_id"`
    Kind      string    `json:"kind"`
    State     string    `json:"state"`
    Attempts  int       `json:"attempts"`
    LastError string    `json:"last_error,omitempty"`
    UpdatedAt time.Time `json:"updated_at"`
}

// Final reports whether no further state change is expected.
func (s NotificationStatus) Final() bool {
    return s.State == NotificationSent || s.State == NotificationFailed
}
