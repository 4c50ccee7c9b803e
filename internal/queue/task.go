// Package queue carries notification tasks between the request path and
// the background mail worker.
package queue

import "time"

// Kind names the email a task will produce.
type Kind string

const (
    KindConfirmation Kind = "confirmation"
    KindAdminAlert   Kind = "admin_alert"
    KindCancelLink   Kind = "cancel_link"
)

// Task is published once per email.  It contains everything the worker
// needs to render and send the message without querying the database.
type Task struct {
    ID         string    `json:"id"`
    Kind       Kind      `json:"kind"`
    To         string    `json:"to"`
    Name       string    `json:"name,omitempty"`
    Phone      string    `json:"phone,omitempty"`
    Email      string    `json:"email,omitempty"`
    Date       string    `json:"date,omitempty"`
    Time       string    `json:"time,omitempty"`
    CancelURL  string    `json:"cancel_url,omitempty"`
    EnqueuedAt time.Time `json:"enqueued_at"`
}
