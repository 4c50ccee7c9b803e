package queue

import (
    "context"
    "errors"
)

// ErrQueueFull is returned by Publish when a bounded queue has no room.
var ErrQueueFull = errors.New("queue full")

// Handler processes one task.  A non-nil error marks the delivery as
// failed; it is not redelivered.
type Handler func(ctx context.Context, t Task) error

// Queue is the boundary between producers of notification tasks and the
// worker consuming them.  Consume blocks until ctx is cancelled.
type Queue interface {
    Publish(ctx context.Context, t Task) error
    Consume(ctx context.Context, h Handler) error
}
