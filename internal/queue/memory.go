package queue

import "context"

// MemoryQueue is a buffered channel.  Tasks are lost on restart, so it is
// selected only for local development (QUEUE_DRIVER=memory) and tests.
type MemoryQueue struct {
    ch chan Task
}

func NewMemoryQueue(size int) *MemoryQueue {
    if size <= 0 {
        size = 100
    }
    return &MemoryQueue{ch: make(chan Task, size)}
}

// Publish never blocks: a full buffer yields ErrQueueFull.
func (q *MemoryQueue) Publish(ctx context.Context, t Task) error {
    if err := ctx.Err(); err != nil {
        return err
    }
    select {
    case q.ch <- t:
        return nil
    default:
        return ErrQueueFull
    }
}

// Consume hands tasks to h one at a time until ctx is done.
func (q *MemoryQueue) Consume(ctx context.Context, h Handler) error {
    for {
        select {
        case <-ctx.Done():
            return ctx.Err()
        case t := <-q.ch:
            _ = h(ctx, t)
        }
    }
}

// Len reports the number of buffered tasks.
func (q *MemoryQueue) Len() int { return len(q.ch) }
