package repository

import (
    "context"
    "errors"
    "testing"
    "time"

    "github.com/iliyamo/appointment-booking/internal/model"
)

func TestMemoryStatusRepo(t *testing.T) {
    repo := NewMemoryStatusRepo()
    ctx := context.Background()

    if _, err := repo.Get(ctx, "missing"); !errors.Is(err, ErrNotFound) {
        t.Fatalf("expected ErrNotFound, got %v", err)
    }
    _ = repo.Put(ctx, model.NotificationStatus{TaskID: "t1", State: model.NotificationQueued})
    _ = repo.Put(ctx, model.NotificationStatus{TaskID: "t1", State: model.NotificationSent, Attempts: 1})

    st, err := repo.Get(ctx, "t1")
    if err != nil {
        t.Fatalf("Get error: %v", err)
    }
    if st.State != model.NotificationSent || !st.Final() {
        t.Fatalf("unexpected status: %+v", st)
    }
}

func TestMemoryStatusRepoExpires(t *testing.T) {
    repo := NewMemoryStatusRepo()
    now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
    repo.now = func() time.Time { return now }
    _ = repo.Put(context.Background(), model.NotificationStatus{TaskID: "t1"})

    now = now.Add(statusTTL + time.Second)
    if _, err := repo.Get(context.Background(), "t1"); !errors.Is(err, ErrNotFound) {
        t.Fatalf("expected expired status to be gone, got %v", err)
    }
}
