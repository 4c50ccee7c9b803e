package repository

import (
    "context"
    "encoding/json"
    "errors"
    "sync"
    "time"

    "github.com/redis/go-redis/v9"

    "github.com/iliyamo/appointment-booking/internal/model"
)

// statusTTL bounds how long delivery outcomes stay observable.
const statusTTL = 24 * time.Hour

// RedisStatusRepo keeps notification statuses as JSON strings under
// <prefix>:<task id> with a one day expiry.
type RedisStatusRepo struct {
    rdb    *redis.Client
    prefix string
}

func NewRedisStatusRepo(rdb *redis.Client, prefix string) *RedisStatusRepo {
    if prefix == "" {
        prefix = "notify"
    }
    return &RedisStatusRepo{rdb: rdb, prefix: prefix}
}

func (r *RedisStatusRepo) key(id string) string { return r.prefix + ":" + id }

// Put stores or replaces the status of a task.
func (r *RedisStatusRepo) Put(ctx context.Context, st model.NotificationStatus) error {
    raw, err := json.Marshal(st)
    if err != nil {
        return err
    }
    return r.rdb.Set(ctx, r.key(st.TaskID), raw, statusTTL).Err()
}

// Get returns the status of a task or ErrNotFound.
func (r *RedisStatusRepo) Get(ctx context.Context, id string) (model.NotificationStatus, error) {
    raw, err := r.rdb.Get(ctx, r.key(id)).Bytes()
    if errors.Is(err, redis.Nil) {
        return model.NotificationStatus{}, ErrNotFound
    }
    if err != nil {
        return model.NotificationStatus{}, err
    }
    var st model.NotificationStatus
    if err := json.Unmarshal(raw, &st); err != nil {
        return model.NotificationStatus{}, err
    }
    return st, nil
}

// MemoryStatusRepo is the in-process fallback used when Redis is
// unavailable and in tests.  Entries expire after the same TTL as Redis.
type MemoryStatusRepo struct {
    mu      sync.RWMutex
    entries map[string]memoryStatus
    now     func() time.Time
}

type memoryStatus struct {
    st      model.NotificationStatus
    expires time.Time
}

func NewMemoryStatusRepo() *MemoryStatusRepo {
    return &MemoryStatusRepo{entries: make(map[string]memoryStatus), now: time.Now}
}

func (r *MemoryStatusRepo) Put(_ context.Context, st model.NotificationStatus) error {
    r.mu.Lock()
    defer r.mu.Unlock()
    now := r.now()
    for id, e := range r.entries {
        if now.After(e.expires) {
            delete(r.entries, id)
        }
    }
    r.entries[st.TaskID] = memoryStatus{st: st, expires: now.Add(statusTTL)}
    return nil
}

func (r *MemoryStatusRepo) Get(_ context.Context, id string) (model.NotificationStatus, error) {
    r.mu.RLock()
    defer r.mu.RUnlock()
    e, ok := r.entries[id]
    if !ok || r.now().After(e.expires) {
        return model.NotificationStatus{}, ErrNotFound
    }
    return e.st, nil
}
