package services

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// ClockStore persists per-session last-activity timestamps so idle
// detection survives a process restart.
type ClockStore interface {
	Set(sessionID string, t time.Time) error
	Get(sessionID string) (time.Time, bool, error)
	Delete(sessionID string) error
}

// RedisClockStore keeps last-activity timestamps in Redis.
type RedisClockStore struct {
	Client *redis.Client
	TTL    time.Duration
}

func NewRedisClockStore(client *redis.Client, ttl time.Duration) *RedisClockStore {
	return &RedisClockStore{Client: client, TTL: ttl}
}

func (s *RedisClockStore) key(sessionID string) string {
	return fmt.Sprintf("last_active:%s", sessionID)
}

func (s *RedisClockStore) Set(sessionID string, t time.Time) error {
	if sessionID == "" {
		return fmt.Errorf("sessionID cannot be empty")
	}
	ctx := context.Background()
	if err := s.Client.Set(ctx, s.key(sessionID), t.UnixMilli(), s.TTL).Err(); err != nil {
		return fmt.Errorf("failed to persist last-activity timestamp: %w", err)
	}
	return nil
}

func (s *RedisClockStore) Get(sessionID string) (time.Time, bool, error) {
	if sessionID == "" {
		return time.Time{}, false, fmt.Errorf("sessionID cannot be empty")
	}
	ctx := context.Background()
	millis, err := s.Client.Get(ctx, s.key(sessionID)).Int64()
	if err == redis.Nil {
		// Absence means "no prior session to validate", never an error
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("failed to read last-activity timestamp: %w", err)
	}
	return time.UnixMilli(millis), true, nil
}

func (s *RedisClockStore) Delete(sessionID string) error {
	if sessionID == "" {
		return fmt.Errorf("sessionID cannot be empty")
	}
	ctx := context.Background()
	if err := s.Client.Del(ctx, s.key(sessionID)).Err(); err != nil {
		return fmt.Errorf("failed to clear last-activity timestamp: %w", err)
	}
	return nil
}

// MemoryClockStore is the in-process fallback used in tests and when Redis
// is unavailable. It does not survive a restart.
type MemoryClockStore struct {
	mu      sync.RWMutex
	entries map[string]time.Time
}

func NewMemoryClockStore() *MemoryClockStore {
	return &MemoryClockStore{entries: make(map[string]time.Time)}
}

func (s *MemoryClockStore) Set(sessionID string, t time.Time) error {
	if sessionID == "" {
		return fmt.Errorf("sessionID cannot be empty")
	}
	s.mu.Lock()
	s.entries[sessionID] = t
	s.mu.Unlock()
	return nil
}

func (s *MemoryClockStore) Get(sessionID string) (time.Time, bool, error) {
	s.mu.RLock()
	t, ok := s.entries[sessionID]
	s.mu.RUnlock()
	return t, ok, nil
}

func (s *MemoryClockStore) Delete(sessionID string) error {
	s.mu.Lock()
	delete(s.entries, sessionID)
	s.mu.Unlock()
	return nil
}

// ActivityClock is the single source of truth for "when did this session
// last do something". Writes go to the durable store; if that fails the
// clock degrades to in-memory for the affected session.
type ActivityClock struct {
	store ClockStore

	mu       sync.Mutex
	fallback map[string]time.Time
}

func NewActivityClock(store ClockStore) *ActivityClock {
	return &ActivityClock{
		store:    store,
		fallback: make(map[string]time.Time),
	}
}

// RecordActivity overwrites the persisted timestamp with the current
// wall-clock time. Callers must not invoke this while the owning guard is
// in the warning phase; the guard enforces that rule.
func (c *ActivityClock) RecordActivity(sessionID string) {
	now := time.Now()
	if err := c.store.Set(sessionID, now); err != nil {
		log.Printf("Warning: Failed to persist activity timestamp: %v", err)
		c.mu.Lock()
		c.fallback[sessionID] = now
		c.mu.Unlock()
		return
	}
	c.mu.Lock()
	delete(c.fallback, sessionID)
	c.mu.Unlock()
}

// ReadLastActive returns the persisted timestamp, or ok=false if the
// session has no recorded activity.
func (c *ActivityClock) ReadLastActive(sessionID string) (time.Time, bool) {
	t, ok, err := c.store.Get(sessionID)
	if err != nil {
		log.Printf("Warning: Failed to read activity timestamp: %v", err)
		c.mu.Lock()
		t, ok = c.fallback[sessionID]
		c.mu.Unlock()
		return t, ok
	}
	return t, ok
}

// Clear erases the persisted timestamp. Called on logout of any kind.
func (c *ActivityClock) Clear(sessionID string) {
	if err := c.store.Delete(sessionID); err != nil {
		log.Printf("Warning: Failed to clear activity timestamp: %v", err)
	}
	c.mu.Lock()
	delete(c.fallback, sessionID)
	c.mu.Unlock()
}
