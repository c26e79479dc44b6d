package services

import (
	"errors"
	"testing"
	"time"
)

func TestActivityClockRecordAndRead(t *testing.T) {
	clock := NewActivityClock(NewMemoryClockStore())

	if _, ok := clock.ReadLastActive("session-1"); ok {
		t.Fatal("ReadLastActive() reported a record before any activity")
	}

	before := time.Now()
	clock.RecordActivity("session-1")
	after := time.Now()

	got, ok := clock.ReadLastActive("session-1")
	if !ok {
		t.Fatal("ReadLastActive() found no record after RecordActivity()")
	}
	if got.Before(before) || got.After(after) {
		t.Errorf("recorded timestamp %v outside [%v, %v]", got, before, after)
	}
}

func TestActivityClockOverwrites(t *testing.T) {
	clock := NewActivityClock(NewMemoryClockStore())

	clock.RecordActivity("session-1")
	first, _ := clock.ReadLastActive("session-1")

	time.Sleep(5 * time.Millisecond)
	clock.RecordActivity("session-1")
	second, _ := clock.ReadLastActive("session-1")

	if !second.After(first) {
		t.Errorf("second record %v not after first %v", second, first)
	}
}

func TestActivityClockClear(t *testing.T) {
	clock := NewActivityClock(NewMemoryClockStore())

	clock.RecordActivity("session-1")
	clock.RecordActivity("session-2")
	clock.Clear("session-1")

	if _, ok := clock.ReadLastActive("session-1"); ok {
		t.Error("record survived Clear()")
	}
	if _, ok := clock.ReadLastActive("session-2"); !ok {
		t.Error("Clear() erased an unrelated session's record")
	}

	// Clearing an absent record is a no-op
	clock.Clear("session-1")
}

type failingClockStore struct {
	inner *MemoryClockStore
	fail  bool
}

func (s *failingClockStore) Set(sessionID string, t time.Time) error {
	if s.fail {
		return errTestStoreDown
	}
	return s.inner.Set(sessionID, t)
}

func (s *failingClockStore) Get(sessionID string) (time.Time, bool, error) {
	if s.fail {
		return time.Time{}, false, errTestStoreDown
	}
	return s.inner.Get(sessionID)
}

func (s *failingClockStore) Delete(sessionID string) error {
	if s.fail {
		return errTestStoreDown
	}
	return s.inner.Delete(sessionID)
}

var errTestStoreDown = errors.New("store unreachable")

func TestActivityClockFallsBackWhenStoreFails(t *testing.T) {
	store := &failingClockStore{inner: NewMemoryClockStore(), fail: true}
	clock := NewActivityClock(store)

	clock.RecordActivity("session-1")

	got, ok := clock.ReadLastActive("session-1")
	if !ok {
		t.Fatal("ReadLastActive() lost the record while the store was down")
	}
	if time.Since(got) > time.Second {
		t.Errorf("fallback timestamp %v is stale", got)
	}

	// Once the store recovers, a fresh write supersedes the fallback
	store.fail = false
	clock.RecordActivity("session-1")
	if _, ok, _ := store.inner.Get("session-1"); !ok {
		t.Error("recovered store did not receive the new record")
	}
}
