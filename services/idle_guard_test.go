package services

import (
	"errors"
	"sync"
	"testing"
	"time"

	"main/model"
)

type fakeValidator struct {
	mu    sync.Mutex
	valid bool
	err   error
	calls int
}

func (f *fakeValidator) ValidateSession(sessionID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.valid, f.err
}

type fakeTerminator struct {
	mu    sync.Mutex
	calls []string
}

func (f *fakeTerminator) TerminateSession(sessionID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, sessionID)
	return nil
}

func (f *fakeTerminator) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type fakeAudit struct {
	mu      sync.Mutex
	entries []*model.ActivityLogEntry
}

func (f *fakeAudit) Record(entry *model.ActivityLogEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = append(f.entries, entry)
	return nil
}

func (f *fakeAudit) countAction(action string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, e := range f.entries {
		if e.Action == action {
			n++
		}
	}
	return n
}

func testGuardConfig() GuardConfig {
	return GuardConfig{
		IdleThreshold:     50 * time.Millisecond,
		CountdownDuration: 150 * time.Millisecond,
		ReentryCeiling:    500 * time.Millisecond,
		Tick:              10 * time.Millisecond,
	}
}

func newTestGuard(cfg GuardConfig) (*IdleGuard, *fakeValidator, *fakeTerminator, *fakeAudit, *ActivityClock) {
	validator := &fakeValidator{valid: true}
	terminator := &fakeTerminator{}
	audit := &fakeAudit{}
	clock := NewActivityClock(NewMemoryClockStore())
	g := NewIdleGuard("session-1", "user-1", "admin@example.com", cfg, clock, validator, terminator, audit)
	return g, validator, terminator, audit, clock
}

func waitForPhase(t *testing.T, g *IdleGuard, want GuardPhase, timeout time.Duration) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if g.Phase() == want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("guard never reached phase %q, stuck at %q", want, g.Phase())
}

func TestGuardStartsActive(t *testing.T) {
	g, _, _, _, _ := newTestGuard(testGuardConfig())
	defer g.Stop()

	if phase := g.Start(); phase != PhaseActive {
		t.Fatalf("Start() = %q, want %q", phase, PhaseActive)
	}

	// Well inside the idle threshold nothing should have happened
	time.Sleep(20 * time.Millisecond)
	if phase := g.Phase(); phase != PhaseActive {
		t.Errorf("Phase() = %q before idle threshold, want %q", phase, PhaseActive)
	}
	if remaining := g.SecondsRemaining(); remaining != 0 {
		t.Errorf("SecondsRemaining() = %d outside warning, want 0", remaining)
	}
}

func TestGuardEntersWarningAfterIdleThreshold(t *testing.T) {
	g, _, terminator, _, _ := newTestGuard(testGuardConfig())
	defer g.Stop()

	g.Start()
	waitForPhase(t, g, PhaseWarning, time.Second)

	if remaining := g.SecondsRemaining(); remaining <= 0 {
		t.Errorf("SecondsRemaining() = %d in warning, want > 0", remaining)
	}
	if terminator.count() != 0 {
		t.Errorf("session terminated during warning, want no termination")
	}
}

func TestGuardActivityDefersWarning(t *testing.T) {
	cfg := testGuardConfig()
	cfg.IdleThreshold = 200 * time.Millisecond
	g, _, _, _, _ := newTestGuard(cfg)
	defer g.Stop()

	g.Start()

	// Keep poking the guard more often than the idle threshold; the total
	// elapsed time still exceeds it, so only the rescheduling keeps us active
	for i := 0; i < 6; i++ {
		time.Sleep(50 * time.Millisecond)
		g.OnActivity()
	}

	if phase := g.Phase(); phase != PhaseActive {
		t.Errorf("Phase() = %q after continuous activity, want %q", phase, PhaseActive)
	}
}

func TestGuardIgnoresAmbientActivityInWarning(t *testing.T) {
	g, _, terminator, audit, _ := newTestGuard(testGuardConfig())
	defer g.Stop()

	g.Start()
	waitForPhase(t, g, PhaseWarning, time.Second)

	// Ambient activity must not cancel the countdown
	g.OnActivity()
	if phase := g.Phase(); phase != PhaseWarning {
		t.Fatalf("Phase() = %q after ambient activity in warning, want %q", phase, PhaseWarning)
	}

	waitForPhase(t, g, PhaseExpired, time.Second)

	if got := terminator.count(); got != 1 {
		t.Errorf("terminator called %d times, want 1", got)
	}
	if got := audit.countAction(model.ActionTimeout); got != 1 {
		t.Errorf("TIMEOUT audit entries = %d, want exactly 1", got)
	}
}

func TestGuardExtendReturnsToActive(t *testing.T) {
	g, validator, _, audit, _ := newTestGuard(testGuardConfig())
	defer g.Stop()

	g.Start()
	waitForPhase(t, g, PhaseWarning, time.Second)

	if err := g.Extend(); err != nil {
		t.Fatalf("Extend() error = %v, want nil", err)
	}
	if phase := g.Phase(); phase != PhaseActive {
		t.Fatalf("Phase() = %q after extend, want %q", phase, PhaseActive)
	}
	if validator.calls == 0 {
		t.Error("Extend() never re-validated the session")
	}
	if got := audit.countAction(model.ActionTimeout); got != 0 {
		t.Errorf("TIMEOUT audit entries = %d after successful extend, want 0", got)
	}

	// The cycle must be re-triggerable: idle out again
	waitForPhase(t, g, PhaseWarning, time.Second)
}

func TestGuardExtendWithRevokedSession(t *testing.T) {
	g, validator, terminator, audit, _ := newTestGuard(testGuardConfig())
	defer g.Stop()
	validator.valid = false

	g.Start()
	waitForPhase(t, g, PhaseWarning, time.Second)

	if err := g.Extend(); !errors.Is(err, ErrGuardExpired) {
		t.Fatalf("Extend() error = %v, want ErrGuardExpired", err)
	}
	if phase := g.Phase(); phase != PhaseExpired {
		t.Errorf("Phase() = %q after failed re-validation, want %q", phase, PhaseExpired)
	}
	if terminator.count() != 1 {
		t.Errorf("terminator called %d times, want 1", terminator.count())
	}
	if got := audit.countAction(model.ActionTimeout); got != 1 {
		t.Errorf("TIMEOUT audit entries = %d, want 1", got)
	}
}

func TestGuardExtendTransientValidationError(t *testing.T) {
	g, validator, terminator, _, _ := newTestGuard(testGuardConfig())
	defer g.Stop()
	validator.err = errors.New("store unreachable")

	g.Start()
	waitForPhase(t, g, PhaseWarning, time.Second)

	err := g.Extend()
	if err == nil || errors.Is(err, ErrGuardExpired) {
		t.Fatalf("Extend() error = %v, want transient error", err)
	}
	if phase := g.Phase(); phase != PhaseWarning {
		t.Errorf("Phase() = %q after transient error, want %q (user may retry)", phase, PhaseWarning)
	}
	if terminator.count() != 0 {
		t.Errorf("terminator called on transient error, want no termination")
	}
}

func TestGuardExtendIsNoOpWhileActive(t *testing.T) {
	g, validator, _, _, _ := newTestGuard(testGuardConfig())
	defer g.Stop()

	g.Start()
	if err := g.Extend(); err != nil {
		t.Fatalf("Extend() in active phase error = %v, want nil", err)
	}
	if validator.calls != 0 {
		t.Errorf("Extend() validated in active phase, want no validation")
	}
}

func TestGuardReentryPastCeilingExpiresImmediately(t *testing.T) {
	cfg := testGuardConfig()
	validator := &fakeValidator{valid: true}
	terminator := &fakeTerminator{}
	audit := &fakeAudit{}
	store := NewMemoryClockStore()
	clock := NewActivityClock(store)

	// A timestamp far beyond the ceiling, as if the process was gone
	store.Set("session-1", time.Now().Add(-time.Hour))

	g := NewIdleGuard("session-1", "user-1", "admin@example.com", cfg, clock, validator, terminator, audit)
	defer g.Stop()

	if phase := g.Start(); phase != PhaseExpired {
		t.Fatalf("Start() = %q with stale timestamp, want %q", phase, PhaseExpired)
	}
	if terminator.count() != 1 {
		t.Errorf("terminator called %d times, want 1", terminator.count())
	}
	if got := audit.countAction(model.ActionTimeout); got != 1 {
		t.Errorf("TIMEOUT audit entries = %d, want 1", got)
	}

	// The clock record is cleared as part of the termination sequence
	if _, ok := clock.ReadLastActive("session-1"); ok {
		t.Error("activity clock record survived re-entry expiry")
	}
}

func TestGuardReentryWithinCeilingResumesActive(t *testing.T) {
	cfg := testGuardConfig()
	validator := &fakeValidator{valid: true}
	store := NewMemoryClockStore()
	clock := NewActivityClock(store)

	store.Set("session-1", time.Now().Add(-cfg.ReentryCeiling/2))

	g := NewIdleGuard("session-1", "user-1", "admin@example.com", cfg, clock, validator, &fakeTerminator{}, &fakeAudit{})
	defer g.Stop()

	if phase := g.Start(); phase != PhaseActive {
		t.Fatalf("Start() = %q within ceiling, want %q", phase, PhaseActive)
	}

	// The idle schedule counts from now, not the old timestamp
	time.Sleep(20 * time.Millisecond)
	if phase := g.Phase(); phase != PhaseActive {
		t.Errorf("Phase() = %q shortly after resume, want %q", phase, PhaseActive)
	}
}

func TestGuardSignOut(t *testing.T) {
	g, _, terminator, audit, _ := newTestGuard(testGuardConfig())
	defer g.Stop()

	g.Start()
	g.SignOut()

	if phase := g.Phase(); phase != PhaseExpired {
		t.Fatalf("Phase() = %q after sign-out, want %q", phase, PhaseExpired)
	}
	if got := audit.countAction(model.ActionLogout); got != 1 {
		t.Errorf("LOGOUT audit entries = %d, want 1", got)
	}
	if got := audit.countAction(model.ActionTimeout); got != 0 {
		t.Errorf("TIMEOUT audit entries = %d after sign-out, want 0", got)
	}
	if terminator.count() != 1 {
		t.Errorf("terminator called %d times, want 1", terminator.count())
	}

	// Expired is terminal
	if err := g.Extend(); !errors.Is(err, ErrGuardExpired) {
		t.Errorf("Extend() after sign-out error = %v, want ErrGuardExpired", err)
	}
}

func TestGuardManagerEnsureAndDrop(t *testing.T) {
	cfg := testGuardConfig()
	clock := NewActivityClock(NewMemoryClockStore())
	m := NewGuardManager(cfg, clock, &fakeValidator{valid: true}, &fakeTerminator{}, &fakeAudit{})
	defer m.Shutdown()

	g1 := m.Ensure("session-1", "user-1", "admin@example.com")
	g2 := m.Ensure("session-1", "user-1", "admin@example.com")
	if g1 != g2 {
		t.Error("Ensure() created a second guard for the same session")
	}

	if _, ok := m.Get("session-2"); ok {
		t.Error("Get() returned a guard that was never created")
	}

	m.Drop("session-1")
	if _, ok := m.Get("session-1"); ok {
		t.Error("guard still registered after Drop()")
	}
}
