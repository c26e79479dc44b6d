package services

import (
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"main/model"
	"main/utils"
)

// Guard phases. Expired is terminal: no transition may leave it.
type GuardPhase string

const (
	PhaseActive  GuardPhase = "active"
	PhaseWarning GuardPhase = "warning"
	PhaseExpired GuardPhase = "expired"
)

var ErrGuardExpired = errors.New("session guard already expired")

// GuardConfig holds the three idle-timeout constants. They are configured
// independently; the defaults happening to satisfy threshold+countdown=ceiling
// is not a relationship the code relies on.
type GuardConfig struct {
	IdleThreshold     time.Duration // silent window before the warning
	CountdownDuration time.Duration // visible countdown before forced logout
	ReentryCeiling    time.Duration // max gap between last activity and a fresh mount
	Tick              time.Duration // countdown resolution
}

func LoadGuardConfig() GuardConfig {
	return GuardConfig{
		IdleThreshold:     utils.GetEnvAsDuration("IDLE_THRESHOLD", 25*time.Minute),
		CountdownDuration: utils.GetEnvAsDuration("COUNTDOWN_DURATION", 300*time.Second),
		ReentryCeiling:    utils.GetEnvAsDuration("REENTRY_CEILING", 30*time.Minute),
		Tick:              time.Second,
	}
}

// SessionValidator confirms against the live session store that a session
// still exists and is active. Local guard state is not trusted for this:
// the session may have been revoked server-side.
type SessionValidator interface {
	ValidateSession(sessionID string) (bool, error)
}

// SessionTerminator ends the authenticated session.
type SessionTerminator interface {
	TerminateSession(sessionID string) error
}

// AuditSink accepts append-only audit entries.
type AuditSink interface {
	Record(entry *model.ActivityLogEntry) error
}

// IdleGuard runs the two-phase idle timeout for one admin session: a silent
// idle window, then a visible countdown the user can cancel by explicitly
// extending. All phase mutations go through one mutex and are phase-checked,
// so a late timer callback or a losing extend race is simply discarded.
type IdleGuard struct {
	sessionID  string
	actorID    string
	actorEmail string

	cfg        GuardConfig
	clock      *ActivityClock
	validator  SessionValidator
	terminator SessionTerminator
	audit      AuditSink

	mu              sync.Mutex
	phase           GuardPhase
	warningDeadline time.Time
	idleTimer       *time.Timer
	ticker          *time.Ticker
	tickerDone      chan struct{}
}

func NewIdleGuard(sessionID, actorID, actorEmail string, cfg GuardConfig, clock *ActivityClock, validator SessionValidator, terminator SessionTerminator, audit AuditSink) *IdleGuard {
	if cfg.Tick <= 0 {
		cfg.Tick = time.Second
	}
	return &IdleGuard{
		sessionID:  sessionID,
		actorID:    actorID,
		actorEmail: actorEmail,
		cfg:        cfg,
		clock:      clock,
		validator:  validator,
		terminator: terminator,
		audit:      audit,
	}
}

// Start runs the re-entry validation and, if it passes, enters Active and
// schedules the idle timer from now. The old timestamp is only consulted for
// the ceiling check, never for the idle schedule. Returns the resulting phase.
func (g *IdleGuard) Start() GuardPhase {
	if last, ok := g.clock.ReadLastActive(g.sessionID); ok {
		if time.Since(last) > g.cfg.ReentryCeiling {
			// The session sat idle longer than any legitimately-active
			// session could have: expire without ever showing a countdown.
			g.mu.Lock()
			if g.phase == PhaseExpired {
				g.mu.Unlock()
				return PhaseExpired
			}
			g.phase = PhaseExpired
			g.cancelTimersLocked()
			g.mu.Unlock()
			utils.TrackGuardTransition("expired")
			g.terminate(model.ActionTimeout)
			return PhaseExpired
		}
	}

	g.mu.Lock()
	g.phase = PhaseActive
	g.scheduleIdleLocked()
	g.mu.Unlock()
	utils.TrackGuardTransition("active")
	g.clock.RecordActivity(g.sessionID)
	return PhaseActive
}

// OnActivity reschedules the idle timer and refreshes the persisted
// timestamp. Ambient activity is ignored entirely once the warning is
// showing: only an explicit extend or sign-out changes state from there.
func (g *IdleGuard) OnActivity() {
	g.mu.Lock()
	if g.phase != PhaseActive {
		g.mu.Unlock()
		return
	}
	g.scheduleIdleLocked()
	g.mu.Unlock()
	g.clock.RecordActivity(g.sessionID)
}

// Extend is the explicit user action that cancels a running countdown. The
// session is re-validated against the live store first; if it has been
// revoked server-side the guard expires instead.
func (g *IdleGuard) Extend() error {
	g.mu.Lock()
	switch g.phase {
	case PhaseExpired:
		g.mu.Unlock()
		return ErrGuardExpired
	case PhaseActive:
		// Nothing to extend
		g.mu.Unlock()
		return nil
	}
	g.mu.Unlock()

	valid, err := g.validator.ValidateSession(g.sessionID)
	if err != nil {
		// Transient validation failure: stay in Warning, the user may retry
		return fmt.Errorf("failed to validate session: %w", err)
	}
	if !valid {
		g.expire(model.ActionTimeout)
		return ErrGuardExpired
	}

	g.mu.Lock()
	if g.phase != PhaseWarning {
		// The countdown hit zero while we were validating; that transition
		// won, this one is discarded.
		phase := g.phase
		g.mu.Unlock()
		if phase == PhaseExpired {
			return ErrGuardExpired
		}
		return nil
	}
	g.phase = PhaseActive
	g.cancelTimersLocked()
	g.scheduleIdleLocked()
	g.mu.Unlock()
	utils.TrackGuardTransition("active")
	g.clock.RecordActivity(g.sessionID)
	return nil
}

// SignOut is the explicit user-triggered termination, valid from Active or
// Warning.
func (g *IdleGuard) SignOut() {
	g.expire(model.ActionLogout)
}

// Phase returns the current guard phase.
func (g *IdleGuard) Phase() GuardPhase {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.phase
}

// SecondsRemaining reports the live countdown value, or 0 outside Warning.
func (g *IdleGuard) SecondsRemaining() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.phase != PhaseWarning {
		return 0
	}
	remaining := time.Until(g.warningDeadline)
	if remaining <= 0 {
		return 0
	}
	return int((remaining + time.Second - 1) / time.Second)
}

// Stop cancels all timers without a phase transition. Used when the process
// shuts down; the persisted activity timestamp keeps re-entry validation
// working on the next start.
func (g *IdleGuard) Stop() {
	g.mu.Lock()
	g.cancelTimersLocked()
	g.mu.Unlock()
}

// scheduleIdleLocked (re)arms the idle timer: debounce-to-latest, a reset of
// the single timer, never a second timer.
func (g *IdleGuard) scheduleIdleLocked() {
	if g.idleTimer != nil {
		g.idleTimer.Stop()
		g.idleTimer.Reset(g.cfg.IdleThreshold)
		return
	}
	g.idleTimer = time.AfterFunc(g.cfg.IdleThreshold, g.onIdleThreshold)
}

func (g *IdleGuard) cancelTimersLocked() {
	if g.idleTimer != nil {
		g.idleTimer.Stop()
		g.idleTimer = nil
	}
	if g.ticker != nil {
		g.ticker.Stop()
		g.ticker = nil
		close(g.tickerDone)
		g.tickerDone = nil
	}
}

// onIdleThreshold fires when the silent idle window elapses with no activity.
func (g *IdleGuard) onIdleThreshold() {
	g.mu.Lock()
	if g.phase != PhaseActive {
		g.mu.Unlock()
		return
	}
	g.phase = PhaseWarning
	g.warningDeadline = time.Now().Add(g.cfg.CountdownDuration)
	if g.idleTimer != nil {
		g.idleTimer.Stop()
		g.idleTimer = nil
	}
	g.ticker = time.NewTicker(g.cfg.Tick)
	g.tickerDone = make(chan struct{})
	go g.runCountdown(g.ticker, g.tickerDone)
	g.mu.Unlock()
	utils.TrackGuardTransition("warning")
}

func (g *IdleGuard) runCountdown(ticker *time.Ticker, done chan struct{}) {
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			if g.countdownTick() {
				return
			}
		}
	}
}

// countdownTick returns true when the countdown loop should stop.
func (g *IdleGuard) countdownTick() bool {
	g.mu.Lock()
	if g.phase != PhaseWarning {
		g.mu.Unlock()
		return true
	}
	if time.Now().Before(g.warningDeadline) {
		g.mu.Unlock()
		return false
	}
	g.phase = PhaseExpired
	g.cancelTimersLocked()
	g.mu.Unlock()
	utils.TrackGuardTransition("expired")
	g.terminate(model.ActionTimeout)
	return true
}

// expire moves the guard to the terminal phase and runs the termination
// sequence. A guard already expired stays expired; every caller funnels
// through the same phase check.
func (g *IdleGuard) expire(kind string) {
	g.mu.Lock()
	if g.phase == PhaseExpired {
		g.mu.Unlock()
		return
	}
	g.phase = PhaseExpired
	g.cancelTimersLocked()
	g.mu.Unlock()
	utils.TrackGuardTransition("expired")
	g.terminate(kind)
}

// terminate writes the audit entry, clears the activity clock and ends the
// session. Every step is best-effort: losing an audit entry is acceptable,
// leaving a stale session active is not.
func (g *IdleGuard) terminate(kind string) {
	if g.audit != nil {
		entry := &model.ActivityLogEntry{
			Action:     kind,
			ItemLabel:  "Admin session",
			Module:     "auth",
			ActorID:    g.actorID,
			ActorEmail: g.actorEmail,
			CreatedAt:  time.Now(),
		}
		if err := g.audit.Record(entry); err != nil {
			utils.TrackError("audit", "write_failed")
			log.Printf("Warning: Failed to write %s audit entry: %v", kind, err)
		}
	}

	g.clock.Clear(g.sessionID)

	if g.terminator != nil {
		if err := g.terminator.TerminateSession(g.sessionID); err != nil {
			utils.TrackError("session", "termination_failed")
			log.Printf("Warning: Failed to terminate session %s: %v", g.sessionID, err)
		}
	}
}

// GuardManager owns one guard per live admin session. Guards are created on
// login, resumed on the first authenticated request after a restart (which
// re-runs the re-entry validation) and dropped when their session ends.
type GuardManager struct {
	cfg        GuardConfig
	clock      *ActivityClock
	validator  SessionValidator
	terminator SessionTerminator
	audit      AuditSink

	mu     sync.Mutex
	guards map[string]*IdleGuard
}

func NewGuardManager(cfg GuardConfig, clock *ActivityClock, validator SessionValidator, terminator SessionTerminator, audit AuditSink) *GuardManager {
	return &GuardManager{
		cfg:        cfg,
		clock:      clock,
		validator:  validator,
		terminator: terminator,
		audit:      audit,
		guards:     make(map[string]*IdleGuard),
	}
}

// Ensure returns the guard for a session, starting one (with re-entry
// validation) if none is running.
func (m *GuardManager) Ensure(sessionID, actorID, actorEmail string) *IdleGuard {
	m.mu.Lock()
	if g, ok := m.guards[sessionID]; ok {
		m.mu.Unlock()
		return g
	}
	g := NewIdleGuard(sessionID, actorID, actorEmail, m.cfg, m.clock, m.validator, m.terminator, m.audit)
	m.guards[sessionID] = g
	m.mu.Unlock()

	g.Start()
	return g
}

// Get returns the running guard for a session, if any.
func (m *GuardManager) Get(sessionID string) (*IdleGuard, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	g, ok := m.guards[sessionID]
	return g, ok
}

// RecordActivity feeds ambient interaction into the session's guard.
func (m *GuardManager) RecordActivity(sessionID string) {
	if g, ok := m.Get(sessionID); ok {
		g.OnActivity()
	}
}

// Drop stops and removes a guard without a phase transition.
func (m *GuardManager) Drop(sessionID string) {
	m.mu.Lock()
	g, ok := m.guards[sessionID]
	delete(m.guards, sessionID)
	m.mu.Unlock()
	if ok {
		g.Stop()
	}
}

// Shutdown stops every running guard.
func (m *GuardManager) Shutdown() {
	m.mu.Lock()
	guards := make([]*IdleGuard, 0, len(m.guards))
	for _, g := range m.guards {
		guards = append(guards, g)
	}
	m.guards = make(map[string]*IdleGuard)
	m.mu.Unlock()
	for _, g := range guards {
		g.Stop()
	}
}
