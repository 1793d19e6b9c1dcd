package alert

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/roadpulse/roadpulse/internal/api/models"
)

// Lifecycle defaults.
const (
	// DefaultDisplayTimeout is how long an alert stays displayed before
	// it expires on its own.
	DefaultDisplayTimeout = 10 * time.Second

	// DefaultAvoidRadiusMeters is the zone carved out around an incident
	// when the driver asks for a reroute.
	DefaultAvoidRadiusMeters = 500
)

// ErrNoAlertDisplayed is returned when Dismiss or Reroute is called with
// nothing on screen.
var ErrNoAlertDisplayed = errors.New("no alert displayed")

// Outcome is the terminal state of a displayed alert.
type Outcome string

const (
	OutcomeDismissed Outcome = "dismissed"
	OutcomeRerouted  Outcome = "rerouted"
	OutcomeExpired   Outcome = "expired"
)

// Rerouter recomputes the active route around an incident.
type Rerouter interface {
	Reroute(ctx context.Context, incident models.Incident, avoidRadiusMeters float64) error
}

// ManagerConfig holds configuration for the alert manager.
type ManagerConfig struct {
	// DisplayTimeout is the auto-expiry for a displayed alert
	// (default 10s).
	DisplayTimeout time.Duration

	// AvoidRadiusMeters is the reroute avoid zone radius (default 500).
	AvoidRadiusMeters float64

	// Rerouter handles reroute requests (optional).
	Rerouter Rerouter

	// OnDisplay is called when an alert reaches the screen (optional).
	OnDisplay func(Candidate)

	// OnResolve is called exactly once per displayed alert (optional).
	OnResolve func(Candidate, Outcome)

	// Logger for lifecycle events.
	Logger zerolog.Logger
}

// Manager runs alerts through idle → pending → displayed → resolved. One
// alert is displayed at a time; each displayed alert resolves exactly once,
// by dismissal, reroute or expiry.
type Manager struct {
	displayTimeout    time.Duration
	avoidRadiusMeters float64
	rerouter          Rerouter
	onDisplay         func(Candidate)
	onResolve         func(Candidate, Outcome)
	logger            zerolog.Logger

	mu       sync.Mutex
	queue    []Candidate
	current  *Candidate
	timer    *time.Timer
	gen      int
	resolved map[int64]struct{}
}

// NewManager creates a new alert manager.
func NewManager(cfg ManagerConfig) *Manager {
	timeout := cfg.DisplayTimeout
	if timeout <= 0 {
		timeout = DefaultDisplayTimeout
	}
	avoidRadius := cfg.AvoidRadiusMeters
	if avoidRadius <= 0 {
		avoidRadius = DefaultAvoidRadiusMeters
	}

	return &Manager{
		displayTimeout:    timeout,
		avoidRadiusMeters: avoidRadius,
		rerouter:          cfg.Rerouter,
		onDisplay:         cfg.OnDisplay,
		onResolve:         cfg.OnResolve,
		logger:            cfg.Logger,
		resolved:          make(map[int64]struct{}),
	}
}

// Offer submits a relevant incident for display. Returns false when the
// alert was already shown and resolved, or is already queued or displayed.
func (m *Manager) Offer(candidate Candidate) bool {
	m.mu.Lock()

	id := candidate.Incident.ID
	if _, done := m.resolved[id]; done {
		m.mu.Unlock()
		return false
	}
	if m.current != nil && m.current.Incident.ID == id {
		m.mu.Unlock()
		return false
	}
	for _, queued := range m.queue {
		if queued.Incident.ID == id {
			m.mu.Unlock()
			return false
		}
	}

	m.queue = append(m.queue, candidate)
	displayed := m.promoteLocked()
	m.mu.Unlock()

	m.notifyDisplay(displayed)
	return true
}

// Current returns the displayed alert, or nil.
func (m *Manager) Current() *Candidate {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current == nil {
		return nil
	}
	copied := *m.current
	return &copied
}

// Dismiss resolves the displayed alert as dismissed.
func (m *Manager) Dismiss() error {
	_, err := m.resolveCurrent(OutcomeDismissed)
	return err
}

// Reroute resolves the displayed alert as rerouted and asks the rerouter
// to recompute around the incident.
func (m *Manager) Reroute(ctx context.Context) error {
	resolved, err := m.resolveCurrent(OutcomeRerouted)
	if err != nil {
		return err
	}
	if m.rerouter == nil {
		return nil
	}
	return m.rerouter.Reroute(ctx, resolved.Incident, m.avoidRadiusMeters)
}

// resolveCurrent takes the displayed alert through its terminal state and
// promotes the next queued alert.
func (m *Manager) resolveCurrent(outcome Outcome) (Candidate, error) {
	m.mu.Lock()
	if m.current == nil {
		m.mu.Unlock()
		return Candidate{}, ErrNoAlertDisplayed
	}

	resolved := *m.current
	m.finishLocked(resolved, outcome)
	displayed := m.promoteLocked()
	m.mu.Unlock()

	m.notifyResolve(resolved, outcome)
	m.notifyDisplay(displayed)
	return resolved, nil
}

// expire is the timer callback. The generation check makes a stale timer a
// no-op when the alert was already resolved by hand.
func (m *Manager) expire(gen int) {
	m.mu.Lock()
	if m.current == nil || m.gen != gen {
		m.mu.Unlock()
		return
	}

	resolved := *m.current
	m.finishLocked(resolved, OutcomeExpired)
	displayed := m.promoteLocked()
	m.mu.Unlock()

	m.notifyResolve(resolved, OutcomeExpired)
	m.notifyDisplay(displayed)
}

func (m *Manager) finishLocked(resolved Candidate, outcome Outcome) {
	m.resolved[resolved.Incident.ID] = struct{}{}
	m.current = nil
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}

	m.logger.Info().
		Int64("incident_id", resolved.Incident.ID).
		Str("outcome", string(outcome)).
		Msg("alert resolved")
}

// promoteLocked moves the front of the queue onto the screen. Returns the
// newly displayed alert, or nil when nothing changed.
func (m *Manager) promoteLocked() *Candidate {
	if m.current != nil || len(m.queue) == 0 {
		return nil
	}

	next := m.queue[0]
	m.queue = m.queue[1:]
	m.current = &next
	m.gen++

	gen := m.gen
	m.timer = time.AfterFunc(m.displayTimeout, func() { m.expire(gen) })

	m.logger.Info().
		Int64("incident_id", next.Incident.ID).
		Float64("distance_m", next.DistanceMeters).
		Msg("alert displayed")

	copied := next
	return &copied
}

func (m *Manager) notifyDisplay(candidate *Candidate) {
	if candidate != nil && m.onDisplay != nil {
		m.onDisplay(*candidate)
	}
}

func (m *Manager) notifyResolve(candidate Candidate, outcome Outcome) {
	if m.onResolve != nil {
		m.onResolve(candidate, outcome)
	}
}
