// Package drag turns a sequence of pointer and gesture events into committed
// or aborted move intents, guarded by a finite state machine.
package drag

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync"

	"github.com/google/uuid"

	"relocator/internal/core/domain"
	"relocator/internal/core/registry"
	"relocator/internal/engine/metrics"
	"relocator/internal/engine/projector"
	"relocator/internal/engine/reconcile"
)

// DefaultActivationDistance is the pointer travel, in device units, required
// before a press becomes a drag. It prevents accidental drags from simple
// clicks and taps.
const DefaultActivationDistance = 8.0

var (
	// ErrDragInProgress is returned when a new drag is started while another
	// session is still dragging, hovering, or committing.
	ErrDragInProgress = errors.New("drag already in progress")

	// ErrNoActiveDrag is returned when a gesture event arrives with no drag
	// in flight.
	ErrNoActiveDrag = errors.New("no active drag")

	// ErrCommitInFlight is returned when cancel is requested while the
	// persistence call is still pending.
	ErrCommitInFlight = errors.New("commit in flight")

	// ErrDragSuperseded is returned when the registry was reloaded underneath
	// an active drag; the drag is abandoned.
	ErrDragSuperseded = errors.New("drag superseded by resync")
)

// Committer performs the authoritative persistence call for a dropped item.
type Committer interface {
	Commit(ctx context.Context, site, sku, destRoom string, generation uint64) (reconcile.Outcome, error)
}

// Resyncer discards local speculation and restores the authoritative registry.
type Resyncer interface {
	Resync(ctx context.Context, site string) error
}

// Config holds the session dependencies.
type Config struct {
	Store              *registry.Store
	Committer          Committer
	Sync               Resyncer
	ActivationDistance float64
	Logger             *slog.Logger
}

// Session is the lifecycle of user-initiated relocation attempts. A single
// session value is reused across drags; the state machine guard ensures only
// one relocation is in flight at a time.
type Session struct {
	mu  sync.Mutex
	cfg Config
	log *slog.Logger

	state   State
	id      string
	history []Transition

	// Press tracking before the activation threshold is crossed.
	pressed        bool
	pressedSKU     string
	pressX, pressY float64

	// Active drag.
	sku        string
	sourceRoom string
	hoverRoom  string
	base       domain.Registry
	generation uint64
}

// NewSession creates a session in the Idle state.
func NewSession(cfg Config) *Session {
	if cfg.ActivationDistance <= 0 {
		cfg.ActivationDistance = DefaultActivationDistance
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Session{
		cfg:   cfg,
		log:   cfg.Logger,
		state: StateIdle,
	}
}

// State returns the current session state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Active returns the SKU of the item currently being dragged, if any. The
// presentation layer uses this to render the drag preview.
func (s *Session) Active() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch s.state {
	case StateDragging, StateHovering, StateCommitting:
		return s.sku, true
	}
	return "", false
}

// Press records a pointer press on an item. The drag does not begin until the
// pointer travels past the activation distance.
func (s *Session) Press(sku string, x, y float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateIdle {
		return ErrDragInProgress
	}
	s.pressed = true
	s.pressedSKU = sku
	s.pressX, s.pressY = x, y
	return nil
}

// Move reports pointer movement. Crossing the activation distance while a
// press is held starts the drag.
func (s *Session) Move(x, y float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.pressed || s.state != StateIdle {
		return nil
	}
	dx, dy := x-s.pressX, y-s.pressY
	if math.Hypot(dx, dy) < s.cfg.ActivationDistance {
		return nil
	}
	return s.activate(s.pressedSKU, "activation distance crossed")
}

// Release clears a press that never crossed the activation threshold, i.e. a
// plain click.
func (s *Session) Release() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateIdle {
		s.pressed = false
		s.pressedSKU = ""
	}
}

// BeginDrag starts a drag directly, bypassing pointer tracking. Used by
// keyboard-driven selection, where no activation distance applies.
func (s *Session) BeginDrag(sku string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateIdle {
		return ErrDragInProgress
	}
	return s.activate(sku, "drag begun")
}

// activate captures the dragged item's current room from the registry at this
// instant, so a drag started right after a prior commit sees up-to-date
// membership. Callers hold s.mu.
func (s *Session) activate(sku, reason string) error {
	_, source, err := s.cfg.Store.FindItem(sku)
	if err != nil {
		s.pressed = false
		return fmt.Errorf("cannot start drag: %w", err)
	}

	s.id = uuid.NewString()
	s.sku = sku
	s.sourceRoom = source
	s.hoverRoom = ""
	s.base = s.cfg.Store.Snapshot()
	s.generation = s.cfg.Store.Generation()
	s.pressed = false
	s.pressedSKU = ""

	s.transition(StateDragging, reason)
	s.log.Debug("drag started",
		"session", s.id, "sku", sku, "source", source)
	return nil
}

// Hover resolves a drop target and applies a speculative preview. A target
// that cannot be resolved is absorbed locally: the session stays in Dragging
// with no destination. Each preview is computed against the registry captured
// at activation, never against an earlier preview, so hovers overwrite rather
// than compound.
func (s *Session) Hover(target string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case StateDragging, StateHovering:
	default:
		return ErrNoActiveDrag
	}

	if s.cfg.Store.Generation() != s.generation {
		s.abandonSuperseded()
		return ErrDragSuperseded
	}

	dest, err := s.cfg.Store.ResolveTarget(target)
	if err != nil {
		if s.state == StateHovering {
			s.transition(StateDragging, "drop target lost")
		}
		s.hoverRoom = ""
		return nil
	}

	s.hoverRoom = dest
	if s.state == StateDragging {
		s.transition(StateHovering, "drop target resolved")
	}

	// ApplyIf re-checks the generation under the store's lock: a reload
	// landing after the check above must not be overwritten by this preview.
	preview := projector.Project(s.base, s.sourceRoom, dest, s.sku)
	if !s.cfg.Store.ApplyIf(s.generation, preview) {
		s.abandonSuperseded()
		return ErrDragSuperseded
	}
	metrics.PreviewsTotal.WithLabelValues(s.cfg.Store.Site()).Inc()
	return nil
}

// Drop ends the drag. An empty target falls back to the last hovered
// destination. A drop with no resolvable destination, or onto the original
// source room, issues no persistence call and reverts via resync. Otherwise
// the session commits using the original source room and the final
// destination, not state re-derived from the already-previewed registry.
func (s *Session) Drop(ctx context.Context, target string) error {
	s.mu.Lock()

	switch s.state {
	case StateDragging, StateHovering:
	default:
		s.mu.Unlock()
		return ErrNoActiveDrag
	}

	if s.cfg.Store.Generation() != s.generation {
		s.abandonSuperseded()
		s.mu.Unlock()
		return ErrDragSuperseded
	}

	dest := s.hoverRoom
	if target != "" {
		if resolved, err := s.cfg.Store.ResolveTarget(target); err == nil {
			dest = resolved
		} else {
			dest = ""
		}
	}

	site := s.cfg.Store.Site()

	if dest == "" {
		s.finish(StateReverted, "drop outside target")
		s.mu.Unlock()
		return s.resync(ctx, site)
	}

	if dest == s.sourceRoom {
		// Same-destination drop: no persistence call. Restoring the snapshot
		// taken at activation discards any preview left by earlier hovers. A
		// reload that landed since the check above wins over the snapshot.
		if !s.cfg.Store.ApplyIf(s.generation, s.base) {
			s.abandonSuperseded()
			s.mu.Unlock()
			return ErrDragSuperseded
		}
		s.finish(StateReverted, "dropped on source room")
		s.mu.Unlock()
		return nil
	}

	if s.state == StateDragging {
		s.transition(StateHovering, "drop target resolved")
	}
	s.transition(StateCommitting, "drop accepted")
	sku, source, generation := s.sku, s.sourceRoom, s.generation
	s.mu.Unlock()

	// The persistence call runs without the lock so readers can keep
	// rendering; the Committing state rejects competing gestures meanwhile.
	outcome, err := s.cfg.Committer.Commit(ctx, site, sku, dest, generation)

	s.mu.Lock()
	switch outcome {
	case reconcile.OutcomeSettled:
		s.finish(StateSettled, "move confirmed")
	default:
		s.finish(StateReverted, string(outcome))
	}
	s.mu.Unlock()

	if err != nil {
		s.log.Warn("drop did not settle",
			"site", site, "sku", sku, "source", source, "dest", dest, "error", err)
	}
	return err
}

// Cancel abandons the drag without a persistence call and resyncs. A commit
// already in flight cannot be cancelled.
func (s *Session) Cancel(ctx context.Context) error {
	s.mu.Lock()

	switch s.state {
	case StateDragging, StateHovering:
	case StateCommitting:
		s.mu.Unlock()
		return ErrCommitInFlight
	default:
		s.mu.Unlock()
		return ErrNoActiveDrag
	}

	site := s.cfg.Store.Site()
	s.finish(StateReverted, "cancelled")
	s.mu.Unlock()

	return s.resync(ctx, site)
}

// abandonSuperseded ends a drag whose registry was reloaded underneath it.
// The resync that bumped the generation already restored authoritative state,
// so no further fetch is needed. Callers hold s.mu.
func (s *Session) abandonSuperseded() {
	s.log.Debug("drag superseded by resync", "session", s.id, "sku", s.sku)
	s.finish(StateReverted, "superseded by resync")
}

// finish records the terminal transition and returns the session to Idle.
// Callers hold s.mu.
func (s *Session) finish(terminal State, reason string) {
	s.transition(terminal, reason)
	s.log.Debug("drag finished",
		"session", s.id, "outcome", StateDescription(terminal))
	s.transition(StateIdle, "session complete")
	s.sku = ""
	s.sourceRoom = ""
	s.hoverRoom = ""
	s.base = nil
	s.generation = 0
}

// maxTransitionHistory bounds the retained transition records; a single drag
// produces a handful, so this keeps several recent drags inspectable.
const maxTransitionHistory = 64

// transition moves the state machine, recording the step. Callers hold s.mu.
func (s *Session) transition(to State, reason string) {
	tr := NewTransition(s.state, to, reason)
	if !tr.IsValid() {
		// Transitions are driven by validated entry points; hitting this
		// means a bug in the session itself.
		s.log.Error("invalid drag transition",
			"from", s.state, "to", to, "reason", reason, "error", ErrInvalidTransition)
		return
	}
	s.history = append(s.history, tr)
	if len(s.history) > maxTransitionHistory {
		s.history = s.history[len(s.history)-maxTransitionHistory:]
	}
	metrics.DragTransitions.WithLabelValues(string(s.state), string(to)).Inc()
	s.log.Debug("drag transition", "from", s.state, "to", to, "reason", reason)
	s.state = to
}

// Transitions returns the recorded state transitions, oldest first. Intended
// for debugging gesture handling in the presentation layer.
func (s *Session) Transitions() []Transition {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Transition, len(s.history))
	copy(out, s.history)
	return out
}

func (s *Session) resync(ctx context.Context, site string) error {
	if err := s.cfg.Sync.Resync(ctx, site); err != nil {
		return fmt.Errorf("resync after aborted drag: %w", err)
	}
	return nil
}
