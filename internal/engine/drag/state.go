package drag

import (
	"errors"
	"time"
)

// State is the lifecycle state of one relocation attempt.
type State string

const (
	StateIdle       State = "idle"
	StateDragging   State = "dragging"
	StateHovering   State = "hovering"
	StateCommitting State = "committing"
	StateSettled    State = "settled"
	StateReverted   State = "reverted"
)

// ErrInvalidTransition is returned when an invalid state transition is attempted.
var ErrInvalidTransition = errors.New("invalid state transition")

// ValidTransitions defines allowed state transitions.
// Key is the current state, value is the list of valid next states.
var ValidTransitions = map[State][]State{
	StateIdle:     {StateDragging},
	StateDragging: {StateHovering, StateReverted},
	StateHovering: {
		StateHovering, // re-resolved on every pointer-over event
		StateDragging, // target lost, destination cleared
		StateCommitting,
		StateReverted,
	},
	StateCommitting: {StateSettled, StateReverted},
	StateSettled:    {StateIdle},
	StateReverted:   {StateIdle},
}

// CanTransition checks if a transition from one state to another is valid.
func CanTransition(from, to State) bool {
	targets, ok := ValidTransitions[from]
	if !ok {
		return false
	}
	for _, target := range targets {
		if target == to {
			return true
		}
	}
	return false
}

// Transition represents a state change with metadata.
type Transition struct {
	From      State
	To        State
	Reason    string
	Timestamp time.Time
}

// NewTransition creates a new transition record.
func NewTransition(from, to State, reason string) Transition {
	return Transition{
		From:      from,
		To:        to,
		Reason:    reason,
		Timestamp: time.Now(),
	}
}

// IsValid returns true if this transition is allowed by the state machine.
func (t Transition) IsValid() bool {
	return CanTransition(t.From, t.To)
}

// StateDescription returns a human-readable description of a state.
func StateDescription(s State) string {
	switch s {
	case StateIdle:
		return "Idle - no relocation in progress"
	case StateDragging:
		return "Dragging - item picked up, no destination resolved"
	case StateHovering:
		return "Hovering - destination resolved, preview applied"
	case StateCommitting:
		return "Committing - authoritative move call in flight"
	case StateSettled:
		return "Settled - move confirmed by the server"
	case StateReverted:
		return "Reverted - move abandoned, registry resynced"
	default:
		return "Unknown state"
	}
}
