package fleet

import "strings"

// EntityState is the closed set of project states. The categories are
// distinct, not ordered; Degraded counts as running-like for action
// availability.
type EntityState string

const (
	StateDown       EntityState = "down"
	StateRunning    EntityState = "running"
	StateDegraded   EntityState = "degraded"
	StateRestarting EntityState = "restarting"
	StateExited     EntityState = "exited"
	StateStopped    EntityState = "stopped"
	StateCreated    EntityState = "created"
	StatePaused     EntityState = "paused"
	StateUnknown    EntityState = "unknown"
	StateNotStarted EntityState = "not started"
)

// ParseState folds a raw engine-reported state string into an EntityState.
// Compose-ls style counts ("running(3)") are tolerated. Empty input means
// the project has no containers at all.
func ParseState(raw string) EntityState {
	s := strings.ToLower(strings.TrimSpace(raw))
	if i := strings.IndexByte(s, '('); i >= 0 {
		s = s[:i]
	}

	switch s {
	case "":
		return StateNotStarted
	case "running":
		return StateRunning
	case "degraded", "mixed":
		return StateDegraded
	case "restarting":
		return StateRestarting
	case "exited":
		return StateExited
	case "stopped":
		return StateStopped
	case "created":
		return StateCreated
	case "paused":
		return StatePaused
	case "dead", "down":
		return StateDown
	default:
		return StateUnknown
	}
}

// IsRunningLike reports whether the state counts as running for action
// availability: fully running or degraded (some services up).
func (s EntityState) IsRunningLike() bool {
	return s == StateRunning || s == StateDegraded
}

// HasContainers reports whether Docker resources exist for this state.
// Everything except NotStarted implies materialized containers; Unknown
// still counts because the engine reported something.
func (s EntityState) HasContainers() bool {
	return s != StateNotStarted && s != ""
}
