package intervals

import (
	"time"

	"intervaltimer/internal/core/model"
)

// State represents the current Engine mode.
type State string

const (
	StateIdle     State = "idle"
	StateRunning  State = "running"
	StatePaused   State = "paused"
	StateComplete State = "complete"
)

// EventType defines the type of Engine event.
type EventType string

const (
	EventTick              EventType = "tick"
	EventPhaseChanged      EventType = "phase_changed"
	EventCompleted         EventType = "completed"
	EventStateChange       EventType = "state_change"
	EventContinuationError EventType = "continuation_error"
)

// Event represents an Engine update for observers.
type Event struct {
	Type       EventType
	State      State
	PhaseIndex int
	PhaseCount int
	Phase      model.Phase
	Remaining  time.Duration
	Message    string
	At         time.Time

	run uint64
}

// RemainingSeconds returns Remaining rounded to whole seconds.
func (event Event) RemainingSeconds() int {
	return roundSeconds(event.Remaining)
}

// Callbacks are invoked outside the engine lock, in event order.
// They may call back into the Engine.
type Callbacks struct {
	// OnEvent receives every event, before the typed callback for it. Unlike
	// Subscribe channels it never misses one.
	OnEvent        func(event Event)
	OnTick         func(remainingSeconds int)
	OnPhaseChanged func(index int)
	OnCompleted    func()
	OnStateChange  func(state State)
}

func (callbacks Callbacks) dispatch(event Event) {
	if callbacks.OnEvent != nil {
		callbacks.OnEvent(event)
	}
	switch event.Type {
	case EventTick:
		if callbacks.OnTick != nil {
			callbacks.OnTick(event.RemainingSeconds())
		}
	case EventPhaseChanged:
		if callbacks.OnPhaseChanged != nil {
			callbacks.OnPhaseChanged(event.PhaseIndex)
		}
	case EventCompleted:
		if callbacks.OnCompleted != nil {
			callbacks.OnCompleted()
		}
	case EventStateChange:
		if callbacks.OnStateChange != nil {
			callbacks.OnStateChange(event.State)
		}
	}
}

// Status is a point-in-time view of a run.
type Status struct {
	State      State
	PhaseIndex int
	PhaseCount int
	Phase      model.Phase
	Remaining  time.Duration
}

// RemainingSeconds returns Remaining rounded to whole seconds.
func (status Status) RemainingSeconds() int {
	return roundSeconds(status.Remaining)
}

// IsRunning reports whether a countdown is ticking.
func (status Status) IsRunning() bool {
	return status.State == StateRunning
}

// IsComplete reports whether the cursor has passed the last phase.
func (status Status) IsComplete() bool {
	return status.State == StateComplete
}

func roundSeconds(remaining time.Duration) int {
	if remaining <= 0 {
		return 0
	}
	return int((remaining + time.Second/2) / time.Second)
}
