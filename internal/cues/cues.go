// Package cues turns engine events into audible or visual prompts.
package cues

import (
	"context"
	"fmt"
	"io"
	"sync"
	"sync/atomic"

	"intervaltimer/internal/core/intervals"
	"intervaltimer/internal/core/model"
	"intervaltimer/internal/logging"
)

// Kind classifies a cue.
type Kind string

const (
	CuePhaseStart Kind = "phase_start"
	CueCountdown  Kind = "countdown"
	CueComplete   Kind = "complete"
)

// Cue is a single prompt handed to a Sink.
type Cue struct {
	Kind       Kind
	Phase      model.Phase
	PhaseIndex int
	PhaseCount int
	// Seconds left in the phase, set for CueCountdown.
	Seconds int
}

func (cue Cue) String() string {
	switch cue.Kind {
	case CuePhaseStart:
		return fmt.Sprintf("%s (%d/%d) %s", phaseName(cue.Phase), cue.PhaseIndex+1, cue.PhaseCount, model.FormatClock(cue.Phase.DurationSeconds))
	case CueCountdown:
		return fmt.Sprintf("%s ends in %d", phaseName(cue.Phase), cue.Seconds)
	case CueComplete:
		return "Workout complete"
	default:
		return string(cue.Kind)
	}
}

func phaseName(phase model.Phase) string {
	if phase.Name == "" {
		return "Phase"
	}
	return phase.Name
}

// Sink presents cues. Play must not block for long.
type Sink interface {
	Play(cue Cue) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(cue Cue) error

func (fn SinkFunc) Play(cue Cue) error { return fn(cue) }

// Sinks fans a cue out to several sinks, returning the first error.
type Sinks []Sink

func (sinks Sinks) Play(cue Cue) error {
	var first error
	for _, sink := range sinks {
		if sink == nil {
			continue
		}
		if err := sink.Play(cue); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Gate forwards cues to its sink only while enabled. Enable may be called from
// any goroutine.
type Gate struct {
	sink    Sink
	enabled atomic.Bool
}

func NewGate(sink Sink, enabled bool) *Gate {
	gate := &Gate{sink: sink}
	gate.enabled.Store(enabled)
	return gate
}

func (gate *Gate) Enable(enabled bool) {
	gate.enabled.Store(enabled)
}

func (gate *Gate) Play(cue Cue) error {
	if !gate.enabled.Load() || gate.sink == nil {
		return nil
	}
	return gate.sink.Play(cue)
}

// Director decides which engine events deserve a cue.
type Director struct {
	mu        sync.Mutex
	sink      Sink
	logger    *logging.Logger
	countdown int
	phase     model.Phase
	index     int
	count     int
	announced int
}

// NewDirector creates a director that counts down the last countdownSeconds
// of every phase. Zero disables countdown cues.
func NewDirector(sink Sink, countdownSeconds int, logger *logging.Logger) *Director {
	if logger == nil {
		logger = logging.Discard()
	}
	if countdownSeconds < 0 {
		countdownSeconds = 0
	}
	return &Director{sink: sink, logger: logger, countdown: countdownSeconds, index: -1}
}

func (director *Director) SetCountdown(seconds int) {
	if seconds < 0 {
		seconds = 0
	}
	director.mu.Lock()
	director.countdown = seconds
	director.mu.Unlock()
}

// Handle inspects one event and plays the matching cue, if any.
func (director *Director) Handle(event intervals.Event) {
	cue, ok := director.cueFor(event)
	if !ok || director.sink == nil {
		return
	}
	if err := director.sink.Play(cue); err != nil {
		director.logger.Errorf("play %s cue: %v", cue.Kind, err)
	}
}

// Run handles events until the channel closes or ctx is done.
func (director *Director) Run(ctx context.Context, events <-chan intervals.Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			director.Handle(event)
		}
	}
}

func (director *Director) cueFor(event intervals.Event) (Cue, bool) {
	director.mu.Lock()
	defer director.mu.Unlock()

	switch event.Type {
	case intervals.EventPhaseChanged:
		director.phase = event.Phase
		director.index = event.PhaseIndex
		director.count = event.PhaseCount
		director.announced = 0
		return Cue{Kind: CuePhaseStart, Phase: event.Phase, PhaseIndex: event.PhaseIndex, PhaseCount: event.PhaseCount}, true
	case intervals.EventTick:
		seconds := event.RemainingSeconds()
		if seconds < 1 || seconds > director.countdown || event.PhaseIndex != director.index {
			return Cue{}, false
		}
		if director.announced != 0 && seconds >= director.announced {
			return Cue{}, false
		}
		director.announced = seconds
		return Cue{Kind: CueCountdown, Phase: director.phase, PhaseIndex: director.index, PhaseCount: director.count, Seconds: seconds}, true
	case intervals.EventCompleted:
		director.index = -1
		return Cue{Kind: CueComplete, PhaseCount: event.PhaseCount}, true
	case intervals.EventStateChange:
		if event.State == intervals.StateIdle {
			director.index = -1
		}
	}
	return Cue{}, false
}

// BellSink writes a terminal bell and a line of text for every cue.
type BellSink struct {
	mu     sync.Mutex
	out    io.Writer
	format func(Cue) string
}

// NewBellSink writes to out. format may be nil.
func NewBellSink(out io.Writer, format func(Cue) string) *BellSink {
	if format == nil {
		format = Cue.String
	}
	return &BellSink{out: out, format: format}
}

func (sink *BellSink) Play(cue Cue) error {
	sink.mu.Lock()
	defer sink.mu.Unlock()

	bell := "\a"
	if cue.Kind == CueComplete {
		bell = "\a\a"
	}
	_, err := fmt.Fprintf(sink.out, "%s%s\n", bell, sink.format(cue))
	return err
}
