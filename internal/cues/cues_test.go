package cues

import (
	"bytes"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"intervaltimer/internal/core/intervals"
	"intervaltimer/internal/core/model"
)

type recordingSink struct {
	cues []Cue
	err  error
}

func (sink *recordingSink) Play(cue Cue) error {
	sink.cues = append(sink.cues, cue)
	return sink.err
}

func phaseEvent(index int, phase model.Phase) intervals.Event {
	return intervals.Event{
		Type:       intervals.EventPhaseChanged,
		State:      intervals.StateRunning,
		PhaseIndex: index,
		PhaseCount: 2,
		Phase:      phase,
		Remaining:  time.Duration(phase.DurationSeconds) * time.Second,
	}
}

func tickEvent(index int, remaining time.Duration) intervals.Event {
	return intervals.Event{
		Type:       intervals.EventTick,
		State:      intervals.StateRunning,
		PhaseIndex: index,
		PhaseCount: 2,
		Remaining:  remaining,
	}
}

func kinds(cues []Cue) []Kind {
	out := make([]Kind, len(cues))
	for i, cue := range cues {
		out[i] = cue.Kind
	}
	return out
}

func TestDirectorSequence(t *testing.T) {
	sink := &recordingSink{}
	director := NewDirector(sink, 3, nil)
	work := model.Phase{ID: "w", Name: "Work", DurationSeconds: 5}
	rest := model.Phase{ID: "r", Name: "Rest", DurationSeconds: 2}

	director.Handle(phaseEvent(0, work))
	for remaining := 4; remaining >= 0; remaining-- {
		director.Handle(tickEvent(0, time.Duration(remaining)*time.Second))
	}
	director.Handle(phaseEvent(1, rest))
	director.Handle(tickEvent(1, time.Second))
	director.Handle(intervals.Event{Type: intervals.EventCompleted, State: intervals.StateComplete, PhaseCount: 2})

	want := []Kind{CuePhaseStart, CueCountdown, CueCountdown, CueCountdown, CuePhaseStart, CueCountdown, CueComplete}
	got := kinds(sink.cues)
	if len(got) != len(want) {
		t.Fatalf("cues = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("cues = %v, want %v", got, want)
		}
	}

	seconds := []int{sink.cues[1].Seconds, sink.cues[2].Seconds, sink.cues[3].Seconds}
	if seconds[0] != 3 || seconds[1] != 2 || seconds[2] != 1 {
		t.Fatalf("countdown seconds = %v", seconds)
	}
	if sink.cues[1].Phase.Name != "Work" {
		t.Fatalf("countdown phase = %q", sink.cues[1].Phase.Name)
	}
}

func TestDirectorAnnouncesEachSecondOnce(t *testing.T) {
	sink := &recordingSink{}
	director := NewDirector(sink, 3, nil)
	director.Handle(phaseEvent(0, model.Phase{Name: "Work", DurationSeconds: 10}))

	for _, remaining := range []time.Duration{2750, 2500, 2250, 2000, 1750} {
		director.Handle(tickEvent(0, remaining*time.Millisecond))
	}

	var seconds []int
	for _, cue := range sink.cues[1:] {
		seconds = append(seconds, cue.Seconds)
	}
	if len(seconds) != 2 || seconds[0] != 3 || seconds[1] != 2 {
		t.Fatalf("countdown seconds = %v, want [3 2]", seconds)
	}
}

func TestDirectorCountdownDisabled(t *testing.T) {
	sink := &recordingSink{}
	director := NewDirector(sink, 0, nil)
	director.Handle(phaseEvent(0, model.Phase{Name: "Work", DurationSeconds: 3}))
	director.Handle(tickEvent(0, time.Second))
	if len(sink.cues) != 1 {
		t.Fatalf("expected only the phase start cue, got %v", kinds(sink.cues))
	}
}

func TestDirectorIgnoresTicksAfterStop(t *testing.T) {
	sink := &recordingSink{}
	director := NewDirector(sink, 3, nil)
	director.Handle(phaseEvent(0, model.Phase{Name: "Work", DurationSeconds: 3}))
	director.Handle(intervals.Event{Type: intervals.EventStateChange, State: intervals.StateIdle})
	director.Handle(tickEvent(0, time.Second))
	if len(sink.cues) != 1 {
		t.Fatalf("tick after stop produced a cue: %v", kinds(sink.cues))
	}
}

func TestDirectorWithEngine(t *testing.T) {
	sink := &recordingSink{}
	director := NewDirector(sink, 2, nil)
	wake := &stepWake{}
	now := time.Unix(0, 0)
	engine := intervals.New(intervals.Config{
		Wake: wake,
		Now:  func() time.Time { return now },
	})
	events := engine.Subscribe(64)
	engine.Load([]model.Phase{{ID: "a", Name: "Work", DurationSeconds: 3}})
	engine.Start()
	for i := 0; i < 3; i++ {
		now = now.Add(time.Second)
		wake.fire(now)
	}
	engine.Close()
	for event := range events {
		director.Handle(event)
	}

	want := []Kind{CuePhaseStart, CueCountdown, CueCountdown, CueComplete}
	got := kinds(sink.cues)
	if len(got) != len(want) {
		t.Fatalf("cues = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("cues = %v, want %v", got, want)
		}
	}
}

func TestSinksFanOut(t *testing.T) {
	first := &recordingSink{err: errors.New("muted")}
	second := &recordingSink{}
	err := Sinks{first, nil, second}.Play(Cue{Kind: CueComplete})
	if err == nil || len(first.cues) != 1 || len(second.cues) != 1 {
		t.Fatalf("fan out failed: err=%v first=%d second=%d", err, len(first.cues), len(second.cues))
	}
}

func TestBellSink(t *testing.T) {
	var buf bytes.Buffer
	sink := NewBellSink(&buf, nil)
	if err := sink.Play(Cue{Kind: CueCountdown, Phase: model.Phase{Name: "Rest"}, Seconds: 2}); err != nil {
		t.Fatal(err)
	}
	if err := sink.Play(Cue{Kind: CueComplete}); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.Contains(out, "\aRest ends in 2\n") || !strings.Contains(out, "\a\aWorkout complete\n") {
		t.Fatalf("unexpected output %q", out)
	}
}

type stepWake struct {
	wake func(time.Time)
}

func (w *stepWake) Every(_ time.Duration, wake func(time.Time)) func() {
	w.wake = wake
	return func() {}
}

func (w *stepWake) fire(now time.Time) {
	if w.wake != nil {
		w.wake(now)
	}
}

type countingSink struct {
	mu    sync.Mutex
	count int
}

func (sink *countingSink) Play(Cue) error {
	sink.mu.Lock()
	sink.count++
	sink.mu.Unlock()
	return nil
}

func TestGate(t *testing.T) {
	sink := &countingSink{}
	gate := NewGate(sink, false)
	cue := Cue{Kind: CueComplete}

	if err := gate.Play(cue); err != nil || sink.count != 0 {
		t.Fatalf("disabled gate played: count %d err %v", sink.count, err)
	}
	gate.Enable(true)
	if err := gate.Play(cue); err != nil || sink.count != 1 {
		t.Fatalf("enabled gate: count %d err %v", sink.count, err)
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 100; i++ {
			gate.Enable(i%2 == 0)
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 100; i++ {
			_ = gate.Play(cue)
		}
	}()
	wg.Wait()
}
