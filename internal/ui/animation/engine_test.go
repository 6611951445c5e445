package animation

import (
	"context"
	"sync"
	"testing"
	"time"

	"fyne.io/fyne/v2"
)

type frameLog struct {
	mu     sync.Mutex
	frames []string
}

func (log *frameLog) update(resource fyne.Resource) {
	log.mu.Lock()
	log.frames = append(log.frames, resource.Name())
	log.mu.Unlock()
}

func (log *frameLog) snapshot() []string {
	log.mu.Lock()
	defer log.mu.Unlock()
	return append([]string(nil), log.frames...)
}

var (
	restIcon  = fyne.NewStaticResource("rest", nil)
	flashIcon = fyne.NewStaticResource("flash", nil)
)

func TestPulsePlaysAllFrames(t *testing.T) {
	log := &frameLog{}
	engine := New(log.update)

	done := engine.Play(context.Background(), Pulse(restIcon, flashIcon, 2, time.Millisecond))
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("sequence did not finish")
	}

	want := []string{"flash", "rest", "flash", "rest", "rest"}
	got := log.snapshot()
	if len(got) != len(want) {
		t.Fatalf("frames = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("frames = %v, want %v", got, want)
		}
	}
}

func TestStopShowsRestFrame(t *testing.T) {
	log := &frameLog{}
	engine := New(log.update)

	engine.Play(context.Background(), Pulse(restIcon, flashIcon, 100, time.Hour))
	engine.Stop()

	got := log.snapshot()
	if len(got) == 0 || got[len(got)-1] != "rest" {
		t.Fatalf("frames = %v, want rest last", got)
	}
	engine.Stop()
}

func TestPlayReplacesRunningSequence(t *testing.T) {
	log := &frameLog{}
	engine := New(log.update)

	first := engine.Play(context.Background(), Pulse(restIcon, flashIcon, 100, time.Hour))
	second := engine.Play(context.Background(), Sequence{Frames: []Frame{{Resource: flashIcon}}})

	for _, done := range []<-chan struct{}{first, second} {
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("sequence did not finish")
		}
	}
}
