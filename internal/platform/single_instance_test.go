package platform

import (
	"errors"
	"fmt"
	"testing"
	"time"
)

func testAppName(t *testing.T) string {
	return fmt.Sprintf("IntervalTimerTest-%s-%d", t.Name(), time.Now().UnixNano())
}

func TestSingleInstanceGuard(t *testing.T) {
	appName := testAppName(t)
	guard, err := AcquireSingleInstance(appName)
	if err != nil {
		t.Skipf("port unavailable: %v", err)
	}
	defer guard.Release()

	if _, err := AcquireSingleInstance(appName); !errors.Is(err, ErrAlreadyRunning) {
		t.Fatalf("expected ErrAlreadyRunning, got %v", err)
	}
	if guard.Address() == "" {
		t.Fatal("empty address")
	}
}

func TestForwardDeliversMessages(t *testing.T) {
	appName := testAppName(t)
	guard, err := AcquireSingleInstance(appName)
	if err != nil {
		t.Skipf("port unavailable: %v", err)
	}

	received := make(chan string, 4)
	served := make(chan struct{})
	go func() {
		guard.Serve(func(message string) { received <- message })
		close(served)
	}()

	link := "intervaltimer://share?preset=abc"
	if err := Forward(appName, link, "second"); err != nil {
		t.Fatalf("Forward: %v", err)
	}

	for _, want := range []string{link, "second"} {
		select {
		case got := <-received:
			if got != want {
				t.Fatalf("got %q, want %q", got, want)
			}
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for %q", want)
		}
	}

	if err := guard.Release(); err != nil {
		t.Fatalf("Release: %v", err)
	}
	select {
	case <-served:
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not return after Release")
	}
	if err := guard.Release(); err != nil {
		t.Fatalf("second Release: %v", err)
	}
}

func TestForwardWithoutInstance(t *testing.T) {
	if err := Forward(testAppName(t), "hello"); err == nil {
		t.Fatal("expected error when no instance is running")
	}
}

func TestForwardRejectsLineBreaks(t *testing.T) {
	appName := testAppName(t)
	guard, err := AcquireSingleInstance(appName)
	if err != nil {
		t.Skipf("port unavailable: %v", err)
	}
	defer guard.Release()
	go guard.Serve(func(string) {})

	if err := Forward(appName, "a\nb"); err == nil {
		t.Fatal("expected error for multi-line message")
	}
}

func TestPortFromNameIsStable(t *testing.T) {
	first := portFromName("IntervalTimer")
	if first != portFromName("IntervalTimer") {
		t.Fatal("port is not deterministic")
	}
	if first < 20000 || first > 39999 {
		t.Fatalf("port %d out of range", first)
	}
}
