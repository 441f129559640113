package daemon

import (
	"context"
	"testing"
	"time"
)

func TestSupervisorReloadNotRunning(t *testing.T) {
	s := NewSupervisor("kea", "kea-dhcp4", nil, nil)
	if err := s.Reload(); err == nil {
		t.Fatal("expected an error when the child is not running")
	}
}

func TestSupervisorStopsOnCancel(t *testing.T) {
	s := NewSupervisor("sleeper", "sleep", []string{"60"}, nil)
	s.startDelay = 10 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()

	time.Sleep(200 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("supervisor did not stop after context cancellation")
	}
}
