package http

import (
	"context"
	"testing"
	"time"
)

func TestServer_RunStopsOnCancel(t *testing.T) {
	s := NewServer(RouterConfig{})
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx, "127.0.0.1:0") }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("server did not stop")
	}
}

func TestServer_RunReportsListenError(t *testing.T) {
	s := NewServer(RouterConfig{})
	err := s.Run(context.Background(), "127.0.0.1:-1")
	if err == nil {
		t.Fatalf("expected listen error")
	}
}
