package main

import (
	"context"
	"net"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"github.com/farouk15160/roku-voice-bridge/internal/bridge"
	"github.com/farouk15160/roku-voice-bridge/internal/server"
)

type nopBroker struct{}

func (nopBroker) Publish(string, byte, []byte) error { return nil }

func newTestServer(t *testing.T) *server.Server {
	t.Helper()
	log := zap.NewNop()
	d := bridge.NewDispatcher(bridge.NewCommandClient(nopBroker{}, log), log)
	return server.New("roku-bridge", "/alexa", d, nil, log)
}

func TestServe_ListenFailureReturns(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer ln.Close()

	done := make(chan error, 1)
	go func() {
		done <- serve(context.Background(), newTestServer(t), ln.Addr().String(), time.Second, zaptest.NewLogger(t))
	}()

	select {
	case err := <-done:
		if err == nil {
			t.Fatal("expected an error for an address already in use")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("serve did not return after the listener failed")
	}
}

func TestServe_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		done <- serve(ctx, newTestServer(t), "127.0.0.1:0", time.Second, zaptest.NewLogger(t))
	}()
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("serve() error: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("serve did not return after cancel")
	}
}
