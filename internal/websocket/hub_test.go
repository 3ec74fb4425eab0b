// PresenceBridge - Local Rich Presence Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/presencebridge

package websocket

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

// startHub runs a hub until the test ends.
func startHub(t *testing.T) (*Hub, context.CancelFunc) {
	t.Helper()
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = hub.RunWithContext(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return hub, cancel
}

// detachedClient builds a client without a connection; only its send queue
// is exercised.
func detachedClient(hub *Hub) *Client {
	c := NewClient(hub, nil, nil, DefaultConfig())
	<-c.send // open packet
	return c
}

func waitForClients(t *testing.T, hub *Hub, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for hub.GetClientCount() != want {
		if time.Now().After(deadline) {
			t.Fatalf("GetClientCount() = %d, want %d", hub.GetClientCount(), want)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func recv(t *testing.T, c *Client) (string, bool) {
	t.Helper()
	select {
	case frame, ok := <-c.send:
		return string(frame), ok
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for frame")
		return "", false
	}
}

func TestNewClient_QueuesOpenPacket(t *testing.T) {
	c := NewClient(NewHub(), nil, nil, DefaultConfig())
	frame := string(<-c.send)
	if !strings.HasPrefix(frame, `0{"sid":"`) || !strings.Contains(frame, `"pingInterval":25000`) {
		t.Errorf("open packet = %s", frame)
	}
	if !strings.Contains(frame, `"upgrades":[]`) {
		t.Errorf("open packet advertises upgrades: %s", frame)
	}
}

func TestHub_EmitBroadcastsInOrder(t *testing.T) {
	hub, _ := startHub(t)
	a, b := detachedClient(hub), detachedClient(hub)
	hub.Register <- a
	hub.Register <- b
	waitForClients(t, hub, 2)

	if err := hub.Emit("localPresence", []string{"a.json"}); err != nil {
		t.Fatalf("Emit() error = %v", err)
	}
	if err := hub.Emit("receiveVersion", "1.0.0"); err != nil {
		t.Fatalf("Emit() error = %v", err)
	}

	for _, c := range []*Client{a, b} {
		if got, _ := recv(t, c); got != `42["localPresence",["a.json"]]` {
			t.Errorf("first frame = %s", got)
		}
		if got, _ := recv(t, c); got != `42["receiveVersion","1.0.0"]` {
			t.Errorf("second frame = %s", got)
		}
	}
}

func TestHub_Unregister(t *testing.T) {
	hub, _ := startHub(t)
	c := detachedClient(hub)
	hub.Register <- c
	waitForClients(t, hub, 1)

	hub.Unregister <- c
	waitForClients(t, hub, 0)

	if _, ok := recv(t, c); ok {
		t.Error("send channel still open after unregister")
	}
	if err := c.Emit("receiveVersion", "x"); !errors.Is(err, ErrClientGone) {
		t.Errorf("Emit() after unregister error = %v, want ErrClientGone", err)
	}

	// A second unregister is a no-op.
	hub.Unregister <- c
	waitForClients(t, hub, 0)
}

func TestHub_ShutdownClosesClients(t *testing.T) {
	hub, cancel := startHub(t)
	c := detachedClient(hub)
	hub.Register <- c
	waitForClients(t, hub, 1)

	cancel()
	if _, ok := recv(t, c); ok {
		t.Error("send channel still open after shutdown")
	}
	if hub.GetClientCount() != 0 {
		t.Errorf("GetClientCount() = %d after shutdown", hub.GetClientCount())
	}
}

func TestHub_DropsSlowClient(t *testing.T) {
	hub := NewHub()
	slow := detachedClient(hub)
	fast := detachedClient(hub)
	for len(slow.send) < cap(slow.send) {
		slow.send <- []byte("x")
	}
	hub.clients[slow] = true
	hub.clients[fast] = true

	hub.broadcastToClients([]byte(`42["a"]`))

	if hub.GetClientCount() != 1 {
		t.Fatalf("GetClientCount() = %d, want 1", hub.GetClientCount())
	}
	if !slow.closed {
		t.Error("slow client not closed")
	}
	if got := string(<-fast.send); got != `42["a"]` {
		t.Errorf("fast client frame = %s", got)
	}
}

func TestHub_EmitFull(t *testing.T) {
	hub := NewHub()
	for i := 0; i < cap(hub.broadcast); i++ {
		if err := hub.Emit("e", i); err != nil {
			t.Fatalf("Emit(%d) error = %v", i, err)
		}
	}
	if err := hub.Emit("e", "overflow"); !errors.Is(err, ErrBroadcastFull) {
		t.Errorf("Emit() error = %v, want ErrBroadcastFull", err)
	}
}

func TestGetShutdownReason(t *testing.T) {
	canceled, cancel := context.WithCancel(context.Background())
	cancel()
	if got := getShutdownReason(canceled); got != ShutdownReasonContextCanceled {
		t.Errorf("canceled = %s", got)
	}

	expired, cancel2 := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
	defer cancel2()
	if got := getShutdownReason(expired); got != ShutdownReasonContextDeadline {
		t.Errorf("deadline = %s", got)
	}
}
