package mcp

import (
	"encoding/json"
	"testing"
	"time"
)

func TestSessionSendAndReceive(t *testing.T) {
	store := NewSessionStore()
	sess := store.Create()

	if !sess.SendResponse(NewResultResponse(1, "hello")) {
		t.Fatal("send on live session failed")
	}

	select {
	case ev := <-sess.Events():
		if ev.Name != "message" {
			t.Errorf("event name = %s, want message", ev.Name)
		}
		var resp Response
		if err := json.Unmarshal(ev.Data, &resp); err != nil {
			t.Fatalf("bad event payload: %v", err)
		}
		if resp.Result != "hello" {
			t.Errorf("result = %v, want hello", resp.Result)
		}
	case <-time.After(time.Second):
		t.Fatal("no event delivered")
	}
}

func TestSessionSendAfterCloseDiscards(t *testing.T) {
	sess := newSession("s1")
	sess.Close()

	if sess.Send("message", []byte("{}")) {
		t.Error("send after close must report discard")
	}
	// Closing twice must not panic.
	sess.Close()
}

func TestSessionCloseCancelsContext(t *testing.T) {
	sess := newSession("s1")
	sess.Close()

	select {
	case <-sess.Context().Done():
	default:
		t.Error("context not cancelled after close")
	}
}

func TestSessionSendDoesNotBlockWhenQueueFull(t *testing.T) {
	sess := newSession("s1")

	// Fill the buffered queue with no reader attached.
	for i := 0; i < cap(sess.events); i++ {
		if !sess.Send("message", []byte("{}")) {
			t.Fatalf("send %d failed before queue was full", i)
		}
	}

	done := make(chan bool, 1)
	go func() {
		done <- sess.Send("message", []byte("{}"))
	}()

	// The sender is parked on a full queue; closing the session must
	// release it with a discard rather than leaving it stuck.
	time.Sleep(20 * time.Millisecond)
	sess.Close()

	select {
	case delivered := <-done:
		if delivered {
			t.Error("send on closed session reported delivery")
		}
	case <-time.After(time.Second):
		t.Fatal("sender still blocked after close")
	}
}

func TestStoreRemoveClosesSession(t *testing.T) {
	store := NewSessionStore()
	sess := store.Create()

	store.Remove(sess.ID)

	if !sess.Closed() {
		t.Error("removed session not closed")
	}
	if _, ok := store.Get(sess.ID); ok {
		t.Error("removed session still retrievable")
	}
	if store.Len() != 0 {
		t.Errorf("store length = %d, want 0", store.Len())
	}
}

func TestStoreSweep(t *testing.T) {
	store := NewSessionStore()

	closed := store.Create()
	closed.Close()

	idle := store.Create()
	idle.mu.Lock()
	idle.lastActive = time.Now().Add(-time.Hour)
	idle.mu.Unlock()

	fresh := store.Create()

	removed := store.Sweep(30 * time.Minute)
	if removed != 2 {
		t.Fatalf("sweep removed %d sessions, want 2", removed)
	}
	if _, ok := store.Get(fresh.ID); !ok {
		t.Error("fresh session swept")
	}
	if !idle.Closed() {
		t.Error("idle session not closed by sweep")
	}
}

func TestStoreSweepZeroTTLKeepsIdle(t *testing.T) {
	store := NewSessionStore()
	idle := store.Create()
	idle.mu.Lock()
	idle.lastActive = time.Now().Add(-24 * time.Hour)
	idle.mu.Unlock()

	if removed := store.Sweep(0); removed != 0 {
		t.Fatalf("sweep with ttl=0 removed %d sessions, want 0", removed)
	}
}

func TestSessionsAreIndependent(t *testing.T) {
	store := NewSessionStore()
	a := store.Create()
	b := store.Create()

	store.Remove(a.ID)

	if !b.SendResponse(NewResultResponse(1, "still here")) {
		t.Error("closing one session affected another")
	}
}
