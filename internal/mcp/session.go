package mcp

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Event is one server-sent event queued for a session's stream.
type Event struct {
	Name string
	Data []byte
}

// Session is one live SSE connection. It holds no cross-request state
// beyond liveness: a queue of outbound events and a context that is
// cancelled on disconnect so in-flight tool calls can stop cooperatively.
type Session struct {
	ID string

	events chan Event
	ctx    context.Context
	cancel context.CancelFunc

	mu         sync.Mutex
	closed     bool
	lastActive time.Time
}

func newSession(id string) *Session {
	ctx, cancel := context.WithCancel(context.Background())
	return &Session{
		ID:         id,
		events:     make(chan Event, 16),
		ctx:        ctx,
		cancel:     cancel,
		lastActive: time.Now(),
	}
}

// Context is cancelled when the session closes.
func (s *Session) Context() context.Context {
	return s.ctx
}

// Events is the stream side of the outbound queue.
func (s *Session) Events() <-chan Event {
	return s.events
}

// Send queues an event for delivery. After the session has closed the
// event is silently discarded and false is returned; Send never blocks a
// caller on a session whose reader is gone.
func (s *Session) Send(name string, data []byte) bool {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return false
	}
	s.lastActive = time.Now()
	s.mu.Unlock()

	select {
	case s.events <- Event{Name: name, Data: data}:
		return true
	case <-s.ctx.Done():
		return false
	}
}

// SendResponse marshals a JSON-RPC response and queues it as a "message"
// event. Marshal failures are impossible for the shapes this server emits,
// but are reported as a dropped send rather than a panic.
func (s *Session) SendResponse(resp Response) bool {
	data, err := json.Marshal(resp)
	if err != nil {
		return false
	}
	return s.Send("message", data)
}

// Close cancels the session context and marks it dead. Safe to call more
// than once; the event channel is never closed so stragglers cannot panic.
func (s *Session) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	s.cancel()
}

// Closed reports whether Close has been called.
func (s *Session) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Touch records traffic for idle tracking.
func (s *Session) Touch() {
	s.mu.Lock()
	s.lastActive = time.Now()
	s.mu.Unlock()
}

// LastActive returns the time of the most recent traffic.
func (s *Session) LastActive() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActive
}

// SessionStore is a concurrency-safe registry of live sessions. Sessions
// are fully independent; the store only tracks liveness.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*Session),
	}
}

// Create registers a new session under a fresh id.
func (st *SessionStore) Create() *Session {
	sess := newSession(uuid.NewString())
	st.mu.Lock()
	st.sessions[sess.ID] = sess
	st.mu.Unlock()
	return sess
}

// Get looks up a live session.
func (st *SessionStore) Get(id string) (*Session, bool) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	sess, ok := st.sessions[id]
	return sess, ok
}

// Remove closes a session and drops it from the store.
func (st *SessionStore) Remove(id string) {
	st.mu.Lock()
	sess, ok := st.sessions[id]
	if ok {
		delete(st.sessions, id)
	}
	st.mu.Unlock()
	if ok {
		sess.Close()
	}
}

// Len returns the number of registered sessions.
func (st *SessionStore) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}

// Sweep removes sessions that are already closed and, when idleTTL > 0,
// sessions without traffic for longer than idleTTL. Returns the number
// removed.
func (st *SessionStore) Sweep(idleTTL time.Duration) int {
	st.mu.Lock()
	var stale []*Session
	for id, sess := range st.sessions {
		if sess.Closed() || (idleTTL > 0 && time.Since(sess.LastActive()) > idleTTL) {
			stale = append(stale, sess)
			delete(st.sessions, id)
		}
	}
	st.mu.Unlock()

	for _, sess := range stale {
		sess.Close()
	}
	return len(stale)
}
