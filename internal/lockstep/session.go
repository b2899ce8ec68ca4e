package lockstep

import (
	"sort"
	"sync"

	"github.com/vovakirdan/tui-rts/internal/protocol"
)

// SessionHandle is the transport-neutral interface for communicating with a session.
// It allows the coordinator and matches to send messages without depending on
// websockets or SSH.
type SessionHandle interface {
	// ID returns the unique session identifier.
	ID() SessionID

	// Send queues a message for the session.
	// Must be non-blocking; implementations should use buffered channels.
	Send(msg protocol.Message)

	// Done returns a channel that closes when the session ends.
	Done() <-chan struct{}
}

// ChannelSession is a SessionHandle implementation using Go channels, for
// in-process peers such as tests.
type ChannelSession struct {
	id       SessionID
	events   chan protocol.Message
	done     chan struct{}
	doneOnce sync.Once
}

// NewChannelSession creates a new channel-based session handle.
// bufferSize controls how many messages can wait before the session is
// dropped.
func NewChannelSession(id SessionID, bufferSize int) *ChannelSession {
	if bufferSize < 1 {
		bufferSize = 64
	}
	return &ChannelSession{
		id:     id,
		events: make(chan protocol.Message, bufferSize),
		done:   make(chan struct{}),
	}
}

// ID returns the session identifier.
func (s *ChannelSession) ID() SessionID {
	return s.id
}

// Send queues msg. A reader that falls a full buffer behind is closed, the
// same as a slow websocket peer: a lost game-tick would stall the room.
func (s *ChannelSession) Send(msg protocol.Message) {
	select {
	case <-s.done:
		return
	default:
	}

	select {
	case s.events <- msg:
	default:
		s.Close()
	}
}

// Messages returns the channel to receive messages from.
func (s *ChannelSession) Messages() <-chan protocol.Message {
	return s.events
}

// Done returns the done channel.
func (s *ChannelSession) Done() <-chan struct{} {
	return s.done
}

// Close marks the session as done.
// Safe to call multiple times.
func (s *ChannelSession) Close() {
	s.doneOnce.Do(func() {
		close(s.done)
	})
}

// SessionRegistry tracks active sessions.
// Thread-safe for concurrent access.
type SessionRegistry struct {
	mu       sync.RWMutex
	sessions map[SessionID]SessionHandle
}

// NewSessionRegistry creates a new session registry.
func NewSessionRegistry() *SessionRegistry {
	return &SessionRegistry{
		sessions: make(map[SessionID]SessionHandle),
	}
}

// Register adds a session to the registry.
func (r *SessionRegistry) Register(session SessionHandle) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[session.ID()] = session
}

// Unregister removes a session from the registry.
func (r *SessionRegistry) Unregister(id SessionID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
}

// Get retrieves a session by ID.
func (r *SessionRegistry) Get(id SessionID) (SessionHandle, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[id]
	return s, ok
}

// Count returns the number of registered sessions.
func (r *SessionRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Broadcast sends msg to every session, in id order.
func (r *SessionRegistry) Broadcast(msg protocol.Message) {
	r.mu.RLock()
	all := make([]SessionHandle, 0, len(r.sessions))
	for _, s := range r.sessions {
		all = append(all, s)
	}
	r.mu.RUnlock()

	sort.Slice(all, func(i, j int) bool { return all[i].ID() < all[j].ID() })
	for _, s := range all {
		s.Send(msg)
	}
}
