package server

import (
	"errors"
	"sync/atomic"

	"github.com/google/uuid"
)

var ErrSessionClosed = errors.New("server: session closed")

// Sink delivers outbound messages to one connected client. Implementations
// must be safe for concurrent use; fan-out and handlers both send.
type Sink interface {
	Send(index uint16, payload []byte) error

	// Kick severs the connection after a protocol violation. The client
	// sees only a generic notice; detail stays in the server log.
	Kick(reason string)
}

// Session is one connected player. Menu fields describe the currently open
// interactive context; capability fields are the player's global state.
// All fields except the sink are owned by the executor.
type Session struct {
	PlayerID uuid.UUID
	Name     string

	sink Sink

	// closed is written by the executor on detach and read by transport
	// goroutines sending responses, so it is the one atomic field.
	closed atomic.Bool

	// Open interactive context. A zero token means no menu is open; tokens
	// range 1..255 and expire when the menu closes.
	MenuToken     byte
	MenuNetworkID int32

	// MenuAdminSurface marks the admin-configurator surface, which carries
	// no network binding of its own.
	MenuAdminSurface bool

	SuperAdmin      bool
	WirelessMode    int32
	WirelessNetwork int32
}

// Send forwards to the sink; sends on a closed session are dropped.
func (s *Session) Send(index uint16, payload []byte) error {
	if s.closed.Load() {
		return ErrSessionClosed
	}
	return s.sink.Send(index, payload)
}

// Closed reports whether the session was detached. Every executor task
// checks this before acting for the originating player.
func (s *Session) Closed() bool {
	return s.closed.Load()
}

// OpenMenu binds an interactive session: the token plus the network context
// it targets. adminSurface marks the global admin view.
func (s *Session) OpenMenu(token byte, networkID int32, adminSurface bool) {
	s.MenuToken = token
	s.MenuNetworkID = networkID
	s.MenuAdminSurface = adminSurface
}

// CloseMenu expires the open token.
func (s *Session) CloseMenu() {
	s.MenuToken = 0
	s.MenuNetworkID = 0
	s.MenuAdminSurface = false
}

// Sessions tracks connected players. Owned by the executor except for the
// per-session sinks.
type Sessions struct {
	byPlayer map[uuid.UUID]*Session
	order    []*Session
}

func NewSessions() *Sessions {
	return &Sessions{byPlayer: make(map[uuid.UUID]*Session)}
}

// Attach registers a player connection. A second connection for the same
// player replaces the first, whose connection is severed.
func (s *Sessions) Attach(playerID uuid.UUID, name string, sink Sink) *Session {
	if old, ok := s.byPlayer[playerID]; ok {
		s.Detach(old)
		old.sink.Kick("session replaced")
	}
	sess := &Session{PlayerID: playerID, Name: name, sink: sink}
	s.byPlayer[playerID] = sess
	s.order = append(s.order, sess)
	return sess
}

// Detach closes a session and forgets it.
func (s *Sessions) Detach(sess *Session) {
	sess.closed.Store(true)
	sess.CloseMenu()
	if s.byPlayer[sess.PlayerID] == sess {
		delete(s.byPlayer, sess.PlayerID)
	}
	for i, have := range s.order {
		if have == sess {
			s.order = append(s.order[:i], s.order[i+1:]...)
			return
		}
	}
}

// ByPlayer finds the live session for a player.
func (s *Sessions) ByPlayer(id uuid.UUID) (*Session, bool) {
	sess, ok := s.byPlayer[id]
	return sess, ok
}

// All returns live sessions in attach order.
func (s *Sessions) All() []*Session {
	out := make([]*Session, len(s.order))
	copy(out, s.order)
	return out
}
