// Package session owns one record per accepted connection and the handshake
// countdown attached to it.
package session

import (
	"time"

	"tankbots/internal/protocol"
)

// Player is the negotiated identity a session binds to at handshake time. It
// is distinct from the session: a session may later rebind to a different
// player context.
type Player struct {
	Name      string
	TeamName  string
	Spectator bool

	// LobbyID is set once the lobby directory binds the player. A player is
	// in at most one lobby at a time.
	LobbyID string
}

// Session is a live connection. The Outbox is a FIFO queue drained by the
// transport's writer goroutine; delivery order matches enqueue order.
type Session struct {
	ID     string
	Addr   string
	Outbox chan protocol.Envelope

	Player *Player

	closed bool
}

// Enqueue appends an envelope to the outbound queue without blocking. A false
// return means the queue is full or the session is closed; the caller decides
// whether that is fatal for the session.
func (s *Session) Enqueue(env protocol.Envelope) bool {
	if s.closed {
		return false
	}
	select {
	case s.Outbox <- env:
		return true
	default:
		return false
	}
}

// Close shuts the outbound queue. Only the registry's owner goroutine may
// call this; a second call is a no-op.
func (s *Session) Close() {
	if s.closed {
		return
	}
	s.closed = true
	close(s.Outbox)
}

// InLobby reports whether the session's player is bound to a lobby.
func (s *Session) InLobby() bool {
	return s.Player != nil && s.Player.LobbyID != ""
}

// awaiting is the handshake countdown for a session that has not yet sent
// FIRST_CONTACT.
type awaiting struct {
	remaining time.Duration
}
