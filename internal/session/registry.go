package session

import (
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"tankbots/internal/protocol"
)

// Registry holds all live sessions. It is accessed only from the hub loop
// goroutine, so no mutex is needed; linearization comes from the hub inbox.
type Registry struct {
	log        *zap.Logger
	timeout    time.Duration
	outboxSize int

	sessions map[string]*Session
	pending  map[string]*awaiting
}

func NewRegistry(timeout time.Duration, outboxSize int, log *zap.Logger) *Registry {
	return &Registry{
		log:        log,
		timeout:    timeout,
		outboxSize: outboxSize,
		sessions:   make(map[string]*Session),
		pending:    make(map[string]*awaiting),
	}
}

// Register creates a session for an accepted connection and arms its
// handshake countdown.
func (r *Registry) Register(addr string) *Session {
	s := &Session{
		ID:     uuid.NewString(),
		Addr:   addr,
		Outbox: make(chan protocol.Envelope, r.outboxSize),
	}
	r.sessions[s.ID] = s
	r.pending[s.ID] = &awaiting{remaining: r.timeout}
	r.log.Info("session registered", zap.String("session", s.ID), zap.String("addr", addr))
	return s
}

// Tick advances every pending handshake countdown by elapsed and returns the
// sessions whose countdown expired. Expired countdowns are removed; the
// caller is responsible for disconnecting the sessions.
func (r *Registry) Tick(elapsed time.Duration) []*Session {
	var expired []*Session
	for id, a := range r.pending {
		a.remaining -= elapsed
		if a.remaining > 0 {
			continue
		}
		delete(r.pending, id)
		if s, ok := r.sessions[id]; ok {
			expired = append(expired, s)
		}
	}
	return expired
}

// ClearHandshakeTimer removes the countdown for a session that completed its
// handshake.
func (r *Registry) ClearHandshakeTimer(id string) {
	delete(r.pending, id)
}

// ArmHandshakeTimer restarts the countdown for a session that fell back to
// the lobby-seeking state, e.g. after removal from a lobby.
func (r *Registry) ArmHandshakeTimer(id string) {
	if _, ok := r.sessions[id]; !ok {
		return
	}
	r.pending[id] = &awaiting{remaining: r.timeout}
}

// Awaiting reports whether a session still has a handshake countdown armed.
func (r *Registry) Awaiting(id string) bool {
	_, ok := r.pending[id]
	return ok
}

func (r *Registry) Get(id string) (*Session, bool) {
	s, ok := r.sessions[id]
	return s, ok
}

// Has implements routing.Presence.
func (r *Registry) Has(id string) bool {
	_, ok := r.sessions[id]
	return ok
}

// Remove drops the session record and its countdown, closing the outbound
// queue. The transport notices the closed queue and tears the connection
// down.
func (r *Registry) Remove(id string) {
	s, ok := r.sessions[id]
	if !ok {
		return
	}
	delete(r.sessions, id)
	delete(r.pending, id)
	s.Close()
}

func (r *Registry) Len() int { return len(r.sessions) }

func (r *Registry) ForEach(fn func(*Session)) {
	for _, s := range r.sessions {
		fn(s)
	}
}
