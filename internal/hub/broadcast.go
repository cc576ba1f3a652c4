package hub

import (
	stdmaps "maps"

	"go.uber.org/zap"

	"tankbots/internal/lobby"
	"tankbots/internal/protocol"
	"tankbots/internal/routing"
	"tankbots/internal/session"
)

// broadcastState is phase 5 of the tick: ship the lobby's authoritative
// snapshot to every current member. Players resolve through AllInLobby with
// an empty sender, so nobody is excluded; spectators are appended.
func (h *Hub) broadcastState(lb *lobby.Lobby) {
	st := h.table.ForLobby(lb.ID)
	st.Tick = lb.Tick

	// Writer goroutines marshal the payload after the loop moves on, so each
	// broadcast carries its own copy of the snapshot maps.
	snapshot := &protocol.GameState{
		Tick:        st.Tick,
		Players:     stdmaps.Clone(st.Players),
		Projectiles: stdmaps.Clone(st.Projectiles),
	}
	env := protocol.NewSent(protocol.TargetSpec{Kind: protocol.TargetAllInLobby}, snapshot, lb.Tick)

	res, err := routing.Resolve(env.Target, "", lb, h.registry)
	if err != nil {
		h.log.Warn("state broadcast resolution failed",
			zap.String("lobby", lb.ID), zap.Error(err))
		return
	}

	var slow []*session.Session
	recipients := append(res.Sessions, lb.Spectators...)
	for _, id := range recipients {
		member, ok := h.registry.Get(id)
		if !ok {
			continue
		}
		if !member.Enqueue(env) {
			// A member that cannot keep up with snapshots is dropped.
			slow = append(slow, member)
		}
	}
	for _, member := range slow {
		h.log.Warn("member cannot keep up with state broadcasts",
			zap.String("lobby", lb.ID), zap.String("session", member.ID))
		h.disconnect(member, "outbound queue overflow")
	}
}

// sendTo queues a server-originated payload for a single session.
func (h *Hub) sendTo(s *session.Session, payload protocol.Payload, tick uint64) {
	env := protocol.NewSent(protocol.TargetSpec{
		Kind:     protocol.TargetClient,
		ClientID: s.ID,
	}, payload, tick)
	if !s.Enqueue(env) {
		h.log.Warn("outbox full, dropping message",
			zap.String("session", s.ID), zap.String("kind", payload.Kind()))
	}
}

func (h *Hub) sendError(s *session.Session, code, message string) {
	h.sendTo(s, &protocol.MessageError{Code: code, Message: message}, h.tickOf(s))
}
