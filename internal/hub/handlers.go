package hub

import (
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"tankbots/internal/lobby"
	"tankbots/internal/maps"
	"tankbots/internal/protocol"
	"tankbots/internal/routing"
	"tankbots/internal/session"
)

// handleFrame decodes one framed message and dispatches on its payload kind.
// Malformed payloads are reported to the sender; the connection stays open.
func (h *Hub) handleFrame(sessionID string, data []byte) {
	s, ok := h.registry.Get(sessionID)
	if !ok {
		return
	}

	var env protocol.Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		h.log.Warn("malformed frame",
			zap.String("session", sessionID), zap.Error(err))
		h.sendError(s, protocol.ErrorCodeInvalidJSON, err.Error())
		return
	}
	env = env.WithReceived(h.tickOf(s), sessionID)

	switch payload := env.Payload.(type) {
	case *protocol.FirstContact:
		h.handleHandshake(s, payload)
	case *protocol.TextMessage:
		h.forward(s, env)
	case *protocol.StartGame:
		h.handleStartGame(s, env, payload)
	default:
		h.sendError(s, protocol.ErrorCodeUnsupportedMessage,
			fmt.Sprintf("clients may not send %s", env.Payload.Kind()))
	}
}

func (h *Hub) tickOf(s *session.Session) uint64 {
	if lb := h.lobbyOf(s); lb != nil {
		return lb.Tick
	}
	return 0
}

// handleHandshake validates FIRST_CONTACT, binds the player identity and
// delegates lobby assembly to the directory. The handshake countdown is
// cleared by the directory once the lobby's map config resolves.
func (h *Hub) handleHandshake(s *session.Session, fc *protocol.FirstContact) {
	if s.InLobby() {
		h.sendError(s, protocol.ErrorCodeInvalidHandshake, "already in a lobby")
		return
	}
	if fc.BotName == "" || fc.LobbyID == "" {
		h.sendError(s, protocol.ErrorCodeInvalidHandshake,
			"handshake requires a bot name and a lobby id")
		return
	}
	if !fc.Spectator && fc.TeamName == "" {
		// Only spectators may omit the team; there is no default team.
		h.sendError(s, protocol.ErrorCodeInvalidHandshake,
			"handshake requires a team name")
		return
	}

	s.Player = &session.Player{
		Name:      fc.BotName,
		TeamName:  fc.TeamName,
		Spectator: fc.Spectator,
	}
	h.log.Info("handshake received",
		zap.String("session", s.ID),
		zap.String("bot", fc.BotName),
		zap.String("lobby", fc.LobbyID),
		zap.String("team", fc.TeamName),
		zap.Bool("spectator", fc.Spectator))

	lb, rejected, err := h.directory.GetOrCreate(fc.LobbyID, s.ID, fc.MapName)
	if err != nil {
		// Reported, not fatal: the session keeps its connection and stays in
		// the lobby-seeking state.
		h.log.Warn("lobby assembly failed",
			zap.String("session", s.ID),
			zap.String("lobby", fc.LobbyID),
			zap.Error(err))
		return
	}

	joined := true
	for _, rej := range rejected {
		if rej.SessionID == s.ID {
			joined = false
		}
		if rs, ok := h.registry.Get(rej.SessionID); ok {
			h.sendError(rs, rejectionCode(rej.Err), rej.Err.Error())
		}
	}
	if !joined {
		return
	}
	h.sendTo(s, &protocol.JoinedLobby{
		Text: fmt.Sprintf("joined lobby %s", lb.ID),
	}, lb.Tick)
}

func rejectionCode(err error) string {
	switch {
	case errors.Is(err, lobby.ErrTeamFull):
		return protocol.ErrorCodeTeamFull
	case errors.Is(err, lobby.ErrUnknownTeam):
		return protocol.ErrorCodeUnknownTeam
	default:
		return protocol.ErrorCodeLobbyAssembly
	}
}

// forward resolves the envelope's target and fans it out. A failed
// resolution drops the whole send; a failed enqueue drops only that
// recipient's copy.
func (h *Hub) forward(s *session.Session, env protocol.Envelope) {
	lb := h.lobbyOf(s)
	res, err := routing.Resolve(env.Target, s.ID, lb, h.registry)
	if err != nil {
		h.log.Warn("target resolution failed",
			zap.String("session", s.ID),
			zap.String("target", env.Target.Kind),
			zap.Error(err))
		return
	}
	if res.Lobby {
		h.log.Warn("payload cannot be addressed to a lobby",
			zap.String("session", s.ID),
			zap.String("kind", env.Payload.Kind()))
		return
	}
	for _, id := range res.Sessions {
		rs, ok := h.registry.Get(id)
		if !ok {
			continue
		}
		if !rs.Enqueue(env) {
			h.log.Warn("outbox full, dropping forwarded message",
				zap.String("recipient", id))
		}
	}
}

// handleStartGame routes START_GAME to the lobby entity itself.
func (h *Hub) handleStartGame(s *session.Session, env protocol.Envelope, payload *protocol.StartGame) {
	lb := h.lobbyOf(s)
	res, err := routing.Resolve(env.Target, s.ID, lb, h.registry)
	if err != nil || !res.Lobby {
		h.log.Warn("start game must target the lobby directly",
			zap.String("session", s.ID), zap.Error(err))
		return
	}
	h.startLobby(lb, payload)
}

// startLobby moves a fully set-up lobby into InProgress, seeds the snapshot
// and hands every member its game config.
func (h *Hub) startLobby(lb *lobby.Lobby, payload *protocol.StartGame) {
	if lb.State != lobby.StateSettingUp || lb.MapConfig == nil {
		h.log.Warn("lobby cannot start",
			zap.String("lobby", lb.ID), zap.String("state", string(lb.State)))
		return
	}
	lb.State = lobby.StateInProgress
	h.seedGameState(lb, payload.FillEmptySlotsWithDummies)

	for _, id := range lb.Members() {
		member, ok := h.registry.Get(id)
		if !ok {
			continue
		}
		h.sendTo(member, &protocol.GameConfig{
			ClientID: id,
			TickRate: uint32(h.cfg.TickRate),
			Teams:    lb.MapConfig.Teams,
			Map:      lb.MapConfig.Map,
		}, lb.Tick)
	}
	h.log.Info("game started",
		zap.String("lobby", lb.ID),
		zap.Int("players", len(lb.Players)),
		zap.Int("spectators", len(lb.Spectators)),
		zap.Bool("dummies", payload.FillEmptySlotsWithDummies))
}

// seedGameState places every player at one of its team's spawn markers and,
// if requested, fills the remaining team slots with dummies.
func (h *Hub) seedGameState(lb *lobby.Lobby, fillWithDummies bool) {
	st := h.table.ForLobby(lb.ID)
	st.Tick = lb.Tick
	for teamName, team := range lb.MapConfig.Teams {
		roster := lb.Teams[teamName]
		for i, id := range roster {
			st.Players[id] = spawnState(lb, teamName, i)
		}
		if !fillWithDummies {
			continue
		}
		for i := len(roster); i < team.MaxPlayers; i++ {
			dummyID := fmt.Sprintf("dummy-%s-%d", teamName, i)
			st.Players[dummyID] = spawnState(lb, teamName, i)
		}
	}
}

// spawnState resolves the nth spawn marker of a team, falling back to the
// map origin when the map defines too few markers.
func spawnState(lb *lobby.Lobby, teamName string, n int) protocol.EntityState {
	var spawns []protocol.Vec3
	for _, marker := range lb.MapConfig.Map.Markers {
		if marker.Kind == maps.MarkerSpawn && marker.Group == teamName {
			spawns = append(spawns, protocol.Vec3{
				X: float64(marker.Tile.X),
				Z: float64(marker.Tile.Y),
			})
		}
	}
	if n < len(spawns) {
		return protocol.EntityState{Position: spawns[n]}
	}
	return protocol.EntityState{}
}
