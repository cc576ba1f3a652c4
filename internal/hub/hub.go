// Package hub runs the single logical loop that drives all state
// transitions. Network I/O is folded into the loop through the typed inbox,
// so directory and registry mutations never interleave.
package hub

import (
	"context"
	"time"

	"go.uber.org/zap"

	"tankbots/internal/config"
	"tankbots/internal/game"
	"tankbots/internal/lobby"
	"tankbots/internal/maps"
	"tankbots/internal/session"
)

type Msg interface{ isHubMsg() }

// SessionOpened registers an accepted connection and replies with its
// session record.
type SessionOpened struct {
	Addr  string
	Reply chan *session.Session
}

// FrameReceived carries one framed message from the transport, undecoded.
type FrameReceived struct {
	SessionID string
	Data      []byte
}

// SessionClosed reports that the transport lost the connection.
type SessionClosed struct{ SessionID string }

// Tick drives one global tick. Elapsed is wall time since the previous tick.
type Tick struct{ Elapsed time.Duration }

// GetView replies with a read-only snapshot of hub state. The HTTP API and
// tests use it to reflect internal state without data races.
type GetView struct{ Reply chan View }

type Shutdown struct{}

func (SessionOpened) isHubMsg() {}
func (FrameReceived) isHubMsg() {}
func (SessionClosed) isHubMsg() {}
func (Tick) isHubMsg()          {}
func (GetView) isHubMsg()       {}
func (Shutdown) isHubMsg()      {}

type Hub struct {
	inbox chan Msg
	log   *zap.Logger
	cfg   config.Config

	registry  *session.Registry
	directory *lobby.Directory
	table     *game.StateTable
	scheduler *game.Scheduler

	ctx    context.Context
	cancel context.CancelFunc
}

// NewHub wires the registry, directory and scheduler together and starts the
// loop. A nil sim falls back to the logging placeholder. With a zero tick
// interval no ticker is started; callers feed Tick messages themselves.
func NewHub(parent context.Context, cfg config.Config, store maps.Store, table *game.StateTable, sim game.Simulation, log *zap.Logger) *Hub {
	ctx, cancel := context.WithCancel(parent)

	registry := session.NewRegistry(cfg.HandshakeTimeout, cfg.OutboxSize, log)
	h := &Hub{
		inbox:     make(chan Msg, 64),
		log:       log,
		cfg:       cfg,
		registry:  registry,
		directory: lobby.NewDirectory(store, registry, log),
		table:     table,
		ctx:       ctx,
		cancel:    cancel,
	}
	if sim == nil {
		sim = game.LogSimulation{Log: log}
	}
	h.scheduler = &game.Scheduler{
		Log:       log,
		Sim:       sim,
		Directory: h.directory,
		Timers:    registry,
		OnTimeout: func(s *session.Session) { h.disconnect(s, "handshake timeout") },
		Broadcast: h.broadcastState,
	}

	go h.loop()
	if interval := cfg.TickInterval(); interval > 0 {
		go h.tickLoop(interval)
	}
	return h
}

func (h *Hub) Inbox() chan<- Msg { return h.inbox }

func (h *Hub) tickLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-h.ctx.Done():
			return
		case now := <-ticker.C:
			select {
			case h.inbox <- Tick{Elapsed: now.Sub(last)}:
				last = now
			case <-h.ctx.Done():
				return
			}
		}
	}
}

func (h *Hub) loop() {
	for {
		select {
		case <-h.ctx.Done():
			return

		case m := <-h.inbox:
			switch msg := m.(type) {
			case SessionOpened:
				msg.Reply <- h.registry.Register(msg.Addr)

			case FrameReceived:
				h.handleFrame(msg.SessionID, msg.Data)

			case SessionClosed:
				if s, ok := h.registry.Get(msg.SessionID); ok {
					h.disconnect(s, "transport closed")
				}

			case Tick:
				h.scheduler.RunTick(msg.Elapsed)

			case GetView:
				msg.Reply <- h.view()

			case Shutdown:
				h.registry.ForEach(func(s *session.Session) { s.Close() })
				h.cancel()
				return
			}
		}
	}
}

// disconnect tears one session down: lobby membership first, so cleanup sees
// a stable roster, then the registry record and outbound queue.
func (h *Hub) disconnect(s *session.Session, reason string) {
	if s.InLobby() {
		for _, id := range h.directory.RemovePlayer(s.ID, s.Player.LobbyID) {
			h.table.Drop(id)
		}
	}
	h.registry.Remove(s.ID)
	h.log.Info("session disconnected",
		zap.String("session", s.ID), zap.String("reason", reason))
}

// lobbyOf returns the lobby the session's player is bound to, or nil.
func (h *Hub) lobbyOf(s *session.Session) *lobby.Lobby {
	if !s.InLobby() {
		return nil
	}
	lb, ok := h.directory.Get(s.Player.LobbyID)
	if !ok {
		return nil
	}
	return lb
}
