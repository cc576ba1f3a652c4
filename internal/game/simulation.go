// Package game drives lobbies through the per-tick phase sequence and hosts
// the simulation collaborator boundary.
package game

import (
	"math"

	"go.uber.org/zap"

	"tankbots/internal/protocol"
)

// Simulation is the external gameplay step, invoked exactly once per lobby
// per tick inside the scheduler's simulation phase.
type Simulation interface {
	Step(lobbyID string, tick uint64)
}

// LogSimulation is the placeholder step: it only records that it ran.
type LogSimulation struct {
	Log *zap.Logger
}

func (s LogSimulation) Step(lobbyID string, tick uint64) {
	s.Log.Debug("simulation step",
		zap.String("lobby", lobbyID), zap.Uint64("tick", tick))
}

// StateTable holds the authoritative snapshot per lobby. Written by
// simulations, read by the broadcast phase, all on the hub goroutine.
type StateTable struct {
	states map[string]*protocol.GameState
}

func NewStateTable() *StateTable {
	return &StateTable{states: make(map[string]*protocol.GameState)}
}

// ForLobby returns the snapshot for a lobby, creating an empty one first if
// needed.
func (t *StateTable) ForLobby(lobbyID string) *protocol.GameState {
	st, ok := t.states[lobbyID]
	if !ok {
		st = &protocol.GameState{
			Players:     make(map[string]protocol.EntityState),
			Projectiles: make(map[string]protocol.EntityState),
		}
		t.states[lobbyID] = st
	}
	return st
}

// Drop discards the snapshot of a despawned lobby.
func (t *StateTable) Drop(lobbyID string) {
	delete(t.states, lobbyID)
}

// DummySimulation keeps snapshots visibly alive without real gameplay: every
// player entity orbits the map center at a fixed radius.
type DummySimulation struct {
	Log    *zap.Logger
	Table  *StateTable
	Radius float64
}

func (s DummySimulation) Step(lobbyID string, tick uint64) {
	st := s.Table.ForLobby(lobbyID)
	st.Tick = tick
	angle := float64(tick) / 10
	for id, entity := range st.Players {
		entity.Position.X = s.Radius * math.Cos(angle)
		entity.Position.Z = s.Radius * math.Sin(angle)
		entity.Rotation = angle
		st.Players[id] = entity
	}
	s.Log.Debug("dummy simulation step",
		zap.String("lobby", lobbyID), zap.Uint64("tick", tick))
}
