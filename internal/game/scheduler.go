package game

import (
	"time"

	"go.uber.org/zap"

	"tankbots/internal/lobby"
	"tankbots/internal/session"
)

// TimerSource advances handshake countdowns and hands back the sessions that
// expired. Satisfied by *session.Registry.
type TimerSource interface {
	Tick(elapsed time.Duration) []*session.Session
}

// Scheduler executes the per-tick phase sequence in fixed order across the
// whole lobby population:
//
//  1. timer processing
//  2. increment every lobby's tick counter
//  3. run the simulation step, exactly once per lobby
//  4. per-lobby step-done hook
//  5. broadcast the authoritative snapshot
//
// No lobby enters a phase before the previous phase completed for it; a lobby
// created mid-tick is picked up at the next tick boundary because the hub
// only feeds the scheduler between inbound messages.
type Scheduler struct {
	Log       *zap.Logger
	Sim       Simulation
	Directory *lobby.Directory
	Timers    TimerSource

	// OnTimeout disconnects a session whose handshake countdown expired.
	OnTimeout func(*session.Session)
	// Broadcast ships a lobby's snapshot to its members.
	Broadcast func(*lobby.Lobby)
}

// RunTick runs phases 1-5 for one global tick. elapsed is the wall time since
// the previous tick and only feeds the handshake countdowns.
func (s *Scheduler) RunTick(elapsed time.Duration) {
	for _, sess := range s.Timers.Tick(elapsed) {
		s.Log.Info("session timed out waiting for handshake",
			zap.String("session", sess.ID), zap.String("addr", sess.Addr))
		s.OnTimeout(sess)
	}

	s.Directory.ForEach(func(lb *lobby.Lobby) {
		lb.Tick++
	})

	s.Directory.ForEach(func(lb *lobby.Lobby) {
		s.Sim.Step(lb.ID, lb.Tick)
		s.stepDone(lb)
	})

	s.Directory.ForEach(func(lb *lobby.Lobby) {
		s.Broadcast(lb)
	})
}

// stepDone is the extension point for consuming simulation results once the
// step for a lobby finished.
func (s *Scheduler) stepDone(lb *lobby.Lobby) {
	s.Log.Debug("simulation step done",
		zap.String("lobby", lb.ID), zap.Uint64("tick", lb.Tick))
}
