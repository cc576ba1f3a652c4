package spectator

import (
	"go.uber.org/zap"

	"tankbots/internal/protocol"
)

// LogScene is the headless scene used by the spectator binary: it tracks
// entity state in memory and logs transitions. Rendering is out of scope and
// plugs in behind the same Scene interface.
type LogScene struct {
	log    *zap.Logger
	nextID LocalID
	bodies map[LocalID]protocol.EntityState
}

func NewLogScene(log *zap.Logger) *LogScene {
	return &LogScene{
		log:    log,
		bodies: make(map[LocalID]protocol.EntityState),
	}
}

func (s *LogScene) Spawn(serverID string, state protocol.EntityState) LocalID {
	s.nextID++
	s.bodies[s.nextID] = state
	s.log.Info("spawn",
		zap.String("server", serverID), zap.Uint64("local", uint64(s.nextID)))
	return s.nextID
}

func (s *LogScene) Update(id LocalID, state protocol.EntityState) bool {
	if _, ok := s.bodies[id]; !ok {
		return false
	}
	s.bodies[id] = state
	return true
}

func (s *LogScene) Alive(id LocalID) bool {
	_, ok := s.bodies[id]
	return ok
}

func (s *LogScene) Destroy(id LocalID) {
	delete(s.bodies, id)
	s.log.Info("destroy", zap.Uint64("local", uint64(id)))
}

// Len returns the number of live local entities.
func (s *LogScene) Len() int { return len(s.bodies) }
