package spectator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"tankbots/internal/protocol"
)

// fakeScene counts every operation so tests can assert minimal-diff behavior.
type fakeScene struct {
	nextID   LocalID
	alive    map[LocalID]protocol.EntityState
	spawns   int
	updates  int
	destroys int
}

func newFakeScene() *fakeScene {
	return &fakeScene{alive: make(map[LocalID]protocol.EntityState)}
}

func (s *fakeScene) Spawn(serverID string, state protocol.EntityState) LocalID {
	s.nextID++
	s.alive[s.nextID] = state
	s.spawns++
	return s.nextID
}

func (s *fakeScene) Update(id LocalID, state protocol.EntityState) bool {
	if _, ok := s.alive[id]; !ok {
		return false
	}
	s.alive[id] = state
	s.updates++
	return true
}

func (s *fakeScene) Alive(id LocalID) bool {
	_, ok := s.alive[id]
	return ok
}

func (s *fakeScene) Destroy(id LocalID) {
	delete(s.alive, id)
	s.destroys++
}

func snapshot(players map[string]protocol.EntityState, projectiles map[string]protocol.EntityState) *protocol.GameState {
	if players == nil {
		players = map[string]protocol.EntityState{}
	}
	if projectiles == nil {
		projectiles = map[string]protocol.EntityState{}
	}
	return &protocol.GameState{Players: players, Projectiles: projectiles}
}

func at(x float64) protocol.EntityState {
	return protocol.EntityState{Position: protocol.Vec3{X: x}}
}

func TestReconcile_SpawnsNewEntities(t *testing.T) {
	scene := newFakeScene()
	r := NewReconciler(scene, zap.NewNop())

	r.Reconcile(snapshot(
		map[string]protocol.EntityState{"p1": at(1)},
		map[string]protocol.EntityState{"proj1": at(2)},
	))

	assert.Equal(t, 2, scene.spawns)
	assert.Equal(t, 0, scene.destroys)
	assert.Equal(t, 2, r.Len())
}

func TestReconcile_UpdatesInPlace(t *testing.T) {
	scene := newFakeScene()
	r := NewReconciler(scene, zap.NewNop())

	r.Reconcile(snapshot(map[string]protocol.EntityState{"p1": at(1)}, nil))
	r.Reconcile(snapshot(map[string]protocol.EntityState{"p1": at(5)}, nil))

	assert.Equal(t, 1, scene.spawns, "known entity must never be respawned")
	assert.Equal(t, 1, scene.updates)
	require.Len(t, scene.alive, 1)
	for _, state := range scene.alive {
		assert.Equal(t, 5.0, state.Position.X)
	}
}

func TestReconcile_IdempotentOnRepeatedSnapshot(t *testing.T) {
	scene := newFakeScene()
	r := NewReconciler(scene, zap.NewNop())

	snap := snapshot(map[string]protocol.EntityState{"p1": at(1), "p2": at(2)}, nil)
	r.Reconcile(snap)
	spawns, destroys := scene.spawns, scene.destroys

	r.Reconcile(snap)
	assert.Equal(t, spawns, scene.spawns, "repeat application must create nothing")
	assert.Equal(t, destroys, scene.destroys, "repeat application must destroy nothing")
	assert.Equal(t, 2, r.Len())
}

func TestReconcile_DestroysOnlyMissingEntities(t *testing.T) {
	scene := newFakeScene()
	r := NewReconciler(scene, zap.NewNop())

	// Tick N lists P1 and P2; tick N+1 lists only P2.
	r.Reconcile(snapshot(nil, map[string]protocol.EntityState{"P1": at(1), "P2": at(2)}))
	p2Local := LocalID(0)
	for id, state := range scene.alive {
		if state.Position.X == 2 {
			p2Local = id
		}
	}
	updatesBefore := scene.updates

	r.Reconcile(snapshot(nil, map[string]protocol.EntityState{"P2": at(2)}))

	assert.Equal(t, 1, scene.destroys, "only P1's local entity is destroyed")
	assert.True(t, scene.Alive(p2Local), "P2 must be left untouched")
	assert.Equal(t, updatesBefore+1, scene.updates)
	assert.Equal(t, 1, r.Len())
}

func TestReconcile_DropsMappingWithoutSecondDestroy(t *testing.T) {
	scene := newFakeScene()
	r := NewReconciler(scene, zap.NewNop())

	r.Reconcile(snapshot(map[string]protocol.EntityState{"p1": at(1)}, nil))
	// The local entity disappears by other means, e.g. scene teardown.
	for id := range scene.alive {
		delete(scene.alive, id)
	}

	r.Reconcile(snapshot(nil, nil))
	assert.Equal(t, 0, scene.destroys, "never destroy an already-destroyed entity")
	assert.Equal(t, 0, r.Len())
}

func TestReconcile_RespawnsWhenLocalEntityVanished(t *testing.T) {
	scene := newFakeScene()
	r := NewReconciler(scene, zap.NewNop())

	r.Reconcile(snapshot(map[string]protocol.EntityState{"p1": at(1)}, nil))
	for id := range scene.alive {
		delete(scene.alive, id)
	}

	r.Reconcile(snapshot(map[string]protocol.EntityState{"p1": at(3)}, nil))
	assert.Equal(t, 2, scene.spawns, "stale mapping must be replaced by a fresh spawn")
	assert.Equal(t, 1, r.Len())
}

func TestLogScene_Lifecycle(t *testing.T) {
	scene := NewLogScene(zap.NewNop())
	id := scene.Spawn("p1", at(1))
	assert.True(t, scene.Alive(id))
	assert.True(t, scene.Update(id, at(2)))
	assert.Equal(t, 1, scene.Len())

	scene.Destroy(id)
	assert.False(t, scene.Alive(id))
	assert.False(t, scene.Update(id, at(3)))
}
