// Package spectator keeps a locally materialized entity set consistent with
// the authoritative per-tick snapshot. It diffs instead of re-syncing:
// unchanged entities are never destroyed and recreated, so per-tick work is
// bounded by the delta plus one scan of the existing mappings.
package spectator

import (
	"go.uber.org/zap"

	"tankbots/internal/protocol"
)

// LocalID identifies a locally materialized entity.
type LocalID uint64

// Scene is the local entity world the reconciler drives. Update returns
// false when the local entity no longer exists, which tells the reconciler
// to drop the stale mapping and respawn.
type Scene interface {
	Spawn(serverID string, state protocol.EntityState) LocalID
	Update(id LocalID, state protocol.EntityState) bool
	Alive(id LocalID) bool
	Destroy(id LocalID)
}

// Reconciler maintains the one-to-one mapping from authoritative entity id
// to local entity id. It is driven once per received snapshot and never
// concurrently with scene reads.
type Reconciler struct {
	log     *zap.Logger
	scene   Scene
	mapping map[string]LocalID
}

func NewReconciler(scene Scene, log *zap.Logger) *Reconciler {
	return &Reconciler{
		log:     log,
		scene:   scene,
		mapping: make(map[string]LocalID),
	}
}

// Reconcile applies one authoritative snapshot: update or spawn everything
// the snapshot lists, then destroy every mapped entity it does not.
func (r *Reconciler) Reconcile(snap *protocol.GameState) {
	seen := make(map[string]struct{}, len(snap.Players)+len(snap.Projectiles))
	r.apply(snap.Players, seen)
	r.apply(snap.Projectiles, seen)

	for serverID, localID := range r.mapping {
		if _, ok := seen[serverID]; ok {
			continue
		}
		delete(r.mapping, serverID)
		if !r.scene.Alive(localID) {
			// Already destroyed by other means; never destroy twice.
			continue
		}
		r.scene.Destroy(localID)
		r.log.Debug("entity despawned", zap.String("server", serverID))
	}
}

func (r *Reconciler) apply(states map[string]protocol.EntityState, seen map[string]struct{}) {
	for serverID, state := range states {
		seen[serverID] = struct{}{}
		if localID, ok := r.mapping[serverID]; ok {
			if r.scene.Update(localID, state) {
				continue
			}
			// Stale mapping: the local entity vanished underneath us.
			delete(r.mapping, serverID)
		}
		r.mapping[serverID] = r.scene.Spawn(serverID, state)
		r.log.Debug("entity spawned", zap.String("server", serverID))
	}
}

// Len returns the number of live mappings.
func (r *Reconciler) Len() int { return len(r.mapping) }
