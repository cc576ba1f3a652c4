// Package lobby owns the lobby directory: named match instances grouping
// players and spectators under one map and tick clock. All mutations go
// through the Directory and are serialized by its caller (the hub loop).
package lobby

import (
	"slices"

	"tankbots/internal/maps"
)

type State string

const (
	StateSettingUp  State = "SettingUp"
	StateInProgress State = "InProgress"
	StateFinished   State = "Finished"
)

// Lobby is a named match instance. Players and Spectators hold session ids in
// join order. Teams holds per-team rosters once the map config is resolved;
// every id in a team roster also appears in Players.
type Lobby struct {
	ID      string
	State   State
	MapName string

	// MapConfig is nil until the map store resolves MapName.
	MapConfig *maps.Config

	Players    []string
	Spectators []string
	Teams      map[string][]string

	// Tick advances once per global tick while the lobby exists.
	Tick uint64
}

func newLobby(id, mapName string) *Lobby {
	return &Lobby{
		ID:      id,
		State:   StateSettingUp,
		MapName: mapName,
		Teams:   make(map[string][]string),
	}
}

// Empty reports whether the lobby has no members left and is eligible for
// garbage collection.
func (l *Lobby) Empty() bool {
	return len(l.Players)+len(l.Spectators) == 0
}

func (l *Lobby) HasPlayer(id string) bool {
	return slices.Contains(l.Players, id)
}

func (l *Lobby) HasSpectator(id string) bool {
	return slices.Contains(l.Spectators, id)
}

// Members returns players followed by spectators.
func (l *Lobby) Members() []string {
	members := make([]string, 0, len(l.Players)+len(l.Spectators))
	members = append(members, l.Players...)
	members = append(members, l.Spectators...)
	return members
}

// TeamOf returns the team a player was inserted into, if any.
func (l *Lobby) TeamOf(id string) (string, bool) {
	for name, roster := range l.Teams {
		if slices.Contains(roster, id) {
			return name, true
		}
	}
	return "", false
}

func (l *Lobby) removeFromRosters(id string) {
	if i := slices.Index(l.Players, id); i >= 0 {
		l.Players = slices.Delete(l.Players, i, i+1)
	}
	if i := slices.Index(l.Spectators, id); i >= 0 {
		l.Spectators = slices.Delete(l.Spectators, i, i+1)
	}
	for name, roster := range l.Teams {
		if i := slices.Index(roster, id); i >= 0 {
			l.Teams[name] = slices.Delete(roster, i, i+1)
		}
	}
}
