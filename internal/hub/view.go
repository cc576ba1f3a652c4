package hub

import (
	"slices"

	"tankbots/internal/lobby"
)

// LobbyView is a copy of one lobby's observable state.
type LobbyView struct {
	State        lobby.State         `json:"state"`
	MapName      string              `json:"mapName"`
	Players      []string            `json:"players"`
	Spectators   []string            `json:"spectators"`
	Teams        map[string][]string `json:"teams"`
	Tick         uint64              `json:"tick"`
	HasMapConfig bool                `json:"hasMapConfig"`
}

// View is a point-in-time copy of hub state, safe to read outside the loop.
type View struct {
	Sessions int                  `json:"sessions"`
	Lobbies  map[string]LobbyView `json:"lobbies"`
}

func (h *Hub) view() View {
	v := View{
		Sessions: h.registry.Len(),
		Lobbies:  make(map[string]LobbyView, h.directory.Len()),
	}
	h.directory.ForEach(func(lb *lobby.Lobby) {
		teams := make(map[string][]string, len(lb.Teams))
		for name, roster := range lb.Teams {
			teams[name] = slices.Clone(roster)
		}
		v.Lobbies[lb.ID] = LobbyView{
			State:        lb.State,
			MapName:      lb.MapName,
			Players:      slices.Clone(lb.Players),
			Spectators:   slices.Clone(lb.Spectators),
			Teams:        teams,
			Tick:         lb.Tick,
			HasMapConfig: lb.MapConfig != nil,
		}
	})
	return v
}
