package session

// Identity accessors used by the lobby directory. They satisfy lobby.Roster.

func (r *Registry) TeamName(id string) (string, bool) {
	s, ok := r.sessions[id]
	if !ok || s.Player == nil {
		return "", false
	}
	return s.Player.TeamName, s.Player.TeamName != ""
}

func (r *Registry) IsSpectator(id string) bool {
	s, ok := r.sessions[id]
	return ok && s.Player != nil && s.Player.Spectator
}

func (r *Registry) BindLobby(id, lobbyID string) {
	if s, ok := r.sessions[id]; ok && s.Player != nil {
		s.Player.LobbyID = lobbyID
	}
}

func (r *Registry) UnbindLobby(id string) {
	if s, ok := r.sessions[id]; ok && s.Player != nil {
		s.Player.LobbyID = ""
	}
}
