package lobby

import (
	"errors"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"tankbots/internal/maps"
)

var (
	// ErrMissingMapName means the lobby does not exist and cannot be created
	// without a map name. Nothing is created.
	ErrMissingMapName = errors.New("lobby does not exist and no map name was provided")

	// ErrMapNotFound means the map store has no config for the lobby's map.
	ErrMapNotFound = errors.New("map not found")

	ErrTeamFull    = errors.New("team is full")
	ErrUnknownTeam = errors.New("team does not exist on this map")
)

// Roster is the slice of the session registry the directory needs when a
// lobby finishes setting up or loses a member.
type Roster interface {
	TeamName(sessionID string) (string, bool)
	IsSpectator(sessionID string) bool
	BindLobby(sessionID, lobbyID string)
	UnbindLobby(sessionID string)
	ClearHandshakeTimer(sessionID string)
	ArmHandshakeTimer(sessionID string)
}

// Rejection reports a member that could not be placed on its team during
// setup completion. The member has already been struck from the lobby.
type Rejection struct {
	SessionID string
	Err       error
}

// Directory maps lobby ids to lobby records and owns their lifecycle. It must
// only be driven from the hub loop goroutine; cleanup depends on a stable
// roster snapshot, so no two mutations may interleave.
type Directory struct {
	log    *zap.Logger
	store  maps.Store
	roster Roster

	lobbies map[string]*Lobby
}

func NewDirectory(store maps.Store, roster Roster, log *zap.Logger) *Directory {
	return &Directory{
		log:     log,
		store:   store,
		roster:  roster,
		lobbies: make(map[string]*Lobby),
	}
}

// GetOrCreate returns the lobby registered under lobbyID, adding the
// requester to it. An existing lobby is returned unconditionally; mapName is
// ignored for it. A new lobby requires a map name and starts in SettingUp
// with the requester as its first member.
//
// Setup completion runs whenever the lobby gains a member: once the map
// config resolves, every roster member is bound in one batch. Members whose
// team is full or unknown are struck again and reported as rejections. If the
// map cannot be resolved, the lobby is torn down and an error wrapping
// ErrMapNotFound is returned.
func (d *Directory) GetOrCreate(lobbyID, sessionID, mapName string) (*Lobby, []Rejection, error) {
	lb, ok := d.lobbies[lobbyID]
	if !ok {
		if mapName == "" {
			return nil, nil, ErrMissingMapName
		}
		lb = newLobby(lobbyID, mapName)
		d.lobbies[lobbyID] = lb
		d.log.Info("lobby created",
			zap.String("lobby", lobbyID), zap.String("map", mapName))
	}

	d.addMember(lb, sessionID)

	rejected, err := d.finishSetup(lb)
	if err != nil {
		d.RemoveLobby(lobbyID)
		return nil, nil, fmt.Errorf("lobby %q: %w", lobbyID, err)
	}
	return lb, rejected, nil
}

func (d *Directory) addMember(lb *Lobby, sessionID string) {
	if lb.HasPlayer(sessionID) || lb.HasSpectator(sessionID) {
		return
	}
	if d.roster.IsSpectator(sessionID) {
		lb.Spectators = append(lb.Spectators, sessionID)
	} else {
		lb.Players = append(lb.Players, sessionID)
	}
}

// finishSetup resolves the map config if it is still unset and then binds
// every roster member: handshake timer cleared, lobby bound, players inserted
// into their team. The whole batch happens within this one directory update.
func (d *Directory) finishSetup(lb *Lobby) ([]Rejection, error) {
	if lb.MapConfig == nil {
		cfg, ok := d.store.Lookup(lb.MapName)
		if !ok {
			d.log.Error("map lookup failed, removing lobby",
				zap.String("lobby", lb.ID), zap.String("map", lb.MapName))
			return nil, fmt.Errorf("%w: %q", ErrMapNotFound, lb.MapName)
		}
		lb.MapConfig = cfg
		d.log.Info("map config resolved",
			zap.String("lobby", lb.ID), zap.String("map", lb.MapName))
	}

	var rejected []Rejection
	for _, id := range lb.Members() {
		d.roster.ClearHandshakeTimer(id)
		d.roster.BindLobby(id, lb.ID)
	}
	for _, id := range lb.Players {
		if _, placed := lb.TeamOf(id); placed {
			continue
		}
		teamName, _ := d.roster.TeamName(id)
		if err := d.placeOnTeam(lb, id, teamName); err != nil {
			rejected = append(rejected, Rejection{SessionID: id, Err: err})
		}
	}
	for _, rej := range rejected {
		d.log.Warn("player rejected during lobby setup",
			zap.String("lobby", lb.ID),
			zap.String("session", rej.SessionID),
			zap.Error(rej.Err))
		d.strikeMember(lb, rej.SessionID)
	}
	d.Cleanup()
	return rejected, nil
}

func (d *Directory) placeOnTeam(lb *Lobby, sessionID, teamName string) error {
	team, ok := lb.MapConfig.Teams[teamName]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownTeam, teamName)
	}
	if team.MaxPlayers > 0 && len(lb.Teams[teamName]) >= team.MaxPlayers {
		return fmt.Errorf("%w: %q", ErrTeamFull, teamName)
	}
	lb.Teams[teamName] = append(lb.Teams[teamName], sessionID)
	return nil
}

// strikeMember removes a member from all rosters and returns it to the
// pre-lobby state: unbound, handshake countdown re-armed.
func (d *Directory) strikeMember(lb *Lobby, sessionID string) {
	lb.removeFromRosters(sessionID)
	d.roster.UnbindLobby(sessionID)
	d.roster.ArmHandshakeTimer(sessionID)
}

// RemovePlayer strikes the player from the lobby's rosters and re-arms its
// handshake countdown, then runs a cleanup pass. It returns the ids of
// lobbies garbage-collected by that pass.
func (d *Directory) RemovePlayer(sessionID, lobbyID string) []string {
	lb, ok := d.lobbies[lobbyID]
	if !ok {
		d.log.Error("cannot remove player from unknown lobby",
			zap.String("lobby", lobbyID), zap.String("session", sessionID))
		return nil
	}
	d.log.Info("player removed from lobby",
		zap.String("lobby", lobbyID), zap.String("session", sessionID))
	d.strikeMember(lb, sessionID)
	return d.Cleanup()
}

// RemoveLobby strikes every member and despawns the lobby regardless of
// roster size.
func (d *Directory) RemoveLobby(lobbyID string) {
	lb, ok := d.lobbies[lobbyID]
	if !ok {
		return
	}
	for _, id := range lb.Members() {
		d.strikeMember(lb, id)
	}
	delete(d.lobbies, lobbyID)
	d.log.Info("lobby removed", zap.String("lobby", lobbyID))
}

// Cleanup despawns every lobby whose combined roster is empty and returns
// their ids. It runs after every removal rather than on a schedule.
func (d *Directory) Cleanup() []string {
	var removed []string
	for id, lb := range d.lobbies {
		if lb.Empty() {
			delete(d.lobbies, id)
			removed = append(removed, id)
			d.log.Info("despawning empty lobby", zap.String("lobby", id))
		}
	}
	return removed
}

func (d *Directory) Get(id string) (*Lobby, bool) {
	lb, ok := d.lobbies[id]
	return lb, ok
}

func (d *Directory) Len() int { return len(d.lobbies) }

// IDs returns lobby ids in sorted order so per-tick iteration is stable.
func (d *Directory) IDs() []string {
	ids := make([]string, 0, len(d.lobbies))
	for id := range d.lobbies {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// ForEach visits every lobby in id order.
func (d *Directory) ForEach(fn func(*Lobby)) {
	for _, id := range d.IDs() {
		if lb, ok := d.lobbies[id]; ok {
			fn(lb)
		}
	}
}
