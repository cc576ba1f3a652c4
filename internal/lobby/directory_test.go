package lobby

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"tankbots/internal/maps"
)

// fakeRoster stands in for the session registry: it records team names,
// spectator flags, lobby bindings and handshake countdowns per session id.
type fakeRoster struct {
	teams      map[string]string
	spectators map[string]bool
	bound      map[string]string
	awaiting   map[string]bool
}

func newFakeRoster() *fakeRoster {
	return &fakeRoster{
		teams:      make(map[string]string),
		spectators: make(map[string]bool),
		bound:      make(map[string]string),
		awaiting:   make(map[string]bool),
	}
}

func (f *fakeRoster) addPlayer(id, team string) { f.teams[id] = team; f.awaiting[id] = true }

func (f *fakeRoster) addSpectator(id string) { f.spectators[id] = true; f.awaiting[id] = true }

func (f *fakeRoster) TeamName(id string) (string, bool) {
	team, ok := f.teams[id]
	return team, ok && team != ""
}
func (f *fakeRoster) IsSpectator(id string) bool    { return f.spectators[id] }
func (f *fakeRoster) BindLobby(id, lobbyID string)  { f.bound[id] = lobbyID }
func (f *fakeRoster) UnbindLobby(id string)         { delete(f.bound, id) }
func (f *fakeRoster) ClearHandshakeTimer(id string) { delete(f.awaiting, id) }
func (f *fakeRoster) ArmHandshakeTimer(id string)   { f.awaiting[id] = true }

func forestConfig() *maps.Config {
	return &maps.Config{
		Teams: map[string]maps.TeamConfig{
			"red":  {Color: "#cc3333", MaxPlayers: 2},
			"blue": {Color: "#3333cc", MaxPlayers: 2},
		},
	}
}

func newTestDirectory() (*Directory, *fakeRoster) {
	roster := newFakeRoster()
	store := maps.StaticStore{"forest": forestConfig()}
	return NewDirectory(store, roster, zap.NewNop()), roster
}

// requireTeamSubset asserts the invariant that every player in a team roster
// also appears in the lobby roster.
func requireTeamSubset(t *testing.T, lb *Lobby) {
	t.Helper()
	for name, roster := range lb.Teams {
		for _, id := range roster {
			require.True(t, lb.HasPlayer(id),
				"team %q holds %q which is not in the lobby roster", name, id)
		}
	}
}

func TestDirectory_CreateResolvesMapAndBindsFirstPlayer(t *testing.T) {
	d, roster := newTestDirectory()
	roster.addPlayer("botA", "red")

	lb, rejected, err := d.GetOrCreate("L1", "botA", "forest")
	require.NoError(t, err)
	require.Empty(t, rejected)

	assert.Equal(t, StateSettingUp, lb.State)
	assert.Equal(t, []string{"botA"}, lb.Players)
	assert.NotNil(t, lb.MapConfig)
	assert.Equal(t, []string{"botA"}, lb.Teams["red"])
	assert.Equal(t, "L1", roster.bound["botA"])
	assert.False(t, roster.awaiting["botA"], "handshake countdown must clear on setup completion")
	requireTeamSubset(t, lb)
}

func TestDirectory_GetOrCreateIsIdempotent(t *testing.T) {
	d, roster := newTestDirectory()
	roster.addPlayer("botA", "red")

	lb1, _, err := d.GetOrCreate("L1", "botA", "forest")
	require.NoError(t, err)

	// Second call: map name ignored for an existing lobby, same record back.
	lb2, _, err := d.GetOrCreate("L1", "botA", "swamp-that-does-not-exist")
	require.NoError(t, err)
	assert.Same(t, lb1, lb2)
	assert.Equal(t, []string{"botA"}, lb2.Players, "rejoining must not duplicate the roster entry")
	assert.Equal(t, 1, d.Len())
}

func TestDirectory_MissingMapNameCreatesNothing(t *testing.T) {
	d, roster := newTestDirectory()
	roster.addPlayer("botA", "red")

	_, _, err := d.GetOrCreate("L9", "botA", "")
	require.ErrorIs(t, err, ErrMissingMapName)
	assert.Equal(t, 0, d.Len(), "failed creation must leave the directory unchanged")
}

func TestDirectory_MapLookupFailureTearsLobbyDown(t *testing.T) {
	d, roster := newTestDirectory()
	roster.addPlayer("botA", "red")

	_, _, err := d.GetOrCreate("L1", "botA", "no-such-map")
	require.ErrorIs(t, err, ErrMapNotFound)
	assert.Equal(t, 0, d.Len())
	assert.Empty(t, roster.bound, "members of a torn-down lobby stay unbound")
	assert.True(t, roster.awaiting["botA"], "the would-be member returns to the pre-lobby state")
}

func TestDirectory_SecondJoinWithoutMapNameUsesExistingLobby(t *testing.T) {
	d, roster := newTestDirectory()
	roster.addPlayer("botA", "red")
	roster.addPlayer("botB", "blue")

	_, _, err := d.GetOrCreate("L1", "botA", "forest")
	require.NoError(t, err)

	lb, rejected, err := d.GetOrCreate("L1", "botB", "")
	require.NoError(t, err)
	require.Empty(t, rejected)
	assert.Equal(t, []string{"botA", "botB"}, lb.Players)
	assert.Equal(t, []string{"botB"}, lb.Teams["blue"])
	assert.False(t, roster.awaiting["botB"])
	requireTeamSubset(t, lb)
}

func TestDirectory_TeamCapacityEnforcedAtInsert(t *testing.T) {
	d, roster := newTestDirectory()
	for _, id := range []string{"a", "b", "c"} {
		roster.addPlayer(id, "red")
	}

	_, _, err := d.GetOrCreate("L1", "a", "forest")
	require.NoError(t, err)
	_, rejected, err := d.GetOrCreate("L1", "b", "")
	require.NoError(t, err)
	require.Empty(t, rejected)

	lb, rejected, err := d.GetOrCreate("L1", "c", "")
	require.NoError(t, err)
	require.Len(t, rejected, 1)
	assert.Equal(t, "c", rejected[0].SessionID)
	assert.ErrorIs(t, rejected[0].Err, ErrTeamFull)

	assert.False(t, lb.HasPlayer("c"), "rejected player must be struck from the roster")
	assert.True(t, roster.awaiting["c"], "rejected player returns to the pre-lobby state")
	requireTeamSubset(t, lb)
}

func TestDirectory_UnknownTeamRejected(t *testing.T) {
	d, roster := newTestDirectory()
	roster.addPlayer("botA", "chartreuse")

	_, rejected, err := d.GetOrCreate("L1", "botA", "forest")
	require.NoError(t, err)
	require.Len(t, rejected, 1)
	assert.ErrorIs(t, rejected[0].Err, ErrUnknownTeam)
	// Sole member was rejected, so the cleanup pass collected the lobby.
	assert.Equal(t, 0, d.Len())
}

func TestDirectory_SpectatorJoinsWithoutTeam(t *testing.T) {
	d, roster := newTestDirectory()
	roster.addPlayer("botA", "red")
	roster.addSpectator("watcher")

	_, _, err := d.GetOrCreate("L1", "botA", "forest")
	require.NoError(t, err)
	lb, rejected, err := d.GetOrCreate("L1", "watcher", "")
	require.NoError(t, err)
	require.Empty(t, rejected)

	assert.Equal(t, []string{"watcher"}, lb.Spectators)
	assert.False(t, lb.HasPlayer("watcher"))
	_, onTeam := lb.TeamOf("watcher")
	assert.False(t, onTeam)
	assert.Equal(t, "L1", roster.bound["watcher"])
}

func TestDirectory_RemovePlayerRearmsAndCleansUp(t *testing.T) {
	d, roster := newTestDirectory()
	roster.addPlayer("botA", "red")
	roster.addPlayer("botB", "blue")

	_, _, err := d.GetOrCreate("L1", "botA", "forest")
	require.NoError(t, err)
	_, _, err = d.GetOrCreate("L1", "botB", "")
	require.NoError(t, err)

	removed := d.RemovePlayer("botA", "L1")
	assert.Empty(t, removed, "lobby survives while botB remains")
	lb, ok := d.Get("L1")
	require.True(t, ok)
	assert.False(t, lb.HasPlayer("botA"))
	assert.Empty(t, lb.Teams["red"])
	assert.True(t, roster.awaiting["botA"], "removed player re-enters the handshake state")
	requireTeamSubset(t, lb)

	removed = d.RemovePlayer("botB", "L1")
	assert.Equal(t, []string{"L1"}, removed)
	assert.Equal(t, 0, d.Len())
}

func TestDirectory_RemoveLastSpectatorCollectsLobby(t *testing.T) {
	d, roster := newTestDirectory()
	roster.addSpectator("watcher")

	_, _, err := d.GetOrCreate("L1", "watcher", "forest")
	require.NoError(t, err)

	removed := d.RemovePlayer("watcher", "L1")
	assert.Equal(t, []string{"L1"}, removed)
	assert.Equal(t, 0, d.Len())
}

func TestDirectory_RemoveLobbyStrikesEveryMember(t *testing.T) {
	d, roster := newTestDirectory()
	roster.addPlayer("botA", "red")
	roster.addPlayer("botB", "blue")
	roster.addSpectator("watcher")

	for _, id := range []string{"botA", "botB", "watcher"} {
		_, _, err := d.GetOrCreate("L1", id, "forest")
		require.NoError(t, err)
	}

	d.RemoveLobby("L1")
	assert.Equal(t, 0, d.Len())
	assert.Empty(t, roster.bound)
	for _, id := range []string{"botA", "botB", "watcher"} {
		assert.True(t, roster.awaiting[id], "%s must be back in the handshake state", id)
	}
}
