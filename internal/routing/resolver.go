// Package routing resolves an abstract message target into a concrete
// recipient set. Resolution is pure: it only reads lobby and registry state.
package routing

import (
	"errors"
	"fmt"

	"tankbots/internal/lobby"
	"tankbots/internal/protocol"
)

var (
	// ErrNoLobbyContext means the target needs a lobby and the sender has
	// none. The send is dropped, never a crash.
	ErrNoLobbyContext = errors.New("no lobby context for target resolution")

	// ErrNoTeamContext means the sender is in a lobby but on no team.
	ErrNoTeamContext = errors.New("sender has no team in this lobby")

	ErrRecipientNotFound = errors.New("recipient not found")
	ErrUnknownTarget     = errors.New("unknown message target")
)

// Presence answers whether a session id is currently registered.
type Presence interface {
	Has(sessionID string) bool
}

// Resolution is the outcome of resolving a target. Either Sessions holds the
// recipient session ids, or Lobby is true and the lobby entity itself is the
// recipient (lobby-level commands such as "start game").
type Resolution struct {
	Sessions []string
	Lobby    bool
}

// Resolve maps target to recipients. senderID is empty for server-originated
// envelopes; Team and AllInLobby always exclude the sender, since those
// targets mean "everyone else". ServerOnly resolves to the empty set.
func Resolve(target protocol.TargetSpec, senderID string, lb *lobby.Lobby, presence Presence) (Resolution, error) {
	switch target.Kind {
	case protocol.TargetServerOnly:
		return Resolution{}, nil

	case protocol.TargetTeam:
		if lb == nil {
			return Resolution{}, ErrNoLobbyContext
		}
		teamName, ok := lb.TeamOf(senderID)
		if !ok {
			return Resolution{}, ErrNoTeamContext
		}
		return Resolution{Sessions: excluding(lb.Teams[teamName], senderID)}, nil

	case protocol.TargetAllInLobby:
		if lb == nil {
			return Resolution{}, ErrNoLobbyContext
		}
		return Resolution{Sessions: excluding(lb.Players, senderID)}, nil

	case protocol.TargetClient:
		if target.ClientID == senderID || !presence.Has(target.ClientID) {
			return Resolution{}, fmt.Errorf("%w: %q", ErrRecipientNotFound, target.ClientID)
		}
		return Resolution{Sessions: []string{target.ClientID}}, nil

	case protocol.TargetToLobbyDirectly:
		if lb == nil {
			return Resolution{}, ErrNoLobbyContext
		}
		return Resolution{Lobby: true}, nil

	default:
		return Resolution{}, fmt.Errorf("%w: %q", ErrUnknownTarget, target.Kind)
	}
}

func excluding(ids []string, senderID string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id != senderID {
			out = append(out, id)
		}
	}
	return out
}
