package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
)

var ErrUnsupportedPayload = errors.New("unsupported message type")

// Target kinds as they appear on the wire.
const (
	TargetTeam            = "TEAM"
	TargetServerOnly      = "SERVER_ONLY"
	TargetAllInLobby      = "ALL_IN_LOBBY"
	TargetClient          = "CLIENT"
	TargetToLobbyDirectly = "TO_LOBBY_DIRECTLY"
)

// TargetSpec names the abstract recipient of an envelope. ClientID is only
// meaningful for TargetClient.
type TargetSpec struct {
	Kind     string `json:"type"`
	ClientID string `json:"clientId,omitempty"`
}

// Envelope is the unit of exchange between server and clients. Envelopes are
// value types; the payload union is encoded with an explicit messageType tag.
type Envelope struct {
	Target  TargetSpec
	Payload Payload

	// Sender is the session id the server received the envelope from. Empty
	// on server-originated envelopes.
	Sender string

	TickSent     uint64
	TickReceived uint64
}

// NewSent builds an outbound envelope stamped with the tick it was sent on.
func NewSent(target TargetSpec, payload Payload, tick uint64) Envelope {
	return Envelope{Target: target, Payload: payload, TickSent: tick}
}

// WithReceived stamps an inbound envelope with the receiving tick and sender.
func (e Envelope) WithReceived(tick uint64, sender string) Envelope {
	e.TickReceived = tick
	e.Sender = sender
	return e
}

type envelopeJSON struct {
	Target       TargetSpec      `json:"target"`
	MessageType  string          `json:"messageType"`
	Message      json.RawMessage `json:"message"`
	Sender       string          `json:"sender,omitempty"`
	TickSent     uint64          `json:"tickSent"`
	TickReceived uint64          `json:"tickReceived"`
}

func (e Envelope) MarshalJSON() ([]byte, error) {
	if e.Payload == nil {
		return nil, fmt.Errorf("marshal envelope: %w", ErrUnsupportedPayload)
	}
	body, err := json.Marshal(e.Payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(envelopeJSON{
		Target:       e.Target,
		MessageType:  e.Payload.Kind(),
		Message:      body,
		Sender:       e.Sender,
		TickSent:     e.TickSent,
		TickReceived: e.TickReceived,
	})
}

func (e *Envelope) UnmarshalJSON(data []byte) error {
	var raw envelopeJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	payload, err := decodePayload(raw.MessageType, raw.Message)
	if err != nil {
		return err
	}
	e.Target = raw.Target
	e.Payload = payload
	e.Sender = raw.Sender
	e.TickSent = raw.TickSent
	e.TickReceived = raw.TickReceived
	return nil
}

func decodePayload(kind string, body json.RawMessage) (Payload, error) {
	var payload Payload
	switch kind {
	case KindFirstContact:
		payload = &FirstContact{}
	case KindGameState:
		payload = &GameState{}
	case KindTextMessage:
		payload = &TextMessage{}
	case KindMessageError:
		payload = &MessageError{}
	case KindGameConfig:
		payload = &GameConfig{}
	case KindStartGame:
		payload = &StartGame{}
	case KindJoinedLobby:
		payload = &JoinedLobby{}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedPayload, kind)
	}
	if len(body) > 0 {
		if err := json.Unmarshal(body, payload); err != nil {
			return nil, err
		}
	}
	return payload, nil
}
