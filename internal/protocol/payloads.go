package protocol

import "tankbots/internal/maps"

// Payload tag strings. These are part of the wire contract and must not change.
const (
	KindFirstContact = "FIRST_CONTACT"
	KindGameState    = "GAME_STATE"
	KindTextMessage  = "SIMPLE_TEXT_MESSAGE"
	KindMessageError = "MESSAGE_ERROR"
	KindGameConfig   = "GAME_CONFIG"
	KindStartGame    = "START_GAME"
	KindJoinedLobby  = "SUCCESSFULLY_JOINED_LOBBY"
)

// Payload is one variant of the message union. Decoded payloads are always
// pointers, so type switches should match on pointer types.
type Payload interface {
	Kind() string
}

// FirstContact is the handshake a session must send before anything else.
// TeamName may be omitted by spectators only.
type FirstContact struct {
	BotName   string `json:"botName"`
	LobbyID   string `json:"lobbyId"`
	MapName   string `json:"mapName,omitempty"`
	TeamName  string `json:"teamName,omitempty"`
	Spectator bool   `json:"spectator,omitempty"`
}

func (*FirstContact) Kind() string { return KindFirstContact }

type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// EntityState is the mutable per-entity state carried in a snapshot.
type EntityState struct {
	Position Vec3    `json:"position"`
	Rotation float64 `json:"rotation"`
}

// GameState is the authoritative per-tick snapshot of a lobby, keyed by
// server-side entity id.
type GameState struct {
	Tick        uint64                 `json:"tick"`
	Players     map[string]EntityState `json:"players"`
	Projectiles map[string]EntityState `json:"projectiles"`
}

func (*GameState) Kind() string { return KindGameState }

type TextMessage struct {
	Text string `json:"text"`
}

func (*TextMessage) Kind() string { return KindTextMessage }

// JoinedLobby acknowledges a successful handshake.
type JoinedLobby struct {
	Text string `json:"text"`
}

func (*JoinedLobby) Kind() string { return KindJoinedLobby }

// Error codes carried by MessageError payloads.
const (
	ErrorCodeInvalidJSON        = "INVALID_JSON"
	ErrorCodeInvalidHandshake   = "INVALID_HANDSHAKE"
	ErrorCodeLobbyAssembly      = "LOBBY_ASSEMBLY_FAILED"
	ErrorCodeTeamFull           = "TEAM_FULL"
	ErrorCodeUnknownTeam        = "UNKNOWN_TEAM"
	ErrorCodeUnsupportedMessage = "UNSUPPORTED_MESSAGE"
	ErrorCodeTargetingFailed    = "TARGETING_FAILED"
)

type MessageError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (*MessageError) Kind() string { return KindMessageError }

// GameConfig is sent to every lobby member when the game starts. ClientID
// tells the receiving client which snapshot entity is its own.
type GameConfig struct {
	ClientID string                     `json:"clientId"`
	TickRate uint32                     `json:"tickRate"`
	Teams    map[string]maps.TeamConfig `json:"teamConfigs"`
	Map      maps.Definition            `json:"mapDefinition"`
}

func (*GameConfig) Kind() string { return KindGameConfig }

// StartGame is a lobby-level command (TO_LOBBY_DIRECTLY).
type StartGame struct {
	FillEmptySlotsWithDummies bool `json:"fillEmptySlotsWithDummies"`
}

func (*StartGame) Kind() string { return KindStartGame }
