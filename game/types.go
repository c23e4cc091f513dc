package game

import "encoding/json"

// MaxPlayers is the default room capacity.
const MaxPlayers = 4

// Events exchanged with clients.
const (
	EventGameFull      = "game-full"
	EventNewRound      = "new-round"
	EventUpdatePlayers = "update-players"
	EventDrawing       = "drawing"
	EventClearCanvas   = "clear-canvas"
	EventChatMessage   = "chat message"
	EventGameWon       = "game-won"

	// EventRateLimited goes only to a sender whose chat message was dropped.
	EventRateLimited = "rate-limited"
)

// Commands forwarded by gateways to the room owner.
const (
	CommandJoin  = "join"
	CommandLeave = "leave"
	CommandChat  = "chat"
)

// Lifecycle entries written to the audit log.
const (
	AuditPlayerJoined = "player-joined"
	AuditPlayerLeft   = "player-left"
	AuditRoundStarted = "round-started"
	AuditRoundWon     = "round-won"
)

type Player struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

type ChatMessage struct {
	Username string `json:"username"`
	Text     string `json:"text"`
}

type NewRound struct {
	Keyword       string `json:"keyword"`
	CurrentDrawer string `json:"currentDrawer"`
}

type Snapshot struct {
	Players       []Player `json:"players"`
	CurrentDrawer string   `json:"currentDrawer"`
	Keyword       string   `json:"keyword"`
}

type GameWon struct {
	Winner  string `json:"winner"`
	Keyword string `json:"keyword"`
}

// Frame is the JSON envelope of every websocket message, in both directions.
type Frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// State is the round state of the room. Keyword is meaningful only when HasKeyword is set.
type State struct {
	Keyword     string
	HasKeyword  bool
	DrawerIndex int
	Winner      string
	Resolved    bool
}

type KeywordSource interface {
	Next() string
}

// AuditRecorder receives chat messages and lifecycle events. Implementations
// must not block the caller.
type AuditRecorder interface {
	RecordChat(username, text string)
	RecordEvent(event string)
}

// Connection is one client transport, usually a websocket.
type Connection interface {
	Close(reason string)
	Write(data []byte) error
	Read() ([]byte, error)
	Ping() error
}
