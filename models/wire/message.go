package wire

import "encoding/json"

// Tags of the closed message variant. One constant per record type
// that may appear on the wire in either direction.
const (
	KindName                  = "name"
	KindSessionStart          = "session_start"
	KindWaitingForOpponent    = "waiting_for_opponent"
	KindError                 = "error"
	KindSetupComplete         = "setup_complete"
	KindSetupUpdate           = "setup_update"
	KindGameplayStart         = "gameplay_start"
	KindShipPlacement         = "ship_placement"
	KindOpponentShipPlacement = "opponent_ship_placement"
	KindShot                  = "shot"
	KindReceiveShot           = "receive_shot"
	KindShotResult            = "shot_result"
	KindTurnChange            = "turn_change"
	KindGameOver              = "game_over"
	KindOpponentDisconnected  = "opponent_disconnected"
	KindChat                  = "chat"
	KindPing                  = "ping"
	KindPong                  = "pong"
)

// Shot outcomes reported by the targeted client. The server relays
// these verbatim; it never recomputes them.
const (
	ResultHit  = "hit"
	ResultMiss = "miss"
	ResultSunk = "sunk"
)

// Message is the closed tagged variant of the protocol. Decoding a
// frame yields exactly one of the structs below or an error, never an
// untyped map.
type Message interface {
	Kind() string
}

type Name struct {
	Name string `json:"name"`
}

type SessionStart struct {
	SessionId int64  `json:"session_id"`
	PlayerNum int    `json:"player_num"`
	Opponent  string `json:"opponent"`
}

type WaitingForOpponent struct{}

type ErrorMessage struct {
	Message string `json:"message"`
}

type SetupComplete struct {
	PlayerNum int `json:"player_num"`
}

type SetupUpdate struct {
	Player int  `json:"player"`
	Ready  bool `json:"ready"`
}

type GameplayStart struct {
	CurrentPlayer int `json:"current_player"`
}

// ShipPlacement carries an opaque ship description. Board geometry is
// client-side; the server relays the blob without inspecting it.
type ShipPlacement struct {
	PlayerNum int             `json:"player_num"`
	Ship      json.RawMessage `json:"ship"`
}

type OpponentShipPlacement struct {
	Ship json.RawMessage `json:"ship"`
}

type Shot struct {
	PlayerNum int `json:"player_num"`
	Row       int `json:"row"`
	Col       int `json:"col"`
}

type ReceiveShot struct {
	Row    int `json:"row"`
	Col    int `json:"col"`
	Player int `json:"player"`
}

type ShotResult struct {
	Player int    `json:"player"`
	Row    int    `json:"row"`
	Col    int    `json:"col"`
	Result string `json:"result"`
}

type TurnChange struct {
	CurrentPlayer int `json:"current_player"`
}

type GameOver struct {
	Winner int `json:"winner"`
}

type OpponentDisconnected struct{}

type Chat struct {
	Player string `json:"player"`
	Text   string `json:"text"`
}

type Ping struct{}

type Pong struct{}

func (*Name) Kind() string                  { return KindName }
func (*SessionStart) Kind() string          { return KindSessionStart }
func (*WaitingForOpponent) Kind() string    { return KindWaitingForOpponent }
func (*ErrorMessage) Kind() string          { return KindError }
func (*SetupComplete) Kind() string         { return KindSetupComplete }
func (*SetupUpdate) Kind() string           { return KindSetupUpdate }
func (*GameplayStart) Kind() string         { return KindGameplayStart }
func (*ShipPlacement) Kind() string         { return KindShipPlacement }
func (*OpponentShipPlacement) Kind() string { return KindOpponentShipPlacement }
func (*Shot) Kind() string                  { return KindShot }
func (*ReceiveShot) Kind() string           { return KindReceiveShot }
func (*ShotResult) Kind() string            { return KindShotResult }
func (*TurnChange) Kind() string            { return KindTurnChange }
func (*GameOver) Kind() string              { return KindGameOver }
func (*OpponentDisconnected) Kind() string  { return KindOpponentDisconnected }
func (*Chat) Kind() string                  { return KindChat }
func (*Ping) Kind() string                  { return KindPing }
func (*Pong) Kind() string                  { return KindPong }

func NewErrorMessage(message string) *ErrorMessage {
	return &ErrorMessage{Message: message}
}
