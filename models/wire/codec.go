package wire

import (
	"encoding/json"
	"errors"
	"fmt"

	cerr "github.com/seastrikehq/seastrike-backend/internal/error"
)

// Signal is the minimal shape peeked out of every inbound frame to
// select the concrete message type. The name field is read alongside
// the tag because the historical handshake sends {"name": ...} with
// no tag at all; that one exception is normalized in Decode.
type Signal struct {
	Type string `json:"type"`
	Name string `json:"name"`
}

// Encode marshals a message into a single self-delimited frame: the
// payload object with the type tag spliced in front. The record
// separator (newline for TCP, frame boundary for websocket) is the
// transport's job.
func Encode(m Message) ([]byte, error) {
	payload, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("encoding %s message: %w", m.Kind(), err)
	}

	tag := fmt.Sprintf(`{"type":%q`, m.Kind())
	if len(payload) == 2 {
		// payload is an empty object
		return []byte(tag + "}"), nil
	}

	buf := make([]byte, 0, len(tag)+len(payload))
	buf = append(buf, tag...)
	buf = append(buf, ',')
	buf = append(buf, payload[1:]...)
	return buf, nil
}

// Decode turns one frame into a typed message. A frame that is not a
// JSON object yields ErrMalformedMessage; a well-formed frame with an
// unrecognized tag yields ErrUnknownType. With newline framing a bad
// frame does not break byte alignment, so callers skip and continue
// on ErrMalformedMessage rather than tearing the connection down.
func Decode(frame []byte) (Message, error) {
	var signal Signal
	if err := json.Unmarshal(frame, &signal); err != nil {
		return nil, cerr.ErrMalformedFrame(err)
	}

	if signal.Type == "" {
		// Handshake quirk: first client record may carry only a name.
		if signal.Name != "" {
			return &Name{Name: signal.Name}, nil
		}
		return nil, cerr.ErrMalformedFrame(errors.New("missing type field"))
	}

	var m Message
	switch signal.Type {
	case KindName:
		m = &Name{}
	case KindSessionStart:
		m = &SessionStart{}
	case KindWaitingForOpponent:
		m = &WaitingForOpponent{}
	case KindError:
		m = &ErrorMessage{}
	case KindSetupComplete:
		m = &SetupComplete{}
	case KindSetupUpdate:
		m = &SetupUpdate{}
	case KindGameplayStart:
		m = &GameplayStart{}
	case KindShipPlacement:
		m = &ShipPlacement{}
	case KindOpponentShipPlacement:
		m = &OpponentShipPlacement{}
	case KindShot:
		m = &Shot{}
	case KindReceiveShot:
		m = &ReceiveShot{}
	case KindShotResult:
		m = &ShotResult{}
	case KindTurnChange:
		m = &TurnChange{}
	case KindGameOver:
		m = &GameOver{}
	case KindOpponentDisconnected:
		m = &OpponentDisconnected{}
	case KindChat:
		m = &Chat{}
	case KindPing:
		m = &Ping{}
	case KindPong:
		m = &Pong{}
	default:
		return nil, cerr.ErrUnknownMessageType(signal.Type)
	}

	if err := json.Unmarshal(frame, m); err != nil {
		return nil, cerr.ErrMalformedFrame(err)
	}
	return m, nil
}
