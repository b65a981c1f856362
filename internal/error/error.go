package error

import (
	"errors"
	"fmt"
)

// Sentinels for the protocol error taxonomy. Callers branch on these
// with errors.Is; the constructor funcs below attach context.
var (
	ErrNameTaken        = errors.New("display name already taken")
	ErrMalformedMessage = errors.New("malformed message")
	ErrOutOfTurn        = errors.New("shot out of turn")
	ErrUnknownType      = errors.New("unknown message type")
	ErrConnClosed       = errors.New("connection closed")
	ErrSendQueueFull    = errors.New("outbound queue full")
)

func ErrNameAlreadyTaken(name string) error {
	return fmt.Errorf("%w: %s", ErrNameTaken, name)
}

func ErrMalformedFrame(cause error) error {
	return fmt.Errorf("%w: %v", ErrMalformedMessage, cause)
}

func ErrUnknownMessageType(msgType string) error {
	return fmt.Errorf("%w: %q", ErrUnknownType, msgType)
}

func ErrSessionNotFound(sessionId int64) error {
	return fmt.Errorf("session with this id does not exist, id: %d", sessionId)
}

func ErrPlayerNotInSession(name string) error {
	return fmt.Errorf("player has no active session: %s", name)
}

func ErrEmptyName() error {
	return fmt.Errorf("display name must not be empty")
}

func ErrNotYourTurn(slot int) error {
	return fmt.Errorf("%w: slot %d does not own the turn", ErrOutOfTurn, slot)
}

func ErrSamePlayerTwice(name string) error {
	return fmt.Errorf("session cannot be created with the same player twice: %s", name)
}
