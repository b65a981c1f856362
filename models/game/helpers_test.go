package game

import (
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/seastrikehq/seastrike-backend/models/wire"
)

// chanTransport backs a wire.Conn with channels so tests can observe
// every record a player would have received.
type chanTransport struct {
	in     chan []byte
	out    chan []byte
	closed chan struct{}
}

func newChanTransport() *chanTransport {
	return &chanTransport{
		in:     make(chan []byte, 16),
		out:    make(chan []byte, 256),
		closed: make(chan struct{}),
	}
}

func (c *chanTransport) ReadRecord() ([]byte, error) {
	select {
	case frame := <-c.in:
		return frame, nil
	case <-c.closed:
		return nil, io.EOF
	}
}

func (c *chanTransport) WriteRecord(frame []byte) error {
	select {
	case c.out <- append([]byte(nil), frame...):
		return nil
	case <-c.closed:
		return io.EOF
	}
}

func (c *chanTransport) SetReadDeadline(time.Time) error { return nil }

func (c *chanTransport) Close() error {
	select {
	case <-c.closed:
	default:
		close(c.closed)
	}
	return nil
}

func (c *chanTransport) RemoteAddr() string { return "test" }

// next returns the next message sent to this transport, failing the
// test after a timeout.
func (c *chanTransport) next(t *testing.T) wire.Message {
	t.Helper()
	select {
	case frame := <-c.out:
		m, err := wire.Decode(frame)
		require.NoError(t, err)
		return m
	case <-time.After(time.Second):
		t.Fatal("expected a message within 1s")
		return nil
	}
}

// expectNothing asserts no message arrives for a short window.
func (c *chanTransport) expectNothing(t *testing.T) {
	t.Helper()
	select {
	case frame := <-c.out:
		t.Fatalf("expected no message, got: %s", frame)
	case <-time.After(100 * time.Millisecond):
	}
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

type rig struct {
	registry *Registry
	sessions *SessionManager
}

func newRig() *rig {
	logger := quietLogger()
	sessions := NewSessionManager(logger)
	return &rig{
		registry: NewRegistry(sessions, logger),
		sessions: sessions,
	}
}

// join registers a player and runs matchmaking, returning the player
// and its observable transport.
func (r *rig) join(t *testing.T, name string) (*Player, *chanTransport) {
	t.Helper()

	tr := newChanTransport()
	conn := wire.NewConn(tr, quietLogger())

	player, err := r.registry.Register(name, conn)
	require.NoError(t, err)
	_, err = r.registry.EnqueueOrPair(player)
	require.NoError(t, err)
	return player, tr
}

// pair joins two players and drains their session_start records.
func (r *rig) pair(t *testing.T, nameOne, nameTwo string) (*Player, *chanTransport, *Player, *chanTransport, *Session) {
	t.Helper()

	playerOne, trOne := r.join(t, nameOne)
	playerTwo, trTwo := r.join(t, nameTwo)

	startOne, ok := trOne.next(t).(*wire.SessionStart)
	require.True(t, ok)
	require.Equal(t, 1, startOne.PlayerNum)
	require.Equal(t, nameTwo, startOne.Opponent)

	startTwo, ok := trTwo.next(t).(*wire.SessionStart)
	require.True(t, ok)
	require.Equal(t, 2, startTwo.PlayerNum)
	require.Equal(t, nameOne, startTwo.Opponent)

	session := playerOne.Session()
	require.NotNil(t, session)
	require.Equal(t, session, playerTwo.Session())
	return playerOne, trOne, playerTwo, trTwo, session
}

// toGameplay drives a fresh session through setup, draining the
// setup_update and gameplay_start broadcasts.
func (r *rig) toGameplay(t *testing.T, s *Session, playerOne *Player, trOne *chanTransport, playerTwo *Player, trTwo *chanTransport) {
	t.Helper()

	require.NoError(t, s.Handle(playerOne, &wire.SetupComplete{PlayerNum: 1}))
	require.NoError(t, s.Handle(playerTwo, &wire.SetupComplete{PlayerNum: 2}))

	for _, tr := range []*chanTransport{trOne, trTwo} {
		require.IsType(t, &wire.SetupUpdate{}, tr.next(t))
		require.IsType(t, &wire.SetupUpdate{}, tr.next(t))
		require.IsType(t, &wire.GameplayStart{}, tr.next(t))
	}
	require.Equal(t, StateGameplay, s.State())
	require.Equal(t, 1, s.CurrentTurn())
}
