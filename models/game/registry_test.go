package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cerr "github.com/seastrikehq/seastrike-backend/internal/error"
	"github.com/seastrikehq/seastrike-backend/models/wire"
)

func TestRegisterRejectsEmptyName(t *testing.T) {
	r := newRig()

	conn := wire.NewConn(newChanTransport(), quietLogger())
	_, err := r.registry.Register("", conn)
	assert.Error(t, err)
	assert.Equal(t, 0, r.registry.PlayerCount())
}

func TestRegisterRejectsDuplicateName(t *testing.T) {
	r := newRig()

	first, err := r.registry.Register("ada", wire.NewConn(newChanTransport(), quietLogger()))
	require.NoError(t, err)

	_, err = r.registry.Register("ada", wire.NewConn(newChanTransport(), quietLogger()))
	assert.ErrorIs(t, err, cerr.ErrNameTaken)

	// the holder is unaffected
	assert.Equal(t, first, r.registry.Lookup("ada"))
	assert.Equal(t, 1, r.registry.PlayerCount())
}

func TestNameFreeAfterUnregister(t *testing.T) {
	r := newRig()

	first, err := r.registry.Register("ada", wire.NewConn(newChanTransport(), quietLogger()))
	require.NoError(t, err)
	r.registry.Unregister(first)

	second, err := r.registry.Register("ada", wire.NewConn(newChanTransport(), quietLogger()))
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
}

func TestFirstPlayerWaits(t *testing.T) {
	r := newRig()

	_, tr := r.join(t, "ada")
	assert.Equal(t, 1, r.registry.QueueLen())
	assert.Equal(t, 0, r.sessions.Count())
	tr.expectNothing(t)
}

func TestPairingIsFirstComeFirstServed(t *testing.T) {
	r := newRig()

	// ada arrived first, so she claims slot 1 of the first session
	playerOne, trOne, _, _, _ := r.pair(t, "ada", "bob")
	assert.Equal(t, 0, r.registry.QueueLen())
	assert.Equal(t, 1, r.sessions.Count())
	assert.Equal(t, 1, playerOne.Session().slotOf(playerOne))

	// a third arrival starts a fresh queue, not a third seat
	_, trThree := r.join(t, "cleo")
	assert.Equal(t, 1, r.registry.QueueLen())
	assert.Equal(t, 1, r.sessions.Count())
	trThree.expectNothing(t)
	trOne.expectNothing(t)
}

func TestQueuedPlayerDisconnectLeavesQueue(t *testing.T) {
	r := newRig()

	queued, _ := r.join(t, "ada")
	require.Equal(t, 1, r.registry.QueueLen())

	r.registry.Unregister(queued)
	assert.Equal(t, 0, r.registry.QueueLen())
	assert.Equal(t, 0, r.registry.PlayerCount())

	// the next arrival must not be paired with the departed player
	_, tr := r.join(t, "bob")
	assert.Equal(t, 1, r.registry.QueueLen())
	assert.Equal(t, 0, r.sessions.Count())
	tr.expectNothing(t)
}

func TestPairedPlayerNeverStaysQueued(t *testing.T) {
	r := newRig()

	playerOne, _, playerTwo, _, s := r.pair(t, "ada", "bob")
	assert.Equal(t, 0, r.registry.QueueLen())
	require.NotNil(t, s)
	assert.Equal(t, s, playerOne.Session())
	assert.Equal(t, s, playerTwo.Session())
}

func TestUnregisterWithoutSession(t *testing.T) {
	r := newRig()

	p, err := r.registry.Register("ada", wire.NewConn(newChanTransport(), quietLogger()))
	require.NoError(t, err)

	assert.Nil(t, r.registry.Unregister(p))
}
