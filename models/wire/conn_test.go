package wire

import (
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cerr "github.com/seastrikehq/seastrike-backend/internal/error"
)

// pipeTransport is an in-memory Transport for exercising the Conn
// without sockets.
type pipeTransport struct {
	in     chan []byte
	out    chan []byte
	closed chan struct{}
}

func newPipeTransport() *pipeTransport {
	return &pipeTransport{
		in:     make(chan []byte, 16),
		out:    make(chan []byte, 256),
		closed: make(chan struct{}),
	}
}

func (p *pipeTransport) ReadRecord() ([]byte, error) {
	select {
	case frame := <-p.in:
		return frame, nil
	case <-p.closed:
		return nil, io.EOF
	}
}

func (p *pipeTransport) WriteRecord(frame []byte) error {
	select {
	case p.out <- append([]byte(nil), frame...):
		return nil
	case <-p.closed:
		return io.EOF
	}
}

func (p *pipeTransport) SetReadDeadline(time.Time) error { return nil }

func (p *pipeTransport) Close() error {
	select {
	case <-p.closed:
	default:
		close(p.closed)
	}
	return nil
}

func (p *pipeTransport) RemoteAddr() string { return "pipe" }

func (p *pipeTransport) nextFrame(t *testing.T) Message {
	t.Helper()
	select {
	case frame := <-p.out:
		m, err := Decode(frame)
		require.NoError(t, err)
		return m
	case <-time.After(time.Second):
		t.Fatal("no frame written within 1s")
		return nil
	}
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func TestConnSendPreservesOrder(t *testing.T) {
	tr := newPipeTransport()
	conn := NewConn(tr, quietLogger())
	defer conn.Close()

	for i := 0; i < 10; i++ {
		require.NoError(t, conn.Send(&Shot{PlayerNum: 1, Row: i, Col: i}))
	}

	for i := 0; i < 10; i++ {
		m := tr.nextFrame(t)
		shot, ok := m.(*Shot)
		require.True(t, ok)
		assert.Equal(t, i, shot.Row)
	}
}

func TestConnReceiveSkipsNothingOnMalformed(t *testing.T) {
	tr := newPipeTransport()
	conn := NewConn(tr, quietLogger())
	defer conn.Close()

	tr.in <- []byte("garbage")
	tr.in <- []byte(`{"type":"ping"}`)

	_, err := conn.Receive()
	assert.ErrorIs(t, err, cerr.ErrMalformedMessage)

	// the stream stays aligned, the next record decodes fine
	m, err := conn.Receive()
	require.NoError(t, err)
	assert.Equal(t, KindPing, m.Kind())
}

func TestConnReceiveEndOfStream(t *testing.T) {
	tr := newPipeTransport()
	conn := NewConn(tr, quietLogger())

	_ = tr.Close()
	_, err := conn.Receive()
	assert.ErrorIs(t, err, cerr.ErrConnClosed)
}

func TestConnSendQueueOverflowTearsDown(t *testing.T) {
	tr := newPipeTransport()
	conn := NewConn(tr, quietLogger())

	// stall the writer by filling the transport first
	for i := 0; i < cap(tr.out); i++ {
		tr.out <- []byte("x")
	}

	var overflowed bool
	for i := 0; i < defaultSendQueueSize+2; i++ {
		if err := conn.Send(&Ping{}); err != nil {
			assert.ErrorIs(t, err, cerr.ErrSendQueueFull)
			overflowed = true
			break
		}
	}
	require.True(t, overflowed, "expected the bounded queue to overflow")

	select {
	case <-conn.Done():
	case <-time.After(time.Second):
		t.Fatal("overflow did not close the connection")
	}

	assert.ErrorIs(t, conn.Send(&Ping{}), cerr.ErrConnClosed)
}

func TestConnCloseIdempotent(t *testing.T) {
	tr := newPipeTransport()
	conn := NewConn(tr, quietLogger())

	conn.Close()
	conn.Close()

	select {
	case <-conn.Done():
	default:
		t.Fatal("done channel not closed")
	}
}
