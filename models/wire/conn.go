package wire

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	cerr "github.com/seastrikehq/seastrike-backend/internal/error"
)

// Bound of the outbound queue. A peer that cannot drain this many
// records is treated as unresponsive and torn down; an unbounded
// relay queue would let one slow reader hold memory for the whole
// process.
const defaultSendQueueSize = 64

// Conn is the handle for one client socket: sequential reads of
// decoded messages, buffered concurrent-safe writes, and idempotent
// teardown. Receive must only be called from a single goroutine;
// Send and Close are safe from any.
type Conn struct {
	id     string
	tr     Transport
	logger *logrus.Logger

	out       chan []byte
	done      chan struct{}
	closeOnce sync.Once

	lastSeen atomic.Int64
}

func NewConn(tr Transport, logger *logrus.Logger) *Conn {
	c := &Conn{
		id:     uuid.NewString()[:8],
		tr:     tr,
		logger: logger,
		out:    make(chan []byte, defaultSendQueueSize),
		done:   make(chan struct{}),
	}
	c.lastSeen.Store(time.Now().UnixNano())

	go c.writeLoop()
	return c
}

func (c *Conn) Id() string {
	return c.id
}

func (c *Conn) RemoteAddr() string {
	return c.tr.RemoteAddr()
}

// Receive blocks until the next decoded message or end-of-stream. A
// malformed frame is reported as ErrMalformedMessage without closing
// the stream; any transport failure is normalized to ErrConnClosed.
func (c *Conn) Receive() (Message, error) {
	frame, err := c.tr.ReadRecord()
	if err != nil {
		return nil, cerr.ErrConnClosed
	}
	c.lastSeen.Store(time.Now().UnixNano())

	return Decode(frame)
}

// Send enqueues a message for ordered transmission. It never blocks
// the caller: a full queue means the peer stopped draining, so the
// connection is closed and ErrSendQueueFull returned.
func (c *Conn) Send(m Message) error {
	frame, err := Encode(m)
	if err != nil {
		return err
	}

	select {
	case <-c.done:
		return cerr.ErrConnClosed
	case c.out <- frame:
		return nil
	default:
		c.logger.Warnf("conn %s [%s]: send queue full, tearing down", c.id, c.RemoteAddr())
		c.Close()
		return cerr.ErrSendQueueFull
	}
}

// Close is idempotent and safe to call from any concurrent path.
func (c *Conn) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
		if err := c.tr.Close(); err != nil {
			c.logger.Debugf("conn %s: close: %v", c.id, err)
		}
	})
}

// Done is closed once the connection has been torn down.
func (c *Conn) Done() <-chan struct{} {
	return c.done
}

// LastSeen reports when the last inbound record arrived, for the
// liveness monitor.
func (c *Conn) LastSeen() time.Time {
	return time.Unix(0, c.lastSeen.Load())
}

// SetReadDeadline bounds the next Receive; used for the handshake.
func (c *Conn) SetReadDeadline(deadline time.Time) error {
	return c.tr.SetReadDeadline(deadline)
}

func (c *Conn) writeLoop() {
	for {
		select {
		case <-c.done:
			return
		case frame := <-c.out:
			if err := c.tr.WriteRecord(frame); err != nil {
				c.logger.Debugf("conn %s [%s]: write failed: %v", c.id, c.RemoteAddr(), err)
				c.Close()
				return
			}
		}
	}
}
