package wire

import (
	"bufio"
	"net"
	"time"

	"github.com/gorilla/websocket"
)

// A frame longer than this is treated as a client bug rather than a
// message worth buffering.
const maxRecordSize = 16 * 1024

// Transport frames an ordered byte stream into discrete records and
// back. Implementations are not safe for concurrent use; the Conn
// above them serializes access.
type Transport interface {
	// ReadRecord blocks until a full frame is available or the stream
	// ends. The returned slice is only valid until the next call.
	ReadRecord() ([]byte, error)
	WriteRecord(frame []byte) error
	SetReadDeadline(t time.Time) error
	Close() error
	RemoteAddr() string
}

// tcpTransport speaks the canonical newline-delimited protocol over a
// raw TCP connection.
type tcpTransport struct {
	conn    net.Conn
	scanner *bufio.Scanner
}

func NewTCPTransport(conn net.Conn) Transport {
	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 4096), maxRecordSize)

	return &tcpTransport{conn: conn, scanner: scanner}
}

func (t *tcpTransport) ReadRecord() ([]byte, error) {
	if !t.scanner.Scan() {
		if err := t.scanner.Err(); err != nil {
			return nil, err
		}
		// half-close surfaces as end-of-stream
		return nil, net.ErrClosed
	}
	return t.scanner.Bytes(), nil
}

func (t *tcpTransport) WriteRecord(frame []byte) error {
	buf := make([]byte, 0, len(frame)+1)
	buf = append(buf, frame...)
	buf = append(buf, '\n')

	_, err := t.conn.Write(buf)
	return err
}

func (t *tcpTransport) SetReadDeadline(deadline time.Time) error {
	return t.conn.SetReadDeadline(deadline)
}

func (t *tcpTransport) Close() error {
	return t.conn.Close()
}

func (t *tcpTransport) RemoteAddr() string {
	return t.conn.RemoteAddr().String()
}

// wsTransport carries one record per websocket text frame so browser
// clients speak the same protocol without newline framing.
type wsTransport struct {
	conn *websocket.Conn
}

func NewWSTransport(conn *websocket.Conn) Transport {
	conn.SetReadLimit(maxRecordSize)
	return &wsTransport{conn: conn}
}

func (t *wsTransport) ReadRecord() ([]byte, error) {
	for {
		msgType, payload, err := t.conn.ReadMessage()
		if err != nil {
			return nil, err
		}
		if msgType != websocket.TextMessage {
			continue
		}
		return payload, nil
	}
}

func (t *wsTransport) WriteRecord(frame []byte) error {
	return t.conn.WriteMessage(websocket.TextMessage, frame)
}

func (t *wsTransport) SetReadDeadline(deadline time.Time) error {
	return t.conn.SetReadDeadline(deadline)
}

func (t *wsTransport) Close() error {
	return t.conn.Close()
}

func (t *wsTransport) RemoteAddr() string {
	return t.conn.RemoteAddr().String()
}
