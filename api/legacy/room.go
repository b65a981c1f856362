package legacy

import (
	"bufio"
	"context"
	"math/rand"
	"net"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Room serves the legacy interface on its own listener: exactly two
// seats, no queue, turn arbitration only. Shot outcome is the
// reference placeholder, a coin flip, since legacy clients never
// report results back.
type Room struct {
	id     string
	logger *logrus.Logger

	mu      sync.Mutex
	seats   [2]net.Conn
	ready   [2]bool
	started bool
	current int
	rng     *rand.Rand
}

func NewRoom(logger *logrus.Logger) *Room {
	return &Room{
		id:     uuid.NewString()[:6],
		logger: logger,
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Serve accepts legacy clients until the context is canceled. A third
// connection is refused with ERROR|room_full.
func (r *Room) Serve(ctx context.Context, listener net.Listener) {
	go func() {
		<-ctx.Done()
		_ = listener.Close()
	}()

	r.logger.Infof("legacy room %s listening on %s", r.id, listener.Addr().String())
	for {
		conn, err := listener.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			r.logger.Warnf("legacy room %s: accept failed: %v", r.id, err)
			continue
		}

		seat := r.takeSeat(conn)
		if seat == 0 {
			r.writeLine(conn, Command{Verb: VerbError, Args: []string{"room_full"}})
			_ = conn.Close()
			continue
		}

		r.writeLine(conn, Command{Verb: VerbPlayer, Args: []string{strconv.Itoa(seat)}})
		if seat == 1 {
			r.writeLine(conn, Command{Verb: VerbWait})
		}
		go r.handleSeat(seat, conn)
	}
}

func (r *Room) takeSeat(conn net.Conn) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.seats {
		if r.seats[i] == nil {
			r.seats[i] = conn
			return i + 1
		}
	}
	return 0
}

func (r *Room) handleSeat(seat int, conn net.Conn) {
	defer r.vacateSeat(seat, conn)

	scanner := bufio.NewScanner(conn)
	for scanner.Scan() {
		cmd, err := Parse(scanner.Text())
		if err != nil {
			r.sendTo(seat, Command{Verb: VerbError, Args: []string{"malformed"}})
			continue
		}

		switch cmd.Verb {
		case VerbShips:
			r.markReady(seat)
		case VerbFire:
			r.fire(seat, cmd)
		case VerbPing:
			r.sendTo(seat, Command{Verb: VerbPong})
		case VerbQuit:
			return
		default:
			r.sendTo(seat, Command{Verb: VerbError, Args: []string{"unknown_command"}})
		}
	}
}

// markReady acknowledges a placement and starts the game once both
// seats reported their ships. Seat 1 always opens.
func (r *Room) markReady(seat int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.ready[seat-1] = true
	r.sendToLocked(seat, Command{Verb: VerbYourPlacement})

	if r.ready[0] && r.ready[1] && !r.started {
		r.started = true
		r.current = 1
		r.broadcastLocked(Command{Verb: VerbStart, Args: []string{"1"}})
	} else if !r.started {
		r.sendToLocked(seat, Command{Verb: VerbWait})
	}
}

// fire arbitrates the turn and rolls the placeholder outcome. Same
// turn rule as the canonical protocol: a miss hands the turn over, a
// hit keeps it.
func (r *Room) fire(seat int, cmd Command) {
	row, col, err := FireCoords(cmd)
	if err != nil {
		r.sendTo(seat, Command{Verb: VerbError, Args: []string{"malformed"}})
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.started {
		r.sendToLocked(seat, Command{Verb: VerbError, Args: []string{"not_started"}})
		return
	}
	if seat != r.current {
		r.sendToLocked(seat, Command{Verb: VerbError, Args: []string{"not_your_turn"}})
		return
	}

	result := "miss"
	if r.rng.Intn(2) == 1 {
		result = "hit"
	}

	r.broadcastLocked(Command{Verb: VerbShot, Args: []string{
		strconv.Itoa(seat), strconv.Itoa(row), strconv.Itoa(col), result,
	}})

	if result == "miss" {
		r.current = 3 - seat
	}
}

// vacateSeat ends the game for both players: the peer gets QUIT with
// the leaver's seat number.
func (r *Room) vacateSeat(seat int, conn net.Conn) {
	_ = conn.Close()

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.seats[seat-1] != conn {
		return
	}
	r.seats[seat-1] = nil
	r.ready[seat-1] = false
	r.started = false

	r.broadcastLocked(Command{Verb: VerbQuit, Args: []string{strconv.Itoa(seat)}})
	r.logger.Infof("legacy room %s: seat %d left", r.id, seat)
}

func (r *Room) sendTo(seat int, cmd Command) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sendToLocked(seat, cmd)
}

func (r *Room) sendToLocked(seat int, cmd Command) {
	conn := r.seats[seat-1]
	if conn == nil {
		return
	}
	r.writeLine(conn, cmd)
}

func (r *Room) broadcastLocked(cmd Command) {
	for seat := 1; seat <= 2; seat++ {
		r.sendToLocked(seat, cmd)
	}
}

func (r *Room) writeLine(conn net.Conn, cmd Command) {
	if _, err := conn.Write([]byte(Format(cmd) + "\n")); err != nil {
		r.logger.Debugf("legacy room %s: write failed: %v", r.id, err)
	}
}
