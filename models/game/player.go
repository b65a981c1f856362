package game

import (
	"sync"

	"github.com/seastrikehq/seastrike-backend/models/wire"
)

// Player is one registered client: a unique case-sensitive display
// name bound to a live connection handle. A player is a member of at
// most one of {matchmaking queue, active session} at any instant; the
// Registry enforces that invariant.
type Player struct {
	name string
	conn *wire.Conn

	mu      sync.Mutex
	session *Session
}

func NewPlayer(name string, conn *wire.Conn) *Player {
	return &Player{name: name, conn: conn}
}

func (p *Player) Name() string {
	return p.name
}

func (p *Player) Conn() *wire.Conn {
	return p.conn
}

// Session returns the player's current session, nil while queued or
// idle.
func (p *Player) Session() *Session {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.session
}

func (p *Player) setSession(s *Session) {
	p.mu.Lock()
	p.session = s
	p.mu.Unlock()
}
