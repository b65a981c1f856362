package game

import (
	"sync"

	"github.com/sirupsen/logrus"

	cerr "github.com/seastrikehq/seastrike-backend/internal/error"
	"github.com/seastrikehq/seastrike-backend/models/wire"
)

// Registry is the process-wide player directory plus the matchmaking
// queue. One mutex covers both: registration, pop-and-pair and the
// disconnect cascade are single atomic steps, so no goroutine can
// observe a player removed from the directory but still matchmakable,
// and no third player can claim an opponent mid-pairing.
type Registry struct {
	logger   *logrus.Logger
	sessions *SessionManager

	mu      sync.Mutex
	players map[string]*Player
	queue   *matchQueue
}

func NewRegistry(sessions *SessionManager, logger *logrus.Logger) *Registry {
	initMapSize := 10

	return &Registry{
		logger:   logger,
		sessions: sessions,
		players:  make(map[string]*Player, initMapSize),
		queue:    newMatchQueue(),
	}
}

// Register performs the atomic check-and-insert of a display name.
// Names are case-sensitive and must be non-empty.
func (r *Registry) Register(name string, conn *wire.Conn) (*Player, error) {
	if name == "" {
		return nil, cerr.ErrEmptyName()
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, prs := r.players[name]; prs {
		return nil, cerr.ErrNameAlreadyTaken(name)
	}

	player := NewPlayer(name, conn)
	r.players[name] = player

	r.logger.Infof("player registered: %s (conn %s)", name, conn.Id())
	return player, nil
}

func (r *Registry) Lookup(name string) *Player {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.players[name]
}

// EnqueueOrPair matches the player against the queue head or parks it
// at the tail. A created session has the opponent (the earlier
// arrival) in slot 1 and the new arrival in slot 2, and both players
// are told about the pairing before this returns. A nil session means
// the player was queued.
func (r *Registry) EnqueueOrPair(p *Player) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	opponent := r.queue.pop()
	if opponent == nil {
		r.queue.push(p)
		r.logger.Infof("player %s queued, waiting for opponent", p.Name())
		return nil, nil
	}

	session, err := r.sessions.create(opponent, p)
	if err != nil {
		// pairing failed, the opponent goes back to waiting
		r.queue.push(opponent)
		return nil, err
	}

	opponent.setSession(session)
	p.setSession(session)
	session.start()
	return session, nil
}

// Unregister removes the player from the directory and, if queued,
// the queue, as one atomic unit; it then notifies the session so the
// opponent learns about the disconnect. Returns the session the
// player was in, if any.
func (r *Registry) Unregister(p *Player) *Session {
	r.mu.Lock()
	delete(r.players, p.Name())
	r.queue.remove(p)
	r.mu.Unlock()

	session := p.Session()
	if session != nil {
		session.playerLeft(p)
	}

	r.logger.Infof("player unregistered: %s", p.Name())
	return session
}

func (r *Registry) PlayerCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.players)
}

func (r *Registry) QueueLen() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.queue.len()
}
