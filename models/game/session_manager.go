package game

import (
	"sync"

	"github.com/sirupsen/logrus"

	cerr "github.com/seastrikehq/seastrike-backend/internal/error"
)

// Why a session went terminal.
const (
	ReasonGameOver   = "game_over"
	ReasonDisconnect = "disconnect"
)

// Termination is emitted on TerminationChan whenever a session turns
// terminal, for bookkeeping outside the game core (analytics).
type Termination struct {
	SessionId int64
	Reason    string
}

// SessionManager maps session ids to live sessions. Ids increase
// monotonically and are unique for the process lifetime. A session is
// removed the moment it turns terminal; late lookups fail with
// ErrSessionNotFound.
type SessionManager struct {
	logger *logrus.Logger

	// buffered; notifications are dropped if nobody drains it
	TerminationChan chan Termination

	mu       sync.RWMutex
	sessions map[int64]*Session
	nextId   int64
}

func NewSessionManager(logger *logrus.Logger) *SessionManager {
	initMapSize := 10

	return &SessionManager{
		logger:          logger,
		TerminationChan: make(chan Termination, 16),
		sessions:        make(map[int64]*Session, initMapSize),
	}
}

// notifyTerminal never blocks: a session teardown must not wait on
// the analytics consumer.
func (sm *SessionManager) notifyTerminal(sessionId int64, reason string) {
	select {
	case sm.TerminationChan <- Termination{SessionId: sessionId, Reason: reason}:
	default:
	}
}

// create pairs two distinct players into a new session in SETUP
// state. Callers (the Registry) hold the matchmaking lock so no third
// player can observe either slot in between.
func (sm *SessionManager) create(slotOne, slotTwo *Player) (*Session, error) {
	if slotOne == slotTwo || slotOne.Name() == slotTwo.Name() {
		return nil, cerr.ErrSamePlayerTwice(slotOne.Name())
	}

	sm.mu.Lock()
	sm.nextId++
	session := newSession(sm.nextId, slotOne, slotTwo, sm, sm.logger)
	sm.sessions[session.Id()] = session
	sm.mu.Unlock()

	sm.logger.Infof("session %d created: %s vs %s", session.Id(), slotOne.Name(), slotTwo.Name())
	return session, nil
}

func (sm *SessionManager) Get(sessionId int64) (*Session, error) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	session, prs := sm.sessions[sessionId]
	if !prs {
		return nil, cerr.ErrSessionNotFound(sessionId)
	}
	return session, nil
}

func (sm *SessionManager) Count() int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return len(sm.sessions)
}

func (sm *SessionManager) remove(sessionId int64) {
	sm.mu.Lock()
	delete(sm.sessions, sessionId)
	sm.mu.Unlock()
	sm.logger.Infof("session %d removed", sessionId)
}

// TerminateAll drives every live session to GAME_OVER and closes its
// handles. Called once on server shutdown.
func (sm *SessionManager) TerminateAll() {
	sm.mu.Lock()
	live := make([]*Session, 0, len(sm.sessions))
	for _, session := range sm.sessions {
		live = append(live, session)
	}
	sm.sessions = make(map[int64]*Session)
	sm.mu.Unlock()

	for _, session := range live {
		session.shutdown()
	}
}
