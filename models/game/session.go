package game

import (
	"sync"

	"github.com/sirupsen/logrus"

	cerr "github.com/seastrikehq/seastrike-backend/internal/error"
	"github.com/seastrikehq/seastrike-backend/models/wire"
)

type State uint8

const (
	StateSetup State = iota
	StateGameplay
	StateGameOver
)

func (s State) String() string {
	switch s {
	case StateSetup:
		return "SETUP"
	case StateGameplay:
		return "GAMEPLAY"
	case StateGameOver:
		return "GAME_OVER"
	}
	return "UNKNOWN"
}

// Session owns exactly two players and arbitrates the game between
// them: setup gating, turn ownership, and message relay. It never
// inspects board geometry; hit/miss/sunk is whatever the targeted
// client reports. Both players' connection goroutines call in, so
// every mutation happens under the session mutex.
type Session struct {
	id      int64
	manager *SessionManager
	logger  *logrus.Logger

	mu        sync.Mutex
	players   [2]*Player
	setupDone [2]bool
	state     State
	current   int
}

func newSession(id int64, slotOne, slotTwo *Player, manager *SessionManager, logger *logrus.Logger) *Session {
	return &Session{
		id:      id,
		manager: manager,
		logger:  logger,
		players: [2]*Player{slotOne, slotTwo},
		state:   StateSetup,
	}
}

func (s *Session) Id() int64 {
	return s.id
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// CurrentTurn reports the slot owning the turn, 0 before gameplay.
func (s *Session) CurrentTurn() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// start announces the pairing to both players. Each learns the
// session id, its own slot number and the opponent's name before any
// gameplay message.
func (s *Session) start() {
	s.sendTo(1, &wire.SessionStart{SessionId: s.id, PlayerNum: 1, Opponent: s.players[1].Name()})
	s.sendTo(2, &wire.SessionStart{SessionId: s.id, PlayerNum: 2, Opponent: s.players[0].Name()})
}

// Handle dispatches one inbound message from p through the state
// machine. The returned error is advisory (logged by the caller);
// protocol violations that only affect the sender are answered on the
// sender's connection and do not fault it.
func (s *Session) Handle(p *Player, m wire.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	slot := s.slotOf(p)
	if slot == 0 {
		return cerr.ErrPlayerNotInSession(p.Name())
	}

	switch msg := m.(type) {
	case *wire.ShipPlacement:
		return s.handleShipPlacement(slot, msg)
	case *wire.SetupComplete:
		return s.handleSetupComplete(slot)
	case *wire.Shot:
		return s.handleShot(slot, msg)
	case *wire.ShotResult:
		return s.handleShotResult(slot, msg)
	case *wire.GameOver:
		return s.handleGameOver(slot, msg)
	case *wire.Chat:
		// chat never touches the state machine
		s.broadcast(&wire.Chat{Player: p.Name(), Text: msg.Text})
		return nil
	default:
		return cerr.ErrUnknownMessageType(m.Kind())
	}
}

// handleShipPlacement relays a placement verbatim to the other slot.
// No legality checking happens here; board geometry is client-side.
func (s *Session) handleShipPlacement(slot int, m *wire.ShipPlacement) error {
	if s.state != StateSetup {
		s.logger.Debugf("session %d: dropping ship_placement from slot %d in %s", s.id, slot, s.state)
		return nil
	}

	s.sendTo(otherSlot(slot), &wire.OpponentShipPlacement{Ship: m.Ship})
	return nil
}

func (s *Session) handleSetupComplete(slot int) error {
	if s.state == StateGameOver {
		return nil
	}

	s.setupDone[slot-1] = true
	s.broadcast(&wire.SetupUpdate{Player: slot, Ready: true})

	// The transition fires exactly once: a repeated setup_complete
	// finds the state already at GAMEPLAY and only re-broadcast the
	// update above.
	if s.state == StateSetup && s.setupDone[0] && s.setupDone[1] {
		s.state = StateGameplay
		s.current = 1
		s.broadcast(&wire.GameplayStart{CurrentPlayer: s.current})
		s.logger.Infof("session %d: gameplay started, slot 1 to move", s.id)
	}
	return nil
}

// handleShot enforces the turn-ownership rule. An out-of-turn shot is
// answered with an error on the sender's connection and never reaches
// the opponent or mutates state.
func (s *Session) handleShot(slot int, m *wire.Shot) error {
	if s.state != StateGameplay {
		return nil
	}

	if slot != s.current {
		s.sendTo(slot, wire.NewErrorMessage("not your turn"))
		return cerr.ErrNotYourTurn(slot)
	}

	s.sendTo(otherSlot(slot), &wire.ReceiveShot{Row: m.Row, Col: m.Col, Player: slot})
	return nil
}

// handleShotResult relays the targeted client's verdict to both slots
// and settles the turn: a miss hands the turn over, a hit or sunk
// keeps it with the shooter so they fire again.
func (s *Session) handleShotResult(slot int, m *wire.ShotResult) error {
	if s.state != StateGameplay {
		return nil
	}

	s.broadcast(&wire.ShotResult{Player: m.Player, Row: m.Row, Col: m.Col, Result: m.Result})

	if m.Result == wire.ResultMiss {
		s.current = otherSlot(s.current)
		s.broadcast(&wire.TurnChange{CurrentPlayer: s.current})
	}
	return nil
}

func (s *Session) handleGameOver(slot int, m *wire.GameOver) error {
	if s.state != StateGameplay {
		return nil
	}

	s.state = StateGameOver
	s.broadcast(&wire.GameOver{Winner: m.Winner})
	s.manager.remove(s.id)
	s.manager.notifyTerminal(s.id, ReasonGameOver)
	s.logger.Infof("session %d: game over, winner slot %d", s.id, m.Winner)
	return nil
}

// playerLeft turns the session terminal on a disconnect. The
// surviving player is told exactly once; a second disconnect finds
// the state already terminal and does nothing.
func (s *Session) playerLeft(p *Player) {
	s.mu.Lock()
	defer s.mu.Unlock()

	slot := s.slotOf(p)
	if slot == 0 || s.state == StateGameOver {
		return
	}

	s.state = StateGameOver
	s.sendTo(otherSlot(slot), &wire.OpponentDisconnected{})
	s.manager.remove(s.id)
	s.manager.notifyTerminal(s.id, ReasonDisconnect)
	s.logger.Infof("session %d: slot %d (%s) disconnected", s.id, slot, p.Name())
}

// shutdown is the process-exit path: mark terminal and close both
// handles.
func (s *Session) shutdown() {
	s.mu.Lock()
	s.state = StateGameOver
	players := s.players
	s.mu.Unlock()

	for _, p := range players {
		p.Conn().Close()
	}
}

func (s *Session) slotOf(p *Player) int {
	switch p {
	case s.players[0]:
		return 1
	case s.players[1]:
		return 2
	}
	return 0
}

func otherSlot(slot int) int {
	return 3 - slot
}

// sendTo and broadcast ignore send errors: a failed send closes the
// handle, and the owning read loop escalates that to the disconnect
// cascade.
func (s *Session) sendTo(slot int, m wire.Message) {
	_ = s.players[slot-1].Conn().Send(m)
}

func (s *Session) broadcast(m wire.Message) {
	s.sendTo(1, m)
	s.sendTo(2, m)
}
