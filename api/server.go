package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"github.com/sqlc-dev/pqtype"

	"github.com/seastrikehq/seastrike-backend/db/sqlc"
	cerr "github.com/seastrikehq/seastrike-backend/internal/error"
	"github.com/seastrikehq/seastrike-backend/models/game"
	"github.com/seastrikehq/seastrike-backend/models/wire"
)

const (
	StageProd = "prod"
	StageDev  = "dev"
)

const (
	handshakeTimeout time.Duration = time.Second * 10

	// A peer silent for two intervals is treated as gone.
	defaultHeartbeatInterval time.Duration = time.Second * 45
)

var (
	defaultPort = "8000"

	upgrader = websocket.Upgrader{
		HandshakeTimeout: time.Second * 5,

		// probably more than enough for single line-oriented records
		ReadBufferSize:  2048,
		WriteBufferSize: 2048,
		CheckOrigin:     func(r *http.Request) bool { return true },
	}
)

// Server is the orchestrator: it accepts connections over raw TCP and
// websocket, drives the handshake, and pumps every inbound message
// into the owning session. Registries and sessions carry their own
// locks; the server itself holds no mutable game state.
type Server struct {
	port              string
	stage             string
	logger            *logrus.Logger
	registry          *game.Registry
	sessions          *game.SessionManager
	querier           sqlc.Querier
	ipnet             pqtype.Inet
	heartbeatInterval time.Duration
}

type Option func(*Server) error

func NewServer(registry *game.Registry, sessions *game.SessionManager, optFuncs ...Option) *Server {
	server := Server{
		registry:          registry,
		sessions:          sessions,
		heartbeatInterval: defaultHeartbeatInterval,
	}
	for _, opt := range optFuncs {
		if err := opt(&server); err != nil {
			panic(err)
		}
	}
	if server.port == "" {
		server.port = defaultPort
	}
	if server.logger == nil {
		server.logger = logrus.New()
	}
	if server.querier != nil {
		server.ipnet = serverIpNet()
	}

	return &server
}

func WithPort(port string) Option {
	return func(s *Server) error {
		s.port = port
		return nil
	}
}

func WithStage(stage string) Option {
	return func(s *Server) error {
		if stage != StageProd && stage != StageDev {
			return fmt.Errorf("invalid type of development stage: %s", stage)
		}
		s.stage = stage
		return nil
	}
}

func WithLogger(logger *logrus.Logger) Option {
	return func(s *Server) error {
		s.logger = logger
		return nil
	}
}

// WithQuerier enables the analytics counters. Without it the server
// runs stateless.
func WithQuerier(q sqlc.Querier) Option {
	return func(s *Server) error {
		s.querier = q
		return nil
	}
}

func WithHeartbeatInterval(interval time.Duration) Option {
	return func(s *Server) error {
		if interval <= 0 {
			return fmt.Errorf("heartbeat interval must be positive: %v", interval)
		}
		s.heartbeatInterval = interval
		return nil
	}
}

func (s *Server) Port() string {
	return s.port
}

// HandleWs upgrades an HTTP request and runs the same protocol as the
// TCP front end, one record per text frame.
func (s *Server) HandleWs(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warnln(err)
		http.Error(w, "could not open websocket connection", http.StatusBadRequest)
		return
	}

	s.logger.Infof("ws connection established\tRemote Addr: %s", conn.RemoteAddr().String())
	go s.handleConn(wire.NewConn(wire.NewWSTransport(conn), s.logger))
}

// ServeTCP accepts raw TCP clients until the context is canceled.
func (s *Server) ServeTCP(ctx context.Context, listener net.Listener) {
	go func() {
		<-ctx.Done()
		_ = listener.Close()
	}()

	s.logger.Infof("waiting for tcp connections on %s", listener.Addr().String())
	for {
		conn, err := listener.Accept()
		if err != nil {
			if ctx.Err() != nil {
				s.logger.Infoln("tcp listener closed")
				return
			}
			s.logger.Warnf("failed to accept connection: %v", err)
			continue
		}

		s.logger.Infof("tcp connection established\tRemote Addr: %s", conn.RemoteAddr().String())
		go s.handleConn(wire.NewConn(wire.NewTCPTransport(conn), s.logger))
	}
}

// Shutdown marks every session terminal and closes its handles. The
// listeners are closed by their serving contexts.
func (s *Server) Shutdown() {
	s.sessions.TerminateAll()
	s.logger.Infoln("server shut down")
}

// ManageGameTermination drains session terminations into the
// analytics counters. Run once, in its own goroutine.
func (s *Server) ManageGameTermination(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case term := <-s.sessions.TerminationChan:
			if term.Reason == game.ReasonGameOver {
				s.countGameCompleted()
			}
		}
	}
}

// handleConn owns one connection for its whole life: handshake,
// matchmaking, dispatch loop, disconnect cascade.
func (s *Server) handleConn(conn *wire.Conn) {
	defer func() {
		conn.Close()
		s.logger.Infof("connection closed: %s [%s]", conn.Id(), conn.RemoteAddr())
	}()

	player, err := s.handshake(conn)
	if err != nil {
		s.logger.Infof("handshake failed for conn %s: %v", conn.Id(), err)
		return
	}
	defer s.disconnect(player)

	go s.monitorLiveness(conn)

	session, err := s.registry.EnqueueOrPair(player)
	if err != nil {
		_ = conn.Send(wire.NewErrorMessage("matchmaking failed"))
		return
	}
	if session == nil {
		_ = conn.Send(&wire.WaitingForOpponent{})
	} else {
		s.countGameStarted()
	}

	s.dispatchLoop(conn, player)
}

// handshake reads exactly one name record before anything else is
// accepted. Missing or duplicate names and malformed first frames are
// fatal to this connection only.
func (s *Server) handshake(conn *wire.Conn) (*game.Player, error) {
	_ = conn.SetReadDeadline(time.Now().Add(handshakeTimeout))
	defer func() { _ = conn.SetReadDeadline(time.Time{}) }()

	m, err := conn.Receive()
	if err != nil {
		_ = conn.Send(wire.NewErrorMessage("handshake requires a valid name message"))
		return nil, err
	}

	nameMsg, ok := m.(*wire.Name)
	if !ok {
		_ = conn.Send(wire.NewErrorMessage("first message must be of type name"))
		return nil, fmt.Errorf("handshake got %s message", m.Kind())
	}

	player, err := s.registry.Register(nameMsg.Name, conn)
	if err != nil {
		_ = conn.Send(wire.NewErrorMessage(err.Error()))
		return nil, err
	}
	return player, nil
}

// dispatchLoop pumps inbound messages into the player's session until
// end-of-stream. Malformed frames are skipped (newline framing keeps
// byte alignment), unknown types logged and ignored.
func (s *Server) dispatchLoop(conn *wire.Conn, player *game.Player) {
	for {
		m, err := conn.Receive()
		if err != nil {
			switch {
			case errors.Is(err, cerr.ErrMalformedMessage):
				_ = conn.Send(wire.NewErrorMessage("malformed message"))
				continue
			case errors.Is(err, cerr.ErrUnknownType):
				s.logger.Warnf("player %s: %v", player.Name(), err)
				continue
			default:
				// end-of-stream or read failure
				return
			}
		}

		switch m.(type) {
		case *wire.Ping:
			_ = conn.Send(&wire.Pong{})
			continue
		case *wire.Pong:
			// liveness already noted by Receive
			continue
		case *wire.Name:
			_ = conn.Send(wire.NewErrorMessage("name may only be sent once"))
			return
		}

		session := player.Session()
		if session == nil {
			s.logger.Warnf("player %s has no active session, dropping %s", player.Name(), m.Kind())
			continue
		}

		if err := session.Handle(player, m); err != nil {
			s.logger.Debugf("session %d: %v", session.Id(), err)
		}
	}
}

// monitorLiveness probes the peer periodically and tears down
// connections that stay silent past two intervals.
func (s *Server) monitorLiveness(conn *wire.Conn) {
	ticker := time.NewTicker(s.heartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-conn.Done():
			return
		case <-ticker.C:
			if time.Since(conn.LastSeen()) > 2*s.heartbeatInterval {
				s.logger.Warnf("conn %s [%s] unresponsive, closing", conn.Id(), conn.RemoteAddr())
				conn.Close()
				return
			}
			_ = conn.Send(&wire.Ping{})
		}
	}
}

// disconnect runs the cascade: registry, queue, session, analytics.
func (s *Server) disconnect(player *game.Player) {
	session := s.registry.Unregister(player)
	if session != nil {
		s.countDisconnect()
	}
}
