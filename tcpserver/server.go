package tcpserver

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mirelab/scenebridge/config"
	"github.com/mirelab/scenebridge/executor"
	"github.com/mirelab/scenebridge/host"
	"github.com/mirelab/scenebridge/inspect"
	"github.com/mirelab/scenebridge/protocol"
)

// Server accepts automation clients over TCP and exchanges JSON-lines
// command envelopes with them.
type Server struct {
	config *config.Config
	logger *zap.Logger
	router *protocol.Router

	mu       sync.Mutex
	byClient map[string]net.Conn
	listener net.Listener
}

// New creates the TCP command server and wires its handler collection.
func New(cfg *config.Config, logger *zap.Logger, h *host.Host) *Server {
	s := &Server{
		config:   cfg,
		logger:   logger,
		byClient: make(map[string]net.Conn),
	}
	s.router = protocol.NewRouter(logger,
		executor.NewExecuteHandler(logger, h, s,
			executor.WithSettleTicks(cfg.Execution.SettleTicks)),
		inspect.NewSceneTreeHandler(logger, h, s),
		inspect.NewScriptListHandler(logger, h, s),
		inspect.NewSettingsHandler(logger, h, s),
	)
	return s
}

// Start binds the listener and begins accepting connections. It returns
// once listening; Addr reports the bound address.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", s.config.Server.TCPPort))
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}
	s.mu.Lock()
	s.listener = ln
	s.mu.Unlock()

	s.logger.Info("TCP command server listening", zap.String("addr", ln.Addr().String()))

	go func() {
		<-ctx.Done()
		_ = ln.Close()
	}()
	go s.acceptLoop(ctx, ln)
	return nil
}

// Addr returns the listener address, or nil before Start.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Close stops the listener and drops all client connections.
func (s *Server) Close() error {
	s.mu.Lock()
	ln := s.listener
	conns := make([]net.Conn, 0, len(s.byClient))
	for _, c := range s.byClient {
		conns = append(conns, c)
	}
	s.mu.Unlock()

	for _, c := range conns {
		_ = c.Close()
	}
	if ln != nil {
		return ln.Close()
	}
	return nil
}

func (s *Server) acceptLoop(ctx context.Context, ln net.Listener) {
	for {
		conn, err := ln.Accept()
		if err != nil {
			if protocol.IsConnectionNoise(err) || ctx.Err() != nil {
				s.logger.Debug("accept loop finished", zap.Error(err))
				return
			}
			s.logger.Error("accept failed", zap.Error(err))
			return
		}
		go s.handleConn(ctx, conn)
	}
}

// handleConn reads command envelopes off one connection until it closes.
// Commands dispatch sequentially per connection; concurrency comes from
// clients, each on its own connection.
func (s *Server) handleConn(ctx context.Context, conn net.Conn) {
	clientID := uuid.NewString()

	s.mu.Lock()
	s.byClient[clientID] = conn
	s.mu.Unlock()

	s.logger.Info("client connected",
		zap.String("client_id", clientID),
		zap.String("remote", conn.RemoteAddr().String()))

	defer func() {
		s.mu.Lock()
		delete(s.byClient, clientID)
		s.mu.Unlock()
		_ = conn.Close()
		s.logger.Info("client disconnected", zap.String("client_id", clientID))
	}()

	decoder := json.NewDecoder(bufio.NewReader(conn))
	for {
		var cmd protocol.Command
		if err := decoder.Decode(&cmd); err != nil {
			if protocol.IsConnectionNoise(err) {
				s.logger.Debug("connection closed", zap.String("client_id", clientID), zap.Error(err))
			} else {
				s.logger.Warn("malformed command envelope",
					zap.String("client_id", clientID),
					zap.Error(err))
			}
			return
		}

		cmd.ClientID = clientID
		if cmd.ID == "" {
			cmd.ID = uuid.NewString()
		}

		if !s.router.Dispatch(ctx, cmd) {
			// The router sends nothing for unmatched commands; surfacing
			// them to the client is this adapter's concern.
			unhandled := protocol.ErrorResponse(cmd.ID, nil, "unhandled command: "+cmd.Type)
			if err := s.Send(clientID, unhandled); err != nil {
				return
			}
		}
	}
}

// Send implements protocol.Sender by writing one JSON line to the client's
// connection. Delivery failures on a closed connection are dropped.
func (s *Server) Send(clientID string, resp protocol.Response) error {
	s.mu.Lock()
	conn, ok := s.byClient[clientID]
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("no connection for client %s", clientID)
	}

	data, err := json.Marshal(resp)
	if err != nil {
		return fmt.Errorf("failed to encode response: %w", err)
	}
	data = append(data, '\n')

	if _, err := conn.Write(data); err != nil {
		if protocol.IsConnectionNoise(err) {
			s.logger.Debug("response dropped, connection gone",
				zap.String("client_id", clientID),
				zap.String("command_id", resp.CommandID))
			return nil
		}
		return fmt.Errorf("failed to write response: %w", err)
	}
	return nil
}
