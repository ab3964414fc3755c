package connector

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/Konsultn-Engineering/valueset/database"
	"github.com/google/uuid"
)

var (
	ErrSessionAlreadyOpen = errors.New("session already open")
	ErrSessionNotOpen     = errors.New("session not open")
	ErrSessionClosed      = errors.New("session closed")
)

// SessionState is the lifecycle state of a Session.
type SessionState int

const (
	StateUnopened SessionState = iota
	StateOpen
	StateClosed
)

func (s SessionState) String() string {
	switch s {
	case StateUnopened:
		return "unopened"
	case StateOpen:
		return "open"
	case StateClosed:
		return "closed"
	default:
		return fmt.Sprintf("SessionState(%d)", int(s))
	}
}

// Session owns one connection and the executor built on it. It moves
// Unopened -> Open -> Closed and never back.
type Session struct {
	id     uuid.UUID
	driver string
	config Config
	logger *slog.Logger

	mu    sync.Mutex
	state SessionState
	conn  Connection
	exec  *database.Executor
}

type SessionOption func(*Session)

func WithSessionLogger(l *slog.Logger) SessionOption {
	return func(s *Session) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewSession creates an unopened session for the named provider.
func NewSession(driver string, cfg Config, opts ...SessionOption) *Session {
	s := &Session{
		id:     uuid.New(),
		driver: driver,
		config: cfg,
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("session", s.id.String(), "driver", driver)
	return s
}

// ID returns the session identifier.
func (s *Session) ID() uuid.UUID { return s.id }

// State returns the current lifecycle state.
func (s *Session) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Open connects through the provider, retrying when the config asks for it.
func (s *Session) Open(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case StateOpen:
		return ErrSessionAlreadyOpen
	case StateClosed:
		return ErrSessionClosed
	}

	c, err := New(s.driver, s.config)
	if err != nil {
		return err
	}
	var conn Connection
	if s.config.Retry != nil {
		conn, err = c.ConnectWithRetry(ctx, *s.config.Retry)
	} else {
		conn, err = c.Connect(ctx)
	}
	if err != nil {
		s.logger.Error("connect failed", "error", err)
		return fmt.Errorf("failed to open %s session: %w", s.driver, err)
	}

	s.conn = conn
	s.exec = database.NewExecutor(conn.Database(), conn.Dialect(),
		database.WithQueryTimeout(s.config.QueryTimeout))
	s.state = StateOpen
	s.logger.Info("session opened", "dialect", conn.Dialect().Name())
	return nil
}

// Executor returns the query executor of an open session.
func (s *Session) Executor() (*database.Executor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch s.state {
	case StateUnopened:
		return nil, ErrSessionNotOpen
	case StateClosed:
		return nil, ErrSessionClosed
	}
	return s.exec, nil
}

// Health pings the connection of an open session.
func (s *Session) Health(ctx context.Context) error {
	s.mu.Lock()
	conn, state := s.conn, s.state
	s.mu.Unlock()
	switch state {
	case StateUnopened:
		return ErrSessionNotOpen
	case StateClosed:
		return ErrSessionClosed
	}
	return conn.Health(ctx)
}

// Stats returns pool statistics, or zero values when the session is not open.
func (s *Session) Stats() ConnectionStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateOpen {
		return ConnectionStats{}
	}
	return s.conn.Stats()
}

// Close releases the connection. Closing a closed session is a no-op.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateClosed {
		return nil
	}
	prev := s.state
	s.state = StateClosed
	s.exec = nil
	if prev != StateOpen {
		return nil
	}

	err := s.conn.Close()
	s.conn = nil
	s.logger.Info("session closed")
	return err
}
