package presence

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Awkwardd-code/Swipe/internal/domain/model"
)

var (
	ErrValidation     = errors.New("validation error")
	ErrConnectionGone = errors.New("connection is gone")
)

const defaultHeartbeatTimeout = 60 * time.Second

type Store interface {
	Add(ctx context.Context, entry model.PresenceEntry, ttl time.Duration) error
	Touch(ctx context.Context, connectionID string, ttl time.Duration) (int64, bool, error)
	Remove(ctx context.Context, connectionID string) (int64, bool, error)
	ConnectionsFor(ctx context.Context, userID int64) ([]string, error)
}

type Config struct {
	HeartbeatTimeout time.Duration
}

// Service tracks live connections per user. An entry that misses its
// heartbeat window expires on its own; readers prune the stale ids lazily.
type Service struct {
	store   Store
	timeout time.Duration
	now     func() time.Time
	newID   func() string
}

func NewService(store Store, cfg Config) *Service {
	timeout := cfg.HeartbeatTimeout
	if timeout <= 0 {
		timeout = defaultHeartbeatTimeout
	}

	return &Service{
		store:   store,
		timeout: timeout,
		now:     time.Now,
		newID:   uuid.NewString,
	}
}

// Connect registers a new connection and returns its id. A user may hold
// any number of concurrent connections.
func (s *Service) Connect(ctx context.Context, userID int64) (string, error) {
	if userID <= 0 {
		return "", fmt.Errorf("%w: invalid user id", ErrValidation)
	}
	if s.store == nil {
		return "", fmt.Errorf("presence store is not configured")
	}

	connectionID := s.newID()
	entry := model.PresenceEntry{
		UserID:       userID,
		ConnectionID: connectionID,
		ConnectedAt:  s.now().UTC(),
	}
	if err := s.store.Add(ctx, entry, s.timeout); err != nil {
		return "", fmt.Errorf("register connection: %w", err)
	}

	return connectionID, nil
}

// Heartbeat extends the connection's lease. A heartbeat on an expired or
// unknown connection reports ErrConnectionGone so the caller reconnects.
func (s *Service) Heartbeat(ctx context.Context, connectionID string) error {
	if strings.TrimSpace(connectionID) == "" {
		return fmt.Errorf("%w: connection id is required", ErrValidation)
	}
	if s.store == nil {
		return fmt.Errorf("presence store is not configured")
	}

	_, alive, err := s.store.Touch(ctx, connectionID, s.timeout)
	if err != nil {
		return fmt.Errorf("touch connection: %w", err)
	}
	if !alive {
		return ErrConnectionGone
	}

	return nil
}

// Disconnect removes the connection. Disconnecting an already expired
// connection is a no-op.
func (s *Service) Disconnect(ctx context.Context, connectionID string) error {
	if strings.TrimSpace(connectionID) == "" {
		return fmt.Errorf("%w: connection id is required", ErrValidation)
	}
	if s.store == nil {
		return fmt.Errorf("presence store is not configured")
	}

	if _, _, err := s.store.Remove(ctx, connectionID); err != nil {
		return fmt.Errorf("remove connection: %w", err)
	}

	return nil
}

func (s *Service) IsOnline(ctx context.Context, userID int64) (bool, error) {
	ids, err := s.ConnectionsFor(ctx, userID)
	if err != nil {
		return false, err
	}

	return len(ids) > 0, nil
}

func (s *Service) ConnectionsFor(ctx context.Context, userID int64) ([]string, error) {
	if userID <= 0 {
		return nil, fmt.Errorf("%w: invalid user id", ErrValidation)
	}
	if s.store == nil {
		return nil, fmt.Errorf("presence store is not configured")
	}

	ids, err := s.store.ConnectionsFor(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list connections: %w", err)
	}

	return ids, nil
}
