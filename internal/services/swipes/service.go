package swipes

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Awkwardd-code/Swipe/internal/domain/model"
	pgrepo "github.com/Awkwardd-code/Swipe/internal/repo/postgres"
)

const (
	actionLike    = "LIKE"
	actionDislike = "DISLIKE"
)

var (
	ErrValidation        = errors.New("validation error")
	ErrUnknownTarget     = errors.New("unknown swipe target")
	ErrUnsupportedAction = errors.New("unsupported action")
)

type TooFastError struct {
	RetryAfterSec int64
}

func (e TooFastError) Error() string {
	return "too fast"
}

func (e TooFastError) RetryAfter() int64 {
	if e.RetryAfterSec <= 0 {
		return 1
	}
	return e.RetryAfterSec
}

func IsTooFast(err error) (*TooFastError, bool) {
	var tf TooFastError
	if errors.As(err, &tf) {
		return &tf, true
	}
	return nil, false
}

type SwipeStore interface {
	GetForUpdate(ctx context.Context, tx pgx.Tx, actorUserID, targetUserID int64) (pgrepo.SwipeRecord, error)
	Upsert(ctx context.Context, tx pgx.Tx, actorUserID, targetUserID int64, action string, now time.Time) (pgrepo.SwipeRecord, error)
	HasLike(ctx context.Context, fromUserID, toUserID int64) (bool, error)
}

type MatchStore interface {
	CreateIfMutualLike(ctx context.Context, tx pgx.Tx, userID, targetID int64) (pgrepo.MatchRecord, bool, error)
	CreateIfAbsent(ctx context.Context, userID, targetID int64) (pgrepo.MatchRecord, bool, error)
	GetByUsers(ctx context.Context, userID, otherID int64) (pgrepo.MatchRecord, error)
}

type UserStore interface {
	Exists(ctx context.Context, userID int64) (bool, error)
}

type RateLimiter interface {
	AllowSwipe(ctx context.Context, userID int64) (int64, bool, error)
}

// Notifier receives match events after the owning transaction commits.
// Delivery failures must stay inside the implementation.
type Notifier interface {
	MatchCreated(match model.Match)
}

// SwipeResult describes the outcome of one swipe. Matched is stable
// across retries: it reports that a match exists for the pair, while
// MatchCreated is true only on the call that inserted the match row.
type SwipeResult struct {
	Action       string
	Repeated     bool
	Matched      bool
	MatchCreated bool
	MatchID      int64
}

type Dependencies struct {
	Pool        *pgxpool.Pool
	SwipeStore  SwipeStore
	MatchStore  MatchStore
	UserStore   UserStore
	RateLimiter RateLimiter
	Notifier    Notifier
	// WithTx overrides the transaction runner, stores that do not sit on
	// the pool provide their own.
	WithTx func(ctx context.Context, fn func(ctx context.Context, tx pgx.Tx) error) error
}

type Service struct {
	swipeStore  SwipeStore
	matchStore  MatchStore
	userStore   UserStore
	rateLimiter RateLimiter
	notifier    Notifier
	withTx      func(ctx context.Context, fn func(ctx context.Context, tx pgx.Tx) error) error
	now         func() time.Time
}

func NewService(deps Dependencies) *Service {
	withTx := deps.WithTx
	if withTx == nil {
		pool := deps.Pool
		withTx = func(ctx context.Context, fn func(ctx context.Context, tx pgx.Tx) error) error {
			return pgrepo.WithTx(ctx, pool, fn)
		}
	}

	return &Service{
		swipeStore:  deps.SwipeStore,
		matchStore:  deps.MatchStore,
		userStore:   deps.UserStore,
		rateLimiter: deps.RateLimiter,
		notifier:    deps.Notifier,
		withTx:      withTx,
		now:         time.Now,
	}
}

// Swipe records the actor's latest decision on the target. A repeated
// decision in the same direction is a no-op. A mutual LIKE creates the
// match exactly once: only the call that inserted the match row reports
// MatchCreated and notifies.
func (s *Service) Swipe(ctx context.Context, userID, targetID int64, action string) (SwipeResult, error) {
	if userID <= 0 || targetID <= 0 {
		return SwipeResult{}, ErrValidation
	}
	if userID == targetID {
		return SwipeResult{}, fmt.Errorf("%w: cannot swipe on yourself", ErrValidation)
	}

	normalizedAction, err := normalizeAction(action)
	if err != nil {
		return SwipeResult{}, err
	}

	if s.swipeStore == nil || s.matchStore == nil || s.userStore == nil {
		return SwipeResult{}, fmt.Errorf("swipe dependencies are not configured")
	}

	exists, err := s.userStore.Exists(ctx, targetID)
	if err != nil {
		return SwipeResult{}, fmt.Errorf("check target: %w", err)
	}
	if !exists {
		return SwipeResult{}, ErrUnknownTarget
	}

	if s.rateLimiter != nil {
		retryAfter, allowed, err := s.rateLimiter.AllowSwipe(ctx, userID)
		if err != nil {
			return SwipeResult{}, fmt.Errorf("apply rate limiter: %w", err)
		}
		if !allowed {
			return SwipeResult{}, TooFastError{RetryAfterSec: retryAfter}
		}
	}

	now := s.now().UTC()
	result := SwipeResult{Action: normalizedAction}
	var created pgrepo.MatchRecord

	if err := s.withTx(ctx, func(txCtx context.Context, tx pgx.Tx) error {
		existing, err := s.swipeStore.GetForUpdate(txCtx, tx, userID, targetID)
		switch {
		case err == nil:
			if existing.Action == normalizedAction {
				result.Repeated = true
				return nil
			}
		case errors.Is(err, pgrepo.ErrSwipeNotFound):
		default:
			return err
		}

		if _, err := s.swipeStore.Upsert(txCtx, tx, userID, targetID, normalizedAction, now); err != nil {
			return err
		}

		if normalizedAction != actionLike {
			return nil
		}

		rec, ok, err := s.matchStore.CreateIfMutualLike(txCtx, tx, userID, targetID)
		if err != nil {
			return err
		}
		if ok {
			created = rec
			result.MatchCreated = true
			result.MatchID = rec.ID
		}
		return nil
	}); err != nil {
		return SwipeResult{}, err
	}

	if normalizedAction == actionLike && !result.MatchCreated {
		rec, repaired, err := s.repairLostMatch(ctx, userID, targetID)
		if err != nil {
			return SwipeResult{}, err
		}
		if repaired {
			created = rec
			result.MatchCreated = true
		}
		if rec.ID != 0 {
			result.MatchID = rec.ID
		}
	}

	result.Matched = result.MatchID != 0

	if result.MatchCreated && s.notifier != nil {
		s.notifier.MatchCreated(model.Match{
			ID:        created.ID,
			UserAID:   created.UserAID,
			UserBID:   created.UserBID,
			CreatedAt: created.CreatedAt,
		})
	}

	return result, nil
}

// repairLostMatch runs the one post-commit re-check: if the reciprocal
// LIKE committed concurrently and neither transaction saw the other,
// insert the missing match row. The insert reports whether this caller
// created it, so notification stays exactly-once.
func (s *Service) repairLostMatch(ctx context.Context, userID, targetID int64) (pgrepo.MatchRecord, bool, error) {
	reciprocal, err := s.swipeStore.HasLike(ctx, targetID, userID)
	if err != nil {
		return pgrepo.MatchRecord{}, false, fmt.Errorf("re-check reciprocal like: %w", err)
	}
	if !reciprocal {
		return pgrepo.MatchRecord{}, false, nil
	}

	rec, created, err := s.matchStore.CreateIfAbsent(ctx, userID, targetID)
	if err != nil {
		return pgrepo.MatchRecord{}, false, fmt.Errorf("repair match: %w", err)
	}
	if created {
		return rec, true, nil
	}

	existing, err := s.matchStore.GetByUsers(ctx, userID, targetID)
	if err != nil {
		if errors.Is(err, pgrepo.ErrMatchNotFound) {
			return pgrepo.MatchRecord{}, false, nil
		}
		return pgrepo.MatchRecord{}, false, fmt.Errorf("load existing match: %w", err)
	}

	return existing, false, nil
}

func normalizeAction(action string) (string, error) {
	normalized := strings.ToUpper(strings.TrimSpace(action))
	switch normalized {
	case actionLike, actionDislike:
		return normalized, nil
	case "":
		return "", fmt.Errorf("%w: action is required", ErrValidation)
	default:
		return "", ErrUnsupportedAction
	}
}
