package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrSwipeNotFound = errors.New("swipe not found")

type SwipeRepo struct {
	pool *pgxpool.Pool
}

func NewSwipeRepo(pool *pgxpool.Pool) *SwipeRepo {
	return &SwipeRepo{pool: pool}
}

type SwipeRecord struct {
	ActorUserID  int64
	TargetUserID int64
	Action       string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// GetForUpdate locks the (actor, target) decision row for the duration of
// the transaction so a repeated or reversed swipe is applied serially.
func (r *SwipeRepo) GetForUpdate(ctx context.Context, tx pgx.Tx, actorUserID, targetUserID int64) (SwipeRecord, error) {
	if actorUserID <= 0 || targetUserID <= 0 {
		return SwipeRecord{}, fmt.Errorf("invalid swipe lookup payload")
	}
	if tx == nil {
		return SwipeRecord{}, fmt.Errorf("transaction is required")
	}

	var rec SwipeRecord
	err := tx.QueryRow(ctx, `
SELECT actor_user_id, target_user_id, action, created_at, updated_at
FROM swipes
WHERE actor_user_id = $1 AND target_user_id = $2
FOR UPDATE
`, actorUserID, targetUserID).Scan(
		&rec.ActorUserID,
		&rec.TargetUserID,
		&rec.Action,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return SwipeRecord{}, ErrSwipeNotFound
		}
		return SwipeRecord{}, fmt.Errorf("get swipe for update: %w", err)
	}

	return rec, nil
}

// Upsert stores the decision. One row per ordered (actor, target) pair;
// a later decision overwrites the action, the latest one is authoritative.
func (r *SwipeRepo) Upsert(ctx context.Context, tx pgx.Tx, actorUserID, targetUserID int64, action string, now time.Time) (SwipeRecord, error) {
	if actorUserID <= 0 || targetUserID <= 0 || strings.TrimSpace(action) == "" {
		return SwipeRecord{}, fmt.Errorf("invalid swipe payload")
	}
	if tx == nil {
		return SwipeRecord{}, fmt.Errorf("transaction is required")
	}
	if now.IsZero() {
		now = time.Now().UTC()
	}

	var rec SwipeRecord
	err := tx.QueryRow(ctx, `
INSERT INTO swipes (
	actor_user_id,
	target_user_id,
	action,
	created_at,
	updated_at
) VALUES ($1, $2, $3, $4, $4)
ON CONFLICT (actor_user_id, target_user_id) DO UPDATE SET
	action = EXCLUDED.action,
	updated_at = EXCLUDED.updated_at
RETURNING actor_user_id, target_user_id, action, created_at, updated_at
`, actorUserID, targetUserID, strings.ToUpper(strings.TrimSpace(action)), now.UTC()).Scan(
		&rec.ActorUserID,
		&rec.TargetUserID,
		&rec.Action,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	)
	if err != nil {
		return SwipeRecord{}, fmt.Errorf("upsert swipe: %w", err)
	}

	return rec, nil
}

// HasLike reports whether from has a live LIKE decision toward to. Runs
// outside any transaction; used for the post-commit mutual re-check.
func (r *SwipeRepo) HasLike(ctx context.Context, fromUserID, toUserID int64) (bool, error) {
	if fromUserID <= 0 || toUserID <= 0 {
		return false, fmt.Errorf("invalid like lookup payload")
	}
	if r.pool == nil {
		return false, nil
	}

	var one int
	err := r.pool.QueryRow(ctx, `
SELECT 1
FROM swipes
WHERE actor_user_id = $1 AND target_user_id = $2 AND action = 'LIKE'
LIMIT 1
`, fromUserID, toUserID).Scan(&one)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("lookup like: %w", err)
	}

	return true, nil
}
