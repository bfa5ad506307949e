package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrMatchNotFound = errors.New("match not found")

type MatchRepo struct {
	pool *pgxpool.Pool
}

func NewMatchRepo(pool *pgxpool.Pool) *MatchRepo {
	return &MatchRepo{pool: pool}
}

type MatchRecord struct {
	ID        int64
	UserAID   int64
	UserBID   int64
	CreatedAt time.Time
}

type MatchPartnerRecord struct {
	MatchRecord
	PartnerID     int64
	PartnerName   string
	PartnerAge    int
	PartnerGender string
}

func canonicalPair(userID, targetID int64) (int64, int64) {
	if userID > targetID {
		return targetID, userID
	}
	return userID, targetID
}

// CreateIfMutualLike checks the reciprocal like inside the swipe
// transaction and, when present, inserts the canonical-pair match.
// The unique constraint on (user_a_id, user_b_id) makes the insert an
// insert-if-absent: only the caller that actually created the row gets
// created=true, so notifications fire exactly once per match.
func (r *MatchRepo) CreateIfMutualLike(ctx context.Context, tx pgx.Tx, userID, targetID int64) (MatchRecord, bool, error) {
	if userID <= 0 || targetID <= 0 {
		return MatchRecord{}, false, fmt.Errorf("invalid match payload")
	}
	if tx == nil {
		return MatchRecord{}, false, fmt.Errorf("transaction is required")
	}

	var one int
	err := tx.QueryRow(ctx, `
SELECT 1
FROM swipes
WHERE actor_user_id = $1 AND target_user_id = $2 AND action = 'LIKE'
LIMIT 1
`, targetID, userID).Scan(&one)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return MatchRecord{}, false, nil
		}
		return MatchRecord{}, false, fmt.Errorf("lookup reciprocal like: %w", err)
	}

	userA, userB := canonicalPair(userID, targetID)

	var rec MatchRecord
	err = tx.QueryRow(ctx, `
INSERT INTO matches (
	user_a_id,
	user_b_id,
	created_at
) VALUES ($1, $2, NOW())
ON CONFLICT (user_a_id, user_b_id) DO NOTHING
RETURNING id, user_a_id, user_b_id, created_at
`, userA, userB).Scan(
		&rec.ID,
		&rec.UserAID,
		&rec.UserBID,
		&rec.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return MatchRecord{}, false, nil
		}
		return MatchRecord{}, false, fmt.Errorf("create match: %w", err)
	}

	return rec, true, nil
}

// CreateIfAbsent is the pool-backed variant used by the post-commit
// mutual re-check, after losing the two-sided swipe race.
func (r *MatchRepo) CreateIfAbsent(ctx context.Context, userID, targetID int64) (MatchRecord, bool, error) {
	if userID <= 0 || targetID <= 0 {
		return MatchRecord{}, false, fmt.Errorf("invalid match payload")
	}
	if r.pool == nil {
		return MatchRecord{}, false, fmt.Errorf("postgres pool is nil")
	}

	userA, userB := canonicalPair(userID, targetID)

	var rec MatchRecord
	err := r.pool.QueryRow(ctx, `
INSERT INTO matches (
	user_a_id,
	user_b_id,
	created_at
) VALUES ($1, $2, NOW())
ON CONFLICT (user_a_id, user_b_id) DO NOTHING
RETURNING id, user_a_id, user_b_id, created_at
`, userA, userB).Scan(
		&rec.ID,
		&rec.UserAID,
		&rec.UserBID,
		&rec.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return MatchRecord{}, false, nil
		}
		return MatchRecord{}, false, fmt.Errorf("create match if absent: %w", err)
	}

	return rec, true, nil
}

func (r *MatchRepo) GetByUsers(ctx context.Context, userID, otherID int64) (MatchRecord, error) {
	if userID <= 0 || otherID <= 0 {
		return MatchRecord{}, fmt.Errorf("invalid match lookup payload")
	}
	if r.pool == nil {
		return MatchRecord{}, ErrMatchNotFound
	}

	userA, userB := canonicalPair(userID, otherID)

	var rec MatchRecord
	err := r.pool.QueryRow(ctx, `
SELECT id, user_a_id, user_b_id, created_at
FROM matches
WHERE user_a_id = $1 AND user_b_id = $2
`, userA, userB).Scan(
		&rec.ID,
		&rec.UserAID,
		&rec.UserBID,
		&rec.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return MatchRecord{}, ErrMatchNotFound
		}
		return MatchRecord{}, fmt.Errorf("get match by users: %w", err)
	}

	return rec, nil
}

func (r *MatchRepo) GetByID(ctx context.Context, matchID int64) (MatchRecord, error) {
	if matchID <= 0 {
		return MatchRecord{}, fmt.Errorf("invalid match id")
	}
	if r.pool == nil {
		return MatchRecord{}, ErrMatchNotFound
	}

	var rec MatchRecord
	err := r.pool.QueryRow(ctx, `
SELECT id, user_a_id, user_b_id, created_at
FROM matches
WHERE id = $1
`, matchID).Scan(
		&rec.ID,
		&rec.UserAID,
		&rec.UserBID,
		&rec.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return MatchRecord{}, ErrMatchNotFound
		}
		return MatchRecord{}, fmt.Errorf("get match by id: %w", err)
	}

	return rec, nil
}

// LockByID takes the match row lock used to serialize message appends
// for one match without contending across matches.
func (r *MatchRepo) LockByID(ctx context.Context, tx pgx.Tx, matchID int64) (MatchRecord, error) {
	if matchID <= 0 {
		return MatchRecord{}, fmt.Errorf("invalid match id")
	}
	if tx == nil {
		return MatchRecord{}, fmt.Errorf("transaction is required")
	}

	var rec MatchRecord
	err := tx.QueryRow(ctx, `
SELECT id, user_a_id, user_b_id, created_at
FROM matches
WHERE id = $1
FOR UPDATE
`, matchID).Scan(
		&rec.ID,
		&rec.UserAID,
		&rec.UserBID,
		&rec.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return MatchRecord{}, ErrMatchNotFound
		}
		return MatchRecord{}, fmt.Errorf("lock match: %w", err)
	}

	return rec, nil
}

func (r *MatchRepo) ListForUser(ctx context.Context, userID int64, limit int) ([]MatchPartnerRecord, error) {
	if userID <= 0 {
		return nil, fmt.Errorf("invalid user id")
	}
	if limit <= 0 {
		limit = 100
	}
	if r.pool == nil {
		return []MatchPartnerRecord{}, nil
	}

	rows, err := r.pool.Query(ctx, `
SELECT
	m.id,
	m.user_a_id,
	m.user_b_id,
	m.created_at,
	u.id,
	u.name,
	u.age,
	u.gender
FROM matches m
JOIN users u ON u.id = CASE WHEN m.user_a_id = $1 THEN m.user_b_id ELSE m.user_a_id END
WHERE m.user_a_id = $1 OR m.user_b_id = $1
ORDER BY m.created_at DESC, m.id DESC
LIMIT $2
`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list matches: %w", err)
	}
	defer rows.Close()

	items := make([]MatchPartnerRecord, 0, limit)
	for rows.Next() {
		var rec MatchPartnerRecord
		if err := rows.Scan(
			&rec.ID,
			&rec.UserAID,
			&rec.UserBID,
			&rec.CreatedAt,
			&rec.PartnerID,
			&rec.PartnerName,
			&rec.PartnerAge,
			&rec.PartnerGender,
		); err != nil {
			return nil, fmt.Errorf("scan match: %w", err)
		}
		items = append(items, rec)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate matches: %w", rows.Err())
	}

	return items, nil
}
