package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrEmailTaken   = errors.New("email already taken")
)

const uniqueViolationCode = "23505"

type UserRepo struct {
	pool *pgxpool.Pool
}

func NewUserRepo(pool *pgxpool.Pool) *UserRepo {
	return &UserRepo{pool: pool}
}

type UserRecord struct {
	ID               int64
	Name             string
	Email            string
	PasswordHash     string
	Age              int
	Gender           string
	GenderPreference string
	CreatedAt        time.Time
}

type CandidateQuery struct {
	ViewerID         int64
	ViewerGender     string
	ViewerPreference string
	Limit            int
}

func (r *UserRepo) Create(ctx context.Context, rec UserRecord) (UserRecord, error) {
	if strings.TrimSpace(rec.Email) == "" || strings.TrimSpace(rec.PasswordHash) == "" {
		return UserRecord{}, fmt.Errorf("invalid user payload")
	}
	if r.pool == nil {
		return UserRecord{}, fmt.Errorf("postgres pool is nil")
	}

	err := r.pool.QueryRow(ctx, `
INSERT INTO users (
	name,
	email,
	password_hash,
	age,
	gender,
	gender_preference,
	created_at
) VALUES ($1, $2, $3, $4, $5, $6, NOW())
RETURNING id, created_at
`, rec.Name, strings.ToLower(strings.TrimSpace(rec.Email)), rec.PasswordHash, rec.Age, rec.Gender, rec.GenderPreference).Scan(
		&rec.ID,
		&rec.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			return UserRecord{}, ErrEmailTaken
		}
		return UserRecord{}, fmt.Errorf("create user: %w", err)
	}

	return rec, nil
}

func (r *UserRepo) GetByID(ctx context.Context, userID int64) (UserRecord, error) {
	if userID <= 0 {
		return UserRecord{}, fmt.Errorf("invalid user id")
	}
	if r.pool == nil {
		return UserRecord{}, ErrUserNotFound
	}

	var rec UserRecord
	err := r.pool.QueryRow(ctx, `
SELECT id, name, email, password_hash, age, gender, gender_preference, created_at
FROM users
WHERE id = $1
`, userID).Scan(
		&rec.ID,
		&rec.Name,
		&rec.Email,
		&rec.PasswordHash,
		&rec.Age,
		&rec.Gender,
		&rec.GenderPreference,
		&rec.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return UserRecord{}, ErrUserNotFound
		}
		return UserRecord{}, fmt.Errorf("get user by id: %w", err)
	}

	return rec, nil
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (UserRecord, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return UserRecord{}, fmt.Errorf("invalid email")
	}
	if r.pool == nil {
		return UserRecord{}, ErrUserNotFound
	}

	var rec UserRecord
	err := r.pool.QueryRow(ctx, `
SELECT id, name, email, password_hash, age, gender, gender_preference, created_at
FROM users
WHERE email = $1
`, email).Scan(
		&rec.ID,
		&rec.Name,
		&rec.Email,
		&rec.PasswordHash,
		&rec.Age,
		&rec.Gender,
		&rec.GenderPreference,
		&rec.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return UserRecord{}, ErrUserNotFound
		}
		return UserRecord{}, fmt.Errorf("get user by email: %w", err)
	}

	return rec, nil
}

func (r *UserRepo) Exists(ctx context.Context, userID int64) (bool, error) {
	if userID <= 0 {
		return false, fmt.Errorf("invalid user id")
	}
	if r.pool == nil {
		return false, nil
	}

	var one int
	err := r.pool.QueryRow(ctx, `
SELECT 1
FROM users
WHERE id = $1
LIMIT 1
`, userID).Scan(&one)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("check user exists: %w", err)
	}

	return true, nil
}

// ListCandidates returns profiles the viewer may swipe on: mutually
// compatible by gender preference and not yet decided on by the viewer,
// liked or disliked.
func (r *UserRepo) ListCandidates(ctx context.Context, q CandidateQuery) ([]UserRecord, error) {
	if q.ViewerID <= 0 {
		return nil, fmt.Errorf("invalid viewer id")
	}
	if q.Limit <= 0 {
		q.Limit = 20
	}
	if r.pool == nil {
		return []UserRecord{}, nil
	}

	rows, err := r.pool.Query(ctx, `
SELECT u.id, u.name, u.email, '', u.age, u.gender, u.gender_preference, u.created_at
FROM users u
WHERE
	u.id <> $1
	AND ($2 = 'both' OR u.gender = $2)
	AND (u.gender_preference = 'both' OR u.gender_preference = $3)
	AND NOT EXISTS (
		SELECT 1
		FROM swipes s
		WHERE s.actor_user_id = $1 AND s.target_user_id = u.id
	)
ORDER BY u.created_at DESC, u.id DESC
LIMIT $4
`, q.ViewerID, q.ViewerPreference, q.ViewerGender, q.Limit)
	if err != nil {
		return nil, fmt.Errorf("list candidates: %w", err)
	}
	defer rows.Close()

	items := make([]UserRecord, 0, q.Limit)
	for rows.Next() {
		var rec UserRecord
		if err := rows.Scan(
			&rec.ID,
			&rec.Name,
			&rec.Email,
			&rec.PasswordHash,
			&rec.Age,
			&rec.Gender,
			&rec.GenderPreference,
			&rec.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan candidate: %w", err)
		}
		items = append(items, rec)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate candidates: %w", rows.Err())
	}

	return items, nil
}
