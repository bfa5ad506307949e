package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type MessageRepo struct {
	pool *pgxpool.Pool
}

func NewMessageRepo(pool *pgxpool.Pool) *MessageRepo {
	return &MessageRepo{pool: pool}
}

type MessageRecord struct {
	ID       string
	MatchID  int64
	SenderID int64
	Body     string
	Seq      int64
	SentAt   time.Time
}

// Append inserts the message with the next per-match sequence number.
// Callers must hold the match row lock (MatchRepo.LockByID) in the same
// transaction; MAX(seq)+1 is then race-free for the match.
func (r *MessageRepo) Append(ctx context.Context, tx pgx.Tx, id string, matchID, senderID int64, body string, now time.Time) (MessageRecord, error) {
	if strings.TrimSpace(id) == "" || matchID <= 0 || senderID <= 0 {
		return MessageRecord{}, fmt.Errorf("invalid message payload")
	}
	if tx == nil {
		return MessageRecord{}, fmt.Errorf("transaction is required")
	}
	if now.IsZero() {
		now = time.Now().UTC()
	}

	var rec MessageRecord
	err := tx.QueryRow(ctx, `
INSERT INTO messages (
	id,
	match_id,
	sender_id,
	body,
	seq,
	sent_at
) VALUES (
	$1,
	$2,
	$3,
	$4,
	(SELECT COALESCE(MAX(seq), 0) + 1 FROM messages WHERE match_id = $2),
	$5
)
RETURNING id, match_id, sender_id, body, seq, sent_at
`, id, matchID, senderID, body, now.UTC()).Scan(
		&rec.ID,
		&rec.MatchID,
		&rec.SenderID,
		&rec.Body,
		&rec.Seq,
		&rec.SentAt,
	)
	if err != nil {
		return MessageRecord{}, fmt.Errorf("append message: %w", err)
	}

	return rec, nil
}

type MessagePage struct {
	MatchID     int64
	AfterSeq    int64
	BeforeSeq   int64
	Limit       int
	NewestFirst bool
}

// ListByMatch pages through a match history keyed on seq, so concurrent
// appends never shift rows a client has already consumed.
func (r *MessageRepo) ListByMatch(ctx context.Context, page MessagePage) ([]MessageRecord, error) {
	if page.MatchID <= 0 {
		return nil, fmt.Errorf("invalid match id")
	}
	if page.Limit <= 0 {
		page.Limit = 50
	}
	if r.pool == nil {
		return []MessageRecord{}, nil
	}

	query := `
SELECT id, match_id, sender_id, body, seq, sent_at
FROM messages
WHERE match_id = $1 AND seq > $2
ORDER BY seq ASC
LIMIT $3
`
	cursor := page.AfterSeq
	if page.NewestFirst {
		query = `
SELECT id, match_id, sender_id, body, seq, sent_at
FROM messages
WHERE match_id = $1 AND ($2 <= 0 OR seq < $2)
ORDER BY seq DESC
LIMIT $3
`
		cursor = page.BeforeSeq
	}

	rows, err := r.pool.Query(ctx, query, page.MatchID, cursor, page.Limit)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	items := make([]MessageRecord, 0, page.Limit)
	for rows.Next() {
		var rec MessageRecord
		if err := rows.Scan(
			&rec.ID,
			&rec.MatchID,
			&rec.SenderID,
			&rec.Body,
			&rec.Seq,
			&rec.SentAt,
		); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		items = append(items, rec)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate messages: %w", rows.Err())
	}

	return items, nil
}
