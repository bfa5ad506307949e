package chat

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Awkwardd-code/Swipe/internal/domain/model"
	pgrepo "github.com/Awkwardd-code/Swipe/internal/repo/postgres"
)

var (
	ErrValidation    = errors.New("validation error")
	ErrEmptyBody     = errors.New("message body is empty")
	ErrNotAMatch     = errors.New("sender is not part of the match")
	ErrMatchNotFound = errors.New("match not found")
	ErrInvalidCursor = errors.New("invalid cursor")
)

const (
	maxBodyLength = 4000
	defaultLimit  = 50
	maxLimit      = 200
)

type MatchStore interface {
	GetByID(ctx context.Context, matchID int64) (pgrepo.MatchRecord, error)
	LockByID(ctx context.Context, tx pgx.Tx, matchID int64) (pgrepo.MatchRecord, error)
}

type MessageStore interface {
	Append(ctx context.Context, tx pgx.Tx, id string, matchID, senderID int64, body string, now time.Time) (pgrepo.MessageRecord, error)
	ListByMatch(ctx context.Context, page pgrepo.MessagePage) ([]pgrepo.MessageRecord, error)
}

// Notifier receives message events after the owning transaction commits.
type Notifier interface {
	MessageSent(match model.Match, msg model.Message)
}

type HistoryPage struct {
	Messages   []model.Message
	NextCursor string
}

// HistoryQuery selects a page of a conversation. The zero Order pages newest
// first; OrderOldestFirst walks forward from the start of the conversation.
type HistoryQuery struct {
	RequesterID int64
	MatchID     int64
	Cursor      string
	Limit       int
	Order       Order
}

type Order int

const (
	OrderNewestFirst Order = iota
	OrderOldestFirst
)

type Dependencies struct {
	Pool         *pgxpool.Pool
	MatchStore   MatchStore
	MessageStore MessageStore
	Notifier     Notifier
	// WithTx overrides the transaction runner, stores that do not sit on
	// the pool provide their own.
	WithTx func(ctx context.Context, fn func(ctx context.Context, tx pgx.Tx) error) error
}

type Service struct {
	matchStore   MatchStore
	messageStore MessageStore
	notifier     Notifier
	withTx       func(ctx context.Context, fn func(ctx context.Context, tx pgx.Tx) error) error
	now          func() time.Time
	newID        func() string

	locksMu sync.Mutex
	locks   map[int64]*matchLock
}

type matchLock struct {
	mu   sync.Mutex
	refs int
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
		matchStore:   deps.MatchStore,
		messageStore: deps.MessageStore,
		notifier:     deps.Notifier,
		withTx:       withTx,
		now:          time.Now,
		newID:        uuid.NewString,
		locks:        make(map[int64]*matchLock),
	}
}

// lockMatch serializes append and notify per conversation, so the
// notifier observes messages in seq order. Entries are dropped once the
// last holder releases them.
func (s *Service) lockMatch(matchID int64) func() {
	s.locksMu.Lock()
	l := s.locks[matchID]
	if l == nil {
		l = &matchLock{}
		s.locks[matchID] = l
	}
	l.refs++
	s.locksMu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()

		s.locksMu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(s.locks, matchID)
		}
		s.locksMu.Unlock()
	}
}

// Append persists a message under the match row lock and notifies before
// releasing the per-match lock, so seq assignment and notifier delivery
// both stay ordered per conversation even under concurrent sends.
func (s *Service) Append(ctx context.Context, senderID, matchID int64, body string) (model.Message, error) {
	if senderID <= 0 || matchID <= 0 {
		return model.Message{}, fmt.Errorf("%w: invalid message payload", ErrValidation)
	}
	if s.matchStore == nil || s.messageStore == nil {
		return model.Message{}, fmt.Errorf("chat dependencies are not configured")
	}

	body = strings.TrimSpace(body)
	if body == "" {
		return model.Message{}, ErrEmptyBody
	}
	if len(body) > maxBodyLength {
		return model.Message{}, fmt.Errorf("%w: message body exceeds %d characters", ErrValidation, maxBodyLength)
	}

	now := s.now().UTC()
	id := s.newID()

	// held through commit and notify; without it two concurrent appends
	// could reach the notifier with their seqs inverted
	unlock := s.lockMatch(matchID)
	defer unlock()

	var (
		match model.Match
		saved pgrepo.MessageRecord
	)
	if err := s.withTx(ctx, func(txCtx context.Context, tx pgx.Tx) error {
		locked, err := s.matchStore.LockByID(txCtx, tx, matchID)
		if err != nil {
			if errors.Is(err, pgrepo.ErrMatchNotFound) {
				return ErrMatchNotFound
			}
			return err
		}

		match = model.Match{
			ID:        locked.ID,
			UserAID:   locked.UserAID,
			UserBID:   locked.UserBID,
			CreatedAt: locked.CreatedAt,
		}
		if !match.Includes(senderID) {
			return ErrNotAMatch
		}

		saved, err = s.messageStore.Append(txCtx, tx, id, matchID, senderID, body, now)
		return err
	}); err != nil {
		return model.Message{}, err
	}

	msg := messageFromRecord(saved)
	if s.notifier != nil {
		s.notifier.MessageSent(match, msg)
	}

	return msg, nil
}

// History pages through a conversation in the requested order. The cursor is
// opaque to clients and keyed on the per-match seq, so a page stays stable
// while new messages arrive.
func (s *Service) History(ctx context.Context, q HistoryQuery) (HistoryPage, error) {
	if q.RequesterID <= 0 || q.MatchID <= 0 {
		return HistoryPage{}, fmt.Errorf("%w: invalid history request", ErrValidation)
	}
	if s.matchStore == nil || s.messageStore == nil {
		return HistoryPage{}, fmt.Errorf("chat dependencies are not configured")
	}

	limit := q.Limit
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}

	rec, err := s.matchStore.GetByID(ctx, q.MatchID)
	if err != nil {
		if errors.Is(err, pgrepo.ErrMatchNotFound) {
			return HistoryPage{}, ErrMatchNotFound
		}
		return HistoryPage{}, fmt.Errorf("load match: %w", err)
	}

	match := model.Match{ID: rec.ID, UserAID: rec.UserAID, UserBID: rec.UserBID}
	if !match.Includes(q.RequesterID) {
		return HistoryPage{}, ErrNotAMatch
	}

	decoded, hasCursor, err := decodeCursor(q.Cursor)
	if err != nil {
		return HistoryPage{}, err
	}

	page := pgrepo.MessagePage{
		MatchID:     q.MatchID,
		Limit:       limit,
		NewestFirst: q.Order == OrderNewestFirst,
	}
	if hasCursor {
		// A cursor minted for one direction cannot resume the other.
		if page.NewestFirst {
			if decoded.BeforeSeq <= 0 {
				return HistoryPage{}, ErrInvalidCursor
			}
			page.BeforeSeq = decoded.BeforeSeq
		} else {
			if decoded.AfterSeq <= 0 {
				return HistoryPage{}, ErrInvalidCursor
			}
			page.AfterSeq = decoded.AfterSeq
		}
	}

	records, err := s.messageStore.ListByMatch(ctx, page)
	if err != nil {
		return HistoryPage{}, fmt.Errorf("list messages: %w", err)
	}

	result := HistoryPage{Messages: make([]model.Message, 0, len(records))}
	for _, r := range records {
		result.Messages = append(result.Messages, messageFromRecord(r))
	}

	if len(records) == limit {
		lastSeq := records[len(records)-1].Seq
		next := historyCursor{BeforeSeq: lastSeq}
		if !page.NewestFirst {
			next = historyCursor{AfterSeq: lastSeq}
		}
		encoded, err := encodeCursor(next)
		if err != nil {
			return HistoryPage{}, err
		}
		result.NextCursor = encoded
	}

	return result, nil
}

func messageFromRecord(rec pgrepo.MessageRecord) model.Message {
	return model.Message{
		ID:       rec.ID,
		MatchID:  rec.MatchID,
		SenderID: rec.SenderID,
		Body:     rec.Body,
		Seq:      rec.Seq,
		SentAt:   rec.SentAt,
	}
}

type historyCursor struct {
	BeforeSeq int64 `json:"before_seq,omitempty"`
	AfterSeq  int64 `json:"after_seq,omitempty"`
}

func decodeCursor(raw string) (historyCursor, bool, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return historyCursor{}, false, nil
	}

	data, err := base64.RawURLEncoding.DecodeString(value)
	if err != nil {
		return historyCursor{}, false, ErrInvalidCursor
	}

	var cursor historyCursor
	if err := json.Unmarshal(data, &cursor); err != nil {
		return historyCursor{}, false, ErrInvalidCursor
	}
	if cursor.BeforeSeq <= 0 && cursor.AfterSeq <= 0 {
		return historyCursor{}, false, ErrInvalidCursor
	}

	return cursor, true, nil
}

func encodeCursor(cursor historyCursor) (string, error) {
	payload, err := json.Marshal(cursor)
	if err != nil {
		return "", fmt.Errorf("marshal history cursor: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(payload), nil
}
