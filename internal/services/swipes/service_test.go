package swipes

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/Awkwardd-code/Swipe/internal/domain/model"
	pgrepo "github.com/Awkwardd-code/Swipe/internal/repo/postgres"
)

type pairKey struct {
	actor  int64
	target int64
}

type memStore struct {
	mu      sync.Mutex
	swipes  map[pairKey]pgrepo.SwipeRecord
	matches map[pairKey]pgrepo.MatchRecord
	nextID  int64
	// when set, CreateIfMutualLike pretends not to see the reciprocal
	// like, simulating two snapshots racing past each other.
	blindInTx bool
}

func newMemStore() *memStore {
	return &memStore{
		swipes:  make(map[pairKey]pgrepo.SwipeRecord),
		matches: make(map[pairKey]pgrepo.MatchRecord),
	}
}

func canonical(a, b int64) pairKey {
	if a < b {
		return pairKey{actor: a, target: b}
	}
	return pairKey{actor: b, target: a}
}

func (m *memStore) GetForUpdate(_ context.Context, _ pgx.Tx, actor, target int64) (pgrepo.SwipeRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.swipes[pairKey{actor: actor, target: target}]
	if !ok {
		return pgrepo.SwipeRecord{}, pgrepo.ErrSwipeNotFound
	}
	return rec, nil
}

func (m *memStore) Upsert(_ context.Context, _ pgx.Tx, actor, target int64, action string, now time.Time) (pgrepo.SwipeRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec := pgrepo.SwipeRecord{ActorUserID: actor, TargetUserID: target, Action: action, CreatedAt: now, UpdatedAt: now}
	m.swipes[pairKey{actor: actor, target: target}] = rec
	return rec, nil
}

func (m *memStore) HasLike(_ context.Context, from, to int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.swipes[pairKey{actor: from, target: to}]
	return ok && rec.Action == "LIKE", nil
}

func (m *memStore) CreateIfMutualLike(_ context.Context, _ pgx.Tx, userID, targetID int64) (pgrepo.MatchRecord, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.blindInTx {
		return pgrepo.MatchRecord{}, false, nil
	}
	reciprocal, ok := m.swipes[pairKey{actor: targetID, target: userID}]
	if !ok || reciprocal.Action != "LIKE" {
		return pgrepo.MatchRecord{}, false, nil
	}
	return m.insertLocked(userID, targetID)
}

func (m *memStore) CreateIfAbsent(_ context.Context, userID, targetID int64) (pgrepo.MatchRecord, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.insertLocked(userID, targetID)
}

func (m *memStore) insertLocked(userID, targetID int64) (pgrepo.MatchRecord, bool, error) {
	key := canonical(userID, targetID)
	if _, ok := m.matches[key]; ok {
		return pgrepo.MatchRecord{}, false, nil
	}
	m.nextID++
	rec := pgrepo.MatchRecord{ID: m.nextID, UserAID: key.actor, UserBID: key.target, CreatedAt: time.Now().UTC()}
	m.matches[key] = rec
	return rec, true, nil
}

func (m *memStore) GetByUsers(_ context.Context, userID, otherID int64) (pgrepo.MatchRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.matches[canonical(userID, otherID)]
	if !ok {
		return pgrepo.MatchRecord{}, pgrepo.ErrMatchNotFound
	}
	return rec, nil
}

type stubUsers struct {
	missing map[int64]bool
}

func (s *stubUsers) Exists(_ context.Context, userID int64) (bool, error) {
	return !s.missing[userID], nil
}

type stubLimiter struct {
	retryAfter int64
	allowed    bool
}

func (s *stubLimiter) AllowSwipe(_ context.Context, _ int64) (int64, bool, error) {
	return s.retryAfter, s.allowed, nil
}

type recordingNotifier struct {
	mu      sync.Mutex
	matches []model.Match
}

func (n *recordingNotifier) MatchCreated(match model.Match) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.matches = append(n.matches, match)
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.matches)
}

func newTestService(store *memStore, notifier Notifier) *Service {
	return NewService(Dependencies{
		SwipeStore:  store,
		MatchStore:  store,
		UserStore:   &stubUsers{},
		RateLimiter: &stubLimiter{allowed: true},
		Notifier:    notifier,
		WithTx: func(ctx context.Context, fn func(ctx context.Context, tx pgx.Tx) error) error {
			return fn(ctx, nil)
		},
	})
}

func TestSwipeValidation(t *testing.T) {
	svc := newTestService(newMemStore(), nil)
	ctx := context.Background()

	if _, err := svc.Swipe(ctx, 0, 2, "LIKE"); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for zero actor, got %v", err)
	}
	if _, err := svc.Swipe(ctx, 1, 1, "LIKE"); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for self swipe, got %v", err)
	}
	if _, err := svc.Swipe(ctx, 1, 2, ""); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for empty action, got %v", err)
	}
	if _, err := svc.Swipe(ctx, 1, 2, "SUPERLIKE"); !errors.Is(err, ErrUnsupportedAction) {
		t.Fatalf("expected ErrUnsupportedAction, got %v", err)
	}
}

func TestSwipeUnknownTarget(t *testing.T) {
	svc := newTestService(newMemStore(), nil)
	svc.userStore = &stubUsers{missing: map[int64]bool{99: true}}

	if _, err := svc.Swipe(context.Background(), 1, 99, "LIKE"); !errors.Is(err, ErrUnknownTarget) {
		t.Fatalf("expected ErrUnknownTarget, got %v", err)
	}
}

func TestSwipeRateLimited(t *testing.T) {
	svc := newTestService(newMemStore(), nil)
	svc.rateLimiter = &stubLimiter{retryAfter: 7, allowed: false}

	_, err := svc.Swipe(context.Background(), 1, 2, "LIKE")
	tf, ok := IsTooFast(err)
	if !ok {
		t.Fatalf("expected TooFastError, got %v", err)
	}
	if tf.RetryAfter() != 7 {
		t.Fatalf("expected retry_after 7, got %d", tf.RetryAfter())
	}
}

func TestMutualLikeCreatesMatchOnce(t *testing.T) {
	store := newMemStore()
	notifier := &recordingNotifier{}
	svc := newTestService(store, notifier)
	ctx := context.Background()

	res, err := svc.Swipe(ctx, 1, 2, "LIKE")
	if err != nil {
		t.Fatalf("first like: %v", err)
	}
	if res.MatchCreated || res.Matched {
		t.Fatalf("one-sided like must not report a match, got %+v", res)
	}

	res, err = svc.Swipe(ctx, 2, 1, "like")
	if err != nil {
		t.Fatalf("reciprocal like: %v", err)
	}
	if !res.MatchCreated || !res.Matched || res.MatchID == 0 {
		t.Fatalf("expected match on reciprocal like, got %+v", res)
	}
	if notifier.count() != 1 {
		t.Fatalf("expected exactly one match notification, got %d", notifier.count())
	}
	matchID := res.MatchID

	// repeated like is a no-op but still reports the existing match
	res, err = svc.Swipe(ctx, 2, 1, "LIKE")
	if err != nil {
		t.Fatalf("repeated like: %v", err)
	}
	if !res.Repeated || res.MatchCreated {
		t.Fatalf("expected repeated no-op, got %+v", res)
	}
	if !res.Matched || res.MatchID != matchID {
		t.Fatalf("repeated like must report the existing match %d, got %+v", matchID, res)
	}
	if notifier.count() != 1 {
		t.Fatalf("repeated like must not notify again, got %d", notifier.count())
	}
}

func TestDislikeOverwritesLike(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store, nil)
	ctx := context.Background()

	if _, err := svc.Swipe(ctx, 1, 2, "LIKE"); err != nil {
		t.Fatalf("like: %v", err)
	}
	res, err := svc.Swipe(ctx, 1, 2, "DISLIKE")
	if err != nil {
		t.Fatalf("dislike: %v", err)
	}
	if res.Repeated || res.MatchCreated {
		t.Fatalf("unexpected result: %+v", res)
	}

	rec, err := store.GetForUpdate(ctx, nil, 1, 2)
	if err != nil {
		t.Fatalf("load swipe: %v", err)
	}
	if rec.Action != "DISLIKE" {
		t.Fatalf("latest decision must win, got %q", rec.Action)
	}

	// a later reciprocal like must not match against the overwritten like
	res, err = svc.Swipe(ctx, 2, 1, "LIKE")
	if err != nil {
		t.Fatalf("reciprocal like: %v", err)
	}
	if res.MatchCreated {
		t.Fatalf("match created against an overwritten like")
	}
}

func TestRepairAfterLostRace(t *testing.T) {
	store := newMemStore()
	store.blindInTx = true
	notifier := &recordingNotifier{}
	svc := newTestService(store, notifier)
	ctx := context.Background()

	if _, err := svc.Swipe(ctx, 1, 2, "LIKE"); err != nil {
		t.Fatalf("first like: %v", err)
	}

	// the in-tx check sees nothing, so only the post-commit re-check
	// can produce the match
	res, err := svc.Swipe(ctx, 2, 1, "LIKE")
	if err != nil {
		t.Fatalf("reciprocal like: %v", err)
	}
	if !res.MatchCreated || res.MatchID == 0 {
		t.Fatalf("expected repaired match, got %+v", res)
	}
	if notifier.count() != 1 {
		t.Fatalf("expected exactly one notification, got %d", notifier.count())
	}
}

func TestConcurrentMutualLikeSingleMatch(t *testing.T) {
	for round := 0; round < 20; round++ {
		store := newMemStore()
		notifier := &recordingNotifier{}
		svc := newTestService(store, notifier)

		var wg sync.WaitGroup
		errs := make(chan error, 2)
		start := make(chan struct{})

		swipe := func(actor, target int64) {
			defer wg.Done()
			<-start
			if _, err := svc.Swipe(context.Background(), actor, target, "LIKE"); err != nil {
				errs <- err
			}
		}

		wg.Add(2)
		go swipe(1, 2)
		go swipe(2, 1)
		close(start)
		wg.Wait()
		close(errs)

		for err := range errs {
			t.Fatalf("round %d: swipe: %v", round, err)
		}

		store.mu.Lock()
		matchCount := len(store.matches)
		store.mu.Unlock()
		if matchCount != 1 {
			t.Fatalf("round %d: expected exactly one match row, got %d", round, matchCount)
		}
		if notifier.count() != 1 {
			t.Fatalf("round %d: expected exactly one notification, got %d", round, notifier.count())
		}
	}
}
