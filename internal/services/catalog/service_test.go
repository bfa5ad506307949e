package catalog

import (
	"context"
	"errors"
	"testing"

	pgrepo "github.com/Awkwardd-code/Swipe/internal/repo/postgres"
)

type stubUserStore struct {
	viewer    pgrepo.UserRecord
	viewerErr error
	lastQuery pgrepo.CandidateQuery
	records   []pgrepo.UserRecord
	exists    map[int64]bool
}

func (s *stubUserStore) GetByID(_ context.Context, userID int64) (pgrepo.UserRecord, error) {
	if s.viewerErr != nil {
		return pgrepo.UserRecord{}, s.viewerErr
	}
	if s.viewer.ID != userID {
		return pgrepo.UserRecord{}, pgrepo.ErrUserNotFound
	}
	return s.viewer, nil
}

func (s *stubUserStore) Exists(_ context.Context, userID int64) (bool, error) {
	return s.exists[userID], nil
}

func (s *stubUserStore) ListCandidates(_ context.Context, q pgrepo.CandidateQuery) ([]pgrepo.UserRecord, error) {
	s.lastQuery = q
	return s.records, nil
}

func TestCandidatesUsesViewerPreferences(t *testing.T) {
	store := &stubUserStore{
		viewer: pgrepo.UserRecord{ID: 1, Gender: "female", GenderPreference: "male"},
		records: []pgrepo.UserRecord{
			{ID: 2, Name: "Bob", Age: 28, Gender: "male", GenderPreference: "female"},
		},
	}
	svc := NewService(store)

	items, err := svc.Candidates(context.Background(), 1, 0)
	if err != nil {
		t.Fatalf("candidates: %v", err)
	}
	if len(items) != 1 || items[0].ID != 2 {
		t.Fatalf("unexpected candidates: %+v", items)
	}
	if store.lastQuery.ViewerGender != "female" || store.lastQuery.ViewerPreference != "male" {
		t.Fatalf("unexpected query: %+v", store.lastQuery)
	}
	if store.lastQuery.Limit != defaultLimit {
		t.Fatalf("expected default limit %d, got %d", defaultLimit, store.lastQuery.Limit)
	}
}

func TestCandidatesDropsIncompatibleRows(t *testing.T) {
	store := &stubUserStore{
		viewer: pgrepo.UserRecord{ID: 1, Gender: "female", GenderPreference: "male"},
		records: []pgrepo.UserRecord{
			{ID: 2, Name: "Bob", Age: 28, Gender: "male", GenderPreference: "female"},
			{ID: 3, Name: "Carol", Age: 30, Gender: "female", GenderPreference: "both"},
			{ID: 4, Name: "Dan", Age: 25, Gender: "male", GenderPreference: "male"},
		},
	}
	svc := NewService(store)

	items, err := svc.Candidates(context.Background(), 1, 0)
	if err != nil {
		t.Fatalf("candidates: %v", err)
	}
	if len(items) != 1 || items[0].ID != 2 {
		t.Fatalf("expected only the mutually compatible candidate, got %+v", items)
	}
}

func TestCandidatesClampsLimit(t *testing.T) {
	store := &stubUserStore{viewer: pgrepo.UserRecord{ID: 1, Gender: "other", GenderPreference: "both"}}
	svc := NewService(store)

	if _, err := svc.Candidates(context.Background(), 1, 10_000); err != nil {
		t.Fatalf("candidates: %v", err)
	}
	if store.lastQuery.Limit != maxLimit {
		t.Fatalf("expected clamped limit %d, got %d", maxLimit, store.lastQuery.Limit)
	}
}

func TestCandidatesUnknownViewer(t *testing.T) {
	svc := NewService(&stubUserStore{viewer: pgrepo.UserRecord{ID: 7}})

	if _, err := svc.Candidates(context.Background(), 1, 10); !errors.Is(err, ErrViewerGone) {
		t.Fatalf("expected ErrViewerGone, got %v", err)
	}
	if _, err := svc.Candidates(context.Background(), 0, 10); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestExists(t *testing.T) {
	svc := NewService(&stubUserStore{exists: map[int64]bool{5: true}})

	ok, err := svc.Exists(context.Background(), 5)
	if err != nil || !ok {
		t.Fatalf("expected exists=true, got ok=%v err=%v", ok, err)
	}
	ok, err = svc.Exists(context.Background(), 6)
	if err != nil || ok {
		t.Fatalf("expected exists=false, got ok=%v err=%v", ok, err)
	}
	ok, err = svc.Exists(context.Background(), -1)
	if err != nil || ok {
		t.Fatalf("expected exists=false for invalid id, got ok=%v err=%v", ok, err)
	}
}
