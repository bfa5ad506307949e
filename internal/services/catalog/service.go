package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/Awkwardd-code/Swipe/internal/domain/enums"
	"github.com/Awkwardd-code/Swipe/internal/domain/model"
	pgrepo "github.com/Awkwardd-code/Swipe/internal/repo/postgres"
)

var (
	ErrValidation   = errors.New("validation error")
	ErrViewerGone   = errors.New("viewer not found")
	ErrStoreMissing = errors.New("catalog store is not configured")
)

const (
	defaultLimit = 20
	maxLimit     = 100
)

type UserStore interface {
	GetByID(ctx context.Context, userID int64) (pgrepo.UserRecord, error)
	Exists(ctx context.Context, userID int64) (bool, error)
	ListCandidates(ctx context.Context, q pgrepo.CandidateQuery) ([]pgrepo.UserRecord, error)
}

type Service struct {
	users UserStore
}

func NewService(users UserStore) *Service {
	return &Service{users: users}
}

// Candidates returns profiles the viewer may swipe on: mutually compatible
// by gender preference and never swiped by the viewer before.
func (s *Service) Candidates(ctx context.Context, viewerID int64, limit int) ([]model.User, error) {
	if s.users == nil {
		return nil, ErrStoreMissing
	}
	if viewerID <= 0 {
		return nil, fmt.Errorf("%w: invalid viewer id", ErrValidation)
	}
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}

	viewer, err := s.users.GetByID(ctx, viewerID)
	if err != nil {
		if errors.Is(err, pgrepo.ErrUserNotFound) {
			return nil, ErrViewerGone
		}

		return nil, fmt.Errorf("load viewer: %w", err)
	}

	records, err := s.users.ListCandidates(ctx, pgrepo.CandidateQuery{
		ViewerID:         viewerID,
		ViewerGender:     viewer.Gender,
		ViewerPreference: viewer.GenderPreference,
		Limit:            limit,
	})
	if err != nil {
		return nil, fmt.Errorf("list candidates: %w", err)
	}

	viewerGender := enums.Gender(viewer.Gender)
	viewerPreference := enums.GenderPreference(viewer.GenderPreference)

	items := make([]model.User, 0, len(records))
	for _, rec := range records {
		candidate := model.User{
			ID:               rec.ID,
			Name:             rec.Name,
			Age:              rec.Age,
			Gender:           enums.Gender(rec.Gender),
			GenderPreference: enums.GenderPreference(rec.GenderPreference),
			CreatedAt:        rec.CreatedAt,
		}
		// the store query filters on the same rule; rows that slip past
		// it are dropped here rather than shown
		if !viewerPreference.Accepts(candidate.Gender) || !candidate.GenderPreference.Accepts(viewerGender) {
			continue
		}
		items = append(items, candidate)
	}

	return items, nil
}

func (s *Service) Exists(ctx context.Context, userID int64) (bool, error) {
	if s.users == nil {
		return false, ErrStoreMissing
	}
	if userID <= 0 {
		return false, nil
	}

	return s.users.Exists(ctx, userID)
}
