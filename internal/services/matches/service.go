package matches

import (
	"context"
	"errors"
	"fmt"

	"github.com/Awkwardd-code/Swipe/internal/domain/enums"
	"github.com/Awkwardd-code/Swipe/internal/domain/model"
	pgrepo "github.com/Awkwardd-code/Swipe/internal/repo/postgres"
)

var (
	ErrValidation    = errors.New("validation error")
	ErrMatchNotFound = errors.New("match not found")
	ErrNotAMatch     = errors.New("user is not part of the match")
)

const (
	defaultLimit = 50
	maxLimit     = 200
)

type MatchStore interface {
	GetByID(ctx context.Context, matchID int64) (pgrepo.MatchRecord, error)
	GetByUsers(ctx context.Context, userID, otherID int64) (pgrepo.MatchRecord, error)
	ListForUser(ctx context.Context, userID int64, limit int) ([]pgrepo.MatchPartnerRecord, error)
}

type MatchView struct {
	Match   model.Match
	Partner model.User
}

type Service struct {
	matchStore MatchStore
}

func NewService(matchStore MatchStore) *Service {
	return &Service{matchStore: matchStore}
}

// List returns the user's matches, newest first, with the partner's
// public profile attached.
func (s *Service) List(ctx context.Context, userID int64, limit int) ([]MatchView, error) {
	if userID <= 0 {
		return nil, fmt.Errorf("%w: invalid user id", ErrValidation)
	}
	if s.matchStore == nil {
		return nil, fmt.Errorf("match store is not configured")
	}
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}

	records, err := s.matchStore.ListForUser(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list matches: %w", err)
	}

	items := make([]MatchView, 0, len(records))
	for _, rec := range records {
		items = append(items, MatchView{
			Match: model.Match{
				ID:        rec.ID,
				UserAID:   rec.UserAID,
				UserBID:   rec.UserBID,
				CreatedAt: rec.CreatedAt,
			},
			Partner: model.User{
				ID:     rec.PartnerID,
				Name:   rec.PartnerName,
				Age:    rec.PartnerAge,
				Gender: enums.Gender(rec.PartnerGender),
			},
		})
	}

	return items, nil
}

// IsMatch reports whether the two users have an active match.
func (s *Service) IsMatch(ctx context.Context, userID, otherID int64) (bool, error) {
	if userID <= 0 || otherID <= 0 || userID == otherID {
		return false, nil
	}
	if s.matchStore == nil {
		return false, fmt.Errorf("match store is not configured")
	}

	_, err := s.matchStore.GetByUsers(ctx, userID, otherID)
	if err != nil {
		if errors.Is(err, pgrepo.ErrMatchNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("lookup match: %w", err)
	}

	return true, nil
}

// GetForSender loads the match and verifies the sender belongs to it.
func (s *Service) GetForSender(ctx context.Context, matchID, senderID int64) (model.Match, error) {
	if matchID <= 0 || senderID <= 0 {
		return model.Match{}, fmt.Errorf("%w: invalid match lookup", ErrValidation)
	}
	if s.matchStore == nil {
		return model.Match{}, fmt.Errorf("match store is not configured")
	}

	rec, err := s.matchStore.GetByID(ctx, matchID)
	if err != nil {
		if errors.Is(err, pgrepo.ErrMatchNotFound) {
			return model.Match{}, ErrMatchNotFound
		}
		return model.Match{}, fmt.Errorf("load match: %w", err)
	}

	match := model.Match{
		ID:        rec.ID,
		UserAID:   rec.UserAID,
		UserBID:   rec.UserBID,
		CreatedAt: rec.CreatedAt,
	}
	if !match.Includes(senderID) {
		return model.Match{}, ErrNotAMatch
	}

	return match, nil
}
