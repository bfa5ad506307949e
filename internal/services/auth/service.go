package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/Awkwardd-code/Swipe/internal/domain/enums"
	"github.com/Awkwardd-code/Swipe/internal/domain/model"
	pgrepo "github.com/Awkwardd-code/Swipe/internal/repo/postgres"
)

const (
	minPasswordLength = 6
	minAge            = 18
)

type UserStore interface {
	Create(ctx context.Context, rec pgrepo.UserRecord) (pgrepo.UserRecord, error)
	GetByEmail(ctx context.Context, email string) (pgrepo.UserRecord, error)
	GetByID(ctx context.Context, userID int64) (pgrepo.UserRecord, error)
}

type Dependencies struct {
	Users  UserStore
	Tokens *JWTManager
}

type Service struct {
	users  UserStore
	tokens *JWTManager
	now    func() time.Time
}

func NewService(deps Dependencies) *Service {
	return &Service{
		users:  deps.Users,
		tokens: deps.Tokens,
		now:    time.Now,
	}
}

type SignupInput struct {
	Name             string
	Email            string
	Password         string
	Age              int
	Gender           string
	GenderPreference string
}

func (s *Service) Signup(ctx context.Context, in SignupInput) (AuthResult, error) {
	name := strings.TrimSpace(in.Name)
	email := normalizeEmail(in.Email)

	if name == "" || email == "" || in.Password == "" {
		return AuthResult{}, fmt.Errorf("%w: name, email and password are required", ErrInvalidInput)
	}
	if !strings.Contains(email, "@") {
		return AuthResult{}, fmt.Errorf("%w: invalid email", ErrInvalidInput)
	}
	if len(in.Password) < minPasswordLength {
		return AuthResult{}, fmt.Errorf("%w: password must be at least %d characters", ErrInvalidInput, minPasswordLength)
	}
	if in.Age < minAge {
		return AuthResult{}, fmt.Errorf("%w: you must be at least %d years old", ErrInvalidInput, minAge)
	}

	gender, err := enums.ParseGender(in.Gender)
	if err != nil {
		return AuthResult{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	preference, err := enums.ParseGenderPreference(in.GenderPreference)
	if err != nil {
		return AuthResult{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return AuthResult{}, fmt.Errorf("hash password: %w", err)
	}

	rec, err := s.users.Create(ctx, pgrepo.UserRecord{
		Name:             name,
		Email:            email,
		PasswordHash:     string(hash),
		Age:              in.Age,
		Gender:           string(gender),
		GenderPreference: string(preference),
	})
	if err != nil {
		if errors.Is(err, pgrepo.ErrEmailTaken) {
			return AuthResult{}, ErrEmailTaken
		}

		return AuthResult{}, fmt.Errorf("create user: %w", err)
	}

	return s.issueFor(userFromRecord(rec))
}

type LoginInput struct {
	Email    string
	Password string
}

func (s *Service) Login(ctx context.Context, in LoginInput) (AuthResult, error) {
	email := normalizeEmail(in.Email)
	if email == "" || in.Password == "" {
		return AuthResult{}, fmt.Errorf("%w: email and password are required", ErrInvalidInput)
	}

	rec, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgrepo.ErrUserNotFound) {
			return AuthResult{}, ErrUnauthorized
		}

		return AuthResult{}, fmt.Errorf("load user: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(rec.PasswordHash), []byte(in.Password)) != nil {
		return AuthResult{}, ErrUnauthorized
	}

	return s.issueFor(userFromRecord(rec))
}

func (s *Service) Me(ctx context.Context, userID int64) (model.User, error) {
	rec, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgrepo.ErrUserNotFound) {
			return model.User{}, ErrUnauthorized
		}

		return model.User{}, fmt.Errorf("load user: %w", err)
	}

	return userFromRecord(rec), nil
}

func (s *Service) issueFor(user model.User) (AuthResult, error) {
	token, expiresAt, err := s.tokens.GenerateAccessToken(user.ID)
	if err != nil {
		return AuthResult{}, fmt.Errorf("issue access token: %w", err)
	}

	return AuthResult{
		AccessToken:   token,
		AccessExpires: expiresAt,
		User:          user,
	}, nil
}

func userFromRecord(rec pgrepo.UserRecord) model.User {
	return model.User{
		ID:               rec.ID,
		Name:             rec.Name,
		Email:            rec.Email,
		Age:              rec.Age,
		Gender:           enums.Gender(rec.Gender),
		GenderPreference: enums.GenderPreference(rec.GenderPreference),
		CreatedAt:        rec.CreatedAt,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
