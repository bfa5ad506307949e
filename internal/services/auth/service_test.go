package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	pgrepo "github.com/Awkwardd-code/Swipe/internal/repo/postgres"
)

type stubUserStore struct {
	createErr error
	created   *pgrepo.UserRecord
	byEmail   map[string]pgrepo.UserRecord
	byID      map[int64]pgrepo.UserRecord
}

func (s *stubUserStore) Create(_ context.Context, rec pgrepo.UserRecord) (pgrepo.UserRecord, error) {
	if s.createErr != nil {
		return pgrepo.UserRecord{}, s.createErr
	}
	rec.ID = 1
	rec.CreatedAt = time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	s.created = &rec
	return rec, nil
}

func (s *stubUserStore) GetByEmail(_ context.Context, email string) (pgrepo.UserRecord, error) {
	rec, ok := s.byEmail[email]
	if !ok {
		return pgrepo.UserRecord{}, pgrepo.ErrUserNotFound
	}
	return rec, nil
}

func (s *stubUserStore) GetByID(_ context.Context, userID int64) (pgrepo.UserRecord, error) {
	rec, ok := s.byID[userID]
	if !ok {
		return pgrepo.UserRecord{}, pgrepo.ErrUserNotFound
	}
	return rec, nil
}

func newTestService(store *stubUserStore) *Service {
	svc := NewService(Dependencies{
		Users:  store,
		Tokens: NewJWTManager("test-secret", 7*24*time.Hour),
	})
	svc.now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }
	return svc
}

func validSignup() SignupInput {
	return SignupInput{
		Name:             "Alice",
		Email:            "Alice@Example.com",
		Password:         "secret1",
		Age:              24,
		Gender:           "female",
		GenderPreference: "male",
	}
}

func TestSignupIssuesTokenAndNormalizesEmail(t *testing.T) {
	store := &stubUserStore{}
	svc := newTestService(store)

	res, err := svc.Signup(context.Background(), validSignup())
	if err != nil {
		t.Fatalf("signup: %v", err)
	}
	if res.AccessToken == "" {
		t.Fatalf("expected access token")
	}
	if res.User.ID != 1 {
		t.Fatalf("expected user id 1, got %d", res.User.ID)
	}
	if store.created == nil || store.created.Email != "alice@example.com" {
		t.Fatalf("expected lowercased email, got %+v", store.created)
	}
	if bcrypt.CompareHashAndPassword([]byte(store.created.PasswordHash), []byte("secret1")) != nil {
		t.Fatalf("stored hash does not match password")
	}

	claims, err := svc.tokens.ParseAccessToken(res.AccessToken)
	if err != nil {
		t.Fatalf("parse issued token: %v", err)
	}
	if claims.UserID != 1 {
		t.Fatalf("expected token subject 1, got %d", claims.UserID)
	}
}

func TestSignupValidation(t *testing.T) {
	svc := newTestService(&stubUserStore{})

	cases := []struct {
		name   string
		mutate func(*SignupInput)
	}{
		{"missing name", func(in *SignupInput) { in.Name = "  " }},
		{"missing email", func(in *SignupInput) { in.Email = "" }},
		{"bad email", func(in *SignupInput) { in.Email = "not-an-email" }},
		{"short password", func(in *SignupInput) { in.Password = "12345" }},
		{"underage", func(in *SignupInput) { in.Age = 17 }},
		{"bad gender", func(in *SignupInput) { in.Gender = "dragon" }},
		{"bad preference", func(in *SignupInput) { in.GenderPreference = "everyone" }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := validSignup()
			tc.mutate(&in)
			_, err := svc.Signup(context.Background(), in)
			if !errors.Is(err, ErrInvalidInput) {
				t.Fatalf("expected ErrInvalidInput, got %v", err)
			}
		})
	}
}

func TestSignupEmailTaken(t *testing.T) {
	svc := newTestService(&stubUserStore{createErr: pgrepo.ErrEmailTaken})

	_, err := svc.Signup(context.Background(), validSignup())
	if !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestLogin(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("secret1"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	store := &stubUserStore{byEmail: map[string]pgrepo.UserRecord{
		"alice@example.com": {ID: 7, Name: "Alice", Email: "alice@example.com", PasswordHash: string(hash), Age: 24, Gender: "female", GenderPreference: "male"},
	}}
	svc := newTestService(store)

	res, err := svc.Login(context.Background(), LoginInput{Email: " Alice@Example.com ", Password: "secret1"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if res.User.ID != 7 || res.AccessToken == "" {
		t.Fatalf("unexpected result: %+v", res)
	}

	if _, err := svc.Login(context.Background(), LoginInput{Email: "alice@example.com", Password: "wrong-pass"}); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for wrong password, got %v", err)
	}
	if _, err := svc.Login(context.Background(), LoginInput{Email: "nobody@example.com", Password: "secret1"}); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for unknown email, got %v", err)
	}
}

func TestMe(t *testing.T) {
	store := &stubUserStore{byID: map[int64]pgrepo.UserRecord{
		3: {ID: 3, Name: "Bob", Email: "bob@example.com", Age: 30, Gender: "male", GenderPreference: "both"},
	}}
	svc := newTestService(store)

	user, err := svc.Me(context.Background(), 3)
	if err != nil {
		t.Fatalf("me: %v", err)
	}
	if user.Name != "Bob" || string(user.GenderPreference) != "both" {
		t.Fatalf("unexpected user: %+v", user)
	}

	if _, err := svc.Me(context.Background(), 99); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestParseAccessTokenRejectsExpired(t *testing.T) {
	mgr := NewJWTManager("test-secret", time.Minute)
	mgr.now = func() time.Time { return time.Now().Add(-2 * time.Minute) }

	token, _, err := mgr.GenerateAccessToken(5)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	fresh := NewJWTManager("test-secret", time.Minute)
	if _, err := fresh.ParseAccessToken(token); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for expired token, got %v", err)
	}
}

func TestParseAccessTokenRejectsWrongSecret(t *testing.T) {
	mgr := NewJWTManager("test-secret", time.Minute)
	token, _, err := mgr.GenerateAccessToken(5)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	other := NewJWTManager("other-secret", time.Minute)
	if _, err := other.ParseAccessToken(token); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for wrong secret, got %v", err)
	}
}
