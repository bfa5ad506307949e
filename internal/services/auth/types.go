package auth

import (
	"errors"
	"time"

	"github.com/Awkwardd-code/Swipe/internal/domain/model"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrUnauthorized = errors.New("unauthorized")
	ErrEmailTaken   = errors.New("email already taken")
)

type AccessClaims struct {
	UserID    int64
	ExpiresAt time.Time
}

type AuthResult struct {
	AccessToken   string
	AccessExpires time.Time
	User          model.User
}
