package model

import (
	"time"

	"github.com/Awkwardd-code/Swipe/internal/domain/enums"
)

type User struct {
	ID               int64                  `json:"id"`
	Name             string                 `json:"name"`
	Email            string                 `json:"email"`
	Age              int                    `json:"age"`
	Gender           enums.Gender           `json:"gender"`
	GenderPreference enums.GenderPreference `json:"gender_preference"`
	CreatedAt        time.Time              `json:"created_at"`
}
