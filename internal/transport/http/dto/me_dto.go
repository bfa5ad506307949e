package dto

import "time"

type UserResponse struct {
	ID               int64     `json:"id"`
	Name             string    `json:"name"`
	Email            string    `json:"email,omitempty"`
	Age              int       `json:"age"`
	Gender           string    `json:"gender"`
	GenderPreference string    `json:"gender_preference,omitempty"`
	CreatedAt        time.Time `json:"created_at,omitempty"`
}
