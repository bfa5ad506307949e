package dto

type SignupRequest struct {
	Name             string `json:"name"`
	Email            string `json:"email"`
	Password         string `json:"password"`
	Age              int    `json:"age"`
	Gender           string `json:"gender"`
	GenderPreference string `json:"gender_preference"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthTokensResponse struct {
	AccessToken  string       `json:"access_token"`
	ExpiresInSec int64        `json:"expires_in_sec"`
	Me           UserResponse `json:"me"`
}
