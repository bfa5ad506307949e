package dto

type CandidateListResponse struct {
	Candidates []UserResponse `json:"candidates"`
}
