package dto

import "time"

type MatchPartnerResponse struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Age    int    `json:"age"`
	Gender string `json:"gender"`
	Online bool   `json:"online"`
}

type MatchResponse struct {
	MatchID   int64                `json:"match_id"`
	CreatedAt time.Time            `json:"created_at"`
	Partner   MatchPartnerResponse `json:"partner"`
}

type MatchListResponse struct {
	Matches []MatchResponse `json:"matches"`
}
