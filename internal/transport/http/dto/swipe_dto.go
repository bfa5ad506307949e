package dto

type SwipeRequest struct {
	TargetID int64  `json:"target_id"`
	Action   string `json:"action"`
}

type SwipeResponse struct {
	OK           bool   `json:"ok"`
	Action       string `json:"action"`
	Repeated     bool   `json:"repeated,omitempty"`
	Matched      bool   `json:"matched"`
	MatchCreated bool   `json:"match_created"`
	MatchID      int64  `json:"match_id,omitempty"`
}
