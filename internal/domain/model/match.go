package model

import "time"

// Match pairs two users after a mutual like. UserAID < UserBID always
// holds so an unordered pair maps to exactly one row.
type Match struct {
	ID        int64     `json:"id"`
	UserAID   int64     `json:"user_a_id"`
	UserBID   int64     `json:"user_b_id"`
	CreatedAt time.Time `json:"created_at"`
}

func (m Match) Includes(userID int64) bool {
	return m.UserAID == userID || m.UserBID == userID
}

func (m Match) PartnerOf(userID int64) int64 {
	if m.UserAID == userID {
		return m.UserBID
	}
	return m.UserAID
}
