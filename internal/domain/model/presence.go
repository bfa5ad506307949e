package model

import "time"

// PresenceEntry is one live realtime connection of a user. A user may
// hold any number of concurrent entries (multi-device).
type PresenceEntry struct {
	UserID       int64     `json:"user_id"`
	ConnectionID string    `json:"connection_id"`
	ConnectedAt  time.Time `json:"connected_at"`
}
