package models

// User represents a participant registered with the coordinator
type User struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	TeamID    string `json:"team_id,omitempty"`
	Connected bool   `json:"connected"`
}

// Identity is the local device's user, persisted across restarts.
type Identity struct {
	UserID string `json:"user_id"`
	Name   string `json:"name"`
}

// IsZero reports whether no identity has been established yet.
func (i Identity) IsZero() bool {
	return i.UserID == ""
}
