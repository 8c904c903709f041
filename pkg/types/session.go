package types

import "time"

// Session carries the administrator capability through mutation calls.
// The zero value is an anonymous, non-admin session.
type Session struct {
	ID        string
	User      string
	Admin     bool
	StartedAt time.Time
}

// IsAdmin reports whether the session may mutate the store.
func (s Session) IsAdmin() bool {
	return s.Admin
}
