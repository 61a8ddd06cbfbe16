package domain

import "time"

// Session is the server-side record of one live login. At most one row per
// account has Active set; login deactivates prior rows before inserting the
// new one, so the newest login always wins.
type Session struct {
	ID             int64
	UserID         int64
	Token          string
	Active         bool
	CreatedAt      time.Time
	LastActivityAt time.Time
}
