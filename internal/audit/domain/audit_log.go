package domain

import "time"

// AuditLog is one recorded auth event (login, logout, supersession).
type AuditLog struct {
	ID        string
	UserID    int64 // 0 when the account could not be resolved (e.g. unknown username)
	Username  string
	Action    string
	Resource  string
	IP        string
	Metadata  string // JSON; empty when there is none
	CreatedAt time.Time
}
