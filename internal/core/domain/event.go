package domain

import "time"

// AuthEventKind classifies an entry of the authentication audit trail.
type AuthEventKind string

const (
	EventSignup       AuthEventKind = "signup"
	EventLogin        AuthEventKind = "login"
	EventLoginFailed  AuthEventKind = "login_failed"
	EventLocked       AuthEventKind = "account_locked"
	EventUnlocked     AuthEventKind = "account_unlocked"
	EventAdminGranted AuthEventKind = "admin_granted"
	EventAdminRevoked AuthEventKind = "admin_revoked"
)

// AuthEvent records something that happened to an account.
// UserID is empty for failed logins against unknown emails.
type AuthEvent struct {
	UserID   string        `json:"userId,omitempty"`
	Email    string        `json:"email,omitempty"`
	Kind     AuthEventKind `json:"kind"`
	ActorID  string        `json:"actorId,omitempty"`
	RemoteIP string        `json:"remoteIp,omitempty"`
	At       time.Time     `json:"at"`
}

// ShardKey is the value used to keep one account's events ordered.
func (e AuthEvent) ShardKey() string {
	if e.UserID != "" {
		return e.UserID
	}
	return e.Email
}
