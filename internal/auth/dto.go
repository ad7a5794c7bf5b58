package auth

import "time"

// Credentials is the validated username/password pair.
type Credentials struct {
	Username string
	Password string
}

// LoginResult carries the signed session token for the admin_session cookie.
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
}

// Identity is the authenticated admin behind a request.
type Identity struct {
	Username  string
	SessionID string
}
