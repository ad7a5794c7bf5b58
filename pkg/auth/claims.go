package auth

import "github.com/golang-jwt/jwt/v5"

// AdminTokenPayload captures the data available when minting an admin session token.
type AdminTokenPayload struct {
	Username string
	// JTI doubles as the session store key; left empty a new one is generated.
	JTI string
}

// AdminClaims is the typed JWT carried in the admin_session cookie.
type AdminClaims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}
