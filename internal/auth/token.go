package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/photo-portfolio/photo_portfolio/internal/identity"
)

// Claims is the payload of a session token.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Session is the result of a successful login.
type Session struct {
	Token     string        `json:"token"`
	UserID    string        `json:"userId"`
	Role      identity.Role `json:"role"`
	ExpiresAt time.Time     `json:"expiresAt"`
}

// Principal is the identity a verified token asserts.
type Principal struct {
	SubjectID string
	Role      identity.Role
	TokenID   string
	ExpiresAt time.Time
}
