package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/photo-portfolio/photo_portfolio/internal/apperr"
	"github.com/photo-portfolio/photo_portfolio/internal/config"
	"github.com/photo-portfolio/photo_portfolio/internal/identity"
)

// ErrRevocationDisabled is returned by Revoke when no denylist is configured.
var ErrRevocationDisabled = errors.New("token revocation is not configured")

// Service issues and verifies HS256 session tokens. It keeps no session
// state; the optional denylist only records tokens revoked before expiry.
type Service struct {
	secret   []byte
	issuer   string
	ttl      time.Duration
	denylist Denylist
	now      func() time.Time
}

func NewService(cfg config.Config, denylist Denylist) *Service {
	return &Service{
		secret:   []byte(cfg.JWTSecret),
		issuer:   cfg.AppName,
		ttl:      cfg.TokenTTL,
		denylist: denylist,
		now:      time.Now,
	}
}

// Login issues a session token for an already authenticated user.
func (s *Service) Login(user identity.User) (Session, error) {
	now := s.now()
	claims := Claims{
		Role: string(user.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   user.ID,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return Session{}, fmt.Errorf("sign session token: %w", err)
	}
	return Session{Token: signed, UserID: user.ID, Role: user.Role, ExpiresAt: claims.ExpiresAt.Time}, nil
}

// Verify checks signature, expiry and revocation of token. Every failure is
// reported as apperr.ErrUnauthenticated.
func (s *Service) Verify(ctx context.Context, token string) (Principal, error) {
	if token == "" {
		return Principal{}, unauthenticated(errors.New("missing token"))
	}

	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuer(s.issuer),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return Principal{}, unauthenticated(err)
	}
	if claims.Subject == "" || claims.ID == "" {
		return Principal{}, unauthenticated(errors.New("token lacks subject or id"))
	}

	if s.denylist != nil {
		revoked, err := s.denylist.IsRevoked(ctx, claims.ID)
		if err != nil {
			return Principal{}, unauthenticated(fmt.Errorf("denylist lookup: %w", err))
		}
		if revoked {
			return Principal{}, unauthenticated(errors.New("token revoked"))
		}
	}

	return Principal{
		SubjectID: claims.Subject,
		Role:      identity.Role(claims.Role),
		TokenID:   claims.ID,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

// Revoke denies the principal's token until it would have expired anyway.
func (s *Service) Revoke(ctx context.Context, p Principal) error {
	if s.denylist == nil {
		return ErrRevocationDisabled
	}
	return s.denylist.Revoke(ctx, p.TokenID, p.ExpiresAt)
}

func unauthenticated(cause error) error {
	return fmt.Errorf("%w: %v", apperr.ErrUnauthenticated, cause)
}
