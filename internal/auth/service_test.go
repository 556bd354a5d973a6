package auth

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/photo-portfolio/photo_portfolio/internal/apperr"
	"github.com/photo-portfolio/photo_portfolio/internal/config"
	"github.com/photo-portfolio/photo_portfolio/internal/identity"
)

var baseTime = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestService(t *testing.T, denylist Denylist) (*Service, *fakeClock) {
	t.Helper()
	clock := &fakeClock{t: baseTime}
	svc := NewService(config.Config{AppName: "PhotoPortfolio", JWTSecret: "test-secret", TokenTTL: 24 * time.Hour}, denylist)
	svc.now = clock.Now
	return svc, clock
}

func testUser(role identity.Role) identity.User {
	return identity.User{ID: uuid.NewString(), Username: "alice", Email: "alice@example.com", Role: role}
}

func TestLoginVerifyRoundTrip(t *testing.T) {
	svc, _ := newTestService(t, nil)
	user := testUser(identity.RoleUser)

	session, err := svc.Login(user)
	require.NoError(t, err)
	assert.NotEmpty(t, session.Token)
	assert.Equal(t, user.ID, session.UserID)
	assert.Equal(t, identity.RoleUser, session.Role)
	assert.Equal(t, baseTime.Add(24*time.Hour), session.ExpiresAt.UTC())

	p, err := svc.Verify(context.Background(), session.Token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, p.SubjectID)
	assert.Equal(t, identity.RoleUser, p.Role)
	assert.NotEmpty(t, p.TokenID)
}

func TestVerifyExpiryBoundary(t *testing.T) {
	svc, clock := newTestService(t, nil)
	session, err := svc.Login(testUser(identity.RoleAdmin))
	require.NoError(t, err)

	clock.Advance(24*time.Hour - time.Second)
	_, err = svc.Verify(context.Background(), session.Token)
	require.NoError(t, err, "token must be valid just before expiry")

	clock.Advance(time.Second)
	_, err = svc.Verify(context.Background(), session.Token)
	require.ErrorIs(t, err, apperr.ErrUnauthenticated, "token must be rejected at expiry")
}

func TestVerifyRejects(t *testing.T) {
	svc, _ := newTestService(t, nil)
	session, err := svc.Login(testUser(identity.RoleUser))
	require.NoError(t, err)

	other, _ := newTestService(t, nil)
	other.secret = []byte("another-secret")
	foreign, err := other.Login(testUser(identity.RoleUser))
	require.NoError(t, err)

	parts := strings.Split(session.Token, ".")
	tampered := parts[0] + "." + parts[1] + "x." + parts[2]

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{
		Role: "admin",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "PhotoPortfolio",
			Subject:   "attacker",
			ID:        "x",
			ExpiresAt: jwt.NewNumericDate(baseTime.Add(time.Hour)),
		},
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	noExpiry, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{Issuer: "PhotoPortfolio", Subject: "u", ID: "x"},
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	cases := map[string]string{
		"empty":        "",
		"garbage":      "not-a-token",
		"wrong secret": foreign.Token,
		"tampered":     tampered,
		"alg none":     none,
		"missing exp":  noExpiry,
	}
	for name, token := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Verify(context.Background(), token)
			require.ErrorIs(t, err, apperr.ErrUnauthenticated)
		})
	}
}

func TestRevokedTokenRejected(t *testing.T) {
	denylist := NewMemoryDenylist()
	svc, clock := newTestService(t, denylist)
	denylist.now = clock.Now

	session, err := svc.Login(testUser(identity.RoleUser))
	require.NoError(t, err)

	p, err := svc.Verify(context.Background(), session.Token)
	require.NoError(t, err)

	require.NoError(t, svc.Revoke(context.Background(), p))

	_, err = svc.Verify(context.Background(), session.Token)
	require.ErrorIs(t, err, apperr.ErrUnauthenticated)

	// Other sessions of the same user stay valid.
	second, err := svc.Login(testUser(identity.RoleUser))
	require.NoError(t, err)
	_, err = svc.Verify(context.Background(), second.Token)
	require.NoError(t, err)
}

func TestRevokeWithoutDenylist(t *testing.T) {
	svc, _ := newTestService(t, nil)
	err := svc.Revoke(context.Background(), Principal{TokenID: "x", ExpiresAt: baseTime.Add(time.Hour)})
	require.ErrorIs(t, err, ErrRevocationDisabled)
}
