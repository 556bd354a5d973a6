package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/photo-portfolio/photo_portfolio/internal/apperr"
	"github.com/photo-portfolio/photo_portfolio/internal/auth"
	"github.com/photo-portfolio/photo_portfolio/internal/identity"
	"github.com/photo-portfolio/photo_portfolio/internal/logging"
)

type stubVerifier map[string]auth.Principal

func (s stubVerifier) Verify(_ context.Context, token string) (auth.Principal, error) {
	p, ok := s[token]
	if !ok {
		return auth.Principal{}, apperr.ErrUnauthenticated
	}
	return p, nil
}

func newAuthApp() *fiber.App {
	verifier := stubVerifier{
		"user-token":  {SubjectID: "u1", Role: identity.RoleUser},
		"admin-token": {SubjectID: "a1", Role: identity.RoleAdmin},
	}
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler(logging.Discard())})
	protected := app.Group("", Authenticate(verifier))
	protected.Get("/whoami", func(c *fiber.Ctx) error {
		p, _ := auth.PrincipalFrom(c)
		return c.JSON(fiber.Map{"sub": p.SubjectID, "role": p.Role})
	})
	protected.Get("/admin", RequireRole(identity.RoleAdmin), func(c *fiber.Ctx) error {
		return c.SendStatus(http.StatusNoContent)
	})
	return app
}

func doGet(t *testing.T, app *fiber.App, path, authz string) (*http.Response, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(fiber.MethodGet, path, nil)
	if authz != "" {
		req.Header.Set(fiber.HeaderAuthorization, authz)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	var body map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&body)
	return resp, body
}

func TestAuthenticate(t *testing.T) {
	app := newAuthApp()

	tests := []struct {
		name       string
		authz      string
		wantStatus int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic dXNlcjpwYXNz", http.StatusUnauthorized},
		{"unknown token", "Bearer nope", http.StatusUnauthorized},
		{"valid token", "Bearer user-token", http.StatusOK},
		{"lowercase scheme", "bearer user-token", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := doGet(t, app, "/whoami", tt.authz)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			if tt.wantStatus == http.StatusUnauthorized {
				assert.Equal(t, "unauthenticated", body["error"])
				assert.Equal(t, "authentication required", body["message"])
			} else {
				assert.Equal(t, "u1", body["sub"])
			}
		})
	}
}

func TestRequireRole(t *testing.T) {
	app := newAuthApp()

	resp, body := doGet(t, app, "/admin", "Bearer user-token")
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "forbidden", body["error"])

	resp, _ = doGet(t, app, "/admin", "Bearer admin-token")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, _ = doGet(t, app, "/admin", "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
