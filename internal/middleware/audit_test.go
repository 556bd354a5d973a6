package middleware

import (
	"bufio"
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/photo-portfolio/photo_portfolio/internal/apperr"
	"github.com/photo-portfolio/photo_portfolio/internal/logging"
)

func TestAuditLogsFinalStatus(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.NewWithWriter(&buf, "info")

	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler(logging.Discard())})
	app.Use(RequestID())
	app.Use(Audit(logger))
	app.Get("/ok", func(c *fiber.Ctx) error { return c.SendStatus(http.StatusOK) })
	app.Get("/conflict", func(c *fiber.Ctx) error { return apperr.ErrConflict })

	for _, path := range []string{"/ok", "/conflict"} {
		req := httptest.NewRequest(fiber.MethodGet, path, nil)
		req.Header.Set(requestIDHeader, "req-"+path[1:])
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, "req-"+path[1:], resp.Header.Get(requestIDHeader))
		resp.Body.Close()
	}

	var entries []map[string]any
	scanner := bufio.NewScanner(&buf)
	for scanner.Scan() {
		var entry map[string]any
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &entry))
		entries = append(entries, entry)
	}
	require.Len(t, entries, 2)

	assert.Equal(t, float64(http.StatusOK), entries[0]["status"])
	assert.Equal(t, "req-ok", entries[0]["request_id"])
	assert.Equal(t, "INFO", entries[0]["level"])

	assert.Equal(t, float64(http.StatusConflict), entries[1]["status"])
	assert.Equal(t, "WARN", entries[1]["level"])
}
