package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/photo-portfolio/photo_portfolio/internal/logging"
)

func TestLoggerNotifierMasksDestination(t *testing.T) {
	var buf bytes.Buffer
	n := NewLoggerNotifier(logging.NewWithWriter(&buf, "info"))

	err := n.Send(context.Background(), Message{Kind: KindAccountRegistered, Destination: "alice@example.com", Body: "welcome alice"})
	require.NoError(t, err)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "notification", entry["msg"])
	assert.Equal(t, KindAccountRegistered, entry["kind"])
	assert.Equal(t, "a***@example.com", entry["destination"])
	assert.NotContains(t, buf.String(), "alice@example.com")
}

func TestNilNotifierIsNoop(t *testing.T) {
	var n *LoggerNotifier
	assert.NoError(t, n.Send(context.Background(), Message{Kind: KindAdminProvisioned}))
}

func TestMaskEmail(t *testing.T) {
	assert.Equal(t, "", maskEmail(""))
	assert.Equal(t, "***", maskEmail("no-at-sign"))
	assert.Equal(t, "@example.com", maskEmail("@example.com"))
	assert.Equal(t, "b***@x.io", maskEmail("bob@x.io"))
}
