package notification

import (
	"context"
	"log/slog"
)

const (
	// KindAccountRegistered is sent after a user account is created.
	KindAccountRegistered = "account_registered"
	// KindAdminProvisioned is sent when the bootstrap admin account is created.
	KindAdminProvisioned = "admin_provisioned"
)

// Message describes a notification payload.
type Message struct {
	Kind        string
	Destination string
	Body        string
}

// Notifier delivers notifications to downstream systems.
type Notifier interface {
	Send(ctx context.Context, message Message) error
}

// LoggerNotifier writes notifications to the structured logger. The
// destination is never logged in full.
type LoggerNotifier struct {
	logger *slog.Logger
}

// NewLoggerNotifier constructs a logging notifier.
func NewLoggerNotifier(logger *slog.Logger) *LoggerNotifier {
	return &LoggerNotifier{logger: logger}
}

// Send writes the message to the structured logger.
func (n *LoggerNotifier) Send(_ context.Context, message Message) error {
	if n == nil || n.logger == nil {
		return nil
	}
	n.logger.Info("notification",
		"kind", message.Kind,
		"destination", maskEmail(message.Destination),
		"body", message.Body,
	)
	return nil
}

// maskEmail keeps the first character of the local part and the domain.
func maskEmail(addr string) string {
	for i := 0; i < len(addr); i++ {
		if addr[i] == '@' {
			if i == 0 {
				return addr
			}
			return addr[:1] + "***" + addr[i:]
		}
	}
	if addr == "" {
		return ""
	}
	return "***"
}
