package notifications

import (
	"context"
	"log"
)

// Notifier delivers user-facing messages (email/SMS behind a provider).
// Callers treat delivery as fire-and-forget: errors are logged, never
// propagated into request handling.
type Notifier interface {
	Send(ctx context.Context, userID, subject, body string) error
}

type LogNotifier struct{}

func NewLogNotifier() *LogNotifier {
	return &LogNotifier{}
}

func (n *LogNotifier) Send(_ context.Context, userID, subject, body string) error {
	log.Printf("notify user %s: %s - %s", userID, subject, body)
	return nil
}
