// Package notify defines the fire-and-forget notification collaborator.
// Failures are logged and never propagated to the caller.
package notify

import (
	"context"

	"github.com/athlos-ai/athlos/pkg/logger"
)

// Notifier delivers a notification keyed by user and kind.
type Notifier interface {
	Notify(ctx context.Context, userID, kind string, payload map[string]any)
}

// LogNotifier writes notifications to the structured log. It stands in for a
// push/mail transport in single-process deployments.
type LogNotifier struct {
	log logger.Logger
}

// NewLogNotifier creates a log-backed notifier.
func NewLogNotifier() *LogNotifier {
	return &LogNotifier{log: logger.Named("notify")}
}

func (n *LogNotifier) Notify(ctx context.Context, userID, kind string, payload map[string]any) {
	n.log.Info(ctx, "notification",
		logger.String("userID", userID),
		logger.String("kind", kind),
		logger.Any("payload", payload),
	)
}

// Recorder captures notifications for assertions in tests.
type Recorder struct {
	Sent []Sent
}

// Sent is one captured notification.
type Sent struct {
	UserID  string
	Kind    string
	Payload map[string]any
}

func (r *Recorder) Notify(ctx context.Context, userID, kind string, payload map[string]any) {
	r.Sent = append(r.Sent, Sent{UserID: userID, Kind: kind, Payload: payload})
}
