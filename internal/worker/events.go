package worker

import (
	"context"
	"errors"
	"log/slog"

	"budgetd/internal/amqp"
)

// HandleAlertEvent processes one consumed alert-created event. Delivery is
// currently a structured log line; a push or mail channel would hang off
// this handler.
func HandleAlertEvent(ctx context.Context, msg *amqp.AlertCreatedMessage) error {
	if msg == nil {
		return errors.New("nil alert event")
	}

	slog.InfoContext(ctx, "Alert raised",
		"alert_id", msg.AlertID,
		"user_id", msg.UserID,
		"code", msg.Code,
		"level", msg.Level,
		"year", msg.Year,
		"month", msg.Month,
		"message", msg.Message)
	return nil
}
