package amqp

import (
	"encoding/json"
	"time"

	"budgetd/internal/core"
)

// AlertCreatedMessage notifies downstream consumers that a new budget alert
// exists. It carries the alert content so consumers can render notifications
// without a database round trip.
type AlertCreatedMessage struct {
	AlertID    int64     `json:"alert_id"`
	UserID     int64     `json:"user_id"`
	CategoryID int64     `json:"category_id,omitempty"`
	Year       int       `json:"year"`
	Month      int       `json:"month"`
	Code       string    `json:"code"`
	Level      string    `json:"level"`
	Message    string    `json:"message"`
	Timestamp  time.Time `json:"timestamp"`
}

// NewAlertCreatedMessage builds a message from a stored alert.
func NewAlertCreatedMessage(alert core.Alert) *AlertCreatedMessage {
	return &AlertCreatedMessage{
		AlertID:    alert.ID,
		UserID:     alert.UserID,
		CategoryID: alert.CategoryID,
		Year:       alert.Year,
		Month:      alert.Month,
		Code:       alert.Code,
		Level:      string(alert.Level),
		Message:    alert.Message,
		Timestamp:  time.Now(),
	}
}

// ToJSON converts the message to JSON bytes.
func (m *AlertCreatedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// AlertCreatedMessageFromJSON parses a message from JSON bytes.
func AlertCreatedMessageFromJSON(data []byte) (*AlertCreatedMessage, error) {
	var msg AlertCreatedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
