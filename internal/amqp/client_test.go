package amqp

import (
	"testing"
	"time"

	"budgetd/internal/core"
)

func TestNewAlertCreatedMessage(t *testing.T) {
	alert := core.Alert{
		ID:         42,
		UserID:     7,
		CategoryID: 3,
		Year:       2026,
		Month:      9,
		Code:       "cat-3-80-2026-9",
		Level:      core.LevelWarning,
		Message:    "Groceries reached 80% of the monthly limit.",
	}

	msg := NewAlertCreatedMessage(alert)

	if msg.AlertID != alert.ID {
		t.Errorf("AlertID = %v, want %v", msg.AlertID, alert.ID)
	}
	if msg.UserID != alert.UserID {
		t.Errorf("UserID = %v, want %v", msg.UserID, alert.UserID)
	}
	if msg.Code != alert.Code {
		t.Errorf("Code = %v, want %v", msg.Code, alert.Code)
	}
	if msg.Level != string(core.LevelWarning) {
		t.Errorf("Level = %v, want %v", msg.Level, core.LevelWarning)
	}
	if msg.Timestamp.IsZero() {
		t.Error("Timestamp should not be zero")
	}
	if time.Since(msg.Timestamp) > time.Second {
		t.Error("Timestamp should be recent")
	}
}

func TestAlertCreatedMessage_JSON(t *testing.T) {
	timestamp := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	msg := &AlertCreatedMessage{
		AlertID:   42,
		UserID:    7,
		Year:      2026,
		Month:     9,
		Code:      "pace-2026-9",
		Level:     "alert",
		Message:   "Overall spending pace is projected to exceed the budget.",
		Timestamp: timestamp,
	}

	jsonBytes, err := msg.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON() error = %v", err)
	}

	parsed, err := AlertCreatedMessageFromJSON(jsonBytes)
	if err != nil {
		t.Fatalf("AlertCreatedMessageFromJSON() error = %v", err)
	}

	if parsed.AlertID != msg.AlertID {
		t.Errorf("Parsed AlertID = %v, want %v", parsed.AlertID, msg.AlertID)
	}
	if parsed.Code != msg.Code {
		t.Errorf("Parsed Code = %v, want %v", parsed.Code, msg.Code)
	}
	if parsed.CategoryID != 0 {
		t.Errorf("Parsed CategoryID = %v, want 0 for a pacing alert", parsed.CategoryID)
	}
	if !parsed.Timestamp.Equal(msg.Timestamp) {
		t.Errorf("Parsed Timestamp = %v, want %v", parsed.Timestamp, msg.Timestamp)
	}
}

func TestAlertCreatedMessage_InvalidJSON(t *testing.T) {
	invalidJSON := []byte(`{"alert_id": "not_a_number"}`)

	_, err := AlertCreatedMessageFromJSON(invalidJSON)
	if err == nil {
		t.Error("AlertCreatedMessageFromJSON() should fail with invalid JSON")
	}
}
