package events

import (
	"encoding/json"
	"time"
)

// Action names the mutation that produced an event.
type Action string

const (
	ActionCreated Action = "created"
	ActionUpdated Action = "updated"
	ActionDeleted Action = "deleted"
)

// SpendingEvent is published after every successful spending mutation so
// downstream consumers (exporters, recommendation jobs) can react
// without polling the API.
type SpendingEvent struct {
	Action     Action    `json:"action"`
	SpendingID string    `json:"spending_id"`
	UserID     string    `json:"user_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

// NewSpendingEvent builds an event stamped with the current time.
func NewSpendingEvent(action Action, spendingID, userID string) SpendingEvent {
	return SpendingEvent{
		Action:     action,
		SpendingID: spendingID,
		UserID:     userID,
		OccurredAt: time.Now().UTC(),
	}
}

// ToJSON serializes the event for the wire.
func (e SpendingEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}
