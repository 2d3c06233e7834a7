package runs

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// EventLog is the idempotency ledger for inbound events, keyed by the same
// composite event key as dataset updates. A row with a nil ProcessedAt was
// registered but not fully processed; at-least-once redelivery will retry it.
type EventLog struct {
	EventKey     string         `gorm:"column:event_key;primaryKey" json:"event_key"`
	EventType    string         `gorm:"column:event_type;not null" json:"event_type"`
	EventPayload datatypes.JSON `gorm:"column:event_payload;type:jsonb" json:"event_payload"`
	ProcessedAt  *time.Time     `gorm:"column:processed_at" json:"processed_at,omitempty"`
	RunID        *uuid.UUID     `gorm:"type:uuid;column:run_id" json:"run_id,omitempty"`
	CreatedAt    time.Time      `gorm:"not null;default:now()" json:"created_at"`
}

func (EventLog) TableName() string { return "event_log" }
