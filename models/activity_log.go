package models

import (
	"time"

	"github.com/google/uuid"
)

// ActivityLog is a best-effort operational log entry written after the
// primary transaction commits. Inserts that fail are dropped, never
// surfaced to the caller.
type ActivityLog struct {
	ID uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`

	EntityType string    `gorm:"size:50;not null;index" json:"entity_type"` // submittal, extraction, project
	EntityID   uuid.UUID `gorm:"type:uuid;not null;index" json:"entity_id"`
	Action     string    `gorm:"size:50;not null" json:"action"` // created, updated, status_changed, deleted, ingested

	ActorID   string `gorm:"size:255;not null" json:"actor_id"`
	ActorName string `gorm:"size:255" json:"actor_name,omitempty"`
	Detail    string `gorm:"type:text" json:"detail,omitempty"`

	OccurredAt time.Time `gorm:"not null;index" json:"occurred_at"`
	CreatedAt  time.Time `json:"created_at"`
}

// TableName specifies the table name for ActivityLog
func (ActivityLog) TableName() string {
	return "activity_logs"
}
