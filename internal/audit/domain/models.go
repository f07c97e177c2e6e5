package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

type ActorType string

const (
	ActorTypeUser   ActorType = "user"
	ActorTypeSystem ActorType = "system"
)

// AuditLog is one operator action. Rows are only ever inserted.
type AuditLog struct {
	ID         snowflake.ID      `gorm:"primaryKey;autoIncrement:false" json:"id,string"`
	ActorType  string            `gorm:"size:32;not null;index" json:"actor_type"`
	ActorID    *string           `gorm:"size:128" json:"actor_id,omitempty"`
	Action     string            `gorm:"size:64;not null;index" json:"action"`
	TargetType string            `gorm:"size:64;not null;index:idx_audit_target" json:"target_type"`
	TargetID   *string           `gorm:"size:64;index:idx_audit_target" json:"target_id,omitempty"`
	Metadata   datatypes.JSONMap `json:"metadata,omitempty"`
	IPAddress  *string           `gorm:"size:64" json:"ip_address,omitempty"`
	UserAgent  *string           `gorm:"size:255" json:"user_agent,omitempty"`
	CreatedAt  time.Time         `gorm:"not null;index" json:"created_at"`
}

func (AuditLog) TableName() string {
	return "audit_logs"
}

type AuditCursor struct {
	ID        snowflake.ID
	CreatedAt time.Time
}

type ListFilter struct {
	Action     string
	TargetType string
	TargetID   string
	ActorID    string
	StartAt    *time.Time
	EndAt      *time.Time
	Cursor     *AuditCursor
	Limit      int
}
