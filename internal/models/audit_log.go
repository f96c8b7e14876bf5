package models

import (
	"time"

	"gorm.io/datatypes"
)

// AuditLog records who performed an authorization-sensitive action and on what.
type AuditLog struct {
	ID         uint              `gorm:"primaryKey" json:"id"`
	ActorEmail string            `gorm:"size:255;not null;index" json:"actor_email"`
	Action     string            `gorm:"size:64;not null;index" json:"action"`
	EntityType string            `gorm:"size:64;not null" json:"entity_type"`
	EntityKey  string            `gorm:"size:255" json:"entity_key"`
	Metadata   datatypes.JSONMap `gorm:"type:json" json:"metadata"`
	CreatedAt  time.Time         `json:"created_at"`
}
