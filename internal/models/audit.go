package models

import (
	"time"

	"gorm.io/datatypes"
)

type AuditAction string

const (
	AuditCreated      AuditAction = "CREATED"
	AuditUpdated      AuditAction = "UPDATED"
	AuditDeleted      AuditAction = "DELETED"
	AuditLogin        AuditAction = "LOGIN"
	AuditLogout       AuditAction = "LOGOUT"
	AuditStatusChange AuditAction = "STATUS_CHANGE"
	AuditAssigned     AuditAction = "ASSIGNED"
)

type AuditEntity string

const (
	AuditEntityUser     AuditEntity = "user"
	AuditEntityQuestion AuditEntity = "question"
	AuditEntityQuiz     AuditEntity = "quiz"
	AuditEntityAttempt  AuditEntity = "attempt"
)

// AuditLog is append-only.
type AuditLog struct {
	ID         string            `json:"id" gorm:"primaryKey;size:36"`
	UserID     *string           `json:"user_id,omitempty" gorm:"size:36;index"`
	Action     AuditAction       `json:"action" gorm:"type:varchar(32);not null;index"`
	EntityType AuditEntity       `json:"entity_type" gorm:"type:varchar(32);not null;index"`
	EntityID   string            `json:"entity_id" gorm:"size:36;index"`
	Details    datatypes.JSONMap `json:"details,omitempty" gorm:"type:jsonb"`
	IPAddress  string            `json:"ip_address" gorm:"size:45"`
	UserAgent  string            `json:"user_agent" gorm:"type:text"`
	CreatedAt  time.Time         `json:"created_at" gorm:"index"`
}

func (AuditLog) TableName() string {
	return "audit_logs"
}
