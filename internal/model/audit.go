package model

import "time"

// Audit action constants
const (
	AuditActionAuthorization  = "Authorization"
	AuditActionRejection      = "Rejection"
	AuditActionEscalation     = "Escalation"
	AuditActionRequestCreated = "Request Created"
	AuditActionRoleSwitched   = "Role Switched"
	AuditActionSchemaUpdated  = "Workflow Schema Updated"
)

// AuditEntry records Who, What, and When for one decision or administrative
// event. Entries are immutable once appended; the recorder exposes no update
// or delete.
type AuditEntry struct {
	ID        string    `gorm:"type:varchar(40);primaryKey" json:"id"`
	RequestID string    `gorm:"type:varchar(40);index" json:"request_id,omitempty"` // empty for administrative events
	User      string    `gorm:"type:varchar(255);not null" json:"user"`
	Role      Role      `gorm:"type:varchar(50);not null" json:"role"`
	Action    string    `gorm:"type:varchar(60);not null;index" json:"action"`
	Details   string    `gorm:"type:text" json:"details"`
	Timestamp time.Time `gorm:"index" json:"timestamp"`
}
