package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// RequestStatus enum constants — display strings match what the frontend renders.
type RequestStatus string

const (
	StatusDraft          RequestStatus = "Draft"
	StatusPendingManager RequestStatus = "Pending Manager Approval"
	StatusPendingFinance RequestStatus = "Pending Finance Approval"
	StatusApproved       RequestStatus = "Approved"
	StatusRejected       RequestStatus = "Rejected"
	StatusEscalated      RequestStatus = "Escalated"
)

var terminalStatuses = map[RequestStatus]bool{
	StatusApproved: true,
	StatusRejected: true,
}

// IsTerminal reports whether no further transitions are permitted from s.
func (s RequestStatus) IsTerminal() bool {
	return terminalStatuses[s]
}

func (s RequestStatus) String() string {
	return string(s)
}

// Priority enum constants
type Priority string

const (
	PriorityLow      Priority = "Low"
	PriorityMedium   Priority = "Medium"
	PriorityHigh     Priority = "High"
	PriorityCritical Priority = "Critical"
)

// WorkflowAction is a decision submitted against a request.
type WorkflowAction string

const (
	ActionApprove  WorkflowAction = "APPROVE"
	ActionReject   WorkflowAction = "REJECT"
	ActionEscalate WorkflowAction = "ESCALATE"
)

// Request represents an expenditure requisition moving through the approval pipeline.
// Invariant: Status is terminal (Approved/Rejected) if and only if
// CurrentAssigneeRole is nil; Escalated always routes to the Admin role.
type Request struct {
	ID          string          `gorm:"type:varchar(40);primaryKey" json:"id"`
	Title       string          `gorm:"type:varchar(255);not null" json:"title"`
	Description string          `gorm:"type:text;not null" json:"description"`
	Type        string          `gorm:"type:varchar(100)" json:"type"`
	Status      RequestStatus   `gorm:"type:varchar(40);not null;index" json:"status"`
	Priority    Priority        `gorm:"type:varchar(20);not null" json:"priority"`
	Amount      decimal.Decimal `gorm:"type:decimal(18,4);default:0" json:"amount"`
	Requester   string          `gorm:"type:varchar(255);not null" json:"requester"`

	// CurrentAssigneeRole is nil once the request reaches a terminal status.
	CurrentAssigneeRole *Role `gorm:"type:varchar(50);index" json:"current_assignee_role"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Comments []Comment `gorm:"foreignKey:RequestID;constraint:OnDelete:CASCADE" json:"comments"`
}

// Assigned reports whether the request currently awaits the given role.
func (r *Request) Assigned(role Role) bool {
	return r.CurrentAssigneeRole != nil && *r.CurrentAssigneeRole == role
}

// Comment is an append-only annotation on a request. Comments never affect
// the request's workflow state.
type Comment struct {
	ID        string    `gorm:"type:varchar(40);primaryKey" json:"id"`
	RequestID string    `gorm:"type:varchar(40);not null;index" json:"request_id"`
	Author    string    `gorm:"type:varchar(255);not null" json:"author"`
	Role      Role      `gorm:"type:varchar(50);not null" json:"role"`
	Text      string    `gorm:"type:text;not null" json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// RolePtr is a convenience for building assignee fields.
func RolePtr(r Role) *Role {
	return &r
}
