package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	FindingStatusOpen   = "open"
	FindingStatusClosed = "closed"
)

const (
	SeverityLow    = "low"
	SeverityMedium = "medium"
	SeverityHigh   = "high"
)

// Finding is a non-conformity raised during an audit. It starts open and moves
// between open and closed any number of times.
type Finding struct {
	Base
	AuditID          uuid.UUID  `gorm:"type:uuid;not null;index" json:"audit_id"`
	Audit            *Audit     `gorm:"foreignKey:AuditID" json:"audit,omitempty"`
	ReferenceNo      string     `gorm:"type:varchar(100)" json:"reference_no"`
	Category         string     `gorm:"type:varchar(100)" json:"category"`
	Severity         string     `gorm:"type:varchar(20);not null;default:'medium'" json:"severity"`
	Description      string     `gorm:"type:text;not null" json:"description"`
	CorrectiveAction string     `gorm:"type:text" json:"corrective_action"`
	Status           string     `gorm:"type:varchar(20);not null;default:'open';index" json:"status"`
	DueDate          *time.Time `gorm:"type:date" json:"due_date"`
	ClosedAt         *time.Time `json:"closed_at"`
	ClosedBy         *uuid.UUID `gorm:"type:uuid" json:"closed_by"`
	ClosureRemarks   string     `gorm:"type:text" json:"closure_remarks"`
	CreatedBy        *uuid.UUID `gorm:"type:uuid" json:"created_by"`
	SoftDelete
}

// IsOverdue reports whether an open finding is past its due date.
func (f Finding) IsOverdue(now time.Time) bool {
	return f.Status == FindingStatusOpen && f.DueDate != nil && f.DueDate.Before(now)
}
