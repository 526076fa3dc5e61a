package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	AuditStatusPlanned    = "planned"
	AuditStatusInProgress = "in_progress"
	AuditStatusCompleted  = "completed"
	AuditStatusCancelled  = "cancelled"
)

// Audit is a single inspection of a vessel.
type Audit struct {
	Base
	ReferenceNo    string        `gorm:"type:varchar(100);index" json:"reference_no"`
	VesselID       uuid.UUID     `gorm:"type:uuid;not null;index" json:"vessel_id"`
	Vessel         *Vessel       `gorm:"foreignKey:VesselID" json:"vessel,omitempty"`
	AuditTypeID    uuid.UUID     `gorm:"type:uuid;not null;index" json:"audit_type_id"`
	AuditType      *AuditType    `gorm:"foreignKey:AuditTypeID" json:"audit_type,omitempty"`
	AuditPartyID   uuid.UUID     `gorm:"type:uuid;not null;index" json:"audit_party_id"`
	AuditParty     *AuditParty   `gorm:"foreignKey:AuditPartyID" json:"audit_party,omitempty"`
	AuditCompanyID *uuid.UUID    `gorm:"type:uuid;index" json:"audit_company_id"`
	AuditCompany   *AuditCompany `gorm:"foreignKey:AuditCompanyID" json:"audit_company,omitempty"`
	AuditorID      *uuid.UUID    `gorm:"type:uuid;index" json:"auditor_id"`
	Auditor        *Auditor      `gorm:"foreignKey:AuditorID" json:"auditor,omitempty"`
	Status         string        `gorm:"type:varchar(20);not null;default:'planned';index" json:"status"`
	StartDate      time.Time     `gorm:"type:date;not null" json:"start_date"`
	EndDate        *time.Time    `gorm:"type:date" json:"end_date"`
	Location       string        `gorm:"type:varchar(255)" json:"location"`
	Remarks        string        `gorm:"type:text" json:"remarks"`
	CreatedBy      *uuid.UUID    `gorm:"type:uuid" json:"created_by"`
	SoftDelete
}
