package model

import (
	"github.com/google/uuid"
)

// AuditCompany is an external firm that employs auditors.
type AuditCompany struct {
	Base
	Name         string `gorm:"type:varchar(255);uniqueIndex;not null" json:"name"`
	Address      string `gorm:"type:text" json:"address"`
	ContactEmail string `gorm:"type:varchar(255)" json:"contact_email"`
	ContactPhone string `gorm:"type:varchar(50)" json:"contact_phone"`
	IsActive     bool   `gorm:"not null;default:true" json:"is_active"`
	SoftDelete
}

// Auditor belongs to an audit company.
type Auditor struct {
	Base
	Name      string        `gorm:"type:varchar(255);not null" json:"name"`
	Email     string        `gorm:"type:varchar(255)" json:"email"`
	Phone     string        `gorm:"type:varchar(50)" json:"phone"`
	CompanyID uuid.UUID     `gorm:"type:uuid;not null;index" json:"company_id"`
	Company   *AuditCompany `gorm:"foreignKey:CompanyID" json:"company,omitempty"`
	IsActive  bool          `gorm:"not null;default:true" json:"is_active"`
	SoftDelete
}
