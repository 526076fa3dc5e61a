package model

// AuditParty is the body on whose behalf an audit is performed (flag state, class, owner...).
type AuditParty struct {
	Base
	Name        string `gorm:"type:varchar(255);not null" json:"name"`
	Description string `gorm:"type:text" json:"description"`
	IsActive    bool   `gorm:"not null;default:true" json:"is_active"`
	SoftDelete
}

// AuditType classifies audits (ISM, ISPS, MLC...).
type AuditType struct {
	Base
	Name        string `gorm:"type:varchar(255);not null" json:"name"`
	Code        string `gorm:"type:varchar(50);index" json:"code"`
	Description string `gorm:"type:text" json:"description"`
	IsActive    bool   `gorm:"not null;default:true" json:"is_active"`
	SoftDelete
}
