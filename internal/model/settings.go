package model

import (
	"time"
)

// SettingsID is the primary key of the only settings row.
const SettingsID = 1

// Settings is the company-wide configuration singleton.
type Settings struct {
	ID                    int       `gorm:"primaryKey;autoIncrement:false" json:"-"`
	CompanyName           string    `gorm:"type:varchar(255)" json:"company_name"`
	Address               string    `gorm:"type:text" json:"address"`
	Email                 string    `gorm:"type:varchar(255)" json:"email"`
	Phone                 string    `gorm:"type:varchar(50)" json:"phone"`
	LogoPath              string    `gorm:"type:varchar(500)" json:"logo_path"`
	DefaultFindingDueDays int       `gorm:"not null;default:30" json:"default_finding_due_days"`
	UpdatedAt             time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
