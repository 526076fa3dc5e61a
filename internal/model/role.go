package model

import (
	"github.com/google/uuid"
)

// Role groups users; the static policy table authorizes by role name.
type Role struct {
	Base
	Name        string       `gorm:"type:varchar(50);uniqueIndex;not null" json:"name"`
	Description string       `gorm:"type:text" json:"description"`
	IsSystem    bool         `gorm:"default:false" json:"is_system"` // built-in roles cannot be deleted
	IsActive    bool         `gorm:"not null;default:true" json:"is_active"`
	Permissions []Permission `gorm:"many2many:role_permissions;" json:"permissions,omitempty"`
	SoftDelete
}

// Permission grants an action on a page of the client application.
type Permission struct {
	Base
	Name        string    `gorm:"type:varchar(100);uniqueIndex;not null" json:"name"` // e.g. "findings.close"
	PageID      uuid.UUID `gorm:"type:uuid;not null;index" json:"page_id"`
	Page        *Page     `gorm:"foreignKey:PageID" json:"page,omitempty"`
	Action      string    `gorm:"type:varchar(50);not null" json:"action"`
	Description string    `gorm:"type:text" json:"description"`
	SoftDelete
}

// Page is a navigable screen of the client application.
type Page struct {
	Base
	Name     string `gorm:"type:varchar(100);not null" json:"name"`
	Route    string `gorm:"type:varchar(255);uniqueIndex;not null" json:"route"`
	IsActive bool   `gorm:"not null;default:true" json:"is_active"`
	SoftDelete
}
