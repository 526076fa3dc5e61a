package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Base carries the columns every table has.
type Base struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// SoftDelete marks a row inactive instead of removing it. GORM excludes rows with a
// non-null deleted_at from default queries; Unscoped() includes them.
type SoftDelete struct {
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at"`
	DeletedBy *uuid.UUID     `gorm:"type:uuid" json:"deleted_by"`
}

// IsDeleted reports whether the row is soft-deleted.
func (s SoftDelete) IsDeleted() bool {
	return s.DeletedAt.Valid
}
