package model

import (
	"github.com/google/uuid"
)

const (
	AttachmentEntityFinding = "finding"
	AttachmentEntityAudit   = "audit"
)

// Attachment is a file stored outside the database. Rows are removed physically,
// together with their file.
type Attachment struct {
	Base
	EntityType  string     `gorm:"type:varchar(20);not null;index:idx_attachment_owner" json:"entity_type"`
	EntityID    uuid.UUID  `gorm:"type:uuid;not null;index:idx_attachment_owner" json:"entity_id"`
	FileName    string     `gorm:"type:varchar(255);not null" json:"file_name"`
	FilePath    string     `gorm:"type:varchar(500);not null" json:"file_path"` // relative to the upload root
	ContentType string     `gorm:"type:varchar(100)" json:"content_type"`
	Size        int64      `gorm:"not null;default:0" json:"size"`
	UploadedBy  *uuid.UUID `gorm:"type:uuid" json:"uploaded_by"`
}
