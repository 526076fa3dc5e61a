package repository

import (
	"context"

	"audittracker/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AttachmentRepository stores attachment metadata. Attachments are deleted physically.
type AttachmentRepository interface {
	Create(ctx context.Context, a *model.Attachment) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Attachment, error)
	ListByOwner(ctx context.Context, entityType string, entityID uuid.UUID) ([]model.Attachment, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type attachmentRepository struct {
	db *gorm.DB
}

func NewAttachmentRepository(db *gorm.DB) AttachmentRepository {
	return &attachmentRepository{db: db}
}

func (r *attachmentRepository) Create(ctx context.Context, a *model.Attachment) error {
	return Conn(ctx, r.db).Create(a).Error
}

func (r *attachmentRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Attachment, error) {
	var a model.Attachment
	if err := Conn(ctx, r.db).First(&a, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *attachmentRepository) ListByOwner(ctx context.Context, entityType string, entityID uuid.UUID) ([]model.Attachment, error) {
	items := make([]model.Attachment, 0)
	err := Conn(ctx, r.db).
		Where("entity_type = ? AND entity_id = ?", entityType, entityID).
		Order("created_at ASC").
		Find(&items).Error
	return items, err
}

// Delete removes the row; gorm.ErrRecordNotFound when nothing was deleted.
func (r *attachmentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := Conn(ctx, r.db).Where("id = ?", id).Delete(&model.Attachment{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
