package service

import (
	"context"
	"io"
	"path"
	"strings"

	"audittracker/internal/apperror"
	"audittracker/internal/model"
	"audittracker/internal/repository"
	"audittracker/internal/websocket"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// FileStore persists attachment content outside the database.
type FileStore interface {
	Save(dir, name string, r io.Reader) (string, int64, error)
	Remove(relPath string) error
}

// UploadInput describes one uploaded file.
type UploadInput struct {
	FileName    string
	ContentType string
	Size        int64
	Content     io.Reader
}

type AttachmentService interface {
	Upload(ctx context.Context, actor Actor, ownerType string, ownerID uuid.UUID, in UploadInput) (*model.Attachment, error)
	List(ctx context.Context, ownerType string, ownerID uuid.UUID) ([]model.Attachment, error)
	Delete(ctx context.Context, actor Actor, ownerType string, ownerID, attachmentID uuid.UUID) error
}

type attachmentService struct {
	repo     repository.AttachmentRepository
	findings repository.SoftDeleteRepository[model.Finding]
	audits   repository.SoftDeleteRepository[model.Audit]
	files    FileStore
	tx       repository.TransactionManager
	activity activityLogger
	events   EventPublisher
	maxBytes int64
}

func NewAttachmentService(repo repository.AttachmentRepository, findings repository.SoftDeleteRepository[model.Finding], audits repository.SoftDeleteRepository[model.Audit], files FileStore, tx repository.TransactionManager, activity repository.ActivityRepository, events EventPublisher, maxBytes int64) AttachmentService {
	return &attachmentService{
		repo:     repo,
		findings: findings,
		audits:   audits,
		files:    files,
		tx:       tx,
		activity: activityLogger{repo: activity},
		events:   publisherOrNop(events),
		maxBytes: maxBytes,
	}
}

func (s *attachmentService) ownerExists(ctx context.Context, ownerType string, ownerID uuid.UUID) error {
	var (
		ok  bool
		err error
	)
	switch ownerType {
	case model.AttachmentEntityFinding:
		ok, err = s.findings.Exists(ctx, ownerID)
	case model.AttachmentEntityAudit:
		ok, err = s.audits.Exists(ctx, ownerID)
	default:
		return apperror.Validation("unsupported attachment owner " + ownerType)
	}
	if err != nil {
		return apperror.Internal(err)
	}
	if !ok {
		return apperror.NotFound(ownerType)
	}
	return nil
}

func (s *attachmentService) Upload(ctx context.Context, actor Actor, ownerType string, ownerID uuid.UUID, in UploadInput) (*model.Attachment, error) {
	if err := s.ownerExists(ctx, ownerType, ownerID); err != nil {
		return nil, err
	}
	name := path.Base(strings.ReplaceAll(strings.TrimSpace(in.FileName), "\\", "/"))
	if name == "" || name == "." || name == "/" {
		return nil, apperror.Validation("request validation failed", apperror.FieldError{Field: "file", Message: "is required"})
	}
	if s.maxBytes > 0 && in.Size > s.maxBytes {
		return nil, apperror.Validation("request validation failed", apperror.FieldError{Field: "file", Message: "exceeds the maximum upload size"})
	}

	content := in.Content
	if s.maxBytes > 0 {
		content = io.LimitReader(in.Content, s.maxBytes+1)
	}
	relPath, size, err := s.files.Save(ownerType+"s/"+ownerID.String(), name, content)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if s.maxBytes > 0 && size > s.maxBytes {
		s.removeFile(ctx, relPath)
		return nil, apperror.Validation("request validation failed", apperror.FieldError{Field: "file", Message: "exceeds the maximum upload size"})
	}

	uploadedBy := actor.UserID
	attachment := &model.Attachment{
		EntityType:  ownerType,
		EntityID:    ownerID,
		FileName:    name,
		FilePath:    relPath,
		ContentType: in.ContentType,
		Size:        size,
		UploadedBy:  &uploadedBy,
	}
	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.repo.Create(txCtx, attachment); err != nil {
			return err
		}
		return s.activity.log(txCtx, actor, model.ActionUpload, ownerType, ownerID, name,
			map[string]interface{}{"attachment_id": attachment.ID, "file_name": name, "size": size})
	})
	if err != nil {
		// the row never became visible, so the file is an orphan
		s.removeFile(ctx, relPath)
		return nil, translate(err, "attachment")
	}

	s.events.Publish(websocket.EventEvidenceAdded, attachment)
	return attachment, nil
}

func (s *attachmentService) List(ctx context.Context, ownerType string, ownerID uuid.UUID) ([]model.Attachment, error) {
	if err := s.ownerExists(ctx, ownerType, ownerID); err != nil {
		return nil, err
	}
	items, err := s.repo.ListByOwner(ctx, ownerType, ownerID)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return items, nil
}

// Delete removes the attachment row first; the database is authoritative. The file is
// then removed best-effort and failures are only logged.
func (s *attachmentService) Delete(ctx context.Context, actor Actor, ownerType string, ownerID, attachmentID uuid.UUID) error {
	attachment, err := s.repo.FindByID(ctx, attachmentID)
	if err != nil {
		return translate(err, "attachment")
	}
	if attachment.EntityType != ownerType || attachment.EntityID != ownerID {
		return apperror.NotFound("attachment")
	}

	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.repo.Delete(txCtx, attachmentID); err != nil {
			return err
		}
		return s.activity.log(txCtx, actor, model.ActionDelete, "attachment", attachmentID, attachment.FileName,
			map[string]interface{}{"entity_type": ownerType, "entity_id": ownerID})
	})
	if err != nil {
		return translate(err, "attachment")
	}

	s.removeFile(ctx, attachment.FilePath)
	s.events.Publish(websocket.EventEvidenceDeleted, attachment)
	return nil
}

func (s *attachmentService) removeFile(ctx context.Context, relPath string) {
	if err := s.files.Remove(relPath); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("file_path", relPath).Msg("failed to remove attachment file")
	}
}
