package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"audittracker/internal/apperror"
	"audittracker/internal/model"
	"audittracker/internal/websocket"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type attachmentFixture struct {
	svc      AttachmentService
	repo     *fakeAttachments
	files    *fakeFiles
	events   *fakePublisher
	finding  *model.Finding
	findings *memRepo[model.Finding]
}

func newAttachmentFixture(maxBytes int64) *attachmentFixture {
	f := &attachmentFixture{
		repo:     newFakeAttachments(),
		files:    newFakeFiles(),
		events:   &fakePublisher{},
		findings: newMemRepo[model.Finding](),
	}
	f.finding = f.findings.put(&model.Finding{Description: "x", Status: model.FindingStatusOpen})
	f.svc = NewAttachmentService(f.repo, f.findings, newMemRepo[model.Audit](), f.files, &fakeTx{}, &fakeActivity{}, f.events, maxBytes)
	return f
}

func (f *attachmentFixture) upload(t *testing.T) *model.Attachment {
	t.Helper()
	att, err := f.svc.Upload(context.Background(), admin, model.AttachmentEntityFinding, f.finding.ID, UploadInput{
		FileName:    `C:\photos\evidence.jpg`,
		ContentType: "image/jpeg",
		Size:        5,
		Content:     strings.NewReader("jpeg!"),
	})
	require.NoError(t, err)
	return att
}

func TestAttachment_Upload(t *testing.T) {
	f := newAttachmentFixture(1024)
	att := f.upload(t)

	assert.Equal(t, "evidence.jpg", att.FileName)
	assert.Equal(t, int64(5), att.Size)
	assert.True(t, strings.HasPrefix(att.FilePath, "findings/"+f.finding.ID.String()+"/"))
	assert.Equal(t, "jpeg!", f.files.saved[att.FilePath])

	list, err := f.svc.List(context.Background(), model.AttachmentEntityFinding, f.finding.ID)
	require.NoError(t, err)
	assert.Len(t, list, 1)
	assert.Equal(t, []string{websocket.EventEvidenceAdded}, f.events.names())
}

func TestAttachment_UploadTooLarge(t *testing.T) {
	f := newAttachmentFixture(4)
	_, err := f.svc.Upload(context.Background(), admin, model.AttachmentEntityFinding, f.finding.ID, UploadInput{
		FileName: "big.bin",
		Size:     -1,
		Content:  strings.NewReader("0123456789"),
	})
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))
	assert.Empty(t, f.files.saved)
	assert.Len(t, f.files.removed, 1)
}

func TestAttachment_UploadUnknownOwner(t *testing.T) {
	f := newAttachmentFixture(1024)
	_, err := f.svc.Upload(context.Background(), admin, model.AttachmentEntityFinding, uuid.New(), UploadInput{FileName: "a.txt", Content: strings.NewReader("a")})
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))
}

func TestAttachment_DeleteSurvivesMissingFile(t *testing.T) {
	f := newAttachmentFixture(1024)
	att := f.upload(t)
	f.files.removeErr = errors.New("remove findings/x: no such file or directory")

	err := f.svc.Delete(context.Background(), admin, model.AttachmentEntityFinding, f.finding.ID, att.ID)
	require.NoError(t, err)

	_, err = f.repo.FindByID(context.Background(), att.ID)
	assert.Error(t, err, "row must be gone even though the file removal failed")
	assert.Equal(t, []string{att.FilePath}, f.files.removed)
	assert.Contains(t, f.events.names(), websocket.EventEvidenceDeleted)
}

func TestAttachment_DeleteChecksOwner(t *testing.T) {
	f := newAttachmentFixture(1024)
	att := f.upload(t)

	err := f.svc.Delete(context.Background(), admin, model.AttachmentEntityFinding, uuid.New(), att.ID)
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))

	err = f.svc.Delete(context.Background(), admin, model.AttachmentEntityAudit, f.finding.ID, att.ID)
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))

	_, err = f.repo.FindByID(context.Background(), att.ID)
	assert.NoError(t, err)
}

func TestAttachment_DeleteTwice(t *testing.T) {
	f := newAttachmentFixture(1024)
	att := f.upload(t)
	ctx := context.Background()

	require.NoError(t, f.svc.Delete(ctx, admin, model.AttachmentEntityFinding, f.finding.ID, att.ID))
	err := f.svc.Delete(ctx, admin, model.AttachmentEntityFinding, f.finding.ID, att.ID)
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))
}
