package handler

import (
	"audittracker/internal/apperror"
	"audittracker/internal/service"

	"github.com/gin-gonic/gin"
)

// attachmentRoutes serves the files attached to one owner kind (findings or audits).
type attachmentRoutes struct {
	svc       service.AttachmentService
	ownerType string
	param     string // path parameter naming the attachment
}

func (a attachmentRoutes) list(c *gin.Context) {
	ownerID, valid := pathID(c, "id")
	if !valid {
		return
	}
	items, err := a.svc.List(c.Request.Context(), a.ownerType, ownerID)
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, items)
}

// upload reads the multipart field "file".
func (a attachmentRoutes) upload(c *gin.Context) {
	caller, valid := actor(c)
	if !valid {
		return
	}
	ownerID, valid := pathID(c, "id")
	if !valid {
		return
	}
	header, err := c.FormFile("file")
	if err != nil {
		respondError(c, apperror.Validation("file is required", apperror.FieldError{Field: "file", Message: "is required"}))
		return
	}
	file, err := header.Open()
	if err != nil {
		respondError(c, apperror.Internalf(err, "open upload"))
		return
	}
	defer file.Close()

	att, err := a.svc.Upload(c.Request.Context(), caller, a.ownerType, ownerID, service.UploadInput{
		FileName:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Content:     file,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	created(c, att)
}

func (a attachmentRoutes) remove(c *gin.Context) {
	caller, valid := actor(c)
	if !valid {
		return
	}
	ownerID, valid := pathID(c, "id")
	if !valid {
		return
	}
	attachmentID, valid := pathID(c, a.param)
	if !valid {
		return
	}
	if err := a.svc.Delete(c.Request.Context(), caller, a.ownerType, ownerID, attachmentID); err != nil {
		respondError(c, err)
		return
	}
	ok(c, gin.H{"id": attachmentID, "deleted": true})
}
