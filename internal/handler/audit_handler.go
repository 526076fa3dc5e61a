package handler

import (
	"audittracker/internal/middleware"
	"audittracker/internal/model"
	"audittracker/internal/policy"
	"audittracker/internal/service"

	"github.com/gin-gonic/gin"
)

type AuditHandler struct {
	audits      *CRUDHandler[model.Audit, service.CreateAuditRequest, service.UpdateAuditRequest]
	attachments attachmentRoutes
	guard       *middleware.Guard
}

func NewAuditHandler(auditService service.AuditService, attachmentService service.AttachmentService, guard *middleware.Guard) *AuditHandler {
	return &AuditHandler{
		audits:      NewCRUDHandler(auditService, guard, "/audits", policy.Audits),
		attachments: attachmentRoutes{svc: attachmentService, ownerType: model.AttachmentEntityAudit, param: "attachmentId"},
		guard:       guard,
	}
}

func (h *AuditHandler) RegisterRoutes(router *gin.RouterGroup) {
	audits := h.audits.RegisterRoutes(router)
	audits.GET("/:id/attachments", h.guard.Require(policy.For(policy.Audits, policy.VerbView)), h.ListAttachments)
	audits.POST("/:id/attachments", h.guard.Require(policy.EvidenceUpload), h.UploadAttachment)
	audits.DELETE("/:id/attachments/:attachmentId", h.guard.Require(policy.EvidenceDelete), h.DeleteAttachment)
}

// ListAttachments returns the files attached to an audit
// @Summary      List audit attachments
// @Tags         audits
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Audit ID"
// @Success      200  {object}  response.Response{data=[]model.Attachment}
// @Failure      404  {object}  response.Response
// @Router       /api/audits/{id}/attachments [get]
func (h *AuditHandler) ListAttachments(c *gin.Context) { h.attachments.list(c) }

// UploadAttachment stores a file against an audit
// @Summary      Upload audit attachment
// @Tags         audits
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string  true  "Audit ID"
// @Param        file  formData  file    true  "File to upload"
// @Success      201   {object}  response.Response{data=model.Attachment}
// @Failure      400   {object}  response.Response
// @Failure      404   {object}  response.Response
// @Router       /api/audits/{id}/attachments [post]
func (h *AuditHandler) UploadAttachment(c *gin.Context) { h.attachments.upload(c) }

// DeleteAttachment removes an attachment row and then its file
// @Summary      Delete audit attachment
// @Tags         audits
// @Produce      json
// @Security     BearerAuth
// @Param        id            path      string  true  "Audit ID"
// @Param        attachmentId  path      string  true  "Attachment ID"
// @Success      200           {object}  response.Response
// @Failure      404           {object}  response.Response
// @Router       /api/audits/{id}/attachments/{attachmentId} [delete]
func (h *AuditHandler) DeleteAttachment(c *gin.Context) { h.attachments.remove(c) }
