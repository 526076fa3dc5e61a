package handler

import (
	"audittracker/internal/middleware"
	"audittracker/internal/model"
	"audittracker/internal/policy"
	"audittracker/internal/service"

	"github.com/gin-gonic/gin"
)

type FindingHandler struct {
	findingService service.FindingService
	findings       *CRUDHandler[model.Finding, service.CreateFindingRequest, service.UpdateFindingRequest]
	evidence       attachmentRoutes
	guard          *middleware.Guard
}

func NewFindingHandler(findingService service.FindingService, attachmentService service.AttachmentService, guard *middleware.Guard) *FindingHandler {
	return &FindingHandler{
		findingService: findingService,
		findings:       NewCRUDHandler[model.Finding, service.CreateFindingRequest, service.UpdateFindingRequest](findingService, guard, "/findings", policy.Findings),
		evidence:       attachmentRoutes{svc: attachmentService, ownerType: model.AttachmentEntityFinding, param: "evidenceId"},
		guard:          guard,
	}
}

func (h *FindingHandler) RegisterRoutes(router *gin.RouterGroup) {
	findings := h.findings.RegisterRoutes(router)
	findings.POST("/:id/close", h.guard.Require(policy.FindingsClose), h.CloseFinding)
	findings.POST("/:id/reopen", h.guard.Require(policy.FindingsReopen), h.ReopenFinding)
	findings.GET("/:id/evidence", h.guard.Require(policy.For(policy.Findings, policy.VerbView)), h.ListEvidence)
	findings.POST("/:id/evidence", h.guard.Require(policy.EvidenceUpload), h.UploadEvidence)
	findings.DELETE("/:id/evidence/:evidenceId", h.guard.Require(policy.EvidenceDelete), h.DeleteEvidence)
}

// CloseFinding moves an open finding to closed
// @Summary      Close finding
// @Tags         findings
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                       true   "Finding ID"
// @Param        payload  body      service.CloseFindingRequest  false  "Closure remarks"
// @Success      200      {object}  response.Response{data=model.Finding}
// @Failure      400      {object}  response.Response
// @Failure      403      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Router       /api/findings/{id}/close [post]
func (h *FindingHandler) CloseFinding(c *gin.Context) {
	caller, valid := actor(c)
	if !valid {
		return
	}
	id, valid := pathID(c, "id")
	if !valid {
		return
	}
	var req service.CloseFindingRequest
	if !bindOptionalJSON(c, &req) {
		return
	}

	finding, err := h.findingService.Close(c.Request.Context(), caller, id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, finding)
}

// ReopenFinding moves a closed finding back to open
// @Summary      Reopen finding
// @Tags         findings
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                        true   "Finding ID"
// @Param        payload  body      service.ReopenFindingRequest  false  "Reason"
// @Success      200      {object}  response.Response{data=model.Finding}
// @Failure      400      {object}  response.Response
// @Failure      403      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Router       /api/findings/{id}/reopen [post]
func (h *FindingHandler) ReopenFinding(c *gin.Context) {
	caller, valid := actor(c)
	if !valid {
		return
	}
	id, valid := pathID(c, "id")
	if !valid {
		return
	}
	var req service.ReopenFindingRequest
	if !bindOptionalJSON(c, &req) {
		return
	}

	finding, err := h.findingService.Reopen(c.Request.Context(), caller, id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, finding)
}

// ListEvidence returns the evidence files of a finding
// @Summary      List finding evidence
// @Tags         findings
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Finding ID"
// @Success      200  {object}  response.Response{data=[]model.Attachment}
// @Failure      404  {object}  response.Response
// @Router       /api/findings/{id}/evidence [get]
func (h *FindingHandler) ListEvidence(c *gin.Context) { h.evidence.list(c) }

// UploadEvidence stores an evidence file against a finding
// @Summary      Upload finding evidence
// @Tags         findings
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string  true  "Finding ID"
// @Param        file  formData  file    true  "Evidence file"
// @Success      201   {object}  response.Response{data=model.Attachment}
// @Failure      400   {object}  response.Response
// @Failure      404   {object}  response.Response
// @Router       /api/findings/{id}/evidence [post]
func (h *FindingHandler) UploadEvidence(c *gin.Context) { h.evidence.upload(c) }

// DeleteEvidence removes the evidence row, then best-effort its file
// @Summary      Delete finding evidence
// @Tags         findings
// @Produce      json
// @Security     BearerAuth
// @Param        id          path      string  true  "Finding ID"
// @Param        evidenceId  path      string  true  "Evidence ID"
// @Success      200         {object}  response.Response
// @Failure      404         {object}  response.Response
// @Router       /api/findings/{id}/evidence/{evidenceId} [delete]
func (h *FindingHandler) DeleteEvidence(c *gin.Context) { h.evidence.remove(c) }
