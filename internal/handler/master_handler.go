package handler

import (
	"audittracker/internal/middleware"
	"audittracker/internal/policy"
	"audittracker/internal/service"

	"github.com/gin-gonic/gin"
)

// MasterDataServices groups the reference-data services that only need the CRUD surface.
type MasterDataServices struct {
	Vessels        service.VesselService
	AuditCompanies service.AuditCompanyService
	AuditParties   service.AuditPartyService
	AuditTypes     service.AuditTypeService
	Auditors       service.AuditorService
}

type routeRegistrar interface {
	RegisterRoutes(router *gin.RouterGroup) *gin.RouterGroup
}

type MasterDataHandler struct {
	handlers []routeRegistrar
}

func NewMasterDataHandler(s MasterDataServices, guard *middleware.Guard) *MasterDataHandler {
	return &MasterDataHandler{handlers: []routeRegistrar{
		NewCRUDHandler(s.Vessels, guard, "/vessels", policy.Vessels),
		NewCRUDHandler(s.AuditCompanies, guard, "/audit-companies", policy.AuditCompanies),
		NewCRUDHandler(s.AuditParties, guard, "/audit-parties", policy.AuditParties),
		NewCRUDHandler(s.AuditTypes, guard, "/audit-types", policy.AuditTypes),
		NewCRUDHandler(s.Auditors, guard, "/auditors", policy.Auditors),
	}}
}

func (h *MasterDataHandler) RegisterRoutes(router *gin.RouterGroup) {
	for _, r := range h.handlers {
		r.RegisterRoutes(router)
	}
}
