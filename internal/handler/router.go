package handler

import (
	"audittracker/internal/middleware"

	"github.com/gin-gonic/gin"
)

// Handlers bundles every API handler mounted under /api.
type Handlers struct {
	Users      *UserHandler
	Roles      *RoleHandler
	MasterData *MasterDataHandler
	Audits     *AuditHandler
	Findings   *FindingHandler
	Settings   *SettingsHandler
	Dashboard  *DashboardHandler
	Activity   *ActivityHandler
}

// Register mounts the routes on api. Everything except login requires a bearer token.
func (h Handlers) Register(api *gin.RouterGroup, guard *middleware.Guard) {
	protected := api.Group("")
	protected.Use(guard.Authenticate())

	h.Users.RegisterRoutes(api, protected)
	h.Roles.RegisterRoutes(protected)
	h.MasterData.RegisterRoutes(protected)
	h.Audits.RegisterRoutes(protected)
	h.Findings.RegisterRoutes(protected)
	h.Settings.RegisterRoutes(protected)
	h.Dashboard.RegisterRoutes(protected)
	h.Activity.RegisterRoutes(protected)
}
