package handler

import (
	"audittracker/internal/middleware"
	"audittracker/internal/policy"
	"audittracker/internal/service"

	"github.com/gin-gonic/gin"
)

type SettingsHandler struct {
	settingsService service.SettingsService
	guard           *middleware.Guard
}

func NewSettingsHandler(settingsService service.SettingsService, guard *middleware.Guard) *SettingsHandler {
	return &SettingsHandler{settingsService: settingsService, guard: guard}
}

func (h *SettingsHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/settings", h.guard.Require(policy.SettingsView), h.GetSettings)
	router.PUT("/settings", h.guard.Require(policy.SettingsUpdate), h.UpdateSettings)
}

// GetSettings returns the company settings
// @Summary      Get settings
// @Tags         settings
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=model.Settings}
// @Router       /api/settings [get]
func (h *SettingsHandler) GetSettings(c *gin.Context) {
	settings, err := h.settingsService.Get(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, settings)
}

// UpdateSettings applies a partial update to the company settings
// @Summary      Update settings
// @Tags         settings
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.UpdateSettingsRequest  true  "Fields to change"
// @Success      200      {object}  response.Response{data=model.Settings}
// @Failure      400      {object}  response.Response
// @Failure      403      {object}  response.Response
// @Router       /api/settings [put]
func (h *SettingsHandler) UpdateSettings(c *gin.Context) {
	caller, valid := actor(c)
	if !valid {
		return
	}
	var req service.UpdateSettingsRequest
	if !bindJSON(c, &req) {
		return
	}
	settings, err := h.settingsService.Update(c.Request.Context(), caller, req)
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, settings)
}
