package handler

import (
	"strconv"

	"audittracker/internal/apperror"
	"audittracker/internal/middleware"
	"audittracker/internal/policy"
	"audittracker/internal/service"

	"github.com/gin-gonic/gin"
)

type DashboardHandler struct {
	dashboardService service.DashboardService
	guard            *middleware.Guard
}

func NewDashboardHandler(dashboardService service.DashboardService, guard *middleware.Guard) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService, guard: guard}
}

func (h *DashboardHandler) RegisterRoutes(router *gin.RouterGroup) {
	group := router.Group("/dashboard")
	group.Use(h.guard.Require(policy.DashboardView))
	{
		group.GET("/stats", h.GetStats)
		group.GET("/charts", h.GetCharts)
		group.GET("/findings-trend", h.GetFindingsTrend)
	}
}

// GetStats returns the headline counters
// @Summary      Dashboard statistics
// @Tags         dashboard
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=model.DashboardStats}
// @Router       /api/dashboard/stats [get]
func (h *DashboardHandler) GetStats(c *gin.Context) {
	stats, err := h.dashboardService.Stats(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, stats)
}

// GetCharts returns the chart series
// @Summary      Dashboard charts
// @Tags         dashboard
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=model.DashboardCharts}
// @Router       /api/dashboard/charts [get]
func (h *DashboardHandler) GetCharts(c *gin.Context) {
	charts, err := h.dashboardService.Charts(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, charts)
}

// GetFindingsTrend returns findings opened and closed per month
// @Summary      Findings trend
// @Tags         dashboard
// @Produce      json
// @Security     BearerAuth
// @Param        months  query     int  false  "Number of months (default 6, max 24)"
// @Success      200     {object}  response.Response{data=[]model.TrendPoint}
// @Failure      400     {object}  response.Response
// @Router       /api/dashboard/findings-trend [get]
func (h *DashboardHandler) GetFindingsTrend(c *gin.Context) {
	months := service.DefaultTrendMonths
	if raw := c.Query("months"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			respondError(c, apperror.Validation("invalid months", apperror.FieldError{Field: "months", Message: "must be a positive integer"}))
			return
		}
		months = n
	}

	points, err := h.dashboardService.FindingsTrend(c.Request.Context(), months)
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, points)
}
