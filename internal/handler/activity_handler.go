package handler

import (
	"net/http"

	"audittracker/internal/middleware"
	"audittracker/internal/policy"
	"audittracker/internal/repository"
	"audittracker/internal/service"
	"audittracker/pkg/pagination"
	"audittracker/pkg/response"

	"github.com/gin-gonic/gin"
)

type ActivityHandler struct {
	activityService service.ActivityService
	guard           *middleware.Guard
}

func NewActivityHandler(activityService service.ActivityService, guard *middleware.Guard) *ActivityHandler {
	return &ActivityHandler{activityService: activityService, guard: guard}
}

func (h *ActivityHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/activity-logs", h.guard.Require(policy.ActivityView), h.GetActivityLogs)
}

// GetActivityLogs retrieves paginated activity entries, newest first
// @Summary      Get activity logs
// @Description  Lists who changed what, optionally filtered by entity, user or action
// @Tags         activity
// @Security     BearerAuth
// @Produce      json
// @Param        page         query     int     false  "Page number (default 1)"
// @Param        limit        query     int     false  "Number of items per page (default 20)"
// @Param        entity_type  query     string  false  "Entity type, e.g. finding"
// @Param        entity_id    query     string  false  "Entity ID"
// @Param        user_id      query     string  false  "Acting user ID"
// @Param        action       query     string  false  "CREATE, UPDATE, DELETE, RESTORE, ..."
// @Success      200          {object}  response.Response{data=[]service.ActivityLogResponse,meta=response.Meta}
// @Failure      400          {object}  response.Response
// @Router       /api/activity-logs [get]
func (h *ActivityHandler) GetActivityLogs(c *gin.Context) {
	filter := repository.ActivityFilter{
		EntityType: c.Query("entity_type"),
		Action:     c.Query("action"),
	}
	for key, dst := range map[string]*string{"entity_id": &filter.EntityID, "user_id": &filter.UserID} {
		raw := c.Query(key)
		if raw == "" {
			continue
		}
		id, err := service.ParseID(key, raw)
		if err != nil {
			respondError(c, err)
			return
		}
		*dst = id.String()
	}

	page := pagination.Parse(c)
	logs, total, err := h.activityService.List(c.Request.Context(), filter, page)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.SuccessWithPagination(logs, page.Page, page.Limit, total))
}
