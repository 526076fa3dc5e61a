package handler

import (
	"audittracker/internal/middleware"
	"audittracker/internal/model"
	"audittracker/internal/policy"
	"audittracker/internal/service"

	"github.com/gin-gonic/gin"
)

type RoleHandler struct {
	roleService service.RoleService
	roles       *CRUDHandler[model.Role, service.CreateRoleRequest, service.UpdateRoleRequest]
	permissions *CRUDHandler[model.Permission, service.CreatePermissionRequest, service.UpdatePermissionRequest]
	pages       *CRUDHandler[model.Page, service.CreatePageRequest, service.UpdatePageRequest]
	guard       *middleware.Guard
}

func NewRoleHandler(roleService service.RoleService, permissionService service.PermissionService, pageService service.PageService, guard *middleware.Guard) *RoleHandler {
	return &RoleHandler{
		roleService: roleService,
		roles:       NewCRUDHandler[model.Role, service.CreateRoleRequest, service.UpdateRoleRequest](roleService, guard, "/roles", policy.Roles),
		permissions: NewCRUDHandler(permissionService, guard, "/permissions", policy.Permissions),
		pages:       NewCRUDHandler(pageService, guard, "/pages", policy.Pages),
		guard:       guard,
	}
}

func (h *RoleHandler) RegisterRoutes(router *gin.RouterGroup) {
	roles := h.roles.RegisterRoutes(router)
	roles.PUT("/:id/permissions", h.guard.Require(policy.For(policy.Roles, policy.VerbUpdate)), h.UpdateRolePermissions)

	h.permissions.RegisterRoutes(router)
	h.pages.RegisterRoutes(router)
}

// UpdateRolePermissions replaces the permission set granted to a role
// @Summary      Replace role permissions
// @Tags         roles
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                                true  "Role ID"
// @Param        payload  body      service.UpdateRolePermissionsRequest  true  "Permission IDs"
// @Success      200      {object}  response.Response{data=model.Role}
// @Failure      400      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Router       /api/roles/{id}/permissions [put]
func (h *RoleHandler) UpdateRolePermissions(c *gin.Context) {
	caller, valid := actor(c)
	if !valid {
		return
	}
	id, valid := pathID(c, "id")
	if !valid {
		return
	}
	var req service.UpdateRolePermissionsRequest
	if !bindJSON(c, &req) {
		return
	}

	role, err := h.roleService.SetPermissions(c.Request.Context(), caller, id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, role)
}
