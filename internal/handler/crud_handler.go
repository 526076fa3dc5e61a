package handler

import (
	"net/http"

	"audittracker/internal/middleware"
	"audittracker/internal/policy"
	"audittracker/internal/service"
	"audittracker/pkg/response"

	"github.com/gin-gonic/gin"
)

// CRUDHandler exposes the uniform list/get/create/update/delete/restore surface of one entity.
type CRUDHandler[T any, C any, U any] struct {
	svc    service.CRUDService[T, C, U]
	guard  *middleware.Guard
	path   string
	entity string
}

// NewCRUDHandler mounts svc under path, authorizing each verb against entity's actions.
func NewCRUDHandler[T any, C any, U any](svc service.CRUDService[T, C, U], guard *middleware.Guard, path, entity string) *CRUDHandler[T, C, U] {
	return &CRUDHandler[T, C, U]{svc: svc, guard: guard, path: path, entity: entity}
}

// RegisterRoutes binds the endpoints and returns the entity group for extra routes.
func (h *CRUDHandler[T, C, U]) RegisterRoutes(router *gin.RouterGroup) *gin.RouterGroup {
	group := router.Group(h.path)
	group.GET("", h.guard.Require(policy.For(h.entity, policy.VerbView)), h.List)
	group.GET("/:id", h.guard.Require(policy.For(h.entity, policy.VerbView)), h.Get)
	group.POST("", h.guard.Require(policy.For(h.entity, policy.VerbCreate)), h.Create)
	group.PUT("/:id", h.guard.Require(policy.For(h.entity, policy.VerbUpdate)), h.Update)
	group.DELETE("/:id", h.guard.Require(policy.For(h.entity, policy.VerbDelete)), h.Delete)
	group.POST("/:id/restore", h.guard.Require(policy.For(h.entity, policy.VerbRestore)), h.Restore)
	return group
}

// List handles GET /api/{entity}
// @Summary      List records
// @Description  Paginated listing. Soft-deleted rows are hidden unless include_deleted=true.
// @Tags         entities
// @Produce      json
// @Security     BearerAuth
// @Param        entity           path   string  true   "Entity collection"  Enums(users, roles, permissions, pages, vessels, audit-companies, audit-parties, audit-types, auditors, audits, findings)
// @Param        page             query  int     false  "Page number (default 1)"
// @Param        limit            query  int     false  "Items per page (default 20, max 100)"
// @Param        search           query  string  false  "Free text search"
// @Param        active           query  bool    false  "Only active records"
// @Param        include_deleted  query  bool    false  "Include soft-deleted records"
// @Success      200  {object}  response.Response{data=[]object,meta=response.Meta}
// @Failure      400  {object}  response.Response
// @Failure      401  {object}  response.Response
// @Failure      403  {object}  response.Response
// @Router       /api/{entity} [get]
func (h *CRUDHandler[T, C, U]) List(c *gin.Context) {
	params := listParams(c)
	page, err := h.svc.List(c.Request.Context(), params)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.SuccessWithPagination(page.Items, params.Page, params.Limit, page.Total))
}

// Get handles GET /api/{entity}/:id
// @Summary      Get record
// @Tags         entities
// @Produce      json
// @Security     BearerAuth
// @Param        entity           path   string  true   "Entity collection"
// @Param        id               path   string  true   "Record ID"
// @Param        include_deleted  query  bool    false  "Return the record even if soft-deleted"
// @Success      200  {object}  response.Response{data=object}
// @Failure      404  {object}  response.Response
// @Router       /api/{entity}/{id} [get]
func (h *CRUDHandler[T, C, U]) Get(c *gin.Context) {
	id, valid := pathID(c, "id")
	if !valid {
		return
	}
	item, err := h.svc.Get(c.Request.Context(), id, queryBool(c, "include_deleted"))
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, item)
}

// Create handles POST /api/{entity}
// @Summary      Create record
// @Tags         entities
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        entity   path  string  true  "Entity collection"
// @Param        payload  body  object  true  "Create payload"
// @Success      201  {object}  response.Response{data=object}
// @Failure      400  {object}  response.Response
// @Failure      403  {object}  response.Response
// @Router       /api/{entity} [post]
func (h *CRUDHandler[T, C, U]) Create(c *gin.Context) {
	caller, valid := actor(c)
	if !valid {
		return
	}
	var req C
	if !bindJSON(c, &req) {
		return
	}
	item, err := h.svc.Create(c.Request.Context(), caller, req)
	if err != nil {
		respondError(c, err)
		return
	}
	created(c, item)
}

// Update handles PUT /api/{entity}/:id
// @Summary      Update record
// @Description  Partial update; omitted fields are left unchanged.
// @Tags         entities
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        entity   path  string  true  "Entity collection"
// @Param        id       path  string  true  "Record ID"
// @Param        payload  body  object  true  "Update payload"
// @Success      200  {object}  response.Response{data=object}
// @Failure      400  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/{entity}/{id} [put]
func (h *CRUDHandler[T, C, U]) Update(c *gin.Context) {
	caller, valid := actor(c)
	if !valid {
		return
	}
	id, valid := pathID(c, "id")
	if !valid {
		return
	}
	var req U
	if !bindJSON(c, &req) {
		return
	}
	item, err := h.svc.Update(c.Request.Context(), caller, id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, item)
}

// Delete handles DELETE /api/{entity}/:id
// @Summary      Soft delete record
// @Tags         entities
// @Produce      json
// @Security     BearerAuth
// @Param        entity  path  string  true  "Entity collection"
// @Param        id      path  string  true  "Record ID"
// @Success      200  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/{entity}/{id} [delete]
func (h *CRUDHandler[T, C, U]) Delete(c *gin.Context) {
	caller, valid := actor(c)
	if !valid {
		return
	}
	id, valid := pathID(c, "id")
	if !valid {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), caller, id); err != nil {
		respondError(c, err)
		return
	}
	ok(c, gin.H{"id": id, "deleted": true})
}

// Restore handles POST /api/{entity}/:id/restore
// @Summary      Restore soft-deleted record
// @Tags         entities
// @Produce      json
// @Security     BearerAuth
// @Param        entity  path  string  true  "Entity collection"
// @Param        id      path  string  true  "Record ID"
// @Success      200  {object}  response.Response{data=object}
// @Failure      400  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/{entity}/{id}/restore [post]
func (h *CRUDHandler[T, C, U]) Restore(c *gin.Context) {
	caller, valid := actor(c)
	if !valid {
		return
	}
	id, valid := pathID(c, "id")
	if !valid {
		return
	}
	item, err := h.svc.Restore(c.Request.Context(), caller, id)
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, item)
}
