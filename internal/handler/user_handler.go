package handler

import (
	"audittracker/internal/apperror"
	"audittracker/internal/middleware"
	"audittracker/internal/model"
	"audittracker/internal/policy"
	"audittracker/internal/service"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	authService service.AuthService
	users       *CRUDHandler[model.User, service.CreateUserRequest, service.UpdateUserRequest]
	guard       *middleware.Guard
	loginLimit  gin.HandlerFunc
}

// NewUserHandler sets up the routing dependencies for authentication and user endpoints
func NewUserHandler(authService service.AuthService, userService service.UserService, guard *middleware.Guard, loginLimit gin.HandlerFunc) *UserHandler {
	return &UserHandler{
		authService: authService,
		users:       NewCRUDHandler(userService, guard, "/users", policy.Users),
		guard:       guard,
		loginLimit:  loginLimit,
	}
}

// RegisterRoutes binds the public login route and the authenticated account routes.
// public is the unauthenticated /api group, protected has Authenticate applied.
func (h *UserHandler) RegisterRoutes(public, protected *gin.RouterGroup) {
	public.POST("/auth/login", h.loginLimit, h.Login)

	protected.GET("/auth/me", h.GetMe)
	protected.POST("/auth/logout", h.Logout)
	protected.PUT("/auth/password", h.ChangePassword)

	h.users.RegisterRoutes(protected)
}

// Login handles POST /api/auth/login to authenticate and return a JWT token
// @Summary      Login user
// @Description  Authenticates a user by email and password, returning a bearer token
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.LoginRequest  true  "Login Credentials"
// @Success      200      {object}  response.Response{data=service.LoginResponse}
// @Failure      400      {object}  response.Response
// @Failure      401      {object}  response.Response
// @Failure      429      {object}  response.Response
// @Router       /api/auth/login [post]
func (h *UserHandler) Login(c *gin.Context) {
	var req service.LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	res, err := h.authService.Login(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, res)
}

// GetMe handles GET /api/auth/me
// @Summary      Get current user
// @Description  Returns the authenticated user and the permission names of their role
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=service.MeResponse}
// @Failure      401  {object}  response.Response
// @Router       /api/auth/me [get]
func (h *UserHandler) GetMe(c *gin.Context) {
	caller, valid := actor(c)
	if !valid {
		return
	}

	me, err := h.authService.Me(c.Request.Context(), caller.UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, me)
}

// Logout handles POST /api/auth/logout by revoking the presented token
// @Summary      Logout
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response
// @Failure      401  {object}  response.Response
// @Router       /api/auth/logout [post]
func (h *UserHandler) Logout(c *gin.Context) {
	claims, found := middleware.CurrentUser(c)
	if !found {
		respondError(c, apperror.Unauthenticated("authentication required"))
		return
	}
	if err := h.authService.Logout(c.Request.Context(), claims); err != nil {
		respondError(c, err)
		return
	}
	ok(c, gin.H{"logged_out": true})
}

// ChangePassword handles PUT /api/auth/password
// @Summary      Change own password
// @Tags         auth
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.ChangePasswordRequest  true  "Current and new password"
// @Success      200      {object}  response.Response
// @Failure      400      {object}  response.Response
// @Failure      401      {object}  response.Response
// @Router       /api/auth/password [put]
func (h *UserHandler) ChangePassword(c *gin.Context) {
	caller, valid := actor(c)
	if !valid {
		return
	}
	var req service.ChangePasswordRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.authService.ChangePassword(c.Request.Context(), caller, req); err != nil {
		respondError(c, err)
		return
	}
	ok(c, gin.H{"id": caller.UserID, "password_changed": true})
}
