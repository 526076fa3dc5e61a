package handler

import (
	"errors"
	"io"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"audittracker/internal/apperror"
	"audittracker/internal/middleware"
	"audittracker/internal/service"
	"audittracker/pkg/pagination"
	"audittracker/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// RegisterValidators makes binding errors report JSON field names and adds the
// notblank rule, which rejects strings that are empty after trimming.
func RegisterValidators() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	_ = v.RegisterValidation("notblank", validators.NotBlank)
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		switch name {
		case "-":
			return ""
		case "":
			return f.Name
		}
		return name
	})
}

// respondError writes the envelope for err. Unclassified failures are logged with their cause.
func respondError(c *gin.Context, err error) {
	appErr := apperror.As(err)
	if appErr.Kind == apperror.KindInternal {
		zerolog.Ctx(c.Request.Context()).Error().Err(appErr.Err).Msg("request failed")
	}
	c.JSON(apperror.HTTPStatus(appErr), response.Error(appErr))
}

func bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		respondError(c, apperror.FromBinding(err))
		return false
	}
	return true
}

// bindOptionalJSON is bindJSON for endpoints whose body may be omitted. An empty
// body, chunked or not, binds to the zero value.
func bindOptionalJSON(c *gin.Context, dst interface{}) bool {
	err := c.ShouldBindJSON(dst)
	if errors.Is(err, io.EOF) {
		err = binding.Validator.ValidateStruct(dst)
	}
	if err != nil {
		respondError(c, apperror.FromBinding(err))
		return false
	}
	return true
}

// actor resolves the authenticated caller. Authenticate must run first.
func actor(c *gin.Context) (service.Actor, bool) {
	claims, ok := middleware.CurrentUser(c)
	if !ok {
		respondError(c, apperror.Unauthenticated("authentication required"))
		return service.Actor{}, false
	}
	id, err := uuid.Parse(claims.UserID)
	if err != nil {
		respondError(c, apperror.Unauthenticated("invalid token subject"))
		return service.Actor{}, false
	}
	return service.Actor{UserID: id, Role: claims.Role}, true
}

func pathID(c *gin.Context, param string) (uuid.UUID, bool) {
	id, err := service.ParseID(param, c.Param(param))
	if err != nil {
		respondError(c, err)
		return uuid.Nil, false
	}
	return id, true
}

func queryBool(c *gin.Context, key string) bool {
	v, _ := strconv.ParseBool(c.Query(key))
	return v
}

// listFilterKeys are the exact-match query filters forwarded to services.
var listFilterKeys = []string{
	"role_id", "page_id", "company_id", "vessel_id", "audit_type_id", "audit_party_id",
	"audit_company_id", "auditor_id", "audit_id", "status", "severity", "action",
}

func listParams(c *gin.Context) service.ListParams {
	params := service.ListParams{
		Params:         pagination.Parse(c),
		Search:         strings.TrimSpace(c.Query("search")),
		ActiveOnly:     queryBool(c, "active"),
		IncludeDeleted: queryBool(c, "include_deleted"),
		Filters:        map[string]string{},
	}
	for _, key := range listFilterKeys {
		if v := strings.TrimSpace(c.Query(key)); v != "" {
			params.Filters[key] = v
		}
	}
	return params
}

func ok(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, response.Success(data))
}

func created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, response.Success(data))
}
