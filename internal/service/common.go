package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"audittracker/internal/apperror"
	"audittracker/internal/model"
	"audittracker/internal/repository"
	"audittracker/pkg/pagination"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Actor identifies the authenticated caller performing a mutation.
type Actor struct {
	UserID uuid.UUID
	Role   string
}

// ListParams are the filters every list operation accepts.
type ListParams struct {
	pagination.Params
	Search         string
	ActiveOnly     bool
	IncludeDeleted bool
	Filters        map[string]string // exact-match filters keyed by query parameter
}

func (p ListParams) options() repository.ListOptions {
	return repository.ListOptions{
		IncludeDeleted: p.IncludeDeleted,
		ActiveOnly:     p.ActiveOnly,
		Search:         p.Search,
		Offset:         p.Offset,
		Limit:          p.Limit,
	}
}

// CRUDService is the uniform lifecycle exposed for every soft-deletable entity.
type CRUDService[T any, C any, U any] interface {
	List(ctx context.Context, params ListParams) (Page[T], error)
	Get(ctx context.Context, id uuid.UUID, includeDeleted bool) (*T, error)
	Create(ctx context.Context, actor Actor, req C) (*T, error)
	Update(ctx context.Context, actor Actor, id uuid.UUID, req U) (*T, error)
	Delete(ctx context.Context, actor Actor, id uuid.UUID) error
	Restore(ctx context.Context, actor Actor, id uuid.UUID) (*T, error)
}

// Page is one page of a listing.
type Page[T any] struct {
	Items []T
	Total int64
}

// EventPublisher pushes domain events to live clients.
type EventPublisher interface {
	Publish(event string, data interface{})
}

type nopPublisher struct{}

func (nopPublisher) Publish(string, interface{}) {}

func publisherOrNop(p EventPublisher) EventPublisher {
	if p == nil {
		return nopPublisher{}
	}
	return p
}

// ParseID parses a path identifier, reporting a ValidationError for malformed input.
func ParseID(field, raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return uuid.Nil, apperror.Validation("invalid "+field, apperror.FieldError{Field: field, Message: "must be a valid UUID"})
	}
	return id, nil
}

// translate maps repository errors onto the application taxonomy.
func translate(err error, entity string) error {
	if err == nil {
		return nil
	}
	var appErr *apperror.Error
	switch {
	case errors.As(err, &appErr):
		return appErr
	case errors.Is(err, gorm.ErrRecordNotFound):
		return apperror.NotFound(entity)
	case errors.Is(err, repository.ErrAlreadyDeleted):
		return apperror.InvalidState(entity + " is already deleted")
	case errors.Is(err, repository.ErrNotDeleted):
		return apperror.InvalidState(entity + " is not deleted")
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return apperror.Validation(entity + " already exists")
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return apperror.Validation(entity + " references a record that does not exist or is still referenced")
	default:
		return apperror.Internal(err)
	}
}

// requireLive fails with REFERENCE_NOT_FOUND unless id refers to a live row.
func requireLive[T any](ctx context.Context, repo repository.SoftDeleteRepository[T], field, entity string, id uuid.UUID) error {
	ok, err := repo.Exists(ctx, id)
	if err != nil {
		return apperror.Internal(err)
	}
	if !ok {
		return apperror.ReferenceNotFound(field, entity)
	}
	return nil
}

// activityLogger writes activity rows; callers run it inside the mutation's transaction.
type activityLogger struct {
	repo repository.ActivityRepository
}

func (a activityLogger) log(ctx context.Context, actor Actor, action, entityType string, entityID uuid.UUID, name string, details interface{}) error {
	payload := "{}"
	if details != nil {
		b, err := json.Marshal(details)
		if err != nil {
			return err
		}
		payload = string(b)
	}

	var userID *uuid.UUID
	if actor.UserID != uuid.Nil {
		uid := actor.UserID
		userID = &uid
	}

	entry := &model.ActivityLog{
		UserID:     userID,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID.String(),
		EntityName: name,
		Details:    payload,
	}
	return a.repo.Log(ctx, entry)
}

// filter maps a list query parameter onto an equality condition.
type filter struct {
	param  string
	column string
	isUUID bool
}

func uuidFilter(param, column string) filter {
	return filter{param: param, column: column, isUUID: true}
}

func textFilter(param, column string) filter {
	return filter{param: param, column: column}
}

// crud implements the lifecycle shared by every soft-deletable entity: each mutation
// runs in a transaction together with its activity log entry.
type crud[T any] struct {
	repo       repository.SoftDeleteRepository[T]
	tx         repository.TransactionManager
	activity   activityLogger
	entityType string
	label      string
	hasActive  bool
	filters    []filter
	id         func(*T) uuid.UUID
	name       func(*T) string
}

func (c crud[T]) scopes(params ListParams) ([]repository.Scope, error) {
	scopes := make([]repository.Scope, 0, len(c.filters))
	for _, f := range c.filters {
		raw := strings.TrimSpace(params.Filters[f.param])
		if raw == "" {
			continue
		}
		if f.isUUID {
			id, err := ParseID(f.param, raw)
			if err != nil {
				return nil, err
			}
			scopes = append(scopes, repository.Where(f.column+" = ?", id))
			continue
		}
		scopes = append(scopes, repository.Where(f.column+" = ?", raw))
	}
	return scopes, nil
}

func (c crud[T]) List(ctx context.Context, params ListParams) (Page[T], error) {
	return c.list(ctx, params)
}

func (c crud[T]) list(ctx context.Context, params ListParams, extra ...repository.Scope) (Page[T], error) {
	scopes, err := c.scopes(params)
	if err != nil {
		return Page[T]{}, err
	}
	opts := params.options()
	if !c.hasActive {
		opts.ActiveOnly = false
	}
	items, total, err := c.repo.List(ctx, opts, append(scopes, extra...)...)
	if err != nil {
		return Page[T]{}, apperror.Internal(err)
	}
	return Page[T]{Items: items, Total: total}, nil
}

func (c crud[T]) Get(ctx context.Context, id uuid.UUID, includeDeleted bool) (*T, error) {
	entity, err := c.repo.FindByID(ctx, id, includeDeleted)
	if err != nil {
		return nil, translate(err, c.label)
	}
	return entity, nil
}

func (c crud[T]) create(ctx context.Context, actor Actor, entity *T) error {
	err := c.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if err := c.repo.Create(txCtx, entity); err != nil {
			return err
		}
		return c.activity.log(txCtx, actor, model.ActionCreate, c.entityType, c.id(entity), c.name(entity), entity)
	})
	return translate(err, c.label)
}

func (c crud[T]) update(ctx context.Context, actor Actor, id uuid.UUID, fields map[string]interface{}) (*T, error) {
	var updated *T
	err := c.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if len(fields) > 0 {
			if err := c.repo.Update(txCtx, id, fields); err != nil {
				return err
			}
		}
		entity, err := c.repo.FindByID(txCtx, id, false)
		if err != nil {
			return err
		}
		updated = entity
		return c.activity.log(txCtx, actor, model.ActionUpdate, c.entityType, id, c.name(entity), redact(fields))
	})
	if err != nil {
		return nil, translate(err, c.label)
	}
	return updated, nil
}

// Delete soft-deletes a live row. Deleting a row that is already deleted is an InvalidState.
func (c crud[T]) Delete(ctx context.Context, actor Actor, id uuid.UUID) error {
	err := c.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if err := c.repo.SoftDelete(txCtx, id, actor.UserID); err != nil {
			return err
		}
		entity, err := c.repo.FindByID(txCtx, id, true)
		if err != nil {
			return err
		}
		return c.activity.log(txCtx, actor, model.ActionDelete, c.entityType, id, c.name(entity), nil)
	})
	return translate(err, c.label)
}

func (c crud[T]) Restore(ctx context.Context, actor Actor, id uuid.UUID) (*T, error) {
	var restored *T
	err := c.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if err := c.repo.Restore(txCtx, id); err != nil {
			return err
		}
		entity, err := c.repo.FindByID(txCtx, id, false)
		if err != nil {
			return err
		}
		restored = entity
		return c.activity.log(txCtx, actor, model.ActionRestore, c.entityType, id, c.name(entity), nil)
	})
	if err != nil {
		return nil, translate(err, c.label)
	}
	return restored, nil
}

// patch collects the non-nil optional fields of an update request into a column map.
type patch map[string]interface{}

func (p patch) str(column string, v *string) patch {
	if v != nil {
		p[column] = strings.TrimSpace(*v)
	}
	return p
}

func (p patch) boolean(column string, v *bool) patch {
	if v != nil {
		p[column] = *v
	}
	return p
}

func boolOr(v *bool, def bool) bool {
	if v == nil {
		return def
	}
	return *v
}

var secretColumns = map[string]bool{"password_hash": true}

// redact hides secret column values before they are written to the activity log.
func redact(fields map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(fields))
	for k, v := range fields {
		if secretColumns[k] {
			v = "[changed]"
		}
		out[k] = v
	}
	return out
}
