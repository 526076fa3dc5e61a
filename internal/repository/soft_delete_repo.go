package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	// ErrAlreadyDeleted is returned when soft-deleting a row that is already deleted.
	ErrAlreadyDeleted = errors.New("record already deleted")
	// ErrNotDeleted is returned when restoring a row that is not deleted.
	ErrNotDeleted = errors.New("record is not deleted")
)

// Scope narrows a list query, typically to a foreign key.
type Scope func(*gorm.DB) *gorm.DB

// Where builds a Scope from a condition.
func Where(query string, args ...interface{}) Scope {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where(query, args...)
	}
}

// ListOptions are the filters shared by every list endpoint.
type ListOptions struct {
	IncludeDeleted bool
	ActiveOnly     bool
	Search         string
	Offset         int
	Limit          int
}

// TableOptions configure a SoftDeleteRepository for one table.
type TableOptions struct {
	SearchColumns []string // columns matched with ILIKE by ListOptions.Search
	Order         string   // default ORDER BY
	Preloads      []string // associations loaded with every row
}

// SoftDeleteRepository is the persistence contract shared by every soft-deletable entity.
type SoftDeleteRepository[T any] interface {
	List(ctx context.Context, opts ListOptions, scopes ...Scope) ([]T, int64, error)
	FindByID(ctx context.Context, id uuid.UUID, includeDeleted bool) (*T, error)
	// Exists reports whether a live (not deleted) row with id exists.
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
	Create(ctx context.Context, entity *T) error
	// Update applies fields to a live row; gorm.ErrRecordNotFound when none matched.
	Update(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error
	SoftDelete(ctx context.Context, id, deletedBy uuid.UUID) error
	Restore(ctx context.Context, id uuid.UUID) error
}

type softDeleteRepository[T any] struct {
	db   *gorm.DB
	opts TableOptions
}

func NewSoftDeleteRepository[T any](db *gorm.DB, opts TableOptions) SoftDeleteRepository[T] {
	if opts.Order == "" {
		opts.Order = "created_at DESC"
	}
	return &softDeleteRepository[T]{db: db, opts: opts}
}

func (r *softDeleteRepository[T]) base(ctx context.Context, includeDeleted bool) *gorm.DB {
	q := Conn(ctx, r.db).Model(new(T))
	if includeDeleted {
		q = q.Unscoped()
	}
	return q
}

// likeEscaper makes LIKE wildcards in user input match literally.
var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

func (r *softDeleteRepository[T]) filtered(ctx context.Context, opts ListOptions, scopes []Scope) *gorm.DB {
	q := r.base(ctx, opts.IncludeDeleted)
	if opts.ActiveOnly {
		q = q.Where("is_active = ?", true)
	}
	if search := strings.TrimSpace(opts.Search); search != "" && len(r.opts.SearchColumns) > 0 {
		conds := make([]string, 0, len(r.opts.SearchColumns))
		args := make([]interface{}, 0, len(r.opts.SearchColumns))
		pattern := "%" + likeEscaper.Replace(search) + "%"
		for _, col := range r.opts.SearchColumns {
			conds = append(conds, col+` ILIKE ? ESCAPE '\'`)
			args = append(args, pattern)
		}
		q = q.Where("("+strings.Join(conds, " OR ")+")", args...)
	}
	for _, s := range scopes {
		q = s(q)
	}
	return q
}

func (r *softDeleteRepository[T]) List(ctx context.Context, opts ListOptions, scopes ...Scope) ([]T, int64, error) {
	var total int64
	if err := r.filtered(ctx, opts, scopes).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	items := make([]T, 0)
	q := r.filtered(ctx, opts, scopes).Order(r.opts.Order)
	for _, p := range r.opts.Preloads {
		q = q.Preload(p)
	}
	if opts.Limit > 0 {
		q = q.Offset(opts.Offset).Limit(opts.Limit)
	}
	if err := q.Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *softDeleteRepository[T]) FindByID(ctx context.Context, id uuid.UUID, includeDeleted bool) (*T, error) {
	var entity T
	q := r.base(ctx, includeDeleted)
	for _, p := range r.opts.Preloads {
		q = q.Preload(p)
	}
	if err := q.Where("id = ?", id).Take(&entity).Error; err != nil {
		return nil, err
	}
	return &entity, nil
}

func (r *softDeleteRepository[T]) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var count int64
	if err := r.base(ctx, false).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *softDeleteRepository[T]) Create(ctx context.Context, entity *T) error {
	return Conn(ctx, r.db).Create(entity).Error
}

func (r *softDeleteRepository[T]) Update(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error {
	res := r.base(ctx, false).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// SoftDelete stamps deleted_at/deleted_by on a live row. The WHERE clause only matches
// live rows, so concurrent deletes cannot both succeed.
func (r *softDeleteRepository[T]) SoftDelete(ctx context.Context, id, deletedBy uuid.UUID) error {
	res := r.base(ctx, false).Where("id = ?", id).Updates(map[string]interface{}{
		"deleted_at": time.Now(),
		"deleted_by": deletedBy,
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return r.explainMiss(ctx, id, ErrAlreadyDeleted)
	}
	return nil
}

// Restore clears deleted_at/deleted_by on a deleted row.
func (r *softDeleteRepository[T]) Restore(ctx context.Context, id uuid.UUID) error {
	res := r.base(ctx, true).Where("id = ? AND deleted_at IS NOT NULL", id).Updates(map[string]interface{}{
		"deleted_at": nil,
		"deleted_by": nil,
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return r.explainMiss(ctx, id, ErrNotDeleted)
	}
	return nil
}

// explainMiss tells a missing row apart from a row in the wrong lifecycle state.
func (r *softDeleteRepository[T]) explainMiss(ctx context.Context, id uuid.UUID, stateErr error) error {
	var deletedAt []sql.NullTime
	if err := r.base(ctx, true).Where("id = ?", id).Pluck("deleted_at", &deletedAt).Error; err != nil {
		return err
	}
	if len(deletedAt) == 0 {
		return gorm.ErrRecordNotFound
	}
	return stateErr
}
