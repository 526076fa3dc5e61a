package service

import (
	"context"
	"strings"

	"audittracker/internal/apperror"
	"audittracker/internal/model"
	"audittracker/internal/repository"

	"github.com/google/uuid"
)

// --- DTOs ---

type CreateRoleRequest struct {
	Name          string      `json:"name" binding:"required,notblank,max=50"`
	Description   string      `json:"description"`
	IsActive      *bool       `json:"is_active"`
	PermissionIDs []uuid.UUID `json:"permission_ids"`
}

type UpdateRoleRequest struct {
	Name        *string `json:"name" binding:"omitempty,notblank,max=50"`
	Description *string `json:"description"`
	IsActive    *bool   `json:"is_active"`
}

type UpdateRolePermissionsRequest struct {
	PermissionIDs []uuid.UUID `json:"permission_ids" binding:"required"`
}

// --- Interface ---

type RoleService interface {
	CRUDService[model.Role, CreateRoleRequest, UpdateRoleRequest]
	SetPermissions(ctx context.Context, actor Actor, id uuid.UUID, req UpdateRolePermissionsRequest) (*model.Role, error)
}

type roleService struct {
	crud[model.Role]
	roles repository.RoleRepository
	users repository.UserRepository
}

func NewRoleService(roles repository.RoleRepository, users repository.UserRepository, tx repository.TransactionManager, activity repository.ActivityRepository) RoleService {
	return &roleService{
		crud: crud[model.Role]{
			repo:       roles,
			tx:         tx,
			activity:   activityLogger{repo: activity},
			entityType: "role",
			label:      "role",
			hasActive:  true,
			id:         func(r *model.Role) uuid.UUID { return r.ID },
			name:       func(r *model.Role) string { return r.Name },
		},
		roles: roles,
		users: users,
	}
}

func (s *roleService) Create(ctx context.Context, actor Actor, req CreateRoleRequest) (*model.Role, error) {
	if err := s.checkPermissions(ctx, req.PermissionIDs); err != nil {
		return nil, err
	}

	role := &model.Role{
		Name:        strings.TrimSpace(req.Name),
		Description: strings.TrimSpace(req.Description),
		IsActive:    boolOr(req.IsActive, true),
	}
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.create(txCtx, actor, role); err != nil {
			return err
		}
		if len(req.PermissionIDs) == 0 {
			return nil
		}
		return s.roles.ReplacePermissions(txCtx, role.ID, req.PermissionIDs)
	})
	if err != nil {
		return nil, translate(err, s.label)
	}
	return s.Get(ctx, role.ID, false)
}

// Update changes role attributes. Built-in roles keep their name since authorization
// matches on it.
func (s *roleService) Update(ctx context.Context, actor Actor, id uuid.UUID, req UpdateRoleRequest) (*model.Role, error) {
	if req.Name != nil {
		current, err := s.Get(ctx, id, false)
		if err != nil {
			return nil, err
		}
		if current.IsSystem && strings.TrimSpace(*req.Name) != current.Name {
			return nil, apperror.InvalidState("built-in roles cannot be renamed")
		}
	}

	fields := patch{}.
		str("name", req.Name).
		str("description", req.Description).
		boolean("is_active", req.IsActive)
	return s.update(ctx, actor, id, fields)
}

// Delete refuses built-in roles and roles still assigned to live users.
func (s *roleService) Delete(ctx context.Context, actor Actor, id uuid.UUID) error {
	role, err := s.roles.FindByID(ctx, id, true)
	if err != nil {
		return translate(err, s.label)
	}
	if role.IsSystem {
		return apperror.InvalidState("built-in roles cannot be deleted")
	}

	count, err := s.users.CountByRole(ctx, id)
	if err != nil {
		return apperror.Internal(err)
	}
	if count > 0 {
		return apperror.InvalidState("role is assigned to active users")
	}
	return s.crud.Delete(ctx, actor, id)
}

func (s *roleService) SetPermissions(ctx context.Context, actor Actor, id uuid.UUID, req UpdateRolePermissionsRequest) (*model.Role, error) {
	if err := s.checkPermissions(ctx, req.PermissionIDs); err != nil {
		return nil, err
	}

	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		role, err := s.roles.FindByID(txCtx, id, false)
		if err != nil {
			return err
		}
		if err := s.roles.ReplacePermissions(txCtx, id, req.PermissionIDs); err != nil {
			return err
		}
		return s.activity.log(txCtx, actor, model.ActionUpdate, s.entityType, id, role.Name,
			map[string]interface{}{"permission_ids": req.PermissionIDs})
	})
	if err != nil {
		return nil, translate(err, s.label)
	}
	return s.Get(ctx, id, false)
}

func (s *roleService) checkPermissions(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	unique := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		unique[id] = struct{}{}
	}
	count, err := s.roles.CountPermissions(ctx, ids)
	if err != nil {
		return apperror.Internal(err)
	}
	if count != int64(len(unique)) {
		return apperror.ReferenceNotFound("permission_ids", "permission")
	}
	return nil
}
