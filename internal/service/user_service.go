package service

import (
	"context"
	"strings"

	"audittracker/internal/apperror"
	"audittracker/internal/auth"
	"audittracker/internal/model"
	"audittracker/internal/repository"

	"github.com/google/uuid"
)

// DTOs for Request validation
type CreateUserRequest struct {
	Name     string    `json:"name" binding:"required,notblank,max=255"`
	Email    string    `json:"email" binding:"required,email"`
	Password string    `json:"password" binding:"required,min=8,max=72"`
	RoleID   uuid.UUID `json:"role_id" binding:"required"`
	IsActive *bool     `json:"is_active"`
}

type UpdateUserRequest struct {
	Name     *string    `json:"name" binding:"omitempty,notblank,max=255"`
	Email    *string    `json:"email" binding:"omitempty,email"`
	Password *string    `json:"password" binding:"omitempty,min=8,max=72"`
	RoleID   *uuid.UUID `json:"role_id"`
	IsActive *bool      `json:"is_active"`
}

// UserService defines the interface for business logic related to User
type UserService = CRUDService[model.User, CreateUserRequest, UpdateUserRequest]

type userService struct {
	crud[model.User]
	roles repository.RoleRepository
}

// NewUserService returns a new instance of UserService
func NewUserService(repo repository.UserRepository, roles repository.RoleRepository, tx repository.TransactionManager, activity repository.ActivityRepository) UserService {
	return &userService{
		crud: crud[model.User]{
			repo:       repo,
			tx:         tx,
			activity:   activityLogger{repo: activity},
			entityType: "user",
			label:      "user",
			hasActive:  true,
			filters:    []filter{uuidFilter("role_id", "role_id")},
			id:         func(u *model.User) uuid.UUID { return u.ID },
			name:       func(u *model.User) string { return u.Email },
		},
		roles: roles,
	}
}

func (s *userService) Create(ctx context.Context, actor Actor, req CreateUserRequest) (*model.User, error) {
	if err := requireLive(ctx, s.roles, "role_id", "role", req.RoleID); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, apperror.Internal(err)
	}

	user := &model.User{
		Name:         strings.TrimSpace(req.Name),
		Email:        normalizeEmail(req.Email),
		PasswordHash: hash,
		RoleID:       req.RoleID,
		IsActive:     boolOr(req.IsActive, true),
	}
	if err := s.create(ctx, actor, user); err != nil {
		return nil, err
	}
	return s.Get(ctx, user.ID, false)
}

func (s *userService) Update(ctx context.Context, actor Actor, id uuid.UUID, req UpdateUserRequest) (*model.User, error) {
	fields := patch{}.
		str("name", req.Name).
		boolean("is_active", req.IsActive)
	if req.Email != nil {
		fields["email"] = normalizeEmail(*req.Email)
	}
	if req.RoleID != nil {
		if err := requireLive(ctx, s.roles, "role_id", "role", *req.RoleID); err != nil {
			return nil, err
		}
		fields["role_id"] = *req.RoleID
	}
	if id == actor.UserID && req.IsActive != nil && !*req.IsActive {
		return nil, apperror.InvalidState("you cannot deactivate your own account")
	}
	if req.Password != nil {
		hash, err := auth.HashPassword(*req.Password)
		if err != nil {
			return nil, apperror.Internal(err)
		}
		fields["password_hash"] = hash
	}

	return s.update(ctx, actor, id, fields)
}

func (s *userService) Delete(ctx context.Context, actor Actor, id uuid.UUID) error {
	if id == actor.UserID {
		return apperror.InvalidState("you cannot delete your own account")
	}
	return s.crud.Delete(ctx, actor, id)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
