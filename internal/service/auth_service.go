package service

import (
	"context"
	"errors"
	"time"

	"audittracker/internal/apperror"
	"audittracker/internal/auth"
	"audittracker/internal/model"
	"audittracker/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,min=8,max=72,nefield=CurrentPassword"`
}

type LoginResponse struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expires_at"`
	User      *model.User `json:"user"`
}

type MeResponse struct {
	User        *model.User `json:"user"`
	Permissions []string    `json:"permissions"`
}

// TokenRevoker invalidates tokens before they expire.
type TokenRevoker interface {
	Revoke(ctx context.Context, jti string, until time.Time) error
}

type AuthService interface {
	Login(ctx context.Context, req LoginRequest) (*LoginResponse, error)
	Me(ctx context.Context, userID uuid.UUID) (*MeResponse, error)
	Logout(ctx context.Context, claims *auth.Claims) error
	ChangePassword(ctx context.Context, actor Actor, req ChangePasswordRequest) error
}

type authService struct {
	users    repository.UserRepository
	roles    repository.RoleRepository
	tokens   *auth.TokenManager
	revoker  TokenRevoker
	tx       repository.TransactionManager
	activity activityLogger
}

// NewAuthService builds the login flow. revoker may be nil, in which case Logout is a no-op.
func NewAuthService(users repository.UserRepository, roles repository.RoleRepository, tokens *auth.TokenManager, revoker TokenRevoker, tx repository.TransactionManager, activity repository.ActivityRepository) AuthService {
	return &authService{
		users:    users,
		roles:    roles,
		tokens:   tokens,
		revoker:  revoker,
		tx:       tx,
		activity: activityLogger{repo: activity},
	}
}

var errBadCredentials = apperror.Unauthenticated("invalid email or password")

func (s *authService) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	user, err := s.users.GetByEmail(ctx, normalizeEmail(req.Email))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errBadCredentials
	}
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if err := auth.CheckPassword(user.PasswordHash, req.Password); err != nil {
		return nil, errBadCredentials
	}
	if !user.IsActive {
		return nil, apperror.Unauthenticated("account is disabled")
	}
	if user.Role == nil || !user.Role.IsActive {
		return nil, apperror.Unauthenticated("account has no active role")
	}

	token, expiresAt, err := s.tokens.Issue(auth.Claims{
		UserID: user.ID.String(),
		Email:  user.Email,
		RoleID: user.RoleID.String(),
		Role:   user.Role.Name,
		Name:   user.Name,
	})
	if err != nil {
		return nil, apperror.Internal(err)
	}

	if err := s.activity.log(ctx, Actor{UserID: user.ID, Role: user.Role.Name}, model.ActionLogin, "user", user.ID, user.Email, nil); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Msg("failed to record login activity")
	}

	return &LoginResponse{Token: token, ExpiresAt: expiresAt, User: user}, nil
}

// Me re-reads the user so deactivation and role changes are visible immediately.
func (s *authService) Me(ctx context.Context, userID uuid.UUID) (*MeResponse, error) {
	user, err := s.users.FindByID(ctx, userID, false)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperror.Unauthenticated("user no longer exists")
	}
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if !user.IsActive {
		return nil, apperror.Unauthenticated("account is disabled")
	}

	perms, err := s.roles.GetPermissionNamesByRoleID(ctx, user.RoleID)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return &MeResponse{User: user, Permissions: perms}, nil
}

func (s *authService) Logout(ctx context.Context, claims *auth.Claims) error {
	if s.revoker == nil || claims == nil || claims.ID == "" || claims.ExpiresAt == nil {
		return nil
	}
	if err := s.revoker.Revoke(ctx, claims.ID, claims.ExpiresAt.Time); err != nil {
		return apperror.Internal(err)
	}
	return nil
}

func (s *authService) ChangePassword(ctx context.Context, actor Actor, req ChangePasswordRequest) error {
	user, err := s.users.FindByID(ctx, actor.UserID, false)
	if err != nil {
		return translate(err, "user")
	}
	if err := auth.CheckPassword(user.PasswordHash, req.CurrentPassword); err != nil {
		return apperror.Validation("request validation failed", apperror.FieldError{Field: "current_password", Message: "is incorrect"})
	}

	hash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		return apperror.Internal(err)
	}
	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.users.SetPassword(txCtx, user.ID, hash); err != nil {
			return err
		}
		return s.activity.log(txCtx, actor, model.ActionPassword, "user", user.ID, user.Email, nil)
	})
	return translate(err, "user")
}
