package repository

import (
	"context"

	"audittracker/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserRepository defines data access for User entities
type UserRepository interface {
	SoftDeleteRepository[model.User]
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	SetPassword(ctx context.Context, id uuid.UUID, hash string) error
	CountByRole(ctx context.Context, roleID uuid.UUID) (int64, error)
}

type userRepository struct {
	SoftDeleteRepository[model.User]
	db *gorm.DB
}

// NewUserRepository returns a new instance of UserRepository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{
		SoftDeleteRepository: NewSoftDeleteRepository[model.User](db, TableOptions{
			SearchColumns: []string{"name", "email"},
			Order:         "name ASC",
			Preloads:      []string{"Role"},
		}),
		db: db,
	}
}

// GetByEmail returns the live user with the given email, role preloaded.
func (r *userRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	if err := Conn(ctx, r.db).Preload("Role").First(&user, "email = ?", email).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) SetPassword(ctx context.Context, id uuid.UUID, hash string) error {
	return r.Update(ctx, id, map[string]interface{}{"password_hash": hash})
}

// CountByRole counts live users assigned to a role.
func (r *userRepository) CountByRole(ctx context.Context, roleID uuid.UUID) (int64, error) {
	var count int64
	err := Conn(ctx, r.db).Model(&model.User{}).Where("role_id = ?", roleID).Count(&count).Error
	return count, err
}
