package repository

import (
	"context"

	"audittracker/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type RoleRepository interface {
	SoftDeleteRepository[model.Role]
	FindByName(ctx context.Context, name string) (*model.Role, error)
	ReplacePermissions(ctx context.Context, roleID uuid.UUID, permissionIDs []uuid.UUID) error
	GetPermissionNamesByRoleID(ctx context.Context, roleID uuid.UUID) ([]string, error)
	CountPermissions(ctx context.Context, ids []uuid.UUID) (int64, error)
}

type roleRepository struct {
	SoftDeleteRepository[model.Role]
	db *gorm.DB
}

func NewRoleRepository(db *gorm.DB) RoleRepository {
	return &roleRepository{
		SoftDeleteRepository: NewSoftDeleteRepository[model.Role](db, TableOptions{
			SearchColumns: []string{"name", "description"},
			Order:         "name ASC",
			Preloads:      []string{"Permissions"},
		}),
		db: db,
	}
}

func (r *roleRepository) FindByName(ctx context.Context, name string) (*model.Role, error) {
	var role model.Role
	if err := Conn(ctx, r.db).Where("name = ?", name).First(&role).Error; err != nil {
		return nil, err
	}
	return &role, nil
}

// ReplacePermissions swaps the role's permission set for the given live permissions.
func (r *roleRepository) ReplacePermissions(ctx context.Context, roleID uuid.UUID, permissionIDs []uuid.UUID) error {
	db := Conn(ctx, r.db)
	var role model.Role
	if err := db.First(&role, "id = ?", roleID).Error; err != nil {
		return err
	}

	perms := make([]model.Permission, 0, len(permissionIDs))
	if len(permissionIDs) > 0 {
		if err := db.Where("id IN ?", permissionIDs).Find(&perms).Error; err != nil {
			return err
		}
	}

	return db.Model(&role).Association("Permissions").Replace(perms)
}

// GetPermissionNamesByRoleID lists the names of live permissions granted to a role.
func (r *roleRepository) GetPermissionNamesByRoleID(ctx context.Context, roleID uuid.UUID) ([]string, error) {
	names := make([]string, 0)
	err := Conn(ctx, r.db).Raw(`
		SELECT p.name FROM permissions p
		INNER JOIN role_permissions rp ON rp.permission_id = p.id
		WHERE rp.role_id = ? AND p.deleted_at IS NULL
		ORDER BY p.name
	`, roleID).Scan(&names).Error
	return names, err
}

// CountPermissions counts how many of ids reference live permissions.
func (r *roleRepository) CountPermissions(ctx context.Context, ids []uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	var count int64
	err := Conn(ctx, r.db).Model(&model.Permission{}).Where("id IN ?", ids).Count(&count).Error
	return count, err
}
