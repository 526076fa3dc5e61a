package database

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"audittracker/internal/auth"
	"audittracker/internal/model"
	"audittracker/internal/policy"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AdminSeed describes the bootstrap administrator account.
type AdminSeed struct {
	Email    string
	Password string
	Name     string
}

type pageSeed struct {
	Name  string
	Route string
}

var defaultPages = []pageSeed{
	{"Dashboard", "/dashboard"},
	{"Vessels", "/vessels"},
	{"Audit Companies", "/audit-companies"},
	{"Audit Parties", "/audit-parties"},
	{"Audit Types", "/audit-types"},
	{"Auditors", "/auditors"},
	{"Audits", "/audits"},
	{"Findings", "/findings"},
	{"Users", "/users"},
	{"Roles", "/roles"},
	{"Settings", "/settings"},
	{"Activity Log", "/activity-logs"},
}

// pageForAction maps a policy action prefix to the page that exposes it.
var pageForAction = map[string]string{
	policy.Users:          "/users",
	policy.Roles:          "/roles",
	policy.Permissions:    "/roles",
	policy.Pages:          "/roles",
	policy.Vessels:        "/vessels",
	policy.AuditCompanies: "/audit-companies",
	policy.AuditParties:   "/audit-parties",
	policy.AuditTypes:     "/audit-types",
	policy.Auditors:       "/auditors",
	policy.Audits:         "/audits",
	policy.Findings:       "/findings",
	"evidence":            "/findings",
	"settings":            "/settings",
	"dashboard":           "/dashboard",
	"activity":            "/activity-logs",
}

// Seed creates the default pages, permissions, roles, settings row and an Admin user
// when they are missing. Existing rows are left untouched.
func Seed(ctx context.Context, db *gorm.DB, p *policy.Policy, admin AdminSeed) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		pages := make(map[string]model.Page, len(defaultPages))
		for _, ps := range defaultPages {
			page := model.Page{Name: ps.Name, Route: ps.Route, IsActive: true}
			if err := tx.Where("route = ?", ps.Route).FirstOrCreate(&page).Error; err != nil {
				return fmt.Errorf("seed page %q: %w", ps.Route, err)
			}
			pages[ps.Route] = page
		}

		// One permission row per policy action, attached to every role the policy allows.
		rolePerms := make(map[string][]model.Permission)
		for _, action := range p.Actions() {
			entity, verb := splitAction(action)
			page, ok := pages[pageForAction[entity]]
			if !ok {
				continue
			}
			perm := model.Permission{Name: string(action), PageID: page.ID, Action: verb}
			if err := tx.Where("name = ?", perm.Name).FirstOrCreate(&perm).Error; err != nil {
				return fmt.Errorf("seed permission %q: %w", action, err)
			}
			for _, roleName := range p.Roles(action) {
				rolePerms[roleName] = append(rolePerms[roleName], perm)
			}
		}

		roles := make(map[string]model.Role)
		for _, name := range []string{policy.RoleAdmin, policy.RoleEncoder, policy.RoleAuditor, policy.RoleViewer} {
			var role model.Role
			err := tx.Where("name = ?", name).First(&role).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				role = model.Role{Name: name, Description: name + " (built-in)", IsSystem: true, IsActive: true}
				if err := tx.Create(&role).Error; err != nil {
					return fmt.Errorf("seed role %q: %w", name, err)
				}
				if err := tx.Model(&role).Association("Permissions").Replace(rolePerms[name]); err != nil {
					return fmt.Errorf("seed role %q permissions: %w", name, err)
				}
			} else if err != nil {
				return fmt.Errorf("seed role %q: %w", name, err)
			}
			roles[name] = role
		}

		settings := model.Settings{ID: model.SettingsID, CompanyName: "Audit Tracker", DefaultFindingDueDays: 30}
		if err := tx.Where("id = ?", model.SettingsID).FirstOrCreate(&settings).Error; err != nil {
			return fmt.Errorf("seed settings: %w", err)
		}

		return seedAdmin(tx, admin, roles[policy.RoleAdmin].ID)
	})
}

// seedAdmin creates the bootstrap administrator unless a user with that email exists.
// Soft-deleted users count: their email is still held by the unique index.
func seedAdmin(tx *gorm.DB, admin AdminSeed, roleID uuid.UUID) error {
	email := strings.ToLower(strings.TrimSpace(admin.Email))
	if email == "" || admin.Password == "" {
		return nil
	}
	var count int64
	if err := tx.Unscoped().Model(&model.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}
	if count > 0 {
		return nil
	}
	hash, err := auth.HashPassword(admin.Password)
	if err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}
	user := model.User{
		Name:         admin.Name,
		Email:        email,
		PasswordHash: hash,
		RoleID:       roleID,
		IsActive:     true,
	}
	if err := tx.Create(&user).Error; err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}
	return nil
}

func splitAction(a policy.Action) (entity, verb string) {
	entity, verb, _ = strings.Cut(string(a), ".")
	return entity, verb
}
