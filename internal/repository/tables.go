package repository

import (
	"audittracker/internal/model"

	"gorm.io/gorm"
)

func NewPermissionRepository(db *gorm.DB) SoftDeleteRepository[model.Permission] {
	return NewSoftDeleteRepository[model.Permission](db, TableOptions{
		SearchColumns: []string{"name", "action"},
		Order:         "name ASC",
		Preloads:      []string{"Page"},
	})
}

func NewPageRepository(db *gorm.DB) SoftDeleteRepository[model.Page] {
	return NewSoftDeleteRepository[model.Page](db, TableOptions{
		SearchColumns: []string{"name", "route"},
		Order:         "name ASC",
	})
}

func NewVesselRepository(db *gorm.DB) SoftDeleteRepository[model.Vessel] {
	return NewSoftDeleteRepository[model.Vessel](db, TableOptions{
		SearchColumns: []string{"name", "imo_number", "flag"},
		Order:         "name ASC",
	})
}

func NewAuditCompanyRepository(db *gorm.DB) SoftDeleteRepository[model.AuditCompany] {
	return NewSoftDeleteRepository[model.AuditCompany](db, TableOptions{
		SearchColumns: []string{"name", "contact_email"},
		Order:         "name ASC",
	})
}

func NewAuditPartyRepository(db *gorm.DB) SoftDeleteRepository[model.AuditParty] {
	return NewSoftDeleteRepository[model.AuditParty](db, TableOptions{
		SearchColumns: []string{"name"},
		Order:         "name ASC",
	})
}

func NewAuditTypeRepository(db *gorm.DB) SoftDeleteRepository[model.AuditType] {
	return NewSoftDeleteRepository[model.AuditType](db, TableOptions{
		SearchColumns: []string{"name", "code"},
		Order:         "name ASC",
	})
}

func NewAuditorRepository(db *gorm.DB) SoftDeleteRepository[model.Auditor] {
	return NewSoftDeleteRepository[model.Auditor](db, TableOptions{
		SearchColumns: []string{"name", "email"},
		Order:         "name ASC",
		Preloads:      []string{"Company"},
	})
}

func NewAuditRepository(db *gorm.DB) SoftDeleteRepository[model.Audit] {
	return NewSoftDeleteRepository[model.Audit](db, TableOptions{
		SearchColumns: []string{"reference_no", "location", "remarks"},
		Order:         "start_date DESC, created_at DESC",
		Preloads:      []string{"Vessel", "AuditType", "AuditParty", "AuditCompany", "Auditor"},
	})
}
