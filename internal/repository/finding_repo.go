package repository

import (
	"context"

	"audittracker/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type FindingRepository interface {
	SoftDeleteRepository[model.Finding]
	// Transition moves a live finding from one status to another and applies fields in
	// the same statement. It reports false when the finding was not in the from state.
	Transition(ctx context.Context, id uuid.UUID, from, to string, fields map[string]interface{}) (bool, error)
}

type findingRepository struct {
	SoftDeleteRepository[model.Finding]
	db *gorm.DB
}

func NewFindingRepository(db *gorm.DB) FindingRepository {
	return &findingRepository{
		SoftDeleteRepository: NewSoftDeleteRepository[model.Finding](db, TableOptions{
			SearchColumns: []string{"reference_no", "description", "category"},
			Order:         "created_at DESC",
			Preloads:      []string{"Audit", "Audit.Vessel"},
		}),
		db: db,
	}
}

func (r *findingRepository) Transition(ctx context.Context, id uuid.UUID, from, to string, fields map[string]interface{}) (bool, error) {
	values := make(map[string]interface{}, len(fields)+1)
	for k, v := range fields {
		values[k] = v
	}
	values["status"] = to

	res := Conn(ctx, r.db).Model(&model.Finding{}).
		Where("id = ? AND status = ?", id, from).
		Updates(values)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
