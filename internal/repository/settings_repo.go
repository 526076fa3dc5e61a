package repository

import (
	"context"
	"errors"

	"audittracker/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SettingsRepository interface {
	Get(ctx context.Context) (*model.Settings, error)
	Save(ctx context.Context, s *model.Settings) error
}

type settingsRepository struct {
	db *gorm.DB
}

func NewSettingsRepository(db *gorm.DB) SettingsRepository {
	return &settingsRepository{db: db}
}

// Get returns the settings row, or defaults when it has never been written.
func (r *settingsRepository) Get(ctx context.Context) (*model.Settings, error) {
	var s model.Settings
	err := Conn(ctx, r.db).First(&s, "id = ?", model.SettingsID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &model.Settings{ID: model.SettingsID, DefaultFindingDueDays: 30}, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Save upserts the singleton row.
func (r *settingsRepository) Save(ctx context.Context, s *model.Settings) error {
	s.ID = model.SettingsID
	return Conn(ctx, r.db).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		UpdateAll: true,
	}).Create(s).Error
}
