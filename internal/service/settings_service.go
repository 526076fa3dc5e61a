package service

import (
	"context"
	"strings"

	"audittracker/internal/apperror"
	"audittracker/internal/model"
	"audittracker/internal/repository"

	"github.com/google/uuid"
)

type UpdateSettingsRequest struct {
	CompanyName           *string `json:"company_name" binding:"omitempty,max=255"`
	Address               *string `json:"address"`
	Email                 *string `json:"email" binding:"omitempty,email"`
	Phone                 *string `json:"phone" binding:"omitempty,max=50"`
	LogoPath              *string `json:"logo_path" binding:"omitempty,max=500"`
	DefaultFindingDueDays *int    `json:"default_finding_due_days" binding:"omitempty,min=0,max=3650"`
}

type SettingsService interface {
	Get(ctx context.Context) (*model.Settings, error)
	Update(ctx context.Context, actor Actor, req UpdateSettingsRequest) (*model.Settings, error)
}

type settingsService struct {
	repo     repository.SettingsRepository
	tx       repository.TransactionManager
	activity activityLogger
}

func NewSettingsService(repo repository.SettingsRepository, tx repository.TransactionManager, activity repository.ActivityRepository) SettingsService {
	return &settingsService{repo: repo, tx: tx, activity: activityLogger{repo: activity}}
}

func (s *settingsService) Get(ctx context.Context) (*model.Settings, error) {
	settings, err := s.repo.Get(ctx)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return settings, nil
}

func (s *settingsService) Update(ctx context.Context, actor Actor, req UpdateSettingsRequest) (*model.Settings, error) {
	var result *model.Settings
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		settings, err := s.repo.Get(txCtx)
		if err != nil {
			return err
		}
		setString(&settings.CompanyName, req.CompanyName)
		setString(&settings.Address, req.Address)
		setString(&settings.Email, req.Email)
		setString(&settings.Phone, req.Phone)
		setString(&settings.LogoPath, req.LogoPath)
		if req.DefaultFindingDueDays != nil {
			settings.DefaultFindingDueDays = *req.DefaultFindingDueDays
		}

		if err := s.repo.Save(txCtx, settings); err != nil {
			return err
		}
		result = settings
		return s.activity.log(txCtx, actor, model.ActionUpdate, "settings", uuid.Nil, "settings", req)
	})
	if err != nil {
		return nil, translate(err, "settings")
	}
	return result, nil
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = strings.TrimSpace(*v)
	}
}
