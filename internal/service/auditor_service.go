package service

import (
	"context"
	"strings"

	"audittracker/internal/model"
	"audittracker/internal/repository"

	"github.com/google/uuid"
)

type CreateAuditorRequest struct {
	Name      string    `json:"name" binding:"required,notblank,max=255"`
	Email     string    `json:"email" binding:"omitempty,email"`
	Phone     string    `json:"phone" binding:"omitempty,max=50"`
	CompanyID uuid.UUID `json:"company_id" binding:"required"`
	IsActive  *bool     `json:"is_active"`
}

type UpdateAuditorRequest struct {
	Name      *string    `json:"name" binding:"omitempty,notblank,max=255"`
	Email     *string    `json:"email" binding:"omitempty,email"`
	Phone     *string    `json:"phone" binding:"omitempty,max=50"`
	CompanyID *uuid.UUID `json:"company_id"`
	IsActive  *bool      `json:"is_active"`
}

type AuditorService = CRUDService[model.Auditor, CreateAuditorRequest, UpdateAuditorRequest]

type auditorService struct {
	crud[model.Auditor]
	companies repository.SoftDeleteRepository[model.AuditCompany]
}

func NewAuditorService(repo repository.SoftDeleteRepository[model.Auditor], companies repository.SoftDeleteRepository[model.AuditCompany], tx repository.TransactionManager, activity repository.ActivityRepository) AuditorService {
	return &auditorService{
		crud: crud[model.Auditor]{
			repo:       repo,
			tx:         tx,
			activity:   activityLogger{repo: activity},
			entityType: "auditor",
			label:      "auditor",
			hasActive:  true,
			filters:    []filter{uuidFilter("company_id", "company_id")},
			id:         func(a *model.Auditor) uuid.UUID { return a.ID },
			name:       func(a *model.Auditor) string { return a.Name },
		},
		companies: companies,
	}
}

func (s *auditorService) Create(ctx context.Context, actor Actor, req CreateAuditorRequest) (*model.Auditor, error) {
	if err := requireLive(ctx, s.companies, "company_id", "audit company", req.CompanyID); err != nil {
		return nil, err
	}

	auditor := &model.Auditor{
		Name:      strings.TrimSpace(req.Name),
		Email:     strings.TrimSpace(req.Email),
		Phone:     strings.TrimSpace(req.Phone),
		CompanyID: req.CompanyID,
		IsActive:  boolOr(req.IsActive, true),
	}
	if err := s.create(ctx, actor, auditor); err != nil {
		return nil, err
	}
	return auditor, nil
}

func (s *auditorService) Update(ctx context.Context, actor Actor, id uuid.UUID, req UpdateAuditorRequest) (*model.Auditor, error) {
	fields := patch{}.
		str("name", req.Name).
		str("email", req.Email).
		str("phone", req.Phone).
		boolean("is_active", req.IsActive)
	if req.CompanyID != nil {
		if err := requireLive(ctx, s.companies, "company_id", "audit company", *req.CompanyID); err != nil {
			return nil, err
		}
		fields["company_id"] = *req.CompanyID
	}
	return s.update(ctx, actor, id, fields)
}
