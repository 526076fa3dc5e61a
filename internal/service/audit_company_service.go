package service

import (
	"context"
	"strings"

	"audittracker/internal/model"
	"audittracker/internal/repository"

	"github.com/google/uuid"
)

type CreateAuditCompanyRequest struct {
	Name         string `json:"name" binding:"required,notblank,max=255"`
	Address      string `json:"address"`
	ContactEmail string `json:"contact_email" binding:"omitempty,email"`
	ContactPhone string `json:"contact_phone" binding:"omitempty,max=50"`
	IsActive     *bool  `json:"is_active"`
}

type UpdateAuditCompanyRequest struct {
	Name         *string `json:"name" binding:"omitempty,notblank,max=255"`
	Address      *string `json:"address"`
	ContactEmail *string `json:"contact_email" binding:"omitempty,email"`
	ContactPhone *string `json:"contact_phone" binding:"omitempty,max=50"`
	IsActive     *bool   `json:"is_active"`
}

type AuditCompanyService = CRUDService[model.AuditCompany, CreateAuditCompanyRequest, UpdateAuditCompanyRequest]

type auditCompanyService struct {
	crud[model.AuditCompany]
}

func NewAuditCompanyService(repo repository.SoftDeleteRepository[model.AuditCompany], tx repository.TransactionManager, activity repository.ActivityRepository) AuditCompanyService {
	return &auditCompanyService{crud: crud[model.AuditCompany]{
		repo:       repo,
		tx:         tx,
		activity:   activityLogger{repo: activity},
		entityType: "audit_company",
		label:      "audit company",
		hasActive:  true,
		id:         func(c *model.AuditCompany) uuid.UUID { return c.ID },
		name:       func(c *model.AuditCompany) string { return c.Name },
	}}
}

func (s *auditCompanyService) Create(ctx context.Context, actor Actor, req CreateAuditCompanyRequest) (*model.AuditCompany, error) {
	company := &model.AuditCompany{
		Name:         strings.TrimSpace(req.Name),
		Address:      strings.TrimSpace(req.Address),
		ContactEmail: strings.TrimSpace(req.ContactEmail),
		ContactPhone: strings.TrimSpace(req.ContactPhone),
		IsActive:     boolOr(req.IsActive, true),
	}
	if err := s.create(ctx, actor, company); err != nil {
		return nil, err
	}
	return company, nil
}

func (s *auditCompanyService) Update(ctx context.Context, actor Actor, id uuid.UUID, req UpdateAuditCompanyRequest) (*model.AuditCompany, error) {
	fields := patch{}.
		str("name", req.Name).
		str("address", req.Address).
		str("contact_email", req.ContactEmail).
		str("contact_phone", req.ContactPhone).
		boolean("is_active", req.IsActive)
	return s.update(ctx, actor, id, fields)
}
