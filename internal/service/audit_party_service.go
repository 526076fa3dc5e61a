package service

import (
	"context"
	"strings"

	"audittracker/internal/model"
	"audittracker/internal/repository"

	"github.com/google/uuid"
)

type CreateAuditPartyRequest struct {
	Name        string `json:"name" binding:"required,notblank,max=255"`
	Description string `json:"description"`
	IsActive    *bool  `json:"is_active"`
}

type UpdateAuditPartyRequest struct {
	Name        *string `json:"name" binding:"omitempty,notblank,max=255"`
	Description *string `json:"description"`
	IsActive    *bool   `json:"is_active"`
}

type AuditPartyService = CRUDService[model.AuditParty, CreateAuditPartyRequest, UpdateAuditPartyRequest]

type auditPartyService struct {
	crud[model.AuditParty]
}

func NewAuditPartyService(repo repository.SoftDeleteRepository[model.AuditParty], tx repository.TransactionManager, activity repository.ActivityRepository) AuditPartyService {
	return &auditPartyService{crud: crud[model.AuditParty]{
		repo:       repo,
		tx:         tx,
		activity:   activityLogger{repo: activity},
		entityType: "audit_party",
		label:      "audit party",
		hasActive:  true,
		id:         func(p *model.AuditParty) uuid.UUID { return p.ID },
		name:       func(p *model.AuditParty) string { return p.Name },
	}}
}

func (s *auditPartyService) Create(ctx context.Context, actor Actor, req CreateAuditPartyRequest) (*model.AuditParty, error) {
	party := &model.AuditParty{
		Name:        strings.TrimSpace(req.Name),
		Description: strings.TrimSpace(req.Description),
		IsActive:    boolOr(req.IsActive, true),
	}
	if err := s.create(ctx, actor, party); err != nil {
		return nil, err
	}
	return party, nil
}

func (s *auditPartyService) Update(ctx context.Context, actor Actor, id uuid.UUID, req UpdateAuditPartyRequest) (*model.AuditParty, error) {
	fields := patch{}.
		str("name", req.Name).
		str("description", req.Description).
		boolean("is_active", req.IsActive)
	return s.update(ctx, actor, id, fields)
}

type CreateAuditTypeRequest struct {
	Name        string `json:"name" binding:"required,notblank,max=255"`
	Code        string `json:"code" binding:"omitempty,max=50"`
	Description string `json:"description"`
	IsActive    *bool  `json:"is_active"`
}

type UpdateAuditTypeRequest struct {
	Name        *string `json:"name" binding:"omitempty,notblank,max=255"`
	Code        *string `json:"code" binding:"omitempty,max=50"`
	Description *string `json:"description"`
	IsActive    *bool   `json:"is_active"`
}

type AuditTypeService = CRUDService[model.AuditType, CreateAuditTypeRequest, UpdateAuditTypeRequest]

type auditTypeService struct {
	crud[model.AuditType]
}

func NewAuditTypeService(repo repository.SoftDeleteRepository[model.AuditType], tx repository.TransactionManager, activity repository.ActivityRepository) AuditTypeService {
	return &auditTypeService{crud: crud[model.AuditType]{
		repo:       repo,
		tx:         tx,
		activity:   activityLogger{repo: activity},
		entityType: "audit_type",
		label:      "audit type",
		hasActive:  true,
		id:         func(t *model.AuditType) uuid.UUID { return t.ID },
		name:       func(t *model.AuditType) string { return t.Name },
	}}
}

func (s *auditTypeService) Create(ctx context.Context, actor Actor, req CreateAuditTypeRequest) (*model.AuditType, error) {
	auditType := &model.AuditType{
		Name:        strings.TrimSpace(req.Name),
		Code:        strings.ToUpper(strings.TrimSpace(req.Code)),
		Description: strings.TrimSpace(req.Description),
		IsActive:    boolOr(req.IsActive, true),
	}
	if err := s.create(ctx, actor, auditType); err != nil {
		return nil, err
	}
	return auditType, nil
}

func (s *auditTypeService) Update(ctx context.Context, actor Actor, id uuid.UUID, req UpdateAuditTypeRequest) (*model.AuditType, error) {
	fields := patch{}.
		str("name", req.Name).
		str("description", req.Description).
		boolean("is_active", req.IsActive)
	if req.Code != nil {
		fields["code"] = strings.ToUpper(strings.TrimSpace(*req.Code))
	}
	return s.update(ctx, actor, id, fields)
}
