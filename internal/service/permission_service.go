package service

import (
	"context"
	"strings"

	"audittracker/internal/model"
	"audittracker/internal/repository"

	"github.com/google/uuid"
)

type CreatePermissionRequest struct {
	Name        string    `json:"name" binding:"required,notblank,max=100"`
	PageID      uuid.UUID `json:"page_id" binding:"required"`
	Action      string    `json:"action" binding:"required,notblank,max=50"`
	Description string    `json:"description"`
}

type UpdatePermissionRequest struct {
	Name        *string    `json:"name" binding:"omitempty,notblank,max=100"`
	PageID      *uuid.UUID `json:"page_id"`
	Action      *string    `json:"action" binding:"omitempty,notblank,max=50"`
	Description *string    `json:"description"`
}

type PermissionService = CRUDService[model.Permission, CreatePermissionRequest, UpdatePermissionRequest]

type permissionService struct {
	crud[model.Permission]
	pages repository.SoftDeleteRepository[model.Page]
}

func NewPermissionService(repo repository.SoftDeleteRepository[model.Permission], pages repository.SoftDeleteRepository[model.Page], tx repository.TransactionManager, activity repository.ActivityRepository) PermissionService {
	return &permissionService{
		crud: crud[model.Permission]{
			repo:       repo,
			tx:         tx,
			activity:   activityLogger{repo: activity},
			entityType: "permission",
			label:      "permission",
			filters:    []filter{uuidFilter("page_id", "page_id"), textFilter("action", "action")},
			id:         func(p *model.Permission) uuid.UUID { return p.ID },
			name:       func(p *model.Permission) string { return p.Name },
		},
		pages: pages,
	}
}

func (s *permissionService) Create(ctx context.Context, actor Actor, req CreatePermissionRequest) (*model.Permission, error) {
	if err := requireLive(ctx, s.pages, "page_id", "page", req.PageID); err != nil {
		return nil, err
	}

	perm := &model.Permission{
		Name:        strings.TrimSpace(req.Name),
		PageID:      req.PageID,
		Action:      strings.TrimSpace(req.Action),
		Description: strings.TrimSpace(req.Description),
	}
	if err := s.create(ctx, actor, perm); err != nil {
		return nil, err
	}
	return perm, nil
}

func (s *permissionService) Update(ctx context.Context, actor Actor, id uuid.UUID, req UpdatePermissionRequest) (*model.Permission, error) {
	fields := patch{}.
		str("name", req.Name).
		str("action", req.Action).
		str("description", req.Description)
	if req.PageID != nil {
		if err := requireLive(ctx, s.pages, "page_id", "page", *req.PageID); err != nil {
			return nil, err
		}
		fields["page_id"] = *req.PageID
	}
	return s.update(ctx, actor, id, fields)
}

type CreatePageRequest struct {
	Name     string `json:"name" binding:"required,notblank,max=100"`
	Route    string `json:"route" binding:"required,notblank,startswith=/,max=255"`
	IsActive *bool  `json:"is_active"`
}

type UpdatePageRequest struct {
	Name     *string `json:"name" binding:"omitempty,notblank,max=100"`
	Route    *string `json:"route" binding:"omitempty,startswith=/,max=255"`
	IsActive *bool   `json:"is_active"`
}

type PageService = CRUDService[model.Page, CreatePageRequest, UpdatePageRequest]

type pageService struct {
	crud[model.Page]
}

func NewPageService(repo repository.SoftDeleteRepository[model.Page], tx repository.TransactionManager, activity repository.ActivityRepository) PageService {
	return &pageService{crud: crud[model.Page]{
		repo:       repo,
		tx:         tx,
		activity:   activityLogger{repo: activity},
		entityType: "page",
		label:      "page",
		hasActive:  true,
		id:         func(p *model.Page) uuid.UUID { return p.ID },
		name:       func(p *model.Page) string { return p.Name },
	}}
}

func (s *pageService) Create(ctx context.Context, actor Actor, req CreatePageRequest) (*model.Page, error) {
	page := &model.Page{
		Name:     strings.TrimSpace(req.Name),
		Route:    strings.TrimSpace(req.Route),
		IsActive: boolOr(req.IsActive, true),
	}
	if err := s.create(ctx, actor, page); err != nil {
		return nil, err
	}
	return page, nil
}

func (s *pageService) Update(ctx context.Context, actor Actor, id uuid.UUID, req UpdatePageRequest) (*model.Page, error) {
	fields := patch{}.
		str("name", req.Name).
		str("route", req.Route).
		boolean("is_active", req.IsActive)
	return s.update(ctx, actor, id, fields)
}
