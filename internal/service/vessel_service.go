package service

import (
	"context"
	"strings"

	"audittracker/internal/model"
	"audittracker/internal/repository"

	"github.com/google/uuid"
)

type CreateVesselRequest struct {
	Name       string `json:"name" binding:"required,notblank,max=255"`
	IMONumber  string `json:"imo_number" binding:"omitempty,max=20"`
	VesselType string `json:"vessel_type" binding:"omitempty,max=100"`
	Flag       string `json:"flag" binding:"omitempty,max=100"`
	IsActive   *bool  `json:"is_active"`
}

type UpdateVesselRequest struct {
	Name       *string `json:"name" binding:"omitempty,notblank,max=255"`
	IMONumber  *string `json:"imo_number" binding:"omitempty,max=20"`
	VesselType *string `json:"vessel_type" binding:"omitempty,max=100"`
	Flag       *string `json:"flag" binding:"omitempty,max=100"`
	IsActive   *bool   `json:"is_active"`
}

type VesselService = CRUDService[model.Vessel, CreateVesselRequest, UpdateVesselRequest]

type vesselService struct {
	crud[model.Vessel]
}

func NewVesselService(repo repository.SoftDeleteRepository[model.Vessel], tx repository.TransactionManager, activity repository.ActivityRepository) VesselService {
	return &vesselService{crud: crud[model.Vessel]{
		repo:       repo,
		tx:         tx,
		activity:   activityLogger{repo: activity},
		entityType: "vessel",
		label:      "vessel",
		hasActive:  true,
		id:         func(v *model.Vessel) uuid.UUID { return v.ID },
		name:       func(v *model.Vessel) string { return v.Name },
	}}
}

func (s *vesselService) Create(ctx context.Context, actor Actor, req CreateVesselRequest) (*model.Vessel, error) {
	vessel := &model.Vessel{
		Name:       strings.TrimSpace(req.Name),
		IMONumber:  strings.TrimSpace(req.IMONumber),
		VesselType: strings.TrimSpace(req.VesselType),
		Flag:       strings.TrimSpace(req.Flag),
		IsActive:   boolOr(req.IsActive, true),
	}
	if err := s.create(ctx, actor, vessel); err != nil {
		return nil, err
	}
	return vessel, nil
}

func (s *vesselService) Update(ctx context.Context, actor Actor, id uuid.UUID, req UpdateVesselRequest) (*model.Vessel, error) {
	fields := patch{}.
		str("name", req.Name).
		str("imo_number", req.IMONumber).
		str("vessel_type", req.VesselType).
		str("flag", req.Flag).
		boolean("is_active", req.IsActive)
	return s.update(ctx, actor, id, fields)
}
