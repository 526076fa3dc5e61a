package service

import (
	"context"
	"strings"
	"time"

	"audittracker/internal/apperror"
	"audittracker/internal/model"
	"audittracker/internal/repository"
	"audittracker/internal/websocket"

	"github.com/google/uuid"
)

const dateLayout = "2006-01-02"

type CreateAuditRequest struct {
	ReferenceNo    string     `json:"reference_no" binding:"omitempty,max=100"`
	VesselID       uuid.UUID  `json:"vessel_id" binding:"required"`
	AuditTypeID    uuid.UUID  `json:"audit_type_id" binding:"required"`
	AuditPartyID   uuid.UUID  `json:"audit_party_id" binding:"required"`
	AuditCompanyID *uuid.UUID `json:"audit_company_id"`
	AuditorID      *uuid.UUID `json:"auditor_id"`
	Status         string     `json:"status" binding:"omitempty,oneof=planned in_progress completed cancelled"`
	StartDate      string     `json:"start_date" binding:"required,datetime=2006-01-02"`
	EndDate        *string    `json:"end_date" binding:"omitempty,datetime=2006-01-02"`
	Location       string     `json:"location" binding:"omitempty,max=255"`
	Remarks        string     `json:"remarks"`
}

type UpdateAuditRequest struct {
	ReferenceNo    *string    `json:"reference_no" binding:"omitempty,max=100"`
	VesselID       *uuid.UUID `json:"vessel_id"`
	AuditTypeID    *uuid.UUID `json:"audit_type_id"`
	AuditPartyID   *uuid.UUID `json:"audit_party_id"`
	AuditCompanyID *uuid.UUID `json:"audit_company_id"`
	AuditorID      *uuid.UUID `json:"auditor_id"`
	Status         *string    `json:"status" binding:"omitempty,oneof=planned in_progress completed cancelled"`
	StartDate      *string    `json:"start_date" binding:"omitempty,datetime=2006-01-02"`
	EndDate        *string    `json:"end_date" binding:"omitempty,datetime=2006-01-02"`
	Location       *string    `json:"location" binding:"omitempty,max=255"`
	Remarks        *string    `json:"remarks"`
}

// AuditReferences are the master-data repositories an audit points at.
type AuditReferences struct {
	Vessels   repository.SoftDeleteRepository[model.Vessel]
	Types     repository.SoftDeleteRepository[model.AuditType]
	Parties   repository.SoftDeleteRepository[model.AuditParty]
	Companies repository.SoftDeleteRepository[model.AuditCompany]
	Auditors  repository.SoftDeleteRepository[model.Auditor]
}

type AuditService = CRUDService[model.Audit, CreateAuditRequest, UpdateAuditRequest]

type auditService struct {
	crud[model.Audit]
	refs   AuditReferences
	events EventPublisher
}

func NewAuditService(repo repository.SoftDeleteRepository[model.Audit], refs AuditReferences, tx repository.TransactionManager, activity repository.ActivityRepository, events EventPublisher) AuditService {
	return &auditService{
		crud: crud[model.Audit]{
			repo:       repo,
			tx:         tx,
			activity:   activityLogger{repo: activity},
			entityType: "audit",
			label:      "audit",
			filters: []filter{
				uuidFilter("vessel_id", "vessel_id"),
				uuidFilter("audit_type_id", "audit_type_id"),
				uuidFilter("audit_party_id", "audit_party_id"),
				uuidFilter("audit_company_id", "audit_company_id"),
				uuidFilter("auditor_id", "auditor_id"),
				textFilter("status", "status"),
			},
			id:   func(a *model.Audit) uuid.UUID { return a.ID },
			name: func(a *model.Audit) string { return a.ReferenceNo },
		},
		refs:   refs,
		events: publisherOrNop(events),
	}
}

func (s *auditService) Create(ctx context.Context, actor Actor, req CreateAuditRequest) (*model.Audit, error) {
	start, err := parseDate("start_date", &req.StartDate)
	if err != nil {
		return nil, err
	}
	if start == nil {
		return nil, apperror.Validation("request validation failed", apperror.FieldError{Field: "start_date", Message: "is required"})
	}
	end, err := parseDate("end_date", req.EndDate)
	if err != nil {
		return nil, err
	}
	if err := checkDateRange(start, end); err != nil {
		return nil, err
	}
	if err := s.checkReferences(ctx, &req.VesselID, &req.AuditTypeID, &req.AuditPartyID, req.AuditCompanyID, req.AuditorID); err != nil {
		return nil, err
	}

	status := req.Status
	if status == "" {
		status = model.AuditStatusPlanned
	}
	createdBy := actor.UserID
	audit := &model.Audit{
		ReferenceNo:    strings.TrimSpace(req.ReferenceNo),
		VesselID:       req.VesselID,
		AuditTypeID:    req.AuditTypeID,
		AuditPartyID:   req.AuditPartyID,
		AuditCompanyID: req.AuditCompanyID,
		AuditorID:      req.AuditorID,
		Status:         status,
		StartDate:      *start,
		EndDate:        end,
		Location:       strings.TrimSpace(req.Location),
		Remarks:        strings.TrimSpace(req.Remarks),
		CreatedBy:      &createdBy,
	}
	if err := s.create(ctx, actor, audit); err != nil {
		return nil, err
	}

	created, err := s.Get(ctx, audit.ID, false)
	if err != nil {
		return nil, err
	}
	s.events.Publish(websocket.EventAuditCreated, created)
	return created, nil
}

func (s *auditService) Update(ctx context.Context, actor Actor, id uuid.UUID, req UpdateAuditRequest) (*model.Audit, error) {
	current, err := s.Get(ctx, id, false)
	if err != nil {
		return nil, err
	}
	if err := s.checkReferences(ctx, req.VesselID, req.AuditTypeID, req.AuditPartyID, req.AuditCompanyID, req.AuditorID); err != nil {
		return nil, err
	}

	fields := patch{}.
		str("reference_no", req.ReferenceNo).
		str("status", req.Status).
		str("location", req.Location).
		str("remarks", req.Remarks)

	start, end := &current.StartDate, current.EndDate
	if req.StartDate != nil {
		if start, err = parseDate("start_date", req.StartDate); err != nil {
			return nil, err
		}
		fields["start_date"] = *start
	}
	if req.EndDate != nil {
		if end, err = parseDate("end_date", req.EndDate); err != nil {
			return nil, err
		}
		fields["end_date"] = end
	}
	if err := checkDateRange(start, end); err != nil {
		return nil, err
	}

	if req.VesselID != nil {
		fields["vessel_id"] = *req.VesselID
	}
	if req.AuditTypeID != nil {
		fields["audit_type_id"] = *req.AuditTypeID
	}
	if req.AuditPartyID != nil {
		fields["audit_party_id"] = *req.AuditPartyID
	}
	if req.AuditCompanyID != nil {
		fields["audit_company_id"] = *req.AuditCompanyID
	}
	if req.AuditorID != nil {
		fields["auditor_id"] = *req.AuditorID
	}
	return s.update(ctx, actor, id, fields)
}

func (s *auditService) checkReferences(ctx context.Context, vesselID, typeID, partyID, companyID, auditorID *uuid.UUID) error {
	if vesselID != nil {
		if err := requireLive(ctx, s.refs.Vessels, "vessel_id", "vessel", *vesselID); err != nil {
			return err
		}
	}
	if typeID != nil {
		if err := requireLive(ctx, s.refs.Types, "audit_type_id", "audit type", *typeID); err != nil {
			return err
		}
	}
	if partyID != nil {
		if err := requireLive(ctx, s.refs.Parties, "audit_party_id", "audit party", *partyID); err != nil {
			return err
		}
	}
	if companyID != nil {
		if err := requireLive(ctx, s.refs.Companies, "audit_company_id", "audit company", *companyID); err != nil {
			return err
		}
	}
	if auditorID != nil {
		if err := requireLive(ctx, s.refs.Auditors, "auditor_id", "auditor", *auditorID); err != nil {
			return err
		}
	}
	return nil
}

// parseDate parses an optional YYYY-MM-DD value. Empty input yields nil.
func parseDate(field string, v *string) (*time.Time, error) {
	if v == nil || strings.TrimSpace(*v) == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, strings.TrimSpace(*v))
	if err != nil {
		return nil, apperror.Validation("invalid "+field, apperror.FieldError{Field: field, Message: "must be a date in format " + dateLayout})
	}
	return &t, nil
}

func checkDateRange(start, end *time.Time) error {
	if start != nil && end != nil && end.Before(*start) {
		return apperror.Validation("invalid date range", apperror.FieldError{Field: "end_date", Message: "must not be before start_date"})
	}
	return nil
}
