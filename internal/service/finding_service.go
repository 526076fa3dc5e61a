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

type CreateFindingRequest struct {
	AuditID          uuid.UUID `json:"audit_id" binding:"required"`
	ReferenceNo      string    `json:"reference_no" binding:"omitempty,max=100"`
	Category         string    `json:"category" binding:"omitempty,max=100"`
	Severity         string    `json:"severity" binding:"omitempty,oneof=low medium high"`
	Description      string    `json:"description" binding:"required,notblank"`
	CorrectiveAction string    `json:"corrective_action"`
	DueDate          *string   `json:"due_date" binding:"omitempty,datetime=2006-01-02"`
}

// UpdateFindingRequest edits finding details. Status only changes through Close and Reopen.
type UpdateFindingRequest struct {
	ReferenceNo      *string `json:"reference_no" binding:"omitempty,max=100"`
	Category         *string `json:"category" binding:"omitempty,max=100"`
	Severity         *string `json:"severity" binding:"omitempty,oneof=low medium high"`
	Description      *string `json:"description" binding:"omitempty,notblank"`
	CorrectiveAction *string `json:"corrective_action"`
	DueDate          *string `json:"due_date" binding:"omitempty,datetime=2006-01-02"`
}

type CloseFindingRequest struct {
	ClosureRemarks string `json:"closure_remarks"`
}

type ReopenFindingRequest struct {
	Reason string `json:"reason"`
}

type FindingService interface {
	CRUDService[model.Finding, CreateFindingRequest, UpdateFindingRequest]
	Close(ctx context.Context, actor Actor, id uuid.UUID, req CloseFindingRequest) (*model.Finding, error)
	Reopen(ctx context.Context, actor Actor, id uuid.UUID, req ReopenFindingRequest) (*model.Finding, error)
}

type findingService struct {
	crud[model.Finding]
	findings repository.FindingRepository
	audits   repository.SoftDeleteRepository[model.Audit]
	settings repository.SettingsRepository
	events   EventPublisher
	now      func() time.Time
}

func NewFindingService(findings repository.FindingRepository, audits repository.SoftDeleteRepository[model.Audit], settings repository.SettingsRepository, tx repository.TransactionManager, activity repository.ActivityRepository, events EventPublisher) FindingService {
	return &findingService{
		crud: crud[model.Finding]{
			repo:       findings,
			tx:         tx,
			activity:   activityLogger{repo: activity},
			entityType: "finding",
			label:      "finding",
			filters: []filter{
				uuidFilter("audit_id", "audit_id"),
				textFilter("status", "status"),
				textFilter("severity", "severity"),
			},
			id:   func(f *model.Finding) uuid.UUID { return f.ID },
			name: func(f *model.Finding) string { return f.ReferenceNo },
		},
		findings: findings,
		audits:   audits,
		settings: settings,
		events:   publisherOrNop(events),
		now:      time.Now,
	}
}

// List supports an extra vessel_id filter resolved through the owning audit.
func (s *findingService) List(ctx context.Context, params ListParams) (Page[model.Finding], error) {
	raw := strings.TrimSpace(params.Filters["vessel_id"])
	if raw == "" {
		return s.list(ctx, params)
	}
	vesselID, err := ParseID("vessel_id", raw)
	if err != nil {
		return Page[model.Finding]{}, err
	}
	return s.list(ctx, params, repository.Where("audit_id IN (SELECT id FROM audits WHERE vessel_id = ?)", vesselID))
}

func (s *findingService) Create(ctx context.Context, actor Actor, req CreateFindingRequest) (*model.Finding, error) {
	if err := requireLive(ctx, s.audits, "audit_id", "audit", req.AuditID); err != nil {
		return nil, err
	}

	due, err := parseDate("due_date", req.DueDate)
	if err != nil {
		return nil, err
	}
	if due == nil {
		settings, err := s.settings.Get(ctx)
		if err != nil {
			return nil, apperror.Internal(err)
		}
		if settings.DefaultFindingDueDays > 0 {
			d := s.now().UTC().Truncate(24*time.Hour).AddDate(0, 0, settings.DefaultFindingDueDays)
			due = &d
		}
	}

	severity := req.Severity
	if severity == "" {
		severity = model.SeverityMedium
	}
	createdBy := actor.UserID
	finding := &model.Finding{
		AuditID:          req.AuditID,
		ReferenceNo:      strings.TrimSpace(req.ReferenceNo),
		Category:         strings.TrimSpace(req.Category),
		Severity:         severity,
		Description:      strings.TrimSpace(req.Description),
		CorrectiveAction: strings.TrimSpace(req.CorrectiveAction),
		Status:           model.FindingStatusOpen,
		DueDate:          due,
		CreatedBy:        &createdBy,
	}
	if err := s.create(ctx, actor, finding); err != nil {
		return nil, err
	}

	s.events.Publish(websocket.EventFindingCreated, finding)
	return finding, nil
}

func (s *findingService) Update(ctx context.Context, actor Actor, id uuid.UUID, req UpdateFindingRequest) (*model.Finding, error) {
	fields := patch{}.
		str("reference_no", req.ReferenceNo).
		str("category", req.Category).
		str("severity", req.Severity).
		str("description", req.Description).
		str("corrective_action", req.CorrectiveAction)
	if req.DueDate != nil {
		due, err := parseDate("due_date", req.DueDate)
		if err != nil {
			return nil, err
		}
		fields["due_date"] = due
	}
	return s.update(ctx, actor, id, fields)
}

// Close moves an open finding to closed.
func (s *findingService) Close(ctx context.Context, actor Actor, id uuid.UUID, req CloseFindingRequest) (*model.Finding, error) {
	fields := map[string]interface{}{
		"closed_at":       s.now(),
		"closed_by":       actor.UserID,
		"closure_remarks": strings.TrimSpace(req.ClosureRemarks),
	}
	finding, err := s.transition(ctx, actor, id, model.FindingStatusOpen, model.FindingStatusClosed, model.ActionClose, fields, req)
	if err != nil {
		return nil, err
	}
	s.events.Publish(websocket.EventFindingClosed, finding)
	return finding, nil
}

// Reopen moves a closed finding back to open and clears its closure data.
func (s *findingService) Reopen(ctx context.Context, actor Actor, id uuid.UUID, req ReopenFindingRequest) (*model.Finding, error) {
	fields := map[string]interface{}{
		"closed_at":       nil,
		"closed_by":       nil,
		"closure_remarks": "",
	}
	finding, err := s.transition(ctx, actor, id, model.FindingStatusClosed, model.FindingStatusOpen, model.ActionReopen, fields, req)
	if err != nil {
		return nil, err
	}
	s.events.Publish(websocket.EventFindingReopened, finding)
	return finding, nil
}

// transition checks the current state and then applies a conditional update, so a
// concurrent transition into the same state is reported as InvalidState.
func (s *findingService) transition(ctx context.Context, actor Actor, id uuid.UUID, from, to, action string, fields map[string]interface{}, details interface{}) (*model.Finding, error) {
	var result *model.Finding
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		current, err := s.findings.FindByID(txCtx, id, false)
		if err != nil {
			return err
		}
		if current.Status != from {
			return apperror.InvalidState("finding is already " + current.Status)
		}

		ok, err := s.findings.Transition(txCtx, id, from, to, fields)
		if err != nil {
			return err
		}
		if !ok {
			return apperror.InvalidState("finding is already " + to)
		}

		result, err = s.findings.FindByID(txCtx, id, false)
		if err != nil {
			return err
		}
		return s.activity.log(txCtx, actor, action, s.entityType, id, result.ReferenceNo, details)
	})
	if err != nil {
		return nil, translate(err, s.label)
	}
	return result, nil
}
