package service

import (
	"context"

	"audittracker/internal/apperror"
	"audittracker/internal/model"
	"audittracker/internal/repository"
	"audittracker/pkg/pagination"
)

type ActivityLogResponse struct {
	ID         string `json:"id"`
	UserID     string `json:"user_id"`
	UserName   string `json:"user_name"`
	Action     string `json:"action"`
	EntityType string `json:"entity_type"`
	EntityID   string `json:"entity_id"`
	EntityName string `json:"entity_name"`
	Details    string `json:"details"`
	CreatedAt  string `json:"created_at"`
}

type ActivityService interface {
	List(ctx context.Context, filter repository.ActivityFilter, page pagination.Params) ([]ActivityLogResponse, int64, error)
}

type activityService struct {
	repo repository.ActivityRepository
}

// NewActivityService creates a new ActivityService instance
func NewActivityService(repo repository.ActivityRepository) ActivityService {
	return &activityService{repo: repo}
}

// List returns activity entries newest first, with the acting user's name resolved.
func (s *activityService) List(ctx context.Context, filter repository.ActivityFilter, page pagination.Params) ([]ActivityLogResponse, int64, error) {
	logs, total, err := s.repo.List(ctx, filter, page.Offset, page.Limit)
	if err != nil {
		return nil, 0, apperror.Internal(err)
	}

	res := make([]ActivityLogResponse, 0, len(logs))
	for _, l := range logs {
		res = append(res, toActivityResponse(l))
	}
	return res, total, nil
}

func toActivityResponse(l model.ActivityLog) ActivityLogResponse {
	userName := "System"
	userID := ""
	if l.User != nil {
		userName = l.User.Name
	}
	if l.UserID != nil {
		userID = l.UserID.String()
	}
	return ActivityLogResponse{
		ID:         l.ID.String(),
		UserID:     userID,
		UserName:   userName,
		Action:     l.Action,
		EntityType: l.EntityType,
		EntityID:   l.EntityID,
		EntityName: l.EntityName,
		Details:    l.Details,
		CreatedAt:  l.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}
