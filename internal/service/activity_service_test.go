package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"audittracker/internal/apperror"
	"audittracker/internal/model"
	"audittracker/internal/repository"
	"audittracker/pkg/pagination"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingActivity struct {
	repository.ActivityRepository
}

func (failingActivity) List(context.Context, repository.ActivityFilter, int, int) ([]model.ActivityLog, int64, error) {
	return nil, 0, errors.New("connection reset")
}

func TestActivityList_ResolvesUserNames(t *testing.T) {
	userID := uuid.New()
	at := time.Date(2026, 3, 4, 9, 30, 0, 0, time.UTC)
	repo := &fakeActivity{entries: []model.ActivityLog{
		{ID: uuid.New(), UserID: &userID, User: &model.User{Name: "Dana"}, Action: model.ActionCreate, EntityType: "vessel", EntityID: "v-1", CreatedAt: at},
		{ID: uuid.New(), Action: model.ActionUpdate, EntityType: "setting", EntityID: "company_name", CreatedAt: at},
		{ID: uuid.New(), Action: model.ActionDelete, EntityType: "vessel", EntityID: "v-2", CreatedAt: at},
	}}

	logs, total, err := NewActivityService(repo).List(context.Background(), repository.ActivityFilter{}, pagination.Params{Page: 1, Limit: 2})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	require.Len(t, logs, 2)

	assert.Equal(t, "Dana", logs[0].UserName)
	assert.Equal(t, userID.String(), logs[0].UserID)
	assert.Equal(t, "2026-03-04 09:30:00", logs[0].CreatedAt)

	assert.Equal(t, "System", logs[1].UserName)
	assert.Empty(t, logs[1].UserID)
	assert.Equal(t, "company_name", logs[1].EntityID)
}

func TestActivityList_EmptyPageIsNotNil(t *testing.T) {
	logs, total, err := NewActivityService(&fakeActivity{}).List(context.Background(), repository.ActivityFilter{}, pagination.Params{Page: 3, Limit: 20, Offset: 40})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.NotNil(t, logs)
	assert.Empty(t, logs)
}

func TestActivityList_RepositoryErrorIsInternal(t *testing.T) {
	_, _, err := NewActivityService(failingActivity{}).List(context.Background(), repository.ActivityFilter{}, pagination.Params{Page: 1, Limit: 20})
	require.Error(t, err)
	assert.Equal(t, apperror.KindInternal, apperror.KindOf(err))
}
