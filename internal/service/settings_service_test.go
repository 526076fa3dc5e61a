package service

import (
	"context"
	"testing"

	"audittracker/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSettings_PartialUpdate(t *testing.T) {
	repo := &fakeSettings{settings: model.Settings{ID: model.SettingsID, CompanyName: "Old", Phone: "123", DefaultFindingDueDays: 30}}
	activity := &fakeActivity{}
	svc := NewSettingsService(repo, &fakeTx{}, activity)

	name := " Blue Water Audits "
	days := 45
	updated, err := svc.Update(context.Background(), admin, UpdateSettingsRequest{CompanyName: &name, DefaultFindingDueDays: &days})
	require.NoError(t, err)
	assert.Equal(t, "Blue Water Audits", updated.CompanyName)
	assert.Equal(t, "123", updated.Phone)
	assert.Equal(t, 45, updated.DefaultFindingDueDays)

	got, err := svc.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Blue Water Audits", got.CompanyName)
	assert.Equal(t, []string{model.ActionUpdate}, activity.actions())
}
