package database

import (
	"regexp"
	"testing"

	"audittracker/internal/policy"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Discard,
	})
	require.NoError(t, err)
	return db, mock
}

// countUsersByEmail matches only the unscoped count, so soft-deleted rows are included.
var countUsersByEmail = "^" + regexp.QuoteMeta(`SELECT count(*) FROM "users" WHERE email = $1`) + "$"

func TestSplitAction(t *testing.T) {
	entity, verb := splitAction(policy.For(policy.AuditCompanies, policy.VerbRestore))
	assert.Equal(t, "audit_companies", entity)
	assert.Equal(t, "restore", verb)

	entity, verb = splitAction(policy.FindingsClose)
	assert.Equal(t, "findings", entity)
	assert.Equal(t, "close", verb)
}

func TestEveryPolicyActionHasAPage(t *testing.T) {
	routes := make(map[string]bool)
	for _, p := range defaultPages {
		routes[p.Route] = true
	}
	for _, action := range policy.Default().Actions() {
		entity, _ := splitAction(action)
		route, ok := pageForAction[entity]
		if assert.True(t, ok, "no page mapped for %s", action) {
			assert.True(t, routes[route], "page %s for %s is not seeded", route, action)
		}
	}
}

func TestSeedAdmin_SkipsWhenSoftDeletedUserHoldsEmail(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery(countUsersByEmail).
		WithArgs("admin@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	err := seedAdmin(db, AdminSeed{Email: "admin@example.com", Password: "change-me-now", Name: "Admin"}, uuid.New())
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSeedAdmin_CreatesWithNormalizedEmail(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery(countUsersByEmail).
		WithArgs("admin@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "users"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(uuid.New()))

	err := seedAdmin(db, AdminSeed{Email: "  Admin@Example.COM ", Password: "change-me-now", Name: "Admin"}, uuid.New())
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSeedAdmin_DisabledWithoutCredentials(t *testing.T) {
	db, mock := newMockDB(t)
	require.NoError(t, seedAdmin(db, AdminSeed{Email: "admin@example.com"}, uuid.New()))
	assert.NoError(t, mock.ExpectationsWereMet())
}
