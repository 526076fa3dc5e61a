package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	renameCompany         = `UPDATE settings SET company_name = ?`
	renameCompanyExpected = `UPDATE settings SET company_name = $1`
)

func TestRunInTx_NestedCallsShareOneTransaction(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectBegin()
	mock.ExpectExec(sqlLike(renameCompanyExpected)).WithArgs("Acme").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(sqlLike(renameCompanyExpected)).WithArgs("Acme Marine").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	tm := NewTransactionManager(db)
	err := tm.RunInTx(context.Background(), func(ctx context.Context) error {
		assert.True(t, InTx(ctx))
		if err := Conn(ctx, db).Exec(renameCompany, "Acme").Error; err != nil {
			return err
		}
		return tm.RunInTx(ctx, func(inner context.Context) error {
			return Conn(inner, db).Exec(renameCompany, "Acme Marine").Error
		})
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRunInTx_ErrorFromWorkRollsBackUnchanged(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectBegin()
	mock.ExpectRollback()

	workErr := errors.New("finding is already closed")
	err := NewTransactionManager(db).RunInTx(context.Background(), func(context.Context) error {
		return workErr
	})
	assert.Same(t, workErr, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRunInTx_CommitFailureIsWrapped(t *testing.T) {
	db, mock := newMockDB(t)
	commitErr := errors.New("connection lost")
	mock.ExpectBegin()
	mock.ExpectCommit().WillReturnError(commitErr)

	err := NewTransactionManager(db).RunInTx(context.Background(), func(context.Context) error { return nil })
	require.Error(t, err)
	assert.ErrorIs(t, err, commitErr)
	assert.Contains(t, err.Error(), "transaction failed")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConn_WithoutTransactionUsesRootDB(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectExec(sqlLike(renameCompanyExpected)).WithArgs("Acme").WillReturnResult(sqlmock.NewResult(0, 1))

	ctx := context.Background()
	assert.False(t, InTx(ctx))
	require.NoError(t, Conn(ctx, db).Exec(renameCompany, "Acme").Error)
	assert.NoError(t, mock.ExpectationsWereMet())
}
