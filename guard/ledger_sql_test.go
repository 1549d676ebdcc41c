package guard

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLLedgerWrapsStorageErrors(t *testing.T) {
	assert := assert.New(t)
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	l := NewSQLLedger(db)
	ctx := context.Background()
	boom := errors.New("disk I/O error")

	mock.ExpectQuery("INSERT INTO guard_violations").WillReturnError(boom)
	_, err = l.RecordViolation(ctx, testSubject, testScope, KindSpam, time.Now())
	assert.ErrorIs(err, ErrStorage)
	assert.ErrorIs(err, boom)

	mock.ExpectQuery("SELECT count FROM guard_violations").WillReturnError(boom)
	_, err = l.GetCount(ctx, testSubject, testScope, KindSpam)
	assert.ErrorIs(err, ErrStorage)

	mock.ExpectExec("DELETE FROM guard_violations WHERE user_id").WillReturnError(boom)
	assert.ErrorIs(l.Reset(ctx, testSubject, testScope), ErrStorage)

	mock.ExpectExec("DELETE FROM guard_violations WHERE last_violation").WillReturnError(boom)
	_, err = l.Prune(ctx, time.Now())
	assert.ErrorIs(err, ErrStorage)

	assert.NoError(mock.ExpectationsWereMet())
}

func TestSQLLedgerRecordViolationArgs(t *testing.T) {
	assert := assert.New(t)
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery("INSERT INTO guard_violations").
		WithArgs(testSubject.String(), testScope.String(), "token_leak", now.UnixMilli()).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(4))

	c, err := NewSQLLedger(db).RecordViolation(context.Background(), testSubject, testScope, KindTokenLeak, now)
	assert.NoError(err)
	assert.Equal(4, c)
	assert.NoError(mock.ExpectationsWereMet())
}
