package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akotolabs/waflow/internal/models"
)

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	sqlxDB := sqlx.NewDb(db, "postgres")
	cleanup := func() {
		_ = sqlxDB.Close()
		db.Close()
	}
	return sqlxDB, mock, cleanup
}

func TestAvailabilityRepositoryGetRule(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAvailabilityRepository(db)

	rows := sqlmock.NewRows([]string{"tenant_id", "weekday", "open_time", "close_time", "slot_minutes", "updated_at"}).
		AddRow("tenant-1", 2, "09:00", "17:00", 60, time.Now())

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT tenant_id, weekday, open_time, close_time, slot_minutes, updated_at
FROM availability_rules WHERE tenant_id = $1 AND weekday = $2 LIMIT 1`)).
		WithArgs("tenant-1", 2).
		WillReturnRows(rows)

	rule, err := repo.GetRule(context.Background(), "tenant-1", 2)
	require.NoError(t, err)
	assert.Equal(t, "09:00", rule.OpenTime)
	assert.Equal(t, 60, rule.SlotMinutes)
}

func TestAvailabilityRepositoryGetRuleMissingPassesThrough(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAvailabilityRepository(db)

	mock.ExpectQuery("SELECT tenant_id").
		WithArgs("tenant-1", 0).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetRule(context.Background(), "tenant-1", 0)
	assert.True(t, errors.Is(err, sql.ErrNoRows))
}

func TestAvailabilityRepositoryUpsertRulesTransactional(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAvailabilityRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO availability_rules")).
		WithArgs("tenant-1", 1, "09:00", "17:00", 60, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO availability_rules")).
		WithArgs("tenant-1", 2, "10:00", "18:00", 30, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.UpsertRules(context.Background(), "tenant-1", []models.AvailabilityRule{
		{Weekday: 1, OpenTime: "09:00", CloseTime: "17:00", SlotMinutes: 60},
		{Weekday: 2, OpenTime: "10:00", CloseTime: "18:00", SlotMinutes: 30},
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAvailabilityRepositoryUpsertRulesRollsBackOnFailure(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAvailabilityRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO availability_rules")).
		WithArgs("tenant-1", 1, "09:00", "17:00", 60, sqlmock.AnyArg()).
		WillReturnError(errors.New("constraint violation"))
	mock.ExpectRollback()

	err := repo.UpsertRules(context.Background(), "tenant-1", []models.AvailabilityRule{
		{Weekday: 1, OpenTime: "09:00", CloseTime: "17:00", SlotMinutes: 60},
	})
	require.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAvailabilityRepositoryIsClosed(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAvailabilityRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS (SELECT 1 FROM unavailable_dates WHERE tenant_id = $1 AND date = $2)")).
		WithArgs("tenant-1", "2026-09-15").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	closed, err := repo.IsClosed(context.Background(), "tenant-1", "2026-09-15")
	require.NoError(t, err)
	assert.True(t, closed)
}

func TestAvailabilityRepositorySetClosedDateIdempotent(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAvailabilityRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("ON CONFLICT (tenant_id, date) DO NOTHING")).
		WithArgs("tenant-1", "2026-09-15", nil, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.SetClosedDate(context.Background(), "tenant-1", "2026-09-15", nil))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAvailabilityRepositoryClearClosedDate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAvailabilityRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM unavailable_dates WHERE tenant_id = $1 AND date = $2")).
		WithArgs("tenant-1", "2026-09-15").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.ClearClosedDate(context.Background(), "tenant-1", "2026-09-15"))
}
