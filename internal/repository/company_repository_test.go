package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sooryaakilesh10/place-pro-platform-88/internal/models"
)

var companyRowColumns = []string{"id", "company_name", "company_address", "drive", "type_of_drive", "follow_up", "is_contacted",
	"remarks", "contact_details", "hr1_details", "hr2_details", "package", "assigned_officers", "created_by", "created_at", "updated_at"}

func newCompanyRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func companyRow(rows *sqlmock.Rows, id string, ts time.Time) *sqlmock.Rows {
	return rows.AddRow(id, "Acme", "Chennai", "2024 drive", "ON_CAMPUS", "", true, "", "", "", "", "12 LPA", "{officer-1}", "admin-1", ts, ts)
}

func TestCompanyRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newCompanyRepoMock(t)
	defer cleanup()
	repo := NewCompanyRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO companies")).WillReturnResult(sqlmock.NewResult(1, 1))

	company := &models.Company{CompanyName: "Acme", CreatedBy: "admin-1"}
	require.NoError(t, repo.Create(context.Background(), company))
	assert.NotEmpty(t, company.ID)
	assert.False(t, company.CreatedAt.IsZero())
	assert.Equal(t, company.CreatedAt, company.UpdatedAt)
	assert.NotNil(t, company.AssignedOfficers)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCompanyRepositoryCreateDuplicate(t *testing.T) {
	db, mock, cleanup := newCompanyRepoMock(t)
	defer cleanup()
	repo := NewCompanyRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO companies")).WillReturnError(&pq.Error{Code: "23505"})

	err := repo.Create(context.Background(), &models.Company{ID: "c-1", CompanyName: "Acme"})
	require.ErrorIs(t, err, ErrDuplicate)
}

func TestCompanyRepositoryGetByID(t *testing.T) {
	db, mock, cleanup := newCompanyRepoMock(t)
	defer cleanup()
	repo := NewCompanyRepository(db)

	now := time.Now().UTC()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, company_name")).
		WithArgs("c-1").
		WillReturnRows(companyRow(sqlmock.NewRows(companyRowColumns), "c-1", now))

	company, err := repo.GetByID(context.Background(), "c-1")
	require.NoError(t, err)
	assert.Equal(t, "Acme", company.CompanyName)
	assert.Equal(t, models.DriveTypeOnCampus, company.TypeOfDrive)
	assert.True(t, company.HasOfficer("officer-1"))

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, company_name")).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)
	_, err = repo.GetByID(context.Background(), "missing")
	require.True(t, errors.Is(err, sql.ErrNoRows))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCompanyRepositoryListFilters(t *testing.T) {
	db, mock, cleanup := newCompanyRepoMock(t)
	defer cleanup()
	repo := NewCompanyRepository(db)

	contacted := true
	filter := models.CompanyFilter{Search: "acme", OfficerID: "officer-1", Contacted: &contacted, Page: 2, PageSize: 10}

	mock.ExpectQuery(`(?s)SELECT id, company_name.+FROM companies WHERE \(company_name ILIKE \$1 OR drive ILIKE \$2 OR company_address ILIKE \$3\) AND \$4 = ANY\(assigned_officers\) AND is_contacted = \$5 ORDER BY updated_at DESC, id LIMIT 10 OFFSET 10`).
		WithArgs("%acme%", "%acme%", "%acme%", "officer-1", true).
		WillReturnRows(companyRow(sqlmock.NewRows(companyRowColumns), "c-1", time.Now()))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM companies WHERE")).
		WithArgs("%acme%", "%acme%", "%acme%", "officer-1", true).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(11))

	companies, total, err := repo.List(context.Background(), filter)
	require.NoError(t, err)
	assert.Len(t, companies, 1)
	assert.Equal(t, 11, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCompanyRepositoryListUnassigned(t *testing.T) {
	db, mock, cleanup := newCompanyRepoMock(t)
	defer cleanup()
	repo := NewCompanyRepository(db)

	assigned := false
	mock.ExpectQuery(regexp.QuoteMeta("FROM companies WHERE cardinality(assigned_officers) = 0 ORDER BY LOWER(company_name), id")).
		WillReturnRows(sqlmock.NewRows(companyRowColumns))

	companies, err := repo.ListAll(context.Background(), models.CompanyFilter{Assigned: &assigned})
	require.NoError(t, err)
	assert.Empty(t, companies)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCompanyRepositoryUpdateCAS(t *testing.T) {
	db, mock, cleanup := newCompanyRepoMock(t)
	defer cleanup()
	repo := NewCompanyRepository(db)

	prev := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	company := &models.Company{ID: "c-1", CompanyName: "Acme", UpdatedAt: prev.Add(time.Minute)}

	mock.ExpectExec(regexp.QuoteMeta("UPDATE companies SET company_name = ?")).
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(),
			sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(),
			sqlmock.AnyArg(), "c-1", prev).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.Update(context.Background(), company, prev))

	mock.ExpectExec(regexp.QuoteMeta("UPDATE companies SET")).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS")).WithArgs("c-1").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	require.ErrorIs(t, repo.Update(context.Background(), company, prev), ErrVersionConflict)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE companies SET")).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS")).WithArgs("c-1").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	require.ErrorIs(t, repo.Update(context.Background(), company, prev), sql.ErrNoRows)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCompanyRepositoryDeleteCascades(t *testing.T) {
	db, mock, cleanup := newCompanyRepoMock(t)
	defer cleanup()
	repo := NewCompanyRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM pending_edits WHERE company_id = $1")).WithArgs("c-1").
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM companies WHERE id = $1")).WithArgs("c-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	purged, err := repo.Delete(context.Background(), "c-1")
	require.NoError(t, err)
	assert.Equal(t, int64(3), purged)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCompanyRepositoryDeleteMissingRollsBack(t *testing.T) {
	db, mock, cleanup := newCompanyRepoMock(t)
	defer cleanup()
	repo := NewCompanyRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM pending_edits")).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM companies")).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	_, err := repo.Delete(context.Background(), "missing")
	require.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCompanyRepositoryStats(t *testing.T) {
	db, mock, cleanup := newCompanyRepoMock(t)
	defer cleanup()
	repo := NewCompanyRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) AS total, COUNT(*) FILTER (WHERE is_contacted) AS contacted")).
		WithArgs("officer-1").
		WillReturnRows(sqlmock.NewRows([]string{"total", "contacted", "assigned", "on_campus"}).AddRow(4, 2, 4, 1))

	stats, err := repo.Stats(context.Background(), models.CompanyFilter{OfficerID: "officer-1"})
	require.NoError(t, err)
	assert.Equal(t, models.CompanyStats{Total: 4, Contacted: 2, Assigned: 4, OnCampus: 1}, *stats)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCompanyRepositoryMalformedIDIsMissing(t *testing.T) {
	db, mock, cleanup := newCompanyRepoMock(t)
	defer cleanup()
	repo := NewCompanyRepository(db)

	castErr := &pq.Error{Code: "22P02", Message: `invalid input syntax for type uuid: "abc"`}
	mock.ExpectQuery(regexp.QuoteMeta("FROM companies WHERE id = $1")).WithArgs("abc").WillReturnError(castErr)
	_, err := repo.GetByID(context.Background(), "abc")
	require.ErrorIs(t, err, sql.ErrNoRows)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM pending_edits WHERE company_id = $1")).WithArgs("abc").WillReturnError(castErr)
	mock.ExpectRollback()
	_, err = repo.Delete(context.Background(), "abc")
	require.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}
