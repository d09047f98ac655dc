package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/sooryaakilesh10/place-pro-platform-88/internal/models"
)

const companyColumns = `id, company_name, company_address, drive, type_of_drive, follow_up, is_contacted, remarks,
       contact_details, hr1_details, hr2_details, package, assigned_officers, created_by, created_at, updated_at`

const (
	updateCompanyQuery = `UPDATE companies SET company_name = :company_name, company_address = :company_address, drive = :drive,
	type_of_drive = :type_of_drive, follow_up = :follow_up, is_contacted = :is_contacted, remarks = :remarks,
	contact_details = :contact_details, hr1_details = :hr1_details, hr2_details = :hr2_details, package = :package,
	assigned_officers = :assigned_officers, updated_at = :updated_at
	WHERE id = :id`
	companyCASClause = ` AND updated_at = :expected_updated_at`
)

const (
	defaultCompanyPageSize = 20
	maxCompanyPageSize     = 200
)

// CompanyRepository persists company records.
type CompanyRepository struct {
	db *sqlx.DB
}

// NewCompanyRepository constructs the repository.
func NewCompanyRepository(db *sqlx.DB) *CompanyRepository {
	return &CompanyRepository{db: db}
}

// Create inserts a new company. An id collision yields ErrDuplicate.
func (r *CompanyRepository) Create(ctx context.Context, company *models.Company) error {
	if company.ID == "" {
		company.ID = uuid.NewString()
	}
	if company.CreatedAt.IsZero() {
		company.CreatedAt = time.Now().UTC().Truncate(time.Microsecond)
	}
	if company.UpdatedAt.Before(company.CreatedAt) {
		company.UpdatedAt = company.CreatedAt
	}
	if company.AssignedOfficers == nil {
		company.AssignedOfficers = []string{}
	}
	const query = `INSERT INTO companies
	(id, company_name, company_address, drive, type_of_drive, follow_up, is_contacted, remarks, contact_details,
	 hr1_details, hr2_details, package, assigned_officers, created_by, created_at, updated_at)
	VALUES (:id, :company_name, :company_address, :drive, :type_of_drive, :follow_up, :is_contacted, :remarks, :contact_details,
	 :hr1_details, :hr2_details, :package, :assigned_officers, :created_by, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, company); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("create company %s: %w", company.ID, ErrDuplicate)
		}
		return fmt.Errorf("create company: %w", err)
	}
	return nil
}

// GetByID fetches a company by identifier.
func (r *CompanyRepository) GetByID(ctx context.Context, id string) (*models.Company, error) {
	query := `SELECT ` + companyColumns + ` FROM companies WHERE id = $1`
	var company models.Company
	if err := r.db.GetContext(ctx, &company, query, id); err != nil {
		if isMissingRow(err) {
			return nil, sql.ErrNoRows
		}
		return nil, fmt.Errorf("get company: %w", err)
	}
	return &company, nil
}

// List returns one page of companies matching the filter, most recently updated first, with the
// total count.
func (r *CompanyRepository) List(ctx context.Context, filter models.CompanyFilter) ([]models.Company, int, error) {
	limit, offset := pageWindow(filter.Page, filter.PageSize, defaultCompanyPageSize, maxCompanyPageSize)
	query, args, err := applyCompanyFilter(psql.Select(companyColumns).From("companies"), filter).
		OrderBy("updated_at DESC", "id").
		Limit(limit).
		Offset(offset).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build company list query: %w", err)
	}
	companies := make([]models.Company, 0)
	if err := r.db.SelectContext(ctx, &companies, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list companies: %w", err)
	}

	countQuery, countArgs, err := applyCompanyFilter(psql.Select("COUNT(*)").From("companies"), filter).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build company count query: %w", err)
	}
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, countArgs...); err != nil {
		return nil, 0, fmt.Errorf("count companies: %w", err)
	}
	return companies, total, nil
}

// ListAll returns every company matching the filter ordered by name, ignoring pagination.
func (r *CompanyRepository) ListAll(ctx context.Context, filter models.CompanyFilter) ([]models.Company, error) {
	query, args, err := applyCompanyFilter(psql.Select(companyColumns).From("companies"), filter).
		OrderBy("LOWER(company_name)", "id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build company export query: %w", err)
	}
	companies := make([]models.Company, 0)
	if err := r.db.SelectContext(ctx, &companies, query, args...); err != nil {
		return nil, fmt.Errorf("list all companies: %w", err)
	}
	return companies, nil
}

// Update persists every mutable column when the stored updated_at still equals expectedUpdatedAt.
// A missing row yields sql.ErrNoRows and a moved updated_at yields ErrVersionConflict.
func (r *CompanyRepository) Update(ctx context.Context, company *models.Company, expectedUpdatedAt time.Time) error {
	rows, err := updateCompany(ctx, r.db, company, &expectedUpdatedAt)
	if err != nil {
		return err
	}
	if rows > 0 {
		return nil
	}

	var exists bool
	if err := r.db.GetContext(ctx, &exists, `SELECT EXISTS (SELECT 1 FROM companies WHERE id = $1)`, company.ID); err != nil {
		return fmt.Errorf("check company existence: %w", err)
	}
	if !exists {
		return sql.ErrNoRows
	}
	return ErrVersionConflict
}

// Delete removes the company and every pending edit that targets it in one transaction and returns
// the number of purged pending edits.
func (r *CompanyRepository) Delete(ctx context.Context, id string) (purged int64, err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin company delete: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	result, err := tx.ExecContext(ctx, `DELETE FROM pending_edits WHERE company_id = $1`, id)
	if err != nil {
		if isMissingRow(err) {
			return 0, sql.ErrNoRows
		}
		return 0, fmt.Errorf("purge pending edits: %w", err)
	}
	if purged, err = result.RowsAffected(); err != nil {
		return 0, fmt.Errorf("count purged pending edits: %w", err)
	}

	result, err = tx.ExecContext(ctx, `DELETE FROM companies WHERE id = $1`, id)
	if err != nil {
		return 0, fmt.Errorf("delete company: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("check company delete rows: %w", err)
	}
	if rows == 0 {
		return 0, sql.ErrNoRows
	}

	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit company delete: %w", err)
	}
	return purged, nil
}

// Stats aggregates counts over the companies matching the filter.
func (r *CompanyRepository) Stats(ctx context.Context, filter models.CompanyFilter) (*models.CompanyStats, error) {
	query, args, err := applyCompanyFilter(psql.Select(
		"COUNT(*) AS total",
		"COUNT(*) FILTER (WHERE is_contacted) AS contacted",
		"COUNT(*) FILTER (WHERE cardinality(assigned_officers) > 0) AS assigned",
		fmt.Sprintf("COUNT(*) FILTER (WHERE type_of_drive = '%s') AS on_campus", models.DriveTypeOnCampus),
	).From("companies"), filter).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build company stats query: %w", err)
	}
	var stats models.CompanyStats
	if err := r.db.GetContext(ctx, &stats, query, args...); err != nil {
		return nil, fmt.Errorf("company stats: %w", err)
	}
	return &stats, nil
}

func applyCompanyFilter(builder squirrel.SelectBuilder, filter models.CompanyFilter) squirrel.SelectBuilder {
	if search := strings.TrimSpace(filter.Search); search != "" {
		pattern := "%" + search + "%"
		builder = builder.Where(squirrel.Or{
			squirrel.ILike{"company_name": pattern},
			squirrel.ILike{"drive": pattern},
			squirrel.ILike{"company_address": pattern},
		})
	}
	if filter.OfficerID != "" {
		builder = builder.Where("? = ANY(assigned_officers)", filter.OfficerID)
	}
	if filter.Contacted != nil {
		builder = builder.Where(squirrel.Eq{"is_contacted": *filter.Contacted})
	}
	if filter.Assigned != nil {
		if *filter.Assigned {
			builder = builder.Where("cardinality(assigned_officers) > 0")
		} else {
			builder = builder.Where("cardinality(assigned_officers) = 0")
		}
	}
	if filter.TypeOfDrive != "" {
		builder = builder.Where(squirrel.Eq{"type_of_drive": filter.TypeOfDrive})
	}
	return builder
}

// updateCompany writes the company through db or an open transaction. A nil expected skips the
// compare-and-swap guard, which callers holding a row lock use.
func updateCompany(ctx context.Context, ext sqlx.ExtContext, company *models.Company, expected *time.Time) (int64, error) {
	officers := company.AssignedOfficers
	if officers == nil {
		officers = pq.StringArray{}
	}
	args := map[string]interface{}{
		"id":                company.ID,
		"company_name":      company.CompanyName,
		"company_address":   company.CompanyAddress,
		"drive":             company.Drive,
		"type_of_drive":     company.TypeOfDrive,
		"follow_up":         company.FollowUp,
		"is_contacted":      company.IsContacted,
		"remarks":           company.Remarks,
		"contact_details":   company.ContactDetails,
		"hr1_details":       company.HR1Details,
		"hr2_details":       company.HR2Details,
		"package":           company.Package,
		"assigned_officers": officers,
		"updated_at":        company.UpdatedAt,
	}
	query := updateCompanyQuery
	if expected != nil {
		query += companyCASClause
		args["expected_updated_at"] = *expected
	}
	result, err := sqlx.NamedExecContext(ctx, ext, query, args)
	if err != nil {
		return 0, fmt.Errorf("update company: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("check company update rows: %w", err)
	}
	return rows, nil
}
