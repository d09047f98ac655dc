package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/sooryaakilesh10/place-pro-platform-88/internal/models"
)

const pendingEditColumns = `id, company_id, proposed_changes, original_values, status, submitted_by, submitted_at,
       reviewed_by, reviewed_at, review_note`

const (
	defaultPendingEditPageSize = 20
	maxPendingEditPageSize     = 200
)

// PendingEditRepository persists officer proposals and their review outcome.
type PendingEditRepository struct {
	db *sqlx.DB
}

// NewPendingEditRepository constructs the repository.
func NewPendingEditRepository(db *sqlx.DB) *PendingEditRepository {
	return &PendingEditRepository{db: db}
}

// Create inserts a new pending edit.
func (r *PendingEditRepository) Create(ctx context.Context, edit *models.PendingEdit) error {
	if edit.ID == "" {
		edit.ID = uuid.NewString()
	}
	if edit.Status == "" {
		edit.Status = models.PendingEditStatusPending
	}
	if edit.SubmittedAt.IsZero() {
		edit.SubmittedAt = time.Now().UTC().Truncate(time.Microsecond)
	}
	const query = `INSERT INTO pending_edits
	(id, company_id, proposed_changes, original_values, status, submitted_by, submitted_at, reviewed_by, reviewed_at, review_note)
	VALUES (:id, :company_id, :proposed_changes, :original_values, :status, :submitted_by, :submitted_at, :reviewed_by, :reviewed_at, :review_note)`
	if _, err := r.db.NamedExecContext(ctx, query, edit); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("create pending edit %s: %w", edit.ID, ErrDuplicate)
		}
		return fmt.Errorf("create pending edit: %w", err)
	}
	return nil
}

// GetByID fetches a pending edit by identifier.
func (r *PendingEditRepository) GetByID(ctx context.Context, id string) (*models.PendingEdit, error) {
	query := `SELECT ` + pendingEditColumns + ` FROM pending_edits WHERE id = $1`
	var edit models.PendingEdit
	if err := r.db.GetContext(ctx, &edit, query, id); err != nil {
		if isMissingRow(err) {
			return nil, sql.ErrNoRows
		}
		return nil, fmt.Errorf("get pending edit: %w", err)
	}
	return &edit, nil
}

// List returns one page of pending edits matching the filter, newest first, with the total count.
func (r *PendingEditRepository) List(ctx context.Context, filter models.PendingEditFilter) ([]models.PendingEdit, int, error) {
	limit, offset := pageWindow(filter.Page, filter.PageSize, defaultPendingEditPageSize, maxPendingEditPageSize)
	query, args, err := applyPendingEditFilter(psql.Select(pendingEditColumns).From("pending_edits"), filter).
		OrderBy("submitted_at DESC", "id").
		Limit(limit).
		Offset(offset).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build pending edit list query: %w", err)
	}
	edits := make([]models.PendingEdit, 0)
	if err := r.db.SelectContext(ctx, &edits, query, args...); err != nil {
		if isMissingRow(err) {
			return edits, 0, nil
		}
		return nil, 0, fmt.Errorf("list pending edits: %w", err)
	}

	countQuery, countArgs, err := applyPendingEditFilter(psql.Select("COUNT(*)").From("pending_edits"), filter).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build pending edit count query: %w", err)
	}
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, countArgs...); err != nil {
		return nil, 0, fmt.Errorf("count pending edits: %w", err)
	}
	return edits, total, nil
}

// CountByStatus counts edits in the given status, optionally restricted to one submitter.
func (r *PendingEditRepository) CountByStatus(ctx context.Context, status models.PendingEditStatus, submittedBy string) (int, error) {
	builder := psql.Select("COUNT(*)").From("pending_edits").Where(squirrel.Eq{"status": status})
	if submittedBy != "" {
		builder = builder.Where(squirrel.Eq{"submitted_by": submittedBy})
	}
	query, args, err := builder.ToSql()
	if err != nil {
		return 0, fmt.Errorf("build pending edit status count: %w", err)
	}
	var total int
	if err := r.db.GetContext(ctx, &total, query, args...); err != nil {
		return 0, fmt.Errorf("count pending edits by status: %w", err)
	}
	return total, nil
}

// MergeFunc applies an approved proposal onto the locked company row.
type MergeFunc func(company *models.Company, edit *models.PendingEdit) error

// ResolvePendingEditParams describes a review decision.
type ResolvePendingEditParams struct {
	ID         string
	Status     models.PendingEditStatus
	ReviewedBy string
	ReviewedAt time.Time
	Note       *string
	// Merge is set for approvals. When nil the company row is neither locked nor written.
	Merge MergeFunc
}

// ResolveResult reports the closed edit and, for approvals, the merged company.
type ResolveResult struct {
	Edit          *models.PendingEdit
	Company       *models.Company
	TargetMissing bool
}

// Resolve closes a pending edit in one transaction. The edit row is locked first; a closed edit
// yields ErrNotPending and a missing one sql.ErrNoRows. For approvals the company row is locked and
// merged; when the company no longer exists the edit is closed as rejected with the target deleted
// note and TargetMissing is set.
func (r *PendingEditRepository) Resolve(ctx context.Context, params ResolvePendingEditParams) (result *ResolveResult, err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin pending edit review: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var edit models.PendingEdit
	lockEdit := `SELECT ` + pendingEditColumns + ` FROM pending_edits WHERE id = $1 FOR UPDATE`
	if err = tx.GetContext(ctx, &edit, lockEdit, params.ID); err != nil {
		if isMissingRow(err) {
			return nil, sql.ErrNoRows
		}
		return nil, fmt.Errorf("lock pending edit: %w", err)
	}
	if edit.Status.Terminal() {
		return nil, ErrNotPending
	}

	result = &ResolveResult{}
	status := params.Status
	note := params.Note

	if params.Merge != nil {
		var company models.Company
		lockCompany := `SELECT ` + companyColumns + ` FROM companies WHERE id = $1 FOR UPDATE`
		switch lockErr := tx.GetContext(ctx, &company, lockCompany, edit.CompanyID); {
		case errors.Is(lockErr, sql.ErrNoRows):
			status = models.PendingEditStatusRejected
			targetDeleted := models.ReviewNoteTargetDeleted
			note = &targetDeleted
			result.TargetMissing = true
		case lockErr != nil:
			return nil, fmt.Errorf("lock company: %w", lockErr)
		default:
			if err = params.Merge(&company, &edit); err != nil {
				return nil, err
			}
			if _, err = updateCompany(ctx, tx, &company, nil); err != nil {
				return nil, err
			}
			result.Company = &company
		}
	}

	reviewedBy := params.ReviewedBy
	reviewedAt := params.ReviewedAt
	closeQuery := fmt.Sprintf(`UPDATE pending_edits SET status = :status, reviewed_by = :reviewed_by, reviewed_at = :reviewed_at,
	review_note = :review_note WHERE id = :id AND status = '%s'`, models.PendingEditStatusPending)
	res, err := sqlx.NamedExecContext(ctx, tx, closeQuery, map[string]interface{}{
		"id":          edit.ID,
		"status":      status,
		"reviewed_by": reviewedBy,
		"reviewed_at": reviewedAt,
		"review_note": note,
	})
	if err != nil {
		return nil, fmt.Errorf("close pending edit: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("check pending edit close rows: %w", err)
	}
	if rows == 0 {
		return nil, ErrNotPending
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit pending edit review: %w", err)
	}

	edit.Status = status
	edit.ReviewedBy = &reviewedBy
	edit.ReviewedAt = &reviewedAt
	edit.ReviewNote = note
	result.Edit = &edit
	return result, nil
}

func applyPendingEditFilter(builder squirrel.SelectBuilder, filter models.PendingEditFilter) squirrel.SelectBuilder {
	if len(filter.Status) > 0 {
		statuses := make([]string, len(filter.Status))
		for i, status := range filter.Status {
			statuses[i] = string(status)
		}
		builder = builder.Where(squirrel.Eq{"status": statuses})
	}
	if filter.CompanyID != "" {
		builder = builder.Where(squirrel.Eq{"company_id": filter.CompanyID})
	}
	if filter.SubmittedBy != "" {
		builder = builder.Where(squirrel.Eq{"submitted_by": filter.SubmittedBy})
	}
	return builder
}
