package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/sooryaakilesh10/place-pro-platform-88/internal/dto"
	"github.com/sooryaakilesh10/place-pro-platform-88/internal/models"
	"github.com/sooryaakilesh10/place-pro-platform-88/internal/policy"
	"github.com/sooryaakilesh10/place-pro-platform-88/internal/repository"
	appErrors "github.com/sooryaakilesh10/place-pro-platform-88/pkg/errors"
)

type pendingEditStore interface {
	GetByID(ctx context.Context, id string) (*models.PendingEdit, error)
	List(ctx context.Context, filter models.PendingEditFilter) ([]models.PendingEdit, int, error)
	Resolve(ctx context.Context, params repository.ResolvePendingEditParams) (*repository.ResolveResult, error)
}

// ApprovalService reviews officer proposals.
type ApprovalService struct {
	edits     pendingEditStore
	cache     cacheInvalidator
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewApprovalService constructs the service.
func NewApprovalService(edits pendingEditStore, cache cacheInvalidator, metrics *MetricsService, logger *zap.Logger) *ApprovalService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ApprovalService{
		edits:     edits,
		cache:     cache,
		metrics:   metrics,
		validator: newValidator(),
		logger:    logger,
		now:       time.Now,
	}
}

// Approve merges the proposal into its company and closes it. When the company has been deleted in the
// meantime the proposal is closed as rejected and TARGET_DELETED is returned.
func (s *ApprovalService) Approve(ctx context.Context, actor models.Actor, id, note string) (*models.ApprovalResult, error) {
	if err := authorize(actor, policy.OpApprove); err != nil {
		return nil, err
	}
	if err := s.validateNote(note); err != nil {
		return nil, err
	}
	now := stamp(s.now)
	result, err := s.edits.Resolve(ctx, repository.ResolvePendingEditParams{
		ID:         id,
		Status:     models.PendingEditStatusApproved,
		ReviewedBy: actor.UserID,
		ReviewedAt: now,
		Note:       optionalString(note),
		Merge: func(company *models.Company, edit *models.PendingEdit) error {
			if err := applyCompanyFields(company, edit.ProposedChanges); err != nil {
				return err
			}
			company.Touch(stamp(s.now))
			return nil
		},
	})
	if err != nil {
		return nil, s.resolveError(err, "approve")
	}

	if result.TargetMissing {
		s.logger.Info("pending edit rejected, company deleted",
			zap.String("pending_edit_id", id),
			zap.String("company_id", result.Edit.CompanyID),
			zap.String("actor_id", actor.UserID),
		)
		s.metrics.RecordEdit(EditMetricTargetDeleted, 1)
		invalidateDashboards(ctx, s.cache)
		return nil, appErrors.Clone(appErrors.ErrTargetDeleted, "")
	}

	s.logger.Info("pending edit approved",
		zap.String("pending_edit_id", id),
		zap.String("company_id", result.Edit.CompanyID),
		zap.String("actor_id", actor.UserID),
		zap.Strings("fields", result.Edit.ProposedChanges.Keys()),
	)
	s.metrics.RecordEdit(EditMetricApproved, 1)
	invalidateDashboards(ctx, s.cache)
	return &models.ApprovalResult{Company: result.Company, PendingEdit: result.Edit}, nil
}

func (s *ApprovalService) validateNote(note string) error {
	if err := s.validator.Struct(dto.ReviewRequest{Note: note}); err != nil {
		return validationError(err, "invalid review note")
	}
	return nil
}

// Reject closes the proposal without touching the company.
func (s *ApprovalService) Reject(ctx context.Context, actor models.Actor, id, note string) (*models.PendingEdit, error) {
	if err := authorize(actor, policy.OpReject); err != nil {
		return nil, err
	}
	if err := s.validateNote(note); err != nil {
		return nil, err
	}
	result, err := s.edits.Resolve(ctx, repository.ResolvePendingEditParams{
		ID:         id,
		Status:     models.PendingEditStatusRejected,
		ReviewedBy: actor.UserID,
		ReviewedAt: stamp(s.now),
		Note:       optionalString(note),
	})
	if err != nil {
		return nil, s.resolveError(err, "reject")
	}

	s.logger.Info("pending edit rejected",
		zap.String("pending_edit_id", id),
		zap.String("company_id", result.Edit.CompanyID),
		zap.String("actor_id", actor.UserID),
	)
	s.metrics.RecordEdit(EditMetricRejected, 1)
	invalidateDashboards(ctx, s.cache)
	return result.Edit, nil
}

// List returns the review queue. Without a status filter only pending edits are listed.
func (s *ApprovalService) List(ctx context.Context, actor models.Actor, query dto.PendingEditQuery) ([]models.PendingEdit, *models.Pagination, error) {
	if err := authorize(actor, policy.OpApprove); err != nil {
		return nil, nil, err
	}
	if len(query.Status) == 0 {
		query.Status = []models.PendingEditStatus{models.PendingEditStatusPending}
	}
	return s.list(ctx, query)
}

// ListMine returns the actor's own submissions in every status unless filtered.
func (s *ApprovalService) ListMine(ctx context.Context, actor models.Actor, query dto.PendingEditQuery) ([]models.PendingEdit, *models.Pagination, error) {
	if err := authorize(actor, policy.OpProposeEdit); err != nil {
		return nil, nil, err
	}
	query.SubmittedBy = actor.UserID
	return s.list(ctx, query)
}

// Get returns a single pending edit to an approver or to its submitter.
func (s *ApprovalService) Get(ctx context.Context, actor models.Actor, id string) (*models.PendingEdit, error) {
	if !actor.Role.Valid() {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "unknown role")
	}
	edit, err := s.edits.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "pending edit not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load pending edit")
	}
	if edit.SubmittedBy != actor.UserID && !policy.Allows(actor.Role, policy.OpApprove) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "pending edit belongs to another user")
	}
	return edit, nil
}

func (s *ApprovalService) list(ctx context.Context, query dto.PendingEditQuery) ([]models.PendingEdit, *models.Pagination, error) {
	for _, status := range query.Status {
		switch status {
		case models.PendingEditStatusPending, models.PendingEditStatusApproved, models.PendingEditStatusRejected:
		default:
			return nil, nil, appErrors.WithFields(appErrors.ErrValidation, "invalid pending edit filter", map[string]string{"status": "must be PENDING, APPROVED or REJECTED"})
		}
	}
	edits, total, err := s.edits.List(ctx, models.PendingEditFilter{
		Status:      query.Status,
		CompanyID:   query.CompanyID,
		SubmittedBy: query.SubmittedBy,
		Page:        query.Page,
		PageSize:    query.PageSize,
	})
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list pending edits")
	}
	return edits, models.NewPagination(query.Page, query.PageSize, 20, 200, total), nil
}

func (s *ApprovalService) resolveError(err error, action string) error {
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return appErrors.Clone(appErrors.ErrNotFound, "pending edit not found")
	case errors.Is(err, repository.ErrNotPending):
		return appErrors.Clone(appErrors.ErrStaleState, "")
	case errors.Is(err, repository.ErrVersionConflict):
		return appErrors.Clone(appErrors.ErrStaleState, "company changed concurrently, please refresh")
	default:
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to "+action+" pending edit")
	}
}
