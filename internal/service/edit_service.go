package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/sooryaakilesh10/place-pro-platform-88/internal/models"
	"github.com/sooryaakilesh10/place-pro-platform-88/internal/policy"
	"github.com/sooryaakilesh10/place-pro-platform-88/internal/repository"
	appErrors "github.com/sooryaakilesh10/place-pro-platform-88/pkg/errors"
)

type editCompanyStore interface {
	GetByID(ctx context.Context, id string) (*models.Company, error)
	Update(ctx context.Context, company *models.Company, expectedUpdatedAt time.Time) error
}

type proposalStore interface {
	Create(ctx context.Context, edit *models.PendingEdit) error
}

// EditServiceConfig toggles optional submission rules.
type EditServiceConfig struct {
	RequireAssignment bool
}

// EditService routes company field edits either straight to the record or into the approval queue.
type EditService struct {
	companies editCompanyStore
	proposals proposalStore
	cache     cacheInvalidator
	metrics   *MetricsService
	cfg       EditServiceConfig
	logger    *zap.Logger
	now       func() time.Time
}

// NewEditService constructs the service.
func NewEditService(companies editCompanyStore, proposals proposalStore, cache cacheInvalidator, metrics *MetricsService, cfg EditServiceConfig, logger *zap.Logger) *EditService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EditService{
		companies: companies,
		proposals: proposals,
		cache:     cache,
		metrics:   metrics,
		cfg:       cfg,
		logger:    logger,
		now:       time.Now,
	}
}

// SubmitEdit applies the sparse field map directly for privileged roles and stores it as a pending
// edit for everyone else. The company record is never touched on the proposal path.
func (s *EditService) SubmitEdit(ctx context.Context, actor models.Actor, companyID string, fields map[string]interface{}) (*models.EditResult, error) {
	direct := policy.Allows(actor.Role, policy.OpDirectEdit)
	if !direct {
		if err := authorize(actor, policy.OpProposeEdit); err != nil {
			return nil, err
		}
	}

	changes, err := normalizeCompanyFields(fields)
	if err != nil {
		return nil, err
	}
	if len(changes) == 0 {
		return nil, appErrors.Clone(appErrors.ErrNoOp, "no fields submitted")
	}

	company, err := s.companies.GetByID(ctx, companyID)
	if err != nil {
		return nil, companyLookupError(err)
	}
	proposed, original := diffCompanyFields(company, changes)
	if len(proposed) == 0 {
		return nil, appErrors.Clone(appErrors.ErrNoOp, "submitted values match the current record")
	}

	if direct {
		return s.apply(ctx, actor, company, proposed)
	}
	return s.propose(ctx, actor, company, proposed, original)
}

func (s *EditService) apply(ctx context.Context, actor models.Actor, company *models.Company, changes models.FieldChanges) (*models.EditResult, error) {
	prev := company.UpdatedAt
	if err := applyCompanyFields(company, changes); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to apply company fields")
	}
	company.Touch(stamp(s.now))

	if err := s.companies.Update(ctx, company, prev); err != nil {
		if errors.Is(err, repository.ErrVersionConflict) {
			s.logger.Info("direct edit lost concurrent update", zap.String("company_id", company.ID), zap.String("actor_id", actor.UserID))
		}
		return nil, companySaveError(err)
	}

	s.logger.Info("company edited directly",
		zap.String("company_id", company.ID),
		zap.String("actor_id", actor.UserID),
		zap.Strings("fields", changes.Keys()),
	)
	s.metrics.RecordEdit(EditMetricApplied, 1)
	invalidateDashboards(ctx, s.cache)
	return &models.EditResult{Outcome: models.EditOutcomeApplied, Company: company}, nil
}

func (s *EditService) propose(ctx context.Context, actor models.Actor, company *models.Company, proposed, original models.FieldChanges) (*models.EditResult, error) {
	if s.cfg.RequireAssignment && actor.Role == models.RoleOfficer && !company.HasOfficer(actor.UserID) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "company is not assigned to you")
	}

	edit := &models.PendingEdit{
		CompanyID:       company.ID,
		ProposedChanges: proposed,
		OriginalValues:  original,
		Status:          models.PendingEditStatusPending,
		SubmittedBy:     actor.UserID,
		SubmittedAt:     stamp(s.now),
	}
	if err := s.proposals.Create(ctx, edit); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			s.logger.Error("pending edit id collision", zap.String("pending_edit_id", edit.ID), zap.Error(err))
			return nil, appErrors.Clone(appErrors.ErrDuplicate, "pending edit identifier already exists")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store pending edit")
	}

	s.logger.Info("company edit proposed",
		zap.String("pending_edit_id", edit.ID),
		zap.String("company_id", company.ID),
		zap.String("actor_id", actor.UserID),
		zap.Strings("fields", proposed.Keys()),
	)
	s.metrics.RecordEdit(EditMetricProposed, 1)
	invalidateDashboards(ctx, s.cache)
	return &models.EditResult{Outcome: models.EditOutcomePendingApproval, PendingEdit: edit}, nil
}
