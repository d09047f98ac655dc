package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/sooryaakilesh10/place-pro-platform-88/internal/dto"
	"github.com/sooryaakilesh10/place-pro-platform-88/internal/models"
	"github.com/sooryaakilesh10/place-pro-platform-88/internal/policy"
	"github.com/sooryaakilesh10/place-pro-platform-88/internal/repository"
	appErrors "github.com/sooryaakilesh10/place-pro-platform-88/pkg/errors"
)

type companyStore interface {
	Create(ctx context.Context, company *models.Company) error
	GetByID(ctx context.Context, id string) (*models.Company, error)
	List(ctx context.Context, filter models.CompanyFilter) ([]models.Company, int, error)
	Update(ctx context.Context, company *models.Company, expectedUpdatedAt time.Time) error
	Delete(ctx context.Context, id string) (int64, error)
}

type userFinder interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
}

// CompanyService manages the company lifecycle outside of field edits.
type CompanyService struct {
	companies companyStore
	users     userFinder
	cache     cacheInvalidator
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewCompanyService constructs the service.
func NewCompanyService(companies companyStore, users userFinder, cache cacheInvalidator, metrics *MetricsService, logger *zap.Logger) *CompanyService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CompanyService{
		companies: companies,
		users:     users,
		cache:     cache,
		metrics:   metrics,
		validator: newValidator(),
		logger:    logger,
		now:       time.Now,
	}
}

// List returns companies visible to the actor. Officers only see companies they are assigned to.
func (s *CompanyService) List(ctx context.Context, actor models.Actor, query dto.CompanyQuery) ([]models.Company, *models.Pagination, error) {
	if !actor.Role.Valid() {
		return nil, nil, appErrors.Clone(appErrors.ErrForbidden, "unknown role")
	}
	drive, ok := models.ParseDriveType(query.TypeOfDrive)
	if !ok {
		return nil, nil, appErrors.WithFields(appErrors.ErrValidation, "invalid company filter", map[string]string{"typeOfDrive": "must be one of ON_CAMPUS, OFF_CAMPUS, VIRTUAL"})
	}
	filter := models.CompanyFilter{
		Search:      query.Search,
		OfficerID:   query.OfficerID,
		Contacted:   query.Contacted,
		Assigned:    query.Assigned,
		TypeOfDrive: drive,
		Page:        query.Page,
		PageSize:    query.PageSize,
	}
	if !policy.Privileged(actor.Role) {
		filter.OfficerID = actor.UserID
	}

	companies, total, err := s.companies.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list companies")
	}
	return companies, models.NewPagination(query.Page, query.PageSize, 20, 200, total), nil
}

// Get returns a company. Officers may only read companies they are assigned to.
func (s *CompanyService) Get(ctx context.Context, actor models.Actor, id string) (*models.Company, error) {
	if !actor.Role.Valid() {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "unknown role")
	}
	company, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !policy.Privileged(actor.Role) && !company.HasOfficer(actor.UserID) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "company is not assigned to you")
	}
	return company, nil
}

// Create stores a new company record.
func (s *CompanyService) Create(ctx context.Context, actor models.Actor, req dto.CreateCompanyRequest) (*models.Company, error) {
	if err := authorize(actor, policy.OpCreate); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid company payload")
	}
	drive, ok := models.ParseDriveType(req.TypeOfDrive)
	if !ok {
		return nil, appErrors.WithFields(appErrors.ErrValidation, "invalid company payload", map[string]string{"typeOfDrive": "must be one of ON_CAMPUS, OFF_CAMPUS, VIRTUAL"})
	}

	officers := make([]string, 0, len(req.AssignedOfficers))
	seen := make(map[string]struct{}, len(req.AssignedOfficers))
	for _, id := range req.AssignedOfficers {
		if _, dup := seen[id]; dup {
			continue
		}
		if err := s.ensureOfficer(ctx, id); err != nil {
			return nil, err
		}
		seen[id] = struct{}{}
		officers = append(officers, id)
	}

	now := stamp(s.now)
	company := &models.Company{
		CompanyName:      strings.TrimSpace(req.CompanyName),
		CompanyAddress:   strings.TrimSpace(req.CompanyAddress),
		Drive:            strings.TrimSpace(req.Drive),
		TypeOfDrive:      drive,
		FollowUp:         strings.TrimSpace(req.FollowUp),
		IsContacted:      req.IsContacted,
		Remarks:          strings.TrimSpace(req.Remarks),
		ContactDetails:   strings.TrimSpace(req.ContactDetails),
		HR1Details:       strings.TrimSpace(req.HR1Details),
		HR2Details:       strings.TrimSpace(req.HR2Details),
		Package:          strings.TrimSpace(req.Package),
		AssignedOfficers: officers,
		CreatedBy:        actor.UserID,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.companies.Create(ctx, company); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			s.logger.Error("company id collision", zap.String("company_id", company.ID), zap.Error(err))
			return nil, appErrors.Clone(appErrors.ErrDuplicate, "company identifier already exists")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create company")
	}

	s.logger.Info("company created", zap.String("company_id", company.ID), zap.String("actor_id", actor.UserID))
	invalidateDashboards(ctx, s.cache)
	return company, nil
}

// Delete removes a company together with every pending edit that targets it.
func (s *CompanyService) Delete(ctx context.Context, actor models.Actor, id string) error {
	if err := authorize(actor, policy.OpDelete); err != nil {
		return err
	}
	purged, err := s.companies.Delete(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "company not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete company")
	}

	s.logger.Info("company deleted",
		zap.String("company_id", id),
		zap.String("actor_id", actor.UserID),
		zap.Int64("pending_edits_purged", purged),
	)
	s.metrics.RecordEdit(EditMetricPurged, int(purged))
	invalidateDashboards(ctx, s.cache)
	return nil
}

// AssignOfficer adds an active officer to the company. Assigning an officer twice is a no-op.
func (s *CompanyService) AssignOfficer(ctx context.Context, actor models.Actor, companyID, officerID string) (*models.Company, error) {
	if err := authorize(actor, policy.OpAssignOfficer); err != nil {
		return nil, err
	}
	if officerID == "" {
		return nil, appErrors.WithFields(appErrors.ErrValidation, "invalid assignment", map[string]string{"officerId": "is required"})
	}
	if err := s.ensureOfficer(ctx, officerID); err != nil {
		return nil, err
	}
	company, err := s.load(ctx, companyID)
	if err != nil {
		return nil, err
	}
	if company.HasOfficer(officerID) {
		return company, nil
	}

	prev := company.UpdatedAt
	company.AssignedOfficers = append(company.AssignedOfficers, officerID)
	company.Touch(stamp(s.now))
	if err := s.save(ctx, company, prev); err != nil {
		return nil, err
	}
	s.logger.Info("officer assigned", zap.String("company_id", companyID), zap.String("officer_id", officerID))
	invalidateDashboards(ctx, s.cache)
	return company, nil
}

// UnassignOfficer removes the officer from the company if present.
func (s *CompanyService) UnassignOfficer(ctx context.Context, actor models.Actor, companyID, officerID string) (*models.Company, error) {
	if err := authorize(actor, policy.OpAssignOfficer); err != nil {
		return nil, err
	}
	company, err := s.load(ctx, companyID)
	if err != nil {
		return nil, err
	}
	if !company.HasOfficer(officerID) {
		return company, nil
	}

	prev := company.UpdatedAt
	remaining := make([]string, 0, len(company.AssignedOfficers)-1)
	for _, id := range company.AssignedOfficers {
		if id != officerID {
			remaining = append(remaining, id)
		}
	}
	company.AssignedOfficers = remaining
	company.Touch(stamp(s.now))
	if err := s.save(ctx, company, prev); err != nil {
		return nil, err
	}
	s.logger.Info("officer unassigned", zap.String("company_id", companyID), zap.String("officer_id", officerID))
	invalidateDashboards(ctx, s.cache)
	return company, nil
}

func (s *CompanyService) load(ctx context.Context, id string) (*models.Company, error) {
	company, err := s.companies.GetByID(ctx, id)
	if err != nil {
		return nil, companyLookupError(err)
	}
	return company, nil
}

func (s *CompanyService) save(ctx context.Context, company *models.Company, prev time.Time) error {
	return companySaveError(s.companies.Update(ctx, company, prev))
}

func (s *CompanyService) ensureOfficer(ctx context.Context, id string) error {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.WithFields(appErrors.ErrValidation, "invalid assignment", map[string]string{"officerId": "user " + id + " does not exist"})
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load officer")
	}
	if !user.Active || user.Role != models.RoleOfficer {
		return appErrors.WithFields(appErrors.ErrValidation, "invalid assignment", map[string]string{"officerId": "user " + id + " is not an active officer"})
	}
	return nil
}

func companyLookupError(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return appErrors.Clone(appErrors.ErrNotFound, "company not found")
	}
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load company")
}

func companySaveError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, sql.ErrNoRows):
		return appErrors.Clone(appErrors.ErrNotFound, "company not found")
	case errors.Is(err, repository.ErrVersionConflict):
		return appErrors.Clone(appErrors.ErrStaleState, "company changed concurrently, please refresh")
	default:
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update company")
	}
}
