package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/sooryaakilesh10/place-pro-platform-88/internal/models"
	"github.com/sooryaakilesh10/place-pro-platform-88/internal/policy"
	appErrors "github.com/sooryaakilesh10/place-pro-platform-88/pkg/errors"
)

type companyStatsProvider interface {
	Stats(ctx context.Context, filter models.CompanyFilter) (*models.CompanyStats, error)
}

type pendingEditCounter interface {
	CountByStatus(ctx context.Context, status models.PendingEditStatus, submittedBy string) (int, error)
}

type upcomingEventLister interface {
	Upcoming(ctx context.Context, from time.Time, limit int) ([]models.CalendarEvent, error)
}

type dashboardCache interface {
	Get(ctx context.Context, key string, dest interface{}) bool
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration)
}

// DashboardServiceConfig tunes dashboard behaviour.
type DashboardServiceConfig struct {
	CacheTTL            time.Duration
	UpcomingEventsLimit int
}

// DashboardService orchestrates composition of dashboard payloads.
type DashboardService struct {
	companies companyStatsProvider
	edits     pendingEditCounter
	events    upcomingEventLister
	cache     dashboardCache
	metrics   *MetricsService
	logger    *zap.Logger
	now       func() time.Time
	cfg       DashboardServiceConfig
}

// DashboardServiceParams groups constructor dependencies.
type DashboardServiceParams struct {
	Companies companyStatsProvider
	Edits     pendingEditCounter
	Events    upcomingEventLister
	Cache     dashboardCache
	Metrics   *MetricsService
	Logger    *zap.Logger
	Config    DashboardServiceConfig
}

// NewDashboardService constructs a DashboardService with sane defaults.
func NewDashboardService(params DashboardServiceParams) *DashboardService {
	cfg := params.Config
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 2 * time.Minute
	}
	if cfg.UpcomingEventsLimit <= 0 {
		cfg.UpcomingEventsLimit = 5
	}
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardService{
		companies: params.Companies,
		edits:     params.Edits,
		events:    params.Events,
		cache:     params.Cache,
		metrics:   params.Metrics,
		logger:    logger,
		now:       time.Now,
		cfg:       cfg,
	}
}

// Stats returns the landing summary for the actor and indicates cache utilisation. Approvers see the
// review queue size; officers see counts over their assigned companies and their own open proposals.
func (s *DashboardService) Stats(ctx context.Context, actor models.Actor) (*models.DashboardStats, bool, error) {
	if !actor.Role.Valid() {
		return nil, false, appErrors.Clone(appErrors.ErrForbidden, "unknown role")
	}
	approver := policy.Allows(actor.Role, policy.OpApprove)
	cacheKey := "dash:approver"
	if !approver {
		cacheKey = fmt.Sprintf("dash:officer:%s", actor.UserID)
	}

	var cached models.DashboardStats
	if s.cache != nil && s.cache.Get(ctx, cacheKey, &cached) {
		return &cached, true, nil
	}

	summary, err := s.compose(ctx, actor, approver)
	if err != nil {
		return nil, false, err
	}
	if s.cache != nil {
		s.cache.Set(ctx, cacheKey, summary, s.cfg.CacheTTL)
	}
	return summary, false, nil
}

// System exposes the process metrics snapshot to administrators.
func (s *DashboardService) System(actor models.Actor) (*models.SystemMetrics, error) {
	if err := authorize(actor, policy.OpManageUsers); err != nil {
		return nil, err
	}
	snapshot := s.metrics.Snapshot()
	return &snapshot, nil
}

func (s *DashboardService) compose(ctx context.Context, actor models.Actor, approver bool) (*models.DashboardStats, error) {
	filter := models.CompanyFilter{}
	if !approver {
		filter.OfficerID = actor.UserID
	}
	stats, err := s.companies.Stats(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load company stats")
	}

	now := s.now().UTC()
	summary := &models.DashboardStats{
		TotalCompanies:     stats.Total,
		ContactedCompanies: stats.Contacted,
		GeneratedAt:        now,
	}

	if approver {
		pending, err := s.edits.CountByStatus(ctx, models.PendingEditStatusPending, "")
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count pending edits")
		}
		summary.PendingApprovals = &pending
	} else {
		assigned := stats.Total
		summary.AssignedCompanies = &assigned
		mine, err := s.edits.CountByStatus(ctx, models.PendingEditStatusPending, actor.UserID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count pending edits")
		}
		summary.MyPendingEdits = &mine
	}

	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	events, err := s.events.Upcoming(ctx, today, s.cfg.UpcomingEventsLimit)
	if err != nil {
		s.logger.Warn("failed to load upcoming events", zap.Error(err))
		events = []models.CalendarEvent{}
	}
	summary.UpcomingEvents = events
	return summary, nil
}
