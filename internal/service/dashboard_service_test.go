package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sooryaakilesh10/place-pro-platform-88/internal/models"
	appErrors "github.com/sooryaakilesh10/place-pro-platform-88/pkg/errors"
)

type statsProviderStub struct {
	filters []models.CompanyFilter
}

func (s *statsProviderStub) Stats(ctx context.Context, filter models.CompanyFilter) (*models.CompanyStats, error) {
	s.filters = append(s.filters, filter)
	if filter.OfficerID != "" {
		return &models.CompanyStats{Total: 3, Contacted: 1, Assigned: 3}, nil
	}
	return &models.CompanyStats{Total: 40, Contacted: 22, Assigned: 30, OnCampus: 12}, nil
}

type editCounterStub struct {
	submitters []string
}

func (e *editCounterStub) CountByStatus(ctx context.Context, status models.PendingEditStatus, submittedBy string) (int, error) {
	e.submitters = append(e.submitters, submittedBy)
	if submittedBy != "" {
		return 2, nil
	}
	return 7, nil
}

type upcomingStub struct {
	from  time.Time
	limit int
	err   error
}

func (u *upcomingStub) Upcoming(ctx context.Context, from time.Time, limit int) ([]models.CalendarEvent, error) {
	u.from, u.limit = from, limit
	if u.err != nil {
		return nil, u.err
	}
	return []models.CalendarEvent{{ID: "event-1", Title: "TCS drive"}}, nil
}

type memoryDashboardCache struct {
	entries map[string]models.DashboardStats
}

func (m *memoryDashboardCache) Get(ctx context.Context, key string, dest interface{}) bool {
	stats, ok := m.entries[key]
	if ok {
		*(dest.(*models.DashboardStats)) = stats
	}
	return ok
}

func (m *memoryDashboardCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) {
	m.entries[key] = *(value.(*models.DashboardStats))
}

func newDashboardFixture() (*DashboardService, *statsProviderStub, *editCounterStub, *upcomingStub, *memoryDashboardCache) {
	stats := &statsProviderStub{}
	edits := &editCounterStub{}
	events := &upcomingStub{}
	cache := &memoryDashboardCache{entries: make(map[string]models.DashboardStats)}
	svc := NewDashboardService(DashboardServiceParams{
		Companies: stats,
		Edits:     edits,
		Events:    events,
		Cache:     cache,
		Metrics:   NewMetricsService(),
		Config:    DashboardServiceConfig{UpcomingEventsLimit: 3},
	})
	svc.now = fixedClock(time.Date(2024, 3, 6, 15, 45, 0, 0, time.UTC))
	return svc, stats, edits, events, cache
}

func TestDashboardServiceApproverStats(t *testing.T) {
	svc, stats, _, events, cache := newDashboardFixture()

	summary, cached, err := svc.Stats(context.Background(), managerActor)
	require.NoError(t, err)
	assert.False(t, cached)
	assert.Equal(t, 40, summary.TotalCompanies)
	assert.Equal(t, 22, summary.ContactedCompanies)
	require.NotNil(t, summary.PendingApprovals)
	assert.Equal(t, 7, *summary.PendingApprovals)
	assert.Nil(t, summary.AssignedCompanies)
	assert.Len(t, summary.UpcomingEvents, 1)
	assert.Equal(t, time.Date(2024, 3, 6, 0, 0, 0, 0, time.UTC), events.from)
	assert.Equal(t, 3, events.limit)
	assert.Contains(t, cache.entries, "dash:approver")

	again, cached, err := svc.Stats(context.Background(), adminActor)
	require.NoError(t, err)
	assert.True(t, cached)
	assert.Equal(t, 40, again.TotalCompanies)
	assert.Len(t, stats.filters, 1)
}

func TestDashboardServiceOfficerStats(t *testing.T) {
	svc, stats, edits, _, cache := newDashboardFixture()

	summary, _, err := svc.Stats(context.Background(), officerActor)
	require.NoError(t, err)
	assert.Equal(t, "officer-1", stats.filters[0].OfficerID)
	assert.Equal(t, 3, summary.TotalCompanies)
	require.NotNil(t, summary.AssignedCompanies)
	assert.Equal(t, 3, *summary.AssignedCompanies)
	require.NotNil(t, summary.MyPendingEdits)
	assert.Equal(t, 2, *summary.MyPendingEdits)
	assert.Nil(t, summary.PendingApprovals)
	assert.Equal(t, []string{"officer-1"}, edits.submitters)
	assert.Contains(t, cache.entries, "dash:officer:officer-1")
}

func TestDashboardServiceToleratesEventFailure(t *testing.T) {
	svc, _, _, events, _ := newDashboardFixture()
	events.err = errors.New("boom")

	summary, _, err := svc.Stats(context.Background(), adminActor)
	require.NoError(t, err)
	assert.Empty(t, summary.UpcomingEvents)
	assert.NotNil(t, summary.UpcomingEvents)
}

func TestDashboardServiceSystemMetrics(t *testing.T) {
	svc, _, _, _, _ := newDashboardFixture()

	snapshot, err := svc.System(adminActor)
	require.NoError(t, err)
	assert.Positive(t, snapshot.Goroutines)

	_, err = svc.System(managerActor)
	requireCode(t, err, appErrors.ErrForbidden)
}
