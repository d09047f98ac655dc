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
	appErrors "github.com/sooryaakilesh10/place-pro-platform-88/pkg/errors"
)

type calendarRepository interface {
	List(ctx context.Context, filter models.CalendarFilter) ([]models.CalendarEvent, int, error)
	GetByID(ctx context.Context, id string) (*models.CalendarEvent, error)
	Create(ctx context.Context, event *models.CalendarEvent) error
	Update(ctx context.Context, event *models.CalendarEvent) error
	Delete(ctx context.Context, id string) error
}

// CalendarService manages calendar events.
type CalendarService struct {
	repo      calendarRepository
	cache     cacheInvalidator
	validator *validator.Validate
	logger    *zap.Logger
}

// NewCalendarService constructs the service.
func NewCalendarService(repo calendarRepository, cache cacheInvalidator, logger *zap.Logger) *CalendarService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CalendarService{repo: repo, cache: cache, validator: newValidator(), logger: logger}
}

// List returns calendar events in date order.
func (s *CalendarService) List(ctx context.Context, actor models.Actor, query dto.CalendarQuery) ([]models.CalendarEvent, *models.Pagination, error) {
	if err := authorize(actor, policy.OpViewEvents); err != nil {
		return nil, nil, err
	}
	filter := models.CalendarFilter{Page: query.Page, PageSize: query.PageSize}
	problems := make(map[string]string)
	if query.From != "" {
		from, err := time.Parse(models.EventDateLayout, query.From)
		if err != nil {
			problems["from"] = "must be a date in YYYY-MM-DD format"
		}
		filter.From = &from
	}
	if query.To != "" {
		to, err := time.Parse(models.EventDateLayout, query.To)
		if err != nil {
			problems["to"] = "must be a date in YYYY-MM-DD format"
		}
		filter.To = &to
	}
	if query.Type != "" {
		eventType, ok := models.ParseEventType(query.Type)
		if !ok {
			problems["type"] = "must be NOTIFICATION or TARGET"
		}
		filter.Type = eventType
	}
	if len(problems) > 0 {
		return nil, nil, appErrors.WithFields(appErrors.ErrValidation, "invalid event filter", problems)
	}
	if filter.From != nil && filter.To != nil && filter.To.Before(*filter.From) {
		return nil, nil, appErrors.WithFields(appErrors.ErrValidation, "invalid event filter", map[string]string{"to": "must be on or after from"})
	}

	events, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list calendar events")
	}
	return events, models.NewPagination(query.Page, query.PageSize, 50, 200, total), nil
}

// Get returns a calendar event by id.
func (s *CalendarService) Get(ctx context.Context, actor models.Actor, id string) (*models.CalendarEvent, error) {
	if err := authorize(actor, policy.OpViewEvents); err != nil {
		return nil, err
	}
	return s.load(ctx, id)
}

// Create registers a new event.
func (s *CalendarService) Create(ctx context.Context, actor models.Actor, req dto.CalendarEventRequest) (*models.CalendarEvent, error) {
	if err := authorize(actor, policy.OpManageEvents); err != nil {
		return nil, err
	}
	date, eventType, err := s.parseRequest(req)
	if err != nil {
		return nil, err
	}
	event := &models.CalendarEvent{
		EventDate:   date,
		Type:        eventType,
		Title:       strings.TrimSpace(req.Title),
		Description: strings.TrimSpace(req.Description),
		CreatedBy:   actor.UserID,
	}
	if err := s.repo.Create(ctx, event); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create event")
	}
	s.logger.Info("calendar event created", zap.String("event_id", event.ID), zap.String("actor_id", actor.UserID))
	invalidateDashboards(ctx, s.cache)
	return event, nil
}

// Update modifies an event.
func (s *CalendarService) Update(ctx context.Context, actor models.Actor, id string, req dto.CalendarEventRequest) (*models.CalendarEvent, error) {
	if err := authorize(actor, policy.OpManageEvents); err != nil {
		return nil, err
	}
	date, eventType, err := s.parseRequest(req)
	if err != nil {
		return nil, err
	}
	event, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	event.EventDate = date
	event.Type = eventType
	event.Title = strings.TrimSpace(req.Title)
	event.Description = strings.TrimSpace(req.Description)
	if err := s.repo.Update(ctx, event); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "event not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update event")
	}
	invalidateDashboards(ctx, s.cache)
	return event, nil
}

// Delete removes a calendar event.
func (s *CalendarService) Delete(ctx context.Context, actor models.Actor, id string) error {
	if err := authorize(actor, policy.OpManageEvents); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "event not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete event")
	}
	s.logger.Info("calendar event deleted", zap.String("event_id", id), zap.String("actor_id", actor.UserID))
	invalidateDashboards(ctx, s.cache)
	return nil
}

func (s *CalendarService) parseRequest(req dto.CalendarEventRequest) (time.Time, models.EventType, error) {
	if err := s.validator.Struct(req); err != nil {
		return time.Time{}, "", validationError(err, "invalid event payload")
	}
	eventType, ok := models.ParseEventType(req.Type)
	if !ok {
		return time.Time{}, "", appErrors.WithFields(appErrors.ErrValidation, "invalid event payload", map[string]string{"type": "must be NOTIFICATION or TARGET"})
	}
	date, _ := time.Parse(models.EventDateLayout, req.Date)
	return date, eventType, nil
}

func (s *CalendarService) load(ctx context.Context, id string) (*models.CalendarEvent, error) {
	event, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "event not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load event")
	}
	return event, nil
}
