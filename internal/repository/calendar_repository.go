package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/sooryaakilesh10/place-pro-platform-88/internal/models"
)

const calendarColumns = `id, event_date, type, title, description, created_by, created_at, updated_at`

// CalendarRepository persists calendar events.
type CalendarRepository struct {
	db *sqlx.DB
}

// NewCalendarRepository constructs a calendar repository.
func NewCalendarRepository(db *sqlx.DB) *CalendarRepository {
	return &CalendarRepository{db: db}
}

// List returns calendar events matching filters ordered by date.
func (r *CalendarRepository) List(ctx context.Context, filter models.CalendarFilter) ([]models.CalendarEvent, int, error) {
	where := squirrel.And{}
	if filter.From != nil {
		where = append(where, squirrel.GtOrEq{"event_date": filter.From.Format(models.EventDateLayout)})
	}
	if filter.To != nil {
		where = append(where, squirrel.LtOrEq{"event_date": filter.To.Format(models.EventDateLayout)})
	}
	if filter.Type != "" {
		where = append(where, squirrel.Eq{"type": filter.Type})
	}

	listBuilder := psql.Select(calendarColumns).From("calendar_events")
	countBuilder := psql.Select("COUNT(*)").From("calendar_events")
	if len(where) > 0 {
		listBuilder = listBuilder.Where(where)
		countBuilder = countBuilder.Where(where)
	}

	limit, offset := pageWindow(filter.Page, filter.PageSize, 50, 200)
	query, args, err := listBuilder.OrderBy("event_date ASC", "created_at ASC").Limit(limit).Offset(offset).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build calendar list query: %w", err)
	}
	events := make([]models.CalendarEvent, 0)
	if err := r.db.SelectContext(ctx, &events, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list calendar events: %w", err)
	}

	countQuery, countArgs, err := countBuilder.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build calendar count query: %w", err)
	}
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, countArgs...); err != nil {
		return nil, 0, fmt.Errorf("count calendar events: %w", err)
	}
	return events, total, nil
}

// Upcoming returns at most limit events dated on or after from.
func (r *CalendarRepository) Upcoming(ctx context.Context, from time.Time, limit int) ([]models.CalendarEvent, error) {
	events := make([]models.CalendarEvent, 0)
	if limit <= 0 {
		return events, nil
	}
	query := `SELECT ` + calendarColumns + ` FROM calendar_events WHERE event_date >= $1 ORDER BY event_date ASC, created_at ASC LIMIT $2`
	if err := r.db.SelectContext(ctx, &events, query, from.Format(models.EventDateLayout), limit); err != nil {
		return nil, fmt.Errorf("list upcoming events: %w", err)
	}
	return events, nil
}

// GetByID fetches a calendar event.
func (r *CalendarRepository) GetByID(ctx context.Context, id string) (*models.CalendarEvent, error) {
	query := `SELECT ` + calendarColumns + ` FROM calendar_events WHERE id = $1`
	var event models.CalendarEvent
	if err := r.db.GetContext(ctx, &event, query, id); err != nil {
		if isMissingRow(err) {
			return nil, sql.ErrNoRows
		}
		return nil, fmt.Errorf("get calendar event: %w", err)
	}
	return &event, nil
}

// Create inserts a calendar event.
func (r *CalendarRepository) Create(ctx context.Context, event *models.CalendarEvent) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if event.CreatedAt.IsZero() {
		event.CreatedAt = now
	}
	event.UpdatedAt = event.CreatedAt
	const query = `INSERT INTO calendar_events (id, event_date, type, title, description, created_by, created_at, updated_at)
	VALUES (:id, :event_date, :type, :title, :description, :created_by, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, event); err != nil {
		return fmt.Errorf("create calendar event: %w", err)
	}
	return nil
}

// Update modifies an event.
func (r *CalendarRepository) Update(ctx context.Context, event *models.CalendarEvent) error {
	event.UpdatedAt = time.Now().UTC()
	const query = `UPDATE calendar_events SET event_date = :event_date, type = :type, title = :title, description = :description,
	updated_at = :updated_at WHERE id = :id`
	result, err := r.db.NamedExecContext(ctx, query, event)
	if err != nil {
		if isMissingRow(err) {
			return sql.ErrNoRows
		}
		return fmt.Errorf("update calendar event: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check calendar update rows: %w", err)
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes an event.
func (r *CalendarRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM calendar_events WHERE id = $1`, id)
	if err != nil {
		if isMissingRow(err) {
			return sql.ErrNoRows
		}
		return fmt.Errorf("delete calendar event: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check calendar delete rows: %w", err)
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}
