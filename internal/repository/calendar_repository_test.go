package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sooryaakilesh10/place-pro-platform-88/internal/models"
)

var calendarRowColumns = []string{"id", "event_date", "type", "title", "description", "created_by", "created_at", "updated_at"}

func TestCalendarRepositoryListByRangeAndType(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewCalendarRepository(db)

	from := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("FROM calendar_events WHERE (event_date >= $1 AND event_date <= $2 AND type = $3) ORDER BY event_date ASC, created_at ASC LIMIT 50 OFFSET 0")).
		WithArgs("2024-03-01", "2024-03-31", models.EventTypeTarget).
		WillReturnRows(sqlmock.NewRows(calendarRowColumns).AddRow("e-1", from, "TARGET", "Hire 10", "", "admin-1", now, now))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM calendar_events WHERE")).
		WithArgs("2024-03-01", "2024-03-31", models.EventTypeTarget).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	events, total, err := repo.List(context.Background(), models.CalendarFilter{From: &from, To: &to, Type: models.EventTypeTarget})
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, 1, total)
	assert.Equal(t, models.EventTypeTarget, events[0].Type)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCalendarRepositoryUpcoming(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewCalendarRepository(db)

	from := time.Date(2024, 3, 10, 15, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta("WHERE event_date >= $1 ORDER BY event_date ASC, created_at ASC LIMIT $2")).
		WithArgs("2024-03-10", 5).
		WillReturnRows(sqlmock.NewRows(calendarRowColumns))

	events, err := repo.Upcoming(context.Background(), from, 5)
	require.NoError(t, err)
	assert.Empty(t, events)

	events, err = repo.Upcoming(context.Background(), from, 0)
	require.NoError(t, err)
	assert.Empty(t, events)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCalendarRepositoryCreateUpdateDelete(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewCalendarRepository(db)

	event := &models.CalendarEvent{EventDate: time.Now(), Type: models.EventTypeNotification, Title: "Drive", CreatedBy: "admin-1"}
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO calendar_events")).WillReturnResult(sqlmock.NewResult(1, 1))
	require.NoError(t, repo.Create(context.Background(), event))
	assert.NotEmpty(t, event.ID)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE calendar_events SET")).WillReturnResult(sqlmock.NewResult(0, 0))
	require.ErrorIs(t, repo.Update(context.Background(), event), sql.ErrNoRows)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM calendar_events WHERE id = $1")).WithArgs(event.ID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.Delete(context.Background(), event.ID))
	assert.NoError(t, mock.ExpectationsWereMet())
}
