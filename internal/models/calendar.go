package models

import (
	"strings"
	"time"
)

// EventType distinguishes calendar entries.
type EventType string

const (
	EventTypeNotification EventType = "NOTIFICATION"
	EventTypeTarget       EventType = "TARGET"
)

// ParseEventType resolves an event type case-insensitively.
func ParseEventType(raw string) (EventType, bool) {
	switch EventType(strings.ToUpper(strings.TrimSpace(raw))) {
	case EventTypeNotification:
		return EventTypeNotification, true
	case EventTypeTarget:
		return EventTypeTarget, true
	}
	return "", false
}

// EventDateLayout is the wire format of event dates.
const EventDateLayout = "2006-01-02"

// CalendarEvent is a dated notification or placement target.
type CalendarEvent struct {
	ID          string    `db:"id" json:"id"`
	EventDate   time.Time `db:"event_date" json:"date"`
	Type        EventType `db:"type" json:"type"`
	Title       string    `db:"title" json:"title"`
	Description string    `db:"description" json:"description"`
	CreatedBy   string    `db:"created_by" json:"createdBy"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time `db:"updated_at" json:"updatedAt"`
}

// CalendarFilter narrows down events.
type CalendarFilter struct {
	From     *time.Time
	To       *time.Time
	Type     EventType
	Page     int
	PageSize int
}
