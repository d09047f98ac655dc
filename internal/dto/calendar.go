package dto

// CalendarEventRequest is the create and update payload for calendar events.
type CalendarEventRequest struct {
	Date        string `json:"date" validate:"required,datetime=2006-01-02"`
	Type        string `json:"type" validate:"required"`
	Title       string `json:"title" validate:"required,max=255"`
	Description string `json:"description"`
}

// CalendarQuery mirrors the GET /events filters. Dates use YYYY-MM-DD.
type CalendarQuery struct {
	From     string
	To       string
	Type     string
	Page     int
	PageSize int
}
