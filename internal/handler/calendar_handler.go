package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sooryaakilesh10/place-pro-platform-88/internal/dto"
	"github.com/sooryaakilesh10/place-pro-platform-88/internal/models"
	"github.com/sooryaakilesh10/place-pro-platform-88/pkg/response"
)

type calendarService interface {
	List(ctx context.Context, actor models.Actor, query dto.CalendarQuery) ([]models.CalendarEvent, *models.Pagination, error)
	Get(ctx context.Context, actor models.Actor, id string) (*models.CalendarEvent, error)
	Create(ctx context.Context, actor models.Actor, req dto.CalendarEventRequest) (*models.CalendarEvent, error)
	Update(ctx context.Context, actor models.Actor, id string, req dto.CalendarEventRequest) (*models.CalendarEvent, error)
	Delete(ctx context.Context, actor models.Actor, id string) error
}

// CalendarHandler exposes placement calendar events.
type CalendarHandler struct {
	service calendarService
}

// NewCalendarHandler constructs the handler.
func NewCalendarHandler(service calendarService) *CalendarHandler {
	return &CalendarHandler{service: service}
}

// List godoc
// @Summary List calendar events
// @Tags Events
// @Produce json
// @Param from query string false "From date (YYYY-MM-DD)"
// @Param to query string false "To date (YYYY-MM-DD)"
// @Param type query string false "notification or target"
// @Success 200 {object} response.Envelope
// @Router /events [get]
func (h *CalendarHandler) List(c *gin.Context) {
	h.list(c, dto.CalendarQuery{From: c.Query("from"), To: c.Query("to"), Type: c.Query("type")})
}

// ByDate godoc
// @Summary Events on a date
// @Tags Events
// @Produce json
// @Param date path string true "Date (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Router /events/date/{date} [get]
func (h *CalendarHandler) ByDate(c *gin.Context) {
	date := c.Param("date")
	h.list(c, dto.CalendarQuery{From: date, To: date, Type: c.Query("type")})
}

// ByType godoc
// @Summary Events of a type
// @Tags Events
// @Produce json
// @Param type path string true "notification or target"
// @Success 200 {object} response.Envelope
// @Router /events/type/{type} [get]
func (h *CalendarHandler) ByType(c *gin.Context) {
	h.list(c, dto.CalendarQuery{From: c.Query("from"), To: c.Query("to"), Type: c.Param("type")})
}

func (h *CalendarHandler) list(c *gin.Context, query dto.CalendarQuery) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	page, size, err := pageParams(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	query.Page, query.PageSize = page, size
	events, pagination, err := h.service.List(c.Request.Context(), actor, query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, events, pagination)
}

// Get godoc
// @Summary Get calendar event
// @Tags Events
// @Produce json
// @Param id path string true "Event ID"
// @Success 200 {object} response.Envelope
// @Router /events/{id} [get]
func (h *CalendarHandler) Get(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	event, err := h.service.Get(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, event, nil)
}

// Create godoc
// @Summary Create calendar event
// @Tags Events
// @Accept json
// @Produce json
// @Param payload body dto.CalendarEventRequest true "Event"
// @Success 201 {object} response.Envelope
// @Router /events [post]
func (h *CalendarHandler) Create(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	var req dto.CalendarEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err, "invalid event payload"))
		return
	}
	event, err := h.service.Create(c.Request.Context(), actor, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, event)
}

// Update godoc
// @Summary Update calendar event
// @Tags Events
// @Accept json
// @Produce json
// @Param id path string true "Event ID"
// @Param payload body dto.CalendarEventRequest true "Event"
// @Success 200 {object} response.Envelope
// @Router /events/{id} [put]
func (h *CalendarHandler) Update(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	var req dto.CalendarEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err, "invalid event payload"))
		return
	}
	event, err := h.service.Update(c.Request.Context(), actor, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, event, nil)
}

// Delete godoc
// @Summary Delete calendar event
// @Tags Events
// @Param id path string true "Event ID"
// @Success 204
// @Router /events/{id} [delete]
func (h *CalendarHandler) Delete(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), actor, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
