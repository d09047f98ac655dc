package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/sooryaakilesh10/place-pro-platform-88/internal/dto"
	"github.com/sooryaakilesh10/place-pro-platform-88/internal/models"
	"github.com/sooryaakilesh10/place-pro-platform-88/pkg/response"
)

type approvalService interface {
	Approve(ctx context.Context, actor models.Actor, id, note string) (*models.ApprovalResult, error)
	Reject(ctx context.Context, actor models.Actor, id, note string) (*models.PendingEdit, error)
	List(ctx context.Context, actor models.Actor, query dto.PendingEditQuery) ([]models.PendingEdit, *models.Pagination, error)
	ListMine(ctx context.Context, actor models.Actor, query dto.PendingEditQuery) ([]models.PendingEdit, *models.Pagination, error)
	Get(ctx context.Context, actor models.Actor, id string) (*models.PendingEdit, error)
}

// PendingEditHandler exposes the review queue.
type PendingEditHandler struct {
	service approvalService
}

// NewPendingEditHandler constructs the handler.
func NewPendingEditHandler(service approvalService) *PendingEditHandler {
	return &PendingEditHandler{service: service}
}

// List godoc
// @Summary List pending edits
// @Description Defaults to status PENDING, oldest first
// @Tags PendingEdits
// @Produce json
// @Param status query string false "Comma separated statuses"
// @Param companyId query string false "Company ID"
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /pending-edits [get]
func (h *PendingEditHandler) List(c *gin.Context) {
	h.list(c, h.service.List)
}

// Mine godoc
// @Summary List own submissions
// @Tags PendingEdits
// @Produce json
// @Param status query string false "Comma separated statuses"
// @Success 200 {object} response.Envelope
// @Router /pending-edits/mine [get]
func (h *PendingEditHandler) Mine(c *gin.Context) {
	h.list(c, h.service.ListMine)
}

func (h *PendingEditHandler) list(c *gin.Context, fetch func(context.Context, models.Actor, dto.PendingEditQuery) ([]models.PendingEdit, *models.Pagination, error)) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	page, size, err := pageParams(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	query := dto.PendingEditQuery{
		CompanyID: strings.TrimSpace(c.Query("companyId")),
		Page:      page,
		PageSize:  size,
	}
	for _, raw := range strings.Split(c.Query("status"), ",") {
		if s := strings.ToUpper(strings.TrimSpace(raw)); s != "" {
			query.Status = append(query.Status, models.PendingEditStatus(s))
		}
	}
	edits, pagination, err := fetch(c.Request.Context(), actor, query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, edits, pagination)
}

// Get godoc
// @Summary Get pending edit
// @Tags PendingEdits
// @Produce json
// @Param id path string true "Pending edit ID"
// @Success 200 {object} response.Envelope
// @Router /pending-edits/{id} [get]
func (h *PendingEditHandler) Get(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	edit, err := h.service.Get(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, edit, nil)
}

// Approve godoc
// @Summary Approve pending edit
// @Description Merges the proposal into the company. Returns 409 when already reviewed and 410 when the company is gone.
// @Tags PendingEdits
// @Accept json
// @Produce json
// @Param id path string true "Pending edit ID"
// @Param payload body dto.ReviewRequest false "Review note"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Failure 410 {object} response.Envelope
// @Router /pending-edits/{id}/approve [post]
func (h *PendingEditHandler) Approve(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	req, ok := bindReview(c)
	if !ok {
		return
	}
	result, err := h.service.Approve(c.Request.Context(), actor, c.Param("id"), req.Note)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Reject godoc
// @Summary Reject pending edit
// @Tags PendingEdits
// @Accept json
// @Produce json
// @Param id path string true "Pending edit ID"
// @Param payload body dto.ReviewRequest false "Review note"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /pending-edits/{id}/reject [post]
func (h *PendingEditHandler) Reject(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	req, ok := bindReview(c)
	if !ok {
		return
	}
	edit, err := h.service.Reject(c.Request.Context(), actor, c.Param("id"), req.Note)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, edit, nil)
}

// bindReview accepts an empty body as a review without a note.
func bindReview(c *gin.Context) (dto.ReviewRequest, bool) {
	var req dto.ReviewRequest
	if c.Request.ContentLength == 0 {
		return req, true
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err, "invalid review payload"))
		return req, false
	}
	return req, true
}
