package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sooryaakilesh10/place-pro-platform-88/internal/middleware"
	"github.com/sooryaakilesh10/place-pro-platform-88/internal/models"
	"github.com/sooryaakilesh10/place-pro-platform-88/pkg/response"
)

type dashboardService interface {
	Stats(ctx context.Context, actor models.Actor) (*models.DashboardStats, bool, error)
	System(actor models.Actor) (*models.SystemMetrics, error)
}

// DashboardHandler wires dashboard service to HTTP endpoints.
type DashboardHandler struct {
	service dashboardService
}

// NewDashboardHandler constructs the handler.
func NewDashboardHandler(service dashboardService) *DashboardHandler {
	return &DashboardHandler{service: service}
}

// Stats godoc
// @Summary Dashboard summary
// @Description Approvers see pending approvals; officers see their assigned companies and submissions
// @Tags Dashboard
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /dashboard [get]
func (h *DashboardHandler) Stats(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	stats, cacheHit, err := h.service.Stats(c.Request.Context(), actor)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, cacheHit)
	response.JSON(c, http.StatusOK, stats, nil, middleware.ResponseMeta(c))
}

// System godoc
// @Summary Runtime metrics snapshot
// @Tags Dashboard
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /dashboard/system [get]
func (h *DashboardHandler) System(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	metrics, err := h.service.System(actor)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, metrics, nil)
}
