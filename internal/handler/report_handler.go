package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sooryaakilesh10/place-pro-platform-88/internal/dto"
	"github.com/sooryaakilesh10/place-pro-platform-88/internal/models"
	"github.com/sooryaakilesh10/place-pro-platform-88/internal/service"
	"github.com/sooryaakilesh10/place-pro-platform-88/pkg/response"
)

type reportService interface {
	Companies(ctx context.Context, actor models.Actor, scope string) (*models.CompanyReport, error)
	Export(ctx context.Context, actor models.Actor, req dto.ExportCompaniesRequest) (*dto.ExportResponse, error)
	Download(ctx context.Context, token string) (*service.ExportDownload, error)
}

// ReportHandler exposes company reports and export downloads.
type ReportHandler struct {
	service reportService
}

// NewReportHandler constructs handler.
func NewReportHandler(service reportService) *ReportHandler {
	return &ReportHandler{service: service}
}

// Companies godoc
// @Summary Company report
// @Tags Reports
// @Produce json
// @Param scope query string false "all, contacted, not-contacted, assigned or unassigned"
// @Success 200 {object} response.Envelope
// @Router /reports/companies [get]
func (h *ReportHandler) Companies(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	report, err := h.service.Companies(c.Request.Context(), actor, c.Query("scope"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, report, nil)
}

// Export godoc
// @Summary Export company report
// @Description Renders xlsx (default), csv or pdf and returns a signed download link
// @Tags Reports
// @Accept json
// @Produce json
// @Param payload body dto.ExportCompaniesRequest true "Scope and format"
// @Success 201 {object} response.Envelope
// @Router /reports/companies/export [post]
func (h *ReportHandler) Export(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	var req dto.ExportCompaniesRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, bindError(err, "invalid export payload"))
			return
		}
	}
	result, err := h.service.Export(c.Request.Context(), actor, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// Download godoc
// @Summary Download exported report
// @Tags Reports
// @Produce octet-stream
// @Param token path string true "Signed token"
// @Success 200
// @Failure 403 {object} response.Envelope
// @Failure 410 {object} response.Envelope
// @Router /export/{token} [get]
func (h *ReportHandler) Download(c *gin.Context) {
	download, err := h.service.Download(c.Request.Context(), c.Param("token"))
	if err != nil {
		response.Error(c, err)
		return
	}
	defer download.File.Close()

	c.Header("Cache-Control", "no-store")
	c.DataFromReader(http.StatusOK, download.Size, download.ContentType, download.File, map[string]string{
		"Content-Disposition": fmt.Sprintf(`attachment; filename="%s"`, download.FileName),
	})
}
