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

type companyService interface {
	List(ctx context.Context, actor models.Actor, query dto.CompanyQuery) ([]models.Company, *models.Pagination, error)
	Get(ctx context.Context, actor models.Actor, id string) (*models.Company, error)
	Create(ctx context.Context, actor models.Actor, req dto.CreateCompanyRequest) (*models.Company, error)
	Delete(ctx context.Context, actor models.Actor, id string) error
	AssignOfficer(ctx context.Context, actor models.Actor, companyID, officerID string) (*models.Company, error)
	UnassignOfficer(ctx context.Context, actor models.Actor, companyID, officerID string) (*models.Company, error)
}

type editSubmitter interface {
	SubmitEdit(ctx context.Context, actor models.Actor, companyID string, fields map[string]interface{}) (*models.EditResult, error)
}

// CompanyHandler exposes company records and the edit submission endpoint.
type CompanyHandler struct {
	companies companyService
	edits     editSubmitter
}

// NewCompanyHandler constructs the handler.
func NewCompanyHandler(companies companyService, edits editSubmitter) *CompanyHandler {
	return &CompanyHandler{companies: companies, edits: edits}
}

// List godoc
// @Summary List companies
// @Description Officers only see companies they are assigned to
// @Tags Companies
// @Produce json
// @Param search query string false "Name, address, drive or package contains"
// @Param officerId query string false "Assigned officer"
// @Param contacted query bool false "Contacted filter"
// @Param assigned query bool false "Has any officer"
// @Param typeOfDrive query string false "ON_CAMPUS, OFF_CAMPUS or VIRTUAL"
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /companies [get]
func (h *CompanyHandler) List(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	page, size, err := pageParams(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	contacted, err := boolQuery(c, "contacted")
	if err != nil {
		response.Error(c, err)
		return
	}
	assigned, err := boolQuery(c, "assigned")
	if err != nil {
		response.Error(c, err)
		return
	}

	companies, pagination, err := h.companies.List(c.Request.Context(), actor, dto.CompanyQuery{
		Search:      strings.TrimSpace(c.Query("search")),
		OfficerID:   strings.TrimSpace(c.Query("officerId")),
		Contacted:   contacted,
		Assigned:    assigned,
		TypeOfDrive: c.Query("typeOfDrive"),
		Page:        page,
		PageSize:    size,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, companies, pagination)
}

// Get godoc
// @Summary Get company
// @Tags Companies
// @Produce json
// @Param id path string true "Company ID"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /companies/{id} [get]
func (h *CompanyHandler) Get(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	company, err := h.companies.Get(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, company, nil)
}

// Create godoc
// @Summary Create company
// @Tags Companies
// @Accept json
// @Produce json
// @Param payload body dto.CreateCompanyRequest true "Company payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /companies [post]
func (h *CompanyHandler) Create(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	var req dto.CreateCompanyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err, "invalid company payload"))
		return
	}
	company, err := h.companies.Create(c.Request.Context(), actor, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, company)
}

// Update godoc
// @Summary Submit company changes
// @Description Admins and managers apply changes directly (200). Officers create a pending edit (202).
// @Tags Companies
// @Accept json
// @Produce json
// @Param id path string true "Company ID"
// @Param payload body map[string]interface{} true "Sparse field map"
// @Success 200 {object} response.Envelope
// @Success 202 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /companies/{id} [patch]
func (h *CompanyHandler) Update(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	var fields map[string]interface{}
	if err := c.ShouldBindJSON(&fields); err != nil {
		response.Error(c, bindError(err, "invalid edit payload"))
		return
	}
	result, err := h.edits.SubmitEdit(c.Request.Context(), actor, c.Param("id"), fields)
	if err != nil {
		response.Error(c, err)
		return
	}
	if result.Outcome == models.EditOutcomePendingApproval {
		response.Accepted(c, result)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Delete godoc
// @Summary Delete company
// @Description Removes the company and purges all of its pending edits
// @Tags Companies
// @Param id path string true "Company ID"
// @Success 204
// @Failure 404 {object} response.Envelope
// @Router /companies/{id} [delete]
func (h *CompanyHandler) Delete(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	if err := h.companies.Delete(c.Request.Context(), actor, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// AssignOfficer godoc
// @Summary Assign officer to company
// @Tags Companies
// @Accept json
// @Produce json
// @Param id path string true "Company ID"
// @Param payload body dto.AssignOfficerRequest true "Officer"
// @Success 200 {object} response.Envelope
// @Router /companies/{id}/officers [post]
func (h *CompanyHandler) AssignOfficer(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	var req dto.AssignOfficerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err, "invalid assignment payload"))
		return
	}
	company, err := h.companies.AssignOfficer(c.Request.Context(), actor, c.Param("id"), strings.TrimSpace(req.OfficerID))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, company, nil)
}

// UnassignOfficer godoc
// @Summary Remove officer from company
// @Tags Companies
// @Produce json
// @Param id path string true "Company ID"
// @Param officerId path string true "Officer ID"
// @Success 200 {object} response.Envelope
// @Router /companies/{id}/officers/{officerId} [delete]
func (h *CompanyHandler) UnassignOfficer(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	company, err := h.companies.UnassignOfficer(c.Request.Context(), actor, c.Param("id"), c.Param("officerId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, company, nil)
}
