package dto

import "github.com/sooryaakilesh10/place-pro-platform-88/internal/models"

// ReviewRequest carries the optional reviewer note for approve and reject.
type ReviewRequest struct {
	Note string `json:"note" validate:"max=1000"`
}

// PendingEditQuery mirrors the GET /pending-edits filters.
type PendingEditQuery struct {
	Status      []models.PendingEditStatus
	CompanyID   string
	SubmittedBy string
	Page        int
	PageSize    int
}
