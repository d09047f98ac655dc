package dto

import "time"

// ExportCompaniesRequest captures POST /reports/companies/export payload.
type ExportCompaniesRequest struct {
	Scope  string `json:"scope"`
	Format string `json:"format"`
}

// ExportResponse describes a rendered report and its signed download link.
type ExportResponse struct {
	ExportID    string    `json:"exportId"`
	FileName    string    `json:"fileName"`
	Format      string    `json:"format"`
	RowCount    int       `json:"rowCount"`
	DownloadURL string    `json:"downloadUrl"`
	ExpiresAt   time.Time `json:"expiresAt"`
}
