package models

import "strings"

// ReportTimestampLayout renders record timestamps in exported reports.
const ReportTimestampLayout = "2006-01-02 15:04:05"

// ReportFormat enumerates supported export encodings.
type ReportFormat string

const (
	ReportFormatXLSX ReportFormat = "xlsx"
	ReportFormatCSV  ReportFormat = "csv"
	ReportFormatPDF  ReportFormat = "pdf"
)

// ParseReportFormat defaults to xlsx when the input is empty.
func ParseReportFormat(raw string) (ReportFormat, bool) {
	switch ReportFormat(strings.ToLower(strings.TrimSpace(raw))) {
	case "", ReportFormatXLSX:
		return ReportFormatXLSX, true
	case ReportFormatCSV:
		return ReportFormatCSV, true
	case ReportFormatPDF:
		return ReportFormatPDF, true
	}
	return "", false
}

// ContentType returns the MIME type of the format.
func (f ReportFormat) ContentType() string {
	switch f {
	case ReportFormatCSV:
		return "text/csv"
	case ReportFormatPDF:
		return "application/pdf"
	default:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
}

// ReportScope is the company subset a report covers.
type ReportScope string

const (
	ReportScopeAll          ReportScope = "all"
	ReportScopeContacted    ReportScope = "contacted"
	ReportScopeNotContacted ReportScope = "not-contacted"
	ReportScopeAssigned     ReportScope = "assigned"
	ReportScopeUnassigned   ReportScope = "unassigned"
)

// ParseReportScope defaults to all when the input is empty.
func ParseReportScope(raw string) (ReportScope, bool) {
	switch ReportScope(strings.ToLower(strings.TrimSpace(raw))) {
	case "", ReportScopeAll:
		return ReportScopeAll, true
	case ReportScopeContacted:
		return ReportScopeContacted, true
	case ReportScopeNotContacted:
		return ReportScopeNotContacted, true
	case ReportScopeAssigned:
		return ReportScopeAssigned, true
	case ReportScopeUnassigned:
		return ReportScopeUnassigned, true
	}
	return "", false
}

// CompanyFilter translates the scope into a listing filter.
func (s ReportScope) CompanyFilter() CompanyFilter {
	yes, no := true, false
	switch s {
	case ReportScopeContacted:
		return CompanyFilter{Contacted: &yes}
	case ReportScopeNotContacted:
		return CompanyFilter{Contacted: &no}
	case ReportScopeAssigned:
		return CompanyFilter{Assigned: &yes}
	case ReportScopeUnassigned:
		return CompanyFilter{Assigned: &no}
	}
	return CompanyFilter{}
}

// CompanyReport is the report payload shown before export.
type CompanyReport struct {
	Scope     ReportScope  `json:"scope"`
	Stats     CompanyStats `json:"stats"`
	Companies []Company    `json:"companies"`
}
