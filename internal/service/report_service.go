package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sooryaakilesh10/place-pro-platform-88/internal/dto"
	"github.com/sooryaakilesh10/place-pro-platform-88/internal/models"
	"github.com/sooryaakilesh10/place-pro-platform-88/internal/policy"
	appErrors "github.com/sooryaakilesh10/place-pro-platform-88/pkg/errors"
	"github.com/sooryaakilesh10/place-pro-platform-88/pkg/export"
)

type reportCompanySource interface {
	ListAll(ctx context.Context, filter models.CompanyFilter) ([]models.Company, error)
	Stats(ctx context.Context, filter models.CompanyFilter) (*models.CompanyStats, error)
}

type officerDirectory interface {
	ListByIDs(ctx context.Context, ids []string) ([]models.User, error)
}

type reportExporter interface {
	Render(format models.ReportFormat, data export.Dataset, title, subtitle string) ([]byte, error)
	Store(exportID, fileName string, payload []byte) (*ExportResult, error)
	Open(token string) (*ExportDownload, error)
	Cleanup() ([]string, error)
}

// companyReportHeaders is the exported column set, in sheet order.
var companyReportHeaders = []string{
	"Company ID", "Company Name", "Address", "Drive", "Type of Drive", "Follow Up", "Contacted",
	"Remarks", "Contact Details", "HR1 Details", "HR2 Details", "Package", "Assigned Officer",
	"Created At", "Updated At",
}

// ReportServiceConfig tunes report behaviour.
type ReportServiceConfig struct {
	CleanupInterval time.Duration
}

// ReportService builds company reports and their downloadable exports.
type ReportService struct {
	companies reportCompanySource
	officers  officerDirectory
	exporter  reportExporter
	metrics   *MetricsService
	logger    *zap.Logger
	cfg       ReportServiceConfig
	now       func() time.Time
}

// NewReportService constructs a ReportService.
func NewReportService(companies reportCompanySource, officers officerDirectory, exporter reportExporter, metrics *MetricsService, cfg ReportServiceConfig, logger *zap.Logger) *ReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportService{
		companies: companies,
		officers:  officers,
		exporter:  exporter,
		metrics:   metrics,
		logger:    logger,
		cfg:       cfg,
		now:       time.Now,
	}
}

// Companies returns the summary stats and rows for the scope.
func (s *ReportService) Companies(ctx context.Context, actor models.Actor, rawScope string) (*models.CompanyReport, error) {
	if err := authorize(actor, policy.OpViewReports); err != nil {
		return nil, err
	}
	scope, err := parseScope(rawScope)
	if err != nil {
		return nil, err
	}
	filter := scope.CompanyFilter()
	companies, err := s.companies.ListAll(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load companies")
	}
	stats, err := s.companies.Stats(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load company stats")
	}
	return &models.CompanyReport{Scope: scope, Stats: *stats, Companies: companies}, nil
}

// Export renders the scoped companies and returns a signed download link.
func (s *ReportService) Export(ctx context.Context, actor models.Actor, req dto.ExportCompaniesRequest) (*dto.ExportResponse, error) {
	if err := authorize(actor, policy.OpViewReports); err != nil {
		return nil, err
	}
	scope, err := parseScope(req.Scope)
	if err != nil {
		return nil, err
	}
	format, ok := models.ParseReportFormat(req.Format)
	if !ok {
		return nil, appErrors.WithFields(appErrors.ErrValidation, "invalid export request", map[string]string{"format": "must be xlsx, csv or pdf"})
	}

	companies, err := s.companies.ListAll(ctx, scope.CompanyFilter())
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load companies")
	}
	names, err := s.officerNames(ctx, companies)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	dataset := buildCompanyDataset(companies, names)
	subtitle := fmt.Sprintf("Scope: %s | Generated %s | %d companies", scope, now.Format("2006-01-02 15:04 MST"), len(companies))
	payload, err := s.exporter.Render(format, dataset, "Companies Report", subtitle)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}

	exportID := uuid.NewString()
	fileName := fmt.Sprintf("companies_report_%s.%s", now.Format("2006-01-02"), format)
	result, err := s.exporter.Store(exportID, fileName, payload)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store export")
	}

	s.metrics.RecordExport(format)
	s.logger.Info("company report exported",
		zap.String("export_id", exportID),
		zap.String("scope", string(scope)),
		zap.String("format", string(format)),
		zap.Int("rows", len(companies)),
		zap.String("actor_id", actor.UserID),
	)
	return &dto.ExportResponse{
		ExportID:    exportID,
		FileName:    fileName,
		Format:      string(format),
		RowCount:    len(companies),
		DownloadURL: result.URL,
		ExpiresAt:   result.ExpiresAt,
	}, nil
}

// Download opens the export behind a signed token.
func (s *ReportService) Download(ctx context.Context, token string) (*ExportDownload, error) {
	return s.exporter.Open(token)
}

// StartCleanup boots a goroutine that purges expired exports periodically.
func (s *ReportService) StartCleanup(ctx context.Context) {
	if s.cfg.CleanupInterval <= 0 {
		return
	}
	ticker := time.NewTicker(s.cfg.CleanupInterval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.cleanupExpired()
			}
		}
	}()
}

func (s *ReportService) cleanupExpired() {
	removed, err := s.exporter.Cleanup()
	if err != nil {
		s.logger.Warn("export cleanup failed", zap.Error(err))
		return
	}
	if len(removed) > 0 {
		s.logger.Info("expired exports removed", zap.Int("files", len(removed)))
	}
}

func (s *ReportService) officerNames(ctx context.Context, companies []models.Company) (map[string]string, error) {
	seen := make(map[string]struct{})
	ids := make([]string, 0)
	for _, c := range companies {
		for _, id := range c.AssignedOfficers {
			if _, ok := seen[id]; !ok {
				seen[id] = struct{}{}
				ids = append(ids, id)
			}
		}
	}
	names := make(map[string]string, len(ids))
	if len(ids) == 0 {
		return names, nil
	}
	users, err := s.officers.ListByIDs(ctx, ids)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve officers")
	}
	for _, u := range users {
		names[u.ID] = u.Username
	}
	return names, nil
}

func buildCompanyDataset(companies []models.Company, officerNames map[string]string) export.Dataset {
	rows := make([]map[string]string, 0, len(companies))
	for _, c := range companies {
		rows = append(rows, map[string]string{
			"Company ID":       c.ID,
			"Company Name":     c.CompanyName,
			"Address":          c.CompanyAddress,
			"Drive":            c.Drive,
			"Type of Drive":    string(c.TypeOfDrive),
			"Follow Up":        c.FollowUp,
			"Contacted":        yesNo(c.IsContacted),
			"Remarks":          c.Remarks,
			"Contact Details":  c.ContactDetails,
			"HR1 Details":      c.HR1Details,
			"HR2 Details":      c.HR2Details,
			"Package":          c.Package,
			"Assigned Officer": assignedOfficerLabel(c.AssignedOfficers, officerNames),
			"Created At":       c.CreatedAt.UTC().Format(models.ReportTimestampLayout),
			"Updated At":       c.UpdatedAt.UTC().Format(models.ReportTimestampLayout),
		})
	}
	return export.Dataset{Headers: companyReportHeaders, Rows: rows}
}

// assignedOfficerLabel joins officer usernames, falling back to the raw id for unknown users.
func assignedOfficerLabel(ids []string, names map[string]string) string {
	if len(ids) == 0 {
		return "Unassigned"
	}
	labels := make([]string, 0, len(ids))
	for _, id := range ids {
		if name, ok := names[id]; ok && name != "" {
			labels = append(labels, name)
			continue
		}
		labels = append(labels, id)
	}
	return strings.Join(labels, ", ")
}

func yesNo(v bool) string {
	return map[bool]string{true: "Yes", false: "No"}[v]
}

func parseScope(raw string) (models.ReportScope, error) {
	scope, ok := models.ParseReportScope(raw)
	if !ok {
		return "", appErrors.WithFields(appErrors.ErrValidation, "invalid report scope", map[string]string{
			"scope": "must be one of all, contacted, not-contacted, assigned, unassigned",
		})
	}
	return scope, nil
}

