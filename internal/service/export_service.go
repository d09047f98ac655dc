package service

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/sooryaakilesh10/place-pro-platform-88/internal/models"
	appErrors "github.com/sooryaakilesh10/place-pro-platform-88/pkg/errors"
	"github.com/sooryaakilesh10/place-pro-platform-88/pkg/export"
	"github.com/sooryaakilesh10/place-pro-platform-88/pkg/storage"
)

type fileStorage interface {
	Save(name string, data []byte) (string, error)
	Open(name string) (*os.File, int64, error)
	Delete(name string) error
	CleanupOlderThan(now time.Time, ttl time.Duration) ([]string, error)
}

type tableRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title, subtitle string) ([]byte, error)
}

// ExportConfig tunes export behaviour.
type ExportConfig struct {
	APIPrefix string
	ResultTTL time.Duration
	Sheet     string
}

// ExportResult captures successful generation metadata.
type ExportResult struct {
	RelativePath string
	Token        string
	URL          string
	ExpiresAt    time.Time
}

// ExportDownload is an opened export ready to be streamed. Callers close File.
type ExportDownload struct {
	File        *os.File
	Size        int64
	FileName    string
	ContentType string
}

// ExportService renders datasets, persists the files and issues signed download links.
type ExportService struct {
	storage fileStorage
	csv     tableRenderer
	xlsx    tableRenderer
	pdf     pdfRenderer
	signer  *storage.SignedURLSigner
	logger  *zap.Logger
	cfg     ExportConfig
	now     func() time.Time
}

// NewExportService constructs an ExportService.
func NewExportService(files fileStorage, signer *storage.SignedURLSigner, cfg ExportConfig, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = signer.TTL()
	}
	if cfg.Sheet == "" {
		cfg.Sheet = "Companies"
	}
	return &ExportService{
		storage: files,
		csv:     export.NewCSVExporter(),
		xlsx:    export.NewXLSXExporter(cfg.Sheet),
		pdf:     export.NewPDFExporter(),
		signer:  signer,
		logger:  logger,
		cfg:     cfg,
		now:     time.Now,
	}
}

// Render encodes the dataset in the requested format.
func (s *ExportService) Render(format models.ReportFormat, data export.Dataset, title, subtitle string) ([]byte, error) {
	switch format {
	case models.ReportFormatXLSX:
		return s.xlsx.Render(data)
	case models.ReportFormatCSV:
		return s.csv.Render(data)
	case models.ReportFormatPDF:
		return s.pdf.Render(data, title, subtitle)
	default:
		return nil, fmt.Errorf("unsupported format %s", format)
	}
}

// Store saves payload under the export id and signs a download link for it.
func (s *ExportService) Store(exportID, fileName string, payload []byte) (*ExportResult, error) {
	relPath, err := s.storage.Save(path.Join(exportID, sanitizeFilename(fileName)), payload)
	if err != nil {
		return nil, err
	}
	token, meta, err := s.signer.Sign(exportID, relPath, s.now())
	if err != nil {
		_ = s.storage.Delete(relPath)
		return nil, err
	}
	prefix := strings.TrimRight(s.cfg.APIPrefix, "/")
	if prefix == "" {
		prefix = "/api/v1"
	}
	return &ExportResult{
		RelativePath: relPath,
		Token:        token,
		URL:          fmt.Sprintf("%s/export/%s", prefix, token),
		ExpiresAt:    meta.ExpiresAt,
	}, nil
}

// Open verifies the signed token and opens the referenced file.
func (s *ExportService) Open(token string) (*ExportDownload, error) {
	meta, err := s.signer.Verify(token, s.now(), false)
	if err != nil {
		if errors.Is(err, storage.ErrTokenExpired) {
			return nil, appErrors.Clone(appErrors.ErrLinkExpired, "")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrForbidden.Code, appErrors.ErrForbidden.Status, "invalid download link")
	}
	file, size, err := s.storage.Open(meta.Path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "export file no longer exists")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open export file")
	}
	fileName := path.Base(meta.Path)
	return &ExportDownload{
		File:        file,
		Size:        size,
		FileName:    fileName,
		ContentType: formatFromFileName(fileName).ContentType(),
	}, nil
}

// Cleanup removes files older than the configured result TTL.
func (s *ExportService) Cleanup() ([]string, error) {
	return s.storage.CleanupOlderThan(s.now(), s.cfg.ResultTTL)
}

func formatFromFileName(name string) models.ReportFormat {
	format, ok := models.ParseReportFormat(strings.TrimPrefix(path.Ext(name), "."))
	if !ok {
		return models.ReportFormatXLSX
	}
	return format
}

func sanitizeFilename(raw string) string {
	if raw == "" {
		return "export"
	}
	replacer := strings.NewReplacer(" ", "_", "/", "-", "\\", "-", ":", "-", "..", ".")
	result := replacer.Replace(raw)
	if len(result) > 100 {
		return result[:100]
	}
	return result
}
