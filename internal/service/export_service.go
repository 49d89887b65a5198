package service

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/akotolabs/waflow/internal/models"
	appErrors "github.com/akotolabs/waflow/pkg/errors"
	"github.com/akotolabs/waflow/pkg/export"
)

// ExportFormat selects the rendered file type.
type ExportFormat string

const (
	FormatCSV ExportFormat = "csv"
	FormatPDF ExportFormat = "pdf"
)

type exportBookingLister interface {
	List(ctx context.Context, filter models.BookingFilter) ([]models.Booking, error)
}

type exportMessageLister interface {
	List(ctx context.Context, filter models.MessageLogFilter) ([]models.MessageLog, error)
}

type exportStorage interface {
	Save(filename string, data []byte) (string, error)
	Open(filename string) (*os.File, error)
	CleanupOlderThan(ttl time.Duration) ([]string, error)
}

type downloadSigner interface {
	Generate(jobID, relPath string) (string, time.Time, error)
	Parse(token string, allowExpired bool) (jobID, relPath string, expiresAt time.Time, err error)
}

// ExportResult points at a rendered export file via a signed download token.
type ExportResult struct {
	Token     string    `json:"token"`
	Filename  string    `json:"filename"`
	ExpiresAt time.Time `json:"expires_at"`
}

// ExportService renders bookings and message logs to CSV or PDF files and
// hands out signed, expiring download tokens.
type ExportService struct {
	bookings  exportBookingLister
	messages  exportMessageLister
	storage   exportStorage
	signer    downloadSigner
	csv       *export.CSVExporter
	pdf       *export.PDFExporter
	retainFor time.Duration
	logger    *zap.Logger
}

// NewExportService builds an ExportService.
func NewExportService(bookings exportBookingLister, messages exportMessageLister, storage exportStorage, signer downloadSigner, retainFor time.Duration, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if retainFor <= 0 {
		retainFor = 24 * time.Hour
	}
	return &ExportService{
		bookings:  bookings,
		messages:  messages,
		storage:   storage,
		signer:    signer,
		csv:       export.NewCSVExporter(),
		pdf:       export.NewPDFExporter(),
		retainFor: retainFor,
		logger:    logger,
	}
}

// ExportBookings renders a tenant's bookings in the requested format.
func (s *ExportService) ExportBookings(ctx context.Context, filter models.BookingFilter, format ExportFormat) (*ExportResult, error) {
	if filter.TenantID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "tenant_id is required")
	}
	bookings, err := s.bookings.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load bookings for export")
	}
	return s.render(bookingsDataset(bookings), "bookings", format)
}

// ExportMessageLogs renders a tenant's conversation audit log.
func (s *ExportService) ExportMessageLogs(ctx context.Context, filter models.MessageLogFilter, format ExportFormat) (*ExportResult, error) {
	if filter.TenantID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "tenant_id is required")
	}
	logs, err := s.messages.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load message logs for export")
	}
	return s.render(messagesDataset(logs), "message-logs", format)
}

// Open resolves a signed token into a readable file handle.
func (s *ExportService) Open(token string) (*os.File, string, error) {
	_, relPath, _, err := s.signer.Parse(token, false)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid or expired download token")
	}
	file, err := s.storage.Open(relPath)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrNotFound.Code, appErrors.ErrNotFound.Status, "export file not found")
	}
	return file, relPath, nil
}

// Cleanup removes exports older than the retention window. Wired to cron.
func (s *ExportService) Cleanup() {
	deleted, err := s.storage.CleanupOlderThan(s.retainFor)
	if err != nil {
		s.logger.Error("export cleanup failed", zap.Error(err))
		return
	}
	if len(deleted) > 0 {
		s.logger.Info("cleaned up expired exports", zap.Int("count", len(deleted)))
	}
}

func (s *ExportService) render(data export.Dataset, kind string, format ExportFormat) (*ExportResult, error) {
	var (
		payload []byte
		err     error
	)
	switch format {
	case FormatCSV:
		payload, err = s.csv.Render(data)
	case FormatPDF:
		payload, err = s.pdf.Render(data, kind)
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}

	jobID := uuid.NewString()
	filename := fmt.Sprintf("%s/%s-%s.%s", time.Now().UTC().Format("2006-01-02"), kind, jobID, format)
	if _, err := s.storage.Save(filename, payload); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store export")
	}

	token, expiresAt, err := s.signer.Generate(jobID, filename)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign download token")
	}
	return &ExportResult{Token: token, Filename: filename, ExpiresAt: expiresAt}, nil
}

func bookingsDataset(bookings []models.Booking) export.Dataset {
	headers := []string{"ID", "User Phone", "User Name", "Start", "End", "Status", "Payment", "Paystack Ref", "Created At"}
	rows := make([]map[string]string, 0, len(bookings))
	for _, b := range bookings {
		name := ""
		if b.UserName != nil {
			name = *b.UserName
		}
		ref := ""
		if b.PaystackRef != nil {
			ref = *b.PaystackRef
		}
		rows = append(rows, map[string]string{
			"ID":           b.ID,
			"User Phone":   b.UserPhone,
			"User Name":    name,
			"Start":        b.StartTime.Format(time.RFC3339),
			"End":          b.EndTime.Format(time.RFC3339),
			"Status":       string(b.Status),
			"Payment":      string(b.PaymentStatus),
			"Paystack Ref": ref,
			"Created At":   b.CreatedAt.Format(time.RFC3339),
		})
	}
	return export.Dataset{Headers: headers, Rows: rows}
}

func messagesDataset(logs []models.MessageLog) export.Dataset {
	headers := []string{"ID", "User Phone", "Direction", "Body", "Intent", "Confidence", "Tool", "Created At"}
	rows := make([]map[string]string, 0, len(logs))
	for _, l := range logs {
		intent, tool, confidence := "", "", ""
		if l.Intent != nil {
			intent = *l.Intent
		}
		if l.ToolCalled != nil {
			tool = *l.ToolCalled
		}
		if l.Confidence != nil {
			confidence = strconv.FormatFloat(*l.Confidence, 'f', 2, 64)
		}
		rows = append(rows, map[string]string{
			"ID":         l.ID,
			"User Phone": l.UserPhone,
			"Direction":  string(l.Direction),
			"Body":       l.Body,
			"Intent":     intent,
			"Confidence": confidence,
			"Tool":       tool,
			"Created At": l.CreatedAt.Format(time.RFC3339),
		})
	}
	return export.Dataset{Headers: headers, Rows: rows}
}
