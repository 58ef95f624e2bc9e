package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"fintrack/internal/amqp"
	"fintrack/internal/log"
	"fintrack/internal/report"
)

// ErrExportUnavailable is returned when no message broker is configured.
var ErrExportUnavailable = errors.New("sheets export unavailable")

// Publisher hands export requests to the broker.
type Publisher interface {
	PublishExportRequest(ctx context.Context, msg *amqp.ExportRequestMessage) error
	Close() error
}

// ExportService validates export requests synchronously and defers the
// aggregation and spreadsheet write to the export worker.
type ExportService struct {
	agg       *report.Aggregator
	publisher Publisher
	newID     func() string
}

// NewExportService creates the service. A nil publisher disables exports.
func NewExportService(agg *report.Aggregator, publisher Publisher) *ExportService {
	return &ExportService{
		agg:       agg,
		publisher: publisher,
		newID:     uuid.NewString,
	}
}

// Enabled reports whether exports can be enqueued.
func (s *ExportService) Enabled() bool {
	return s.publisher != nil
}

// RequestSheetsExport validates req, resolves its range to exact instants
// and enqueues it. It returns the request id.
func (s *ExportService) RequestSheetsExport(ctx context.Context, req report.Request) (string, error) {
	resolved, err := s.agg.Resolve(ctx, req)
	if err != nil {
		return "", err
	}
	if s.publisher == nil {
		return "", ErrExportUnavailable
	}

	msg := amqp.NewExportRequestMessage(
		s.newID(),
		resolved.OwnerID,
		resolved.Start.Time,
		resolved.End.Time,
		string(resolved.Type),
		resolved.CategoryID,
	)
	if err := s.publisher.PublishExportRequest(ctx, msg); err != nil {
		return "", fmt.Errorf("%w: %w", ErrExportUnavailable, err)
	}

	slog.InfoContext(ctx, "Sheets export enqueued",
		log.FieldComponent, log.ComponentReport,
		log.FieldRequestID, msg.RequestID,
		log.FieldOwnerID, msg.OwnerID,
		log.FieldReportType, msg.ReportType)
	return msg.RequestID, nil
}

// Close closes the publisher.
func (s *ExportService) Close() error {
	if s.publisher == nil {
		return nil
	}
	return s.publisher.Close()
}
