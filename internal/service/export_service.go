package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/tutor-roster-api/internal/ledger"
	"github.com/noah-isme/tutor-roster-api/internal/models"
	appErrors "github.com/noah-isme/tutor-roster-api/pkg/errors"
	"github.com/noah-isme/tutor-roster-api/pkg/export"
)

// Supported export formats.
const (
	ExportFormatCSV = "csv"
	ExportFormatPDF = "pdf"
)

type rosterSource interface {
	ListAll(ctx context.Context) ([]models.Person, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
	ContentType() string
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
	ContentType() string
}

// ExportFile is a rendered report ready to be sent to the client.
type ExportFile struct {
	Filename    string
	ContentType string
	Data        []byte
}

var paymentRosterHeaders = []string{"Name", "Role", "Join Date", "Status", "First Overdue", "Unpaid Months"}

// ExportService renders roster reports.
type ExportService struct {
	people rosterSource
	clock  ledger.Clock
	csv    csvRenderer
	pdf    pdfRenderer
	logger *zap.Logger
}

// NewExportService constructs an ExportService.
func NewExportService(people rosterSource, clock ledger.Clock, logger *zap.Logger, csv csvRenderer, pdf pdfRenderer) *ExportService {
	if clock == nil {
		clock = ledger.SystemClock{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ExportService{people: people, clock: clock, csv: csv, pdf: pdf, logger: logger}
}

// PaymentRoster renders every person's payment standing as CSV or PDF.
func (s *ExportService) PaymentRoster(ctx context.Context, format string) (*ExportFile, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		format = ExportFormatCSV
	}
	if format != ExportFormatCSV && format != ExportFormatPDF {
		return nil, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")
	}

	people, err := s.people.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load roster")
	}
	dataset := s.paymentDataset(people)
	now := s.clock.Now()
	filename := fmt.Sprintf("payment-roster-%s.%s", ledger.YearMonthOf(now), format)

	var (
		data        []byte
		contentType string
	)
	switch format {
	case ExportFormatPDF:
		title := fmt.Sprintf("Payment roster %s", ledger.NewJoinDate(now))
		data, err = s.pdf.Render(dataset, title)
		contentType = s.pdf.ContentType()
	default:
		data, err = s.csv.Render(dataset)
		contentType = s.csv.ContentType()
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render report")
	}
	s.logger.Info("payment roster exported", zap.String("format", format), zap.Int("rows", len(dataset.Rows)))
	return &ExportFile{Filename: filename, ContentType: contentType, Data: data}, nil
}

func (s *ExportService) paymentDataset(people []models.Person) export.Dataset {
	dataset := export.Dataset{Headers: paymentRosterHeaders, Rows: make([]map[string]string, 0, len(people))}
	for i := range people {
		person := &people[i]
		row := map[string]string{
			"Name":      person.Name,
			"Role":      string(person.Role),
			"Join Date": ledger.NewJoinDate(person.JoinDate).String(),
		}
		payments, err := ledger.PaymentLedgerFromSnapshot(ledger.Snapshot(person.Payments), s.clock)
		if err != nil {
			s.logger.Warn("unreadable payment ledger in export", zap.String("person_id", person.ID), zap.Error(err))
			row["Status"] = "unknown"
			dataset.Rows = append(dataset.Rows, row)
			continue
		}
		row["Status"] = string(payments.OverallStatus())
		if first, ok := payments.FirstOverdueMonth(); ok {
			row["First Overdue"] = first.String()
		}
		row["Unpaid Months"] = strings.Join(monthStrings(payments.UnpaidMonths()), " ")
		dataset.Rows = append(dataset.Rows, row)
	}
	return dataset
}
