package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/tutor-roster-api/internal/models"
	appErrors "github.com/noah-isme/tutor-roster-api/pkg/errors"
	"github.com/noah-isme/tutor-roster-api/pkg/export"
)

type rosterStub struct {
	people []models.Person
	err    error
}

func (r rosterStub) ListAll(ctx context.Context) ([]models.Person, error) {
	return r.people, r.err
}

func TestExportServicePaymentRosterCSV(t *testing.T) {
	people := []models.Person{
		withPaidMonths(studentFixture("s1", "2024-05-01"), "2024-05", "2024-07"),
		withPaidMonths(tutorFixture("t1", "2024-07-01"), "2024-07"),
	}
	svc := NewExportService(rosterStub{people: people}, fixtureClock(), zap.NewNop(), export.NewCSVExporter(), export.NewPDFExporter())

	file, err := svc.PaymentRoster(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, "payment-roster-2024-07.csv", file.Filename)
	assert.Equal(t, "text/csv", file.ContentType)

	lines := strings.Split(strings.TrimSpace(string(file.Data)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Name,Role,Join Date,Status,First Overdue,Unpaid Months", lines[0])
	assert.Equal(t, "Student s1,student,2024-05-01,overdue,2024-06,2024-06", lines[1])
	assert.Equal(t, "Tutor t1,tutor,2024-07-01,paid,,", lines[2])
}

func TestExportServicePaymentRosterPDF(t *testing.T) {
	svc := NewExportService(rosterStub{people: []models.Person{studentFixture("s1", "2024-03-01")}}, fixtureClock(), nil, nil, nil)

	file, err := svc.PaymentRoster(context.Background(), "PDF")
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", file.ContentType)
	assert.Equal(t, "payment-roster-2024-07.pdf", file.Filename)
	assert.True(t, strings.HasPrefix(string(file.Data), "%PDF"))
}

func TestExportServiceErrors(t *testing.T) {
	svc := NewExportService(rosterStub{err: errors.New("db down")}, fixtureClock(), nil, nil, nil)

	_, err := svc.PaymentRoster(context.Background(), "xlsx")
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))

	_, err = svc.PaymentRoster(context.Background(), "csv")
	assert.True(t, appErrors.Is(err, appErrors.ErrInternal))
}
