package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/absensi-dev/absensi-api/internal/models"
	appErrors "github.com/absensi-dev/absensi-api/pkg/errors"
)

type fakeReporter struct {
	rows []models.AttendanceReportRow
}

func (f *fakeReporter) ReportRows(ctx context.Context) ([]models.AttendanceReportRow, error) {
	return f.rows, nil
}

func reportFixture() *fakeReporter {
	started := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	recorded := started.Add(5 * time.Minute)
	return &fakeReporter{rows: []models.AttendanceReportRow{
		{
			MeetingID:        "meet-1",
			MeetingStartedAt: started,
			StudentNumber:    "123",
			StudentName:      "Siti",
			DeviceMAC:        "aa:bb:cc:dd:ee:ff",
			RecordedAt:       recorded,
		},
	}}
}

func TestExportAttendanceCSV(t *testing.T) {
	svc := NewExportService(reportFixture(), nil)

	file, err := svc.AttendanceReport(context.Background(), "csv")
	require.NoError(t, err)
	assert.Equal(t, "text/csv", file.ContentType)
	assert.True(t, strings.HasSuffix(file.Filename, ".csv"))

	body := string(file.Content)
	assert.Contains(t, body, "Student Number")
	assert.Contains(t, body, "123")
	assert.Contains(t, body, "aa:bb:cc:dd:ee:ff")
}

func TestExportAttendanceDefaultsToCSV(t *testing.T) {
	svc := NewExportService(reportFixture(), nil)

	file, err := svc.AttendanceReport(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, "text/csv", file.ContentType)
}

func TestExportAttendancePDF(t *testing.T) {
	svc := NewExportService(reportFixture(), nil)

	file, err := svc.AttendanceReport(context.Background(), "pdf")
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", file.ContentType)
	assert.True(t, strings.HasSuffix(file.Filename, ".pdf"))
	assert.NotEmpty(t, file.Content)
}

func TestExportAttendanceBadFormat(t *testing.T) {
	svc := NewExportService(reportFixture(), nil)

	_, err := svc.AttendanceReport(context.Background(), "xml")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}
