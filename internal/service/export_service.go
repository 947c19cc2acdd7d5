package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/absensi-dev/absensi-api/internal/models"
	appErrors "github.com/absensi-dev/absensi-api/pkg/errors"
	"github.com/absensi-dev/absensi-api/pkg/export"
)

type attendanceReporter interface {
	ReportRows(ctx context.Context) ([]models.AttendanceReportRow, error)
}

// ExportService renders the attendance report as CSV or PDF.
type ExportService struct {
	attendances attendanceReporter
	csv         *export.CSVExporter
	pdf         *export.PDFExporter
	logger      *zap.Logger
}

// NewExportService constructs an ExportService.
func NewExportService(attendances attendanceReporter, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		attendances: attendances,
		csv:         export.NewCSVExporter(),
		pdf:         export.NewPDFExporter(),
		logger:      logger,
	}
}

// ExportFile is a rendered report ready to be served.
type ExportFile struct {
	Content     []byte
	ContentType string
	Filename    string
}

var reportHeaders = []string{"Meeting", "Started", "Ended", "Student Number", "Student Name", "Device MAC", "Recorded At"}

// AttendanceReport renders every attendance row in the requested format,
// "csv" or "pdf".
func (s *ExportService) AttendanceReport(ctx context.Context, format string) (*ExportFile, error) {
	rows, err := s.attendances.ReportRows(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "attendance report query failed")
	}

	data := export.Dataset{Headers: reportHeaders, Rows: make([][]string, 0, len(rows))}
	for _, row := range rows {
		ended := ""
		if row.MeetingEndedAt != nil {
			ended = row.MeetingEndedAt.Format(time.RFC3339)
		}
		data.Rows = append(data.Rows, []string{
			row.MeetingID,
			row.MeetingStartedAt.Format(time.RFC3339),
			ended,
			row.StudentNumber,
			row.StudentName,
			row.DeviceMAC,
			row.RecordedAt.Format(time.RFC3339),
		})
	}

	stamp := time.Now().UTC().Format("20060102")
	switch format {
	case "csv", "":
		content, err := s.csv.Render(data)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "csv render failed")
		}
		return &ExportFile{Content: content, ContentType: "text/csv", Filename: "attendance-" + stamp + ".csv"}, nil
	case "pdf":
		content, err := s.pdf.Render(data, "Attendance report")
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "pdf render failed")
		}
		return &ExportFile{Content: content, ContentType: "application/pdf", Filename: "attendance-" + stamp + ".pdf"}, nil
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")
	}
}
