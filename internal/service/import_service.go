package service

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/absensi-dev/absensi-api/internal/models"
	appErrors "github.com/absensi-dev/absensi-api/pkg/errors"
)

type studentUpserter interface {
	Upsert(ctx context.Context, number, name string) (*models.Student, bool, error)
}

// ImportService loads a student roster from an xlsx spreadsheet. Rows are
// committed one at a time; a failure mid-file leaves earlier rows in place.
type ImportService struct {
	students studentUpserter
	maxRows  int
	logger   *zap.Logger
}

// NewImportService constructs an ImportService.
func NewImportService(students studentUpserter, maxRows int, logger *zap.Logger) *ImportService {
	if maxRows <= 0 {
		maxRows = 2000
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ImportService{students: students, maxRows: maxRows, logger: logger}
}

// ImportResult summarises a roster import.
type ImportResult struct {
	Created int `json:"created"`
	Updated int `json:"updated"`
	Skipped int `json:"skipped"`
}

// ImportStudents reads (number, name) pairs from the first sheet and
// upserts each as a student. Only .xlsx files are accepted. A header row is
// tolerated: the first row is skipped when its first cell is not a numeric
// student number. Blank rows are skipped.
func (s *ImportService) ImportStudents(ctx context.Context, filename string, r io.Reader) (*ImportResult, error) {
	if !strings.EqualFold(filepath.Ext(filename), ".xlsx") {
		return nil, appErrors.Clone(appErrors.ErrBadFormat, "only .xlsx files are accepted")
	}

	wb, err := excelize.OpenReader(r)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrBadFormat.Code, appErrors.ErrBadFormat.Status, "could not read spreadsheet")
	}
	defer wb.Close()

	sheets := wb.GetSheetList()
	if len(sheets) == 0 {
		return nil, appErrors.Clone(appErrors.ErrBadFormat, "spreadsheet has no sheets")
	}

	rows, err := wb.GetRows(sheets[0])
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrBadFormat.Code, appErrors.ErrBadFormat.Status, "could not read rows")
	}
	if len(rows) > s.maxRows {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("too many rows, limit is %d", s.maxRows))
	}

	result := &ImportResult{}
	for i, row := range rows {
		number, name := cell(row, 0), cell(row, 1)
		if number == "" || name == "" || (i == 0 && !numeric(number)) {
			result.Skipped++
			continue
		}

		_, created, err := s.students.Upsert(ctx, number, name)
		if err != nil {
			// Earlier rows are already committed; surface the failure
			// with the partial counts attached.
			return result, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "student upsert failed")
		}
		if created {
			result.Created++
		} else {
			result.Updated++
		}
	}

	s.logger.Info("roster imported",
		zap.Int("created", result.Created),
		zap.Int("updated", result.Updated),
		zap.Int("skipped", result.Skipped))
	return result, nil
}

func cell(row []string, i int) string {
	if i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func numeric(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}
