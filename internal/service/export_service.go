package service

import (
	"fmt"
	"time"

	"github.com/timetable-ace/scheduler-api/internal/models"
	appErrors "github.com/timetable-ace/scheduler-api/pkg/errors"
	"github.com/timetable-ace/scheduler-api/pkg/export"
)

// ExportFile is a rendered timetable document ready for download.
type ExportFile struct {
	FileName    string
	ContentType string
	Content     []byte
}

// ExportService renders committed timetables as downloadable documents.
type ExportService struct {
	pdf *export.PDFExporter
	csv *export.CSVExporter
}

// NewExportService constructs the exporter.
func NewExportService() *ExportService {
	return &ExportService{
		pdf: export.NewPDFExporter(),
		csv: export.NewCSVExporter(),
	}
}

// Render produces the timetable in the requested format, "pdf" or "csv".
func (s *ExportService) Render(format string, timetable []models.TimetableEntry) (*ExportFile, error) {
	rows := make([]export.TimetableRow, 0, len(timetable))
	for _, entry := range timetable {
		rows = append(rows, export.TimetableRow{
			Day:     entry.Day,
			Time:    entry.Time,
			Course:  entry.Course,
			Code:    entry.CourseCode,
			Faculty: entry.Faculty,
			Room:    entry.Room,
		})
	}
	data := export.TimetableDataset(rows)
	stamp := time.Now().UTC().Format("20060102")

	switch format {
	case "pdf":
		content, err := s.pdf.Render(data, "Weekly Timetable")
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf")
		}
		return &ExportFile{
			FileName:    fmt.Sprintf("timetable-%s.pdf", stamp),
			ContentType: "application/pdf",
			Content:     content,
		}, nil
	case "csv":
		content, err := s.csv.Render(data)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
		}
		return &ExportFile{
			FileName:    fmt.Sprintf("timetable-%s.csv", stamp),
			ContentType: "text/csv",
			Content:     content,
		}, nil
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
	}
}
