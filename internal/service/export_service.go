package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	appErrors "github.com/noah-isme/academy-admin-api/pkg/errors"
	"github.com/noah-isme/academy-admin-api/pkg/export"
)

// ExportService renders pricing matrices into downloadable documents.
type ExportService struct {
	pricing *PricingService
	csv     *export.CSVExporter
	pdf     *export.PDFExporter
	logger  *zap.Logger
}

// NewExportService constructs the service.
func NewExportService(pricing *PricingService, csv *export.CSVExporter, pdf *export.PDFExporter, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{pricing: pricing, csv: csv, pdf: pdf, logger: logger}
}

// ExportDocument is a rendered download.
type ExportDocument struct {
	FileName    string
	ContentType string
	Content     []byte
}

// PricingMatrix renders the facility's pricing matrix in the requested
// format (csv or pdf).
func (s *ExportService) PricingMatrix(ctx context.Context, facilityID, programID, format string) (*ExportDocument, error) {
	matrix, err := s.pricing.GetMatrix(ctx, facilityID, programID)
	if err != nil {
		return nil, err
	}

	dataset := export.Dataset{
		Headers: []string{"Course", "Age Group", "Location Type", "Session Type", "Price"},
	}
	courseIDs := make([]string, 0, len(matrix.Courses))
	for courseID := range matrix.Courses {
		courseIDs = append(courseIDs, courseID)
	}
	sort.Strings(courseIDs)
	for _, courseID := range courseIDs {
		for _, entry := range matrix.Courses[courseID] {
			dataset.Rows = append(dataset.Rows, map[string]string{
				"Course":        courseID,
				"Age Group":     entry.AgeGroup,
				"Location Type": string(entry.LocationType),
				"Session Type":  entry.SessionType,
				"Price":         entry.FormattedPrice,
			})
		}
	}

	stamp := time.Now().UTC().Format("20060102")
	switch format {
	case "csv":
		content, err := s.csv.Render(dataset)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
		}
		return &ExportDocument{
			FileName:    fmt.Sprintf("pricing-%s-%s.csv", facilityID, stamp),
			ContentType: "text/csv",
			Content:     content,
		}, nil
	case "pdf":
		content, err := s.pdf.Render(dataset, fmt.Sprintf("Pricing Matrix %s", facilityID))
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf")
		}
		return &ExportDocument{
			FileName:    fmt.Sprintf("pricing-%s-%s.pdf", facilityID, stamp),
			ContentType: "application/pdf",
			Content:     content,
		}, nil
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")
	}
}
