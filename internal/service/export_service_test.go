package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/academy-admin-api/internal/models"
	appErrors "github.com/noah-isme/academy-admin-api/pkg/errors"
	"github.com/noah-isme/academy-admin-api/pkg/export"
)

func exportFixture() *ExportService {
	entries := &pricingRepoStub{entries: map[models.PricingKey]models.PricingEntry{}}
	entry := models.PricingEntry{
		ID: "pe-1", FacilityID: "fac-1", CourseID: "course-swim",
		AgeGroup: "kids", LocationType: models.LocationOurFacility, SessionType: "private",
		Price: 250000, Active: true,
	}
	entries.entries[entry.Key()] = entry
	pricing := newPricingService(entries, nil)
	return NewExportService(pricing, export.NewCSVExporter(), export.NewPDFExporter(), nil)
}

func TestExportPricingMatrixCSV(t *testing.T) {
	service := exportFixture()

	doc, err := service.PricingMatrix(context.Background(), "fac-1", "prog-a", "csv")
	require.NoError(t, err)
	assert.Equal(t, "text/csv", doc.ContentType)
	assert.True(t, strings.HasPrefix(doc.FileName, "pricing-fac-1-"))

	body := string(doc.Content)
	assert.Contains(t, body, "Course,Age Group,Location Type,Session Type,Price")
	assert.Contains(t, body, "course-swim,kids,our-facility,private,Rp250.000")
}

func TestExportPricingMatrixPDF(t *testing.T) {
	service := exportFixture()

	doc, err := service.PricingMatrix(context.Background(), "fac-1", "prog-a", "pdf")
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", doc.ContentType)
	assert.NotEmpty(t, doc.Content)
}

func TestExportPricingMatrixUnknownFormat(t *testing.T) {
	service := exportFixture()

	_, err := service.PricingMatrix(context.Background(), "fac-1", "prog-a", "xlsx")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}
