package dto

import "github.com/noah-isme/academy-admin-api/internal/models"

// CreateFacilityRequest registers a new facility.
type CreateFacilityRequest struct {
	Name    string `json:"name" validate:"required,min=2"`
	Address string `json:"address,omitempty"`
	City    string `json:"city,omitempty"`
}

// CreateCourseRequest creates a course under the current program with its
// classification axes. Axis sets are closed at creation time; pricing and
// enrollment validate against them.
type CreateCourseRequest struct {
	Name          string                  `json:"name" validate:"required,min=2"`
	Description   string                  `json:"description,omitempty"`
	AgeGroups     models.AgeGroupList     `json:"age_groups" validate:"required,min=1"`
	SessionTypes  models.SessionTypeList  `json:"session_types" validate:"required,min=1"`
	LocationTypes models.LocationTypeList `json:"location_types" validate:"required,min=1"`
	BasePriceMin  int64                   `json:"base_price_min" validate:"min=0"`
	BasePriceMax  int64                   `json:"base_price_max" validate:"min=0"`
}

// UpdateCourseRequest changes mutable fields of a course.
type UpdateCourseRequest struct {
	Name          *string                  `json:"name,omitempty" validate:"omitempty,min=2"`
	Description   *string                  `json:"description,omitempty"`
	AgeGroups     *models.AgeGroupList     `json:"age_groups,omitempty" validate:"omitempty,min=1"`
	SessionTypes  *models.SessionTypeList  `json:"session_types,omitempty" validate:"omitempty,min=1"`
	LocationTypes *models.LocationTypeList `json:"location_types,omitempty" validate:"omitempty,min=1"`
	BasePriceMin  *int64                   `json:"base_price_min,omitempty" validate:"omitempty,min=0"`
	BasePriceMax  *int64                   `json:"base_price_max,omitempty" validate:"omitempty,min=0"`
	Active        *bool                    `json:"active,omitempty"`
}
