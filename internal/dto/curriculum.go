package dto

// CreateLevelRequest adds a level to a course.
type CreateLevelRequest struct {
	CourseID string `json:"course_id" validate:"required"`
	Name     string `json:"name" validate:"required,min=2"`
	Sequence int    `json:"sequence" validate:"min=1"`
}

// CreateModuleRequest adds a module to a level.
type CreateModuleRequest struct {
	LevelID  string `json:"level_id" validate:"required"`
	Name     string `json:"name" validate:"required,min=2"`
	Sequence int    `json:"sequence" validate:"min=1"`
}
