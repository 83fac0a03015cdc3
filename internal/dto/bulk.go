package dto

import "github.com/noah-isme/academy-admin-api/internal/models"

// BulkFailure records one failed item of a bulk batch. Unexpected marks
// failures that were not domain validation errors so callers can alert on
// them separately.
type BulkFailure struct {
	ID         string `json:"id"`
	Error      string `json:"error"`
	Unexpected bool   `json:"unexpected,omitempty"`
}

// BulkResult is the aggregate accounting of a bulk batch. Successful and
// Failed preserve input order; TotalSuccessful+TotalFailed always equals
// TotalProcessed.
type BulkResult struct {
	Successful      []string      `json:"successful"`
	Failed          []BulkFailure `json:"failed"`
	TotalProcessed  int           `json:"total_processed"`
	TotalSuccessful int           `json:"total_successful"`
	TotalFailed     int           `json:"total_failed"`
}

// ReorderItem assigns a new sequence number to one entity.
type ReorderItem struct {
	ID       string `json:"id" validate:"required"`
	Sequence int    `json:"sequence" validate:"min=1"`
}

// ReorderRequest reassigns sequence numbers for siblings under one parent.
// The batch is validated as a whole and applied atomically.
type ReorderRequest struct {
	Items []ReorderItem `json:"items" validate:"required,min=1,dive"`
}

// BulkStatusRequest changes the status of many modules with per-item
// failure isolation.
type BulkStatusRequest struct {
	IDs    []string            `json:"ids" validate:"required,min=1"`
	Status models.ModuleStatus `json:"status" validate:"required"`
}
