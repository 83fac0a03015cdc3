package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/noah-isme/academy-admin-api/internal/dto"
	appErrors "github.com/noah-isme/academy-admin-api/pkg/errors"
)

// BulkItemFunc mutates one item of a batch, identified by id.
type BulkItemFunc func(ctx context.Context, id string) error

// BulkService runs heterogeneous per-item mutations with failure isolation:
// one item's failure never aborts the rest, and the result accounts for
// every input item exactly once.
type BulkService struct {
	metrics      *MetricsService
	logger       *zap.Logger
	maxBatchSize int
}

// NewBulkService constructs the executor.
func NewBulkService(metrics *MetricsService, logger *zap.Logger, maxBatchSize int) *BulkService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if maxBatchSize <= 0 {
		maxBatchSize = 100
	}
	return &BulkService{metrics: metrics, logger: logger, maxBatchSize: maxBatchSize}
}

// Run invokes fn for every id in input order. Domain failures (4xx) are
// recorded as recoverable per-item failures; anything else is recorded the
// same way but flagged unexpected so callers can alert on it. Neither kind
// aborts the batch.
func (s *BulkService) Run(ctx context.Context, operation string, ids []string, fn BulkItemFunc) (*dto.BulkResult, error) {
	if len(ids) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "bulk batch must contain at least one item")
	}
	if len(ids) > s.maxBatchSize {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("bulk batch exceeds the maximum of %d items", s.maxBatchSize))
	}

	result := &dto.BulkResult{
		Successful:     make([]string, 0, len(ids)),
		Failed:         make([]dto.BulkFailure, 0),
		TotalProcessed: len(ids),
	}

	for _, id := range ids {
		if err := s.runOne(ctx, id, fn); err != nil {
			unexpected := !appErrors.IsRecoverable(err)
			if unexpected {
				s.logger.Error("bulk item failed unexpectedly",
					zap.String("operation", operation),
					zap.String("id", id),
					zap.Error(err))
			}
			result.Failed = append(result.Failed, dto.BulkFailure{
				ID:         id,
				Error:      appErrors.FromError(err).Message,
				Unexpected: unexpected,
			})
			s.metrics.RecordBulkItem(operation, false)
			continue
		}
		result.Successful = append(result.Successful, id)
		s.metrics.RecordBulkItem(operation, true)
	}

	result.TotalSuccessful = len(result.Successful)
	result.TotalFailed = len(result.Failed)
	return result, nil
}

// runOne shields the batch from panics in the item function so a single
// bad item cannot take down the whole request.
func (s *BulkService) runOne(ctx context.Context, id string, fn BulkItemFunc) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = appErrors.Wrap(fmt.Errorf("panic: %v", r), appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "item processing panicked")
		}
	}()
	return fn(ctx, id)
}

// ValidateReorderBatch checks a reorder batch for internal consistency
// before any write happens. Duplicate ids or duplicate target sequence
// numbers reject the whole batch; reorders are all-or-nothing because a
// partially applied reorder leaves duplicate or gapped sequences.
func (s *BulkService) ValidateReorderBatch(items []dto.ReorderItem) error {
	if len(items) == 0 {
		return appErrors.Clone(appErrors.ErrValidation, "reorder batch must contain at least one item")
	}
	if len(items) > s.maxBatchSize {
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("reorder batch exceeds the maximum of %d items", s.maxBatchSize))
	}

	seenIDs := make(map[string]struct{}, len(items))
	seenSequences := make(map[int]struct{}, len(items))
	for _, item := range items {
		if item.ID == "" {
			return appErrors.Clone(appErrors.ErrValidation, "reorder item is missing an id")
		}
		if item.Sequence < 1 {
			return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("item %s requests an invalid sequence %d", item.ID, item.Sequence))
		}
		if _, dup := seenIDs[item.ID]; dup {
			return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("item %s appears more than once in the batch", item.ID))
		}
		if _, dup := seenSequences[item.Sequence]; dup {
			return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("sequence %d is requested by more than one item", item.Sequence))
		}
		seenIDs[item.ID] = struct{}{}
		seenSequences[item.Sequence] = struct{}{}
	}
	return nil
}
