package procurement

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"partsdesk/internal/logging"
	"partsdesk/internal/metrics"
)

// Store persists one validated batch atomically.
type Store interface {
	InsertQuoteBatch(batchID, source string, items []LineItem) error
}

type Service struct {
	store   Store
	logger  logging.Logger
	metrics *metrics.Metrics
}

func NewService(store Store, logger logging.Logger, m *metrics.Metrics) *Service {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Service{store: store, logger: logger, metrics: m}
}

type SubmitResult struct {
	BatchID string
	Items   []LineItem
}

// Submit validates the batch and stores it. Nothing is written unless every item is valid.
func (s *Service) Submit(source string, data []byte) (SubmitResult, error) {
	items, err := Validate(data)
	if err != nil {
		var batchErr *BatchError
		if errors.As(err, &batchErr) {
			s.metrics.ObserveProcurement("rejected")
			s.logger.Warn("procurement batch rejected", "source", source, "issues", len(batchErr.Issues))
		}
		return SubmitResult{}, err
	}

	batchID := uuid.NewString()
	if err := s.store.InsertQuoteBatch(batchID, source, items); err != nil {
		s.metrics.ObserveProcurement("store_failed")
		s.metrics.ObserveError("procurement_store")
		return SubmitResult{}, fmt.Errorf("store procurement batch: %w", err)
	}

	s.metrics.ObserveProcurement("accepted")
	s.logger.Info("procurement batch stored", "source", source, "batchId", batchID, "items", len(items))
	return SubmitResult{BatchID: batchID, Items: items}, nil
}
