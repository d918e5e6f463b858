package connectors

import (
	"context"
	"errors"
	"fmt"

	"partsdesk/internal/logging"
	"partsdesk/internal/storage"
)

type FetchService struct {
	connector MailConnector
	store     *MailStoreService
	logger    logging.Logger
}

// FetchResult counts one fetch. Stored is new emails only; Skipped is messages that were
// empty or over the size limit.
type FetchResult struct {
	Fetched int
	Stored  int
	Skipped int
}

func NewFetchService(db *storage.DB, rawMailDir string, maxBytes int64, connector MailConnector, logger logging.Logger) *FetchService {
	if logger == nil {
		logger = logging.Nop()
	}
	return &FetchService{
		connector: connector,
		store:     NewMailStoreService(db, rawMailDir, maxBytes),
		logger:    logger,
	}
}

func (s *FetchService) FetchAndStore(ctx context.Context, label string, max int) (FetchResult, error) {
	messages, err := s.connector.FetchInbox(ctx, label, max)
	if err != nil {
		return FetchResult{}, fmt.Errorf("fetch %s: %w", label, err)
	}

	res := FetchResult{Fetched: len(messages)}
	for _, msg := range messages {
		row, created, err := s.store.Store(msg)
		switch {
		case errors.Is(err, ErrEmptyMessage), errors.Is(err, ErrMessageTooLarge):
			res.Skipped++
			s.logger.Warn("message skipped", "provider", msg.Provider, "messageId", msg.MessageID, "error", err)
			continue
		case err != nil:
			return res, fmt.Errorf("store message %s: %w", msg.MessageID, err)
		}
		if created {
			res.Stored++
			s.logger.Debug("message stored", "provider", msg.Provider, "messageId", msg.MessageID, "emailId", row.ID)
		}
	}
	return res, nil
}
