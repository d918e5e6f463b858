package pipeline

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"partsdesk/internal"
	"partsdesk/internal/config"
	"partsdesk/internal/logging"
	"partsdesk/internal/mail"
	"partsdesk/internal/metrics"
	"partsdesk/internal/parts"
	"partsdesk/internal/storage"
	"partsdesk/internal/util"
)

type ProcessingService struct {
	db         *storage.DB
	dispatcher *parts.Dispatcher
	cfg        config.Config
	logger     logging.Logger
	metrics    *metrics.Metrics
}

func NewProcessingService(db *storage.DB, dispatcher *parts.Dispatcher, cfg config.Config, logger logging.Logger, m *metrics.Metrics) *ProcessingService {
	if logger == nil {
		logger = logging.Nop()
	}
	if cfg.ProcessWorkers < 1 {
		cfg.ProcessWorkers = 1
	}
	return &ProcessingService{db: db, dispatcher: dispatcher, cfg: cfg, logger: logger, metrics: m}
}

type ProcessResult struct {
	EmailID  int
	Status   string
	Airline  string
	Strategy string
	Orders   int
}

type BatchResult struct {
	Emails int
	Orders int
	Failed int
}

func (s *ProcessingService) ProcessByProviderMessageID(ctx context.Context, provider, messageID string) (ProcessResult, error) {
	email, err := s.db.MustEmailByProviderMessageID(provider, messageID)
	if err != nil {
		return ProcessResult{}, err
	}
	return s.ProcessEmail(ctx, email)
}

// ProcessPending parses fetched emails with up to ProcessWorkers in flight.
// A failing email is marked failed and counted; it does not stop the batch.
func (s *ProcessingService) ProcessPending(ctx context.Context, limit int, provider string) (BatchResult, error) {
	pending, err := s.db.ListEmailsByStatus(internal.StatusFetched, limit)
	if err != nil {
		return BatchResult{}, err
	}

	var (
		mu  sync.Mutex
		out BatchResult
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.ProcessWorkers)

	for _, email := range pending {
		if provider != "" && email.Provider != provider {
			continue
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, err := s.ProcessEmail(gctx, email)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				out.Failed++
				return nil
			}
			out.Emails++
			out.Orders += res.Orders
			return nil
		})
	}

	err = g.Wait()
	return out, err
}

func (s *ProcessingService) ProcessEmail(ctx context.Context, email internal.EmailRow) (ProcessResult, error) {
	start := time.Now()
	defer s.metrics.ObserveDuration(start)

	log := s.logger.With("emailId", email.ID, "messageId", email.MessageID)
	traceID := uuid.NewString()

	if err := ctx.Err(); err != nil {
		return ProcessResult{}, err
	}

	decoded, err := s.decode(email)
	if err != nil {
		log.Error("email decode failed", "error", err)
		s.metrics.ObserveError("decode")
		s.fail(email.ID, traceID, start)
		return ProcessResult{}, err
	}
	for _, attErr := range decoded.AttachmentErrors {
		log.Warn("attachment skipped", "error", attErr)
	}

	result := s.dispatcher.Parse(decoded.Email)
	if err := s.db.ReplaceOrders(email.ID, result); err != nil {
		s.metrics.ObserveError("store_orders")
		return ProcessResult{}, fmt.Errorf("store orders for email %d: %w", email.ID, err)
	}

	status := internal.StatusProcessed
	if !result.IsAviationRequest {
		status = internal.StatusSkipped
	}
	if err := s.db.UpdateEmailStatus(email.ID, status); err != nil {
		return ProcessResult{}, err
	}

	counts := map[string]int{"orders": len(result.Orders), "attachments": len(decoded.Email.Attachments), "attachmentErrors": len(decoded.AttachmentErrors)}
	if err := s.db.InsertRun(traceID, email.ID, timings(start), counts); err != nil {
		log.Warn("run record not stored", "error", err)
	}

	res := ProcessResult{
		EmailID:  email.ID,
		Status:   status,
		Strategy: result.Strategy,
		Orders:   len(result.Orders),
	}
	if result.Airline != nil {
		res.Airline = *result.Airline
	}
	log.Info("email processed", "status", status, "airline", res.Airline, "strategy", res.Strategy, "orders", res.Orders, "traceId", traceID)
	return res, nil
}

func (s *ProcessingService) decode(email internal.EmailRow) (mail.Decoded, error) {
	raw, err := os.ReadFile(email.RawRef)
	if err != nil {
		return mail.Decoded{}, err
	}
	decoded, err := mail.Decode(raw, s.cfg.MaxEmailBytes)
	if err != nil {
		return mail.Decoded{}, err
	}
	// stored headers fill in what the raw message lacks
	decoded.Email.Subject = util.FirstNonEmpty(decoded.Email.Subject, email.Subject)
	decoded.Email.FromEmail = util.FirstNonEmpty(decoded.Email.FromEmail, email.Sender)
	return decoded, nil
}

func (s *ProcessingService) fail(emailID int, traceID string, start time.Time) {
	if err := s.db.UpdateEmailStatus(emailID, internal.StatusFailed); err != nil {
		s.logger.Error("status update failed", "emailId", emailID, "error", err)
	}
	_ = s.db.InsertRun(traceID, emailID, timings(start), map[string]int{"orders": 0})
}

func timings(start time.Time) map[string]float64 {
	return map[string]float64{"totalMs": float64(time.Since(start).Milliseconds())}
}
