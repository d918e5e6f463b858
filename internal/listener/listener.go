package listener

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"partsdesk/internal"
	"partsdesk/internal/config"
	"partsdesk/internal/connectors"
	"partsdesk/internal/logging"
	"partsdesk/internal/orders"
	"partsdesk/internal/pipeline"
	"partsdesk/internal/storage"
)

// Service runs the fetch, process, export and push loop.
type Service struct {
	db        *storage.DB
	cfg       config.Config
	provider  string
	fetcher   *connectors.FetchService
	processor *pipeline.ProcessingService
	pusher    *orders.PushService
	logger    logging.Logger
}

// NewService wires a listener. pusher may be nil; pushing is then skipped even with auto push on.
func NewService(db *storage.DB, cfg config.Config, connector connectors.MailConnector, processor *pipeline.ProcessingService, pusher *orders.PushService, logger logging.Logger) *Service {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Service{
		db:        db,
		cfg:       cfg,
		provider:  strings.ToLower(strings.TrimSpace(cfg.MailListenerProvider)),
		fetcher:   connectors.NewFetchService(db, cfg.RawMailDir, cfg.MaxEmailBytes, connector, logger),
		processor: processor,
		pusher:    pusher,
		logger:    logger.With("component", "listener", "provider", cfg.MailListenerProvider),
	}
}

func (s *Service) Run(ctx context.Context) error {
	s.logger.Info("listener started", "intervalSec", s.cfg.MailListenerIntervalSec)
	for {
		if err := s.RunOnce(ctx); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			s.logger.Error("listener cycle failed", "error", err)
		}

		select {
		case <-ctx.Done():
			s.logger.Info("listener stopped")
			return nil
		case <-time.After(time.Duration(s.cfg.MailListenerIntervalSec) * time.Second):
		}
	}
}

// CycleResult summarizes one listener pass.
type CycleResult struct {
	Fetched  int
	Stored   int
	Emails   int
	Orders   int
	Failed   int
	Exported int
	Pushed   int
}

// RunOnce performs a single pass. Emails that fail to parse are counted, not returned as errors.
func (s *Service) RunOnce(ctx context.Context) error {
	_, err := s.cycle(ctx)
	return err
}

func (s *Service) cycle(ctx context.Context) (CycleResult, error) {
	var res CycleResult

	fetched, err := s.fetcher.FetchAndStore(ctx, s.cfg.MailListenerLabel, s.cfg.MailListenerFetchMax)
	if err != nil {
		return res, err
	}
	res.Fetched, res.Stored = fetched.Fetched, fetched.Stored

	batch, err := s.processor.ProcessPending(ctx, s.cfg.MailListenerProcessBatch, s.provider)
	if err != nil {
		return res, fmt.Errorf("process pending: %w", err)
	}
	res.Emails, res.Orders, res.Failed = batch.Emails, batch.Orders, batch.Failed

	if s.cfg.MailListenerAutoExport {
		n, err := s.exportProcessed()
		if err != nil {
			return res, fmt.Errorf("export: %w", err)
		}
		res.Exported = n
	}

	if s.cfg.MailListenerAutoPush && s.pusher != nil {
		pushed, err := s.pusher.PushPending(ctx, 500)
		if err != nil {
			return res, fmt.Errorf("push orders: %w", err)
		}
		res.Pushed = pushed.Orders
	}

	s.logger.Info("listener cycle done",
		"fetched", res.Fetched, "stored", res.Stored, "emails", res.Emails, "orders", res.Orders,
		"failed", res.Failed, "exported", res.Exported, "pushed", res.Pushed)
	return res, nil
}

func (s *Service) exportProcessed() (int, error) {
	emails, err := s.db.ListEmailsByStatus(internal.StatusProcessed, 200)
	if err != nil {
		return 0, err
	}

	exported := 0
	for _, email := range emails {
		if s.provider != "" && email.Provider != s.provider {
			continue
		}
		rows, err := s.db.GetExportRows(email.ID)
		if err != nil {
			return exported, err
		}
		if len(rows) == 0 {
			continue
		}
		filename := fmt.Sprintf("%d_%s.xlsx", email.ID, sanitizeMessageID(email.MessageID))
		outputPath := filepath.Join(s.cfg.OutputDir, "listener", filename)
		if err := pipeline.ExportRowsToXLSX(rows, outputPath); err != nil {
			return exported, err
		}
		if err := s.db.UpdateEmailStatus(email.ID, internal.StatusExported); err != nil {
			return exported, err
		}
		exported++
	}
	return exported, nil
}

func sanitizeMessageID(input string) string {
	repl := strings.NewReplacer("<", "_", ">", "_", ":", "_", "/", "_", "\\", "_", "|", "_", "?", "_", "*", "_", " ", "_", "@", "_")
	out := repl.Replace(input)
	if len(out) > 120 {
		out = out[:120]
	}
	return out
}
