package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"partsdesk/internal/config"
	"partsdesk/internal/connectors"
	"partsdesk/internal/listener"
	"partsdesk/internal/logging"
	"partsdesk/internal/metrics"
	"partsdesk/internal/orders"
	"partsdesk/internal/parts"
	"partsdesk/internal/pipeline"
	"partsdesk/internal/storage"
)

func main() {
	cfg, err := config.Load()
	must(err)

	logger := logging.New(cfg.LogLevel)
	defer func() { _ = logger.Sync() }()
	m := metrics.New("partsdesk")

	db, err := storage.Open(cfg.DBPath)
	must(err)
	defer db.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	conn, err := connectors.New(ctx, cfg, cfg.MailListenerProvider)
	must(err)

	dispatcher := parts.NewDispatcher(parts.DefaultRegistry(),
		parts.WithLogger(logger), parts.WithMetrics(m), parts.WithMaxBodyChars(cfg.MaxBodyChars))
	processor := pipeline.NewProcessingService(db, dispatcher, cfg, logger, m)

	var pusher *orders.PushService
	if cfg.OrdersAPIBaseURL != "" && cfg.OrdersAPIToken != "" {
		pusher = orders.NewPushService(db, orders.NewClient(cfg), logger, m)
	}
	svc := listener.NewService(db, cfg, conn, processor, pusher, logger)

	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	srv := &http.Server{Addr: cfg.MetricsAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("metrics server listening", "addr", cfg.MetricsAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
		defer done()
		return srv.Shutdown(shutdownCtx)
	})
	g.Go(func() error {
		defer cancel()
		return svc.Run(gctx)
	})

	must(g.Wait())
}

func must(err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
