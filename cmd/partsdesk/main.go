package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"partsdesk/internal"
	"partsdesk/internal/config"
	"partsdesk/internal/connectors"
	"partsdesk/internal/listener"
	"partsdesk/internal/logging"
	"partsdesk/internal/metrics"
	"partsdesk/internal/orders"
	"partsdesk/internal/parts"
	"partsdesk/internal/pipeline"
	"partsdesk/internal/procurement"
	"partsdesk/internal/storage"
)

func main() {
	cfg, err := config.Load()
	must(err)

	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	logger := logging.New(cfg.LogLevel)
	defer func() { _ = logger.Sync() }()
	m := metrics.New("partsdesk")

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	dispatcher := parts.NewDispatcher(parts.DefaultRegistry(),
		parts.WithLogger(logger), parts.WithMetrics(m), parts.WithMaxBodyChars(cfg.MaxBodyChars))

	cmd := os.Args[1]

	// parse and profiles:list work without a database
	switch cmd {
	case "parse":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		input := fs.String("input", "", "input file path")
		inType := fs.String("type", "", "eml|email_text|email_table|xlsx|csv|pdf (default: from extension)")
		from := fs.String("from", "", "sender address for bodies without headers")
		subject := fs.String("subject", "", "subject for bodies without headers")
		output := fs.String("output", "", "optional output xlsx path")
		_ = fs.Parse(os.Args[2:])
		if strings.TrimSpace(*input) == "" {
			must(fmt.Errorf("--input is required"))
		}
		t := *inType
		if t == "" {
			t = pipeline.InputTypeFor(*input)
		}
		result, err := pipeline.ParseInput(dispatcher, t, *input, *from, *subject, cfg.MaxEmailBytes)
		must(err)
		printJSON(result)
		if *output != "" {
			must(pipeline.ExportRowsToXLSX(resultRows(result, *from, *subject), *output))
			fmt.Fprintf(os.Stderr, "exported %d rows to %s\n", len(result.Orders), *output)
		}
		return
	case "profiles:list":
		for _, name := range parts.DefaultRegistry().Names() {
			fmt.Println(name)
		}
		return
	}

	db, err := storage.Open(cfg.DBPath)
	must(err)
	defer db.Close()

	switch cmd {
	case "mail:fetch":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		provider := fs.String("provider", cfg.MailListenerProvider, "gmail|imap|dir")
		label := fs.String("label", "INBOX", "mailbox/label")
		max := fs.Int("max", 50, "max messages")
		_ = fs.Parse(os.Args[2:])
		conn, err := connectors.New(ctx, cfg, *provider)
		must(err)
		fetch := connectors.NewFetchService(db, cfg.RawMailDir, cfg.MaxEmailBytes, conn, logger)
		result, err := fetch.FetchAndStore(ctx, *label, *max)
		must(err)
		fmt.Printf("mail fetch done provider=%s fetched=%d stored=%d skipped=%d\n", *provider, result.Fetched, result.Stored, result.Skipped)
	case "mail:process":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		provider := fs.String("provider", "", "only emails from this provider (default: all)")
		messageID := fs.String("messageId", "", "specific message-id")
		batch := fs.Int("batch", 20, "batch size")
		_ = fs.Parse(os.Args[2:])
		processor := pipeline.NewProcessingService(db, dispatcher, cfg, logger, m)
		if strings.TrimSpace(*messageID) != "" {
			if *provider == "" {
				must(fmt.Errorf("--provider is required with --messageId"))
			}
			res, err := processor.ProcessByProviderMessageID(ctx, *provider, *messageID)
			must(err)
			fmt.Printf("processed email id=%d status=%s airline=%q strategy=%s orders=%d\n", res.EmailID, res.Status, res.Airline, res.Strategy, res.Orders)
			return
		}
		res, err := processor.ProcessPending(ctx, *batch, *provider)
		must(err)
		fmt.Printf("processed pending emails=%d orders=%d failed=%d\n", res.Emails, res.Orders, res.Failed)
	case "export:xlsx":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		emailID := fs.Int("emailId", 0, "internal email id (0: all emails)")
		out := fs.String("out", "", "output xlsx path")
		_ = fs.Parse(os.Args[2:])
		if strings.TrimSpace(*out) == "" {
			must(fmt.Errorf("--out is required"))
		}
		rows, err := db.GetExportRows(*emailID)
		must(err)
		if len(rows) == 0 {
			must(fmt.Errorf("no export rows for emailId=%d", *emailID))
		}
		must(pipeline.ExportRowsToXLSX(rows, *out))
		fmt.Printf("exported %d rows to %s\n", len(rows), *out)
	case "mail:listen":
		conn, err := connectors.New(ctx, cfg, cfg.MailListenerProvider)
		must(err)
		processor := pipeline.NewProcessingService(db, dispatcher, cfg, logger, m)
		s := listener.NewService(db, cfg, conn, processor, pusher(db, cfg, logger, m), logger)
		must(s.Run(ctx))
	case "orders:push":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		limit := fs.Int("limit", 500, "max orders per run")
		_ = fs.Parse(os.Args[2:])
		p := pusher(db, cfg, logger, m)
		if p == nil {
			must(fmt.Errorf("ORDERS_API_BASE_URL and ORDERS_API_TOKEN are required"))
		}
		res, err := p.PushPending(ctx, *limit)
		must(err)
		fmt.Printf("orders push done emails=%d orders=%d failed=%d\n", res.Emails, res.Orders, res.Failed)
	case "procurement:validate":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		input := fs.String("input", "", "JSON file with an array of line items")
		source := fs.String("source", "", "batch source label (default: input file name)")
		dryRun := fs.Bool("dry-run", false, "validate only, store nothing")
		_ = fs.Parse(os.Args[2:])
		if strings.TrimSpace(*input) == "" {
			must(fmt.Errorf("--input is required"))
		}
		data, err := os.ReadFile(*input)
		must(err)
		if *dryRun {
			items, err := procurement.Validate(data)
			must(err)
			printJSON(items)
			return
		}
		src := *source
		if src == "" {
			src = *input
		}
		res, err := procurement.NewService(db, logger, m).Submit(src, data)
		must(err)
		fmt.Printf("procurement batch stored id=%s items=%d\n", res.BatchID, len(res.Items))
	default:
		usage()
		os.Exit(1)
	}
}

func pusher(db *storage.DB, cfg config.Config, logger logging.Logger, m *metrics.Metrics) *orders.PushService {
	if strings.TrimSpace(cfg.OrdersAPIBaseURL) == "" || strings.TrimSpace(cfg.OrdersAPIToken) == "" {
		return nil
	}
	return orders.NewPushService(db, orders.NewClient(cfg), logger, m)
}

func resultRows(result parts.ParsingResult, from, subject string) []internal.OrderExportRow {
	rows := make([]internal.OrderExportRow, 0, len(result.Orders))
	for i, rec := range result.Orders {
		rows = append(rows, internal.OrderExportRow{
			OrderRow: internal.OrderRow{
				LineNo:               i + 1,
				Airline:              result.Airline,
				Strategy:             result.Strategy,
				PartNumber:           rec.PartNumber,
				Description:          rec.Description,
				Quantity:             rec.Quantity,
				UnitOfMeasure:        rec.UnitOfMeasure,
				AircraftType:         rec.AircraftType,
				Priority:             string(rec.Priority),
				AlternatePartNumbers: rec.AlternatePartNumbers,
				Remarks:              rec.Remarks,
				OrderNumber:          rec.OrderNumber,
			},
			Sender:  from,
			Subject: subject,
		})
	}
	return rows
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	must(enc.Encode(v))
}

func usage() {
	fmt.Println("usage: partsdesk <command>")
	fmt.Println("commands:")
	fmt.Println("  parse --input=... [--type=eml|email_text|email_table|xlsx|csv|pdf] [--from=...] [--subject=...] [--output=...xlsx]")
	fmt.Println("  profiles:list")
	fmt.Println("  mail:fetch --provider=gmail|imap|dir --label=INBOX --max=50")
	fmt.Println("  mail:process [--provider=...] [--messageId=...] [--batch=20]")
	fmt.Println("  mail:listen")
	fmt.Println("  export:xlsx [--emailId=1] --out=./out/result.xlsx")
	fmt.Println("  orders:push [--limit=500]")
	fmt.Println("  procurement:validate --input=batch.json [--source=...] [--dry-run]")
}

func must(err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
