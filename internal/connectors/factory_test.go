package connectors

import (
	"context"
	"testing"

	"partsdesk/internal/config"
)

func TestNewConnector(t *testing.T) {
	cfg := config.Config{MailDropDir: t.TempDir()}
	if _, err := New(context.Background(), cfg, " DIR "); err != nil {
		t.Fatal(err)
	}
	if _, err := New(context.Background(), cfg, "imap"); err == nil {
		t.Fatalf("expected missing IMAP_HOST")
	}
	if _, err := New(context.Background(), cfg, "pop3"); err == nil {
		t.Fatalf("expected unsupported provider")
	}
}
