package config

import "testing"

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("DB_PATH", "/tmp/pd.db")
	t.Setenv("PROCESS_WORKERS", "0")
	t.Setenv("MAX_EMAIL_BYTES", "1024")
	t.Setenv("IMAP_SECURE", "off")
	t.Setenv("ORDERS_RATE_LIMIT_RPS", "not-a-number")
	t.Setenv("MAIL_LISTENER_AUTO_PUSH", "yes")

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.DBPath != "/tmp/pd.db" {
		t.Fatalf("db=%q", cfg.DBPath)
	}
	if cfg.ProcessWorkers != 1 {
		t.Fatalf("workers=%d", cfg.ProcessWorkers)
	}
	if cfg.MaxEmailBytes != 1024 {
		t.Fatalf("maxEmailBytes=%d", cfg.MaxEmailBytes)
	}
	if cfg.IMAPSecure {
		t.Fatalf("imap secure should be off")
	}
	if cfg.OrdersRateLimitRPS != 5 {
		t.Fatalf("rps=%d", cfg.OrdersRateLimitRPS)
	}
	if !cfg.MailListenerAutoPush {
		t.Fatalf("auto push should be on")
	}
}

func TestRequire(t *testing.T) {
	var cfg Config
	if err := cfg.Require("IMAP_HOST", "  "); err == nil {
		t.Fatalf("expected error")
	}
	if err := cfg.Require("IMAP_HOST", "imap.example"); err != nil {
		t.Fatal(err)
	}
}
