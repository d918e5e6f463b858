package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	DBPath      string
	RawMailDir  string
	MailDropDir string
	OutputDir   string
	LogLevel    string

	ProcessWorkers int
	MaxEmailBytes  int64
	MaxBodyChars   int

	OrdersAPIBaseURL   string
	OrdersAPIToken     string
	OrdersRateLimitRPS int
	OrdersTimeoutMs    int

	MetricsAddr string

	GmailClientID     string
	GmailClientSecret string
	GmailRedirectURI  string
	GmailRefreshToken string

	IMAPHost     string
	IMAPPort     int
	IMAPSecure   bool
	IMAPUser     string
	IMAPPassword string
	IMAPMarkSeen bool

	MailListenerProvider     string
	MailListenerLabel        string
	MailListenerIntervalSec  int
	MailListenerFetchMax     int
	MailListenerProcessBatch int
	MailListenerAutoExport   bool
	MailListenerAutoPush     bool
}

func Load() (Config, error) {
	_ = godotenv.Load()

	cwd, err := os.Getwd()
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		DBPath:      getEnv("DB_PATH", filepath.Join(cwd, "data", "partsdesk.db")),
		RawMailDir:  getEnv("MAIL_RAW_DIR", filepath.Join(cwd, "data", "raw")),
		MailDropDir: getEnv("MAIL_DROP_DIR", filepath.Join(cwd, "data", "inbox")),
		OutputDir:   getEnv("OUTPUT_DIR", filepath.Join(cwd, "out")),
		LogLevel:    getEnv("LOG_LEVEL", "info"),

		ProcessWorkers: getEnvInt("PROCESS_WORKERS", 4),
		MaxEmailBytes:  int64(getEnvInt("MAX_EMAIL_BYTES", 25<<20)),
		MaxBodyChars:   getEnvInt("MAX_BODY_CHARS", 200_000),

		OrdersAPIBaseURL:   getEnv("ORDERS_API_BASE_URL", ""),
		OrdersAPIToken:     getEnv("ORDERS_API_TOKEN", ""),
		OrdersRateLimitRPS: getEnvInt("ORDERS_RATE_LIMIT_RPS", 5),
		OrdersTimeoutMs:    getEnvInt("ORDERS_TIMEOUT_MS", 30000),

		MetricsAddr: getEnv("METRICS_ADDR", ":9108"),

		GmailClientID:     getEnv("GMAIL_CLIENT_ID", ""),
		GmailClientSecret: getEnv("GMAIL_CLIENT_SECRET", ""),
		GmailRedirectURI:  getEnv("GMAIL_REDIRECT_URI", "https://developers.google.com/oauthplayground"),
		GmailRefreshToken: getEnv("GMAIL_REFRESH_TOKEN", ""),

		IMAPHost:     getEnv("IMAP_HOST", ""),
		IMAPPort:     getEnvInt("IMAP_PORT", 993),
		IMAPSecure:   getEnvBool("IMAP_SECURE", true),
		IMAPUser:     getEnv("IMAP_USER", ""),
		IMAPPassword: getEnv("IMAP_PASSWORD", ""),
		IMAPMarkSeen: getEnvBool("IMAP_MARK_SEEN", false),

		MailListenerProvider:     getEnv("MAIL_LISTENER_PROVIDER", "imap"),
		MailListenerLabel:        getEnv("MAIL_LISTENER_LABEL", "INBOX"),
		MailListenerIntervalSec:  getEnvInt("MAIL_LISTENER_INTERVAL_SEC", 30),
		MailListenerFetchMax:     getEnvInt("MAIL_LISTENER_FETCH_MAX", 20),
		MailListenerProcessBatch: getEnvInt("MAIL_LISTENER_PROCESS_BATCH", 20),
		MailListenerAutoExport:   getEnvBool("MAIL_LISTENER_AUTO_EXPORT", true),
		MailListenerAutoPush:     getEnvBool("MAIL_LISTENER_AUTO_PUSH", false),
	}

	if cfg.ProcessWorkers < 1 {
		cfg.ProcessWorkers = 1
	}
	if cfg.MailListenerIntervalSec < 1 {
		cfg.MailListenerIntervalSec = 1
	}

	return cfg, nil
}

func (c Config) Require(name, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("missing required env var: %s", name)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := getEnv(key, "")
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvBool(key string, fallback bool) bool {
	value := strings.ToLower(strings.TrimSpace(getEnv(key, "")))
	if value == "" {
		return fallback
	}
	if value == "1" || value == "true" || value == "yes" || value == "on" {
		return true
	}
	if value == "0" || value == "false" || value == "no" || value == "off" {
		return false
	}
	return fallback
}
