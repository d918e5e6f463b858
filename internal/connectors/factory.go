package connectors

import (
	"context"
	"fmt"
	"strings"

	"partsdesk/internal/config"
	dirconnector "partsdesk/internal/connectors/dir"
	gmailconnector "partsdesk/internal/connectors/gmail"
	imapconnector "partsdesk/internal/connectors/imap"
)

// New builds the connector for provider: gmail, imap or dir.
func New(ctx context.Context, cfg config.Config, provider string) (MailConnector, error) {
	switch strings.ToLower(strings.TrimSpace(provider)) {
	case "gmail":
		return gmailconnector.NewConnector(ctx, cfg)
	case "imap":
		return imapconnector.NewConnector(cfg)
	case "dir":
		return dirconnector.NewConnector(cfg.MailDropDir), nil
	default:
		return nil, fmt.Errorf("unsupported provider: %s", provider)
	}
}
