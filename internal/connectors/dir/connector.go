package dir

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"partsdesk/internal"
	"partsdesk/internal/mail"
)

const doneDir = ".fetched"

// Connector reads .eml files dropped into a directory, for mailboxes exported by hand or by a
// mail client rule. A fetched file is moved into a .fetched subdirectory.
type Connector struct {
	root string
}

func NewConnector(root string) *Connector {
	return &Connector{root: root}
}

// FetchInbox treats label as a subdirectory of the root; "" and "INBOX" mean the root itself.
func (c *Connector) FetchInbox(ctx context.Context, label string, max int) ([]internal.FetchedMailMessage, error) {
	folder := c.root
	if label != "" && !strings.EqualFold(label, "INBOX") {
		folder = filepath.Join(c.root, label)
	}

	entries, err := os.ReadDir(folder)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() && strings.EqualFold(filepath.Ext(e.Name()), ".eml") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	if max > 0 && len(names) > max {
		names = names[:max]
	}

	out := make([]internal.FetchedMailMessage, 0, len(names))
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		path := filepath.Join(folder, name)
		raw, err := os.ReadFile(path)
		if err != nil {
			return out, err
		}
		msg := toMessage(raw)
		if err := markFetched(folder, name); err != nil {
			return out, err
		}
		out = append(out, msg)
	}
	return out, nil
}

func toMessage(raw []byte) internal.FetchedMailMessage {
	msg := internal.FetchedMailMessage{Provider: "dir", Raw: raw}
	if decoded, err := mail.Decode(raw, 0); err == nil {
		msg.MessageID = decoded.MessageID
		msg.Subject = decoded.Email.Subject
		msg.From = decoded.Email.FromEmail
		if !decoded.Email.ReceivedAt.IsZero() {
			msg.ReceivedAt = decoded.Email.ReceivedAt.Format(time.RFC3339)
		}
	}
	if msg.MessageID == "" {
		sum := sha256.Sum256(raw)
		msg.MessageID = "dir-" + hex.EncodeToString(sum[:8])
	}
	if msg.ReceivedAt == "" {
		msg.ReceivedAt = time.Now().UTC().Format(time.RFC3339)
	}
	return msg
}

func markFetched(folder, name string) error {
	done := filepath.Join(folder, doneDir)
	if err := os.MkdirAll(done, 0o755); err != nil {
		return err
	}
	return os.Rename(filepath.Join(folder, name), filepath.Join(done, name))
}
