package imap

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/emersion/go-imap"
	imapclient "github.com/emersion/go-imap/client"

	"partsdesk/internal"
	"partsdesk/internal/config"
	"partsdesk/internal/mail"
	"partsdesk/internal/util"
)

const provider = "imap"

// Connector reads unseen part requests from one IMAP mailbox.
type Connector struct {
	addr     string
	host     string
	secure   bool
	user     string
	password string
	markSeen bool
}

func NewConnector(cfg config.Config) (*Connector, error) {
	for _, req := range []struct{ key, value string }{
		{"IMAP_HOST", cfg.IMAPHost},
		{"IMAP_USER", cfg.IMAPUser},
		{"IMAP_PASSWORD", cfg.IMAPPassword},
	} {
		if err := cfg.Require(req.key, req.value); err != nil {
			return nil, err
		}
	}
	return &Connector{
		addr:     fmt.Sprintf("%s:%d", cfg.IMAPHost, cfg.IMAPPort),
		host:     cfg.IMAPHost,
		secure:   cfg.IMAPSecure,
		user:     cfg.IMAPUser,
		password: cfg.IMAPPassword,
		markSeen: cfg.IMAPMarkSeen,
	}, nil
}

// FetchInbox returns the newest max unseen messages in mailbox order. The IMAP client has no
// context support, so the connection is terminated when ctx is cancelled.
func (c *Connector) FetchInbox(ctx context.Context, label string, max int) ([]internal.FetchedMailMessage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	client, err := c.dial()
	if err != nil {
		return nil, fmt.Errorf("imap dial %s: %w", c.addr, err)
	}
	defer client.Logout()

	stop := context.AfterFunc(ctx, func() { _ = client.Terminate() })
	defer stop()

	out, uids, err := c.fetchUnseen(client, label, max)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, err
	}
	if c.markSeen && len(uids) > 0 {
		if err := markSeen(client, uids); err != nil {
			return nil, fmt.Errorf("imap mark seen: %w", err)
		}
	}
	return out, nil
}

func (c *Connector) dial() (*imapclient.Client, error) {
	if c.secure {
		return imapclient.DialTLS(c.addr, &tls.Config{ServerName: c.host})
	}
	return imapclient.Dial(c.addr)
}

func (c *Connector) fetchUnseen(client *imapclient.Client, label string, max int) ([]internal.FetchedMailMessage, []uint32, error) {
	if err := client.Login(c.user, c.password); err != nil {
		return nil, nil, fmt.Errorf("imap login: %w", err)
	}
	if _, err := client.Select(label, false); err != nil {
		return nil, nil, fmt.Errorf("imap select %s: %w", label, err)
	}

	criteria := imap.NewSearchCriteria()
	criteria.WithoutFlags = []string{imap.SeenFlag}
	ids, err := client.Search(criteria)
	if err != nil {
		return nil, nil, fmt.Errorf("imap search: %w", err)
	}
	ids = newest(ids, max)
	if len(ids) == 0 {
		return nil, nil, nil
	}

	seqset := new(imap.SeqSet)
	seqset.AddNum(ids...)
	section := &imap.BodySectionName{Peek: true}
	items := []imap.FetchItem{imap.FetchEnvelope, imap.FetchInternalDate, imap.FetchUid, section.FetchItem()}

	messages := make(chan *imap.Message, len(ids))
	fetchDone := make(chan error, 1)
	go func() { fetchDone <- client.Fetch(seqset, items, messages) }()

	out := make([]internal.FetchedMailMessage, 0, len(ids))
	uids := make([]uint32, 0, len(ids))
	var readErr error
	for msg := range messages {
		if msg == nil || readErr != nil {
			continue
		}
		fetched, ok, err := toMessage(msg, section, time.Now())
		if err != nil {
			readErr = err
			continue
		}
		if ok {
			out = append(out, fetched)
			uids = append(uids, msg.Uid)
		}
	}
	if err := <-fetchDone; err != nil {
		return nil, nil, fmt.Errorf("imap fetch: %w", err)
	}
	if readErr != nil {
		return nil, nil, readErr
	}
	return out, uids, nil
}

// newest keeps the last max sequence numbers.
func newest(ids []uint32, max int) []uint32 {
	if max > 0 && len(ids) > max {
		return ids[len(ids)-max:]
	}
	return ids
}

// toMessage builds the stored form of one fetched message. The envelope is preferred; the
// decoded headers fill what it lacks. ok is false when the server sent no body.
func toMessage(msg *imap.Message, section *imap.BodySectionName, now time.Time) (internal.FetchedMailMessage, bool, error) {
	body := msg.GetBody(section)
	if body == nil {
		return internal.FetchedMailMessage{}, false, nil
	}
	raw, err := io.ReadAll(body)
	if err != nil {
		return internal.FetchedMailMessage{}, false, fmt.Errorf("imap read uid %d: %w", msg.Uid, err)
	}

	out := internal.FetchedMailMessage{Provider: provider, Raw: raw}
	if env := msg.Envelope; env != nil {
		out.MessageID = strings.Trim(env.MessageId, "<> ")
		out.Subject = env.Subject
		out.From = formatAddresses(env.From)
	}
	if out.MessageID == "" || out.Subject == "" || out.From == "" {
		if decoded, err := mail.Decode(raw, 0); err == nil {
			out.MessageID = util.FirstNonEmpty(out.MessageID, decoded.MessageID)
			out.Subject = util.FirstNonEmpty(out.Subject, decoded.Email.Subject)
			out.From = util.FirstNonEmpty(out.From, decoded.Email.FromEmail)
		}
	}
	if out.MessageID == "" {
		out.MessageID = fmt.Sprintf("imap-%d", msg.Uid)
	}

	received := now
	if !msg.InternalDate.IsZero() {
		received = msg.InternalDate
	}
	out.ReceivedAt = received.UTC().Format(time.RFC3339)
	return out, true, nil
}

func markSeen(client *imapclient.Client, uids []uint32) error {
	set := new(imap.SeqSet)
	set.AddNum(uids...)
	item := imap.FormatFlagsOp(imap.AddFlags, true)
	return client.UidStore(set, item, []interface{}{imap.SeenFlag}, nil)
}

// formatAddresses renders "Name <box@host>" entries joined by commas.
func formatAddresses(addrs []*imap.Address) string {
	out := make([]string, 0, len(addrs))
	for _, a := range addrs {
		if a == nil {
			continue
		}
		email := strings.Trim(a.MailboxName+"@"+a.HostName, "@")
		if a.PersonalName != "" {
			email = fmt.Sprintf("%s <%s>", a.PersonalName, email)
		}
		out = append(out, email)
	}
	return strings.Join(out, ", ")
}
