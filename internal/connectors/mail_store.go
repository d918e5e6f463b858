package connectors

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"partsdesk/internal"
	"partsdesk/internal/storage"
)

var (
	ErrEmptyMessage    = errors.New("empty message")
	ErrMessageTooLarge = errors.New("message exceeds size limit")
)

// MailStoreService writes raw messages under rawMailDir/<hash[:2]>/<hash>.eml and indexes
// them as fetched emails.
type MailStoreService struct {
	db         *storage.DB
	rawMailDir string
	maxBytes   int64
}

func NewMailStoreService(db *storage.DB, rawMailDir string, maxBytes int64) *MailStoreService {
	return &MailStoreService{db: db, rawMailDir: rawMailDir, maxBytes: maxBytes}
}

// Store returns the email row and whether it is new. A message already stored with the
// same content is left as it is, whatever its status.
func (s *MailStoreService) Store(msg internal.FetchedMailMessage) (internal.EmailRow, bool, error) {
	if len(msg.Raw) == 0 {
		return internal.EmailRow{}, false, ErrEmptyMessage
	}
	if s.maxBytes > 0 && int64(len(msg.Raw)) > s.maxBytes {
		return internal.EmailRow{}, false, fmt.Errorf("%w: %d bytes", ErrMessageTooLarge, len(msg.Raw))
	}

	sum := sha256.Sum256(msg.Raw)
	hash := hex.EncodeToString(sum[:])

	existing, err := s.db.GetEmailByProviderMessageID(msg.Provider, msg.MessageID)
	if err != nil {
		return internal.EmailRow{}, false, err
	}
	if existing != nil && existing.Hash == hash {
		return *existing, false, nil
	}

	rawPath, err := s.writeRaw(hash, msg.Raw)
	if err != nil {
		return internal.EmailRow{}, false, err
	}
	row, err := s.db.UpsertEmail(msg.Provider, msg.MessageID, msg.Subject, msg.From, msg.ReceivedAt, hash, rawPath, internal.StatusFetched)
	if err != nil {
		return internal.EmailRow{}, false, err
	}
	return row, existing == nil, nil
}

// writeRaw is a no-op when the file exists; content addressing makes it identical.
func (s *MailStoreService) writeRaw(hash string, raw []byte) (string, error) {
	dir := filepath.Join(s.rawMailDir, hash[:2])
	path := filepath.Join(dir, hash+".eml")
	if _, err := os.Stat(path); err == nil {
		return path, nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}

	tmp, err := os.CreateTemp(dir, hash+".*.tmp")
	if err != nil {
		return "", err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(raw); err != nil {
		_ = tmp.Close()
		return "", err
	}
	if err := tmp.Close(); err != nil {
		return "", err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", err
	}
	return path, nil
}
