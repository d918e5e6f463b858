package dir

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

const sample = "From: Supply <supply@utair.ru>\r\n" +
	"Subject: AOG\r\n" +
	"Date: Tue, 14 May 2024 09:30:00 +0300\r\n" +
	"Message-ID: <m1@utair.ru>\r\n" +
	"Content-Type: text/plain\r\n" +
	"\r\n" +
	"642-1000-505 AIR INLET 1 EA\r\n"

func TestFetchInboxMovesFiles(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "a.eml"), []byte(sample), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, "b.eml"), []byte("not really a message"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, "notes.txt"), []byte("ignored"), 0o644); err != nil {
		t.Fatal(err)
	}

	c := NewConnector(root)
	msgs, err := c.FetchInbox(context.Background(), "INBOX", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(msgs) != 2 {
		t.Fatalf("len=%d", len(msgs))
	}
	if msgs[0].MessageID != "m1@utair.ru" || msgs[0].Subject != "AOG" || msgs[0].ReceivedAt != "2024-05-14T06:30:00Z" {
		t.Fatalf("msg=%+v", msgs[0])
	}
	if msgs[1].MessageID == "" || msgs[1].Provider != "dir" {
		t.Fatalf("msg=%+v", msgs[1])
	}

	if _, err := os.Stat(filepath.Join(root, doneDir, "a.eml")); err != nil {
		t.Fatal(err)
	}
	again, err := c.FetchInbox(context.Background(), "", 10)
	if err != nil || len(again) != 0 {
		t.Fatalf("again=%d err=%v", len(again), err)
	}
}

func TestFetchInboxMissingFolder(t *testing.T) {
	msgs, err := NewConnector(t.TempDir()).FetchInbox(context.Background(), "archive", 10)
	if err != nil || msgs != nil {
		t.Fatalf("msgs=%v err=%v", msgs, err)
	}
}
