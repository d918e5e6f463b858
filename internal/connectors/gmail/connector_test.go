package gmail

import (
	"encoding/base64"
	"testing"
	"time"
)

func TestDecodeBase64URL(t *testing.T) {
	raw := []byte("Subject: hi\r\n\r\nbody?>")
	for _, enc := range []*base64.Encoding{base64.RawURLEncoding, base64.URLEncoding} {
		got, err := decodeBase64URL(enc.EncodeToString(raw))
		if err != nil {
			t.Fatal(err)
		}
		if string(got) != string(raw) {
			t.Fatalf("got %q", got)
		}
	}
	if _, err := decodeBase64URL("***"); err == nil {
		t.Fatalf("expected error")
	}
}

func TestReceivedAt(t *testing.T) {
	now := time.Date(2024, 5, 15, 0, 0, 0, 0, time.UTC)
	cases := map[string]string{
		"Tue, 14 May 2024 09:30:00 +0300":       "2024-05-14T06:30:00Z",
		"14 May 2024 09:30:00 GMT":              "2024-05-14T09:30:00Z",
		"Tue, 14 May 2024 09:30:00 +0300 (MSK)": "2024-05-14T06:30:00Z",
		"":                                      "2024-05-15T00:00:00Z",
		"yesterday":                             "2024-05-15T00:00:00Z",
	}
	for in, want := range cases {
		if got := receivedAt(in, now); got != want {
			t.Fatalf("%q: got %s want %s", in, got, want)
		}
	}
}
