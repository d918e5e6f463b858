package orders

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"golang.org/x/time/rate"

	"partsdesk/internal/config"
	"partsdesk/internal/parts"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func testConfig(baseURL string) config.Config {
	return config.Config{
		OrdersAPIBaseURL:   baseURL,
		OrdersAPIToken:     "test",
		OrdersRateLimitRPS: 1000,
		OrdersTimeoutMs:    5000,
	}
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     make(http.Header),
	}
}

func TestCreateOrderWithRetry(t *testing.T) {
	attempt := 0
	client := NewClient(testConfig("https://example.test/api/v1"))
	client.httpClient = &http.Client{
		Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
			if r.Method != http.MethodPost || r.URL.Path != "/api/v1/orders" {
				t.Fatalf("unexpected %s %s", r.Method, r.URL.Path)
			}
			if r.Header.Get("Authorization") != "Bearer test" {
				t.Fatalf("auth=%q", r.Header.Get("Authorization"))
			}
			attempt++
			if attempt == 1 {
				return jsonResponse(http.StatusServiceUnavailable, `{"error":"busy"}`), nil
			}
			var req CreateRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				t.Fatal(err)
			}
			if req.EmailID != 7 || len(req.Result.Orders) != 1 {
				t.Fatalf("req=%+v", req)
			}
			return jsonResponse(http.StatusOK, `{"success":true,"data":{"id":"ord-42"}}`), nil
		}),
	}

	id, err := client.CreateOrder(context.Background(), CreateRequest{
		EmailID: 7,
		Result: parts.ParsingResult{
			IsAviationRequest: true,
			Orders:            []parts.PartRequestRecord{{PartNumber: "642-1000-505", Quantity: 1, UnitOfMeasure: "EA", AlternatePartNumbers: []string{}}},
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	if id != "ord-42" || attempt != 2 {
		t.Fatalf("id=%q attempt=%d", id, attempt)
	}
}

func TestCreateOrderErrors(t *testing.T) {
	cases := []struct {
		name   string
		status int
		body   string
	}{
		{"client error", http.StatusBadRequest, `{"success":false}`},
		{"unsuccessful", http.StatusOK, `{"success":false,"message":"duplicate"}`},
		{"no id", http.StatusOK, `{"success":true,"data":{}}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			calls := 0
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				calls++
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			client := NewClient(testConfig(srv.URL))
			if _, err := client.CreateOrder(context.Background(), CreateRequest{}); err == nil {
				t.Fatalf("expected error")
			}
			if calls != 1 {
				t.Fatalf("calls=%d", calls)
			}
		})
	}
}

func TestCreateOrderRequiresToken(t *testing.T) {
	cfg := testConfig("https://example.test")
	cfg.OrdersAPIToken = ""
	if _, err := NewClient(cfg).CreateOrder(context.Background(), CreateRequest{}); err == nil {
		t.Fatalf("expected missing token error")
	}
}

func TestCreateOrderCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewClient(testConfig(srv.URL)).CreateOrder(ctx, CreateRequest{}); err == nil {
		t.Fatalf("expected context error")
	}
}

func TestCreateOrderRetryReusesIdempotencyKey(t *testing.T) {
	var (
		mu      sync.Mutex
		keys    []string
		created = map[string]string{}
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Header.Get("Idempotency-Key")
		mu.Lock()
		keys = append(keys, key)
		first := len(keys) == 1
		id, ok := created[key]
		if !ok {
			id = "ord-" + strconv.Itoa(len(created)+1)
			created[key] = id
		}
		mu.Unlock()

		// the first reply arrives after the client has given up
		if first {
			select {
			case <-time.After(300 * time.Millisecond):
			case <-r.Context().Done():
				return
			}
		}
		_, _ = w.Write([]byte(`{"success":true,"data":{"id":"` + id + `"}}`))
	}))
	defer srv.Close()

	cfg := testConfig(srv.URL)
	cfg.OrdersTimeoutMs = 100
	id, err := NewClient(cfg).CreateOrder(context.Background(), CreateRequest{EmailID: 3, IdempotencyKey: "email-3"})
	if err != nil {
		t.Fatal(err)
	}

	mu.Lock()
	defer mu.Unlock()
	if id != "ord-1" || len(created) != 1 {
		t.Fatalf("id=%q created=%v", id, created)
	}
	if len(keys) < 2 {
		t.Fatalf("keys=%v", keys)
	}
	for _, k := range keys {
		if k != "email-3" {
			t.Fatalf("keys=%v", keys)
		}
	}
}

func TestCreateOrderDerivesIdempotencyKey(t *testing.T) {
	var keys []string
	client := NewClient(testConfig("https://example.test"))
	client.httpClient = &http.Client{
		Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
			keys = append(keys, r.Header.Get("Idempotency-Key"))
			return jsonResponse(http.StatusOK, `{"success":true,"data":{"id":"ord-1"}}`), nil
		}),
	}
	req := CreateRequest{EmailID: 9, Subject: "AOG"}
	for i := 0; i < 2; i++ {
		if _, err := client.CreateOrder(context.Background(), req); err != nil {
			t.Fatal(err)
		}
	}
	if keys[0] == "" || keys[0] != keys[1] {
		t.Fatalf("keys=%v", keys)
	}
}

func TestNewLimiter(t *testing.T) {
	cases := map[int]rate.Limit{0: 1, -3: 1, 5: 5}
	for rps, want := range cases {
		if got := newLimiter(rps).Limit(); got != want {
			t.Fatalf("rps=%d limit=%v", rps, got)
		}
	}
}
