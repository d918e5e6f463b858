package orders

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"partsdesk/internal/config"
	"partsdesk/internal/parts"
)

const maxAttempts = 5

// Client posts extracted part requests to the orders API.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	limiter    *rate.Limiter
}

type apiResponse struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Errors  json.RawMessage `json:"errors"`
	Data    json.RawMessage `json:"data"`
}

// CreateRequest is the body of POST /orders: one email's parsing result.
// IdempotencyKey is sent as a header and is the same on every retry; when empty
// a key is derived from the body.
type CreateRequest struct {
	IdempotencyKey string `json:"-"`

	EmailID    int                 `json:"emailId"`
	Sender     string              `json:"sender"`
	Subject    string              `json:"subject"`
	ReceivedAt string              `json:"receivedAt,omitempty"`
	Result     parts.ParsingResult `json:"result"`
}

type createResponse struct {
	ID string `json:"id"`
}

func NewClient(cfg config.Config) *Client {
	return &Client{
		baseURL:    cfg.OrdersAPIBaseURL,
		token:      cfg.OrdersAPIToken,
		httpClient: &http.Client{Timeout: time.Duration(cfg.OrdersTimeoutMs) * time.Millisecond},
		limiter:    newLimiter(cfg.OrdersRateLimitRPS),
	}
}

func newLimiter(requestsPerSecond int) *rate.Limiter {
	if requestsPerSecond <= 0 {
		requestsPerSecond = 1
	}
	return rate.NewLimiter(rate.Limit(requestsPerSecond), 1)
}

// CreateOrder returns the id the API assigned to the request. Retries after a lost reply
// rely on the API deduplicating by Idempotency-Key.
func (c *Client) CreateOrder(ctx context.Context, req CreateRequest) (string, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return "", err
	}
	key := req.IdempotencyKey
	if key == "" {
		key = uuid.NewSHA1(uuid.NameSpaceOID, body).String()
	}
	data, err := c.postJSON(ctx, "orders", key, body)
	if err != nil {
		return "", err
	}
	var out createResponse
	if err := json.Unmarshal(data, &out); err != nil {
		return "", fmt.Errorf("decode orders api response: %w", err)
	}
	if strings.TrimSpace(out.ID) == "" {
		return "", errors.New("orders api returned no id")
	}
	return out.ID, nil
}

func (c *Client) postJSON(ctx context.Context, endpoint, idempotencyKey string, payload []byte) (json.RawMessage, error) {
	if strings.TrimSpace(c.token) == "" {
		return nil, errors.New("missing ORDERS_API_TOKEN")
	}
	if strings.TrimSpace(c.baseURL) == "" {
		return nil, errors.New("missing ORDERS_API_BASE_URL")
	}
	target := strings.TrimRight(c.baseURL, "/") + "/" + endpoint

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewReader(payload))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", "Bearer "+c.token)
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "application/json")
		req.Header.Set("Idempotency-Key", idempotencyKey)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = err
			if err := sleepCtx(ctx, backoff(attempt)); err != nil {
				return nil, err
			}
			continue
		}

		body, readErr := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if readErr != nil {
			lastErr = readErr
			continue
		}

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			if isRetryableStatus(resp.StatusCode) && attempt < maxAttempts {
				lastErr = fmt.Errorf("orders api status %d", resp.StatusCode)
				if err := sleepCtx(ctx, backoff(attempt)); err != nil {
					return nil, err
				}
				continue
			}
			return nil, fmt.Errorf("orders api error: status=%d body=%s", resp.StatusCode, string(body))
		}

		var apiResp apiResponse
		if err := json.Unmarshal(body, &apiResp); err != nil {
			return nil, err
		}
		if !apiResp.Success {
			return nil, fmt.Errorf("orders api unsuccessful: %s %s", apiResp.Message, string(apiResp.Errors))
		}
		return apiResp.Data, nil
	}

	if lastErr == nil {
		lastErr = errors.New("orders request failed")
	}
	return nil, lastErr
}

func backoff(attempt int) time.Duration {
	return time.Duration(250*(1<<(attempt-1))+rand.Intn(100)) * time.Millisecond
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func isRetryableStatus(status int) bool {
	switch status {
	case 429, 500, 502, 503, 504:
		return true
	default:
		return false
	}
}
