// Package remote provides a client for the spreadsheet-backed order API.
//
// The API is a single endpoint selected by an "action" parameter. Reads are
// GET requests with ?action=...; writes are POST requests carrying a JSON body
// with an "action" field. Every response is an envelope
// {"success": bool, "data": ..., "error": "..."}.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/R3E-Network/lab_order/internal/app/metrics"
	"github.com/R3E-Network/lab_order/pkg/logger"
)

// Action selects the operation performed by the remote store.
type Action string

const (
	ActionGetProducts   Action = "getProducts"
	ActionGetMembers    Action = "getMembers"
	ActionGetOrders     Action = "getOrders"
	ActionSaveProduct   Action = "saveProduct"
	ActionSaveMember    Action = "saveMember"
	ActionDeleteProduct Action = "deleteProduct"
	ActionDeleteMember  Action = "deleteMember"
	ActionCreateOrder   Action = "createOrder"
)

// RequestIDHeader carries the per-call correlation id.
const RequestIDHeader = "X-Request-ID"

const maxBodyBytes = 8 << 20

// Client is a remote store client. It is safe for concurrent use.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	retry      RetryConfig
	log        *logger.Logger
}

// Config holds client configuration.
type Config struct {
	BaseURL string
	// Timeout bounds a single HTTP exchange. Zero means 30s.
	Timeout time.Duration
	// HTTPClient overrides the default client; Timeout is ignored when set.
	HTTPClient *http.Client
	// RateLimit caps outbound calls per second. Zero disables throttling.
	RateLimit float64
	Burst     int
	// Retry applies to read actions only.
	Retry  RetryConfig
	Logger *logger.Logger
}

// New creates a new remote store client.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("base URL is required")
	}
	u, err := url.Parse(cfg.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("base URL %q must be absolute", cfg.BaseURL)
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		// Apps Script answers POSTs with a 302 to the result URL; the default
		// redirect policy follows it with a GET, which is what it expects.
		httpClient = &http.Client{Timeout: timeout}
	}

	var limiter *rate.Limiter
	if cfg.RateLimit > 0 {
		burst := cfg.Burst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}

	log := cfg.Logger
	if log == nil {
		log = logger.NewDefault("remote")
	}

	return &Client{
		baseURL:    cfg.BaseURL,
		httpClient: httpClient,
		limiter:    limiter,
		retry:      cfg.Retry,
		log:        log,
	}, nil
}

// BaseURL returns the endpoint the client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// =============================================================================
// Envelope
// =============================================================================

// Response is a decoded response envelope.
type Response struct {
	Success bool
	Error   string
	// Data is the raw "data" member; nil when absent or null.
	Data json.RawMessage
}

// HasData reports whether the envelope carried a non-null data member.
func (r *Response) HasData() bool {
	return len(r.Data) > 0
}

// =============================================================================
// Raw calls
// =============================================================================

// Read performs a GET for action. An envelope with success=false is an
// APIError only when it names an error; a bare success=false is accepted and
// its data (usually absent) is used as is.
func (c *Client) Read(ctx context.Context, action Action) (*Response, error) {
	var (
		resp     *Response
		duration time.Duration
		err      error
	)
	for attempt := 0; attempt <= c.retry.MaxRetries; attempt++ {
		if attempt > 0 {
			if !c.retry.retryable(err) {
				break
			}
			c.log.WithField("action", action).WithField("attempt", attempt).WithError(err).Warn("retrying remote read")
			if werr := c.retry.wait(ctx, attempt); werr != nil {
				return nil, werr
			}
		}
		resp, duration, err = c.call(ctx, action, http.MethodGet, nil)
		if err == nil {
			break
		}
	}
	if err != nil {
		return nil, err
	}
	if !resp.Success && resp.Error != "" {
		return nil, c.apiError(action, resp.Error, duration)
	}
	metrics.RecordRemoteCall(string(action), metrics.OutcomeOK, duration)
	return resp, nil
}

// Write performs a POST for action with payload merged into the body.
// Writes are attempted exactly once.
func (c *Client) Write(ctx context.Context, action Action, payload map[string]any) (*Response, error) {
	body := make(map[string]any, len(payload)+1)
	for k, v := range payload {
		body[k] = v
	}
	body["action"] = string(action)

	resp, duration, err := c.call(ctx, action, http.MethodPost, body)
	if err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, c.apiError(action, resp.Error, duration)
	}
	metrics.RecordRemoteCall(string(action), metrics.OutcomeOK, duration)
	return resp, nil
}

func (c *Client) apiError(action Action, msg string, duration time.Duration) error {
	metrics.RecordRemoteCall(string(action), metrics.OutcomeAPI, duration)
	return &APIError{Action: action, Message: msg}
}

// call performs one HTTP exchange. Only transport failures are recorded here;
// the caller records the outcome once the envelope has been judged.
func (c *Client) call(ctx context.Context, action Action, method string, body any) (*Response, time.Duration, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, 0, err
		}
	}

	requestID := uuid.NewString()
	log := c.log.WithField("action", action).WithField("request_id", requestID)
	start := time.Now()

	req, err := c.newRequest(ctx, action, method, body)
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set(RequestIDHeader, requestID)

	resp, err := c.do(req, action)
	duration := time.Since(start)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, duration, err
		}
		log.WithError(err).WithField("duration", duration).Error("remote call failed")
		metrics.RecordRemoteCall(string(action), metrics.OutcomeTransport, duration)
		return nil, duration, err
	}

	log.WithField("duration", duration).WithField("success", resp.Success).Debug("remote call")
	return resp, duration, nil
}

func (c *Client) newRequest(ctx context.Context, action Action, method string, body any) (*http.Request, error) {
	if method == http.MethodGet {
		reqURL, err := withQuery(c.baseURL, "action", string(action))
		if err != nil {
			return nil, fmt.Errorf("build url: %w", err)
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return nil, fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("Accept", "application/json")
		return req, nil
	}

	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", action, err)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json;charset=utf-8")
	req.Header.Set("Accept", "application/json")
	return req, nil
}

func (c *Client) do(req *http.Request, action Action) (*Response, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctxErr := req.Context().Err(); ctxErr != nil && errors.Is(err, ctxErr) {
			return nil, ctxErr
		}
		return nil, &TransportError{Action: action, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, &TransportError{Action: action, StatusCode: resp.StatusCode, Err: fmt.Errorf("read response: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := strings.TrimSpace(string(body))
		if len(msg) > 256 {
			msg = msg[:256] + "...(truncated)"
		}
		return nil, &TransportError{Action: action, StatusCode: resp.StatusCode, Err: errors.New(msg)}
	}

	env, err := parseEnvelope(body)
	if err != nil {
		return nil, &TransportError{Action: action, StatusCode: resp.StatusCode, Err: err}
	}
	return env, nil
}

func withQuery(base, key, value string) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", err
	}
	q := u.Query()
	q.Set(key, value)
	u.RawQuery = q.Encode()
	return u.String(), nil
}
