package monitor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httputil"

	"github.com/kiritoko1029/glmcode/internal/window"
	"github.com/rs/zerolog"
)

type Client struct {
	httpClient *http.Client
	authToken  string
	logger     zerolog.Logger
}

// NewClient returns a client for the monitor API. Requests carry no timeout of
// their own; callers bound them through the context.
func NewClient(authToken string, logger zerolog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{},
		authToken:  authToken,
		logger:     logger,
	}
}

// StatusError is returned when the API answers with anything but 200.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d\n%s", e.StatusCode, e.Body)
}

// IsStatus reports whether err is a StatusError with the given code.
func IsStatus(err error, code int) bool {
	var se *StatusError
	return errors.As(err, &se) && se.StatusCode == code
}

func (c *Client) logRequest(req *http.Request) {
	if c.logger.GetLevel() > zerolog.DebugLevel {
		return
	}
	req.Header.Set("Authorization", "<redacted>")
	dump, _ := httputil.DumpRequestOut(req, false)
	req.Header.Set("Authorization", c.authToken)
	c.logger.Debug().Str("method", req.Method).Str("url", req.URL.String()).Msg(string(dump))
}

func (c *Client) logResponse(resp *http.Response, body []byte) {
	c.logger.Debug().
		Str("url", resp.Request.URL.String()).
		Int("status", resp.StatusCode).
		Int("bytes", len(body)).
		Msg(string(body))
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Authorization", c.authToken)
	req.Header.Set("Accept-Language", "en-US,en")
	req.Header.Set("Content-Type", "application/json")
}

// Get performs a GET against urlStr and returns the complete body of a 200
// response.
func (c *Client) Get(ctx context.Context, urlStr string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, urlStr, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	c.setHeaders(req)
	c.logRequest(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	c.logResponse(resp, body)

	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	return body, nil
}

// GetQuotaLimit fetches and decodes the quota/limit endpoint.
func (c *Client) GetQuotaLimit(ctx context.Context, urlStr string) (*QuotaLimitResponse, error) {
	body, err := c.Get(ctx, urlStr)
	if err != nil {
		return nil, err
	}

	var result QuotaLimitResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("decode quota limit: %w", err)
	}
	return &result, nil
}

// GetModelPerformance fetches decode speed and success rate samples for w.
func (c *Client) GetModelPerformance(ctx context.Context, urlStr string, w window.Window) (*ModelPerformance, error) {
	body, err := c.Get(ctx, urlStr+w.Query())
	if err != nil {
		return nil, err
	}

	perf, err := DecodeModelPerformance(body)
	if err != nil {
		return nil, fmt.Errorf("decode model performance: %w", err)
	}
	return perf, nil
}
