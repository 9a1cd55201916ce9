package clockcaster

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/openregatta/timing-sync/internal/platform/logging"
	"github.com/openregatta/timing-sync/internal/usecase"
)

const (
	defaultBaseURL   = "https://pdx.clockcaster.com"
	eventDumpPath    = "/api/eventDump"
	maxResponseBytes = 6 << 20
)

var errClockCasterTransient = crerr.New("clockcaster transient failure")

type ClientConfig struct {
	HTTPClient *http.Client
	BaseURL    string
	Timeout    time.Duration
	MaxRetries int
	Logger     *logging.Logger
}

// Client talks to the ClockCaster timing provider. The eventDump endpoint
// expects a multipart form carrying the event id, not a JSON body.
type Client struct {
	httpClient *http.Client
	baseURL    string
	maxRetries int
	logger     *logging.Logger
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	if httpClient.Timeout <= 0 {
		httpClient.Timeout = 20 * time.Second
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	maxRetries := cfg.MaxRetries
	if maxRetries < 0 {
		maxRetries = 0
	}

	return &Client{
		httpClient: httpClient,
		baseURL:    baseURL,
		maxRetries: maxRetries,
		logger:     logger,
	}
}

// FetchEventDump retrieves the full event payload for one event id. The raw
// response bytes are returned alongside the decoded payload so callers can
// archive exactly what the provider sent.
func (c *Client) FetchEventDump(ctx context.Context, eventID string) (usecase.Payload, []byte, error) {
	eventID = strings.TrimSpace(eventID)
	if eventID == "" {
		return usecase.Payload{}, nil, fmt.Errorf("%w: event id must not be empty", usecase.ErrInvalidInput)
	}

	raw, err := c.executeEventDump(ctx, eventID)
	if err != nil {
		if crerr.Is(err, errClockCasterTransient) {
			return usecase.Payload{}, nil, fmt.Errorf("%w: timing provider is temporarily unavailable: %v", usecase.ErrDependencyUnavailable, err)
		}
		return usecase.Payload{}, nil, err
	}

	var payload usecase.Payload
	if err := sonic.Unmarshal(raw, &payload); err != nil {
		return usecase.Payload{}, nil, fmt.Errorf("decode provider payload event_id=%s: %w", eventID, err)
	}

	return payload, raw, nil
}

func (c *Client) executeEventDump(ctx context.Context, eventID string) ([]byte, error) {
	fullURL := c.baseURL + eventDumpPath

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		body, contentType, err := buildEventDumpForm(eventID)
		if err != nil {
			return nil, fmt.Errorf("build request form: %w", err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, fullURL, body)
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("Content-Type", contentType)
		req.Header.Set("accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("%w: send request: %v", errClockCasterTransient, err)
		} else {
			raw, readErr := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
			_ = resp.Body.Close()
			if readErr != nil {
				lastErr = fmt.Errorf("%w: read response body: %v", errClockCasterTransient, readErr)
			} else if resp.StatusCode >= 200 && resp.StatusCode < 300 {
				return raw, nil
			} else if isRetryableStatus(resp.StatusCode) {
				lastErr = fmt.Errorf("%w: provider status=%d body=%s", errClockCasterTransient, resp.StatusCode, abbreviateBody(raw))
			} else {
				return nil, fmt.Errorf("provider status=%d body=%s", resp.StatusCode, abbreviateBody(raw))
			}
		}

		if attempt == c.maxRetries {
			break
		}
		backoff := time.Duration(attempt+1) * time.Second
		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("provider request failed")
	}
	c.logger.WarnContext(ctx, "clockcaster request failed", "url", fullURL, "event_id", eventID, "error", lastErr)
	return nil, lastErr
}

func buildEventDumpForm(eventID string) (*bytes.Buffer, string, error) {
	buf := &bytes.Buffer{}
	writer := multipart.NewWriter(buf)
	if err := writer.WriteField("eventId", eventID); err != nil {
		return nil, "", err
	}
	if err := writer.Close(); err != nil {
		return nil, "", err
	}
	return buf, writer.FormDataContentType(), nil
}

func isRetryableStatus(status int) bool {
	if status == http.StatusTooManyRequests {
		return true
	}
	return status >= 500
}

func abbreviateBody(raw []byte) string {
	const limit = 256
	text := strings.TrimSpace(string(raw))
	if len(text) > limit {
		return text[:limit] + "..."
	}
	return text
}
