package httpclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/felixgeelhaar/fortify/retry"
	"github.com/felixgeelhaar/fortify/timeout"
	logger "github.com/sirupsen/logrus"
)

const (
	userAgent      = "updatewarden"
	maxAttempts    = 3
	initialDelay   = 200 * time.Millisecond
	requestTimeout = 30 * time.Second
	maxBodyBytes   = 32 << 20
)

// ErrNotFound is returned for 404 and 410 responses. It is never retried.
var ErrNotFound = errors.New("resource not found")

// StatusError is a non-retryable client error response.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: unexpected status %d", e.URL, e.StatusCode)
}

// Client fetches registry documents with retries on transport errors, 429
// and 5xx responses.
type Client struct {
	http        *http.Client
	retryConfig retry.Config
	timeout     time.Duration
}

// New creates a client with the default retry policy.
func New() *Client {
	return &Client{
		http: &http.Client{},
		retryConfig: retry.Config{
			MaxAttempts:   maxAttempts,
			InitialDelay:  initialDelay,
			BackoffPolicy: retry.BackoffExponential,
		},
		timeout: requestTimeout,
	}
}

// Get returns the response body of url. headers may be nil.
func (c *Client) Get(ctx context.Context, url string, headers map[string]string) ([]byte, error) {
	var permanent error
	retryer := retry.New[[]byte](c.retryConfig)
	limiter := timeout.New[[]byte](timeout.Config{DefaultTimeout: c.timeout})

	body, err := limiter.Execute(ctx, c.timeout, func(ctx context.Context) ([]byte, error) {
		return retryer.Do(ctx, func(ctx context.Context) ([]byte, error) {
			data, status, getErr := c.get(ctx, url, headers)
			if getErr != nil {
				logger.Debugf("GET %s failed, retrying: %v", url, getErr)
				return nil, getErr
			}
			switch {
			case status == http.StatusNotFound || status == http.StatusGone:
				permanent = fmt.Errorf("GET %s: %w", url, ErrNotFound)
				return nil, nil
			case status == http.StatusTooManyRequests || status >= http.StatusInternalServerError:
				return nil, fmt.Errorf("GET %s: status %d", url, status)
			case status >= http.StatusBadRequest:
				permanent = &StatusError{URL: url, StatusCode: status}
				return nil, nil
			}
			return data, nil
		})
	})
	if err != nil {
		return nil, err
	}
	if permanent != nil {
		return nil, permanent
	}
	return body, nil
}

// GetJSON decodes the JSON document at url into target.
func (c *Client) GetJSON(ctx context.Context, url string, headers map[string]string, target interface{}) error {
	body, err := c.Get(ctx, url, headers)
	if err != nil {
		return err
	}
	if err = json.Unmarshal(body, target); err != nil {
		return fmt.Errorf("failed to decode %s: %w", url, err)
	}
	return nil
}

func (c *Client) get(ctx context.Context, url string, headers map[string]string) ([]byte, int, error) {
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, 0, err
	}
	request.Header.Set("User-Agent", userAgent)
	request.Header.Set("Accept", "application/json")
	for key, value := range headers {
		request.Header.Set(key, value)
	}

	response, err := c.http.Do(request)
	if err != nil {
		return nil, 0, err
	}
	defer response.Body.Close()

	body, err := io.ReadAll(io.LimitReader(response.Body, maxBodyBytes))
	if err != nil {
		return nil, response.StatusCode, err
	}
	return body, response.StatusCode, nil
}
