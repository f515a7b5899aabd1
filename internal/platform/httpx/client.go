package httpx

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/yungbote/studyplan-backend/internal/platform/logger"
)

type Options struct {
	// ConnectTimeout bounds dialing and the TLS handshake.
	ConnectTimeout time.Duration
	// ReadTimeout bounds the wait for response headers and the body read of one attempt.
	ReadTimeout time.Duration
	Retry       RetryPolicy
	// Transport overrides the dialing transport; tests use it to avoid the network.
	Transport http.RoundTripper
}

// Response is a fully read HTTP response.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
	// Attempts counts round trips made, including the final one.
	Attempts int
}

// Client is an explicitly owned HTTP session with a retry policy.
// It holds no per-call state and is safe for concurrent use.
type Client struct {
	http   *http.Client
	policy RetryPolicy
	read   time.Duration
	log    *logger.Logger
	sleep  func(ctx context.Context, d time.Duration) error
}

func New(opts Options, log *logger.Logger) *Client {
	connect := opts.ConnectTimeout
	if connect <= 0 {
		connect = 10 * time.Second
	}
	read := opts.ReadTimeout
	if read <= 0 {
		read = 180 * time.Second
	}
	tr := opts.Transport
	if tr == nil {
		tr = &http.Transport{
			Proxy: http.ProxyFromEnvironment,
			DialContext: (&net.Dialer{
				Timeout:   connect,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			ForceAttemptHTTP2:     true,
			MaxIdleConns:          100,
			IdleConnTimeout:       90 * time.Second,
			TLSHandshakeTimeout:   connect,
			ResponseHeaderTimeout: read,
			ExpectContinueTimeout: 1 * time.Second,
		}
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &Client{
		http:   &http.Client{Transport: tr},
		policy: opts.Retry,
		read:   read,
		log:    log.With("service", "HTTPClient"),
		sleep:  sleepCtx,
	}
}

// Do sends req (with body, replayed on every attempt) and retries per the policy.
// A non-2xx status that survives the retry budget is returned as a Response, not an error;
// the returned error is always a network-level failure or caller cancellation.
func (c *Client) Do(req *http.Request, body []byte) (*Response, error) {
	ctx := req.Context()
	retryable := c.policy.retriesMethod(req.Method)

	for attempt := 0; ; attempt++ {
		resp, err := c.once(req, body)
		canRetry := retryable && attempt < c.policy.MaxRetries

		if err != nil {
			if !canRetry || !IsRetryableError(err) || ctx.Err() != nil {
				return nil, err
			}
			wait := c.policy.Backoff(attempt + 1)
			c.log.Warn("HTTP request retrying", "url", req.URL.String(), "attempt", attempt+1, "max_retries", c.policy.MaxRetries, "sleep", wait.String(), "error", err.Error())
			if err := c.sleep(ctx, wait); err != nil {
				return nil, err
			}
			continue
		}

		resp.Attempts = attempt + 1
		if !canRetry || !c.policy.retriesStatus(resp.StatusCode) {
			return resp, nil
		}
		wait := RetryAfterDuration(&http.Response{Header: resp.Header}, c.policy.Backoff(attempt+1), c.policy.MaxBackoff)
		c.log.Warn("HTTP request retrying", "url", req.URL.String(), "attempt", attempt+1, "max_retries", c.policy.MaxRetries, "sleep", wait.String(), "status", resp.StatusCode)
		if err := c.sleep(ctx, wait); err != nil {
			return nil, err
		}
	}
}

func (c *Client) once(req *http.Request, body []byte) (*Response, error) {
	ctx, cancel := context.WithTimeout(req.Context(), c.read)
	defer cancel()

	r := req.Clone(ctx)
	if body != nil {
		r.Body = io.NopCloser(bytes.NewReader(body))
		r.ContentLength = int64(len(body))
		r.GetBody = func() (io.ReadCloser, error) { return io.NopCloser(bytes.NewReader(body)), nil }
	}

	resp, err := c.http.Do(r)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}
	return &Response{StatusCode: resp.StatusCode, Header: resp.Header.Clone(), Body: raw}, nil
}
