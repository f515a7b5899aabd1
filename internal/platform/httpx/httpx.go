package httpx

import (
	"context"
	"errors"
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// RetryPolicy is the retry budget of a Client. Only listed statuses and methods
// are retried.
type RetryPolicy struct {
	MaxRetries      int
	BackoffFactor   float64
	MaxBackoff      time.Duration
	StatusForcelist []int
	AllowedMethods  []string
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxRetries:      4,
		BackoffFactor:   1.5,
		MaxBackoff:      120 * time.Second,
		StatusForcelist: []int{http.StatusTooManyRequests, 500, 502, 503, 504},
		AllowedMethods:  []string{http.MethodPost, http.MethodGet},
	}
}

func (p RetryPolicy) retriesMethod(method string) bool {
	for _, m := range p.AllowedMethods {
		if strings.EqualFold(m, method) {
			return true
		}
	}
	return false
}

func (p RetryPolicy) retriesStatus(code int) bool {
	for _, c := range p.StatusForcelist {
		if c == code {
			return true
		}
	}
	return false
}

// Backoff returns the sleep before retry n (1-based): factor * 2^(n-1), capped.
func (p RetryPolicy) Backoff(n int) time.Duration {
	if n < 1 || p.BackoffFactor <= 0 {
		return 0
	}
	secs := p.BackoffFactor * math.Pow(2, float64(n-1))
	d := time.Duration(secs * float64(time.Second))
	if p.MaxBackoff > 0 && d > p.MaxBackoff {
		d = p.MaxBackoff
	}
	return d
}

// IsRetryableError reports whether a round-trip error is a network-level failure worth
// retrying. Caller cancellation is never retried.
func IsRetryableError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	var opErr *net.OpError
	return errors.As(err, &opErr)
}

// RetryAfterDuration honors a numeric Retry-After header, falling back otherwise.
func RetryAfterDuration(resp *http.Response, fallback, max time.Duration) time.Duration {
	sleepFor := fallback
	if resp != nil {
		if ra := strings.TrimSpace(resp.Header.Get("Retry-After")); ra != "" {
			if secs, err := strconv.Atoi(ra); err == nil && secs > 0 {
				sleepFor = time.Duration(secs) * time.Second
			}
		}
	}
	if max > 0 && sleepFor > max {
		sleepFor = max
	}
	return sleepFor
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
