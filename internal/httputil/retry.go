// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides the HTTP retry helpers used by the downloader.
package httputil

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"time"
)

// RetryBaseDelay controls the base duration for exponential backoff on
// HTTP 429 responses. Tests override this to avoid real sleeps.
var RetryBaseDelay = 10 * time.Second

const defaultMaxRetries = 5

// DoWithRetry executes an HTTP request and retries on HTTP 429 (Too Many
// Requests) with exponential backoff starting at RetryBaseDelay.
//
// When maxRetries is 0 the default (5) is used. If the context is cancelled
// during a backoff wait the function returns ctx.Err(). After exhausting
// retries the last 429 response is returned so the caller can inspect it.
func DoWithRetry(ctx context.Context, client *http.Client, req *http.Request, maxRetries int) (*http.Response, error) {
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}

	for attempt := 0; ; attempt++ {
		resp, err := client.Do(req.Clone(ctx))
		if err != nil {
			return nil, err
		}
		if resp.StatusCode != http.StatusTooManyRequests || attempt >= maxRetries {
			return resp, nil
		}

		drain(resp)

		backoff := time.Duration(math.Pow(2, float64(attempt))) * RetryBaseDelay
		if err := sleep(ctx, backoff); err != nil {
			return nil, err
		}
	}
}

// StatusError reports a response with an unexpected status code.
type StatusError struct {
	URL  string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d from %s", e.Code, e.URL)
}

// Policy configures Fetch.
type Policy struct {
	// Retries is the number of extra attempts after a failure.
	Retries int

	// Delay is the fixed pause between attempts.
	Delay time.Duration

	// OnRetry, when set, is called before each pause with the 1-based
	// attempt that failed and its error.
	OnRetry func(attempt int, err error)
}

// Fetch executes req and retries with a fixed delay on transport errors
// and on any status other than 200. Rate limiting (429) is first absorbed
// by DoWithRetry. On success the caller owns the response body. After the
// last failed attempt the error is returned; a status failure is a
// *StatusError.
func Fetch(ctx context.Context, client *http.Client, req *http.Request, p Policy) (*http.Response, error) {
	var lastErr error
	for attempt := 0; attempt <= p.Retries; attempt++ {
		if attempt > 0 {
			if p.OnRetry != nil {
				p.OnRetry(attempt, lastErr)
			}
			if err := sleep(ctx, p.Delay); err != nil {
				return nil, err
			}
		}

		resp, err := DoWithRetry(ctx, client, req, 0)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = err
			continue
		}
		if resp.StatusCode == http.StatusOK {
			return resp, nil
		}
		drain(resp)
		lastErr = &StatusError{URL: req.URL.String(), Code: resp.StatusCode}
	}
	return nil, lastErr
}

// IsStatus reports whether err is a *StatusError with the given code.
func IsStatus(err error, code int) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Code == code
}

func drain(resp *http.Response) {
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
}

func sleep(ctx context.Context, d time.Duration) error {
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
