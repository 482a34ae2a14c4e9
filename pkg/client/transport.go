package client

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/nikogura/plclient/pkg/logging"
	"github.com/pkg/errors"
)

// get issues one GET and returns the full response body. A concurrency slot is
// held from before the request until the body has been read and closed.
func (c *Client) get(ctx context.Context, rawURL string) (body []byte, err error) {
	logger := logging.WithFields(ctx, "url", rawURL)

	err = c.slots.Acquire(ctx, 1)
	if err != nil {
		err = classify(ctx, err, "waiting for connection slot")
		return body, err
	}
	defer c.slots.Release(1)

	var req *http.Request
	req, err = http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		err = errors.Wrap(err, "failed to create HTTP request")
		return body, err
	}

	req.Header.Set("User-Agent", c.userAgent)

	start := time.Now()

	var resp *http.Response
	resp, err = c.httpClient.Do(req)
	if err != nil {
		err = classify(ctx, err, "HTTP request failed")
		return body, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, resp.Body)
		logger.Debug("request rejected", "status", resp.StatusCode, "duration", time.Since(start))
		err = errors.WithStack(&StatusError{URL: rawURL, StatusCode: resp.StatusCode})
		return body, err
	}

	body, err = io.ReadAll(resp.Body)
	if err != nil {
		body = nil
		err = classify(ctx, err, "failed to read response body")
		return body, err
	}

	logger.Debug("request complete", "status", resp.StatusCode, "bytes", len(body), "duration", time.Since(start))

	return body, err
}
