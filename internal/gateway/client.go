// Package gateway is the thin JSON client between the storefront and the
// remote REST backend. It attaches the bearer token to every request and
// purges the session on an authorization failure; it deliberately does not
// decide what happens after a purge.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/parampare/storefront/internal/session"
	apperrors "github.com/parampare/storefront/pkg/errors"
	"github.com/parampare/storefront/pkg/httpclient"
	"github.com/parampare/storefront/pkg/tracing"
)

// Doer executes a prepared HTTP request. Satisfied by both
// httpclient.Client and httpclient.CircuitBreakerClient.
type Doer interface {
	Do(ctx context.Context, req *http.Request) (*http.Response, error)
}

// Client issues JSON requests against the backend's /api base path.
type Client struct {
	base   string
	http   Doer
	sess   *session.Session
	logger *slog.Logger
}

// New creates a gateway client. baseURL is the backend origin
// (e.g. "http://localhost:5000"); the /api prefix is appended here.
func New(baseURL string, doer Doer, sess *session.Session, logger *slog.Logger) *Client {
	return &Client{
		base:   strings.TrimRight(baseURL, "/") + "/api",
		http:   doer,
		sess:   sess,
		logger: logger,
	}
}

// Get issues a GET request and decodes the response into out (if non-nil).
func (c *Client) Get(ctx context.Context, path string, query url.Values, out any) error {
	return c.do(ctx, http.MethodGet, path, query, nil, out)
}

// Post issues a POST request with a JSON body.
func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPost, path, nil, body, out)
}

// Put issues a PUT request with a JSON body.
func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPut, path, nil, body, out)
}

// Delete issues a DELETE request. body may be nil; the cart removal endpoint
// carries its payload in the DELETE body.
func (c *Client) Delete(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodDelete, path, nil, body, out)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	u := c.base + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reqBody io.Reader = http.NoBody
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(raw)
	}

	ctx, span := tracing.Tracer("gateway").Start(ctx, method+" "+path)
	defer span.End()
	span.SetAttributes(
		attribute.String("http.method", method),
		attribute.String("http.path", path),
	)

	req, err := http.NewRequestWithContext(ctx, method, u, reqBody)
	if err != nil {
		return fmt.Errorf("create %s request: %w", method, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.sess.Token(ctx); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(ctx, req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "request failed")
		return err
	}
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	if resp.StatusCode == http.StatusUnauthorized {
		// Drop the stale session; navigation is the caller's problem.
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
		c.sess.Purge(ctx)
		c.logger.WarnContext(ctx, "session purged after 401",
			slog.String("method", method),
			slog.String("path", path),
		)
		return apperrors.Unauthorized("session expired")
	}

	if resp.StatusCode >= 400 {
		err := httpclient.ParseResponseError(resp, method+" "+path)
		span.RecordError(err)
		return err
	}

	defer resp.Body.Close()
	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}

	if err := json.NewDecoder(io.LimitReader(resp.Body, 8<<20)).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s response: %w", method, path, err)
	}
	return nil
}
