// Package api talks to the FitTrack REST backend. Every call is attempted
// once; when the backend cannot be used the caller gets demo data marked
// Degraded instead of an error.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/franckalain/fittrack/internal/session"
	"github.com/franckalain/fittrack/internal/vision"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// DefaultBaseURL is where the backend listens in development.
const DefaultBaseURL = "http://localhost:5000/api"

// DefaultTimeout bounds a single request.
const DefaultTimeout = 15 * time.Second

// StatusError is returned for non-2xx responses.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP error! status: %d", e.Code)
}

// Client is safe for concurrent use.
type Client struct {
	baseURL  string
	http     *http.Client
	session  *session.Session
	analyzer vision.Analyzer
	metrics  *Metrics
	log      zerolog.Logger
	now      func() time.Time
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithLogger sets the logger.
func WithLogger(log zerolog.Logger) Option {
	return func(c *Client) { c.log = log }
}

// WithAnalyzer sets the local analyzer tried before demo data when the
// backend cannot analyze a meal.
func WithAnalyzer(a vision.Analyzer) Option {
	return func(c *Client) { c.analyzer = a }
}

// WithClock overrides time.Now, used to date fallback data.
func WithClock(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

// New returns a client for the backend at baseURL. The session supplies
// the bearer token and receives it on login.
func New(baseURL string, sess *session.Session, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if sess == nil {
		sess = session.New(nil)
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: DefaultTimeout},
		session: sess,
		log:     zerolog.Nop(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Session returns the session the client authenticates with.
func (c *Client) Session() *session.Session { return c.session }

func (c *Client) today() string {
	return c.now().Format("2006-01-02")
}

func (c *Client) newRequest(ctx context.Context, method, path string, query url.Values, body io.Reader, contentType string) (*http.Request, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, errors.Wrapf(err, "build %s %s", method, path)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token := c.session.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req, nil
}

func (c *Client) jsonRequest(ctx context.Context, method, path string, payload any) (*http.Request, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, errors.Wrap(err, "encode request")
	}
	return c.newRequest(ctx, method, path, nil, bytes.NewReader(raw), "application/json")
}

// send performs req and decodes a 2xx body into out.
func (c *Client) send(req *http.Request, out any) error {
	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return errors.Wrap(err, "request failed")
	}
	defer resp.Body.Close()

	c.log.Debug().
		Str("method", req.Method).
		Str("path", req.URL.Path).
		Str("request_id", req.Header.Get("X-Request-ID")).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("backend call")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &StatusError{Code: resp.StatusCode, Body: string(body)}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Wrap(err, "decode response")
	}
	return nil
}

// call runs one request and applies the fallback policy: a cancelled
// context fails, any other failure yields fallback data as Degraded.
func call[T any](ctx context.Context, c *Client, op string, req *http.Request, fallback func() T) (res Result[T]) {
	start := time.Now()
	defer func() { c.metrics.observe(op, res.Status, start) }()
	var out T
	err := c.send(req, &out)
	if err == nil {
		return OK(out)
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return Failed[T](errors.Wrap(ctxErr, op))
	}
	c.log.Warn().Stack().Err(err).Str("op", op).Msg("backend unavailable, using demo data")
	return Degraded(fallback(), errors.Wrap(err, op))
}
