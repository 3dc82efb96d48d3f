package dispatch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"shiftwalk/internal/logging"
)

// Method selects the HTTP verb for an API call. Only GET and POST exist on
// the Dispatch wire contract.
type Method int

const (
	MethodGet Method = iota
	MethodPost
)

func (m Method) String() string {
	switch m {
	case MethodPost:
		return http.MethodPost
	default:
		return http.MethodGet
	}
}

const (
	apiPrefix        = "/api/1.0/"
	defaultUserAgent = "shiftwalk/0.1"
	defaultTimeout   = 30 * time.Second
)

// Client provides access to the Dispatch API.
type Client struct {
	baseURL    string
	apiKey     string
	site       int
	userAgent  string
	httpClient *http.Client
	logger     *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithTimeout overrides the default request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient.Timeout = timeout
		}
	}
}

// WithUserAgent overrides the User-Agent header sent on every request.
func WithUserAgent(agent string) Option {
	return func(c *Client) {
		if agent = strings.TrimSpace(agent); agent != "" {
			c.userAgent = agent
		}
	}
}

// WithLogger attaches a structured logger for request tracing.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logging.NewComponentLogger(logger, "dispatch")
		}
	}
}

// New creates a Dispatch API client. baseURL carries scheme and host; every
// request is scoped to the given site number except the sites listing
// itself.
func New(baseURL, apiKey string, site int, opts ...Option) (*Client, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("dispatch base url required")
	}
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("dispatch api key required")
	}
	if site < 1 {
		return nil, errors.New("dispatch site must be positive")
	}
	parsed, err := url.Parse(baseURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("dispatch base url %q must include scheme and host", baseURL)
	}

	client := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		site:       site,
		userAgent:  defaultUserAgent,
		httpClient: &http.Client{Timeout: defaultTimeout},
		logger:     logging.NewNop(),
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// Site returns the site number the client scopes requests to.
func (c *Client) Site() int { return c.site }

// Send issues one API call and validates the response envelope. The call
// blocks until the response or a transport failure arrives; there are no
// retries, and any failure is returned as one of the typed errors in this
// package.
func (c *Client) Send(ctx context.Context, method Method, path string, params Params) (*Envelope, error) {
	started := time.Now()
	env, err := c.do(ctx, method, path, params)
	latency := time.Since(started)

	log := logging.WithContext(ctx, c.logger)
	if err != nil {
		log.Debug("api call failed",
			logging.String("method", method.String()),
			logging.String(logging.FieldResource, path),
			logging.Duration("latency", latency),
			logging.Error(err))
		return nil, err
	}
	log.Debug("api call complete",
		logging.String("method", method.String()),
		logging.String(logging.FieldResource, path),
		logging.Duration("latency", latency))
	return env, nil
}

// Get issues a GET call with params encoded into the query string.
func (c *Client) Get(ctx context.Context, path string, params Params) (*Envelope, error) {
	return c.Send(ctx, MethodGet, path, params)
}

// PostForm issues a POST call with params form-encoded into the body.
func (c *Client) PostForm(ctx context.Context, path string, params Params) (*Envelope, error) {
	return c.Send(ctx, MethodPost, path, params)
}

func (c *Client) do(ctx context.Context, method Method, path string, params Params) (*Envelope, error) {
	if method != MethodGet && method != MethodPost {
		return nil, fmt.Errorf("unsupported method %d", int(method))
	}

	endpoint, err := url.Parse(c.baseURL + path)
	if err != nil {
		return nil, fmt.Errorf("parse request url: %w", err)
	}

	// The auth key rides on every call, ahead of the caller's parameters.
	all := make(Params, 0, len(params)+1)
	all = append(all, Param{Name: "auth", Value: c.apiKey})
	all = append(all, params...)
	encoded := all.Encode()

	var body io.Reader
	if method == MethodPost {
		body = strings.NewReader(encoded)
	} else {
		endpoint.RawQuery = encoded
	}

	req, err := http.NewRequestWithContext(ctx, method.String(), endpoint.String(), body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	if method == MethodPost {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	defer resp.Body.Close()

	// Status precedes body parsing: a non-200 body may not be JSON.
	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, &StatusError{Code: resp.StatusCode, Snippet: snippet(raw)}
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Err: fmt.Errorf("read response body: %w", err)}
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, &EmptyBodyError{}
	}

	env, err := parseEnvelope(raw)
	if err != nil {
		return nil, err
	}
	if !env.Success {
		return nil, &APIError{Message: env.ErrorText()}
	}
	return env, nil
}

// resourcePath builds /api/1.0/<resource>/ with optional trailing id
// segments, each slash-terminated per the wire contract.
func resourcePath(resource string, ids ...int64) string {
	var b strings.Builder
	b.WriteString(apiPrefix)
	b.WriteString(resource)
	b.WriteByte('/')
	for _, id := range ids {
		b.WriteString(strconv.FormatInt(id, 10))
		b.WriteByte('/')
	}
	return b.String()
}
