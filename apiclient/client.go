// Package apiclient is the HTTP client for the storefront backend.
//
// Every call goes through Client.Do. A 401 on a protected endpoint parks the
// call behind a single shared refresh of the session cookie and replays it
// once the refresh succeeds. Calls that fail for any other reason come back
// as *ApplicationError or *TransportError carrying a user-facing message.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jrsteele09/go-storefront-client/guard"
	"github.com/jrsteele09/go-storefront-client/internal/logger"
	"github.com/jrsteele09/go-storefront-client/internal/metrics"
	"github.com/jrsteele09/go-storefront-client/refresh"
	"github.com/jrsteele09/go-storefront-client/sessions"
	"github.com/rs/zerolog"
)

const (
	DefaultRefreshPath = "/user/refresh_access_token"
	DefaultTimeout     = 15 * time.Second

	RequestIDHeader = "X-Request-ID"
)

// Client talks to the storefront backend on behalf of one session.
type Client struct {
	baseURL     string
	httpClient  *http.Client
	timeout     time.Duration
	logger      zerolog.Logger
	session     *sessions.Store
	coordinator *refresh.Coordinator
	nav         guard.Navigator
	public      PublicEndpoints
	refreshPath string
	classify    Classifier
	headers     http.Header
}

// Request describes one backend call. Body, when non-nil, is JSON encoded
// once so that a replay sends exactly the same bytes.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Body   any
}

// New returns a Client for the backend at baseURL. A nil session gets an
// unpersisted store and a nil coordinator gets a fresh one bounded by
// refresh.DefaultTimeout. The coordinator owns the refresh deadline.
func New(baseURL string, session *sessions.Store, coordinator *refresh.Coordinator, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("base url %q must be absolute", baseURL)
	}

	c := &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		timeout:     DefaultTimeout,
		logger:      logger.Get().With().Str("component", "apiclient").Logger(),
		session:     session,
		coordinator: coordinator,
		public:      DefaultPublicEndpoints,
		refreshPath: DefaultRefreshPath,
		classify:    DefaultClassifier,
		headers:     make(http.Header),
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.session == nil {
		c.session = sessions.NewStore(context.Background(), nil, sessions.WithLogger(c.logger))
	}
	if c.coordinator == nil {
		c.coordinator = refresh.New(refresh.DefaultTimeout)
	}
	if c.classify == nil {
		c.classify = DefaultClassifier
	}
	if c.httpClient == nil {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, fmt.Errorf("create cookie jar: %w", err)
		}
		c.httpClient = &http.Client{
			Jar:     jar,
			Timeout: c.timeout,
		}
	}
	return c, nil
}

// Session returns the store this client keeps in step with the backend.
func (c *Client) Session() *sessions.Store {
	return c.session
}

func (c *Client) Coordinator() *refresh.Coordinator {
	return c.coordinator
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

// Do sends req. A 401 on a protected endpoint triggers at most one refresh
// wait and one replay; a replay rejected again fails with that 401.
func (c *Client) Do(ctx context.Context, req *Request) (*Envelope, error) {
	if req == nil {
		return nil, fmt.Errorf("nil request")
	}
	method := req.Method
	if method == "" {
		method = http.MethodGet
	}

	var payload []byte
	if req.Body != nil {
		b, err := json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		payload = b
	}

	requestID := uuid.New().String()
	retried := false
	for {
		seen := c.coordinator.Generation()
		env, status, err := c.send(ctx, method, req.Path, req.Query, payload, requestID)
		if err == nil {
			return env, nil
		}
		if status != http.StatusUnauthorized || retried || c.public.Match(method, req.Path) {
			return nil, err
		}
		retried = true

		if err := c.coordinator.AwaitNotify(ctx, seen, c.refreshSession, c.queued); err != nil {
			return nil, err
		}
		metrics.ReplaysTotal.Inc()
		c.logger.Debug().Str("method", method).Str("path", req.Path).Str("request_id", requestID).Msg("Replaying request")
	}
}

func (c *Client) Get(ctx context.Context, path string, query url.Values) (*Envelope, error) {
	return c.Do(ctx, &Request{Method: http.MethodGet, Path: path, Query: query})
}

func (c *Client) Post(ctx context.Context, path string, body any) (*Envelope, error) {
	return c.Do(ctx, &Request{Method: http.MethodPost, Path: path, Body: body})
}

func (c *Client) Patch(ctx context.Context, path string, body any) (*Envelope, error) {
	return c.Do(ctx, &Request{Method: http.MethodPatch, Path: path, Body: body})
}

func (c *Client) Put(ctx context.Context, path string, body any) (*Envelope, error) {
	return c.Do(ctx, &Request{Method: http.MethodPut, Path: path, Body: body})
}

func (c *Client) Delete(ctx context.Context, path string) (*Envelope, error) {
	return c.Do(ctx, &Request{Method: http.MethodDelete, Path: path})
}

func (c *Client) queued() {
	metrics.QueuedTotal.Inc()
	c.logger.Debug().Msg("Request queued behind refresh")
}

// send performs a single round trip. status is 0 for transport failures.
func (c *Client) send(ctx context.Context, method, path string, query url.Values, payload []byte, requestID string) (*Envelope, int, error) {
	target := c.baseURL + normalisePath(path)
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	httpReq, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, 0, &TransportError{Message: err.Error(), Err: err}
	}
	for k, vs := range c.headers {
		for _, v := range vs {
			httpReq.Header.Add(k, v)
		}
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set(RequestIDHeader, requestID)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		metrics.RequestsTotal.WithLabelValues(method, metrics.StatusClass(0)).Inc()
		return nil, 0, &TransportError{Message: err.Error(), Err: err}
	}
	defer resp.Body.Close()
	metrics.RequestsTotal.WithLabelValues(method, metrics.StatusClass(resp.StatusCode)).Inc()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, &TransportError{Message: err.Error(), Err: err}
	}

	env, structured := parseEnvelope(raw)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		appErr := &ApplicationError{
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("Request failed with status code %d", resp.StatusCode),
		}
		if structured {
			appErr.Envelope = env
			if env.Message != "" {
				appErr.Message = env.Message
			}
		}
		return nil, resp.StatusCode, appErr
	}

	if !structured {
		if len(bytes.TrimSpace(raw)) > 0 {
			return nil, resp.StatusCode, &TransportError{
				Message: "invalid response body",
				Err:     fmt.Errorf("%s %s: response is not a JSON object", method, path),
			}
		}
		env = &Envelope{Success: true}
	}
	if env.StatusCode == 0 {
		env.StatusCode = resp.StatusCode
	}
	return env, resp.StatusCode, nil
}
