package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jrsteele09/vinnote-client/internal/errors"
	"github.com/jrsteele09/vinnote-client/users"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
)

const (
	DefaultBaseURL = "https://vinnote-api.up.railway.app/api/v1"

	contentTypeJSON = "application/json"
	requestIDHeader = "X-Request-ID"
	maxErrorBody    = 1 << 20
)

// TokenSource supplies the bearer token attached to each request. An empty token means
// the request goes out unauthenticated.
type TokenSource interface {
	AccessToken(ctx context.Context) (string, error)
}

// Client is the typed gateway to the VinNote REST API.
type Client struct {
	baseURL    string
	tokens     TokenSource
	httpClient *http.Client
	userAgent  string
	logger     zerolog.Logger
}

// ClientOption defines a function type to modify the Client instance.
type ClientOption func(*Client)

// WithHTTPClient replaces http.DefaultClient.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

func WithLogger(logger zerolog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

func WithUserAgent(ua string) ClientOption {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// New creates a Client for baseURL (for example DefaultBaseURL).
func New(baseURL string, tokens TokenSource, options ...ClientOption) (*Client, error) {
	if baseURL == "" {
		return nil, errors.New("[api.New] baseURL is required")
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("[api.New] invalid baseURL: %w", err)
	}
	if tokens == nil {
		return nil, errors.New("[api.New] token source is required")
	}

	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		tokens:     tokens,
		httpClient: http.DefaultClient,
		userAgent:  "vinnote-client",
		logger:     log.Logger,
	}
	for _, opt := range options {
		opt(c)
	}
	c.logger = c.logger.With().Str("component", "api").Logger()
	return c, nil
}

func (c *Client) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	return request[AuthResponse](ctx, c, http.MethodPost, "/auth/login", req)
}

func (c *Client) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	return request[AuthResponse](ctx, c, http.MethodPost, "/auth/register", req)
}

func (c *Client) Refresh(ctx context.Context, refreshToken string) (*AuthResponse, error) {
	return request[AuthResponse](ctx, c, http.MethodPost, "/auth/refresh", RefreshRequest{RefreshToken: refreshToken})
}

// Logout invalidates refreshToken server side. The endpoint answers 204.
func (c *Client) Logout(ctx context.Context, refreshToken string) error {
	_, err := request[struct{}](ctx, c, http.MethodPost, "/auth/logout", RefreshRequest{RefreshToken: refreshToken})
	return err
}

func (c *Client) GetMe(ctx context.Context) (*users.Profile, error) {
	return request[users.Profile](ctx, c, http.MethodGet, "/users/me", nil)
}

func (c *Client) GetFeed(ctx context.Context, q FeedQuery) (*FeedResponse, error) {
	params := url.Values{}
	if q.Cursor != "" {
		params.Set("cursor", q.Cursor)
	}
	if q.Limit > 0 {
		params.Set("limit", strconv.Itoa(q.Limit))
	}

	path := "/feed"
	if encoded := params.Encode(); encoded != "" {
		path += "?" + encoded
	}
	return request[FeedResponse](ctx, c, http.MethodGet, path, nil)
}

// request performs one JSON round trip. A {"data": ...} envelope is unwrapped, a 204 or
// empty body yields the zero value, any non-2xx status becomes an *APIError.
func request[T any](ctx context.Context, c *Client, method, path string, body any) (*T, error) {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("[api.request] marshal %s %s: %w", method, path, err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("[api.request] building %s %s: %w", method, path, err)
	}

	requestID := uuid.New().String()
	req.Header.Set("Content-Type", contentTypeJSON)
	req.Header.Set("Accept", contentTypeJSON)
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set(requestIDHeader, requestID)

	token, err := c.tokens.AccessToken(ctx)
	if err != nil {
		return nil, errors.Wrapf(err, "[api.request] reading access token")
	}
	if token != "" {
		(&oauth2.Token{AccessToken: token}).SetAuthHeader(req)
	}

	logger := c.logger.With().Str("method", method).Str("path", path).Str("request_id", requestID).Logger()
	start := time.Now()

	res, err := c.httpClient.Do(req)
	if err != nil {
		logger.Debug().Err(err).Msg("transport failure")
		return nil, fmt.Errorf("%w: %s %s: %w", errors.ErrNetwork, method, path, err)
	}
	defer res.Body.Close()

	logger.Debug().Int("status", res.StatusCode).Dur("elapsed", time.Since(start)).Msg("response")

	if res.StatusCode < 200 || res.StatusCode > 299 {
		data, _ := io.ReadAll(io.LimitReader(res.Body, maxErrorBody))
		return nil, newAPIError(res.StatusCode, data)
	}

	out := new(T)
	if res.StatusCode == http.StatusNoContent {
		return out, nil
	}

	data, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s %s: %w", errors.ErrNetwork, method, path, err)
	}
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return out, nil
	}

	if err := json.Unmarshal(unwrapEnvelope(data), out); err != nil {
		return nil, errors.Wrapf(errors.ErrInvalidPayload, "[api.request] decoding %s %s: %v", method, path, err)
	}
	return out, nil
}

// unwrapEnvelope returns the "data" member when data is an object that has one.
func unwrapEnvelope(data []byte) []byte {
	if len(data) == 0 || data[0] != '{' {
		return data
	}
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(data, &envelope); err != nil {
		return data
	}
	if inner, ok := envelope["data"]; ok {
		return inner
	}
	return data
}
