package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/go-querystring/query"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/oauth2"

	"github.com/doodlesbykumbi/rights-console/pkg/backend"
)

const defaultTimeout = 30 * time.Second

// Config holds the API connection settings
type Config struct {
	// BaseURL is the API root, e.g. https://api.example.com/api/v1
	BaseURL string
	// Token is the bearer token sent with every request
	Token string
	// Timeout bounds each request. Zero means 30s.
	Timeout time.Duration
	// Transport overrides the underlying round tripper
	Transport http.RoundTripper
}

// Client talks to the permission API
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	timeout   time.Duration
	expiresAt time.Time
	now       func() time.Time
}

// Ensure Client implements backend.Backend
var _ backend.Backend = (*Client)(nil)

// New creates a Client
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("api url is required")
	}
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid api url %q: %w", cfg.BaseURL, err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("invalid api url %q: scheme must be http or https", cfg.BaseURL)
	}

	transport := cfg.Transport
	if transport == nil {
		transport = http.DefaultTransport
	}
	transport = otelhttp.NewTransport(transport)

	httpClient := &http.Client{Transport: transport}
	if cfg.Token != "" {
		src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.Token, TokenType: "Bearer"})
		httpClient.Transport = &oauth2.Transport{Source: src, Base: transport}
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &Client{
		baseURL:   base,
		http:      httpClient,
		timeout:   timeout,
		expiresAt: tokenExpiry(cfg.Token),
		now:       time.Now,
	}, nil
}

// tokenExpiry reads the exp claim of a JWT without verifying it. Opaque
// tokens and tokens without exp never expire client side.
func tokenExpiry(token string) time.Time {
	if token == "" {
		return time.Time{}
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}
	}
	return exp.Time
}

// TokenExpiry returns the expiry of the configured token, zero when unknown
func (c *Client) TokenExpiry() time.Time {
	return c.expiresAt
}

type envelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Code    string          `json:"code,omitempty"`
	Data    json.RawMessage `json:"data"`
}

func (c *Client) do(ctx context.Context, method, path string, params interface{}, body interface{}, out interface{}) error {
	if !c.expiresAt.IsZero() && !c.now().Before(c.expiresAt) {
		return fmt.Errorf("api token expired at %s: %w", c.expiresAt.Format(time.RFC3339), backend.ErrUnauthorized)
	}

	u := *c.baseURL
	u.Path = c.baseURL.Path + path
	if params != nil {
		values, err := query.Values(params)
		if err != nil {
			return fmt.Errorf("failed to encode query: %w", err)
		}
		u.RawQuery = values.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%s %s: failed to read response: %w", method, path, err)
	}

	var env envelope
	decodeErr := json.Unmarshal(data, &env)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode, Status: env.Status, Message: env.Message, Code: env.Code}
		if decodeErr != nil {
			apiErr.Message = strings.TrimSpace(string(data))
		}
		return apiErr
	}
	if decodeErr != nil {
		return fmt.Errorf("%s %s: invalid response: %w", method, path, decodeErr)
	}
	if out == nil || len(env.Data) == 0 || string(env.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("%s %s: invalid response data: %w", method, path, err)
	}
	return nil
}
