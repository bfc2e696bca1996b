package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const defaultTimeout = 15 * time.Second

// CredentialSource supplies the bearer token attached to each request. An
// empty token means the request goes out unauthenticated. The source is
// consulted per request, never cached on the client, so a session persisted
// mid-run takes effect on the next call.
type CredentialSource interface {
	Token() string
}

// Client issues requests against the storefront REST backend. The base URL
// can be swapped at runtime (configuration hot reload); everything else is
// fixed at construction.
type Client struct {
	baseURL atomic.Pointer[string]
	http    *http.Client
	creds   CredentialSource
	log     *zap.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithCredentials sets the bearer token source.
func WithCredentials(src CredentialSource) Option {
	return func(c *Client) { c.creds = src }
}

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(log *zap.Logger) Option {
	return func(c *Client) { c.log = log }
}

// WithTimeout sets the per-request timeout on the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

// NewClient creates a client for the given base URL, e.g.
// "http://localhost:8080/api".
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		http: &http.Client{Timeout: defaultTimeout},
		log:  zap.NewNop(),
	}
	c.SetBaseURL(baseURL)
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetBaseURL swaps the backend base URL. Requests started after the call use
// the new URL; requests already in flight finish against the old one.
func (c *Client) SetBaseURL(baseURL string) {
	trimmed := strings.TrimRight(baseURL, "/")
	c.baseURL.Store(&trimmed)
}

func (c *Client) base() string {
	return *c.baseURL.Load()
}

// List fetches the full product collection.
func (c *Client) List(ctx context.Context) ([]Product, error) {
	var out []Product
	if err := c.do(ctx, http.MethodGet, "/products", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Get fetches a single product by ID.
func (c *Client) Get(ctx context.Context, id string) (*Product, error) {
	var out Product
	if err := c.do(ctx, http.MethodGet, "/products/"+id, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Create posts a new product and returns the record the backend stored,
// including its assigned ID. Create is not idempotent: submitting the same
// payload twice creates two records.
func (c *Client) Create(ctx context.Context, fields ProductFields) (*Product, error) {
	var out Product
	if err := c.do(ctx, http.MethodPost, "/products", fields, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Update replaces the product with the given ID and returns the stored
// record.
func (c *Client) Update(ctx context.Context, id string, fields ProductFields) (*Product, error) {
	var out Product
	if err := c.do(ctx, http.MethodPut, "/products/"+id, fields, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Delete removes the product with the given ID. The caller owns removing the
// record from any cached collection.
func (c *Client) Delete(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/products/"+id, nil, nil)
}

type registerRequest struct {
	Name                 string `json:"name"`
	Email                string `json:"email"`
	Password             string `json:"password"`
	PasswordConfirmation string `json:"password_confirmation"`
}

type registerResponse struct {
	Success bool        `json:"success"`
	Data    Credentials `json:"data"`
}

// Register creates an account and returns the issued credentials.
func (c *Client) Register(ctx context.Context, name, email, password, confirmation string) (*Credentials, error) {
	req := registerRequest{
		Name:                 name,
		Email:                email,
		Password:             password,
		PasswordConfirmation: confirmation,
	}
	var out registerResponse
	if err := c.do(ctx, http.MethodPost, "/register", req, &out); err != nil {
		return nil, err
	}
	if !out.Success {
		return nil, &RequestError{Kind: KindUnknown, Message: "registration was not accepted"}
	}
	return &out.Data, nil
}

// errorBody is the shape the backend uses for error responses. The errors
// map is only populated on 422-style validation rejections.
type errorBody struct {
	Message string              `json:"message"`
	Errors  map[string][]string `json:"errors"`
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return &RequestError{Kind: KindUnknown, Err: fmt.Errorf("encode request: %w", err)}
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base()+path, reader)
	if err != nil {
		return &RequestError{Kind: KindUnknown, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.creds != nil {
		if token := c.creds.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}
	requestID := uuid.NewString()
	req.Header.Set("X-Request-ID", requestID)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warn("request failed before a response was received",
			zap.String("method", method),
			zap.String("path", path),
			zap.String("request_id", requestID),
			zap.Error(err))
		return &RequestError{Kind: KindUnreachable, Err: err}
	}
	defer resp.Body.Close()

	c.log.Debug("request completed",
		zap.String("method", method),
		zap.String("path", path),
		zap.String("request_id", requestID),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)))

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if out == nil {
			return nil
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return &RequestError{Kind: KindUnknown, Status: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
		}
		return nil
	}

	return c.failure(resp)
}

// failure translates a non-2xx response into the failure taxonomy.
func (c *Client) failure(resp *http.Response) error {
	var eb errorBody
	// A body that fails to decode still carries the status taxonomy, so the
	// decode error is deliberately discarded.
	_ = json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&eb)

	re := &RequestError{Status: resp.StatusCode, Message: eb.Message}
	switch {
	case resp.StatusCode == http.StatusNotFound:
		re.Kind = KindNotFound
	case resp.StatusCode == http.StatusUnprocessableEntity && len(eb.Errors) > 0:
		re.Kind = KindValidation
		re.Fields = make(map[string]string, len(eb.Errors))
		for field, msgs := range eb.Errors {
			if len(msgs) > 0 {
				re.Fields[field] = msgs[0]
			}
		}
	case resp.StatusCode >= 500:
		re.Kind = KindServer
	default:
		re.Kind = KindUnknown
	}
	return re
}
