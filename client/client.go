// Package client wraps the storefront REST API. Every request carries the
// persisted bearer token and any 401 response triggers the logout handler.
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
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ray-remotestate/storefront/database"
)

const defaultTimeout = 15 * time.Second

type Options struct {
	BaseURL    string
	Timeout    time.Duration
	HTTPClient *http.Client
	// Tokens is read before every request for the session token.
	Tokens database.KeyStore
	// OnUnauthorized runs once for every 401 response.
	OnUnauthorized func()
	Logger         *logrus.Logger
}

type Client struct {
	baseURL string
	http    *http.Client
	tokens  database.KeyStore
	log     *logrus.Logger

	mu       sync.RWMutex
	onLogout func()
}

func New(opts Options) *Client {
	hc := opts.HTTPClient
	if hc == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		hc = &http.Client{Timeout: timeout}
	}
	log := opts.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}
	c := &Client{
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		http:    hc,
		tokens:  opts.Tokens,
		log:     log,
	}
	c.SetLogoutHandler(opts.OnUnauthorized)
	return c
}

// SetLogoutHandler replaces the handler run on 401 responses. nil restores
// the no-op handler.
func (c *Client) SetLogoutHandler(fn func()) {
	if fn == nil {
		fn = func() {}
	}
	c.mu.Lock()
	c.onLogout = fn
	c.mu.Unlock()
}

func (c *Client) logoutHandler() func() {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.onLogout
}

type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Decode unmarshals the body into v.
func (r *Response) Decode(v any) error {
	if len(bytes.TrimSpace(r.Body)) == 0 {
		return nil
	}
	return json.Unmarshal(r.Body, v)
}

// DecodeData unmarshals the body into v, unwrapping a {"data": ...} envelope
// when the server sent one.
func (r *Response) DecodeData(v any) error {
	var env struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(r.Body, &env); err == nil && len(env.Data) > 0 && !bytes.Equal(env.Data, []byte("null")) {
		return json.Unmarshal(env.Data, v)
	}
	return r.Decode(v)
}

type requestOptions struct {
	query       url.Values
	header      http.Header
	noAuth      bool
	raw         io.Reader
	contentType string
}

type RequestOption func(*requestOptions)

func WithQuery(q url.Values) RequestOption {
	return func(o *requestOptions) { o.query = q }
}

func WithHeader(key, value string) RequestOption {
	return func(o *requestOptions) { o.header.Set(key, value) }
}

// WithoutAuth skips the token lookup, for login and registration.
func WithoutAuth() RequestOption {
	return func(o *requestOptions) { o.noAuth = true }
}

// WithRawBody sends r as is instead of JSON encoding the body argument.
func WithRawBody(r io.Reader, contentType string) RequestOption {
	return func(o *requestOptions) {
		o.raw = r
		o.contentType = contentType
	}
}

// Do sends a request to path, relative to the base URL. body, when not nil,
// is sent as JSON. Non-2xx responses are returned as *APIError together with
// the response.
func (c *Client) Do(ctx context.Context, method, path string, body any, opts ...RequestOption) (*Response, error) {
	o := requestOptions{header: make(http.Header)}
	for _, opt := range opts {
		opt(&o)
	}

	u := c.baseURL + "/" + strings.TrimLeft(path, "/")
	if len(o.query) > 0 {
		u += "?" + o.query.Encode()
	}

	var reader io.Reader
	contentType := ""
	switch {
	case o.raw != nil:
		reader = o.raw
		contentType = o.contentType
	case body != nil:
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		reader = bytes.NewReader(b)
		contentType = "application/json"
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return nil, err
	}
	for k, v := range o.header {
		req.Header[k] = v
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	requestID := uuid.NewString()
	req.Header.Set("X-Request-ID", requestID)

	if !o.noAuth && c.tokens != nil {
		token, ok, err := c.tokens.Get(ctx, database.KeySessionToken)
		if err != nil {
			c.log.WithError(err).Warn("failed to read session token, sending request unauthenticated")
		} else if ok && token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	entry := c.log.WithFields(logrus.Fields{
		"method":     method,
		"path":       path,
		"request_id": requestID,
	})
	start := time.Now()
	res, err := c.http.Do(req)
	if err != nil {
		entry.WithError(err).Debug("request failed")
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer res.Body.Close()

	data, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("%s %s: read body: %w", method, path, err)
	}
	resp := &Response{StatusCode: res.StatusCode, Header: res.Header, Body: data}
	entry.WithFields(logrus.Fields{
		"status":   res.StatusCode,
		"duration": time.Since(start),
	}).Debug("request completed")

	if res.StatusCode == http.StatusUnauthorized {
		c.logoutHandler()()
	}
	if res.StatusCode < 200 || res.StatusCode > 299 {
		return resp, newAPIError(method, path, resp)
	}
	return resp, nil
}

// APIError is returned for responses outside the 2xx range.
type APIError struct {
	Method     string
	Path       string
	StatusCode int
	Message    string
	Body       []byte
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s %s: %d: %s", e.Method, e.Path, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.StatusCode, http.StatusText(e.StatusCode))
}

func newAPIError(method, path string, resp *Response) *APIError {
	e := &APIError{Method: method, Path: path, StatusCode: resp.StatusCode, Body: resp.Body}
	var body struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(resp.Body, &body); err == nil {
		e.Message = body.Message
		if e.Message == "" {
			e.Message = body.Error
		}
	} else if len(resp.Body) > 0 && len(resp.Body) < 256 {
		e.Message = strings.TrimSpace(string(resp.Body))
	}
	return e
}

// IsUnauthorized reports whether err is a 401 from the backend.
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized
}

// Message returns the text suitable for showing to the merchant.
func Message(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return err.Error()
}
