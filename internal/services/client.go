// HTTP client wrapper shared by every API domain
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/melody/internal/models"
	"github.com/desertthunder/melody/internal/shared"
	"golang.org/x/net/publicsuffix"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

const (
	defaultBaseURL = "http://localhost:8080"
	defaultTimeout = 5 * time.Second

	// RequestIDHeader carries a per-request identifier for correlating client and server logs.
	RequestIDHeader = "X-Request-ID"

	// SchemeRaw sends the bare token as the Authorization header value.
	SchemeRaw = "raw"
	// SchemeBearer sends "Bearer <token>".
	SchemeBearer = "bearer"
)

// TokenProvider supplies the current session token; an empty string means no token is held.
type TokenProvider interface {
	Token() string
}

// TokenFunc adapts a function to [TokenProvider].
type TokenFunc func() string

func (f TokenFunc) Token() string { return f() }

// Options configures a [Client].
type Options struct {
	BaseURL    string        // scheme and host, e.g. http://127.0.0.1:8080
	BasePath   string        // fixed prefix for every endpoint, e.g. /api
	Timeout    time.Duration // per request; defaults to 5s
	Tokens     TokenProvider
	AuthScheme string   // [SchemeRaw] (default) or [SchemeBearer]
	FormPaths  []string // endpoints whose body is sent form-url-encoded; defaults to /login
	RateLimit  float64  // requests per second, 0 disables throttling
	HTTPClient *http.Client
	Logger     *log.Logger
}

// Client is a configured request/response pipeline for one API domain.
//
// Every request carries the session token when one is held. Every response is unwrapped
// against [models.Envelope]; transport failures become [NetworkError] and non-2xx statuses
// become [APIError]. Requests are attempted once.
type Client struct {
	baseURL    string
	basePath   string
	tokens     TokenProvider
	scheme     string
	formPaths  map[string]bool
	limiter    *rate.Limiter
	httpClient *http.Client
	logger     *log.Logger
}

// NewClient creates a [Client] from opts, filling in defaults.
func NewClient(opts Options) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = defaultBaseURL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.Tokens == nil {
		opts.Tokens = TokenFunc(func() string { return "" })
	}
	if opts.AuthScheme == "" {
		opts.AuthScheme = SchemeRaw
	}
	if opts.FormPaths == nil {
		opts.FormPaths = []string{"/login"}
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(io.Discard)
	}

	var httpClient http.Client
	if opts.HTTPClient != nil {
		httpClient = *opts.HTTPClient
	}
	if httpClient.Timeout == 0 {
		httpClient.Timeout = opts.Timeout
	}
	if httpClient.Jar == nil {
		if jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List}); err == nil {
			httpClient.Jar = jar
		}
	}

	formPaths := make(map[string]bool, len(opts.FormPaths))
	for _, p := range opts.FormPaths {
		formPaths[p] = true
	}

	c := &Client{
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		basePath:   normalizePath(opts.BasePath),
		tokens:     opts.Tokens,
		scheme:     opts.AuthScheme,
		formPaths:  formPaths,
		httpClient: &httpClient,
		logger:     opts.Logger,
	}
	if opts.RateLimit > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), 1)
	}
	return c
}

func normalizePath(p string) string {
	p = strings.TrimRight(p, "/")
	if p != "" && !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return p
}

// URL returns the absolute URL of an endpoint path.
func (c *Client) URL(path string, query url.Values) string {
	u := c.baseURL + c.basePath + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

// Upload is a multipart file body.
type Upload struct {
	Field    string
	Filename string
	Content  io.Reader
}

// Result is the outcome of a call that reached the server and returned 2xx.
//
// A Result may still describe a failure: the backend signals business failures inside the
// envelope. Callers branch on [Result.Failed] instead of catching errors.
type Result[T any] struct {
	Status   int
	Envelope models.Envelope
	Data     T
	Body     []byte
}

// Failed reports whether the envelope carries the failure sentinel.
func (r Result[T]) Failed() bool {
	return r.Envelope.Failed()
}

// Err returns the error a failed envelope stands for, or nil.
func (r Result[T]) Err() error {
	if !r.Failed() {
		return nil
	}
	return &APIError{
		Status: r.Status,
		Code:   r.Envelope.Code,
		Msg:    r.Envelope.Msg,
		Data:   r.Envelope.DataMessage(),
	}
}

// APIError is a response the server produced but the client treats as an error:
// either the envelope failure sentinel or a non-2xx HTTP status.
type APIError struct {
	Status int
	Code   *int
	Msg    string // server-supplied message
	Data   string // server-supplied payload rendered as text
}

func (e *APIError) Error() string {
	switch {
	case e.Msg != "":
		return e.Msg
	case e.Data != "":
		return e.Data
	case e.Status != 0 && (e.Status < 200 || e.Status >= 300):
		return fmt.Sprintf("request failed with status code %d", e.Status)
	default:
		return "请求失败"
	}
}

func (e *APIError) Unwrap() error {
	if e.Status == http.StatusUnauthorized {
		return shared.ErrUnauthorized
	}
	return shared.ErrAPIRequest
}

// NetworkError means no response was received at all.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string { return shared.ErrNetwork.Error() }

func (e *NetworkError) Unwrap() []error { return []error{shared.ErrNetwork, e.Err} }

// IsUnauthorized reports whether err is an HTTP 401 from the API.
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized
}

// Call performs one request and unwraps the envelope payload into T.
//
// The returned error is reserved for requests that produced no usable response: transport
// failures, non-2xx statuses and payloads that do not decode into T. Envelope failures are
// reported through the [Result].
func Call[T any](ctx context.Context, c *Client, method, path string, query url.Values, body any) (Result[T], error) {
	var result Result[T]

	status, respBody, err := c.send(ctx, method, path, query, body)
	if err != nil {
		return result, err
	}

	result.Status = status
	result.Body = respBody
	result.Envelope = decodeEnvelope(respBody)

	if result.Failed() || !result.Envelope.HasData() {
		return result, nil
	}
	if err := json.Unmarshal(result.Envelope.Data, &result.Data); err != nil {
		return result, fmt.Errorf("%w: %s %s: %v", shared.ErrInvalidResponse, method, path, err)
	}
	return result, nil
}

// Do performs one request and raises the envelope failure as an [APIError].
func (c *Client) Do(ctx context.Context, method, path string, query url.Values, body any) (models.Envelope, error) {
	result, err := Call[json.RawMessage](ctx, c, method, path, query, body)
	if err != nil {
		return result.Envelope, err
	}
	return result.Envelope, result.Err()
}

// decodeEnvelope reads body as an envelope; bodies that are not JSON objects yield an empty envelope.
func decodeEnvelope(body []byte) models.Envelope {
	var env models.Envelope
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return env
	}
	if err := json.Unmarshal(trimmed, &env); err != nil {
		return models.Envelope{}
	}
	return env
}

func (c *Client) send(ctx context.Context, method, path string, query url.Values, body any) (int, []byte, error) {
	req, err := c.newRequest(ctx, method, path, query, body)
	if err != nil {
		return 0, nil, err
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return 0, nil, &NetworkError{Err: err}
		}
	}

	requestID := req.Header.Get(RequestIDHeader)
	c.logger.Debug("api request", "method", method, "path", path, "request_id", requestID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("api request failed", "method", method, "path", path, "request_id", requestID, "error", err)
		return 0, nil, &NetworkError{Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, &NetworkError{Err: fmt.Errorf("failed to read response: %w", err)}
	}

	c.logger.Debug("api response", "method", method, "path", path, "status", resp.StatusCode, "request_id", requestID)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		env := decodeEnvelope(respBody)
		return resp.StatusCode, respBody, &APIError{
			Status: resp.StatusCode,
			Code:   env.Code,
			Msg:    env.Msg,
			Data:   env.DataMessage(),
		}
	}
	return resp.StatusCode, respBody, nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, query url.Values, body any) (*http.Request, error) {
	reader, contentType, err := c.encodeBody(path, body)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, method, c.URL(path, query), reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set(RequestIDHeader, shared.GenerateID())
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	if token := c.tokens.Token(); token != "" {
		if c.scheme == SchemeBearer {
			(&oauth2.Token{AccessToken: token, TokenType: "Bearer"}).SetAuthHeader(req)
		} else {
			req.Header.Set("Authorization", token)
		}
	}
	return req, nil
}

// encodeBody serializes body as JSON, as form fields for form paths, or as multipart for an [Upload].
func (c *Client) encodeBody(path string, body any) (io.Reader, string, error) {
	if body == nil {
		return nil, "", nil
	}

	if up, ok := body.(*Upload); ok {
		return encodeMultipart(up)
	}

	data, err := json.Marshal(body)
	if err != nil {
		return nil, "", fmt.Errorf("failed to marshal request body: %w", err)
	}

	if !c.formPaths[path] {
		return bytes.NewReader(data), "application/json", nil
	}

	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, "", fmt.Errorf("%w: form body must be an object", shared.ErrInvalidInput)
	}

	form := url.Values{}
	for _, key := range []string{"username", "password"} {
		if v, ok := fields[key]; ok && v != nil {
			form.Set(key, fmt.Sprint(v))
		}
	}
	return strings.NewReader(form.Encode()), "application/x-www-form-urlencoded", nil
}

func encodeMultipart(up *Upload) (io.Reader, string, error) {
	if up.Content == nil {
		return nil, "", fmt.Errorf("%w: upload has no content", shared.ErrInvalidInput)
	}

	field := up.Field
	if field == "" {
		field = "file"
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	part, err := w.CreateFormFile(field, up.Filename)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create multipart part: %w", err)
	}
	if _, err := io.Copy(part, up.Content); err != nil {
		return nil, "", fmt.Errorf("failed to read upload: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to finish multipart body: %w", err)
	}
	return &buf, w.FormDataContentType(), nil
}
