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
	"strconv"
	"strings"
	"time"

	"github.com/jimalvess/diario-cli/internal/client/models"
	"github.com/jimalvess/diario-cli/internal/common"
	"github.com/jimalvess/diario-cli/internal/logging"
)

// maxErrorBody bounds how much of an error response is kept as message.
const maxErrorBody = 512

// HTTPClient talks to the diary backend over REST/JSON.
//
// It sets no timeout and performs no retries of its own: requests are
// bounded by their context and, when configured, WithTimeout.
type HTTPClient struct {
	baseURL string
	tokens  TokenSource
	http    *http.Client
	log     logging.Logger
}

type Option func(*HTTPClient)

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(c *http.Client) Option {
	return func(h *HTTPClient) { h.http = c }
}

// WithTimeout bounds every request; zero leaves requests unbounded.
func WithTimeout(d time.Duration) Option {
	return func(h *HTTPClient) {
		if d > 0 {
			c := *h.http
			c.Timeout = d
			h.http = &c
		}
	}
}

func WithLogger(l logging.Logger) Option {
	return func(h *HTTPClient) { h.log = l }
}

// NewHTTPClient builds a client for the backend at baseURL. tokens may be
// nil when only the public auth endpoints are used.
func NewHTTPClient(baseURL string, tokens TokenSource, opts ...Option) *HTTPClient {
	c := &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		tokens:  tokens,
		http:    &http.Client{},
		log:     logging.Discard(),
	}
	for _, o := range opts {
		o(c)
	}
	c.log = c.log.With("component", "http_client")
	return c
}

var _ Client = (*HTTPClient)(nil)

func (c *HTTPClient) BaseURL() string { return c.baseURL }

func (c *HTTPClient) Login(ctx context.Context, creds models.Credentials) (models.LoginResult, error) {
	var res models.LoginResult
	resp, err := c.doJSON(ctx, http.MethodPost, "/auth/login", creds, false)
	if err != nil {
		var se *StatusError
		if errors.As(err, &se) && (se.Code == http.StatusUnauthorized || se.Code == http.StatusForbidden) {
			return res, fmt.Errorf("login: %w", ErrInvalidCredentials)
		}
		return res, fmt.Errorf("login: %w", err)
	}
	defer resp.Body.Close()

	if err := c.decode(ctx, resp, "/auth/login", &res); err != nil {
		return res, fmt.Errorf("login: %w", err)
	}
	if res.Token == "" {
		return res, fmt.Errorf("login: %w: empty token", ErrMalformedResponse)
	}
	return res, nil
}

func (c *HTTPClient) Register(ctx context.Context, creds models.Credentials) error {
	return c.post(ctx, "/auth/register", creds, "register")
}

func (c *HTTPClient) ForgotPassword(ctx context.Context, email string) error {
	return c.post(ctx, "/auth/forgot-password", models.ForgotPasswordRequest{Email: email}, "forgot password")
}

func (c *HTTPClient) ResetPassword(ctx context.Context, req models.ResetPasswordRequest) error {
	return c.post(ctx, "/auth/redefinir-senha", req, "reset password")
}

func (c *HTTPClient) post(ctx context.Context, path string, body any, op string) error {
	resp, err := c.doJSON(ctx, http.MethodPost, path, body, false)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	drain(resp)
	return nil
}

// ListEntries accepts either a bare JSON array or an {"entradas": [...]}
// envelope.
func (c *HTTPClient) ListEntries(ctx context.Context) ([]models.Entry, error) {
	const path = "/api/entradas"
	resp, err := c.doJSON(ctx, http.MethodGet, path, nil, true)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w: %w", ErrUnavailable, err)
	}

	data = bytes.TrimSpace(data)
	var entries []models.Entry
	switch {
	case len(data) > 0 && data[0] == '[':
		err = json.Unmarshal(data, &entries)
	case len(data) > 0 && data[0] == '{':
		var env models.EntryList
		err = json.Unmarshal(data, &env)
		entries = env.Entries
	default:
		err = fmt.Errorf("unexpected payload of %d bytes", len(data))
	}
	if err != nil {
		c.log.Warn(ctx, "malformed response", "path", path, "error", err)
		return nil, fmt.Errorf("list entries: %w: %v", ErrMalformedResponse, err)
	}
	if entries == nil {
		entries = []models.Entry{}
	}
	return entries, nil
}

func (c *HTTPClient) GetEntry(ctx context.Context, id int64) (models.Entry, error) {
	path := entryPath(id)
	var e models.Entry
	resp, err := c.doJSON(ctx, http.MethodGet, path, nil, true)
	if err != nil {
		return e, fmt.Errorf("get entry %d: %w", id, err)
	}
	defer resp.Body.Close()

	if err := c.decode(ctx, resp, path, &e); err != nil {
		return e, fmt.Errorf("get entry %d: %w", id, err)
	}
	return e, nil
}

// CreateEntry succeeds only on HTTP 200; any other status, 2xx included, is
// an error.
func (c *HTTPClient) CreateEntry(ctx context.Context, form EntryForm) error {
	body, ct := streamForm(form, fieldFiles, false)
	if err := c.sendForm(ctx, http.MethodPost, "/api/entradas", body, ct); err != nil {
		return fmt.Errorf("create entry: %w", err)
	}
	return nil
}

// UpdateEntry succeeds only on HTTP 200, like CreateEntry.
func (c *HTTPClient) UpdateEntry(ctx context.Context, id int64, form EntryForm) error {
	body, ct := streamForm(form, fieldNewFiles, true)
	if err := c.sendForm(ctx, http.MethodPut, entryPath(id), body, ct); err != nil {
		return fmt.Errorf("update entry %d: %w", id, err)
	}
	return nil
}

func (c *HTTPClient) DeleteEntry(ctx context.Context, id int64) error {
	resp, err := c.do(ctx, http.MethodDelete, entryPath(id), nil, "", true)
	if err != nil {
		return fmt.Errorf("delete entry %d: %w", id, err)
	}
	drain(resp)
	return nil
}

func (c *HTTPClient) FetchAttachment(ctx context.Context, fileName string) ([]byte, string, error) {
	if fileName == "" {
		return nil, "", fmt.Errorf("fetch attachment: %w: empty file name", ErrValidation)
	}
	path := "/api/entradas/arquivo/" + url.PathEscape(fileName)
	resp, err := c.do(ctx, http.MethodGet, path, nil, "", true)
	if err != nil {
		return nil, "", fmt.Errorf("fetch attachment %s: %w", fileName, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("fetch attachment %s: %w: %w", fileName, ErrUnavailable, err)
	}
	return data, resp.Header.Get("Content-Type"), nil
}

func (c *HTTPClient) sendForm(ctx context.Context, method, path string, body io.ReadCloser, contentType string) error {
	defer body.Close()

	resp, err := c.do(ctx, method, path, body, contentType, true)
	if err != nil {
		return err
	}
	drain(resp)
	if resp.StatusCode != http.StatusOK {
		c.log.Warn(ctx, "unexpected success status", "method", method, "path", path, "status", resp.StatusCode)
		return newStatusError(method, path, resp.StatusCode, "")
	}
	return nil
}

func (c *HTTPClient) doJSON(ctx context.Context, method, path string, in any, auth bool) (*http.Response, error) {
	var body io.Reader
	contentType := ""
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(b)
		contentType = "application/json"
	}
	return c.do(ctx, method, path, body, contentType, auth)
}

// do sends one request and converts non-2xx statuses to *StatusError.
// Authenticated calls without a token fail with ErrAuthRequired before any
// network activity.
func (c *HTTPClient) do(ctx context.Context, method, path string, body io.Reader, contentType string, auth bool) (*http.Response, error) {
	var token string
	if auth {
		if c.tokens != nil {
			token = c.tokens.Token()
		}
		if token == "" {
			return nil, ErrAuthRequired
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set(common.AuthorizationHeaderName, common.BearerPrefix+token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Debug(ctx, "request failed", "method", method, "path", path, "error", err)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	c.log.Debug(ctx, "request", "method", method, "path", path, "status", resp.StatusCode, "elapsed", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := readMessage(resp)
		return nil, newStatusError(method, path, resp.StatusCode, msg)
	}
	return resp, nil
}

func (c *HTTPClient) decode(ctx context.Context, resp *http.Response, path string, out any) error {
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		c.log.Warn(ctx, "malformed response", "path", path, "error", err)
		return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return nil
}

// readMessage extracts a short message from an error response: the
// "message" or "error" field of a JSON body, or the body text.
func readMessage(resp *http.Response) string {
	defer resp.Body.Close()
	b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	b = bytes.TrimSpace(b)
	if len(b) == 0 {
		return ""
	}
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if json.Unmarshal(b, &payload) == nil {
		if payload.Message != "" {
			return payload.Message
		}
		return payload.Error
	}
	return string(b)
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
}

func entryPath(id int64) string {
	return "/api/entradas/" + strconv.FormatInt(id, 10)
}
