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

	"github.com/google/uuid"
)

// TokenFunc supplies the current bearer token, or "" when no session is
// present.
type TokenFunc func() string

// AuthFailureFunc is invoked whenever a request fails with an
// authentication error, so the session layer can tear the session down.
type AuthFailureFunc func()

// Client is the single HTTP gateway to the taskhub backend. It attaches
// the bearer credential to every request, tags requests with an ID, and
// translates every failure into *Error. It never retries: recovery is the
// caller's decision.
type Client struct {
	baseURL    string
	token      TokenFunc
	onAuthFail AuthFailureFunc
	httpClient *http.Client
}

// NewClient creates a client for the backend rooted at baseURL
// (e.g. http://localhost:3001/api). token may be nil for a client that
// only hits public endpoints.
func NewClient(baseURL string, token TokenFunc, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// OnAuthFailure registers fn to run whenever any request is rejected for
// authentication reasons. At most one handler is kept.
func (c *Client) OnAuthFailure(fn AuthFailureFunc) {
	c.onAuthFail = fn
}

// Get performs an HTTP GET with optional query parameters and unmarshals
// the JSON response into result.
func (c *Client) Get(ctx context.Context, path string, params map[string]string, result any) error {
	return c.do(ctx, http.MethodGet, path, params, nil, result)
}

// Post performs an HTTP POST with a JSON body.
func (c *Client) Post(ctx context.Context, path string, body, result any) error {
	return c.do(ctx, http.MethodPost, path, nil, body, result)
}

// Put performs an HTTP PUT with a JSON body.
func (c *Client) Put(ctx context.Context, path string, body, result any) error {
	return c.do(ctx, http.MethodPut, path, nil, body, result)
}

// Patch performs an HTTP PATCH with an optional JSON body.
func (c *Client) Patch(ctx context.Context, path string, body, result any) error {
	return c.do(ctx, http.MethodPatch, path, nil, body, result)
}

// Delete performs an HTTP DELETE.
func (c *Client) Delete(ctx context.Context, path string) error {
	return c.do(ctx, http.MethodDelete, path, nil, nil, nil)
}

// do builds the request, attaches auth, executes it once, and translates
// the outcome.
func (c *Client) do(
	ctx context.Context,
	method string,
	path string,
	params map[string]string,
	body any,
	result any,
) error {
	fullURL := c.baseURL + path
	if len(params) > 0 {
		values := url.Values{}
		for k, v := range params {
			values.Set(k, v)
		}
		fullURL += "?" + values.Encode()
	}

	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshaling request body: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, bodyReader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	if c.token != nil {
		if tok := c.token(); tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &Error{
			Kind:    ErrNetwork,
			Message: genericMessage,
		}
	}

	respBody, readErr := io.ReadAll(resp.Body)
	resp.Body.Close()
	if readErr != nil {
		return &Error{
			Kind:    ErrNetwork,
			Message: genericMessage,
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := c.translateError(resp.StatusCode, respBody)
		if apiErr.Kind == ErrAuth && c.onAuthFail != nil {
			c.onAuthFail()
		}
		return apiErr
	}

	// No content to parse (e.g. 204).
	if result == nil || resp.StatusCode == http.StatusNoContent || len(respBody) == 0 {
		return nil
	}

	if err := json.Unmarshal(respBody, result); err != nil {
		return fmt.Errorf(
			"unmarshaling response from %s %s: %w", method, path, err,
		)
	}

	return nil
}

// translateError turns a non-2xx response into the uniform error shape.
func (c *Client) translateError(status int, body []byte) *Error {
	apiErr := &Error{
		Kind:       kindForStatus(status),
		Message:    genericMessage,
		StatusCode: status,
	}

	var parsed errorBody
	if json.Unmarshal(body, &parsed) == nil {
		if parsed.Message != "" {
			apiErr.Message = parsed.Message
		}
		apiErr.ServerError = parsed.ErrorLabel
	}

	return apiErr
}
