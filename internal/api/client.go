// Package api is the REST client for the VALOS backend. The backend owns
// all persistence and validation; this package only shapes requests,
// decodes responses and normalizes errors.
package api

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	json "github.com/goccy/go-json"

	"valos-cli/internal/session"
)

const DefaultBaseURL = "http://127.0.0.1:8000/api"

// ErrUnauthorized is matched (errors.Is) by any 401 from the backend.
var ErrUnauthorized = errors.New("unauthorized")

// Error is a backend error. Detail carries the backend's own message when
// the payload had one (FastAPI-style {"detail": ...}).
type Error struct {
	Status int
	Detail string
}

func (e *Error) Error() string {
	if strings.TrimSpace(e.Detail) != "" {
		return e.Detail
	}
	return fmt.Sprintf("request failed: %s", http.StatusText(e.Status))
}

func (e *Error) Unwrap() error {
	if e.Status == http.StatusUnauthorized {
		return ErrUnauthorized
	}
	return nil
}

type Client struct {
	BaseURL    string
	HTTPClient *http.Client
	Session    *session.Session

	// OnUnauthorized runs once per 401 response, after the session has been
	// cleared. The TUI uses it to fall back to the login view.
	OnUnauthorized func()
}

func NewClient(baseURL string, sess *session.Session) *Client {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
		Session:    sess,
	}
}

// get issues a GET and decodes the JSON response into out (skipped when out
// is nil).
func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	return c.do(ctx, http.MethodGet, path, query, nil, "", out)
}

// sendJSON issues method with a JSON body.
func (c *Client) sendJSON(ctx context.Context, method, path string, body any, out any) error {
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		rd = bytes.NewReader(b)
	}
	return c.do(ctx, method, path, nil, rd, "application/json", out)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body io.Reader, contentType string, out any) error {
	u := c.BaseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.Session != nil {
		if tok := c.Session.Token(); tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		// Session is dead everywhere, not just for this call.
		if c.Session != nil {
			c.Session.Clear()
		}
		apiErr := decodeError(resp)
		if c.OnUnauthorized != nil {
			c.OnUnauthorized()
		}
		return apiErr
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}

	if out == nil {
		return nil
	}
	if raw, ok := out.(*[]byte); ok {
		b, err := io.ReadAll(resp.Body)
		if err != nil {
			return err
		}
		*raw = b
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func decodeError(resp *http.Response) *Error {
	apiErr := &Error{Status: resp.StatusCode}

	b, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil || len(bytes.TrimSpace(b)) == 0 {
		return apiErr
	}

	var payload struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(b, &payload); err == nil && len(payload.Detail) > 0 {
		var s string
		if err := json.Unmarshal(payload.Detail, &s); err == nil {
			apiErr.Detail = s
		} else {
			// Validation errors arrive as structured detail; keep it readable.
			apiErr.Detail = string(payload.Detail)
		}
		return apiErr
	}

	apiErr.Detail = strings.TrimSpace(string(b))
	return apiErr
}
