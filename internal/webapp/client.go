// Package webapp talks to the spreadsheet-backed web app that stores work logs.
package webapp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/oauth2"

	"github.com/julianstephens/wurkwurk/internal/constants"
	"github.com/julianstephens/wurkwurk/internal/models"
)

// Client is a web app client. The zero value is not usable; call NewClient.
type Client struct {
	httpClient *http.Client
}

// NewClient creates a client. When token is non-empty every request carries
// it as an OAuth bearer token, for deployments restricted to a Google account.
func NewClient(ctx context.Context, token string) *Client {
	hc := &http.Client{}
	if token != "" {
		hc = oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: "Bearer"}))
	}
	hc.Timeout = constants.HTTPTimeout
	return &Client{httpClient: hc}
}

// NewClientWithHTTP wraps an existing http.Client.
func NewClientWithHTTP(hc *http.Client) *Client {
	return &Client{httpClient: hc}
}

// Version is the script version, sent either as a string or a number.
type Version string

func (v *Version) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*v = Version(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*v = Version(n.String())
	return nil
}

type response struct {
	Status  string          `json:"status"`
	Message string          `json:"message,omitempty"`
	Version Version         `json:"version,omitempty"`
	Headers []string        `json:"headers,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// PostLog submits one log entry.
func (c *Client) PostLog(ctx context.Context, endpoint string, payload models.LogPayload) error {
	_, err := c.post(ctx, endpoint, payload, "Unknown error")
	return err
}

// Test checks that the web app answers a test action.
func (c *Client) Test(ctx context.Context, endpoint string) error {
	if !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
		return ErrInvalidURL
	}
	_, err := c.post(ctx, endpoint, map[string]string{"action": "test"}, "Test failed")
	return err
}

// FetchWeekly returns the raw weekly data computed by the web app.
func (c *Client) FetchWeekly(ctx context.Context, endpoint string) (json.RawMessage, error) {
	if endpoint == "" {
		return nil, ErrNoURL
	}
	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("parsing web app URL: %w", err)
	}
	q := u.Query()
	q.Set("action", "getWeeklyData")
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	resp, err := c.do(req, "Unknown error")
	if err != nil {
		return nil, err
	}
	return resp.Data, nil
}

func (c *Client) post(ctx context.Context, endpoint string, body any, fallback string) (*response, error) {
	if endpoint == "" {
		return nil, ErrNoURL
	}
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encoding request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	// Apps Script rejects preflighted requests, so the JSON goes as plain text.
	req.Header.Set("Content-Type", "text/plain;charset=utf-8")
	req.Header.Set("Cache-Control", "no-cache")
	return c.do(req, fallback)
}

func (c *Client) do(req *http.Request, fallback string) (*response, error) {
	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, res.Body)
		return nil, newStatusError(res.StatusCode)
	}

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	var out response
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if out.Status != "success" {
		msg := out.Message
		if msg == "" {
			msg = fallback
		}
		return nil, &ScriptError{Message: msg}
	}
	return &out, nil
}
