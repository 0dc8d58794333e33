package whippy

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

	"github.com/hashicorp/go-cleanhttp"
	"github.com/tidwall/gjson"
)

const (
	DefaultBaseURL = "https://api.whippy.co/v1"
	APIKeyHeader   = "X-WHIPPY-KEY"
)

// MissingKeyMessage is reported when a call arrives without a credential.
// The server never falls back to a key of its own.
const MissingKeyMessage = "API key is required - please set WHIPPY_API_KEY in your MCP client configuration"

type Request struct {
	Method string
	Path   string
	Query  url.Values
	Body   map[string]any // sent for POST and PUT only
	APIKey string
}

type Client struct {
	http    *http.Client
	baseURL string
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func NewClient(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		http:    cleanhttp.DefaultPooledClient(),
		baseURL: strings.TrimRight(baseURL, "/"),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *Client) BaseURL() string { return c.baseURL }

// Do performs one round trip. A 2xx reply yields its JSON body; anything
// else comes back as a *Error of kind upstream or transport. There are no
// retries.
func (c *Client) Do(ctx context.Context, req Request) (json.RawMessage, error) {
	header, err := headers(req.APIKey)
	if err != nil {
		return nil, err
	}

	u, err := url.Parse(c.baseURL + req.Path)
	if err != nil {
		return nil, Transport(fmt.Errorf("build url: %w", err))
	}
	if len(req.Query) > 0 {
		u.RawQuery = req.Query.Encode()
	}

	var body io.Reader
	if req.Body != nil && (req.Method == http.MethodPost || req.Method == http.MethodPut) {
		b, err := json.Marshal(req.Body)
		if err != nil {
			return nil, InvalidArgument("encode request body: %v", err)
		}
		body = bytes.NewReader(b)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, u.String(), body)
	if err != nil {
		return nil, Transport(err)
	}
	httpReq.Header = header

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, Transport(err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, Transport(fmt.Errorf("read response: %w", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, Upstream(resp.StatusCode, string(raw))
	}
	if !gjson.ValidBytes(raw) {
		return nil, Transport(errors.New("invalid JSON in response body"))
	}
	return json.RawMessage(raw), nil
}

func headers(apiKey string) (http.Header, error) {
	if apiKey == "" {
		return nil, InvalidArgument(MissingKeyMessage)
	}
	h := http.Header{}
	h.Set(APIKeyHeader, apiKey)
	h.Set("Accept", "application/json")
	h.Set("Content-Type", "application/json")
	return h, nil
}
