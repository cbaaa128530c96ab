package httpclient

import (
	"net/http"
	"time"
)

// UserAgent identifies this service to upstream APIs.
const UserAgent = "podcast-search/1.0"

// ClientType represents the type of HTTP client configuration
type ClientType string

const (
	// JSONClient talks to JSON APIs such as the embedding server
	JSONClient ClientType = "json"

	// PlainClient sends requests untouched apart from the User-Agent
	PlainClient ClientType = "plain"
)

// HTTPClient wraps an http.Client with configuration.
// It satisfies the Do-only interfaces the API SDKs accept for a custom client.
type HTTPClient struct {
	client     *http.Client
	clientType ClientType
}

// NewClient creates a new HTTP client with the specified type and timeout.
// A timeout <= 0 means no client-side timeout.
func NewClient(clientType ClientType, timeout time.Duration) *HTTPClient {
	client := &http.Client{
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			// Follow up to 10 redirects
			if len(via) >= 10 {
				return http.ErrUseLastResponse
			}
			return nil
		},
	}
	if timeout > 0 {
		client.Timeout = timeout
	}

	return &HTTPClient{
		client:     client,
		clientType: clientType,
	}
}

// Do executes an HTTP request with the appropriate headers for the client type
func (c *HTTPClient) Do(req *http.Request) (*http.Response, error) {
	c.setHeaders(req)
	return c.client.Do(req)
}

// setHeaders fills in headers the caller has not already set
func (c *HTTPClient) setHeaders(req *http.Request) {
	if req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", UserAgent)
	}

	switch c.clientType {
	case JSONClient:
		if req.Header.Get("Accept") == "" {
			req.Header.Set("Accept", "application/json")
		}
	default:
	}
}
