// internal/adapters/out/http/client.go
package httpout

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Normalized transport failures shown to the user verbatim. Raw
// transport detail goes to the log, never to the message.
var (
	ErrServerUnreachable = errors.New("Server is down or returned an HTML error page. Please try again later.")
	ErrInvalidResponse   = errors.New("Server returned an invalid response format. Please try again.")
)

// apiClient is the shared base for the storefront API clients: one
// baseURL, one timeout, one response-normalization path.
type apiClient struct {
	baseURL string
	client  *http.Client
}

// baseURL example:
// - deployed: https://api.milkmaster.example.com
// - local: http://localhost:5000
func newAPIClient(baseURL string) apiClient {
	return apiClient{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		client:  &http.Client{Timeout: 15 * time.Second},
	}
}

// doJSON sends an optional JSON payload and decodes the JSON response
// into out. An HTML body (proxy error page, crashed server) maps to
// ErrServerUnreachable; a body that is neither HTML nor valid JSON
// maps to ErrInvalidResponse. Non-2xx with a parseable JSON body is
// NOT an error here; callers read success/message from out.
func (c apiClient) doJSON(ctx context.Context, method, path, bearerToken string, payload, out any) (int, error) {
	if c.baseURL == "" {
		return 0, fmt.Errorf("httpout: baseURL is empty")
	}

	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return 0, err
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return 0, err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearerToken != "" {
		req.Header.Set("Authorization", "Bearer "+bearerToken)
	}

	res, err := c.client.Do(req)
	if err != nil {
		return 0, ErrServerUnreachable
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(res.Body, 1<<20))
	if err != nil {
		return res.StatusCode, ErrInvalidResponse
	}

	if looksLikeHTML(res.Header.Get("Content-Type"), raw) {
		return res.StatusCode, ErrServerUnreachable
	}

	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return res.StatusCode, ErrInvalidResponse
		}
	}

	return res.StatusCode, nil
}

func looksLikeHTML(contentType string, body []byte) bool {
	if strings.Contains(strings.ToLower(contentType), "text/html") {
		return true
	}
	trimmed := strings.TrimSpace(string(body))
	return strings.HasPrefix(trimmed, "<!DOCTYPE") || strings.HasPrefix(trimmed, "<html")
}
