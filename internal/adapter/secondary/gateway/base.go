package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"

	"github.com/paybridge/payment-orchestrator/internal/core"
)

const defaultHTTPTimeout = 30 * time.Second

// apiClient is the thin HTTP client shared by the gateway adapters: bearer
// auth, JSON bodies, bounded timeout, context propagation.
type apiClient struct {
	http      *http.Client
	baseURL   string
	secretKey string
}

func newAPIClient(baseURL, secretKey string, timeout time.Duration) *apiClient {
	if timeout <= 0 {
		timeout = defaultHTTPTimeout
	}
	return &apiClient{
		http:      &http.Client{Timeout: timeout},
		baseURL:   baseURL,
		secretKey: secretKey,
	}
}

// postJSON sends a JSON body and returns the raw response with its HTTP
// status code. Non-2xx responses are returned, not errored: the gateways
// report declines in their body.
func (c *apiClient) postJSON(ctx context.Context, path string, payload any) ([]byte, int, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, 0, fmt.Errorf("marshal request: %w", err)
	}
	return c.do(ctx, http.MethodPost, path, bytes.NewReader(body))
}

func (c *apiClient) getJSON(ctx context.Context, path string) ([]byte, int, error) {
	return c.do(ctx, http.MethodGet, path, nil)
}

func (c *apiClient) do(ctx context.Context, method, path string, body io.Reader) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, 0, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("read response: %w", err)
	}
	return raw, resp.StatusCode, nil
}

// newReference generates a provider-prefixed transaction reference, e.g.
// PS_1755873409016065024. The prefix is the routing contract the resolver
// relies on.
func newReference(node *snowflake.Node, provider core.Provider) string {
	return fmt.Sprintf("%s_%s", provider.ReferencePrefix(), node.Generate())
}

func is2xx(status int) bool {
	return status >= 200 && status < 300
}
