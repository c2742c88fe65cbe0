package vulndb

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// MirrorClient queries an internal advisory mirror over a simple GET API.
// It acts as the secondary source behind the primary OSV backend.
type MirrorClient struct {
	baseURL string
	token   string
	client  *http.Client
}

func NewMirrorClient(baseURL, token string) *MirrorClient {
	return &MirrorClient{
		baseURL: baseURL,
		token:   token,
		client: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

func (c *MirrorClient) Name() string {
	return "mirror"
}

func (c *MirrorClient) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return fmt.Errorf("error creating request for %s: %w", c.baseURL, err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to reach advisory mirror: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("advisory mirror returned status %d", resp.StatusCode)
	}

	return nil
}

func (c *MirrorClient) Lookup(ctx context.Context, name, ecosystem, version string) ([]Vulnerability, error) {
	query := url.Values{}
	query.Set("package", name)
	query.Set("ecosystem", ecosystem)
	query.Set("version", version)

	endpoint := fmt.Sprintf("%s/api/v1/advisories?%s", c.baseURL, query.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("error creating request for %s: %w", endpoint, err)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("mirror lookup for %s@%s: %w", name, version, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("advisory mirror returned status %d. Body: %s", resp.StatusCode, string(body))
	}

	var advisories []Vulnerability
	if err := json.Unmarshal(body, &advisories); err != nil {
		return nil, fmt.Errorf("failed to decode advisory response: %w", err)
	}

	return advisories, nil
}
