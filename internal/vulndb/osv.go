package vulndb

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/mod/semver"
)

const DefaultOSVURL = "https://api.osv.dev/v1/query"

// OSVClient queries the OSV database. It is the primary source.
type OSVClient struct {
	url    string
	client *http.Client
}

func NewOSVClient(url string) *OSVClient {
	if url == "" {
		url = DefaultOSVURL
	}

	return &OSVClient{
		url: url,
		client: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

func (c *OSVClient) Name() string {
	return "osv"
}

func (c *OSVClient) Ping(ctx context.Context) error {
	// An empty query is enough to prove the endpoint answers.
	_, err := c.query(ctx, osvQuery{})
	return err
}

func (c *OSVClient) Lookup(ctx context.Context, name, ecosystem, version string) ([]Vulnerability, error) {
	resp, err := c.query(ctx, osvQuery{
		Package: osvPackage{Name: name, Ecosystem: ecosystem},
		Version: version,
	})
	if err != nil {
		return nil, fmt.Errorf("osv lookup for %s@%s: %w", name, version, err)
	}

	vulns := make([]Vulnerability, 0, len(resp.Vulns))
	for _, v := range resp.Vulns {
		vulns = append(vulns, Vulnerability{
			ID:           v.ID,
			Summary:      v.Summary,
			Details:      v.Details,
			Severity:     v.severity(),
			FixedVersion: v.fixedVersion(),
			References:   v.referenceURLs(),
		})
	}

	return vulns, nil
}

type osvQuery struct {
	Package osvPackage `json:"package"`
	Version string     `json:"version,omitempty"`
}

type osvPackage struct {
	Name      string `json:"name,omitempty"`
	Ecosystem string `json:"ecosystem,omitempty"`
}

type osvResponse struct {
	Vulns []osvVuln `json:"vulns"`
}

type osvVuln struct {
	ID               string `json:"id"`
	Summary          string `json:"summary"`
	Details          string `json:"details"`
	DatabaseSpecific struct {
		Severity string `json:"severity"`
	} `json:"database_specific"`
	Affected []struct {
		Ranges []struct {
			Events []struct {
				Introduced string `json:"introduced,omitempty"`
				Fixed      string `json:"fixed,omitempty"`
			} `json:"events"`
		} `json:"ranges"`
	} `json:"affected"`
	References []struct {
		URL string `json:"url"`
	} `json:"references"`
}

func (v osvVuln) severity() string {
	return strings.ToUpper(v.DatabaseSpecific.Severity)
}

// fixedVersion picks the highest fixed version across all affected ranges,
// falling back to the first one seen when versions are not comparable.
func (v osvVuln) fixedVersion() string {
	var best string
	for _, affected := range v.Affected {
		for _, r := range affected.Ranges {
			for _, event := range r.Events {
				if event.Fixed == "" {
					continue
				}
				if best == "" {
					best = event.Fixed
					continue
				}
				if semver.IsValid(canonical(event.Fixed)) && semver.IsValid(canonical(best)) &&
					semver.Compare(canonical(event.Fixed), canonical(best)) > 0 {
					best = event.Fixed
				}
			}
		}
	}

	return best
}

func (v osvVuln) referenceURLs() []string {
	var urls []string
	for _, ref := range v.References {
		if ref.URL != "" {
			urls = append(urls, ref.URL)
		}
	}
	return urls
}

func canonical(version string) string {
	if strings.HasPrefix(version, "v") {
		return version
	}
	return "v" + version
}

func (c *OSVClient) query(ctx context.Context, q osvQuery) (*osvResponse, error) {
	body, err := json.Marshal(q)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal query: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("error creating request for %s: %w", c.url, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request to %s: %w", c.url, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code %d from %s", resp.StatusCode, c.url)
	}

	var parsed osvResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, fmt.Errorf("failed to decode response body: %w", err)
	}

	return &parsed, nil
}
