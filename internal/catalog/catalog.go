package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/everstacklabs/modelsync/internal/httpclient"
)

// Descriptor is one model as reported by the LM Studio REST API.
type Descriptor struct {
	ID               string   `json:"id"`
	Type             string   `json:"type"`
	Capabilities     []string `json:"capabilities"`
	MaxContextLength int      `json:"max_context_length"`
}

// HasCapability reports whether the descriptor declares the given capability.
func (d Descriptor) HasCapability(name string) bool {
	for _, c := range d.Capabilities {
		if c == name {
			return true
		}
	}
	return false
}

// Client discovers models from an LM Studio instance.
type Client struct {
	studioURL string
	http      *httpclient.Client
}

// NewClient creates a discovery client for the given LM Studio base URL.
func NewClient(studioURL string, http *httpclient.Client) *Client {
	return &Client{studioURL: strings.TrimRight(studioURL, "/"), http: http}
}

// modelsResponse is the /api/v0/models envelope.
type modelsResponse struct {
	Data []Descriptor `json:"data"`
}

// Fetch lists the models currently known to LM Studio. Single attempt,
// no retries; any failure carries the attempted URL.
func (c *Client) Fetch(ctx context.Context) ([]Descriptor, error) {
	endpoint := c.studioURL + "/api/v0/models"

	resp, err := c.http.Get(ctx, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("fetching models from %s: %w", endpoint, err)
	}

	var parsed modelsResponse
	if err := json.Unmarshal(resp.Body, &parsed); err != nil {
		return nil, fmt.Errorf("parsing models response from %s: %w", endpoint, err)
	}

	for i, d := range parsed.Data {
		if d.ID == "" {
			return nil, fmt.Errorf("model entry %d from %s has no id", i, endpoint)
		}
	}

	slog.Info("model discovery complete", "url", endpoint, "models", len(parsed.Data), "cached", resp.FromCache)
	return parsed.Data, nil
}

// StudioURL resolves the discovery base URL. An explicit override wins;
// otherwise it is derived from the Copilot base URL by stripping a trailing
// /v1 and forcing port 1234, mirroring LM Studio's default listen port.
func StudioURL(baseURL, override string) string {
	if override != "" {
		return strings.TrimRight(override, "/")
	}

	base := strings.TrimRight(baseURL, "/")
	base = strings.TrimSuffix(base, "/v1")
	base = strings.TrimRight(base, "/")

	u, err := url.Parse(base)
	if err != nil || u.Scheme == "" || u.Hostname() == "" {
		return "http://localhost:1234"
	}
	return fmt.Sprintf("%s://%s:1234", u.Scheme, u.Hostname())
}
