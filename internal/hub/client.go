// Package hub queries the Docker Hub v2 API for repository, tag and image
// metadata.
package hub

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"shellkit/internal/logging"
)

// DefaultBaseURL is the public Docker Hub.
const DefaultBaseURL = "https://hub.docker.com"

// HTTPError is a non-2xx response.
type HTTPError struct {
	URL    string
	Status int
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("GET %s: HTTP %d", e.URL, e.Status)
}

// Image is one platform entry of a tag.
type Image struct {
	Architecture string `json:"architecture"`
	OS           string `json:"os"`
	Digest       string `json:"digest"`
	Size         int64  `json:"size"`
}

// Client talks to a Docker Hub compatible endpoint.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewClient returns a Client for baseURL with a request timeout.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{Timeout: timeout},
	}
}

// Repository fetches /v2/repositories/<repo>. The body is returned verbatim
// so callers can print it with the server's key order.
func (c *Client) Repository(ctx context.Context, repo string) (json.RawMessage, error) {
	return c.get(ctx, "/v2/repositories/"+escapeRepo(repo))
}

// Tag fetches /v2/repositories/<repo>/tags/<tag>.
func (c *Client) Tag(ctx context.Context, repo, tag string) (json.RawMessage, error) {
	return c.get(ctx, "/v2/repositories/"+escapeRepo(repo)+"/tags/"+url.PathEscape(tag))
}

func (c *Client) get(ctx context.Context, path string) (json.RawMessage, error) {
	u := c.BaseURL + path
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "shellkit")

	logging.Debug().Str("url", u).Msg("hub request")
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", u, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, resp.Body)
		return nil, &HTTPError{URL: u, Status: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", u, err)
	}
	if !json.Valid(body) {
		return nil, fmt.Errorf("GET %s: response is not JSON", u)
	}
	return body, nil
}

// escapeRepo escapes each path segment of namespace/name.
func escapeRepo(repo string) string {
	parts := strings.Split(repo, "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return strings.Join(parts, "/")
}

// MatchImages returns the images of a tag document for os and arch.
func MatchImages(tagDoc json.RawMessage, os, arch string) ([]Image, error) {
	var doc struct {
		Images []Image `json:"images"`
	}
	if err := json.Unmarshal(tagDoc, &doc); err != nil {
		return nil, fmt.Errorf("decode tag: %w", err)
	}
	var matched []Image
	for _, img := range doc.Images {
		if img.Architecture == arch && img.OS == os {
			matched = append(matched, img)
		}
	}
	return matched, nil
}

// emptySearch reports a repository body shaped like an empty search result,
// which Docker Hub returns for some unqualified official image names.
func emptySearch(repoDoc json.RawMessage) bool {
	var doc struct {
		Count   *int            `json:"count"`
		Results json.RawMessage `json:"results"`
	}
	if err := json.Unmarshal(repoDoc, &doc); err != nil {
		return false
	}
	return doc.Count != nil && *doc.Count == 0 && strings.HasPrefix(strings.TrimSpace(string(doc.Results)), "[")
}
