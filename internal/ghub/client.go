// Package ghub is a minimal GitHub REST client covering the release and
// pull-request comment endpoints relr needs. Publishing a GitHub release on a
// vX.Y.Z tag is what triggers the external wheel-building workflow; relr only
// creates and deletes the release objects.
package ghub

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

// DefaultBaseURL is the public GitHub API endpoint.
const DefaultBaseURL = "https://api.github.com"

// Client talks to the GitHub REST API for one repository.
type Client struct {
	baseURL string
	owner   string
	repo    string
	token   string
	httpc   *http.Client
}

// NewClient creates a Client for owner/repo. baseURL may be empty to use the
// public API; tests point it at a local server.
func NewClient(baseURL, owner, repo, token string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		owner:   owner,
		repo:    repo,
		token:   token,
		httpc:   &http.Client{Timeout: 30 * time.Second},
	}
}

// Release is a GitHub release object.
type Release struct {
	ID         int64   `json:"id"`
	TagName    string  `json:"tag_name"`
	Name       string  `json:"name"`
	Body       string  `json:"body"`
	Draft      bool    `json:"draft"`
	Prerelease bool    `json:"prerelease"`
	HTMLURL    string  `json:"html_url"`
	Assets     []Asset `json:"assets"`
}

// Asset is a file attached to a release (the built wheel, once CI uploads it).
type Asset struct {
	ID                 int64  `json:"id"`
	Name               string `json:"name"`
	BrowserDownloadURL string `json:"browser_download_url"`
}

// Comment is an issue/PR comment.
type Comment struct {
	ID      int64  `json:"id"`
	Body    string `json:"body"`
	HTMLURL string `json:"html_url"`
}

// APIError is a non-2xx response from the API.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("github api: status %d: %s", e.Status, e.Message)
}

// CreateRelease creates a release for tag. Set prerelease for pull-request
// preview builds.
func (c *Client) CreateRelease(ctx context.Context, tag, name, body string, draft, prerelease bool) (*Release, error) {
	payload := map[string]any{
		"tag_name":   tag,
		"name":       name,
		"body":       body,
		"draft":      draft,
		"prerelease": prerelease,
	}
	var rel Release
	if err := c.do(ctx, http.MethodPost, fmt.Sprintf("/repos/%s/%s/releases", c.owner, c.repo), payload, &rel); err != nil {
		return nil, fmt.Errorf("create release %s: %w", tag, err)
	}
	return &rel, nil
}

// GetReleaseByTag fetches the release for tag. Returns (nil, nil) when no
// release exists for the tag.
func (c *Client) GetReleaseByTag(ctx context.Context, tag string) (*Release, error) {
	var rel Release
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("/repos/%s/%s/releases/tags/%s", c.owner, c.repo, tag), nil, &rel)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("get release for %s: %w", tag, err)
	}
	return &rel, nil
}

// ListReleases returns the repository's releases (first page).
func (c *Client) ListReleases(ctx context.Context) ([]Release, error) {
	var rels []Release
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/repos/%s/%s/releases", c.owner, c.repo), nil, &rels); err != nil {
		return nil, fmt.Errorf("list releases: %w", err)
	}
	return rels, nil
}

// DeleteRelease removes a release by id. The tag itself is untouched; callers
// delete it via git.
func (c *Client) DeleteRelease(ctx context.Context, id int64) error {
	if err := c.do(ctx, http.MethodDelete, fmt.Sprintf("/repos/%s/%s/releases/%d", c.owner, c.repo, id), nil, nil); err != nil {
		return fmt.Errorf("delete release %d: %w", id, err)
	}
	return nil
}

// CreateIssueComment posts a comment on an issue or pull request.
func (c *Client) CreateIssueComment(ctx context.Context, number int, body string) (*Comment, error) {
	payload := map[string]any{"body": body}
	var cm Comment
	if err := c.do(ctx, http.MethodPost, fmt.Sprintf("/repos/%s/%s/issues/%d/comments", c.owner, c.repo, number), payload, &cm); err != nil {
		return nil, fmt.Errorf("comment on #%d: %w", number, err)
	}
	return &cm, nil
}

// do performs one API request. A nil out skips response decoding.
func (c *Client) do(ctx context.Context, method, path string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshal payload: %w", err)
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.httpc.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{Status: resp.StatusCode, Message: readAPIMessage(resp.Body)}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// readAPIMessage extracts the "message" field from an error body, falling
// back to the trimmed raw body.
func readAPIMessage(r io.Reader) string {
	b, _ := io.ReadAll(io.LimitReader(r, 4096))
	var m struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(b, &m); err == nil && m.Message != "" {
		return m.Message
	}
	return strings.TrimSpace(string(b))
}
