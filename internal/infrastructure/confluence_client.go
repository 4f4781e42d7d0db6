package infrastructure

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"atlassian-mcp/internal/domain"
)

// ConfluenceClient talks to the Confluence REST API. Cloud instances serve
// the API under the /wiki prefix; Server/Data Center instances serve it at
// the instance root.
type ConfluenceClient struct {
	baseURL    string
	apiBase    string
	httpClient *http.Client
}

// NewConfluenceClient creates an authenticated Confluence API client from a
// validated connection configuration.
func NewConfluenceClient(cfg *domain.ConnectionConfig) (*ConfluenceClient, error) {
	if cfg == nil {
		return nil, fmt.Errorf("connection config is required")
	}

	base := strings.TrimRight(cfg.BaseURL, "/")
	apiBase := base + "/rest/api"
	if cfg.IsCloud {
		apiBase = base + "/wiki/rest/api"
	}

	return &ConfluenceClient{
		baseURL:    base,
		apiBase:    apiBase,
		httpClient: domain.NewHTTPClient(cfg),
	}, nil
}

// BaseURL returns the configured base URL of the Confluence instance.
func (c *ConfluenceClient) BaseURL() string {
	return c.baseURL
}

// api builds a full endpoint URL under the REST API root.
func (c *ConfluenceClient) api(path string) string {
	return c.apiBase + path
}

// pagedResults is the wrapper Confluence puts around every collection
// response.
type pagedResults[T any] struct {
	Results []T `json:"results"`
	Start   int `json:"start"`
	Limit   int `json:"limit"`
	Size    int `json:"size"`
}

// SearchContent runs a CQL search over content, returning at most limit
// results. A non-positive limit falls back to the API default.
func (c *ConfluenceClient) SearchContent(ctx context.Context, cql string, limit int) ([]domain.ConfluencePage, error) {
	params := url.Values{}
	params.Set("cql", cql)
	params.Set("expand", "space")
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}

	var results pagedResults[domain.ConfluencePage]
	if err := doJSON(ctx, c.httpClient, http.MethodGet, c.api("/content/search?"+params.Encode()), nil, &results); err != nil {
		return nil, err
	}

	pages := results.Results
	if limit > 0 && len(pages) > limit {
		pages = pages[:limit]
	}
	return pages, nil
}

// GetPage retrieves a page by ID. The expand parameter selects which
// sub-entities the payload carries (e.g. "body.storage,version").
func (c *ConfluenceClient) GetPage(ctx context.Context, pageID, expand string) (*domain.ConfluencePage, error) {
	// space is always expanded: every projection names the space key.
	if expand == "" {
		expand = "space"
	} else if !strings.Contains(expand, "space") {
		expand += ",space"
	}
	params := url.Values{}
	params.Set("expand", expand)

	var page domain.ConfluencePage
	endpoint := c.api("/content/" + pageID + "?" + params.Encode())
	if err := doJSON(ctx, c.httpClient, http.MethodGet, endpoint, nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// CreatePage creates a new page and returns it with its assigned ID.
func (c *ConfluenceClient) CreatePage(ctx context.Context, req *domain.PageCreate) (*domain.ConfluencePage, error) {
	var created domain.ConfluencePage
	if err := doJSON(ctx, c.httpClient, http.MethodPost, c.api("/content"), req, &created,
		http.StatusOK, http.StatusCreated); err != nil {
		return nil, err
	}
	return &created, nil
}

// UpdatePage writes a new version of an existing page and returns the
// updated entity.
func (c *ConfluenceClient) UpdatePage(ctx context.Context, pageID string, req *domain.PageUpdate) (*domain.ConfluencePage, error) {
	var updated domain.ConfluencePage
	if err := doJSON(ctx, c.httpClient, http.MethodPut, c.api("/content/"+pageID), req, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// DeletePage deletes a page by ID.
func (c *ConfluenceClient) DeletePage(ctx context.Context, pageID string) error {
	return doJSON(ctx, c.httpClient, http.MethodDelete, c.api("/content/"+pageID), nil, nil,
		http.StatusNoContent, http.StatusOK)
}

// ListSpaces retrieves spaces visible to the authenticated user, at most
// limit of them.
func (c *ConfluenceClient) ListSpaces(ctx context.Context, limit int) ([]domain.Space, error) {
	params := url.Values{}
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}

	var results pagedResults[domain.Space]
	if err := doJSON(ctx, c.httpClient, http.MethodGet, c.api("/space?"+params.Encode()), nil, &results); err != nil {
		return nil, err
	}
	return results.Results, nil
}

// GetPageChildren retrieves the child pages of a page, at most limit of
// them.
func (c *ConfluenceClient) GetPageChildren(ctx context.Context, pageID string, limit int) ([]domain.ConfluencePage, error) {
	params := url.Values{}
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}

	var results pagedResults[domain.ConfluencePage]
	endpoint := c.api("/content/" + pageID + "/child/page?" + params.Encode())
	if err := doJSON(ctx, c.httpClient, http.MethodGet, endpoint, nil, &results); err != nil {
		return nil, err
	}
	return results.Results, nil
}

// AttachFile uploads a local file as an attachment on a page. The
// X-Atlassian-Token header disarms the XSRF check the attachment endpoint
// enforces on multipart requests.
func (c *ConfluenceClient) AttachFile(ctx context.Context, pageID, filePath, comment string) (*domain.Attachment, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("file", filepath.Base(filePath))
	if err != nil {
		return nil, fmt.Errorf("failed to build upload: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	if comment != "" {
		if err := writer.WriteField("comment", comment); err != nil {
			return nil, fmt.Errorf("failed to build upload: %w", err)
		}
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to build upload: %w", err)
	}

	endpoint := c.api("/content/" + pageID + "/child/attachment")
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &buf)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Atlassian-Token", "nocheck")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, errBodyLimit))
		return nil, domain.NewHTTPError(resp.StatusCode, http.StatusText(resp.StatusCode), strings.TrimSpace(string(data)))
	}

	var results pagedResults[domain.Attachment]
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if len(results.Results) == 0 {
		return nil, fmt.Errorf("attachment upload returned no results")
	}
	return &results.Results[0], nil
}
