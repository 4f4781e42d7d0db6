package infrastructure

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"atlassian-mcp/internal/domain"
)

// searchPageSize is the page size used when a JQL search needs more than
// one backend round trip to satisfy the caller's max-results bound.
const searchPageSize = 50

// JiraClient talks to the Jira REST API (v2, both Cloud and Server).
// It is constructed once per process by the client holder and shared
// read-only across all tool invocations.
type JiraClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewJiraClient creates an authenticated Jira API client from a validated
// connection configuration.
func NewJiraClient(cfg *domain.ConnectionConfig) (*JiraClient, error) {
	if cfg == nil {
		return nil, fmt.Errorf("connection config is required")
	}
	return &JiraClient{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: domain.NewHTTPClient(cfg),
	}, nil
}

// BaseURL returns the configured base URL of the Jira instance.
func (c *JiraClient) BaseURL() string {
	return c.baseURL
}

// api builds a full endpoint URL under the REST API root.
func (c *JiraClient) api(path string) string {
	return c.baseURL + "/rest/api/2" + path
}

// SearchIssues runs a JQL search, paging through the backend until
// maxResults issues are collected or the result set is exhausted.
// A non-positive maxResults falls back to the default page size.
func (c *JiraClient) SearchIssues(ctx context.Context, jql string, maxResults int) (*domain.JiraSearchResults, error) {
	if maxResults <= 0 {
		maxResults = searchPageSize
	}

	collected := &domain.JiraSearchResults{MaxResults: maxResults}
	startAt := 0

	for {
		pageSize := maxResults - len(collected.Issues)
		if pageSize > searchPageSize {
			pageSize = searchPageSize
		}

		params := url.Values{}
		params.Set("jql", jql)
		params.Set("startAt", strconv.Itoa(startAt))
		params.Set("maxResults", strconv.Itoa(pageSize))

		var page domain.JiraSearchResults
		if err := doJSON(ctx, c.httpClient, http.MethodGet, c.api("/search?"+params.Encode()), nil, &page); err != nil {
			return nil, err
		}

		collected.Issues = append(collected.Issues, page.Issues...)
		collected.Total = page.Total

		startAt += len(page.Issues)
		if len(page.Issues) == 0 || len(collected.Issues) >= maxResults || startAt >= page.Total {
			break
		}
	}

	if len(collected.Issues) > maxResults {
		collected.Issues = collected.Issues[:maxResults]
	}
	return collected, nil
}

// GetIssue retrieves a single issue by its key (e.g. "PROJ-123").
func (c *JiraClient) GetIssue(ctx context.Context, issueKey string) (*domain.JiraIssue, error) {
	var issue domain.JiraIssue
	if err := doJSON(ctx, c.httpClient, http.MethodGet, c.api("/issue/"+issueKey), nil, &issue); err != nil {
		return nil, err
	}
	return &issue, nil
}

// CreateIssue creates a new issue and returns it with its assigned key.
func (c *JiraClient) CreateIssue(ctx context.Context, req *domain.IssueCreate) (*domain.JiraIssue, error) {
	var created domain.JiraIssue
	if err := doJSON(ctx, c.httpClient, http.MethodPost, c.api("/issue"), req, &created, http.StatusCreated); err != nil {
		return nil, err
	}
	return &created, nil
}

// UpdateIssue updates fields of an existing issue.
func (c *JiraClient) UpdateIssue(ctx context.Context, issueKey string, req *domain.IssueUpdate) error {
	return doJSON(ctx, c.httpClient, http.MethodPut, c.api("/issue/"+issueKey), req, nil,
		http.StatusNoContent, http.StatusOK)
}

// AddComment adds a comment to an issue.
func (c *JiraClient) AddComment(ctx context.Context, issueKey, body string) error {
	comment := &domain.CommentCreate{Body: body}
	return doJSON(ctx, c.httpClient, http.MethodPost, c.api("/issue/"+issueKey+"/comment"), comment, nil,
		http.StatusCreated, http.StatusOK)
}

// GetTransitions lists the workflow transitions currently available on an
// issue, including the status each one leads to.
func (c *JiraClient) GetTransitions(ctx context.Context, issueKey string) ([]domain.Transition, error) {
	var response struct {
		Transitions []domain.Transition `json:"transitions"`
	}
	endpoint := c.api("/issue/" + issueKey + "/transitions?expand=transitions.fields")
	if err := doJSON(ctx, c.httpClient, http.MethodGet, endpoint, nil, &response); err != nil {
		return nil, err
	}
	return response.Transitions, nil
}

// DoTransition performs a workflow transition on an issue.
func (c *JiraClient) DoTransition(ctx context.Context, issueKey, transitionID string) error {
	req := &domain.TransitionRequest{Transition: domain.IDRef{ID: transitionID}}
	return doJSON(ctx, c.httpClient, http.MethodPost, c.api("/issue/"+issueKey+"/transitions"), req, nil,
		http.StatusNoContent, http.StatusOK)
}

// ListProjects retrieves all projects visible to the authenticated user.
func (c *JiraClient) ListProjects(ctx context.Context) ([]domain.Project, error) {
	var projects []domain.Project
	if err := doJSON(ctx, c.httpClient, http.MethodGet, c.api("/project"), nil, &projects); err != nil {
		return nil, err
	}
	return projects, nil
}
