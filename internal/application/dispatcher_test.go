package application

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/sirupsen/logrus"

	"atlassian-mcp/internal/domain"
)

// stubJiraService is a JiraService test double. Unset operations panic so a
// test that reaches an unexpected backend call fails loudly.
type stubJiraService struct {
	searchIssues   func(ctx context.Context, jql string, maxResults int) (*domain.JiraSearchResults, error)
	getIssue       func(ctx context.Context, issueKey string) (*domain.JiraIssue, error)
	createIssue    func(ctx context.Context, req *domain.IssueCreate) (*domain.JiraIssue, error)
	updateIssue    func(ctx context.Context, issueKey string, req *domain.IssueUpdate) error
	addComment     func(ctx context.Context, issueKey, body string) error
	getTransitions func(ctx context.Context, issueKey string) ([]domain.Transition, error)
	doTransition   func(ctx context.Context, issueKey, transitionID string) error
	listProjects   func(ctx context.Context) ([]domain.Project, error)
}

func (s *stubJiraService) SearchIssues(ctx context.Context, jql string, maxResults int) (*domain.JiraSearchResults, error) {
	return s.searchIssues(ctx, jql, maxResults)
}

func (s *stubJiraService) GetIssue(ctx context.Context, issueKey string) (*domain.JiraIssue, error) {
	return s.getIssue(ctx, issueKey)
}

func (s *stubJiraService) CreateIssue(ctx context.Context, req *domain.IssueCreate) (*domain.JiraIssue, error) {
	return s.createIssue(ctx, req)
}

func (s *stubJiraService) UpdateIssue(ctx context.Context, issueKey string, req *domain.IssueUpdate) error {
	return s.updateIssue(ctx, issueKey, req)
}

func (s *stubJiraService) AddComment(ctx context.Context, issueKey, body string) error {
	return s.addComment(ctx, issueKey, body)
}

func (s *stubJiraService) GetTransitions(ctx context.Context, issueKey string) ([]domain.Transition, error) {
	return s.getTransitions(ctx, issueKey)
}

func (s *stubJiraService) DoTransition(ctx context.Context, issueKey, transitionID string) error {
	return s.doTransition(ctx, issueKey, transitionID)
}

func (s *stubJiraService) ListProjects(ctx context.Context) ([]domain.Project, error) {
	return s.listProjects(ctx)
}

// quietLogger returns a logger that discards output, keeping test output
// readable.
func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

// newJiraDispatcher wires a dispatcher over a stub backend with the full
// Jira registry.
func newJiraDispatcher(stub JiraService) *Dispatcher[JiraService] {
	holder := NewClientHolder(func() (JiraService, error) { return stub, nil })
	return NewDispatcher(holder, JiraTools(), nil, quietLogger())
}

// resultText extracts the single text payload from an envelope.
func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if result == nil {
		t.Fatal("result is nil, want an envelope")
	}
	if len(result.Content) != 1 {
		t.Fatalf("len(Content) = %d, want 1", len(result.Content))
	}
	text, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("Content[0] type = %T, want mcp.TextContent", result.Content[0])
	}
	return text.Text
}

// TestDispatcher_UnknownTool tests that an unregistered tool name yields an
// isError envelope naming the tool.
func TestDispatcher_UnknownTool(t *testing.T) {
	d := newJiraDispatcher(&stubJiraService{})

	result := d.Invoke(context.Background(), "jira_frobnicate", map[string]any{})

	if !result.IsError {
		t.Fatal("IsError = false, want true")
	}
	text := resultText(t, result)
	if !strings.Contains(text, "unknown tool") || !strings.Contains(text, "jira_frobnicate") {
		t.Errorf("failure text = %q, want it to name the unknown tool", text)
	}
}

// TestDispatcher_ValidationStopsBeforeBackend tests that a schema violation
// produces a failure envelope without touching the backend.
func TestDispatcher_ValidationStopsBeforeBackend(t *testing.T) {
	var backendCalls int32
	stub := &stubJiraService{
		searchIssues: func(ctx context.Context, jql string, maxResults int) (*domain.JiraSearchResults, error) {
			atomic.AddInt32(&backendCalls, 1)
			return &domain.JiraSearchResults{}, nil
		},
	}
	d := newJiraDispatcher(stub)

	// jql is required and missing.
	result := d.Invoke(context.Background(), ToolJiraSearchIssues, map[string]any{})

	if !result.IsError {
		t.Fatal("IsError = false, want true")
	}
	text := resultText(t, result)
	if !strings.Contains(text, "jql") {
		t.Errorf("failure text = %q, want it to name the missing argument", text)
	}
	if got := atomic.LoadInt32(&backendCalls); got != 0 {
		t.Errorf("backend calls = %d, want 0", got)
	}
}

// TestDispatcher_SearchSuccess tests the full success path: a two-issue
// backend result becomes a single text envelope carrying the normalized
// projections.
func TestDispatcher_SearchSuccess(t *testing.T) {
	stub := &stubJiraService{
		searchIssues: func(ctx context.Context, jql string, maxResults int) (*domain.JiraSearchResults, error) {
			if jql != "project = TEST" {
				t.Errorf("jql = %q, want 'project = TEST'", jql)
			}
			return &domain.JiraSearchResults{
				Issues: []domain.JiraIssue{
					{
						Key: "TEST-1",
						Fields: domain.JiraFields{
							Summary:  "First issue",
							Status:   domain.NamedRef{Name: "Open"},
							Assignee: &domain.JiraUser{DisplayName: "Ada Lovelace"},
						},
					},
					{
						Key: "TEST-2",
						Fields: domain.JiraFields{
							Summary: "Second issue",
							Status:  domain.NamedRef{Name: "Done"},
						},
					},
				},
				Total: 2,
			}, nil
		},
	}
	d := newJiraDispatcher(stub)

	result := d.Invoke(context.Background(), ToolJiraSearchIssues, map[string]any{
		"jql": "project = TEST",
	})

	if result.IsError {
		t.Fatalf("IsError = true, failure text: %s", resultText(t, result))
	}

	text := resultText(t, result)
	for _, want := range []string{"TEST-1", "First issue", "Open", "Ada Lovelace", "TEST-2", "Done", "Unassigned"} {
		if !strings.Contains(text, want) {
			t.Errorf("payload missing %q:\n%s", want, text)
		}
	}
}

// TestDispatcher_BackendFailure tests that a backend error becomes a failure
// envelope prefixed with the tool name.
func TestDispatcher_BackendFailure(t *testing.T) {
	stub := &stubJiraService{
		searchIssues: func(ctx context.Context, jql string, maxResults int) (*domain.JiraSearchResults, error) {
			return nil, domain.NewHTTPError(400, "Bad Request", "jql parse error")
		},
	}
	d := newJiraDispatcher(stub)

	result := d.Invoke(context.Background(), ToolJiraSearchIssues, map[string]any{"jql": "bad ("})

	if !result.IsError {
		t.Fatal("IsError = false, want true")
	}
	text := resultText(t, result)
	if !strings.Contains(text, ToolJiraSearchIssues) {
		t.Errorf("failure text = %q, want it to name the tool", text)
	}
	if !strings.Contains(text, "HTTP 400") {
		t.Errorf("failure text = %q, want it to carry the backend status", text)
	}
}

// TestDispatcher_ConnectionFailure tests that a failed client construction
// becomes a connection-error envelope and is retried on the next call.
func TestDispatcher_ConnectionFailure(t *testing.T) {
	var attempts int32
	stub := &stubJiraService{
		listProjects: func(ctx context.Context) ([]domain.Project, error) {
			return []domain.Project{{Key: "TEST", Name: "Test Project"}}, nil
		},
	}
	holder := NewClientHolder(func() (JiraService, error) {
		if atomic.AddInt32(&attempts, 1) == 1 {
			return nil, errors.New("dial tcp: connection refused")
		}
		return stub, nil
	})
	d := NewDispatcher(holder, JiraTools(), nil, quietLogger())

	first := d.Invoke(context.Background(), ToolJiraGetProjects, map[string]any{})
	if !first.IsError {
		t.Fatal("first IsError = false, want connection failure")
	}
	if text := resultText(t, first); !strings.Contains(text, "connection error") {
		t.Errorf("failure text = %q, want it to mention the connection error", text)
	}

	second := d.Invoke(context.Background(), ToolJiraGetProjects, map[string]any{})
	if second.IsError {
		t.Fatalf("second IsError = true, failure text: %s", resultText(t, second))
	}
}

// TestDispatcher_ClientConstructedOnce tests that the holder constructs a
// single client across many dispatches.
func TestDispatcher_ClientConstructedOnce(t *testing.T) {
	var constructions int32
	stub := &stubJiraService{
		listProjects: func(ctx context.Context) ([]domain.Project, error) {
			return nil, nil
		},
	}
	holder := NewClientHolder(func() (JiraService, error) {
		atomic.AddInt32(&constructions, 1)
		return stub, nil
	})
	d := NewDispatcher(holder, JiraTools(), nil, quietLogger())

	for i := 0; i < 5; i++ {
		d.Invoke(context.Background(), ToolJiraGetProjects, map[string]any{})
	}

	if got := atomic.LoadInt32(&constructions); got != 1 {
		t.Errorf("constructions = %d, want 1", got)
	}
}

// TestDispatcher_RecoverFromPanic tests that a panicking handler still
// yields a failure envelope instead of crashing the process.
func TestDispatcher_RecoverFromPanic(t *testing.T) {
	stub := &stubJiraService{
		listProjects: func(ctx context.Context) ([]domain.Project, error) {
			panic("handler bug")
		},
	}
	d := newJiraDispatcher(stub)

	result := d.Invoke(context.Background(), ToolJiraGetProjects, map[string]any{})

	if !result.IsError {
		t.Fatal("IsError = false, want true")
	}
	if text := resultText(t, result); !strings.Contains(text, "internal error") {
		t.Errorf("failure text = %q, want it to mention an internal error", text)
	}
}

// TestDispatcher_RedactsSecrets tests that failure texts never carry the
// configured credential.
func TestDispatcher_RedactsSecrets(t *testing.T) {
	const token = "super-secret-token"
	stub := &stubJiraService{
		listProjects: func(ctx context.Context) ([]domain.Project, error) {
			return nil, domain.NewHTTPError(401, "Unauthorized", "token "+token+" rejected")
		},
	}
	holder := NewClientHolder(func() (JiraService, error) { return JiraService(stub), nil })
	d := NewDispatcher(holder, JiraTools(), domain.Redactor(token), quietLogger())

	result := d.Invoke(context.Background(), ToolJiraGetProjects, map[string]any{})

	if !result.IsError {
		t.Fatal("IsError = false, want true")
	}
	text := resultText(t, result)
	if strings.Contains(text, token) {
		t.Errorf("failure text leaked the credential: %s", text)
	}
	if !strings.Contains(text, "***") {
		t.Errorf("failure text = %q, want the redaction marker", text)
	}
}

// TestDispatcher_ToolsCatalogStable tests that the advertised catalog is
// identical across calls.
func TestDispatcher_ToolsCatalogStable(t *testing.T) {
	d := newJiraDispatcher(&stubJiraService{})

	first := d.Tools()
	second := d.Tools()

	if len(first) != len(second) {
		t.Fatalf("catalog sizes differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].Name != second[i].Name {
			t.Errorf("catalog order changed at %d: %s vs %s", i, first[i].Name, second[i].Name)
		}
	}
}
