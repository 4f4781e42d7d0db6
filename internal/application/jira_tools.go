package application

import (
	"context"
	"fmt"
	"strings"

	"atlassian-mcp/internal/domain"
)

// JiraService is the backend surface the Jira tools dispatch to. The
// concrete implementation lives in infrastructure; tests substitute stubs.
type JiraService interface {
	SearchIssues(ctx context.Context, jql string, maxResults int) (*domain.JiraSearchResults, error)
	GetIssue(ctx context.Context, issueKey string) (*domain.JiraIssue, error)
	CreateIssue(ctx context.Context, req *domain.IssueCreate) (*domain.JiraIssue, error)
	UpdateIssue(ctx context.Context, issueKey string, req *domain.IssueUpdate) error
	AddComment(ctx context.Context, issueKey, body string) error
	GetTransitions(ctx context.Context, issueKey string) ([]domain.Transition, error)
	DoTransition(ctx context.Context, issueKey, transitionID string) error
	ListProjects(ctx context.Context) ([]domain.Project, error)
}

// Tool name constants for Jira operations.
const (
	ToolJiraSearchIssues    = "jira_search_issues"
	ToolJiraGetIssue        = "jira_get_issue"
	ToolJiraCreateIssue     = "jira_create_issue"
	ToolJiraUpdateIssue     = "jira_update_issue"
	ToolJiraAddComment      = "jira_add_comment"
	ToolJiraTransitionIssue = "jira_transition_issue"
	ToolJiraGetProjects     = "jira_get_projects"
)

// defaultSearchLimit bounds JQL searches when the caller gives no
// max_results.
const defaultSearchLimit = 50

// JiraTools returns the static Jira tool registry in advertisement order.
func JiraTools() []Tool[JiraService] {
	maxResults := defaultSearchLimit
	return []Tool[JiraService]{
		{
			Name:        ToolJiraSearchIssues,
			Description: "Search for Jira issues using JQL",
			Args: []ArgSpec{
				{Name: "jql", Type: ArgString, Required: true, Description: "JQL query string"},
				{Name: "max_results", Type: ArgInteger, Description: "Maximum number of results to return", DefaultInt: &maxResults},
			},
			Handle: handleSearchIssues,
		},
		{
			Name:        ToolJiraGetIssue,
			Description: "Get details of a specific Jira issue",
			Args: []ArgSpec{
				{Name: "issue_key", Type: ArgString, Required: true, Description: "Issue key (e.g., PROJ-123)"},
			},
			Handle: handleGetIssue,
		},
		{
			Name:        ToolJiraCreateIssue,
			Description: "Create a new Jira issue",
			Args: []ArgSpec{
				{Name: "project_key", Type: ArgString, Required: true, Description: "Project key"},
				{Name: "summary", Type: ArgString, Required: true, Description: "Issue summary"},
				{Name: "description", Type: ArgString, Description: "Issue description"},
				{Name: "issue_type", Type: ArgString, Description: "Issue type (e.g., Bug, Task, Story)", DefaultString: "Task"},
				{Name: "priority", Type: ArgString, Description: "Priority (e.g., High, Medium, Low)"},
				{Name: "assignee", Type: ArgString, Description: "Assignee username"},
			},
			Handle: handleCreateIssue,
		},
		{
			Name:        ToolJiraUpdateIssue,
			Description: "Update an existing Jira issue",
			Args: []ArgSpec{
				{Name: "issue_key", Type: ArgString, Required: true, Description: "Issue key (e.g., PROJ-123)"},
				{Name: "fields", Type: ArgObject, Required: true, Description: "Fields to update", Properties: map[string]any{
					"summary":     map[string]any{"type": "string"},
					"description": map[string]any{"type": "string"},
					"priority":    map[string]any{"type": "string"},
					"assignee":    map[string]any{"type": "string"},
				}},
			},
			Handle: handleUpdateIssue,
		},
		{
			Name:        ToolJiraAddComment,
			Description: "Add a comment to a Jira issue",
			Args: []ArgSpec{
				{Name: "issue_key", Type: ArgString, Required: true, Description: "Issue key (e.g., PROJ-123)"},
				{Name: "comment", Type: ArgString, Required: true, Description: "Comment text"},
			},
			Handle: handleAddComment,
		},
		{
			Name:        ToolJiraTransitionIssue,
			Description: "Transition a Jira issue to a different status",
			Args: []ArgSpec{
				{Name: "issue_key", Type: ArgString, Required: true, Description: "Issue key (e.g., PROJ-123)"},
				{Name: "status", Type: ArgString, Required: true, Description: "Target status (e.g., In Progress, Done)"},
			},
			Handle: handleTransitionIssue,
		},
		{
			Name:        ToolJiraGetProjects,
			Description: "Get list of Jira projects",
			Args:        []ArgSpec{},
			Handle:      handleGetProjects,
		},
	}
}

// searchIssuesArgs are the validated arguments of jira_search_issues.
type searchIssuesArgs struct {
	JQL        string
	MaxResults int
}

func handleSearchIssues(ctx context.Context, client JiraService, args Arguments) (string, error) {
	p := searchIssuesArgs{
		JQL:        args.String("jql"),
		MaxResults: args.Int("max_results", defaultSearchLimit),
	}

	results, err := client.SearchIssues(ctx, p.JQL, p.MaxResults)
	if err != nil {
		return "", err
	}

	summaries := make([]domain.IssueSummary, 0, len(results.Issues))
	for _, issue := range results.Issues {
		summaries = append(summaries, domain.SummarizeIssue(issue))
	}

	return renderJSON(summaries)
}

// getIssueArgs are the validated arguments of jira_get_issue.
type getIssueArgs struct {
	IssueKey string
}

func handleGetIssue(ctx context.Context, client JiraService, args Arguments) (string, error) {
	p := getIssueArgs{IssueKey: args.String("issue_key")}

	issue, err := client.GetIssue(ctx, p.IssueKey)
	if err != nil {
		return "", err
	}

	return renderJSON(domain.DetailIssue(*issue))
}

// createIssueArgs are the validated arguments of jira_create_issue.
type createIssueArgs struct {
	ProjectKey  string
	Summary     string
	Description string
	IssueType   string
	Priority    string
	Assignee    string
}

func handleCreateIssue(ctx context.Context, client JiraService, args Arguments) (string, error) {
	p := createIssueArgs{
		ProjectKey:  args.String("project_key"),
		Summary:     args.String("summary"),
		Description: args.String("description"),
		IssueType:   args.StringOr("issue_type", "Task"),
		Priority:    args.String("priority"),
		Assignee:    args.String("assignee"),
	}

	req := &domain.IssueCreate{
		Fields: domain.IssueCreateFields{
			Project:     domain.ProjectRef{Key: p.ProjectKey},
			Summary:     p.Summary,
			Description: p.Description,
			IssueType:   domain.NameRef{Name: p.IssueType},
		},
	}
	if p.Priority != "" {
		req.Fields.Priority = &domain.NameRef{Name: p.Priority}
	}
	if p.Assignee != "" {
		req.Fields.Assignee = &domain.UserRef{Name: p.Assignee}
	}

	issue, err := client.CreateIssue(ctx, req)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("Created issue: %s\nURL: %s", issue.Key, issue.Self), nil
}

// updateIssueArgs are the validated arguments of jira_update_issue.
type updateIssueArgs struct {
	IssueKey    string
	Summary     string
	Description string
	Priority    string
	Assignee    string
}

func bindUpdateIssueArgs(args Arguments) updateIssueArgs {
	fields := Arguments(args.Object("fields"))
	return updateIssueArgs{
		IssueKey:    args.String("issue_key"),
		Summary:     fields.String("summary"),
		Description: fields.String("description"),
		Priority:    fields.String("priority"),
		Assignee:    fields.String("assignee"),
	}
}

func handleUpdateIssue(ctx context.Context, client JiraService, args Arguments) (string, error) {
	p := bindUpdateIssueArgs(args)

	req := &domain.IssueUpdate{
		Fields: domain.IssueUpdateFields{
			Summary:     p.Summary,
			Description: p.Description,
		},
	}
	if p.Priority != "" {
		req.Fields.Priority = &domain.NameRef{Name: p.Priority}
	}
	if p.Assignee != "" {
		req.Fields.Assignee = &domain.UserRef{Name: p.Assignee}
	}

	if err := client.UpdateIssue(ctx, p.IssueKey, req); err != nil {
		return "", err
	}

	return "Updated issue: " + p.IssueKey, nil
}

// addCommentArgs are the validated arguments of jira_add_comment.
type addCommentArgs struct {
	IssueKey string
	Comment  string
}

func handleAddComment(ctx context.Context, client JiraService, args Arguments) (string, error) {
	p := addCommentArgs{
		IssueKey: args.String("issue_key"),
		Comment:  args.String("comment"),
	}

	if err := client.AddComment(ctx, p.IssueKey, p.Comment); err != nil {
		return "", err
	}

	return "Added comment to issue: " + p.IssueKey, nil
}

// transitionIssueArgs are the validated arguments of jira_transition_issue.
type transitionIssueArgs struct {
	IssueKey string
	Status   string
}

func handleTransitionIssue(ctx context.Context, client JiraService, args Arguments) (string, error) {
	p := transitionIssueArgs{
		IssueKey: args.String("issue_key"),
		Status:   args.String("status"),
	}

	transitions, err := client.GetTransitions(ctx, p.IssueKey)
	if err != nil {
		return "", err
	}

	// Match the requested status against transition destinations, not
	// transition names: workflows often name the two differently.
	var transitionID string
	for _, t := range transitions {
		if strings.EqualFold(t.To.Name, p.Status) {
			transitionID = t.ID
			break
		}
	}

	if transitionID == "" {
		available := make([]string, 0, len(transitions))
		for _, t := range transitions {
			available = append(available, t.To.Name)
		}
		return "", fmt.Errorf("cannot transition %s to %q: available statuses: %s",
			p.IssueKey, p.Status, strings.Join(available, ", "))
	}

	if err := client.DoTransition(ctx, p.IssueKey, transitionID); err != nil {
		return "", err
	}

	return fmt.Sprintf("Transitioned issue %s to status: %s", p.IssueKey, p.Status), nil
}

func handleGetProjects(ctx context.Context, client JiraService, _ Arguments) (string, error) {
	projects, err := client.ListProjects(ctx)
	if err != nil {
		return "", err
	}

	summaries := make([]domain.ProjectSummary, 0, len(projects))
	for _, project := range projects {
		summaries = append(summaries, domain.SummarizeProject(project))
	}

	return renderJSON(summaries)
}
