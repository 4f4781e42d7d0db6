package domain

import (
	"encoding/json"
	"fmt"
)

// FlexibleID unmarshals both string and numeric IDs. Jira Server returns
// numeric IDs in some payloads where Cloud returns strings.
type FlexibleID string

// UnmarshalJSON implements custom unmarshaling to handle both string and numeric IDs.
func (f *FlexibleID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = FlexibleID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		*f = FlexibleID(n.String())
		return nil
	}

	return fmt.Errorf("id must be a string or number")
}

// String returns the string representation of the ID.
func (f FlexibleID) String() string {
	return string(f)
}

// JiraIssue is the raw issue entity as returned by the Jira REST API.
// Only the fields the tools project are decoded.
type JiraIssue struct {
	ID     FlexibleID `json:"id"`
	Key    string     `json:"key"`
	Self   string     `json:"self"`
	Fields JiraFields `json:"fields"`
}

// JiraFields contains the field data for a Jira issue.
type JiraFields struct {
	Summary     string    `json:"summary"`
	Description string    `json:"description"`
	IssueType   NamedRef  `json:"issuetype"`
	Project     Project   `json:"project"`
	Status      NamedRef  `json:"status"`
	Priority    *NamedRef `json:"priority,omitempty"`
	Assignee    *JiraUser `json:"assignee,omitempty"`
	Reporter    *JiraUser `json:"reporter,omitempty"`
	Created     string    `json:"created"`
	Updated     string    `json:"updated"`
}

// NamedRef is an id/name pair used for issue types, statuses and priorities.
type NamedRef struct {
	ID   FlexibleID `json:"id"`
	Name string     `json:"name"`
}

// Project represents a Jira project.
type Project struct {
	ID   FlexibleID `json:"id"`
	Key  string     `json:"key"`
	Name string     `json:"name"`
}

// JiraUser represents a Jira user.
type JiraUser struct {
	Name         string `json:"name"`
	DisplayName  string `json:"displayName"`
	EmailAddress string `json:"emailAddress"`
}

// JiraSearchResults is the raw payload of a JQL search page.
type JiraSearchResults struct {
	Issues     []JiraIssue `json:"issues"`
	Total      int         `json:"total"`
	StartAt    int         `json:"startAt"`
	MaxResults int         `json:"maxResults"`
}

// IssueCreate is the request body for creating a new issue.
type IssueCreate struct {
	Fields IssueCreateFields `json:"fields"`
}

// IssueCreateFields contains the fields set on issue creation.
type IssueCreateFields struct {
	Project     ProjectRef `json:"project"`
	Summary     string     `json:"summary"`
	Description string     `json:"description,omitempty"`
	IssueType   NameRef    `json:"issuetype"`
	Priority    *NameRef   `json:"priority,omitempty"`
	Assignee    *UserRef   `json:"assignee,omitempty"`
}

// IssueUpdate is the request body for updating issue fields.
type IssueUpdate struct {
	Fields IssueUpdateFields `json:"fields"`
}

// IssueUpdateFields contains the fields that the update tool can change.
type IssueUpdateFields struct {
	Summary     string   `json:"summary,omitempty"`
	Description string   `json:"description,omitempty"`
	Priority    *NameRef `json:"priority,omitempty"`
	Assignee    *UserRef `json:"assignee,omitempty"`
}

// NameRef is a by-name reference used in create/update operations.
type NameRef struct {
	Name string `json:"name"`
}

// ProjectRef is a by-key project reference used in create operations.
type ProjectRef struct {
	Key string `json:"key"`
}

// UserRef is a by-name user reference used in create/update operations.
type UserRef struct {
	Name string `json:"name"`
}

// Transition is one workflow transition available on an issue, with the
// status it leads to.
type Transition struct {
	ID   string   `json:"id"`
	Name string   `json:"name"`
	To   NamedRef `json:"to"`
}

// TransitionRequest is the request body for performing a transition.
type TransitionRequest struct {
	Transition IDRef `json:"transition"`
}

// IDRef is a by-id reference used in transition requests.
type IDRef struct {
	ID string `json:"id"`
}

// CommentCreate is the request body for adding a comment.
type CommentCreate struct {
	Body string `json:"body"`
}

// IssueSummary is the normalized projection of an issue returned by search
// tools: only the fields the tool contract promises, not the raw payload.
type IssueSummary struct {
	Key      string `json:"key"`
	Summary  string `json:"summary"`
	Status   string `json:"status"`
	Assignee string `json:"assignee"`
	Priority string `json:"priority"`
	Created  string `json:"created"`
	Updated  string `json:"updated"`
}

// IssueDetail is the normalized projection of a single issue.
type IssueDetail struct {
	Key         string `json:"key"`
	Summary     string `json:"summary"`
	Description string `json:"description"`
	Status      string `json:"status"`
	Assignee    string `json:"assignee,omitempty"`
	Reporter    string `json:"reporter"`
	Created     string `json:"created"`
	Updated     string `json:"updated"`
	Priority    string `json:"priority,omitempty"`
	IssueType   string `json:"issue_type"`
	Project     string `json:"project"`
}

// ProjectSummary is the normalized projection of a project.
type ProjectSummary struct {
	Key  string `json:"key"`
	Name string `json:"name"`
	ID   string `json:"id"`
}

// SummarizeIssue projects a raw issue onto the search-result contract.
// Unassigned issues surface as "Unassigned" rather than an empty field.
func SummarizeIssue(issue JiraIssue) IssueSummary {
	summary := IssueSummary{
		Key:      issue.Key,
		Summary:  issue.Fields.Summary,
		Status:   issue.Fields.Status.Name,
		Assignee: "Unassigned",
		Created:  issue.Fields.Created,
		Updated:  issue.Fields.Updated,
	}
	if issue.Fields.Assignee != nil {
		summary.Assignee = issue.Fields.Assignee.DisplayName
	}
	if issue.Fields.Priority != nil {
		summary.Priority = issue.Fields.Priority.Name
	}
	return summary
}

// DetailIssue projects a raw issue onto the single-issue contract.
func DetailIssue(issue JiraIssue) IssueDetail {
	detail := IssueDetail{
		Key:         issue.Key,
		Summary:     issue.Fields.Summary,
		Description: issue.Fields.Description,
		Status:      issue.Fields.Status.Name,
		Created:     issue.Fields.Created,
		Updated:     issue.Fields.Updated,
		IssueType:   issue.Fields.IssueType.Name,
		Project:     issue.Fields.Project.Key,
	}
	if issue.Fields.Assignee != nil {
		detail.Assignee = issue.Fields.Assignee.DisplayName
	}
	if issue.Fields.Reporter != nil {
		detail.Reporter = issue.Fields.Reporter.DisplayName
	}
	if issue.Fields.Priority != nil {
		detail.Priority = issue.Fields.Priority.Name
	}
	return detail
}

// SummarizeProject projects a raw project onto the project-list contract.
func SummarizeProject(project Project) ProjectSummary {
	return ProjectSummary{
		Key:  project.Key,
		Name: project.Name,
		ID:   project.ID.String(),
	}
}
