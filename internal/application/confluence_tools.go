package application

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"atlassian-mcp/internal/domain"
)

// ConfluenceService is the backend surface the Confluence tools dispatch
// to. BaseURL is exposed so handlers can resolve webui links into absolute
// URLs for the normalized projections.
type ConfluenceService interface {
	BaseURL() string
	SearchContent(ctx context.Context, cql string, limit int) ([]domain.ConfluencePage, error)
	GetPage(ctx context.Context, pageID, expand string) (*domain.ConfluencePage, error)
	CreatePage(ctx context.Context, req *domain.PageCreate) (*domain.ConfluencePage, error)
	UpdatePage(ctx context.Context, pageID string, req *domain.PageUpdate) (*domain.ConfluencePage, error)
	DeletePage(ctx context.Context, pageID string) error
	ListSpaces(ctx context.Context, limit int) ([]domain.Space, error)
	GetPageChildren(ctx context.Context, pageID string, limit int) ([]domain.ConfluencePage, error)
	AttachFile(ctx context.Context, pageID, filePath, comment string) (*domain.Attachment, error)
}

// Tool name constants for Confluence operations.
const (
	ToolConfluenceSearchContent   = "confluence_search_content"
	ToolConfluenceGetPage         = "confluence_get_page"
	ToolConfluenceCreatePage      = "confluence_create_page"
	ToolConfluenceUpdatePage      = "confluence_update_page"
	ToolConfluenceDeletePage      = "confluence_delete_page"
	ToolConfluenceGetSpaces       = "confluence_get_spaces"
	ToolConfluenceGetPageChildren = "confluence_get_page_children"
	ToolConfluenceAddAttachment   = "confluence_add_attachment"
)

// defaultContentLimit bounds searches and listings when the caller gives
// no limit.
const defaultContentLimit = 25

// defaultPageExpand is what confluence_get_page expands unless told
// otherwise.
const defaultPageExpand = "body.storage,version"

// ConfluenceTools returns the static Confluence tool registry in
// advertisement order.
func ConfluenceTools() []Tool[ConfluenceService] {
	limit := defaultContentLimit
	return []Tool[ConfluenceService]{
		{
			Name:        ToolConfluenceSearchContent,
			Description: "Search for Confluence content using CQL",
			Args: []ArgSpec{
				{Name: "cql", Type: ArgString, Required: true, Description: "CQL query string"},
				{Name: "limit", Type: ArgInteger, Description: "Maximum number of results to return", DefaultInt: &limit},
			},
			Handle: handleSearchContent,
		},
		{
			Name:        ToolConfluenceGetPage,
			Description: "Get a Confluence page by ID",
			Args: []ArgSpec{
				{Name: "page_id", Type: ArgString, Required: true, Description: "Page ID"},
				{Name: "expand", Type: ArgString, Description: "Properties to expand (e.g., body.storage,version)", DefaultString: defaultPageExpand},
			},
			Handle: handleGetPage,
		},
		{
			Name:        ToolConfluenceCreatePage,
			Description: "Create a new Confluence page",
			Args: []ArgSpec{
				{Name: "space_key", Type: ArgString, Required: true, Description: "Space key where the page will be created"},
				{Name: "title", Type: ArgString, Required: true, Description: "Page title"},
				{Name: "content", Type: ArgString, Required: true, Description: "Page content in storage format (HTML)"},
				{Name: "parent_id", Type: ArgString, Description: "Parent page ID (optional)"},
			},
			Handle: handleCreatePage,
		},
		{
			Name:        ToolConfluenceUpdatePage,
			Description: "Update an existing Confluence page",
			Args: []ArgSpec{
				{Name: "page_id", Type: ArgString, Required: true, Description: "Page ID"},
				{Name: "content", Type: ArgString, Required: true, Description: "New page content in storage format (HTML)"},
				{Name: "title", Type: ArgString, Description: "New page title"},
				{Name: "version_comment", Type: ArgString, Description: "Comment for this version", DefaultString: "Updated via MCP"},
			},
			Handle: handleUpdatePage,
		},
		{
			Name:        ToolConfluenceDeletePage,
			Description: "Delete a Confluence page",
			Args: []ArgSpec{
				{Name: "page_id", Type: ArgString, Required: true, Description: "Page ID to delete"},
			},
			Handle: handleDeletePage,
		},
		{
			Name:        ToolConfluenceGetSpaces,
			Description: "Get list of Confluence spaces",
			Args: []ArgSpec{
				{Name: "limit", Type: ArgInteger, Description: "Maximum number of spaces to return", DefaultInt: &limit},
			},
			Handle: handleGetSpaces,
		},
		{
			Name:        ToolConfluenceGetPageChildren,
			Description: "Get child pages of a specific page",
			Args: []ArgSpec{
				{Name: "page_id", Type: ArgString, Required: true, Description: "Parent page ID"},
				{Name: "limit", Type: ArgInteger, Description: "Maximum number of children to return", DefaultInt: &limit},
			},
			Handle: handleGetPageChildren,
		},
		{
			Name:        ToolConfluenceAddAttachment,
			Description: "Add an attachment to a Confluence page",
			Args: []ArgSpec{
				{Name: "page_id", Type: ArgString, Required: true, Description: "Page ID"},
				{Name: "file_path", Type: ArgString, Required: true, Description: "Path to the file to attach"},
				{Name: "comment", Type: ArgString, Description: "Comment for the attachment"},
			},
			Handle: handleAddAttachment,
		},
	}
}

// searchContentArgs are the validated arguments of confluence_search_content.
type searchContentArgs struct {
	CQL   string
	Limit int
}

func handleSearchContent(ctx context.Context, client ConfluenceService, args Arguments) (string, error) {
	p := searchContentArgs{
		CQL:   args.String("cql"),
		Limit: args.Int("limit", defaultContentLimit),
	}

	pages, err := client.SearchContent(ctx, p.CQL, p.Limit)
	if err != nil {
		return "", err
	}

	summaries := make([]domain.PageSummary, 0, len(pages))
	for _, page := range pages {
		summaries = append(summaries, domain.SummarizePage(page, client.BaseURL()))
	}

	return renderJSON(summaries)
}

// getPageArgs are the validated arguments of confluence_get_page.
type getPageArgs struct {
	PageID string
	Expand string
}

func handleGetPage(ctx context.Context, client ConfluenceService, args Arguments) (string, error) {
	p := getPageArgs{
		PageID: args.String("page_id"),
		Expand: args.StringOr("expand", defaultPageExpand),
	}

	page, err := client.GetPage(ctx, p.PageID, p.Expand)
	if err != nil {
		return "", err
	}

	return renderJSON(domain.DetailPage(*page, client.BaseURL()))
}

// createPageArgs are the validated arguments of confluence_create_page.
type createPageArgs struct {
	SpaceKey string
	Title    string
	Content  string
	ParentID string
}

func handleCreatePage(ctx context.Context, client ConfluenceService, args Arguments) (string, error) {
	p := createPageArgs{
		SpaceKey: args.String("space_key"),
		Title:    args.String("title"),
		Content:  args.String("content"),
		ParentID: args.String("parent_id"),
	}

	req := &domain.PageCreate{
		Type:  "page",
		Title: p.Title,
		Space: domain.SpaceRef{Key: p.SpaceKey},
		Body: domain.BodyCreate{
			Storage: domain.Storage{Value: p.Content, Representation: "storage"},
		},
	}
	if p.ParentID != "" {
		req.Ancestors = []domain.AncestorRef{{ID: p.ParentID}}
	}

	page, err := client.CreatePage(ctx, req)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("Created page: %s\nID: %s\nURL: %s",
		page.Title, page.ID.String(), page.WebURL(client.BaseURL())), nil
}

// updatePageArgs are the validated arguments of confluence_update_page.
type updatePageArgs struct {
	PageID         string
	Content        string
	Title          string
	VersionComment string
}

func handleUpdatePage(ctx context.Context, client ConfluenceService, args Arguments) (string, error) {
	p := updatePageArgs{
		PageID:         args.String("page_id"),
		Content:        args.String("content"),
		Title:          args.String("title"),
		VersionComment: args.StringOr("version_comment", "Updated via MCP"),
	}

	// The update endpoint needs the current title and version number.
	current, err := client.GetPage(ctx, p.PageID, "version")
	if err != nil {
		return "", err
	}

	title := p.Title
	if title == "" {
		title = current.Title
	}
	nextVersion := 1
	if current.Version != nil {
		nextVersion = current.Version.Number + 1
	}

	req := &domain.PageUpdate{
		Type:  "page",
		Title: title,
		Body: domain.BodyCreate{
			Storage: domain.Storage{Value: p.Content, Representation: "storage"},
		},
		Version: domain.VersionUpdate{Number: nextVersion, Message: p.VersionComment},
	}

	updated, err := client.UpdatePage(ctx, p.PageID, req)
	if err != nil {
		return "", err
	}

	version := nextVersion
	if updated.Version != nil {
		version = updated.Version.Number
	}

	return fmt.Sprintf("Updated page: %s\nVersion: %d", updated.Title, version), nil
}

// deletePageArgs are the validated arguments of confluence_delete_page.
type deletePageArgs struct {
	PageID string
}

func handleDeletePage(ctx context.Context, client ConfluenceService, args Arguments) (string, error) {
	p := deletePageArgs{PageID: args.String("page_id")}

	if err := client.DeletePage(ctx, p.PageID); err != nil {
		return "", err
	}

	return "Deleted page with ID: " + p.PageID, nil
}

// getSpacesArgs are the validated arguments of confluence_get_spaces.
type getSpacesArgs struct {
	Limit int
}

func handleGetSpaces(ctx context.Context, client ConfluenceService, args Arguments) (string, error) {
	p := getSpacesArgs{Limit: args.Int("limit", defaultContentLimit)}

	spaces, err := client.ListSpaces(ctx, p.Limit)
	if err != nil {
		return "", err
	}

	summaries := make([]domain.SpaceSummary, 0, len(spaces))
	for _, space := range spaces {
		summaries = append(summaries, domain.SummarizeSpace(space))
	}

	return renderJSON(summaries)
}

// getPageChildrenArgs are the validated arguments of confluence_get_page_children.
type getPageChildrenArgs struct {
	PageID string
	Limit  int
}

func handleGetPageChildren(ctx context.Context, client ConfluenceService, args Arguments) (string, error) {
	p := getPageChildrenArgs{
		PageID: args.String("page_id"),
		Limit:  args.Int("limit", defaultContentLimit),
	}

	children, err := client.GetPageChildren(ctx, p.PageID, p.Limit)
	if err != nil {
		return "", err
	}

	summaries := make([]domain.ChildPage, 0, len(children))
	for _, child := range children {
		summaries = append(summaries, domain.SummarizeChild(child, client.BaseURL()))
	}

	return renderJSON(summaries)
}

// addAttachmentArgs are the validated arguments of confluence_add_attachment.
type addAttachmentArgs struct {
	PageID   string
	FilePath string
	Comment  string
}

func handleAddAttachment(ctx context.Context, client ConfluenceService, args Arguments) (string, error) {
	p := addAttachmentArgs{
		PageID:   args.String("page_id"),
		FilePath: args.String("file_path"),
		Comment:  args.String("comment"),
	}

	if _, err := os.Stat(p.FilePath); err != nil {
		return "", fmt.Errorf("file not found: %s", p.FilePath)
	}

	if _, err := client.AttachFile(ctx, p.PageID, p.FilePath, p.Comment); err != nil {
		return "", err
	}

	return fmt.Sprintf("Attached file: %s to page %s", filepath.Base(p.FilePath), p.PageID), nil
}
