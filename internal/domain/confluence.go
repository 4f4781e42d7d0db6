package domain

import "encoding/json"

// ConfluencePage is the raw content entity as returned by the Confluence
// REST API. Space, Body and Version are only populated when the request
// expands them.
type ConfluencePage struct {
	ID      json.Number       `json:"id"`
	Type    string            `json:"type"`
	Title   string            `json:"title"`
	Space   *Space            `json:"space,omitempty"`
	Body    *Body             `json:"body,omitempty"`
	Version *Version          `json:"version,omitempty"`
	Links   map[string]string `json:"_links,omitempty"`
}

// Space represents a Confluence space.
type Space struct {
	ID   json.Number `json:"id"`
	Key  string      `json:"key"`
	Name string      `json:"name"`
	Type string      `json:"type"`
}

// Body holds the body content of a page.
type Body struct {
	Storage Storage `json:"storage"`
}

// Storage is page content in storage (XHTML) representation.
type Storage struct {
	Value          string `json:"value"`
	Representation string `json:"representation"`
}

// Version holds the version information of a page.
type Version struct {
	Number  int             `json:"number"`
	When    string          `json:"when"`
	By      *ConfluenceUser `json:"by,omitempty"`
	Message string          `json:"message,omitempty"`
}

// ConfluenceUser represents a Confluence user.
type ConfluenceUser struct {
	Username    string `json:"username"`
	DisplayName string `json:"displayName"`
}

// PageCreate is the request body for creating a new page.
type PageCreate struct {
	Type      string        `json:"type"`
	Title     string        `json:"title"`
	Space     SpaceRef      `json:"space"`
	Body      BodyCreate    `json:"body"`
	Ancestors []AncestorRef `json:"ancestors,omitempty"`
}

// SpaceRef is a by-key space reference used in create operations.
type SpaceRef struct {
	Key string `json:"key"`
}

// AncestorRef places a new page under a parent page.
type AncestorRef struct {
	ID string `json:"id"`
}

// BodyCreate is the body payload for create/update operations.
type BodyCreate struct {
	Storage Storage `json:"storage"`
}

// PageUpdate is the request body for updating an existing page.
type PageUpdate struct {
	Type    string        `json:"type"`
	Title   string        `json:"title"`
	Body    BodyCreate    `json:"body"`
	Version VersionUpdate `json:"version"`
}

// VersionUpdate carries the next version number and an optional comment.
type VersionUpdate struct {
	Number  int    `json:"number"`
	Message string `json:"message,omitempty"`
}

// Attachment is the raw attachment entity returned by an upload.
type Attachment struct {
	ID    json.Number `json:"id"`
	Title string      `json:"title"`
}

// PageSummary is the normalized projection of a page in search results.
type PageSummary struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Type  string `json:"type"`
	Space string `json:"space"`
	URL   string `json:"url"`
}

// PageDetail is the normalized projection of a single page.
type PageDetail struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Space       string `json:"space"`
	Version     int    `json:"version"`
	CreatedBy   string `json:"created_by"`
	CreatedDate string `json:"created_date"`
	URL         string `json:"url"`
	Content     string `json:"content,omitempty"`
}

// SpaceSummary is the normalized projection of a space.
type SpaceSummary struct {
	Key  string `json:"key"`
	Name string `json:"name"`
	ID   string `json:"id"`
	Type string `json:"type"`
}

// ChildPage is the normalized projection of a child page.
type ChildPage struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	URL   string `json:"url"`
}

// WebURL resolves a page's webui link against the instance base URL.
// Returns the empty string when the payload carries no link.
func (p *ConfluencePage) WebURL(baseURL string) string {
	if p.Links == nil || p.Links["webui"] == "" {
		return ""
	}
	return baseURL + p.Links["webui"]
}

// SummarizePage projects a raw page onto the search-result contract.
func SummarizePage(page ConfluencePage, baseURL string) PageSummary {
	summary := PageSummary{
		ID:    page.ID.String(),
		Title: page.Title,
		Type:  page.Type,
		URL:   page.WebURL(baseURL),
	}
	if page.Space != nil {
		summary.Space = page.Space.Key
	}
	return summary
}

// DetailPage projects a raw page onto the single-page contract.
func DetailPage(page ConfluencePage, baseURL string) PageDetail {
	detail := PageDetail{
		ID:    page.ID.String(),
		Title: page.Title,
		URL:   page.WebURL(baseURL),
	}
	if page.Space != nil {
		detail.Space = page.Space.Key
	}
	if page.Version != nil {
		detail.Version = page.Version.Number
		detail.CreatedDate = page.Version.When
		if page.Version.By != nil {
			detail.CreatedBy = page.Version.By.DisplayName
		}
	}
	if page.Body != nil {
		detail.Content = page.Body.Storage.Value
	}
	return detail
}

// SummarizeSpace projects a raw space onto the space-list contract.
func SummarizeSpace(space Space) SpaceSummary {
	return SpaceSummary{
		Key:  space.Key,
		Name: space.Name,
		ID:   space.ID.String(),
		Type: space.Type,
	}
}

// SummarizeChild projects a raw page onto the child-page contract.
func SummarizeChild(page ConfluencePage, baseURL string) ChildPage {
	return ChildPage{
		ID:    page.ID.String(),
		Title: page.Title,
		URL:   page.WebURL(baseURL),
	}
}
