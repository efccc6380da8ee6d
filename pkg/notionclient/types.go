/**
 * @description
 * Request and response models for the subset of the Notion REST API used by
 * the budget API: database queries, page retrieval, page creation and page
 * updates (including archiving).
 */
package notionclient

import (
	"strings"
	"time"
)

// Property types returned by Notion that the projections understand.
const (
	PropertyTypeTitle       = "title"
	PropertyTypeRichText    = "rich_text"
	PropertyTypeNumber      = "number"
	PropertyTypeSelect      = "select"
	PropertyTypeStatus      = "status"
	PropertyTypeMultiSelect = "multi_select"
	PropertyTypeDate        = "date"
	PropertyTypeCheckbox    = "checkbox"
	PropertyTypeURL         = "url"
	PropertyTypeEmail       = "email"
	PropertyTypeRelation    = "relation"
)

// Parent identifies the database (or page) a page belongs to.
type Parent struct {
	Type       string `json:"type,omitempty"`
	DatabaseID string `json:"database_id,omitempty"`
	PageID     string `json:"page_id,omitempty"`
}

// Page is a single Notion record.
type Page struct {
	Object         string              `json:"object"`
	ID             string              `json:"id"`
	CreatedTime    time.Time           `json:"created_time"`
	LastEditedTime time.Time           `json:"last_edited_time"`
	Archived       bool                `json:"archived"`
	URL            string              `json:"url,omitempty"`
	Parent         Parent              `json:"parent"`
	Properties     map[string]Property `json:"properties"`
}

// Property is a typed page field. Only the member matching Type is populated.
type Property struct {
	ID          string         `json:"id,omitempty"`
	Type        string         `json:"type,omitempty"`
	Title       []RichText     `json:"title,omitempty"`
	RichText    []RichText     `json:"rich_text,omitempty"`
	Number      *float64       `json:"number,omitempty"`
	Select      *SelectOption  `json:"select,omitempty"`
	Status      *SelectOption  `json:"status,omitempty"`
	MultiSelect []SelectOption `json:"multi_select,omitempty"`
	Date        *DateValue     `json:"date,omitempty"`
	Checkbox    *bool          `json:"checkbox,omitempty"`
	URL         *string        `json:"url,omitempty"`
	Email       *string        `json:"email,omitempty"`
	Relation    []Relation     `json:"relation,omitempty"`
}

// RichText is one run of formatted text.
type RichText struct {
	Type      string `json:"type,omitempty"`
	Text      *Text  `json:"text,omitempty"`
	PlainText string `json:"plain_text,omitempty"`
}

// Text is the writable content of a rich text run.
type Text struct {
	Content string `json:"content"`
}

// SelectOption is a select, status or multi-select value.
type SelectOption struct {
	ID    string `json:"id,omitempty"`
	Name  string `json:"name"`
	Color string `json:"color,omitempty"`
}

// DateValue is a date or date range.
type DateValue struct {
	Start string  `json:"start"`
	End   *string `json:"end,omitempty"`
}

// Relation references another page.
type Relation struct {
	ID string `json:"id"`
}

// Database is the metadata of a Notion database.
type Database struct {
	Object string     `json:"object"`
	ID     string     `json:"id"`
	Title  []RichText `json:"title"`
}

// QueryRequest is the body of a database query.
type QueryRequest struct {
	Filter      map[string]interface{}   `json:"filter,omitempty"`
	Sorts       []map[string]interface{} `json:"sorts,omitempty"`
	StartCursor string                   `json:"start_cursor,omitempty"`
	PageSize    int                      `json:"page_size,omitempty"`
}

// QueryResponse is one page of database query results.
type QueryResponse struct {
	Object     string  `json:"object"`
	Results    []Page  `json:"results"`
	HasMore    bool    `json:"has_more"`
	NextCursor *string `json:"next_cursor"`
}

// CreatePageRequest creates a page inside a database.
type CreatePageRequest struct {
	Parent     Parent              `json:"parent"`
	Properties map[string]Property `json:"properties"`
}

// UpdatePageRequest updates page properties or archives the page.
type UpdatePageRequest struct {
	Properties map[string]Property `json:"properties,omitempty"`
	Archived   *bool               `json:"archived,omitempty"`
}

// TitleValue builds a writable title property.
func TitleValue(content string) Property {
	return Property{Title: []RichText{{Type: "text", Text: &Text{Content: content}}}}
}

// RichTextValue builds a writable rich text property.
func RichTextValue(content string) Property {
	return Property{RichText: []RichText{{Type: "text", Text: &Text{Content: content}}}}
}

// PlainText concatenates the plain text of a rich text slice.
func PlainText(runs []RichText) string {
	var b strings.Builder
	for _, r := range runs {
		if r.PlainText != "" {
			b.WriteString(r.PlainText)
		} else if r.Text != nil {
			b.WriteString(r.Text.Content)
		}
	}
	return b.String()
}

// IsValidID reports whether id has the shape of a Notion identifier:
// 32 hexadecimal characters once hyphens are removed.
func IsValidID(id string) bool {
	normalized := NormalizeID(id)
	if len(normalized) != 32 {
		return false
	}
	for _, r := range normalized {
		if (r < '0' || r > '9') && (r < 'a' || r > 'f') {
			return false
		}
	}
	return true
}

// NormalizeID strips hyphens and lowercases a Notion identifier so ids with
// and without dashes compare equal.
func NormalizeID(id string) string {
	return strings.ToLower(strings.ReplaceAll(id, "-", ""))
}
