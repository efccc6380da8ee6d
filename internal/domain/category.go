/**
 * @description
 * This file defines the core domain models for the budget API. Categories
 * are the only entity with write support; accounts and transactions are
 * exposed through the generic Record projection.
 */
package domain

import "time"

// CategoryCodePrefix prefixes every human-readable category code (CAT-001).
const CategoryCodePrefix = "CAT-"

// UnnamedCategory is shown when a category page has an empty title.
const UnnamedCategory = "Unnamed Category"

// Category is a spending category stored as a page in the categories database.
type Category struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	CategoryID *string `json:"categoryId"` // nil when the page carries no code
}

// CategoryInput carries the user-editable fields of a category.
type CategoryInput struct {
	Name string `json:"name"`
}

// Record is a read-only projection of an account or transaction page.
type Record struct {
	ID             string                 `json:"id"`
	Name           string                 `json:"name"`
	CreatedTime    time.Time              `json:"createdTime"`
	LastEditedTime time.Time              `json:"lastEditedTime"`
	Fields         map[string]interface{} `json:"fields"`
}

// CollectionStatus reports whether a configured collection is reachable.
type CollectionStatus struct {
	Collection string `json:"collection"`
	DatabaseID string `json:"databaseId"`
	Reachable  bool   `json:"reachable"`
}
