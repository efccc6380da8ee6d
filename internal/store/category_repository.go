/**
 * @description
 * This file implements the data access layer for categories. Each category
 * is a page in the categories database with a title property ("Name") and a
 * rich text property ("Category ID") holding the human-readable code.
 */
package store

import (
	"context"

	"github.com/chrystalio/budget-buddy-api/internal/domain"
	"github.com/chrystalio/budget-buddy-api/pkg/notionclient"
)

// Property names of the categories database.
const (
	categoryNameProperty = "Name"
	categoryCodeProperty = "Category ID"
)

const categoryEntity = "Category"

// CategoryRepository handles Notion operations for categories.
type CategoryRepository struct {
	client     DocumentStore
	databaseID string
}

// NewCategoryRepository creates a new repository over the given database.
func NewCategoryRepository(client DocumentStore, databaseID string) *CategoryRepository {
	return &CategoryRepository{client: client, databaseID: databaseID}
}

// mapPageToCategory projects a Notion page onto a Category.
func mapPageToCategory(page notionclient.Page) domain.Category {
	name := notionclient.PlainText(page.Properties[categoryNameProperty].Title)
	if name == "" {
		name = domain.UnnamedCategory
	}

	var code *string
	if c := notionclient.PlainText(page.Properties[categoryCodeProperty].RichText); c != "" {
		code = &c
	}

	return domain.Category{
		ID:         page.ID,
		Name:       name,
		CategoryID: code,
	}
}

// FindAll returns every category in the database, in upstream order.
func (r *CategoryRepository) FindAll(ctx context.Context) ([]domain.Category, error) {
	pages, err := queryAll(ctx, r.client, r.databaseID, nil)
	if err != nil {
		return nil, domain.NewExternalAPIError("Failed to fetch categories from Notion", err)
	}

	categories := make([]domain.Category, 0, len(pages))
	for _, page := range pages {
		categories = append(categories, mapPageToCategory(page))
	}
	return categories, nil
}

// FindByID retrieves a single category.
func (r *CategoryRepository) FindByID(ctx context.Context, id string) (*domain.Category, error) {
	page, err := fetchPage(ctx, r.client, r.databaseID, id, categoryEntity)
	if err != nil {
		return nil, err
	}
	category := mapPageToCategory(*page)
	return &category, nil
}

// GenerateNextCategoryID scans all categories and returns the next free code.
// The scan and the subsequent create are not atomic: two concurrent creates
// can observe the same maximum and mint the same code.
func (r *CategoryRepository) GenerateNextCategoryID(ctx context.Context) (string, error) {
	categories, err := r.FindAll(ctx)
	if err != nil {
		return "", err
	}

	codes := make([]string, 0, len(categories))
	for _, c := range categories {
		if c.CategoryID != nil {
			codes = append(codes, *c.CategoryID)
		}
	}
	return NextCategoryCode(codes), nil
}

// Create mints a new code and creates the category page.
func (r *CategoryRepository) Create(ctx context.Context, input domain.CategoryInput) (*domain.Category, error) {
	code, err := r.GenerateNextCategoryID(ctx)
	if err != nil {
		return nil, domain.NewExternalAPIError("Failed to create category in Notion", err)
	}

	page, err := r.client.CreatePage(ctx, notionclient.CreatePageRequest{
		Parent: notionclient.Parent{Type: "database_id", DatabaseID: r.databaseID},
		Properties: map[string]notionclient.Property{
			categoryNameProperty: notionclient.TitleValue(input.Name),
			categoryCodeProperty: notionclient.RichTextValue(code),
		},
	})
	if err != nil {
		return nil, domain.NewExternalAPIError("Failed to create category in Notion", err)
	}

	category := mapPageToCategory(*page)
	return &category, nil
}

// Update replaces the name of a category. The code is left untouched.
func (r *CategoryRepository) Update(ctx context.Context, id string, input domain.CategoryInput) (*domain.Category, error) {
	if _, err := fetchPage(ctx, r.client, r.databaseID, id, categoryEntity); err != nil {
		return nil, err
	}

	page, err := r.client.UpdatePage(ctx, id, notionclient.UpdatePageRequest{
		Properties: map[string]notionclient.Property{
			categoryNameProperty: notionclient.TitleValue(input.Name),
		},
	})
	if err != nil {
		return nil, classifyLookupError(err, categoryEntity, "Failed to update category in Notion")
	}

	category := mapPageToCategory(*page)
	return &category, nil
}

// Delete archives a category and returns it as it was before archiving.
func (r *CategoryRepository) Delete(ctx context.Context, id string) (*domain.Category, error) {
	page, err := fetchPage(ctx, r.client, r.databaseID, id, categoryEntity)
	if err != nil {
		return nil, err
	}
	snapshot := mapPageToCategory(*page)

	archived := true
	if _, err := r.client.UpdatePage(ctx, id, notionclient.UpdatePageRequest{Archived: &archived}); err != nil {
		return nil, classifyLookupError(err, categoryEntity, "Failed to delete category in Notion")
	}

	return &snapshot, nil
}
