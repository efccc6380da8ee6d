/**
 * @description
 * This file holds the pieces shared by every Notion-backed repository: the
 * narrow document-store contract, cursor pagination and the translation of
 * lookup failures into domain errors.
 */
package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/chrystalio/budget-buddy-api/internal/domain"
	"github.com/chrystalio/budget-buddy-api/pkg/notionclient"
)

// queryPageSize is the largest page size Notion accepts.
const queryPageSize = 100

// DocumentStore is the subset of the Notion API the repositories rely on.
// *notionclient.Client satisfies it.
type DocumentStore interface {
	QueryDatabase(ctx context.Context, databaseID string, req notionclient.QueryRequest) (*notionclient.QueryResponse, error)
	RetrievePage(ctx context.Context, pageID string) (*notionclient.Page, error)
	CreatePage(ctx context.Context, req notionclient.CreatePageRequest) (*notionclient.Page, error)
	UpdatePage(ctx context.Context, pageID string, req notionclient.UpdatePageRequest) (*notionclient.Page, error)
}

// queryAll follows next_cursor until the database query is exhausted.
func queryAll(ctx context.Context, client DocumentStore, databaseID string, filter map[string]interface{}) ([]notionclient.Page, error) {
	var pages []notionclient.Page
	req := notionclient.QueryRequest{Filter: filter, PageSize: queryPageSize}
	for {
		resp, err := client.QueryDatabase(ctx, databaseID, req)
		if err != nil {
			return nil, err
		}
		pages = append(pages, resp.Results...)
		if !resp.HasMore || resp.NextCursor == nil || *resp.NextCursor == "" {
			return pages, nil
		}
		req.StartCursor = *resp.NextCursor
	}
}

// fetchPage retrieves a page and checks it is a live member of databaseID.
// Ids that cannot name a page, archived pages and pages of other databases
// are reported as not found.
func fetchPage(ctx context.Context, client DocumentStore, databaseID, pageID, entity string) (*notionclient.Page, error) {
	if !notionclient.IsValidID(pageID) {
		return nil, domain.NewNotFoundError(entity + " not found")
	}
	page, err := client.RetrievePage(ctx, pageID)
	if err != nil {
		return nil, classifyLookupError(err, entity, fmt.Sprintf("Failed to fetch %s from Notion", strings.ToLower(entity)))
	}
	if page.Archived || notionclient.NormalizeID(page.Parent.DatabaseID) != notionclient.NormalizeID(databaseID) {
		return nil, domain.NewNotFoundError(entity + " not found")
	}
	return page, nil
}

// classifyLookupError maps a failed single-record call onto the domain taxonomy.
// failure is the message of errors that are not otherwise classified; the
// upstream error stays attached as the cause.
func classifyLookupError(err error, entity, failure string) error {
	lower := strings.ToLower(entity)
	switch {
	case notionclient.IsCode(err, notionclient.CodeObjectNotFound):
		return domain.NewNotFoundError(entity + " not found")
	case notionclient.IsCode(err, notionclient.CodeValidation):
		return domain.NewInvalidRequestError(fmt.Sprintf("Invalid %s ID", lower), err)
	default:
		return domain.NewExternalAPIError(failure, err)
	}
}
