package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/chrystalio/budget-buddy-api/internal/domain"
	"github.com/chrystalio/budget-buddy-api/pkg/notionclient"
)

// untitledRecord is shown when a record page has an empty title.
const untitledRecord = "Untitled"

// RecordRepository gives read access to a database whose pages are exposed
// through the generic Record projection (accounts, transactions).
type RecordRepository struct {
	client     DocumentStore
	databaseID string
	entity     string
}

// NewRecordRepository creates a repository for one database. entity is the
// singular display name used in error messages ("Account").
func NewRecordRepository(client DocumentStore, databaseID, entity string) *RecordRepository {
	return &RecordRepository{client: client, databaseID: databaseID, entity: entity}
}

// FindAll returns every record in the database, in upstream order.
func (r *RecordRepository) FindAll(ctx context.Context) ([]domain.Record, error) {
	pages, err := queryAll(ctx, r.client, r.databaseID, nil)
	if err != nil {
		return nil, domain.NewExternalAPIError(fmt.Sprintf("Failed to fetch %ss from Notion", strings.ToLower(r.entity)), err)
	}

	records := make([]domain.Record, 0, len(pages))
	for _, page := range pages {
		records = append(records, mapPageToRecord(page))
	}
	return records, nil
}

// FindByID retrieves a single record.
func (r *RecordRepository) FindByID(ctx context.Context, id string) (*domain.Record, error) {
	page, err := fetchPage(ctx, r.client, r.databaseID, id, r.entity)
	if err != nil {
		return nil, err
	}
	record := mapPageToRecord(*page)
	return &record, nil
}

func mapPageToRecord(page notionclient.Page) domain.Record {
	record := domain.Record{
		ID:             page.ID,
		Name:           untitledRecord,
		CreatedTime:    page.CreatedTime,
		LastEditedTime: page.LastEditedTime,
		Fields:         make(map[string]interface{}, len(page.Properties)),
	}

	for name, prop := range page.Properties {
		if prop.Type == notionclient.PropertyTypeTitle {
			if title := notionclient.PlainText(prop.Title); title != "" {
				record.Name = title
			}
		}
		record.Fields[name] = propertyValue(prop)
	}
	return record
}

// propertyValue flattens a typed property into a plain JSON value.
func propertyValue(p notionclient.Property) interface{} {
	switch p.Type {
	case notionclient.PropertyTypeTitle:
		return notionclient.PlainText(p.Title)
	case notionclient.PropertyTypeRichText:
		return notionclient.PlainText(p.RichText)
	case notionclient.PropertyTypeNumber:
		if p.Number != nil {
			return *p.Number
		}
	case notionclient.PropertyTypeSelect:
		if p.Select != nil {
			return p.Select.Name
		}
	case notionclient.PropertyTypeStatus:
		if p.Status != nil {
			return p.Status.Name
		}
	case notionclient.PropertyTypeMultiSelect:
		names := make([]string, 0, len(p.MultiSelect))
		for _, opt := range p.MultiSelect {
			names = append(names, opt.Name)
		}
		return names
	case notionclient.PropertyTypeDate:
		if p.Date != nil {
			return p.Date
		}
	case notionclient.PropertyTypeCheckbox:
		if p.Checkbox != nil {
			return *p.Checkbox
		}
	case notionclient.PropertyTypeURL:
		if p.URL != nil {
			return *p.URL
		}
	case notionclient.PropertyTypeEmail:
		if p.Email != nil {
			return *p.Email
		}
	case notionclient.PropertyTypeRelation:
		ids := make([]string, 0, len(p.Relation))
		for _, rel := range p.Relation {
			ids = append(ids, rel.ID)
		}
		return ids
	}
	return nil
}
