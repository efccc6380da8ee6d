/**
 * @description
 * Service layer for the budget API. The services delegate each call to the
 * matching repository method; repositories own the Notion mapping and the
 * error taxonomy.
 */
package app

import (
	"context"

	"github.com/chrystalio/budget-buddy-api/internal/domain"
)

// CategoryRepository defines the category operations the service needs.
type CategoryRepository interface {
	FindAll(ctx context.Context) ([]domain.Category, error)
	FindByID(ctx context.Context, id string) (*domain.Category, error)
	Create(ctx context.Context, input domain.CategoryInput) (*domain.Category, error)
	Update(ctx context.Context, id string, input domain.CategoryInput) (*domain.Category, error)
	Delete(ctx context.Context, id string) (*domain.Category, error)
}

// RecordRepository defines the read operations over accounts or transactions.
type RecordRepository interface {
	FindAll(ctx context.Context) ([]domain.Record, error)
	FindByID(ctx context.Context, id string) (*domain.Record, error)
}

// CategoryService exposes category use cases to the HTTP layer.
type CategoryService struct {
	repo CategoryRepository
}

// NewCategoryService creates a new category service.
func NewCategoryService(repo CategoryRepository) *CategoryService {
	return &CategoryService{repo: repo}
}

func (s *CategoryService) GetAllCategories(ctx context.Context) ([]domain.Category, error) {
	return s.repo.FindAll(ctx)
}

func (s *CategoryService) GetCategoryByID(ctx context.Context, id string) (*domain.Category, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *CategoryService) CreateCategory(ctx context.Context, input domain.CategoryInput) (*domain.Category, error) {
	return s.repo.Create(ctx, input)
}

func (s *CategoryService) UpdateCategory(ctx context.Context, id string, input domain.CategoryInput) (*domain.Category, error) {
	return s.repo.Update(ctx, id, input)
}

func (s *CategoryService) DeleteCategory(ctx context.Context, id string) (*domain.Category, error) {
	return s.repo.Delete(ctx, id)
}

// RecordService exposes read access to one record collection.
type RecordService struct {
	repo RecordRepository
}

// NewRecordService creates a new record service.
func NewRecordService(repo RecordRepository) *RecordService {
	return &RecordService{repo: repo}
}

func (s *RecordService) GetAll(ctx context.Context) ([]domain.Record, error) {
	return s.repo.FindAll(ctx)
}

func (s *RecordService) GetByID(ctx context.Context, id string) (*domain.Record, error) {
	return s.repo.FindByID(ctx, id)
}
