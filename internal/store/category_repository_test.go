package store

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chrystalio/budget-buddy-api/internal/domain"
	"github.com/chrystalio/budget-buddy-api/internal/testutil/notionfake"
	"github.com/chrystalio/budget-buddy-api/pkg/notionclient"
)

const (
	testCategoriesDB = "1a2b3c4d5e6f47a8b9c0d1e2f3a4b5c6"
	testAccountsDB   = "2b3c4d5e-6f7a-48b9-c0d1-e2f3a4b5c6d7"
)

func newCategoryFixture(t *testing.T) (*notionfake.Server, *CategoryRepository) {
	t.Helper()
	fake := notionfake.New(t, testCategoriesDB, testAccountsDB)
	return fake, NewCategoryRepository(fake.Client(), testCategoriesDB)
}

func TestCategoryRepository_CreateMintsNextCode(t *testing.T) {
	fake, repo := newCategoryFixture(t)
	fake.AddPage(testCategoriesDB, notionfake.CategoryProperties("Food", "CAT-001"))
	fake.AddPage(testCategoriesDB, notionfake.CategoryProperties("Rent", "CAT-007"))
	fake.AddPage(testCategoriesDB, notionfake.CategoryProperties("Misc", "other"))

	created, err := repo.Create(context.Background(), domain.CategoryInput{Name: "Travel"})
	require.NoError(t, err)
	assert.Equal(t, "Travel", created.Name)
	require.NotNil(t, created.CategoryID)
	assert.Equal(t, "CAT-008", *created.CategoryID)

	found, err := repo.FindByID(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, *created, *found)
}

func TestCategoryRepository_FirstCodeOnEmptyDatabase(t *testing.T) {
	_, repo := newCategoryFixture(t)

	code, err := repo.GenerateNextCategoryID(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "CAT-001", code)
}

func TestCategoryRepository_FindAllFollowsCursor(t *testing.T) {
	fake, repo := newCategoryFixture(t)
	fake.SetMaxPageSize(2)
	for i := 1; i <= 5; i++ {
		fake.AddPage(testCategoriesDB, notionfake.CategoryProperties(fmt.Sprintf("c%d", i), fmt.Sprintf("CAT-%03d", i)))
	}
	fake.AddPage(testAccountsDB, map[string]notionclient.Property{"Name": notionclient.TitleValue("Checking")})

	categories, err := repo.FindAll(context.Background())
	require.NoError(t, err)
	require.Len(t, categories, 5)
	for i, c := range categories {
		assert.Equal(t, fmt.Sprintf("c%d", i+1), c.Name)
	}
}

func TestCategoryRepository_MapsMissingProperties(t *testing.T) {
	fake, repo := newCategoryFixture(t)
	id := fake.AddPage(testCategoriesDB, notionfake.CategoryProperties("", ""))

	category, err := repo.FindByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, domain.UnnamedCategory, category.Name)
	assert.Nil(t, category.CategoryID)
}

func TestCategoryRepository_FindByIDNotFound(t *testing.T) {
	fake, repo := newCategoryFixture(t)
	otherDB := fake.AddPage(testAccountsDB, map[string]notionclient.Property{"Name": notionclient.TitleValue("Checking")})

	tests := map[string]string{
		"malformed id":   "does-not-exist",
		"unknown page":   "0123456789abcdef0123456789abcdef",
		"other database": otherDB,
	}
	for name, id := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := repo.FindByID(context.Background(), id)
			require.Error(t, err)
			assert.True(t, domain.IsKind(err, domain.KindNotFound))
			assert.Equal(t, "Category not found", err.Error())
		})
	}
}

func TestCategoryRepository_UpdateKeepsCode(t *testing.T) {
	fake, repo := newCategoryFixture(t)
	id := fake.AddPage(testCategoriesDB, notionfake.CategoryProperties("Food", "CAT-004"))

	updated, err := repo.Update(context.Background(), id, domain.CategoryInput{Name: "Groceries"})
	require.NoError(t, err)
	assert.Equal(t, "Groceries", updated.Name)
	require.NotNil(t, updated.CategoryID)
	assert.Equal(t, "CAT-004", *updated.CategoryID)
}

func TestCategoryRepository_UpdateMissingDoesNotWrite(t *testing.T) {
	fake, repo := newCategoryFixture(t)

	_, err := repo.Update(context.Background(), "0123456789abcdef0123456789abcdef", domain.CategoryInput{Name: "x"})
	require.Error(t, err)
	assert.True(t, domain.IsKind(err, domain.KindNotFound))
	assert.Zero(t, fake.Writes())
}

func TestCategoryRepository_DeleteReturnsSnapshotAndArchives(t *testing.T) {
	fake, repo := newCategoryFixture(t)
	id := fake.AddPage(testCategoriesDB, notionfake.CategoryProperties("Food", "CAT-001"))

	deleted, err := repo.Delete(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "Food", deleted.Name)

	page, ok := fake.Page(id)
	require.True(t, ok)
	assert.True(t, page.Archived)

	_, err = repo.FindByID(context.Background(), id)
	assert.True(t, domain.IsKind(err, domain.KindNotFound))

	all, err := repo.FindAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestCategoryRepository_UpstreamErrors(t *testing.T) {
	t.Run("validation error becomes invalid request", func(t *testing.T) {
		fake, repo := newCategoryFixture(t)
		fake.FailNext(http.StatusBadRequest, notionclient.CodeValidation, "body failed validation")

		_, err := repo.FindByID(context.Background(), "0123456789abcdef0123456789abcdef")
		require.Error(t, err)
		derr, ok := domain.AsError(err)
		require.True(t, ok)
		assert.Equal(t, domain.CodeInvalidRequest, derr.Code)
		assert.Equal(t, http.StatusBadRequest, derr.Status)
		assert.Equal(t, "Invalid category ID", derr.Message)
	})

	t.Run("list failure keeps upstream code reachable", func(t *testing.T) {
		fake, repo := newCategoryFixture(t)
		fake.FailNext(http.StatusUnauthorized, notionclient.CodeUnauthorized, "API token is invalid.")

		_, err := repo.FindAll(context.Background())
		require.Error(t, err)
		assert.True(t, domain.IsKind(err, domain.KindExternalAPI))
		assert.True(t, notionclient.IsCode(err, notionclient.CodeUnauthorized))
		assert.Contains(t, err.Error(), "Failed to fetch categories from Notion")
	})

	t.Run("create failure after code generation", func(t *testing.T) {
		fake, repo := newCategoryFixture(t)
		// The query for code generation succeeds; the page create fails.
		fake.AddPage(testCategoriesDB, notionfake.CategoryProperties("Food", "CAT-001"))
		repo = NewCategoryRepository(&failingCreate{DocumentStore: fake.Client()}, testCategoriesDB)

		_, err := repo.Create(context.Background(), domain.CategoryInput{Name: "x"})
		require.Error(t, err)
		assert.True(t, domain.IsKind(err, domain.KindExternalAPI))
		assert.Contains(t, err.Error(), "Failed to create category in Notion")
	})
}

type failingCreate struct {
	DocumentStore
}

func (f *failingCreate) CreatePage(context.Context, notionclient.CreatePageRequest) (*notionclient.Page, error) {
	return nil, &notionclient.Error{Status: http.StatusServiceUnavailable, Code: notionclient.CodeServiceUnavailable, Message: "unavailable"}
}
