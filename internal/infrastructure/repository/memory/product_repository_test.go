package memory

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/mrops-br/karachi-couture/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"
)

func newTestRepository() *ProductRepository {
	return NewProductRepository(noop.NewTracerProvider().Tracer("test"), slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func mustProduct(t *testing.T, title string, category domain.Category) *domain.Product {
	t.Helper()
	p, err := domain.NewProduct(title, "", category, decimal.NewFromInt(10), "")
	require.NoError(t, err)
	return p
}

func TestProductRepository(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository()

	all, err := repo.FindAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)

	require.NoError(t, repo.ReplaceAll(ctx, []*domain.Product{
		mustProduct(t, "Sindhi Kurta", domain.CategoryMen),
		mustProduct(t, "Clifton Lawn", domain.CategoryWomen),
		mustProduct(t, "Eid Frock", domain.CategoryKids),
		mustProduct(t, "Chikankari Suit", domain.CategoryWomen),
	}))

	t.Run("FindAllSortedByTitle", func(t *testing.T) {
		all, err := repo.FindAll(ctx)
		require.NoError(t, err)
		titles := make([]string, len(all))
		for i, p := range all {
			titles[i] = p.Title
		}
		assert.Equal(t, []string{"Chikankari Suit", "Clifton Lawn", "Eid Frock", "Sindhi Kurta"}, titles)
	})

	t.Run("FindByCategory", func(t *testing.T) {
		women, err := repo.FindByCategory(ctx, domain.CategoryWomen)
		require.NoError(t, err)
		require.Len(t, women, 2)
		for _, p := range women {
			assert.Equal(t, "Women", p.Category)
		}

		all, err := repo.FindByCategory(ctx, domain.CategoryAll)
		require.NoError(t, err)
		assert.Len(t, all, 4)
	})

	t.Run("ReplaceAllDropsPreviousCatalog", func(t *testing.T) {
		require.NoError(t, repo.ReplaceAll(ctx, []*domain.Product{mustProduct(t, "Ajrak Shawl", domain.CategoryMen)}))

		all, err := repo.FindAll(ctx)
		require.NoError(t, err)
		require.Len(t, all, 1)
		assert.Equal(t, "Ajrak Shawl", all[0].Title)
	})
}
