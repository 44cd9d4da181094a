package main

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepo(t *testing.T) *CatalogRepository {
	t.Helper()
	repo, err := NewCatalogRepository(filepath.Join(t.TempDir(), "catalog.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestSeedAndGetProduct(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	require.NoError(t, repo.Seed(ctx))
	require.NoError(t, repo.Seed(ctx), "seeding twice must be harmless")

	p, err := repo.GetProduct(ctx, DefaultProductSKU)
	require.NoError(t, err)
	assert.Equal(t, "Laptop Gamer AMD", p.Name)
	assert.Equal(t, int64(400000), p.UnitPrice)
	assert.Equal(t, "CLP", p.Currency)
	assert.NotEmpty(t, p.ImageURL)

	all, err := repo.ListProducts(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestGetProductNotFound(t *testing.T) {
	_, err := newTestRepo(t).GetProduct(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestUpsertOverwrite(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	require.NoError(t, repo.Seed(ctx))

	changed := Product{SKU: DefaultProductSKU, Name: "Laptop Gamer AMD", UnitPrice: 450000, Currency: "CLP"}
	require.NoError(t, repo.Upsert(ctx, changed, false))
	p, err := repo.GetProduct(ctx, DefaultProductSKU)
	require.NoError(t, err)
	assert.Equal(t, int64(400000), p.UnitPrice)

	require.NoError(t, repo.Upsert(ctx, changed, true))
	p, err = repo.GetProduct(ctx, DefaultProductSKU)
	require.NoError(t, err)
	assert.Equal(t, int64(450000), p.UnitPrice)
}

func TestUpsertRejectsNegativePrice(t *testing.T) {
	err := newTestRepo(t).Upsert(context.Background(), Product{SKU: "x", Name: "x", UnitPrice: -1}, true)
	assert.Error(t, err)
}
