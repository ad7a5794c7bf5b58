package product

import (
	"context"
	"testing"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupProductsTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.Exec(`
CREATE TABLE IF NOT EXISTS products (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  description TEXT NOT NULL DEFAULT '',
  price REAL NOT NULL,
  stock INTEGER NOT NULL DEFAULT 0,
  image_key TEXT,
  created_at INTEGER NOT NULL
);`).Error)
	return db
}

func TestRepositoryCRUD(t *testing.T) {
	repo := NewRepository(setupProductsTestDB(t))
	ctx := context.Background()

	created, err := repo.CreateProduct(ctx, &models.Product{ID: "p1", Name: "Mug", Price: 12.5, Stock: 3})
	require.NoError(t, err)
	assert.NotZero(t, created.CreatedAt, "created_at is stamped in milliseconds")

	got, err := repo.FindByID(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "Mug", got.Name)
	assert.Equal(t, 12.5, got.Price)
	assert.Nil(t, got.ImageKey)

	require.NoError(t, repo.DeleteProduct(ctx, "p1"))
	_, err = repo.FindByID(ctx, "p1")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestRepositoryListNewestFirst(t *testing.T) {
	repo := NewRepository(setupProductsTestDB(t))
	ctx := context.Background()

	for _, p := range []models.Product{
		{ID: "a", Name: "A", Price: 1, CreatedAt: 100},
		{ID: "c", Name: "C", Price: 1, CreatedAt: 300},
		{ID: "b", Name: "B", Price: 1, CreatedAt: 200},
	} {
		p := p
		_, err := repo.CreateProduct(ctx, &p)
		require.NoError(t, err)
	}

	rows, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "c", rows[0].ID)
	assert.Equal(t, "a", rows[2].ID)
}
