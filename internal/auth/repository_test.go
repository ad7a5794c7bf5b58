package auth

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

func setupAdminsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	adminsTable := `
CREATE TABLE IF NOT EXISTS admins (
  id TEXT PRIMARY KEY,
  username TEXT NOT NULL UNIQUE,
  password_hash TEXT NOT NULL,
  created_at INTEGER NOT NULL DEFAULT 0
);`
	require.NoError(t, db.Exec(adminsTable).Error)
	return db
}

func TestAdminRepositoryRoundTrip(t *testing.T) {
	repo := NewAdminRepository(setupAdminsTestDB(t))
	ctx := context.Background()

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)

	missing, err := repo.FindByUsername(ctx, "root")
	require.NoError(t, err)
	assert.Nil(t, missing)

	require.NoError(t, repo.Create(ctx, &models.Admin{ID: "a1", Username: "root", PasswordHash: "hash"}))

	count, err = repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	found, err := repo.FindByUsername(ctx, "root")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "a1", found.ID)
	assert.NotZero(t, found.CreatedAt)
}

func TestAdminRepositoryDuplicateUsername(t *testing.T) {
	repo := NewAdminRepository(setupAdminsTestDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &models.Admin{ID: "a1", Username: "root", PasswordHash: "hash"}))
	err := repo.Create(ctx, &models.Admin{ID: "a2", Username: "root", PasswordHash: "hash"})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeForbidden))
	assert.Equal(t, msgAdminExists, pkgerrors.As(err).Message())
}
