package sqlite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tkiviniemi/stocklink/internal/domain/model"
)

func TestWarehouseRepo_GetTypeUnknown(t *testing.T) {
	db := setupTestDB(t)
	repo := NewWarehouseRepo(db)
	ctx := context.Background()

	typ, err := repo.GetType(ctx, "nope")
	require.NoError(t, err)
	assert.Empty(t, typ)
}

func TestWarehouseRepo_ReplaceAllAndGetType(t *testing.T) {
	db := setupTestDB(t)
	repo := NewWarehouseRepo(db)
	ctx := context.Background()

	err := repo.ReplaceAll(ctx, []model.Warehouse{
		{ID: "W1", Name: "Helsinki", Type: model.WarehouseTypePosti},
		{ID: "W2", Name: "Local shed", Type: "Store"},
	})
	require.NoError(t, err)

	typ, err := repo.GetType(ctx, "W1")
	require.NoError(t, err)
	assert.Equal(t, model.WarehouseTypePosti, typ)

	typ, err = repo.GetType(ctx, "W2")
	require.NoError(t, err)
	assert.Equal(t, "Store", typ)
}

func TestWarehouseRepo_ReplaceAllDropsStaleEntries(t *testing.T) {
	db := setupTestDB(t)
	repo := NewWarehouseRepo(db)
	ctx := context.Background()

	require.NoError(t, repo.ReplaceAll(ctx, []model.Warehouse{
		{ID: "W1", Type: model.WarehouseTypePosti},
	}))
	require.NoError(t, repo.ReplaceAll(ctx, []model.Warehouse{
		{ID: "W2", Type: "Store"},
	}))

	warehouses, err := repo.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, warehouses, 1)
	assert.Equal(t, "W2", warehouses[0].ID)

	typ, err := repo.GetType(ctx, "W1")
	require.NoError(t, err)
	assert.Empty(t, typ)
}
