package shop_test

import (
	"context"
	"testing"

	appshop "github.com/duka/backend/internal/application/shop"
	"github.com/duka/backend/internal/domain/shared"
	"github.com/duka/backend/internal/infrastructure/persistence"
	"github.com/duka/backend/tests/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newShopService(t *testing.T) *appshop.ShopService {
	t.Helper()
	db := testutil.NewSQLiteDB(t)
	return appshop.NewShopService(persistence.NewRepositories(db).Shops(), nil)
}

func TestShopService_CreateOncePerType(t *testing.T) {
	svc := newShopService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, appshop.CreateShopRequest{ShopType: "stationery"})
	require.NoError(t, err)
	assert.Equal(t, "stationery", created.ShopType)
	assert.Equal(t, "Stationery", created.DisplayName)
	assert.True(t, created.IsActive)

	_, err = svc.Create(ctx, appshop.CreateShopRequest{Name: "Second", ShopType: "stationery"})
	assert.ErrorIs(t, err, shared.ErrAlreadyExists)

	_, err = svc.Create(ctx, appshop.CreateShopRequest{ShopType: "butcher"})
	assert.Error(t, err)
}

func TestShopService_EnsureDefaults(t *testing.T) {
	svc := newShopService(t)
	ctx := context.Background()

	existing, err := svc.Create(ctx, appshop.CreateShopRequest{Name: "Mama Duka", ShopType: "duka_la_vinywaji"})
	require.NoError(t, err)

	shops, err := svc.EnsureDefaults(ctx)
	require.NoError(t, err)
	require.Len(t, shops, 2)

	again, err := svc.EnsureDefaults(ctx)
	require.NoError(t, err)
	assert.Len(t, again, 2, "defaults are created once")

	got, err := svc.GetByID(ctx, existing.ID)
	require.NoError(t, err)
	assert.Equal(t, "Mama Duka", got.Name)
}

func TestShopService_Exists(t *testing.T) {
	svc := newShopService(t)
	ctx := context.Background()
	created, err := svc.Create(ctx, appshop.CreateShopRequest{ShopType: "stationery"})
	require.NoError(t, err)

	ok, err := svc.Exists(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.Exists(ctx, uuid.New())
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = svc.GetByID(ctx, uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound)
}
