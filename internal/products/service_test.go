package products

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	pkgerrors "github.com/kioskworks/counter-backend/pkg/errors"
)

type stubDeleter struct {
	deleted []int64
}

func (d *stubDeleter) DeleteProduct(ctx context.Context, productID int64) error {
	d.deleted = append(d.deleted, productID)
	return nil
}

func setupProductsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	schema := `
CREATE TABLE IF NOT EXISTS products (
  product_id INTEGER PRIMARY KEY,
  name TEXT NOT NULL,
  filename TEXT NOT NULL,
  price INTEGER NOT NULL,
  no_stock INTEGER,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(schema).Error)
	return db
}

func newTestService(t *testing.T) (*Service, *stubDeleter) {
	t.Helper()

	db := setupProductsTestDB(t)
	deleter := &stubDeleter{}
	svc, err := NewService(NewRepository(db), deleter, nil)
	require.NoError(t, err)
	return svc, deleter
}

func TestSeedIfEmptyLoadsDefaultMenuOnce(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.SeedIfEmpty(ctx))

	menu, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, menu, 17)
	assert.Equal(t, "ブレンドコーヒー", menu[0].Name)
	assert.Equal(t, int64(150), menu[0].Price)
	require.NotNil(t, menu[0].NoStock)
	assert.Equal(t, int64(100), *menu[0].NoStock)
	assert.Nil(t, menu[16].NoStock)

	// Re-seeding a populated catalog is a no-op.
	require.NoError(t, svc.SeedIfEmpty(ctx))
	menu, err = svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, menu, 17)
}

func TestByIDUnknownProduct(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.ByID(ctx, 42)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())
}

func TestCreateValidatesAndRejectsDuplicates(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateInput{ProductID: 0, Name: "x"})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())

	_, err = svc.Create(ctx, CreateInput{ProductID: 21, Name: ""})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())

	created, err := svc.Create(ctx, CreateInput{ProductID: 21, Name: "ほうじ茶", Filename: "tea_hojicha.png", Price: 120})
	require.NoError(t, err)
	assert.Equal(t, int64(21), created.ProductID)

	_, err = svc.Create(ctx, CreateInput{ProductID: 21, Name: "dup", Price: 1})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeConflict, pkgerrors.As(err).Code())

	got, err := svc.ByID(ctx, 21)
	require.NoError(t, err)
	assert.Equal(t, "ほうじ茶", got.Name)
}

func TestDeleteDelegatesToCascadingDeleter(t *testing.T) {
	svc, deleter := newTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.Delete(ctx, 7))
	assert.Equal(t, []int64{7}, deleter.deleted)
}
