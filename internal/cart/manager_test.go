package cart

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/kioskworks/counter-backend/pkg/db/models"
	pkgerrors "github.com/kioskworks/counter-backend/pkg/errors"
)

type stubCatalog struct {
	products map[int64]models.Product
}

func (c stubCatalog) FindByID(ctx context.Context, productID int64) (*models.Product, error) {
	if p, ok := c.products[productID]; ok {
		return &p, nil
	}
	return nil, gorm.ErrRecordNotFound
}

type recordingPlacer struct {
	mu     sync.Mutex
	nextID int64
	placed [][]int64
}

func (p *recordingPlacer) Place(ctx context.Context, productIDs []int64) (int64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.placed = append(p.placed, productIDs)
	p.nextID++
	return p.nextID, nil
}

func newTestManager(t *testing.T) (*Manager, *recordingPlacer) {
	t.Helper()

	catalog := stubCatalog{products: map[int64]models.Product{
		1: {ProductID: 1, Name: "Blend Coffee", Price: 150},
		2: {ProductID: 2, Name: "Cafe au Lait", Price: 100},
	}}
	placer := &recordingPlacer{}
	manager, err := NewManager(catalog, placer)
	require.NoError(t, err)
	return manager, placer
}

func TestTotalsTrackEveryMutation(t *testing.T) {
	manager, _ := newTestManager(t)
	ctx := context.Background()

	view := manager.Create(ctx)
	key := view.SessionKey
	assert.Zero(t, view.TotalCount)
	assert.Equal(t, "¥0", view.TotalPriceLabel)

	view, err := manager.Add(ctx, key, 1)
	require.NoError(t, err)
	view, err = manager.Add(ctx, key, 1)
	require.NoError(t, err)
	view, err = manager.Add(ctx, key, 2)
	require.NoError(t, err)

	assert.Equal(t, 3, view.TotalCount)
	assert.Equal(t, int64(400), view.TotalPrice)
	assert.Equal(t, "¥400", view.TotalPriceLabel)
	require.Len(t, view.Items, 3)
	require.Len(t, view.CountedProducts, 2)
	assert.Equal(t, 2, view.CountedProducts[0].Count)
	assert.Equal(t, 1, view.CountedProducts[1].Count)

	view, err = manager.Remove(ctx, key, view.Items[0].ItemID)
	require.NoError(t, err)
	assert.Equal(t, 2, view.TotalCount)
	assert.Equal(t, int64(250), view.TotalPrice)

	// Removing an unknown item id changes nothing.
	view, err = manager.Remove(ctx, key, uuid.New())
	require.NoError(t, err)
	assert.Equal(t, 2, view.TotalCount)
	assert.Equal(t, int64(250), view.TotalPrice)

	view, err = manager.Clear(ctx, key)
	require.NoError(t, err)
	assert.Zero(t, view.TotalCount)
	assert.Zero(t, view.TotalPrice)
	assert.Empty(t, view.Items)
}

func TestAddUnknownProductFails(t *testing.T) {
	manager, _ := newTestManager(t)
	ctx := context.Background()

	view := manager.Create(ctx)
	_, err := manager.Add(ctx, view.SessionKey, 99)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())
}

func TestUnknownSessionFails(t *testing.T) {
	manager, _ := newTestManager(t)
	ctx := context.Background()

	_, err := manager.Get(ctx, "nope")
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())

	_, err = manager.Add(ctx, "nope", 1)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())
}

func TestSubmitEmptyCartPlacesNothing(t *testing.T) {
	manager, placer := newTestManager(t)
	ctx := context.Background()

	view := manager.Create(ctx)
	_, err := manager.Submit(ctx, view.SessionKey)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeEmptyCart, pkgerrors.As(err).Code())
	assert.Empty(t, placer.placed)

	// The session survives a rejected submit.
	_, err = manager.Get(ctx, view.SessionKey)
	require.NoError(t, err)
}

func TestSubmitPlacesInInsertionOrderAndDestroysSession(t *testing.T) {
	manager, placer := newTestManager(t)
	ctx := context.Background()

	view := manager.Create(ctx)
	key := view.SessionKey
	for _, productID := range []int64{1, 1, 2} {
		_, err := manager.Add(ctx, key, productID)
		require.NoError(t, err)
	}

	orderID, err := manager.Submit(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, int64(1), orderID)
	require.Len(t, placer.placed, 1)
	assert.Equal(t, []int64{1, 1, 2}, placer.placed[0])

	_, err = manager.Get(ctx, key)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())
}

func TestConcurrentDoubleSubmitPlacesOnce(t *testing.T) {
	manager, placer := newTestManager(t)
	ctx := context.Background()

	view := manager.Create(ctx)
	key := view.SessionKey
	_, err := manager.Add(ctx, key, 1)
	require.NoError(t, err)

	const submitters = 8
	var placedCount int64
	var wg sync.WaitGroup
	for i := 0; i < submitters; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := manager.Submit(ctx, key); err == nil {
				atomic.AddInt64(&placedCount, 1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(1), placedCount)
	assert.Len(t, placer.placed, 1)
}
