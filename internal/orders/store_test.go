package orders

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/kioskworks/counter-backend/internal/notify"
	"github.com/kioskworks/counter-backend/pkg/db/models"
	pkgerrors "github.com/kioskworks/counter-backend/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type gormTxRunner struct {
	db *gorm.DB
}

func (r gormTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	tx := r.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return tx.Error
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit().Error
}

type recordingNotifier struct {
	mu    sync.Mutex
	kinds []notify.Kind
}

func (n *recordingNotifier) Notify(kinds notify.Kind) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.kinds = append(n.kinds, kinds)
}

func (n *recordingNotifier) recorded() []notify.Kind {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]notify.Kind, len(n.kinds))
	copy(out, n.kinds)
	return out
}

func setupOrdersTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	products := `
CREATE TABLE IF NOT EXISTS products (
  product_id INTEGER PRIMARY KEY,
  name TEXT NOT NULL,
  filename TEXT NOT NULL,
  price INTEGER NOT NULL,
  no_stock INTEGER,
  created_at DATETIME,
  updated_at DATETIME
);`
	orders := `
CREATE TABLE IF NOT EXISTS orders (
  order_id INTEGER PRIMARY KEY,
  placed_at DATETIME NOT NULL,
  canceled_at DATETIME,
  completed_at DATETIME
);`
	orderedItems := `
CREATE TABLE IF NOT EXISTS ordered_items (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  order_id INTEGER NOT NULL,
  line_no INTEGER NOT NULL,
  product_id INTEGER NOT NULL,
  supplied_at DATETIME,
  created_at DATETIME,
  UNIQUE (order_id, line_no)
);`
	require.NoError(t, db.Exec(products).Error)
	require.NoError(t, db.Exec(orders).Error)
	require.NoError(t, db.Exec(orderedItems).Error)

	seed := []models.Product{
		{ProductID: 1, Name: "Blend Coffee", Filename: "blend.jpg", Price: 150},
		{ProductID: 2, Name: "Cafe au Lait", Filename: "au-lait.jpg", Price: 100},
		{ProductID: 3, Name: "Straight Tea", Filename: "tea.jpg", Price: 180},
	}
	require.NoError(t, db.Create(&seed).Error)
	return db
}

func newTestStore(t *testing.T) (*Store, *recordingNotifier, *gorm.DB) {
	t.Helper()

	db := setupOrdersTestDB(t)
	notifier := &recordingNotifier{}
	store, err := NewStore(context.Background(), NewRepository(db), gormTxRunner{db: db}, notifier, nil, nil)
	require.NoError(t, err)
	return store, notifier, db
}

func TestPlaceAssignsSequentialIDsAndLineNumbers(t *testing.T) {
	store, notifier, _ := newTestStore(t)
	ctx := context.Background()

	first, err := store.Place(ctx, []int64{1, 1, 2})
	require.NoError(t, err)
	assert.Equal(t, int64(1), first)

	second, err := store.Place(ctx, []int64{3})
	require.NoError(t, err)
	assert.Equal(t, int64(2), second)

	order, err := store.ByID(ctx, first)
	require.NoError(t, err)
	require.Len(t, order.Items, 3)
	for lineNo, item := range order.Items {
		assert.Equal(t, lineNo, item.LineNo)
		assert.Nil(t, item.SuppliedAt)
	}
	assert.Equal(t, []int64{1, 1, 2}, []int64{order.Items[0].ProductID, order.Items[1].ProductID, order.Items[2].ProductID})
	assert.False(t, order.PlacedAt.IsZero())
	assert.Nil(t, order.CanceledAt)
	assert.Nil(t, order.CompletedAt)

	kinds := notifier.recorded()
	require.Len(t, kinds, 2)
	assert.Equal(t, notify.NewIncoming, kinds[0])
}

func TestPlaceRejectsEmptyAndUnknownProducts(t *testing.T) {
	store, notifier, _ := newTestStore(t)
	ctx := context.Background()

	_, err := store.Place(ctx, nil)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())

	_, err = store.Place(ctx, []int64{1, 99})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())

	// Failed placements consume no ids and raise no notifications.
	id, err := store.Place(ctx, []int64{1})
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)
	assert.Len(t, notifier.recorded(), 1)
}

func TestConcurrentPlaceYieldsGapFreeIDs(t *testing.T) {
	store, _, _ := newTestStore(t)
	ctx := context.Background()
	const placements = 10

	var wg sync.WaitGroup
	ids := make(chan int64, placements)
	for i := 0; i < placements; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id, err := store.Place(ctx, []int64{2})
			if err != nil {
				t.Error(err)
				return
			}
			ids <- id
		}()
	}
	wg.Wait()
	close(ids)

	seen := map[int64]bool{}
	for id := range ids {
		assert.False(t, seen[id], "duplicate order id %d", id)
		seen[id] = true
	}
	require.Len(t, seen, placements)
	for want := int64(1); want <= placements; want++ {
		assert.True(t, seen[want], "missing order id %d", want)
	}
}

func TestSupplyItemTakesOldestUnsuppliedUnit(t *testing.T) {
	store, _, _ := newTestStore(t)
	ctx := context.Background()

	orderID, err := store.Place(ctx, []int64{1, 1, 2})
	require.NoError(t, err)

	require.NoError(t, store.SupplyItem(ctx, orderID, 1))
	order, err := store.ByID(ctx, orderID)
	require.NoError(t, err)
	assert.NotNil(t, order.Items[0].SuppliedAt)
	assert.Nil(t, order.Items[1].SuppliedAt)

	require.NoError(t, store.SupplyItem(ctx, orderID, 1))
	order, err = store.ByID(ctx, orderID)
	require.NoError(t, err)
	assert.NotNil(t, order.Items[1].SuppliedAt)

	err = store.SupplyItem(ctx, orderID, 1)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())
}

func TestSupplyAndCompleteIfDoneAutoCompletesOnLastUnit(t *testing.T) {
	store, notifier, _ := newTestStore(t)
	ctx := context.Background()

	orderID, err := store.Place(ctx, []int64{1, 1, 2})
	require.NoError(t, err)

	supplied, done, err := store.SupplyAndCompleteIfDone(ctx, orderID, 1)
	require.NoError(t, err)
	assert.True(t, supplied)
	assert.False(t, done)

	supplied, done, err = store.SupplyAndCompleteIfDone(ctx, orderID, 1)
	require.NoError(t, err)
	assert.True(t, supplied)
	assert.False(t, done)

	supplied, done, err = store.SupplyAndCompleteIfDone(ctx, orderID, 2)
	require.NoError(t, err)
	assert.True(t, supplied)
	assert.True(t, done)

	order, err := store.ByID(ctx, orderID)
	require.NoError(t, err)
	require.NotNil(t, order.CompletedAt)
	assert.Nil(t, order.CanceledAt)
	for _, item := range order.Items {
		assert.NotNil(t, item.SuppliedAt)
	}

	kinds := notifier.recorded()
	last := kinds[len(kinds)-1]
	assert.True(t, last.Has(notify.ItemSupplied))
	assert.True(t, last.Has(notify.Resolved))
}

func TestSupplyingCanceledOrderNeverCompletesIt(t *testing.T) {
	store, _, _ := newTestStore(t)
	ctx := context.Background()

	orderID, err := store.Place(ctx, []int64{2, 2})
	require.NoError(t, err)
	require.NoError(t, store.Cancel(ctx, orderID))

	for i := 0; i < 2; i++ {
		supplied, done, err := store.SupplyAndCompleteIfDone(ctx, orderID, 2)
		require.NoError(t, err)
		assert.True(t, supplied)
		assert.False(t, done)
	}

	order, err := store.ByID(ctx, orderID)
	require.NoError(t, err)
	require.NotNil(t, order.CanceledAt)
	assert.Nil(t, order.CompletedAt)
	for _, item := range order.Items {
		assert.NotNil(t, item.SuppliedAt)
	}
}

func TestResolutionTimestampsStayMutuallyExclusive(t *testing.T) {
	store, _, _ := newTestStore(t)
	ctx := context.Background()

	orderID, err := store.Place(ctx, []int64{1})
	require.NoError(t, err)

	require.NoError(t, store.Cancel(ctx, orderID))
	order, err := store.ByID(ctx, orderID)
	require.NoError(t, err)
	assert.NotNil(t, order.CanceledAt)
	assert.Nil(t, order.CompletedAt)

	require.NoError(t, store.Complete(ctx, orderID))
	order, err = store.ByID(ctx, orderID)
	require.NoError(t, err)
	assert.Nil(t, order.CanceledAt)
	assert.NotNil(t, order.CompletedAt)
}

func TestCancelResetAndCompleteResetRoundTrips(t *testing.T) {
	store, notifier, _ := newTestStore(t)
	ctx := context.Background()

	orderID, err := store.Place(ctx, []int64{1, 2})
	require.NoError(t, err)

	require.NoError(t, store.Cancel(ctx, orderID))
	require.NoError(t, store.Reset(ctx, orderID))
	order, err := store.ByID(ctx, orderID)
	require.NoError(t, err)
	assert.Nil(t, order.CanceledAt)
	assert.Nil(t, order.CompletedAt)

	require.NoError(t, store.Complete(ctx, orderID))
	require.NoError(t, store.Reset(ctx, orderID))
	order, err = store.ByID(ctx, orderID)
	require.NoError(t, err)
	assert.Nil(t, order.CanceledAt)
	assert.Nil(t, order.CompletedAt)

	kinds := notifier.recorded()
	putBacks := 0
	for _, k := range kinds {
		if k.Has(notify.PutBack) {
			putBacks++
		}
	}
	assert.Equal(t, 2, putBacks)

	// Resetting an unresolved order is a no-op and raises nothing.
	require.NoError(t, store.Reset(ctx, orderID))
	assert.Len(t, notifier.recorded(), len(kinds))
}

func TestSupplyAllAndCompleteOverridesPartialSupply(t *testing.T) {
	store, _, _ := newTestStore(t)
	ctx := context.Background()

	orderID, err := store.Place(ctx, []int64{1, 2, 3})
	require.NoError(t, err)
	require.NoError(t, store.SupplyItem(ctx, orderID, 1))

	require.NoError(t, store.SupplyAllAndComplete(ctx, orderID))
	order, err := store.ByID(ctx, orderID)
	require.NoError(t, err)
	require.NotNil(t, order.CompletedAt)
	for _, item := range order.Items {
		assert.NotNil(t, item.SuppliedAt)
	}

	err = store.SupplyAllAndComplete(ctx, 99)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())
}

func TestListQueriesSplitByResolution(t *testing.T) {
	store, _, _ := newTestStore(t)
	ctx := context.Background()

	incoming, err := store.Place(ctx, []int64{1})
	require.NoError(t, err)
	canceled, err := store.Place(ctx, []int64{2})
	require.NoError(t, err)
	completed, err := store.Place(ctx, []int64{3})
	require.NoError(t, err)

	require.NoError(t, store.Cancel(ctx, canceled))
	require.NoError(t, store.Complete(ctx, completed))

	in, err := store.ListIncoming(ctx)
	require.NoError(t, err)
	require.Len(t, in, 1)
	assert.Equal(t, incoming, in[0].OrderID)
	require.Len(t, in[0].Items, 1)

	resolved, err := store.ListResolved(ctx)
	require.NoError(t, err)
	assert.Len(t, resolved, 2)

	can, err := store.ListCanceled(ctx)
	require.NoError(t, err)
	require.Len(t, can, 1)
	assert.Equal(t, canceled, can[0].OrderID)

	com, err := store.ListCompleted(ctx)
	require.NoError(t, err)
	require.Len(t, com, 1)
	assert.Equal(t, completed, com[0].OrderID)
}

func TestDeleteProductCascadesIntoOrderedItems(t *testing.T) {
	store, _, db := newTestStore(t)
	ctx := context.Background()

	orderID, err := store.Place(ctx, []int64{1, 2})
	require.NoError(t, err)

	require.NoError(t, store.DeleteProduct(ctx, 1))

	order, err := store.ByID(ctx, orderID)
	require.NoError(t, err)
	require.Len(t, order.Items, 1)
	assert.Equal(t, int64(2), order.Items[0].ProductID)

	var count int64
	require.NoError(t, db.Model(&models.Product{}).Where("product_id = ?", 1).Count(&count).Error)
	assert.Zero(t, count)

	err = store.DeleteProduct(ctx, 99)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())
}

func TestClearAllNeverRewindsTheIDCounter(t *testing.T) {
	store, _, _ := newTestStore(t)
	ctx := context.Background()

	_, err := store.Place(ctx, []int64{1})
	require.NoError(t, err)
	_, err = store.Place(ctx, []int64{2})
	require.NoError(t, err)

	require.NoError(t, store.ClearAll(ctx))

	in, err := store.ListIncoming(ctx)
	require.NoError(t, err)
	assert.Empty(t, in)

	next, err := store.Place(ctx, []int64{3})
	require.NoError(t, err)
	assert.Equal(t, int64(3), next)
}

func TestCeilingStockRefusesExhaustedProducts(t *testing.T) {
	db := setupOrdersTestDB(t)
	ctx := context.Background()
	require.NoError(t, db.Model(&models.Product{}).Where("product_id = ?", 1).Update("no_stock", 2).Error)

	repo := NewRepository(db)
	store, err := NewStore(ctx, repo, gormTxRunner{db: db}, &recordingNotifier{}, NewCeilingStock(repo), nil)
	require.NoError(t, err)

	// Two units exactly hit the ceiling; the third is refused.
	orderID, err := store.Place(ctx, []int64{1, 1})
	require.NoError(t, err)

	_, err = store.Place(ctx, []int64{1})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeOutOfStock, pkgerrors.As(err).Code())

	// Unlimited products are unaffected.
	_, err = store.Place(ctx, []int64{2, 2, 2})
	require.NoError(t, err)

	// Canceling returns the units to stock.
	require.NoError(t, store.Cancel(ctx, orderID))
	_, err = store.Place(ctx, []int64{1, 1})
	require.NoError(t, err)
}

func TestStoreRestoresCounterFromPersistedOrders(t *testing.T) {
	store, _, db := newTestStore(t)
	ctx := context.Background()

	_, err := store.Place(ctx, []int64{1})
	require.NoError(t, err)
	_, err = store.Place(ctx, []int64{2})
	require.NoError(t, err)

	rebooted, err := NewStore(ctx, NewRepository(db), gormTxRunner{db: db}, &recordingNotifier{}, nil, nil)
	require.NoError(t, err)

	id, err := rebooted.Place(ctx, []int64{3})
	require.NoError(t, err)
	assert.Equal(t, int64(3), id)
}
