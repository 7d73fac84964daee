package orders

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/kioskworks/counter-backend/internal/notify"
	"github.com/kioskworks/counter-backend/pkg/db/models"
	pkgerrors "github.com/kioskworks/counter-backend/pkg/errors"
	"github.com/kioskworks/counter-backend/pkg/metrics"
	"gorm.io/gorm"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type changeBroadcaster interface {
	Notify(kinds notify.Kind)
}

// Store owns placed orders: id assignment, lifecycle transitions, and
// the read queries behind the boards. The order-id counter is a field
// of the store, restored from the table at startup; its mutex is held
// across the assignment+insert transaction so concurrent placements
// never share or skip an id.
type Store struct {
	repo      Repository
	tx        txRunner
	notifier  changeBroadcaster
	stock     StockGate
	pipeline  *metrics.PipelineMetrics
	idMu      sync.Mutex
	lastOrder int64
}

// NewStore builds the order store and restores the id counter from the
// highest persisted order id.
func NewStore(ctx context.Context, repo Repository, tx txRunner, notifier changeBroadcaster, stock StockGate, pipeline *metrics.PipelineMetrics) (*Store, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if notifier == nil {
		return nil, fmt.Errorf("change notifier required")
	}
	if stock == nil {
		stock = AllowAllStock{}
	}
	last, err := repo.MaxOrderID(ctx)
	if err != nil {
		return nil, fmt.Errorf("restoring order id counter: %w", err)
	}
	return &Store{
		repo:      repo,
		tx:        tx,
		notifier:  notifier,
		stock:     stock,
		pipeline:  pipeline,
		lastOrder: last,
	}, nil
}

// Place persists a new order for the given product ids, in cart order,
// and returns the assigned order id.
func (s *Store) Place(ctx context.Context, productIDs []int64) (int64, error) {
	if len(productIDs) == 0 {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "product list empty")
	}

	if err := s.validateProducts(ctx, productIDs); err != nil {
		return 0, err
	}
	if err := s.stock.Reserve(ctx, productIDs); err != nil {
		return 0, err
	}

	started := time.Now()

	s.idMu.Lock()
	orderID := s.lastOrder + 1
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order := &models.Order{OrderID: orderID, PlacedAt: time.Now()}
		if err := repo.CreateOrder(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert order")
		}
		items := make([]models.OrderedItem, 0, len(productIDs))
		for lineNo, productID := range productIDs {
			items = append(items, models.OrderedItem{
				OrderID:   orderID,
				LineNo:    lineNo,
				ProductID: productID,
			})
		}
		if err := repo.CreateOrderedItems(ctx, items); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert ordered items")
		}
		return nil
	})
	if err == nil {
		s.lastOrder = orderID
	}
	s.idMu.Unlock()
	if err != nil {
		return 0, err
	}

	s.pipeline.IncOrdersPlaced()
	s.pipeline.ObservePlaceDuration(time.Since(started))
	s.notifier.Notify(notify.NewIncoming)
	return orderID, nil
}

func (s *Store) validateProducts(ctx context.Context, productIDs []int64) error {
	unique := make(map[int64]struct{}, len(productIDs))
	distinct := make([]int64, 0, len(productIDs))
	for _, id := range productIDs {
		if _, ok := unique[id]; ok {
			continue
		}
		unique[id] = struct{}{}
		distinct = append(distinct, id)
	}

	products, err := s.repo.FindProductsByIDs(ctx, distinct)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load products")
	}
	if len(products) == len(distinct) {
		return nil
	}

	found := make(map[int64]struct{}, len(products))
	for _, p := range products {
		found[p.ProductID] = struct{}{}
	}
	missing := make([]int64, 0)
	for _, id := range distinct {
		if _, ok := found[id]; !ok {
			missing = append(missing, id)
		}
	}
	return pkgerrors.New(pkgerrors.CodeNotFound, "unknown product").
		WithDetails(map[string]any{"product_ids": missing})
}

// SupplyItem marks the oldest unsupplied unit of the product within the
// order as handed over.
func (s *Store) SupplyItem(ctx context.Context, orderID, productID int64) error {
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		_, err := s.supplyOldest(ctx, s.repo.WithTx(tx), orderID, productID)
		return err
	})
	if err != nil {
		return err
	}
	s.pipeline.IncItemsSupplied()
	s.notifier.Notify(notify.ItemSupplied)
	return nil
}

// SupplyAndCompleteIfDone supplies one unit and, inside the same
// transaction, completes the order when every unit is now supplied.
// Completion is refused while canceled_at is set: the unit still records
// supplied_at, but a canceled ticket never gains completed_at.
func (s *Store) SupplyAndCompleteIfDone(ctx context.Context, orderID, productID int64) (supplied, autoCompleted bool, err error) {
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		at, err := s.supplyOldest(ctx, repo, orderID, productID)
		if err != nil {
			return err
		}
		supplied = true

		total, suppliedCount, err := repo.CountItems(ctx, orderID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count ordered items")
		}
		if total == 0 || suppliedCount < total {
			return nil
		}

		done, err := repo.CompleteIfIncoming(ctx, orderID, at)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "complete order")
		}
		autoCompleted = done
		return nil
	})
	if err != nil {
		return false, false, err
	}

	s.pipeline.IncItemsSupplied()
	kinds := notify.ItemSupplied
	if autoCompleted {
		s.pipeline.IncOrdersCompleted()
		kinds |= notify.Resolved
	}
	s.notifier.Notify(kinds)
	return supplied, autoCompleted, nil
}

// SupplyAllAndComplete supplies every remaining unit and completes the
// order, regardless of prior partial supply state.
func (s *Store) SupplyAllAndComplete(ctx context.Context, orderID int64) error {
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if _, err := s.mustFindOrder(ctx, repo, orderID); err != nil {
			return err
		}
		now := time.Now()
		if err := repo.MarkAllSupplied(ctx, orderID, now); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "supply remaining items")
		}
		if _, err := repo.SetResolution(ctx, orderID, nil, &now); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "complete order")
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.pipeline.IncOrdersCompleted()
	s.notifier.Notify(notify.ItemSupplied | notify.Resolved)
	return nil
}

// Cancel resolves the order as canceled, clearing any completion.
func (s *Store) Cancel(ctx context.Context, orderID int64) error {
	now := time.Now()
	if err := s.resolve(ctx, orderID, &now, nil); err != nil {
		return err
	}
	s.pipeline.IncOrdersCanceled()
	s.notifier.Notify(notify.Resolved)
	return nil
}

// Complete resolves the order as completed regardless of per-unit supply
// state (kitchen override), clearing any cancellation.
func (s *Store) Complete(ctx context.Context, orderID int64) error {
	now := time.Now()
	if err := s.resolve(ctx, orderID, nil, &now); err != nil {
		return err
	}
	s.pipeline.IncOrdersCompleted()
	s.notifier.Notify(notify.Resolved)
	return nil
}

// Reset undoes a resolution and puts the order back on the incoming
// board. Resetting an order that was never resolved is a no-op.
func (s *Store) Reset(ctx context.Context, orderID int64) error {
	var wasResolved bool
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := s.mustFindOrder(ctx, repo, orderID)
		if err != nil {
			return err
		}
		wasResolved = order.CanceledAt != nil || order.CompletedAt != nil
		if !wasResolved {
			return nil
		}
		if _, err := repo.SetResolution(ctx, orderID, nil, nil); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reset order")
		}
		return nil
	})
	if err != nil {
		return err
	}
	if wasResolved {
		s.notifier.Notify(notify.PutBack)
	}
	return nil
}

func (s *Store) resolve(ctx context.Context, orderID int64, canceledAt, completedAt *time.Time) error {
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		found, err := repo.SetResolution(ctx, orderID, canceledAt, completedAt)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update resolution")
		}
		if !found {
			return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil
	})
}

func (s *Store) supplyOldest(ctx context.Context, repo Repository, orderID, productID int64) (time.Time, error) {
	item, err := repo.FindOldestUnsupplied(ctx, orderID, productID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return time.Time{}, pkgerrors.New(pkgerrors.CodeNotFound, "no unsupplied item for order/product")
		}
		return time.Time{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find unsupplied item")
	}
	now := time.Now()
	if err := repo.MarkItemSupplied(ctx, item.ID, now); err != nil {
		return time.Time{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark item supplied")
	}
	return now, nil
}

func (s *Store) mustFindOrder(ctx context.Context, repo Repository, orderID int64) (*models.Order, error) {
	order, err := repo.FindOrder(ctx, orderID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return order, nil
}

// ByID returns one order with its units in line order.
func (s *Store) ByID(ctx context.Context, orderID int64) (*models.Order, error) {
	return s.mustFindOrder(ctx, s.repo, orderID)
}

// ListIncoming returns unresolved orders, oldest first.
func (s *Store) ListIncoming(ctx context.Context) ([]models.Order, error) {
	return s.list(ctx, s.repo.ListIncoming)
}

// ListResolved returns completed and canceled orders, oldest first.
func (s *Store) ListResolved(ctx context.Context) ([]models.Order, error) {
	return s.list(ctx, s.repo.ListResolved)
}

// ListCanceled returns canceled orders, oldest first.
func (s *Store) ListCanceled(ctx context.Context) ([]models.Order, error) {
	return s.list(ctx, s.repo.ListCanceled)
}

// ListCompleted returns completed orders, oldest first.
func (s *Store) ListCompleted(ctx context.Context) ([]models.Order, error) {
	return s.list(ctx, s.repo.ListCompleted)
}

func (s *Store) list(ctx context.Context, query func(context.Context) ([]models.Order, error)) ([]models.Order, error) {
	orders, err := query(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	return orders, nil
}

// DeleteProduct removes a catalog entry and every unit referencing it,
// across all orders. Destructive; the boundary layer gates it behind
// staff authorization.
func (s *Store) DeleteProduct(ctx context.Context, productID int64) error {
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.DeleteOrderedItemsByProduct(ctx, productID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete ordered items")
		}
		found, err := repo.DeleteProductRow(ctx, productID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete product")
		}
		if !found {
			return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil
	})
}

// ClearAll drops every order and unit. The id counter is not rewound;
// order ids are never reused.
func (s *Store) ClearAll(ctx context.Context) error {
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).DeleteAllOrders(ctx); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear orders")
		}
		return nil
	})
}
