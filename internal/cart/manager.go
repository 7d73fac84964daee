package cart

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	pkgerrors "github.com/kioskworks/counter-backend/pkg/errors"
)

// Manager holds every live cart, keyed by an unguessable session token.
// Carts are process-local and die with the process; only placed orders
// are durable.
type Manager struct {
	sessions syncedSessions
	products ProductFinder
	placer   OrderPlacer
}

// NewManager builds a cart manager over the catalog and order store.
func NewManager(products ProductFinder, placer OrderPlacer) (*Manager, error) {
	if products == nil {
		return nil, fmt.Errorf("product finder required")
	}
	if placer == nil {
		return nil, fmt.Errorf("order placer required")
	}
	return &Manager{
		sessions: newSyncedSessions(),
		products: products,
		placer:   placer,
	}, nil
}

// Create allocates a fresh empty cart and returns its view.
func (m *Manager) Create(ctx context.Context) View {
	session := newSession(uuid.NewString())
	m.sessions.put(session)
	return m.viewOf(session)
}

// Get returns the current view of an existing cart.
func (m *Manager) Get(ctx context.Context, sessionKey string) (View, error) {
	session, err := m.lookup(sessionKey)
	if err != nil {
		return View{}, err
	}
	return m.viewOf(session), nil
}

// Add appends one unit of the product to the cart.
func (m *Manager) Add(ctx context.Context, sessionKey string, productID int64) (View, error) {
	session, err := m.lookup(sessionKey)
	if err != nil {
		return View{}, err
	}

	product, err := m.products.FindByID(ctx, productID)
	if err != nil {
		if err == gorm.ErrRecordNotFound || pkgerrors.As(err).Code() == pkgerrors.CodeNotFound {
			return View{}, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return View{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}

	session.add(Item{
		ID:        uuid.New(),
		ProductID: product.ProductID,
		Name:      product.Name,
		Price:     product.Price,
	})
	return m.viewOf(session), nil
}

// Remove drops one line from the cart. Unknown item ids leave the cart
// unchanged.
func (m *Manager) Remove(ctx context.Context, sessionKey string, itemID uuid.UUID) (View, error) {
	session, err := m.lookup(sessionKey)
	if err != nil {
		return View{}, err
	}
	session.remove(itemID)
	return m.viewOf(session), nil
}

// Clear empties the cart but keeps the session alive.
func (m *Manager) Clear(ctx context.Context, sessionKey string) (View, error) {
	session, err := m.lookup(sessionKey)
	if err != nil {
		return View{}, err
	}
	session.clear()
	return m.viewOf(session), nil
}

// Submit turns the cart into a placed order and returns the order id.
// The session is popped before placement, so a racing duplicate submit
// with the same token finds no cart instead of double-placing. An empty
// cart is rejected up front and the session survives.
func (m *Manager) Submit(ctx context.Context, sessionKey string) (int64, error) {
	session, err := m.lookup(sessionKey)
	if err != nil {
		return 0, err
	}

	_, totalCount, _ := session.snapshot()
	if totalCount == 0 {
		return 0, pkgerrors.New(pkgerrors.CodeEmptyCart, "cart is empty")
	}

	popped, ok := m.sessions.pop(sessionKey)
	if !ok {
		// Lost the race against another submit of the same session.
		return 0, pkgerrors.New(pkgerrors.CodeNotFound, "session not found")
	}

	orderID, err := m.placer.Place(ctx, popped.productIDs())
	if err != nil {
		// Restore the cart so a rejected submit can be fixed and retried.
		m.sessions.put(popped)
		return 0, err
	}
	return orderID, nil
}

func (m *Manager) lookup(sessionKey string) (*Session, error) {
	if session, ok := m.sessions.get(sessionKey); ok {
		return session, nil
	}
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "session not found")
}

func (m *Manager) viewOf(session *Session) View {
	items, totalCount, totalPrice := session.snapshot()
	return buildView(session.Key(), items, totalCount, totalPrice)
}
