package cart

import (
	"sync"

	"github.com/google/uuid"
)

// Item is one selected unit in a cart. Each unit gets its own id so a
// single line can be removed without touching its duplicates.
type Item struct {
	ID        uuid.UUID
	ProductID int64
	Name      string
	Price     int64
}

// Session is one customer's in-progress cart. Totals are maintained
// incrementally on add/remove; items keep insertion order because that
// order becomes the line order of the placed ticket.
type Session struct {
	mu         sync.Mutex
	key        string
	items      []Item
	totalCount int
	totalPrice int64
}

func newSession(key string) *Session {
	return &Session{key: key}
}

// Key returns the opaque session token.
func (s *Session) Key() string {
	return s.key
}

func (s *Session) add(item Item) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append(s.items, item)
	s.totalCount++
	s.totalPrice += item.Price
}

// remove drops the line with the given id. Unknown ids are ignored.
func (s *Session) remove(itemID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, item := range s.items {
		if item.ID == itemID {
			s.items = append(s.items[:i], s.items[i+1:]...)
			s.totalCount--
			s.totalPrice -= item.Price
			return
		}
	}
}

func (s *Session) clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = nil
	s.totalCount = 0
	s.totalPrice = 0
}

// productIDs returns the selections in insertion order.
func (s *Session) productIDs() []int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]int64, len(s.items))
	for i, item := range s.items {
		ids[i] = item.ProductID
	}
	return ids
}

func (s *Session) snapshot() (items []Item, totalCount int, totalPrice int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	items = make([]Item, len(s.items))
	copy(items, s.items)
	return items, s.totalCount, s.totalPrice
}
