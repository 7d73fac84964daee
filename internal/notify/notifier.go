package notify

import (
	"context"
	"strings"
	"sync"
)

// Kind is a bitmask of pipeline changes. Notifications accumulate into a
// shared mask so a slow subscriber sees one combined wakeup instead of a
// backlog of individual events.
type Kind uint8

const (
	// NewIncoming fires when an order is placed.
	NewIncoming Kind = 1 << iota
	// ItemSupplied fires when a single unit is handed over.
	ItemSupplied
	// Resolved fires when an order leaves the incoming board
	// (completed or canceled).
	Resolved
	// PutBack fires when a resolution is undone and the order
	// returns to the incoming board.
	PutBack
)

// Has reports whether flag is set in k.
func (k Kind) Has(flag Kind) bool {
	return k&flag != 0
}

func (k Kind) String() string {
	if k == 0 {
		return "none"
	}
	names := make([]string, 0, 4)
	if k.Has(NewIncoming) {
		names = append(names, "new_incoming")
	}
	if k.Has(ItemSupplied) {
		names = append(names, "item_supplied")
	}
	if k.Has(Resolved) {
		names = append(names, "resolved")
	}
	if k.Has(PutBack) {
		names = append(names, "put_back")
	}
	return strings.Join(names, "|")
}

// Notifier broadcasts pipeline changes to blocked subscribers. Kinds
// accumulate in the pending mask until a waiter consumes them, so a
// change raised while a subscriber is off re-rendering is still
// delivered on its next wait. The mask is cleared by the last waiter to
// leave, so every subscriber blocked at notify time observes the same
// combined mask.
type Notifier struct {
	mu      sync.Mutex
	mask    Kind
	waiters int
	signal  chan struct{}
}

func New() *Notifier {
	return &Notifier{signal: make(chan struct{})}
}

// Notify merges kinds into the pending mask and wakes all current
// waiters. The mask survives until consumed, so kinds raised with no
// waiter present greet the next Wait immediately.
func (n *Notifier) Notify(kinds Kind) {
	if kinds == 0 {
		return
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	n.mask |= kinds
	close(n.signal)
	n.signal = make(chan struct{})
}

// Wait blocks until at least one change arrives or ctx is done, and
// returns the accumulated mask. The last waiter to consume the mask
// resets it for the next round.
func (n *Notifier) Wait(ctx context.Context) (Kind, error) {
	n.mu.Lock()
	n.waiters++
	for n.mask == 0 {
		ch := n.signal
		n.mu.Unlock()
		select {
		case <-ctx.Done():
			n.mu.Lock()
			n.waiters--
			n.mu.Unlock()
			return 0, ctx.Err()
		case <-ch:
		}
		n.mu.Lock()
	}
	kinds := n.mask
	n.waiters--
	if n.waiters == 0 {
		n.mask = 0
	}
	n.mu.Unlock()
	return kinds, nil
}

// Waiters returns the number of currently blocked subscribers.
func (n *Notifier) Waiters() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.waiters
}
