package notify

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func waitForWaiters(t *testing.T, n *Notifier, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if n.Waiters() == want {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("notifier never reached %d waiters", want)
}

func TestWaitReturnsNotifiedKinds(t *testing.T) {
	n := New()

	result := make(chan Kind, 1)
	go func() {
		kinds, err := n.Wait(context.Background())
		if err != nil {
			return
		}
		result <- kinds
	}()

	waitForWaiters(t, n, 1)
	n.Notify(NewIncoming)

	select {
	case kinds := <-result:
		assert.Equal(t, NewIncoming, kinds)
	case <-time.After(2 * time.Second):
		t.Fatal("waiter never woke up")
	}
}

func TestNotifyAccumulatesIntoSingleMask(t *testing.T) {
	n := New()

	result := make(chan Kind, 1)
	go func() {
		kinds, err := n.Wait(context.Background())
		if err != nil {
			return
		}
		result <- kinds
	}()

	waitForWaiters(t, n, 1)
	n.Notify(NewIncoming | ItemSupplied)

	select {
	case kinds := <-result:
		assert.True(t, kinds.Has(NewIncoming))
		assert.True(t, kinds.Has(ItemSupplied))
		assert.False(t, kinds.Has(Resolved))
	case <-time.After(2 * time.Second):
		t.Fatal("waiter never woke up")
	}
}

func TestAllWaitersSeeSameMask(t *testing.T) {
	n := New()
	const waiters = 5

	var wg sync.WaitGroup
	results := make(chan Kind, waiters)
	for i := 0; i < waiters; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			kinds, err := n.Wait(context.Background())
			if err != nil {
				return
			}
			results <- kinds
		}()
	}

	waitForWaiters(t, n, waiters)
	n.Notify(Resolved)
	wg.Wait()
	close(results)

	count := 0
	for kinds := range results {
		assert.Equal(t, Resolved, kinds)
		count++
	}
	assert.Equal(t, waiters, count)
}

func TestLastWaiterClearsMask(t *testing.T) {
	n := New()

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = n.Wait(context.Background())
	}()

	waitForWaiters(t, n, 1)
	n.Notify(PutBack)
	<-done

	// A fresh waiter must block again instead of draining a stale mask.
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := n.Wait(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestNotifyWithoutWaitersIsHeldForNextWait(t *testing.T) {
	n := New()
	n.Notify(NewIncoming)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	kinds, err := n.Wait(ctx)
	require.NoError(t, err)
	assert.Equal(t, NewIncoming, kinds)
}

func TestChangeRaisedBetweenWaitsIsNotLost(t *testing.T) {
	n := New()

	// First round: a subscriber consumes a change, then leaves to
	// re-render its board.
	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = n.Wait(context.Background())
	}()
	waitForWaiters(t, n, 1)
	n.Notify(ItemSupplied)
	<-done

	// A change lands while the subscriber is away. Its next wait must
	// observe it without blocking.
	n.Notify(NewIncoming)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	kinds, err := n.Wait(ctx)
	require.NoError(t, err)
	assert.True(t, kinds.Has(NewIncoming))
}

func TestWaitHonorsContextCancel(t *testing.T) {
	n := New()

	ctx, cancel := context.WithCancel(context.Background())
	errs := make(chan error, 1)
	go func() {
		_, err := n.Wait(ctx)
		errs <- err
	}()

	waitForWaiters(t, n, 1)
	cancel()

	select {
	case err := <-errs:
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("waiter never observed cancellation")
	}
	assert.Equal(t, 0, n.Waiters())
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "none", Kind(0).String())
	assert.Equal(t, "new_incoming", NewIncoming.String())
	assert.Equal(t, "item_supplied|resolved", (ItemSupplied | Resolved).String())
	assert.Equal(t, "new_incoming|item_supplied|resolved|put_back",
		(NewIncoming | ItemSupplied | Resolved | PutBack).String())
}
