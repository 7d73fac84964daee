package liveview

import (
	"context"

	"github.com/kioskworks/counter-backend/internal/notify"
)

// StreamEvent is one push to a live-board subscriber. Alert marks the
// emissions that should play the counter chime: a new incoming order or
// a resolved one put back on the board.
type StreamEvent struct {
	Alert  bool                `json:"alert"`
	Orders []IncomingOrderView `json:"orders"`
}

// Subscribe starts a streaming subscription: the current incoming board
// is emitted immediately, then re-queried and re-emitted on every
// notifier wakeup until ctx is done. The returned channel closes when
// the subscription ends.
func (f *Facade) Subscribe(ctx context.Context) (<-chan StreamEvent, error) {
	snapshot, err := f.Incoming(ctx)
	if err != nil {
		return nil, err
	}

	events := make(chan StreamEvent, 1)
	events <- StreamEvent{Orders: snapshot}
	f.pipeline.StreamClientConnected()

	go func() {
		defer close(events)
		defer f.pipeline.StreamClientDisconnected()

		for {
			kinds, err := f.waiter.Wait(ctx)
			if err != nil {
				return
			}
			f.pipeline.IncNotifierWakeup(kinds.String())

			orders, err := f.Incoming(ctx)
			if err != nil {
				if f.logg != nil {
					f.logg.Error(ctx, "stream re-query failed", err)
				}
				return
			}

			event := StreamEvent{
				Alert:  kinds.Has(notify.NewIncoming) || kinds.Has(notify.PutBack),
				Orders: orders,
			}
			select {
			case events <- event:
			case <-ctx.Done():
				return
			}
		}
	}()
	return events, nil
}
