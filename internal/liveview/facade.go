package liveview

import (
	"context"
	"fmt"

	"github.com/kioskworks/counter-backend/internal/notify"
	pkgerrors "github.com/kioskworks/counter-backend/pkg/errors"
	"github.com/kioskworks/counter-backend/pkg/logger"
	"github.com/kioskworks/counter-backend/pkg/metrics"
)

type changeWaiter interface {
	Wait(ctx context.Context) (notify.Kind, error)
}

// OrderDetailView is the single-order payload; same shape as a resolved
// listing entry, with nil resolution timestamps while incoming.
type OrderDetailView = ResolvedOrderView

// Facade is the read side of the pipeline: one-shot board loads and
// long-lived streaming subscriptions that re-run on every notification.
type Facade struct {
	repo     Repository
	waiter   changeWaiter
	logg     *logger.Logger
	pipeline *metrics.PipelineMetrics
}

// NewFacade builds the live query facade.
func NewFacade(repo Repository, waiter changeWaiter, logg *logger.Logger, pipeline *metrics.PipelineMetrics) (*Facade, error) {
	if repo == nil {
		return nil, fmt.Errorf("liveview repository required")
	}
	if waiter == nil {
		return nil, fmt.Errorf("change waiter required")
	}
	return &Facade{repo: repo, waiter: waiter, logg: logg, pipeline: pipeline}, nil
}

// Incoming returns the kitchen's incoming board.
func (f *Facade) Incoming(ctx context.Context) ([]IncomingOrderView, error) {
	rows, err := f.repo.IncomingRows(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load incoming rows")
	}
	return buildIncomingViews(rows), nil
}

// Resolved returns completed and canceled orders with price totals.
func (f *Facade) Resolved(ctx context.Context) ([]ResolvedOrderView, error) {
	return f.resolvedViews(ctx, f.repo.ResolvedRows)
}

// Canceled returns canceled orders with price totals.
func (f *Facade) Canceled(ctx context.Context) ([]ResolvedOrderView, error) {
	return f.resolvedViews(ctx, f.repo.CanceledRows)
}

// Completed returns completed orders with price totals.
func (f *Facade) Completed(ctx context.Context) ([]ResolvedOrderView, error) {
	return f.resolvedViews(ctx, f.repo.CompletedRows)
}

func (f *Facade) resolvedViews(ctx context.Context, query func(context.Context) ([]orderRow, error)) ([]ResolvedOrderView, error) {
	rows, err := query(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order rows")
	}
	return buildResolvedViews(rows), nil
}

// One returns a single order's detail view.
func (f *Facade) One(ctx context.Context, orderID int64) (*OrderDetailView, error) {
	rows, err := f.repo.OneOrderRows(ctx, orderID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order rows")
	}
	views := buildResolvedViews(rows)
	if len(views) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	return &views[0], nil
}

// ProductBoard returns the per-product view of outstanding units across
// incoming orders.
func (f *Facade) ProductBoard(ctx context.Context, sortBy BoardSort) ([]ProductBoardEntry, error) {
	rows, err := f.repo.UnsuppliedRows(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load board rows")
	}
	return buildBoard(rows, sortBy), nil
}
