package stats

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/kioskworks/counter-backend/pkg/config"
	pkgerrors "github.com/kioskworks/counter-backend/pkg/errors"
)

// WaitEstimate summarizes recent kitchen throughput for the "how long
// will my order take" display.
type WaitEstimate struct {
	SampleSize            int             `json:"sample_size"`
	AverageServiceSeconds decimal.Decimal `json:"average_service_seconds"`
	IncomingOrders        int64           `json:"incoming_orders"`
	EstimatedWaitSeconds  decimal.Decimal `json:"estimated_wait_seconds"`
}

// Service computes reporting statistics over placed-order history.
type Service struct {
	repo Repository
	cfg  config.StatsConfig
}

// NewService builds the statistics service.
func NewService(repo Repository, cfg config.StatsConfig) (*Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("stats repository required")
	}
	return &Service{repo: repo, cfg: cfg}, nil
}

// WaitEstimate averages the service time of recently completed orders
// and scales it by the depth of the incoming queue.
func (s *Service) WaitEstimate(ctx context.Context) (*WaitEstimate, error) {
	samples, err := s.repo.RecentServiceSamples(ctx, s.cfg.SampleLimit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load service samples")
	}
	incoming, err := s.repo.CountIncoming(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count incoming orders")
	}

	estimate := &WaitEstimate{
		SampleSize:            len(samples),
		AverageServiceSeconds: decimal.Zero,
		IncomingOrders:        incoming,
		EstimatedWaitSeconds:  decimal.Zero,
	}
	if len(samples) == 0 {
		return estimate, nil
	}

	sum := decimal.Zero
	for _, sample := range samples {
		seconds := decimal.NewFromFloat(sample.CompletedAt.Sub(sample.PlacedAt).Seconds())
		sum = sum.Add(seconds)
	}
	average := sum.Div(decimal.NewFromInt(int64(len(samples)))).Round(1)

	estimate.AverageServiceSeconds = average
	estimate.EstimatedWaitSeconds = average.Mul(decimal.NewFromInt(incoming)).Round(1)
	return estimate, nil
}

// ExportCSV writes the non-canceled order history to the configured
// path and returns that path.
func (s *Service) ExportCSV(ctx context.Context) (string, error) {
	rows, err := s.repo.ExportRows(ctx)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load export rows")
	}

	path := s.cfg.ExportPath
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create export directory")
	}
	file, err := os.Create(path)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create export file")
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write([]string{"order_id", "placed_at", "completed_at", "name", "price"}); err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "write csv header")
	}
	for _, row := range rows {
		completedAt := ""
		if row.CompletedAt != nil {
			completedAt = row.CompletedAt.Format(time.RFC3339)
		}
		record := []string{
			strconv.FormatInt(row.OrderID, 10),
			row.PlacedAt.Format(time.RFC3339),
			completedAt,
			row.Name,
			strconv.FormatInt(row.Price, 10),
		}
		if err := writer.Write(record); err != nil {
			return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "write csv row")
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "flush csv")
	}
	return path, nil
}
