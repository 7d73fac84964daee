package stats

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/kioskworks/counter-backend/pkg/config"
	"github.com/kioskworks/counter-backend/pkg/db/models"
)

func setupStatsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	schemas := []string{`
CREATE TABLE IF NOT EXISTS products (
  product_id INTEGER PRIMARY KEY,
  name TEXT NOT NULL,
  filename TEXT NOT NULL,
  price INTEGER NOT NULL,
  no_stock INTEGER,
  created_at DATETIME,
  updated_at DATETIME
);`, `
CREATE TABLE IF NOT EXISTS orders (
  order_id INTEGER PRIMARY KEY,
  placed_at DATETIME NOT NULL,
  canceled_at DATETIME,
  completed_at DATETIME
);`, `
CREATE TABLE IF NOT EXISTS ordered_items (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  order_id INTEGER NOT NULL,
  line_no INTEGER NOT NULL,
  product_id INTEGER NOT NULL,
  supplied_at DATETIME,
  created_at DATETIME
);`}
	for _, schema := range schemas {
		require.NoError(t, db.Exec(schema).Error)
	}

	require.NoError(t, db.Create(&models.Product{ProductID: 1, Name: "Blend Coffee", Filename: "blend.png", Price: 150}).Error)
	return db
}

func seedOrder(t *testing.T, db *gorm.DB, orderID int64, placedAt time.Time, completedAt, canceledAt *time.Time) {
	t.Helper()
	order := models.Order{OrderID: orderID, PlacedAt: placedAt, CompletedAt: completedAt, CanceledAt: canceledAt}
	require.NoError(t, db.Create(&order).Error)
	item := models.OrderedItem{OrderID: orderID, LineNo: 0, ProductID: 1}
	require.NoError(t, db.Create(&item).Error)
}

func newTestService(t *testing.T, db *gorm.DB) *Service {
	t.Helper()
	svc, err := NewService(NewRepository(db), config.StatsConfig{
		ExportPath:  filepath.Join(t.TempDir(), "stat.csv"),
		SampleLimit: 50,
	})
	require.NoError(t, err)
	return svc
}

func TestWaitEstimateAveragesCompletedOrders(t *testing.T) {
	db := setupStatsTestDB(t)
	svc := newTestService(t, db)
	ctx := context.Background()

	base := time.Now().Add(-time.Hour)
	done1 := base.Add(60 * time.Second)
	done2 := base.Add(120 * time.Second)
	seedOrder(t, db, 1, base, &done1, nil)
	seedOrder(t, db, 2, base, &done2, nil)
	seedOrder(t, db, 3, base, nil, nil)
	seedOrder(t, db, 4, base, nil, nil)

	estimate, err := svc.WaitEstimate(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, estimate.SampleSize)
	assert.Equal(t, int64(2), estimate.IncomingOrders)
	assert.Equal(t, "90", estimate.AverageServiceSeconds.String())
	assert.Equal(t, "180", estimate.EstimatedWaitSeconds.String())
}

func TestWaitEstimateWithNoHistory(t *testing.T) {
	db := setupStatsTestDB(t)
	svc := newTestService(t, db)

	estimate, err := svc.WaitEstimate(context.Background())
	require.NoError(t, err)
	assert.Zero(t, estimate.SampleSize)
	assert.True(t, estimate.AverageServiceSeconds.IsZero())
	assert.True(t, estimate.EstimatedWaitSeconds.IsZero())
}

func TestExportCSVSkipsCanceledOrders(t *testing.T) {
	db := setupStatsTestDB(t)
	svc := newTestService(t, db)
	ctx := context.Background()

	now := time.Now()
	done := now.Add(time.Minute)
	seedOrder(t, db, 1, now, &done, nil)
	seedOrder(t, db, 2, now, nil, &done)
	seedOrder(t, db, 3, now, nil, nil)

	path, err := svc.ExportCSV(ctx)
	require.NoError(t, err)

	file, err := os.Open(path)
	require.NoError(t, err)
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3) // header + orders 1 and 3
	assert.Equal(t, []string{"order_id", "placed_at", "completed_at", "name", "price"}, records[0])
	assert.Equal(t, "1", records[1][0])
	assert.Equal(t, "3", records[2][0])
	assert.Equal(t, "Blend Coffee", records[1][3])
	assert.Equal(t, "150", records[1][4])
	assert.Empty(t, records[2][2])
}
