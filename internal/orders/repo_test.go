package orders

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/dentavia-mx/dentavia-backend/pkg/db/models"
	"github.com/dentavia-mx/dentavia-backend/pkg/types"
)

func setupOrdersTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	orders := `
CREATE TABLE IF NOT EXISTS orders (
  id TEXT PRIMARY KEY,
  order_number INTEGER NOT NULL,
  customer_name TEXT NOT NULL,
  customer_email TEXT NOT NULL,
  customer_phone TEXT,
  status TEXT NOT NULL DEFAULT 'pending',
  currency TEXT NOT NULL DEFAULT 'MXN',
  subtotal_cents INTEGER NOT NULL,
  shipping_cents INTEGER NOT NULL DEFAULT 0,
  tax_cents INTEGER NOT NULL DEFAULT 0,
  total_cents INTEGER NOT NULL,
  metadata TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`
	lineItems := `
CREATE TABLE IF NOT EXISTS order_line_items (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL,
  product_id TEXT,
  name TEXT NOT NULL,
  sku TEXT,
  unit_price_cents INTEGER NOT NULL,
  qty INTEGER NOT NULL,
  total_cents INTEGER NOT NULL,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(orders).Error)
	require.NoError(t, db.Exec(lineItems).Error)
	return db
}

func createTestOrder(t *testing.T, repo Repository, metadata types.JSONMap) *models.Order {
	t.Helper()

	order := &models.Order{
		ID:            uuid.New(),
		OrderNumber:   1,
		CustomerName:  "Dra. Torres",
		CustomerEmail: "torres@example.mx",
		Status:        models.OrderStatusPending,
		Currency:      "MXN",
		SubtotalCents: 50000,
		TotalCents:    50000,
		Metadata:      metadata,
	}
	created, err := repo.Create(context.Background(), order)
	require.NoError(t, err)
	return created
}

func TestRepositoryCreateAndFind(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)

	order := createTestOrder(t, repo, types.JSONMap{"channel": "web"})

	items := []models.OrderLineItem{
		{ID: uuid.New(), OrderID: order.ID, Name: "Brackets kit", UnitPriceCents: 25000, Qty: 2, TotalCents: 50000},
	}
	require.NoError(t, repo.CreateLineItems(context.Background(), items))

	found, err := repo.FindByID(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.ID, found.ID)
	assert.Equal(t, "web", found.Metadata["channel"])
	require.Len(t, found.Items, 1)
	assert.Equal(t, "Brackets kit", found.Items[0].Name)
}

func TestRepositoryNextOrderNumber(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)

	first, err := repo.NextOrderNumber(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), first)

	createTestOrder(t, repo, nil)

	next, err := repo.NextOrderNumber(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), next)
}

func TestRepositoryUpdateMetadataPrecondition(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)

	order := createTestOrder(t, repo, types.JSONMap{"channel": "web"})

	snapshot, err := repo.ReadMetadata(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, "web", snapshot.Metadata["channel"])

	written, err := repo.UpdateMetadata(context.Background(), order.ID, types.JSONMap{"channel": "web", "notes": "first"}, snapshot.UpdatedAt)
	require.NoError(t, err)
	assert.True(t, written)

	// The first write advanced updated_at; a writer still holding the old
	// snapshot must be rejected.
	stale, err := repo.UpdateMetadata(context.Background(), order.ID, types.JSONMap{"notes": "stale"}, snapshot.UpdatedAt)
	require.NoError(t, err)
	assert.False(t, stale)

	current, err := repo.ReadMetadata(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, "first", current.Metadata["notes"])

	retried, err := repo.UpdateMetadata(context.Background(), order.ID, types.JSONMap{"notes": "second"}, current.UpdatedAt)
	require.NoError(t, err)
	assert.True(t, retried)
}

func TestRepositoryReadMetadataMissingOrder(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)

	_, err := repo.ReadMetadata(context.Background(), uuid.New())
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRepositoryUpdateStatus(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)

	order := createTestOrder(t, repo, nil)
	require.NoError(t, repo.UpdateStatus(context.Background(), order.ID, models.OrderStatusPaid))

	found, err := repo.FindByID(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusPaid, found.Status)
}
