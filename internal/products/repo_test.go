package products

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/dentavia-mx/dentavia-backend/pkg/db"
	"github.com/dentavia-mx/dentavia-backend/pkg/db/models"
)

func setupProductsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	schema := `
CREATE TABLE IF NOT EXISTS products (
  id TEXT PRIMARY KEY,
  sku TEXT NOT NULL UNIQUE,
  name TEXT NOT NULL,
  description TEXT,
  category TEXT NOT NULL DEFAULT '',
  tags TEXT,
  price_cents INTEGER NOT NULL,
  is_active BOOLEAN NOT NULL DEFAULT 1,
  shipping_weight_g REAL,
  shipping_length_cm REAL,
  shipping_width_cm REAL,
  shipping_height_cm REAL,
  shipping_profile TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, conn.Exec(schema).Error)
	return conn
}

func seedProduct(t *testing.T, repo Repository, sku string, mutate func(*models.Product)) *models.Product {
	t.Helper()

	product := &models.Product{
		ID:         uuid.New(),
		SKU:        sku,
		Name:       "Product " + sku,
		Category:   "brackets",
		PriceCents: 25000,
		IsActive:   true,
	}
	if mutate != nil {
		mutate(product)
	}
	created, err := repo.Create(context.Background(), product)
	require.NoError(t, err)
	return created
}

func f64(v float64) *float64 { return &v }

func TestCreateDuplicateSKUIsUniqueViolation(t *testing.T) {
	repo := NewRepository(setupProductsTestDB(t))

	seedProduct(t, repo, "BRK-001", nil)

	_, err := repo.Create(context.Background(), &models.Product{
		ID:         uuid.New(),
		SKU:        "BRK-001",
		Name:       "Duplicate",
		PriceCents: 100,
	})
	require.Error(t, err)
	assert.True(t, db.IsUniqueViolation(err))
}

func TestListFiltersByCategoryAndActive(t *testing.T) {
	repo := NewRepository(setupProductsTestDB(t))

	seedProduct(t, repo, "BRK-001", nil)
	seedProduct(t, repo, "BRK-002", func(p *models.Product) { p.IsActive = false })
	seedProduct(t, repo, "WIR-001", func(p *models.Product) { p.Category = "wires" })

	listing, err := repo.List(context.Background(), ListFilters{Category: "brackets", ActiveOnly: true})
	require.NoError(t, err)
	require.Len(t, listing, 1)
	assert.Equal(t, "BRK-001", listing[0].SKU)

	all, err := repo.List(context.Background(), ListFilters{})
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestShippingAttributesByIDs(t *testing.T) {
	repo := NewRepository(setupProductsTestDB(t))

	full := seedProduct(t, repo, "BRK-001", func(p *models.Product) {
		p.ShippingWeightG = f64(300)
		p.ShippingLengthCM = f64(20)
		p.ShippingWidthCM = f64(15)
		p.ShippingHeightCM = f64(10)
	})
	sparse := seedProduct(t, repo, "BRK-002", func(p *models.Product) {
		profile := "SMALL_BOX"
		p.ShippingProfile = &profile
	})
	seedProduct(t, repo, "WIR-001", nil)

	attrs, err := repo.ShippingAttributesByIDs(context.Background(), []uuid.UUID{full.ID, sparse.ID})
	require.NoError(t, err)
	require.Len(t, attrs, 2)

	require.NotNil(t, attrs[full.ID].WeightG)
	assert.Equal(t, 300.0, *attrs[full.ID].WeightG)
	assert.Equal(t, 20.0, *attrs[full.ID].LengthCM)

	assert.Nil(t, attrs[sparse.ID].WeightG)
	require.NotNil(t, attrs[sparse.ID].Profile)
	assert.Equal(t, "SMALL_BOX", *attrs[sparse.ID].Profile)
}

func TestShippingAttributesByIDsEmptyInput(t *testing.T) {
	repo := NewRepository(setupProductsTestDB(t))

	attrs, err := repo.ShippingAttributesByIDs(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, attrs)
}
