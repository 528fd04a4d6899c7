package catalog

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/karatworks/aurumpos-backend/pkg/db/models"
	"github.com/karatworks/aurumpos-backend/pkg/enums"
	pkgerrors "github.com/karatworks/aurumpos-backend/pkg/errors"
	"github.com/karatworks/aurumpos-backend/pkg/pagination"
)

func setupCatalogTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	stores := `
CREATE TABLE IF NOT EXISTS stores (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  phone TEXT,
  email TEXT,
  address_line TEXT,
  city TEXT,
  region TEXT,
  postal_code TEXT,
  currency TEXT NOT NULL DEFAULT 'USD',
  tax_rate_pct TEXT NOT NULL DEFAULT '0',
  max_payment_splits INTEGER NOT NULL DEFAULT 4,
  held_order_ttl_hours INTEGER NOT NULL DEFAULT 72,
  receipt_footer TEXT,
  is_active INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME,
  updated_at DATETIME
);`
	products := `
CREATE TABLE IF NOT EXISTS products (
  id TEXT PRIMARY KEY,
  store_id TEXT NOT NULL,
  sku TEXT NOT NULL,
  barcode TEXT,
  name TEXT NOT NULL,
  description TEXT,
  category TEXT NOT NULL,
  metal TEXT,
  purity TEXT,
  weight_grams TEXT,
  gemstones TEXT NOT NULL DEFAULT '{}',
  carat_weight REAL,
  image_url TEXT,
  price_cents INTEGER NOT NULL,
  stock_qty INTEGER NOT NULL DEFAULT 0,
  one_of_a_kind INTEGER NOT NULL DEFAULT 0,
  status TEXT NOT NULL DEFAULT 'active',
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(stores).Error)
	require.NoError(t, db.Exec(products).Error)
	return db
}

func newTestStore(t *testing.T, db *gorm.DB) *models.Store {
	t.Helper()

	store := &models.Store{
		ID:   uuid.New(),
		Name: "Karat Works Norman",
	}
	require.NoError(t, db.Create(store).Error)
	return store
}

func seedProduct(t *testing.T, db *gorm.DB, storeID uuid.UUID, sku string, category enums.ProductCategory, price int64, created time.Time) *models.Product {
	t.Helper()

	product := &models.Product{
		ID:         uuid.New(),
		StoreID:    storeID,
		SKU:        sku,
		Name:       sku,
		Category:   category,
		Gemstones:  pq.StringArray{},
		PriceCents: price,
		StockQty:   3,
		Status:     enums.ProductStatusActive,
		CreatedAt:  created,
		UpdatedAt:  created,
	}
	require.NoError(t, db.Create(product).Error)
	return product
}

func TestRepositoryProductFlow(t *testing.T) {
	db := setupCatalogTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	store := newTestStore(t, db)

	barcode := "4006381333931"
	metal := enums.MetalGold
	created, err := repo.Create(ctx, &models.Product{
		ID:         uuid.New(),
		StoreID:    store.ID,
		SKU:        "RING-FLOW",
		Barcode:    &barcode,
		Name:       "Flow Ring",
		Category:   enums.ProductCategoryRing,
		Metal:      &metal,
		Gemstones:  pq.StringArray{"diamond"},
		PriceCents: 125000,
		StockQty:   1,
		OneOfAKind: true,
		Status:     enums.ProductStatusActive,
	})
	require.NoError(t, err)

	byID, err := repo.FindByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "RING-FLOW", byID.SKU)
	assert.Equal(t, pq.StringArray{"diamond"}, byID.Gemstones)

	bySKU, err := repo.FindBySKU(ctx, store.ID, "RING-FLOW")
	require.NoError(t, err)
	assert.Equal(t, created.ID, bySKU.ID)

	byBarcode, err := repo.FindByBarcode(ctx, store.ID, barcode)
	require.NoError(t, err)
	assert.Equal(t, created.ID, byBarcode.ID)

	created.Name = "Flow Ring Updated"
	_, err = repo.Update(ctx, created)
	require.NoError(t, err)

	fetched, err := repo.FindByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Flow Ring Updated", fetched.Name)
}

func TestRepositoryList(t *testing.T) {
	db := setupCatalogTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	storeA := newTestStore(t, db)
	storeB := newTestStore(t, db)

	base := time.Now().UTC().Add(-time.Hour)
	oldest := seedProduct(t, db, storeA.ID, "RING-OLD", enums.ProductCategoryRing, 90000, base)
	middle := seedProduct(t, db, storeA.ID, "NECK-MID", enums.ProductCategoryNecklace, 45000, base.Add(time.Minute))
	newest := seedProduct(t, db, storeA.ID, "RING-NEW", enums.ProductCategoryRing, 150000, base.Add(2*time.Minute))
	seedProduct(t, db, storeB.ID, "RING-OTHER", enums.ProductCategoryRing, 60000, base.Add(3*time.Minute))

	all, err := repo.List(ctx, storeA.ID, pagination.Params{Limit: 10}, ListFilters{})
	require.NoError(t, err)
	require.Len(t, all.Products, 3)
	assert.Equal(t, newest.ID, all.Products[0].ID)
	assert.Equal(t, oldest.ID, all.Products[2].ID)
	assert.Empty(t, all.NextCursor)

	rings := enums.ProductCategoryRing
	byCategory, err := repo.List(ctx, storeA.ID, pagination.Params{Limit: 10}, ListFilters{Category: &rings})
	require.NoError(t, err)
	assert.Len(t, byCategory.Products, 2)

	byQuery, err := repo.List(ctx, storeA.ID, pagination.Params{Limit: 10}, ListFilters{Query: "neck"})
	require.NoError(t, err)
	require.Len(t, byQuery.Products, 1)
	assert.Equal(t, middle.ID, byQuery.Products[0].ID)

	minPrice := int64(100000)
	byPrice, err := repo.List(ctx, storeA.ID, pagination.Params{Limit: 10}, ListFilters{PriceMinCents: &minPrice})
	require.NoError(t, err)
	require.Len(t, byPrice.Products, 1)
	assert.Equal(t, newest.ID, byPrice.Products[0].ID)

	firstPage, err := repo.List(ctx, storeA.ID, pagination.Params{Limit: 2}, ListFilters{})
	require.NoError(t, err)
	require.Len(t, firstPage.Products, 2)
	require.NotEmpty(t, firstPage.NextCursor)

	secondPage, err := repo.List(ctx, storeA.ID, pagination.Params{Limit: 2, Cursor: firstPage.NextCursor}, ListFilters{})
	require.NoError(t, err)
	require.Len(t, secondPage.Products, 1)
	assert.Equal(t, oldest.ID, secondPage.Products[0].ID)
	assert.Empty(t, secondPage.NextCursor)
}

func TestRepositoryDecrementStock(t *testing.T) {
	db := setupCatalogTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	store := newTestStore(t, db)
	product := seedProduct(t, db, store.ID, "RING-STOCK", enums.ProductCategoryRing, 50000, time.Now().UTC())

	updated, err := repo.DecrementStock(ctx, product.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, 1, updated.StockQty)

	_, err = repo.DecrementStock(ctx, product.ID, 2)
	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, pkgerrors.CodeValidation, appErr.Code())

	_, err = repo.DecrementStock(ctx, product.ID, 0)
	appErr = pkgerrors.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, pkgerrors.CodeValidation, appErr.Code())

	_, err = repo.DecrementStock(ctx, uuid.New(), 1)
	require.Error(t, err)
}

func TestRepositoryOneOfAKindLifecycle(t *testing.T) {
	db := setupCatalogTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	store := newTestStore(t, db)

	piece, err := repo.Create(ctx, &models.Product{
		ID:         uuid.New(),
		StoreID:    store.ID,
		SKU:        "OOAK-1",
		Name:       "Estate Brooch",
		Category:   enums.ProductCategoryPendant,
		Gemstones:  pq.StringArray{},
		PriceCents: 480000,
		StockQty:   1,
		OneOfAKind: true,
		Status:     enums.ProductStatusActive,
	})
	require.NoError(t, err)

	sold, err := repo.DecrementStock(ctx, piece.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, 0, sold.StockQty)
	assert.Equal(t, enums.ProductStatusDiscontinued, sold.Status)

	restored, err := repo.RestoreStock(ctx, piece.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, restored.StockQty)
	assert.Equal(t, enums.ProductStatusActive, restored.Status)
}
