package catalog

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/karatworks/aurumpos-backend/internal/audit"
	"github.com/karatworks/aurumpos-backend/pkg/db/models"
	"github.com/karatworks/aurumpos-backend/pkg/enums"
	pkgerrors "github.com/karatworks/aurumpos-backend/pkg/errors"
	"github.com/karatworks/aurumpos-backend/pkg/pagination"
)

type stubCatalogRepo struct {
	products  map[uuid.UUID]*models.Product
	createErr error
	updateErr error
	list      func(ctx context.Context, storeID uuid.UUID, params pagination.Params, filters ListFilters) (*ProductList, error)
}

func newStubCatalogRepo() *stubCatalogRepo {
	return &stubCatalogRepo{products: make(map[uuid.UUID]*models.Product)}
}

func (s *stubCatalogRepo) WithTx(tx *gorm.DB) Repository {
	return s
}

func (s *stubCatalogRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	if product, ok := s.products[id]; ok {
		clone := *product
		return &clone, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubCatalogRepo) FindBySKU(ctx context.Context, storeID uuid.UUID, sku string) (*models.Product, error) {
	for _, product := range s.products {
		if product.StoreID == storeID && product.SKU == sku {
			clone := *product
			return &clone, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubCatalogRepo) FindByBarcode(ctx context.Context, storeID uuid.UUID, barcode string) (*models.Product, error) {
	for _, product := range s.products {
		if product.StoreID == storeID && product.Barcode != nil && *product.Barcode == barcode {
			clone := *product
			return &clone, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubCatalogRepo) Create(ctx context.Context, product *models.Product) (*models.Product, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}
	clone := *product
	s.products[product.ID] = &clone
	return product, nil
}

func (s *stubCatalogRepo) Update(ctx context.Context, product *models.Product) (*models.Product, error) {
	if s.updateErr != nil {
		return nil, s.updateErr
	}
	clone := *product
	s.products[product.ID] = &clone
	return product, nil
}

func (s *stubCatalogRepo) List(ctx context.Context, storeID uuid.UUID, params pagination.Params, filters ListFilters) (*ProductList, error) {
	if s.list != nil {
		return s.list(ctx, storeID, params, filters)
	}
	return &ProductList{Products: []ProductDTO{}}, nil
}

func (s *stubCatalogRepo) DecrementStock(ctx context.Context, productID uuid.UUID, qty int) (*models.Product, error) {
	return nil, nil
}

func (s *stubCatalogRepo) RestoreStock(ctx context.Context, productID uuid.UUID, qty int) (*models.Product, error) {
	return nil, nil
}

type recordingAuditRepo struct {
	events []*models.AuditEvent
}

func (r *recordingAuditRepo) WithTx(tx *gorm.DB) audit.Repository {
	return r
}

func (r *recordingAuditRepo) Insert(ctx context.Context, event *models.AuditEvent) (*models.AuditEvent, error) {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	r.events = append(r.events, event)
	return event, nil
}

func (r *recordingAuditRepo) List(ctx context.Context, storeID uuid.UUID, params pagination.Params, filters audit.ListFilters) (*audit.EventList, error) {
	return &audit.EventList{}, nil
}

func (r *recordingAuditRepo) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	return 0, nil
}

type stubTxRunner struct{}

func (stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type catalogFixture struct {
	svc    Service
	repo   *stubCatalogRepo
	audits *recordingAuditRepo
	store  uuid.UUID
	actor  audit.Actor
}

func newCatalogFixture(t *testing.T) *catalogFixture {
	t.Helper()
	repo := newStubCatalogRepo()
	audits := &recordingAuditRepo{}
	svc, err := NewService(stubTxRunner{}, repo, audits)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return &catalogFixture{
		svc:    svc,
		repo:   repo,
		audits: audits,
		store:  uuid.New(),
		actor:  audit.Actor{ID: uuid.New(), Role: enums.UserRoleManager},
	}
}

func expectCode(t *testing.T, err error, code pkgerrors.Code) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error with code %s, got nil", code)
	}
	typed := pkgerrors.As(err)
	if typed == nil {
		t.Fatalf("expected coded error, got %v", err)
	}
	if typed.Code() != code {
		t.Fatalf("expected code %s, got %s (%v)", code, typed.Code(), err)
	}
}

func validCreateInput() CreateProductInput {
	barcode := "0123456789012"
	metal := enums.MetalGold
	purity := "18K"
	return CreateProductInput{
		SKU:        "RING-001",
		Barcode:    &barcode,
		Name:       "Solitaire Ring",
		Category:   enums.ProductCategoryRing,
		Metal:      &metal,
		Purity:     &purity,
		Gemstones:  []string{"diamond"},
		PriceCents: 250000,
		StockQty:   1,
		OneOfAKind: true,
	}
}

func TestCreateProduct(t *testing.T) {
	t.Parallel()

	fx := newCatalogFixture(t)
	ctx := context.Background()

	dto, err := fx.svc.Create(ctx, fx.actor, fx.store, validCreateInput())
	if err != nil {
		t.Fatalf("create product: %v", err)
	}
	if dto.ID == uuid.Nil {
		t.Fatal("expected product id to be generated")
	}
	if dto.Status != enums.ProductStatusActive {
		t.Fatalf("expected new product to be active, got %s", dto.Status)
	}
	if dto.SKU != "RING-001" || dto.PriceCents != 250000 {
		t.Fatalf("unexpected dto: %+v", dto)
	}
	if dto.Barcode == nil || *dto.Barcode != "0123456789012" {
		t.Fatalf("expected barcode to survive, got %v", dto.Barcode)
	}

	if len(fx.audits.events) != 1 {
		t.Fatalf("expected 1 audit event, got %d", len(fx.audits.events))
	}
	event := fx.audits.events[0]
	if event.Action != enums.AuditProductCreated {
		t.Fatalf("expected product_created audit action, got %s", event.Action)
	}
	if event.EntityType != "product" || event.EntityID != dto.ID.String() {
		t.Fatalf("unexpected audit entity: %s %s", event.EntityType, event.EntityID)
	}
	if event.ActorID == nil || *event.ActorID != fx.actor.ID {
		t.Fatalf("expected actor on audit row, got %v", event.ActorID)
	}
}

func TestCreateProductTrimsAndNormalizes(t *testing.T) {
	t.Parallel()

	fx := newCatalogFixture(t)
	input := validCreateInput()
	input.SKU = "  RING-002  "
	input.Name = " Gold Band "
	blank := "   "
	input.Barcode = &blank
	input.OneOfAKind = false
	input.StockQty = 5

	dto, err := fx.svc.Create(context.Background(), fx.actor, fx.store, input)
	if err != nil {
		t.Fatalf("create product: %v", err)
	}
	if dto.SKU != "RING-002" || dto.Name != "Gold Band" {
		t.Fatalf("expected trimmed fields, got %q %q", dto.SKU, dto.Name)
	}
	if dto.Barcode != nil {
		t.Fatalf("expected blank barcode to normalize to nil, got %v", dto.Barcode)
	}
}

func TestCreateProductValidation(t *testing.T) {
	t.Parallel()

	fx := newCatalogFixture(t)
	ctx := context.Background()

	cases := []struct {
		name   string
		mutate func(input *CreateProductInput)
	}{
		{name: "blank sku", mutate: func(input *CreateProductInput) { input.SKU = "  " }},
		{name: "blank name", mutate: func(input *CreateProductInput) { input.Name = "" }},
		{name: "bad category", mutate: func(input *CreateProductInput) { input.Category = "furniture" }},
		{name: "bad metal", mutate: func(input *CreateProductInput) {
			metal := enums.Metal("copper")
			input.Metal = &metal
		}},
		{name: "negative price", mutate: func(input *CreateProductInput) { input.PriceCents = -1 }},
		{name: "negative stock", mutate: func(input *CreateProductInput) { input.StockQty = -1 }},
		{name: "one of a kind with stock 2", mutate: func(input *CreateProductInput) {
			input.OneOfAKind = true
			input.StockQty = 2
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			input := validCreateInput()
			tc.mutate(&input)
			_, err := fx.svc.Create(ctx, fx.actor, fx.store, input)
			expectCode(t, err, pkgerrors.CodeValidation)
		})
	}

	if len(fx.audits.events) != 0 {
		t.Fatalf("expected no audit events for rejected creates, got %d", len(fx.audits.events))
	}
}

func TestCreateProductDuplicateSKU(t *testing.T) {
	t.Parallel()

	fx := newCatalogFixture(t)
	fx.repo.createErr = errors.New(`duplicate key value violates unique constraint "ux_products_store_sku"`)

	_, err := fx.svc.Create(context.Background(), fx.actor, fx.store, validCreateInput())
	expectCode(t, err, pkgerrors.CodeConflict)
}

func TestCreateProductDuplicateBarcode(t *testing.T) {
	t.Parallel()

	fx := newCatalogFixture(t)
	fx.repo.createErr = errors.New(`duplicate key value violates unique constraint "ux_products_store_barcode"`)

	_, err := fx.svc.Create(context.Background(), fx.actor, fx.store, validCreateInput())
	expectCode(t, err, pkgerrors.CodeConflict)
}

func TestUpdateProduct(t *testing.T) {
	t.Parallel()

	fx := newCatalogFixture(t)
	ctx := context.Background()

	created, err := fx.svc.Create(ctx, fx.actor, fx.store, validCreateInput())
	if err != nil {
		t.Fatalf("create product: %v", err)
	}

	newName := "  Solitaire Ring 2ct  "
	newPrice := int64(300000)
	dto, err := fx.svc.Update(ctx, fx.actor, fx.store, created.ID, UpdateProductInput{
		Name:       &newName,
		PriceCents: &newPrice,
	})
	if err != nil {
		t.Fatalf("update product: %v", err)
	}
	if dto.Name != "Solitaire Ring 2ct" || dto.PriceCents != 300000 {
		t.Fatalf("unexpected dto after update: %+v", dto)
	}

	if len(fx.audits.events) != 2 {
		t.Fatalf("expected 2 audit events, got %d", len(fx.audits.events))
	}
	if fx.audits.events[1].Action != enums.AuditProductUpdated {
		t.Fatalf("expected product_updated, got %s", fx.audits.events[1].Action)
	}
}

func TestUpdateProductDiscontinueAudit(t *testing.T) {
	t.Parallel()

	fx := newCatalogFixture(t)
	ctx := context.Background()

	created, err := fx.svc.Create(ctx, fx.actor, fx.store, validCreateInput())
	if err != nil {
		t.Fatalf("create product: %v", err)
	}

	discontinued := enums.ProductStatusDiscontinued
	dto, err := fx.svc.Update(ctx, fx.actor, fx.store, created.ID, UpdateProductInput{Status: &discontinued})
	if err != nil {
		t.Fatalf("update product: %v", err)
	}
	if dto.Status != enums.ProductStatusDiscontinued {
		t.Fatalf("expected discontinued status, got %s", dto.Status)
	}
	last := fx.audits.events[len(fx.audits.events)-1]
	if last.Action != enums.AuditProductDiscontinued {
		t.Fatalf("expected product_discontinued audit action, got %s", last.Action)
	}
}

func TestUpdateProductScope(t *testing.T) {
	t.Parallel()

	fx := newCatalogFixture(t)
	ctx := context.Background()

	created, err := fx.svc.Create(ctx, fx.actor, fx.store, validCreateInput())
	if err != nil {
		t.Fatalf("create product: %v", err)
	}

	name := "New Name"
	_, err = fx.svc.Update(ctx, fx.actor, fx.store, uuid.New(), UpdateProductInput{Name: &name})
	expectCode(t, err, pkgerrors.CodeNotFound)

	_, err = fx.svc.Update(ctx, fx.actor, uuid.New(), created.ID, UpdateProductInput{Name: &name})
	expectCode(t, err, pkgerrors.CodeForbidden)
}

func TestUpdateProductOneOfAKindStockCap(t *testing.T) {
	t.Parallel()

	fx := newCatalogFixture(t)
	ctx := context.Background()

	created, err := fx.svc.Create(ctx, fx.actor, fx.store, validCreateInput())
	if err != nil {
		t.Fatalf("create product: %v", err)
	}

	tooMany := 3
	_, err = fx.svc.Update(ctx, fx.actor, fx.store, created.ID, UpdateProductInput{StockQty: &tooMany})
	expectCode(t, err, pkgerrors.CodeValidation)
}

func TestGetByBarcode(t *testing.T) {
	t.Parallel()

	fx := newCatalogFixture(t)
	ctx := context.Background()

	created, err := fx.svc.Create(ctx, fx.actor, fx.store, validCreateInput())
	if err != nil {
		t.Fatalf("create product: %v", err)
	}

	dto, err := fx.svc.GetByBarcode(ctx, fx.store, "0123456789012")
	if err != nil {
		t.Fatalf("get by barcode: %v", err)
	}
	if dto.ID != created.ID {
		t.Fatalf("expected product %s, got %s", created.ID, dto.ID)
	}

	_, err = fx.svc.GetByBarcode(ctx, fx.store, "9999999999999")
	expectCode(t, err, pkgerrors.CodeNotFound)

	_, err = fx.svc.GetByBarcode(ctx, fx.store, "   ")
	expectCode(t, err, pkgerrors.CodeValidation)
}

func TestGetBySKU(t *testing.T) {
	t.Parallel()

	fx := newCatalogFixture(t)
	ctx := context.Background()

	created, err := fx.svc.Create(ctx, fx.actor, fx.store, validCreateInput())
	if err != nil {
		t.Fatalf("create product: %v", err)
	}

	dto, err := fx.svc.GetBySKU(ctx, fx.store, "RING-001")
	if err != nil {
		t.Fatalf("get by sku: %v", err)
	}
	if dto.ID != created.ID {
		t.Fatalf("expected product %s, got %s", created.ID, dto.ID)
	}

	_, err = fx.svc.GetBySKU(ctx, uuid.New(), "RING-001")
	expectCode(t, err, pkgerrors.CodeNotFound)
}

func TestProductForSaleScopedToStore(t *testing.T) {
	t.Parallel()

	fx := newCatalogFixture(t)
	ctx := context.Background()

	created, err := fx.svc.Create(ctx, fx.actor, fx.store, validCreateInput())
	if err != nil {
		t.Fatalf("create product: %v", err)
	}

	product, err := fx.svc.ProductForSale(ctx, fx.store, created.ID)
	if err != nil {
		t.Fatalf("product for sale: %v", err)
	}
	if product.ID != created.ID {
		t.Fatalf("expected product %s, got %s", created.ID, product.ID)
	}

	_, err = fx.svc.ProductForSale(ctx, uuid.New(), created.ID)
	expectCode(t, err, pkgerrors.CodeNotFound)

	_, err = fx.svc.ProductForSale(ctx, fx.store, uuid.New())
	expectCode(t, err, pkgerrors.CodeNotFound)
}

func TestSearchValidatesFilters(t *testing.T) {
	t.Parallel()

	fx := newCatalogFixture(t)
	ctx := context.Background()

	badCategory := enums.ProductCategory("furniture")
	_, err := fx.svc.Search(ctx, fx.store, pagination.Params{}, ListFilters{Category: &badCategory})
	expectCode(t, err, pkgerrors.CodeValidation)

	min := int64(5000)
	max := int64(1000)
	_, err = fx.svc.Search(ctx, fx.store, pagination.Params{}, ListFilters{PriceMinCents: &min, PriceMaxCents: &max})
	expectCode(t, err, pkgerrors.CodeValidation)

	_, err = fx.svc.Search(ctx, uuid.Nil, pagination.Params{}, ListFilters{})
	expectCode(t, err, pkgerrors.CodeValidation)
}

func TestSearchPassesFiltersThrough(t *testing.T) {
	t.Parallel()

	fx := newCatalogFixture(t)
	metal := enums.MetalGold

	var gotFilters ListFilters
	fx.repo.list = func(ctx context.Context, storeID uuid.UUID, params pagination.Params, filters ListFilters) (*ProductList, error) {
		gotFilters = filters
		return &ProductList{Products: []ProductDTO{{ID: uuid.New()}}, NextCursor: "next"}, nil
	}

	list, err := fx.svc.Search(context.Background(), fx.store, pagination.Params{Limit: 10}, ListFilters{
		Query: "ring",
		Metal: &metal,
	})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if gotFilters.Query != "ring" || gotFilters.Metal == nil || *gotFilters.Metal != metal {
		t.Fatalf("expected filters to pass through, got %+v", gotFilters)
	}
	if len(list.Products) != 1 || list.NextCursor != "next" {
		t.Fatalf("unexpected list result: %+v", list)
	}
}
