package routes

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"

	"github.com/karatworks/aurumpos-backend/internal/audit"
	authsvc "github.com/karatworks/aurumpos-backend/internal/auth"
	"github.com/karatworks/aurumpos-backend/internal/catalog"
	"github.com/karatworks/aurumpos-backend/internal/customers"
	"github.com/karatworks/aurumpos-backend/internal/ledger"
	"github.com/karatworks/aurumpos-backend/internal/register"
	"github.com/karatworks/aurumpos-backend/internal/sales"
	"github.com/karatworks/aurumpos-backend/internal/stores"
	"github.com/karatworks/aurumpos-backend/internal/users"
	pkgAuth "github.com/karatworks/aurumpos-backend/pkg/auth"
	"github.com/karatworks/aurumpos-backend/pkg/auth/session"
	"github.com/karatworks/aurumpos-backend/pkg/config"
	"github.com/karatworks/aurumpos-backend/pkg/db/models"
	"github.com/karatworks/aurumpos-backend/pkg/enums"
	"github.com/karatworks/aurumpos-backend/pkg/logger"
	"github.com/karatworks/aurumpos-backend/pkg/metrics"
	"github.com/karatworks/aurumpos-backend/pkg/pagination"
	"github.com/karatworks/aurumpos-backend/pkg/redis"
	"github.com/karatworks/aurumpos-backend/pkg/types"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error {
	return nil
}

type stubSessionChecker struct{}

func (stubSessionChecker) HasSession(ctx context.Context, accessID string) (bool, error) {
	return true, nil
}

type stubAuthService struct{}

func (stubAuthService) Login(ctx context.Context, req authsvc.LoginRequest) (*authsvc.LoginResponse, error) {
	return nil, fmt.Errorf("not implemented")
}

func (stubAuthService) Refresh(ctx context.Context, bearerToken, refreshToken string) (*authsvc.TokenPair, error) {
	return nil, fmt.Errorf("not implemented")
}

func (stubAuthService) Logout(ctx context.Context, bearerToken string) error {
	return nil
}

type stubCatalogService struct{}

func (stubCatalogService) Get(ctx context.Context, storeID, productID uuid.UUID) (*catalog.ProductDTO, error) {
	return &catalog.ProductDTO{}, nil
}

func (stubCatalogService) GetBySKU(ctx context.Context, storeID uuid.UUID, sku string) (*catalog.ProductDTO, error) {
	return &catalog.ProductDTO{}, nil
}

func (stubCatalogService) GetByBarcode(ctx context.Context, storeID uuid.UUID, barcode string) (*catalog.ProductDTO, error) {
	return &catalog.ProductDTO{}, nil
}

func (stubCatalogService) Search(ctx context.Context, storeID uuid.UUID, params pagination.Params, filters catalog.ListFilters) (*catalog.ProductList, error) {
	return &catalog.ProductList{}, nil
}

func (stubCatalogService) Create(ctx context.Context, actor audit.Actor, storeID uuid.UUID, input catalog.CreateProductInput) (*catalog.ProductDTO, error) {
	return &catalog.ProductDTO{}, nil
}

func (stubCatalogService) Update(ctx context.Context, actor audit.Actor, storeID, productID uuid.UUID, input catalog.UpdateProductInput) (*catalog.ProductDTO, error) {
	return &catalog.ProductDTO{}, nil
}

func (stubCatalogService) ProductForSale(ctx context.Context, storeID, productID uuid.UUID) (*models.Product, error) {
	return &models.Product{}, nil
}

type stubCustomerService struct{}

func (stubCustomerService) Get(ctx context.Context, storeID, customerID uuid.UUID) (*customers.CustomerDTO, error) {
	return &customers.CustomerDTO{}, nil
}

func (stubCustomerService) Search(ctx context.Context, storeID uuid.UUID, params pagination.Params, query string) (*customers.CustomerList, error) {
	return &customers.CustomerList{}, nil
}

func (stubCustomerService) Create(ctx context.Context, actor audit.Actor, storeID uuid.UUID, input customers.CreateCustomerInput) (*customers.CustomerDTO, error) {
	return &customers.CustomerDTO{}, nil
}

func (stubCustomerService) Update(ctx context.Context, actor audit.Actor, storeID, customerID uuid.UUID, input customers.UpdateCustomerInput) (*customers.CustomerDTO, error) {
	return &customers.CustomerDTO{}, nil
}

func (stubCustomerService) CustomerExists(ctx context.Context, storeID, customerID uuid.UUID) (bool, error) {
	return true, nil
}

type stubRegisterService struct{}

func (stubRegisterService) Session(ctx context.Context, storeID uuid.UUID, registerID string) (*register.SessionDTO, error) {
	return &register.SessionDTO{RegisterID: registerID}, nil
}

func (stubRegisterService) AddItem(ctx context.Context, storeID uuid.UUID, registerID string, params register.AddItemParams) (*register.SessionDTO, error) {
	return &register.SessionDTO{}, nil
}

func (stubRegisterService) UpdateItemQuantity(ctx context.Context, storeID uuid.UUID, registerID string, lineID uuid.UUID, quantity int64) (*register.SessionDTO, error) {
	return &register.SessionDTO{}, nil
}

func (stubRegisterService) SetItemDiscount(ctx context.Context, storeID uuid.UUID, registerID string, lineID uuid.UUID, discount *types.Discount) (*register.SessionDTO, error) {
	return &register.SessionDTO{}, nil
}

func (stubRegisterService) RemoveItem(ctx context.Context, storeID uuid.UUID, registerID string, lineID uuid.UUID) (*register.SessionDTO, error) {
	return &register.SessionDTO{}, nil
}

func (stubRegisterService) SetCustomer(ctx context.Context, storeID uuid.UUID, registerID string, customerID *uuid.UUID) (*register.SessionDTO, error) {
	return &register.SessionDTO{}, nil
}

func (stubRegisterService) SetOrderDiscount(ctx context.Context, storeID uuid.UUID, registerID string, discount *types.Discount) (*register.SessionDTO, error) {
	return &register.SessionDTO{}, nil
}

func (stubRegisterService) SetNotes(ctx context.Context, storeID uuid.UUID, registerID string, notes string) (*register.SessionDTO, error) {
	return &register.SessionDTO{}, nil
}

func (stubRegisterService) Clear(ctx context.Context, storeID uuid.UUID, registerID string) (*register.SessionDTO, error) {
	return &register.SessionDTO{}, nil
}

func (stubRegisterService) Hold(ctx context.Context, storeID uuid.UUID, registerID string) (*register.SessionDTO, error) {
	return &register.SessionDTO{}, nil
}

func (stubRegisterService) HeldOrders(ctx context.Context, storeID uuid.UUID, registerID string) ([]register.HeldOrderSummary, error) {
	return nil, nil
}

func (stubRegisterService) Restore(ctx context.Context, storeID uuid.UUID, registerID string, heldID uuid.UUID) (*register.SessionDTO, error) {
	return &register.SessionDTO{}, nil
}

func (stubRegisterService) DeleteHeldOrder(ctx context.Context, storeID uuid.UUID, registerID string, heldID uuid.UUID) (*register.SessionDTO, error) {
	return &register.SessionDTO{}, nil
}

type stubSalesService struct{}

func (stubSalesService) Create(ctx context.Context, actor audit.Actor, storeID uuid.UUID, input sales.CreateSaleInput) (*sales.SaleDTO, error) {
	return &sales.SaleDTO{}, nil
}

func (stubSalesService) Get(ctx context.Context, storeID, saleID uuid.UUID) (*sales.SaleDTO, error) {
	return &sales.SaleDTO{}, nil
}

func (stubSalesService) List(ctx context.Context, storeID uuid.UUID, params pagination.Params, filters sales.ListFilters) (*sales.SaleList, error) {
	return &sales.SaleList{}, nil
}

func (stubSalesService) Void(ctx context.Context, actor audit.Actor, storeID, saleID uuid.UUID, input sales.VoidSaleInput) (*sales.SaleDTO, error) {
	return &sales.SaleDTO{}, nil
}

func (stubSalesService) Receipt(ctx context.Context, storeID, saleID uuid.UUID) (*sales.ReceiptDTO, error) {
	return &sales.ReceiptDTO{}, nil
}

type stubLedgerService struct{}

func (stubLedgerService) Record(ctx context.Context, actor audit.Actor, storeID uuid.UUID, input ledger.RecordEntryInput) (*ledger.EntryDTO, error) {
	return &ledger.EntryDTO{}, nil
}

func (stubLedgerService) List(ctx context.Context, storeID uuid.UUID, params pagination.Params, filters ledger.ListFilters) (*ledger.EntryList, error) {
	return &ledger.EntryList{}, nil
}

type stubAuditService struct{}

func (stubAuditService) List(ctx context.Context, storeID uuid.UUID, params pagination.Params, filters audit.ListFilters) (*audit.EventList, error) {
	return &audit.EventList{}, nil
}

type stubStoreService struct{}

func (stubStoreService) Get(ctx context.Context, storeID uuid.UUID) (*stores.StoreDTO, error) {
	return &stores.StoreDTO{}, nil
}

func (stubStoreService) Update(ctx context.Context, actor audit.Actor, storeID uuid.UUID, input stores.UpdateStoreInput) (*stores.StoreDTO, error) {
	return &stores.StoreDTO{}, nil
}

func (stubStoreService) TaxRatePct(ctx context.Context, storeID uuid.UUID) (decimal.Decimal, error) {
	return decimal.Zero, nil
}

func (stubStoreService) Settings(ctx context.Context, storeID uuid.UUID) (*stores.RegisterSettings, error) {
	return &stores.RegisterSettings{}, nil
}

type stubUserService struct{}

func (stubUserService) Get(ctx context.Context, userID uuid.UUID) (*users.UserDTO, error) {
	return &users.UserDTO{}, nil
}

func (stubUserService) List(ctx context.Context, params pagination.Params, filters users.ListFilters) (*users.UserList, error) {
	return &users.UserList{}, nil
}

func (stubUserService) Create(ctx context.Context, actor audit.Actor, storeID uuid.UUID, input users.CreateUserInput) (*users.UserDTO, error) {
	return &users.UserDTO{}, nil
}

func (stubUserService) Update(ctx context.Context, actor audit.Actor, storeID, userID uuid.UUID, input users.UpdateUserInput) (*users.UserDTO, error) {
	return &users.UserDTO{}, nil
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "test", Port: "0"},
		JWT: config.JWTConfig{
			Secret:                 "secret",
			Issuer:                 "issuer",
			ExpirationMinutes:      60,
			RefreshTokenTTLMinutes: 120,
		},
	}
}

func newTestRouter(cfg *config.Config) http.Handler {
	logg := logger.New(logger.Options{ServiceName: "test-routing", Level: logger.ParseLevel("debug"), Output: io.Discard})
	promReg := prometheus.NewRegistry()
	return NewRouter(
		cfg,
		logg,
		stubPinger{},
		(*redis.Client)(nil),
		promReg,
		metrics.NewHTTPMetrics(promReg),
		stubSessionChecker{},
		stubAuthService{},
		stubCatalogService{},
		stubCustomerService{},
		stubRegisterService{},
		stubSalesService{},
		stubLedgerService{},
		stubAuditService{},
		stubStoreService{},
		stubUserService{},
	)
}

func buildToken(t *testing.T, cfg *config.Config, role enums.UserRole) string {
	t.Helper()
	storeID := uuid.New()
	token, err := pkgAuth.MintAccessToken(cfg.JWT, time.Now(), pkgAuth.AccessTokenPayload{
		UserID:  uuid.New(),
		StoreID: &storeID,
		Role:    role,
		JTI:     session.NewAccessID(),
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func TestPrivateGroupRejectsMissingJWT(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/api/v1/products", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token got %d", resp.Code)
	}
}

func TestMetricsEndpointMounted(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for metrics got %d", resp.Code)
	}
}

func TestRegisterSessionReachableByCashier(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/registers/front-counter/session", nil)
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.UserRoleCashier))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for session fetch got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestAuditRequiresAuditRead(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)

	cashier := httptest.NewRequest(http.MethodGet, "/api/v1/audit", nil)
	cashier.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.UserRoleCashier))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, cashier)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for cashier audit read got %d", resp.Code)
	}

	manager := httptest.NewRequest(http.MethodGet, "/api/v1/audit", nil)
	manager.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.UserRoleManager))
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, manager)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for manager audit read got %d", resp.Code)
	}
}

func TestProductWriteRequiresCatalogWrite(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/products", strings.NewReader(`{}`))
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.UserRoleCashier))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for cashier product create got %d", resp.Code)
	}
}

func TestStoreUpdateRequiresAdmin(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)
	body := `{"name": "Golden Anvil Jewelers"}`

	manager := httptest.NewRequest(http.MethodPatch, "/api/v1/store", strings.NewReader(body))
	manager.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.UserRoleManager))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, manager)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for manager store update got %d", resp.Code)
	}

	admin := httptest.NewRequest(http.MethodPatch, "/api/v1/store", strings.NewReader(body))
	admin.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.UserRoleAdmin))
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, admin)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for admin store update got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestUsersTreeRequiresUserManage(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)

	manager := httptest.NewRequest(http.MethodGet, "/api/v1/users", nil)
	manager.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.UserRoleManager))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, manager)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for manager user list got %d", resp.Code)
	}

	admin := httptest.NewRequest(http.MethodGet, "/api/v1/users", nil)
	admin.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.UserRoleAdmin))
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, admin)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for admin user list got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestSaleCaptureRequiresIdempotencyKey(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/sales", strings.NewReader(`{}`))
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.UserRoleManager))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without idempotency key got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestOrderDiscountRequiresManager(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)
	body := `{"type": "percentage", "value": "10"}`

	cashier := httptest.NewRequest(http.MethodPut, "/api/v1/registers/front-counter/session/discount", strings.NewReader(body))
	cashier.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.UserRoleCashier))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, cashier)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for cashier order discount got %d", resp.Code)
	}

	manager := httptest.NewRequest(http.MethodPut, "/api/v1/registers/front-counter/session/discount", strings.NewReader(body))
	manager.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.UserRoleManager))
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, manager)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for manager order discount got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestHeldOrderDeleteRequiresManager(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)
	target := "/api/v1/registers/front-counter/session/held/" + uuid.NewString()

	cashier := httptest.NewRequest(http.MethodDelete, target, nil)
	cashier.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.UserRoleCashier))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, cashier)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for cashier held delete got %d", resp.Code)
	}

	manager := httptest.NewRequest(http.MethodDelete, target, nil)
	manager.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.UserRoleManager))
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, manager)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for manager held delete got %d: %s", resp.Code, resp.Body.String())
	}
}
