package routes

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/jordanhale/storefront-backend/api/middleware"
	authsvc "github.com/jordanhale/storefront-backend/internal/auth"
	cartsvc "github.com/jordanhale/storefront-backend/internal/cart"
	catalogsvc "github.com/jordanhale/storefront-backend/internal/catalog"
	checkoutsvc "github.com/jordanhale/storefront-backend/internal/checkout"
	ordersvc "github.com/jordanhale/storefront-backend/internal/orders"
	pkgauth "github.com/jordanhale/storefront-backend/pkg/auth"
	"github.com/jordanhale/storefront-backend/pkg/config"
	"github.com/jordanhale/storefront-backend/pkg/enums"
	"github.com/jordanhale/storefront-backend/pkg/logger"
	"github.com/jordanhale/storefront-backend/pkg/pagination"
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

func (stubAuthService) Register(ctx context.Context, input authsvc.RegisterInput) (*authsvc.UserDTO, error) {
	return &authsvc.UserDTO{ID: uuid.New()}, nil
}

func (stubAuthService) Login(ctx context.Context, input authsvc.LoginInput) (*authsvc.LoginResult, error) {
	return &authsvc.LoginResult{Token: "token"}, nil
}

func (stubAuthService) Logout(ctx context.Context, accessID string) error {
	return nil
}

type stubCartService struct{}

func (stubCartService) GetCart(ctx context.Context, ownerKey string) (*cartsvc.CartDTO, error) {
	return &cartsvc.CartDTO{Items: []cartsvc.ItemDTO{}}, nil
}

func (stubCartService) AddItem(ctx context.Context, ownerKey string, productID uuid.UUID, quantity int) (*cartsvc.CartDTO, error) {
	return &cartsvc.CartDTO{}, nil
}

func (stubCartService) UpdateItemQuantity(ctx context.Context, ownerKey string, productID uuid.UUID, quantity int) (*cartsvc.CartDTO, error) {
	return &cartsvc.CartDTO{}, nil
}

func (stubCartService) RemoveItem(ctx context.Context, ownerKey string, productID uuid.UUID) (*cartsvc.CartDTO, error) {
	return &cartsvc.CartDTO{}, nil
}

func (stubCartService) ClearCart(ctx context.Context, ownerKey string) error {
	return nil
}

func (stubCartService) MergeOnLogin(ctx context.Context, sessionKey, userKey string) error {
	return nil
}

type stubCatalogService struct{}

func (stubCatalogService) GetProduct(ctx context.Context, id uuid.UUID) (*catalogsvc.ProductDTO, error) {
	return &catalogsvc.ProductDTO{ID: id}, nil
}

func (stubCatalogService) ListProducts(ctx context.Context, input catalogsvc.ListProductsInput) (*catalogsvc.ProductListResult, error) {
	return &catalogsvc.ProductListResult{Items: []catalogsvc.ProductDTO{}}, nil
}

func (stubCatalogService) CreateProduct(ctx context.Context, input catalogsvc.CreateProductInput) (*catalogsvc.ProductDTO, error) {
	return &catalogsvc.ProductDTO{ID: uuid.New()}, nil
}

func (stubCatalogService) UpdateProduct(ctx context.Context, id uuid.UUID, input catalogsvc.UpdateProductInput) (*catalogsvc.ProductDTO, error) {
	return &catalogsvc.ProductDTO{ID: id}, nil
}

func (stubCatalogService) AdjustStock(ctx context.Context, id uuid.UUID, delta int) (*catalogsvc.ProductDTO, error) {
	return &catalogsvc.ProductDTO{ID: id}, nil
}

type stubCheckoutService struct{}

func (stubCheckoutService) Execute(ctx context.Context, input checkoutsvc.Input) (*ordersvc.OrderDTO, error) {
	return &ordersvc.OrderDTO{ID: uuid.New()}, nil
}

type stubOrdersService struct{}

func (stubOrdersService) GetOrder(ctx context.Context, id uuid.UUID) (*ordersvc.OrderDTO, error) {
	return &ordersvc.OrderDTO{ID: id}, nil
}

func (stubOrdersService) ListUserOrders(ctx context.Context, userID uuid.UUID, params pagination.Params) (*ordersvc.OrderListResult, error) {
	return &ordersvc.OrderListResult{Items: []ordersvc.OrderDTO{}}, nil
}

func (stubOrdersService) UpdateStatus(ctx context.Context, id uuid.UUID, status enums.OrderStatus) (*ordersvc.OrderDTO, error) {
	return &ordersvc.OrderDTO{ID: id}, nil
}

func (stubOrdersService) UpdatePaymentStatus(ctx context.Context, id uuid.UUID, status enums.PaymentStatus) (*ordersvc.OrderDTO, error) {
	return &ordersvc.OrderDTO{ID: id}, nil
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "test", Port: "0"},
		JWT: config.JWTConfig{
			Secret:            "secret",
			Issuer:            "issuer",
			ExpirationMinutes: 60,
			SessionTTLMinutes: 120,
		},
	}
}

func newTestRouter(cfg *config.Config) http.Handler {
	logg := logger.New(logger.Options{ServiceName: "test-routing", Level: logger.ParseLevel("debug"), Output: io.Discard})
	return NewRouter(Deps{
		Config:      cfg,
		Logger:      logg,
		DB:          stubPinger{},
		Sessions:    stubSessionChecker{},
		Metrics:     http.NotFoundHandler(),
		AuthService: stubAuthService{},
		CartService: stubCartService{},
		Catalog:     stubCatalogService{},
		Checkout:    stubCheckoutService{},
		Orders:      stubOrdersService{},
	})
}

func buildToken(t *testing.T, cfg *config.Config) string {
	t.Helper()
	token, err := pkgauth.MintAccessToken(cfg.JWT, time.Now(), pkgauth.AccessTokenPayload{
		UserID: uuid.New(),
		Email:  "shopper@example.com",
		JTI:    uuid.NewString(),
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func TestPublicProductRoutes(t *testing.T) {
	router := newTestRouter(testConfig())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/products", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for product list got %d", resp.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/products/"+uuid.NewString(), nil)
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for product detail got %d", resp.Code)
	}
}

func TestGuestCartMintsSessionCookie(t *testing.T) {
	router := newTestRouter(testConfig())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for guest cart got %d", resp.Code)
	}

	found := false
	for _, cookie := range resp.Result().Cookies() {
		if cookie.Name == middleware.CartCookieName && cookie.Value != "" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected %s cookie on first guest cart request", middleware.CartCookieName)
	}
}

func TestOrdersRequireAuth(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token got %d", resp.Code)
	}

	authed := httptest.NewRequest(http.MethodGet, "/api/v1/orders", nil)
	authed.Header.Set("Authorization", "Bearer "+buildToken(t, cfg))
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, authed)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 with token got %d", resp.Code)
	}
}

func TestAdminRoutesRequireAuth(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)

	req := httptest.NewRequest(http.MethodPatch, "/api/v1/admin/orders/"+uuid.NewString()+"/status", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token got %d", resp.Code)
	}
}

func TestCheckoutRejectsInvalidToken(t *testing.T) {
	router := newTestRouter(testConfig())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout", nil)
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for invalid token got %d", resp.Code)
	}
}
