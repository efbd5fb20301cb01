package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/jordanhale/storefront-backend/api/middleware"
	cartsvc "github.com/jordanhale/storefront-backend/internal/cart"
)

type stubCartService struct {
	cart      *cartsvc.CartDTO
	err       error
	owner     string
	productID uuid.UUID
	quantity  int
	cleared   bool
	merged    [2]string
}

func (s *stubCartService) GetCart(ctx context.Context, ownerKey string) (*cartsvc.CartDTO, error) {
	s.owner = ownerKey
	return s.cart, s.err
}

func (s *stubCartService) AddItem(ctx context.Context, ownerKey string, productID uuid.UUID, quantity int) (*cartsvc.CartDTO, error) {
	s.owner = ownerKey
	s.productID = productID
	s.quantity = quantity
	return s.cart, s.err
}

func (s *stubCartService) UpdateItemQuantity(ctx context.Context, ownerKey string, productID uuid.UUID, quantity int) (*cartsvc.CartDTO, error) {
	s.owner = ownerKey
	s.productID = productID
	s.quantity = quantity
	return s.cart, s.err
}

func (s *stubCartService) RemoveItem(ctx context.Context, ownerKey string, productID uuid.UUID) (*cartsvc.CartDTO, error) {
	s.owner = ownerKey
	s.productID = productID
	return s.cart, s.err
}

func (s *stubCartService) ClearCart(ctx context.Context, ownerKey string) error {
	s.owner = ownerKey
	s.cleared = true
	return s.err
}

func (s *stubCartService) MergeOnLogin(ctx context.Context, sessionKey, userKey string) error {
	s.merged = [2]string{sessionKey, userKey}
	return s.err
}

func withOwner(req *http.Request, owner string) *http.Request {
	return req.WithContext(middleware.WithCartOwner(req.Context(), owner))
}

func TestGetCartRequiresOwner(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	rec := httptest.NewRecorder()
	GetCart(&stubCartService{}, testLogger()).ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 when owner context missing, got %d", rec.Code)
	}
}

func TestAddCartItem(t *testing.T) {
	t.Parallel()

	productID := uuid.New()
	stub := &stubCartService{cart: &cartsvc.CartDTO{Items: []cartsvc.ItemDTO{}}}

	body := `{"product_id": "` + productID.String() + `", "quantity": 3}`
	req := withOwner(httptest.NewRequest(http.MethodPost, "/api/v1/cart/items", strings.NewReader(body)), "sess:abc")

	rec := httptest.NewRecorder()
	AddCartItem(stub, testLogger()).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if stub.owner != "sess:abc" {
		t.Fatalf("expected owner sess:abc, got %s", stub.owner)
	}
	if stub.productID != productID || stub.quantity != 3 {
		t.Fatalf("expected product %s qty 3, got %s qty %d", productID, stub.productID, stub.quantity)
	}
}

func TestAddCartItemRejectsBadPayloads(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"missing quantity": `{"product_id": "` + uuid.NewString() + `"}`,
		"zero quantity":    `{"product_id": "` + uuid.NewString() + `", "quantity": 0}`,
		"bad uuid":         `{"product_id": "not-a-uuid", "quantity": 1}`,
		"unknown field":    `{"product_id": "` + uuid.NewString() + `", "quantity": 1, "price": "0.01"}`,
	}

	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			req := withOwner(httptest.NewRequest(http.MethodPost, "/api/v1/cart/items", strings.NewReader(body)), "sess:abc")
			rec := httptest.NewRecorder()
			AddCartItem(&stubCartService{}, testLogger()).ServeHTTP(rec, req)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", rec.Code)
			}
		})
	}
}

func TestUpdateCartItemZeroQuantityAllowed(t *testing.T) {
	t.Parallel()

	productID := uuid.New()
	stub := &stubCartService{cart: &cartsvc.CartDTO{}}

	req := withOwner(httptest.NewRequest(http.MethodPut, "/api/v1/cart/items/"+productID.String(), strings.NewReader(`{"quantity": 0}`)), "sess:abc")
	routeCtx := chi.NewRouteContext()
	routeCtx.URLParams.Add("productId", productID.String())
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))

	rec := httptest.NewRecorder()
	UpdateCartItem(stub, testLogger()).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if stub.quantity != 0 {
		t.Fatalf("expected quantity 0 forwarded, got %d", stub.quantity)
	}
}

func TestClearCart(t *testing.T) {
	t.Parallel()

	stub := &stubCartService{}
	req := withOwner(httptest.NewRequest(http.MethodDelete, "/api/v1/cart", nil), "sess:abc")

	rec := httptest.NewRecorder()
	ClearCart(stub, testLogger()).ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if !stub.cleared {
		t.Fatalf("expected ClearCart to be invoked")
	}
}
