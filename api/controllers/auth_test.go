package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/jordanhale/storefront-backend/api/middleware"
	authsvc "github.com/jordanhale/storefront-backend/internal/auth"
	pkgerrors "github.com/jordanhale/storefront-backend/pkg/errors"
)

type stubAuthService struct {
	user      *authsvc.UserDTO
	login     *authsvc.LoginResult
	err       error
	loggedOut string
}

func (s *stubAuthService) Register(ctx context.Context, input authsvc.RegisterInput) (*authsvc.UserDTO, error) {
	return s.user, s.err
}

func (s *stubAuthService) Login(ctx context.Context, input authsvc.LoginInput) (*authsvc.LoginResult, error) {
	return s.login, s.err
}

func (s *stubAuthService) Logout(ctx context.Context, accessID string) error {
	s.loggedOut = accessID
	return s.err
}

func TestRegisterCreated(t *testing.T) {
	t.Parallel()

	stub := &stubAuthService{user: &authsvc.UserDTO{ID: uuid.New(), Email: "ada@example.com", Name: "Ada"}}
	body := `{"email": "ada@example.com", "name": "Ada", "password": "correct horse"}`

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", strings.NewReader(body))
	rec := httptest.NewRecorder()
	Register(stub, testLogger()).ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestRegisterRejectsShortPassword(t *testing.T) {
	t.Parallel()

	body := `{"email": "ada@example.com", "name": "Ada", "password": "short"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", strings.NewReader(body))
	rec := httptest.NewRecorder()
	Register(&stubAuthService{}, testLogger()).ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestLoginMergesGuestCart(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	sessionID := uuid.NewString()
	auth := &stubAuthService{login: &authsvc.LoginResult{Token: "token", User: authsvc.UserDTO{ID: userID}}}
	carts := &stubCartService{}

	body := `{"email": "ada@example.com", "password": "correct horse"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(body))
	req.AddCookie(&http.Cookie{Name: middleware.CartCookieName, Value: sessionID})

	rec := httptest.NewRecorder()
	Login(auth, carts, testLogger()).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if carts.merged[0] != middleware.GuestOwnerKey(sessionID) {
		t.Fatalf("expected guest key merged, got %s", carts.merged[0])
	}
	if carts.merged[1] != userID.String() {
		t.Fatalf("expected user key merged, got %s", carts.merged[1])
	}
}

func TestLoginWithoutCookieSkipsMerge(t *testing.T) {
	t.Parallel()

	auth := &stubAuthService{login: &authsvc.LoginResult{Token: "token", User: authsvc.UserDTO{ID: uuid.New()}}}
	carts := &stubCartService{}

	body := `{"email": "ada@example.com", "password": "correct horse"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(body))

	rec := httptest.NewRecorder()
	Login(auth, carts, testLogger()).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if carts.merged[0] != "" || carts.merged[1] != "" {
		t.Fatalf("expected no merge without session cookie")
	}
}

func TestLoginMergeFailureDoesNotBlock(t *testing.T) {
	t.Parallel()

	auth := &stubAuthService{login: &authsvc.LoginResult{Token: "token", User: authsvc.UserDTO{ID: uuid.New()}}}
	carts := &stubCartService{err: pkgerrors.New(pkgerrors.CodeDependency, "redis down")}

	body := `{"email": "ada@example.com", "password": "correct horse"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(body))
	req.AddCookie(&http.Cookie{Name: middleware.CartCookieName, Value: uuid.NewString()})

	rec := httptest.NewRecorder()
	Login(auth, carts, testLogger()).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected login to succeed despite merge failure, got %d", rec.Code)
	}
}

func TestLogout(t *testing.T) {
	t.Parallel()

	t.Run("missing session context", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/logout", nil)
		rec := httptest.NewRecorder()
		Logout(&stubAuthService{}, testLogger()).ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
	})

	t.Run("revokes session", func(t *testing.T) {
		stub := &stubAuthService{}
		accessID := uuid.NewString()

		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/logout", nil)
		req = req.WithContext(middleware.WithAccessID(req.Context(), accessID))

		rec := httptest.NewRecorder()
		Logout(stub, testLogger()).ServeHTTP(rec, req)

		if rec.Code != http.StatusNoContent {
			t.Fatalf("expected 204, got %d", rec.Code)
		}
		if stub.loggedOut != accessID {
			t.Fatalf("expected access id %s revoked, got %s", accessID, stub.loggedOut)
		}
	})
}
