package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/danmelak/shopcart/internal/domain/user"
	"github.com/danmelak/shopcart/internal/http/handlers"
	"github.com/danmelak/shopcart/internal/http/middlewares"
	"github.com/gin-gonic/gin"
)

type fakeCartStore struct {
	addFn    func(ctx context.Context, userID string, itemID int) (user.Cart, error)
	removeFn func(ctx context.Context, userID string, itemID int) (user.Cart, error)
	getFn    func(ctx context.Context, userID string) (user.Cart, error)

	calls int
}

func (f *fakeCartStore) AddItem(ctx context.Context, userID string, itemID int) (user.Cart, error) {
	f.calls++
	if f.addFn != nil {
		return f.addFn(ctx, userID, itemID)
	}
	return user.Cart{}, nil
}

func (f *fakeCartStore) RemoveItem(ctx context.Context, userID string, itemID int) (user.Cart, error) {
	f.calls++
	if f.removeFn != nil {
		return f.removeFn(ctx, userID, itemID)
	}
	return user.Cart{}, nil
}

func (f *fakeCartStore) Get(ctx context.Context, userID string) (user.Cart, error) {
	f.calls++
	if f.getFn != nil {
		return f.getFn(ctx, userID)
	}
	return user.Cart{}, nil
}

// cartRouter mounts the handler behind the real auth middleware so the
// user identity travels the same path it does in production.
func cartRouter(store *fakeCartStore) (*gin.Engine, string) {
	manager := testManager()
	mw := middlewares.NewAuthMiddleware(manager, nil, "")
	h := handlers.NewCartHandler(store, 300)

	r := gin.New()

	protected := r.Group("/", mw.RequireAuth())
	protected.POST("/addtocart", h.AddToCart)
	protected.POST("/removefromcart", h.RemoveFromCart)
	protected.POST("/getcart", h.GetCart)

	token, _, _, _ := manager.Generate("u1")

	return r, token
}

func TestCartHandlerRequiresToken(t *testing.T) {
	store := &fakeCartStore{}
	r, _ := cartRouter(store)

	for _, path := range []string{"/addtocart", "/removefromcart", "/getcart"} {
		req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(`{"itemId":1}`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()

		r.ServeHTTP(w, req)

		if w.Code != http.StatusUnauthorized {
			t.Fatalf("%s: got status %d, want 401, body=%s", path, w.Code, w.Body.String())
		}

		var resp struct {
			Errors string `json:"errors"`
		}
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("%s: failed to unmarshal response: %v", path, err)
		}
		if resp.Errors != "Please authenticate with a valid token" {
			t.Fatalf("%s: got errors %q", path, resp.Errors)
		}
	}

	if store.calls != 0 {
		t.Fatalf("store should not be touched without a token, got %d calls", store.calls)
	}
}

func TestCartHandlerRejectsBadToken(t *testing.T) {
	store := &fakeCartStore{}
	r, _ := cartRouter(store)

	req := httptest.NewRequest(http.MethodPost, "/addtocart", bytes.NewBufferString(`{"itemId":1}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("auth-token", "garbage")
	w := httptest.NewRecorder()

	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("got status %d, want 401, body=%s", w.Code, w.Body.String())
	}

	var resp struct {
		Errors string `json:"errors"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if resp.Errors != "Invalid Token" {
		t.Fatalf("got errors %q, want %q", resp.Errors, "Invalid Token")
	}

	if store.calls != 0 {
		t.Fatalf("store should not be touched with a bad token, got %d calls", store.calls)
	}
}

func TestAddToCartHandler(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		storeSetup     func(*fakeCartStore)
		wantStatusCode int
		wantMessage    string
		wantCalls      int
	}{
		{
			name: "success",
			body: `{"itemId":5}`,
			storeSetup: func(f *fakeCartStore) {
				f.addFn = func(ctx context.Context, userID string, itemID int) (user.Cart, error) {
					if userID != "u1" || itemID != 5 {
						return nil, errors.New("wrong args")
					}
					return user.Cart{5: 1}, nil
				}
			},
			wantStatusCode: http.StatusOK,
			wantMessage:    "Added",
			wantCalls:      1,
		},
		{
			name:           "missing_item_id",
			body:           `{}`,
			wantStatusCode: http.StatusBadRequest,
			wantCalls:      0,
		},
		{
			name:           "negative_item_id",
			body:           `{"itemId":-1}`,
			wantStatusCode: http.StatusBadRequest,
			wantCalls:      0,
		},
		{
			name: "unknown_user",
			body: `{"itemId":5}`,
			storeSetup: func(f *fakeCartStore) {
				f.addFn = func(ctx context.Context, userID string, itemID int) (user.Cart, error) {
					return nil, user.ErrNotFound
				}
			},
			wantStatusCode: http.StatusNotFound,
			wantCalls:      1,
		},
		{
			name: "store_error",
			body: `{"itemId":5}`,
			storeSetup: func(f *fakeCartStore) {
				f.addFn = func(ctx context.Context, userID string, itemID int) (user.Cart, error) {
					return nil, errors.New("db error")
				}
			},
			wantStatusCode: http.StatusInternalServerError,
			wantCalls:      1,
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			store := &fakeCartStore{}

			if tt.storeSetup != nil {
				tt.storeSetup(store)
			}

			r, token := cartRouter(store)

			req := httptest.NewRequest(http.MethodPost, "/addtocart", bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")
			req.Header.Set("auth-token", token)
			w := httptest.NewRecorder()

			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}

			if store.calls != tt.wantCalls {
				t.Fatalf("got %d store calls, want %d", store.calls, tt.wantCalls)
			}

			if tt.wantMessage != "" {
				var resp struct {
					Message string `json:"message"`
				}
				if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
					t.Fatalf("failed to unmarshal response: %v", err)
				}
				if resp.Message != tt.wantMessage {
					t.Fatalf("got message %q, want %q", resp.Message, tt.wantMessage)
				}
			}
		})
	}
}

func TestRemoveFromCartHandler(t *testing.T) {
	store := &fakeCartStore{
		removeFn: func(ctx context.Context, userID string, itemID int) (user.Cart, error) {
			return user.Cart{}, nil
		},
	}

	r, token := cartRouter(store)

	req := httptest.NewRequest(http.MethodPost, "/removefromcart", bytes.NewBufferString(`{"itemId":5}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("auth-token", token)
	w := httptest.NewRecorder()

	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("got status %d, want 200, body=%s", w.Code, w.Body.String())
	}

	var resp struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if resp.Message != "Removed" {
		t.Fatalf("got message %q, want %q", resp.Message, "Removed")
	}
}

func TestGetCartHandlerDenseShape(t *testing.T) {
	store := &fakeCartStore{
		getFn: func(ctx context.Context, userID string) (user.Cart, error) {
			return user.Cart{5: 2, 7: 1}, nil
		},
	}

	r, token := cartRouter(store)

	req := httptest.NewRequest(http.MethodPost, "/getcart", nil)
	req.Header.Set("auth-token", token)
	w := httptest.NewRecorder()

	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("got status %d, want 200, body=%s", w.Code, w.Body.String())
	}

	var resp map[string]int
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}

	// dense render: every key in [0, 300), zeros included
	if len(resp) != 300 {
		t.Fatalf("got %d keys, want 300", len(resp))
	}
	if resp["5"] != 2 || resp["7"] != 1 || resp["0"] != 0 || resp["299"] != 0 {
		t.Fatalf("unexpected cart payload: %v", resp)
	}
}

func TestGetCartHandlerUnknownUser(t *testing.T) {
	store := &fakeCartStore{
		getFn: func(ctx context.Context, userID string) (user.Cart, error) {
			return nil, user.ErrNotFound
		},
	}

	r, token := cartRouter(store)

	req := httptest.NewRequest(http.MethodPost, "/getcart", nil)
	req.Header.Set("auth-token", token)
	w := httptest.NewRecorder()

	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("got status %d, want 404, body=%s", w.Code, w.Body.String())
	}

	var resp struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if resp.Error != "User not found" {
		t.Fatalf("got error %q, want %q", resp.Error, "User not found")
	}
}
