package middlewares_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/danmelak/shopcart/internal/auth"
	"github.com/danmelak/shopcart/internal/http/middlewares"
	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeRevokedSet struct {
	revoked map[string]bool
	err     error
}

func (f *fakeRevokedSet) IsRevoked(ctx context.Context, jti string) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	return f.revoked[jti], nil
}

func protectedRouter(mw *middlewares.AuthMiddleware) *gin.Engine {
	r := gin.New()

	r.GET("/me", mw.RequireAuth(), func(c *gin.Context) {
		id, _ := middlewares.UserIDFromContext(c)
		c.JSON(http.StatusOK, gin.H{"userId": id})
	})

	return r
}

func TestRequireAuth(t *testing.T) {
	manager := auth.NewManager("secret_ecom", time.Hour)
	token, jti, _, err := manager.Generate("u1")

	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}

	tests := []struct {
		name           string
		token          string
		revoker        middlewares.Revoker
		wantStatusCode int
		wantErrors     string
	}{
		{
			name:           "missing_token",
			token:          "",
			wantStatusCode: http.StatusUnauthorized,
			wantErrors:     "Please authenticate with a valid token",
		},
		{
			name:           "malformed_token",
			token:          "garbage",
			wantStatusCode: http.StatusUnauthorized,
			wantErrors:     "Invalid Token",
		},
		{
			name:           "valid_token",
			token:          token,
			wantStatusCode: http.StatusOK,
		},
		{
			name:           "valid_token_with_clean_revocation_set",
			token:          token,
			revoker:        &fakeRevokedSet{},
			wantStatusCode: http.StatusOK,
		},
		{
			name:           "revoked_token",
			token:          token,
			revoker:        &fakeRevokedSet{revoked: map[string]bool{jti: true}},
			wantStatusCode: http.StatusUnauthorized,
			wantErrors:     "Invalid Token",
		},
		{
			// unreachable revocation set rejects rather than letting a
			// possibly revoked token through
			name:           "revocation_set_error_fails_closed",
			token:          token,
			revoker:        &fakeRevokedSet{err: errors.New("redis down")},
			wantStatusCode: http.StatusUnauthorized,
			wantErrors:     "Invalid Token",
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			mw := middlewares.NewAuthMiddleware(manager, tt.revoker, "")
			r := protectedRouter(mw)

			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.token != "" {
				req.Header.Set("auth-token", tt.token)
			}
			w := httptest.NewRecorder()

			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}

			if tt.wantErrors != "" {
				var resp struct {
					Errors string `json:"errors"`
				}
				if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
					t.Fatalf("failed to unmarshal response: %v", err)
				}
				if resp.Errors != tt.wantErrors {
					t.Fatalf("got errors %q, want %q", resp.Errors, tt.wantErrors)
				}
			}

			if tt.wantStatusCode == http.StatusOK {
				var resp struct {
					UserID string `json:"userId"`
				}
				if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
					t.Fatalf("failed to unmarshal response: %v", err)
				}
				if resp.UserID != "u1" {
					t.Fatalf("got user id %q, want %q", resp.UserID, "u1")
				}
			}
		})
	}
}

func TestRequireAuthCustomHeader(t *testing.T) {
	manager := auth.NewManager("secret_ecom", time.Hour)
	token, _, _, err := manager.Generate("u1")

	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}

	mw := middlewares.NewAuthMiddleware(manager, nil, "x-session-token")
	r := protectedRouter(mw)

	// token on the default header must not count
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("auth-token", token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("got status %d, want 401", w.Code)
	}

	req2 := httptest.NewRequest(http.MethodGet, "/me", nil)
	req2.Header.Set("x-session-token", token)
	w2 := httptest.NewRecorder()
	r.ServeHTTP(w2, req2)

	if w2.Code != http.StatusOK {
		t.Fatalf("got status %d, want 200, body=%s", w2.Code, w2.Body.String())
	}
}
