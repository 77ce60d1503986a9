package auth_test

import (
	"errors"
	"testing"
	"time"

	"github.com/danmelak/shopcart/internal/auth"
)

func TestManagerGenerateVerify(t *testing.T) {
	m := auth.NewManager("secret_ecom", time.Hour)

	raw, jti, expiresAt, err := m.Generate("user-1")

	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	if raw == "" {
		t.Fatalf("expected a signed token")
	}
	if jti == "" {
		t.Fatalf("expected a jti")
	}
	if until := time.Until(expiresAt); until < 55*time.Minute || until > time.Hour {
		t.Fatalf("unexpected expiry %v", expiresAt)
	}

	claims, err := m.Verify(raw)

	if err != nil {
		t.Fatalf("verify failed: %v", err)
	}
	if claims.UserID != "user-1" {
		t.Fatalf("got user id %q, want %q", claims.UserID, "user-1")
	}
	if claims.JTI != jti {
		t.Fatalf("got jti %q, want %q", claims.JTI, jti)
	}
}

func TestManagerVerifyRejectsWrongSecret(t *testing.T) {
	issuer := auth.NewManager("secret_ecom", time.Hour)
	verifier := auth.NewManager("other-secret", time.Hour)

	raw, _, _, err := issuer.Generate("user-1")

	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}

	if _, err := verifier.Verify(raw); !errors.Is(err, auth.ErrInvalidToken) {
		t.Fatalf("got %v, want ErrInvalidToken", err)
	}
}

func TestManagerVerifyRejectsExpired(t *testing.T) {
	m := auth.NewManager("secret_ecom", -time.Minute)

	raw, _, _, err := m.Generate("user-1")

	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}

	if _, err := m.Verify(raw); !errors.Is(err, auth.ErrInvalidToken) {
		t.Fatalf("got %v, want ErrInvalidToken", err)
	}
}

func TestManagerVerifyRejectsGarbage(t *testing.T) {
	m := auth.NewManager("secret_ecom", time.Hour)

	for _, token := range []string{"", "not-a-jwt", "a.b.c"} {
		if _, err := m.Verify(token); !errors.Is(err, auth.ErrInvalidToken) {
			t.Fatalf("token %q: got %v, want ErrInvalidToken", token, err)
		}
	}
}
