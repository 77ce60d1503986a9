package memory_test

import (
	"context"
	"errors"
	"testing"

	"github.com/danmelak/shopcart/internal/domain/user"
	"github.com/danmelak/shopcart/internal/repo/memory"
)

func newCartFixture(t *testing.T) (*memory.CartsRepo, string) {
	t.Helper()

	users := memory.NewUsersRepo()

	u, err := users.Create(context.Background(), "dan", "dan@example.com", "hash")

	if err != nil {
		t.Fatalf("seed user failed: %v", err)
	}

	return memory.NewCartsRepo(users), u.ID
}

func TestCartsRepoAddRemoveRoundTrip(t *testing.T) {
	ctx := context.Background()
	carts, userID := newCartFixture(t)

	for i := 0; i < 3; i++ {
		if _, err := carts.AddItem(ctx, userID, 5); err != nil {
			t.Fatalf("add failed: %v", err)
		}
	}

	cart, err := carts.Get(ctx, userID)

	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got := cart.Qty(5); got != 3 {
		t.Fatalf("got qty %d, want 3", got)
	}

	if _, err := carts.RemoveItem(ctx, userID, 5); err != nil {
		t.Fatalf("remove failed: %v", err)
	}

	cart, err = carts.Get(ctx, userID)

	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got := cart.Qty(5); got != 2 {
		t.Fatalf("got qty %d, want 2", got)
	}
}

func TestCartsRepoRemoveNeverGoesNegative(t *testing.T) {
	ctx := context.Background()
	carts, userID := newCartFixture(t)

	// removing from an empty cart is a silent no-op
	for i := 0; i < 5; i++ {
		cart, err := carts.RemoveItem(ctx, userID, 9)

		if err != nil {
			t.Fatalf("remove failed: %v", err)
		}
		if got := cart.Qty(9); got != 0 {
			t.Fatalf("got qty %d, want 0", got)
		}
	}
}

func TestCartsRepoUnknownUser(t *testing.T) {
	ctx := context.Background()
	carts, _ := newCartFixture(t)

	if _, err := carts.AddItem(ctx, "ghost", 1); !errors.Is(err, user.ErrNotFound) {
		t.Fatalf("add: got %v, want ErrNotFound", err)
	}
	if _, err := carts.RemoveItem(ctx, "ghost", 1); !errors.Is(err, user.ErrNotFound) {
		t.Fatalf("remove: got %v, want ErrNotFound", err)
	}
	if _, err := carts.Get(ctx, "ghost"); !errors.Is(err, user.ErrNotFound) {
		t.Fatalf("get: got %v, want ErrNotFound", err)
	}
}

func TestCartsRepoIsolatedPerUser(t *testing.T) {
	ctx := context.Background()

	users := memory.NewUsersRepo()
	carts := memory.NewCartsRepo(users)

	a, err := users.Create(ctx, "a", "a@example.com", "hash")
	if err != nil {
		t.Fatalf("seed user failed: %v", err)
	}
	b, err := users.Create(ctx, "b", "b@example.com", "hash")
	if err != nil {
		t.Fatalf("seed user failed: %v", err)
	}

	if _, err := carts.AddItem(ctx, a.ID, 7); err != nil {
		t.Fatalf("add failed: %v", err)
	}

	cartB, err := carts.Get(ctx, b.ID)

	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got := cartB.Qty(7); got != 0 {
		t.Fatalf("user b sees qty %d, want 0", got)
	}
}

func TestCartsRepoReturnsCopies(t *testing.T) {
	ctx := context.Background()
	carts, userID := newCartFixture(t)

	if _, err := carts.AddItem(ctx, userID, 1); err != nil {
		t.Fatalf("add failed: %v", err)
	}

	cart, err := carts.Get(ctx, userID)

	if err != nil {
		t.Fatalf("get failed: %v", err)
	}

	// mutating the returned map must not leak into the store
	cart[1] = 100

	again, err := carts.Get(ctx, userID)

	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got := again.Qty(1); got != 1 {
		t.Fatalf("got qty %d, want 1", got)
	}
}

func TestCartDenseRender(t *testing.T) {
	c := user.Cart{5: 2, 310: 1}

	dense := c.Dense(300)

	if len(dense) != 301 {
		t.Fatalf("got %d keys, want 301", len(dense))
	}
	if dense[5] != 2 || dense[0] != 0 || dense[299] != 0 {
		t.Fatalf("unexpected dense render: %v", dense)
	}
	// entries past the keyspace survive the render
	if dense[310] != 1 {
		t.Fatalf("got qty %d at 310, want 1", dense[310])
	}
}
