package memory

import (
	"context"
	"sync"

	"github.com/danmelak/shopcart/internal/domain/user"
)

// CartsRepo keeps per-user sparse cart mappings guarded by one mutex, which
// gives the same per-user atomicity the SQL repo gets from single-statement
// deltas.
type CartsRepo struct {
	mu    sync.Mutex
	users *UsersRepo
	carts map[string]user.Cart
}

func NewCartsRepo(users *UsersRepo) *CartsRepo {
	return &CartsRepo{
		users: users,
		carts: make(map[string]user.Cart),
	}
}

func (r *CartsRepo) AddItem(ctx context.Context, userID string, itemID int) (user.Cart, error) {
	if _, err := r.users.GetByID(ctx, userID); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	cart := r.carts[userID]

	if cart == nil {
		cart = make(user.Cart)
		r.carts[userID] = cart
	}

	cart[itemID]++

	return cart.Clone(), nil
}

func (r *CartsRepo) RemoveItem(ctx context.Context, userID string, itemID int) (user.Cart, error) {
	if _, err := r.users.GetByID(ctx, userID); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	cart := r.carts[userID]

	if cart == nil {
		cart = make(user.Cart)
		r.carts[userID] = cart
	}

	// no-op at zero, never negative
	if cart[itemID] > 0 {
		cart[itemID]--
	}

	return cart.Clone(), nil
}

func (r *CartsRepo) Get(ctx context.Context, userID string) (user.Cart, error) {
	if _, err := r.users.GetByID(ctx, userID); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	cart := r.carts[userID]

	if cart == nil {
		return make(user.Cart), nil
	}

	return cart.Clone(), nil
}
