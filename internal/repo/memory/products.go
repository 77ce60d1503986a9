package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/danmelak/shopcart/internal/domain/product"
)

type ProductsRepo struct {
	mu     sync.RWMutex
	nextID int
	items  map[int]product.Product
}

func NewProductsRepo() *ProductsRepo {
	return &ProductsRepo{
		nextID: 1,
		items:  make(map[int]product.Product),
	}
}

func (r *ProductsRepo) Create(ctx context.Context, req product.CreateRequest) (product.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p := product.Product{
		ID:        r.nextID,
		Name:      req.Name,
		Image:     req.Image,
		Category:  req.Category,
		NewPrice:  req.NewPrice,
		OldPrice:  req.OldPrice,
		Date:      time.Now().UTC(),
		Available: true,
	}

	r.items[p.ID] = p
	r.nextID++

	return p, nil
}

func (r *ProductsRepo) Delete(ctx context.Context, id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[id]; !ok {
		return product.ErrNotFound
	}

	delete(r.items, id)
	return nil
}

func (r *ProductsRepo) ListAll(ctx context.Context) ([]product.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.sorted(), nil
}

func (r *ProductsRepo) ListNewest(ctx context.Context, n int) ([]product.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	all := r.sorted()

	if len(all) > n {
		all = all[len(all)-n:]
	}

	return all, nil
}

func (r *ProductsRepo) ListByCategory(ctx context.Context, category string, limit int) ([]product.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]product.Product, 0, limit)

	for _, p := range r.sorted() {
		if p.Category != category {
			continue
		}

		out = append(out, p)

		if len(out) == limit {
			break
		}
	}

	return out, nil
}

func (r *ProductsRepo) sorted() []product.Product {
	out := make([]product.Product, 0, len(r.items))

	for _, p := range r.items {
		out = append(out, p)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })

	return out
}
