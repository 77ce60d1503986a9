package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/danmelak/shopcart/internal/cache"
	"github.com/danmelak/shopcart/internal/config"
	"github.com/danmelak/shopcart/internal/domain/product"
	"github.com/gin-gonic/gin"
)

const (
	newCollectionSize = 8
	popularSize       = 4
	popularCategory   = "women"
)

type ProductStore interface {
	Create(ctx context.Context, req product.CreateRequest) (product.Product, error)
	Delete(ctx context.Context, id int) error
	ListAll(ctx context.Context) ([]product.Product, error)
	ListNewest(ctx context.Context, n int) ([]product.Product, error)
	ListByCategory(ctx context.Context, category string, limit int) ([]product.Product, error)
}

type ProductsHandler struct {
	repo  ProductStore
	cache *cache.Cache
}

func NewProductsHandler(repo ProductStore, c *cache.Cache) *ProductsHandler {
	return &ProductsHandler{repo: repo, cache: c}
}

func (h *ProductsHandler) AddProduct(ctx *gin.Context) {
	var req product.CreateRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	p, err := h.repo.Create(cctx, req)

	if err != nil {
		RespondInternal(ctx)
		return
	}

	h.invalidate()

	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"name":    p.Name,
	})
}

type removeProductRequest struct {
	ID *int `json:"id" binding:"required"`
}

func (h *ProductsHandler) RemoveProduct(ctx *gin.Context) {
	var req removeProductRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	err := h.repo.Delete(cctx, *req.ID)

	if err != nil && !errors.Is(err, product.ErrNotFound) {
		RespondInternal(ctx)
		return
	}

	// removing an unknown id is a no-op success, as the original behaved
	h.invalidate()

	ctx.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *ProductsHandler) AllProducts(ctx *gin.Context) {
	h.serveList(ctx, cache.AllProductsKey(), func(cctx context.Context) ([]product.Product, error) {
		return h.repo.ListAll(cctx)
	})
}

func (h *ProductsHandler) NewCollections(ctx *gin.Context) {
	h.serveList(ctx, cache.NewestProductsKey(newCollectionSize), func(cctx context.Context) ([]product.Product, error) {
		return h.repo.ListNewest(cctx, newCollectionSize)
	})
}

func (h *ProductsHandler) PopularInWomen(ctx *gin.Context) {
	h.serveList(ctx, cache.CategoryProductsKey(popularCategory, popularSize), func(cctx context.Context) ([]product.Product, error) {
		return h.repo.ListByCategory(cctx, popularCategory, popularSize)
	})
}

func (h *ProductsHandler) serveList(ctx *gin.Context, key string, load func(context.Context) ([]product.Product, error)) {
	if h.cache != nil {
		if v, ok := h.cache.Get(key); ok {
			if items, ok := v.([]product.Product); ok {
				RespondJSONWithETag(ctx, http.StatusOK, items)
				return
			}
		}
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	items, err := load(cctx)

	if err != nil {
		RespondInternal(ctx)
		return
	}

	if h.cache != nil {
		h.cache.Set(key, items)
	}

	RespondJSONWithETag(ctx, http.StatusOK, items)
}

func (h *ProductsHandler) invalidate() {
	if h.cache != nil {
		h.cache.Clear()
	}
}
