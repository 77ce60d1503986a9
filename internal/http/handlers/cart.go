package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/danmelak/shopcart/internal/config"
	"github.com/danmelak/shopcart/internal/domain/user"
	"github.com/danmelak/shopcart/internal/http/middlewares"
	"github.com/gin-gonic/gin"
)

type CartStore interface {
	AddItem(ctx context.Context, userID string, itemID int) (user.Cart, error)
	RemoveItem(ctx context.Context, userID string, itemID int) (user.Cart, error)
	Get(ctx context.Context, userID string) (user.Cart, error)
}

type CartHandler struct {
	carts    CartStore
	keyspace int
}

func NewCartHandler(carts CartStore, keyspace int) *CartHandler {
	if keyspace <= 0 {
		keyspace = 300
	}

	return &CartHandler{carts: carts, keyspace: keyspace}
}

type cartItemRequest struct {
	ItemID *int `json:"itemId" binding:"required"`
}

func (h *CartHandler) bindItem(ctx *gin.Context) (int, bool) {
	var req cartItemRequest

	if !BindJSON(ctx, &req) {
		return 0, false
	}

	if *req.ItemID < 0 {
		RespondBadRequest(ctx, "itemId must not be negative")
		return 0, false
	}

	return *req.ItemID, true
}

func (h *CartHandler) AddToCart(ctx *gin.Context) {
	itemID, ok := h.bindItem(ctx)

	if !ok {
		return
	}

	userID, ok := middlewares.UserIDFromContext(ctx)

	if !ok || userID == "" {
		RespondUnauthorized(ctx, "Please authenticate with a valid token")
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	_, err := h.carts.AddItem(cctx, userID, itemID)

	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}

		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Added"})
}

func (h *CartHandler) RemoveFromCart(ctx *gin.Context) {
	itemID, ok := h.bindItem(ctx)

	if !ok {
		return
	}

	userID, ok := middlewares.UserIDFromContext(ctx)

	if !ok || userID == "" {
		RespondUnauthorized(ctx, "Please authenticate with a valid token")
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	_, err := h.carts.RemoveItem(cctx, userID, itemID)

	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}

		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Removed"})
}

// GetCart returns the cart rendered densely over the catalog keyspace so
// the wire shape matches what the storefront clients expect: every key
// present, zeros included.
func (h *CartHandler) GetCart(ctx *gin.Context) {
	userID, ok := middlewares.UserIDFromContext(ctx)

	if !ok || userID == "" {
		RespondUnauthorized(ctx, "Please authenticate with a valid token")
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	cart, err := h.carts.Get(cctx, userID)

	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}

		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
		return
	}

	ctx.JSON(http.StatusOK, cart.Dense(h.keyspace))
}
