package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/danmelak/shopcart/internal/auth"
	"github.com/danmelak/shopcart/internal/config"
	"github.com/danmelak/shopcart/internal/domain/user"
	"github.com/danmelak/shopcart/internal/http/middlewares"
	"github.com/danmelak/shopcart/internal/security"
	"github.com/gin-gonic/gin"
)

type UserReader interface {
	GetByEmail(ctx context.Context, email string) (user.User, error)
}

type UserWriter interface {
	Create(ctx context.Context, name, email, passwordHash string) (user.User, error)
}

// TokenIssuer is the Manager surface the handler needs.
type TokenIssuer interface {
	Generate(userID string) (raw string, jti string, expiresAt time.Time, err error)
}

// TokenRevoker records a jti until the token's natural expiry.
type TokenRevoker interface {
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
}

type AuthHandler struct {
	users      UserReader
	userWriter UserWriter
	jwt        TokenIssuer
	revoker    TokenRevoker
}

func NewAuthHandler(users UserReader, userWriter UserWriter, jwt TokenIssuer, revoker TokenRevoker) *AuthHandler {
	return &AuthHandler{
		users:      users,
		userWriter: userWriter,
		jwt:        jwt,
		revoker:    revoker,
	}
}

type SignUpRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func (h *AuthHandler) SignUp(ctx *gin.Context) {
	var req SignUpRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)

	defer cancel()

	hash, err := security.HashPassword(req.Password)

	if err != nil {
		RespondInternal(ctx)
		return
	}

	u, err := h.userWriter.Create(cctx, req.Username, req.Email, hash)

	if err != nil {
		if errors.Is(err, user.ErrEmailTaken) {
			RespondBadRequest(ctx, "User already exists")
			return
		}

		RespondInternal(ctx)
		return
	}

	token, _, _, err := h.jwt.Generate(u.ID)

	if err != nil {
		RespondInternal(ctx)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"token":   token,
	})
}

func (h *AuthHandler) Login(ctx *gin.Context) {
	var req LoginRequest

	if !BindJSON(ctx, &req) {
		return
	}

	// short timeout for the store lookup
	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	foundUser, err := h.users.GetByEmail(cctx, req.Email)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			RespondUnauthorized(ctx, "Wrong Email Id")
			return
		}

		RespondInternal(ctx)
		return
	}

	err = security.CheckPassword(foundUser.PasswordHash, req.Password)

	if err != nil {
		RespondUnauthorized(ctx, "Wrong Password")
		return
	}

	token, _, _, err := h.jwt.Generate(foundUser.ID)

	if err != nil {
		RespondInternal(ctx)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"token":   token,
	})
}

// Logout revokes the presented token's jti until it would have expired
// anyway. Idempotent: logging out twice is fine.
func (h *AuthHandler) Logout(ctx *gin.Context) {
	jti, ok := middlewares.TokenJTIFromContext(ctx)

	if !ok || jti == "" {
		RespondUnauthorized(ctx, "Invalid Token")
		return
	}

	if h.revoker != nil {
		ttl := time.Duration(0)

		if exp, ok := middlewares.TokenExpiryFromContext(ctx); ok {
			ttl = time.Until(exp)
		}

		cctx, cancel := config.WithTimeout(2 * time.Second)
		defer cancel()

		if err := h.revoker.Revoke(cctx, jti, ttl); err != nil {
			RespondInternal(ctx)
			return
		}
	}

	ctx.Status(http.StatusNoContent)
}

// compile-time check that the real manager satisfies the issuer surface
var _ TokenIssuer = (*auth.Manager)(nil)
