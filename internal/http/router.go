package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/danmelak/shopcart/internal/cache"
	"github.com/danmelak/shopcart/internal/config"
	"github.com/danmelak/shopcart/internal/http/handlers"
	"github.com/danmelak/shopcart/internal/http/middlewares"
	"github.com/danmelak/shopcart/internal/observability"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

// Deps carries the constructed dependencies so dev and test wiring can swap
// in the memory repos without touching route setup.
type Deps struct {
	Users      handlers.UserReader
	UserWriter handlers.UserWriter
	Carts      handlers.CartStore
	Products   handlers.ProductStore

	Verifier middlewares.TokenVerifier
	Issuer   handlers.TokenIssuer

	// nil when redis is not wired (tests, bare dev mode)
	Revoker    handlers.TokenRevoker
	RevokedSet middlewares.Revoker

	Cache *cache.Cache
	Prom  *observability.Prom

	MetricsHandler http.Handler
	Ping           func() error
	Tracing        bool
}

func NewRouter(log *slog.Logger, deps Deps, cfg config.Config) *gin.Engine {
	if cfg.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	// middleware
	r.Use(gin.Recovery())
	r.Use(middlewares.RequestID())
	r.Use(middlewares.RequestLogger(log))
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddleware(cfg.AllowedOrigins))
	r.Use(middlewares.MaxBodyBytes(10 << 20))

	if deps.Prom != nil {
		r.Use(deps.Prom.GinHandleMiddleware())
	}

	if deps.Tracing {
		r.Use(otelgin.Middleware("shopcart-api"))
	}

	// health
	h := handlers.NewHealthHandler(deps.Ping)
	r.GET("/healthz", h.Healthz)
	r.GET("/readyz", h.Readyz)

	if deps.MetricsHandler != nil {
		r.GET("/metrics", gin.WrapH(deps.MetricsHandler))
	}

	// handlers
	authHandler := handlers.NewAuthHandler(deps.Users, deps.UserWriter, deps.Issuer, deps.Revoker)
	cartHandler := handlers.NewCartHandler(deps.Carts, cfg.CartKeyspace)
	productsHandler := handlers.NewProductsHandler(deps.Products, deps.Cache)
	uploadHandler := handlers.NewUploadHandler(cfg.UploadDir, cfg.PublicBaseURL)

	authMW := middlewares.NewAuthMiddleware(deps.Verifier, deps.RevokedSet, cfg.AuthHeader)

	authLimiter := middlewares.NewRateLimiter(20, time.Minute)
	cartLimiter := middlewares.NewRateLimiter(120, time.Minute)

	// credentials
	r.POST("/signup", authLimiter.RateLimiterMiddleware(middlewares.KeyByIP), authHandler.SignUp)
	r.POST("/login", authLimiter.RateLimiterMiddleware(middlewares.KeyByIP), authHandler.Login)

	// catalog
	r.POST("/addproduct", productsHandler.AddProduct)
	r.POST("/removeproduct", productsHandler.RemoveProduct)
	r.GET("/allproducts", productsHandler.AllProducts)
	r.GET("/newcollections", productsHandler.NewCollections)
	r.GET("/popularinwomen", productsHandler.PopularInWomen)

	// uploads
	r.POST("/upload", uploadHandler.Upload)
	r.Static("/images", cfg.UploadDir)

	// token-gated cart + session routes
	protected := r.Group("/", authMW.RequireAuth(), cartLimiter.RateLimiterMiddleware(middlewares.KeyByUserOrIP))
	protected.POST("/addtocart", cartHandler.AddToCart)
	protected.POST("/removefromcart", cartHandler.RemoveFromCart)
	protected.POST("/getcart", cartHandler.GetCart)
	protected.POST("/logout", authHandler.Logout)

	return r
}
