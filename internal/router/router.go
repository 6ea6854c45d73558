package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/summercamp/camp-backend/internal/config"
	"github.com/summercamp/camp-backend/internal/handler"
	"github.com/summercamp/camp-backend/internal/middleware"
	"github.com/summercamp/camp-backend/internal/model"
	"github.com/summercamp/camp-backend/internal/response"
)

// listingMaxAge is the browser cache lifetime of public listings, in seconds.
const listingMaxAge = 30

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Auth    *handler.AuthHandler
	Class   *handler.ClassHandler
	User    *handler.UserHandler
	Cart    *handler.CartHandler
	Payment *handler.PaymentHandler
	System  *handler.SystemHandler
}

// Deps are the cross-cutting pieces the router wires around handlers.
type Deps struct {
	Guard        *middleware.Guard
	TokenLimiter *middleware.RateLimiter
	Metrics      http.Handler
	Log          zerolog.Logger
}

// SetupRouter configures every route with its access requirements.
func SetupRouter(cfg *config.Config, deps Deps, handlers *Handlers) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.New()
	router.Use(gin.Recovery())

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", response.HeaderRequestID}
	corsConfig.ExposeHeaders = []string{response.HeaderRequestID}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Request ID first so the request log and every envelope share it.
	router.Use(response.RequestIDMiddleware())
	router.Use(middleware.RequestLogger(deps.Log))

	g := deps.Guard
	public := g.Require(middleware.Public())
	authenticated := g.Require(middleware.Authenticated())
	instructor := g.Require(middleware.RoleAtLeast(model.RoleInstructor))
	admin := g.Require(middleware.RoleAtLeast(model.RoleAdmin))

	// ─── System ────────────────────────────────────────────────────────
	router.GET("/", handlers.System.Root)
	router.GET("/health", handlers.System.Health)
	if deps.Metrics != nil {
		router.GET("/metrics", gin.WrapH(deps.Metrics))
	}

	// ─── Credentials (Public, Rate Limited) ────────────────────────────
	if deps.TokenLimiter != nil {
		router.POST("/jwt", deps.TokenLimiter.Middleware(), handlers.Auth.IssueToken)
	} else {
		router.POST("/jwt", handlers.Auth.IssueToken)
	}

	// ─── Catalog ───────────────────────────────────────────────────────
	listings := router.Group("/", public, middleware.CacheControl(listingMaxAge), middleware.Brotli(middleware.DefaultBrotliMinLength))
	{
		listings.GET("/classes", handlers.Class.ListApproved)
		listings.GET("/popularClasses", handlers.Class.ListPopular)
		listings.GET("/latestClasses", handlers.Class.ListLatest)
		listings.GET("/instructors", handlers.User.ListInstructors)
	}
	router.GET("/myClasses", public, handlers.Class.ListMine)
	router.POST("/add-class", instructor, handlers.Class.CreateClass)
	router.PATCH("/updateClasses/:id", instructor, handlers.Class.UpdateClass)

	router.GET("/pendingClasses", admin, middleware.Brotli(middleware.DefaultBrotliMinLength), handlers.Class.ListAll)
	router.PATCH("/class/approved/:id", admin, handlers.Class.ApproveClass)
	router.PATCH("/class/deny/:id", admin, handlers.Class.DenyClass)
	router.PATCH("/all-classes/seats/:id", admin, handlers.Class.AdjustSeats)

	// ─── Users & Roles ─────────────────────────────────────────────────
	router.POST("/users", public, handlers.User.RegisterUser)
	router.GET("/users", admin, handlers.User.ListUsers)
	router.PATCH("/users/admin/:id", admin, handlers.User.MakeAdmin)
	router.PATCH("/users/instructor/:id", admin, handlers.User.MakeInstructor)
	router.GET("/users/admin/:email", authenticated, middleware.NoStore(), handlers.User.IsAdmin)
	router.GET("/users/instructor/:email", authenticated, middleware.NoStore(), handlers.User.IsInstructor)

	// ─── Cart ──────────────────────────────────────────────────────────
	selfByQuery := g.Require(middleware.SelfOnly(middleware.FromQuery("email")))
	router.GET("/carts", selfByQuery, middleware.NoStore(), handlers.Cart.ListCart)
	router.POST("/carts", authenticated, handlers.Cart.AddToCart)
	router.DELETE("/carts/:id", authenticated, handlers.Cart.RemoveFromCart)

	// ─── Payments ──────────────────────────────────────────────────────
	router.POST("/create-payment-intent", authenticated, handlers.Payment.CreatePaymentIntent)
	router.POST("/payments", authenticated, handlers.Payment.CompletePayment)
	router.GET("/payments", selfByQuery, middleware.NoStore(), handlers.Payment.ListPayments)

	return router
}
