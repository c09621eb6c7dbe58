package routes

import (
	"time"

	"github.com/Govind-619/ShuttleHub/controllers"
	"github.com/Govind-619/ShuttleHub/middleware"
	"github.com/Govind-619/ShuttleHub/utils"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Controllers bundles every handler group the router mounts
type Controllers struct {
	Products   *controllers.ProductController
	Promotions *controllers.PromotionController
	Orders     *controllers.OrderController
	Checkout   *controllers.CheckoutController
	Webhooks   *controllers.WebhookController
	Carts      *controllers.CartController
	Addresses  *controllers.AddressController
	Categories *controllers.CategoryController
	Posts      *controllers.PostController
	Codes      *controllers.DiscountCodeController
	Users      *controllers.UserController
	Health     *controllers.HealthController
}

// Options carries the request-level settings of the router
type Options struct {
	CORSOrigins   []string
	SessionSecret string
	SecureCookies bool
	Verifier      *middleware.TokenVerifier
	Users         middleware.UserResolver
}

func corsMiddleware(origins []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
		ExposeHeaders: []string{"X-Request-ID", "Content-Disposition"},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
		cfg.AllowCredentials = true
	}
	return cors.New(cfg)
}

// SetupRouter wires every /api route onto a new engine
func SetupRouter(h Controllers, opts Options) *gin.Engine {
	utils.RegisterValidators()

	router := gin.New()
	router.Use(
		utils.RequestIDMiddleware(),
		utils.LoggerMiddleware(),
		utils.RecoveryMiddleware(),
		utils.SecurityHeadersMiddleware(),
		corsMiddleware(opts.CORSOrigins),
	)

	auth := middleware.AuthMiddleware(opts.Verifier, opts.Users)
	optional := middleware.OptionalAuthMiddleware(opts.Verifier, opts.Users)
	admin := middleware.AdminMiddleware()

	api := router.Group("/api")
	api.GET("/healthz", h.Health.Healthz)

	// signed by the sender, no session or bearer token
	webhooks := api.Group("/webhooks")
	{
		webhooks.POST("/stripe", h.Webhooks.StripeWebhook)
		webhooks.POST("/clerk", h.Webhooks.ClerkWebhook)
	}

	api.Use(middleware.CheckoutSession(opts.SessionSecret, opts.SecureCookies), middleware.CheckoutState())

	products := api.Group("/products")
	{
		products.GET("", optional, h.Products.ListProducts)
		products.GET("/:id", optional, h.Products.GetProduct)
		products.POST("", auth, admin, h.Products.CreateProduct)
		products.PUT("/:id", auth, admin, h.Products.UpdateProduct)
		products.DELETE("/:id", auth, admin, h.Products.DeleteProduct)
		products.POST("/bulk-discount", auth, admin, h.Products.BulkDiscount)
	}

	promotions := api.Group("/promotions", auth, admin)
	{
		promotions.GET("", h.Promotions.ListPromotions)
		promotions.POST("", h.Promotions.CreatePromotion)
		promotions.POST("/apply", h.Promotions.ApplyPromotions)
		promotions.GET("/:id", h.Promotions.GetPromotion)
		promotions.PUT("/:id", h.Promotions.UpdatePromotion)
		promotions.DELETE("/:id", h.Promotions.DeletePromotion)
	}

	orders := api.Group("/orders")
	{
		orders.GET("", auth, h.Orders.ListOrders)
		orders.POST("", optional, h.Orders.CreateOrder)
		orders.GET("/export", auth, admin, h.Orders.ExportOrders)
		orders.GET("/:id", auth, h.Orders.GetOrder)
		orders.PUT("/:id", auth, admin, h.Orders.UpdateOrder)
		orders.DELETE("/:id", auth, admin, h.Orders.DeleteOrder)
		orders.POST("/:id/cancel", auth, h.Orders.CancelOrder)
		orders.GET("/:id/invoice", auth, h.Orders.DownloadInvoice)
	}

	checkout := api.Group("/checkout")
	{
		checkout.POST("/stripe", optional, h.Checkout.StartStripeCheckout)
		checkout.POST("/verify", h.Checkout.VerifyStripeCheckout)
		checkout.POST("/vietqr", optional, h.Checkout.StartVietQRCheckout)
		checkout.POST("/vietqr/verify", auth, admin, h.Checkout.VerifyVietQR)
		checkout.POST("/points", auth, h.Checkout.RedeemPoints)
	}

	cart := api.Group("/cart", auth)
	{
		cart.GET("", h.Carts.GetCart)
		cart.POST("", h.Carts.ReplaceCart)
		cart.DELETE("", h.Carts.ClearCart)
		cart.POST("/discount", h.Carts.ApplyDiscount)
	}

	addresses := api.Group("/addresses", auth)
	{
		addresses.GET("", h.Addresses.ListAddresses)
		addresses.POST("", h.Addresses.CreateAddress)
		addresses.GET("/:id", h.Addresses.GetAddress)
		addresses.PUT("/:id", h.Addresses.UpdateAddress)
		addresses.DELETE("/:id", h.Addresses.DeleteAddress)
		addresses.PUT("/:id/default", h.Addresses.SetDefaultAddress)
	}

	categories := api.Group("/categories")
	{
		categories.GET("", h.Categories.ListCategories)
		categories.GET("/:id", h.Categories.GetCategory)
		categories.POST("", auth, admin, h.Categories.CreateCategory)
		categories.PUT("/:id", auth, admin, h.Categories.UpdateCategory)
		categories.DELETE("/:id", auth, admin, h.Categories.DeleteCategory)
	}

	posts := api.Group("/posts")
	{
		posts.GET("", optional, h.Posts.ListPosts)
		posts.GET("/:id", optional, h.Posts.GetPost)
		posts.POST("", auth, admin, h.Posts.CreatePost)
		posts.PUT("/:id", auth, admin, h.Posts.UpdatePost)
		posts.DELETE("/:id", auth, admin, h.Posts.DeletePost)
	}

	codes := api.Group("/discount-codes", auth, admin)
	{
		codes.GET("", h.Codes.ListDiscountCodes)
		codes.POST("", h.Codes.CreateDiscountCode)
		codes.DELETE("/:id", h.Codes.DeleteDiscountCode)
	}

	api.GET("/me", auth, h.Users.Me)
	users := api.Group("/users", auth, admin)
	{
		users.GET("", h.Users.ListUsers)
		users.PUT("/:id/role", h.Users.SetRole)
	}

	return router
}
