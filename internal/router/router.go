package router

import (
	"net/http"

	"github.com/banglehouse/bangles-backend/config"
	"github.com/banglehouse/bangles-backend/internal/app/controller"
	"github.com/banglehouse/bangles-backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

type Router struct {
	bangleController      *controller.BangleController
	cartController        *controller.CartController
	wishlistController    *controller.WishlistController
	translationController *controller.TranslationController
	uploadController      *controller.UploadController
	realtimeController    *controller.RealtimeController
	config                *config.Config
}

func NewRouter(
	bangleController *controller.BangleController,
	cartController *controller.CartController,
	wishlistController *controller.WishlistController,
	translationController *controller.TranslationController,
	uploadController *controller.UploadController,
	realtimeController *controller.RealtimeController,
	cfg *config.Config,
) *Router {
	return &Router{
		bangleController:      bangleController,
		cartController:        cartController,
		wishlistController:    wishlistController,
		translationController: translationController,
		uploadController:      uploadController,
		realtimeController:    realtimeController,
		config:                cfg,
	}
}

func (r *Router) Setup() *gin.Engine {
	gin.SetMode(r.config.Server.GinMode)

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.LoggingMiddleware())
	router.Use(middleware.CORS(r.config.CORS.AllowedOrigins))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"message": "Bangles API is running",
		})
	})

	secureCookie := r.config.Server.Environment == "production"

	v1 := router.Group("/api/v1")
	{
		products := v1.Group("/products")
		{
			products.GET("", r.bangleController.ListBangles)
			products.GET("/:id", r.bangleController.GetBangle)
		}

		cart := v1.Group("/cart")
		cart.Use(middleware.CartSession(secureCookie))
		{
			cart.GET("", r.cartController.GetCart)
			cart.POST("", r.cartController.AddToCart)
			cart.DELETE("", r.cartController.ClearCart)
			cart.PUT("/items", r.cartController.UpdateCartItem)
			cart.DELETE("/items", r.cartController.RemoveFromCart)
			cart.GET("/ws", r.realtimeController.CartUpdates)
		}

		wishlist := v1.Group("/wishlist")
		wishlist.Use(middleware.CartSession(secureCookie))
		{
			wishlist.GET("", r.wishlistController.GetWishlist)
			wishlist.POST("", r.wishlistController.AddToWishlist)
			wishlist.DELETE("", r.wishlistController.RemoveFromWishlist)
			wishlist.POST("/toggle", r.wishlistController.ToggleWishlist)
		}

		v1.POST("/translate", r.translationController.Translate)

		admin := v1.Group("/admin")
		{
			admin.GET("/products", r.bangleController.ListAllBangles)
			admin.POST("/products", r.bangleController.CreateBangle)
			admin.GET("/products/export", r.bangleController.ExportCatalog)
			admin.PUT("/products/:id", r.bangleController.UpdateBangle)
			admin.POST("/upload/presigned-url", r.uploadController.GeneratePresignedURL)
		}
	}

	return router
}
