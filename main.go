package main

import (
	"log"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"storefront/internal/checkout"
	"storefront/internal/config"
	"storefront/internal/database"
	"storefront/internal/events"
	"storefront/internal/handlers"
	"storefront/internal/middleware"
	"storefront/internal/store"
)

func buildStore() store.Store {
	if config.AppEnv.StoreDriver == "memory" {
		log.Println("[BOOT] [INFO] Using in-memory store")
		return store.NewMemory()
	}
	db := database.Connect()
	database.EnsureIndexes(db)
	return store.NewMongo(db)
}

func buildGuard() checkout.Guard {
	if config.AppEnv.RedisAddr == "" {
		return checkout.NewMemoryGuard()
	}
	client := redis.NewClient(&redis.Options{Addr: config.AppEnv.RedisAddr})
	log.Println("[BOOT] [INFO] Using Redis checkout guard at", config.AppEnv.RedisAddr)
	return checkout.NewRedisGuard(client)
}

func buildPublisher() events.Publisher {
	if config.AppEnv.AMQPURL == "" {
		return events.NopPublisher{}
	}
	publisher, err := events.NewAMQPPublisher(config.AppEnv.AMQPURL)
	if err != nil {
		log.Printf("[BOOT] [ERROR] AMQP unavailable, order events disabled: %v", err)
		return events.NopPublisher{}
	}
	log.Println("[BOOT] [INFO] Publishing order events to AMQP")
	return publisher
}

func main() {
	config.Load()

	st := buildStore()
	defer database.Disconnect()

	guard := buildGuard()
	publisher := buildPublisher()
	defer publisher.Close()

	pipeline := checkout.New(st, guard, publisher)

	r := gin.Default()

	api := r.Group("/api")

	api.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	api.POST("/auth/register", handlers.Register(st))
	api.POST("/auth/login", handlers.Login(st))
	api.GET("/auth/me", middleware.UserAuth(), handlers.Me(st))

	api.GET("/products", handlers.GetProducts(st))
	api.GET("/products/:id", handlers.GetProduct(st))
	api.GET("/products/:id/reviews", handlers.GetProductReviews(st))
	api.POST("/products/:id/reviews", middleware.UserAuth(), handlers.CreateReview(st))

	api.GET("/categories", handlers.GetCategories(st))
	api.GET("/categories/:slug", handlers.GetCategoryBySlug(st))

	cart := api.Group("/cart")
	cart.Use(middleware.OptionalAuth())
	{
		cart.GET("", handlers.GetCart(st))
		cart.POST("", handlers.AddToCart(st))
		cart.PATCH("/:id", handlers.UpdateCartItem(st))
		cart.DELETE("/:id", handlers.RemoveFromCart(st))
		cart.DELETE("", handlers.ClearCart(st))
	}

	user := api.Group("")
	user.Use(middleware.UserAuth())
	{
		user.POST("/coupons/validate", handlers.ValidateCoupon(st))
		user.POST("/checkout", handlers.Checkout(pipeline))
		user.GET("/orders", handlers.GetUserOrders(st))
		user.GET("/orders/:id", handlers.GetOrder(st))
		user.GET("/reviews", handlers.GetUserReviews(st))
		user.POST("/reviews/:id/helpful", handlers.MarkReviewHelpful(st))
		user.GET("/wishlist", handlers.GetWishlist(st))
		user.POST("/wishlist", handlers.AddToWishlist(st))
		user.DELETE("/wishlist/:productId", handlers.RemoveFromWishlist(st))
	}

	admin := api.Group("/admin")
	admin.Use(middleware.AdminAuth())
	{
		admin.POST("/products", handlers.CreateProduct(st))
		admin.PATCH("/products/:id", handlers.UpdateProduct(st))
		admin.DELETE("/products/:id", handlers.DeleteProduct(st))

		admin.POST("/categories", handlers.CreateCategory(st))
		admin.DELETE("/categories/:id", handlers.DeleteCategory(st))

		admin.GET("/orders", handlers.AdminListOrders(st))
		admin.PATCH("/orders/:id/status", handlers.UpdateOrderStatus(st, publisher))
		admin.DELETE("/orders/:id", handlers.DeleteOrder(st))

		admin.GET("/users", handlers.AdminListUsers(st))
		admin.POST("/users", handlers.AdminCreateUser(st))
		admin.PATCH("/users/:id", handlers.AdminUpdateUser(st))
		admin.DELETE("/users/:id", handlers.AdminDeleteUser(st))

		admin.POST("/coupons", handlers.CreateCoupon(st))
	}

	log.Println("[BOOT] [INFO] Listening on :" + config.AppEnv.Port)
	if err := r.Run(":" + config.AppEnv.Port); err != nil {
		log.Fatal(err)
	}
}
