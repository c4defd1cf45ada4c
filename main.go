package main

import (
	"log"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"backend/internal/config"
	"backend/internal/database"
	"backend/internal/handlers"
	"backend/internal/middleware"
	"backend/internal/notify"
	"backend/internal/payment"
)

func main() {
	config.Load()

	client, err := database.Connect(config.AppEnv.MongoURI)
	if err != nil {
		log.Fatal(err)
	}

	db := client.Database(config.AppEnv.DBName)

	log.Println("MongoDB connected to:", db.Name())

	if err := database.EnsureUserIndexes(db); err != nil {
		log.Printf("user index warning: %v", err)
	}
	if err := database.EnsureProductIndexes(db); err != nil {
		log.Printf("product index warning: %v", err)
	}
	if err := database.EnsureCouponIndexes(db); err != nil {
		log.Printf("coupon index warning: %v", err)
	}
	if err := database.EnsureOrderIndexes(db); err != nil {
		log.Printf("order index warning: %v", err)
	}
	if err := database.EnsureAddressIndexes(db); err != nil {
		log.Printf("address index warning: %v", err)
	}
	if err := database.EnsureCartIndexes(db); err != nil {
		log.Printf("cart index warning: %v", err)
	}

	gateway := payment.NewStripeGateway(config.AppEnv.StripeSecretKey)

	var mailer notify.Mailer = notify.NopMailer{}
	if config.AppEnv.SMTPHost != "" {
		mailer = notify.NewSMTPMailer(
			config.AppEnv.SMTPHost,
			config.AppEnv.SMTPPort,
			config.AppEnv.SMTPUser,
			config.AppEnv.SMTPPassword,
			config.AppEnv.ContactEmail,
		)
	}

	r := gin.Default()
	r.Use(cors.New(cors.Config{
		AllowOrigins:     config.AppEnv.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: false,
	}))

	jwtSecret := config.AppEnv.JWTSecret
	accessTTL := config.AppEnv.AccessTokenTTL
	protect := middleware.Protect(jwtSecret)
	adminOnly := middleware.AdminOnly(jwtSecret)

	auth := r.Group("/api/auth")
	{
		auth.POST("/register", handlers.Register(db, jwtSecret, accessTTL))
		auth.POST("/login", handlers.Login(db, jwtSecret, accessTTL))
		auth.GET("/me", protect, handlers.GetMe(db))
		auth.PUT("/wishlist/add/:productId", protect, handlers.AddToWishlist(db))
		auth.PUT("/wishlist/remove/:productId", protect, handlers.RemoveFromWishlist(db))
	}

	products := r.Group("/api/products")
	{
		products.GET("", handlers.GetProducts(db))
		products.GET("/:id", handlers.GetProductByID(db))
		products.GET("/:id/similar", handlers.GetSimilarProducts(db))
		products.GET("/:id/reviews", handlers.GetProductReviews(db))
		products.POST("/:id/reviews", protect, handlers.AddProductReview(db))
		products.POST("", adminOnly, handlers.CreateProduct(db))
		products.PUT("/:id", adminOnly, handlers.UpdateProduct(db))
		products.DELETE("/:id", adminOnly, handlers.DeleteProduct(db))
	}

	cart := r.Group("/api/cart", protect)
	{
		cart.GET("", handlers.GetCart(db))
		cart.POST("/add", handlers.AddToCart(db))
		cart.PUT("/update", handlers.UpdateCartItem(db))
		cart.DELETE("/remove/:productId", handlers.RemoveFromCart(db))
	}

	orders := r.Group("/api/orders", protect)
	{
		orders.POST("/checkout", handlers.Checkout(db, gateway, mailer))
		orders.POST("/apply-coupon", handlers.ValidateCoupon(db))
		orders.GET("/user", handlers.GetUserOrders(db))
		orders.GET("/admin", adminOnly, handlers.GetAdminOrders(db))
		orders.GET("/:id", handlers.GetOrderByID(db))
		orders.PUT("/:id/cancel", handlers.CancelOrder(db))
		orders.PUT("/:id/return", handlers.RequestReturn(db))
		orders.PUT("/:id/status", adminOnly, handlers.UpdateOrderStatus(db))
	}

	coupons := r.Group("/api/coupons")
	{
		coupons.GET("/active", handlers.GetActiveCoupons(db))
		coupons.GET("/:code", handlers.GetCouponByCode(db))
		coupons.POST("/validate", protect, handlers.ValidateCoupon(db))
		coupons.POST("", adminOnly, handlers.CreateCoupon(db))
		coupons.GET("/admin/all", adminOnly, handlers.GetAllCoupons(db))
		coupons.PUT("/:id", adminOnly, handlers.UpdateCoupon(db))
		coupons.DELETE("/:id", adminOnly, handlers.DeleteCoupon(db))
	}

	addresses := r.Group("/api/addresses")
	{
		addresses.GET("/check-pincode/:pincode", handlers.CheckPincode())
		addresses.GET("", protect, handlers.GetUserAddresses(db))
		addresses.POST("", protect, handlers.AddAddress(db))
		addresses.GET("/:id", protect, handlers.GetAddressByID(db))
		addresses.PUT("/:id", protect, handlers.UpdateAddress(db))
		addresses.DELETE("/:id", protect, handlers.DeleteAddress(db))
		addresses.PUT("/:id/default", protect, handlers.SetDefaultAddress(db))
	}

	admin := r.Group("/api/admin", adminOnly)
	{
		admin.GET("/stats", handlers.GetDashboardStats(db))
		admin.GET("/users", handlers.GetAllUsers(db))
		admin.PUT("/users/:id/block", handlers.ToggleBlockUser(db))
		admin.PUT("/users/:id/role", handlers.UpdateUserRole(db))
		admin.DELETE("/users/:id", handlers.DeleteUser(db))
	}

	r.POST("/api/contact", handlers.SendContactMessage(mailer))

	r.NoRoute(func(c *gin.Context) {
		c.JSON(404, gin.H{"message": "route not found"})
	})

	if err := r.Run(":" + config.AppEnv.Port); err != nil {
		log.Fatal(err)
	}
}
