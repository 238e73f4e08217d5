package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/kgvl/freightbid-backend/internal/database"
	"github.com/kgvl/freightbid-backend/internal/dispatch"
	"github.com/kgvl/freightbid-backend/internal/geo"
	"github.com/kgvl/freightbid-backend/internal/handlers"
	"github.com/kgvl/freightbid-backend/internal/middleware"
	"github.com/kgvl/freightbid-backend/internal/reaper"
	"github.com/kgvl/freightbid-backend/internal/services"
	"github.com/kgvl/freightbid-backend/internal/tracking"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment")
	}

	// Initialize database with better error handling
	db, err := database.InitDB()
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	// Get underlying SQL DB instance
	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("Failed to get database instance: %v", err)
	}

	// Configure connection pool
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	// Initialize Redis
	if err := services.InitRedis(); err != nil {
		log.Fatalf("Failed to initialize Redis: %v", err)
	}

	// Initialize Firebase (optional - will log warning if not configured)
	if err := services.InitFirebase(); err != nil {
		log.Printf("Firebase initialization warning: %v", err)
	}

	// Initialize Storage (S3 or local fallback)
	if err := services.InitStorage(); err != nil {
		log.Fatalf("Failed to initialize storage: %v", err)
	}

	// Initialize Razorpay (optional in development)
	if err := services.InitRazorpay(); err != nil {
		log.Printf("Razorpay initialization warning: %v", err)
	}

	geocoder, err := services.NewGoogleGeocoder(os.Getenv("GOOGLE_MAPS_API_KEY"))
	if err != nil {
		log.Fatalf("Failed to initialize geocoder: %v", err)
	}

	// Initialize WebSocket hub
	hub := services.NewHub()
	go hub.Run()

	// Relay published provider positions to the consumers of their
	// active trips.
	relay := &tracking.Relay{Store: tracking.NewGormStore(db), Notifier: hub}
	locationSub := services.RedisClient.Subscribe(context.Background(), services.LocationUpdatesChannel)
	go relay.Run(context.Background(), locationSub.Channel())

	// Dispatch pipeline: geocode origin, search the cell index, open the
	// bidding window and fan notifications out.
	dispatcher := &dispatch.Dispatcher{
		Store:       dispatch.NewGormStore(db),
		Geocoder:    geocoder,
		Finder:      geo.NewFinder(geo.NewGormLocationStore(db)),
		Notifier:    hub,
		Pusher:      services.SendPushToTokens,
		TargetCount: geo.DefaultTargetCount,
	}

	// Background sweep that rejects trips whose bidding window elapsed.
	sweeper := reaper.New(reaper.NewGormStore(db), time.Minute, 0)
	sweeper.Start()
	defer sweeper.Stop()

	// Initialize router
	r := gin.Default()

	// Configure CORS
	config := cors.DefaultConfig()
	config.AllowOrigins = []string{"*"}
	config.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization"}
	r.Use(cors.New(config))

	// Serve static files
	r.Static("/uploads", "/app/uploads")

	// Routes
	api := r.Group("/api")
	{
		api.GET("/health", handlers.Health(hub))

		// Public routes
		auth := api.Group("/auth")
		{
			auth.POST("/register", handlers.Register(db))
			auth.POST("/login", handlers.Login(db))
		}

		// WebSocket connection
		api.GET("/ws", middleware.AuthMiddleware(), handlers.WebSocketHandler(hub))

		// Protected routes
		protected := api.Group("/")
		protected.Use(middleware.AuthMiddleware())
		{
			// User routes
			users := protected.Group("/users")
			{
				users.GET("/profile", handlers.GetProfile(db))
				users.PUT("/profile", handlers.UpdateProfile(db))
			}

			// Provider location and availability routes
			provider := protected.Group("/provider")
			{
				provider.POST("/location", handlers.UpdateProviderLocation(db))
				provider.POST("/availability", handlers.UpdateProviderAvailability(db))
				provider.GET("/status", handlers.GetProviderStatus(db))
			}

			// Trip and negotiation routes
			trips := protected.Group("/trips")
			{
				trips.POST("", handlers.CreateTrip(db))
				trips.GET("", handlers.GetConsumerTrips(db))
				trips.GET("/open", handlers.GetOpenTrips(db))
				trips.GET("/awarded", handlers.GetAwardedTrips(db))
				trips.GET("/distance", handlers.GetDistance(geocoder))
				trips.GET("/:tripId", handlers.GetTripDetails(db))
				trips.PUT("/:tripId", handlers.UpdateTrip(db))
				trips.PATCH("/:tripId/status", handlers.UpdateTripStatus(db))

				trips.POST("/:tripId/bidding/start", handlers.StartBidding(dispatcher))
				trips.POST("/:tripId/counter-offers", handlers.SubmitCounterOffer(db, hub))
				trips.GET("/:tripId/counter-offers", handlers.GetCounterOffers(db))
				trips.POST("/:tripId/bids", handlers.SubmitBid(db, hub))
				trips.GET("/:tripId/bids", handlers.GetBids(db))
				trips.POST("/:tripId/accept", handlers.AcceptBid(db, hub))

				trips.POST("/:tripId/payment/verify", handlers.VerifyTripPayment(db))
				trips.POST("/:tripId/receipts/gr", handlers.UploadGoodsReceipt(db, hub))
				trips.POST("/:tripId/receipts/bill", handlers.UploadBillReceipt(db, hub))
			}

			// Vehicle routes
			vehicles := protected.Group("/vehicles")
			{
				vehicles.POST("", handlers.RegisterVehicle(db))
				vehicles.GET("", handlers.GetMyVehicles(db))
				vehicles.POST("/:vehicleId/broker", handlers.AssignBroker(db))
				vehicles.POST("/:vehicleId/driver", handlers.AssignDriver(db))
				vehicles.PATCH("/:vehicleId/bidding-authorization", handlers.UpdateBiddingAuthorization(db))
			}

			// Payment routes
			payments := protected.Group("/payments")
			{
				payments.POST("/checkout", handlers.Checkout())
			}

			// Wallet routes
			wallet := protected.Group("/wallet")
			{
				wallet.GET("", handlers.GetWallet(db))
				wallet.POST("/topup/verify", handlers.VerifyWalletTopUp(db))
				wallet.POST("/withdraw", handlers.WithdrawFromWallet(db))
			}

			// Notification routes
			notifications := protected.Group("/notifications")
			{
				notifications.POST("/register-token", handlers.RegisterPushToken(db))
				notifications.DELETE("/remove-token", handlers.RemovePushToken(db))
				notifications.GET("/trips", handlers.GetTripNotifications(db))
			}
		}
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	if err := r.Run(":" + port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
