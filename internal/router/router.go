package router

import (
	"net/http"

	"servicehub/config"
	"servicehub/internal/domain"
	"servicehub/internal/handler"
	"servicehub/internal/middleware"
	"servicehub/internal/repository"
	"servicehub/internal/service"
	"servicehub/internal/ws"
	"servicehub/pkg/cloudinary"
	"servicehub/pkg/payment"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func Setup(cfg *config.Config, db *gorm.DB, cloud cloudinary.Client) *gin.Engine {
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	handler.RegisterValidators()

	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestID(), middleware.AccessLog())
	limiter := middleware.NewInMemoryRateLimiter(cfg.RateLimit.Requests, cfg.RateLimit.Window)

	userHub := ws.NewHub()
	bookingHub := ws.NewBookingHub()

	// Services
	var images service.ImageUploader
	if cloud != nil {
		images = cloud
	}
	notifSvc := service.NewNotificationService(repository.NewNotificationRepository(db), userHub)
	authSvc := service.NewAuthService(cfg, db)
	biddingSvc := service.NewBiddingService(db, notifSvc, images, cfg.Cloudinary.Folder)
	bookingSvc := service.NewBookingService(db, notifSvc, bookingHub, &payment.StubProvider{}, cfg.Marketplace.Currency, cfg.Marketplace.MaxMessageLen)
	walletSvc := service.NewWalletService(db)
	providerSvc := service.NewProviderService(db)

	// Handlers
	authHandler := handler.NewAuthHandler(authSvc)
	googleOAuthHandler := handler.NewGoogleOAuthHandler(cfg, authSvc)
	requestHandler := handler.NewServiceRequestHandler(biddingSvc, cfg.Marketplace)
	bookingHandler := handler.NewBookingHandler(bookingSvc, biddingSvc, cfg.Marketplace)
	walletHandler := handler.NewWalletHandler(walletSvc, cfg.Marketplace)
	notificationHandler := handler.NewNotificationHandler(notifSvc, cfg.Marketplace)
	providerHandler := handler.NewProviderHandler(providerSvc)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := r.Group("/api/v1")
	{
		public := v1.Group("", middleware.RateLimit(limiter))
		public.POST("/auth/register", authHandler.Register)
		public.POST("/auth/login", authHandler.Login)
		public.POST("/auth/refresh", authHandler.Refresh)
		public.GET("/auth/google", googleOAuthHandler.Redirect)
		public.GET("/auth/google/callback", googleOAuthHandler.Callback)
		public.GET("/categories", providerHandler.ListCategories)
		public.GET("/providers/:id", providerHandler.GetProfile)

		authed := v1.Group("", middleware.AuthRequired(&cfg.JWT), middleware.RateLimit(limiter))
		authed.GET("/me", authHandler.Me)
		authed.PUT("/me/provider-profile", middleware.RequireRole(domain.RoleProvider), providerHandler.UpdateProfile)
		authed.GET("/me/wallet", walletHandler.GetBalance)
		authed.GET("/me/wallet/transactions", walletHandler.ListTransactions)
		authed.POST("/me/wallet/withdraw", middleware.RequireRole(domain.RoleProvider), walletHandler.Withdraw)
		authed.GET("/me/notifications", notificationHandler.List)
		authed.PUT("/me/notifications/:id/read", notificationHandler.MarkRead)
		authed.POST("/categories", middleware.AdminRequired(), providerHandler.CreateCategory)

		sr := authed.Group("/service-requests")
		sr.POST("", requestHandler.Create)
		sr.GET("", requestHandler.List)
		sr.POST("/bid", requestHandler.PlaceBid)
		sr.POST("/accept-bid", requestHandler.AcceptBid)
		sr.GET("/provider-bids/:providerId", requestHandler.ProviderBids)
		sr.GET("/:id", requestHandler.Get)
		sr.GET("/:id/bids", requestHandler.ListBids)
		sr.POST("/:id/images", requestHandler.UploadImage)

		bk := authed.Group("/bookings")
		bk.POST("", bookingHandler.Create)
		bk.GET("", bookingHandler.List)
		bk.GET("/:id", bookingHandler.Get)
		bk.PUT("/:id/status", bookingHandler.SetStatus)
		bk.GET("/:id/messages", bookingHandler.ListMessages)
		bk.POST("/:id/messages", bookingHandler.SendMessage)
		bk.POST("/:id/start", bookingHandler.Start)
		bk.POST("/:id/provider-complete", bookingHandler.ProviderComplete)
		bk.POST("/:id/confirm-release", bookingHandler.ConfirmRelease)
		bk.POST("/:id/dispute", bookingHandler.Dispute)
		bk.POST("/:id/cancel", bookingHandler.Cancel)
		bk.POST("/:id/pay", bookingHandler.Pay)
	}

	wsGroup := r.Group("/ws")
	wsGroup.GET("/notifications", ws.UpgradeNotificationsWS(&cfg.JWT, userHub))
	wsGroup.GET("/bookings/:id/messages", ws.UpgradeBookingMessagesWS(&cfg.JWT, bookingHub, bookingSvc))

	return r
}
