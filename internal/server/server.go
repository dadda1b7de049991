package server

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"

	"drivebook/internal/auth"
	"drivebook/internal/booking"
	"drivebook/internal/company"
	"drivebook/internal/config"
	"drivebook/internal/email"
	"drivebook/internal/user"
	"drivebook/internal/vehicle"
	"drivebook/internal/wallet"
)

type Server struct {
	router *gin.Engine
	http   *http.Server
	db     *sqlx.DB
	config *config.Config
	email  *email.Service
}

func New(db *sqlx.DB, cfg *config.Config, emailService *email.Service) *Server {
	router := gin.Default()
	router.Use(corsMiddleware())
	router.Use(RequestLoggingMiddleware())
	router.Use(MetricsMiddleware())

	userRepo := user.NewRepository(db)
	companyRepo := company.NewRepository(db)
	vehicleRepo := vehicle.NewRepository(db)
	walletRepo := wallet.NewRepository(db)
	bookingRepo := booking.NewRepository(db)

	walletService := wallet.NewService(walletRepo, companyRepo, userRepo, emailService, cfg.CommissionRateBps, cfg.PayoutHoldDays, cfg.MinWithdrawalCents)

	userHandler := user.NewHandler(user.NewService(userRepo, cfg.JWTSecret))
	companyHandler := company.NewHandler(company.NewService(companyRepo))
	vehicleHandler := vehicle.NewHandler(vehicle.NewService(vehicleRepo, companyRepo))
	walletHandler := wallet.NewHandler(walletService)
	bookingHandler := booking.NewHandler(booking.NewService(bookingRepo, vehicleRepo, companyRepo, walletService, emailService))

	public := router.Group("/auth")
	public.Use(RateLimitMiddleware(5, 10))
	{
		public.POST("/register", userHandler.Register)
		public.POST("/login", userHandler.Login)
		public.POST("/refresh", userHandler.Refresh)
	}

	authMiddleware := auth.AuthMiddleware(cfg.JWTSecret)
	protected := router.Group("/")
	protected.Use(authMiddleware)
	{
		protected.GET("/me", userHandler.GetMe)

		protected.GET("/vehicles", vehicleHandler.ListVehicles)
		protected.GET("/vehicles/:vehicleID", vehicleHandler.GetVehicle)
		protected.GET("/vehicles/:vehicleID/availability", bookingHandler.CheckAvailability)
		protected.POST("/vehicles/:vehicleID/bookings", bookingHandler.CreateBooking)

		protected.GET("/bookings", bookingHandler.ListMyBookings)
		protected.GET("/bookings/:bookingID", bookingHandler.GetBooking)
		protected.POST("/bookings/:bookingID/cancel", bookingHandler.CancelBooking)
	}

	ownerMiddleware := auth.RequireRole(auth.RoleOwner)
	pro := router.Group("/pro")
	pro.Use(authMiddleware, ownerMiddleware)
	{
		pro.POST("/companies", companyHandler.CreateCompany)
		pro.GET("/companies", companyHandler.ListMyCompanies)
		pro.PUT("/companies/:companyID", companyHandler.UpdateCompany)

		pro.POST("/vehicles", vehicleHandler.CreateVehicle)
		pro.GET("/companies/:companyID/vehicles", vehicleHandler.ListCompanyVehicles)
		pro.PUT("/vehicles/:vehicleID", vehicleHandler.UpdateVehicle)
		pro.PATCH("/vehicles/:vehicleID/availability", vehicleHandler.SetAvailability)
		pro.DELETE("/vehicles/:vehicleID", vehicleHandler.DeleteVehicle)

		pro.GET("/companies/:companyID/bookings", bookingHandler.ListCompanyBookings)
		pro.GET("/vehicles/:vehicleID/bookings", bookingHandler.ListVehicleBookings)
		pro.POST("/bookings/:bookingID/confirm", bookingHandler.ConfirmBooking)
		pro.POST("/bookings/:bookingID/no-show", bookingHandler.MarkNoShow)
		pro.POST("/bookings/:bookingID/pick-up", bookingHandler.RecordPickup)
		pro.POST("/bookings/:bookingID/return", bookingHandler.RecordReturn)
		pro.POST("/bookings/:bookingID/complete", bookingHandler.CompleteBooking)

		pro.GET("/companies/:companyID/wallet", walletHandler.GetWallet)
		pro.GET("/companies/:companyID/wallet/transactions", walletHandler.ListTransactions)
		pro.POST("/companies/:companyID/wallet/withdrawals", walletHandler.RequestWithdrawal)
		pro.GET("/companies/:companyID/wallet/withdrawals", walletHandler.ListWithdrawals)
	}

	adminMiddleware := auth.RequireRole(auth.RoleAdmin)
	admin := router.Group("/admin")
	admin.Use(authMiddleware, adminMiddleware)
	{
		admin.GET("/companies", companyHandler.ListAllCompanies)
		admin.POST("/companies/:companyID/activate", companyHandler.ActivateCompany)
		admin.POST("/companies/:companyID/deactivate", companyHandler.DeactivateCompany)

		admin.GET("/withdrawals", walletHandler.ListPendingWithdrawals)
		admin.POST("/withdrawals/:requestID/approve", walletHandler.ApproveWithdrawal)
		admin.POST("/withdrawals/:requestID/reject", walletHandler.RejectWithdrawal)
		admin.POST("/withdrawals/:requestID/complete", walletHandler.CompleteWithdrawal)
	}

	router.GET("/health", Health)
	router.GET("/metrics", Metrics())
	router.GET("/test-email", TestEmail(emailService))
	SetupSwagger(router)

	return &Server{
		router: router,
		db:     db,
		config: cfg,
		email:  emailService,
	}
}

func (s *Server) Router() *gin.Engine {
	return s.router
}

func (s *Server) Start(port string) error {
	s.http = &http.Server{
		Addr:    ":" + port,
		Handler: s.router,
	}
	return s.http.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.http == nil {
		return nil
	}
	return s.http.Shutdown(ctx)
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}
