package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"salonbook/internal/auth"
	"salonbook/internal/cache"
	"salonbook/internal/config"
	"salonbook/internal/database"
	"salonbook/internal/external"
	"salonbook/internal/handlers"
	"salonbook/internal/logger"
	"salonbook/internal/messaging"
	"salonbook/internal/middleware"
	"salonbook/internal/notify"
	"salonbook/internal/repository"
	"salonbook/internal/repository/memory"
	"salonbook/internal/search"
	"salonbook/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server представляет HTTP сервер API
type Server struct {
	router   *gin.Engine
	config   *config.Config
	db       *database.DB
	nats     *messaging.NATSClient
	redis    *cache.RedisClient
	search   *search.ElasticsearchClient
	line     *external.LineClient
	services *service.Services
	repos    *repository.Repositories
}

// NewServer создает новый экземпляр сервера. Optional backends (NATS, Redis,
// Elasticsearch, LINE, storage) are skipped when not configured.
func NewServer(cfg *config.Config) *Server {
	gin.SetMode(cfg.GinMode)

	server := &Server{config: cfg}

	if cfg.Store == config.StoreMemory {
		logger.Get().Warn("Using in-memory store; data is lost on restart")
		server.repos = memory.New().Repositories()
	} else {
		db, err := database.Connect(cfg.Database)
		if err != nil {
			logger.Fatal("Failed to connect to database", "error", err)
		}
		if err := db.RunMigrations(); err != nil {
			logger.Fatal("Failed to run migrations", "error", err)
		}
		server.db = db
		server.repos = repository.NewRepositories(db)
	}

	deps := service.Deps{}

	if cfg.NATS.Enabled {
		natsClient, err := messaging.NewNATSClient(cfg.NATS)
		if err != nil {
			logger.Fatal("Failed to connect to NATS", "error", err)
		}
		server.nats = natsClient
		deps.Publisher = natsClient
	}

	if cfg.Redis.Enabled {
		redisClient, err := cache.NewRedisClient(cfg.Redis)
		if err != nil {
			logger.Get().Warn("Redis unavailable, continuing without cache", "error", err)
		} else {
			server.redis = redisClient
			deps.Cache = redisClient
			deps.Reminders = redisClient
		}
	}

	if cfg.Elasticsearch.Enabled {
		es, err := search.NewElasticsearchClient(cfg.Elasticsearch)
		if err != nil {
			logger.Get().Warn("Elasticsearch unavailable, search falls back to database", "error", err)
		} else {
			server.search = es
			deps.Index = es
		}
	}

	if cfg.Line.AccessToken != "" || cfg.Line.ChannelSecret != "" {
		server.line = external.NewLineClient(cfg.Line)
		deps.Chat = server.line
	}

	if cfg.Storage.BaseURL != "" {
		deps.Storage = external.NewStorageClient(cfg.Storage)
	}

	switch {
	case cfg.NotifyMode == config.NotifyQueue && server.nats != nil:
		deps.Notifier = notify.NewQueue(server.nats)
	case server.line != nil:
		deps.Notifier = notify.NewDirect(server.line)
	default:
		logger.Get().Warn("No notification channel configured; customers will not be notified")
	}

	server.services = service.NewServices(server.repos, deps, service.Options{
		AdmissionRule: cfg.AdmissionRule,
		BaseURL:       cfg.BaseURL,
		LiffID:        cfg.LiffID,
	})

	router := gin.New()
	router.Use(middleware.RequestID())
	router.Use(middleware.Recovery())
	router.Use(middleware.CORS())
	router.Use(middleware.Logger())
	router.Use(middleware.Metrics())
	router.Use(middleware.Timeout(cfg.RequestTimeout))
	server.router = router

	server.setupRoutes()

	logger.Get().Info("API server configured",
		"store", cfg.Store,
		"admission_rule", server.services.Bookings.Rule(),
		"notify_mode", cfg.NotifyMode,
		"nats", server.nats != nil,
		"redis", server.redis != nil,
		"elasticsearch", server.search != nil)

	return server
}

// setupRoutes настраивает все API роуты
func (s *Server) setupRoutes() {
	var verifier handlers.SignatureVerifier
	if s.line != nil && s.config.Line.ChannelSecret != "" {
		verifier = s.line
	}
	h := handlers.NewHandlers(s.services, verifier)

	api := s.router.Group("/api")
	{
		services := api.Group("/services")
		{
			services.GET("", h.ListServices)
			services.GET("/search", h.SearchServices)
		}

		bookings := api.Group("/bookings")
		{
			bookings.POST("", h.CreateBooking)
			bookings.GET("/:id", h.GetBooking)
			bookings.PUT("/:id/customer", h.UpdateBookingCustomer)
		}

		customers := api.Group("/customers/:lineUserId")
		{
			customers.GET("/latest", h.LatestCustomer)
			customers.GET("/bookings", h.CustomerBookings)
		}

		promptpay := api.Group("/promptpay")
		{
			promptpay.POST("/generate", h.CustomerGenerateQR)
			promptpay.GET("/qr.png", h.QRImage)
		}

		api.POST("/line/webhook", h.LineWebhook)

		// Admin endpoints require X-Admin-Token
		admin := api.Group("/admin", middleware.AdminAuth(auth.NewGuard(s.config.AdminToken)))
		{
			admin.GET("/bookings", h.ListAdminBookings)
			admin.POST("/bookings/:id/approve", h.ApproveBooking)
			admin.POST("/bookings/:id/reject", h.RejectBooking)
			admin.POST("/bookings/:id/confirm-qr", h.ConfirmQRPayment)

			admin.POST("/services", h.CreateService)
			admin.POST("/services/reindex", h.ReindexServices)
			admin.PUT("/services/:id", h.UpdateService)
			admin.DELETE("/services/:id", h.DeleteService)
			admin.PUT("/deposits", h.UpdateDeposits)

			admin.GET("/promptpay/settings", h.GetPromptPaySettings)
			admin.POST("/promptpay/settings", h.SavePromptPaySettings)
			admin.POST("/promptpay/generate", h.AdminGenerateQR)

			admin.GET("/reports/daily", h.DailyReport)
		}
	}

	s.router.GET("/health", s.healthCheck)
	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

// healthCheck обрабатывает health check запросы
func (s *Server) healthCheck(c *gin.Context) {
	response := gin.H{
		"status":  "ok",
		"service": "salonbook-api",
		"version": "1.0.0",
	}

	if s.db != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		check := s.db.HealthCheck(ctx)
		response["database"] = check
		if check.Status != "healthy" {
			response["status"] = "degraded"
			c.JSON(http.StatusServiceUnavailable, response)
			return
		}
	}

	// Optional backends are reported but do not fail the check
	if s.redis != nil {
		response["redis"] = backendStatus(s.redis.Ping(c.Request.Context()))
	}
	if s.search != nil {
		response["elasticsearch"] = backendStatus(s.search.HealthCheck(c.Request.Context()))
	}

	c.JSON(http.StatusOK, response)
}

func backendStatus(err error) string {
	if err != nil {
		return "unhealthy: " + err.Error()
	}
	return "healthy"
}

// Run запускает HTTP сервер
func (s *Server) Run() error {
	addr := fmt.Sprintf(":%s", s.config.Port)
	return s.router.Run(addr)
}

// GetRouter возвращает роутер для тестирования
func (s *Server) GetRouter() *gin.Engine {
	return s.router
}

// Cleanup закрывает соединения
func (s *Server) Cleanup() error {
	if s.nats != nil {
		if err := s.nats.Close(); err != nil {
			logger.Get().Error("Error closing NATS connection", "error", err)
		}
	}

	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			logger.Get().Error("Error closing Redis connection", "error", err)
		}
	}

	if s.db != nil {
		if err := s.db.Close(); err != nil {
			logger.Get().Error("Error closing database connection", "error", err)
			return err
		}
	}

	return nil
}
