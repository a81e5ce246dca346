package api

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"property-backoffice/internal/auth"
	"property-backoffice/internal/cache"
	"property-backoffice/internal/database"
	"property-backoffice/internal/events"
	"property-backoffice/internal/leases"
	"property-backoffice/internal/vault"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RateLimiter provides simple in-memory rate limiting per endpoint
type RateLimiter struct {
	requests map[string][]time.Time
	mu       sync.Mutex
	limit    int           // max requests
	window   time.Duration // time window
}

// NewRateLimiter creates a new rate limiter
func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		requests: make(map[string][]time.Time),
		limit:    limit,
		window:   window,
	}
}

// Allow checks if a request is allowed for the given key
func (r *RateLimiter) Allow(key string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	windowStart := now.Add(-r.window)

	// Filter out old requests
	var recent []time.Time
	for _, t := range r.requests[key] {
		if t.After(windowStart) {
			recent = append(recent, t)
		}
	}

	if len(recent) >= r.limit {
		r.requests[key] = recent
		return false
	}

	r.requests[key] = append(recent, now)
	return true
}

// Server represents the HTTP API server
type Server struct {
	router       *gin.Engine
	httpServer   *http.Server
	repo         *database.Repository
	leaseService *leases.Service
	refresher    *leases.Refresher
	eventBus     *events.EventBus
	config       ServerConfig
	authService  *auth.Service
	authEnabled  bool
	vaultClient  *vault.Client
	cacheService *cache.CacheService
	summaryCache *cache.SummaryCacheService
	rateLimiter  *RateLimiter
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port            int
	Host            string
	AllowedOrigins  string
	ProductionMode  bool
	StaticFilesPath string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
}

// NewServer creates a new API server
func NewServer(
	config ServerConfig,
	repo *database.Repository,
	leaseService *leases.Service,
	refresher *leases.Refresher,
	eventBus *events.EventBus,
	authService *auth.Service, // Can be nil if auth is disabled
	vaultClient *vault.Client, // Can be nil if vault is disabled
	cacheService *cache.CacheService, // Can be nil if Redis is disabled
	summaryCache *cache.SummaryCacheService, // Can be nil if Redis is disabled
) *Server {
	// Set Gin mode
	if config.ProductionMode {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	router := gin.New()

	// Middleware
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	// CORS middleware
	corsConfig := cors.DefaultConfig()
	if config.AllowedOrigins == "" || config.AllowedOrigins == "*" {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = strings.Split(config.AllowedOrigins, ",")
		corsConfig.AllowCredentials = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization"}
	corsConfig.ExposeHeaders = []string{"Content-Length"}
	router.Use(cors.New(corsConfig))

	server := &Server{
		router:       router,
		repo:         repo,
		leaseService: leaseService,
		refresher:    refresher,
		eventBus:     eventBus,
		config:       config,
		authService:  authService,
		authEnabled:  authService != nil,
		vaultClient:  vaultClient,
		cacheService: cacheService,
		summaryCache: summaryCache,
		rateLimiter:  NewRateLimiter(300, time.Minute), // 300 requests per minute per endpoint
	}

	server.setupRoutes()

	// Initialize WebSocket hub for real-time event broadcasting
	InitWebSocket(eventBus)

	return server
}

// rateLimitMiddleware creates a middleware that rate limits requests by endpoint
func (s *Server) rateLimitMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}

		if !s.rateLimiter.Allow(path) {
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":   "Rate limit exceeded",
				"message": "Too many requests to this endpoint. Please slow down.",
				"path":    path,
			})
			c.Abort()
			return
		}
		c.Next()
	}
}

// setupRoutes configures all API routes
func (s *Server) setupRoutes() {
	// Health check
	s.router.GET("/health", s.handleHealth)

	// Auth routes (public, no authentication required)
	if s.authEnabled {
		authHandlers := auth.NewHandlers(s.authService)
		authGroup := s.router.Group("/api/auth")
		authHandlers.RegisterRoutes(authGroup, s.authService.GetJWTManager())
	}

	// Auth status endpoint (always available, returns whether auth is enabled)
	s.router.GET("/api/auth/status", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"auth_enabled": s.authEnabled,
		})
	})

	// API routes (protected when auth is enabled)
	api := s.router.Group("/api")
	api.Use(s.rateLimitMiddleware())

	if s.authEnabled {
		api.Use(auth.Middleware(s.authService.GetJWTManager()))
	}

	{
		// Tenant endpoints
		api.GET("/tenants", s.handleListTenants)
		api.POST("/tenants", s.handleCreateTenant)
		api.GET("/tenants/:id", s.handleGetTenant)

		// Unit endpoints
		api.GET("/units", s.handleListUnits)
		api.POST("/units", s.handleCreateUnit)
		api.GET("/units/:id", s.handleGetUnit)
		api.PUT("/units/:id/status", s.handleUpdateUnitStatus)

		// Lease endpoints
		api.GET("/leases", s.handleListLeases)
		api.POST("/leases", s.handleCreateLease)
		api.GET("/leases/:id", s.handleGetLease)
		api.GET("/leases/:id/initial-obligations", s.handleGetInitialObligations)
		api.POST("/leases/:id/activate", s.handleActivateLease)
		api.GET("/leases/:id/schedule", s.handleGetLeaseSchedule)
		api.GET("/leases/:id/summary", s.handleGetLeaseSummary)
		api.GET("/leases/:id/payments", s.handleGetLeasePayments)
		api.POST("/leases/:id/payments", s.handleRecordRentPayment)
		api.GET("/leases/:id/penalties", s.handleGetLeasePenalties)
		api.POST("/leases/:id/terminate", s.handleTerminateLease)

		// Payment and penalty endpoints
		api.GET("/payments/:id", s.handleGetPayment)
		api.POST("/penalties/:id/mark-paid", s.handleMarkPenaltyPaid)
	}

	// Admin endpoints (requires admin role)
	admin := api.Group("/admin")
	if s.authEnabled {
		admin.Use(auth.RequireAdmin())
	}
	{
		admin.GET("/refresher/status", s.handleRefresherStatus)
		admin.POST("/refresher/run", s.handleRunRefresher)
		admin.GET("/cache/stats", s.handleCacheStats)
	}

	// WebSocket endpoint for lease and payment events
	s.router.GET("/ws", s.handleWebSocket)

	// Serve static files (React build) in production
	if s.config.StaticFilesPath != "" {
		s.router.Static("/assets", s.config.StaticFilesPath+"/assets")
		s.router.StaticFile("/", s.config.StaticFilesPath+"/index.html")

		s.router.NoRoute(func(c *gin.Context) {
			// Unmatched API paths get a 404 JSON instead of index.html
			if len(c.Request.URL.Path) >= 4 && c.Request.URL.Path[:4] == "/api" {
				c.JSON(http.StatusNotFound, gin.H{
					"error":  "API endpoint not found",
					"path":   c.Request.URL.Path,
					"method": c.Request.Method,
				})
				return
			}

			// For non-API paths, serve index.html to support client-side routing
			c.File(s.config.StaticFilesPath + "/index.html")
		})
	}
}

// Start starts the HTTP server
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)

	readTimeout := s.config.ReadTimeout
	if readTimeout == 0 {
		readTimeout = 15 * time.Second
	}
	writeTimeout := s.config.WriteTimeout
	if writeTimeout == 0 {
		writeTimeout = 15 * time.Second
	}

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		IdleTimeout:  60 * time.Second,
	}

	log.Printf("Starting HTTP server on %s", addr)

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	log.Println("Shutting down HTTP server...")

	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}

	return nil
}

// handleHealth returns server health status
func (s *Server) handleHealth(c *gin.Context) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	// Check database health
	dbHealthy := true
	if err := s.repo.HealthCheck(ctx); err != nil {
		dbHealthy = false
	}

	cacheStatus := "disabled"
	if s.cacheService != nil {
		if s.cacheService.IsHealthy() {
			cacheStatus = "healthy"
		} else {
			cacheStatus = "unhealthy"
		}
	}

	vaultStatus := "disabled"
	if s.vaultClient != nil && s.vaultClient.IsEnabled() {
		if err := s.vaultClient.Health(ctx); err != nil {
			vaultStatus = "unhealthy"
		} else {
			vaultStatus = "healthy"
		}
	}

	if !dbHealthy {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":   "unhealthy",
			"database": "unhealthy",
			"cache":    cacheStatus,
			"vault":    vaultStatus,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   "healthy",
		"database": "healthy",
		"cache":    cacheStatus,
		"vault":    vaultStatus,
		"uptime":   time.Now().Format(time.RFC3339),
	})
}

// handleRefresherStatus returns the background refresher status
func (s *Server) handleRefresherStatus(c *gin.Context) {
	if s.refresher == nil {
		errorResponse(c, http.StatusServiceUnavailable, "refresher not running")
		return
	}
	successResponse(c, s.refresher.GetStatus())
}

// handleRunRefresher triggers an immediate status sweep across active leases
func (s *Server) handleRunRefresher(c *gin.Context) {
	if s.refresher == nil {
		errorResponse(c, http.StatusServiceUnavailable, "refresher not running")
		return
	}
	if err := s.refresher.RunNow(c.Request.Context()); err != nil {
		errorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}
	successResponse(c, gin.H{"message": "refresh completed"})
}

// handleCacheStats returns Redis cache statistics
func (s *Server) handleCacheStats(c *gin.Context) {
	if s.cacheService == nil {
		successResponse(c, gin.H{"enabled": false})
		return
	}
	successResponse(c, s.cacheService.GetStats())
}

// errorResponse is a helper to send error responses
func errorResponse(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, gin.H{
		"error":   true,
		"message": message,
	})
}

// successResponse is a helper to send success responses
func successResponse(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    data,
	})
}
