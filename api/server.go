package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/OldStager01/energy-intelligence/api/handlers"
	"github.com/OldStager01/energy-intelligence/api/middleware"
	"github.com/OldStager01/energy-intelligence/api/websocket"
	_ "github.com/OldStager01/energy-intelligence/docs"
	"github.com/OldStager01/energy-intelligence/internal/metrics"
	"github.com/OldStager01/energy-intelligence/pkg/config"
	"github.com/OldStager01/energy-intelligence/pkg/models"
)

// Dependencies are the parts of the running gateway the HTTP layer serves.
type Dependencies struct {
	Gateway handlers.Gateway
	State   handlers.StateReporter

	// Gatherer, when set, is exposed at GET /metrics.
	Gatherer prometheus.Gatherer

	// Metrics receives the stream client count. May be nil.
	Metrics *metrics.Metrics

	// Events, when set, are forwarded to /ws/realtime clients.
	Events <-chan *models.Event
}

type Server struct {
	router     *gin.Engine
	httpServer *http.Server
	config     config.APIConfig
	deps       Dependencies
	wsHub      *websocket.Hub
	wsBridge   *websocket.EventBridge
	hubCancel  context.CancelFunc
}

func NewServer(cfg config.APIConfig, mode string, deps Dependencies) *Server {
	if mode == "development" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	hubCtx, hubCancel := context.WithCancel(context.Background())
	wsHub := websocket.NewHub(deps.Metrics.SetStreamClients)

	s := &Server{
		router:    gin.New(),
		config:    cfg,
		deps:      deps,
		wsHub:     wsHub,
		hubCancel: hubCancel,
	}

	s.setupMiddleware()
	s.setupRoutes()

	go wsHub.Run(hubCtx)

	if deps.Events != nil {
		s.wsBridge = websocket.NewEventBridge(wsHub, deps.Events)
		s.wsBridge.Start()
	}

	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(gin.Recovery())
	s.router.Use(middleware.TraceID())
	s.router.Use(middleware.CORS(corsConfig(s.config.CORS)))
	s.router.Use(middleware.SecurityHeaders())
	s.router.Use(middleware.RequestLogger("/health", "/health/live", "/health/ready", "/metrics"))
}

func corsConfig(c config.CORSConfig) middleware.CORSConfig {
	cors := middleware.DefaultCORSConfig()
	if len(c.AllowedOrigins) > 0 {
		cors.AllowOrigins = c.AllowedOrigins
	}
	if len(c.AllowedMethods) > 0 {
		cors.AllowMethods = c.AllowedMethods
	}
	if len(c.AllowedHeaders) > 0 {
		cors.AllowHeaders = c.AllowedHeaders
	}
	cors.AllowCredentials = c.AllowCredentials
	return cors
}

func (s *Server) setupRoutes() {
	checker, _ := s.deps.Gateway.(handlers.HealthChecker)
	healthHandler := handlers.NewHealthHandler(s.deps.State, checker)
	realtimeHandler := handlers.NewRealtimeHandler(s.deps.Gateway)

	s.router.GET("/health", healthHandler.Health)
	s.router.GET("/health/ready", healthHandler.Ready)
	s.router.GET("/health/live", healthHandler.Live)

	realtime := s.router.Group("/realtime")
	{
		realtime.GET("/power", realtimeHandler.Power)
		realtime.GET("/predict", realtimeHandler.Predict)
		realtime.GET("/vm", realtimeHandler.VM)
	}

	s.router.GET("/ws/realtime", websocket.ServeWebSocket(s.wsHub))

	if s.deps.Gatherer != nil {
		s.router.GET("/metrics", gin.WrapH(metrics.Handler(s.deps.Gatherer)))
	}

	s.router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}

func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.config.Port)

	idleTimeout := s.config.IdleTimeout
	if idleTimeout == 0 {
		idleTimeout = 60 * time.Second
	}

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  idleTimeout,
	}

	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.wsBridge != nil {
		s.wsBridge.Stop()
	}
	s.hubCancel()

	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) Router() *gin.Engine {
	return s.router
}

func (s *Server) WebSocketHub() *websocket.Hub {
	return s.wsHub
}
