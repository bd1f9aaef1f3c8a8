package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"shecare/internal/config"
	"shecare/internal/events"
	"shecare/internal/middleware"
	"shecare/internal/modules/admin"
	"shecare/internal/modules/booking"
	"shecare/internal/modules/realtime"
	"shecare/internal/observability/metrics"
	"shecare/internal/pkg/jwt"
	"shecare/internal/pkg/response"
	"shecare/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Deps struct {
	Config *config.Config
	DB     *gorm.DB
	Logger *zap.Logger
	// Registry defaults to a fresh registry with Go and process collectors.
	Registry *prometheus.Registry
	// Redis is optional. Without it events stay in process.
	Redis *redis.Client
}

type Server struct {
	cfg      *config.Config
	db       *gorm.DB
	logger   *zap.Logger
	engine   *gin.Engine
	httpSrv  *http.Server
	hub      *realtime.Hub
	redisBus *events.RedisBus

	Bookings *booking.Service
	Admin    *admin.Service
}

func New(d Deps) (*Server, error) {
	if d.Config == nil || d.DB == nil {
		return nil, errors.New("server: config and db are required")
	}
	logger := d.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	reg := d.Registry
	if reg == nil {
		reg = prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}
	m := metrics.NewBookingMetrics(reg)

	hub := realtime.NewHub(m, logger.Named("realtime"))

	s := &Server{
		cfg:    d.Config,
		db:     d.DB,
		logger: logger,
		hub:    hub,
	}

	// With redis every replica relays the channel to its own sockets,
	// otherwise the hub listens on the local bus.
	var publisher booking.EventPublisher
	if d.Redis != nil {
		s.redisBus = events.NewRedisBus(d.Redis, d.Config.EventsChannel, logger.Named("events"))
		publisher = s.redisBus
	} else {
		bus := events.NewLocalBus()
		bus.Subscribe(hub.Broadcast)
		publisher = bus
	}

	jwtSvc := jwt.New(d.Config.JWTSecret, d.Config.JWTTTL)

	s.Bookings = booking.NewService(repository.NewBookingRepository(d.DB), publisher, m, logger.Named("booking"))
	s.Admin = admin.NewService(repository.NewAdminAccountRepository(d.DB), jwtSvc, d.Config.JWTTTL, logger.Named("admin"))

	bookingHandler := booking.NewHandler(s.Bookings)
	adminHandler := admin.NewHandler(s.Admin)
	realtimeHandler := realtime.NewHandler(hub, d.Config.CORSAllowedOrigins, logger.Named("realtime"))
	limiter := middleware.NewRateLimiter(d.Config.RateLimitPerMin, d.Config.RateLimitBurst, logger)

	r := gin.New()
	r.Use(
		middleware.RequestID(),
		middleware.Recovery(logger),
		middleware.RequestLogger(logger.Named("http"), m),
		middleware.CORS(d.Config.CORSAllowedOrigins),
	)

	r.GET("/health", s.health)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	v1 := r.Group("/api/v1")
	{
		// public
		bookingHandler.RegisterPublicRoutes(v1, limiter.Middleware())

		// any signed-in caller
		protected := v1.Group("")
		protected.Use(middleware.JWTAuth(jwtSvc))
		bookingHandler.RegisterSessionRoutes(protected)

		// provider admins
		adminGroup := v1.Group("/admin")
		adminGroup.Use(middleware.JWTAuth(jwtSvc), middleware.AdminOnly())
		adminHandler.RegisterRoutes(v1, adminGroup)
		bookingHandler.RegisterAdminRoutes(adminGroup)
		realtimeHandler.RegisterRoutes(adminGroup)
	}

	s.engine = r
	s.httpSrv = &http.Server{
		Addr:              ":" + d.Config.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s, nil
}

func (s *Server) Handler() http.Handler { return s.engine }

func (s *Server) health(c *gin.Context) {
	sqlDB, err := s.db.DB()
	if err == nil {
		err = sqlDB.PingContext(c.Request.Context())
	}
	if err != nil {
		response.Error(c, http.StatusServiceUnavailable, "DB_UNAVAILABLE", "database unreachable")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"status": "ok"})
}

// RelayEvents forwards the redis channel to the realtime hub until ctx is
// done. It returns immediately when redis is not configured.
func (s *Server) RelayEvents(ctx context.Context) error {
	if s.redisBus == nil {
		return nil
	}
	return s.redisBus.Run(ctx, s.hub.Broadcast)
}

// Run serves HTTP until ctx is cancelled, then drains within the configured
// grace period.
func (s *Server) Run(ctx context.Context) error {
	go func() {
		if err := s.RelayEvents(ctx); err != nil {
			s.logger.Error("event relay stopped", zap.Error(err))
		}
	}()

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", zap.String("addr", s.httpSrv.Addr))
		if err := s.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down", zap.Duration("grace", s.cfg.ShutdownGracePeriod))
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownGracePeriod)
	defer cancel()

	s.hub.Close()
	return s.httpSrv.Shutdown(shutdownCtx)
}
