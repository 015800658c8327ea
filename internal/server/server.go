package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"coursecatalog/internal/handler"
	"coursecatalog/internal/metrics"
	"coursecatalog/internal/middleware"
	"coursecatalog/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"go.uber.org/zap"
)

// Options carries the HTTP-facing settings taken from config.
type Options struct {
	FrontendOrigins []string
	StaticDir       string
	Cookie          handler.CookieOptions
	RateLimitRPS    float64
	RateLimitBurst  int
}

// Deps are the services the router dispatches to.
type Deps struct {
	Auth    service.AuthService
	Courses service.CourseService
	Store   handler.Pinger
}

type Server struct {
	router    *gin.Engine
	opts      Options
	deps      Deps
	limiter   *middleware.RateLimiter
	logger    *zap.Logger
	accessLog *logrus.Logger
}

func NewServer(deps Deps, opts Options, logger *zap.Logger, accessLog *logrus.Logger) *Server {
	router := gin.New()

	s := &Server{
		router:    router,
		opts:      opts,
		deps:      deps,
		limiter:   middleware.NewRateLimiter(opts.RateLimitRPS, opts.RateLimitBurst, logger),
		logger:    logger,
		accessLog: accessLog,
	}

	// Setup routes
	s.setupRoutes()

	return s
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) setupRoutes() {
	s.router.Use(
		middleware.RequestID(),
		middleware.AccessLog(s.accessLog),
		gin.Recovery(),
		middleware.CORS(s.opts.FrontendOrigins),
	)

	authHandler := handler.NewAuthHandler(s.deps.Auth, s.opts.Cookie, s.logger)
	courseHandler := handler.NewCourseHandler(s.deps.Courses, s.logger)
	healthHandler := handler.NewHealthHandler(s.deps.Store, s.logger)

	// Ping route for health check
	s.router.GET("/ping", healthHandler.Ping)
	s.router.GET("/healthz", healthHandler.Healthz)
	s.router.GET("/metrics", gin.WrapH(metrics.Handler()))

	// Authentication routes
	authGroup := s.router.Group("/api/auth")
	authGroup.POST("/signup", s.limiter.Handler(), authHandler.Signup)
	authGroup.POST("/login", s.limiter.Handler(), authHandler.Login)
	authGroup.POST("/logout", authHandler.Logout)
	authGroup.GET("/check", middleware.AuthMiddleware(s.deps.Auth, s.opts.Cookie.Name), authHandler.Check)

	s.router.GET("/api/courses", courseHandler.ListCourses)

	if s.opts.StaticDir != "" {
		s.serveFrontend(s.opts.StaticDir)
	}
}

// serveFrontend serves the built SPA. Unknown non-API GETs get index.html so
// client-side routes survive a reload.
func (s *Server) serveFrontend(dir string) {
	index := filepath.Join(dir, "index.html")
	s.router.NoRoute(func(c *gin.Context) {
		if c.Request.Method != http.MethodGet || strings.HasPrefix(c.Request.URL.Path, "/api/") {
			c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
			return
		}

		rel := filepath.Clean("/" + c.Request.URL.Path)
		candidate := filepath.Join(dir, rel)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			c.File(candidate)
			return
		}
		c.File(index)
	})
}

// Run serves on port until ctx is cancelled, then drains for up to five seconds.
func (s *Server) Run(ctx context.Context, port string) error {
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	done := make(chan struct{})
	defer close(done)
	s.limiter.StartCleanup(10*time.Minute, done)

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Server starting", zap.String("port", port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	s.logger.Info("Server exited")
	return nil
}
