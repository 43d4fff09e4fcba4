package server

import (
	"context"
	"net/http"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/franckalain/fittrack/internal/tracker"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// DefaultAllowedOrigins are the dev servers a browser UI usually runs on.
var DefaultAllowedOrigins = []string{"http://localhost:3000", "http://localhost:5173"}

type Server struct {
	tracker        *tracker.Tracker
	log            zerolog.Logger
	clients        sync.Map // client ID -> *client
	pending        sync.Map // analysis ID -> pendingAnalysis awaiting log_food
	allowedOrigins []string
	timeout        time.Duration
	debug          bool
	metrics        prometheus.Gatherer
	upgrader       websocket.Upgrader
}

// Option configures a Server.
type Option func(*Server)

// WithAllowedOrigins sets the origins allowed by CORS and the socket upgrade.
func WithAllowedOrigins(origins []string) Option {
	return func(s *Server) {
		if len(origins) > 0 {
			s.allowedOrigins = origins
		}
	}
}

// WithTimeout bounds every backend call made for a message.
func WithTimeout(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithDebug enables gin's debug mode and per-message logging.
func WithDebug(debug bool) Option {
	return func(s *Server) { s.debug = debug }
}

// WithMetrics exposes g on GET /metrics.
func WithMetrics(g prometheus.Gatherer) Option {
	return func(s *Server) { s.metrics = g }
}

func New(t *tracker.Tracker, log zerolog.Logger, opts ...Option) *Server {
	s := &Server{
		tracker:        t,
		log:            log,
		allowedOrigins: DefaultAllowedOrigins,
		timeout:        15 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     s.checkOrigin,
	}
	if s.debug {
		s.log.Debug().Msg("Debug logging enabled")
	}
	return s
}

// Handler returns the HTTP routes. Files under staticDir are served for
// any other path; an empty staticDir serves nothing.
func (s *Server) Handler(staticDir string) http.Handler {
	if s.debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger())

	config := cors.DefaultConfig()
	config.AllowOrigins = s.allowedOrigins
	config.AllowMethods = []string{"GET", "OPTIONS"}
	config.AllowHeaders = []string{"Origin", "Content-Type"}
	r.Use(cors.New(config))

	r.GET("/health", s.handleHealth)
	r.GET("/ws", s.handleWebSocket)
	if s.metrics != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.metrics, promhttp.HandlerOpts{
			ErrorHandling: promhttp.ContinueOnError,
		})))
	}
	api := r.Group("/api")
	{
		api.GET("/dashboard", s.handleDashboard)
	}

	if staticDir != "" {
		fs := http.FileServer(http.Dir(staticDir))
		r.NoRoute(gin.WrapH(fs))
	}
	return r
}

// Start serves on port until SIGINT or SIGTERM, then shuts down.
func (s *Server) Start(port, staticDir string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           s.Handler(staticDir),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.log.Info().Str("port", port).Msg("Starting server")
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return errors.Wrap(err, "listen")
	case <-ctx.Done():
	}

	s.log.Info().Msg("Shutting down server...")
	s.closeClients()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" || origin == "http://"+r.Host || origin == "https://"+r.Host {
		return true
	}
	for _, o := range s.allowedOrigins {
		if o == "*" || o == origin {
			return true
		}
	}
	return false
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.log.Debug().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("elapsed", time.Since(start)).
			Msg("http request")
	}
}

func (s *Server) handleHealth(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), s.timeout)
	defer cancel()
	backend := s.tracker.Health(ctx)
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"backend": backend.Value,
		"mode":    backend.Status.String(),
	})
}

func (s *Server) handleDashboard(c *gin.Context) {
	c.JSON(http.StatusOK, s.tracker.Dashboard())
}
