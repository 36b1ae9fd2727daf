package server

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kalasetu/artist-tracker/internal/auth"
	"github.com/kalasetu/artist-tracker/internal/common"
	"github.com/kalasetu/artist-tracker/internal/export"
	"github.com/kalasetu/artist-tracker/internal/pipeline"
	"github.com/kalasetu/artist-tracker/internal/store"
)

// Server is the HTTP API: auth, document extraction, artist records,
// job audit, export.
type Server struct {
	app      *fiber.App
	config   *common.Config
	store    *store.Store
	tokens   *auth.TokenIssuer
	pipeline *pipeline.Processor
	exporter *export.Service
	logger   *zap.Logger
}

// New wires the API server. All dependencies are constructed by the caller.
func New(cfg *common.Config, st *store.Store, tokens *auth.TokenIssuer, proc *pipeline.Processor, exporter *export.Service, log *zap.Logger) *Server {
	app := fiber.New(fiber.Config{
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  120 * time.Second,
		BodyLimit:    int(cfg.MaxUploadBytes()) + 1024*1024,
	})

	s := &Server{
		app:      app,
		config:   cfg,
		store:    st,
		tokens:   tokens,
		pipeline: proc,
		exporter: exporter,
		logger:   log,
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.app.Use(recover.New())
	s.app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))
	s.app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(s.config.Server.AllowOrigins, ","),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, PUT, DELETE, OPTIONS",
	}))

	s.app.Get("/api/health", s.handleHealth)
	s.app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	api := s.app.Group("/api")

	api.Post("/auth/register", s.handleRegister)
	api.Post("/auth/login", s.handleLogin)

	protected := api.Use(s.authMiddleware())

	protected.Get("/auth/profile", s.handleAuthProfile)

	protected.Post("/extract", s.handleExtract)

	protected.Get("/artists", s.handleListArtists)
	protected.Get("/artists/export", s.handleExportArtists)
	protected.Get("/artists/:id", s.handleGetArtist)
	protected.Delete("/artists/:id", s.handleDeleteArtist)
	protected.Post("/artists/:id/enhance", s.handleEnhanceArtist)

	protected.Get("/results", s.handleListResults)
	protected.Get("/results/:id", s.handleGetResult)

	protected.Get("/jobs", s.handleListJobs)
	protected.Get("/jobs/:id", s.handleGetJob)
}

// App exposes the fiber app for tests.
func (s *Server) App() *fiber.App { return s.app }

func (s *Server) Start() error {
	s.logger.Info("server starting", zap.String("addr", s.config.Server.Addr))
	return s.app.Listen(s.config.Server.Addr)
}

func (s *Server) Shutdown() error {
	s.logger.Info("server shutting down")
	return s.app.ShutdownWithTimeout(10 * time.Second)
}

func (s *Server) handleHealth(c *fiber.Ctx) error {
	if err := s.store.Ping(); err != nil {
		return c.Status(503).JSON(fiber.Map{"status": "degraded", "error": "database unreachable"})
	}
	return c.JSON(fiber.Map{
		"status":  "ok",
		"service": "artist-tracker",
		"time":    time.Now().UTC().Format(time.RFC3339),
	})
}

// authMiddleware verifies the Bearer token and stores the claims on the
// request context.
func (s *Server) authMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get("Authorization")
		if header == "" {
			return c.Status(401).JSON(fiber.Map{"error": "missing authorization header", "code": "AUTH_ERROR"})
		}
		tokenString := strings.TrimPrefix(header, "Bearer ")
		claims, err := s.tokens.Verify(tokenString)
		if err != nil {
			return c.Status(401).JSON(fiber.Map{"error": "invalid token", "code": "AUTH_ERROR"})
		}
		c.Locals("claims", claims)
		return c.Next()
	}
}

func claimsFrom(c *fiber.Ctx) auth.Claims {
	if cl, ok := c.Locals("claims").(auth.Claims); ok {
		return cl
	}
	return auth.Claims{}
}
