package server

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Trivo121/side-projects/internal/catalog"
	"github.com/Trivo121/side-projects/internal/logger"
	"github.com/Trivo121/side-projects/internal/matching"
	"github.com/Trivo121/side-projects/internal/metrics"
	"github.com/Trivo121/side-projects/internal/profile"
	"github.com/Trivo121/side-projects/internal/session"
	"github.com/Trivo121/side-projects/internal/voice"
)

const requestIDKey = "requestid"

// Config holds the HTTP server settings.
type Config struct {
	Address      string        `mapstructure:"address"`
	ReadTimeout  time.Duration `mapstructure:"read-timeout"`
	WriteTimeout time.Duration `mapstructure:"write-timeout"`
	BodyLimit    int           `mapstructure:"body-limit"`
	AccessLog    bool          `mapstructure:"access-log"`
}

// Deps are the services the handlers call.
type Deps struct {
	Recommender *matching.Recommender
	Pipeline    *voice.Pipeline
	Sessions    session.Store
	Metrics     *metrics.Metrics
	Logger      *zap.Logger
}

// Server is the fiber application with every route mounted.
type Server struct {
	app    *fiber.App
	cfg    Config
	logger *zap.Logger
}

// New builds the application.
func New(cfg Config, deps Deps) *Server {
	if cfg.ReadTimeout <= 0 {
		cfg.ReadTimeout = 60 * time.Second
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = 5 * time.Minute
	}
	if cfg.BodyLimit <= 0 {
		cfg.BodyLimit = 10 * 1024 * 1024
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Sessions == nil {
		deps.Sessions = session.NewMemoryStore(session.DefaultTTL)
	}

	app := fiber.New(fiber.Config{
		AppName:               "ribbit",
		ReadTimeout:           cfg.ReadTimeout,
		WriteTimeout:          cfg.WriteTimeout,
		BodyLimit:             cfg.BodyLimit,
		ErrorHandler:          errorHandler(deps.Logger),
		DisableStartupMessage: true,
	})

	app.Use(recover.New())
	app.Use(requestid.New(requestid.Config{
		Generator:  uuid.NewString,
		ContextKey: requestIDKey,
	}))
	if cfg.AccessLog {
		app.Use(fiberlogger.New(fiberlogger.Config{
			Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
			TimeFormat: "2006-01-02 15:04:05",
		}))
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,DELETE,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))
	if deps.Metrics != nil {
		app.Use(observe(deps.Metrics))
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now(),
		})
	})

	voiceHandler := NewVoiceHandler(deps.Pipeline, deps.Logger)
	app.Get("/languages", voiceHandler.HandleLanguages)
	app.Post("/process-text", voiceHandler.HandleProcessText)
	app.Post("/process-voice", voiceHandler.HandleProcessVoice)

	var c *catalog.Catalog
	if deps.Recommender != nil {
		c = deps.Recommender.Catalog()
	}
	matchHandler := NewMatchHandler(c, deps.Recommender, deps.Sessions, deps.Metrics, deps.Logger)

	api := app.Group("/api/v1")
	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now(),
		})
	})
	api.Get("/internships", matchHandler.HandleInternships)
	api.Post("/profiles", matchHandler.HandleCreateProfile)
	api.Get("/profiles/:id", matchHandler.HandleGetProfile)
	api.Delete("/profiles/:id", matchHandler.HandleDeleteProfile)
	api.Get("/profiles/:id/recommendations", matchHandler.HandleSessionRecommendations)
	api.Post("/recommendations", matchHandler.HandleRecommendations)

	if deps.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(deps.Metrics.Handler()))
	}

	return &Server{app: app, cfg: cfg, logger: deps.Logger}
}

// App exposes the fiber application.
func (s *Server) App() *fiber.App {
	return s.app
}

// Listen serves until Shutdown is called.
func (s *Server) Listen() error {
	addr := s.cfg.Address
	if addr == "" {
		addr = ":8000"
	}
	s.logger.Info("server starting", zap.String("address", addr))
	return s.app.Listen(addr)
}

// Shutdown stops accepting connections and waits for in-flight requests.
func (s *Server) Shutdown(timeout time.Duration) error {
	return s.app.ShutdownWithTimeout(timeout)
}

func observe(m *metrics.Metrics) fiber.Handler {
	return func(c *fiber.Ctx) error {
		started := time.Now()
		m.HTTPRequestsActive.Inc()
		defer m.HTTPRequestsActive.Dec()

		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			status = statusOf(err)
		}
		m.ObserveRequest(c.Method(), c.Route().Path, status, time.Since(started))
		return err
	}
}

func errorHandler(log *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := statusOf(err)
		body := fiber.Map{
			"error": err.Error(),
			"code":  code,
		}

		var invalid *profile.ValidationError
		if errors.As(err, &invalid) {
			body["problems"] = invalid.Problems
		}

		if code >= fiber.StatusInternalServerError {
			logger.WithFields(log, logger.RequestFields(requestID(c), "")...).
				Error("request failed", zap.String("path", c.Path()), zap.Error(err))
		}

		return c.Status(code).JSON(body)
	}
}

// statusError attaches an HTTP status to a handler error.
type statusError struct {
	Code int
	Err  error
}

func (e *statusError) Error() string { return e.Err.Error() }

func (e *statusError) Unwrap() error { return e.Err }

func withStatus(code int, err error) error {
	return &statusError{Code: code, Err: err}
}

func statusOf(err error) int {
	var se *statusError
	if errors.As(err, &se) {
		return se.Code
	}
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fe.Code
	}
	return fiber.StatusInternalServerError
}

func requestID(c *fiber.Ctx) string {
	id, _ := c.Locals(requestIDKey).(string)
	return id
}
