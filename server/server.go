package server

import (
	"context"
	"time"

	"mangaverse/application"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

// Handlers groups the application handlers the HTTP surface dispatches to
type Handlers struct {
	Game    application.GameHandler
	Reward  application.RewardHandler
	Account application.AccountHandler
	Airdrop application.AirdropHandler
	Rating  application.RatingHandler
}

// RequestRecorder receives one observation per served request
type RequestRecorder interface {
	RecordHTTPRequest(method, route string, status int, duration time.Duration)
}

// Options configures the HTTP server
type Options struct {
	AdminToken   string
	Recorder     RequestRecorder
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Server serves the settlement HTTP API
type Server struct {
	app *fiber.App
}

// New builds the fiber app and registers every route
func New(handlers Handlers, opts Options) *Server {
	if opts.ReadTimeout <= 0 {
		opts.ReadTimeout = 10 * time.Second
	}
	if opts.WriteTimeout <= 0 {
		// airdrop claims wait for chain confirmation
		opts.WriteTimeout = 60 * time.Second
	}

	app := fiber.New(fiber.Config{
		AppName:               "mangaverse",
		DisableStartupMessage: true,
		ErrorHandler:          errorHandler,
		ReadTimeout:           opts.ReadTimeout,
		WriteTimeout:          opts.WriteTimeout,
	})

	app.Use(recover.New())
	app.Use(requestObserver(opts.Recorder))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.SendString("OK")
	})

	adminOnly := adminAuth(opts.AdminToken)
	setupGameRoutes(app, handlers.Game)
	setupRewardRoutes(app, handlers.Reward, adminOnly)
	setupUserRoutes(app, handlers.Account, handlers.Airdrop, adminOnly)
	setupReferralRoutes(app, handlers.Account)
	setupContentRoutes(app, handlers.Rating)

	return &Server{app: app}
}

// App exposes the underlying fiber app
func (s *Server) App() *fiber.App {
	return s.app
}

// Listen blocks serving addr until the server is shut down
func (s *Server) Listen(addr string) error {
	return s.app.Listen(addr)
}

// Shutdown stops accepting connections and waits for in-flight requests
func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}
