package server

import (
	"context"
	"embed"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/evidenceledger/webidtls/internal/cache"
	"github.com/evidenceledger/webidtls/internal/database"
	"github.com/evidenceledger/webidtls/internal/handlers"
	htmlrender "github.com/evidenceledger/webidtls/internal/html"
	"github.com/evidenceledger/webidtls/internal/middleware"
	"github.com/evidenceledger/webidtls/internal/token"
	"github.com/evidenceledger/webidtls/webid"
)

//go:embed views/*.html
var viewsFS embed.FS

// Config is the configuration for the server
type Config struct {
	Development    bool
	Port           string
	BaseURL        string
	DBPath         string
	AdminPassword  string
	ProfileTimeout time.Duration
	TokenExpiry    time.Duration
}

// Server is the WebID-TLS authentication and issuance server
type Server struct {
	app *fiber.App
	db  *database.Database
	cfg Config
}

// New creates a new server instance. This initializes the HTTP service and
// the database.
func New(cfg Config) (*Server, error) {
	engine, err := htmlrender.NewEngine(cfg.Development, viewsFS, "./internal/server/views")
	if err != nil {
		return nil, fmt.Errorf("failed to load templates: %w", err)
	}

	app := fiber.New(fiber.Config{
		AppName: "WebID-TLS Authentication",
		Views:   engine,
	})

	app.Use(recover.New())
	app.Use(logger.New())

	db := database.New(cfg.DBPath)
	if err := db.Initialize(); err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	// Verified identities are remembered for 10 minutes so a returning
	// certificate skips the profile fetch.
	verified := cache.New(10 * time.Minute)

	tokens, err := token.NewService(cfg.BaseURL, cfg.TokenExpiry)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize token service: %w", err)
	}

	timeout := cfg.ProfileTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	verifier := webid.New(&webid.HTTPResolver{
		Client: &http.Client{Timeout: timeout},
	})

	auth := handlers.NewAuthHandlers(verifier, tokens, db, verified)
	issuance := handlers.NewIssueHandlers(db)

	admin, err := middleware.NewAdminAuth(cfg.AdminPassword)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize admin auth: %w", err)
	}

	s := &Server{
		app: app,
		db:  db,
		cfg: cfg,
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "healthy"})
	})
	app.Get("/", s.handleIndex)
	app.Get("/auth", auth.Authenticate)
	app.Post("/issue", issuance.Issue)
	app.Get("/.well-known/jwks.json", auth.JWKS)
	app.Get("/admin", admin.AuthMiddleware(), s.handleAdmin)

	return s, nil
}

func (s *Server) handleIndex(c *fiber.Ctx) error {
	return c.Render("index", fiber.Map{
		"BaseURL": s.cfg.BaseURL,
	})
}

func (s *Server) handleAdmin(c *fiber.Ctx) error {
	issued, err := s.db.ListIssued(50)
	if err != nil {
		slog.Error("Failed to list issued certificates", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Internal server error",
		})
	}

	verifications, err := s.db.ListVerifications(50)
	if err != nil {
		slog.Error("Failed to list verification attempts", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Internal server error",
		})
	}

	return c.Render("admin", fiber.Map{
		"Issued":        issued,
		"Verifications": verifications,
	})
}

// App exposes the fiber application, for tests.
func (s *Server) App() *fiber.App {
	return s.app
}

// Start starts the server and blocks until it fails or ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	slog.Info("Starting WebID-TLS server", "port", s.cfg.Port, "url", s.cfg.BaseURL)

	addr := net.JoinHostPort("0.0.0.0", s.cfg.Port)

	errChan := make(chan error, 1)
	go func() {
		if err := s.app.Listen(addr); err != nil {
			errChan <- fmt.Errorf("failed to start server: %w", err)
		}
	}()

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
		slog.Info("Shutting down server")
		defer s.db.Close()
		return s.app.Shutdown()
	}
}
