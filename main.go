package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/evidenceledger/webidtls/internal/server"
)

var (
	adminPassword  string
	port           string
	baseURL        string
	dbPath         string
	profileTimeout time.Duration
	tokenExpiry    time.Duration
	development    bool
)

func main() {
	// The password for admin screens
	flag.StringVar(&adminPassword, "admin-password", "", "Admin password for the server")

	// The URL and port for the WebID-TLS server
	flag.StringVar(&port, "port", "8090", "Port for the server")
	flag.StringVar(&baseURL, "url", "", "Public URL of the server, used as token issuer")

	flag.StringVar(&dbPath, "db", "./data/webidtls.db", "Path to the SQLite database")
	flag.DurationVar(&profileTimeout, "profile-timeout", 10*time.Second, "Timeout for profile document fetches")
	flag.DurationVar(&tokenExpiry, "token-expiry", time.Hour, "Lifetime of issued WebID tokens")
	flag.BoolVar(&development, "dev", false, "Development mode: reload templates from disk")

	flag.Parse()

	// Initialize logging
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
	slog.SetDefault(logger)

	// Get admin password from command line (priority) or environment variable
	if adminPassword == "" {
		adminPassword = os.Getenv("WEBIDTLS_ADMIN_PASSWORD")
		if adminPassword == "" {
			slog.Error("Admin password required. Set WEBIDTLS_ADMIN_PASSWORD environment variable")
			os.Exit(1)
		}
	}

	if baseURL == "" {
		baseURL = os.Getenv("WEBIDTLS_URL")
		if baseURL == "" {
			baseURL = "https://webid.evidenceledger.eu"
		}
	}

	// Create the configuration
	cfg := server.Config{
		Development:    development,
		Port:           port,
		BaseURL:        baseURL,
		DBPath:         dbPath,
		AdminPassword:  adminPassword,
		ProfileTimeout: profileTimeout,
		TokenExpiry:    tokenExpiry,
	}

	// Create the server. This initializes the HTTP service and the database.
	srv, err := server.New(cfg)
	if err != nil {
		slog.Error("Server initialization failed", "error", err)
		os.Exit(1)
	}

	// Setup graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		slog.Info("Shutdown signal received")
		cancel()
	}()

	// Start server
	if err := srv.Start(ctx); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}
