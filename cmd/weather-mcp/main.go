package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/spf13/cobra"

	"weather-mcp/internal/config"
	"weather-mcp/internal/geo"
	"weather-mcp/internal/logger"
	"weather-mcp/internal/mcp"
	"weather-mcp/internal/tools"
	"weather-mcp/internal/weather"
	"weather-mcp/internal/weather/providers"
)

func main() {
	var (
		flagHost   string
		flagPort   string
		flagAPIKey string
	)

	rootCmd := &cobra.Command{
		Use:   "weather-mcp",
		Short: "MCP weather server over SSE",
		Long:  "Exposes OpenWeatherMap-backed weather tools to MCP clients over an SSE transport.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if flagHost != "" {
				cfg.Host = flagHost
			}
			if flagPort != "" {
				cfg.Port = flagPort
			}
			if flagAPIKey != "" {
				cfg.OpenWeatherAPIKey = flagAPIKey
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			return run(cfg)
		},
	}

	rootCmd.Flags().StringVar(&flagHost, "host", "", "bind address (default 127.0.0.1)")
	rootCmd.Flags().StringVar(&flagPort, "port", "", "bind port (default 3001)")
	rootCmd.Flags().StringVar(&flagAPIKey, "api-key", "", "OpenWeatherMap API key")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(cfg *config.AppConfig) error {
	log := logger.New()

	// Shared HTTP client for outbound provider calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	provider := providers.NewOpenWeatherProvider(httpClient, cfg.OpenWeatherAPIKey)

	// Reverse geocoding is optional; a nil resolver disables it.
	resolver := geo.NewResolver(cfg.GeocoderAPIKey)
	var addrResolver weather.AddressResolver
	if resolver != nil {
		addrResolver = resolver
	}

	service := weather.NewService(provider, addrResolver, log)

	// The tool table is built once here and read-only afterwards.
	registry := mcp.NewRegistry()
	if err := tools.Register(registry, service); err != nil {
		return fmt.Errorf("failed to register tools: %w", err)
	}
	log.Info("tools registered", "count", registry.Count())

	sessions := mcp.NewSessionStore()
	server := mcp.NewServer(registry, sessions, log)

	reaper := mcp.NewReaper(sessions, cfg.SessionIdleTTL, log)
	if err := reaper.Start(); err != nil {
		return fmt.Errorf("failed to start session reaper: %w", err)
	}
	defer reaper.Stop()

	app := fiber.New(fiber.Config{
		AppName:               "weather-mcp",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error":   true,
				"message": err.Error(),
			})
		},
	})

	app.Use(fiberlogger.New())
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":   "ok",
			"service":  "weather-mcp",
			"sessions": sessions.Len(),
		})
	})

	server.RegisterRoutes(app)

	go func() {
		log.Info("listening", "addr", cfg.Addr())
		if err := app.Listen(cfg.Addr()); err != nil {
			log.Error("server stopped", "error", err)
		}
	}()

	// Wait for termination signal.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error("shutdown failed", "error", err)
	}
	return nil
}
