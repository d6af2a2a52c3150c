package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/edlbridge/api/internal/bridge"
	"github.com/edlbridge/api/internal/client"
	"github.com/edlbridge/api/internal/config"
	"github.com/edlbridge/api/internal/edl"
	"github.com/edlbridge/api/internal/handler"
	"github.com/edlbridge/api/internal/telemetry"
	ws "github.com/edlbridge/api/internal/websocket"
	"github.com/edlbridge/api/pkg/response"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if cfg.Docs.DocID == "" {
		log.Fatal("DOCS_DOC_ID is required")
	}

	validate := validator.New()

	// External collaborators
	docsClient := client.NewDocsClient(&cfg.Docs)
	engineClient := client.NewEngineClient(&cfg.Engine)

	// WebSocket hub
	hub := ws.NewHub()
	go hub.Run()

	// Bridge core
	rates := edl.NewRateCache(cfg.Render.DefaultSampleRate)
	br := bridge.New(cfg, docsClient, engineClient, rates, hub)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	err = br.Start(ctx)
	cancel()
	if err != nil {
		log.Fatalf("Failed to start bridge: %v", err)
	}

	// Handlers
	renderHandler := handler.NewRenderHandler(br, validate, cfg.Render.OutputDir, cfg.Render.DefaultBitDepth)
	systemHandler := handler.NewSystemHandler(br, cfg.Docs.DocID, cfg.Engine.BaseURL, cfg.Docs.BaseURL)

	app := fiber.New(fiber.Config{
		ErrorHandler: customErrorHandler,
	})

	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept",
	}))

	app.Get("/", systemHandler.Dashboard)
	app.Get("/health", systemHandler.Health)
	app.Get("/metrics", adaptor.HTTPHandler(telemetry.Handler()))
	app.Get("/render", renderHandler.Trigger)
	app.Get("/job/:job_id", renderHandler.Status)

	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/jobs/:job_id", websocket.New(func(c *websocket.Conn) {
		hub.HandleConnection(c, c.Params("job_id"))
	}))

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		log.Println("Shutting down server...")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.Printf("Server shutdown error: %v", err)
		}
	}()

	addr := ":" + cfg.Server.Port
	log.Printf("Server starting on %s", addr)
	if err := app.Listen(addr); err != nil {
		log.Printf("Server error: %v", err)
	}

	br.Stop()
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	return response.Error(c, code, message)
}
