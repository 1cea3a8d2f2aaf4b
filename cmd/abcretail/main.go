package main

import (
	"context"
	"errors"
	"io"
	"log"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"abcretail/internal/config"
	"abcretail/internal/domain"
	"abcretail/internal/events"
	"abcretail/internal/http/handlers"
	applog "abcretail/internal/log"
	"abcretail/internal/services"
	"abcretail/internal/store"
)

func main() {
	cfg := config.Load()

	// Optional file logging
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			log.Printf("[warn] could not open log file %s: %v", cfg.LogFile, err)
		} else {
			log.SetOutput(io.MultiWriter(os.Stdout, f))
		}
	}

	gw, err := openGateway(cfg)
	if err != nil {
		log.Fatal(err)
	}

	var pub events.Publisher
	if len(cfg.KafkaBrokers) > 0 {
		kp := events.NewKafkaPublisher(cfg.KafkaBrokers)
		defer kp.Close()
		pub = kp
	} else {
		log.Printf("[events] no brokers configured, publishing to log")
		pub = events.LogPublisher{}
	}

	auth := services.NewAuthService(cfg.AdminEmail, cfg.AdminPassHash)
	if !auth.Enabled() {
		log.Printf("[warn] no admin credential configured, mutating routes are open")
	}

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			applog.Error(c, "server.error", err, nil)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "something went wrong, please try again",
			})
		},
	})
	app.Server().MaxRequestBodySize = 1 << 20 // 1 MiB

	app.Use(requestid.New())
	app.Use(logger.New())
	app.Use(helmet.New())
	app.Use(limiter.New(limiter.Config{
		Max:        120,
		Expiration: time.Minute,
	}))

	deps := handlers.NewDeps(gw, pub, auth)
	staff := handlers.RequireStaff(auth)

	app.Post("/login", limiter.New(limiter.Config{
		Max:        5,
		Expiration: 10 * time.Minute,
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.login.hit", nil)
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": "too many attempts"})
		},
	}), deps.AuthHandler.Login)
	app.Post("/logout", deps.AuthHandler.Logout)

	api := app.Group("/api/v1")

	api.Get("/customers", deps.CustomerHandler.List)
	api.Get("/customers/:id", deps.CustomerHandler.Get)
	api.Post("/customers", staff, deps.CustomerHandler.Create)
	api.Put("/customers/:id", staff, deps.CustomerHandler.Edit)
	api.Delete("/customers/:id", staff, deps.CustomerHandler.Delete)

	api.Get("/products", deps.ProductHandler.List)
	api.Get("/products/:id", deps.ProductHandler.Get)
	api.Get("/products/:id/price", deps.ProductHandler.Price)
	api.Post("/products", staff, deps.ProductHandler.Create)
	api.Put("/products/:id", staff, deps.ProductHandler.Edit)
	api.Delete("/products/:id", staff, deps.ProductHandler.Delete)

	api.Get("/orders", deps.OrderHandler.List)
	api.Get("/orders/:id", deps.OrderHandler.Get)
	api.Post("/orders", staff, deps.OrderHandler.Create)
	api.Put("/orders/:id", staff, deps.OrderHandler.Edit)
	api.Delete("/orders/:id", staff, deps.OrderHandler.Delete)
	api.Post("/orders/:id/status", staff, deps.OrderHandler.UpdateStatus)
	api.Get("/order-statuses", deps.OrderHandler.Statuses)

	app.Get("/healthz", func(c *fiber.Ctx) error { return c.JSON(fiber.Map{"ok": true}) })

	log.Fatal(app.Listen(":" + cfg.Port))
}

func openGateway(cfg config.Config) (store.Gateway, error) {
	switch cfg.StorageBackend {
	case "relay":
		if cfg.RelayBaseURL == "" {
			return nil, errors.New("RELAY_BASE_URL is required for the relay backend")
		}
		gw := store.NewRelay(cfg.RelayBaseURL, cfg.RelayKey)
		// Provisioning is server-owned for the relay; note it and move on.
		if err := gw.EnsureSchema(context.Background()); err != nil {
			var unsupported *domain.UnsupportedOperationError
			if !errors.As(err, &unsupported) {
				return nil, err
			}
			log.Printf("[store] relay backend, schema managed remotely")
		}
		return gw, nil
	case "direct":
		gw, err := store.Open(cfg.DBDSN)
		if err != nil {
			return nil, err
		}
		if err := gw.EnsureSchema(context.Background()); err != nil {
			return nil, err
		}
		return gw, nil
	default:
		return nil, errors.New("unknown STORAGE_BACKEND " + cfg.StorageBackend)
	}
}
