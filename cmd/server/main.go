package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"backoffice-backend/internal/audit"
	"backoffice-backend/internal/auth"
	"backoffice-backend/internal/bootstrap"
	"backoffice-backend/internal/config"
	"backoffice-backend/internal/dashboard"
	"backoffice-backend/internal/database"
	"backoffice-backend/internal/models"
	"backoffice-backend/internal/reconcile"
	"backoffice-backend/internal/scheduler"
	"backoffice-backend/internal/shiftsummary"
	"backoffice-backend/internal/staffform"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

const (
	shutdownTimeout = 30 * time.Second
	jobTimeout      = 20 * time.Minute
)

func main() {
	cfg := config.Load()
	config.SetLogLevel(cfg.LogLevel)
	log := config.GetLogger()

	database.Init(cfg)

	deps, err := bootstrap.Build(context.Background(), cfg, database.DB)
	if err != nil {
		log.Fatalf("could not build shift pipeline: %v", err)
	}
	defer deps.Close()

	var sched *scheduler.Scheduler
	if cfg.SchedulerEnabled {
		sched, err = scheduler.New(cfg.SchedulerSpec, deps.Location, jobTimeout, func(ctx context.Context) error {
			_, err := deps.Processor.ProcessLastCompletedShift(ctx)
			return err
		}, log)
		if err != nil {
			log.Fatalf("invalid SCHEDULER_SPEC %q: %v", cfg.SchedulerSpec, err)
		}
		sched.Start()
	}

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			var e *fiber.Error
			if errors.As(err, &e) {
				return c.Status(e.Code).JSON(fiber.Map{
					"error": e.Message,
				})
			}
			config.LogError(log, "server", "ErrorHandler", c.Path(), nil, err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "unexpected server error",
			})
		},
	})

	app.Use(recover.New())

	corsOrigins := strings.Split(cfg.CORSOrigins, ",")
	for i := range corsOrigins {
		corsOrigins[i] = strings.TrimSpace(corsOrigins[i])
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(corsOrigins, ","),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
	}))

	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	api := app.Group("/api")

	// Public auth
	api.Post("/auth/register-owner", auth.RegisterOwnerHandler())
	api.Post("/auth/login", auth.LoginHandler(cfg.JWTSecret))

	// Protected
	protected := api.Group("")
	protected.Use(auth.JWTMiddleware(cfg.JWTSecret))

	protected.Get("/auth/me", auth.MeHandler())
	protected.Post("/users", auth.RequireRole(models.RoleOwner), auth.CreateUserHandler())

	managers := auth.RequireRole(models.RoleOwner, models.RoleManager)

	// Shift summaries
	summaries := protected.Group("/shift-summaries")
	summaries.Post("/process", managers, shiftsummary.ProcessHandler(deps.Processor, audit.WriteLog))
	summaries.Get("/latest", shiftsummary.LatestHandler(deps.Store, deps.Cache))
	summaries.Get("/latest/csv", shiftsummary.LatestCSVHandler(deps.Store, deps.Cache))
	summaries.Get("/", shiftsummary.ListHandler(deps.Store))
	summaries.Get("/:date", shiftsummary.GetHandler(deps.Store))
	summaries.Get("/:date/csv", shiftsummary.CSVHandler(deps.Store))
	summaries.Get("/:date/xlsx", shiftsummary.XLSXHandler(deps.Store, deps.Engine))
	summaries.Get("/:date/reconciliation", shiftsummary.ReconciliationHandler(deps.Store, deps.Engine))

	protected.Get("/shift-processing/status", managers, shiftsummary.StatusHandler(deps.Processor))
	protected.Get("/shift-processing/runs", managers, shiftsummary.RunsHandler(deps.Store))

	// Dashboard
	protected.Get("/dashboard/sales-chart", dashboard.SalesChartHandler(deps.Store, deps.Location, reconcile.DefaultChannelMatcher()))

	// Staff forms
	protected.Post("/staff-forms", staffform.UpsertHandler(deps.Store, audit.WriteLog))
	protected.Get("/staff-forms/:date", staffform.GetHandler(deps.Store))

	// Audit logs
	protected.Get("/audit-logs", managers, audit.ListAuditLogsHandler())

	go func() {
		log.WithField("port", cfg.HTTPPort).Info("server listening")
		if err := app.Listen(":" + cfg.HTTPPort); err != nil {
			log.Fatalf("server stopped: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if sched != nil {
		if err := sched.Stop(ctx); err != nil {
			config.LogError(log, "server", "main", "scheduler stop", nil, err)
		}
	}
	if err := app.ShutdownWithContext(ctx); err != nil {
		config.LogError(log, "server", "main", "http shutdown", nil, err)
	}
}
