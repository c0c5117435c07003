package main

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"skillchain/config"
	courseController "skillchain/controllers/course"
	instructorController "skillchain/controllers/instructor"
	jobController "skillchain/controllers/job"
	paymentController "skillchain/controllers/payment"
	superAdminController "skillchain/controllers/superAdmin"
	"skillchain/database"
	appLogger "skillchain/logger"
	"skillchain/routers/courseRoutes"
	"skillchain/routers/instructorRoutes"
	"skillchain/routers/jobRoutes"
	"skillchain/routers/paymentRoutes"
	superAdminRoutes "skillchain/routers/superAdmin"
	"skillchain/services/bidding"
	"skillchain/services/certificate"
	"skillchain/services/enrollment"
	"skillchain/services/gateway"
	"skillchain/services/payments"
	"skillchain/services/progress"
	"skillchain/services/reconcile"
	"skillchain/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
)

func main() {
	config.LoadConfig()
	cfg := config.AppConfig
	appLogger.Init(cfg.LogLevel, cfg.LogPretty, os.Stdout)
	log := appLogger.For("main")

	database.ConnectDb()
	db := database.Database.Db

	notifier := utils.NewEmailNotifier(utils.NewMailer(cfg.SendGridAPIKey, cfg.EmailSender, cfg.EmailSenderName))

	gw := gateway.New(gateway.Options{
		BaseURL:          cfg.GatewayBaseURL,
		SecretKey:        cfg.GatewaySecretKey,
		Timeout:          cfg.GatewayTimeout,
		RetryCount:       cfg.GatewayRetryCount,
		RetryWait:        cfg.GatewayRetryWait,
		BreakerFailures:  cfg.BreakerFailures,
		BreakerOpenAfter: cfg.BreakerOpenTimeout,
	})

	enroller := enrollment.NewWriter(db, notifier)
	issuer := certificate.NewIssuer(db, notifier)
	tracker := progress.NewTracker(db, issuer)
	paymentService := payments.NewService(db, gw, enroller, payments.Options{
		Currency:           cfg.GatewayCurrency,
		CallbackURL:        cfg.GatewayCallbackURL,
		PlatformFeePercent: cfg.PlatformFeePercent,
	})

	jobs, err := reconcile.New(db, paymentService, reconcile.Options{
		ReconcileSpec:  cfg.ReconcileSpec,
		RebuildSpec:    cfg.CounterRebuildSpec,
		ReconcileAfter: cfg.ReconcileAfter,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("invalid job schedule")
	}
	jobs.Start()

	app := fiber.New()

	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE",        // Allowed HTTP methods
		AllowHeaders: "Content-Type,Authorization", // Allowed headers
	}))

	// Enable the built-in logger middleware to log all requests
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${ip} ${method} ${path} ${status} ${latency}\n",
	}))

	courseHandler := &courseController.CourseHandler{DB: db, Enroller: enroller, Tracker: tracker, Certificates: issuer, UploadDir: cfg.UploadDir}
	courseRoutes.SetupCourseRoutes(app, courseHandler)
	courseRoutes.SetupAdminCourseRoutes(app, courseHandler)
	paymentRoutes.SetupPaymentRoutes(app, &paymentController.PaymentHandler{Payments: paymentService})
	jobRoutes.SetupJobRoutes(app, &jobController.JobHandler{Bids: bidding.NewService(db)})
	instructorRoutes.SetupInstructorRoutes(app, &instructorController.InstructorHandler{DB: db})
	superAdminRoutes.SetupSuperAdminRoutes(app, &superAdminController.AdminHandler{DB: db, Jobs: jobs})

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit

		log.Info().Msg("shutting down")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.Error().Err(err).Msg("server shutdown")
		}
	}()

	log.Info().Str("port", cfg.Port).Msg("server is running")
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Error().Err(err).Msg("server stopped")
	}

	jobs.Stop()
	notifier.Wait()
}
