// File: beautybot/main.go
package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"beautybot/bot"
	"beautybot/config"
	"beautybot/cron"
	"beautybot/database"
	appointmentRepo "beautybot/database/repository/appointment"
	catalogRepo "beautybot/database/repository/catalog"
	clientRepo "beautybot/database/repository/client"
	"beautybot/handlers"
	"beautybot/middleware"
	"beautybot/routes"
	"beautybot/services/availability"
	"beautybot/services/booking"
	"beautybot/services/calendar"
	"beautybot/utils"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()
	zap.ReplaceGlobals(logger)

	database.InitDB()
	utils.InitSessionCache()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	location, err := time.LoadLocation(config.AppConfig.Timezone)
	if err != nil {
		logger.Sugar().Fatalf("main: invalid timezone %q: %v", config.AppConfig.Timezone, err)
	}

	// Availability source and cache.
	source, err := availability.NewSheetsSource(
		ctx,
		config.AppConfig.GoogleCredentialsFile,
		config.AppConfig.SpreadsheetID,
		config.TimeslotLabels,
		config.AppConfig.AvailableMarker,
		config.AppConfig.BookedMarker,
		time.Duration(config.AppConfig.SourceTimeoutSeconds)*time.Second,
	)
	if err != nil {
		logger.Sugar().Fatalf("main: failed to initialize sheets source: %v", err)
	}
	cache := availability.NewCache(
		source,
		config.TimeslotLabels,
		config.AppConfig.AvailableMarker,
		time.Duration(config.AppConfig.CacheTTLSeconds)*time.Second,
		logger,
	)

	// Repositories.
	clients := clientRepo.NewMongoClientRepo()
	catalog := catalogRepo.NewMongoCatalogRepo()
	appointments := appointmentRepo.NewMongoAppointmentRepo()

	// Calendar notification pipeline.
	calendarSvc, err := calendar.NewGoogleCalendarService(
		ctx,
		config.AppConfig.GoogleCredentialsFile,
		config.AppConfig.Timezone,
		config.AppConfig.SalonLocation,
	)
	if err != nil {
		logger.Sugar().Fatalf("main: failed to initialize calendar service: %v", err)
	}
	cron.InitCalendarWorker(calendarSvc)

	asynqClient := asynq.NewClient(asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	})
	defer asynqClient.Close()

	// Booking core.
	sessions := booking.NewRedisSessionStore(utils.GetSessionCacheClient())
	committer := &booking.Committer{
		Source:       source,
		Appointments: appointments,
		Catalog:      catalog,
		Sessions:     sessions,
		Notifier:     booking.NewAsynqNotifier(asynqClient),
		Location:     location,
		Logger:       logger,
	}
	flow := &booking.DefaultFlow{
		Cache:     cache,
		Catalog:   catalog,
		Clients:   clients,
		Sessions:  sessions,
		Committer: committer,
		Logger:    logger,
	}

	// Telegram front-end.
	tgBot, err := bot.New(config.AppConfig.TelegramToken, flow, logger)
	if err != nil {
		logger.Sugar().Fatalf("main: failed to initialize telegram bot: %v", err)
	}
	go tgBot.Run(ctx)

	utils.StartHealthMonitor(ctx, utils.GetSessionCacheClient(), database.MongoClient)

	// Admin/health HTTP surface.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())
	router.Use(middleware.RateLimitMiddleware())

	adminHandler := handlers.NewAdminHandler(appointments, cache)
	routes.RegisterRoutes(router, adminHandler)

	port := config.AppConfig.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	<-ctx.Done()
	logger.Sugar().Info("main: shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Sugar().Fatalf("main: server forced to shutdown: %v", err)
	}

	logger.Sugar().Info("main: stopped gracefully")
}
