package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tablecall/config"
	"tablecall/cron"
	"tablecall/database"
	bookingRepo "tablecall/database/repository/booking"
	"tablecall/handlers"
	"tablecall/middleware"
	"tablecall/routes"
	"tablecall/services/booking"
	"tablecall/services/calendar"
	"tablecall/services/scraper"
	"tablecall/services/vapi"
	"tablecall/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()

	// State store: Mongo when configured, JSON file otherwise.
	var repo bookingRepo.BookingRepository
	if config.AppConfig.DatabaseURL != "" {
		database.InitDB()
		repo = bookingRepo.NewMongoBookingRepo()
	} else {
		repo = bookingRepo.NewFileBookingRepo(config.AppConfig.StateFilePath)
		logger.Sugar().Infof("Using file state store at %s", config.AppConfig.StateFilePath)
	}

	// External clients.
	dialer := vapi.NewClient(
		config.AppConfig.VapiBaseURL,
		config.AppConfig.VapiPrivateKey,
		config.AppConfig.VapiAssistantID,
		config.AppConfig.VapiPhoneNumberID,
		config.AppConfig.ServerBaseURL,
	)
	searcher := scraper.NewClient(config.AppConfig.RtrvrAgentURL, config.AppConfig.RtrvrAPIKey)
	calendarSvc := calendar.NewGoogleService(
		config.AppConfig.GoogleClientID,
		config.AppConfig.GoogleClientSecret,
		config.AppConfig.GoogleRefreshToken,
		config.AppConfig.GoogleCalendarID,
	)
	if !config.CalendarConfigured() {
		logger.Sugar().Info("Calendar credentials not set; events will be skipped")
	}

	flowService := &booking.DefaultFlowService{
		Repo:          repo,
		Searcher:      searcher,
		Dialer:        dialer,
		Calendar:      calendarSvc,
		CustomerName:  config.AppConfig.CustomerName,
		CustomerPhone: config.AppConfig.CustomerPhone,
		CallTimeout:   time.Duration(config.AppConfig.CallTimeoutMinutes) * time.Minute,
	}

	// Redis-backed extras: webhook dedup and the call watchdog.
	if config.RedisEnabled() {
		flowService.Dedup = booking.NewRedisLedger(utils.GetCacheClient())

		asynqClient := asynq.NewClient(asynq.RedisClientOpt{
			Addr:     config.AppConfig.RedisAddr,
			Password: config.AppConfig.RedisPassword,
			DB:       config.AppConfig.RedisWatchdogDB,
		})
		defer asynqClient.Close()
		flowService.Watchdog = booking.NewAsynqWatchdog(asynqClient)
		cron.InitWatchdogWorker(repo)
	} else {
		logger.Sugar().Info("Redis not configured; webhook dedup and call watchdog disabled")
	}

	utils.StartHealthMonitor(utils.CacheClient, database.MongoClient)

	flowHandler := handlers.NewFlowHandler(flowService, logger)
	callHandler := handlers.NewCallHandler(dialer, config.AppConfig.CustomerPhone, logger)

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())
	router.Use(middleware.RateLimitMiddleware())
	router.Use(cors.Default())

	routes.RegisterRoutes(router, flowHandler, callHandler)

	// Start the HTTP server.
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
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Fatalf("main: server forced to shutdown: %v", err)
	}

	logger.Sugar().Info("main: server stopped gracefully")
}
