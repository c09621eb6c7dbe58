package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Govind-619/ShuttleHub/app"
	"github.com/Govind-619/ShuttleHub/config"
	"github.com/Govind-619/ShuttleHub/jobs"
	"github.com/Govind-619/ShuttleHub/utils"
	"github.com/gin-gonic/gin"
)

func main() {
	configPath := flag.String("config", "", "path to config.yaml")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatal("Error loading config:", err)
	}

	// Initialize logger
	if err := utils.InitLogger(cfg.Log.Level, cfg.Log.Pretty); err != nil {
		log.Fatal("Failed to initialize logger:", err)
	}
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := config.ConnectDatabase(cfg.Database)
	if err != nil {
		utils.LogError("Database: %v", err)
		os.Exit(1)
	}
	rdb, err := config.ConnectRedis(cfg.Redis)
	if err != nil {
		// the catalog works without its cache
		utils.LogWarn("Redis unavailable, continuing without cache: %v", err)
		rdb = nil
	}

	application, err := app.New(cfg, app.Deps{
		DB:      db,
		Redis:   rdb,
		Mailer:  app.NewMailer(cfg.SMTP),
		Gateway: app.NewGateway(cfg.Stripe),
	})
	if err != nil {
		utils.LogError("Failed to build application: %v", err)
		os.Exit(1)
	}

	scheduler, err := jobs.NewScheduler(cfg.Jobs, cfg.Location(), application.Promotions, application.Orders)
	if err != nil {
		utils.LogError("Failed to schedule jobs: %v", err)
		os.Exit(1)
	}
	scheduler.Start()

	srv := &http.Server{
		Addr:              ":" + cfg.App.Port,
		Handler:           application.Router,
		ReadTimeout:       cfg.App.ReadTimeout,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      cfg.App.WriteTimeout,
		IdleTimeout:       2 * time.Minute,
	}

	go func() {
		utils.LogInfo("Server starting on port %s", cfg.App.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			utils.LogError("Error starting server: %v", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	utils.LogInfo("Shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		utils.LogError("Server shutdown: %v", err)
	}
	scheduler.Stop()
	application.Notifier.Wait()

	if rdb != nil {
		_ = rdb.Close()
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	utils.LogInfo("Server stopped")
}
