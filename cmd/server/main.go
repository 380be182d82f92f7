package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"servicehub/config"
	"servicehub/internal/database"
	"servicehub/internal/router"
	"servicehub/pkg/cloudinary"
	"servicehub/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	logger.Init(cfg.Log.AppName, cfg.Log.Level)
	log := logger.Get()

	db, err := database.NewDB(&cfg.Database)
	if err != nil {
		log.Logger.Fatalf("database: %v", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		log.Logger.Fatalf("migrate: %v", err)
	}
	if err := database.Seed(db, &cfg.Marketplace); err != nil {
		log.Logger.Fatalf("seed: %v", err)
	}
	if cfg.Marketplace.AdminPassword == "" {
		log.Warn("startup", "admin account not seeded: marketplace.admin_password is empty", "main", "")
	}

	cloud, err := cloudinary.NewClientFromParams(cfg.Cloudinary.CloudName, cfg.Cloudinary.APIKey, cfg.Cloudinary.APISecret)
	if err != nil {
		if !errors.Is(err, cloudinary.ErrNotConfigured) {
			log.Logger.Fatalf("cloudinary: %v", err)
		}
		log.Warn("startup", "image uploads disabled: cloudinary credentials not set", "main", "")
	}

	engine := router.Setup(cfg, db, cloud)
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	go func() {
		log.Info("startup", "server listening on :"+cfg.Server.Port, "main", cfg.Server.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Logger.Fatalf("listen: %v", err)
		}
	}()
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutdown", "shutting down...", "main", "")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Logger.Fatalf("server shutdown: %v", err)
	}
	log.Info("shutdown", "server stopped", "main", "")
}
