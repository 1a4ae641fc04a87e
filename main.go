package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/muchtodo/taskapi/internal/config"
	"github.com/muchtodo/taskapi/internal/handlers"
	"github.com/muchtodo/taskapi/internal/logger"
	"github.com/muchtodo/taskapi/internal/server"
	"github.com/muchtodo/taskapi/internal/service"
	"github.com/muchtodo/taskapi/internal/store"
)

// @title MuchToDo Task API
// @version 1.0
// @description Create, list, update and delete tasks stored in MongoDB.
// @BasePath /
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	zapLogger := logger.New(logger.Config{
		Level:    cfg.Logger.Level,
		Encoding: cfg.Logger.Encoding,
	})
	defer zapLogger.Sync()

	gin.SetMode(cfg.HTTP.Mode)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var db *mongo.Database
	client, err := store.Connect(ctx, cfg.Database, zapLogger)
	if err != nil {
		zapLogger.Warn("database not available, task endpoints will fail", zap.Error(err))
	} else {
		db = client.Database(cfg.Database.Name)
	}
	docStore := store.New(db, zapLogger)

	taskService := service.NewTaskService(docStore, zapLogger)
	router := server.NewRouter(server.Handlers{
		Task: handlers.NewTaskHandler(taskService, zapLogger),
		Health: handlers.NewHealthHandler(docStore, handlers.DatabaseSettings{
			URLSet:  cfg.Database.URL != "",
			NameSet: cfg.Database.Name != "",
		}, zapLogger),
	}, cfg.CORS.AllowedOrigins, zapLogger)

	srv := server.New(cfg.Address(), router, cfg.HTTP.ShutdownTimeout, zapLogger)
	if err := srv.Run(ctx); err != nil {
		zapLogger.Error("HTTP server failed", zap.Error(err))
	}

	closeCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if err := client.Close(closeCtx); err != nil {
		zapLogger.Error("mongodb disconnect failed", zap.Error(err))
	}
	zapLogger.Info("shutdown complete")
}
