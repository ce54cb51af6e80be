package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/whispernotes/insights-ms-go/internal/config"
	"github.com/whispernotes/insights-ms-go/internal/handler"
	"github.com/whispernotes/insights-ms-go/internal/handler/api"
	"github.com/whispernotes/insights-ms-go/internal/logger"
	cMiddleware "github.com/whispernotes/insights-ms-go/internal/middleware"
	"github.com/whispernotes/insights-ms-go/internal/port"
	"github.com/whispernotes/insights-ms-go/internal/session"
	"github.com/whispernotes/insights-ms-go/internal/storage"
	"github.com/whispernotes/insights-ms-go/internal/task"
	uploadSvc "github.com/whispernotes/insights-ms-go/internal/usecase/upload"
	msuuid "github.com/whispernotes/insights-ms-go/internal/uuid"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		logger.Errorf(ctx, "❌  Configuration error: %v", err)
		os.Exit(1)
	}

	logger.Init()

	r := initRouter(ctx, cfg.JWTPublicKey)

	strg := initStorage(ctx, cfg)
	store := session.NewStore(cfg.RedisAddr, cfg.RedisPassword, cfg.SessionTTL)
	dispatcher := task.NewDispatcher(cfg.RedisAddr, cfg.RedisPassword)

	initializerSvc := uploadSvc.NewUploadInitializer(store, msuuid.NewUUID)
	r.Post("/uploads", api.InitializeUploadHandler(initializerSvc))

	partTargetSvc := uploadSvc.NewPartTargetRequester(store, strg)
	r.With(cMiddleware.WithSessionID()).
		Get("/uploads/{id}/parts/{partNumber}", api.RequestPartTargetHandler(partTargetSvc))

	partRecorderSvc := uploadSvc.NewPartRecorder(store)
	r.With(cMiddleware.WithSessionID()).
		Post("/uploads/{id}/parts", api.RecordPartHandler(partRecorderSvc))

	completerSvc := uploadSvc.NewUploadCompleter(store, strg, dispatcher)
	r.With(cMiddleware.WithSessionID()).
		Post("/uploads/{id}/complete", api.CompleteUploadHandler(completerSvc))

	statusSvc := uploadSvc.NewStatusGetter(store)
	r.With(cMiddleware.WithSessionID()).
		Get("/uploads/{id}/status", api.GetStatusHandler(statusSvc))

	resultSvc := uploadSvc.NewResultGetter(store)
	r.With(cMiddleware.WithSessionID()).
		Get("/uploads/{id}/result", api.GetResultHandler(resultSvc))

	speakerNamesSvc := uploadSvc.NewSpeakerNamesUpdater(store)
	r.With(cMiddleware.WithSessionID()).
		Patch("/uploads/{id}/speakers", api.UpdateSpeakerNamesHandler(speakerNamesSvc))

	deleterSvc := uploadSvc.NewSessionDeleter(store, strg)
	r.With(cMiddleware.WithSessionID()).
		Delete("/uploads/{id}", api.DeleteSessionHandler(deleterSvc))

	listenRouter(ctx, r, cfg)
}

func initRouter(ctx context.Context, jwtKey string) *chi.Mux {
	logger.Info(ctx, "initialising router...")

	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(cMiddleware.WithDSTAuth(jwtKey))

	r.NotFound(handler.NotFoundHandler())
	r.MethodNotAllowed(api.MethodNotAllowedHandler())

	return r
}

func initStorage(ctx context.Context, cfg *config.Settings) port.Storage {
	strg, err := storage.NewStorage(
		cfg.MinioEndpoint,
		cfg.MinioAccessKey,
		cfg.MinioSecretKey,
		cfg.Bucket,
		cfg.MinioUseSSL,
	)
	if err != nil {
		logger.Errorf(ctx, "❌  Failed to initialize MinIO client: %v", err)
		os.Exit(1)
	}

	if err := strg.InitBucket(); err != nil {
		logger.Errorf(ctx, "❌  Failed to initialize bucket: %v", err)
		os.Exit(1)
	}

	return strg
}

func listenRouter(ctx context.Context, r *chi.Mux, cfg *config.Settings) {
	srv := &http.Server{Addr: ":" + strconv.Itoa(cfg.ServerPort), Handler: r}

	// start serving
	go func() {
		logger.Infof(ctx, "🚀 API listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			logger.Errorf(ctx, "❌  Listen error: %v", err)
			os.Exit(1)
		}
	}()

	// block until we get SIGINT/SIGTERM
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info(ctx, "🛑 Shutdown signal received, exiting…")

	// graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorf(ctx, "❌  Server shutdown failed: %v", err)
		os.Exit(1)
	}
	logger.Info(ctx, "✅  Server gracefully stopped")
}
