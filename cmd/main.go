package main

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"catalog-quote-service/internal/api"
	"catalog-quote-service/internal/config"
	"catalog-quote-service/internal/logger"
	"catalog-quote-service/internal/store"
)

const serviceName = "CatalogQuoteService"

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("INFO: No .env file found or failed to load, relying on system environment")
	}

	// --- Configuration Loading ---
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("FATAL: Error loading configuration: %v", err)
	}

	zl, err := logger.New(cfg.LogLevel, cfg.AppEnv)
	if err != nil {
		log.Fatalf("FATAL: Error building logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()
	zl = zl.With(zap.String("service", serviceName))
	zl.Info("configuration loaded", zap.String("app_env", cfg.AppEnv), zap.String("log_level", cfg.LogLevel))

	// --- Catalog Loading ---
	source, origin := store.BundledSource(), "bundled"
	if cfg.Catalog.Path != "" {
		source, origin = store.FileSource(cfg.Catalog.Path), cfg.Catalog.Path
	}
	loader := store.NewLoader(source)
	catalog, err := loader.Store(context.Background())
	if err != nil {
		zl.Fatal("failed to load catalog", zap.String("source", origin), zap.Error(err))
	}
	zl.Info("catalog loaded",
		zap.String("source", origin),
		zap.String("version", catalog.Version()),
		zap.Int("products", len(catalog.AllProducts())),
	)

	// --- Initialize API Handlers ---
	httpAPIHandler := api.NewHTTPHandler(catalog, loader, cfg.Catalog.PageSize, zl.Named("http"))
	grpcAPIHandler := api.NewGRPCHandler(catalog, loader, cfg.Catalog.PageSize, zl.Named("grpc"))

	// --- Setup & Start HTTP Server ---
	httpRouter := chi.NewRouter()
	setupBaseMiddleware(httpRouter)
	registerHealthCheck(httpRouter, catalog)
	httpAPIHandler.RegisterRoutes(httpRouter)

	httpServer := &http.Server{
		Addr:         ":" + cfg.HttpServer.Port,
		Handler:      httpRouter,
		ReadTimeout:  cfg.HttpServer.TimeoutRead,
		WriteTimeout: cfg.HttpServer.TimeoutWrite,
		IdleTimeout:  cfg.HttpServer.TimeoutIdle,
	}

	go func() {
		zl.Info("HTTP server listening", zap.String("port", cfg.HttpServer.Port))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zl.Fatal("HTTP server ListenAndServe error", zap.Error(err))
		}
		zl.Info("HTTP server has stopped")
	}()

	// --- Setup & Start gRPC Server ---
	grpcServer := setupGRPCServer(zl, grpcAPIHandler)
	grpcListener, err := net.Listen("tcp", ":"+cfg.GrpcServer.Port)
	if err != nil {
		zl.Fatal("failed to listen for gRPC", zap.String("port", cfg.GrpcServer.Port), zap.Error(err))
	}

	go func() {
		zl.Info("gRPC server listening", zap.String("port", cfg.GrpcServer.Port))
		if err := grpcServer.Serve(grpcListener); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			zl.Fatal("gRPC server Serve error", zap.Error(err))
		}
		zl.Info("gRPC server has stopped")
	}()

	// --- Graceful Shutdown ---
	shutdownComplete := make(chan struct{})
	go waitForShutdown(zl, httpServer, grpcServer, shutdownComplete)

	<-shutdownComplete
	zl.Info("service shutdown sequence finished")
}

func setupBaseMiddleware(router *chi.Mux) {
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(60 * time.Second))
}

func registerHealthCheck(router *chi.Mux, catalog store.CatalogReader) {
	router.Get("/api/v1/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status":         "healthy",
			"serviceName":    serviceName,
			"timestamp":      time.Now().UTC().Format(time.RFC3339),
			"catalogVersion": catalog.Version(),
		})
	})
}

func setupGRPCServer(zl *zap.Logger, grpcAPIHandler *api.GRPCHandler) *grpc.Server {
	s := grpc.NewServer()

	grpcAPIHandler.Register(s)
	zl.Info("gRPC service registered", zap.String("service", api.CatalogQuoteServiceName))

	grpc_health_v1.RegisterHealthServer(s, health.NewServer())
	reflection.Register(s)

	return s
}

func waitForShutdown(zl *zap.Logger, httpServer *http.Server, grpcServer *grpc.Server, shutdownComplete chan struct{}) {
	defer close(shutdownComplete)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	receivedSignal := <-sigChan
	zl.Info("starting graceful shutdown", zap.String("signal", receivedSignal.String()))

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelShutdown()

	stoppedGrpc := make(chan struct{})
	go func() {
		grpcServer.GracefulStop()
		close(stoppedGrpc)
	}()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		zl.Warn("HTTP server graceful shutdown failed", zap.Error(err))
	} else {
		zl.Info("HTTP server gracefully shut down")
	}

	select {
	case <-stoppedGrpc:
		zl.Info("gRPC server gracefully shut down")
	case <-shutdownCtx.Done():
		zl.Warn("gRPC server graceful shutdown timed out, forcing stop", zap.Error(shutdownCtx.Err()))
		grpcServer.Stop()
	}
}
