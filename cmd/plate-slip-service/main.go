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

	"plate-slip-service/internal/config"
	httphandler "plate-slip-service/internal/http"
	"plate-slip-service/internal/logger"
	"plate-slip-service/internal/ocr"
	"plate-slip-service/internal/render"
	"plate-slip-service/internal/service"
	"plate-slip-service/internal/storage"
	"plate-slip-service/internal/vision"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	appLogger := logger.New(cfg.Environment)

	store, err := storage.NewArtifactStore(cfg.Slip.Dir)
	if err != nil {
		appLogger.Fatal().Err(err).Msg("failed to prepare artifact storage")
	}

	// Model singletons: loaded once, read-only for the process lifetime,
	// never reloaded because of a per-request failure.
	detector, err := vision.NewYOLODetector(cfg.Detector)
	if err != nil {
		appLogger.Fatal().Err(err).Str("model", cfg.Detector.ModelPath).Msg("failed to load detection model")
	}
	defer detector.Close()

	recognizer := ocr.NewTesseractRecognizer(cfg.OCR)
	if cfg.OCR.UseGPU {
		appLogger.Warn().Msg("OCR_USE_GPU is set but the OCR engine runs on CPU only")
	}

	renderer := render.NewSlipRenderer(cfg.Slip, appLogger)

	// Object storage is optional, local disk stays the canonical store.
	mirror, err := storage.NewObjectStoreFromEnv()
	if err != nil && !errors.Is(err, storage.ErrNotConfigured) {
		appLogger.Fatal().Err(err).Msg("failed to initialize object storage")
	}
	if err != nil {
		appLogger.Warn().Msg("object storage not configured, slip mirroring disabled")
		mirror = nil
	}

	plateService := service.NewPlateService(detector, recognizer, renderer, store, mirror, cfg, appLogger)

	handler := httphandler.NewHandler(plateService, store, appLogger)
	router := httphandler.NewRouter(handler, cfg.Environment, store, appLogger)

	addr := fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
	appLogger.Info().
		Str("addr", addr).
		Str("model", cfg.Detector.ModelPath).
		Str("slips_dir", cfg.Slip.Dir).
		Msg("starting plate slip service")

	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Error().Err(err).Msg("failed to start server")
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info().Msg("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		appLogger.Error().Err(err).Msg("server forced to shutdown")
	}

	appLogger.Info().Msg("server exited")
}
