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

	"github.com/rs/cors"

	"journal-summary/cmd/api/auth"
	"journal-summary/cmd/api/router"
	"journal-summary/config"
	"journal-summary/services"
)

// @title           Journal Summary API
// @version         1.0
// @description     Summarizes users' journal entries with a rate-limited Gemini pipeline
// @BasePath        /
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name X-API-Key
func main() {
	config.InitApp()
	cfg := config.GetConfig()
	config.InitLogger(cfg.Logging)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.APISecret == "" {
		config.Logger.Warn("API_SECRET is not set, every /api request will be rejected")
	}

	// 토큰 버킷은 프로세스 시작 시 한 번 만들어 모든 요청이 공유한다.
	summarySvc, err := services.NewSummaryServiceFromConfig(ctx, cfg)
	if err != nil {
		config.Logger.Errorf("failed to initialize summary service: %v", err)
		os.Exit(1)
	}
	defer summarySvc.Close(context.Background())

	r := router.New(summarySvc, cfg.APISecret)
	handler := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", auth.HeaderAPIKey, "X-Request-Id"},
		ExposedHeaders: []string{"X-Request-Id"},
	}).Handler(r)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: handler,
	}

	go func() {
		config.Logger.Infof("server is running at http://localhost:%d", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			config.Logger.Errorf("server error: %v", err)
			cancel()
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sigChan:
		config.Logger.Info("received shutdown signal, shutting down api server...")
	case <-ctx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeoutSeconds)*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		config.Logger.Errorf("server shutdown error: %v", err)
	}

	config.Logger.Info("api server stopped")
}
