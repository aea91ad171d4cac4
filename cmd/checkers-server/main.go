package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/park285/cheese-checkers/internal/checkersbuilder"
	appcfg "github.com/park285/cheese-checkers/internal/config"
	"github.com/park285/cheese-checkers/internal/httpapi"
	"github.com/park285/cheese-checkers/internal/obslog"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
)

func main() {
	cfg, err := appcfg.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	if err := obslog.InitFromEnv(); err != nil {
		log.Fatalf("logger init error: %v", err)
	}
	logger := obslog.L()
	defer func() { _ = logger.Sync() }()

	deps, err := checkersbuilder.New(cfg, logger)
	if err != nil {
		logger.Fatal("checkers_init_failed", zap.Error(err))
	}
	defer func() { _ = deps.Close() }()

	handler := httpapi.New(deps.Service, deps.Formatter, httpapi.WithLogger(logger.Named("http")))
	server := &fasthttp.Server{
		Handler:            handler.Handle,
		Name:               "cheese-checkers",
		ReadTimeout:        10 * time.Second,
		WriteTimeout:       15 * time.Second,
		IdleTimeout:        60 * time.Second,
		MaxRequestBodySize: 64 << 10,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("checkers_server_listening",
			zap.String("addr", cfg.HTTPAddr),
			zap.String("db_driver", cfg.DatabaseDriver),
		)
		errCh <- server.ListenAndServe(cfg.HTTPAddr)
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-sigCh:
		logger.Info("checkers_server_shutdown", zap.String("signal", sig.String()))
	case err := <-errCh:
		if err != nil {
			logger.Error("checkers_server_failed", zap.Error(err))
		}
	}

	if err := server.Shutdown(); err != nil {
		logger.Warn("checkers_server_shutdown_failed", zap.Error(err))
	}
}
