package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/idilsaglam/tada/internal/model"
	"github.com/idilsaglam/tada/internal/stubserver"
)

func main() {
	addr := flag.String("addr", ":8000", "listen address")
	seed := flag.Bool("seed", false, "start with two sample todos")
	debug := flag.Bool("debug", false, "log every request at debug level")
	flag.Parse()

	logger, _ := zap.NewProduction()
	if *debug {
		logger, _ = zap.NewDevelopment()
	}
	defer logger.Sync()

	var todos []model.Todo
	if *seed {
		todos = []model.Todo{
			{ID: 1, Task: "Try the todo client"},
			{ID: 2, Task: "Toggle me", Completed: true},
		}
	}
	stub := stubserver.New(logger, todos...)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Mount("/", stub.Routes())

	srv := http.Server{
		Addr:         *addr,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("stub todo service started", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)
	<-quit

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("shutdown error", zap.Error(err))
	}
	logger.Info("stopped")
}
