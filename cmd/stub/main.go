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

	"github.com/PavaniTiago/jurista-ai-frontend/internal/stub"
	"github.com/PavaniTiago/jurista-ai-frontend/pkg/logger"
)

func main() {
	addr := flag.String("addr", ":4000", "listen address")
	fixturePath := flag.String("fixtures", "", "YAML fixture file (optional)")
	flag.Parse()

	log, err := logger.NewLogger(
		logger.WithLevel("info"),
		logger.WithEncoding("json"),
		logger.WithOutputPaths([]string{"stdout", "logs/stub.log"}),
	)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	fixtures := stub.DefaultFixtures()
	if *fixturePath != "" {
		fixtures, err = stub.LoadFixtures(*fixturePath)
		if err != nil {
			log.Fatal("Failed to load fixtures", logger.Error(err))
		}
	}

	srv := &http.Server{
		Addr:    *addr,
		Handler: stub.NewEngine(fixtures, log),
	}

	go func() {
		log.Info("Stub document service starting", logger.String("addr", *addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("Server error", logger.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down stub service...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", logger.Error(err))
	}
}
