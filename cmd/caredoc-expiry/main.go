package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"caredoc-expiry/internal/config"
	"caredoc-expiry/internal/logger"
	"caredoc-expiry/internal/service"

	"go.uber.org/zap"
)

func main() {
	once := flag.Bool("once", false, "run a single scan immediately and exit")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.NewLogger(cfg.Log.Level, cfg.Log.Format, "caredoc-expiry")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	log.Info("Starting caredoc-expiry service")

	svc, err := service.NewTrackerService(cfg, log)
	if err != nil {
		log.Fatal("Failed to create tracker service", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if *once {
		err := svc.RunOnce(ctx)
		svc.Stop()
		if err != nil {
			log.Fatal("Scan failed", zap.Error(err))
		}
		return
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	errChan := make(chan error, 1)
	go func() {
		errChan <- svc.Start(ctx)
	}()

	select {
	case sig := <-sigChan:
		log.Info("Received signal, shutting down", zap.String("signal", sig.String()))
		cancel()
		<-errChan
	case err := <-errChan:
		if err != nil {
			log.Error("Service error", zap.Error(err))
		}
	}

	svc.Stop()
	log.Info("Service stopped")
}
