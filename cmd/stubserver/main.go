package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"employee-manager/internal/config"
	"employee-manager/internal/logger"
	"employee-manager/internal/stubserver"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	var (
		addr = flag.String("addr", cfg.StubAddr, "listen address")
		seed = flag.String("seed", "", "csv file to preload employees from")
	)
	flag.Parse()

	logger.InitLogging(cfg.LogLevel, cfg.LogFilePath)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store := stubserver.NewStore()
	if *seed != "" {
		f, err := os.Open(*seed)
		if err != nil {
			logger.ErrorLog(ctx, "open seed file", err)
			os.Exit(1)
		}
		n, err := store.SeedCSV(f)
		f.Close()
		if err != nil {
			logger.ErrorLog(ctx, "seed store", err)
			os.Exit(1)
		}
		logger.InfoLog(ctx, "seeded %d employees from %s", n, *seed)
	}

	srv := stubserver.New(store)
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start(*addr) }()

	select {
	case err := <-errCh:
		if err != nil {
			logger.ErrorLog(ctx, "stub server stopped", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.ErrorLog(ctx, "shutdown", err)
		}
	}
}
