package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"taskhub/internal/lifecycle"
	"taskhub/internal/server"
	"taskhub/internal/service"
	"taskhub/internal/session"
	"taskhub/internal/storage"
	"taskhub/internal/storage/memory"
	"taskhub/internal/storage/sqlite"
	"taskhub/internal/util"
)

func main() {
	_ = godotenv.Load()

	addrFlag := flag.String("addr", util.EnvOrDefault("TASKHUB_ADDR", ":8080"), "HTTP listen address")
	dbFlag := flag.String("db", util.EnvOrDefault("TASKHUB_DB_PATH", ""), "Path to sqlite database file; empty runs the in-memory store")
	staticFlag := flag.String("static", util.EnvOrDefault("TASKHUB_STATIC_DIR", "web/dist"), "Directory with built frontend")
	seedFlag := flag.Bool("seed", util.EnvOrDefault("TASKHUB_SEED", "true") == "true", "Load demo fixtures into the in-memory store")
	sweepFlag := flag.Duration("sweep-interval", util.EnvDurationOrDefault("TASKHUB_SWEEP_INTERVAL", lifecycle.DefaultSweepInterval), "How often overdue tasks are promoted to expired")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	var store storage.Store
	if *dbFlag != "" {
		sqlStore, err := sqlite.Open(*dbFlag, logger)
		if err != nil {
			logger.Error("unable to open database", slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer sqlStore.Close()
		store = sqlStore
		logger.Info("using sqlite store", slog.String("path", *dbFlag))
	} else {
		memStore := memory.New()
		if *seedFlag {
			memStore.Seed()
		}
		store = memStore
		logger.Info("using in-memory store", slog.Bool("seeded", *seedFlag))
	}

	sessions := session.NewManager()
	authSvc := service.NewAuthService(store, sessions, logger)
	taskSvc := service.NewTaskService(store, logger)
	orgSvc := service.NewOrgService(store, sessions, logger)

	srv := server.New(authSvc, taskSvc, orgSvc, sessions, logger, *staticFlag)

	sweepCtx, stopSweep := context.WithCancel(context.Background())
	sweeper := lifecycle.NewSweeper(store, *sweepFlag, logger)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		sweeper.Run(sweepCtx)
	}()

	httpServer := &http.Server{
		Addr:    *addrFlag,
		Handler: srv.Engine(),
	}

	go func() {
		logger.Info("starting server", slog.String("addr", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server stopped unexpectedly", slog.String("error", err.Error()))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	stopSweep()
	wg.Wait()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("failed to shutdown server", slog.String("error", err.Error()))
	}

	logger.Info("server stopped")
}
