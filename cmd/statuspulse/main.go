package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"statuspulse/config"
	"statuspulse/core/appbootstrap"
	"statuspulse/core/store"
	"statuspulse/core/utils"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		panic(err)
	}

	logger := utils.NewLogger()
	if cfg.LogDir != "" {
		fileLogger, err := utils.NewFileLogger(cfg.LogDir)
		if err != nil {
			logger.Errorf("file logger: %v", err)
		} else {
			logger = fileLogger
		}
	}
	defer logger.Sync()

	db, err := store.NewDB(cfg, logger)
	if err != nil {
		logger.Errorf("open database: %v", err)
		os.Exit(1)
	}
	defer db.Close()

	ctx := context.Background()
	if err := store.ApplyMigrations(ctx, db, logger); err != nil {
		logger.Errorf("migrations: %v", err)
		os.Exit(1)
	}

	runtime, err := appbootstrap.Compose(cfg, db, logger)
	if err != nil {
		logger.Errorf("compose runtime: %v", err)
		os.Exit(1)
	}

	for _, worker := range runtime.Workers {
		worker.StartWithContext(ctx)
	}
	runtime.Cron.Start()
	logger.Infof("statuspulse started, probe interval %ds", cfg.Scheduler.IntervalSeconds)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	logger.Infof("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	cronDone := runtime.Cron.Stop()
	select {
	case <-cronDone.Done():
	case <-shutdownCtx.Done():
	}
	for i := len(runtime.Workers) - 1; i >= 0; i-- {
		if err := runtime.Workers[i].StopWithContext(shutdownCtx); err != nil {
			logger.Errorf("worker shutdown: %v", err)
		}
	}
}
