package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"lapse/internal/config"
	"lapse/internal/daemon"
	"lapse/internal/deps"
	"lapse/internal/history"
	"lapse/internal/logging"
	"lapse/internal/monitor"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, cfgPath, _, err := config.Load("")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		log.Fatalf("ensure directories: %v", err)
	}

	logger, err := logging.New(logging.Options{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		OutputPaths: []string{"stdout", filepath.Join(cfg.Paths.LogDir, "lapse.log")},
	})
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}

	for _, warning := range cfg.Warnings() {
		logger.Warn(warning)
	}

	if err := deps.Verify(cfg); err != nil {
		logger.Warn("dependency check failed, captures will not work until fixed", logging.Error(err))
	} else if err := deps.CheckCamera(ctx, cfg); err != nil {
		logger.Warn("camera not detected, captures will fail until it is connected", logging.Error(err))
	}

	store, err := history.Open(cfg)
	if err != nil {
		logger.Error("open history store", logging.Error(err))
		os.Exit(1)
	}

	mon, err := monitor.New(monitor.Options{
		Config:     cfg,
		ConfigPath: cfgPath,
		Logger:     logger,
		History:    store,
	})
	if err != nil {
		logger.Error("create monitor", logging.Error(err))
		store.Close()
		os.Exit(1)
	}

	d, err := daemon.New(cfg, store, logger, mon)
	if err != nil {
		logger.Error("create daemon", logging.Error(err))
		store.Close()
		os.Exit(1)
	}

	if err := d.Start(ctx); err != nil {
		// A second instance losing the lock race lands here and must
		// report failure to its service manager.
		logger.Error("daemon start", logging.Error(err))
		d.Close()
		os.Exit(1)
	}
	defer d.Close()

	<-ctx.Done()
	logger.Info("lapsed shutting down")
	d.Stop()
}
