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

	"github.com/gourmet-kitchen/ordersys/internal/config"
	"github.com/gourmet-kitchen/ordersys/internal/csvstore"
	"github.com/gourmet-kitchen/ordersys/internal/logger"
	"github.com/gourmet-kitchen/ordersys/internal/router"
	"github.com/gourmet-kitchen/ordersys/internal/service"
	"github.com/gourmet-kitchen/ordersys/internal/ws"
	"github.com/sirupsen/logrus"
)

func main() {
	if err := run(); err != nil {
		logrus.WithError(err).Fatal("server stopped")
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log := logger.New(cfg.LogLevel, cfg.LogFormat)
	log.WithFields(logrus.Fields{
		"env":      cfg.AppEnv,
		"env_file": cfg.EnvFile,
		"data_dir": cfg.DataDir,
	}).Info("configuration loaded")

	store, err := csvstore.NewStore(cfg.DataDir, cfg.BackupDir, log)
	if err != nil {
		return fmt.Errorf("open data directory: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	hub := ws.NewHub(log.WithField("component", "ws"))
	go hub.Run(ctx)

	settings := config.NewSettings(cfg)
	svc := service.New(store, settings, hub, log)
	report, err := svc.Load()
	if err != nil {
		return fmt.Errorf("load data: %w", err)
	}
	log.WithFields(logrus.Fields{
		"menu_items":    report.Menu.Rows,
		"orders":        report.Orders.Rows,
		"skipped_rows":  report.Menu.Skipped + report.Orders.Skipped,
		"dropped_lines": report.Orders.Dropped,
	}).Info("data loaded")

	saveDone := make(chan error, 1)
	go func() {
		saveDone <- svc.RunAutoSave(ctx, cfg.AutoSaveInterval)
	}()

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router.New(cfg, settings, svc, hub, log),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Infof("Starting server on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		stop()
		<-saveDone
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("http shutdown incomplete")
	}
	return <-saveDone
}
