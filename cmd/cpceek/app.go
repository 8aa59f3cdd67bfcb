package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/jaki95/cpceek/config"
	"github.com/jaki95/cpceek/internal/collection"
	"github.com/jaki95/cpceek/internal/confirm"
	"github.com/jaki95/cpceek/internal/export"
	"github.com/jaki95/cpceek/internal/logging"
	"github.com/jaki95/cpceek/internal/progress"
	"github.com/jaki95/cpceek/internal/storage"
	"github.com/jaki95/cpceek/internal/transport"
)

type app struct {
	cfg       *config.Config
	logger    *slog.Logger
	processor *collection.Processor
	closers   []io.Closer
}

func newApp(ctx context.Context, cfgPath string, assumeYes bool) (*app, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}

	logger, logCloser := logging.Setup(slog.Level(cfg.LogLevel), os.Stdout, cfg.Log)
	slog.SetDefault(logger)

	a := &app{cfg: cfg, logger: logger}

	router, err := transport.NewRouter(transport.Options{
		BaseAddress: cfg.Server.CatalogURL(),
		Username:    cfg.Server.Username,
		Password:    cfg.Server.Password,
		Timeout:     time.Duration(cfg.Server.TimeoutSeconds) * time.Second,
		Logger:      logger,
	})
	if err != nil {
		logCloser.Close()
		return nil, err
	}
	a.closers = append(a.closers, router)

	var publisher storage.Publisher
	if cfg.Publish.Type == "gcs" {
		gcs, err := storage.NewGCSPublisher(ctx, cfg.Publish.Bucket, cfg.Publish.ObjectPrefix, cfg.Publish.CredentialsFile)
		if err != nil {
			a.close()
			logCloser.Close()
			return nil, err
		}
		publisher = gcs
		a.closers = append(a.closers, gcs)
	}
	a.closers = append(a.closers, logCloser)

	var confirmer confirm.Confirmer = confirm.Stdin()
	if assumeYes || cfg.AssumeYes {
		confirmer = confirm.Auto(true)
	}

	store := storage.NewLocalFileStorage()
	exporter := export.NewExporter(store, cfg.Storage.WorkDir, publisher, logger)

	a.processor = collection.NewProcessor(store, router, confirmer, exporter, collection.Options{
		CatalogURL:     cfg.Server.CatalogURL(),
		IndexFile:      cfg.Server.IndexFile,
		WhatsNewFile:   cfg.Server.WhatsNewFile,
		RomsDir:        cfg.Storage.RomsDir,
		WorkDir:        cfg.Storage.WorkDir,
		ProgressOutput: progress.ConsoleWriter(),
	}, logger)

	return a, nil
}

func (a *app) close() {
	var errs []error
	for _, c := range a.closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		fmt.Fprintln(os.Stderr, "cleanup:", err)
	}
}
