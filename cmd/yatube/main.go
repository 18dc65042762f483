package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"yatube/internal/config"
	"yatube/internal/logging"
	"yatube/internal/media"
	"yatube/internal/pagecache"
	"yatube/internal/server"
	"yatube/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Logger.WithError(err).Fatal("Failed to load config")
	}
	if err := logging.Init(cfg.LogLevel, cfg.LogstashAddr); err != nil {
		logging.Logger.WithError(err).Fatal("Failed to set up logging")
	}

	store, err := storage.Open(cfg)
	if err != nil {
		logging.Logger.WithError(err).Fatal("Failed to open database")
	}
	defer store.Close()
	if err := store.Migrate(); err != nil {
		logging.Logger.WithError(err).Fatal("Failed to migrate database")
	}

	if len(os.Args) > 1 && os.Args[1] == "seed-group" {
		if err := seedGroup(context.Background(), store, os.Args[2:]); err != nil {
			logging.Logger.WithError(err).Fatal("seed-group failed")
		}
		return
	}

	if err := serve(cfg, store); err != nil {
		logging.Logger.WithError(err).Fatal("Server stopped")
	}
}

func serve(cfg *config.Config, store *storage.Storage) error {
	ctx := context.Background()
	cache := pagecache.New(
		pagecache.Open(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB),
		time.Duration(cfg.CacheTTLSeconds)*time.Second,
	)

	opts := server.Options{
		Storage:  store,
		Cache:    cache,
		Sessions: server.NewCookieStore(cfg.SessionKey),
		PerPage:  cfg.PageSize,
	}
	if cfg.S3Bucket != "" {
		s3Store, err := media.NewS3Store(cfg.S3Bucket, cfg.S3Region, cfg.S3PublicURL)
		if err != nil {
			return err
		}
		opts.Media = s3Store
	} else {
		local, err := media.NewLocalStore(cfg.MediaRoot, cfg.MediaURL)
		if err != nil {
			return err
		}
		opts.Media = local
		opts.MediaRoot = cfg.MediaRoot
	}

	srv, err := server.New(opts)
	if err != nil {
		return errors.Wrap(err, "failed to build server")
	}

	logging.Logger.WithFields(logrus.Fields{
		"port":  cfg.Port,
		"cache": cfg.CacheTTLSeconds,
	}).Warn("Server starting")
	return http.ListenAndServe(cfg.Port, srv)
}
