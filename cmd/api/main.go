package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"staybook/internal/cache"
	"staybook/internal/config"
	"staybook/internal/database"
	"staybook/internal/notify"
	jwtsvc "staybook/internal/pkg/jwt"
	"staybook/internal/pkg/logger"
	"staybook/internal/server"
	"staybook/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const (
	propertyImagesDir = "property-images"
	profileImagesDir  = "profile-images"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("invalid configuration")
	}
	log := logger.New(cfg.AppEnv, cfg.LogLevel)
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.Connect(cfg.DatabaseURL, log)
	if err != nil {
		log.WithError(err).Fatal("database connection failed")
	}
	if err := database.Migrate(db, log); err != nil {
		log.WithError(err).Fatal("migration failed")
	}
	reader, err := database.Reader(db)
	if err != nil {
		log.WithError(err).Fatal("read pool unavailable")
	}

	images, avatars, err := newStores(cfg)
	if err != nil {
		log.WithError(err).Fatal("storage init failed")
	}

	propertyCache, closeCache := newCache(cfg, log)
	defer closeCache()

	hub := notify.NewHub(log)
	router := server.NewRouter(server.Deps{
		Config:  cfg,
		DB:      db,
		Reader:  reader,
		JWT:     jwtsvc.New(cfg.JWTSecret, cfg.JWTTTL),
		Images:  images,
		Avatars: avatars,
		Cache:   propertyCache,
		Hub:     hub,
		Log:     log,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		log.WithFields(logrus.Fields{"port": cfg.Port, "env": cfg.AppEnv}).Info("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("server failed")
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("graceful shutdown failed")
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

func newStores(cfg *config.Config) (images, avatars storage.Store, err error) {
	if cfg.StorageDriver == config.StorageCloudinary {
		images, err = storage.NewCloudinaryStore(cfg.CloudinaryCloudName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret,
			cfg.CloudinaryFolder, "property", cfg.MaxUploadSize)
		if err != nil {
			return nil, nil, err
		}
		avatars, err = storage.NewCloudinaryStore(cfg.CloudinaryCloudName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret,
			profileImagesDir, "avatar", cfg.MaxUploadSize)
		if err != nil {
			return nil, nil, err
		}
		return images, avatars, nil
	}

	base := cfg.BaseURL + "/uploads"
	images = storage.NewLocalStore(cfg.UploadDir, base, propertyImagesDir, "property", cfg.MaxUploadSize)
	avatars = storage.NewLocalStore(cfg.UploadDir, base, profileImagesDir, "avatar", cfg.MaxUploadSize)
	return images, avatars, nil
}

// newCache uses Redis when REDIS_ADDR is set and reachable.
func newCache(cfg *config.Config, log logrus.FieldLogger) (cache.PropertyCache, func()) {
	if cfg.RedisAddr == "" {
		return cache.Nop{}, func() {}
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.WithError(err).Warn("redis unavailable, property cache disabled")
		_ = rdb.Close()
		return cache.Nop{}, func() {}
	}
	log.WithField("addr", cfg.RedisAddr).Info("property cache enabled")
	return cache.NewRedis(rdb, cfg.CacheTTL, log), func() { _ = rdb.Close() }
}
