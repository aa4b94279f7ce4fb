package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/golang-migrate/migrate/v4"
	pgmigrate "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/oksasatya/prison-staff-admin/config"
	"github.com/oksasatya/prison-staff-admin/internal/application"
	"github.com/oksasatya/prison-staff-admin/internal/container"
	"github.com/oksasatya/prison-staff-admin/internal/infrastructure/notification"
	pginfra "github.com/oksasatya/prison-staff-admin/internal/infrastructure/postgres"
	"github.com/oksasatya/prison-staff-admin/internal/infrastructure/search"
	"github.com/oksasatya/prison-staff-admin/internal/infrastructure/storage"
	"github.com/oksasatya/prison-staff-admin/internal/interface/middleware"
	"github.com/oksasatya/prison-staff-admin/internal/router"
	"github.com/oksasatya/prison-staff-admin/pkg/helpers"
	"github.com/oksasatya/prison-staff-admin/pkg/mailer"
	"github.com/oksasatya/prison-staff-admin/pkg/validation"
)

func main() {
	_ = godotenv.Load() // load .env if present

	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName, cfg.Env)
	gin.SetMode(cfg.GinMode)

	ctx := context.Background()

	pool, err := pginfra.NewPool(ctx, cfg.PostgresDSN(), cfg.DBMaxConns, cfg.DBMinConns, cfg.DBMaxConnLife)
	if err != nil {
		logger.WithError(err).Fatal("failed to connect to postgres")
	}
	defer pool.Close()

	if err := runMigrations(cfg.PostgresDSN(), cfg.MigrationsDir, logger); err != nil {
		logger.WithError(err).Fatal("migration failed")
	}

	rdb := helpers.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	defer func() { _ = rdb.Close() }()

	jwtManager := helpers.NewJWTManager(cfg.JWTAccessSecret, cfg.JWTRefreshSecret, cfg.AccessTTL, cfg.RefreshTTL)

	v := validation.New(time.Now)
	validation.Init(v)

	container.SetConfig(cfg)
	container.SetLogger(logger)
	container.SetPGPool(pool)
	container.SetRedis(rdb)
	container.SetJWT(jwtManager)
	container.SetValidator(v)

	notifier, closeNotifier := buildNotifier(cfg, logger)
	defer closeNotifier()
	container.SetNotifier(notifier)

	avatars, closeAvatars := buildAvatarStore(ctx, cfg, logger)
	defer closeAvatars()
	container.SetAvatarStore(avatars)

	if addrs := cfg.ESAddrs(); len(addrs) > 0 {
		es, err := helpers.NewESClient(addrs, cfg.ElasticsearchUser, cfg.ElasticsearchPass)
		if err != nil {
			logger.WithError(err).Fatal("failed to init elasticsearch client")
		}
		idx := search.NewUserIndex(es, cfg.ESUsersIndex)
		if err := idx.EnsureIndex(ctx); err != nil {
			logger.WithError(err).Warn("elasticsearch index not ready; indexing will retry per write")
		}
		container.SetES(es)
		container.SetUserIndexer(idx)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.RealIP())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins(),
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", middleware.HeaderRequestID},
		ExposeHeaders:    []string{"Content-Length", middleware.HeaderRequestID},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	if cfg.HTTPLogEnabled {
		r.Use(gin.Logger())
	}

	reg := router.NewRegistry(r)
	router.InitModules(reg)
	reg.RegisterAll()

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: r, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		logger.Infof("server starting on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("listen")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctxShutdown); err != nil {
		logger.WithError(err).Error("server forced to shutdown")
	}
	logger.Info("server exited properly")
}

// buildNotifier picks the email channel: disabled, queued for cmd/email_worker, or Mailgun in-process.
func buildNotifier(cfg *config.Config, logger *logrus.Logger) (application.Notifier, func()) {
	noop := func() {}
	if !cfg.MailSendEnabled {
		logger.Info("MAIL_SEND_ENABLED=false; credentials will not be emailed")
		return notification.DisabledNotifier{Logger: logger}, noop
	}
	if cfg.MailQueueEnabled {
		pub, err := helpers.NewRabbitPublisher(cfg.RabbitMQURL, cfg.RabbitMQEmailQueue)
		if err != nil {
			logger.WithError(err).Fatal("failed to connect to rabbitmq")
		}
		return notification.NewQueueNotifier(pub, cfg), pub.Close
	}
	if cfg.MailgunDomain == "" || cfg.MailgunAPIKey == "" || cfg.MailgunSender == "" {
		logger.Fatal("Mailgun not configured")
	}
	mg := mailer.NewMailgun(cfg.MailgunDomain, cfg.MailgunAPIKey, cfg.MailgunSender)
	return notification.NewMailgunNotifier(mg, cfg), noop
}

func buildAvatarStore(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (application.AvatarStore, func()) {
	if cfg.AvatarStorage != "gcs" {
		return storage.LinkStore{}, func() {}
	}
	if cfg.GCSBucket == "" {
		logger.Fatal("AVATAR_STORAGE=gcs requires GCS_BUCKET")
	}
	client, err := helpers.NewGCSClient(ctx, cfg.GCSCredentialsJSONPath)
	if err != nil {
		logger.WithError(err).Fatal("failed to init GCS client")
	}
	container.SetGCS(client)
	return storage.NewGCSStore(client, cfg.GCSBucket), func() { _ = client.Close() }
}

func runMigrations(dsn string, migrationsDir string, logger *logrus.Logger) error {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()
	driver, err := pgmigrate.WithInstance(db, &pgmigrate.Config{})
	if err != nil {
		return err
	}
	m, err := migrate.NewWithDatabaseInstance(fmt.Sprintf("file://%s", migrationsDir), "postgres", driver)
	if err != nil {
		return err
	}
	logger.Info("running migrations...")
	err = m.Up()
	if errors.Is(err, migrate.ErrNoChange) {
		logger.Info("no migrations to run")
		return nil
	}
	return err
}
