package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/academy-api/internal/config"
	"github.com/noah-isme/academy-api/internal/database"
	"github.com/noah-isme/academy-api/internal/handler"
	"github.com/noah-isme/academy-api/internal/middleware"
	"github.com/noah-isme/academy-api/internal/observability"
	"github.com/noah-isme/academy-api/internal/repository"
	"github.com/noah-isme/academy-api/internal/router"
	"github.com/noah-isme/academy-api/internal/service"
	cloud "github.com/noah-isme/academy-api/pkg/cloudinary"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Str("service", cfg.AppName).Logger()
	observability.RegisterMetrics()

	db, err := connectDatabase(cfg)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = database.ConnectRedis(context.Background(), cfg.RedisURL)
		if err != nil {
			logger.Warn().Err(err).Msg("redis unavailable, withdrawal guard disabled")
			redisClient = nil
		} else {
			defer redisClient.Close()
		}
	}

	var natsConn *nats.Conn
	if cfg.NATSURL != "" {
		natsConn, err = database.ConnectNATS(cfg.NATSURL, cfg.AppName)
		if err != nil {
			logger.Warn().Err(err).Msg("nats unavailable, withdrawal events limited to redis")
			natsConn = nil
		} else {
			defer natsConn.Close()
		}
	}

	var assets service.AssetDestroyer
	if cfg.CloudinaryEnabled() {
		uploader, err := cloud.New(cloud.Config{
			CloudName: cfg.CloudinaryCloudName,
			APIKey:    cfg.CloudinaryAPIKey,
			APISecret: cfg.CloudinaryAPISecret,
		}, logger)
		if err != nil {
			log.Fatalf("failed to create cloudinary client: %v", err)
		}
		assets = uploader
	}

	probes := map[string]handler.HealthProbe{
		"database": func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
	}
	if redisClient != nil {
		probes["redis"] = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }
	}
	if natsConn != nil {
		probes["nats"] = func(context.Context) error { return natsConn.FlushTimeout(time.Second) }
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	liveRepo := repository.NewLiveRepository(db)
	unitOfWork := repository.NewUnitOfWork(db)
	academyRepo := repository.NewAcademyRepository(db)
	auditRepo := repository.NewRetentionAuditRepository(db)

	withdrawalService := service.NewWithdrawalService(service.WithdrawalDependencies{
		Live:       liveRepo,
		UnitOfWork: unitOfWork,
		Photos:     service.NewProfilePhotoDeleter(assets, logger),
		Guard:      service.NewWithdrawalGuard(redisClient, cfg.WithdrawalLockTTL, logger),
		Events:     service.NewWithdrawalEventPublisher(redisClient, natsConn, cfg.EventChannelBase, logger),
	}, service.WithdrawalOptions{
		MaxAttempts: cfg.WithdrawalAttempts,
		Location:    cfg.Location,
	}, logger)
	academyCodeService := service.NewAcademyCodeService(academyRepo, cfg.AcademyCodeAttempts, logger)
	auditService := service.NewRetentionAuditService(auditRepo, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{
		Logger:       &logger,
		AllowOrigins: cfg.CORSAllowOrigins,
	})
	router.Register(app, cfg, router.Dependencies{
		WithdrawalHandler:     handler.NewWithdrawalHandler(withdrawalService, validate, logger),
		AcademyCodeHandler:    handler.NewAcademyCodeHandler(academyCodeService, logger),
		RetentionAuditHandler: handler.NewRetentionAuditHandler(auditService, logger),
		JWTMiddleware:         middleware.JWTProtected(cfg.JWTSecret),
		HealthProbes:          probes,
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app)
}

func connectDatabase(cfg config.Config) (*gorm.DB, error) {
	if cfg.DatabaseDriver == config.DriverSQLite {
		return database.ConnectSQLite(cfg.DatabaseURL)
	}
	return database.ConnectPostgres(cfg.DatabaseURL)
}

func waitForShutdown(app *fiber.App) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped")
}
