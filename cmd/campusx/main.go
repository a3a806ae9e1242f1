package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"campusx/internal/app/policies"
	authsvc "campusx/internal/app/services/auth"
	bookingsvc "campusx/internal/app/services/booking"
	offeringsvc "campusx/internal/app/services/offering"
	reviewsvc "campusx/internal/app/services/review"
	uploadsvc "campusx/internal/app/services/upload"
	usersvc "campusx/internal/app/services/user"
	domainbooking "campusx/internal/domain/booking"
	domainoffering "campusx/internal/domain/offering"
	domainreview "campusx/internal/domain/review"
	domainuser "campusx/internal/domain/user"
	"campusx/internal/infra/broker/kafka"
	"campusx/internal/infra/config"
	mongodb "campusx/internal/infra/db/mongo"
	ginserver "campusx/internal/infra/http/gin"
	"campusx/internal/infra/obs"
	"campusx/internal/infra/security"
	"campusx/internal/infra/storage/memory"
	"campusx/internal/infra/storage/s3"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	logger := obs.NewLogger(cfg.Env)
	if err != nil {
		logger.Error("configuration load failed", "error", err)
		os.Exit(1)
	}

	deps, cleanup, err := buildDependencies(ctx, cfg, logger)
	if err != nil {
		logger.Error("dependency wiring failed", "error", err)
		os.Exit(1)
	}
	defer cleanup()

	server := ginserver.NewServer(cfg, obs.Middleware{Logger: logger}, obs.HealthHandlers{
		Checks: deps.checks,
	}, buildHandlers(cfg, logger, deps))

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("http shutdown failed", "error", err)
		}
	}()

	logger.Info("HTTP server starting", "addr", cfg.HTTPAddr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("http server failed", "error", err)
		os.Exit(1)
	}
	logger.Info("HTTP server stopped")
}

type dependencies struct {
	users     domainuser.Repository
	offerings domainoffering.Repository
	bookings  domainbooking.Repository
	reviews   domainreview.Repository
	txn       reviewsvc.TransactionRunner
	notifier  policies.Notifier
	uploader  uploadsvc.Uploader
	checks    []obs.Check
}

func buildDependencies(ctx context.Context, cfg config.Config, logger *slog.Logger) (dependencies, func(), error) {
	deps := dependencies{
		notifier: policies.NoopNotifier{},
		uploader: s3.NoopUploader{},
	}
	var cleanups []func()
	cleanup := func() {
		for i := len(cleanups) - 1; i >= 0; i-- {
			cleanups[i]()
		}
	}

	if cfg.MongoURI != "" {
		client, err := mongodb.New(cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			return deps, cleanup, err
		}
		deps.users = mongodb.NewUserRepository(client.DB)
		deps.offerings = mongodb.NewOfferingRepository(client.DB)
		deps.bookings = mongodb.NewBookingRepository(client.DB)
		deps.reviews = mongodb.NewReviewRepository(client.DB)
		deps.txn = client
		deps.checks = append(deps.checks, obs.Check{Name: "mongo", Probe: func(ctx context.Context) error {
			pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
			defer cancel()
			return client.Ping(pingCtx)
		}})
		logger.Info("mongo storage attached", "database", cfg.MongoDB)
	} else {
		deps.users = memory.NewUserRepository()
		deps.offerings = memory.NewOfferingRepository()
		deps.bookings = memory.NewBookingRepository()
		deps.reviews = memory.NewReviewRepository()
		logger.Warn("MONGO_URI not set, using in-memory storage")
	}

	if len(cfg.KafkaBrokers) > 0 {
		producer, err := kafka.NewProducer(cfg.KafkaBrokers, nil)
		if err != nil {
			return deps, cleanup, err
		}
		cleanups = append(cleanups, func() {
			if err := producer.Close(); err != nil {
				logger.Error("kafka producer close failed", "error", err)
			}
		})
		deps.notifier = kafka.NewNotifier(producer, cfg.KafkaTopicPrefix)
		logger.Info("kafka notifier attached", "brokers", cfg.KafkaBrokers)
	} else {
		logger.Warn("KAFKA_BROKERS not set, booking events will be dropped")
	}

	uploader, err := s3.NewClient(s3.Options{
		Endpoint:      cfg.S3Endpoint,
		UseSSL:        cfg.S3UseSSL,
		AccessKey:     cfg.S3AccessKey,
		SecretKey:     cfg.S3SecretKey,
		Bucket:        cfg.S3Bucket,
		PublicBaseURL: cfg.S3PublicEndpoint,
		Logger:        logger,
	})
	if err != nil {
		logger.Warn("s3 uploader unavailable", "error", err)
	} else {
		deps.uploader = uploader
	}

	return deps, cleanup, nil
}

func buildHandlers(cfg config.Config, logger *slog.Logger, deps dependencies) ginserver.Handlers {
	tokens := security.JWTManager{Secret: []byte(cfg.JWTSecret), TTL: cfg.JWTTTL}

	authService := &authsvc.Service{
		Users:       deps.users,
		Passwords:   security.BcryptHasher{Cost: cfg.BcryptCost},
		Tokens:      tokens,
		ResetTokens: security.ResetTokenGenerator{},
		Notifier:    deps.notifier,
		Logger:      logger,
	}
	userService := &usersvc.Service{Users: deps.users}
	offeringService := &offeringsvc.Service{Offerings: deps.offerings}
	bookingService := &bookingsvc.Service{
		Bookings:  deps.bookings,
		Offerings: deps.offerings,
		Users:     deps.users,
		Notifier:  deps.notifier,
		Logger:    logger,
	}
	reviewService := &reviewsvc.Service{
		Reviews: deps.reviews,
		Users:   deps.users,
		Txn:     deps.txn,
	}
	uploadService := &uploadsvc.Service{Store: deps.uploader}

	return ginserver.Handlers{
		Auth:           ginserver.AuthHandler{Auth: authService, Users: deps.users},
		User:           ginserver.UserHandler{Users: userService},
		Offering:       ginserver.OfferingHandler{Offerings: offeringService, Users: deps.users},
		Booking:        ginserver.BookingHandler{Bookings: bookingService},
		Review:         ginserver.ReviewHandler{Reviews: reviewService},
		Upload:         ginserver.UploadHandler{Uploads: uploadService},
		AuthMiddleware: ginserver.AuthMiddleware{Tokens: tokens}.Handle,
	}
}
