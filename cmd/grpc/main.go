package main

import (
	"context"
	"fmt"
	"log"
	"net"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/fekuna/omnipos-catalog-service/config"
	"github.com/fekuna/omnipos-catalog-service/internal/category"
	"github.com/fekuna/omnipos-catalog-service/internal/database"
	"github.com/fekuna/omnipos-catalog-service/internal/event"
	"github.com/fekuna/omnipos-catalog-service/internal/item"
	"github.com/fekuna/omnipos-catalog-service/internal/live"
	"github.com/fekuna/omnipos-catalog-service/internal/mail"
	"github.com/fekuna/omnipos-catalog-service/internal/model"
	"github.com/fekuna/omnipos-catalog-service/internal/rpc"
	"github.com/fekuna/omnipos-catalog-service/pkg/broker"
	"github.com/fekuna/omnipos-catalog-service/pkg/cache"
	"github.com/fekuna/omnipos-catalog-service/pkg/database/postgres"
	"github.com/fekuna/omnipos-catalog-service/pkg/logger"
	"github.com/fekuna/omnipos-catalog-service/pkg/search"

	catH "github.com/fekuna/omnipos-catalog-service/internal/category/handler"
	catRepoPkg "github.com/fekuna/omnipos-catalog-service/internal/category/repository"
	catUCPkg "github.com/fekuna/omnipos-catalog-service/internal/category/usecase"

	itemH "github.com/fekuna/omnipos-catalog-service/internal/item/handler"
	itemRepoPkg "github.com/fekuna/omnipos-catalog-service/internal/item/repository"
	itemUCPkg "github.com/fekuna/omnipos-catalog-service/internal/item/usecase"

	liveH "github.com/fekuna/omnipos-catalog-service/internal/live/handler"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

func main() {
	// 1. Load Configuration
	_ = godotenv.Load() // Load .env file if it exists
	cfg := config.LoadEnv()

	// 2. Initialize Logger
	logConfig := &logger.ZapLoggerConfig{
		IsDevelopment:     false,
		Encoding:          cfg.Logger.Encoding,
		Level:             cfg.Logger.Level,
		DisableCaller:     cfg.Logger.DisableCaller,
		DisableStacktrace: cfg.Logger.DisableStacktrace,
	}

	if cfg.Server.AppEnv == "development" {
		logConfig.IsDevelopment = true
		logConfig.Encoding = "console"
		logConfig.Level = "debug"
	}

	appLogger := logger.NewZapLogger(logConfig)
	defer appLogger.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 3. Initialize Repositories
	catRepo, itemRepo, closeRepos, err := newRepositories(ctx, cfg, appLogger)
	if err != nil {
		appLogger.Fatal("Could not initialize repositories", zap.Error(err))
	}
	defer closeRepos()

	// 4. Initialize Redis
	redisClient := cache.NewRedisClient(&cache.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()
	if err := redisClient.Ping(ctx); err != nil {
		// The cache fails open, so a missing Redis only costs latency.
		appLogger.Warn("Could not reach Redis, reads will go to the repository", zap.Error(err))
	} else {
		appLogger.Info("Connected to Redis", zap.String("addr", cfg.Redis.Addr))
	}
	itemCache := cache.NewStore[model.Item](redisClient, "catalog:item", cfg.Redis.ItemTTL, appLogger)
	catCache := cache.NewStore[model.Category](redisClient, "catalog:category", cfg.Redis.CategoryTTL, appLogger)

	// 5. Initialize Broker Publisher
	publisher, err := broker.NewPublisher(ctx, &broker.Config{
		Driver: cfg.Broker.Driver,
		Kafka: broker.KafkaConfig{
			Brokers:      cfg.Kafka.Brokers,
			BatchTimeout: cfg.Kafka.BatchTimeout,
		},
		NATS: broker.NATSConfig{
			URL:          cfg.NATS.URL,
			Name:         "catalog-service",
			FlushTimeout: cfg.NATS.FlushTimeout,
		},
		AMQP: broker.AMQPConfig{
			URL:      cfg.AMQP.URL,
			Exchange: cfg.AMQP.Exchange,
		},
	})
	if err != nil {
		appLogger.Warn("Could not connect to broker, pub/sub events are disabled",
			zap.String("driver", cfg.Broker.Driver), zap.Error(err))
		publisher = broker.NopPublisher{}
	} else {
		appLogger.Info("Broker publisher ready", zap.String("driver", cfg.Broker.Driver))
	}
	defer publisher.Close()

	// 6. Initialize Live Hub and Mail Worker
	hub := live.NewHub(cfg.Live.ClientBuffer, appLogger)

	mailQueue := mail.NewQueue()
	mailSender := mail.NewSMTPSender(mail.SMTPConfig{
		Host:     cfg.SMTP.Host,
		Port:     cfg.SMTP.Port,
		Username: cfg.SMTP.Username,
		Password: cfg.SMTP.Password,
		From:     cfg.SMTP.From,
	}, appLogger)
	mailWorker := mail.NewWorker(mailQueue, mailSender, cfg.Mail.SendTimeout, appLogger)
	mailTemplates, err := mail.NewTemplates(cfg.Mail.Language)
	if err != nil {
		appLogger.Fatal("Could not load mail templates", zap.Error(err))
	}

	workerDone := make(chan struct{})
	go func() {
		defer close(workerDone)
		mailWorker.Start(ctx)
	}()

	// 7. Initialize Event Fan-out
	channels := []event.Channel{
		event.NewLiveChannel(hub, cfg.Live.Group),
	}
	if cfg.Broker.Driver != broker.DriverNone {
		channels = append(channels, event.NewPubSubChannel(publisher, cfg.Broker.Source))
	}
	if cfg.Mail.NotifyTo != "" {
		channels = append(channels, event.NewMailChannel(mailTemplates, mailQueue, cfg.Mail.NotifyTo))
	} else {
		appLogger.Info("MAIL_NOTIFY_TO not set, mail notifications are disabled")
	}
	if cfg.Elastic.Enabled {
		esClient, err := search.NewClient(&search.Config{
			Addresses: cfg.Elastic.Addresses,
			Username:  cfg.Elastic.Username,
			Password:  cfg.Elastic.Password,
		})
		if err != nil {
			appLogger.Warn("Could not connect to Elasticsearch, search indexing is disabled", zap.Error(err))
		} else {
			appLogger.Info("Connected to Elasticsearch", zap.Strings("addresses", cfg.Elastic.Addresses))
			channels = append(channels, event.NewSearchChannel(esClient, cfg.Elastic.Index))
		}
	}
	fanout := event.NewFanout(appLogger, cfg.Events.DispatchTimeout, channels...)

	// 8. Initialize UseCases
	catUC := catUCPkg.NewCategoryUseCase(catRepo, itemRepo, catCache, appLogger)
	itemUC := itemUCPkg.NewItemUseCase(itemRepo, catUC, itemCache, fanout, appLogger)

	if len(cfg.Repository.SeedCategories) > 0 {
		if err := catUCPkg.SeedCategories(ctx, catUC, cfg.Repository.SeedCategories, appLogger); err != nil {
			appLogger.Fatal("Could not seed categories", zap.Error(err))
		}
	}

	// 9. Initialize Handlers
	catHandler := catH.NewCategoryHandler(catUC, appLogger)
	itemHandler := itemH.NewItemHandler(itemUC, appLogger)
	liveHandler := liveH.NewLiveHandler(hub, appLogger)

	// 10. Start gRPC Server
	port := cfg.Server.GRPCPort
	if !strings.HasPrefix(port, ":") {
		port = ":" + port
	}

	lis, err := net.Listen("tcp", port)
	if err != nil {
		log.Fatalf("failed to listen: %v", err)
	}

	grpcServer := grpc.NewServer(
		grpc.UnaryInterceptor(rpc.UnaryLoggingInterceptor(appLogger)),
		grpc.StreamInterceptor(rpc.StreamLoggingInterceptor(appLogger)),
	)

	// Register Services
	catH.RegisterCategoryServiceServer(grpcServer, catHandler)
	itemH.RegisterItemServiceServer(grpcServer, itemHandler)
	liveH.RegisterLiveServiceServer(grpcServer, liveHandler)

	healthServer := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthServer)
	for _, svc := range []string{itemH.ServiceName, catH.ServiceName, liveH.ServiceName} {
		healthServer.SetServingStatus(svc, healthpb.HealthCheckResponse_SERVING)
	}

	// Register Reflection
	reflection.Register(grpcServer)

	appLogger.Info("Starting gRPC server", zap.String("port", port), zap.String("repository", cfg.Repository.Driver))

	// Graceful Shutdown
	go func() {
		if err := grpcServer.Serve(lis); err != nil {
			appLogger.Fatal("failed to serve", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...")
	healthServer.Shutdown()
	hub.Close() // ends live streams so GracefulStop does not wait on them
	grpcServer.GracefulStop()

	fanout.Wait()
	mailQueue.Close()
	select {
	case <-workerDone:
	case <-time.After(cfg.Server.ShutdownTimeout):
		appLogger.Warn("Mail worker did not drain in time", zap.Int("pending", mailQueue.Len()))
		cancel()
	}
	appLogger.Info("Server stopped")
}

func newRepositories(ctx context.Context, cfg *config.Config, log logger.ZapLogger) (category.Repository, item.Repository, func(), error) {
	switch cfg.Repository.Driver {
	case "memory":
		catRepo := catRepoPkg.NewMemoryRepository()
		log.Info("Using in-memory repositories")
		return catRepo, itemRepoPkg.NewMemoryRepository(catRepo), func() {}, nil

	case "postgres", "":
		db, err := postgres.NewPostgres(&postgres.Config{
			Host:            cfg.Postgres.Host,
			Port:            cfg.Postgres.Port,
			User:            cfg.Postgres.User,
			Password:        cfg.Postgres.Password,
			DBName:          cfg.Postgres.DBName,
			SSLMode:         cfg.Postgres.SSLMode,
			MaxOpenConns:    cfg.Postgres.MaxOpenConns,
			MaxIdleConns:    cfg.Postgres.MaxIdleConns,
			ConnMaxLifetime: time.Duration(cfg.Postgres.ConnMaxLifetime) * time.Second,
			ConnMaxIdleTime: time.Duration(cfg.Postgres.ConnMaxIdleTime) * time.Second,
		})
		if err != nil {
			return nil, nil, nil, err
		}
		log.Info("Connected to PostgreSQL database", zap.String("db_name", cfg.Postgres.DBName))

		if cfg.Postgres.AutoMigrate {
			if err := database.EnsureSchema(ctx, db); err != nil {
				db.Close()
				return nil, nil, nil, err
			}
		}
		closeDB := func() { _ = db.Close() }
		return catRepoPkg.NewPGRepository(db), itemRepoPkg.NewPGRepository(db), closeDB, nil

	default:
		return nil, nil, nil, fmt.Errorf("unknown repository driver %q", cfg.Repository.Driver)
	}
}
