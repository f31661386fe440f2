package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	_ "github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"

	"github.com/rl1809/storefront/internal/adapter/handler"
	"github.com/rl1809/storefront/internal/adapter/handler/pb"
	"github.com/rl1809/storefront/internal/adapter/notify"
	"github.com/rl1809/storefront/internal/adapter/orderapi"
	"github.com/rl1809/storefront/internal/adapter/storage"
	"github.com/rl1809/storefront/internal/config"
	"github.com/rl1809/storefront/internal/core/service"
	"github.com/rl1809/storefront/internal/logger"
	"github.com/rl1809/storefront/internal/port"
)

const shutdownTimeout = 5 * time.Second

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	defer log.Sync()

	if err := run(cfg, log); err != nil {
		log.Fatal("server exited", zap.Error(err))
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize storage
	backend, err := openStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer backend.close()

	// Initialize notification workers
	var notifiers []port.Notifier
	if len(cfg.Notify.KafkaBrokers) > 0 {
		writer := notify.NewKafkaWriter(cfg.Notify.KafkaBrokers, cfg.Notify.KafkaTopic)
		defer writer.Close()
		notifiers = append(notifiers, notify.NewKafkaNotifier(writer))
		log.Info("kafka notifier enabled", zap.Strings("brokers", cfg.Notify.KafkaBrokers), zap.String("topic", cfg.Notify.KafkaTopic))
	}
	if cfg.Notify.SendGridAPIKey != "" && cfg.Notify.MailFrom != "" {
		notifiers = append(notifiers, notify.NewEmailNotifier(cfg.Notify.SendGridAPIKey, cfg.Notify.MailFromName, cfg.Notify.MailFrom))
		log.Info("email notifier enabled", zap.String("from", cfg.Notify.MailFrom))
	}
	notifiers = append(notifiers, notify.NewLogNotifier(log))

	dispatcher := service.NewNotificationDispatcher(cfg.Notify.QueueSize, log, notifiers...)
	dispatcher.Start(cfg.Notify.Workers)
	defer dispatcher.Close()
	log.Info("started notification workers", zap.Int("workers", cfg.Notify.Workers))

	// Initialize services
	location, err := time.LoadLocation(cfg.Checkout.Location)
	if err != nil {
		return fmt.Errorf("load checkout location: %w", err)
	}

	orders := orderapi.NewClient(cfg.OrderAPI.BaseURL, cfg.OrderAPI.Timeout)
	carts := service.NewCartRegistry(backend.store, log)
	checkout := service.NewCheckoutService(carts, orders, service.CheckoutDeps{
		Orders:        orders,
		Guard:         backend.guard,
		Notifications: dispatcher,
		Messages: service.MessageBuilder{
			Location:        location,
			DefaultCurrency: cfg.Checkout.DefaultCurrency,
			Footer:          cfg.Checkout.Footer,
		},
		Logger: log,
	})

	// Initialize gRPC server
	grpcServer := grpc.NewServer()
	pb.RegisterStorefrontServer(grpcServer, handler.NewGRPCHandler(carts, checkout, log))

	lis, err := net.Listen("tcp", cfg.GRPC.Addr)
	if err != nil {
		return fmt.Errorf("listen grpc: %w", err)
	}

	// Initialize HTTP server
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	handler.NewHTTPHandler(carts, checkout, log).Register(router)

	httpServer := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      router,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("gRPC server listening", zap.String("addr", cfg.GRPC.Addr))
		return grpcServer.Serve(lis)
	})

	g.Go(func() error {
		log.Info("HTTP server listening", zap.String("addr", cfg.HTTP.Addr))
		if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	// Graceful shutdown
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Error("HTTP server shutdown failed", zap.Error(err))
		}
		log.Info("HTTP server stopped")

		grpcServer.GracefulStop()
		log.Info("gRPC server stopped")
		return nil
	})

	if err := g.Wait(); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return err
	}
	return nil
}

type storeBackend struct {
	store port.CartStore
	guard port.SubmitGuard
	close func()
}

// openStore connects the configured cart store. Redis also provides the
// cross-instance submit guard; the other drivers fall back to an
// in-process guard.
func openStore(ctx context.Context, cfg *config.Config, log *zap.Logger) (*storeBackend, error) {
	switch cfg.Store.Driver {
	case "redis":
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			PoolSize: cfg.Redis.PoolSize,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		log.Info("connected to redis", zap.String("addr", cfg.Redis.Addr))

		adapter := storage.NewRedisAdapter(rdb, cfg.Store.CartTTL, cfg.Checkout.GuardTTL, instanceID())
		return &storeBackend{store: adapter, guard: adapter, close: func() { rdb.Close() }}, nil

	case "mysql":
		db, err := sql.Open("mysql", cfg.MySQL.DSN)
		if err != nil {
			return nil, fmt.Errorf("open mysql: %w", err)
		}
		db.SetMaxOpenConns(cfg.MySQL.MaxOpenConns)
		db.SetMaxIdleConns(cfg.MySQL.MaxIdleConns)
		db.SetConnMaxLifetime(cfg.MySQL.ConnMaxLifetime)

		if err := db.PingContext(ctx); err != nil {
			db.Close()
			return nil, fmt.Errorf("ping mysql: %w", err)
		}
		log.Info("connected to mysql")

		adapter := storage.NewMySQLAdapter(db)
		if err := adapter.Migrate(ctx); err != nil {
			db.Close()
			return nil, fmt.Errorf("migrate mysql: %w", err)
		}
		return &storeBackend{store: adapter, guard: storage.NewMemoryAdapter(), close: func() { db.Close() }}, nil

	default:
		log.Warn("using in-memory cart store, carts are lost on restart")
		mem := storage.NewMemoryAdapter()
		return &storeBackend{store: mem, guard: mem, close: func() {}}, nil
	}
}

func instanceID() string {
	host, err := os.Hostname()
	if err != nil {
		host = "storefront"
	}
	return host + "-" + uuid.NewString()
}
