package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/Eduardaskuliesa/Alina-workers/internal/actors"
	"github.com/Eduardaskuliesa/Alina-workers/internal/config"
	"github.com/Eduardaskuliesa/Alina-workers/internal/cooldown"
	"github.com/Eduardaskuliesa/Alina-workers/internal/gateway"
	"github.com/Eduardaskuliesa/Alina-workers/internal/httpapi"
	"github.com/Eduardaskuliesa/Alina-workers/internal/poller"
	"github.com/Eduardaskuliesa/Alina-workers/internal/runtime"
	"github.com/Eduardaskuliesa/Alina-workers/internal/store"
	"github.com/Eduardaskuliesa/Alina-workers/pkg/logger"
)

func main() {
	cfg := config.Load()

	log := logger.New(cfg.LogLevel)
	defer func() { _ = log.Sync() }()

	if cfg.APIKey == "" {
		log.Fatal("API_KEY is required")
	}
	if cfg.AppAPISecret == "" {
		log.Fatal("APP_API_SECRET is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Durable document store
	mongoDB, err := store.ConnectMongoDB(ctx, cfg.MongoURI, cfg.MongoDBName)
	if err != nil {
		log.Fatalw("failed to connect to MongoDB", "error", err)
	}
	defer func() { _ = mongoDB.Client().Disconnect(context.Background()) }()

	st := store.NewMongoStore(mongoDB)
	if err := store.EnsureIndexes(ctx, st); err != nil {
		log.Fatalw("failed to create indexes", "error", err)
	}
	log.Infow("connected to MongoDB", "uri", cfg.MongoURI)

	// Cooldown ledger
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       0,
	})
	defer func() { _ = redisClient.Close() }()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Fatalw("Redis connection failed", "error", err)
	}
	ledger := cooldown.NewRedisLedger(redisClient, cfg.CooldownTTL)
	log.Infow("connected to Redis", "addr", cfg.RedisAddr)

	// Notification gateway
	notifier := gateway.NewClient(gateway.Config{
		AppURL:       cfg.AppURL,
		APISecret:    cfg.AppAPISecret,
		WorkerOrigin: cfg.WorkerURL,
	}, log)

	// Actor runtime and actors
	rt := runtime.New(st, log)
	cart := actors.NewCartActor(rt, st, ledger, notifier, cfg.ReminderDelay, log)
	wishlist := actors.NewWishlistActor(rt, st, log)
	expiry7 := actors.NewExpiryActor(rt, st, notifier, 7, log)
	expiry1 := actors.NewExpiryActor(rt, st, notifier, 1, log)

	rt.RegisterHandler(actors.CartKind, cart.HandleAlarm)
	rt.RegisterHandler(expiry7.Kind(), expiry7.HandleAlarm)
	rt.RegisterHandler(expiry1.Kind(), expiry1.HandleAlarm)

	if err := rt.Start(ctx); err != nil {
		log.Fatalw("failed to start actor runtime", "error", err)
	}
	defer rt.Stop(context.Background(), cfg.ShutdownTimeout)

	// Purchase events clear carts
	purchases := poller.NewPoller(cart, log, cfg.PurchasesTopic, cfg.KafkaBrokers...)
	defer func() { _ = purchases.Close() }()

	handler := httpapi.NewHandler(cart, wishlist, expiry7, expiry1, log)
	router := httpapi.NewRouter(handler, cfg.APIKey, cfg.AllowedOrigin, log)

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Infow("reminder worker listening", "port", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		purchases.Run(gctx)
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down reminder worker...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Fatalw("reminder worker exited with error", "error", err)
	}
	log.Info("reminder worker stopped")
}
