package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"margo/internal/adapters"
	"margo/internal/bootstrap"
	refereeDelivery "margo/internal/delivery/referee"
	ownMiddleware "margo/internal/middleware"
	repo "margo/internal/repository"
	refereeuc "margo/internal/usecase/referee"
)

type dataBaseAdapters struct {
	redisAdapter *adapters.AdapterRedis
	mongoAdapter *adapters.AdapterMongo
}

func main() {
	logger := NewLogger()
	defer logger.Sync()

	cfg, err := bootstrap.Setup(".env")
	if err != nil {
		logger.Error("Failed to setup configuration", zap.Error(err))
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go handleShutdown(cancel, logger)

	databaseAdapters := initDatabaseAdapters(ctx, logger, cfg)
	defer databaseAdapters.close(logger)

	r := chi.NewRouter()
	if cfg.IsLocalCors {
		r.Use(ownMiddleware.CORS)
	}
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	refereeUC := initializeUseCase(*cfg, logger, databaseAdapters)
	go sweepMatches(ctx, refereeUC, cfg.MatchTTL())

	handler := refereeDelivery.NewRefereeHandler(*cfg, logger, refereeUC)
	handler.Routes(r)

	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, stop := context.WithTimeout(context.Background(), 5*time.Second)
		defer stop()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Errorf("shutdown: %v", err)
		}
	}()

	logger.Infof("Server is running on port %s", cfg.ServerPort)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Failed to start server", zap.Error(err))
	}
}

func NewLogger() *zap.SugaredLogger {
	logger, err := zap.NewProduction()
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	return logger.Sugar()
}

// initDatabaseAdapters connects the configured stores. A store whose URL is
// empty stays nil and the referee runs without it.
func initDatabaseAdapters(ctx context.Context, log *zap.SugaredLogger, cfg *bootstrap.Config) *dataBaseAdapters {
	res := &dataBaseAdapters{}

	if cfg.MongoUri != "" {
		mongoAdapter := adapters.NewAdapterMongo(cfg, log)
		if err := mongoAdapter.Init(ctx); err != nil {
			log.Fatal("Failed to initialise MongoDB", zap.Error(err))
		}
		res.mongoAdapter = mongoAdapter
	}

	if cfg.RedisUrl != "" {
		redisAdapter := adapters.NewAdapterRedis(cfg, log)
		if err := redisAdapter.Init(ctx); err != nil {
			log.Fatal("Failed to initialise Redis", zap.Error(err))
		}
		res.redisAdapter = redisAdapter
	}

	log.Infof("Database adapters initialised: mongo=%t redis=%t", res.mongoAdapter != nil, res.redisAdapter != nil)
	return res
}

func (d *dataBaseAdapters) close(log *zap.SugaredLogger) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if d.mongoAdapter != nil {
		if err := d.mongoAdapter.Close(ctx); err != nil {
			log.Errorf("mongo close: %v", err)
		}
	}
	if d.redisAdapter != nil {
		if err := d.redisAdapter.Close(ctx); err != nil {
			log.Errorf("redis close: %v", err)
		}
	}
}

func initializeUseCase(
	cfg bootstrap.Config,
	log *zap.SugaredLogger,
	databaseAdapters *dataBaseAdapters,
) *refereeuc.RefereeUseCase {
	var cache refereeuc.LegalCache
	if databaseAdapters.redisAdapter != nil {
		cache = repo.NewPositionCache(databaseAdapters.redisAdapter.GetClient(), cfg.CacheTTL(), log)
	}

	var journal refereeuc.Journal
	if databaseAdapters.mongoAdapter != nil {
		journal = repo.NewAdjudicationJournal(databaseAdapters.mongoAdapter.Database, log)
	}

	return refereeuc.NewRefereeUseCase(cfg, log, cache, journal)
}

// sweepMatches evicts idle hosted matches a few times per TTL until ctx ends.
func sweepMatches(ctx context.Context, uc *refereeuc.RefereeUseCase, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	ticker := time.NewTicker(max(ttl/4, time.Second))
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			uc.SweepMatches(ctx)
		}
	}
}

func handleShutdown(cancelFunc context.CancelFunc, log *zap.SugaredLogger) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	<-sigs
	log.Info("Received shutdown signal")
	cancelFunc()
}
