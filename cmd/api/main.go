package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/multierr"

	"github.com/creatorden/backend/api/routes"
	"github.com/creatorden/backend/internal/access"
	"github.com/creatorden/backend/internal/comments"
	"github.com/creatorden/backend/internal/creators"
	"github.com/creatorden/backend/internal/ledger"
	"github.com/creatorden/backend/internal/media"
	"github.com/creatorden/backend/internal/moderation"
	"github.com/creatorden/backend/internal/posts"
	"github.com/creatorden/backend/internal/reports"
	"github.com/creatorden/backend/internal/stats"
	subscriptionsvc "github.com/creatorden/backend/internal/subscriptions"
	"github.com/creatorden/backend/internal/tiers"
	"github.com/creatorden/backend/internal/users"
	"github.com/creatorden/backend/internal/wallet"
	"github.com/creatorden/backend/pkg/config"
	"github.com/creatorden/backend/pkg/db"
	"github.com/creatorden/backend/pkg/logger"
	"github.com/creatorden/backend/pkg/metrics"
	"github.com/creatorden/backend/pkg/migrate"
	"github.com/creatorden/backend/pkg/redis"
)

const shutdownTimeout = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	walletMetrics := metrics.NewWalletMetrics(registry)

	deps, err := buildServices(cfg, dbClient, walletMetrics)
	if err != nil {
		logg.Error(context.Background(), "failed to wire services", err)
		os.Exit(1)
	}
	deps.Config = cfg
	deps.Logger = logg
	deps.DBPinger = dbClient
	deps.Redis = redisClient
	deps.Registry = registry

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port

	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:              addr,
		Handler:           routes.NewRouter(deps),
		ReadHeaderTimeout: 10 * time.Second,
	}

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serverErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-sigCtx.Done():
		logg.Info(ctx, "shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	closeErr := server.Shutdown(shutdownCtx)
	closeErr = multierr.Append(closeErr, redisClient.Close())
	closeErr = multierr.Append(closeErr, dbClient.Close())
	if closeErr != nil {
		logg.Error(ctx, "shutdown finished with errors", closeErr)
		os.Exit(1)
	}
	logg.Info(ctx, "api server stopped")
}

// buildServices assembles the repository and service graph. Order matters:
// the wallet consumes the ledger, users consume the wallet for provisioning,
// and the access gate sits on top of posts and subscriptions.
func buildServices(cfg *config.Config, dbClient *db.Client, walletMetrics *metrics.WalletMetrics) (routes.Deps, error) {
	gdb := dbClient.DB()

	ledgerSvc, err := ledger.NewService(ledger.NewRepository(gdb))
	if err != nil {
		return routes.Deps{}, err
	}

	walletSvc, err := wallet.NewService(dbClient, wallet.NewAccountRepository(gdb), ledgerSvc, walletMetrics, cfg.Wallet.AutoProvision)
	if err != nil {
		return routes.Deps{}, err
	}

	usersSvc, err := users.NewService(dbClient, users.NewRepository(gdb), walletSvc)
	if err != nil {
		return routes.Deps{}, err
	}

	creatorsSvc, err := creators.NewService(dbClient, creators.NewRepository(gdb), users.NewRepository(gdb))
	if err != nil {
		return routes.Deps{}, err
	}

	tiersSvc, err := tiers.NewService(tiers.NewRepository(gdb))
	if err != nil {
		return routes.Deps{}, err
	}

	subscriptionsSvc, err := subscriptionsvc.NewService(dbClient, subscriptionsvc.NewRepository(gdb), tiersSvc)
	if err != nil {
		return routes.Deps{}, err
	}

	classifier := moderation.NewKeywordClassifier(cfg.Moderation.BlockedKeywords)

	postsSvc, err := posts.NewService(posts.NewRepository(gdb), subscriptionsSvc, classifier)
	if err != nil {
		return routes.Deps{}, err
	}

	gate, err := access.NewGate(postsSvc, subscriptionsSvc)
	if err != nil {
		return routes.Deps{}, err
	}

	commentsSvc, err := comments.NewService(comments.NewRepository(gdb), gate)
	if err != nil {
		return routes.Deps{}, err
	}

	mediaSvc, err := media.NewService(media.NewRepository(gdb))
	if err != nil {
		return routes.Deps{}, err
	}

	reportsSvc, err := reports.NewService(reports.NewRepository(gdb))
	if err != nil {
		return routes.Deps{}, err
	}

	statsSvc, err := stats.NewService(stats.NewRepository(gdb), subscriptionsSvc, postsSvc, ledgerSvc, wallet.NewAccountRepository(gdb))
	if err != nil {
		return routes.Deps{}, err
	}

	return routes.Deps{
		Users:         usersSvc,
		Creators:      creatorsSvc,
		Tiers:         tiersSvc,
		Posts:         postsSvc,
		Media:         mediaSvc,
		Subscriptions: subscriptionsSvc,
		Wallet:        walletSvc,
		Comments:      commentsSvc,
		Reports:       reportsSvc,
		Stats:         statsSvc,
		Classifier:    classifier,
	}, nil
}
