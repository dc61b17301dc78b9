package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/creatorden/backend/api/controllers"
	"github.com/creatorden/backend/api/middleware"
	"github.com/creatorden/backend/internal/comments"
	"github.com/creatorden/backend/internal/creators"
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
	"github.com/creatorden/backend/pkg/redis"
)

// Deps bundles everything the router wires into handlers. Grouping them in a
// struct keeps main readable as the service count grows.
type Deps struct {
	Config   *config.Config
	Logger   *logger.Logger
	DBPinger db.Pinger
	Redis    *redis.Client
	Registry *prometheus.Registry

	Users         users.Service
	Creators      creators.Service
	Tiers         tiers.Service
	Posts         posts.Service
	Media         media.Service
	Subscriptions subscriptionsvc.Service
	Wallet        wallet.Service
	Comments      comments.Service
	Reports       reports.Service
	Stats         stats.Service
	Classifier    moderation.ContentClassifier
}

func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	var redisPinger redis.Pinger
	if deps.Redis != nil {
		redisPinger = deps.Redis
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.DBPinger, redisPinger))
	})

	if deps.Registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))
	}

	walletPolicy := middleware.NewWalletRateLimitPolicy(
		"wallet",
		cfg.RateLimit.WalletWindow,
		cfg.RateLimit.WalletUserLimit,
		cfg.RateLimit.WalletIPLimit,
	)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/users/register", controllers.UserRegister(deps.Users, logg))

		// Public reads; an API key, when present, personalizes gating.
		r.Group(func(r chi.Router) {
			r.Use(middleware.OptionalAPIKeyAuth(deps.Users, logg))
			r.Get("/creators/by-handle/{handle}", controllers.CreatorProfileByHandle(deps.Creators, logg))
			r.Get("/creators/{creatorId}/tiers", controllers.TierList(deps.Tiers, logg))
			r.Get("/creators/{creatorId}/posts", controllers.PostList(deps.Posts, logg))
			r.Get("/posts/{postId}/comments", controllers.CommentList(deps.Comments, logg))
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.APIKeyAuth(deps.Users, logg))

			r.Route("/users/me", func(r chi.Router) {
				r.Get("/", controllers.UserProfile(deps.Users, logg))
				r.Post("/rotate-key", controllers.UserRotateAPIKey(deps.Users, logg))
			})

			r.Route("/creators", func(r chi.Router) {
				r.Post("/", controllers.CreatorProfileCreate(deps.Creators, logg))
				r.Get("/me", controllers.CreatorProfileMine(deps.Creators, logg))
				r.Get("/{creatorId}/stats", controllers.CreatorStatsFetch(deps.Stats, logg))
			})

			r.Route("/tiers", func(r chi.Router) {
				r.Post("/", controllers.TierCreate(deps.Tiers, logg))
				r.Delete("/{tierId}", controllers.TierDeactivate(deps.Tiers, logg))
			})

			r.Route("/posts", func(r chi.Router) {
				r.Post("/", controllers.PostCreate(deps.Posts, logg))
				r.Post("/{postId}/publish", controllers.PostPublish(deps.Posts, logg))
				r.Post("/{postId}/comments", controllers.CommentAdd(deps.Comments, logg))
			})

			r.Route("/media", func(r chi.Router) {
				r.Post("/", controllers.MediaCreate(deps.Media, logg))
				r.Get("/", controllers.MediaList(deps.Media, logg))
			})

			r.Route("/subscriptions", func(r chi.Router) {
				r.Post("/", controllers.SubscriptionCreate(deps.Subscriptions, logg))
				r.Get("/", controllers.SubscriptionList(deps.Subscriptions, logg))
				r.Delete("/{creatorId}", controllers.SubscriptionCancel(deps.Subscriptions, logg))
			})

			r.Route("/tokens", func(r chi.Router) {
				if deps.Redis != nil {
					r.Use(middleware.Idempotency(deps.Redis, logg))
					r.Use(middleware.WalletRateLimit(walletPolicy, deps.Redis, logg))
				}
				r.Post("/purchase", controllers.TokenPurchase(deps.Wallet, logg))
				r.Post("/tip", controllers.TokenTip(deps.Wallet, logg))
				r.Get("/balance", controllers.TokenBalance(deps.Wallet, logg))
				r.Get("/history", controllers.TokenHistory(deps.Wallet, logg))
			})

			r.Post("/moderation/classify", controllers.ModerationClassify(deps.Classifier, logg))

			r.Route("/reports", func(r chi.Router) {
				r.Post("/", controllers.ReportCreate(deps.Reports, logg))
				r.Get("/", controllers.ReportList(deps.Reports, logg))
				r.Post("/{reportId}/status", controllers.ReportUpdateStatus(deps.Reports, logg))
			})
		})
	})

	return r
}
