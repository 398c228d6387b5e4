package server

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"evaltrack/internal/domain/auth"
	"evaltrack/internal/domain/catalog"
	"evaltrack/internal/domain/evaluation"
	"evaltrack/internal/domain/identity"
	"evaltrack/internal/domain/payrollsetup"
	"evaltrack/internal/platform/config"
	"evaltrack/internal/platform/db"
	"evaltrack/internal/platform/email"
	"evaltrack/internal/platform/jobs"
	"evaltrack/internal/platform/metrics"
	"evaltrack/internal/transport/http/api"
	authhandler "evaltrack/internal/transport/http/handlers/auth"
	cataloghandler "evaltrack/internal/transport/http/handlers/catalog"
	evaluationshandler "evaltrack/internal/transport/http/handlers/evaluations"
	identityhandler "evaltrack/internal/transport/http/handlers/identity"
	payrollsetuphandler "evaltrack/internal/transport/http/handlers/payrollsetup"
	reportshandler "evaltrack/internal/transport/http/handlers/reports"
	"evaltrack/internal/transport/http/middleware"
)

type App struct {
	Config config.Config
	DB     *pgxpool.Pool
	Router http.Handler

	cancelJobs context.CancelFunc
}

// New connects, migrates, seeds and assembles the router. The caller owns the
// returned App and must Close it.
func New(ctx context.Context, cfg config.Config) (*App, error) {
	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		return nil, err
	}

	if cfg.RunMigrations {
		if err := db.Migrate(ctx, pool, cfg.MigrationsDir); err != nil {
			pool.Close()
			return nil, err
		}
	}
	if cfg.RunSeed {
		if err := db.Seed(ctx, pool, cfg); err != nil {
			pool.Close()
			return nil, err
		}
	}

	authStore := auth.NewStore(pool)
	identityStore := identity.NewStore(pool)
	catalogStore := catalog.NewStore(pool)
	evaluationStore := evaluation.NewStore(pool)
	payrollStore := payrollsetup.NewStore(pool)
	evaluationService := evaluation.NewService(evaluationStore, identityStore)
	collector := metrics.New()
	mailer := email.New(cfg)

	jobCtx, cancelJobs := context.WithCancel(context.Background())
	jobService := jobs.New(pool, cfg, mailer, identityStore, evaluationStore)
	jobService.Start(jobCtx)

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	if cfg.MetricsEnabled {
		router.Use(middleware.Metrics(collector))
	}
	router.Use(middleware.SecureHeaders(cfg.Environment == "production"))
	router.Use(middleware.BodyLimit(cfg.MaxBodyBytes))
	router.Use(middleware.RateLimit(cfg.RateLimitPerMinute, time.Minute))
	router.Use(middleware.Auth(cfg.JWTSecret))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	router.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := pool.Ping(ctx); err != nil {
			http.Error(w, "db not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	if cfg.MetricsEnabled {
		router.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
			api.Success(w, collector.Snapshot(), middleware.GetRequestID(r.Context()))
		})
	}

	router.Route("/api/v1", func(r chi.Router) {
		authHandler := authhandler.NewHandler(authStore, cfg.JWTSecret)
		r.With(middleware.LoginRateLimit(cfg.RateLimitPerMinute, time.Minute)).
			Post("/auth/login", authHandler.HandleLogin)
		r.Post("/auth/logout", authHandler.HandleLogout)
		r.Post("/auth/refresh", authHandler.HandleRefresh)

		evaluationsHandler := evaluationshandler.NewHandler(evaluationService, catalogStore, authStore)
		evaluationsHandler.RegisterRoutes(r)

		catalogHandler := cataloghandler.NewHandler(catalogStore, authStore)
		catalogHandler.RegisterRoutes(r)

		reportsHandler := reportshandler.NewHandler(evaluationService, authStore, collector, cfg.ExportDir)
		reportsHandler.RegisterRoutes(r)

		identityHandler := identityhandler.NewHandler(identityStore, authStore)
		identityHandler.RegisterRoutes(r)

		payrollHandler := payrollsetuphandler.NewHandler(payrollStore, authStore)
		payrollHandler.RegisterRoutes(r)
	})

	return &App{
		Config:     cfg,
		DB:         pool,
		Router:     router,
		cancelJobs: cancelJobs,
	}, nil
}

func (a *App) Close() {
	a.cancelJobs()
	a.DB.Close()
}

func Run() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config invalid: %v", err)
	}

	app, err := New(context.Background(), cfg)
	if err != nil {
		log.Fatalf("startup failed: %v", err)
	}
	defer app.Close()

	log.Printf("evaltrack server listening on %s", cfg.Addr)
	if err := http.ListenAndServe(cfg.Addr, app.Router); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}
