package admin

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/spf13/cobra"

	"github.com/campushub/campushub/internal/api/handlers"
	"github.com/campushub/campushub/internal/api/middleware"
	"github.com/campushub/campushub/internal/cache"
	"github.com/campushub/campushub/internal/config"
	"github.com/campushub/campushub/internal/database"
	"github.com/campushub/campushub/internal/jobs"
	"github.com/campushub/campushub/internal/repository"
	"github.com/campushub/campushub/internal/server"
	"github.com/campushub/campushub/internal/service"
	"github.com/campushub/campushub/internal/telemetry"
)

// popularity snapshots are cheap, so the worker can run often
const popularitySnapshotInterval = time.Minute

// ServeCmd returns the serve command
func ServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		Long:  "Start the campushub API server on the specified port",
		RunE:  runServe,
	}

	cmd.Flags().StringP("port", "p", "8080", "Port to listen on")
	cmd.Flags().Bool("no-migrate", false, "Skip automatic database migrations on startup")

	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if cfg.SentryDSN != "" {
		environment := cfg.SentryEnvironment
		if environment == "" {
			environment = "development"
		}

		shutdownTelemetry, err := telemetry.Init(telemetry.Config{
			DSN:              cfg.SentryDSN,
			Environment:      environment,
			TracesSampleRate: cfg.SentryTracesSampleRate,
			Debug:            cfg.Debug,
		})
		if err != nil {
			log.Printf("telemetry init failed (continuing without tracing): %v", err)
		} else {
			defer shutdownTelemetry()
		}
	}

	portFlag, _ := cmd.Flags().GetString("port")
	if portFlag != "" && portFlag != "8080" {
		cfg.Port = portFlag
	}

	pool, err := database.NewPool(ctx, database.Config{URL: cfg.DatabaseURL})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()
	log.Println("connected to database")

	// Run migrations unless --no-migrate flag is set
	noMigrate, _ := cmd.Flags().GetBool("no-migrate")
	if !noMigrate {
		if err := runMigrations(cfg.DatabaseURL); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	var c cache.Cache
	if cfg.HasRedis() {
		redisCache, err := cache.NewRedis(ctx, cache.RedisConfig{Addr: cfg.RedisAddr})
		if err != nil {
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
		defer redisCache.Close()
		log.Println("connected to redis")
		c = redisCache
	} else {
		log.Println("redis not configured, using in-memory cache")
		c = cache.NewMemory()
	}

	universityRepo := repository.NewUniversityRepository(pool)
	userRepo := repository.NewUserRepository(pool)
	postRepo := repository.NewPostRepository(pool)
	noteRepo := repository.NewNoteRepository(pool)
	reviewRepo := repository.NewReviewRepository(pool)
	historyRepo := repository.NewSearchHistoryRepository(pool)
	suggestionRepo := repository.NewSuggestionRepository(pool)
	txRunner := repository.NewTxRunner(pool)

	var prober *service.CapabilityProber
	switch cfg.SearchTier {
	case string(service.TierAdvanced):
		prober = service.NewStaticCapability(service.TierAdvanced)
		log.Println("search: advanced tier forced by config")
	case string(service.TierFallback):
		prober = service.NewStaticCapability(service.TierFallback)
		log.Println("search: fallback tier forced by config")
	default:
		prober = service.NewCapabilityProber(repository.NewCapabilityProbe(pool))
	}

	historySvc := service.NewHistoryService(historyRepo, c)
	searchSvc := service.NewSearchService(prober, universityRepo, userRepo, postRepo, noteRepo, reviewRepo, historySvc)
	suggestionSvc := service.NewSuggestionService(prober, suggestionRepo)
	postSvc := service.NewPostService(postRepo, c)
	noteSvc := service.NewNoteService(noteRepo)
	reviewSvc := service.NewReviewService(reviewRepo, universityRepo, txRunner)

	popularityWorker := jobs.NewWorker(jobs.NewPopularityWorker(historySvc), popularitySnapshotInterval)
	go popularityWorker.Start(ctx)
	log.Println("popularity snapshot worker started")

	routerCfg := server.RouterConfig{
		TokenValidator:    service.NewStaticTokenValidator(cfg.AuthTokens),
		RateLimiter:       middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst),
		SearchHandler:     handlers.NewSearchHandler(searchSvc, suggestionSvc, historySvc),
		UniversityHandler: handlers.NewUniversityHandler(universityRepo),
		UserHandler:       handlers.NewUserHandler(userRepo),
		PostHandler:       handlers.NewPostHandler(postSvc),
		NoteHandler:       handlers.NewNoteHandler(noteSvc),
		ReviewHandler:     handlers.NewReviewHandler(reviewSvc),
	}

	router := server.NewRouter(routerCfg)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Printf("starting server on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("shutting down...")

	popularityWorker.Stop()

	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Println("server exited")
	return nil
}

func runMigrations(databaseURL string) error {
	// Create a sql.DB connection for golang-migrate
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return fmt.Errorf("failed to open database for migrations: %w", err)
	}
	defer db.Close()

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		"file://migrations",
		"postgres",
		driver,
	)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}

	err = m.Up()
	if err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	version, dirty, err := m.Version()
	if err != nil && err != migrate.ErrNilVersion {
		return fmt.Errorf("failed to get migration version: %w", err)
	}

	if err == migrate.ErrNilVersion {
		log.Println("migrations: database is up to date (no migrations applied)")
	} else if dirty {
		return fmt.Errorf("migration version %d is dirty - manual intervention required", version)
	} else if err == migrate.ErrNoChange {
		log.Printf("migrations: database is up to date (version %d)", version)
	} else {
		log.Printf("migrations: applied successfully (version %d)", version)
	}

	return nil
}
