package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tanuja-67/vle-management/internal/app"
	"github.com/tanuja-67/vle-management/internal/config"
	"github.com/tanuja-67/vle-management/internal/infra/gemini"
	"github.com/tanuja-67/vle-management/internal/infra/memory"
	pgstore "github.com/tanuja-67/vle-management/internal/infra/postgres"
	redisstore "github.com/tanuja-67/vle-management/internal/infra/redis"
	transport "github.com/tanuja-67/vle-management/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the VLE service",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

type repositories struct {
	villagers  app.VillagerRepository
	results    app.ResultRepository
	selections app.SelectionRepository
	recs       app.RecommendationRepository
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	log, err := newLogger(cfg.Log.Mode)
	if err != nil {
		return err
	}
	defer log.Sync()

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "5000"
	}

	repos, cleanup, err := buildRepositories(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer cleanup()

	hub := transport.NewNotificationHub(log)

	registry := app.NewRegistryService(repos.villagers, hub)
	quiz := app.NewQuizService(repos.villagers, repos.results, hub)
	selection := app.NewSelectionService(repos.villagers, repos.results, repos.selections, repos.recs, hub)

	cacheTTL := config.TTLDuration(cfg.Cache.TTL, time.Minute)
	cache := memory.NewCandidateCache(selection, cacheTTL)
	quiz.OnCompletion(cache.Invalidate)
	selection.OnChange(cache.Invalidate)

	var analyzer app.Analyzer
	if cfg.Gemini.APIKey != "" {
		analyzer, err = gemini.NewAnalyzer(ctx, cfg.Gemini.APIKey, cfg.Gemini.Model)
		if err != nil {
			return err
		}
	} else {
		log.Warn("gemini api key not configured, using rule-based recommendations")
	}
	recommendations := app.NewRecommendationService(repos.selections, repos.recs, analyzer, hub)

	minScore := cfg.Selection.MinScore
	if minScore == 0 {
		minScore = 50
	}

	handler := transport.NewHandler(registry, quiz, selection, recommendations, cache, minScore, log)
	mux := http.NewServeMux()
	handler.Register(mux)
	mux.HandleFunc("/ws/notifications", hub.ServeWS)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Infow("starting vle service", "port", finalPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Errorw("failed to start server", "error", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Info("shutting down server...")
	case <-ctx.Done():
		log.Info("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// buildRepositories picks the backing store: Postgres when configured, then
// Redis, then in-memory.
func buildRepositories(ctx context.Context, cfg config.Config, log *zap.SugaredLogger) (repositories, func(), error) {
	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return repositories{}, nil, err
		}
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return repositories{}, nil, err
		}
		log.Info("using postgres store")
		return repositories{
			villagers:  pgstore.NewVillagerStore(pool),
			results:    pgstore.NewResultStore(pool),
			selections: pgstore.NewSelectionStore(pool),
			recs:       pgstore.NewRecommendationStore(pool),
		}, pool.Close, nil
	}

	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		log.Info("using redis store")
		return repositories{
			villagers:  redisstore.NewVillagerStore(client),
			results:    redisstore.NewResultStore(client),
			selections: redisstore.NewSelectionStore(client),
			recs:       redisstore.NewRecommendationStore(client),
		}, func() { _ = client.Close() }, nil
	}

	log.Info("using in-memory store")
	return repositories{
		villagers:  memory.NewVillagerStore(),
		results:    memory.NewResultStore(),
		selections: memory.NewSelectionStore(),
		recs:       memory.NewRecommendationStore(),
	}, func() {}, nil
}

func newLogger(mode string) (*zap.SugaredLogger, error) {
	var cfg zap.Config
	switch strings.ToLower(mode) {
	case "prod", "production":
		cfg = zap.NewProductionConfig()
	default:
		cfg = zap.NewDevelopmentConfig()
	}
	logger, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return logger.Sugar(), nil
}
