package integration

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/migrate"

	"github.com/tanuja-67/vle-management/internal/app"
	"github.com/tanuja-67/vle-management/internal/domain"
	infrapg "github.com/tanuja-67/vle-management/internal/infra/postgres"
	pgmigrations "github.com/tanuja-67/vle-management/internal/infra/postgres/migrations"
	infraredis "github.com/tanuja-67/vle-management/internal/infra/redis"
)

type repositories struct {
	villagers  app.VillagerRepository
	results    app.ResultRepository
	selections app.SelectionRepository
	recs       app.RecommendationRepository
}

func TestSelectionWorkflowPostgres(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	pgURL, cleanup := startPostgres(t, ctx)
	defer cleanup()

	runMigrations(t, ctx, pgURL)

	pool, err := pgxpool.Connect(ctx, pgURL)
	if err != nil {
		t.Fatalf("connect pg: %v", err)
	}
	defer pool.Close()

	runWorkflow(t, ctx, repositories{
		villagers:  infrapg.NewVillagerStore(pool),
		results:    infrapg.NewResultStore(pool),
		selections: infrapg.NewSelectionStore(pool),
		recs:       infrapg.NewRecommendationStore(pool),
	})
}

func TestSelectionWorkflowRedis(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	redisURL, cleanup := startRedis(t, ctx)
	defer cleanup()

	client, err := redisClientFromURL(redisURL)
	if err != nil {
		t.Fatalf("redis client: %v", err)
	}
	defer client.Close()

	runWorkflow(t, ctx, repositories{
		villagers:  infraredis.NewVillagerStore(client),
		results:    infraredis.NewResultStore(client),
		selections: infraredis.NewSelectionStore(client),
		recs:       infraredis.NewRecommendationStore(client),
	})
}

// runWorkflow walks registration, quiz completion, selection, approval and
// a recommendation against the given backend.
func runWorkflow(t *testing.T, ctx context.Context, repos repositories) {
	t.Helper()

	registry := app.NewRegistryService(repos.villagers, app.NopNotifier{})
	quiz := app.NewQuizService(repos.villagers, repos.results, app.NopNotifier{})
	selection := app.NewSelectionService(repos.villagers, repos.results, repos.selections, repos.recs, app.NopNotifier{})
	recommendations := app.NewRecommendationService(repos.selections, repos.recs, nil, app.NopNotifier{})

	asha, err := registry.Register(ctx, app.RegistrationInput{Name: "Asha", Age: 29, Contact: "9876500001"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	bina, err := registry.Register(ctx, app.RegistrationInput{Name: "Bina", Age: 34, Contact: "9876500002"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	answers := make(map[int]int)
	for _, q := range quiz.Questions() {
		answers[q.ID] = q.Correct
	}
	result, err := quiz.Complete(ctx, asha.ID, answers)
	if err != nil {
		t.Fatalf("complete quiz: %v", err)
	}
	if result.Score != 100 {
		t.Fatalf("expected 100%%, got %d", result.Score)
	}

	// Bina answers six of eight correctly.
	partial := make(map[int]int)
	for i, q := range quiz.Questions() {
		if i < 6 {
			partial[q.ID] = q.Correct
		}
	}
	if _, err := quiz.Complete(ctx, bina.ID, partial); err != nil {
		t.Fatalf("complete quiz: %v", err)
	}

	candidates, err := selection.Candidates(ctx, 80)
	if err != nil {
		t.Fatalf("candidates: %v", err)
	}
	if len(candidates) != 1 || candidates[0].Villager.ID != asha.ID {
		t.Fatalf("expected only Asha above 80, got %+v", candidates)
	}

	if _, err := selection.Toggle(ctx, asha.ID); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	count, err := selection.Confirm(ctx)
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 confirmed, got %d", count)
	}

	// A second selection of the same villager must not duplicate the entry.
	if n, err := selection.Select(ctx, []string{asha.ID, bina.ID}); err != nil {
		t.Fatalf("select: %v", err)
	} else if n != 1 {
		t.Fatalf("expected only Bina newly selected, got %d", n)
	}
	selected, err := selection.Selected(ctx)
	if err != nil {
		t.Fatalf("selected: %v", err)
	}
	if len(selected) != 2 {
		t.Fatalf("expected 2 selected VLEs, got %d", len(selected))
	}

	if err := selection.UpdateStatus(ctx, asha.ID, domain.StatusApproved); err != nil {
		t.Fatalf("approve: %v", err)
	}
	if err := selection.UpdateStatus(ctx, asha.ID, domain.StatusRejected); !errors.Is(err, domain.ErrStatusTransition) {
		t.Fatalf("approval must be terminal, got %v", err)
	}

	rec, err := recommendations.Recommend(ctx, app.AnalysisRequest{
		VLEID: asha.ID, FileName: "soil-analysis.pdf", FileType: "application/pdf", FileSize: 2048,
	})
	if err != nil {
		t.Fatalf("recommend: %v", err)
	}
	if rec.Machine != "Soil Testing Kit & Rotary Tiller" {
		t.Fatalf("unexpected recommendation: %+v", rec)
	}

	stats, err := selection.Stats(ctx)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.TotalVillagers != 2 || stats.SelectedVLEs != 2 || stats.Recommendations != 1 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}

func runMigrations(t *testing.T, ctx context.Context, dsn string) {
	t.Helper()
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	db := bun.NewDB(sqldb, pgdialect.New())
	defer db.Close()

	migrator := migrate.NewMigrator(db, pgmigrations.Migrations)
	if err := migrator.Init(ctx); err != nil {
		t.Fatalf("migrator init: %v", err)
	}
	if _, err := migrator.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}
}

func startPostgres(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "postgres:15-alpine",
		Env:          map[string]string{"POSTGRES_USER": "vle", "POSTGRES_PASSWORD": "vlepass", "POSTGRES_DB": "vledb"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor:   wait.ForListeningPort("5432/tcp").WithStartupTimeout(60 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start postgres: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("port: %v", err)
	}
	dsn := fmt.Sprintf("postgres://vle:vlepass@%s:%s/vledb?sslmode=disable", host, port.Port())
	return dsn, func() {
		_ = container.Terminate(ctx)
	}
}

func startRedis(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(30 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start redis: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("redis host: %v", err)
	}
	port, err := container.MappedPort(ctx, "6379/tcp")
	if err != nil {
		t.Fatalf("redis port: %v", err)
	}
	url := fmt.Sprintf("redis://%s:%s", host, port.Port())
	return url, func() {
		_ = container.Terminate(ctx)
	}
}

func redisClientFromURL(url string) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return goredis.NewClient(&goredis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	}), nil
}

func requireDocker(t *testing.T) {
	t.Helper()
	if _, err := tc.NewDockerProvider(); err != nil {
		t.Skipf("docker not available: %v", err)
	}
}
