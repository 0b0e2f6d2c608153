package integration

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/ShaikTechV/interview-quiz-platform/internal/app"
	"github.com/ShaikTechV/interview-quiz-platform/internal/domain"
	pgloader "github.com/ShaikTechV/interview-quiz-platform/internal/infra/postgres"
	pgmigrations "github.com/ShaikTechV/interview-quiz-platform/internal/infra/postgres/migrations"
	redisstore "github.com/ShaikTechV/interview-quiz-platform/internal/infra/redis"
	"github.com/jackc/pgx/v4/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/migrate"
)

func TestAssessmentEndToEnd(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	pgURL, pgCleanup := startPostgres(t, ctx)
	defer pgCleanup()
	redisURL, redisCleanup := startRedis(t, ctx)
	defer redisCleanup()

	seedBank(t, ctx, pgURL, "accounting-v2", sampleBank())

	pool, err := pgxpool.Connect(ctx, pgURL)
	if err != nil {
		t.Fatalf("connect pg: %v", err)
	}
	defer pool.Close()

	bank, err := pgloader.NewBankLoader(pool).LoadBank(ctx, "accounting-v2")
	if err != nil {
		t.Fatalf("load bank: %v", err)
	}
	if len(bank.Questions) != 3 {
		t.Fatalf("expected 3 questions, got %d", len(bank.Questions))
	}

	redisClient, err := redisClientFromURL(redisURL)
	if err != nil {
		t.Fatalf("redis client: %v", err)
	}
	store := redisstore.NewSessionStore(redisClient, time.Hour)
	service := app.NewQuizService(store, bank, time.Minute)

	started, err := service.StartSession(ctx)
	if err != nil {
		t.Fatalf("start session: %v", err)
	}

	if err := service.SubmitAnswer(ctx, started.AccessCode, 1, domain.IndexAnswer(0)); err != nil {
		t.Fatalf("submit q1: %v", err)
	}
	if err := service.SubmitAnswer(ctx, started.AccessCode, 3, domain.TextAnswer(" 50 % ")); err != nil {
		t.Fatalf("submit q3: %v", err)
	}

	result, alreadyCompleted, err := service.FinalizeSession(ctx, started.AccessCode)
	if err != nil || alreadyCompleted {
		t.Fatalf("finalize: already=%v err=%v", alreadyCompleted, err)
	}
	if result.Score != 2 || result.Total != 3 || result.Percentage != 66.7 {
		t.Fatalf("expected 2/3 (66.7), got %+v", result)
	}

	// Result survives through the redis record.
	again, alreadyCompleted, err := service.FinalizeSession(ctx, started.AccessCode)
	if err != nil || !alreadyCompleted || again != result {
		t.Fatalf("idempotent finalize broken: %+v already=%v err=%v", again, alreadyCompleted, err)
	}
}

func TestExpiryEndToEnd(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	redisURL, redisCleanup := startRedis(t, ctx)
	defer redisCleanup()

	redisClient, err := redisClientFromURL(redisURL)
	if err != nil {
		t.Fatalf("redis client: %v", err)
	}
	store := redisstore.NewSessionStore(redisClient, time.Hour)
	service := app.NewQuizService(store, sampleBank(), time.Second)

	started, err := service.StartSession(ctx)
	if err != nil {
		t.Fatalf("start session: %v", err)
	}
	if err := service.SubmitAnswer(ctx, started.AccessCode, 3, domain.TextAnswer("50%")); err != nil {
		t.Fatalf("submit: %v", err)
	}

	time.Sleep(1500 * time.Millisecond)

	session, state, err := service.GetSessionForDisplay(ctx, started.AccessCode)
	if err != nil || state != app.ExpiredNow {
		t.Fatalf("expected ExpiredNow, got state=%v err=%v", state, err)
	}
	if session.Status != domain.StatusCompleted || session.Score != 1 {
		t.Fatalf("expected completed with partial score 1, got %+v", session)
	}

	seconds, expired, err := service.GetRemainingTime(ctx, started.AccessCode)
	if err != nil || !expired || seconds != 0 {
		t.Fatalf("expected expired 0s, got %d expired=%v err=%v", seconds, expired, err)
	}
}

func startPostgres(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "postgres:15-alpine",
		Env:          map[string]string{"POSTGRES_USER": "quiz", "POSTGRES_PASSWORD": "quizpass", "POSTGRES_DB": "quizdb"},
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
	dsn := fmt.Sprintf("postgres://quiz:quizpass@%s:%s/quizdb?sslmode=disable", host, port.Port())
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

func seedBank(t *testing.T, ctx context.Context, dsn, bankID string, bank domain.QuestionBank) {
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

	data, err := json.Marshal(bank)
	if err != nil {
		t.Fatalf("marshal bank: %v", err)
	}
	if _, err := db.ExecContext(ctx, `INSERT INTO question_banks (id, data) VALUES (?, ?::jsonb) ON CONFLICT (id) DO UPDATE SET data=EXCLUDED.data`, bankID, string(data)); err != nil {
		t.Fatalf("insert bank: %v", err)
	}
}

func sampleBank() domain.QuestionBank {
	return domain.QuestionBank{
		Title:       "Accounting & Finance Assessment",
		Description: "integration",
		Version:     "2",
		Questions: []domain.Question{
			{ID: 1, Type: domain.MultipleChoice, Prompt: "Pick A", Options: []string{"Option A", "Option B", "Option C"}, CorrectIndex: 0},
			{ID: 2, Type: domain.TrueFalse, Prompt: "Is it false?", Options: []string{"True", "False"}, CorrectIndex: 1},
			{ID: 3, Type: domain.TextInput, Prompt: "State the ratio", Accepted: []string{"0.5", "50%", "50"}},
		},
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
