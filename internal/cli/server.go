package cli

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/ShaikTechV/interview-quiz-platform/internal/app"
	"github.com/ShaikTechV/interview-quiz-platform/internal/config"
	"github.com/ShaikTechV/interview-quiz-platform/internal/domain"
	"github.com/ShaikTechV/interview-quiz-platform/internal/infra/memory"
	pgloader "github.com/ShaikTechV/interview-quiz-platform/internal/infra/postgres"
	redisstore "github.com/ShaikTechV/interview-quiz-platform/internal/infra/redis"
	"github.com/ShaikTechV/interview-quiz-platform/internal/infra/yamlbank"
	transport "github.com/ShaikTechV/interview-quiz-platform/internal/transport/http"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the assessment server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	bank, err := loadBank(ctx, cfg)
	if err != nil {
		// Bank integrity violations abort startup; serving a malformed
		// bank is the one unrecoverable condition.
		return err
	}
	log.Printf("loaded question bank %q version %s (%d questions)", bank.Title, bank.Version, len(bank.Questions))

	limit := config.Duration(cfg.Quiz.TimeLimit, defaultTimeLimit(bank))

	var store app.SessionStore = memory.NewSessionStore()
	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		store = redisstore.NewSessionStore(client, config.Duration(cfg.Redis.TTL, 24*time.Hour))
	}

	service := app.NewQuizService(store, bank, limit)
	sweeper := app.NewSweeper(service, config.Duration(cfg.Quiz.SweepInterval, time.Minute))
	handler := transport.NewHandler(service)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	handler.Register(mux)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Printf("starting assessment service on :%s (time limit %s)", finalPort, limit)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		return sweeper.Run(ctx)
	})
	g.Go(func() error {
		<-ctx.Done()
		log.Println("shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func loadBank(ctx context.Context, cfg config.Config) (domain.QuestionBank, error) {
	if cfg.Postgres.URL != "" && cfg.Postgres.BankID != "" {
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return domain.QuestionBank{}, err
		}
		defer pool.Close()
		return pgloader.NewBankLoader(pool).LoadBank(ctx, cfg.Postgres.BankID)
	}
	if cfg.Quiz.Bank != "" {
		return yamlbank.Load(cfg.Quiz.Bank)
	}
	bank := sampleBank()
	if err := bank.Validate(); err != nil {
		return domain.QuestionBank{}, err
	}
	return bank, nil
}

func defaultTimeLimit(bank domain.QuestionBank) time.Duration {
	if bank.TimeLimitSeconds > 0 {
		return time.Duration(bank.TimeLimitSeconds) * time.Second
	}
	return 45 * time.Minute
}

// sampleBank is a minimal built-in bank for running without any configured
// bank source; swap in a YAML asset or Postgres bank in production.
func sampleBank() domain.QuestionBank {
	return domain.QuestionBank{
		Title:            "Accounting & Finance Assessment",
		Description:      "Professional interview evaluation",
		Version:          "builtin-1",
		TimeLimitSeconds: 2700,
		Questions: []domain.Question{
			{
				ID:     1,
				Type:   domain.MultipleChoice,
				Prompt: "Out of following which is not capital item?",
				Options: []string{
					"(a) Computer set purchased",
					"(b) Freight charges incurred for purchase of machinery",
					"(c) Compensation paid to employees who are retrenched",
					"(d) Installed family planning center",
				},
				CorrectIndex: 2,
			},
			{
				ID:     2,
				Type:   domain.MultipleChoice,
				Prompt: "Salary paid to Mohan is debited to Mohan A/c. This error is",
				Options: []string{
					"(a) Principle error",
					"(b) Compensation error",
					"(c) Omission error",
					"(d) No error at all",
				},
				CorrectIndex: 0,
			},
			{
				ID:           3,
				Type:         domain.TrueFalse,
				Prompt:       "Drawing decrease the assets and decrease the liability.\n\nEvaluate this statement as True or False.",
				Options:      []string{"True", "False"},
				CorrectIndex: 1,
			},
			{
				ID:       4,
				Type:     domain.TextInput,
				Prompt:   "Gross margin is 50000 on sales of 100000. State the gross margin ratio.",
				Accepted: []string{"50%", "50", "0.5", "0.50"},
			},
		},
	}
}
