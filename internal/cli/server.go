package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"mocktest-service/internal/app"
	"mocktest-service/internal/config"
	"mocktest-service/internal/domain"
	"mocktest-service/internal/infra/memory"
	pgstore "mocktest-service/internal/infra/postgres"
	rediscache "mocktest-service/internal/infra/redis"
	transport "mocktest-service/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the mock-test server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	logger, err := zap.NewProduction()
	if err != nil {
		return err
	}
	defer logger.Sync()

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

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
	}

	var loader memory.TestLoader = memory.NewStaticTestLoader(sampleTests())
	if pool != nil {
		loader = pgstore.NewTestLoader(pool)
	}

	testTTL := config.TTLDuration(cfg.MockTest.TTL, 10*time.Minute)
	var tests app.TestRepository
	if redisClient != nil {
		tests = rediscache.NewTestRepository(redisClient, loader, testTTL)
	} else {
		tests = memory.NewTestRepository(loader, testTTL)
	}

	var results app.ResultStore = memory.NewResultStore()
	var packages app.PackageRepository = memory.NewPackageStoreWith(samplePackages())
	var members app.MembershipRepository = sampleMemberships()
	if pool != nil {
		results = pgstore.NewResultStore(pool)
		packages = pgstore.NewPackageStore(pool)
		members = pgstore.NewMembershipStore(pool)
	}

	handler := transport.NewHandler(
		app.NewSubmissionService(tests, results),
		app.NewDiscountService(members, packages),
		app.NewPackageService(packages),
		logger,
	)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      handler.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		logger.Info("starting mock-test service", zap.String("port", finalPort))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("failed to start server", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		logger.Info("shutting down server")
	case <-ctx.Done():
		logger.Info("context canceled, shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// sampleTests provides a minimal data set so the server is usable without
// a database; production deployments configure Postgres instead.
func sampleTests() map[string]domain.MockTest {
	return map[string]domain.MockTest{
		"test-1": {
			ID:    "test-1",
			Title: "Physics Mock Test 1",
			Questions: []domain.Question{
				{
					ID:      "q1",
					Text:    "What is the SI unit of force?",
					Type:    domain.QuestionMultipleChoice,
					Subject: "Physics",
					Options: []domain.Option{
						{Text: "Joule", Correct: false},
						{Text: "Newton", Correct: true},
						{Text: "Pascal", Correct: false},
					},
				},
				{
					ID:            "q2",
					Text:          "Light travels faster in water than in vacuum.",
					Type:          domain.QuestionTrueFalse,
					Subject:       "Physics",
					CorrectAnswer: "false",
				},
			},
			NumberOfQuestions: 2,
			MarksPerQuestion:  1,
			TotalMarks:        2,
			PassingMarks:      1,
			NumberOfAttempts:  3,
		},
	}
}

func samplePackages() map[string]domain.Package {
	return map[string]domain.Package{
		"pkg-1": {
			ID:                         "pkg-1",
			Name:                       "Physics Bundle",
			Price:                      1000,
			EligibilityDiscountEnabled: true,
		},
	}
}

func sampleMemberships() *memory.MembershipStore {
	store := memory.NewMembershipStore()
	group := domain.Group{
		ID:                 "grp-1",
		Name:               "Study Circle",
		Active:             true,
		DiscountPercentage: 15,
		MinMembers:         3,
		MemberCount:        8,
	}
	store.PutGroup(group)
	store.PutMemberships(domain.UserMemberships{UserID: "user-1", Group: &group})
	return store
}
