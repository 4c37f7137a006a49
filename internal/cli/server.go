package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"campus-quiz-service/internal/app"
	"campus-quiz-service/internal/config"
	"campus-quiz-service/internal/domain"
	"campus-quiz-service/internal/infra/memory"
	pgstore "campus-quiz-service/internal/infra/postgres"
	redisinfra "campus-quiz-service/internal/infra/redis"
	transport "campus-quiz-service/internal/transport/http"
)

// NewServeCmd builds the CLI subcommand to start the server.
func NewServeCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the quiz server",
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

	storageTimeout := config.Duration(cfg.Quiz.StorageTimeout, 5*time.Second)
	answerKeyTTL := config.Duration(cfg.Quiz.AnswerKeyTTL, 10*time.Minute)

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
	}

	var (
		questions app.QuestionStore
		scores    app.ScoreStore
		resolver  app.NameResolver
		lister    memory.QuestionLister
	)
	if pool != nil {
		qs := pgstore.NewQuestionStore(pool, storageTimeout)
		questions = qs
		lister = qs
		scores = pgstore.NewScoreStore(pool, storageTimeout)
		resolver = pgstore.NewNameResolver(pool, storageTimeout)
	} else {
		qs := memory.NewQuestionStore(sampleQuestions()...)
		questions = qs
		lister = qs
		scores = memory.NewScoreStore()
		resolver = memory.NewStaticNameResolver(nil)
		log.Warn().Msg("postgres not configured, using in-memory stores")
	}

	var answerKey app.AnswerKeySource
	if cfg.Redis.Addr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		answerKey = redisinfra.NewAnswerKeyCache(redisClient, lister, answerKeyTTL)
	} else {
		answerKey = memory.NewCachedAnswerKey(lister, answerKeyTTL)
	}

	service := app.NewQuizService(questions, scores, resolver, answerKey)
	handler := transport.NewHandler(service)

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	handler.Register(router)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Info().Str("port", finalPort).Msg("starting quiz service")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("failed to start server")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Info().Msg("shutting down server...")
	case <-ctx.Done():
		log.Info().Msg("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// sampleQuestions seeds the in-memory store so the service is usable without
// a database.
func sampleQuestions() []domain.Question {
	return []domain.Question{
		{
			ID:   "q-go-decl",
			Text: "Which keyword declares a variable in Go?",
			Options: map[string]string{
				"a": "var",
				"b": "let",
				"c": "def",
				"d": "dim",
			},
			CorrectOption: "a",
			CreatedAt:     time.Now(),
		},
		{
			ID:   "q-http-status",
			Text: "Which HTTP status code means Not Found?",
			Options: map[string]string{
				"a": "200",
				"b": "301",
				"c": "404",
				"d": "500",
			},
			CorrectOption: "c",
			CreatedAt:     time.Now(),
		},
	}
}
