package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"quizbox-service/internal/app"
	"quizbox-service/internal/auth"
	"quizbox-service/internal/config"
	"quizbox-service/internal/domain"
	"quizbox-service/internal/infra/blob"
	"quizbox-service/internal/infra/memory"
	"quizbox-service/internal/infra/postgres"
	infraredis "quizbox-service/internal/infra/redis"
	"quizbox-service/internal/logging"
	"quizbox-service/internal/metrics"
	"quizbox-service/internal/player"
	transport "quizbox-service/internal/transport/http"
)

const (
	sweepInterval = time.Minute
	flushInterval = 30 * time.Second
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the quiz server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

// quizStore is what the server needs from a record store.
type quizStore interface {
	app.QuizStore
	app.PlayCounter
	infraredis.PlaySink
}

// sweeper drops expired sessions.
type sweeper interface {
	Sweep() int
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.LoadOrDefault(configPath)
	if err != nil {
		return err
	}

	log := logging.New(logging.Options{
		Level:      cfg.Log.Level,
		File:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
	})
	defer func() { _ = log.Sync() }()

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg, log); err != nil {
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
		defer redisClient.Close()
	}
	sessionTTL := config.Duration(cfg.Redis.TTL, 30*time.Minute)

	var store quizStore
	if cfg.Postgres.URL != "" {
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		defer pool.Close()
		store = postgres.NewQuizStore(pool)
	} else {
		log.Warn("postgres not configured, quizzes are kept in memory")
		store = memory.NewQuizStore(demoQuiz())
	}

	quizTTL := config.Duration(cfg.Quiz.TTL, 10*time.Minute)
	var (
		quizRepo app.QuizRepository
		sessions app.SessionRepository
		counter  app.PlayCounter = store
		buffered *infraredis.PlayCounter
	)
	if redisClient != nil {
		quizRepo = infraredis.NewQuizRepository(redisClient, store, quizTTL)
		sessions = infraredis.NewSessionStore(redisClient, sessionTTL)
		buffered = infraredis.NewPlayCounter(redisClient)
		counter = buffered
	} else {
		quizRepo = memory.NewQuizRepository(store, quizTTL)
		sessions = memory.NewSessionStore(sessionTTL)
	}

	images, uploadsDir, err := newImageStore(ctx, cfg)
	if err != nil {
		return err
	}

	secret := cfg.Auth.JWTSecret
	if secret == "" {
		secret = uuid.NewString()
		log.Warn("auth.jwt_secret not set, operator tokens will not survive a restart")
	}
	authSvc, err := auth.NewService(auth.Config{
		Username:     cfg.Auth.Username,
		PasswordHash: cfg.Auth.PasswordHash,
		Secret:       secret,
		TokenTTL:     config.Duration(cfg.Auth.TokenTTL, 8*time.Hour),
		LoginRPS:     cfg.Auth.LoginRPS,
	})
	if err != nil {
		return err
	}

	m := metrics.New()
	play := app.NewPlayService(sessions, quizRepo, player.Options{SkipIntro: cfg.Quiz.SkipIntro},
		app.WithPlayCounter(counter),
		app.WithObserver(m),
		app.WithLogger(log),
	)
	authoring := app.NewAuthoringService(store, quizRepo, images, publicURL(cfg, finalPort))

	api := transport.NewAPI(play, authoring, authSvc, m, log)
	wsHandler := transport.NewWSHandler(play, nil, log)
	router := transport.NewRouter(api, wsHandler, transport.RouterConfig{
		CORSOrigins: cfg.Server.CORSOrigins,
		UploadsDir:  uploadsDir,
	})

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      router,
		ReadTimeout:  config.Duration(cfg.Server.ReadTimeout, 15*time.Second),
		WriteTimeout: config.Duration(cfg.Server.WriteTimeout, 15*time.Second),
	}

	flush := func(ctx context.Context) {
		if buffered == nil {
			return
		}
		n, err := buffered.Flush(ctx, store)
		if err != nil {
			log.Warn("play count flush failed", zap.Error(err))
		}
		m.PlayFlushes.Add(float64(n))
	}

	bgCtx, stopBackground := context.WithCancel(context.Background())
	bgDone := make(chan struct{})
	go func() {
		defer close(bgDone)
		runBackground(bgCtx, sessions, flush, log)
	}()

	serveErr := make(chan error, 1)
	go func() {
		log.Info("starting quiz service", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(stop)

	var runErr error
	select {
	case <-stop:
		log.Info("shutting down server")
	case <-ctx.Done():
		log.Info("context canceled, shutting down server")
	case runErr = <-serveErr:
		log.Error("server failed", zap.Error(runErr))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil && runErr == nil {
		runErr = err
	}
	stopBackground()
	<-bgDone
	play.Wait()
	flush(shutdownCtx)
	return runErr
}

// runBackground sweeps idle sessions and flushes buffered play counts until ctx ends.
func runBackground(ctx context.Context, sessions app.SessionRepository, flush func(context.Context), log *zap.Logger) {
	sweepTicker := time.NewTicker(sweepInterval)
	defer sweepTicker.Stop()
	flushTicker := time.NewTicker(flushInterval)
	defer flushTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-sweepTicker.C:
			if sw, ok := sessions.(sweeper); ok {
				if n := sw.Sweep(); n > 0 {
					log.Debug("expired sessions swept", zap.Int("count", n))
				}
			}
		case <-flushTicker.C:
			flush(ctx)
		}
	}
}

func newImageStore(ctx context.Context, cfg config.Config) (app.ImageStore, string, error) {
	switch cfg.Storage.Driver {
	case "", "fs":
		fs, err := blob.NewFSStore(cfg.Storage.FS.BasePath, cfg.Storage.FS.PublicURL)
		if err != nil {
			return nil, "", fmt.Errorf("fs image store: %w", err)
		}
		return fs, fs.Dir(), nil
	case "minio":
		mc := cfg.Storage.Minio
		store, err := blob.NewMinioStore(blob.MinioConfig{
			Endpoint:  mc.Endpoint,
			AccessKey: mc.AccessKey,
			SecretKey: mc.SecretKey,
			Bucket:    mc.Bucket,
			UseSSL:    mc.UseSSL,
			PublicURL: mc.PublicURL,
		})
		if err != nil {
			return nil, "", err
		}
		if err := store.EnsureBucket(ctx); err != nil {
			return nil, "", err
		}
		return store, "", nil
	default:
		return nil, "", fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}

func publicURL(cfg config.Config, port string) string {
	if cfg.Server.PublicURL != "" {
		return cfg.Server.PublicURL
	}
	return "http://localhost:" + port
}

// demoQuiz seeds the in-memory store so a fresh checkout has something to play.
func demoQuiz() domain.Quiz {
	now := time.Now().UTC()
	return domain.Quiz{
		ID:    "demo",
		Title: "Warm-up",
		Mode:  domain.ModeSingle,
		Questions: []domain.Question{
			{
				Text: "What is 2 + 2?",
				Answers: []domain.Answer{
					{ID: "a1", Text: "3"},
					{ID: "a2", Text: "4", IsCorrect: true},
					{ID: "a3", Text: "5"},
				},
			},
			{
				Text: "Which planet is known as the red planet?",
				Answers: []domain.Answer{
					{ID: "a1", Text: "Mars", IsCorrect: true},
					{ID: "a2", Text: "Venus"},
				},
			},
		},
		Results: []domain.ResultBand{
			{Min: 0, Max: 49, Title: "Keep practicing"},
			{Min: 50, Max: 99, Title: "Nice"},
			{Min: 100, Max: 100, Title: "Perfect score"},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
}
