package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"brainscore-quiz-service/internal/app"
	"brainscore-quiz-service/internal/auth"
	"brainscore-quiz-service/internal/config"
	"brainscore-quiz-service/internal/domain"
	"brainscore-quiz-service/internal/infra/memory"
	pgstore "brainscore-quiz-service/internal/infra/postgres"
	rediscache "brainscore-quiz-service/internal/infra/redis"
	"brainscore-quiz-service/internal/infra/sqlite"
	"brainscore-quiz-service/internal/media"
	transport "brainscore-quiz-service/internal/transport/http"
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

func newLogger(cfg config.Config) *logrus.Logger {
	log := logrus.New()
	if cfg.Logging.Format == "json" {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	level, err := logrus.ParseLevel(cfg.Logging.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	log.SetLevel(level)
	return log
}

// backend is the set of long-lived dependencies shared by start and seed.
type backend struct {
	store   app.QuizStore
	quizzes *app.QuizService
	cache   app.QuizRepository
	redis   *redis.Client
	closers []func()
}

func (b *backend) Close() {
	for i := len(b.closers) - 1; i >= 0; i-- {
		b.closers[i]()
	}
}

func openBackend(ctx context.Context, cfg config.Config, log logrus.FieldLogger) (*backend, error) {
	b := &backend{}

	switch cfg.StorageDriver() {
	case "postgres":
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return nil, err
		}
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		b.closers = append(b.closers, pool.Close)
		b.store = pgstore.NewQuizStore(pool)
	case "sqlite":
		path := cfg.Storage.SQLitePath
		if path == "" {
			path = "data/quizzes.db"
		}
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, err
		}
		store, err := sqlite.Open(ctx, path)
		if err != nil {
			return nil, err
		}
		b.closers = append(b.closers, func() { _ = store.Close() })
		b.store = store
	default:
		b.store = memory.NewQuizStore()
	}

	if cfg.Redis.Addr != "" {
		b.redis = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		b.closers = append(b.closers, func() { _ = b.redis.Close() })
	}

	quizTTL := config.TTLDuration(cfg.Quiz.TTL, 10*time.Minute)
	if b.redis != nil {
		b.cache = rediscache.NewQuizRepository(b.redis, b.store, quizTTL, log)
	} else {
		b.cache = memory.NewQuizRepository(b.store, quizTTL)
	}
	b.quizzes = app.NewQuizService(b.store, b.cache, nil, log)
	return b, nil
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	log := newLogger(cfg)

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	b, err := openBackend(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer b.Close()

	if cfg.Storage.Seed || cfg.StorageDriver() == "memory" {
		if err := seedQuizzes(ctx, b.quizzes, log); err != nil {
			return err
		}
	}

	sessionTTL := config.TTLDuration(cfg.Session.TTL, 2*time.Hour)
	var sessions app.SessionRepository
	if b.redis != nil {
		sessions = rediscache.NewSessionStore(b.redis, sessionTTL)
	} else {
		sessions = memory.NewSessionStore(sessionTTL)
	}
	play := app.NewPlayService(b.cache, sessions, log)

	authSvc := auth.NewService(auth.Options{
		AdminEmail:   cfg.Admin.Email,
		PasswordHash: cfg.Admin.PasswordHash,
		Secret:       cfg.Admin.JWTSecret,
		TTL:          config.TTLDuration(cfg.Admin.TokenTTL, 8*time.Hour),
	})
	if !authSvc.Enabled() {
		if cfg.Admin.Email != "" {
			return fmt.Errorf("admin %s needs passwordHash and jwtSecret", cfg.Admin.Email)
		}
		log.Warn("admin not configured; authoring is disabled")
	}
	unsubscribe := authSvc.Subscribe(func(s auth.State) {
		entry := log.WithField("authorized", s.Authorized)
		if s.User != nil {
			entry = entry.WithField("user", s.User.Email)
		}
		entry.Info("admin session changed")
	})
	defer unsubscribe()

	var (
		uploader media.Uploader
		mediaDir string
	)
	switch cfg.MediaDriver() {
	case "cloudinary":
		cld, err := media.NewCloudinaryUploader(cfg.Media.CloudName, cfg.Media.UploadPreset)
		if err != nil {
			return err
		}
		uploader = cld
	default:
		base := cfg.Media.BasePath
		if base == "" {
			base = "data/media"
		}
		fsUploader, err := media.NewFSUploader(base, cfg.Media.PublicURL)
		if err != nil {
			return err
		}
		uploader = fsUploader
		mediaDir = fsUploader.Dir()
	}
	mediaSvc := app.NewMediaService(uploader, b.quizzes, log)

	handler := transport.NewRouter(transport.Deps{
		Quizzes:       b.quizzes,
		Play:          play,
		Media:         mediaSvc,
		Auth:          authSvc,
		CORSOrigins:   cfg.Server.CORSOrigins,
		MediaDir:      mediaDir,
		MaxUploadSize: cfg.Media.MaxBytes,
		Log:           log,
	})

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      handler,
		ReadTimeout:  config.TTLDuration(cfg.Server.ReadTimeout, 15*time.Second),
		WriteTimeout: config.TTLDuration(cfg.Server.WriteTimeout, 15*time.Second),
	}

	go func() {
		log.WithFields(logrus.Fields{
			"port":    finalPort,
			"storage": cfg.StorageDriver(),
			"media":   cfg.MediaDriver(),
		}).Info("starting quiz service")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Error("failed to start server")
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

// seedQuizzes creates the sample quizzes, leaving existing slugs untouched.
func seedQuizzes(ctx context.Context, quizzes *app.QuizService, log logrus.FieldLogger) error {
	for _, in := range sampleQuizzes() {
		_, err := quizzes.Create(ctx, "", in)
		switch {
		case errors.Is(err, domain.ErrSlugTaken):
			log.WithField("slug", in.Slug).Debug("sample quiz already present")
		case err != nil:
			return fmt.Errorf("seed %s: %w", in.Slug, err)
		default:
			log.WithField("slug", in.Slug).Info("sample quiz created")
		}
	}
	return nil
}
