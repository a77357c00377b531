package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	gormlogger "gorm.io/gorm/logger"

	"chat-server/internal/config"
	"chat-server/internal/domain/chat"
	"chat-server/internal/domain/conversation"
	"chat-server/internal/domain/user"
	"chat-server/internal/infrastructure/database"
	"chat-server/internal/infrastructure/filestore"
	"chat-server/internal/infrastructure/logger"
	"chat-server/internal/infrastructure/observability"
	"chat-server/internal/infrastructure/providers"
	conversationrepo "chat-server/internal/infrastructure/repository/conversation"
	userrepo "chat-server/internal/infrastructure/repository/user"
	"chat-server/internal/infrastructure/uploads"
	"chat-server/internal/interfaces/httpserver"
	"chat-server/internal/worker"
)

// @title Chat Server API
// @version 1.0
// @description Multi-provider AI chat service with conversation persistence, streaming relay, and token accounting.
// @BasePath /
type Application struct {
	httpServer *httpserver.HttpServer
	runner     *worker.Runner
	log        zerolog.Logger
}

func NewApplication(httpServer *httpserver.HttpServer, runner *worker.Runner, log zerolog.Logger) *Application {
	return &Application{
		httpServer: httpServer,
		runner:     runner,
		log:        log,
	}
}

func (a *Application) Start(ctx context.Context) error {
	return a.httpServer.Run(ctx)
}

func main() {
	loadEnvFiles()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log := logger.New(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTelemetry, err := observability.Setup(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("initialize observability")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := shutdownTelemetry(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("shutdown telemetry")
		}
	}()

	var (
		conversationRepository conversation.Repository
		userRepository         user.Repository
	)
	if cfg.UsePostgres() {
		db, err := database.Connect(database.Config{
			DSN:             cfg.DatabaseURL,
			MaxIdleConns:    cfg.DBMaxIdleConns,
			MaxOpenConns:    cfg.DBMaxOpenConns,
			ConnMaxLifetime: cfg.DBConnLifetime,
			LogLevel:        gormlogger.Warn,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("connect database")
		}
		conversationRepository = conversationrepo.NewRepository(db)
		userRepository = userrepo.NewRepository(db)
		log.Info().Msg("using postgres store backend")
	} else {
		conversationStore, err := filestore.NewConversationStore(cfg.DataDir, log)
		if err != nil {
			log.Fatal().Err(err).Msg("initialize conversation store")
		}
		userStore, err := filestore.NewUserStore(cfg.DataDir, log)
		if err != nil {
			log.Fatal().Err(err).Msg("initialize user store")
		}
		conversationRepository = conversationStore
		userRepository = userStore
		log.Info().Str("data_dir", cfg.DataDir).Msg("using file store backend")
	}

	userService := user.NewService(userRepository, log)
	conversationService := conversation.NewService(conversationRepository, userService, log)

	registry := providers.NewRegistry(cfg, log)
	relay := chat.NewRelay(registry, log)

	runner := worker.NewRunner(worker.Config{
		PoolSize:  cfg.WorkerPoolSize,
		JobBuffer: cfg.WorkerJobBuffer,
		DrainWait: cfg.WorkerDrainWait,
	}, log)
	defer func() {
		log.Info().Msg("stopping worker runner")
		runner.Stop()
	}()

	chatService := chat.NewService(conversationService, userService, relay, runner, log)

	uploadStore, err := uploads.NewStore(cfg.UploadsDir, log)
	if err != nil {
		log.Fatal().Err(err).Msg("initialize upload store")
	}

	httpServer := httpserver.New(cfg, log, conversationService, chatService, userService, uploadStore)
	app := NewApplication(httpServer, runner, log)

	if err := app.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("application stopped with error")
	}

	log.Info().Msg("application exited cleanly")
}

func loadEnvFiles() {
	paths := []string{".env", "../.env"}
	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Overload(path); err != nil {
				fmt.Fprintf(os.Stderr, "warning: failed to load %s: %v\n", path, err)
			}
		}
	}
}
