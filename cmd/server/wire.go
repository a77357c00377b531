//go:build wireinject

package main

import (
	"github.com/google/wire"
	"github.com/rs/zerolog"

	"chat-server/internal/config"
	"chat-server/internal/domain/chat"
	"chat-server/internal/domain/conversation"
	"chat-server/internal/domain/user"
	"chat-server/internal/infrastructure/filestore"
	"chat-server/internal/infrastructure/logger"
	"chat-server/internal/infrastructure/providers"
	"chat-server/internal/infrastructure/uploads"
	"chat-server/internal/interfaces/httpserver"
	"chat-server/internal/worker"
)

var fileStoreSet = wire.NewSet(
	newConversationStore,
	wire.Bind(new(conversation.Repository), new(*filestore.ConversationStore)),
	newUserStore,
	wire.Bind(new(user.Repository), new(*filestore.UserStore)),
)

var chatSet = wire.NewSet(
	user.NewService,
	conversation.NewService,
	providers.NewRegistry,
	chat.NewRelay,
	newRunner,
	wire.Bind(new(chat.Submitter), new(*worker.Runner)),
	chat.NewService,
	newUploadStore,
)

// BuildApplication demonstrates how to assemble the file-backed chat service with Wire.
func BuildApplication() (*Application, error) {
	wire.Build(
		config.Load,
		logger.New,
		fileStoreSet,
		chatSet,
		httpserver.New,
		NewApplication,
	)
	return nil, nil
}

func newConversationStore(cfg *config.Config, log zerolog.Logger) (*filestore.ConversationStore, error) {
	return filestore.NewConversationStore(cfg.DataDir, log)
}

func newUserStore(cfg *config.Config, log zerolog.Logger) (*filestore.UserStore, error) {
	return filestore.NewUserStore(cfg.DataDir, log)
}

func newRunner(cfg *config.Config, log zerolog.Logger) *worker.Runner {
	return worker.NewRunner(worker.Config{
		PoolSize:  cfg.WorkerPoolSize,
		JobBuffer: cfg.WorkerJobBuffer,
		DrainWait: cfg.WorkerDrainWait,
	}, log)
}

func newUploadStore(cfg *config.Config, log zerolog.Logger) (*uploads.Store, error) {
	return uploads.NewStore(cfg.UploadsDir, log)
}
