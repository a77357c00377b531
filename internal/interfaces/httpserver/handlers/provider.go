package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"chat-server/internal/domain/chat"
	"chat-server/internal/domain/conversation"
	"chat-server/internal/domain/user"
	"chat-server/internal/infrastructure/uploads"
)

// ownerIDHeader carries the caller identity established by the auth
// collaborator in front of this service.
const ownerIDHeader = "X-Owner-Id"

// Provider wires all HTTP handlers for dependency injection.
type Provider struct {
	Conversation *ConversationHandler
	Message      *MessageHandler
	User         *UserHandler
	Model        *ModelHandler
}

// NewProvider constructs the handler provider with domain services.
func NewProvider(
	conversationService *conversation.Service,
	chatService *chat.Service,
	userService *user.Service,
	uploadStore *uploads.Store,
	log zerolog.Logger,
) *Provider {
	return &Provider{
		Conversation: NewConversationHandler(conversationService, log),
		Message:      NewMessageHandler(conversationService, chatService, uploadStore, log),
		User:         NewUserHandler(userService, log),
		Model:        NewModelHandler(log),
	}
}

// ownerID resolves the caller identity, defaulting to the anonymous owner.
func ownerID(c *gin.Context) string {
	if owner := c.GetHeader(ownerIDHeader); owner != "" {
		return owner
	}
	return conversation.AnonymousOwner
}
