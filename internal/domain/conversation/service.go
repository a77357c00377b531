package conversation

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"chat-server/internal/domain/user"
	"chat-server/internal/utils/chatid"
	"chat-server/internal/utils/platformerrors"
)

// Service handles business logic for conversations and their messages.
type Service struct {
	repo  Repository
	users *user.Service
	log   zerolog.Logger
}

// NewService creates a new conversation service.
func NewService(repo Repository, users *user.Service, log zerolog.Logger) *Service {
	return &Service{
		repo:  repo,
		users: users,
		log:   log.With().Str("component", "conversation-service").Logger(),
	}
}

// CreateConversationInput represents the input for creating a conversation.
type CreateConversationInput struct {
	OwnerID string
	Title   string
	Model   string
}

// CreateConversation creates and persists a new conversation.
func (s *Service) CreateConversation(ctx context.Context, input CreateConversationInput) (*Conversation, error) {
	if strings.TrimSpace(input.Model) == "" {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation, "model is required", nil)
	}

	conv := NewConversation(chatid.NewConversationID(), input.OwnerID, input.Title, input.Model)
	if err := s.repo.Create(ctx, conv); err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to create conversation")
	}
	return conv, nil
}

// GetConversation retrieves conversation metadata without its messages.
func (s *Service) GetConversation(ctx context.Context, id string) (*Conversation, error) {
	conv, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "conversation not found")
	}
	return conv, nil
}

// ListConversations returns conversations ordered by recency. An empty owner
// filter returns every conversation.
func (s *Service) ListConversations(ctx context.Context, ownerID string) ([]*Conversation, error) {
	conversations, err := s.repo.List(ctx, ownerID)
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to list conversations")
	}
	return conversations, nil
}

// UpdateConversationInput carries the mutable conversation fields. Nil means
// leave the field untouched.
type UpdateConversationInput struct {
	Title *string
	Model *string
}

// UpdateConversation merges the provided fields and bumps updatedAt.
func (s *Service) UpdateConversation(ctx context.Context, id string, input UpdateConversationInput) (*Conversation, error) {
	conv, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "conversation not found")
	}

	if input.Title != nil {
		conv.Title = *input.Title
	}
	if input.Model != nil {
		if strings.TrimSpace(*input.Model) == "" {
			return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation, "model must not be empty", nil)
		}
		conv.Model = *input.Model
	}
	conv.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, conv); err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to update conversation")
	}
	return conv, nil
}

// DeleteConversation removes a conversation. Unknown ids are a logged no-op.
func (s *Service) DeleteConversation(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if platformerrors.IsErrorType(err, platformerrors.ErrorTypeNotFound) {
			s.log.Warn().Str("conversation_id", id).Msg("delete of unknown conversation ignored")
			return nil
		}
		return platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to delete conversation")
	}
	return nil
}

// AppendMessageInput represents the input for appending a message.
type AppendMessageInput struct {
	ConversationID string
	Role           Role
	Content        string
	AuthorLabel    string
	Attachments    []FileAttachment
}

// AppendMessage appends a message to a conversation. Every append under a
// non-anonymous owner feeds token accounting (empty placeholders estimate to
// zero tokens); the repository handles title derivation for the first
// message when it is a user message.
func (s *Service) AppendMessage(ctx context.Context, input AppendMessageInput) (*Message, error) {
	if !input.Role.Validate() {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation, "invalid message role", nil)
	}

	conv, err := s.repo.FindByID(ctx, input.ConversationID)
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "conversation not found")
	}

	msg := NewMessage(chatid.NewMessageID(), conv.ID, input.Role, input.Content, input.Attachments)
	msg.AuthorLabel = input.AuthorLabel

	if err := s.repo.AppendMessage(ctx, conv.ID, msg); err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to append message")
	}

	if conv.OwnerID != AnonymousOwner {
		if err := s.users.RecordUsage(ctx, conv.OwnerID, user.EstimateTokens(input.Content)); err != nil {
			s.log.Error().Err(err).Str("owner_id", conv.OwnerID).Msg("token accounting failed")
		}
	}

	return msg, nil
}

// UpdateMessageContent replaces the content of an existing message. Only the
// content changes; role, attachments and timestamps stay as written.
func (s *Service) UpdateMessageContent(ctx context.Context, messageID, content string) error {
	if err := s.repo.UpdateMessageContent(ctx, messageID, content); err != nil {
		return platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to update message")
	}
	return nil
}

// ListMessages returns a conversation's messages in append order.
func (s *Service) ListMessages(ctx context.Context, conversationID string) ([]Message, error) {
	messages, err := s.repo.ListMessages(ctx, conversationID)
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to list messages")
	}
	if messages == nil {
		messages = []Message{}
	}
	return messages, nil
}
