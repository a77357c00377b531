package chat

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"chat-server/internal/domain/conversation"
	"chat-server/internal/domain/llm"
	"chat-server/internal/domain/user"
	"chat-server/internal/infrastructure/metrics"
	"chat-server/internal/utils/platformerrors"
)

// generateJobType labels background generation jobs in logs and metrics.
const generateJobType = "generate-response"

// Submitter enqueues fire-and-forget background jobs.
type Submitter interface {
	Submit(jobType string, job func(ctx context.Context) error) error
}

// Service orchestrates the send-message flow: token gate, user message,
// assistant placeholder, then background generation through the relay.
type Service struct {
	conversations *conversation.Service
	users         *user.Service
	relay         *Relay
	runner        Submitter
	log           zerolog.Logger
}

// NewService creates a new chat service.
func NewService(
	conversations *conversation.Service,
	users *user.Service,
	relay *Relay,
	runner Submitter,
	log zerolog.Logger,
) *Service {
	return &Service{
		conversations: conversations,
		users:         users,
		relay:         relay,
		runner:        runner,
		log:           log.With().Str("component", "chat-service").Logger(),
	}
}

// SendMessageInput represents an incoming chat message.
type SendMessageInput struct {
	ConversationID string
	Content        string
	AuthorLabel    string
	Attachments    []conversation.FileAttachment
}

// SendMessageResult holds the two messages created by SendMessage. The
// assistant message starts empty and is filled in by the background job.
type SendMessageResult struct {
	UserMessage      *conversation.Message `json:"userMessage"`
	AssistantMessage *conversation.Message `json:"assistantMessage"`
}

// SendMessage stores the user turn and an assistant placeholder, then
// schedules response generation. The token gate runs first so a rejected
// request creates no messages at all.
func (s *Service) SendMessage(ctx context.Context, input SendMessageInput) (*SendMessageResult, error) {
	if strings.TrimSpace(input.Content) == "" && len(input.Attachments) == 0 {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation, "message content is required", nil)
	}

	conv, err := s.conversations.GetConversation(ctx, input.ConversationID)
	if err != nil {
		return nil, err
	}

	if conv.OwnerID != conversation.AnonymousOwner {
		if err := s.users.CheckLimit(ctx, conv.OwnerID, user.EstimateTokens(input.Content)); err != nil {
			return nil, err
		}
	}

	userMsg, err := s.conversations.AppendMessage(ctx, conversation.AppendMessageInput{
		ConversationID: conv.ID,
		Role:           conversation.RoleUser,
		Content:        input.Content,
		AuthorLabel:    input.AuthorLabel,
		Attachments:    input.Attachments,
	})
	if err != nil {
		return nil, err
	}
	metrics.RecordMessageAppended(string(conversation.RoleUser))

	assistantMsg, err := s.conversations.AppendMessage(ctx, conversation.AppendMessageInput{
		ConversationID: conv.ID,
		Role:           conversation.RoleAssistant,
		Content:        "",
	})
	if err != nil {
		return nil, err
	}
	metrics.RecordMessageAppended(string(conversation.RoleAssistant))

	model := conv.Model
	if model == "" {
		model = llm.DefaultModel
	}

	assistantID := assistantMsg.ID
	conversationID := conv.ID
	if err := s.runner.Submit(generateJobType, func(jobCtx context.Context) error {
		return s.generate(jobCtx, conversationID, assistantID, model)
	}); err != nil {
		s.log.Error().Err(err).Str("conversation_id", conversationID).Msg("failed to schedule generation")
		s.failAssistantMessage(ctx, assistantID, "The server is overloaded. Please try again.")
	}

	return &SendMessageResult{
		UserMessage:      userMsg,
		AssistantMessage: assistantMsg,
	}, nil
}

// generate drains the relay and rewrites the assistant message with the
// cumulative buffer after every fragment, so readers always observe a valid
// prefix of the final response.
func (s *Service) generate(ctx context.Context, conversationID, assistantID, model string) error {
	history, err := s.conversations.ListMessages(ctx, conversationID)
	if err != nil {
		s.failAssistantMessage(ctx, assistantID, "The conversation could not be loaded.")
		return err
	}

	// The empty placeholder is part of the stored history but not of the
	// prompt.
	prompt := make([]conversation.Message, 0, len(history))
	for _, msg := range history {
		if msg.ID == assistantID {
			continue
		}
		prompt = append(prompt, msg)
	}

	var buffer strings.Builder
	for fragment := range s.relay.StreamResponse(ctx, prompt, model) {
		buffer.WriteString(fragment)
		if err := s.conversations.UpdateMessageContent(ctx, assistantID, buffer.String()); err != nil {
			s.log.Error().Err(err).Str("message_id", assistantID).Msg("failed to persist response fragment")
			return err
		}
	}

	if buffer.Len() == 0 {
		s.failAssistantMessage(ctx, assistantID, "No response was generated. Please try again.")
	}
	return nil
}

func (s *Service) failAssistantMessage(ctx context.Context, assistantID, reason string) {
	if err := s.conversations.UpdateMessageContent(ctx, assistantID, errorFragmentPrefix+reason); err != nil {
		s.log.Error().Err(err).Str("message_id", assistantID).Msg("failed to record generation failure")
	}
}
