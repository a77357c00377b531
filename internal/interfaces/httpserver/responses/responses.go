package responses

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"chat-server/internal/domain/conversation"
	"chat-server/internal/domain/user"
	"chat-server/internal/utils/platformerrors"
)

// ErrorResponse represents an error response with platform error details
type ErrorResponse struct {
	Error     string `json:"error"`
	Message   string `json:"message,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// HandleError handles domain errors and returns appropriate HTTP responses
func HandleError(reqCtx *gin.Context, err error, message string) {
	var domainErr *platformerrors.PlatformError
	if errors.As(err, &domainErr) {
		statusCode := platformerrors.ErrorTypeToHTTPStatus(domainErr.GetErrorType())

		reqCtx.AbortWithStatusJSON(statusCode, ErrorResponse{
			Error:     message,
			Message:   message,
			RequestID: domainErr.GetRequestID(),
		})
		return
	}
	reqCtx.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{
		Error:   message,
		Message: message,
	})
}

// HandleNewError creates a new typed error at the route layer and handles it
func HandleNewError(reqCtx *gin.Context, errorType platformerrors.ErrorType, message string) {
	ctx := reqCtx.Request.Context()
	err := platformerrors.NewError(ctx, platformerrors.LayerRoute, errorType, message, nil)

	reqCtx.AbortWithStatusJSON(platformerrors.ErrorTypeToHTTPStatus(err.GetErrorType()), ErrorResponse{
		Error:     message,
		Message:   message,
		RequestID: err.GetRequestID(),
	})
}

// ConversationPayload is returned to clients for conversation metadata.
type ConversationPayload struct {
	ID        string `json:"id"`
	OwnerID   string `json:"ownerId"`
	Title     string `json:"title"`
	Model     string `json:"model"`
	CreatedAt int64  `json:"createdAt"`
	UpdatedAt int64  `json:"updatedAt"`
}

// FromConversation maps the domain conversation to its DTO.
func FromConversation(conv *conversation.Conversation) ConversationPayload {
	return ConversationPayload{
		ID:        conv.ID,
		OwnerID:   conv.OwnerID,
		Title:     conv.Title,
		Model:     conv.Model,
		CreatedAt: conv.CreatedAt.UnixMilli(),
		UpdatedAt: conv.UpdatedAt.UnixMilli(),
	}
}

// FromConversations maps a list of conversations.
func FromConversations(conversations []*conversation.Conversation) []ConversationPayload {
	out := make([]ConversationPayload, 0, len(conversations))
	for _, conv := range conversations {
		out = append(out, FromConversation(conv))
	}
	return out
}

// MessagePayload is returned to clients for a single message.
type MessagePayload struct {
	ID             string                        `json:"id"`
	ConversationID string                        `json:"conversationId"`
	Role           string                        `json:"role"`
	Content        string                        `json:"content"`
	AuthorLabel    string                        `json:"authorLabel,omitempty"`
	Attachments    []conversation.FileAttachment `json:"attachments,omitempty"`
	CreatedAt      int64                         `json:"createdAt"`
}

// FromMessage maps the domain message to its DTO.
func FromMessage(msg *conversation.Message) MessagePayload {
	return MessagePayload{
		ID:             msg.ID,
		ConversationID: msg.ConversationID,
		Role:           string(msg.Role),
		Content:        msg.Content,
		AuthorLabel:    msg.AuthorLabel,
		Attachments:    msg.Attachments,
		CreatedAt:      msg.CreatedAt.UnixMilli(),
	}
}

// FromMessages maps a message list preserving append order.
func FromMessages(messages []conversation.Message) []MessagePayload {
	out := make([]MessagePayload, 0, len(messages))
	for i := range messages {
		out = append(out, FromMessage(&messages[i]))
	}
	return out
}

// SendMessageResponse is the 201 payload of POST /api/messages.
type SendMessageResponse struct {
	UserMessage      MessagePayload `json:"userMessage"`
	AssistantMessage MessagePayload `json:"assistantMessage"`
}

// ProfilePayload is returned by GET /api/users/profile.
type ProfilePayload struct {
	ID               string          `json:"id"`
	Plan             string          `json:"plan"`
	TokensUsed       int64           `json:"tokensUsed"`
	TokensLimit      int64           `json:"tokensLimit"`
	TokensRemaining  int64           `json:"tokensRemaining"`
	EstimatedCostUSD decimal.Decimal `json:"estimatedCostUsd"`
	LastActivityAt   int64           `json:"lastActivityAt"`
	CreatedAt        int64           `json:"createdAt"`
}

// FromAccount maps the domain account to its profile DTO.
func FromAccount(account *user.Account) ProfilePayload {
	return ProfilePayload{
		ID:               account.ID,
		Plan:             string(account.Plan),
		TokensUsed:       account.TokensUsed,
		TokensLimit:      account.TokensLimit,
		TokensRemaining:  account.RemainingTokens(),
		EstimatedCostUSD: account.EstimatedCost(),
		LastActivityAt:   account.LastActivityAt.UnixMilli(),
		CreatedAt:        account.CreatedAt.UnixMilli(),
	}
}
