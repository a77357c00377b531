package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"chat-server/internal/domain/chat"
	"chat-server/internal/domain/conversation"
	"chat-server/internal/infrastructure/uploads"
	"chat-server/internal/interfaces/httpserver/requests"
	"chat-server/internal/interfaces/httpserver/responses"
	"chat-server/internal/utils/platformerrors"
)

// MessageHandler exposes the send-message entrypoint.
type MessageHandler struct {
	conversations *conversation.Service
	chat          *chat.Service
	uploadStore   *uploads.Store
	log           zerolog.Logger
}

// NewMessageHandler constructs the handler.
func NewMessageHandler(
	conversations *conversation.Service,
	chatService *chat.Service,
	uploadStore *uploads.Store,
	log zerolog.Logger,
) *MessageHandler {
	return &MessageHandler{
		conversations: conversations,
		chat:          chatService,
		uploadStore:   uploadStore,
		log:           log.With().Str("handler", "message").Logger(),
	}
}

// Send handles POST /api/messages
// @Summary Send a chat message
// @Description Stores the user message plus an empty assistant placeholder and responds immediately. The assistant content is generated in the background; clients poll the message list to observe it growing.
// @Tags Messages
// @Accept multipart/form-data
// @Produce json
// @Param conversationId formData string true "Conversation ID"
// @Param content formData string false "Message text"
// @Param authorLabel formData string false "Display name prefixed to the prompt"
// @Param files formData file false "Attachments (up to 50 MiB each)"
// @Success 201 {object} responses.SendMessageResponse
// @Failure 400 {object} responses.ErrorResponse
// @Failure 403 {object} responses.ErrorResponse
// @Failure 404 {object} responses.ErrorResponse
// @Failure 500 {object} responses.ErrorResponse
// @Router /api/messages [post]
func (h *MessageHandler) Send(c *gin.Context) {
	var form requests.SendMessageForm
	if err := c.ShouldBind(&form); err != nil {
		responses.HandleNewError(c, platformerrors.ErrorTypeValidation, "conversationId is required")
		return
	}

	attachments, err := h.saveAttachments(c)
	if err != nil {
		responses.HandleError(c, err, "failed to store attachment")
		return
	}

	result, err := h.chat.SendMessage(c.Request.Context(), chat.SendMessageInput{
		ConversationID: form.ConversationID,
		Content:        form.Content,
		AuthorLabel:    form.AuthorLabel,
		Attachments:    attachments,
	})
	if err != nil {
		responses.HandleError(c, err, "failed to send message")
		return
	}

	c.JSON(http.StatusCreated, responses.SendMessageResponse{
		UserMessage:      responses.FromMessage(result.UserMessage),
		AssistantMessage: responses.FromMessage(result.AssistantMessage),
	})
}

func (h *MessageHandler) saveAttachments(c *gin.Context) ([]conversation.FileAttachment, error) {
	multipartForm, err := c.MultipartForm()
	if err != nil {
		// Plain form submissions without files are fine.
		return nil, nil
	}

	files := multipartForm.File["files"]
	if len(files) == 0 {
		return nil, nil
	}

	attachments := make([]conversation.FileAttachment, 0, len(files))
	for _, header := range files {
		attachment, err := h.uploadStore.Save(c.Request.Context(), header)
		if err != nil {
			return nil, err
		}
		attachments = append(attachments, attachment)
	}
	return attachments, nil
}
