package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"chat-server/internal/domain/conversation"
	"chat-server/internal/interfaces/httpserver/requests"
	"chat-server/internal/interfaces/httpserver/responses"
	"chat-server/internal/utils/platformerrors"
)

// ConversationHandler exposes HTTP entrypoints for conversation CRUD.
type ConversationHandler struct {
	service *conversation.Service
	log     zerolog.Logger
}

// NewConversationHandler constructs the handler.
func NewConversationHandler(service *conversation.Service, log zerolog.Logger) *ConversationHandler {
	return &ConversationHandler{
		service: service,
		log:     log.With().Str("handler", "conversation").Logger(),
	}
}

// List handles GET /api/conversations
// @Summary List conversations
// @Description Lists conversations ordered by most recent activity. An optional owner filter narrows the result.
// @Tags Conversations
// @Produce json
// @Param owner query string false "Owner filter"
// @Success 200 {array} responses.ConversationPayload
// @Failure 500 {object} responses.ErrorResponse
// @Router /api/conversations [get]
func (h *ConversationHandler) List(c *gin.Context) {
	owner := c.Query("owner")

	conversations, err := h.service.ListConversations(c.Request.Context(), owner)
	if err != nil {
		responses.HandleError(c, err, "failed to list conversations")
		return
	}

	c.JSON(http.StatusOK, responses.FromConversations(conversations))
}

// Create handles POST /api/conversations
// @Summary Create a conversation
// @Description Creates a conversation for the given model. The title may be empty; it is derived from the first user message.
// @Tags Conversations
// @Accept json
// @Produce json
// @Param request body requests.CreateConversationRequest true "Conversation"
// @Success 201 {object} responses.ConversationPayload
// @Failure 400 {object} responses.ErrorResponse
// @Failure 500 {object} responses.ErrorResponse
// @Router /api/conversations [post]
func (h *ConversationHandler) Create(c *gin.Context) {
	var req requests.CreateConversationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.HandleNewError(c, platformerrors.ErrorTypeValidation, "model is required")
		return
	}

	owner := req.OwnerID
	if owner == "" {
		owner = ownerID(c)
	}

	conv, err := h.service.CreateConversation(c.Request.Context(), conversation.CreateConversationInput{
		OwnerID: owner,
		Title:   req.Title,
		Model:   req.Model,
	})
	if err != nil {
		responses.HandleError(c, err, "failed to create conversation")
		return
	}

	c.JSON(http.StatusCreated, responses.FromConversation(conv))
}

// Get handles GET /api/conversations/:id
// @Summary Get a conversation
// @Description Retrieves conversation metadata without its messages
// @Tags Conversations
// @Produce json
// @Param id path string true "Conversation ID"
// @Success 200 {object} responses.ConversationPayload
// @Failure 404 {object} responses.ErrorResponse
// @Failure 500 {object} responses.ErrorResponse
// @Router /api/conversations/{id} [get]
func (h *ConversationHandler) Get(c *gin.Context) {
	conv, err := h.service.GetConversation(c.Request.Context(), c.Param("id"))
	if err != nil {
		responses.HandleError(c, err, "conversation not found")
		return
	}

	c.JSON(http.StatusOK, responses.FromConversation(conv))
}

// Update handles PATCH /api/conversations/:id
// @Summary Update a conversation
// @Description Merges the provided title and model into the conversation
// @Tags Conversations
// @Accept json
// @Produce json
// @Param id path string true "Conversation ID"
// @Param request body requests.UpdateConversationRequest true "Fields to update"
// @Success 200 {object} responses.ConversationPayload
// @Failure 400 {object} responses.ErrorResponse
// @Failure 404 {object} responses.ErrorResponse
// @Failure 500 {object} responses.ErrorResponse
// @Router /api/conversations/{id} [patch]
func (h *ConversationHandler) Update(c *gin.Context) {
	var req requests.UpdateConversationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.HandleNewError(c, platformerrors.ErrorTypeValidation, "invalid request body")
		return
	}

	conv, err := h.service.UpdateConversation(c.Request.Context(), c.Param("id"), conversation.UpdateConversationInput{
		Title: req.Title,
		Model: req.Model,
	})
	if err != nil {
		responses.HandleError(c, err, "failed to update conversation")
		return
	}

	c.JSON(http.StatusOK, responses.FromConversation(conv))
}

// Delete handles DELETE /api/conversations/:id
// @Summary Delete a conversation
// @Description Removes a conversation and its messages. Deleting an unknown id succeeds.
// @Tags Conversations
// @Param id path string true "Conversation ID"
// @Success 204 "No Content"
// @Failure 500 {object} responses.ErrorResponse
// @Router /api/conversations/{id} [delete]
func (h *ConversationHandler) Delete(c *gin.Context) {
	if err := h.service.DeleteConversation(c.Request.Context(), c.Param("id")); err != nil {
		responses.HandleError(c, err, "failed to delete conversation")
		return
	}

	c.Status(http.StatusNoContent)
}

// ListMessages handles GET /api/conversations/:id/messages
// @Summary List conversation messages
// @Description Returns messages in append order. An empty conversation yields an empty list.
// @Tags Conversations
// @Produce json
// @Param id path string true "Conversation ID"
// @Success 200 {array} responses.MessagePayload
// @Failure 404 {object} responses.ErrorResponse
// @Failure 500 {object} responses.ErrorResponse
// @Router /api/conversations/{id}/messages [get]
func (h *ConversationHandler) ListMessages(c *gin.Context) {
	messages, err := h.service.ListMessages(c.Request.Context(), c.Param("id"))
	if err != nil {
		responses.HandleError(c, err, "failed to list messages")
		return
	}

	c.JSON(http.StatusOK, responses.FromMessages(messages))
}
