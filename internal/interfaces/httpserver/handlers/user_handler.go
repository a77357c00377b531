package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"chat-server/internal/domain/user"
	"chat-server/internal/interfaces/httpserver/responses"
)

// UserHandler exposes profile and plan endpoints.
type UserHandler struct {
	service *user.Service
	log     zerolog.Logger
}

// NewUserHandler constructs the handler.
func NewUserHandler(service *user.Service, log zerolog.Logger) *UserHandler {
	return &UserHandler{
		service: service,
		log:     log.With().Str("handler", "user").Logger(),
	}
}

// Profile handles GET /api/users/profile
// @Summary Get the caller's profile
// @Description Returns plan, token usage and an estimated cost for the calling user
// @Tags Users
// @Produce json
// @Success 200 {object} responses.ProfilePayload
// @Failure 500 {object} responses.ErrorResponse
// @Router /api/users/profile [get]
func (h *UserHandler) Profile(c *gin.Context) {
	account, err := h.service.GetOrCreate(c.Request.Context(), ownerID(c))
	if err != nil {
		responses.HandleError(c, err, "failed to load profile")
		return
	}

	c.JSON(http.StatusOK, responses.FromAccount(account))
}

// Upgrade handles POST /api/users/upgrade
// @Summary Upgrade to the premium plan
// @Description Moves the calling user to the premium plan and raises the token limit
// @Tags Users
// @Produce json
// @Success 200 {object} responses.ProfilePayload
// @Failure 500 {object} responses.ErrorResponse
// @Router /api/users/upgrade [post]
func (h *UserHandler) Upgrade(c *gin.Context) {
	account, err := h.service.Upgrade(c.Request.Context(), ownerID(c))
	if err != nil {
		responses.HandleError(c, err, "failed to upgrade plan")
		return
	}

	c.JSON(http.StatusOK, responses.FromAccount(account))
}
