package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"chat-server/internal/domain/llm"
)

// ModelHandler serves the static model catalog.
type ModelHandler struct {
	log zerolog.Logger
}

// NewModelHandler constructs the handler.
func NewModelHandler(log zerolog.Logger) *ModelHandler {
	return &ModelHandler{log: log.With().Str("handler", "model").Logger()}
}

// List handles GET /api/models
// @Summary List selectable models
// @Description Returns the model catalog with the provider serving each entry
// @Tags Models
// @Produce json
// @Success 200 {array} llm.ModelOption
// @Router /api/models [get]
func (h *ModelHandler) List(c *gin.Context) {
	c.JSON(http.StatusOK, llm.Catalog())
}
