package api

import (
	"github.com/gin-gonic/gin"

	"chat-server/internal/interfaces/httpserver/handlers"
)

// Routes registers the /api surface.
type Routes struct {
	handlers *handlers.Provider
}

// NewRoutes constructs the route group.
func NewRoutes(handlerProvider *handlers.Provider) *Routes {
	return &Routes{handlers: handlerProvider}
}

// Register attaches the API routes to the engine.
func (r *Routes) Register(engine *gin.Engine) {
	group := engine.Group("/api")

	conversations := group.Group("/conversations")
	conversations.GET("", r.handlers.Conversation.List)
	conversations.POST("", r.handlers.Conversation.Create)
	conversations.GET("/:id", r.handlers.Conversation.Get)
	conversations.PATCH("/:id", r.handlers.Conversation.Update)
	conversations.DELETE("/:id", r.handlers.Conversation.Delete)
	conversations.GET("/:id/messages", r.handlers.Conversation.ListMessages)

	group.POST("/messages", r.handlers.Message.Send)
	group.GET("/models", r.handlers.Model.List)

	users := group.Group("/users")
	users.GET("/profile", r.handlers.User.Profile)
	users.POST("/upgrade", r.handlers.User.Upgrade)
}
