package requests

// CreateConversationRequest is the body of POST /api/conversations.
type CreateConversationRequest struct {
	Title   string `json:"title"`
	Model   string `json:"model" binding:"required"`
	OwnerID string `json:"ownerId"`
}

// UpdateConversationRequest is the body of PATCH /api/conversations/:id.
// Nil fields are left untouched.
type UpdateConversationRequest struct {
	Title *string `json:"title"`
	Model *string `json:"model"`
}

// SendMessageForm is the multipart form of POST /api/messages. Files are
// read separately from the multipart payload under the "files" key.
type SendMessageForm struct {
	ConversationID string `form:"conversationId" binding:"required"`
	Content        string `form:"content"`
	AuthorLabel    string `form:"authorLabel"`
}
