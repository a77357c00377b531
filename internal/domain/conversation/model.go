package conversation

import (
	"strings"
	"time"
)

// AnonymousOwner is the owner recorded when no identity header is present.
const AnonymousOwner = "anonymous"

// titleRuneLimit caps how many characters of the first user message become
// the conversation title.
const titleRuneLimit = 50

// Role indicates who authored a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Validate checks if the role is one the store accepts.
func (r Role) Validate() bool {
	return r == RoleUser || r == RoleAssistant
}

// Conversation represents a logical chat thread.
type Conversation struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"ownerId"`
	Title     string    `json:"title"`
	Model     string    `json:"model"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Message is a single conversation turn. Content is mutable only for
// assistant messages while a response is being streamed in.
type Message struct {
	ID             string           `json:"id"`
	ConversationID string           `json:"conversationId"`
	Role           Role             `json:"role"`
	Content        string           `json:"content"`
	AuthorLabel    string           `json:"authorLabel,omitempty"`
	Attachments    []FileAttachment `json:"attachments,omitempty"`
	CreatedAt      time.Time        `json:"createdAt"`
}

// FileAttachment references an uploaded file linked to a message.
type FileAttachment struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	MimeType  string `json:"mimeType"`
	SizeBytes int64  `json:"sizeBytes"`
	URL       string `json:"url"`
}

// NewConversation creates a conversation with createdAt == updatedAt.
func NewConversation(id, ownerID, title, model string) *Conversation {
	if strings.TrimSpace(ownerID) == "" {
		ownerID = AnonymousOwner
	}
	now := time.Now().UTC()
	return &Conversation{
		ID:        id,
		OwnerID:   ownerID,
		Title:     title,
		Model:     model,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// NewMessage creates a message stamped with the current time.
func NewMessage(id, conversationID string, role Role, content string, attachments []FileAttachment) *Message {
	return &Message{
		ID:             id,
		ConversationID: conversationID,
		Role:           role,
		Content:        content,
		Attachments:    attachments,
		CreatedAt:      time.Now().UTC(),
	}
}

// DeriveTitle builds a conversation title from the first user message:
// the first 50 characters of the trimmed content, with an ellipsis
// appended when the content is longer.
func DeriveTitle(content string) string {
	trimmed := strings.TrimSpace(content)
	runes := []rune(trimmed)
	if len(runes) <= titleRuneLimit {
		return trimmed
	}
	return string(runes[:titleRuneLimit]) + "…"
}
