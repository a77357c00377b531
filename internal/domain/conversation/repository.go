package conversation

import "context"

// Repository persists conversations and their ordered message lists.
//
// AppendMessage must serialize concurrent appends to the same conversation
// so that read-modify-persist sequences never lose messages, and must apply
// the first-user-message title derivation inside that critical section.
type Repository interface {
	Create(ctx context.Context, conv *Conversation) error
	FindByID(ctx context.Context, id string) (*Conversation, error)
	// List returns conversations sorted by updatedAt descending, ties broken
	// by id. An empty ownerID returns every conversation.
	List(ctx context.Context, ownerID string) ([]*Conversation, error)
	Update(ctx context.Context, conv *Conversation) error
	// Delete is idempotent. Removing an unknown id is not an error.
	Delete(ctx context.Context, id string) error
	AppendMessage(ctx context.Context, conversationID string, msg *Message) error
	// UpdateMessageContent locates the message by id across all
	// conversations and replaces only its content.
	UpdateMessageContent(ctx context.Context, messageID, content string) error
	ListMessages(ctx context.Context, conversationID string) ([]Message, error)
}
