package entities

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"

	domain "chat-server/internal/domain/conversation"
)

// Conversation is the database schema for conversation metadata.
type Conversation struct {
	ID        string `gorm:"primaryKey;size:64"`
	OwnerID   string `gorm:"size:128;index"`
	Title     string
	Model     string    `gorm:"size:128"`
	Messages  []Message `gorm:"foreignKey:ConversationID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time
	UpdatedAt time.Time `gorm:"index"`
}

// Message is the database schema for a conversation turn. Sequence carries
// the append order.
type Message struct {
	ID             string `gorm:"primaryKey;size:64"`
	ConversationID string `gorm:"size:64;index"`
	Sequence       int64  `gorm:"autoIncrement;uniqueIndex"`
	Role           string `gorm:"size:16"`
	Content        string `gorm:"type:text"`
	AuthorLabel    string `gorm:"size:128"`
	Attachments    datatypes.JSON
	CreatedAt      time.Time
}

// NewSchemaConversation converts a domain conversation to its entity.
func NewSchemaConversation(conv *domain.Conversation) *Conversation {
	return &Conversation{
		ID:        conv.ID,
		OwnerID:   conv.OwnerID,
		Title:     conv.Title,
		Model:     conv.Model,
		CreatedAt: conv.CreatedAt,
		UpdatedAt: conv.UpdatedAt,
	}
}

// EtoD converts the entity back to the domain conversation.
func (e *Conversation) EtoD() *domain.Conversation {
	return &domain.Conversation{
		ID:        e.ID,
		OwnerID:   e.OwnerID,
		Title:     e.Title,
		Model:     e.Model,
		CreatedAt: e.CreatedAt,
		UpdatedAt: e.UpdatedAt,
	}
}

// NewSchemaMessage converts a domain message to its entity.
func NewSchemaMessage(msg *domain.Message) (*Message, error) {
	entity := &Message{
		ID:             msg.ID,
		ConversationID: msg.ConversationID,
		Role:           string(msg.Role),
		Content:        msg.Content,
		AuthorLabel:    msg.AuthorLabel,
		CreatedAt:      msg.CreatedAt,
	}
	if len(msg.Attachments) > 0 {
		raw, err := json.Marshal(msg.Attachments)
		if err != nil {
			return nil, err
		}
		entity.Attachments = datatypes.JSON(raw)
	}
	return entity, nil
}

// EtoD converts the entity back to the domain message.
func (e *Message) EtoD() (*domain.Message, error) {
	msg := &domain.Message{
		ID:             e.ID,
		ConversationID: e.ConversationID,
		Role:           domain.Role(e.Role),
		Content:        e.Content,
		AuthorLabel:    e.AuthorLabel,
		CreatedAt:      e.CreatedAt,
	}
	if len(e.Attachments) > 0 {
		if err := json.Unmarshal(e.Attachments, &msg.Attachments); err != nil {
			return nil, err
		}
	}
	return msg, nil
}
