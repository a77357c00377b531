package conversation

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	domain "chat-server/internal/domain/conversation"
	"chat-server/internal/infrastructure/database/entities"
	"chat-server/internal/utils/platformerrors"
)

// Repository is the postgres-backed conversation store.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a conversation repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

var _ domain.Repository = (*Repository)(nil)

// Create inserts the conversation record.
func (r *Repository) Create(ctx context.Context, conv *domain.Conversation) error {
	entity := entities.NewSchemaConversation(conv)
	if err := r.db.WithContext(ctx).Create(entity).Error; err != nil {
		return platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeDatabaseError, "failed to create conversation", err)
	}
	return nil
}

// FindByID fetches conversation metadata by id.
func (r *Repository) FindByID(ctx context.Context, id string) (*domain.Conversation, error) {
	var entity entities.Conversation
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&entity).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeNotFound, fmt.Sprintf("conversation not found: %s", id), nil)
		}
		return nil, platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeDatabaseError, "failed to fetch conversation", err)
	}
	return entity.EtoD(), nil
}

// List fetches conversations ordered by recency, ties broken by id.
func (r *Repository) List(ctx context.Context, ownerID string) ([]*domain.Conversation, error) {
	query := r.db.WithContext(ctx).Model(&entities.Conversation{})
	if ownerID != "" {
		query = query.Where("owner_id = ?", ownerID)
	}

	var records []entities.Conversation
	if err := query.Order("updated_at DESC, id ASC").Find(&records).Error; err != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeDatabaseError, "failed to list conversations", err)
	}

	result := make([]*domain.Conversation, len(records))
	for i := range records {
		result[i] = records[i].EtoD()
	}
	return result, nil
}

// Update rewrites conversation metadata.
func (r *Repository) Update(ctx context.Context, conv *domain.Conversation) error {
	entity := entities.NewSchemaConversation(conv)
	result := r.db.WithContext(ctx).Model(&entities.Conversation{}).Where("id = ?", conv.ID).Updates(map[string]interface{}{
		"owner_id":   entity.OwnerID,
		"title":      entity.Title,
		"model":      entity.Model,
		"updated_at": entity.UpdatedAt,
	})
	if result.Error != nil {
		return platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeDatabaseError, "failed to update conversation", result.Error)
	}
	if result.RowsAffected == 0 {
		return platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeNotFound, fmt.Sprintf("conversation not found: %s", conv.ID), nil)
	}
	return nil
}

// Delete removes a conversation and its messages.
func (r *Repository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&entities.Conversation{})
	if result.Error != nil {
		return platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeDatabaseError, "failed to delete conversation", result.Error)
	}
	if result.RowsAffected == 0 {
		return platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeNotFound, fmt.Sprintf("conversation not found: %s", id), nil)
	}
	return nil
}

// AppendMessage inserts the message and bumps the conversation inside one
// transaction. Row locking on the conversation serializes concurrent
// appends to the same thread.
func (r *Repository) AppendMessage(ctx context.Context, conversationID string, msg *domain.Message) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var conv entities.Conversation
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", conversationID).First(&conv).Error; err != nil {
			return err
		}

		entity, err := entities.NewSchemaMessage(msg)
		if err != nil {
			return err
		}
		if err := tx.Create(entity).Error; err != nil {
			return err
		}

		updates := map[string]interface{}{"updated_at": msg.CreatedAt}
		if msg.Role == domain.RoleUser {
			var prior int64
			if err := tx.Model(&entities.Message{}).
				Where("conversation_id = ? AND id <> ?", conversationID, msg.ID).
				Count(&prior).Error; err != nil {
				return err
			}
			if prior == 0 {
				updates["title"] = domain.DeriveTitle(msg.Content)
			}
		}
		return tx.Model(&entities.Conversation{}).Where("id = ?", conversationID).Updates(updates).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeNotFound, fmt.Sprintf("conversation not found: %s", conversationID), nil)
		}
		return platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeDatabaseError, "failed to append message", err)
	}
	return nil
}

// UpdateMessageContent replaces only the content of the message.
func (r *Repository) UpdateMessageContent(ctx context.Context, messageID, content string) error {
	result := r.db.WithContext(ctx).Model(&entities.Message{}).Where("id = ?", messageID).Update("content", content)
	if result.Error != nil {
		return platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeDatabaseError, "failed to update message", result.Error)
	}
	if result.RowsAffected == 0 {
		return platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeNotFound, fmt.Sprintf("message not found: %s", messageID), nil)
	}
	return nil
}

// ListMessages returns messages in append order.
func (r *Repository) ListMessages(ctx context.Context, conversationID string) ([]domain.Message, error) {
	if _, err := r.FindByID(ctx, conversationID); err != nil {
		return nil, err
	}

	var records []entities.Message
	if err := r.db.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Order("sequence ASC").
		Find(&records).Error; err != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeDatabaseError, "failed to list messages", err)
	}

	result := make([]domain.Message, 0, len(records))
	for i := range records {
		msg, err := records[i].EtoD()
		if err != nil {
			return nil, platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeDatabaseError, "failed to decode message attachments", err)
		}
		result = append(result, *msg)
	}
	return result, nil
}
