package filestore

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"chat-server/internal/domain/conversation"
	"chat-server/internal/utils/platformerrors"
)

// document is the on-disk shape of one conversation file: the metadata plus
// the full ordered message list.
type document struct {
	Conversation conversation.Conversation `json:"conversation"`
	Messages     []conversation.Message    `json:"messages"`
}

// ConversationStore persists each conversation as one JSON document under
// <dataDir>/conversations/<id>.json. Writes go through a temp file and
// rename so readers never observe a torn document, and a per-conversation
// mutex serializes every read-modify-persist sequence.
type ConversationStore struct {
	dir   string
	log   zerolog.Logger
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewConversationStore creates the conversations directory and returns the
// file-backed repository.
func NewConversationStore(dataDir string, log zerolog.Logger) (*ConversationStore, error) {
	dir := filepath.Join(dataDir, "conversations")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create conversations directory: %w", err)
	}

	logger := log.With().Str("component", "filestore").Logger()
	logger.Info().Str("path", dir).Msg("conversation filestore initialized")

	return &ConversationStore{
		dir:   dir,
		log:   logger,
		locks: make(map[string]*sync.Mutex),
	}, nil
}

var _ conversation.Repository = (*ConversationStore)(nil)

func (s *ConversationStore) lockFor(id string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.locks[id]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[id] = lock
	}
	return lock
}

func (s *ConversationStore) path(id string) string {
	return filepath.Join(s.dir, id+".json")
}

func (s *ConversationStore) read(ctx context.Context, id string) (*document, error) {
	data, err := os.ReadFile(s.path(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeNotFound, "conversation not found: "+id, nil)
		}
		return nil, platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeDatabaseError, "failed to read conversation", err)
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeDatabaseError, "failed to decode conversation", err)
	}
	return &doc, nil
}

func (s *ConversationStore) write(ctx context.Context, doc *document) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeDatabaseError, "failed to encode conversation", err)
	}

	target := s.path(doc.Conversation.ID)
	tmp, err := os.CreateTemp(s.dir, doc.Conversation.ID+".*.tmp")
	if err != nil {
		return platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeDatabaseError, "failed to create temp file", err)
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeDatabaseError, "failed to write conversation", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeDatabaseError, "failed to flush conversation", err)
	}
	if err := os.Rename(tmp.Name(), target); err != nil {
		os.Remove(tmp.Name())
		return platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeDatabaseError, "failed to persist conversation", err)
	}
	return nil
}

// Create persists a fresh conversation with an empty message list.
func (s *ConversationStore) Create(ctx context.Context, conv *conversation.Conversation) error {
	lock := s.lockFor(conv.ID)
	lock.Lock()
	defer lock.Unlock()

	return s.write(ctx, &document{Conversation: *conv, Messages: []conversation.Message{}})
}

// FindByID returns conversation metadata without its messages.
func (s *ConversationStore) FindByID(ctx context.Context, id string) (*conversation.Conversation, error) {
	doc, err := s.read(ctx, id)
	if err != nil {
		return nil, err
	}
	conv := doc.Conversation
	return &conv, nil
}

// List returns conversations sorted by updatedAt descending, ties broken by
// id. An empty ownerID returns every conversation.
func (s *ConversationStore) List(ctx context.Context, ownerID string) ([]*conversation.Conversation, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeDatabaseError, "failed to list conversations", err)
	}

	conversations := make([]*conversation.Conversation, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		doc, err := s.read(ctx, strings.TrimSuffix(name, ".json"))
		if err != nil {
			s.log.Warn().Err(err).Str("file", name).Msg("skipping unreadable conversation file")
			continue
		}
		conv := doc.Conversation
		if ownerID != "" && conv.OwnerID != ownerID {
			continue
		}
		conversations = append(conversations, &conv)
	}

	sort.Slice(conversations, func(i, j int) bool {
		if conversations[i].UpdatedAt.Equal(conversations[j].UpdatedAt) {
			return conversations[i].ID < conversations[j].ID
		}
		return conversations[i].UpdatedAt.After(conversations[j].UpdatedAt)
	})
	return conversations, nil
}

// Update rewrites conversation metadata, preserving the stored messages.
func (s *ConversationStore) Update(ctx context.Context, conv *conversation.Conversation) error {
	lock := s.lockFor(conv.ID)
	lock.Lock()
	defer lock.Unlock()

	doc, err := s.read(ctx, conv.ID)
	if err != nil {
		return err
	}
	doc.Conversation = *conv
	return s.write(ctx, doc)
}

// Delete removes the conversation file. Unknown ids are reported as
// NotFound so the service can decide to ignore them.
func (s *ConversationStore) Delete(ctx context.Context, id string) error {
	lock := s.lockFor(id)
	lock.Lock()
	defer lock.Unlock()

	if err := os.Remove(s.path(id)); err != nil {
		if os.IsNotExist(err) {
			return platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeNotFound, "conversation not found: "+id, nil)
		}
		return platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeDatabaseError, "failed to delete conversation", err)
	}

	s.mu.Lock()
	delete(s.locks, id)
	s.mu.Unlock()
	return nil
}

// AppendMessage adds the message at the end of the list, derives the title
// when the very first message is a user message and advances updatedAt, all
// under the conversation lock.
func (s *ConversationStore) AppendMessage(ctx context.Context, conversationID string, msg *conversation.Message) error {
	lock := s.lockFor(conversationID)
	lock.Lock()
	defer lock.Unlock()

	doc, err := s.read(ctx, conversationID)
	if err != nil {
		return err
	}

	if len(doc.Messages) == 0 && msg.Role == conversation.RoleUser {
		doc.Conversation.Title = conversation.DeriveTitle(msg.Content)
	}

	doc.Messages = append(doc.Messages, *msg)
	doc.Conversation.UpdatedAt = msg.CreatedAt
	return s.write(ctx, doc)
}

// UpdateMessageContent locates the message by id across all conversation
// files and replaces only its content.
func (s *ConversationStore) UpdateMessageContent(ctx context.Context, messageID, content string) error {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeDatabaseError, "failed to scan conversations", err)
	}

	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		id := strings.TrimSuffix(name, ".json")

		if updated, err := s.updateMessageIn(ctx, id, messageID, content); err != nil {
			return err
		} else if updated {
			return nil
		}
	}
	return platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeNotFound, "message not found: "+messageID, nil)
}

func (s *ConversationStore) updateMessageIn(ctx context.Context, conversationID, messageID, content string) (bool, error) {
	lock := s.lockFor(conversationID)
	lock.Lock()
	defer lock.Unlock()

	doc, err := s.read(ctx, conversationID)
	if err != nil {
		if platformerrors.IsErrorType(err, platformerrors.ErrorTypeNotFound) {
			// Deleted between the directory scan and the lock.
			return false, nil
		}
		return false, err
	}

	for i := range doc.Messages {
		if doc.Messages[i].ID != messageID {
			continue
		}
		doc.Messages[i].Content = content
		return true, s.write(ctx, doc)
	}
	return false, nil
}

// ListMessages returns the conversation's messages in append order.
func (s *ConversationStore) ListMessages(ctx context.Context, conversationID string) ([]conversation.Message, error) {
	doc, err := s.read(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if doc.Messages == nil {
		return []conversation.Message{}, nil
	}
	return doc.Messages, nil
}
