package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"chat-server/internal/domain/chat"
	"chat-server/internal/domain/conversation"
	"chat-server/internal/domain/llm"
	"chat-server/internal/domain/user"
	"chat-server/internal/infrastructure/filestore"
	"chat-server/internal/infrastructure/uploads"
	"chat-server/internal/interfaces/httpserver/handlers"
	"chat-server/internal/interfaces/httpserver/responses"
	"chat-server/internal/interfaces/httpserver/routes"
)

// scriptedStream replays fragments then ends the stream.
type scriptedStream struct {
	fragments []string
	pos       int
}

func (s *scriptedStream) Recv() (*llm.ChatCompletionDelta, error) {
	if s.pos >= len(s.fragments) {
		return nil, io.EOF
	}
	delta := &llm.ChatCompletionDelta{Choices: []llm.DeltaChoice{{}}}
	delta.Choices[0].Delta.Content = s.fragments[s.pos]
	s.pos++
	return delta, nil
}

func (s *scriptedStream) Close() error { return nil }

// fakeProvider answers every stream with the configured fragments.
type fakeProvider struct {
	fragments []string
}

func (p *fakeProvider) Name() string { return llm.ProviderOpenRouter }

func (p *fakeProvider) CreateChatCompletion(ctx context.Context, req llm.ChatCompletionRequest) (*llm.ChatCompletionResponse, error) {
	return &llm.ChatCompletionResponse{}, nil
}

func (p *fakeProvider) CreateChatCompletionStream(ctx context.Context, req llm.ChatCompletionRequest) (llm.Stream, error) {
	return &scriptedStream{fragments: p.fragments}, nil
}

// syncSubmitter runs jobs inline so handlers tests observe final content.
type syncSubmitter struct{}

func (s *syncSubmitter) Submit(jobType string, job func(ctx context.Context) error) error {
	_ = job(context.Background())
	return nil
}

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	log := zerolog.Nop()

	dataDir := t.TempDir()
	convStore, err := filestore.NewConversationStore(dataDir, log)
	if err != nil {
		t.Fatalf("failed to create conversation store: %v", err)
	}
	userStore, err := filestore.NewUserStore(dataDir, log)
	if err != nil {
		t.Fatalf("failed to create user store: %v", err)
	}
	uploadStore, err := uploads.NewStore(t.TempDir(), log)
	if err != nil {
		t.Fatalf("failed to create upload store: %v", err)
	}

	users := user.NewService(userStore, log)
	conversations := conversation.NewService(convStore, users, log)

	registry := llm.NewRegistry()
	registry.Register(&fakeProvider{fragments: []string{"He", "llo!"}})
	relay := chat.NewRelay(registry, log)
	chatService := chat.NewService(conversations, users, relay, &syncSubmitter{}, log)

	engine := gin.New()
	routes.NewProvider(handlers.NewProvider(conversations, chatService, users, uploadStore, log)).Register(engine)
	return engine
}

func doJSON(t *testing.T, engine *gin.Engine, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	return rec
}

func createConversation(t *testing.T, engine *gin.Engine, owner string) responses.ConversationPayload {
	t.Helper()
	headers := map[string]string{}
	if owner != "" {
		headers["X-Owner-Id"] = owner
	}
	rec := doJSON(t, engine, http.MethodPost, "/api/conversations", map[string]string{"model": llm.DefaultModel}, headers)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create returned %d: %s", rec.Code, rec.Body.String())
	}
	var payload responses.ConversationPayload
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("failed to decode conversation: %v", err)
	}
	return payload
}

func TestCreateConversation(t *testing.T) {
	engine := newTestRouter(t)

	payload := createConversation(t, engine, "user-1")
	if payload.OwnerID != "user-1" {
		t.Errorf("owner = %q, want user-1", payload.OwnerID)
	}
	if payload.Model != llm.DefaultModel {
		t.Errorf("model = %q, want %q", payload.Model, llm.DefaultModel)
	}
	if payload.ID == "" {
		t.Error("expected a generated id")
	}
}

func TestCreateConversationWithoutOwnerIsAnonymous(t *testing.T) {
	engine := newTestRouter(t)

	payload := createConversation(t, engine, "")
	if payload.OwnerID != conversation.AnonymousOwner {
		t.Errorf("owner = %q, want anonymous", payload.OwnerID)
	}
}

func TestCreateConversationMissingModel(t *testing.T) {
	engine := newTestRouter(t)

	rec := doJSON(t, engine, http.MethodPost, "/api/conversations", map[string]string{"title": "no model"}, nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestGetConversationUnknownID(t *testing.T) {
	engine := newTestRouter(t)

	rec := doJSON(t, engine, http.MethodGet, "/api/conversations/conv_missing", nil, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestListConversationsFiltersByOwner(t *testing.T) {
	engine := newTestRouter(t)

	createConversation(t, engine, "user-1")
	createConversation(t, engine, "user-1")
	createConversation(t, engine, "user-2")

	rec := doJSON(t, engine, http.MethodGet, "/api/conversations?owner=user-1", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	var listed []responses.ConversationPayload
	if err := json.Unmarshal(rec.Body.Bytes(), &listed); err != nil {
		t.Fatalf("failed to decode list: %v", err)
	}
	if len(listed) != 2 {
		t.Errorf("expected 2 conversations for user-1, got %d", len(listed))
	}

	rec = doJSON(t, engine, http.MethodGet, "/api/conversations", nil, nil)
	if err := json.Unmarshal(rec.Body.Bytes(), &listed); err != nil {
		t.Fatalf("failed to decode list: %v", err)
	}
	if len(listed) != 3 {
		t.Errorf("expected all 3 conversations without a filter, got %d", len(listed))
	}
}

func TestUpdateConversationTitle(t *testing.T) {
	engine := newTestRouter(t)
	created := createConversation(t, engine, "user-1")

	rec := doJSON(t, engine, http.MethodPatch, "/api/conversations/"+created.ID, map[string]string{"title": "Renamed"}, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	var updated responses.ConversationPayload
	if err := json.Unmarshal(rec.Body.Bytes(), &updated); err != nil {
		t.Fatalf("failed to decode conversation: %v", err)
	}
	if updated.Title != "Renamed" {
		t.Errorf("title = %q, want Renamed", updated.Title)
	}
	if updated.Model != llm.DefaultModel {
		t.Errorf("model should be untouched, got %q", updated.Model)
	}
}

func TestDeleteConversationIsIdempotent(t *testing.T) {
	engine := newTestRouter(t)
	created := createConversation(t, engine, "user-1")

	rec := doJSON(t, engine, http.MethodDelete, "/api/conversations/"+created.ID, nil, nil)
	if rec.Code != http.StatusNoContent {
		t.Errorf("status = %d, want 204", rec.Code)
	}

	rec = doJSON(t, engine, http.MethodDelete, "/api/conversations/"+created.ID, nil, nil)
	if rec.Code != http.StatusNoContent {
		t.Errorf("repeat delete status = %d, want 204", rec.Code)
	}
}

func TestListMessagesEmptyConversation(t *testing.T) {
	engine := newTestRouter(t)
	created := createConversation(t, engine, "user-1")

	rec := doJSON(t, engine, http.MethodGet, "/api/conversations/"+created.ID+"/messages", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	if body := strings.TrimSpace(rec.Body.String()); body != "[]" {
		t.Errorf("body = %q, want an empty array", body)
	}
}

func sendMessageForm(t *testing.T, engine *gin.Engine, values url.Values) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/messages", strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	return rec
}

func TestSendMessageAndPollForResponse(t *testing.T) {
	engine := newTestRouter(t)
	created := createConversation(t, engine, "")

	rec := sendMessageForm(t, engine, url.Values{
		"conversationId": {created.ID},
		"content":        {"say hello"},
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	var result responses.SendMessageResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if result.UserMessage.Content != "say hello" {
		t.Errorf("user content = %q", result.UserMessage.Content)
	}
	if result.AssistantMessage.Role != "assistant" {
		t.Errorf("assistant role = %q", result.AssistantMessage.Role)
	}

	// The sync submitter has already finished generation; polling the
	// message list returns the streamed content.
	rec = doJSON(t, engine, http.MethodGet, "/api/conversations/"+created.ID+"/messages", nil, nil)
	var messages []responses.MessagePayload
	if err := json.Unmarshal(rec.Body.Bytes(), &messages); err != nil {
		t.Fatalf("failed to decode messages: %v", err)
	}
	if len(messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(messages))
	}
	if messages[1].Content != "Hello!" {
		t.Errorf("assistant content = %q, want Hello!", messages[1].Content)
	}
}

func TestSendMessageMissingConversationID(t *testing.T) {
	engine := newTestRouter(t)

	rec := sendMessageForm(t, engine, url.Values{"content": {"hello"}})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestSendMessageOverTokenLimit(t *testing.T) {
	engine := newTestRouter(t)
	created := createConversation(t, engine, "user-1")

	// Burn through the free allowance; each request spends ceil(len/4).
	big := strings.Repeat("a", 4000)
	rec := sendMessageForm(t, engine, url.Values{
		"conversationId": {created.ID},
		"content":        {big},
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("first message status = %d: %s", rec.Code, rec.Body.String())
	}

	rec = sendMessageForm(t, engine, url.Values{
		"conversationId": {created.ID},
		"content":        {"one more"},
	})
	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", rec.Code)
	}
}

func TestSendMessageWithAttachment(t *testing.T) {
	engine := newTestRouter(t)
	created := createConversation(t, engine, "")

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	if err := writer.WriteField("conversationId", created.ID); err != nil {
		t.Fatalf("failed to write field: %v", err)
	}
	if err := writer.WriteField("content", "see attachment"); err != nil {
		t.Fatalf("failed to write field: %v", err)
	}
	part, err := writer.CreateFormFile("files", "notes.txt")
	if err != nil {
		t.Fatalf("failed to create form file: %v", err)
	}
	if _, err := part.Write([]byte("attached text")); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}
	writer.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/messages", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	var result responses.SendMessageResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(result.UserMessage.Attachments) != 1 {
		t.Fatalf("expected 1 attachment, got %d", len(result.UserMessage.Attachments))
	}
	attachment := result.UserMessage.Attachments[0]
	if attachment.Name != "notes.txt" {
		t.Errorf("attachment name = %q, want notes.txt", attachment.Name)
	}
	if attachment.SizeBytes != int64(len("attached text")) {
		t.Errorf("attachment size = %d", attachment.SizeBytes)
	}
	if !strings.HasPrefix(attachment.URL, "/uploads/") {
		t.Errorf("attachment url = %q, want an /uploads path", attachment.URL)
	}
}

func TestModelCatalog(t *testing.T) {
	engine := newTestRouter(t)

	rec := doJSON(t, engine, http.MethodGet, "/api/models", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	var models []llm.ModelOption
	if err := json.Unmarshal(rec.Body.Bytes(), &models); err != nil {
		t.Fatalf("failed to decode models: %v", err)
	}
	if len(models) == 0 {
		t.Fatal("expected a non-empty catalog")
	}
	var foundDefault bool
	for _, model := range models {
		if model.ID == llm.DefaultModel {
			foundDefault = true
		}
	}
	if !foundDefault {
		t.Errorf("catalog should include the default model %q", llm.DefaultModel)
	}
}

func TestProfileAndUpgrade(t *testing.T) {
	engine := newTestRouter(t)
	headers := map[string]string{"X-Owner-Id": "user-1"}

	rec := doJSON(t, engine, http.MethodGet, "/api/users/profile", nil, headers)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	var profile responses.ProfilePayload
	if err := json.Unmarshal(rec.Body.Bytes(), &profile); err != nil {
		t.Fatalf("failed to decode profile: %v", err)
	}
	if profile.Plan != string(user.PlanFree) {
		t.Errorf("plan = %q, want free", profile.Plan)
	}
	if profile.TokensLimit != user.FreeTokenLimit {
		t.Errorf("limit = %d, want %d", profile.TokensLimit, user.FreeTokenLimit)
	}

	rec = doJSON(t, engine, http.MethodPost, "/api/users/upgrade", nil, headers)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &profile); err != nil {
		t.Fatalf("failed to decode profile: %v", err)
	}
	if profile.Plan != string(user.PlanPremium) {
		t.Errorf("plan = %q, want premium", profile.Plan)
	}
	if profile.TokensLimit != user.PremiumTokenLimit {
		t.Errorf("limit = %d, want %d", profile.TokensLimit, user.PremiumTokenLimit)
	}
}
