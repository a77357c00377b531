package chatid_test

import (
	"strings"
	"testing"

	"chat-server/internal/utils/chatid"
)

func TestNewIDPrefixes(t *testing.T) {
	tests := []struct {
		name   string
		gen    func() string
		prefix string
	}{
		{name: "conversation", gen: chatid.NewConversationID, prefix: "conv_"},
		{name: "message", gen: chatid.NewMessageID, prefix: "msg_"},
		{name: "file", gen: chatid.NewFileID, prefix: "file_"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id := tt.gen()
			if !strings.HasPrefix(id, tt.prefix) {
				t.Errorf("expected prefix %q, got %q", tt.prefix, id)
			}
			if id != strings.ToLower(id) {
				t.Errorf("expected lowercase id, got %q", id)
			}
			if !chatid.IsValid(id) {
				t.Errorf("generated id %q should be valid", id)
			}
		})
	}
}

func TestNewIDUniqueness(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		id := chatid.NewMessageID()
		if seen[id] {
			t.Fatalf("duplicate id generated: %s", id)
		}
		seen[id] = true
	}
}

func TestIDsSortByCreationTime(t *testing.T) {
	first := chatid.NewMessageID()
	second := chatid.NewMessageID()
	if !(first < second) {
		t.Errorf("expected %q < %q", first, second)
	}
}

func TestIsValid(t *testing.T) {
	tests := []struct {
		name  string
		id    string
		valid bool
	}{
		{name: "empty", id: "", valid: false},
		{name: "no prefix", id: "01hgw2n8e5x8p7v6q4r3t2y1z0", valid: false},
		{name: "unknown prefix", id: "user_01hgw2n8e5x8p7v6q4r3t2y1z0", valid: false},
		{name: "prefix without body", id: "msg_", valid: false},
		{name: "prefix with garbage", id: "conv_not-a-ulid", valid: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := chatid.IsValid(tt.id); got != tt.valid {
				t.Errorf("IsValid(%q) = %v, want %v", tt.id, got, tt.valid)
			}
		})
	}
}
