// Package chatid generates prefixed, sortable identifiers for chat
// entities. ULIDs keep ids lexically ordered by creation time, which the
// stores rely on for stable tie-breaking.
package chatid

import (
	"crypto/rand"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

const (
	conversationPrefix = "conv_"
	messagePrefix      = "msg_"
	filePrefix         = "file_"
)

var (
	entropyMu sync.Mutex
	entropy   = ulid.Monotonic(rand.Reader, 0)
)

func newID(prefix string) string {
	entropyMu.Lock()
	id := ulid.MustNew(ulid.Timestamp(time.Now()), entropy)
	entropyMu.Unlock()
	return prefix + strings.ToLower(id.String())
}

// NewConversationID returns a fresh conversation identifier.
func NewConversationID() string {
	return newID(conversationPrefix)
}

// NewMessageID returns a fresh message identifier.
func NewMessageID() string {
	return newID(messagePrefix)
}

// NewFileID returns a fresh file attachment identifier.
func NewFileID() string {
	return newID(filePrefix)
}

// IsValid reports whether the id carries a known prefix followed by a
// parseable ULID.
func IsValid(id string) bool {
	var body string
	switch {
	case strings.HasPrefix(id, conversationPrefix):
		body = strings.TrimPrefix(id, conversationPrefix)
	case strings.HasPrefix(id, messagePrefix):
		body = strings.TrimPrefix(id, messagePrefix)
	case strings.HasPrefix(id, filePrefix):
		body = strings.TrimPrefix(id, filePrefix)
	default:
		return false
	}
	_, err := ulid.ParseStrict(strings.ToUpper(body))
	return err == nil
}
