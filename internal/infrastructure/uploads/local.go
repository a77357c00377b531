package uploads

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"chat-server/internal/domain/conversation"
	"chat-server/internal/utils/chatid"
	"chat-server/internal/utils/platformerrors"
)

// MaxFileSize caps a single uploaded file at 50 MiB.
const MaxFileSize = 50 << 20

// Store persists multipart uploads to the local filesystem and hands back
// attachment records pointing at the /uploads static route.
type Store struct {
	dir     string
	urlBase string
	log     zerolog.Logger
}

// NewStore creates the uploads directory and returns the store.
func NewStore(dir string, log zerolog.Logger) (*Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create uploads directory: %w", err)
	}

	logger := log.With().Str("component", "uploads").Logger()
	logger.Info().Str("path", dir).Msg("upload store initialized")

	return &Store{
		dir:     dir,
		urlBase: "/uploads",
		log:     logger,
	}, nil
}

// Dir returns the directory served under the /uploads route.
func (s *Store) Dir() string {
	return s.dir
}

// Save writes one multipart file to disk under "<uuid>-<original name>" and
// returns the attachment record.
func (s *Store) Save(ctx context.Context, header *multipart.FileHeader) (conversation.FileAttachment, error) {
	var attachment conversation.FileAttachment

	if header.Size > MaxFileSize {
		return attachment, platformerrors.NewError(ctx, platformerrors.LayerInfrastructure, platformerrors.ErrorTypeValidation,
			fmt.Sprintf("file %s exceeds the 50 MiB limit", header.Filename), nil)
	}

	src, err := header.Open()
	if err != nil {
		return attachment, platformerrors.NewError(ctx, platformerrors.LayerInfrastructure, platformerrors.ErrorTypeInternal, "failed to open uploaded file", err)
	}
	defer src.Close()

	name := sanitizeFilename(header.Filename)
	storedName := uuid.NewString() + "-" + name
	fullPath := filepath.Join(s.dir, storedName)

	dst, err := os.Create(fullPath)
	if err != nil {
		return attachment, platformerrors.NewError(ctx, platformerrors.LayerInfrastructure, platformerrors.ErrorTypeInternal, "failed to store uploaded file", err)
	}
	defer dst.Close()

	written, err := io.Copy(dst, io.LimitReader(src, MaxFileSize+1))
	if err != nil {
		os.Remove(fullPath)
		return attachment, platformerrors.NewError(ctx, platformerrors.LayerInfrastructure, platformerrors.ErrorTypeInternal, "failed to write uploaded file", err)
	}
	if written > MaxFileSize {
		os.Remove(fullPath)
		return attachment, platformerrors.NewError(ctx, platformerrors.LayerInfrastructure, platformerrors.ErrorTypeValidation,
			fmt.Sprintf("file %s exceeds the 50 MiB limit", header.Filename), nil)
	}

	mimeType := header.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}

	s.log.Debug().Str("file", storedName).Int64("bytes", written).Msg("file uploaded")

	return conversation.FileAttachment{
		ID:        chatid.NewFileID(),
		Name:      name,
		MimeType:  mimeType,
		SizeBytes: written,
		URL:       s.urlBase + "/" + storedName,
	}, nil
}

func sanitizeFilename(name string) string {
	name = filepath.Base(name)
	name = strings.ReplaceAll(name, " ", "_")
	if name == "" || name == "." || name == string(filepath.Separator) {
		name = "file"
	}
	return name
}
