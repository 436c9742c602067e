package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/jimalvess/diario-cli/internal/client/client"
	"github.com/jimalvess/diario-cli/internal/client/models"
	"github.com/jimalvess/diario-cli/internal/filex"
	"github.com/jimalvess/diario-cli/internal/logging"
)

// AttachmentAPI is the part of the backend serving stored files.
type AttachmentAPI interface {
	FetchAttachment(ctx context.Context, fileName string) ([]byte, string, error)
}

// Blob is the content of a stored file.
type Blob struct {
	Data        []byte
	ContentType string
}

// AttachmentService downloads attachment content.
type AttachmentService interface {
	// Fetch returns the bytes of a stored file, from cache when recent.
	Fetch(ctx context.Context, fileName string) (Blob, error)
	// SaveTo writes the attachment under dir using its original name and
	// returns the path written.
	SaveTo(ctx context.Context, a models.Attachment, dir string) (string, error)
}

type attachmentService struct {
	client AttachmentAPI
	cache  *expirable.LRU[string, Blob]
	log    logging.Logger
}

// NewAttachmentService caches up to size files for ttl. A size of zero or
// less disables caching.
func NewAttachmentService(api AttachmentAPI, size int, ttl time.Duration, log logging.Logger) AttachmentService {
	if log == nil {
		log = logging.Discard()
	}
	s := &attachmentService{client: api, log: log.With("component", "attachments")}
	if size > 0 {
		s.cache = expirable.NewLRU[string, Blob](size, nil, ttl)
	}
	return s
}

func (s *attachmentService) Fetch(ctx context.Context, fileName string) (Blob, error) {
	if s.cache != nil {
		if b, ok := s.cache.Get(fileName); ok {
			s.log.Debug(ctx, "attachment cache hit", "file", fileName)
			return b, nil
		}
	}

	data, ct, err := s.client.FetchAttachment(ctx, fileName)
	if err != nil {
		return Blob{}, err
	}
	b := Blob{Data: data, ContentType: ct}
	if s.cache != nil {
		s.cache.Add(fileName, b)
	}
	return b, nil
}

func (s *attachmentService) SaveTo(ctx context.Context, a models.Attachment, dir string) (string, error) {
	stored := a.StoredFileName()
	if stored == "" {
		return "", fmt.Errorf("save attachment %d: %w: no file name", a.ID, client.ErrValidation)
	}

	blob, err := s.Fetch(ctx, stored)
	if err != nil {
		return "", fmt.Errorf("save attachment %d: %w", a.ID, err)
	}

	abs, err := filex.EnsureDir(dir)
	if err != nil {
		return "", err
	}
	name := a.OriginalName
	if name == "" {
		name = stored
	}
	path := filex.UniquePath(abs, filex.SafeName(name))
	if err := os.WriteFile(path, blob.Data, 0o600); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}

	s.log.Info(ctx, "attachment saved", "path", filepath.Base(path), "bytes", len(blob.Data))
	return path, nil
}
