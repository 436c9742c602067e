package models

import (
	"bytes"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// sniffLen is how many leading bytes http.DetectContentType looks at.
const sniffLen = 512

// mediaExtensions covers types the Go builtin table lacks when the host has
// no mime.types file.
var mediaExtensions = map[string]string{
	".mp4":  "video/mp4",
	".mov":  "video/quicktime",
	".webm": "video/webm",
	".mkv":  "video/x-matroska",
	".mp3":  "audio/mpeg",
	".wav":  "audio/wav",
	".ogg":  "audio/ogg",
	".m4a":  "audio/mp4",
	".txt":  "text/plain",
	".doc":  "application/msword",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
}

// PendingUpload is a file staged for attachment inside an editor session.
// It is never persisted; the content is read only when previewed or submitted.
type PendingUpload struct {
	ID          string
	Name        string
	Size        int64
	ContentType string

	path string
	data []byte
}

// PendingFromPath stages the file at path. Only the first bytes are read to
// detect its content type.
func PendingFromPath(path string) (PendingUpload, error) {
	f, err := os.Open(path)
	if err != nil {
		return PendingUpload{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		return PendingUpload{}, fmt.Errorf("stat %s: %w", path, err)
	}
	if st.IsDir() {
		return PendingUpload{}, fmt.Errorf("%s is a directory", path)
	}

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(f, head)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return PendingUpload{}, fmt.Errorf("read %s: %w", path, err)
	}

	name := filepath.Base(path)
	return PendingUpload{
		ID:          uuid.NewString(),
		Name:        name,
		Size:        st.Size(),
		ContentType: DetectContentType(name, head[:n]),
		path:        path,
	}, nil
}

// PendingFromBytes stages an in-memory file.
func PendingFromBytes(name string, data []byte) PendingUpload {
	return PendingUpload{
		ID:          uuid.NewString(),
		Name:        name,
		Size:        int64(len(data)),
		ContentType: DetectContentType(name, data),
		data:        data,
	}
}

// PendingWithSize stages a file whose content is produced by data but whose
// reported size is size. Useful when the size is known up front, e.g. for
// files announced by a picker before they are read.
func PendingWithSize(name string, size int64, data []byte) PendingUpload {
	p := PendingFromBytes(name, data)
	p.Size = size
	return p
}

// Open returns a reader over the staged content.
func (p PendingUpload) Open() (io.ReadCloser, error) {
	if p.path != "" {
		f, err := os.Open(p.path)
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", p.path, err)
		}
		return f, nil
	}
	return io.NopCloser(bytes.NewReader(p.data)), nil
}

// Kind is the presentation tag derived from the content type.
func (p PendingUpload) Kind() MediaKind {
	return KindFromMIME(p.ContentType)
}

// DetectContentType resolves a MIME type from the file extension and falls
// back to sniffing head. Parameters such as charset are dropped since the
// backend only looks at the type prefix.
func DetectContentType(name string, head []byte) string {
	ext := strings.ToLower(filepath.Ext(name))
	if ct := mime.TypeByExtension(ext); ct != "" {
		return stripParams(ct)
	}
	if ct, ok := mediaExtensions[ext]; ok {
		return ct
	}
	if len(head) == 0 {
		return "application/octet-stream"
	}
	return stripParams(http.DetectContentType(head))
}

func stripParams(ct string) string {
	if mt, _, err := mime.ParseMediaType(ct); err == nil {
		return mt
	}
	return ct
}
