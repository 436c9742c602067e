package editor

import (
	"bytes"
	"encoding/base64"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/jimalvess/diario-cli/internal/client/models"
	"github.com/ledongthuc/pdf"
)

// excerptLen is the number of characters kept in text excerpts.
const excerptLen = 280

// Item identifies something in the visible attachment list: either a staged
// file (PendingItem) or an attachment already stored with the entry
// (ExistingItem).
type Item interface {
	isItem()
}

// PendingItem refers to a staged file by its PendingUpload.ID.
type PendingItem string

// ExistingItem refers to a stored attachment by its id.
type ExistingItem int64

func (PendingItem) isItem()  {}
func (ExistingItem) isItem() {}

// Preview is what the UI displays for an item.
type Preview struct {
	Name string
	Kind models.MediaKind
	// URL is a data: URL for staged files and the server URL otherwise.
	URL string
	// Excerpt is the start of the text of documents that have one.
	Excerpt string
	Local   bool
}

func buildPendingPreview(p models.PendingUpload, data []byte) Preview {
	pv := Preview{
		Name:  p.Name,
		Kind:  p.Kind(),
		URL:   "data:" + p.ContentType + ";base64," + base64.StdEncoding.EncodeToString(data),
		Local: true,
	}
	switch {
	case p.ContentType == "application/pdf":
		pv.Excerpt = pdfExcerpt(data)
	case strings.HasPrefix(p.ContentType, "text/"):
		pv.Excerpt = truncate(string(data))
	}
	return pv
}

// pdfExcerpt returns the beginning of the plain text of a PDF, or "" when the
// document cannot be parsed.
func pdfExcerpt(data []byte) (excerpt string) {
	defer func() {
		// The pdf reader panics on some malformed inputs.
		if recover() != nil {
			excerpt = ""
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return ""
	}
	text, err := r.GetPlainText()
	if err != nil {
		return ""
	}
	b, err := io.ReadAll(io.LimitReader(text, excerptLen*4))
	if err != nil {
		return ""
	}
	return truncate(string(b))
}

func truncate(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	if utf8.RuneCountInString(s) <= excerptLen {
		return s
	}
	r := []rune(s)
	return string(r[:excerptLen]) + "…"
}
