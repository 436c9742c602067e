package models

import (
	"net/url"
	"strings"
)

// Entry is one diary entry owned by the authenticated user.
type Entry struct {
	ID          int64        `json:"id"`
	Date        Date         `json:"data"`
	Title       string       `json:"titulo"`
	Body        string       `json:"conteudo"`
	UserID      int64        `json:"usuarioId,omitempty"`
	UserName    string       `json:"usuarioNome,omitempty"`
	Attachments []Attachment `json:"midias"`
}

// Attachment is a media file persisted with an entry.
type Attachment struct {
	ID           int64  `json:"id"`
	OriginalName string `json:"nomeOriginalArquivo"`
	// Locator is where the backend stored the file, e.g. "uploads/3f2a_photo.jpg".
	Locator string `json:"caminhoArquivo"`
	// RawKind keeps the backend's type string; use Kind for presentation.
	RawKind string `json:"tipoArquivo"`
}

// Kind returns the presentation tag of the attachment.
func (a Attachment) Kind() MediaKind {
	return ParseMediaKind(a.RawKind)
}

// DisplayName is the original file name, or a placeholder when the backend
// did not keep it.
func (a Attachment) DisplayName() string {
	if a.OriginalName != "" {
		return a.OriginalName
	}
	return "unknown-file"
}

// StoredFileName is the last path segment of the locator, falling back to the
// original file name. Both separators are accepted since the backend may run
// on Windows.
func (a Attachment) StoredFileName() string {
	if a.Locator != "" {
		loc := strings.ReplaceAll(a.Locator, `\`, "/")
		if i := strings.LastIndex(loc, "/"); i >= 0 {
			loc = loc[i+1:]
		}
		if loc != "" {
			return loc
		}
	}
	return a.OriginalName
}

// AttachmentView is an Attachment prepared for display: it carries the URL
// the file can be fetched from.
type AttachmentView struct {
	Attachment
	URL string
}

// NewAttachmentView builds the view record for a, resolving its URL against
// the backend origin. URL is empty when the attachment has no usable name.
func NewAttachmentView(a Attachment, baseURL string) AttachmentView {
	v := AttachmentView{Attachment: a}
	if name := a.StoredFileName(); name != "" {
		v.URL = AttachmentURL(baseURL, name)
	}
	return v
}

// AttachmentURL is the download URL of a stored file name.
func AttachmentURL(baseURL, fileName string) string {
	return strings.TrimRight(baseURL, "/") + "/api/entradas/arquivo/" + url.PathEscape(fileName)
}

// AttachmentViews maps every attachment of e to its view record.
func (e Entry) AttachmentViews(baseURL string) []AttachmentView {
	views := make([]AttachmentView, 0, len(e.Attachments))
	for _, a := range e.Attachments {
		views = append(views, NewAttachmentView(a, baseURL))
	}
	return views
}

// EntryList is the list endpoint payload. The backend answers with a bare
// array; older builds wrapped it as {"entradas": [...]}.
type EntryList struct {
	Entries []Entry `json:"entradas"`
}
