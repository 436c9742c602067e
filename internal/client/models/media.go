package models

import "strings"

// MediaKind tags an attachment with how it is presented.
type MediaKind string

const (
	KindImage    MediaKind = "image"
	KindVideo    MediaKind = "video"
	KindAudio    MediaKind = "audio"
	KindDocument MediaKind = "document"
)

// ParseMediaKind maps the backend's file-type vocabulary onto a MediaKind.
// "imagem", "video" and "audio" have their own kinds; everything else
// ("documento_pdf", "documento_word", "outro_documento", "desconhecido", ...)
// is a document.
func ParseMediaKind(s string) MediaKind {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "imagem", "image":
		return KindImage
	case "video":
		return KindVideo
	case "audio":
		return KindAudio
	default:
		return KindDocument
	}
}

// KindFromMIME classifies a content type the way the backend does when it
// stores an upload.
func KindFromMIME(contentType string) MediaKind {
	ct := strings.ToLower(contentType)
	switch {
	case strings.HasPrefix(ct, "image/"):
		return KindImage
	case strings.HasPrefix(ct, "video/"):
		return KindVideo
	case strings.HasPrefix(ct, "audio/"):
		return KindAudio
	default:
		return KindDocument
	}
}

func (k MediaKind) String() string { return string(k) }
