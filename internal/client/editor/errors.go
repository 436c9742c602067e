package editor

import (
	"errors"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/jimalvess/diario-cli/internal/client/client"
)

var (
	ErrSessionClosed     = errors.New("editor session is closed")
	ErrNotReady          = errors.New("editor session is not ready")
	ErrBusy              = errors.New("editor session is submitting")
	ErrUnknownAttachment = errors.New("attachment is not part of this entry")
	ErrUnknownUpload     = errors.New("no staged file with this id")
)

// FileTooLargeError rejects one staged file.
type FileTooLargeError struct {
	Name  string
	Size  int64
	Limit int64
}

func (e *FileTooLargeError) Error() string {
	return fmt.Sprintf("%s is %s; files must be smaller than %s",
		e.Name, humanize.IBytes(uint64(e.Size)), humanize.IBytes(uint64(e.Limit)))
}

// Unwrap classifies the rejection as a client-side validation failure.
func (e *FileTooLargeError) Unwrap() error { return client.ErrValidation }

// FailureMessage turns a Submit error into the message shown to the user.
// Every category is recoverable: the session keeps its state for a retry.
func FailureMessage(err error) string {
	switch client.KindOf(err) {
	case client.KindNone:
		return ""
	case client.KindPayloadTooLarge:
		return "The attachments are too large for the server. Remove some files and try again."
	case client.KindForbidden:
		return "You do not have permission to change this entry."
	case client.KindAuthRequired:
		return "Your session has expired. Log in again and retry."
	case client.KindNotFound:
		return "This entry no longer exists."
	case client.KindValidation:
		return err.Error()
	default:
		return "Could not save the entry. Try again."
	}
}
