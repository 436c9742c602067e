package client

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"
	"strconv"
	"strings"

	"github.com/jimalvess/diario-cli/internal/client/models"
)

const (
	fieldTitle     = "titulo"
	fieldBody      = "conteudo"
	fieldFiles     = "arquivos"
	fieldNewFiles  = "novosArquivos"
	fieldRemoveIDs = "idsMidiasRemover"
)

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// streamForm encodes form as multipart/form-data into a pipe. The returned
// reader must be consumed or closed; file content is copied lazily as the
// transport reads.
func streamForm(form EntryForm, fileField string, withRemovals bool) (io.ReadCloser, string) {
	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	go func() {
		err := writeForm(mw, form, fileField, withRemovals)
		if err == nil {
			err = mw.Close()
		}
		_ = pw.CloseWithError(err)
	}()

	return pr, mw.FormDataContentType()
}

func writeForm(mw *multipart.Writer, form EntryForm, fileField string, withRemovals bool) error {
	if err := mw.WriteField(fieldTitle, form.Title); err != nil {
		return err
	}
	if err := mw.WriteField(fieldBody, form.Body); err != nil {
		return err
	}
	for _, f := range form.Files {
		if err := writeFile(mw, fileField, f); err != nil {
			return err
		}
	}
	if withRemovals {
		for _, id := range form.RemoveIDs {
			if err := mw.WriteField(fieldRemoveIDs, strconv.FormatInt(id, 10)); err != nil {
				return err
			}
		}
	}
	return nil
}

// writeFile adds one file part. The backend infers the attachment kind from
// the part's Content-Type, so it is set explicitly.
func writeFile(mw *multipart.Writer, field string, f models.PendingUpload) error {
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
		quoteEscaper.Replace(field), quoteEscaper.Replace(f.Name)))
	ct := f.ContentType
	if ct == "" {
		ct = "application/octet-stream"
	}
	h.Set("Content-Type", ct)

	part, err := mw.CreatePart(h)
	if err != nil {
		return err
	}

	src, err := f.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	if _, err := io.Copy(part, src); err != nil {
		return fmt.Errorf("copy %s: %w", f.Name, err)
	}
	return nil
}
