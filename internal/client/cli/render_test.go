package cli

import (
	"bytes"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jimalvess/diario-cli/internal/client/client"
	"github.com/jimalvess/diario-cli/internal/client/editor"
	"github.com/jimalvess/diario-cli/internal/client/models"
	"github.com/jimalvess/diario-cli/internal/client/views"
)

func TestAttachmentRenderers_CoverEveryKind(t *testing.T) {
	for _, k := range []models.MediaKind{models.KindImage, models.KindVideo, models.KindAudio, models.KindDocument} {
		_, ok := attachmentRenderers[k]
		assert.True(t, ok, k)
	}
}

func TestRenderAttachment(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"imagem", "#1 [image]    f"},
		{"video", "#1 [video]    f"},
		{"audio", "#1 [audio]    f"},
		{"documento", "#1 [document] f"},
		{"", "#1 [document] f"},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			a := models.NewAttachmentView(models.Attachment{ID: 1, OriginalName: "f", RawKind: tt.raw}, "http://x")
			assert.Contains(t, renderAttachment(a), tt.want)
		})
	}
}

func TestEntryTable_Empty(t *testing.T) {
	var out bytes.Buffer
	newRenderer(&out).entryTable(nil, views.PageInfo{Page: 1, Pages: 1, Size: 9})
	assert.Contains(t, out.String(), "No entries yet.")
}

func TestSnapshot_MediaLimitNotice(t *testing.T) {
	var out bytes.Buffer
	newRenderer(&out).snapshot(editor.Snapshot{
		Mode:         editor.ModeCreate,
		State:        editor.StateReady,
		Title:        "t",
		CanStageMore: false,
	})
	assert.Contains(t, out.String(), "New entry")
	assert.Contains(t, out.String(), "(empty)")
	assert.Contains(t, out.String(), "Media limit reached")
}

func TestErrorMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"none", nil, ""},
		{"auth", fmt.Errorf("list: %w", client.ErrAuthRequired), "Use 'login'"},
		{"credentials", fmt.Errorf("login: %w", client.ErrInvalidCredentials), "Invalid username or password."},
		{"forbidden", client.ErrForbidden, "permission"},
		{"not found", client.ErrNotFound, "Not found."},
		{"too large", client.ErrPayloadTooLarge, "too large"},
		{"validation", fmt.Errorf("%w: title required", client.ErrValidation), "title required"},
		{"network", fmt.Errorf("list: %w", client.ErrUnavailable), "Something went wrong"},
		{"other", errors.New("boom"), "boom"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := errorMessage(tt.err)
			if tt.want == "" {
				assert.Empty(t, got)
				return
			}
			assert.Contains(t, got, tt.want)
		})
	}
}
