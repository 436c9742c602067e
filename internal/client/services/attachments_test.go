package services

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jimalvess/diario-cli/internal/client/client"
	"github.com/jimalvess/diario-cli/internal/client/models"
)

type fakeFiles struct {
	files map[string][]byte
	calls int
}

func (f *fakeFiles) FetchAttachment(_ context.Context, name string) ([]byte, string, error) {
	f.calls++
	b, ok := f.files[name]
	if !ok {
		return nil, "", client.ErrNotFound
	}
	return b, "image/jpeg", nil
}

func TestFetch_UsesCache(t *testing.T) {
	api := &fakeFiles{files: map[string][]byte{"7_photo.jpg": []byte("jpeg")}}
	svc := NewAttachmentService(api, 4, time.Minute, nil)
	ctx := context.Background()

	b, err := svc.Fetch(ctx, "7_photo.jpg")
	require.NoError(t, err)
	assert.Equal(t, Blob{Data: []byte("jpeg"), ContentType: "image/jpeg"}, b)

	_, err = svc.Fetch(ctx, "7_photo.jpg")
	require.NoError(t, err)
	assert.Equal(t, 1, api.calls)

	_, err = svc.Fetch(ctx, "missing")
	assert.ErrorIs(t, err, client.ErrNotFound)
	_, err = svc.Fetch(ctx, "missing")
	assert.ErrorIs(t, err, client.ErrNotFound)
	assert.Equal(t, 3, api.calls, "failures are not cached")
}

func TestFetch_CacheDisabled(t *testing.T) {
	api := &fakeFiles{files: map[string][]byte{"a": []byte("x")}}
	svc := NewAttachmentService(api, 0, time.Minute, nil)

	for i := 0; i < 3; i++ {
		_, err := svc.Fetch(context.Background(), "a")
		require.NoError(t, err)
	}
	assert.Equal(t, 3, api.calls)
}

func TestSaveTo(t *testing.T) {
	api := &fakeFiles{files: map[string][]byte{"7_photo.jpg": []byte("jpeg")}}
	svc := NewAttachmentService(api, 4, time.Minute, nil)
	dir := filepath.Join(t.TempDir(), "download")
	a := models.Attachment{ID: 7, OriginalName: "../photo.jpg", Locator: `uploads\7_photo.jpg`}

	p1, err := svc.SaveTo(context.Background(), a, dir)
	require.NoError(t, err)
	assert.Equal(t, "photo.jpg", filepath.Base(p1))
	data, err := os.ReadFile(p1)
	require.NoError(t, err)
	assert.Equal(t, []byte("jpeg"), data)

	p2, err := svc.SaveTo(context.Background(), a, dir)
	require.NoError(t, err)
	assert.Equal(t, "photo (1).jpg", filepath.Base(p2))
	assert.Equal(t, 1, api.calls)
}

func TestSaveTo_Errors(t *testing.T) {
	svc := NewAttachmentService(&fakeFiles{}, 4, time.Minute, nil)
	dir := t.TempDir()

	_, err := svc.SaveTo(context.Background(), models.Attachment{ID: 1}, dir)
	assert.ErrorIs(t, err, client.ErrValidation)

	_, err = svc.SaveTo(context.Background(), models.Attachment{ID: 2, Locator: "x.jpg"}, dir)
	assert.ErrorIs(t, err, client.ErrNotFound)
}
