package views

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jimalvess/diario-cli/internal/client/client"
	"github.com/jimalvess/diario-cli/internal/client/models"
	"github.com/jimalvess/diario-cli/internal/testutil/fakeapi"
)

type fakeListAPI struct {
	entries   []models.Entry
	listErr   error
	deleteErr error
	deleted   []int64
	// during is called while DeleteEntry runs.
	during func()
}

func (f *fakeListAPI) ListEntries(context.Context) ([]models.Entry, error) {
	return f.entries, f.listErr
}

func (f *fakeListAPI) DeleteEntry(_ context.Context, id int64) error {
	if f.during != nil {
		f.during()
	}
	f.deleted = append(f.deleted, id)
	return f.deleteErr
}

func entry(id int64, day int) models.Entry {
	return models.Entry{ID: id, Title: fmt.Sprintf("e%d", id), Body: "b", Date: models.NewDate(2024, time.March, day)}
}

func ids(rows []models.Entry) []int64 {
	out := make([]int64, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.ID)
	}
	return out
}

func loadedList(t *testing.T, api *fakeListAPI) *EntryList {
	t.Helper()
	l := NewEntryList(api, nil)
	require.NoError(t, l.Load(context.Background()))
	return l
}

func TestEntryList_SortByDate(t *testing.T) {
	api := &fakeListAPI{entries: []models.Entry{entry(1, 5), entry(2, 1), entry(3, 5), entry(4, 3)}}
	l := loadedList(t, api)

	assert.Equal(t, []int64{1, 2, 3, 4}, ids(l.Rows()), "server order by default")

	l.SortByDate(SortAsc)
	assert.Equal(t, []int64{2, 4, 1, 3}, ids(l.Rows()))

	l.SortByDate(SortDesc)
	assert.Equal(t, []int64{1, 3, 4, 2}, ids(l.Rows()), "ties keep server order")

	l.SortByDate(SortServer)
	assert.Equal(t, []int64{1, 2, 3, 4}, ids(l.Rows()))
}

func TestParseSortOrder(t *testing.T) {
	for in, want := range map[string]SortOrder{"": SortServer, "server": SortServer, "ASC": SortAsc, "desc": SortDesc} {
		got, err := ParseSortOrder(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseSortOrder("sideways")
	assert.Error(t, err)
}

func TestEntryList_Page(t *testing.T) {
	var entries []models.Entry
	for i := int64(1); i <= 20; i++ {
		entries = append(entries, entry(i, 1))
	}
	l := loadedList(t, &fakeListAPI{entries: entries})

	rows, info := l.Page(1, 0)
	assert.Len(t, rows, DefaultPageSize)
	assert.Equal(t, PageInfo{Page: 1, Pages: 3, Size: 9, Total: 20}, info)

	rows, info = l.Page(3, 0)
	assert.Equal(t, []int64{19, 20}, ids(rows))
	assert.Equal(t, 3, info.Page)

	_, info = l.Page(99, 0)
	assert.Equal(t, 3, info.Page)
	_, info = l.Page(-1, 0)
	assert.Equal(t, 1, info.Page)

	empty := loadedList(t, &fakeListAPI{})
	rows, info = empty.Page(1, 5)
	assert.Empty(t, rows)
	assert.Equal(t, PageInfo{Page: 1, Pages: 1, Size: 5, Total: 0}, info)
}

func TestEntryList_LoadError(t *testing.T) {
	l := NewEntryList(&fakeListAPI{listErr: client.ErrMalformedResponse}, nil)
	assert.ErrorIs(t, l.Load(context.Background()), client.ErrMalformedResponse)
	assert.Empty(t, l.Rows())
}

func TestEntryList_DeleteIsOptimistic(t *testing.T) {
	api := &fakeListAPI{entries: []models.Entry{entry(1, 1), entry(2, 2), entry(3, 3)}}
	l := loadedList(t, api)

	var during []int64
	api.during = func() { during = ids(l.Rows()) }

	require.NoError(t, l.Delete(context.Background(), 2))
	assert.Equal(t, []int64{1, 3}, during, "row removed before the request")
	assert.Equal(t, []int64{1, 3}, ids(l.Rows()))
	assert.Equal(t, []int64{2}, api.deleted)
}

func TestEntryList_DeleteRollsBackOnFailure(t *testing.T) {
	boom := errors.New("boom")
	api := &fakeListAPI{entries: []models.Entry{entry(1, 1), entry(2, 2), entry(3, 3)}, deleteErr: boom}
	l := loadedList(t, api)
	l.SortByDate(SortDesc)

	err := l.Delete(context.Background(), 2)
	require.ErrorIs(t, err, boom)
	assert.Equal(t, []int64{3, 2, 1}, ids(l.Rows()))

	l.SortByDate(SortServer)
	assert.Equal(t, []int64{1, 2, 3}, ids(l.Rows()), "row restored at its previous position")
}

func TestEntryList_DeleteUnknown(t *testing.T) {
	api := &fakeListAPI{entries: []models.Entry{entry(1, 1)}}
	l := loadedList(t, api)

	assert.ErrorIs(t, l.Delete(context.Background(), 9), ErrNotListed)
	assert.Empty(t, api.deleted)
}

func TestEntryList_AgainstBackend(t *testing.T) {
	api := fakeapi.New(t)
	uid := api.AddUser("ana", "pw")
	api.SeedEntry(uid, entry(1, 1))
	api.SeedEntry(uid, entry(2, 2))
	c := client.NewHTTPClient(api.URL(), staticToken(api.TokenFor("ana")))

	l := NewEntryList(c, nil)
	require.NoError(t, l.Load(context.Background()))
	require.NoError(t, l.Delete(context.Background(), 1))
	assert.Equal(t, []int64{2}, ids(l.Rows()))
	assert.Equal(t, 1, api.Count(http.MethodGet, "/api/entradas"), "no refetch after delete")

	api.Force(http.MethodDelete, "/api/entradas/2", http.StatusForbidden, "")
	err := l.Delete(context.Background(), 2)
	assert.ErrorIs(t, err, client.ErrForbidden)
	assert.Equal(t, []int64{2}, ids(l.Rows()))
}

type staticToken string

func (s staticToken) Token() string { return string(s) }
