package cli

import (
	"bytes"
	"context"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jimalvess/diario-cli/internal/client/client"
	"github.com/jimalvess/diario-cli/internal/client/editor"
	"github.com/jimalvess/diario-cli/internal/client/models"
	"github.com/jimalvess/diario-cli/internal/testutil/fakeapi"
)

type execResult struct {
	out    string
	errOut string
	err    error
}

func runCLI(t *testing.T, api *fakeapi.Server, db, input string, args ...string) execResult {
	t.Helper()
	stubTerminal(t, false, nil)
	var out, errOut bytes.Buffer
	full := append([]string{"--api", api.URL(), "--db", db, "--log-level", "error"}, args...)
	err := Execute(context.Background(), full, strings.NewReader(input), &out, &errOut)
	return execResult{out: out.String(), errOut: errOut.String(), err: err}
}

func TestExecute_LoginThenListAcrossInvocations(t *testing.T) {
	api := fakeapi.New(t)
	uid := api.AddUser("ana", "secret")
	api.SeedEntry(uid, models.Entry{Title: "Saved entry", Body: "b"})
	db := filepath.Join(t.TempDir(), "session.db")

	res := runCLI(t, api, db, "", "list")
	require.NoError(t, res.err)
	assert.Contains(t, res.out, "You are not logged in")
	assert.Zero(t, api.Count("GET", entriesPath))

	res = runCLI(t, api, db, "secret\n", "login", "-u", "ana")
	require.NoError(t, res.err)
	assert.Contains(t, res.out, "Welcome, ana!")

	res = runCLI(t, api, db, "", "list", "--sort", "asc")
	require.NoError(t, res.err)
	assert.Contains(t, res.out, "Saved entry")

	res = runCLI(t, api, db, "", "logout")
	require.NoError(t, res.err)

	res = runCLI(t, api, db, "", "show", "1")
	require.NoError(t, res.err)
	assert.Contains(t, res.out, "You are not logged in")
	assert.Zero(t, api.Count("GET", "/api/entradas/1"))
}

func TestExecute_NewAndEditWithFlags(t *testing.T) {
	api := fakeapi.New(t)
	api.AddUser("ana", "secret")
	db := filepath.Join(t.TempDir(), "session.db")
	require.NoError(t, runCLI(t, api, db, "secret\n", "login", "-u", "ana").err)

	doc := writeFile(t, "notes.txt", []byte("notes"))
	res := runCLI(t, api, db, "", "new", "--title", "Trip", "--body", "Day one", "--file", doc)
	require.NoError(t, res.err)
	assert.Contains(t, res.out, "Entry saved.")

	stored, ok := api.Entry(1)
	require.True(t, ok)
	require.Len(t, stored.Attachments, 1)
	attID := stored.Attachments[0].ID

	res = runCLI(t, api, db, "", "edit", "1", "--body", "Day two", "--remove", "999")
	assert.ErrorIs(t, res.err, editor.ErrUnknownAttachment)
	assert.Zero(t, api.Count("PUT", "/api/entradas/1"))

	id := strconv.FormatInt(attID, 10)
	res = runCLI(t, api, db, "", "edit", "1", "--body", "Day two", "--remove", id)
	require.NoError(t, res.err, res.errOut)
	form := api.LastForm()
	require.NotNil(t, form)
	assert.Equal(t, "Trip", form.Title)
	assert.Equal(t, "Day two", form.Body)
	assert.Equal(t, []string{id}, form.RemoveIDs)
}

func TestExecute_ErrorsArePrinted(t *testing.T) {
	api := fakeapi.New(t)
	db := filepath.Join(t.TempDir(), "session.db")

	res := runCLI(t, api, db, "", "show", "abc")
	assert.ErrorIs(t, res.err, client.ErrValidation)
	assert.Contains(t, res.errOut, "invalid id")

	res = runCLI(t, api, db, "", "list", "--sort", "sideways")
	assert.ErrorIs(t, res.err, client.ErrValidation)
	assert.Contains(t, res.errOut, "unknown sort order")
}

func TestExecute_BadConfigFile(t *testing.T) {
	api := fakeapi.New(t)
	db := filepath.Join(t.TempDir(), "session.db")

	res := runCLI(t, api, db, "", "--config", filepath.Join(t.TempDir(), "missing.json"), "list")
	assert.Error(t, res.err)
	assert.Empty(t, api.Requests())
}
